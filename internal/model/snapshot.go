package model

import "time"

// Snapshot is a named copy of the accounts and transaction log.
//
// A nil Transactions slice means the snapshot carries no transaction copy
// (older saves); restoring it leaves the live log alone. An empty non-nil
// slice is a copy of an empty log.
type Snapshot struct {
	ID           ID            `json:"id"`
	Name         string        `json:"name"`
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
	Timestamp    time.Time     `json:"timestamp"`
}

// HasTransactions reports whether the snapshot carries a transaction copy.
func (s Snapshot) HasTransactions() bool {
	return s.Transactions != nil
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	s.Accounts = CloneAccounts(s.Accounts)
	s.Transactions = CloneTransactions(s.Transactions)
	return s
}
