package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind describes what produced a transaction.
type TransactionKind string

const (
	KindAdded             TransactionKind = "Added"
	KindDeleted           TransactionKind = "Deleted"
	KindBalanceAdjustment TransactionKind = "Balance Adjustment"
)

// Valid reports whether k is a known transaction kind.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindAdded, KindDeleted, KindBalanceAdjustment:
		return true
	}
	return false
}

// Transaction is an append-only log entry describing a balance change.
//
// AccountName and AccountIcon are copied from the account when the entry is
// recorded so the entry stays readable after the account is deleted.
type Transaction struct {
	ID          ID              `json:"id"`
	Kind        TransactionKind `json:"kind"`
	AccountName string          `json:"accountName"`
	AccountIcon string          `json:"accountIcon"`
	Amount      decimal.Decimal `json:"amount"` // signed delta
	Timestamp   time.Time       `json:"timestamp"`
}

// CloneTransactions returns an independent copy of txns. A nil input stays nil.
func CloneTransactions(txns []Transaction) []Transaction {
	if txns == nil {
		return nil
	}
	out := make([]Transaction, len(txns))
	copy(out, txns)
	return out
}
