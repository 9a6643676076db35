// Package legacy reads documents written by the Montra web app. That app
// called accounts "wallets" and used its own field names inside each entry;
// everything here maps those names onto the current ones so the data can be
// decoded into the model types.
package legacy

import (
	"bytes"
	"encoding/json"

	"github.com/montra-dev/montra/internal/model"
)

var accountFields = map[string]string{
	"type": "category",
}

var transactionFields = map[string]string{
	"type":       "kind",
	"walletName": "accountName",
	"icon":       "accountIcon",
	"date":       "timestamp",
}

var snapshotFields = map[string]string{
	"wallets": "accounts",
	"date":    "timestamp",
}

// NormalizeAccounts renames old account fields in place.
func NormalizeAccounts(list []any) {
	rename(list, accountFields)
}

// NormalizeTransactions renames old transaction fields in place.
func NormalizeTransactions(list []any) {
	rename(list, transactionFields)
}

// NormalizeSnapshots renames old snapshot fields in place, including the
// accounts and transactions each snapshot carries. A missing or null
// transactions field is left missing.
func NormalizeSnapshots(list []any) {
	rename(list, snapshotFields)
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if accounts, ok := m["accounts"].([]any); ok {
			NormalizeAccounts(accounts)
		}
		if txns, ok := m["transactions"].([]any); ok {
			NormalizeTransactions(txns)
		}
	}
}

// UnmarshalAccounts decodes an accounts document in either layout.
func UnmarshalAccounts(data []byte, out *[]model.Account) error {
	return unmarshal(data, out, NormalizeAccounts)
}

// UnmarshalTransactions decodes a transactions document in either layout.
func UnmarshalTransactions(data []byte, out *[]model.Transaction) error {
	return unmarshal(data, out, NormalizeTransactions)
}

// UnmarshalSnapshots decodes a snapshots document in either layout.
func UnmarshalSnapshots(data []byte, out *[]model.Snapshot) error {
	return unmarshal(data, out, NormalizeSnapshots)
}

// Convert decodes an already normalized generic list into typed entries.
// A nil list leaves out untouched.
func Convert[T any](list []any, out *[]T) error {
	if list == nil {
		return nil
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	items := make([]T, 0, len(list))
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	*out = items
	return nil
}

func unmarshal[T any](data []byte, out *[]T, normalize func([]any)) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var list []any
	if err := dec.Decode(&list); err != nil {
		return err
	}
	if list == nil {
		*out = nil
		return nil
	}
	normalize(list)
	return Convert(list, out)
}

// rename moves each old key to its new name unless the new name is already set.
func rename(list []any, names map[string]string) {
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for from, to := range names {
			v, ok := m[from]
			if !ok {
				continue
			}
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
		}
	}
}
