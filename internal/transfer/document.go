// Package transfer moves ledger data in and out of portable backup files.
package transfer

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/montra-dev/montra/internal/model"
)

// Document is a full backup of the ledger.
//
// When decoded, a nil collection means the file did not carry it and the
// matching live collection must be left alone.
type Document struct {
	Accounts     []model.Account     `json:"accounts"`
	Transactions []model.Transaction `json:"transactions"`
	ExportDate   time.Time           `json:"exportDate"`
}

// Export builds a Document from the live collections.
func Export(accounts []model.Account, transactions []model.Transaction, now time.Time) Document {
	doc := Document{
		Accounts:     model.CloneAccounts(accounts),
		Transactions: model.CloneTransactions(transactions),
		ExportDate:   now.UTC(),
	}
	if doc.Accounts == nil {
		doc.Accounts = []model.Account{}
	}
	if doc.Transactions == nil {
		doc.Transactions = []model.Transaction{}
	}
	return doc
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	return nil
}

// FileName is the default name for a JSON backup written at now.
func FileName(now time.Time) string {
	return FileNameFor(JSONFormat{}, now)
}

// FileNameFor is the default name for a backup in format f written at now.
func FileNameFor(f Format, now time.Time) string {
	return fmt.Sprintf("montra-backup-%d%s", now.UnixMilli(), f.Extension())
}

// FormatError reports an import file that is not a usable backup. The import
// that returned it made no changes.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid backup: %s: %v", e.Reason, e.Err)
	}
	return "invalid backup: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }
