package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/montra-dev/montra/internal/logging"
	"github.com/montra-dev/montra/internal/model"
)

// Target receives imported collections.
type Target interface {
	ReplaceAccounts(ctx context.Context, accounts []model.Account) error
	ReplaceTransactions(ctx context.Context, transactions []model.Transaction) error
}

// Result summarizes an import.
type Result struct {
	Accounts     int // accounts imported; 0 when the file had none
	Transactions int
	// Replaced* report which live collections were overwritten.
	ReplacedAccounts     bool
	ReplacedTransactions bool
}

// Importer applies backups to a Target.
type Importer struct {
	target Target
	log    *slog.Logger
}

// NewImporter creates an Importer writing into target.
func NewImporter(target Target, log *slog.Logger) *Importer {
	return &Importer{target: target, log: logging.Component(log, logging.ComponentTransfer)}
}

// Import decodes a JSON backup from r and applies it.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	doc, err := Decode(r)
	if err != nil {
		return Result{}, err
	}
	return im.Apply(ctx, doc)
}

// Apply validates doc and replaces each live collection doc carries. Nothing
// is changed when validation fails.
func (im *Importer) Apply(ctx context.Context, doc Document) (Result, error) {
	if issues := Validate(doc); len(issues) > 0 {
		return Result{}, issuesError(issues)
	}

	var res Result
	if doc.Accounts != nil {
		if err := im.target.ReplaceAccounts(ctx, doc.Accounts); err != nil {
			return res, fmt.Errorf("replacing accounts: %w", err)
		}
		res.Accounts = len(doc.Accounts)
		res.ReplacedAccounts = true
	}
	if doc.Transactions != nil {
		if err := im.target.ReplaceTransactions(ctx, doc.Transactions); err != nil {
			return res, fmt.Errorf("replacing transactions: %w", err)
		}
		res.Transactions = len(doc.Transactions)
		res.ReplacedTransactions = true
	}

	im.log.Info("backup imported",
		"accounts", res.Accounts, "replaced_accounts", res.ReplacedAccounts,
		"transactions", res.Transactions, "replaced_transactions", res.ReplacedTransactions)
	return res, nil
}
