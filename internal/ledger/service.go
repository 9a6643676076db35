package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/montra-dev/montra/internal/id"
	"github.com/montra-dev/montra/internal/legacy"
	"github.com/montra-dev/montra/internal/logging"
	"github.com/montra-dev/montra/internal/model"
	"github.com/montra-dev/montra/internal/storage"
)

// Service owns the live accounts and the transaction log.
//
// Every mutation updates memory first and then writes the affected documents
// through the Store. A failed write is logged and the in-memory change stands.
type Service struct {
	mu           sync.Mutex
	store        storage.Store
	ids          *id.Generator
	now          func() time.Time
	log          *slog.Logger
	accounts     []model.Account
	transactions []model.Transaction
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for timestamps and new IDs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithIDs shares an ID generator with other components.
func WithIDs(g *id.Generator) Option {
	return func(s *Service) { s.ids = g }
}

// New creates an empty Service backed by store. Call Load to read persisted state.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = id.NewGenerator(s.now)
	}
	s.log = logging.Component(s.log, logging.ComponentLedger)
	return s
}

// IDs returns the generator the Service draws IDs from.
func (s *Service) IDs() *id.Generator { return s.ids }

// Load reads the accounts and transactions documents, accepting the web app's
// layout too. A missing document is an empty collection; an unreadable one is
// logged and also treated as empty.
func (s *Service) Load(ctx context.Context) error {
	var accounts []model.Account
	var transactions []model.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := storage.LoadDocument(gctx, s.store, storage.KeyAccounts, func(data []byte) error {
			return legacy.UnmarshalAccounts(data, &accounts)
		})
		if err != nil {
			s.log.Error("discarding unreadable accounts", "key", storage.KeyAccounts, "error", err)
			accounts = nil
		}
		return gctx.Err()
	})
	g.Go(func() error {
		_, err := storage.LoadDocument(gctx, s.store, storage.KeyTransactions, func(data []byte) error {
			return legacy.UnmarshalTransactions(data, &transactions)
		})
		if err != nil {
			s.log.Error("discarding unreadable transactions", "key", storage.KeyTransactions, "error", err)
			transactions = nil
		}
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading ledger: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = accounts
	s.transactions = transactions
	s.observeIDs()
	s.log.Debug("ledger loaded", "accounts", len(accounts), "transactions", len(transactions))
	return nil
}

// CreateAccountParams holds the user-entered fields of a new account.
type CreateAccountParams struct {
	Name           string
	Category       string
	InitialBalance string
	Icon           string // DefaultIcon when empty
}

// CreateAccount validates params, appends the account and records an Added
// transaction for its initial balance.
func (s *Service) CreateAccount(ctx context.Context, params CreateAccountParams) (model.Account, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return model.Account{}, &model.ValidationError{Field: "name", Reason: "name is required"}
	}
	category, err := model.ParseCategory(params.Category)
	if err != nil {
		return model.Account{}, err
	}
	balance, err := model.ParseAmount("balance", params.InitialBalance)
	if err != nil {
		return model.Account{}, err
	}
	icon := strings.TrimSpace(params.Icon)
	if icon == "" {
		icon = model.DefaultIcon
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := model.Account{
		ID:       s.ids.Next(),
		Name:     name,
		Category: category,
		Balance:  balance,
		Icon:     icon,
		Color:    model.ColorFor(len(s.accounts)),
	}
	s.accounts = append(s.accounts, acct)
	s.record(model.KindAdded, acct, balance)

	s.persist(ctx, storage.KeyAccounts, storage.KeyTransactions)
	s.log.Info("account created", "id", acct.ID, "name", acct.Name, "category", acct.Category)
	return acct, nil
}

// DeleteAccount removes an account and records a Deleted transaction for the
// negated balance. It reports false, recording nothing, if id is unknown.
func (s *Service) DeleteAccount(ctx context.Context, accountID model.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(accountID)
	if i < 0 {
		return false, nil
	}
	acct := s.accounts[i]
	s.record(model.KindDeleted, acct, acct.Balance.Neg())
	s.accounts = slices.Delete(s.accounts, i, i+1)

	s.persist(ctx, storage.KeyAccounts, storage.KeyTransactions)
	s.log.Info("account deleted", "id", acct.ID, "name", acct.Name)
	return true, nil
}

// SetAccountBalance overwrites an account balance and records the difference
// as a Balance Adjustment transaction, which it returns.
func (s *Service) SetAccountBalance(ctx context.Context, accountID model.ID, newBalance string) (model.Transaction, error) {
	balance, err := model.ParseAmount("balance", newBalance)
	if err != nil {
		return model.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(accountID)
	if i < 0 {
		return model.Transaction{}, fmt.Errorf("account %s: %w", accountID, model.ErrAccountNotFound)
	}
	delta := balance.Sub(s.accounts[i].Balance)
	txn := s.record(model.KindBalanceAdjustment, s.accounts[i], delta)
	s.accounts[i].Balance = balance

	s.persist(ctx, storage.KeyAccounts, storage.KeyTransactions)
	s.log.Info("balance adjusted", "id", accountID, "delta", delta.String())
	return txn, nil
}

// DeleteTransaction removes one log entry. Balances are not touched.
func (s *Service) DeleteTransaction(ctx context.Context, txnID model.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.transactions, func(t model.Transaction) bool { return t.ID == txnID })
	if i < 0 {
		return false, nil
	}
	s.transactions = slices.Delete(s.transactions, i, i+1)

	s.persist(ctx, storage.KeyTransactions)
	s.log.Info("transaction deleted", "id", txnID)
	return true, nil
}

// ClearTransactions empties the log. Balances are not touched.
func (s *Service) ClearTransactions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.transactions)
	s.transactions = []model.Transaction{}

	s.persist(ctx, storage.KeyTransactions)
	s.log.Info("transactions cleared", "count", n)
	return nil
}

// ReplaceAccounts swaps in a new set of accounts wholesale.
func (s *Service) ReplaceAccounts(ctx context.Context, accounts []model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = model.CloneAccounts(accounts)
	if s.accounts == nil {
		s.accounts = []model.Account{}
	}
	s.observeIDs()
	s.persist(ctx, storage.KeyAccounts)
	return nil
}

// ReplaceTransactions swaps in a new transaction log wholesale.
func (s *Service) ReplaceTransactions(ctx context.Context, transactions []model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = model.CloneTransactions(transactions)
	if s.transactions == nil {
		s.transactions = []model.Transaction{}
	}
	s.observeIDs()
	s.persist(ctx, storage.KeyTransactions)
	return nil
}

// Accounts returns a copy of all accounts in creation order.
func (s *Service) Accounts() []model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nonNilAccounts(model.CloneAccounts(s.accounts))
}

// Transactions returns a copy of the log, oldest first.
func (s *Service) Transactions() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nonNilTransactions(model.CloneTransactions(s.transactions))
}

// State returns copies of the accounts and the log taken under one lock, so
// they always describe the same moment.
func (s *Service) State() ([]model.Account, []model.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nonNilAccounts(model.CloneAccounts(s.accounts)),
		nonNilTransactions(model.CloneTransactions(s.transactions))
}

// Account returns an account by ID.
func (s *Service) Account(accountID model.ID) (model.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(accountID)
	if i < 0 {
		return model.Account{}, false
	}
	return s.accounts[i], true
}

// AccountsByCategory returns the accounts of one category in creation order.
func (s *Service) AccountsByCategory(c model.Category) []model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []model.Account{}
	for _, a := range s.accounts {
		if a.Category == c {
			result = append(result, a)
		}
	}
	return result
}

// History returns the whole log, newest first.
func (s *Service) History() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := nonNilTransactions(model.CloneTransactions(s.transactions))
	slices.Reverse(out)
	return out
}

// Recent returns up to n of the latest transactions, newest first.
func (s *Service) Recent(n int) []model.Transaction {
	history := s.History()
	if n < 0 {
		n = 0
	}
	if n < len(history) {
		history = history[:n]
	}
	return history
}

// record appends a transaction for acct. Callers hold s.mu.
func (s *Service) record(kind model.TransactionKind, acct model.Account, amount decimal.Decimal) model.Transaction {
	txn := model.Transaction{
		ID:          s.ids.Next(),
		Kind:        kind,
		AccountName: acct.Name,
		AccountIcon: acct.Icon,
		Amount:      amount,
		Timestamp:   s.now(),
	}
	s.transactions = append(s.transactions, txn)
	return txn
}

// persist writes the named documents. Callers hold s.mu.
func (s *Service) persist(ctx context.Context, keys ...string) {
	for _, key := range keys {
		var doc any
		switch key {
		case storage.KeyAccounts:
			doc = nonNilAccounts(s.accounts)
		case storage.KeyTransactions:
			doc = nonNilTransactions(s.transactions)
		}
		if err := storage.SaveJSON(ctx, s.store, key, doc); err != nil {
			s.log.Error("persisting ledger document", "key", key, "error", err)
		}
	}
}

func (s *Service) indexOf(accountID model.ID) int {
	return slices.IndexFunc(s.accounts, func(a model.Account) bool { return a.ID == accountID })
}

func (s *Service) observeIDs() {
	for _, a := range s.accounts {
		s.ids.Observe(a.ID)
	}
	for _, t := range s.transactions {
		s.ids.Observe(t.ID)
	}
}

func nonNilAccounts(a []model.Account) []model.Account {
	if a == nil {
		return []model.Account{}
	}
	return a
}

func nonNilTransactions(t []model.Transaction) []model.Transaction {
	if t == nil {
		return []model.Transaction{}
	}
	return t
}
