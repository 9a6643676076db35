package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/montra-dev/montra/internal/id"
	"github.com/montra-dev/montra/internal/legacy"
	"github.com/montra-dev/montra/internal/logging"
	"github.com/montra-dev/montra/internal/model"
	"github.com/montra-dev/montra/internal/storage"
)

// Ledger is the part of the ledger the Manager copies from and restores into.
type Ledger interface {
	State() ([]model.Account, []model.Transaction)
	ReplaceAccounts(ctx context.Context, accounts []model.Account) error
	ReplaceTransactions(ctx context.Context, transactions []model.Transaction) error
	IDs() *id.Generator
}

// Manager keeps named snapshots of the ledger.
type Manager struct {
	mu        sync.Mutex
	ledger    Ledger
	store     storage.Store
	now       func() time.Time
	log       *slog.Logger
	snapshots []model.Snapshot
}

// NewManager creates a Manager. A nil now uses time.Now; a nil logger uses slog.Default.
func NewManager(ledger Ledger, store storage.Store, now func() time.Time, log *slog.Logger) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		ledger: ledger,
		store:  store,
		now:    now,
		log:    logging.Component(log, logging.ComponentSnapshot),
	}
}

// Load reads the snapshots document, accepting the web app's layout too. An
// unreadable document is logged and treated as empty.
func (m *Manager) Load(ctx context.Context) error {
	var snapshots []model.Snapshot
	_, err := storage.LoadDocument(ctx, m.store, storage.KeySnapshots, func(data []byte) error {
		return legacy.UnmarshalSnapshots(data, &snapshots)
	})
	if err != nil {
		m.log.Error("discarding unreadable snapshots", "key", storage.KeySnapshots, "error", err)
		snapshots = nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("loading snapshots: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = snapshots
	for _, s := range snapshots {
		m.ledger.IDs().Observe(s.ID)
	}
	return nil
}

// Save captures the current accounts and transaction log under name.
func (m *Manager) Save(ctx context.Context, name string) (model.Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Snapshot{}, &model.ValidationError{Field: "snapshot name", Reason: "name is required"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	accounts, transactions := m.ledger.State()
	snap := model.Snapshot{
		ID:           m.ledger.IDs().Next(),
		Name:         name,
		Accounts:     accounts,
		Transactions: transactions,
		Timestamp:    m.now(),
	}
	if snap.Transactions == nil {
		snap.Transactions = []model.Transaction{}
	}
	m.snapshots = append(m.snapshots, snap)
	m.persist(ctx)

	m.log.Info("snapshot saved", "id", snap.ID, "name", snap.Name,
		"accounts", len(snap.Accounts), "transactions", len(snap.Transactions))
	return snap.Clone(), nil
}

// Restore replaces the live accounts with the snapshot's. The live log is
// replaced too, unless the snapshot predates transaction copies.
func (m *Manager) Restore(ctx context.Context, snapshotID model.ID) (model.Snapshot, error) {
	snap, ok := m.Get(snapshotID)
	if !ok {
		return model.Snapshot{}, fmt.Errorf("snapshot %s: %w", snapshotID, model.ErrSnapshotNotFound)
	}

	if err := m.ledger.ReplaceAccounts(ctx, snap.Accounts); err != nil {
		return model.Snapshot{}, fmt.Errorf("restoring accounts: %w", err)
	}
	if snap.HasTransactions() {
		if err := m.ledger.ReplaceTransactions(ctx, snap.Transactions); err != nil {
			return model.Snapshot{}, fmt.Errorf("restoring transactions: %w", err)
		}
	}

	m.log.Info("snapshot restored", "id", snap.ID, "name", snap.Name, "with_transactions", snap.HasTransactions())
	return snap, nil
}

// Delete removes a snapshot. It reports false if id is unknown.
func (m *Manager) Delete(ctx context.Context, snapshotID model.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.snapshots, func(s model.Snapshot) bool { return s.ID == snapshotID })
	if i < 0 {
		return false, nil
	}
	m.snapshots = slices.Delete(m.snapshots, i, i+1)
	m.persist(ctx)

	m.log.Info("snapshot deleted", "id", snapshotID)
	return true, nil
}

// List returns copies of all snapshots, oldest first.
func (m *Manager) List() []model.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Snapshot, len(m.snapshots))
	for i, s := range m.snapshots {
		out[i] = s.Clone()
	}
	return out
}

// Get returns a copy of one snapshot.
func (m *Manager) Get(snapshotID model.ID) (model.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.snapshots {
		if s.ID == snapshotID {
			return s.Clone(), true
		}
	}
	return model.Snapshot{}, false
}

// persist writes the snapshots document. Callers hold m.mu.
func (m *Manager) persist(ctx context.Context) {
	doc := m.snapshots
	if doc == nil {
		doc = []model.Snapshot{}
	}
	if err := storage.SaveJSON(ctx, m.store, storage.KeySnapshots, doc); err != nil {
		m.log.Error("persisting snapshots", "key", storage.KeySnapshots, "error", err)
	}
}
