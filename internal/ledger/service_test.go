package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montra-dev/montra/internal/logging"
	"github.com/montra-dev/montra/internal/model"
	"github.com/montra-dev/montra/internal/storage"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return epoch }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService(t *testing.T, store storage.Store) *Service {
	t.Helper()
	svc := New(store, WithClock(fixedClock), WithLogger(logging.Discard()))
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

// failingStore accepts reads but rejects every write.
type failingStore struct {
	*storage.MemoryStore
}

func (failingStore) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore())

	acct, err := svc.CreateAccount(ctx, CreateAccountParams{
		Name:           "  Cash ",
		Category:       "Wallet",
		InitialBalance: "1000",
		Icon:           "💵",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cash", acct.Name)
	assert.Equal(t, model.CategoryWallet, acct.Category)
	assert.Equal(t, model.ColorFor(0), acct.Color)
	assert.Equal(t, model.ID(epoch.UnixMilli()), acct.ID)

	txns := svc.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, model.KindAdded, txns[0].Kind)
	assert.Equal(t, "Cash", txns[0].AccountName)
	assert.Equal(t, "💵", txns[0].AccountIcon)
	assert.True(t, txns[0].Amount.Equal(dec("1000")))
	assert.Greater(t, txns[0].ID, acct.ID, "ids never collide")
}

func TestCreateAccount_DefaultsAndColors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore())

	for i := 0; i < 12; i++ {
		acct, err := svc.CreateAccount(ctx, CreateAccountParams{Name: "A", Category: "Loan", InitialBalance: "1"})
		require.NoError(t, err)
		assert.Equal(t, model.ColorFor(i), acct.Color)
		assert.Equal(t, model.DefaultIcon, acct.Icon)
	}
}

func TestCreateAccount_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params CreateAccountParams
		field  string
	}{
		{"empty name", CreateAccountParams{Name: "   ", Category: "Wallet", InitialBalance: "1"}, "name"},
		{"bad balance", CreateAccountParams{Name: "Cash", Category: "Wallet", InitialBalance: "lots"}, "balance"},
		{"empty balance", CreateAccountParams{Name: "Cash", Category: "Wallet", InitialBalance: ""}, "balance"},
		{"plural category", CreateAccountParams{Name: "Cash", Category: "Wallets", InitialBalance: "1"}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			svc := newTestService(t, store)

			_, err := svc.CreateAccount(context.Background(), tt.params)
			var ve *model.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)

			assert.Empty(t, svc.Accounts())
			assert.Empty(t, svc.Transactions())
			keys, err := store.Keys(context.Background())
			require.NoError(t, err)
			assert.Empty(t, keys, "nothing persisted")
		})
	}
}

func TestCashAccountLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore())

	acct, err := svc.CreateAccount(ctx, CreateAccountParams{Name: "Cash", Category: "Wallet", InitialBalance: "1000"})
	require.NoError(t, err)

	adj, err := svc.SetAccountBalance(ctx, acct.ID, "1500")
	require.NoError(t, err)
	assert.Equal(t, model.KindBalanceAdjustment, adj.Kind)
	assert.True(t, adj.Amount.Equal(dec("500")))

	got, ok := svc.Account(acct.ID)
	require.True(t, ok)
	assert.True(t, got.Balance.Equal(dec("1500")))

	deleted, err := svc.DeleteAccount(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, svc.Accounts())

	txns := svc.Transactions()
	require.Len(t, txns, 3)
	assert.Equal(t, []model.TransactionKind{model.KindAdded, model.KindBalanceAdjustment, model.KindDeleted},
		[]model.TransactionKind{txns[0].Kind, txns[1].Kind, txns[2].Kind})
	assert.True(t, txns[2].Amount.Equal(dec("-1500")))

	sum := decimal.Zero
	for _, txn := range txns {
		sum = sum.Add(txn.Amount)
	}
	assert.True(t, sum.IsZero(), "a deleted account's entries net to zero, got %s", sum)
}

func TestAddedAndDeletedNetPerAccount(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore())

	type step struct {
		create  string // account name to create
		balance string
		remove  string // account name to delete
	}
	steps := []step{
		{create: "Cash", balance: "1000"},
		{create: "Car loan", balance: "-2500.75"},
		{create: "Visa", balance: "-120.5"},
		{remove: "Cash"},
		{create: "Broker", balance: "0.001"},
		{create: "Savings", balance: "333.33"},
		{remove: "Visa"},
		{create: "Jar", balance: "0"},
		{remove: "Broker"},
		{create: "Wallet", balance: "42"},
		{remove: "Jar"},
	}

	created := map[string]decimal.Decimal{}
	removed := map[string]bool{}
	ids := map[string]model.ID{}
	for _, st := range steps {
		if st.create != "" {
			acct, err := svc.CreateAccount(ctx, CreateAccountParams{Name: st.create, Category: "Wallet", InitialBalance: st.balance})
			require.NoError(t, err)
			created[st.create] = dec(st.balance)
			ids[st.create] = acct.ID
			continue
		}
		deleted, err := svc.DeleteAccount(ctx, ids[st.remove])
		require.NoError(t, err)
		require.True(t, deleted, st.remove)
		removed[st.remove] = true
	}

	net := map[string]decimal.Decimal{}
	for _, txn := range svc.Transactions() {
		if txn.Kind == model.KindAdded || txn.Kind == model.KindDeleted {
			net[txn.AccountName] = net[txn.AccountName].Add(txn.Amount)
		}
	}

	require.Len(t, net, len(created))
	for name, balance := range created {
		want := balance
		if removed[name] {
			want = decimal.Zero
		}
		assert.True(t, net[name].Equal(want), "%s: net %s, want %s", name, net[name], want)
	}
	assert.Len(t, svc.Accounts(), len(created)-len(removed))
}

func TestDeleteAccount_Unknown(t *testing.T) {
	svc := newTestService(t, storage.NewMemoryStore())

	deleted, err := svc.DeleteAccount(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, svc.Transactions())
}

func TestSetAccountBalance_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore())
	acct, err := svc.CreateAccount(ctx, CreateAccountParams{Name: "Bank", Category: "Wallet", InitialBalance: "10"})
	require.NoError(t, err)

	_, err = svc.SetAccountBalance(ctx, acct.ID, "ten")
	assert.True(t, model.IsValidation(err))

	_, err = svc.SetAccountBalance(ctx, 1, "5")
	assert.ErrorIs(t, err, model.ErrAccountNotFound)

	assert.Len(t, svc.Transactions(), 1, "failed calls record nothing")
	got, _ := svc.Account(acct.ID)
	assert.True(t, got.Balance.Equal(dec("10")))
}

func TestSetAccountBalance_SameValueRecordsZero(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore())
	acct, err := svc.CreateAccount(ctx, CreateAccountParams{Name: "Bank", Category: "Wallet", InitialBalance: "10"})
	require.NoError(t, err)

	adj, err := svc.SetAccountBalance(ctx, acct.ID, "10.00")
	require.NoError(t, err)
	assert.True(t, adj.Amount.IsZero())
}

func TestTransactionEditsLeaveBalances(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore())
	acct, err := svc.CreateAccount(ctx, CreateAccountParams{Name: "Bank", Category: "Wallet", InitialBalance: "10"})
	require.NoError(t, err)
	adj, err := svc.SetAccountBalance(ctx, acct.ID, "25")
	require.NoError(t, err)

	deleted, err := svc.DeleteTransaction(ctx, adj.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Len(t, svc.Transactions(), 1)

	deleted, err = svc.DeleteTransaction(ctx, adj.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, svc.ClearTransactions(ctx))
	assert.Empty(t, svc.Transactions())

	got, _ := svc.Account(acct.ID)
	assert.True(t, got.Balance.Equal(dec("25")))
}

func TestHistoryAndRecent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore())
	for _, name := range []string{"A", "B", "C", "D"} {
		_, err := svc.CreateAccount(ctx, CreateAccountParams{Name: name, Category: "Credit", InitialBalance: "1"})
		require.NoError(t, err)
	}

	history := svc.History()
	require.Len(t, history, 4)
	assert.Equal(t, "D", history[0].AccountName)
	assert.Equal(t, "A", history[3].AccountName)

	recent := svc.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "D", recent[0].AccountName)
	assert.Equal(t, "C", recent[1].AccountName)

	assert.Len(t, svc.Recent(10), 4)
	assert.Empty(t, svc.Recent(0))

	// History must not reorder the live log.
	assert.Equal(t, "A", svc.Transactions()[0].AccountName)
}

func TestAccountsByCategory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore())
	for _, p := range []CreateAccountParams{
		{Name: "Cash", Category: "Wallet", InitialBalance: "1"},
		{Name: "Car", Category: "Loan", InitialBalance: "2"},
		{Name: "Bank", Category: "Wallet", InitialBalance: "3"},
	} {
		_, err := svc.CreateAccount(ctx, p)
		require.NoError(t, err)
	}

	wallets := svc.AccountsByCategory(model.CategoryWallet)
	require.Len(t, wallets, 2)
	assert.Equal(t, "Cash", wallets[0].Name)
	assert.Equal(t, "Bank", wallets[1].Name)
	assert.Empty(t, svc.AccountsByCategory(model.CategoryInvestments))
}

func TestPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := newTestService(t, store)

	acct, err := svc.CreateAccount(ctx, CreateAccountParams{Name: "Cash", Category: "Wallet", InitialBalance: "99.95"})
	require.NoError(t, err)

	reloaded := newTestService(t, store)
	accounts := reloaded.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, acct.ID, accounts[0].ID)
	assert.True(t, accounts[0].Balance.Equal(dec("99.95")))
	assert.Len(t, reloaded.Transactions(), 1)

	// New IDs continue past what was loaded even if the clock has not moved.
	next, err := reloaded.CreateAccount(ctx, CreateAccountParams{Name: "Bank", Category: "Wallet", InitialBalance: "1"})
	require.NoError(t, err)
	assert.Greater(t, next.ID, reloaded.Transactions()[0].ID)
}

func TestLoad_CorruptDocumentIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(ctx, storage.KeyAccounts, []byte(`{"broken"`)))
	require.NoError(t, store.Put(ctx, storage.KeyTransactions, []byte(`[{"id":7,"kind":"Added","accountName":"X","amount":"5"}]`)))

	svc := newTestService(t, store)
	assert.Empty(t, svc.Accounts())
	require.Len(t, svc.Transactions(), 1)
	assert.Equal(t, model.ID(7), svc.Transactions()[0].ID)
}

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, failingStore{storage.NewMemoryStore()})

	acct, err := svc.CreateAccount(ctx, CreateAccountParams{Name: "Cash", Category: "Wallet", InitialBalance: "5"})
	require.NoError(t, err, "write failures are logged, not returned")
	_, ok := svc.Account(acct.ID)
	assert.True(t, ok)
	assert.Len(t, svc.Transactions(), 1)
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := newTestService(t, store)

	accounts := []model.Account{{ID: 9_000_000_000_000, Name: "Imported", Category: model.CategoryCredit, Balance: dec("3")}}
	require.NoError(t, svc.ReplaceAccounts(ctx, accounts))
	accounts[0].Name = "mutated"
	assert.Equal(t, "Imported", svc.Accounts()[0].Name, "input is copied")

	require.NoError(t, svc.ReplaceTransactions(ctx, nil))
	assert.NotNil(t, svc.Transactions())
	assert.Empty(t, svc.Transactions())

	acct, err := svc.CreateAccount(ctx, CreateAccountParams{Name: "New", Category: "Wallet", InitialBalance: "1"})
	require.NoError(t, err)
	assert.Greater(t, acct.ID, model.ID(9_000_000_000_000))

	reloaded := newTestService(t, store)
	assert.Len(t, reloaded.Accounts(), 2)
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore())
	_, err := svc.CreateAccount(ctx, CreateAccountParams{Name: "Cash", Category: "Wallet", InitialBalance: "1"})
	require.NoError(t, err)

	accounts := svc.Accounts()
	accounts[0].Name = "changed"
	assert.Equal(t, "Cash", svc.Accounts()[0].Name)
}
