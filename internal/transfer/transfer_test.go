package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montra-dev/montra/internal/ledger"
	"github.com/montra-dev/montra/internal/logging"
	"github.com/montra-dev/montra/internal/model"
	"github.com/montra-dev/montra/internal/storage"
)

var epoch = time.Date(2025, 2, 14, 12, 30, 0, 0, time.UTC)

func clock() time.Time { return epoch }

func newLedger(t *testing.T) *ledger.Service {
	t.Helper()
	svc := ledger.New(storage.NewMemoryStore(), ledger.WithClock(clock), ledger.WithLogger(logging.Discard()))
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func seed(t *testing.T, svc *ledger.Service) {
	t.Helper()
	ctx := context.Background()
	cash, err := svc.CreateAccount(ctx, ledger.CreateAccountParams{Name: "Cash", Category: "Wallet", InitialBalance: "1000", Icon: "💵"})
	require.NoError(t, err)
	_, err = svc.CreateAccount(ctx, ledger.CreateAccountParams{Name: "Car, \"used\"", Category: "Loan", InitialBalance: "-2500.75"})
	require.NoError(t, err)
	_, err = svc.SetAccountBalance(ctx, cash.ID, "1500.10")
	require.NoError(t, err)
}

func assertSameAccounts(t *testing.T, want, got []model.Account) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Category, got[i].Category)
		assert.True(t, want[i].Balance.Equal(got[i].Balance), "balance %s != %s", want[i].Balance, got[i].Balance)
		assert.Equal(t, want[i].Icon, got[i].Icon)
		assert.Equal(t, want[i].Color, got[i].Color)
	}
}

func assertSameTransactions(t *testing.T, want, got []model.Transaction) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Kind, got[i].Kind)
		assert.Equal(t, want[i].AccountName, got[i].AccountName)
		assert.Equal(t, want[i].AccountIcon, got[i].AccountIcon)
		assert.True(t, want[i].Amount.Equal(got[i].Amount), "amount %s != %s", want[i].Amount, got[i].Amount)
		assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp))
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newLedger(t)
	seed(t, src)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Export(src.Accounts(), src.Transactions(), epoch)))

	dst := newLedger(t)
	res, err := NewImporter(dst, logging.Discard()).Import(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, Result{Accounts: 2, Transactions: 3, ReplacedAccounts: true, ReplacedTransactions: true}, res)

	assertSameAccounts(t, src.Accounts(), dst.Accounts())
	assertSameTransactions(t, src.Transactions(), dst.Transactions())
}

func TestEncodeLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Export(nil, nil, epoch)))

	out := buf.String()
	assert.Contains(t, out, "\n  \"accounts\": []")
	assert.Contains(t, out, "\"transactions\": []")
	assert.Contains(t, out, "\"exportDate\": \"2025-02-14T12:30:00Z\"")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "montra-backup-1739536200000.json", FileName(epoch))
	assert.Equal(t, "montra-backup-1739536200000.csv", FileNameFor(TransactionsCSVFormat{}, epoch))
}

func TestImport_AccountsOnlyKeepsLog(t *testing.T) {
	svc := newLedger(t)
	seed(t, svc)
	before := svc.Transactions()

	doc := `{"accounts":[{"id":42,"name":"Broker","category":"Investments","balance":"300","icon":"💎","color":"#10b981"}]}`
	res, err := NewImporter(svc, logging.Discard()).Import(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	assert.True(t, res.ReplacedAccounts)
	assert.False(t, res.ReplacedTransactions)

	accounts := svc.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, "Broker", accounts[0].Name)
	assertSameTransactions(t, before, svc.Transactions())
}

func TestImport_NullCollectionIsAbsent(t *testing.T) {
	svc := newLedger(t)
	seed(t, svc)

	_, err := NewImporter(svc, logging.Discard()).Import(context.Background(),
		strings.NewReader(`{"accounts":null,"transactions":[]}`))
	require.NoError(t, err)
	assert.Len(t, svc.Accounts(), 2)
	assert.Empty(t, svc.Transactions())
}

func TestImport_LegacyBackup(t *testing.T) {
	legacy := `{
  "wallets": [
    {"id": 1700000000000, "name": "GCash", "type": "Wallet", "balance": 2500.5, "icon": "📱", "color": "#6366f1"}
  ],
  "transactions": [
    {"id": 1700000000001, "type": "Added", "walletName": "GCash", "icon": "📱", "amount": 2500.5, "date": "2023-11-14T22:13:20.000Z"}
  ],
  "exportDate": "2023-11-15T00:00:00.000Z"
}`
	doc, err := Decode(strings.NewReader(legacy))
	require.NoError(t, err)
	require.Len(t, doc.Accounts, 1)
	assert.Equal(t, model.CategoryWallet, doc.Accounts[0].Category)
	assert.True(t, doc.Accounts[0].Balance.Equal(decimal.RequireFromString("2500.5")))

	require.Len(t, doc.Transactions, 1)
	txn := doc.Transactions[0]
	assert.Equal(t, model.KindAdded, txn.Kind)
	assert.Equal(t, "GCash", txn.AccountName)
	assert.Equal(t, "📱", txn.AccountIcon)
	assert.Equal(t, 2023, txn.Timestamp.Year())
	assert.Empty(t, Validate(doc))
}

func TestImport_FormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{accounts:`},
		{"trailing data", `{"accounts":[]} junk`},
		{"second object", `{"accounts":[]}{"transactions":[]}`},
		{"array root", `[1,2,3]`},
		{"string root", `"hello"`},
		{"accounts not a list", `{"accounts":{"id":1}}`},
		{"entry not an object", `{"accounts":[5]}`},
		{"bad balance", `{"accounts":[{"id":1,"name":"A","category":"Wallet","balance":"lots"}]}`},
		{"unknown category", `{"accounts":[{"id":1,"name":"A","category":"Savings","balance":"1"}]}`},
		{"missing name", `{"accounts":[{"id":1,"category":"Wallet","balance":"1"}]}`},
		{"duplicate ids", `{"accounts":[{"id":1,"name":"A","category":"Wallet","balance":"1"},{"id":1,"name":"B","category":"Wallet","balance":"1"}]}`},
		{"unknown kind", `{"transactions":[{"id":1,"kind":"Transfer","amount":"1"}]}`},
		{"missing transaction id", `{"transactions":[{"kind":"Added","amount":"1"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newLedger(t)
			seed(t, svc)
			accounts, txns := svc.Accounts(), svc.Transactions()

			_, err := NewImporter(svc, logging.Discard()).Import(context.Background(), strings.NewReader(tt.input))
			var fe *FormatError
			require.ErrorAs(t, err, &fe)

			assertSameAccounts(t, accounts, svc.Accounts())
			assertSameTransactions(t, txns, svc.Transactions())
		})
	}
}

func TestImport_InvalidTransactionsBlockValidAccounts(t *testing.T) {
	svc := newLedger(t)
	seed(t, svc)

	doc := `{"accounts":[],"transactions":[{"id":1,"kind":"Bogus"}]}`
	_, err := NewImporter(svc, logging.Discard()).Import(context.Background(), strings.NewReader(doc))
	require.Error(t, err)
	assert.Len(t, svc.Accounts(), 2, "no partial import")
}

func TestValidate_ReportsEveryIssue(t *testing.T) {
	doc := Document{
		Accounts: []model.Account{
			{ID: 0, Name: "", Category: "Nope"},
		},
		Transactions: []model.Transaction{
			{ID: 3, Kind: model.KindAdded},
			{ID: 3, Kind: "x"},
		},
	}
	issues := Validate(doc)
	require.Len(t, issues, 5)
	assert.Equal(t, "accounts[0]: missing id", issues[0].Error())
	assert.Equal(t, "transactions", issues[3].Collection)
	assert.Equal(t, 1, issues[3].Index)
}

// failingTarget rejects account replacement.
type failingTarget struct{ *ledger.Service }

func (failingTarget) ReplaceAccounts(context.Context, []model.Account) error {
	return errors.New("boom")
}

func TestApply_TargetError(t *testing.T) {
	im := NewImporter(failingTarget{newLedger(t)}, logging.Discard())
	_, err := im.Apply(context.Background(), Document{Accounts: []model.Account{}})
	assert.ErrorContains(t, err, "replacing accounts")
}

func TestTransactionsCSVRoundTrip(t *testing.T) {
	svc := newLedger(t)
	seed(t, svc)

	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsCSV(&buf, svc.Transactions()))
	assert.True(t, strings.HasPrefix(buf.String(), TransactionsHeader+"\n"))

	got, err := ReadTransactionsCSV(&buf)
	require.NoError(t, err)
	assertSameTransactions(t, svc.Transactions(), got)
}

func TestAccountsCSVRoundTrip(t *testing.T) {
	svc := newLedger(t)
	seed(t, svc)

	var buf bytes.Buffer
	require.NoError(t, WriteAccountsCSV(&buf, svc.Accounts()))

	got, err := ReadAccountsCSV(&buf)
	require.NoError(t, err)
	assertSameAccounts(t, svc.Accounts(), got)
}

func TestCSV_KeepsFullPrecision(t *testing.T) {
	accounts := []model.Account{
		{ID: 1, Name: "Broker", Category: model.CategoryInvestments, Balance: decimal.RequireFromString("0.0045"), Icon: "💎", Color: "#10b981"},
	}
	txns := []model.Transaction{
		{ID: 2, Kind: model.KindBalanceAdjustment, AccountName: "Broker", Amount: decimal.RequireFromString("-12.3456789"), Timestamp: epoch},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAccountsCSV(&buf, accounts))
	assert.Contains(t, buf.String(), ",0.0045,")
	gotAccounts, err := ReadAccountsCSV(&buf)
	require.NoError(t, err)
	assertSameAccounts(t, accounts, gotAccounts)

	buf.Reset()
	require.NoError(t, WriteTransactionsCSV(&buf, txns))
	assert.Contains(t, buf.String(), ",-12.3456789,")
	gotTxns, err := ReadTransactionsCSV(&buf)
	require.NoError(t, err)
	assertSameTransactions(t, txns, gotTxns)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadTransactionsCSV(strings.NewReader(TransactionsHeader + "\nx,Added,Cash,,1,2025-01-01T00:00:00Z\n"))
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, err.Error(), "row 2")

	_, err = ReadAccountsCSV(strings.NewReader("id,name\n1,A\n"))
	require.ErrorAs(t, err, &fe)

	got, err := ReadAccountsCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"accounts-csv", "csv", "json"}, r.Names())
	assert.NotNil(t, r.Get("JSON"))
	assert.Nil(t, r.Get("xml"))

	_, err := r.Lookup("xml")
	assert.ErrorContains(t, err, "accounts-csv, csv, json")

	assert.Panics(t, func() { r.Register(JSONFormat{}) })
}

func TestRegistry_CSVFormatsCarryOneCollection(t *testing.T) {
	svc := newLedger(t)
	seed(t, svc)
	doc := Export(svc.Accounts(), svc.Transactions(), epoch)
	r := DefaultRegistry()

	var buf bytes.Buffer
	require.NoError(t, r.Get("csv").Write(&buf, doc))
	got, err := r.Get("csv").Read(&buf)
	require.NoError(t, err)
	assert.Nil(t, got.Accounts)
	assert.Len(t, got.Transactions, 3)

	buf.Reset()
	require.NoError(t, r.Get("accounts-csv").Write(&buf, doc))
	got, err = r.Get("accounts-csv").Read(&buf)
	require.NoError(t, err)
	assert.Nil(t, got.Transactions)
	assert.Len(t, got.Accounts, 2)

	buf.Reset()
	require.NoError(t, r.Get("json").Write(&buf, doc))
	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Contains(t, raw, "exportDate")
}
