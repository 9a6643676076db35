package transfer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/montra-dev/montra/internal/model"
)

// Column layouts for the CSV exports.
const (
	TransactionsHeader = "id,kind,account_name,account_icon,amount,timestamp"
	AccountsHeader     = "id,name,category,balance,icon,color"
)

const (
	colID = 0

	colTxnKind      = 1
	colTxnName      = 2
	colTxnIcon      = 3
	colTxnAmount    = 4
	colTxnTimestamp = 5

	colAcctName     = 1
	colAcctCategory = 2
	colAcctBalance  = 3
	colAcctIcon     = 4
	colAcctColor    = 5

	numFields = 6
)

// WriteTransactionsCSV writes the log with a header row.
func WriteTransactionsCSV(w io.Writer, txns []model.Transaction) error {
	rows := make([][]string, len(txns))
	for i, t := range txns {
		rows[i] = MarshalTransaction(t)
	}
	return writeCSV(w, TransactionsHeader, rows)
}

// ReadTransactionsCSV reads a log written by WriteTransactionsCSV.
func ReadTransactionsCSV(r io.Reader) ([]model.Transaction, error) {
	return readCSV(r, "transactions", UnmarshalTransaction)
}

// WriteAccountsCSV writes accounts with a header row.
func WriteAccountsCSV(w io.Writer, accounts []model.Account) error {
	rows := make([][]string, len(accounts))
	for i, a := range accounts {
		rows[i] = MarshalAccount(a)
	}
	return writeCSV(w, AccountsHeader, rows)
}

// ReadAccountsCSV reads accounts written by WriteAccountsCSV.
func ReadAccountsCSV(r io.Reader) ([]model.Account, error) {
	return readCSV(r, "accounts", UnmarshalAccount)
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = t.ID.String()
	row[colTxnKind] = string(t.Kind)
	row[colTxnName] = t.AccountName
	row[colTxnIcon] = t.AccountIcon
	row[colTxnAmount] = t.Amount.String()
	row[colTxnTimestamp] = t.Timestamp.UTC().Format(time.RFC3339Nano)
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	id, err := model.ParseID(record[colID])
	if err != nil {
		return model.Transaction{}, err
	}
	amount, err := decimal.NewFromString(record[colTxnAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colTxnAmount], err)
	}
	ts, err := time.Parse(time.RFC3339Nano, record[colTxnTimestamp])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing timestamp %q: %w", record[colTxnTimestamp], err)
	}
	return model.Transaction{
		ID:          id,
		Kind:        model.TransactionKind(record[colTxnKind]),
		AccountName: record[colTxnName],
		AccountIcon: record[colTxnIcon],
		Amount:      amount,
		Timestamp:   ts,
	}, nil
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(a model.Account) []string {
	row := make([]string, numFields)
	row[colID] = a.ID.String()
	row[colAcctName] = a.Name
	row[colAcctCategory] = string(a.Category)
	row[colAcctBalance] = a.Balance.String()
	row[colAcctIcon] = a.Icon
	row[colAcctColor] = a.Color
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	id, err := model.ParseID(record[colID])
	if err != nil {
		return model.Account{}, err
	}
	balance, err := decimal.NewFromString(record[colAcctBalance])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing balance %q: %w", record[colAcctBalance], err)
	}
	return model.Account{
		ID:       id,
		Name:     record[colAcctName],
		Category: model.Category(record[colAcctCategory]),
		Balance:  balance,
		Icon:     record[colAcctIcon],
		Color:    record[colAcctColor],
	}, nil
}

func writeCSV(w io.Writer, header string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// readCSV skips the header and converts every other row. An empty input
// yields an empty, non-nil slice.
func readCSV[T any](r io.Reader, name string, unmarshal func([]string) (T, error)) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &FormatError{Reason: "reading " + name + " CSV", Err: err}
	}

	out := []T{}
	if len(records) == 0 {
		return out, nil
	}
	for i, rec := range records[1:] {
		item, err := unmarshal(rec)
		if err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("%s row %d", name, i+2), Err: err}
		}
		out = append(out, item)
	}
	return out, nil
}
