package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"

	"github.com/montra-dev/montra/internal/legacy"
)

// Decode parses a JSON backup. Collections are looked up by path; a missing
// or null collection decodes as nil. Backups written by the web app keep
// their accounts under "wallets" and are mapped to the current field names.
func Decode(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("reading backup: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return Document{}, &FormatError{Reason: "not valid JSON", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Document{}, &FormatError{Reason: "unexpected data after the backup object"}
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return Document{}, &FormatError{Reason: "top level is not an object"}
	}

	var doc Document

	accounts, err := collection(obj, "$.accounts", "$.wallets")
	if err != nil {
		return Document{}, err
	}
	legacy.NormalizeAccounts(accounts)
	if err := decodeInto(accounts, &doc.Accounts, "accounts"); err != nil {
		return Document{}, err
	}

	transactions, err := collection(obj, "$.transactions", "")
	if err != nil {
		return Document{}, err
	}
	legacy.NormalizeTransactions(transactions)
	if err := decodeInto(transactions, &doc.Transactions, "transactions"); err != nil {
		return Document{}, err
	}

	return doc, nil
}

// collection returns the list at path, or at fallback if path is missing.
// A missing or null list is nil.
func collection(obj map[string]any, path, fallback string) ([]any, error) {
	val, err := jsonpath.Get(path, obj)
	if err != nil && fallback != "" {
		val, err = jsonpath.Get(fallback, obj)
	}
	if err != nil || val == nil {
		// jsonpath reports a missing key as an error.
		return nil, nil
	}
	list, ok := val.([]any)
	if !ok {
		return nil, &FormatError{Reason: fmt.Sprintf("%s is not a list", path)}
	}
	return list, nil
}

func decodeInto[T any](list []any, out *[]T, name string) error {
	if err := legacy.Convert(list, out); err != nil {
		return &FormatError{Reason: fmt.Sprintf("malformed %s", name), Err: err}
	}
	return nil
}
