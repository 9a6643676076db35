package transfer

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// Format reads and writes one backup file format.
type Format interface {
	Name() string
	Extension() string
	Write(w io.Writer, doc Document) error
	// Read returns only the collections the format carries; the rest are nil.
	Read(r io.Reader) (Document, error)
}

// Registry holds named formats.
type Registry struct {
	formats map[string]Format
}

// NewRegistry creates an empty format registry.
func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]Format)}
}

// Register adds a format. Panics on duplicate name.
func (r *Registry) Register(f Format) {
	key := strings.ToLower(f.Name())
	if _, ok := r.formats[key]; ok {
		panic("duplicate backup format: " + key)
	}
	r.formats[key] = f
}

// Get returns the format called name, or nil.
func (r *Registry) Get(name string) Format {
	return r.formats[strings.ToLower(name)]
}

// Lookup is Get with an error naming the known formats.
func (r *Registry) Lookup(name string) (Format, error) {
	if f := r.Get(name); f != nil {
		return f, nil
	}
	return nil, fmt.Errorf("unknown format %q (known: %s)", name, strings.Join(r.Names(), ", "))
}

// Names returns the registered format names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.formats))
	for k := range r.formats {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// DefaultRegistry returns a registry with all built-in formats.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(JSONFormat{})
	r.Register(TransactionsCSVFormat{})
	r.Register(AccountsCSVFormat{})
	return r
}

// JSONFormat is the full backup document.
type JSONFormat struct{}

func (JSONFormat) Name() string                          { return "json" }
func (JSONFormat) Extension() string                     { return ".json" }
func (JSONFormat) Write(w io.Writer, doc Document) error { return Encode(w, doc) }
func (JSONFormat) Read(r io.Reader) (Document, error)    { return Decode(r) }

// TransactionsCSVFormat carries the transaction log only.
type TransactionsCSVFormat struct{}

func (TransactionsCSVFormat) Name() string      { return "csv" }
func (TransactionsCSVFormat) Extension() string { return ".csv" }

func (TransactionsCSVFormat) Write(w io.Writer, doc Document) error {
	return WriteTransactionsCSV(w, doc.Transactions)
}

func (TransactionsCSVFormat) Read(r io.Reader) (Document, error) {
	txns, err := ReadTransactionsCSV(r)
	if err != nil {
		return Document{}, err
	}
	return Document{Transactions: txns}, nil
}

// AccountsCSVFormat carries the accounts only.
type AccountsCSVFormat struct{}

func (AccountsCSVFormat) Name() string      { return "accounts-csv" }
func (AccountsCSVFormat) Extension() string { return ".csv" }

func (AccountsCSVFormat) Write(w io.Writer, doc Document) error {
	return WriteAccountsCSV(w, doc.Accounts)
}

func (AccountsCSVFormat) Read(r io.Reader) (Document, error) {
	accounts, err := ReadAccountsCSV(r)
	if err != nil {
		return Document{}, err
	}
	return Document{Accounts: accounts}, nil
}
