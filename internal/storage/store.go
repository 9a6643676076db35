package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Document keys. The names match the keys the web app wrote to local storage.
// Its documents use older field names; callers decode them through the
// legacy package, which maps those names when loading.
const (
	KeyAccounts     = "montra_wallets"
	KeyTransactions = "montra_transactions"
	KeySnapshots    = "montra_savedStates"
)

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("document not found")

// Store is a durable key-value store for JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// PersistenceError describes a failed read or write of a document.
type PersistenceError struct {
	Op  string // "load" or "save"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// LoadJSON decodes the document stored under key into v. It reports false,
// with no error, when the key does not exist.
func LoadJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	return LoadDocument(ctx, s, key, func(data []byte) error {
		return json.Unmarshal(data, v)
	})
}

// LoadDocument passes the document stored under key to decode. It reports
// false, with no error, when the key does not exist.
func LoadDocument(ctx context.Context, s Store, key string, decode func([]byte) error) (bool, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &PersistenceError{Op: "load", Key: key, Err: err}
	}
	if err := decode(data); err != nil {
		return false, &PersistenceError{Op: "load", Key: key, Err: fmt.Errorf("decoding: %w", err)}
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &PersistenceError{Op: "save", Key: key, Err: fmt.Errorf("encoding: %w", err)}
	}
	if err := s.Put(ctx, key, data); err != nil {
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}
	return nil
}

// DocumentStat is the stored size of one document.
type DocumentStat struct {
	Key   string
	Bytes int
}

// Stats returns the size of every stored document, ordered by key.
func Stats(ctx context.Context, s Store) ([]DocumentStat, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	stats := make([]DocumentStat, 0, len(keys))
	for _, k := range keys {
		data, err := s.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", k, err)
		}
		stats = append(stats, DocumentStat{Key: k, Bytes: len(data)})
	}
	return stats, nil
}
