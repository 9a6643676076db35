package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/montra-dev/montra/internal/logging"
)

// Backend selects a Store implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// IsValid reports whether b names a known backend.
func (b Backend) IsValid() bool {
	switch b {
	case BackendFile, BackendSQLite, BackendMemory:
		return true
	}
	return false
}

// Options configures Open.
type Options struct {
	Backend Backend
	// Dir is the project data directory. The file backend keeps its
	// documents in Dir/store.
	Dir string
	// SQLitePath is resolved against Dir when relative.
	SQLitePath string
}

// DefaultSQLitePath is used when the sqlite backend is chosen without a path.
const DefaultSQLitePath = "montra.db"

// Open creates the Store selected by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	log := logging.Component(logging.FromContext(ctx), logging.ComponentStorage)

	switch opts.Backend {
	case BackendFile, "":
		dir := filepath.Join(opts.Dir, "store")
		log.Debug("opening file store", "dir", dir)
		return NewFileStore(dir)
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = DefaultSQLitePath
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.Dir, path)
		}
		store, err := NewSQLiteStore(ctx, path)
		if err != nil {
			return nil, err
		}
		log.Debug("opened sqlite store", "path", path, "schema_version", store.SchemaVersion())
		return store, nil
	case BackendMemory:
		log.Debug("opening memory store")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", opts.Backend)
	}
}
