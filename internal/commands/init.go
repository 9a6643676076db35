package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/montra-dev/montra/internal/config"
	"github.com/montra-dev/montra/internal/storage"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	var backend string
	var currency string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new montra data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.dir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg := config.Default()
			cfg.Storage.Backend = storage.Backend(strings.ToLower(backend))
			cfg.Display.Currency = strings.ToUpper(currency)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runInit(cmd, absDir, cfg, force)
		},
	}

	cmd.Flags().StringVar(&backend, "backend", string(storage.BackendFile), "storage backend (file, sqlite, memory)")
	cmd.Flags().StringVar(&currency, "currency", "PHP", "display currency (ISO 4217 code)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing montra.yaml")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, cfg *config.Config, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	store, err := storage.Open(cmd.Context(), storage.Options{
		Backend:    cfg.Storage.Backend,
		Dir:        dir,
		SQLitePath: cfg.Storage.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	// Seed empty documents, leaving any existing data alone.
	for _, key := range []string{storage.KeyAccounts, storage.KeyTransactions, storage.KeySnapshots} {
		if _, err := store.Get(cmd.Context(), key); err == nil {
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("reading %s: %w", key, err)
		}
		if err := store.Put(cmd.Context(), key, []byte("[]")); err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized montra data directory at %s (%s storage)\n", dir, cfg.Storage.Backend)
	return nil
}

// out is a short alias used by the commands below.
func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
