package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/montra-dev/montra/internal/config"
	"github.com/montra-dev/montra/internal/ledger"
	"github.com/montra-dev/montra/internal/logging"
	"github.com/montra-dev/montra/internal/snapshot"
	"github.com/montra-dev/montra/internal/storage"
)

// app is the state a command works on: resolved config, an open store and
// the loaded ledger and snapshots.
type app struct {
	dir       string
	cfg       *config.Config
	log       *slog.Logger
	store     storage.Store
	ledger    *ledger.Service
	snapshots *snapshot.Manager
	now       func() time.Time
}

func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dir, err := filepath.Abs(opts.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Resolve(dir, opts.configPath)
	if err != nil {
		return nil, err
	}

	log := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	ctx = logging.WithLogger(ctx, log)
	store, err := storage.Open(ctx, storage.Options{
		Backend:    cfg.Storage.Backend,
		Dir:        dir,
		SQLitePath: cfg.Storage.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}

	a := &app{dir: dir, cfg: cfg, log: log, store: store, now: time.Now}
	a.ledger = ledger.New(store, ledger.WithClock(a.now), ledger.WithLogger(log))
	if err := a.ledger.Load(ctx); err != nil {
		store.Close()
		return nil, err
	}
	a.snapshots = snapshot.NewManager(a.ledger, store, a.now, log)
	if err := a.snapshots.Load(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() error {
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("closing storage: %w", err)
	}
	return nil
}

// withApp opens the app, runs fn and closes the app again.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) (err error) {
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logging.Component(a.log, logging.ComponentCLI).Debug("running command",
		"command", cmd.CommandPath(), "dir", a.dir, "backend", a.cfg.Storage.Backend)
	return fn(logging.WithLogger(ctx, a.log), a)
}

// hideBalances resolves the --hide-balances flag against the config default.
func (a *app) hideBalances(cmd *cobra.Command) bool {
	if f := cmd.Flags().Lookup("hide-balances"); f != nil && f.Changed {
		hide, _ := cmd.Flags().GetBool("hide-balances")
		return hide
	}
	return a.cfg.Display.HideBalances
}

func (a *app) money(cmd *cobra.Command) moneyFormatter {
	return newMoneyFormatter(a.cfg.Display.Currency, a.hideBalances(cmd))
}
