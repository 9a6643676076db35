package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/montra-dev/montra/internal/storage"
)

func newStorageCommand(opts *rootOptions) *cobra.Command {
	storageCmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect persisted documents",
	}
	storageCmd.AddCommand(newStorageStatsCommand(opts))
	return storageCmd
}

func newStorageStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show document sizes and record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				stats, err := storage.Stats(ctx, a.store)
				if err != nil {
					return err
				}

				fmt.Fprintf(out(cmd), "Backend: %s\n", a.cfg.Storage.Backend)
				fmt.Fprintf(out(cmd), "Accounts: %d, transactions: %d, snapshots: %d\n",
					len(a.ledger.Accounts()), len(a.ledger.Transactions()), len(a.snapshots.List()))

				t := newTable("Key", "Bytes")
				total := 0
				for _, s := range stats {
					t.Row(s.Key, strconv.Itoa(s.Bytes))
					total += s.Bytes
				}
				t.Row("total", strconv.Itoa(total))
				fmt.Fprintln(out(cmd), t.Render())
				return nil
			})
		},
	}
}
