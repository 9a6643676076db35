package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/montra-dev/montra/internal/analytics"
	"github.com/montra-dev/montra/internal/model"
)

func newSnapshotCommand(opts *rootOptions) *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snapshots"},
		Short:   "Save and restore named copies of your data",
	}
	snapshotCmd.AddCommand(
		newSnapshotSaveCommand(opts),
		newSnapshotListCommand(opts),
		newSnapshotRestoreCommand(opts),
		newSnapshotDeleteCommand(opts),
	)
	return snapshotCmd
}

func newSnapshotSaveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name>",
		Short: "Save the current accounts and transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				snap, err := a.snapshots.Save(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Saved snapshot %s %q (%d accounts, %d transactions)\n",
					snap.ID, snap.Name, len(snap.Accounts), len(snap.Transactions))
				return nil
			})
		},
	}
}

func newSnapshotListCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(_ context.Context, a *app) error {
				snaps := a.snapshots.List()
				if len(snaps) == 0 {
					fmt.Fprintln(out(cmd), "No snapshots.")
					return nil
				}

				m := a.money(cmd)
				t := newTable("ID", "Name", "Saved", "Accounts", "Transactions", "Net worth")
				for _, s := range snaps {
					txns := "-"
					if s.HasTransactions() {
						txns = strconv.Itoa(len(s.Transactions))
					}
					t.Row(
						s.ID.String(),
						s.Name,
						s.Timestamp.Local().Format(timeLayout),
						strconv.Itoa(len(s.Accounts)),
						txns,
						m.Format(analytics.TotalBalance(s.Accounts)),
					)
				}
				fmt.Fprintln(out(cmd), t.Render())
				return nil
			})
		},
	}
	cmd.Flags().Bool("hide-balances", false, "mask amounts")
	return cmd
}

func newSnapshotRestoreCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Replace the current data with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshotID, err := model.ParseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				snap, err := a.snapshots.Restore(ctx, snapshotID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Restored snapshot %s %q (%d accounts)\n", snap.ID, snap.Name, len(snap.Accounts))
				if !snap.HasTransactions() {
					fmt.Fprintln(out(cmd), "Snapshot has no transaction copy; the transaction log was kept.")
				}
				return nil
			})
		},
	}
}

func newSnapshotDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshotID, err := model.ParseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				deleted, err := a.snapshots.Delete(ctx, snapshotID)
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("snapshot %s: %w", snapshotID, model.ErrSnapshotNotFound)
				}
				fmt.Fprintf(out(cmd), "Deleted snapshot %s\n", snapshotID)
				return nil
			})
		},
	}
}
