package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montra-dev/montra/internal/model"
)

const timeLayout = "2006-01-02 15:04"

func newTxCommand(opts *rootOptions) *cobra.Command {
	txCmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Inspect and edit the transaction log",
	}
	txCmd.AddCommand(
		newTxListCommand(opts),
		newTxDeleteCommand(opts),
		newTxClearCommand(opts),
	)
	return txCmd
}

func newTxListCommand(opts *rootOptions) *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(_ context.Context, a *app) error {
				txns := a.ledger.History()
				if recent > 0 {
					txns = a.ledger.Recent(recent)
				}
				if len(txns) == 0 {
					fmt.Fprintln(out(cmd), "No transactions.")
					return nil
				}

				m := a.money(cmd)
				t := newTable("ID", "When", "Kind", "Account", "Amount")
				for _, txn := range txns {
					t.Row(
						txn.ID.String(),
						txn.Timestamp.Local().Format(timeLayout),
						string(txn.Kind),
						txn.AccountIcon+" "+txn.AccountName,
						m.Signed(txn.Amount),
					)
				}
				fmt.Fprintln(out(cmd), t.Render())
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 0, "only show the N latest transactions")
	cmd.Flags().Bool("hide-balances", false, "mask amounts")

	return cmd
}

func newTxDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove one transaction from the log (balances are unchanged)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txnID, err := model.ParseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				deleted, err := a.ledger.DeleteTransaction(ctx, txnID)
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("transaction %s: %w", txnID, model.ErrTransactionNotFound)
				}
				fmt.Fprintf(out(cmd), "Deleted transaction %s\n", txnID)
				return nil
			})
		},
	}
}

func newTxClearCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the transaction log (balances are unchanged)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				n := len(a.ledger.Transactions())
				if err := a.ledger.ClearTransactions(ctx); err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Cleared %d transactions\n", n)
				return nil
			})
		},
	}
}
