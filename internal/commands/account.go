package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montra-dev/montra/internal/analytics"
	"github.com/montra-dev/montra/internal/ledger"
	"github.com/montra-dev/montra/internal/model"
)

func newAccountCommand(opts *rootOptions) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"accounts"},
		Short:   "Manage accounts",
	}
	accountCmd.AddCommand(
		newAccountAddCommand(opts),
		newAccountListCommand(opts),
		newAccountSetBalanceCommand(opts),
		newAccountDeleteCommand(opts),
	)
	return accountCmd
}

func newAccountAddCommand(opts *rootOptions) *cobra.Command {
	var params ledger.CreateAccountParams

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				acct, err := a.ledger.CreateAccount(ctx, params)
				if err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Created account %s: %s %s (%s) %s\n",
					acct.ID, acct.Icon, acct.Name, acct.Category, a.money(cmd).Format(acct.Balance))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&params.Name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&params.Category, "category", string(model.CategoryWallet), "Wallet, Loan, Credit or Investments")
	cmd.Flags().StringVar(&params.InitialBalance, "balance", "", "initial balance (required)")
	_ = cmd.MarkFlagRequired("balance")
	cmd.Flags().StringVar(&params.Icon, "icon", model.DefaultIcon, "icon glyph")

	return cmd
}

func newAccountListCommand(opts *rootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := analytics.ParseFilter(category)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(_ context.Context, a *app) error {
				accounts := analytics.FilterByCategory(a.ledger.Accounts(), filter)
				if len(accounts) == 0 {
					fmt.Fprintln(out(cmd), "No accounts.")
					return nil
				}

				m := a.money(cmd)
				t := newTable("ID", "", "Name", "Category", "Balance")
				for _, acct := range accounts {
					t.Row(acct.ID.String(), acct.Icon, acct.Name, string(acct.Category), m.Format(acct.Balance))
				}
				fmt.Fprintln(out(cmd), t.Render())
				fmt.Fprintf(out(cmd), "Total: %s\n", m.Format(analytics.TotalBalance(accounts)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", string(analytics.FilterAll), "only show one category")
	cmd.Flags().Bool("hide-balances", false, "mask amounts")

	return cmd
}

func newAccountSetBalanceCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-balance <id> <amount>",
		Short: "Overwrite an account balance, recording the difference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := model.ParseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				txn, err := a.ledger.SetAccountBalance(ctx, accountID, args[1])
				if err != nil {
					return err
				}
				acct, _ := a.ledger.Account(accountID)
				m := a.money(cmd)
				fmt.Fprintf(out(cmd), "%s %s balance is now %s (%s)\n",
					acct.Icon, acct.Name, m.Format(acct.Balance), m.Signed(txn.Amount))
				return nil
			})
		},
	}
}

func newAccountDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := model.ParseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				acct, ok := a.ledger.Account(accountID)
				if !ok {
					return fmt.Errorf("account %s: %w", accountID, model.ErrAccountNotFound)
				}
				if _, err := a.ledger.DeleteAccount(ctx, accountID); err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Deleted account %s: %s %s\n", acct.ID, acct.Icon, acct.Name)
				return nil
			})
		},
	}
}
