package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/montra-dev/montra/internal/analytics"
)

const barWidth = 24

func newAnalyticsCommand(opts *rootOptions) *cobra.Command {
	var filterName string

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show net worth and how it is distributed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := analytics.ParseFilter(filterName)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(_ context.Context, a *app) error {
				s := analytics.Summarize(a.ledger.Accounts(), filter)
				m := a.money(cmd)
				w := out(cmd)

				fmt.Fprintf(w, "%s %s\n\n", headerStyle.Render("Net worth:"), m.Format(s.NetWorth))

				subs := newTable("Category", "Accounts", "Total")
				for _, sub := range s.Subtotals {
					subs.Row(string(sub.Category), strconv.Itoa(sub.Count), m.Format(sub.Total))
				}
				fmt.Fprintln(w, subs.Render())

				fmt.Fprintf(w, "\n%s %s\n", headerStyle.Render(fmt.Sprintf("Distribution (%s):", s.Filter)), m.Format(s.Total))
				if len(s.Slices) == 0 {
					fmt.Fprintln(w, mutedStyle.Render("No accounts in this view."))
					return nil
				}
				for _, slice := range s.Slices {
					fmt.Fprintf(w, "  %-20s %s %6s%%  %s\n",
						slice.Name, bar(slice.Percent, slice.Color, barWidth), slice.Percent.StringFixed(1), m.Format(slice.Balance))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filterName, "filter", string(analytics.FilterAll), "All, Wallets, Loans, Credit or Investments")
	cmd.Flags().Bool("hide-balances", false, "mask amounts")

	return cmd
}
