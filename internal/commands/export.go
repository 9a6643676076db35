package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/montra-dev/montra/internal/transfer"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of accounts and transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := transfer.DefaultRegistry().Lookup(format)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(_ context.Context, a *app) error {
				now := a.now()
				doc := transfer.Export(a.ledger.Accounts(), a.ledger.Transactions(), now)

				if outPath == "-" {
					return f.Write(out(cmd), doc)
				}

				path := outPath
				if path == "" {
					path = transfer.FileNameFor(f, now)
				}
				if err := writeFile(path, func(file *os.File) error { return f.Write(file, doc) }); err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Exported %d accounts and %d transactions to %s\n",
					len(doc.Accounts), len(doc.Transactions), path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "json, csv (transactions) or accounts-csv")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file, - for stdout (default montra-backup-<millis>.<ext>)")

	return cmd
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace accounts and/or transactions from a backup",
		Long: "Replace accounts and/or transactions from a backup.\n\n" +
			"Each collection present in the file replaces the current one; collections\n" +
			"missing from the file are left as they are. Nothing changes if the file is invalid.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := format
			if name == "" {
				name = formatForPath(args[0])
			}
			f, err := transfer.DefaultRegistry().Lookup(name)
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening backup: %w", err)
			}
			defer file.Close()

			doc, err := f.Read(file)
			if err != nil {
				return err
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				res, err := transfer.NewImporter(a.ledger, a.log).Apply(ctx, doc)
				if err != nil {
					return err
				}
				if res.ReplacedAccounts {
					fmt.Fprintf(out(cmd), "Imported %d accounts\n", res.Accounts)
				}
				if res.ReplacedTransactions {
					fmt.Fprintf(out(cmd), "Imported %d transactions\n", res.Transactions)
				}
				if !res.ReplacedAccounts && !res.ReplacedTransactions {
					fmt.Fprintln(out(cmd), "Nothing to import.")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "json, csv or accounts-csv (default from file extension)")

	return cmd
}

func formatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return transfer.TransactionsCSVFormat{}.Name()
	}
	return transfer.JSONFormat{}.Name()
}

func writeFile(path string, write func(*os.File) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
