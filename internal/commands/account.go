package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bankfeed-dev/bankfeed/internal/model"
	"github.com/bankfeed-dev/bankfeed/internal/store"
)

func newAccountCommand(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	cmd.AddCommand(newAccountAddCommand(dataDir))
	cmd.AddCommand(newAccountListCommand(dataDir))

	return cmd
}

func newAccountAddCommand(dataDir *string) *cobra.Command {
	var bank string
	var initialBalance string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			initial, err := decimal.NewFromString(initialBalance)
			if err != nil {
				return fmt.Errorf("parsing initial balance %q: %w", initialBalance, err)
			}

			st := store.NewCSVStore(*dataDir)
			accounts, err := st.Accounts()
			if err != nil {
				return err
			}

			var nextID int64 = 1
			for _, a := range accounts {
				if a.ID >= nextID {
					nextID = a.ID + 1
				}
			}

			accounts = append(accounts, model.Account{
				ID:             nextID,
				Name:           args[0],
				Bank:           bank,
				InitialBalance: initial,
				CurrentBalance: initial,
			})
			if err := st.SaveAccounts(accounts); err != nil {
				return err
			}

			fmt.Printf("Added account %d: %s\n", nextID, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&bank, "bank", "", "bank name")
	cmd.Flags().StringVar(&initialBalance, "initial-balance", "0", "starting balance")

	return cmd
}

func newAccountListCommand(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := store.NewCSVStore(*dataDir)
			accounts, err := st.Accounts()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tBANK\tBALANCE")
			for _, a := range accounts {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", a.ID, a.Name, a.Bank, a.CurrentBalance.StringFixed(2))
			}
			return w.Flush()
		},
	}
}
