package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			// openLedger already migrated; reaching here means success.
			printf("schema up to date (%s)", env.db.Driver())
			return nil
		},
	}
}

func newInitAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-account <holder-id> <display-name>",
		Short: "Create an account with starting balances for every enabled currency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.service.InitializeAccount(cmd.Context(), args[0], args[1]); err != nil {
				return renderError(err)
			}
			printf("account %s initialized", args[0])
			return nil
		},
	}
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <holder-id> <display-name>",
		Short: "Update an account's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			changed, err := env.service.SyncDisplayName(cmd.Context(), args[0], args[1])
			if err != nil {
				return renderError(err)
			}
			if !changed {
				printf("no account %s", args[0])
				return nil
			}
			printf("account %s renamed to %s", args[0], args[1])
			return nil
		},
	}
}

func newBalanceCmd() *cobra.Command {
	var currencyID string

	cmd := &cobra.Command{
		Use:   "balance <holder-id>",
		Short: "Show one balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			balance, ok, err := env.service.GetBalance(cmd.Context(), args[0], currencyRef(currencyID))
			if err != nil {
				return renderError(err)
			}
			if !ok {
				printf("no balance for %s", args[0])
				return nil
			}
			printf("%s", strconv.FormatInt(balance, 10))
			return nil
		},
	}
	cmd.Flags().StringVar(&currencyID, "currency", "", "currency id (default currency when omitted)")
	return cmd
}

func newBalancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances <holder-id>",
		Short: "Show all balances for a holder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			balances, err := env.service.ListBalances(cmd.Context(), args[0])
			if err != nil {
				return renderError(err)
			}
			if len(balances) == 0 {
				printf("no balances for %s", args[0])
				return nil
			}
			for _, b := range balances {
				printf("%-12s %d", b.CurrencyID, b.Amount)
			}
			return nil
		},
	}
}
