package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rlx-labs/coinledger/internal/domain"
)

type moneyFlags struct {
	currencyID   string
	description  string
	operator     string
	operatorName string
}

func (f *moneyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.currencyID, "currency", "", "currency id (default currency when omitted)")
	cmd.Flags().StringVar(&f.description, "desc", "", "journal description (auto-generated when omitted)")
	cmd.Flags().StringVar(&f.operator, "operator", "", "attribute the mutation to an operator kind (admin, shop, real-estate, system, player, other)")
	cmd.Flags().StringVar(&f.operatorName, "operator-name", "", "operator display name for the attribution")
}

func (f *moneyFlags) operatorKind() (domain.OperatorKind, bool, error) {
	if f.operator == "" {
		return "", false, nil
	}
	switch kind := domain.OperatorKind(f.operator); kind {
	case domain.OperatorAdmin, domain.OperatorShop, domain.OperatorRealEstate,
		domain.OperatorSystem, domain.OperatorPlayer, domain.OperatorOther:
		return kind, true, nil
	}
	return "", false, fmt.Errorf("invalid request: unknown operator kind %q", f.operator)
}

func parseAmount(raw string) (int64, error) {
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid request: amount %q is not an integer", raw)
	}
	return amount, nil
}

func newSetCmd() *cobra.Command {
	var flags moneyFlags

	cmd := &cobra.Command{
		Use:   "set <holder-id> <amount>",
		Short: "Set an absolute balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			env, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			ref := currencyRef(flags.currencyID)
			if kind, ok, err := flags.operatorKind(); err != nil {
				return err
			} else if ok {
				err = env.service.SetBalanceBy(cmd.Context(), args[0], ref, amount, kind, flags.operatorName)
				if err != nil {
					return renderError(err)
				}
			} else if err := env.service.SetBalance(cmd.Context(), args[0], ref, amount, flags.description); err != nil {
				return renderError(err)
			}
			printf("balance of %s set to %d", args[0], amount)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newAddCmd() *cobra.Command {
	var flags moneyFlags

	cmd := &cobra.Command{
		Use:   "add <holder-id> <amount>",
		Short: "Credit a holder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			env, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			ref := currencyRef(flags.currencyID)
			if kind, ok, err := flags.operatorKind(); err != nil {
				return err
			} else if ok {
				err = env.service.AddMoneyBy(cmd.Context(), args[0], ref, amount, kind, flags.operatorName)
				if err != nil {
					return renderError(err)
				}
			} else if err := env.service.AddMoney(cmd.Context(), args[0], ref, amount, flags.description); err != nil {
				return renderError(err)
			}
			printf("added %d to %s", amount, args[0])
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newReduceCmd() *cobra.Command {
	var flags moneyFlags

	cmd := &cobra.Command{
		Use:   "reduce <holder-id> <amount>",
		Short: "Debit a holder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			env, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			ref := currencyRef(flags.currencyID)
			if kind, ok, err := flags.operatorKind(); err != nil {
				return err
			} else if ok {
				err = env.service.ReduceMoneyBy(cmd.Context(), args[0], ref, amount, kind, flags.operatorName)
				if err != nil {
					return renderError(err)
				}
			} else if err := env.service.ReduceMoney(cmd.Context(), args[0], ref, amount, flags.description); err != nil {
				return renderError(err)
			}
			printf("reduced %s by %d", args[0], amount)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newPayCmd() *cobra.Command {
	var currencyID, description string

	cmd := &cobra.Command{
		Use:   "pay <from-holder-id> <to-holder-id> <amount>",
		Short: "Transfer between two holders, charging the configured fee",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			env, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.service.Transfer(cmd.Context(), args[0], args[1], currencyRef(currencyID), amount, description); err != nil {
				return renderError(err)
			}
			printf("transferred %d from %s to %s", amount, args[0], args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&currencyID, "currency", "", "currency id (default currency when omitted)")
	cmd.Flags().StringVar(&description, "desc", "", "journal description (auto-generated when omitted)")
	return cmd
}
