package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rlx-labs/coinledger/internal/adapter/repository/sqlrepo"
	"github.com/rlx-labs/coinledger/internal/config"
	"github.com/rlx-labs/coinledger/internal/domain"
	"github.com/rlx-labs/coinledger/internal/logger"
	"github.com/rlx-labs/coinledger/internal/storage"
	"github.com/rlx-labs/coinledger/internal/usecase/service_interfaces"
	"github.com/rlx-labs/coinledger/internal/usecase/services"
)

var (
	flagConfig   string
	flagLogLevel string
	flagPretty   bool
)

var rootCmd = &cobra.Command{
	Use:          "coinledger",
	Short:        "Multi-currency account ledger",
	Long:         "coinledger maintains per-holder, multi-currency balances with an immutable transaction journal and atomic transfer-with-fee semantics.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config (defaults apply when omitted)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override configured log level")
	rootCmd.PersistentFlags().BoolVar(&flagPretty, "pretty", false, "human-readable log output")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newInitAccountCmd(),
		newRenameCmd(),
		newBalanceCmd(),
		newBalancesCmd(),
		newSetCmd(),
		newAddCmd(),
		newReduceCmd(),
		newPayCmd(),
		newTopCmd(),
		newHistoryCmd(),
		newStatsCmd(),
		newPurgeCmd(),
	)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// ledgerEnv is everything a subcommand needs: the service, its config and
// the database handle to close when done.
type ledgerEnv struct {
	cfg     config.Config
	db      *storage.DB
	service service_interfaces.LedgerService
}

func (e *ledgerEnv) Close() {
	if e.db != nil {
		e.db.Close()
	}
}

func openLedger(ctx context.Context) (*ledgerEnv, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logger.Setup(level, flagPretty || cfg.Log.Pretty)

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	catalog := cfg.Catalog()
	service := services.NewLedgerService(
		db,
		sqlrepo.NewAccountRepository(db.DB),
		sqlrepo.NewTransactionRepository(db.DB),
		catalog,
	)

	return &ledgerEnv{cfg: cfg, db: db, service: service}, nil
}

// currencyRef maps the optional --currency flag to the explicit ref type.
func currencyRef(id string) domain.CurrencyRef {
	if id == "" {
		return domain.DefaultCurrency()
	}
	return domain.CurrencyByID(id)
}

// renderError maps the ledger's sentinel errors to operator-facing text.
// The insufficient-balance message keeps the service's wording, which
// distinguishes a plain shortfall from one caused by the transfer fee.
func renderError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("not found: %v", err)
	case errors.Is(err, domain.ErrAlreadyExists):
		return fmt.Errorf("already exists: %v", err)
	case errors.Is(err, domain.ErrInsufficientBalance):
		return fmt.Errorf("insufficient balance: %v", err)
	case errors.Is(err, domain.ErrTransferDisabled):
		return fmt.Errorf("transfers are disabled: %v", err)
	case errors.Is(err, domain.ErrInvalidArgument):
		return fmt.Errorf("invalid request: %v", err)
	case errors.Is(err, domain.ErrStorage):
		return fmt.Errorf("storage failure: %v", err)
	}
	return err
}

func printf(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}
