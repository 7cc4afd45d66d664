package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rlx-labs/coinledger/internal/domain"
)

func newTopCmd() *cobra.Command {
	var (
		currencyID string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the balance leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			if limit == 0 {
				limit = env.cfg.TopList.DefaultCount
			}
			if limit > env.cfg.TopList.MaxCount {
				limit = env.cfg.TopList.MaxCount
			}

			entries, err := env.service.Leaderboard(cmd.Context(), currencyRef(currencyID), limit)
			if err != nil {
				return renderError(err)
			}
			for _, e := range entries {
				printf("%3d. %-24s %d", e.Rank, e.DisplayName, e.Balance)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&currencyID, "currency", "", "currency id (default currency when omitted)")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of entries (configured default when omitted)")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var (
		currencyID string
		kind       string
		page       int
		pageSize   int
	)

	cmd := &cobra.Command{
		Use:   "history <holder-id>",
		Short: "Show a holder's journal, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			var records []domain.TransactionRecord
			if kind != "" {
				parsed, err := domain.ParseTransactionKind(kind)
				if err != nil {
					return renderError(err)
				}
				records, err = env.service.TransactionsByKind(cmd.Context(), args[0], parsed, page, pageSize)
				if err != nil {
					return renderError(err)
				}
			} else {
				records, err = env.service.Transactions(cmd.Context(), args[0], currencyID, page, pageSize)
				if err != nil {
					return renderError(err)
				}
			}

			for _, r := range records {
				ts := time.Unix(r.Timestamp, 0).UTC().Format(time.RFC3339)
				printf("%s  %-8s %-8s %+d -> %d  %s", ts, r.Kind, r.CurrencyID, r.Amount, r.Balance, r.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&currencyID, "currency", "", "filter by currency id (all when omitted)")
	cmd.Flags().StringVar(&kind, "kind", "", "filter by transaction kind")
	cmd.Flags().IntVar(&page, "page", 1, "1-based page index")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "records per page")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show account, transaction and wealth totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			accounts, err := env.service.AccountCount(cmd.Context())
			if err != nil {
				return renderError(err)
			}
			transactions, err := env.service.TotalTransactionCount(cmd.Context())
			if err != nil {
				return renderError(err)
			}

			printf("accounts:     %d", accounts)
			printf("transactions: %d", transactions)
			for _, cur := range env.cfg.Catalog().Enabled() {
				wealth, err := env.service.TotalWealth(cmd.Context(), domain.CurrencyByID(cur.ID))
				if err != nil {
					return renderError(err)
				}
				printf("wealth[%s]: %d", cur.ID, wealth)
			}
			return nil
		},
	}
}

func newPurgeCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete journal records older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			if days == 0 {
				days = env.cfg.Transaction.RetentionDays
			}
			if days < 1 {
				printf("retention disabled; pass --days to purge explicitly")
				return nil
			}

			removed, err := env.service.PurgeTransactions(cmd.Context(), days)
			if err != nil {
				return renderError(err)
			}
			printf("removed %d records older than %d days", removed, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "retention window in days (configured value when omitted)")
	return cmd
}
