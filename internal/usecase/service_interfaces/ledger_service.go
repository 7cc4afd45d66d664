package service_interfaces

import (
	"context"

	"github.com/rlx-labs/coinledger/internal/domain"
)

// LedgerService is the boundary consumed by command layers and embedding
// hosts. Mutating operations report business-rule violations as the
// sentinel errors in the domain package; queries report "not found" as
// empty results instead of errors.
type LedgerService interface {
	InitializeAccount(ctx context.Context, holderID, displayName string) error
	SyncDisplayName(ctx context.Context, holderID, displayName string) (bool, error)
	AccountExists(ctx context.Context, holderID string) (bool, error)
	GetAccount(ctx context.Context, holderID string) (domain.Account, error)
	GetAccountByName(ctx context.Context, displayName string) (domain.Account, error)
	AccountCount(ctx context.Context) (int64, error)

	GetBalance(ctx context.Context, holderID string, currency domain.CurrencyRef) (int64, bool, error)
	ListBalances(ctx context.Context, holderID string) ([]domain.Balance, error)
	HasSufficientBalance(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64) (bool, error)
	TotalWealth(ctx context.Context, currency domain.CurrencyRef) (int64, error)
	Leaderboard(ctx context.Context, currency domain.CurrencyRef, limit int) ([]domain.LeaderboardEntry, error)

	SetBalance(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, description string) error
	SetBalanceBy(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, operator domain.OperatorKind, operatorName string) error
	AddMoney(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, description string) error
	AddMoneyBy(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, operator domain.OperatorKind, operatorName string) error
	ReduceMoney(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, description string) error
	ReduceMoneyBy(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, operator domain.OperatorKind, operatorName string) error
	Transfer(ctx context.Context, fromHolderID, toHolderID string, currency domain.CurrencyRef, amount int64, description string) error

	Transactions(ctx context.Context, holderID, currencyID string, page, pageSize int) ([]domain.TransactionRecord, error)
	TransactionsByKind(ctx context.Context, holderID string, kind domain.TransactionKind, page, pageSize int) ([]domain.TransactionRecord, error)
	TransactionsByTimeRange(ctx context.Context, holderID string, start, end int64, page, pageSize int) ([]domain.TransactionRecord, error)
	TransactionCount(ctx context.Context, holderID string) (int64, error)
	RecentTransactions(ctx context.Context, limit int) ([]domain.TransactionRecord, error)
	TotalTransactionCount(ctx context.Context) (int64, error)
	TransactionCountByKind(ctx context.Context, kind domain.TransactionKind) (int64, error)
	PurgeTransactions(ctx context.Context, retentionDays int) (int64, error)
}
