package repo_interfaces

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/rlx-labs/coinledger/internal/domain"
)

// AccountRepository is the DAO contract over account identity and balance
// rows. It carries no business rules: limits, currency existence and fee
// arithmetic all live in the ledger service.
type AccountRepository interface {
	// WithTx returns a view of the repository bound to an open transaction.
	WithTx(tx *sqlx.Tx) AccountRepository

	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, holderID string) (domain.Account, error)
	GetByName(ctx context.Context, displayName string) (domain.Account, error)
	UpdateDisplayName(ctx context.Context, holderID, displayName string) (bool, error)
	Exists(ctx context.Context, holderID string) (bool, error)
	Count(ctx context.Context) (int64, error)

	GetBalance(ctx context.Context, holderID, currencyID string) (int64, error)
	SetBalance(ctx context.Context, holderID, currencyID string, amount int64) error
	InitializeBalance(ctx context.Context, holderID, currencyID string, amount int64) error
	ListBalances(ctx context.Context, holderID string) ([]domain.Balance, error)
	Leaderboard(ctx context.Context, currencyID string, limit int) ([]domain.LeaderboardEntry, error)
	TotalWealth(ctx context.Context, currencyID string) (int64, error)
}
