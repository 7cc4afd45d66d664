package repo_interfaces

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/rlx-labs/coinledger/internal/domain"
)

// TransactionRepository is the DAO contract over the append-only journal.
// List operations return most-recent-first with a 1-based page index; an
// empty currency id means all currencies.
type TransactionRepository interface {
	// WithTx returns a view of the repository bound to an open transaction.
	WithTx(tx *sqlx.Tx) TransactionRepository

	Append(ctx context.Context, record domain.TransactionRecord) error
	ListForHolder(ctx context.Context, holderID, currencyID string, page, pageSize int) ([]domain.TransactionRecord, error)
	ListForHolderByKind(ctx context.Context, holderID string, kind domain.TransactionKind, page, pageSize int) ([]domain.TransactionRecord, error)
	ListForHolderByTimeRange(ctx context.Context, holderID string, start, end int64, page, pageSize int) ([]domain.TransactionRecord, error)
	CountForHolder(ctx context.Context, holderID string) (int64, error)
	Recent(ctx context.Context, limit int) ([]domain.TransactionRecord, error)
	CountAll(ctx context.Context) (int64, error)
	CountByKind(ctx context.Context, kind domain.TransactionKind) (int64, error)
	PurgeOlderThan(ctx context.Context, retentionDays int) (int64, error)
}
