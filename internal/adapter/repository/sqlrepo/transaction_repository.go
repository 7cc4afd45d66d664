package sqlrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rlx-labs/coinledger/internal/adapter/repository/repo_interfaces"
	"github.com/rlx-labs/coinledger/internal/domain"
)

type TransactionRepository struct {
	q sqlx.ExtContext
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{q: db}
}

func (r *TransactionRepository) WithTx(tx *sqlx.Tx) repo_interfaces.TransactionRepository {
	return &TransactionRepository{q: tx}
}

type transactionRow struct {
	ID              int64          `db:"id"`
	HolderID        string         `db:"holder_id"`
	CurrencyID      string         `db:"currency_id"`
	Amount          int64          `db:"amount"`
	Balance         int64          `db:"balance"`
	Kind            string         `db:"kind"`
	Description     string         `db:"description"`
	Timestamp       int64          `db:"ts"`
	RelatedHolderID sql.NullString `db:"related_holder_id"`
	TransferGroupID sql.NullString `db:"transfer_group_id"`
}

func (row transactionRow) toDomain() (domain.TransactionRecord, error) {
	kind, err := domain.ParseTransactionKind(row.Kind)
	if err != nil {
		return domain.TransactionRecord{}, err
	}
	return domain.TransactionRecord{
		ID:              row.ID,
		HolderID:        row.HolderID,
		CurrencyID:      row.CurrencyID,
		Amount:          row.Amount,
		Balance:         row.Balance,
		Kind:            kind,
		Description:     row.Description,
		Timestamp:       row.Timestamp,
		RelatedHolderID: row.RelatedHolderID.String,
		TransferGroupID: row.TransferGroupID.String,
	}, nil
}

const transactionColumns = `id, holder_id, currency_id, amount, balance, kind, description, ts, related_holder_id, transfer_group_id`

// Append inserts one immutable journal row; the sequence id is assigned by
// storage. Holder, currency, kind and timestamp must be set by the caller.
func (r *TransactionRepository) Append(ctx context.Context, record domain.TransactionRecord) error {
	if record.HolderID == "" || record.CurrencyID == "" || record.Timestamp == 0 {
		return fmt.Errorf("%w: journal record requires holder, currency and timestamp", domain.ErrInvalidArgument)
	}
	if _, err := domain.ParseTransactionKind(string(record.Kind)); err != nil {
		return err
	}

	const query = `
INSERT INTO transactions (holder_id, currency_id, amount, balance, kind, description, ts, related_holder_id, transfer_group_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.q.ExecContext(
		ctx,
		query,
		record.HolderID,
		record.CurrencyID,
		record.Amount,
		record.Balance,
		string(record.Kind),
		record.Description,
		record.Timestamp,
		nullable(record.RelatedHolderID),
		nullable(record.TransferGroupID),
	)
	if err != nil {
		return wrapStorage("append transaction", err)
	}
	return nil
}

func (r *TransactionRepository) ListForHolder(ctx context.Context, holderID, currencyID string, page, pageSize int) ([]domain.TransactionRecord, error) {
	page, pageSize = normalizePage(page, pageSize)
	offset := (page - 1) * pageSize

	if currencyID == "" {
		const query = `
SELECT ` + transactionColumns + `
FROM transactions WHERE holder_id = $1
ORDER BY ts DESC, id DESC LIMIT $2 OFFSET $3`
		return r.list(ctx, query, holderID, pageSize, offset)
	}

	const query = `
SELECT ` + transactionColumns + `
FROM transactions WHERE holder_id = $1 AND currency_id = $2
ORDER BY ts DESC, id DESC LIMIT $3 OFFSET $4`
	return r.list(ctx, query, holderID, currencyID, pageSize, offset)
}

func (r *TransactionRepository) ListForHolderByKind(ctx context.Context, holderID string, kind domain.TransactionKind, page, pageSize int) ([]domain.TransactionRecord, error) {
	page, pageSize = normalizePage(page, pageSize)
	const query = `
SELECT ` + transactionColumns + `
FROM transactions WHERE holder_id = $1 AND kind = $2
ORDER BY ts DESC, id DESC LIMIT $3 OFFSET $4`
	return r.list(ctx, query, holderID, string(kind), pageSize, (page-1)*pageSize)
}

func (r *TransactionRepository) ListForHolderByTimeRange(ctx context.Context, holderID string, start, end int64, page, pageSize int) ([]domain.TransactionRecord, error) {
	page, pageSize = normalizePage(page, pageSize)
	const query = `
SELECT ` + transactionColumns + `
FROM transactions WHERE holder_id = $1 AND ts >= $2 AND ts <= $3
ORDER BY ts DESC, id DESC LIMIT $4 OFFSET $5`
	return r.list(ctx, query, holderID, start, end, pageSize, (page-1)*pageSize)
}

func (r *TransactionRepository) CountForHolder(ctx context.Context, holderID string) (int64, error) {
	var count int64
	if err := sqlx.GetContext(ctx, r.q, &count, `SELECT COUNT(*) FROM transactions WHERE holder_id = $1`, holderID); err != nil {
		return 0, wrapStorage("count holder transactions", err)
	}
	return count, nil
}

func (r *TransactionRepository) Recent(ctx context.Context, limit int) ([]domain.TransactionRecord, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: recent limit must be positive, got %d", domain.ErrInvalidArgument, limit)
	}
	const query = `
SELECT ` + transactionColumns + `
FROM transactions ORDER BY ts DESC, id DESC LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *TransactionRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := sqlx.GetContext(ctx, r.q, &count, `SELECT COUNT(*) FROM transactions`); err != nil {
		return 0, wrapStorage("count transactions", err)
	}
	return count, nil
}

func (r *TransactionRepository) CountByKind(ctx context.Context, kind domain.TransactionKind) (int64, error) {
	var count int64
	if err := sqlx.GetContext(ctx, r.q, &count, `SELECT COUNT(*) FROM transactions WHERE kind = $1`, string(kind)); err != nil {
		return 0, wrapStorage("count transactions by kind", err)
	}
	return count, nil
}

// PurgeOlderThan removes journal rows older than the retention window,
// measured from wall-clock time at the moment of the call.
func (r *TransactionRepository) PurgeOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays < 1 {
		return 0, fmt.Errorf("%w: retention days must be positive, got %d", domain.ErrInvalidArgument, retentionDays)
	}
	cutoff := time.Now().Unix() - int64(retentionDays)*24*60*60

	res, err := r.q.ExecContext(ctx, `DELETE FROM transactions WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, wrapStorage("purge transactions", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, wrapStorage("purge transactions", err)
	}
	return removed, nil
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]domain.TransactionRecord, error) {
	var rows []transactionRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, wrapStorage("list transactions", err)
	}

	out := make([]domain.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
