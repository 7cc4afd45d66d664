// Package sqlrepo implements the repository contracts over database/sql via
// sqlx. The query text uses $n placeholders, which both postgres and sqlite
// accept, so one implementation serves both engines.
package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rlx-labs/coinledger/internal/adapter/repository/repo_interfaces"
	"github.com/rlx-labs/coinledger/internal/domain"
)

type AccountRepository struct {
	q sqlx.ExtContext
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{q: db}
}

// WithTx rebinds the repository to an open transaction; the receiver is
// left untouched.
func (r *AccountRepository) WithTx(tx *sqlx.Tx) repo_interfaces.AccountRepository {
	return &AccountRepository{q: tx}
}

type accountRow struct {
	HolderID    string `db:"holder_id"`
	DisplayName string `db:"display_name"`
	FirstSeenAt int64  `db:"first_seen_at"`
	CreatedAt   int64  `db:"created_at"`
	UpdatedAt   int64  `db:"updated_at"`
}

func (row accountRow) toDomain() domain.Account {
	return domain.Account{
		HolderID:    row.HolderID,
		DisplayName: row.DisplayName,
		FirstSeenAt: row.FirstSeenAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

type balanceRow struct {
	HolderID   string `db:"holder_id"`
	CurrencyID string `db:"currency_id"`
	Balance    int64  `db:"balance"`
	UpdatedAt  int64  `db:"updated_at"`
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	const query = `
INSERT INTO accounts (holder_id, display_name, first_seen_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.q.ExecContext(
		ctx,
		query,
		account.HolderID,
		account.DisplayName,
		account.FirstSeenAt,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account %s", domain.ErrAlreadyExists, account.HolderID)
		}
		return wrapStorage("create account", err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, holderID string) (domain.Account, error) {
	const query = `
SELECT holder_id, display_name, first_seen_at, created_at, updated_at
FROM accounts WHERE holder_id = $1`

	var row accountRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, holderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, fmt.Errorf("%w: account %s", domain.ErrNotFound, holderID)
		}
		return domain.Account{}, wrapStorage("get account", err)
	}
	return row.toDomain(), nil
}

func (r *AccountRepository) GetByName(ctx context.Context, displayName string) (domain.Account, error) {
	const query = `
SELECT holder_id, display_name, first_seen_at, created_at, updated_at
FROM accounts WHERE display_name = $1 LIMIT 1`

	var row accountRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, displayName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, fmt.Errorf("%w: account named %q", domain.ErrNotFound, displayName)
		}
		return domain.Account{}, wrapStorage("get account by name", err)
	}
	return row.toDomain(), nil
}

func (r *AccountRepository) UpdateDisplayName(ctx context.Context, holderID, displayName string) (bool, error) {
	const query = `UPDATE accounts SET display_name = $1, updated_at = $2 WHERE holder_id = $3`

	res, err := r.q.ExecContext(ctx, query, displayName, time.Now().Unix(), holderID)
	if err != nil {
		return false, wrapStorage("update display name", err)
	}
	changed, err := res.RowsAffected()
	if err != nil {
		return false, wrapStorage("update display name", err)
	}
	return changed > 0, nil
}

func (r *AccountRepository) Exists(ctx context.Context, holderID string) (bool, error) {
	const query = `SELECT 1 FROM accounts WHERE holder_id = $1 LIMIT 1`

	var one int
	if err := sqlx.GetContext(ctx, r.q, &one, query, holderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, wrapStorage("check account exists", err)
	}
	return true, nil
}

func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := sqlx.GetContext(ctx, r.q, &count, `SELECT COUNT(*) FROM accounts`); err != nil {
		return 0, wrapStorage("count accounts", err)
	}
	return count, nil
}

func (r *AccountRepository) GetBalance(ctx context.Context, holderID, currencyID string) (int64, error) {
	const query = `SELECT balance FROM balances WHERE holder_id = $1 AND currency_id = $2`

	var balance int64
	if err := sqlx.GetContext(ctx, r.q, &balance, query, holderID, currencyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: balance %s/%s", domain.ErrNotFound, holderID, currencyID)
		}
		return 0, wrapStorage("get balance", err)
	}
	return balance, nil
}

// SetBalance upserts the single row for the (holder, currency) pair and
// always stamps the update time.
func (r *AccountRepository) SetBalance(ctx context.Context, holderID, currencyID string, amount int64) error {
	const query = `
INSERT INTO balances (holder_id, currency_id, balance, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (holder_id, currency_id)
DO UPDATE SET balance = excluded.balance, updated_at = excluded.updated_at`

	if _, err := r.q.ExecContext(ctx, query, holderID, currencyID, amount, time.Now().Unix()); err != nil {
		return wrapStorage("set balance", err)
	}
	return nil
}

// InitializeBalance creates the row only when absent; an existing row is
// left untouched and reported as success. Used to lazily backfill a currency
// added after the holder was created.
func (r *AccountRepository) InitializeBalance(ctx context.Context, holderID, currencyID string, amount int64) error {
	const query = `
INSERT INTO balances (holder_id, currency_id, balance, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (holder_id, currency_id) DO NOTHING`

	if _, err := r.q.ExecContext(ctx, query, holderID, currencyID, amount, time.Now().Unix()); err != nil {
		return wrapStorage("initialize balance", err)
	}
	return nil
}

func (r *AccountRepository) ListBalances(ctx context.Context, holderID string) ([]domain.Balance, error) {
	const query = `
SELECT holder_id, currency_id, balance, updated_at
FROM balances WHERE holder_id = $1 ORDER BY currency_id`

	var rows []balanceRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, holderID); err != nil {
		return nil, wrapStorage("list balances", err)
	}

	out := make([]domain.Balance, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Balance{
			HolderID:   row.HolderID,
			CurrencyID: row.CurrencyID,
			Amount:     row.Balance,
			UpdatedAt:  row.UpdatedAt,
		})
	}
	return out, nil
}

// Leaderboard ranks holders by descending balance. Equal balances are
// ordered by holder id ascending so the ranking is deterministic.
func (r *AccountRepository) Leaderboard(ctx context.Context, currencyID string, limit int) ([]domain.LeaderboardEntry, error) {
	if limit < 1 || limit > 1000 {
		return nil, fmt.Errorf("%w: leaderboard limit must be within [1,1000], got %d", domain.ErrInvalidArgument, limit)
	}

	const query = `
SELECT a.display_name, b.holder_id, b.currency_id, b.balance
FROM balances b
INNER JOIN accounts a ON b.holder_id = a.holder_id
WHERE b.currency_id = $1
ORDER BY b.balance DESC, b.holder_id ASC
LIMIT $2`

	rows, err := r.q.QueryxContext(ctx, query, currencyID, limit)
	if err != nil {
		return nil, wrapStorage("leaderboard", err)
	}
	defer rows.Close()

	var out []domain.LeaderboardEntry
	rank := 1
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.DisplayName, &entry.HolderID, &entry.CurrencyID, &entry.Balance); err != nil {
			return nil, wrapStorage("leaderboard", err)
		}
		entry.Rank = rank
		rank++
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("leaderboard", err)
	}
	return out, nil
}

func (r *AccountRepository) TotalWealth(ctx context.Context, currencyID string) (int64, error) {
	const query = `SELECT COALESCE(SUM(balance), 0) FROM balances WHERE currency_id = $1`

	var total int64
	if err := sqlx.GetContext(ctx, r.q, &total, query, currencyID); err != nil {
		return 0, wrapStorage("total wealth", err)
	}
	return total, nil
}
