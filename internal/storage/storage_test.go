package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlx-labs/coinledger/internal/config"
	"github.com/rlx-labs/coinledger/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "ledger.db"),
		Optimization: config.SQLiteOptimization{
			WALMode:     true,
			CacheSize:   2000,
			Synchronous: "NORMAL",
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate(context.Background()))
}

func countAccounts(t *testing.T, db *storage.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.GetContext(context.Background(), &count, `SELECT COUNT(*) FROM accounts`))
	return count
}

func insertAccount(ctx context.Context, tx *sqlx.Tx, holderID string) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO accounts (holder_id, display_name, first_seen_at, created_at, updated_at)
VALUES ($1, $2, 1, 1, 1)`, holderID, holderID)
	return err
}

func TestRunInTxCommits(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := db.RunInTx(ctx, func(tx *sqlx.Tx) error {
		return insertAccount(ctx, tx, "alice")
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countAccounts(t, db))
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.RunInTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertAccount(ctx, tx, "alice"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), countAccounts(t, db))
}

func TestRunInTxRollsBackOnPanic(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.Panics(t, func() {
		_ = db.RunInTx(ctx, func(tx *sqlx.Tx) error {
			if err := insertAccount(ctx, tx, "alice"); err != nil {
				return err
			}
			panic("boom")
		})
	})
	assert.Equal(t, int64(0), countAccounts(t, db))
}
