package storage

import (
	"context"
	"fmt"

	"github.com/rlx-labs/coinledger/internal/config"
)

// The schema is embedded per driver rather than shipped as migration files:
// the two engines differ only in how the journal's surrogate key
// autoincrements, and a single binary must be able to bootstrap either.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		holder_id     TEXT PRIMARY KEY,
		display_name  TEXT NOT NULL,
		first_seen_at INTEGER NOT NULL,
		created_at    INTEGER NOT NULL,
		updated_at    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS balances (
		holder_id   TEXT NOT NULL,
		currency_id TEXT NOT NULL,
		balance     INTEGER NOT NULL DEFAULT 0,
		updated_at  INTEGER NOT NULL,
		PRIMARY KEY (holder_id, currency_id),
		FOREIGN KEY (holder_id) REFERENCES accounts(holder_id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		holder_id         TEXT NOT NULL,
		currency_id       TEXT NOT NULL,
		amount            INTEGER NOT NULL,
		balance           INTEGER NOT NULL,
		kind              TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		ts                INTEGER NOT NULL,
		related_holder_id TEXT,
		transfer_group_id TEXT
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		holder_id     TEXT PRIMARY KEY,
		display_name  TEXT NOT NULL,
		first_seen_at BIGINT NOT NULL,
		created_at    BIGINT NOT NULL,
		updated_at    BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS balances (
		holder_id   TEXT NOT NULL,
		currency_id TEXT NOT NULL,
		balance     BIGINT NOT NULL DEFAULT 0,
		updated_at  BIGINT NOT NULL,
		PRIMARY KEY (holder_id, currency_id),
		FOREIGN KEY (holder_id) REFERENCES accounts(holder_id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id                BIGSERIAL PRIMARY KEY,
		holder_id         TEXT NOT NULL,
		currency_id       TEXT NOT NULL,
		amount            BIGINT NOT NULL,
		balance           BIGINT NOT NULL,
		kind              TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		ts                BIGINT NOT NULL,
		related_holder_id TEXT,
		transfer_group_id TEXT
	)`,
}

var schemaIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_transactions_holder ON transactions(holder_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_holder_currency ON transactions(holder_id, currency_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_ts ON transactions(ts)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_kind ON transactions(kind)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_transfer_group ON transactions(transfer_group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_balances_currency_balance ON balances(currency_id, balance)`,
}

// Migrate creates the three row-sets and their indexes if absent.
func (d *DB) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if d.driver == config.DriverPostgres {
		schema = postgresSchema
	}

	for _, stmt := range append(append([]string{}, schema...), schemaIndexes...) {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
