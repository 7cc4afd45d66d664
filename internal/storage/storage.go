// Package storage owns the database handle: opening either the embedded
// sqlite engine or postgres, applying schema migrations, and running units
// of work. The repositories borrow the handle; they never own it.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/rlx-labs/coinledger/internal/config"
)

// DB wraps the sqlx handle with the driver it was opened for.
type DB struct {
	*sqlx.DB
	driver string
}

// Driver reports which engine the handle talks to ("sqlite" or "postgres").
func (d *DB) Driver() string { return d.driver }

// Open connects to the configured engine and verifies the connection. For
// sqlite the pool is capped at a single connection: the file is a single
// logical writer and a shared handle keeps transactions serialized.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("create database directory: %w", err)
				}
			}
			dsn = "file:" + cfg.Path
		}
		db, err = sqlx.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		db.SetMaxOpenConns(1)

	case config.DriverPostgres:
		db, err = sqlx.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	out := &DB{DB: db, driver: cfg.Driver}
	if cfg.Driver == config.DriverSQLite {
		if err := out.applyPragmas(ctx, cfg.Optimization); err != nil {
			db.Close()
			return nil, err
		}
	}
	return out, nil
}

func (d *DB) applyPragmas(ctx context.Context, opt config.SQLiteOptimization) error {
	pragmas := []string{"PRAGMA foreign_keys = ON;"}
	if opt.WALMode {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL;")
	}
	if opt.CacheSize > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA cache_size = %d;", opt.CacheSize))
	}
	switch strings.ToUpper(strings.TrimSpace(opt.Synchronous)) {
	case "":
	case "OFF", "NORMAL", "FULL", "EXTRA":
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA synchronous = %s;", strings.ToUpper(opt.Synchronous)))
	default:
		return fmt.Errorf("invalid synchronous pragma %q", opt.Synchronous)
	}

	for _, pragma := range pragmas {
		if _, err := d.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("apply %s: %w", strings.TrimSuffix(pragma, ";"), err)
		}
	}
	return nil
}
