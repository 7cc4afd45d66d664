package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the on-disk configuration of the ledger: storage location,
// currency definitions and operational knobs. It is loaded once; a reload
// means loading a fresh Config and constructing a new catalog snapshot, so
// in-flight operations never observe a half-applied change.
type Config struct {
	Database        DatabaseConfig            `yaml:"database"`
	DefaultCurrency string                    `yaml:"default_currency"`
	Currencies      map[string]CurrencyConfig `yaml:"currencies"`
	TopList         TopListConfig             `yaml:"top_list"`
	Transaction     TransactionConfig         `yaml:"transaction"`
	Log             LogConfig                 `yaml:"log"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	// Path is the sqlite database file. DSN is used for postgres and, when
	// set, overrides Path for sqlite as well.
	Path string `yaml:"path"`
	DSN  string `yaml:"dsn"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`

	Optimization SQLiteOptimization `yaml:"optimization"`
}

// SQLiteOptimization mirrors the pragmas applied to an embedded database.
type SQLiteOptimization struct {
	WALMode     bool   `yaml:"wal_mode"`
	CacheSize   int    `yaml:"cache_size"`
	Synchronous string `yaml:"synchronous"`
}

type CurrencyConfig struct {
	Name          string `yaml:"name"`
	Symbol        string `yaml:"symbol"`
	DisplayFormat string `yaml:"display_format"`
	Enabled       bool   `yaml:"enabled"`

	InitialBalance    int64   `yaml:"initial_balance"`
	MaxBalance        int64   `yaml:"max_balance"` // 0 means unbounded
	MinTransferAmount int64   `yaml:"min_transfer_amount"`
	TransferFee       int64   `yaml:"transfer_fee"`
	FeePercentage     float64 `yaml:"fee_percentage"`
	AllowTransfer     bool    `yaml:"allow_transfer"`
}

type TopListConfig struct {
	DefaultCount int `yaml:"default_count"`
	MaxCount     int `yaml:"max_count"`
}

type TransactionConfig struct {
	RetentionDays int `yaml:"retention_days"` // 0 disables the sweep
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// UnmarshalYAML applies the currency defaults before decoding so that an
// omitted field keeps its default instead of the Go zero value.
func (c *CurrencyConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain CurrencyConfig
	out := plain(defaultCurrencyConfig())
	if err := value.Decode(&out); err != nil {
		return err
	}
	*c = CurrencyConfig(out)
	return nil
}

func defaultCurrencyConfig() CurrencyConfig {
	return CurrencyConfig{
		DisplayFormat:     "{amount} {symbol}",
		Enabled:           true,
		InitialBalance:    1000,
		MaxBalance:        0,
		MinTransferAmount: 1,
		TransferFee:       0,
		FeePercentage:     0,
		AllowTransfer:     true,
	}
}

// Default returns the configuration used when no file is present: a single
// enabled gold currency over an embedded sqlite database.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "data/coinledger.db",
			Optimization: SQLiteOptimization{
				WALMode:     true,
				CacheSize:   2000,
				Synchronous: "NORMAL",
			},
		},
		DefaultCurrency: "gold",
		Currencies: map[string]CurrencyConfig{
			"gold": func() CurrencyConfig {
				c := defaultCurrencyConfig()
				c.Name = "Gold"
				c.Symbol = "G"
				return c
			}(),
		},
		TopList:     TopListConfig{DefaultCount: 10, MaxCount: 50},
		Transaction: TransactionConfig{RetentionDays: 0},
		Log:         LogConfig{Level: "info"},
	}
}

// Load reads and validates a YAML config file. An empty path yields the
// defaults. DATABASE_DSN in the environment overrides the file's DSN.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("DATABASE_DSN")); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if driver := strings.TrimSpace(os.Getenv("DATABASE_DRIVER")); driver != "" {
		cfg.Database.Driver = driver
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the ledger cannot run on. Currency rules
// are checked here once so the manager can trust every catalog snapshot.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" && c.Database.DSN == "" {
			return fmt.Errorf("config: database.path is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("config: database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown database.driver %q", c.Database.Driver)
	}

	if len(c.Currencies) == 0 {
		return fmt.Errorf("config: at least one currency must be defined")
	}
	if c.DefaultCurrency == "" {
		return fmt.Errorf("config: default_currency is required")
	}
	def, ok := c.Currencies[c.DefaultCurrency]
	if !ok {
		return fmt.Errorf("config: default_currency %q is not defined", c.DefaultCurrency)
	}
	if !def.Enabled {
		return fmt.Errorf("config: default_currency %q is disabled", c.DefaultCurrency)
	}

	for id, cur := range c.Currencies {
		if err := cur.validate(id); err != nil {
			return err
		}
	}

	if c.TopList.DefaultCount < 1 || c.TopList.MaxCount < c.TopList.DefaultCount {
		return fmt.Errorf("config: top_list counts must satisfy 1 <= default_count <= max_count")
	}
	if c.Transaction.RetentionDays < 0 {
		return fmt.Errorf("config: transaction.retention_days cannot be negative")
	}
	return nil
}

func (c CurrencyConfig) validate(id string) error {
	if id == "" {
		return fmt.Errorf("config: currency id cannot be empty")
	}
	if c.InitialBalance < 0 {
		return fmt.Errorf("config: currency %s: initial_balance cannot be negative", id)
	}
	if c.MaxBalance < 0 {
		return fmt.Errorf("config: currency %s: max_balance cannot be negative", id)
	}
	if c.MaxBalance > 0 && c.InitialBalance > c.MaxBalance {
		return fmt.Errorf("config: currency %s: initial_balance exceeds max_balance", id)
	}
	if c.MinTransferAmount < 1 {
		return fmt.Errorf("config: currency %s: min_transfer_amount must be at least 1", id)
	}
	if c.TransferFee < 0 {
		return fmt.Errorf("config: currency %s: transfer_fee cannot be negative", id)
	}
	if c.FeePercentage < 0 || c.FeePercentage > 100 {
		return fmt.Errorf("config: currency %s: fee_percentage must be within [0,100]", id)
	}
	return nil
}
