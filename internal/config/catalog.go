package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/rlx-labs/coinledger/internal/domain"
)

// Currency is the resolved, immutable view of one currency's rules. Unlike
// CurrencyConfig, MaxBalance here is always the effective bound: the
// serialized "0 means unbounded" form is translated to MaxInt64.
type Currency struct {
	ID            string
	Name          string
	Symbol        string
	DisplayFormat string
	Enabled       bool

	InitialBalance    int64
	MaxBalance        int64
	MinTransferAmount int64
	TransferFee       int64
	FeePercentage     float64
	AllowTransfer     bool
}

// Catalog is an immutable currency snapshot handed to the ledger manager at
// construction. Swapping configuration means building a new Catalog and a
// new manager, never mutating a live one.
type Catalog struct {
	defaultID  string
	currencies map[string]Currency
}

// Catalog builds the snapshot from a validated Config.
func (c Config) Catalog() *Catalog {
	currencies := make(map[string]Currency, len(c.Currencies))
	for id, cur := range c.Currencies {
		maxBalance := cur.MaxBalance
		if maxBalance == 0 {
			maxBalance = math.MaxInt64
		}
		currencies[id] = Currency{
			ID:                id,
			Name:              cur.Name,
			Symbol:            cur.Symbol,
			DisplayFormat:     cur.DisplayFormat,
			Enabled:           cur.Enabled,
			InitialBalance:    cur.InitialBalance,
			MaxBalance:        maxBalance,
			MinTransferAmount: cur.MinTransferAmount,
			TransferFee:       cur.TransferFee,
			FeePercentage:     cur.FeePercentage,
			AllowTransfer:     cur.AllowTransfer,
		}
	}
	return &Catalog{defaultID: c.DefaultCurrency, currencies: currencies}
}

// DefaultID returns the configured default currency id.
func (c *Catalog) DefaultID() string { return c.defaultID }

// Get looks up a currency by id, enabled or not.
func (c *Catalog) Get(id string) (Currency, bool) {
	cur, ok := c.currencies[id]
	return cur, ok
}

// Resolve maps a CurrencyRef to an enabled currency. Unknown and disabled
// currencies both fail with ErrInvalidArgument.
func (c *Catalog) Resolve(ref domain.CurrencyRef) (Currency, error) {
	id, ok := ref.ID()
	if !ok {
		id = c.defaultID
	}
	cur, ok := c.currencies[id]
	if !ok {
		return Currency{}, fmt.Errorf("%w: unknown currency %q", domain.ErrInvalidArgument, id)
	}
	if !cur.Enabled {
		return Currency{}, fmt.Errorf("%w: currency %q is disabled", domain.ErrInvalidArgument, id)
	}
	return cur, nil
}

// Enabled returns all enabled currencies ordered by id, so that iteration
// order (account initialization, journal rows) is deterministic.
func (c *Catalog) Enabled() []Currency {
	out := make([]Currency, 0, len(c.currencies))
	for _, cur := range c.currencies {
		if cur.Enabled {
			out = append(out, cur)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
