package domain

// Account identifies one holder of balances. The holder id is opaque, stable
// and globally unique; the display name is presentational and may change.
type Account struct {
	HolderID    string
	DisplayName string
	FirstSeenAt int64
	CreatedAt   int64
	UpdatedAt   int64
}

// Balance is one (holder, currency) row. Amounts are integers in the
// currency's smallest unit; timestamps are unix seconds.
type Balance struct {
	HolderID   string
	CurrencyID string
	Amount     int64
	UpdatedAt  int64
}

// LeaderboardEntry is a derived projection, never persisted. Rank starts at 1.
type LeaderboardEntry struct {
	DisplayName string
	HolderID    string
	CurrencyID  string
	Balance     int64
	Rank        int
}
