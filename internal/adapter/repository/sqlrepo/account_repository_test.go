package sqlrepo_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlx-labs/coinledger/internal/adapter/repository/sqlrepo"
	"github.com/rlx-labs/coinledger/internal/config"
	"github.com/rlx-labs/coinledger/internal/domain"
	"github.com/rlx-labs/coinledger/internal/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "ledger.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))
	return db
}

func testAccount(holderID, displayName string) domain.Account {
	now := time.Now().Unix()
	return domain.Account{
		HolderID:    holderID,
		DisplayName: displayName,
		FirstSeenAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestAccountCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewAccountRepository(db.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testAccount("uuid-alice", "Alice")))

	got, err := repo.GetByID(ctx, "uuid-alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.DisplayName)
	assert.NotZero(t, got.CreatedAt)

	byName, err := repo.GetByName(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "uuid-alice", byName.HolderID)

	_, err = repo.GetByID(ctx, "uuid-ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetByName(ctx, "Ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountCreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewAccountRepository(db.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testAccount("uuid-alice", "Alice")))
	err := repo.Create(ctx, testAccount("uuid-alice", "Alice Again"))
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestAccountUpdateDisplayName(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewAccountRepository(db.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testAccount("uuid-alice", "Alice")))

	changed, err := repo.UpdateDisplayName(ctx, "uuid-alice", "Alicia")
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := repo.GetByID(ctx, "uuid-alice")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.DisplayName)

	changed, err = repo.UpdateDisplayName(ctx, "uuid-ghost", "Ghost")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestAccountExistsAndCount(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewAccountRepository(db.DB)
	ctx := context.Background()

	exists, err := repo.Exists(ctx, "uuid-alice")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, testAccount("uuid-alice", "Alice")))
	require.NoError(t, repo.Create(ctx, testAccount("uuid-bob", "Bob")))

	exists, err = repo.Exists(ctx, "uuid-alice")
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestBalanceUpsertAndInitialize(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewAccountRepository(db.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testAccount("uuid-alice", "Alice")))

	_, err := repo.GetBalance(ctx, "uuid-alice", "gold")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.SetBalance(ctx, "uuid-alice", "gold", 100))
	balance, err := repo.GetBalance(ctx, "uuid-alice", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	// Upsert replaces the existing row.
	require.NoError(t, repo.SetBalance(ctx, "uuid-alice", "gold", 250))
	balance, err = repo.GetBalance(ctx, "uuid-alice", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance)

	// InitializeBalance leaves an existing row untouched.
	require.NoError(t, repo.InitializeBalance(ctx, "uuid-alice", "gold", 1000))
	balance, err = repo.GetBalance(ctx, "uuid-alice", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance)

	require.NoError(t, repo.InitializeBalance(ctx, "uuid-alice", "silver", 50))
	balance, err = repo.GetBalance(ctx, "uuid-alice", "silver")
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)
}

func TestListBalancesOrdered(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewAccountRepository(db.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testAccount("uuid-alice", "Alice")))
	require.NoError(t, repo.SetBalance(ctx, "uuid-alice", "silver", 50))
	require.NoError(t, repo.SetBalance(ctx, "uuid-alice", "gold", 100))

	balances, err := repo.ListBalances(ctx, "uuid-alice")
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "gold", balances[0].CurrencyID)
	assert.Equal(t, int64(100), balances[0].Amount)
	assert.Equal(t, "silver", balances[1].CurrencyID)
	assert.Equal(t, int64(50), balances[1].Amount)
}

func TestLeaderboard(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewAccountRepository(db.DB)
	ctx := context.Background()

	holders := []struct {
		id      string
		name    string
		balance int64
	}{
		{"uuid-a", "A", 8000},
		{"uuid-b", "B", 6000},
		{"uuid-c", "C", 5000},
		{"uuid-d", "D", 3000},
		{"uuid-e", "E", 1000},
	}
	for _, h := range holders {
		require.NoError(t, repo.Create(ctx, testAccount(h.id, h.name)))
		require.NoError(t, repo.SetBalance(ctx, h.id, "gold", h.balance))
	}

	entries, err := repo.Leaderboard(ctx, "gold", 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, name := range []string{"A", "B", "C"} {
		assert.Equal(t, name, entries[i].DisplayName)
		assert.Equal(t, i+1, entries[i].Rank)
	}
}

func TestLeaderboardTieBreaksByHolderID(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewAccountRepository(db.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testAccount("uuid-b", "B")))
	require.NoError(t, repo.Create(ctx, testAccount("uuid-a", "A")))
	require.NoError(t, repo.SetBalance(ctx, "uuid-b", "gold", 500))
	require.NoError(t, repo.SetBalance(ctx, "uuid-a", "gold", 500))

	entries, err := repo.Leaderboard(ctx, "gold", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "uuid-a", entries[0].HolderID)
	assert.Equal(t, "uuid-b", entries[1].HolderID)
}

func TestLeaderboardLimitBounds(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewAccountRepository(db.DB)
	ctx := context.Background()

	_, err := repo.Leaderboard(ctx, "gold", 0)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = repo.Leaderboard(ctx, "gold", 1001)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTotalWealth(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewAccountRepository(db.DB)
	ctx := context.Background()

	total, err := repo.TotalWealth(ctx, "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	require.NoError(t, repo.Create(ctx, testAccount("uuid-alice", "Alice")))
	require.NoError(t, repo.Create(ctx, testAccount("uuid-bob", "Bob")))
	require.NoError(t, repo.SetBalance(ctx, "uuid-alice", "gold", 300))
	require.NoError(t, repo.SetBalance(ctx, "uuid-bob", "gold", 200))
	require.NoError(t, repo.SetBalance(ctx, "uuid-bob", "silver", 999))

	total, err = repo.TotalWealth(ctx, "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(500), total)
}
