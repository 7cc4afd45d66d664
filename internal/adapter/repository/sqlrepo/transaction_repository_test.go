package sqlrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlx-labs/coinledger/internal/adapter/repository/sqlrepo"
	"github.com/rlx-labs/coinledger/internal/domain"
)

func testRecord(holderID string, amount, balance, ts int64, kind domain.TransactionKind) domain.TransactionRecord {
	return domain.TransactionRecord{
		HolderID:    holderID,
		CurrencyID:  "gold",
		Amount:      amount,
		Balance:     balance,
		Kind:        kind,
		Description: "test",
		Timestamp:   ts,
	}
}

func TestAppendValidation(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewTransactionRepository(db.DB)
	ctx := context.Background()

	err := repo.Append(ctx, domain.TransactionRecord{CurrencyID: "gold", Kind: domain.KindAdd, Timestamp: 1})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	err = repo.Append(ctx, domain.TransactionRecord{HolderID: "uuid-alice", Kind: domain.KindAdd, Timestamp: 1})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	err = repo.Append(ctx, domain.TransactionRecord{HolderID: "uuid-alice", CurrencyID: "gold", Kind: domain.KindAdd})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	err = repo.Append(ctx, domain.TransactionRecord{HolderID: "uuid-alice", CurrencyID: "gold", Kind: "withdraw", Timestamp: 1})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTransferFieldsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewTransactionRepository(db.DB)
	ctx := context.Background()

	record := testRecord("uuid-alice", -40, 60, time.Now().Unix(), domain.KindTransfer)
	record.RelatedHolderID = "uuid-bob"
	record.TransferGroupID = "group-1"
	require.NoError(t, repo.Append(ctx, record))

	plain := testRecord("uuid-alice", 10, 70, time.Now().Unix(), domain.KindAdd)
	require.NoError(t, repo.Append(ctx, plain))

	records, err := repo.ListForHolder(ctx, "uuid-alice", "", 1, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byKind := map[domain.TransactionKind]domain.TransactionRecord{}
	for _, r := range records {
		byKind[r.Kind] = r
	}
	assert.Equal(t, "uuid-bob", byKind[domain.KindTransfer].RelatedHolderID)
	assert.Equal(t, "group-1", byKind[domain.KindTransfer].TransferGroupID)
	assert.Empty(t, byKind[domain.KindAdd].RelatedHolderID)
	assert.Empty(t, byKind[domain.KindAdd].TransferGroupID)
}

func TestListForHolderPagination(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewTransactionRepository(db.DB)
	ctx := context.Background()

	base := time.Now().Unix()
	for i := 1; i <= 25; i++ {
		require.NoError(t, repo.Append(ctx, testRecord("uuid-alice", int64(i), int64(i), base+int64(i), domain.KindAdd)))
	}
	require.NoError(t, repo.Append(ctx, testRecord("uuid-bob", 1, 1, base, domain.KindAdd)))

	page1, err := repo.ListForHolder(ctx, "uuid-alice", "", 1, 10)
	require.NoError(t, err)
	require.Len(t, page1, 10)
	assert.Equal(t, int64(25), page1[0].Amount)
	assert.Equal(t, int64(16), page1[9].Amount)

	page3, err := repo.ListForHolder(ctx, "uuid-alice", "", 3, 10)
	require.NoError(t, err)
	require.Len(t, page3, 5)
	assert.Equal(t, int64(1), page3[4].Amount)

	page4, err := repo.ListForHolder(ctx, "uuid-alice", "", 4, 10)
	require.NoError(t, err)
	assert.Empty(t, page4)

	// Out-of-range page arguments fall back to the first page of ten.
	normalized, err := repo.ListForHolder(ctx, "uuid-alice", "", 0, 0)
	require.NoError(t, err)
	require.Len(t, normalized, 10)
	assert.Equal(t, int64(25), normalized[0].Amount)
}

func TestListForHolderCurrencyFilter(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewTransactionRepository(db.DB)
	ctx := context.Background()

	now := time.Now().Unix()
	gold := testRecord("uuid-alice", 10, 10, now, domain.KindAdd)
	require.NoError(t, repo.Append(ctx, gold))

	silver := testRecord("uuid-alice", 5, 5, now, domain.KindAdd)
	silver.CurrencyID = "silver"
	require.NoError(t, repo.Append(ctx, silver))

	records, err := repo.ListForHolder(ctx, "uuid-alice", "silver", 1, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "silver", records[0].CurrencyID)

	all, err := repo.ListForHolder(ctx, "uuid-alice", "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListForHolderByKind(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewTransactionRepository(db.DB)
	ctx := context.Background()

	now := time.Now().Unix()
	require.NoError(t, repo.Append(ctx, testRecord("uuid-alice", 10, 10, now, domain.KindAdd)))
	require.NoError(t, repo.Append(ctx, testRecord("uuid-alice", -3, 7, now+1, domain.KindReduce)))
	require.NoError(t, repo.Append(ctx, testRecord("uuid-alice", 5, 12, now+2, domain.KindAdd)))

	adds, err := repo.ListForHolderByKind(ctx, "uuid-alice", domain.KindAdd, 1, 10)
	require.NoError(t, err)
	require.Len(t, adds, 2)
	assert.Equal(t, int64(5), adds[0].Amount)

	reduces, err := repo.ListForHolderByKind(ctx, "uuid-alice", domain.KindReduce, 1, 10)
	require.NoError(t, err)
	require.Len(t, reduces, 1)
}

func TestListForHolderByTimeRange(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewTransactionRepository(db.DB)
	ctx := context.Background()

	base := int64(1_700_000_000)
	for i := int64(0); i < 5; i++ {
		require.NoError(t, repo.Append(ctx, testRecord("uuid-alice", i+1, i+1, base+i*100, domain.KindAdd)))
	}

	// The range is inclusive on both ends.
	records, err := repo.ListForHolderByTimeRange(ctx, "uuid-alice", base+100, base+300, 1, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, base+300, records[0].Timestamp)
	assert.Equal(t, base+100, records[2].Timestamp)
}

func TestCounts(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewTransactionRepository(db.DB)
	ctx := context.Background()

	now := time.Now().Unix()
	require.NoError(t, repo.Append(ctx, testRecord("uuid-alice", 10, 10, now, domain.KindAdd)))
	require.NoError(t, repo.Append(ctx, testRecord("uuid-alice", -3, 7, now, domain.KindReduce)))
	require.NoError(t, repo.Append(ctx, testRecord("uuid-bob", 1, 1, now, domain.KindAdd)))

	count, err := repo.CountForHolder(ctx, "uuid-alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	total, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	adds, err := repo.CountByKind(ctx, domain.KindAdd)
	require.NoError(t, err)
	assert.Equal(t, int64(2), adds)
}

func TestRecent(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewTransactionRepository(db.DB)
	ctx := context.Background()

	base := time.Now().Unix()
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, repo.Append(ctx, testRecord("uuid-alice", i, i, base+i, domain.KindAdd)))
	}

	records, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(5), records[0].Amount)

	_, err = repo.Recent(ctx, 0)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestPurgeOlderThan(t *testing.T) {
	db := newTestDB(t)
	repo := sqlrepo.NewTransactionRepository(db.DB)
	ctx := context.Background()

	now := time.Now().Unix()
	old := testRecord("uuid-alice", 10, 10, now-90*24*60*60, domain.KindAdd)
	require.NoError(t, repo.Append(ctx, old))
	require.NoError(t, repo.Append(ctx, testRecord("uuid-alice", 5, 15, now, domain.KindAdd)))

	removed, err := repo.PurgeOlderThan(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	total, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, err = repo.PurgeOlderThan(ctx, 0)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}
