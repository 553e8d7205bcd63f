// Package storagetest holds the behaviour every StorageManager backend must
// share, run by each backend's own tests.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty manager. Cleanup is the factory's job.
type Factory func(t *testing.T) interfaces.StorageManager

// Run executes the shared suite against managers from newManager.
func Run(t *testing.T, newManager Factory) {
	t.Run("SnapshotRoundTrip", func(t *testing.T) { testSnapshotRoundTrip(t, newManager(t)) })
	t.Run("SnapshotOrdering", func(t *testing.T) { testSnapshotOrdering(t, newManager(t)) })
	t.Run("SnapshotOwnership", func(t *testing.T) { testSnapshotOwnership(t, newManager(t)) })
	t.Run("SnapshotDeleteCascades", func(t *testing.T) { testSnapshotDelete(t, newManager(t)) })
	t.Run("AccountsAndEntries", func(t *testing.T) { testAccountsAndEntries(t, newManager(t)) })
	t.Run("AccountDeleteCascades", func(t *testing.T) { testAccountDelete(t, newManager(t)) })
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func str(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var base = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

// Snapshot builds a snapshot fixture.
func Snapshot(id, userID string, src models.Source, date time.Time, imported time.Time) *models.Snapshot {
	return &models.Snapshot{
		ID:           id,
		UserID:       userID,
		Source:       src,
		SnapshotDate: date,
		Filename:     id + ".csv",
		RecordCount:  2,
		ImportedAt:   imported,
	}
}

func holdings() []*models.HoldingRecord {
	return []*models.HoldingRecord{
		{
			Row: 2, Source: models.SourcePrimary, Symbol: nil, Name: "Cash", Category: "Cash", AccountLabel: "RRSP",
			MarketValue: ptr(dec("50.25")), BookValue: ptr(dec("50.25")),
		},
		{
			Row: 1, Source: models.SourcePrimary, Symbol: str("VTI"), Name: "Vanguard Total", Category: "Equity", AccountLabel: "TFSA",
			Quantity: ptr(dec("10.123456")), Price: ptr(dec("250.1234")), BookValue: ptr(dec("2000")),
			MarketValue: ptr(dec("2531.99")), GainLoss: ptr(dec("531.99")), GainLossPct: ptr(dec("26.5995")),
			PortfolioWeight: ptr(dec("98.0545")),
		},
	}
}

func metrics() *models.PortfolioMetrics {
	return &models.PortfolioMetrics{
		TotalMarketValue: dec("2582.24"),
		TotalBookValue:   dec("2050.25"),
		TotalGainLoss:    dec("531.99"),
		TotalGainLossPct: dec("25.9476"),
		HoldingsCount:    2,
		AccountsCount:    2,
	}
}

func testSnapshotRoundTrip(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	store := m.SnapshotStore()

	snap := Snapshot("snap-1", "alice", models.SourcePrimary, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), base)
	require.NoError(t, store.CreateSnapshot(ctx, snap, holdings(), metrics()))

	got, err := store.GetSnapshot(ctx, "alice", "snap-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", models.DateKey(got.SnapshotDate))
	assert.Equal(t, models.SourcePrimary, got.Source)
	assert.Equal(t, "snap-1.csv", got.Filename)
	assert.True(t, base.Equal(got.ImportedAt))

	met, err := store.MetricsFor(ctx, "snap-1")
	require.NoError(t, err)
	assert.True(t, dec("2582.24").Equal(met.TotalMarketValue))
	assert.True(t, dec("25.9476").Equal(met.TotalGainLossPct))
	assert.Equal(t, 2, met.AccountsCount)

	hs, err := store.HoldingsFor(ctx, "snap-1")
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, 1, hs[0].Row, "holdings come back in row order")
	require.NotNil(t, hs[0].Symbol)
	assert.Equal(t, "VTI", *hs[0].Symbol)
	assert.True(t, dec("10.123456").Equal(*hs[0].Quantity))
	assert.Nil(t, hs[1].Symbol)
	assert.Nil(t, hs[1].Quantity, "absent values stay absent")
	assert.Equal(t, "snap-1", hs[1].SnapshotID)

	rows, err := store.ListSnapshotMetrics(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, dec("2050.25").Equal(rows[0].Metrics.TotalBookValue))
}

func testSnapshotOrdering(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	store := m.SnapshotStore()
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	for _, s := range []*models.Snapshot{
		Snapshot("c", "alice", models.SourcePrimary, day(5), base),
		Snapshot("b-late", "alice", models.SourcePrimary, day(2), base.Add(time.Hour)),
		Snapshot("b-early", "alice", models.SourcePrimary, day(2), base),
		Snapshot("s", "alice", models.SourceSecondary, day(3), base),
	} {
		require.NoError(t, store.CreateSnapshot(ctx, s, nil, metrics()))
	}

	all, err := store.ListSnapshots(ctx, "alice", "")
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, s := range all {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"b-early", "b-late", "s", "c"}, ids)

	primary, err := store.ListSnapshotMetrics(ctx, "alice", models.SourcePrimary)
	require.NoError(t, err)
	require.Len(t, primary, 3)
	assert.Equal(t, "c", primary[2].Snapshot.ID)
}

func testSnapshotOwnership(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	store := m.SnapshotStore()
	require.NoError(t, store.CreateSnapshot(ctx, Snapshot("mine", "alice", models.SourcePrimary, base, base), nil, metrics()))

	_, err := store.GetSnapshot(ctx, "mallory", "mine")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = store.GetSnapshot(ctx, "alice", "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, store.DeleteSnapshot(ctx, "mallory", "mine"), models.ErrNotFound)

	list, err := store.ListSnapshots(ctx, "mallory", "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testSnapshotDelete(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	store := m.SnapshotStore()
	require.NoError(t, store.CreateSnapshot(ctx, Snapshot("gone", "alice", models.SourcePrimary, base, base), holdings(), metrics()))

	require.NoError(t, store.DeleteSnapshot(ctx, "alice", "gone"))
	_, err := store.GetSnapshot(ctx, "alice", "gone")
	assert.ErrorIs(t, err, models.ErrNotFound)
	hs, err := store.HoldingsFor(ctx, "gone")
	require.NoError(t, err)
	assert.Empty(t, hs)
}

func account(id, userID, typ string) *models.ExternalAccount {
	return &models.ExternalAccount{ID: id, UserID: userID, Institution: "Bank", Name: id, Type: typ, Active: true, CreatedAt: base}
}

func testAccountsAndEntries(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	store := m.AccountStore()

	require.NoError(t, store.SaveAccount(ctx, account("savings", "alice", "Savings")))
	require.NoError(t, store.SaveAccount(ctx, account("loan", "alice", "Loan")))
	require.NoError(t, store.SaveAccount(ctx, account("other", "bob", "Savings")))

	for i, v := range []string{"100", "-42.5", "300"} {
		require.NoError(t, store.AppendEntry(ctx, &models.ExternalAccountEntry{
			ID: "e" + v, AccountID: "savings", Value: dec(v), Note: "n", RecordedAt: base.AddDate(0, 0, i),
		}))
	}
	require.NoError(t, store.AppendEntry(ctx, &models.ExternalAccountEntry{ID: "l1", AccountID: "loan", Value: dec("9000"), RecordedAt: base}))
	require.NoError(t, store.AppendEntry(ctx, &models.ExternalAccountEntry{ID: "b1", AccountID: "other", Value: dec("1"), RecordedAt: base}))

	err := store.AppendEntry(ctx, &models.ExternalAccountEntry{ID: "x", AccountID: "nope", Value: dec("1"), RecordedAt: base})
	assert.ErrorIs(t, err, models.ErrNotFound)

	accts, err := store.ListAccounts(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, accts, 2)

	acct, err := store.GetAccount(ctx, "alice", "loan")
	require.NoError(t, err)
	assert.True(t, acct.IsLiability())
	_, err = store.GetAccount(ctx, "bob", "loan")
	assert.ErrorIs(t, err, models.ErrNotFound)

	acct.Active = false
	acct.Name = "Car loan"
	require.NoError(t, store.SaveAccount(ctx, acct))
	acct, err = store.GetAccount(ctx, "alice", "loan")
	require.NoError(t, err)
	assert.False(t, acct.Active)
	assert.Equal(t, "Car loan", acct.Name)

	entries, err := store.ListEntries(ctx, "savings")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, dec("300").Equal(entries[0].Value), "newest first")
	assert.True(t, dec("-42.5").Equal(entries[1].Value))
	assert.True(t, base.AddDate(0, 0, 2).Equal(entries[0].RecordedAt))

	mine, err := store.ListUserEntries(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 4, "entries of other users excluded")
}

func testAccountDelete(t *testing.T, m interfaces.StorageManager) {
	ctx := context.Background()
	store := m.AccountStore()

	require.NoError(t, store.SaveAccount(ctx, account("card", "alice", "Credit Card")))
	require.NoError(t, store.AppendEntry(ctx, &models.ExternalAccountEntry{ID: "c1", AccountID: "card", Value: dec("10"), RecordedAt: base}))

	assert.ErrorIs(t, store.DeleteAccount(ctx, "bob", "card"), models.ErrNotFound)
	require.NoError(t, store.DeleteAccount(ctx, "alice", "card"))

	_, err := store.GetAccount(ctx, "alice", "card")
	assert.ErrorIs(t, err, models.ErrNotFound)
	entries, err := store.ListEntries(ctx, "card")
	require.NoError(t, err)
	assert.Empty(t, entries)
	all, err := store.ListUserEntries(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, all)
}
