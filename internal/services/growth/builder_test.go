package growth

import (
	"testing"
	"time"

	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/services/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(id, date, market, book string, imported time.Time) models.SnapshotWithMetrics {
	return models.SnapshotWithMetrics{
		Snapshot: &models.Snapshot{ID: id, Source: models.SourcePrimary, SnapshotDate: day(date), ImportedAt: imported},
		Metrics: &models.PortfolioMetrics{
			SnapshotID:       id,
			TotalMarketValue: dec(market),
			TotalBookValue:   dec(book),
			TotalGainLoss:    dec(market).Sub(dec(book)),
		},
	}
}

func testLedger() *ledger.Ledger {
	return ledger.New(
		[]*models.ExternalAccount{
			{ID: "bank", Type: "Savings", Active: true},
			{ID: "card", Type: "Credit Card", Active: true},
		},
		[]*models.ExternalAccountEntry{
			{ID: "b1", AccountID: "bank", Value: dec("100"), RecordedAt: day("2024-01-01")},
			{ID: "b2", AccountID: "bank", Value: dec("400"), RecordedAt: day("2024-06-01")},
			{ID: "c1", AccountID: "card", Value: dec("-250"), RecordedAt: day("2024-02-15")},
		},
	)
}

func TestBuildSourceSeries_SortsAndComputesChanges(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []models.SnapshotWithMetrics{
		snap("c", "2024-03-01", "1200", "1000", base),
		snap("a", "2024-01-01", "1000", "1000", base),
		snap("b", "2024-02-01", "900", "950", base),
		{Snapshot: &models.Snapshot{ID: "orphan", SnapshotDate: day("2024-02-10")}},
	}

	got := BuildSourceSeries(models.SourcePrimary, rows, nil, BuildOptions{})
	require.Len(t, got, 3, "rows without metrics are skipped")
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].SnapshotID, got[1].SnapshotID, got[2].SnapshotID})
	assert.Equal(t, "c", rows[0].Snapshot.ID, "input order untouched")

	assertDec(t, "0", got[0].PeriodChange)
	assertDec(t, "-100", got[1].PeriodChange)
	assertDec(t, "-10", got[1].PeriodChangePct)
	assertDec(t, "300", got[2].PeriodChange)
	assertDec(t, "33.3333", got[2].PeriodChangePct)
	assertDec(t, "-50", got[1].GainLoss)
	assert.False(t, got[0].ExternalAssets.Valid, "nil ledger has no external values")
}

func TestBuildSourceSeries_SameDayImportOrder(t *testing.T) {
	first := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	rows := []models.SnapshotWithMetrics{
		snap("later", "2024-01-01", "20", "20", first.Add(time.Hour)),
		snap("earlier", "2024-01-01", "10", "10", first),
	}
	got := BuildSourceSeries(models.SourcePrimary, rows, nil, BuildOptions{})
	require.Len(t, got, 2)
	assert.Equal(t, "earlier", got[0].SnapshotID)
	assert.Equal(t, "later", got[1].SnapshotID)
}

func TestBuildSourceSeries_PointInTimeExternalValues(t *testing.T) {
	imported := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.SnapshotWithMetrics{
		snap("jan", "2024-01-15", "1000", "1000", imported),
		snap("mar", "2024-03-01", "1000", "1000", imported),
	}

	got := BuildSourceSeries(models.SourcePrimary, rows, testLedger(), BuildOptions{})
	require.Len(t, got, 2)

	assertDec(t, "100", got[0].ExternalAssets.Decimal)
	assert.False(t, got[0].ExternalDebt.Valid, "card had no entry yet")
	assertDec(t, "100", got[1].ExternalAssets.Decimal, "June balance not yet known in March")
	assertDec(t, "250", got[1].ExternalDebt.Decimal)
	assert.False(t, got[1].Live)
}

func TestBuildSourceSeries_LiveSnapshotReadsLatest(t *testing.T) {
	imported := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.SnapshotWithMetrics{
		snap("jan", "2024-01-15", "1000", "1000", imported),
		snap("mar", "2024-03-01", "1000", "1000", imported),
	}

	got := BuildSourceSeries(models.SourcePrimary, rows, testLedger(), BuildOptions{LiveSnapshotID: "mar"})
	require.Len(t, got, 2)
	assert.False(t, got[0].Live)
	assertDec(t, "100", got[0].ExternalAssets.Decimal)
	assert.True(t, got[1].Live)
	assertDec(t, "400", got[1].ExternalAssets.Decimal, "live point sees the June balance")
}

func TestBuildSourceSeries_ZeroBookValue(t *testing.T) {
	rows := []models.SnapshotWithMetrics{
		snap("a", "2024-01-01", "0", "0", time.Time{}),
		snap("b", "2024-02-01", "500", "0", time.Time{}),
	}
	got := BuildSourceSeries(models.SourcePrimary, rows, nil, BuildOptions{})
	require.Len(t, got, 2)
	assertDec(t, "500", got[1].PeriodChange)
	assertDec(t, "0", got[1].PeriodChangePct, "no percentage off a zero base")
}

func TestBuildSourceSeries_Empty(t *testing.T) {
	got := BuildSourceSeries(models.SourceSecondary, nil, nil, BuildOptions{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
