package growth

import (
	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/services/ledger"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BuildOptions controls per-source series construction.
type BuildOptions struct {
	// LiveSnapshotID names the snapshot whose point reads the latest
	// external balances instead of those known as of its date. Empty means
	// every point is strictly point-in-time.
	LiveSnapshotID string
}

// BuildSourceSeries turns one source's snapshots into a chronological growth
// series. Rows missing a snapshot or metrics are skipped. The input slice is
// not reordered.
func BuildSourceSeries(source models.Source, snapshots []models.SnapshotWithMetrics, l *ledger.Ledger, opts BuildOptions) []models.GrowthPoint {
	rows := make([]models.SnapshotWithMetrics, 0, len(snapshots))
	for _, s := range snapshots {
		if s.Snapshot == nil || s.Metrics == nil {
			continue
		}
		rows = append(rows, s)
	}
	models.SortSnapshotsWithMetrics(rows)

	points := make([]models.GrowthPoint, 0, len(rows))
	for _, row := range rows {
		snap, m := row.Snapshot, row.Metrics
		live := opts.LiveSnapshotID != "" && snap.ID == opts.LiveSnapshotID
		assets, debt := l.Totals(snap.SnapshotDate, live)

		p := models.GrowthPoint{
			Date:           models.StartOfDay(snap.SnapshotDate),
			Source:         source,
			SnapshotID:     snap.ID,
			PortfolioValue: m.TotalMarketValue,
			BookValue:      m.TotalBookValue,
			GainLoss:       m.TotalGainLoss,
			ExternalAssets: assets,
			ExternalDebt:   debt,
			Live:           live,
		}
		if n := len(points); n > 0 {
			p.PeriodChange, p.PeriodChangePct = periodChange(points[n-1].PortfolioValue, p.PortfolioValue)
		}
		points = append(points, p)
	}
	return points
}

// periodChange returns cur-prev and the percent change relative to prev.
// The percentage is zero when prev is not positive.
func periodChange(prev, cur decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	change := cur.Sub(prev)
	if !prev.IsPositive() {
		return change, decimal.Zero
	}
	return change, change.Div(prev).Mul(hundred).Round(models.PercentPlaces)
}
