package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is one CSV import for one source on one user-declared date.
// Several snapshots may share (user, source, date); ImportedAt breaks ties.
type Snapshot struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Source       Source    `json:"source"`
	SnapshotDate time.Time `json:"snapshot_date"`
	Filename     string    `json:"filename"`
	RecordCount  int       `json:"record_count"`
	ImportedAt   time.Time `json:"imported_at"`
}

// PortfolioMetrics is the aggregate computed once per snapshot at import.
type PortfolioMetrics struct {
	SnapshotID       string          `json:"snapshot_id"`
	TotalMarketValue decimal.Decimal `json:"total_market_value"`
	TotalBookValue   decimal.Decimal `json:"total_book_value"`
	TotalGainLoss    decimal.Decimal `json:"total_gain_loss"`
	TotalGainLossPct decimal.Decimal `json:"total_gain_loss_pct"`
	HoldingsCount    int             `json:"holdings_count"`
	AccountsCount    int             `json:"accounts_count"`
}

// SnapshotWithMetrics pairs a snapshot with its pre-computed metrics.
type SnapshotWithMetrics struct {
	Snapshot *Snapshot         `json:"snapshot"`
	Metrics  *PortfolioMetrics `json:"metrics"`
}

// SortSnapshots orders snapshots chronologically: snapshot date first,
// then import time so same-day imports keep insertion order.
func SortSnapshots(snaps []*Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		return snapshotLess(snaps[i], snaps[j])
	})
}

// SortSnapshotsWithMetrics applies the SortSnapshots ordering to paired rows.
func SortSnapshotsWithMetrics(rows []SnapshotWithMetrics) {
	sort.SliceStable(rows, func(i, j int) bool {
		return snapshotLess(rows[i].Snapshot, rows[j].Snapshot)
	})
}

func snapshotLess(a, b *Snapshot) bool {
	da, db := DateKey(a.SnapshotDate), DateKey(b.SnapshotDate)
	if da != db {
		return da < db
	}
	return a.ImportedAt.Before(b.ImportedAt)
}

// DateKey normalises a timestamp to its UTC calendar date ("2006-01-02").
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// StartOfDay truncates t to midnight UTC of its calendar date.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
