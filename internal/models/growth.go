package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GrowthPoint is one valuation point in a single-source series.
// Computed on demand from stored snapshots and the external ledger, never persisted.
type GrowthPoint struct {
	Date            time.Time           `json:"date"`
	Source          Source              `json:"source"`
	SnapshotID      string              `json:"snapshot_id"`
	PortfolioValue  decimal.Decimal     `json:"portfolio_value"`
	BookValue       decimal.Decimal     `json:"book_value"`
	GainLoss        decimal.Decimal     `json:"gain_loss"`
	ExternalAssets  decimal.NullDecimal `json:"external_assets"`
	ExternalDebt    decimal.NullDecimal `json:"external_debt"`
	PeriodChange    decimal.Decimal     `json:"period_change"`
	PeriodChangePct decimal.Decimal     `json:"period_change_pct"`
	Live            bool                `json:"live,omitempty"` // external values are latest known, not as of Date
}

// CombinedGrowthPoint is one point of the merged multi-source chart series.
// Sources holds one slot per known source, carried forward where the source
// did not report on this date.
type CombinedGrowthPoint struct {
	Date                time.Time                  `json:"date"`
	Sources             map[Source]decimal.Decimal `json:"sources"`
	TotalPortfolioValue decimal.Decimal            `json:"total_portfolio_value"`
	BookValue           decimal.Decimal            `json:"book_value"`
	GainLoss            decimal.Decimal            `json:"gain_loss"`
	ExternalAssets      decimal.Decimal            `json:"external_assets"`
	ExternalDebt        decimal.Decimal            `json:"external_debt"`
	CombinedValue       decimal.Decimal            `json:"combined_value"`
	NetWorth            decimal.Decimal            `json:"net_worth"`
	PeriodChange        decimal.Decimal            `json:"period_change"`
	PeriodChangePct     decimal.Decimal            `json:"period_change_pct"`
}

// NetWorthSummary is the live ("right now") position across every source
// and active external account.
type NetWorthSummary struct {
	AsOf                time.Time                  `json:"as_of"`
	Sources             map[Source]decimal.Decimal `json:"sources"`
	LatestSnapshots     map[Source]string          `json:"latest_snapshots"`
	TotalPortfolioValue decimal.Decimal            `json:"total_portfolio_value"`
	ExternalAssets      decimal.Decimal            `json:"external_assets"`
	ExternalDebt        decimal.Decimal            `json:"external_debt"`
	NetWorth            decimal.Decimal            `json:"net_worth"`
}

// TimeRange names a trailing window over a growth series.
type TimeRange string

const (
	Range3Months TimeRange = "3m"
	Range6Months TimeRange = "6m"
	Range1Year   TimeRange = "1y"
	Range3Years  TimeRange = "3y"
	Range5Years  TimeRange = "5y"
	RangeAll     TimeRange = "all"
)

// PointDate returns the point's calendar date.
func (p GrowthPoint) PointDate() time.Time { return p.Date }

// PointDate returns the point's calendar date.
func (p CombinedGrowthPoint) PointDate() time.Time { return p.Date }
