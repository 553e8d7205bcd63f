// Package models defines data structures for Tally
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Source identifies the brokerage a snapshot was imported from.
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
)

// KnownSources lists every source in the fixed order used for series slots.
var KnownSources = []Source{SourcePrimary, SourceSecondary}

// ParseSource normalises a source string. Returns false for unknown sources.
func ParseSource(s string) (Source, bool) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range KnownSources {
		if src == known {
			return src, true
		}
	}
	return "", false
}

// Fractional digits each kind of imported number is rounded to.
const (
	MoneyPlaces    int32 = 2
	QuantityPlaces int32 = 6
	PricePlaces    int32 = 4
	PercentPlaces  int32 = 4
)

// HoldingRecord is one position within one snapshot, in canonical form.
// Numeric fields are nil when the source cell was empty ("no value").
// Values are rounded once at import and never re-rounded.
type HoldingRecord struct {
	SnapshotID      string           `json:"snapshot_id"`
	Source          Source           `json:"source"`
	Row             int              `json:"row"`
	Symbol          *string          `json:"symbol"`
	Name            string           `json:"name"`
	Category        string           `json:"category"`
	AccountLabel    string           `json:"account_label"`
	Quantity        *decimal.Decimal `json:"quantity"`
	Price           *decimal.Decimal `json:"price"`
	BookValue       *decimal.Decimal `json:"book_value"`
	MarketValue     *decimal.Decimal `json:"market_value"`
	GainLoss        *decimal.Decimal `json:"gain_loss"`
	GainLossPct     *decimal.Decimal `json:"gain_loss_pct"`
	PortfolioWeight *decimal.Decimal `json:"portfolio_weight_pct"`
}

// ValueOrZero dereferences an optional amount, treating nil as zero.
func ValueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// CategoryAllocation is the share of a snapshot's market value held in one asset category.
type CategoryAllocation struct {
	Category    string          `json:"category"`
	MarketValue decimal.Decimal `json:"market_value"`
	WeightPct   decimal.Decimal `json:"weight_pct"`
	Holdings    int             `json:"holdings"`
}
