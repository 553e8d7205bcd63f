package importer

import (
	"testing"

	"github.com/bobmcallan/tally/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amt(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestAggregate_SumsAndCounts(t *testing.T) {
	records := []*models.HoldingRecord{
		{AccountLabel: "RRSP", MarketValue: amt("1200.50"), BookValue: amt("1000"), GainLoss: amt("200.50")},
		{AccountLabel: "TFSA", MarketValue: amt("800"), BookValue: amt("900"), GainLoss: amt("-100")},
		{AccountLabel: "RRSP", MarketValue: amt("99.50"), BookValue: nil, GainLoss: nil},
		{AccountLabel: "", MarketValue: nil, BookValue: amt("100")},
	}

	m := Aggregate(records)

	assert.True(t, m.TotalMarketValue.Equal(decimal.RequireFromString("2100")), m.TotalMarketValue.String())
	assert.True(t, m.TotalBookValue.Equal(decimal.RequireFromString("2000")))
	assert.True(t, m.TotalGainLoss.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, 4, m.HoldingsCount)
	assert.Equal(t, 2, m.AccountsCount, "distinct non-empty labels")
	// (2100 - 2000) / 2000 * 100
	assert.True(t, m.TotalGainLossPct.Equal(decimal.RequireFromString("5")), m.TotalGainLossPct.String())
}

func TestAggregate_ZeroBookValue(t *testing.T) {
	m := Aggregate([]*models.HoldingRecord{
		{MarketValue: amt("500"), BookValue: amt("0")},
	})
	assert.True(t, m.TotalGainLossPct.IsZero(), "book value 0 gives exactly 0%%, got %s", m.TotalGainLossPct)
}

func TestAggregate_NegativeBookValue(t *testing.T) {
	m := Aggregate([]*models.HoldingRecord{
		{MarketValue: amt("500"), BookValue: amt("-10")},
	})
	assert.True(t, m.TotalGainLossPct.IsZero())
}

func TestAggregate_Empty(t *testing.T) {
	m := Aggregate(nil)
	assert.True(t, m.TotalMarketValue.IsZero())
	assert.Equal(t, 0, m.HoldingsCount)
	assert.True(t, m.TotalGainLossPct.IsZero())
}

func TestGainLossPct_Rounding(t *testing.T) {
	got := GainLossPct(decimal.RequireFromString("1000"), decimal.RequireFromString("3"))
	// 997 / 3 * 100 = 33233.3333...
	assert.Equal(t, "33233.3333", got.String())
}

func TestAllocate(t *testing.T) {
	records := []*models.HoldingRecord{
		{Category: "Equity", MarketValue: amt("600")},
		{Category: "Bonds", MarketValue: amt("300")},
		{Category: "Equity", MarketValue: amt("0")},
		{Category: "Cash", MarketValue: amt("100")},
	}

	alloc := Allocate(records)
	assert.Len(t, alloc, 3)
	assert.Equal(t, "Equity", alloc[0].Category)
	assert.Equal(t, 2, alloc[0].Holdings)
	assert.Equal(t, "60", alloc[0].WeightPct.String())
	assert.Equal(t, "Bonds", alloc[1].Category)
	assert.Equal(t, "30", alloc[1].WeightPct.String())
	assert.Equal(t, "Cash", alloc[2].Category)
}

func TestAllocate_ZeroTotal(t *testing.T) {
	alloc := Allocate([]*models.HoldingRecord{{Category: "Cash"}})
	assert.Len(t, alloc, 1)
	assert.True(t, alloc[0].WeightPct.IsZero())
}
