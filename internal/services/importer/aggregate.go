package importer

import (
	"sort"

	"github.com/bobmcallan/tally/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Aggregate sums a snapshot's holdings into its PortfolioMetrics. Missing
// amounts count as zero. Gain/loss percent is zero when book value <= 0.
func Aggregate(records []*models.HoldingRecord) models.PortfolioMetrics {
	var m models.PortfolioMetrics
	accounts := make(map[string]struct{})

	for _, r := range records {
		m.TotalMarketValue = m.TotalMarketValue.Add(models.ValueOrZero(r.MarketValue))
		m.TotalBookValue = m.TotalBookValue.Add(models.ValueOrZero(r.BookValue))
		m.TotalGainLoss = m.TotalGainLoss.Add(models.ValueOrZero(r.GainLoss))
		if r.AccountLabel != "" {
			accounts[r.AccountLabel] = struct{}{}
		}
	}

	m.HoldingsCount = len(records)
	m.AccountsCount = len(accounts)
	m.TotalGainLossPct = GainLossPct(m.TotalMarketValue, m.TotalBookValue)
	return m
}

// GainLossPct returns (market - book) / book * 100 rounded to 4 places,
// or zero when book <= 0.
func GainLossPct(market, book decimal.Decimal) decimal.Decimal {
	if book.Sign() <= 0 {
		return decimal.Zero
	}
	return market.Sub(book).Div(book).Mul(hundred).Round(models.PercentPlaces)
}

// Allocate groups holdings by asset category, largest market value first.
func Allocate(records []*models.HoldingRecord) []models.CategoryAllocation {
	byCategory := make(map[string]*models.CategoryAllocation)
	total := decimal.Zero

	for _, r := range records {
		mv := models.ValueOrZero(r.MarketValue)
		total = total.Add(mv)
		a, ok := byCategory[r.Category]
		if !ok {
			a = &models.CategoryAllocation{Category: r.Category}
			byCategory[r.Category] = a
		}
		a.MarketValue = a.MarketValue.Add(mv)
		a.Holdings++
	}

	out := make([]models.CategoryAllocation, 0, len(byCategory))
	for _, a := range byCategory {
		if total.Sign() > 0 {
			a.WeightPct = a.MarketValue.Div(total).Mul(hundred).Round(models.PercentPlaces)
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].MarketValue.Cmp(out[j].MarketValue); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
