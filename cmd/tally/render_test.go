package main

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/tally/internal/models"
)

func TestGrowthMarkdown(t *testing.T) {
	points := []models.CombinedGrowthPoint{{
		Date:                time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		TotalPortfolioValue: decimal.RequireFromString("4000"),
		ExternalAssets:      decimal.RequireFromString("500"),
		ExternalDebt:        decimal.RequireFromString("1000"),
		NetWorth:            decimal.RequireFromString("3500"),
	}}

	md := growthMarkdown(points, "USD")
	assert.Contains(t, md, "| 2024-01-31 | $4,000.00 | $500.00 | $1,000.00 | $3,500.00 | $0.00 (0.00%) |")

	assert.Contains(t, growthMarkdown(nil, "USD"), "Nothing to report")
}

func TestAccountsMarkdown(t *testing.T) {
	updated := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	views := []models.ExternalAccountView{
		{
			ExternalAccount: models.ExternalAccount{ID: "a1", Institution: "Bank", Name: "Savings", Type: "Savings", Active: true},
			CurrentValue:    decimal.NewNullDecimal(decimal.RequireFromString("1250.5")),
			LastUpdated:     &updated,
		},
		{
			ExternalAccount: models.ExternalAccount{ID: "a2", Institution: "Bank", Name: "Old card", Type: "Credit Card"},
		},
	}

	md := accountsMarkdown(views, "USD")
	lines := strings.Split(md, "\n")
	assert.Contains(t, md, "| `a1` | Bank | Savings | Savings | $1,250.50 | 2024-02-01 |")
	assert.Contains(t, lines, "| `a2` | Bank | Old card (inactive) | Credit Card | - | never |")
}

func TestNetWorthMarkdown(t *testing.T) {
	s := &models.NetWorthSummary{
		AsOf: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Sources: map[models.Source]decimal.Decimal{
			models.SourceSecondary: decimal.RequireFromString("10"),
			models.SourcePrimary:   decimal.RequireFromString("20"),
		},
		ExternalDebt: decimal.RequireFromString("5"),
		NetWorth:     decimal.RequireFromString("25"),
	}

	md := netWorthMarkdown(s, "USD")
	assert.True(t, strings.HasPrefix(md, "# Net worth: $25.00"))
	assert.Less(t, strings.Index(md, "| primary |"), strings.Index(md, "| secondary |"), "sources are listed in a stable order")
	assert.Contains(t, md, "| External debt | -$5.00 |")
}

func TestGrowthMarkdown_Trend(t *testing.T) {
	var points []models.CombinedGrowthPoint
	for i := 0; i < 6; i++ {
		points = append(points, models.CombinedGrowthPoint{
			Date:     time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			NetWorth: decimal.NewFromInt(int64(1000 + i*100)),
		})
	}
	md := growthMarkdown(points, "USD")
	assert.Contains(t, md, "**Trend:** Rising")
	// Last value 1500 against a six-point average of 1250.
	assert.Contains(t, md, "(20.00% from the 6-point average)")

	short := growthMarkdown(points[:2], "USD")
	assert.Contains(t, short, "**Trend:** Flat")
	assert.NotContains(t, short, "from the")
}
