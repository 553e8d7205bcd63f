package importer

import (
	"errors"
	"testing"

	"github.com/bobmcallan/tally/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		places int32
		want   string
	}{
		{"plain", "1234.5", 2, "1234.5"},
		{"currency and thousands", "$1,234.567", 2, "1234.57"},
		{"euro with spaces", " € 12 345.00 ", 2, "12345"},
		{"pound", "£0.125", 2, "0.13"},
		{"parentheses negative", "($1,000.25)", 2, "-1000.25"},
		{"currency outside parentheses", "$(1,234.56)", 2, "-1234.56"},
		{"spaced parentheses", "( 12.00 )", 2, "-12"},
		{"leading minus", "-42.005", 2, "-42.01"},
		{"percent", "12.34567%", 4, "12.3457"},
		{"negative percent in parens", "(3.5%)", 4, "-3.5"},
		{"quantity precision", "10.1234565", 6, "10.123457"},
		{"price precision", "99.99995", 4, "100"},
		{"non-breaking space", "1\u00a0000.10", 2, "1000.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw, tt.places)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestParseAmount_NoValue(t *testing.T) {
	for _, raw := range []string{"", "   ", "-", " - "} {
		got, err := ParseAmount(raw, 2)
		assert.NoError(t, err, "raw %q", raw)
		assert.Nil(t, got, "raw %q must be no value, not zero", raw)
	}
}

func TestParseAmount_ZeroIsAValue(t *testing.T) {
	got, err := ParseAmount("0.00", 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsZero())
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, raw := range []string{"abc", "$", "12..5", "N/A", "(-5)", "1.2.3", "1e3", "2.5E-2", "()", "("} {
		_, err := ParseAmount(raw, 2)
		assert.Error(t, err, "raw %q", raw)
	}
}

func TestParseAmount_RoundsHalfAwayFromZero(t *testing.T) {
	pos, err := ParseAmount("2.345", 2)
	require.NoError(t, err)
	assert.True(t, pos.Equal(dec("2.35")))

	neg, err := ParseAmount("(2.345)", 2)
	require.NoError(t, err)
	assert.True(t, neg.Equal(dec("-2.35")))
}

func TestParseAmount_Idempotent(t *testing.T) {
	inputs := []string{"$1,234.565", "(77.777)", "0.0049", "$(1,000)", "12.5%", "-0.005", "123456789.987654321"}
	for _, places := range []int32{models.MoneyPlaces, models.PricePlaces, models.QuantityPlaces} {
		for _, raw := range inputs {
			first, err := ParseAmount(raw, places)
			require.NoError(t, err, raw)

			second, err := ParseAmount(first.String(), places)
			require.NoError(t, err, raw)
			assert.True(t, first.Equal(*second), "%q at %d places drifted: %s -> %s", raw, places, first, second)
		}
	}
}

func primaryRow() map[string]string {
	return map[string]string{
		"Symbol":         "vti",
		"Name":           "Vanguard Total Stock Market ETF",
		"Asset Category": "Equity",
		"Account Name":   "RRSP",
		"Account Number": "12345678",
		"Quantity":       "10.5",
		"Price":          "$250.12345",
		"Book Value":     "$2,000.00",
		"Market Value":   "$2,626.30",
		"Gain/Loss":      "$626.30",
		"Gain/Loss %":    "31.315%",
		"Portfolio %":    "45.5%",
	}
}

func TestNormalizeRow_Primary(t *testing.T) {
	rec, err := NormalizeRow(primaryRow(), models.SourcePrimary)
	require.NoError(t, err)

	require.NotNil(t, rec.Symbol)
	assert.Equal(t, "VTI", *rec.Symbol)
	assert.Equal(t, "Vanguard Total Stock Market ETF", rec.Name)
	assert.Equal(t, "Equity", rec.Category)
	assert.Equal(t, "RRSP", rec.AccountLabel)
	assert.Equal(t, models.SourcePrimary, rec.Source)
	assert.True(t, rec.Quantity.Equal(dec("10.5")))
	assert.True(t, rec.Price.Equal(dec("250.1235")))
	assert.True(t, rec.BookValue.Equal(dec("2000")))
	assert.True(t, rec.MarketValue.Equal(dec("2626.3")))
	assert.True(t, rec.GainLoss.Equal(dec("626.3")))
	assert.True(t, rec.GainLossPct.Equal(dec("31.315")))
	assert.True(t, rec.PortfolioWeight.Equal(dec("45.5")))
}

func TestNormalizeRow_Secondary(t *testing.T) {
	row := map[string]string{
		"Account Type":         "TFSA",
		"Client ID":            "****-5678",
		"Ticker":               "",
		"Security Description": "High Interest Savings",
		"Asset Class":          "",
		"Units":                "1000",
		"Last Price":           "1.00",
		"Total Cost":           "1000",
		"Current Value":        "1000",
		"Unrealized G/L":       "-",
		"Unrealized G/L %":     "",
		"% of Portfolio":       "",
	}
	rec, err := NormalizeRow(row, models.SourceSecondary)
	require.NoError(t, err)

	assert.Nil(t, rec.Symbol, "empty ticker is a null symbol")
	assert.Equal(t, "Uncategorized", rec.Category)
	assert.Nil(t, rec.GainLoss)
	assert.Nil(t, rec.GainLossPct)
	assert.Nil(t, rec.PortfolioWeight)
}

func TestNormalizeRow_MalformedListsEveryColumn(t *testing.T) {
	row := primaryRow()
	row["Quantity"] = "ten"
	row["Market Value"] = "$12.3.4"

	_, err := NormalizeRow(row, models.SourcePrimary)
	require.Error(t, err)

	var malformed *models.MalformedRowError
	require.True(t, errors.As(err, &malformed))
	assert.ElementsMatch(t, []string{"Quantity", "Market Value"}, malformed.Columns)
}

func TestNormalizeRow_IdentityColumnNeverLeaks(t *testing.T) {
	row := primaryRow()
	row["Account Number"] = "98765432"

	rec, err := NormalizeRow(row, models.SourcePrimary)
	require.NoError(t, err)
	for _, s := range []string{rec.Name, rec.Category, rec.AccountLabel, *rec.Symbol} {
		assert.NotContains(t, s, "98765432")
	}
}

func TestNormalizeRow_BadIdentifierShape(t *testing.T) {
	row := primaryRow()
	row["Account Number"] = "12 34; DROP"

	_, err := NormalizeRow(row, models.SourcePrimary)
	var malformed *models.MalformedRowError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, []string{"Account Number"}, malformed.Columns)
	assert.NotContains(t, err.Error(), "DROP", "identifier values must not appear in errors")
}

func TestNormalizeRow_NeedsSymbolOrName(t *testing.T) {
	row := primaryRow()
	row["Symbol"] = ""
	row["Name"] = " "

	_, err := NormalizeRow(row, models.SourcePrimary)
	var malformed *models.MalformedRowError
	require.True(t, errors.As(err, &malformed))
	assert.Contains(t, malformed.Columns, "Name")
}

func TestNormalizeRow_UnknownSource(t *testing.T) {
	_, err := NormalizeRow(primaryRow(), models.Source("robinhood"))
	assert.Error(t, err)
}
