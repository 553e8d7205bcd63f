package common

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount in the currency's conventional format,
// e.g. "$1,234.50" for USD. Unknown currency codes fall back to
// "<code> 1234.50".
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return currency + " " + amount.StringFixed(2)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatMoneyWhole renders an amount rounded to whole currency units,
// e.g. "$1,235". Used for chart axes where cents are noise.
func FormatMoneyWhole(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return currency + " " + amount.StringFixed(0)
	}
	f := cur.Formatter()
	f.Fraction = 0
	return f.Format(amount.Round(0).IntPart())
}
