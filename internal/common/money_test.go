package common

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatMoney(decimal.RequireFromString("1234.5"), "USD"))
	assert.Equal(t, "-$10.00", FormatMoney(decimal.RequireFromString("-10"), "USD"))
	assert.Equal(t, "XYZ 5.25", FormatMoney(decimal.RequireFromString("5.25"), "XYZ"))
}

func TestFormatMoneyWhole(t *testing.T) {
	assert.Equal(t, "$125,000", FormatMoneyWhole(decimal.RequireFromString("124999.6"), "USD"))
	assert.Equal(t, "XYZ 3", FormatMoneyWhole(decimal.RequireFromString("2.5"), "XYZ"))
}
