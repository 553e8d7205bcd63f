package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bobmcallan/tally/internal/models"
	"github.com/shopspring/decimal"
)

var amountStripper = strings.NewReplacer(
	"$", "", "€", "", "£", "", "¥", "",
	",", "",
	" ", "", "\t", "", "\u00a0", "",
)

// ParseAmount parses a brokerage-formatted number and rounds it to places
// fractional digits, half away from zero. Currency symbols, thousands
// separators, whitespace and a trailing "%" are ignored; what remains in
// "(x)" is -x, so "$(1.50)" and "($1.50)" both read -1.50. Exponent
// notation is rejected. An empty cell or a lone "-" is "no value" and
// returns (nil, nil).
func ParseAmount(raw string, places int32) (*decimal.Decimal, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " "))
	if s == "" || s == "-" {
		return nil, nil
	}

	s = amountStripper.Replace(s)
	negative := false
	if len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return nil, fmt.Errorf("no digits in %q", raw)
	}
	if strings.ContainsAny(s, "eE") {
		return nil, fmt.Errorf("invalid number %q", raw)
	}
	if negative && strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("double negative in %q", raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", raw)
	}
	if negative {
		d = d.Neg()
	}
	d = d.Round(places)
	return &d, nil
}

// identifierPattern is the accepted shape of an account or client identifier.
// Masked exports replace digits with "*".
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9*-]{4,32}$`)

// NormalizeRow converts one raw row, keyed by the source format's column
// labels, into a canonical HoldingRecord. Every unparseable numeric cell is
// reported in a single MalformedRowError; the caller sets its Row.
// Identity columns are validated and then dropped.
func NormalizeRow(row map[string]string, source models.Source) (*models.HoldingRecord, error) {
	format, ok := FormatFor(source)
	if !ok {
		return nil, fmt.Errorf("unknown source %q", source)
	}

	var bad []string
	cell := func(fl field) string {
		label := format.Label(fl)
		if label == "" {
			return ""
		}
		return row[label]
	}
	amount := func(fl field, places int32) *decimal.Decimal {
		d, err := ParseAmount(cell(fl), places)
		if err != nil {
			bad = append(bad, format.Label(fl))
			return nil
		}
		return d
	}

	for _, col := range format.IdentityColumns {
		if !identifierPattern.MatchString(strings.TrimSpace(row[col])) {
			bad = append(bad, col)
		}
	}

	rec := &models.HoldingRecord{
		Source:          source,
		Name:            strings.TrimSpace(cell(fieldName)),
		Category:        strings.TrimSpace(cell(fieldCategory)),
		AccountLabel:    strings.TrimSpace(cell(fieldAccount)),
		Quantity:        amount(fieldQuantity, models.QuantityPlaces),
		Price:           amount(fieldPrice, models.PricePlaces),
		BookValue:       amount(fieldBookValue, models.MoneyPlaces),
		MarketValue:     amount(fieldMarketValue, models.MoneyPlaces),
		GainLoss:        amount(fieldGainLoss, models.MoneyPlaces),
		GainLossPct:     amount(fieldGainLossPct, models.PercentPlaces),
		PortfolioWeight: amount(fieldWeight, models.PercentPlaces),
	}
	if sym := strings.TrimSpace(cell(fieldSymbol)); sym != "" {
		sym = strings.ToUpper(sym)
		rec.Symbol = &sym
	}
	if rec.Symbol == nil && rec.Name == "" {
		bad = append(bad, format.Label(fieldName))
	}
	if rec.Category == "" {
		rec.Category = "Uncategorized"
	}

	if len(bad) > 0 {
		return nil, &models.MalformedRowError{Columns: bad}
	}
	return rec, nil
}
