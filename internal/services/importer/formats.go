package importer

import (
	"sort"
	"strings"

	"github.com/bobmcallan/tally/internal/models"
)

// field is a canonical holding attribute that each format maps to a column label.
type field int

const (
	fieldSymbol field = iota
	fieldName
	fieldCategory
	fieldAccount
	fieldQuantity
	fieldPrice
	fieldBookValue
	fieldMarketValue
	fieldGainLoss
	fieldGainLossPct
	fieldWeight
)

// SourceFormat maps one brokerage's export header onto canonical fields.
type SourceFormat struct {
	Source   models.Source
	Name     string
	Columns  map[field]string
	Required []field

	// IdentityColumns hold account or client identifiers. They are read only
	// to validate their shape and never reach a HoldingRecord.
	IdentityColumns []string
}

// Label returns the column label for f, or "" when the format lacks it.
func (f *SourceFormat) Label(fl field) string {
	return f.Columns[fl]
}

var formats = []*SourceFormat{
	{
		Source: models.SourcePrimary,
		Name:   "primary-holdings-v1",
		Columns: map[field]string{
			fieldSymbol:      "Symbol",
			fieldName:        "Name",
			fieldCategory:    "Asset Category",
			fieldAccount:     "Account Name",
			fieldQuantity:    "Quantity",
			fieldPrice:       "Price",
			fieldBookValue:   "Book Value",
			fieldMarketValue: "Market Value",
			fieldGainLoss:    "Gain/Loss",
			fieldGainLossPct: "Gain/Loss %",
			fieldWeight:      "Portfolio %",
		},
		Required:        []field{fieldSymbol, fieldName, fieldQuantity, fieldMarketValue, fieldBookValue},
		IdentityColumns: []string{"Account Number"},
	},
	{
		Source: models.SourceSecondary,
		Name:   "secondary-positions-v2",
		Columns: map[field]string{
			fieldSymbol:      "Ticker",
			fieldName:        "Security Description",
			fieldCategory:    "Asset Class",
			fieldAccount:     "Account Type",
			fieldQuantity:    "Units",
			fieldPrice:       "Last Price",
			fieldBookValue:   "Total Cost",
			fieldMarketValue: "Current Value",
			fieldGainLoss:    "Unrealized G/L",
			fieldGainLossPct: "Unrealized G/L %",
			fieldWeight:      "% of Portfolio",
		},
		Required:        []field{fieldSymbol, fieldName, fieldQuantity, fieldMarketValue, fieldBookValue},
		IdentityColumns: []string{"Client ID"},
	},
}

// FormatFor returns the format registered for a source.
func FormatFor(source models.Source) (*SourceFormat, bool) {
	for _, f := range formats {
		if f.Source == source {
			return f, true
		}
	}
	return nil, false
}

// normalizeLabel folds a header cell for comparison: BOM and surrounding
// whitespace removed, case-insensitive.
func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}

// requiredLabels returns every label a header must carry for f, identity
// columns included.
func (f *SourceFormat) requiredLabels() []string {
	labels := make([]string, 0, len(f.Required)+len(f.IdentityColumns))
	for _, fl := range f.Required {
		labels = append(labels, f.Columns[fl])
	}
	return append(labels, f.IdentityColumns...)
}

// missingColumns lists the required labels of f absent from header.
func (f *SourceFormat) missingColumns(header map[string]bool) []string {
	var missing []string
	for _, label := range f.requiredLabels() {
		if !header[normalizeLabel(label)] {
			missing = append(missing, label)
		}
	}
	return missing
}

// DetectFormat matches a header row against the known formats. When source
// is non-empty only that source's format is considered. Returns
// MissingColumnsError naming the closest format's missing columns when
// nothing matches.
func DetectFormat(header []string, source models.Source) (*SourceFormat, error) {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[normalizeLabel(h)] = true
	}

	candidates := formats
	if source != "" {
		f, ok := FormatFor(source)
		if !ok {
			return nil, &models.MissingColumnsError{}
		}
		candidates = []*SourceFormat{f}
	}

	var closest *SourceFormat
	var closestMissing []string
	for _, f := range candidates {
		missing := f.missingColumns(present)
		if len(missing) == 0 {
			return f, nil
		}
		// A format only counts as "close" if at least one required column matched.
		if len(missing) == len(f.requiredLabels()) && source == "" {
			continue
		}
		if closest == nil || len(missing) < len(closestMissing) {
			closest, closestMissing = f, missing
		}
	}

	if closest == nil {
		return nil, &models.MissingColumnsError{}
	}
	sort.Strings(closestMissing)
	return nil, &models.MissingColumnsError{Format: closest.Name, Missing: closestMissing}
}

// canonicalHeader maps each header position to the format's own label, so
// rows can be keyed by canonical labels regardless of case or BOM.
func (f *SourceFormat) canonicalHeader(header []string) []string {
	known := make(map[string]string)
	for _, label := range f.Columns {
		known[normalizeLabel(label)] = label
	}
	for _, label := range f.IdentityColumns {
		known[normalizeLabel(label)] = label
	}

	out := make([]string, len(header))
	for i, h := range header {
		if label, ok := known[normalizeLabel(h)]; ok {
			out[i] = label
		} else {
			out[i] = strings.TrimSpace(h)
		}
	}
	return out
}
