package importer

import (
	"errors"
	"testing"

	"github.com/bobmcallan/tally/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var primaryHeader = []string{
	"Account Name", "Account Number", "Symbol", "Name", "Asset Category",
	"Quantity", "Price", "Book Value", "Market Value", "Gain/Loss", "Gain/Loss %", "Portfolio %",
}

var secondaryHeader = []string{
	"Account Type", "Client ID", "Ticker", "Security Description", "Asset Class",
	"Units", "Last Price", "Total Cost", "Current Value", "Unrealized G/L", "Unrealized G/L %", "% of Portfolio",
}

func TestDetectFormat_BySource(t *testing.T) {
	f, err := DetectFormat(primaryHeader, "")
	require.NoError(t, err)
	assert.Equal(t, models.SourcePrimary, f.Source)

	f, err = DetectFormat(secondaryHeader, "")
	require.NoError(t, err)
	assert.Equal(t, models.SourceSecondary, f.Source)
}

func TestDetectFormat_CaseAndBOMInsensitive(t *testing.T) {
	header := append([]string{"\ufeffaccount name"}, primaryHeader[1:]...)
	header[2] = "  SYMBOL "
	f, err := DetectFormat(header, models.SourcePrimary)
	require.NoError(t, err)
	assert.Equal(t, models.SourcePrimary, f.Source)

	labels := f.canonicalHeader(header)
	assert.Equal(t, "Account Name", labels[0])
	assert.Equal(t, "Symbol", labels[2])
}

func TestDetectFormat_MissingColumns(t *testing.T) {
	header := []string{"Symbol", "Name", "Quantity", "Account Number"}

	_, err := DetectFormat(header, "")
	var missing *models.MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "primary-holdings-v1", missing.Format)
	assert.Equal(t, []string{"Book Value", "Market Value"}, missing.Missing)
}

func TestDetectFormat_SourceHintMismatch(t *testing.T) {
	_, err := DetectFormat(primaryHeader, models.SourceSecondary)
	var missing *models.MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "secondary-positions-v2", missing.Format)
	assert.Contains(t, missing.Missing, "Ticker")
}

func TestDetectFormat_Unrecognised(t *testing.T) {
	_, err := DetectFormat([]string{"Date", "Description", "Amount"}, "")
	var missing *models.MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Empty(t, missing.Format)
	assert.Contains(t, err.Error(), "unrecognised file format")
}
