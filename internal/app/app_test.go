package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/tally/internal/common"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = "memory"
	a, err := New(cfg, common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNew_WiresServices(t *testing.T) {
	a := newTestApp(t)
	assert.NotNil(t, a.ImportService)
	assert.NotNil(t, a.LedgerService)
	assert.NotNil(t, a.GrowthService)
	assert.Equal(t, "memory", a.Storage.Backend())
}

func TestClose_Idempotent(t *testing.T) {
	a := newTestApp(t)
	a.Close()
	a.Close()
	assert.Nil(t, a.Storage)
}

func TestNewApp_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tally.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
display_currency = "cad"

[storage]
backend = "memory"

[logging]
level = "error"
outputs = ["console"]
`), 0o644))

	a, err := NewApp(path)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, "CAD", a.Config.DisplayCurrency)
	assert.Equal(t, "memory", a.Storage.Backend())
}

const seedJSON = `{
  "accounts": [
    {
      "institution": "Credit Union",
      "name": "Savings",
      "type": "Savings",
      "entries": [
        {"value": "1000", "recorded_at": "2024-01-10"},
        {"value": "1250.50", "note": "bonus", "recorded_at": "2024-02-01T09:00:00Z"}
      ]
    },
    {
      "institution": "Big Bank",
      "name": "Mortgage",
      "type": "Mortgage",
      "entries": [{"value": "300000", "recorded_at": "2024-01-01"}]
    },
    {"institution": "", "name": "Broken", "type": "Savings"}
  ]
}`

func TestImportAccountsFromFile(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "accounts.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o644))

	imported, skipped, err := ImportAccountsFromFile(ctx, a.LedgerService, a.Logger, "alice", path)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, 1, skipped, "account without institution is rejected")

	views, err := a.LedgerService.ListAccounts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		require.True(t, v.CurrentValue.Valid)
		if v.Name == "Savings" {
			assert.Equal(t, "1250.5", v.CurrentValue.Decimal.String())
			assert.True(t, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC).Equal(*v.LastUpdated))
		} else {
			assert.True(t, v.Liability)
		}
	}

	// second run skips what already exists
	imported, skipped, err = ImportAccountsFromFile(ctx, a.LedgerService, a.Logger, "alice", path)
	require.NoError(t, err)
	assert.Equal(t, 0, imported)
	assert.Equal(t, 3, skipped)
}

func TestImportAccountsFromFile_Errors(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	_, _, err := ImportAccountsFromFile(ctx, a.LedgerService, a.Logger, "alice", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read accounts file")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, _, err = ImportAccountsFromFile(ctx, a.LedgerService, a.Logger, "alice", path)
	assert.ErrorContains(t, err, "failed to parse accounts file")
}
