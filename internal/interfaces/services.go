package interfaces

import (
	"context"
	"io"
	"time"

	"github.com/bobmcallan/tally/internal/models"
	"github.com/shopspring/decimal"
)

// ImportService turns brokerage CSV exports into stored snapshots.
type ImportService interface {
	// Import validates the header, normalizes every row, aggregates and
	// persists the snapshot all-or-nothing.
	Import(ctx context.Context, req ImportRequest) (*ImportResult, error)

	// ListSnapshots returns the user's snapshots with metrics, oldest first.
	ListSnapshots(ctx context.Context, userID string, source models.Source) ([]models.SnapshotWithMetrics, error)

	GetSnapshot(ctx context.Context, userID, snapshotID string) (*models.SnapshotWithMetrics, error)
	GetHoldings(ctx context.Context, userID, snapshotID string) ([]*models.HoldingRecord, error)

	// GetAllocation groups a snapshot's market value by asset category.
	GetAllocation(ctx context.Context, userID, snapshotID string) ([]models.CategoryAllocation, error)

	DeleteSnapshot(ctx context.Context, userID, snapshotID string) error
}

// ImportRequest describes one uploaded file.
type ImportRequest struct {
	UserID       string
	Source       models.Source // empty = detect from the header
	SnapshotDate time.Time
	Filename     string
	Body         io.Reader
}

// ImportResult is the stored outcome of a successful import.
type ImportResult struct {
	Snapshot *models.Snapshot         `json:"snapshot"`
	Metrics  *models.PortfolioMetrics `json:"metrics"`
	Format   string                   `json:"format"`
}

// LedgerService manages manually tracked external accounts.
type LedgerService interface {
	CreateAccount(ctx context.Context, userID string, input AccountInput) (*models.ExternalAccount, error)
	ListAccounts(ctx context.Context, userID string) ([]models.ExternalAccountView, error)
	GetAccount(ctx context.Context, userID, accountID string) (*models.ExternalAccountView, error)
	UpdateAccount(ctx context.Context, userID, accountID string, update AccountUpdate) (*models.ExternalAccount, error)
	DeleteAccount(ctx context.Context, userID, accountID string) error

	// RecordValue appends a balance observation. Entries are never edited.
	RecordValue(ctx context.Context, userID, accountID string, input EntryInput) (*models.ExternalAccountEntry, error)

	// ListEntries returns an account's entries, newest first.
	ListEntries(ctx context.Context, userID, accountID string) ([]*models.ExternalAccountEntry, error)
}

// AccountInput creates an external account.
type AccountInput struct {
	Institution string `json:"institution"`
	Name        string `json:"name"`
	Type        string `json:"type"`
}

// AccountUpdate patches an account; nil fields are left unchanged.
type AccountUpdate struct {
	Institution *string `json:"institution,omitempty"`
	Name        *string `json:"name,omitempty"`
	Type        *string `json:"type,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// EntryInput records one balance. A zero RecordedAt means "now".
type EntryInput struct {
	Value      decimal.Decimal `json:"value"`
	Note       string          `json:"note,omitempty"`
	RecordedAt time.Time       `json:"recorded_at,omitempty"`
}

// GrowthService derives valuation series from stored snapshots and the
// external ledger. Series are computed per request, never stored.
type GrowthService interface {
	// BuildGrowthSeries merges every requested source with the external
	// ledger into one carried-forward series.
	BuildGrowthSeries(ctx context.Context, userID string, opts GrowthOptions) ([]models.CombinedGrowthPoint, error)

	// BuildSourceGrowthSeries returns the series for a single source.
	BuildSourceGrowthSeries(ctx context.Context, userID string, source models.Source, opts GrowthOptions) ([]models.GrowthPoint, error)

	// NetWorthSummary reports the live position: latest snapshot per source
	// plus the current value of every active external account.
	NetWorthSummary(ctx context.Context, userID string) (*models.NetWorthSummary, error)

	// RenderChart draws the combined series as a PNG.
	RenderChart(ctx context.Context, userID string, opts GrowthOptions) ([]byte, error)
}

// GrowthOptions filters and shapes a growth series.
type GrowthOptions struct {
	Sources  []models.Source  // empty = all known sources
	Range    models.TimeRange // empty = all
	Interval string           // "", "daily", "weekly" or "monthly"
	Now      time.Time        // zero = time.Now()
}
