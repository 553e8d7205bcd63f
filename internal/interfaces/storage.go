// Package interfaces defines service contracts for Tally
package interfaces

import (
	"context"

	"github.com/bobmcallan/tally/internal/models"
)

// StorageManager coordinates the configured persistence backend.
type StorageManager interface {
	SnapshotStore() SnapshotStore
	AccountStore() AccountStore

	// Backend names the active backend ("surrealdb", "sqlite", "postgres").
	Backend() string

	Close() error
}

// SnapshotStore persists snapshots with their holdings and metrics.
// Every backend failure is returned as *models.PersistenceError; a missing
// (or foreign) record is returned as *models.NotFoundError.
type SnapshotStore interface {
	// ListSnapshots returns the user's snapshots in chronological order
	// (snapshot date, then import time). An empty source lists every source.
	ListSnapshots(ctx context.Context, userID string, source models.Source) ([]*models.Snapshot, error)

	// ListSnapshotMetrics is ListSnapshots joined with each snapshot's metrics.
	ListSnapshotMetrics(ctx context.Context, userID string, source models.Source) ([]models.SnapshotWithMetrics, error)

	GetSnapshot(ctx context.Context, userID, snapshotID string) (*models.Snapshot, error)
	MetricsFor(ctx context.Context, snapshotID string) (*models.PortfolioMetrics, error)

	// HoldingsFor returns the snapshot's holdings in import row order.
	HoldingsFor(ctx context.Context, snapshotID string) ([]*models.HoldingRecord, error)

	// CreateSnapshot writes the snapshot, its holdings and its metrics
	// all-or-nothing.
	CreateSnapshot(ctx context.Context, snapshot *models.Snapshot, holdings []*models.HoldingRecord, metrics *models.PortfolioMetrics) error

	// DeleteSnapshot removes the snapshot with its holdings and metrics.
	DeleteSnapshot(ctx context.Context, userID, snapshotID string) error
}

// AccountStore persists external accounts and their append-only entries.
type AccountStore interface {
	ListAccounts(ctx context.Context, userID string) ([]*models.ExternalAccount, error)
	GetAccount(ctx context.Context, userID, accountID string) (*models.ExternalAccount, error)

	// SaveAccount inserts or replaces the account row. Entries are untouched.
	SaveAccount(ctx context.Context, account *models.ExternalAccount) error

	// DeleteAccount removes the account and every entry recorded against it.
	DeleteAccount(ctx context.Context, userID, accountID string) error

	AppendEntry(ctx context.Context, entry *models.ExternalAccountEntry) error

	// ListEntries returns one account's entries, newest first.
	ListEntries(ctx context.Context, accountID string) ([]*models.ExternalAccountEntry, error)

	// ListUserEntries returns the entries of every account the user owns, newest first.
	ListUserEntries(ctx context.Context, userID string) ([]*models.ExternalAccountEntry, error)
}
