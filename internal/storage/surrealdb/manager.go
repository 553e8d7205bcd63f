package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/surrealdb/surrealdb.go"
)

const (
	tableSnapshot = "snapshot"
	tableHolding  = "holding"
	tableAccount  = "external_account"
	tableEntry    = "account_entry"
)

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger

	snapshotStore *SnapshotStore
	accountStore  *AccountStore
}

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()

	// Connect to SurrealDB
	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	// Sign in
	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	// Select namespace and database
	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	if err := defineSchema(ctx, db); err != nil {
		return nil, err
	}

	m := newManager(db, logger)

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

func newManager(db *surrealdb.DB, logger *common.Logger) *Manager {
	return &Manager{
		db:            db,
		logger:        logger,
		snapshotStore: NewSnapshotStore(db, logger),
		accountStore:  NewAccountStore(db, logger),
	}
}

// defineSchema creates tables and lookup indexes. SurrealDB v3 errors on
// querying tables that do not exist.
func defineSchema(ctx context.Context, db *surrealdb.DB) error {
	statements := []string{
		"DEFINE TABLE IF NOT EXISTS " + tableSnapshot + " SCHEMALESS",
		"DEFINE TABLE IF NOT EXISTS " + tableHolding + " SCHEMALESS",
		"DEFINE TABLE IF NOT EXISTS " + tableAccount + " SCHEMALESS",
		"DEFINE TABLE IF NOT EXISTS " + tableEntry + " SCHEMALESS",
		"DEFINE INDEX IF NOT EXISTS snapshot_user ON " + tableSnapshot + " FIELDS user_id, source",
		"DEFINE INDEX IF NOT EXISTS holding_snapshot ON " + tableHolding + " FIELDS snapshot_id",
		"DEFINE INDEX IF NOT EXISTS account_user ON " + tableAccount + " FIELDS user_id",
		"DEFINE INDEX IF NOT EXISTS entry_account ON " + tableEntry + " FIELDS account_id",
		"DEFINE INDEX IF NOT EXISTS entry_user ON " + tableEntry + " FIELDS user_id",
	}
	for _, sql := range statements {
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return fmt.Errorf("failed to define schema (%s): %w", sql, err)
		}
	}
	return nil
}

func (m *Manager) SnapshotStore() interfaces.SnapshotStore {
	return m.snapshotStore
}

func (m *Manager) AccountStore() interfaces.AccountStore {
	return m.accountStore
}

func (m *Manager) Backend() string {
	return "surrealdb"
}

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)

// firstResult flattens the first statement's rows of a query response.
func firstResult[T any](results *[]surrealdb.QueryResult[[]T]) []T {
	if results == nil || len(*results) == 0 {
		return nil
	}
	return (*results)[0].Result
}
