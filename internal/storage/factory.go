// Package storage selects and opens the configured persistence backend.
package storage

import (
	"fmt"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/storage/memory"
	"github.com/bobmcallan/tally/internal/storage/sqldb"
	"github.com/bobmcallan/tally/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendSurrealDB = "surrealdb"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
)

// NewStorageManager opens the backend named by config.Storage.Backend.
// Supported backends: "surrealdb" (default), "sqlite", "postgres", "memory".
func NewStorageManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = BackendSurrealDB
	}

	switch backend {
	case BackendSurrealDB:
		return surrealdb.NewManager(logger, config)

	case BackendSQLite, BackendPostgres:
		return sqldb.NewManager(logger, config)

	case BackendMemory:
		logger.Warn().Msg("Using in-memory storage: data is lost on shutdown")
		return memory.NewManager(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: surrealdb, sqlite, postgres, memory)", backend)
	}
}
