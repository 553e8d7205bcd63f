// Package sqldb implements the storage interfaces on a relational database
// through gorm: SQLite for single-user installs, PostgreSQL for hosted ones.
package sqldb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// Manager implements interfaces.StorageManager on gorm.
type Manager struct {
	db      *gorm.DB
	logger  *common.Logger
	backend string

	snapshotStore *SnapshotStore
	accountStore  *AccountStore
}

// NewManager opens the database named by config.Storage (backend "sqlite"
// or "postgres") and migrates the schema.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	backend := config.Storage.Backend
	dsn := config.Storage.DSN

	var dialector gorm.Dialector
	switch backend {
	case "sqlite":
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if dir := filepath.Dir(dsn); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return nil, fmt.Errorf("failed to create database directory: %w", err)
				}
			}
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})
	default:
		return nil, fmt.Errorf("unsupported sql backend %q", backend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}

	m, err := Open(db, backend, logger)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("backend", backend).
		Msg("SQL storage manager initialized")
	return m, nil
}

// Open wraps an existing gorm connection and migrates the schema. SQLite
// connections are pinned to one so in-memory databases are shared.
func Open(db *gorm.DB, backend string, logger *common.Logger) (*Manager, error) {
	if backend == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Manager{
		db:            db,
		logger:        logger,
		backend:       backend,
		snapshotStore: &SnapshotStore{db: db, logger: logger},
		accountStore:  &AccountStore{db: db, logger: logger},
	}, nil
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&snapshotRow{}, &holdingRow{}, &accountRow{}, &entryRow{})
}

func (m *Manager) SnapshotStore() interfaces.SnapshotStore {
	return m.snapshotStore
}

func (m *Manager) AccountStore() interfaces.AccountStore {
	return m.accountStore
}

func (m *Manager) Backend() string {
	return m.backend
}

func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)

// wrap maps gorm errors onto the storage error taxonomy.
func wrap(op, kind, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFound(kind, id)
	}
	if errors.Is(err, models.ErrNotFound) {
		return err
	}
	return models.NewPersistenceError(op, err)
}
