package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/services/growth"
	"github.com/bobmcallan/tally/internal/services/importer"
	"github.com/bobmcallan/tally/internal/services/ledger"
	"github.com/bobmcallan/tally/internal/storage"
)

// App holds the initialized storage and services.
// It is the shared core used by both cmd/tally-server and cmd/tally.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	Storage       interfaces.StorageManager
	ImportService interfaces.ImportService
	LedgerService interfaces.LedgerService
	GrowthService interfaces.GrowthService
	StartupTime   time.Time

	logCloser io.Closer
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath checks the provided path, TALLY_CONFIG, then the binary
// directory, then the development fallback.
func resolveConfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if p := common.ConfigPath(""); p != "" {
		return p
	}
	configPath = filepath.Join(getBinaryDir(), "tally.toml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return "config/tally.toml"
	}
	return configPath
}

// NewApp loads configuration and initializes logging, storage and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	binDir := getBinaryDir()

	// Resolve relative file paths to the binary directory
	if config.Storage.Backend == storage.BackendSQLite && config.Storage.DSN != ":memory:" && !filepath.IsAbs(config.Storage.DSN) {
		config.Storage.DSN = filepath.Join(binDir, config.Storage.DSN)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger, closer := common.NewLoggerFromConfig(config.Logging)

	a, err := New(config, logger)
	if err != nil {
		closer.Close()
		return nil, err
	}
	a.logCloser = closer
	return a, nil
}

// New wires services onto the storage backend named in config.
func New(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := &App{
		Config:        config,
		Logger:        logger,
		Storage:       storageManager,
		ImportService: importer.NewService(storageManager, logger),
		LedgerService: ledger.NewService(storageManager, logger),
		GrowthService: growth.NewService(storageManager, logger, config),
		StartupTime:   startupStart,
	}

	logger.Info().
		Str("backend", storageManager.Backend()).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: close storage, then the log file.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Storage = nil
	}
	if a.logCloser != nil {
		a.logCloser.Close()
		a.logCloser = nil
	}
}
