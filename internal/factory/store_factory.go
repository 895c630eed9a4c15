package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mathfrancisco/phishing-detector/internal/adapters/store"
	"github.com/mathfrancisco/phishing-detector/internal/config"
	"github.com/mathfrancisco/phishing-detector/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates artifact stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateArtifactStore creates an artifact store based on the configuration
func (f *StoreFactory) CreateArtifactStore() (core.ArtifactStore, error) {
	storeType := f.cfg.GetString("artifacts.store_type")

	switch storeType {
	case "file":
		return store.NewFileStore(f.cfg.GetString("artifacts.dir"), f.logger)
	case "sqlite":
		sqlitePath := f.cfg.GetString("artifacts.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(sqlitePath, f.logger)
	default:
		return nil, fmt.Errorf("unsupported artifact store type: %s", storeType)
	}
}

// ArtifactVersion returns the configured artifact version to serve
func (f *StoreFactory) ArtifactVersion() string {
	return f.cfg.GetString("artifacts.version")
}
