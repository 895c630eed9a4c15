package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mathfrancisco/phishing-detector/internal/artifact"
)

// SQLiteStore persists model artifacts in a SQLite database, one row per
// version with the artifact serialized as JSON. Suited to deployments
// that already ship a SQLite file for the verdict cache.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (and if needed initializes) a SQLite artifact store.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS model_artifacts (
			version TEXT PRIMARY KEY,
			created_at TIMESTAMP,
			payload TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create artifacts table: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Save inserts the artifact under its version tag. Versions are
// immutable: saving an existing version is an error, not an update.
func (s *SQLiteStore) Save(ctx context.Context, model *artifact.Model) error {
	if err := model.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO model_artifacts (version, created_at, payload)
		VALUES (?, ?, ?)
	`, model.Version, model.CreatedAt.Format(time.RFC3339), string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert artifact %s: %w", model.Version, err)
	}

	s.logger.Info("Artifact saved",
		zap.String("version", model.Version),
		zap.Int("bytes", len(payload)))
	return nil
}

// Load reads an artifact by version; empty or "latest" loads the most
// recently created row.
func (s *SQLiteStore) Load(ctx context.Context, version string) (*artifact.Model, error) {
	var payload string
	var err error
	if version == "" || version == "latest" {
		err = s.db.QueryRowContext(ctx, `
			SELECT payload FROM model_artifacts
			ORDER BY created_at DESC LIMIT 1
		`).Scan(&payload)
	} else {
		err = s.db.QueryRowContext(ctx, `
			SELECT payload FROM model_artifacts WHERE version = ?
		`, version).Scan(&payload)
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("artifact %q not found", version)
		}
		return nil, fmt.Errorf("failed to query artifact: %w", err)
	}

	var model artifact.Model
	if err := json.Unmarshal([]byte(payload), &model); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return &model, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
