package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mathfrancisco/phishing-detector/internal/core"
)

// SQLiteCache is a SQLite implementation of the CacheRepository
// interface. Verdicts survive restarts, which matters for mail streams
// where the same campaign text arrives repeatedly.
type SQLiteCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteCache creates a new SQLite verdict cache.
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS verdict_cache (
			text_hash TEXT PRIMARY KEY,
			label TEXT,
			probability REAL,
			model_version TEXT,
			last_seen TIMESTAMP,
			expires_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_verdict_expires_at ON verdict_cache(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	cache := &SQLiteCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}
	go cache.startCleanupTask()
	return cache, nil
}

// Get retrieves a cached verdict for a text hash.
func (c *SQLiteCache) Get(ctx context.Context, textHash string) (*core.CacheEntry, error) {
	var label, modelVersion, lastSeen, expiresAt string
	var probability float64

	err := c.db.QueryRowContext(ctx, `
		SELECT label, probability, model_version, last_seen, expires_at
		FROM verdict_cache
		WHERE text_hash = ? AND expires_at > ?
	`, textHash, time.Now().Format(time.RFC3339)).Scan(&label, &probability, &modelVersion, &lastSeen, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry := &core.CacheEntry{
		TextHash:     textHash,
		Label:        core.Label(label),
		Probability:  probability,
		ModelVersion: modelVersion,
	}
	if entry.LastSeen, err = time.Parse(time.RFC3339, lastSeen); err != nil {
		return nil, fmt.Errorf("failed to parse last_seen timestamp: %w", err)
	}
	if entry.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to parse expires_at timestamp: %w", err)
	}
	return entry, nil
}

// Set stores a cache entry.
func (c *SQLiteCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO verdict_cache
			(text_hash, label, probability, model_version, last_seen, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.TextHash, string(entry.Label), entry.Probability, entry.ModelVersion,
		entry.LastSeen.Format(time.RFC3339), entry.ExpiresAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry.
func (c *SQLiteCache) Delete(ctx context.Context, textHash string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM verdict_cache WHERE text_hash = ?
	`, textHash)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries.
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM verdict_cache WHERE expires_at <= ?
	`, time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to clean up cache: %w", err)
	}
	if count, err := result.RowsAffected(); err == nil {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", count))
	}
	return nil
}

func (c *SQLiteCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database.
func (c *SQLiteCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
