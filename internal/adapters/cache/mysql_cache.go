package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mathfrancisco/phishing-detector/internal/core"
)

// MySQLCache is a MySQL implementation of the CacheRepository interface,
// for deployments where several filter instances share one verdict
// cache.
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL verdict cache.
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS verdict_cache (
			text_hash VARCHAR(64) PRIMARY KEY,
			label VARCHAR(16),
			probability DOUBLE,
			model_version VARCHAR(32),
			last_seen DATETIME,
			expires_at DATETIME,
			INDEX idx_verdict_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}
	go cache.startCleanupTask()
	return cache, nil
}

// Get retrieves a cached verdict for a text hash.
func (c *MySQLCache) Get(ctx context.Context, textHash string) (*core.CacheEntry, error) {
	var label, modelVersion string
	var probability float64
	var lastSeen, expiresAt time.Time

	err := c.db.QueryRowContext(ctx, `
		SELECT label, probability, model_version, last_seen, expires_at
		FROM verdict_cache
		WHERE text_hash = ? AND expires_at > NOW()
	`, textHash).Scan(&label, &probability, &modelVersion, &lastSeen, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	return &core.CacheEntry{
		TextHash:     textHash,
		Label:        core.Label(label),
		Probability:  probability,
		ModelVersion: modelVersion,
		LastSeen:     lastSeen,
		ExpiresAt:    expiresAt,
	}, nil
}

// Set stores a cache entry.
func (c *MySQLCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	_, err := c.db.ExecContext(ctx, `
		REPLACE INTO verdict_cache
			(text_hash, label, probability, model_version, last_seen, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.TextHash, string(entry.Label), entry.Probability, entry.ModelVersion,
		entry.LastSeen, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry.
func (c *MySQLCache) Delete(ctx context.Context, textHash string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM verdict_cache WHERE text_hash = ?
	`, textHash)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries.
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM verdict_cache WHERE expires_at <= NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to clean up cache: %w", err)
	}
	if count, err := result.RowsAffected(); err == nil {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", count))
	}
	return nil
}

func (c *MySQLCache) startCleanupTask() {
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
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL connection", zap.Error(err))
	}
}
