package core

import (
	"context"

	"github.com/mathfrancisco/phishing-detector/internal/artifact"
)

// ArtifactStore defines the interface for persisting trained model artifacts
type ArtifactStore interface {
	// Save persists a new model artifact under its version tag
	Save(ctx context.Context, model *artifact.Model) error

	// Load retrieves an artifact by version. An empty version or "latest"
	// loads the most recently saved artifact.
	Load(ctx context.Context, version string) (*artifact.Model, error)
}

// CacheRepository defines the interface for caching classification verdicts
type CacheRepository interface {
	// Get retrieves a cached entry for a message text hash
	Get(ctx context.Context, textHash string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, textHash string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
