package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mathfrancisco/phishing-detector/internal/artifact"
	"go.uber.org/zap"
)

// FileStore persists model artifacts as one JSON file per version in a
// directory. Writes go through a temp file and rename so a crashed save
// never leaves a truncated artifact behind.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates a file-backed artifact store rooted at dir.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Save writes the artifact under its version tag.
func (s *FileStore) Save(ctx context.Context, model *artifact.Model) error {
	if err := model.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	path := s.path(model.Version)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize artifact: %w", err)
	}

	s.logger.Info("Artifact saved",
		zap.String("version", model.Version),
		zap.String("path", path),
		zap.Int("bytes", len(data)))
	return nil
}

// Load reads an artifact by version. An empty version or "latest" loads
// the newest version tag present.
func (s *FileStore) Load(ctx context.Context, version string) (*artifact.Model, error) {
	if version == "" || version == "latest" {
		versions, err := s.Versions()
		if err != nil {
			return nil, err
		}
		if len(versions) == 0 {
			return nil, fmt.Errorf("no artifacts in %s", s.dir)
		}
		version = versions[len(versions)-1]
	}

	data, err := os.ReadFile(s.path(version))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", version, err)
	}

	var model artifact.Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", version, err)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return &model, nil
}

// Versions lists available artifact versions, oldest first. Version tags
// are timestamp-derived, so lexical order is chronological order.
func (s *FileStore) Versions() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	var versions []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		versions = append(versions, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(versions)
	return versions, nil
}

func (s *FileStore) path(version string) string {
	return filepath.Join(s.dir, version+".json")
}
