// Package local implements a local filesystem snapshot store.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Dawn-Aurora/github-trending-crawler/internal/storage"
	"github.com/Dawn-Aurora/github-trending-crawler/internal/trending"
)

// Config captures the parameters for the local filesystem snapshot store.
type Config struct {
	// BaseDir is the root directory under which date partitions are created.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// SnapshotStore writes date-partitioned snapshot artifacts to the local
// filesystem.
type SnapshotStore struct {
	baseDir string
}

// New creates a new local filesystem-backed snapshot store.
func New(cfg Config) (*SnapshotStore, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
				return nil, fmt.Errorf("failed to create base directory: %w", mkErr)
			}
		} else {
			return nil, fmt.Errorf("failed to stat base directory: %w", err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	return &SnapshotStore{
		baseDir: cfg.BaseDir,
	}, nil
}

// Save writes the day's artifact unless one already exists. The existence
// check is the only guard: concurrent processes racing on the same day is an
// accepted last-check-wins race.
func (s *SnapshotStore) Save(_ context.Context, day string, records []trending.Repository) (bool, error) {
	if strings.TrimSpace(day) == "" {
		return false, fmt.Errorf("day is required")
	}

	dir := filepath.Join(s.baseDir, day)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return false, fmt.Errorf("failed to create date directory: %w", err)
	}

	path := filepath.Join(dir, storage.SnapshotFilename)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat snapshot file: %w", err)
	}

	data, err := storage.EncodeSnapshot(records)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return true, nil
}

// Path returns the artifact location for a given day.
func (s *SnapshotStore) Path(day string) string {
	return filepath.Join(s.baseDir, day, storage.SnapshotFilename)
}
