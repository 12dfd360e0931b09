// Package storage defines the interfaces for snapshot persistence.
// The abstraction keeps the scraper independent of where the daily artifact
// lands (local filesystem, Google Cloud Storage, or nowhere for dry runs).
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dawn-Aurora/github-trending-crawler/internal/trending"
)

// SnapshotFilename is the fixed artifact name within each date partition.
const SnapshotFilename = "trending.json"

// EncodeSnapshot renders records as the canonical artifact body: a JSON
// array, 2-space indented, with non-ASCII characters preserved literally.
func EncodeSnapshot(records []trending.Repository) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// NoOpStore discards snapshots. It is useful for dry runs where records are
// extracted but never persisted.
type NoOpStore struct{}

// Save for NoOpStore does nothing and always reports a write.
func (NoOpStore) Save(_ context.Context, _ string, _ []trending.Repository) (bool, error) {
	return true, nil
}
