// Package local_test tests the local filesystem snapshot store.
package local_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dawn-Aurora/github-trending-crawler/internal/storage/local"
	"github.com/Dawn-Aurora/github-trending-crawler/internal/trending"
)

var sampleRecords = []trending.Repository{
	{Name: "torvalds/linux", Description: "Linux kernel source tree", Language: "C", Stars: "160000"},
	{Name: "example/unicode", Description: "日本語の説明 ünïcode", Language: "", Stars: "0"},
}

func TestNew(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		tempDir := t.TempDir()
		store, err := local.New(local.Config{BaseDir: tempDir})
		require.NoError(t, err)
		assert.NotNil(t, store)
	})

	t.Run("MissingBaseDir", func(t *testing.T) {
		_, err := local.New(local.Config{})
		assert.Error(t, err)
	})

	t.Run("CreatesBaseDir", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "data")
		_, err := local.New(local.Config{BaseDir: base})
		require.NoError(t, err)
		info, err := os.Stat(base)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("BaseDirIsNotADirectory", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(tempFile, []byte("x"), 0o600))
		_, err := local.New(local.Config{BaseDir: tempFile})
		assert.Error(t, err)
	})
}

func TestSaveWritesDatePartitionedArtifact(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: tempDir})
	require.NoError(t, err)

	written, err := store.Save(context.Background(), "2026-08-23", sampleRecords)
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(filepath.Join(tempDir, "2026-08-23", "trending.json"))
	require.NoError(t, err)

	var got []trending.Repository
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, sampleRecords, got)

	// Pretty-printed with 2-space indentation, non-ASCII kept literal.
	assert.Contains(t, string(data), "\n  {")
	assert.Contains(t, string(data), `    "name": "torvalds/linux"`)
	assert.Contains(t, string(data), "日本語の説明")
	assert.NotContains(t, string(data), `\u`)
}

func TestSaveIsIdempotentPerDay(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: tempDir})
	require.NoError(t, err)

	written, err := store.Save(context.Background(), "2026-08-23", sampleRecords)
	require.NoError(t, err)
	require.True(t, written)

	first, err := os.ReadFile(store.Path("2026-08-23"))
	require.NoError(t, err)

	// A second run the same day must not touch the artifact, even with
	// different data.
	written, err = store.Save(context.Background(), "2026-08-23", []trending.Repository{
		{Name: "other/repo", Stars: "1"},
	})
	require.NoError(t, err)
	assert.False(t, written)

	second, err := os.ReadFile(store.Path("2026-08-23"))
	require.NoError(t, err)
	assert.Equal(t, first, second, "existing snapshot content must be unchanged")
}

func TestSaveSeparateDays(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: tempDir})
	require.NoError(t, err)

	written, err := store.Save(context.Background(), "2026-08-22", sampleRecords)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = store.Save(context.Background(), "2026-08-23", sampleRecords)
	require.NoError(t, err)
	assert.True(t, written)
}

func TestSaveEmptyDayRejected(t *testing.T) {
	t.Parallel()

	store, err := local.New(local.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	written, err := store.Save(context.Background(), "  ", sampleRecords)
	assert.Error(t, err)
	assert.False(t, written)
}

func TestSaveReportsIOFailure(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: tempDir})
	require.NoError(t, err)

	// #nosec G302 -- directory made read-only intentionally for test coverage.
	require.NoError(t, os.Chmod(tempDir, 0o500))
	t.Cleanup(func() {
		// #nosec G302 -- reverting permissions to allow cleanup.
		_ = os.Chmod(tempDir, 0o700)
	})

	written, err := store.Save(context.Background(), "2026-08-23", sampleRecords)
	assert.Error(t, err)
	assert.False(t, written)
}
