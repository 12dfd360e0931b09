// Package gcs implements a Google Cloud Storage snapshot store.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"github.com/Dawn-Aurora/github-trending-crawler/internal/storage"
	"github.com/Dawn-Aurora/github-trending-crawler/internal/trending"
)

// SnapshotStore writes date-partitioned snapshot objects to a GCS bucket.
type SnapshotStore struct {
	client *gstorage.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// New initializes a GCS client and verifies bucket access. Authentication
// is handled via Google's Application Default Credentials.
func New(ctx context.Context, bucket, prefix string, logger *zap.Logger) (*SnapshotStore, error) {
	client, err := gstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	// Fail fast on startup if the bucket is misconfigured.
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		if cerr := client.Close(); cerr != nil {
			logger.Warn("Failed to close GCS client after bucket check failure", zap.Error(cerr))
		}
		return nil, fmt.Errorf("failed to get GCS bucket %q attributes: %w", bucket, err)
	}

	return &SnapshotStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}, nil
}

// Save uploads the day's artifact with a DoesNotExist precondition so a
// pre-existing snapshot is never overwritten, matching the local store's
// write-once semantics.
func (s *SnapshotStore) Save(ctx context.Context, day string, records []trending.Repository) (bool, error) {
	obj := s.client.Bucket(s.bucket).Object(s.objectName(day))

	if _, err := obj.Attrs(ctx); err == nil {
		return false, nil
	} else if !errors.Is(err, gstorage.ErrObjectNotExist) {
		return false, fmt.Errorf("failed to check snapshot object: %w", err)
	}

	data, err := storage.EncodeSnapshot(records)
	if err != nil {
		return false, err
	}

	wc := obj.If(gstorage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	wc.ContentType = "application/json"
	if _, err := wc.Write(data); err != nil {
		if cerr := wc.Close(); cerr != nil {
			s.logger.Warn("Failed to close GCS writer after write failure", zap.Error(cerr))
		}
		return false, fmt.Errorf("failed to write snapshot object: %w", err)
	}
	if err := wc.Close(); err != nil {
		if isPreconditionFailed(err) {
			// Another process won the race; treat it like the existence check.
			return false, nil
		}
		return false, fmt.Errorf("failed to finalize snapshot object: %w", err)
	}
	return true, nil
}

// Close releases the underlying client connection.
func (s *SnapshotStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close GCS client: %w", err)
	}
	return nil
}

func (s *SnapshotStore) objectName(day string) string {
	if s.prefix == "" {
		return fmt.Sprintf("%s/%s", day, storage.SnapshotFilename)
	}
	return fmt.Sprintf("%s/%s/%s", s.prefix, day, storage.SnapshotFilename)
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
