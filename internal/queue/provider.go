// Package queue defines the interface for publishing snapshot notifications.
// A notification is sent after a snapshot is written so downstream consumers
// can pick up the new artifact without polling the store.
package queue

import (
	"context"
)

// Provider defines the common interface for a notification publisher.
type Provider interface {
	// Publish sends a notification that a snapshot was written for day.
	Publish(ctx context.Context, day string) error
	// Close releases any underlying connections.
	Close() error
}

// NoOpProvider is a publisher that performs no operations. It is the default
// when no messaging backend is configured.
type NoOpProvider struct{}

// Publish for NoOpProvider does nothing and always returns nil.
func (NoOpProvider) Publish(_ context.Context, _ string) error {
	return nil
}

// Close for NoOpProvider does nothing and always returns nil.
func (NoOpProvider) Close() error {
	return nil
}
