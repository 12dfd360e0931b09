// Package trending defines core types shared across subsystems.
package trending

import (
	"context"
	"time"
)

// Repository is one entry extracted from the trending page.
//
// Stars is kept as the literal digit string shown on the page (thousands
// separators stripped); the site's behavior for abbreviated counts is
// unobserved, so no numeric contract is imposed.
type Repository struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       string `json:"stars"`
}

// Page is the raw result of fetching a URL.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher retrieves a single page. Implementations return an error only for
// transport-level failures; HTTP error statuses are reported via StatusCode.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// RobotsPolicy decides whether a URL may be fetched for the configured
// client identity.
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// SnapshotStore persists at most one snapshot per UTC day. Save reports true
// when a write occurred and false when the day's artifact already existed or
// the write failed; a non-nil error carries the cause.
type SnapshotStore interface {
	Save(ctx context.Context, day string, records []Repository) (bool, error)
}

// Notifier announces a freshly written snapshot to downstream consumers.
type Notifier interface {
	Publish(ctx context.Context, day string) error
}

// Clock abstracts wall-clock time so date-keyed behavior is testable.
type Clock interface {
	Now() time.Time
}

// IDGenerator mints identifiers for individual scraper runs.
type IDGenerator interface {
	NewID() (string, error)
}
