// Package retry decorates a trending.Fetcher with bounded retries and
// exponential backoff on transient failures.
package retry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Dawn-Aurora/github-trending-crawler/internal/metrics"
	"github.com/Dawn-Aurora/github-trending-crawler/internal/trending"
)

// Config controls retry behavior.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// BackoffBase is the delay before the first retry; each subsequent
	// retry doubles it.
	BackoffBase time.Duration
	// BackoffMax caps the computed delay. Zero means no cap.
	BackoffMax time.Duration
	// RetryStatuses lists HTTP statuses treated as transient. Empty means
	// the default set (429, 500, 502, 503, 504).
	RetryStatuses []int
}

// defaultRetryStatuses are the rate-limited and server-side statuses worth
// another attempt.
var defaultRetryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Fetcher wraps another trending.Fetcher with retry/backoff policy. A 2xx
// response returns immediately; transient statuses and transport errors are
// retried up to MaxRetries; any other status fails at once. Terminal
// failures surface as *trending.NetworkError.
type Fetcher struct {
	next      trending.Fetcher
	cfg       Config
	retryable map[int]struct{}
	logger    *zap.Logger
}

// New builds the decorator around next.
func New(next trending.Fetcher, cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	statuses := cfg.RetryStatuses
	if len(statuses) == 0 {
		statuses = defaultRetryStatuses
	}
	retryable := make(map[int]struct{}, len(statuses))
	for _, s := range statuses {
		retryable[s] = struct{}{}
	}
	return &Fetcher{
		next:      next,
		cfg:       cfg,
		retryable: retryable,
		logger:    logger,
	}
}

// Fetch implements trending.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (trending.Page, error) {
	maxAttempts := f.cfg.MaxRetries + 1
	var (
		lastErr    error
		lastStatus int
	)

	f.logger.Info("fetching page", zap.String("url", rawURL), zap.Int("max_attempts", maxAttempts))

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		page, err := f.next.Fetch(ctx, rawURL)
		metrics.ObserveFetchAttempt(page.StatusCode)
		switch {
		case err == nil && page.StatusCode >= 200 && page.StatusCode < 300:
			f.logger.Info("fetched page",
				zap.String("url", rawURL),
				zap.Int("status", page.StatusCode),
				zap.Int("attempt", attempt),
			)
			return page, nil
		case err == nil && !f.isRetryable(page.StatusCode):
			return trending.Page{}, &trending.NetworkError{
				URL:        rawURL,
				StatusCode: page.StatusCode,
				Attempts:   attempt,
			}
		case err == nil:
			lastStatus = page.StatusCode
			lastErr = nil
		default:
			if ctx.Err() != nil {
				return trending.Page{}, &trending.NetworkError{
					URL:      rawURL,
					Attempts: attempt,
					Err:      err,
				}
			}
			lastStatus = 0
			lastErr = err
		}

		if attempt == maxAttempts {
			break
		}
		delay := f.backoff(attempt)
		f.logger.Warn("transient fetch failure; retrying",
			zap.String("url", rawURL),
			zap.Int("status", lastStatus),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(lastErr),
		)
		metrics.ObserveFetchRetry()
		if err := sleepWithContext(ctx, delay); err != nil {
			return trending.Page{}, &trending.NetworkError{
				URL:      rawURL,
				Attempts: attempt,
				Err:      err,
			}
		}
	}

	return trending.Page{}, &trending.NetworkError{
		URL:        rawURL,
		StatusCode: lastStatus,
		Attempts:   maxAttempts,
		Err:        lastErr,
	}
}

func (f *Fetcher) isRetryable(status int) bool {
	_, ok := f.retryable[status]
	return ok
}

// backoff doubles the base delay per completed attempt, capped by BackoffMax.
func (f *Fetcher) backoff(attempt int) time.Duration {
	delay := f.cfg.BackoffBase << (attempt - 1)
	if f.cfg.BackoffMax > 0 && delay > f.cfg.BackoffMax {
		delay = f.cfg.BackoffMax
	}
	return delay
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry backoff sleep context: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
