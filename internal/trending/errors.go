package trending

import "fmt"

// NetworkError reports a fetch that exhausted its retries or hit a
// non-retryable HTTP status.
type NetworkError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s failed after %d attempt(s): status %d", e.URL, e.Attempts, e.StatusCode)
}

// Unwrap exposes the underlying transport error, if any.
func (e *NetworkError) Unwrap() error {
	return e.Err
}
