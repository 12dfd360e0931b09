package trending

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newRobotsServer(t *testing.T, robotsBody string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(robotsBody))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRobotsEnforcerDisallowedPath(t *testing.T) {
	t.Parallel()

	srv := newRobotsServer(t, "User-agent: *\nDisallow: /trending\n", http.StatusOK)
	policy := NewRobotsEnforcer(true, "test-agent/1.0", time.Second, zap.NewNop())

	assert.False(t, policy.Allowed(context.Background(), srv.URL+"/trending"))
	assert.True(t, policy.Allowed(context.Background(), srv.URL+"/other"))
}

func TestRobotsEnforcerAllowedPath(t *testing.T) {
	t.Parallel()

	srv := newRobotsServer(t, "User-agent: *\nAllow: /\n", http.StatusOK)
	policy := NewRobotsEnforcer(true, "test-agent/1.0", time.Second, zap.NewNop())

	assert.True(t, policy.Allowed(context.Background(), srv.URL+"/trending"))
}

func TestRobotsEnforcerAgentSpecificGroup(t *testing.T) {
	t.Parallel()

	const body = "User-agent: test-agent\nDisallow: /trending\n\nUser-agent: *\nAllow: /\n"
	srv := newRobotsServer(t, body, http.StatusOK)
	policy := NewRobotsEnforcer(true, "test-agent/1.0", time.Second, zap.NewNop())

	assert.False(t, policy.Allowed(context.Background(), srv.URL+"/trending"))
}

func TestRobotsEnforcerFailsOpenWhenUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close() // unreachable from here on

	policy := NewRobotsEnforcer(true, "test-agent/1.0", 100*time.Millisecond, zap.NewNop())
	assert.True(t, policy.Allowed(context.Background(), srv.URL+"/trending"),
		"an unretrievable robots policy must not block best-effort operation")
}

func TestRobotsEnforcerRejectsUnparseableURL(t *testing.T) {
	t.Parallel()

	policy := NewRobotsEnforcer(true, "test-agent/1.0", time.Second, zap.NewNop())
	assert.False(t, policy.Allowed(context.Background(), "http://\x7f invalid"))
}

func TestRobotsEnforcerDisabled(t *testing.T) {
	t.Parallel()

	policy := NewRobotsEnforcer(false, "test-agent/1.0", time.Second, zap.NewNop())
	assert.True(t, policy.Allowed(context.Background(), "https://example.com/anything"))
}

func TestRobotsEnforcerCachesPerHost(t *testing.T) {
	t.Parallel()

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			hits++
			_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
		}
	}))
	t.Cleanup(srv.Close)

	policy := NewRobotsEnforcer(true, "test-agent/1.0", time.Second, zap.NewNop())
	assert.True(t, policy.Allowed(context.Background(), srv.URL+"/a"))
	assert.True(t, policy.Allowed(context.Background(), srv.URL+"/b"))
	assert.Equal(t, 1, hits, "robots.txt should be fetched once per host")
}
