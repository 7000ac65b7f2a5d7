package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestWindowLimiterCeilingAndRollover ensures the limiter rejects for the
// remainder of a window once the ceiling is hit and admits again in the next
// window
func TestWindowLimiterCeilingAndRollover(t *testing.T) {
	now := time.Date(2019, 7, 1, 12, 0, 0, 0, time.UTC)

	limiter := &WindowLimiter{
		MaxRequests: 2,
		Window:      time.Minute,
		Now: func() time.Time {
			return now
		},
	}

	ok, _ := limiter.Allow("1.2.3.4")
	assert.True(t, ok)

	ok, _ = limiter.Allow("1.2.3.4")
	assert.True(t, ok)

	ok, retryAfter := limiter.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.True(t, retryAfter > 0, "rejection should carry a retry hint")

	// Still inside the same window
	now = now.Add(30 * time.Second)
	ok, _ = limiter.Allow("1.2.3.4")
	assert.False(t, ok)

	// A fresh window permits requests again
	now = now.Add(31 * time.Second)
	ok, _ = limiter.Allow("1.2.3.4")
	assert.True(t, ok)
}

// TestWindowLimiterKeysIndependently ensures one caller hitting the ceiling
// does not affect another
func TestWindowLimiterKeysIndependently(t *testing.T) {
	now := time.Date(2019, 7, 1, 12, 0, 0, 0, time.UTC)

	limiter := &WindowLimiter{
		MaxRequests: 1,
		Window:      time.Minute,
		Now: func() time.Time {
			return now
		},
	}

	ok, _ := limiter.Allow("1.2.3.4")
	assert.True(t, ok)

	ok, _ = limiter.Allow("1.2.3.4")
	assert.False(t, ok)

	ok, _ = limiter.Allow("5.6.7.8")
	assert.True(t, ok)
}

// TestRateLimitHandlerRejectsWithHint ensures over ceiling requests get a 429
// with a retry hint and never reach the gated handler
func TestRateLimitHandlerRejectsWithHint(t *testing.T) {
	base := newTestBaseHandler(newMemStructureStore(), newMemSubmissionStore())

	handler := RateLimitHandler{
		BaseHandler: base,
		Limiter: &WindowLimiter{
			MaxRequests: 1,
			Window:      time.Minute,
		},
		Handler: okHandler{base},
	}

	r := httptest.NewRequest("GET", "/webform/F/structure", nil)
	r.Header.Set("X-Forwarded-For", "9.9.9.9")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, r)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, r)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Contains(t, resp.Body.String(), "retry_after_seconds")
}

// TestCallerIPPrefersForwardedFor ensures the proxy supplied caller IP wins
// over the transport address
func TestCallerIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/health", nil)
	r.RemoteAddr = "10.0.0.1:39432"

	assert.Equal(t, "10.0.0.1", CallerIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", CallerIP(r))
}
