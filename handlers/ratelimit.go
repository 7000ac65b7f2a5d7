package handlers

import (
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WindowLimiter is an in-process fixed window request counter. Once a
// caller's counter reaches the ceiling further requests are rejected until
// the window rolls over. State is scoped to this process only: running more
// than one instance multiplies the effective ceiling.
type WindowLimiter struct {
	// MaxRequests is the ceiling per caller per window
	MaxRequests int

	// Window is the length of one counting window
	Window time.Duration

	// Now returns the current time. Defaults to time.Now, replaceable
	// in tests.
	Now func() time.Time

	// mu guards windows and lastPrune
	mu sync.Mutex

	// windows holds the current window per caller key
	windows map[string]*callerWindow

	// lastPrune is when stale windows were last dropped
	lastPrune time.Time
}

// callerWindow counts requests from one caller inside one window
type callerWindow struct {
	// start is when the window opened
	start time.Time

	// count is the number of requests admitted or rejected in the window
	count int
}

// Allow counts a request against key's current window. Returns whether the
// request is admitted and, if not, how long until the window rolls over.
func (l *WindowLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}

	if l.windows == nil {
		l.windows = map[string]*callerWindow{}
		l.lastPrune = now
	}

	// Lazy prune so an idle caller's entry doesn't live forever
	if now.Sub(l.lastPrune) >= l.Window {
		for k, cw := range l.windows {
			if now.Sub(cw.start) >= l.Window {
				delete(l.windows, k)
			}
		}
		l.lastPrune = now
	}

	cw, ok := l.windows[key]
	if !ok || now.Sub(cw.start) >= l.Window {
		cw = &callerWindow{start: now}
		l.windows[key] = cw
	}

	cw.count++

	if cw.count > l.MaxRequests {
		return false, cw.start.Add(l.Window).Sub(now)
	}

	return true, 0
}

// RateLimitHandler rejects requests from callers which exceeded the
// configured request ceiling for the current window. Rejected requests are
// never queued or delayed, the caller is told to retry later.
type RateLimitHandler struct {
	BaseHandler

	// Limiter admits or rejects requests
	Limiter *WindowLimiter

	// Handler to run if the request is admitted
	Handler http.Handler
}

// ServeHTTP implements http.Handler
func (h RateLimitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ok, retryAfter := h.Limiter.Allow(CallerIP(r))
	if !ok {
		h.Metrics.APIRateLimitRejectionsTotal.With(prometheus.Labels{
			"path": r.URL.Path,
		}).Inc()

		h.RespondJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":               "rate limit exceeded",
			"retry_after_seconds": int(math.Ceil(retryAfter.Seconds())),
		})
		return
	}

	h.Handler.ServeHTTP(w, r)
}
