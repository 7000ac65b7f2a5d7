package handlers

import (
	"net/http"
)

// Pinger reports if the backing store is reachable
type Pinger interface {
	// Ping tests the store connection
	Ping() error
}

// HealthHandler is used to determine if the server is running and can reach
// its backing store
type HealthHandler struct {
	BaseHandler

	// Store is pinged to determine health. Can be nil, in which case only
	// process liveness is reported.
	Store Pinger
}

// ServeHTTP implements http.Handler
func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Store != nil {
		if err := h.Store.Ping(); err != nil {
			h.Logger.Errorf("health check failed to ping store: %s", err.Error())

			h.RespondJSON(w, http.StatusServiceUnavailable, map[string]bool{
				"ok": false,
			})
			return
		}
	}

	h.RespondJSON(w, http.StatusOK, map[string]bool{
		"ok": true,
	})
}
