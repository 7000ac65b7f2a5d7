package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/formrelay/webform-relay-api/config"
	"github.com/formrelay/webform-relay-api/metrics"
	"github.com/formrelay/webform-relay-api/models"

	"github.com/Noah-Huppert/golog"
)

// BaseHandler provides helper methods and commonly used variables for API endpoints to base
// their http.Handlers off
type BaseHandler struct {
	// Ctx is the application context
	Ctx context.Context

	// Logger logs information
	Logger golog.Logger

	// Cfg is the application configuration
	Cfg *config.Config

	// Metrics holds internal metrics recorders
	Metrics metrics.Metrics

	// Structures is the form structure cache accessor
	Structures models.StructureStore

	// Submissions is the submission queue accessor
	Submissions models.SubmissionStore
}

// GetChild makes a child instance of the base handler with a prefix
func (h BaseHandler) GetChild(prefix string) BaseHandler {
	h.Logger = h.Logger.GetChild(prefix)

	return h
}

// RespondJSON sends an object as a JSON encoded response
func (h BaseHandler) RespondJSON(w http.ResponseWriter, status int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	if err := encoder.Encode(resp); err != nil {
		panic(fmt.Errorf("failed to encode response as JSON: %s", err.Error()))
	}
}

// RespondError sends a client presentable error message as a JSON response
func (h BaseHandler) RespondError(w http.ResponseWriter, status int, msg string) {
	h.RespondJSON(w, status, map[string]string{
		"error": msg,
	})
}

// ParseJSON parses a request body as JSON. Returns an error meant to be shown
// to the user if the body cannot be decoded.
func (h BaseHandler) ParseJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("failed to decode request body as JSON: %s", err.Error())
	}

	return nil
}

// CallerIP determines the IP a request came from. Prefers the first entry of
// the X-Forwarded-For header since the relay normally runs behind a proxy,
// falls back to the transport's remote address.
func CallerIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")

		return strings.TrimSpace(parts[0])
	}

	ip := r.RemoteAddr
	if i := strings.LastIndex(ip, ":"); i != -1 {
		ip = ip[:i]
	}

	return ip
}
