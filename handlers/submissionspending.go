package handlers

import (
	"fmt"
	"net/http"
	"strconv"
)

// defaultDrainLimit caps a drain when the caller supplies no limit
const defaultDrainLimit int64 = 50

// SubmissionsPendingHandler returns queued submissions for the polling
// collector, earliest first. A pure read: submissions stay pending until the
// collector acknowledges delivery through a status transition, so two
// collectors polling concurrently can see overlapping sets (at least once
// delivery).
type SubmissionsPendingHandler struct {
	BaseHandler
}

// ServeHTTP implements http.Handler
func (h SubmissionsPendingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := defaultDrainLimit

	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.ParseInt(rawLimit, 10, 64)
		if err != nil || parsed <= 0 {
			h.RespondError(w, http.StatusBadRequest,
				"limit query parameter must be a positive integer")
			return
		}

		limit = parsed
	}

	submissions, err := h.Submissions.DrainPending(h.Ctx, limit)
	if err != nil {
		panic(fmt.Errorf("failed to drain pending submissions: %s", err.Error()))
	}

	h.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": submissions,
		"count":       len(submissions),
	})
}
