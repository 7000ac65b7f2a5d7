package handlers

import (
	"fmt"
	"net/http"

	"github.com/formrelay/webform-relay-api/parsing"
)

// SubmissionsListHandler queries submissions by status, form and creation
// date range for operational visibility. Results come back newest first.
type SubmissionsListHandler struct {
	BaseHandler
}

// ServeHTTP implements http.Handler
func (h SubmissionsListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	filters, parseErr := parsing.ParseSubmissionFilters(r.URL.Query())
	if parseErr != nil {
		h.RespondError(w, http.StatusBadRequest, parseErr.UserError())
		return
	}

	submissions, err := h.Submissions.Filtered(h.Ctx, filters)
	if err != nil {
		panic(fmt.Errorf("failed to query submissions: %s", err.Error()))
	}

	h.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": submissions,
		"count":       len(submissions),
	})
}
