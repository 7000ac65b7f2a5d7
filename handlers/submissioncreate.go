package handlers

import (
	"fmt"
	"net/http"

	"github.com/formrelay/webform-relay-api/validation"

	"github.com/gorilla/mux"
)

// submissionCreateRequest is the body of a submission create request
type submissionCreateRequest struct {
	// SubmissionData is the opaque user supplied document to queue
	SubmissionData map[string]interface{} `json:"submission_data"`
}

// SubmissionCreateHandler queues a user submission for the polling
// collector. The submission ID and creation timestamp are assigned server
// side, any caller supplied values for those fields are ignored.
type SubmissionCreateHandler struct {
	BaseHandler
}

// ServeHTTP implements http.Handler
func (h SubmissionCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	formID := vars["id"]

	if !validation.ValidFormID(formID) {
		h.RespondError(w, http.StatusBadRequest,
			"form ID may only contain letters, numbers, dashes and underscores")
		return
	}

	var body submissionCreateRequest

	if err := h.ParseJSON(r, &body); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(body.SubmissionData) == 0 {
		h.RespondError(w, http.StatusBadRequest,
			"submission_data field must have a value")
		return
	}

	submission, err := h.Submissions.Enqueue(h.Ctx, formID, body.SubmissionData)
	if err != nil {
		panic(fmt.Errorf("failed to enqueue submission for form %s: %s",
			formID, err.Error()))
	}

	h.Logger.Debugf("enqueued submission %s", submission.SubmissionID)

	h.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":            true,
		"submission_id": submission.SubmissionID,
	})
}
