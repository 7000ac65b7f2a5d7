package handlers

import (
	"fmt"
	"net/http"

	"github.com/formrelay/webform-relay-api/models"
	"github.com/formrelay/webform-relay-api/validation"

	"github.com/gorilla/mux"
)

// SubmissionStatusHandler transitions a submission's delivery state on
// behalf of the polling collector. Transitions to sent record the sent time,
// transitions to failed increment the retry count. The relay never
// transitions a submission on its own.
type SubmissionStatusHandler struct {
	BaseHandler
}

// ServeHTTP implements http.Handler
func (h SubmissionStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	var body validation.StatusUpdateRequest

	if err := h.ParseJSON(r, &body); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validation.ValidateStatusUpdate(body); err != nil {
		h.RespondError(w, http.StatusBadRequest, fmt.Sprintf(
			"status must be one of: pending, processing, sent, failed: %s",
			err.Error()))
		return
	}

	submission, err := h.Submissions.SetStatus(h.Ctx, id,
		models.SubStatusT(body.Status), body.ErrorMessage)
	if err == models.ErrNotFound {
		h.RespondJSON(w, http.StatusNotFound, map[string]string{
			"error":         "submission not found",
			"submission_id": id,
		})
		return
	} else if err == models.ErrInvalidStatus {
		h.RespondError(w, http.StatusBadRequest, fmt.Sprintf(
			"\"%s\" is not a recognized status", body.Status))
		return
	} else if err != nil {
		panic(fmt.Errorf("failed to set status of submission %s: %s",
			id, err.Error()))
	}

	h.Logger.Debugf("submission %s transitioned to %s", id, submission.Status)

	h.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         true,
		"submission": submission,
	})
}
