package handlers

import (
	"fmt"
	"net/http"

	"github.com/formrelay/webform-relay-api/models"

	"github.com/gorilla/mux"
)

// StructureGetHandler serves a cached form structure back out. No
// authentication, the frontend calls this directly.
type StructureGetHandler struct {
	BaseHandler
}

// ServeHTTP implements http.Handler
func (h StructureGetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	formID := vars["id"]

	structure, err := h.Structures.Get(h.Ctx, formID)
	if err == models.ErrNotFound {
		h.RespondJSON(w, http.StatusNotFound, map[string]string{
			"error":   "form structure not found",
			"form_id": formID,
		})
		return
	} else if err != nil {
		panic(fmt.Errorf("failed to get structure for form %s: %s",
			formID, err.Error()))
	}

	h.RespondJSON(w, http.StatusOK, structure)
}
