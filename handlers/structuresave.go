package handlers

import (
	"fmt"
	"net/http"

	"github.com/formrelay/webform-relay-api/validation"

	"github.com/gorilla/mux"
)

// StructureSaveHandler caches a pushed form structure document under the
// form ID in the request path. Writes replace any prior structure wholesale,
// there are no merge or patch semantics.
type StructureSaveHandler struct {
	BaseHandler
}

// ServeHTTP implements http.Handler
func (h StructureSaveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	formID := vars["id"]

	if !validation.ValidFormID(formID) {
		h.RespondError(w, http.StatusBadRequest,
			"form ID may only contain letters, numbers, dashes and underscores")
		return
	}

	// The document shape is opaque to the relay, only a fully empty object
	// is rejected
	var structure map[string]interface{}

	if err := h.ParseJSON(r, &structure); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(structure) == 0 {
		h.RespondError(w, http.StatusBadRequest,
			"structure document must not be empty")
		return
	}

	if err := h.Structures.Save(h.Ctx, formID, structure); err != nil {
		panic(fmt.Errorf("failed to save structure for form %s: %s",
			formID, err.Error()))
	}

	h.Logger.Debugf("saved structure for form %s", formID)

	h.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"form_id": formID,
	})
}
