package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/formrelay/webform-relay-api/req"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

// newStructureRouter wires the structure handlers the way main does
func newStructureRouter(base BaseHandler) *mux.Router {
	router := mux.NewRouter()

	router.Handle("/webform/{id}/structure", StructureSaveHandler{
		base,
	}).Methods("POST")

	router.Handle("/webform/{id}/structure", StructureGetHandler{
		base,
	}).Methods("GET")

	return router
}

// TestStructureSaveThenGetRoundTrips ensures a pushed structure document is
// served back out with identical content
func TestStructureSaveThenGetRoundTrips(t *testing.T) {
	base := newTestBaseHandler(newMemStructureStore(), newMemSubmissionStore())
	router := newStructureRouter(base)

	doc := `{"fields": [{"name": "email", "type": "text"}], "title": "Contact"}`

	saveResp := httptest.NewRecorder()
	router.ServeHTTP(saveResp, httptest.NewRequest("POST",
		"/webform/F/structure", strings.NewReader(doc)))

	assert.Equal(t, http.StatusOK, saveResp.Code)
	assert.JSONEq(t, `{"ok": true, "form_id": "F"}`, saveResp.Body.String())

	getResp := httptest.NewRecorder()
	router.ServeHTTP(getResp, httptest.NewRequest("GET",
		"/webform/F/structure", nil))

	assert.Equal(t, http.StatusOK, getResp.Code)

	var stored map[string]interface{}
	err := json.Unmarshal(getResp.Body.Bytes(), &stored)
	assert.Nil(t, err, "failed to decode get response as JSON")

	storedDoc, err := json.Marshal(stored["structure"])
	assert.Nil(t, err, "failed to re-encode stored structure")
	assert.JSONEq(t, doc, string(storedDoc))

	assert.Equal(t, float64(1), stored["version"])
}

// TestStructureSaveReplacesWholesale ensures a second save fully replaces the
// first document, with no field merging
func TestStructureSaveReplacesWholesale(t *testing.T) {
	base := newTestBaseHandler(newMemStructureStore(), newMemSubmissionStore())
	router := newStructureRouter(base)

	firstResp := httptest.NewRecorder()
	router.ServeHTTP(firstResp, httptest.NewRequest("POST", "/webform/F/structure",
		strings.NewReader(`{"title": "first", "obsolete": true}`)))
	assert.Equal(t, http.StatusOK, firstResp.Code)

	secondResp := httptest.NewRecorder()
	router.ServeHTTP(secondResp, httptest.NewRequest("POST", "/webform/F/structure",
		strings.NewReader(`{"title": "second"}`)))
	assert.Equal(t, http.StatusOK, secondResp.Code)

	getResp := httptest.NewRecorder()
	router.ServeHTTP(getResp, httptest.NewRequest("GET", "/webform/F/structure", nil))

	var stored map[string]interface{}
	err := json.Unmarshal(getResp.Body.Bytes(), &stored)
	assert.Nil(t, err, "failed to decode get response as JSON")

	storedDoc, err := json.Marshal(stored["structure"])
	assert.Nil(t, err, "failed to re-encode stored structure")
	assert.JSONEq(t, `{"title": "second"}`, string(storedDoc))

	assert.Equal(t, float64(2), stored["version"])
}

// TestStructureSaveRejectsEmptyDocument ensures an empty document body is a
// client error and nothing is stored
func TestStructureSaveRejectsEmptyDocument(t *testing.T) {
	structures := newMemStructureStore()
	base := newTestBaseHandler(structures, newMemSubmissionStore())
	router := newStructureRouter(base)

	// Build the request by hand to exercise req.ReaderDummyCloser
	saveResp := httptest.NewRecorder()
	router.ServeHTTP(saveResp, &http.Request{
		Method: "POST",
		URL: &url.URL{
			Path: "/webform/F/structure",
		},
		Body: req.ReaderDummyCloser{
			bytes.NewBufferString("{}"),
		},
	})

	assert.Equal(t, http.StatusBadRequest, saveResp.Code)

	getResp := httptest.NewRecorder()
	router.ServeHTTP(getResp, httptest.NewRequest("GET", "/webform/F/structure", nil))
	assert.Equal(t, http.StatusNotFound, getResp.Code)
}

// TestStructureSaveRejectsBadFormID ensures form IDs with unsafe characters
// are rejected
func TestStructureSaveRejectsBadFormID(t *testing.T) {
	base := newTestBaseHandler(newMemStructureStore(), newMemSubmissionStore())
	router := newStructureRouter(base)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest("POST",
		"/webform/bad%20id/structure", strings.NewReader(`{"title": "x"}`)))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

// TestStructureGetUnknownFormNotFound ensures reading an unknown form yields
// a not found response which echoes the missing key
func TestStructureGetUnknownFormNotFound(t *testing.T) {
	base := newTestBaseHandler(newMemStructureStore(), newMemSubmissionStore())
	router := newStructureRouter(base)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest("GET", "/webform/missing/structure", nil))

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.JSONEq(t, `{"error": "form structure not found", "form_id": "missing"}`,
		resp.Body.String())
}
