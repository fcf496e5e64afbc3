package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbirkedal/cvlens/internal/analyzers"
	"github.com/mbirkedal/cvlens/internal/dates"
	"github.com/mbirkedal/cvlens/internal/pipeline"
	"github.com/mbirkedal/cvlens/internal/segmenter"
	"github.com/mbirkedal/cvlens/internal/session"
	"github.com/mbirkedal/cvlens/internal/types"
)

var srvClock = dates.FixedClock{Instant: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)}

func newTestServer() *Server {
	analyzer := pipeline.NewAnalyzer(segmenter.DefaultConfig(), analyzers.DefaultConfig(), srvClock, nil, nil, session.NewStore())
	return New(Config{Port: 0}, analyzer)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func analyzeSample(t *testing.T, s *Server) types.CV {
	t.Helper()
	rec := doJSON(t, s, "POST", "/cvs", AnalyzeRequest{
		Filename: "cv.txt",
		Text:     "EXPERIENCE\nSenior Engineer\nAcme Inc\nJan 2010 - Dec 2012\nFiling and tasks.\n\nEDUCATION\nBSc, 2009",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var cv types.CV
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cv))
	return cv
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	rec := doJSON(t, s, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestAnalyzeEndpoint(t *testing.T) {
	s := newTestServer()
	cv := analyzeSample(t, s)

	assert.NotEmpty(t, cv.ID)
	assert.NotEmpty(t, cv.Sections)
	assert.NotEmpty(t, cv.Observations)
}

func TestAnalyzeEndpoint_RejectsEmptyText(t *testing.T) {
	s := newTestServer()
	rec := doJSON(t, s, "POST", "/cvs", AnalyzeRequest{Filename: "cv.txt"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Text")
}

func TestAnalyzeEndpoint_RejectsInvalidJSON(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest("POST", "/cvs", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCV(t *testing.T) {
	s := newTestServer()
	cv := analyzeSample(t, s)

	rec := doJSON(t, s, "GET", "/cvs/"+cv.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, "GET", "/cvs/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSection(t *testing.T) {
	s := newTestServer()
	cv := analyzeSample(t, s)

	rec := doJSON(t, s, "GET", fmt.Sprintf("/cvs/%s/sections/%s", cv.ID, cv.Sections[0].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sec types.CVSection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sec))
	assert.Equal(t, cv.Sections[0].ID, sec.ID)

	rec = doJSON(t, s, "GET", fmt.Sprintf("/cvs/%s/sections/sec_999", cv.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestObservationResponse(t *testing.T) {
	s := newTestServer()
	cv := analyzeSample(t, s)
	require.NotEmpty(t, cv.Observations)
	obsID := cv.Observations[0].ID

	path := fmt.Sprintf("/cvs/%s/observations/%s/response", cv.ID, obsID)

	rec := doJSON(t, s, "POST", path, ObservationResponseRequest{Action: "accept"})
	require.Equal(t, http.StatusOK, rec.Code)

	var obs types.Observation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &obs))
	assert.Equal(t, types.StatusAccepted, obs.Status)

	// Terminal states do not revert: a second response conflicts.
	rec = doJSON(t, s, "POST", path, ObservationResponseRequest{Action: "decline"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestObservationResponse_ValidatesAction(t *testing.T) {
	s := newTestServer()
	cv := analyzeSample(t, s)

	path := fmt.Sprintf("/cvs/%s/observations/%s/response", cv.ID, cv.Observations[0].ID)
	rec := doJSON(t, s, "POST", path, ObservationResponseRequest{Action: "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestObservationResponse_UnknownObservation(t *testing.T) {
	s := newTestServer()
	cv := analyzeSample(t, s)

	path := fmt.Sprintf("/cvs/%s/observations/%s/response", cv.ID, "00000000-0000-0000-0000-000000000000")
	rec := doJSON(t, s, "POST", path, ObservationResponseRequest{Action: "accept"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRewrite_WithoutModelFails(t *testing.T) {
	s := newTestServer()
	cv := analyzeSample(t, s)

	path := fmt.Sprintf("/cvs/%s/sections/%s/rewrite", cv.ID, cv.Sections[0].ID)
	rec := doJSON(t, s, "POST", path, RewriteRequest{Instruction: "shorten this"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflights(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest("OPTIONS", "/cvs", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
