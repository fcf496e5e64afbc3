package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mbirkedal/cvlens/internal/pipeline"
	"github.com/mbirkedal/cvlens/internal/session"
	"github.com/mbirkedal/cvlens/internal/types"
)

// maxUploadBytes bounds the accepted document size
const maxUploadBytes = 1 << 20

// AnalyzeRequest is the upload body
type AnalyzeRequest struct {
	Filename string `json:"filename" validate:"omitempty,max=255"`
	Text     string `json:"text" validate:"required,min=1"`
}

// ObservationResponseRequest records the user's answer to one observation
type ObservationResponseRequest struct {
	Action string `json:"action" validate:"required,oneof=accept decline lock"`
}

// RewriteRequest asks for a section rewrite
type RewriteRequest struct {
	Instruction   string `json:"instruction" validate:"required,min=1,max=2000"`
	ObservationID string `json:"observation_id" validate:"omitempty,uuid"`
}

// handleAnalyze runs the full pipeline over an uploaded document
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cv, err := s.analyzer.Analyze(r.Context(), pipeline.Options{
		Filename: req.Filename,
		RawText:  req.Text,
	})
	if err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusCreated, cv)
}

// handleGetCV returns a stored analysis session
func (s *Server) handleGetCV(w http.ResponseWriter, r *http.Request) {
	cv, err := s.analyzer.Store().Get(r.PathValue("id"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, cv)
}

// handleGetSection returns one section of a stored CV
func (s *Server) handleGetSection(w http.ResponseWriter, r *http.Request) {
	sec, err := s.analyzer.Store().GetSection(r.PathValue("id"), r.PathValue("section_id"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sec)
}

// handleObservationResponse applies a user response to an observation
func (s *Server) handleObservationResponse(w http.ResponseWriter, r *http.Request) {
	var req ObservationResponseRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	status := map[string]types.ObservationStatus{
		"accept":  types.StatusAccepted,
		"decline": types.StatusDeclined,
		"lock":    types.StatusLocked,
	}[req.Action]

	obs, err := s.analyzer.Store().UpdateObservationStatus(r.PathValue("id"), r.PathValue("obs_id"), status)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, obs)
}

// handleRewrite rewrites one section according to an instruction
func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req RewriteRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	rewritten, err := s.analyzer.RewriteSection(r.Context(), r.PathValue("id"), r.PathValue("section_id"), req.ObservationID, req.Instruction)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"section_id":        r.PathValue("section_id"),
		"rewritten_content": rewritten,
	})
}

// decodeBody parses and validates a JSON request body, writing the error
// response itself when the body is unusable.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			s.errorResponse(w, http.StatusBadRequest, "invalid field: "+fieldErrs[0].Field())
		} else {
			s.errorResponse(w, http.StatusBadRequest, "invalid request")
		}
		return false
	}
	return true
}

// handleError maps domain errors to HTTP status codes
func (s *Server) handleError(w http.ResponseWriter, err error) {
	var notFound *session.NotFoundError
	if errors.As(err, &notFound) {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	var transition *session.TransitionError
	if errors.As(err, &transition) {
		s.errorResponse(w, http.StatusConflict, err.Error())
		return
	}
	s.errorResponse(w, http.StatusInternalServerError, err.Error())
}
