// Package session keeps analyzed CVs in memory for the lifetime of the
// process. There is no persistence tier; a restart loses all sessions.
package session

import (
	"fmt"
	"sync"

	"github.com/mbirkedal/cvlens/internal/types"
)

// NotFoundError reports a missing CV, section or observation
type NotFoundError struct {
	Kind string // "cv", "section" or "observation"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// TransitionError reports an illegal observation status change
type TransitionError struct {
	ObservationID string
	From          types.ObservationStatus
	To            types.ObservationStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("observation %q: cannot transition from %s to %s", e.ObservationID, e.From, e.To)
}

// Store is a concurrency-safe in-memory CV store
type Store struct {
	mu  sync.RWMutex
	cvs map[string]*types.CV
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{cvs: make(map[string]*types.CV)}
}

// Put registers an analyzed CV under its id, replacing any previous entry
func (s *Store) Put(cv *types.CV) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cvs[cv.ID] = cv
}

// Get returns the CV with the given id
func (s *Store) Get(id string) (*types.CV, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cv, ok := s.cvs[id]
	if !ok {
		return nil, &NotFoundError{Kind: "cv", ID: id}
	}
	return cv, nil
}

// GetSection returns one section of a stored CV
func (s *Store) GetSection(cvID, sectionID string) (*types.CVSection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cv, ok := s.cvs[cvID]
	if !ok {
		return nil, &NotFoundError{Kind: "cv", ID: cvID}
	}
	sec := cv.FindSection(sectionID)
	if sec == nil {
		return nil, &NotFoundError{Kind: "section", ID: sectionID}
	}
	return sec, nil
}

// UpdateObservationStatus moves an observation to a new status, enforcing the
// lifecycle rules: terminal states (accepted, declined, locked) never change.
func (s *Store) UpdateObservationStatus(cvID, obsID string, status types.ObservationStatus) (*types.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cv, ok := s.cvs[cvID]
	if !ok {
		return nil, &NotFoundError{Kind: "cv", ID: cvID}
	}
	obs := cv.FindObservation(obsID)
	if obs == nil {
		return nil, &NotFoundError{Kind: "observation", ID: obsID}
	}
	if !obs.Status.CanTransitionTo(status) {
		return nil, &TransitionError{ObservationID: obsID, From: obs.Status, To: status}
	}
	obs.Status = status
	return obs, nil
}

// SetRewrittenContent attaches a rewrite result to one observation
func (s *Store) SetRewrittenContent(cvID, obsID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cv, ok := s.cvs[cvID]
	if !ok {
		return &NotFoundError{Kind: "cv", ID: cvID}
	}
	obs := cv.FindObservation(obsID)
	if obs == nil {
		return &NotFoundError{Kind: "observation", ID: obsID}
	}
	obs.RewrittenContent = content
	return nil
}
