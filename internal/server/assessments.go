package server

import (
	"net/http"

	"fcaengine/internal/assessment"
	"fcaengine/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	var in assessment.CreateInput
	if err := s.decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	in.CreatedBy = actorFromContext(r.Context())

	created, err := s.assessments.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Service) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	var filter types.AssessmentFilter
	if err := decoder.Decode(&filter, r.URL.Query()); err != nil {
		s.writeError(w, r, types.WrapError(types.CodeValidation, err, "invalid query"))
		return
	}

	assessments, err := s.assessments.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, assessments)
}

func (s *Service) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.assessments.Get(r.Context(), flow.Param(r.Context(), "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, a)
}

func (s *Service) handleStartAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.assessments.Start(r.Context(), flow.Param(r.Context(), "id"), actorFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, a)
}

func (s *Service) handleCompleteAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.assessments.Complete(r.Context(), flow.Param(r.Context(), "id"), actorFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, a)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (s *Service) handleCancelAssessment(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.assessments.Cancel(r.Context(), flow.Param(r.Context(), "id"), actorFromContext(r.Context()), req.Reason)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, a)
}

type reassignRequest struct {
	AssignedTo string `json:"assignedTo"`
}

func (s *Service) handleReassignAssessment(w http.ResponseWriter, r *http.Request) {
	var req reassignRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.assessments.Reassign(r.Context(), flow.Param(r.Context(), "id"), req.AssignedTo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, a)
}
