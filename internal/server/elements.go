package server

import (
	"net/http"

	"fcaengine/internal/ledger"

	"github.com/alexedwards/flow"
)

func (s *Service) handleListElements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	group := r.URL.Query().Get("major_group")
	if group == "" {
		elements, err := s.elements.AllElements(ctx)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, elements)
		return
	}

	elements, err := s.elements.ElementsByMajorGroup(ctx, group)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, elements)
}

func (s *Service) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ledger.ListEntries(r.Context(), flow.Param(r.Context(), "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Service) handleUpsertEntry(w http.ResponseWriter, r *http.Request) {
	var in ledger.UpsertInput
	if err := s.decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	in.AssessmentID = flow.Param(r.Context(), "id")
	in.ElementID = flow.Param(r.Context(), "elementID")

	entry, err := s.ledger.UpsertEntry(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Service) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	err := s.ledger.DeleteEntry(r.Context(), flow.Param(r.Context(), "id"), flow.Param(r.Context(), "elementID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
