package server

import (
	"fmt"
	"io"
	"net/http"

	"fcaengine/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handlePreviewFCI(w http.ResponseWriter, r *http.Request) {
	result, err := s.reports.Preview(r.Context(), flow.Param(r.Context(), "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Service) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Generate(r.Context(), flow.Param(r.Context(), "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, reportStatus(report, http.StatusCreated), report)
}

func (s *Service) handleRegenerateReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Regenerate(r.Context(), flow.Param(r.Context(), "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, reportStatus(report, http.StatusOK), report)
}

func (s *Service) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Report(r.Context(), flow.Param(r.Context(), "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

func (s *Service) handleDownloadArtifact(w http.ResponseWriter, r *http.Request) {
	id := flow.Param(r.Context(), "id")

	body, err := s.reports.OpenArtifact(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="assessment-report-%s.pdf"`, id))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		s.logger.WithError(err).WithField("assessment_id", id).Error("failed to stream report artifact")
	}
}

// reportStatus answers 202 while the artifact is still pending.
func reportStatus(report *types.Report, rendered int) int {
	if report.RenderStatus == types.RenderStatusPending {
		return http.StatusAccepted
	}
	return rendered
}
