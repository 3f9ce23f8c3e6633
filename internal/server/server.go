package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fcaengine/internal/assessment"
	"fcaengine/internal/ledger"
	"fcaengine/internal/report"
	"fcaengine/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type ElementCatalog interface {
	AllElements(ctx context.Context) ([]*types.Element, error)
	ElementsByMajorGroup(ctx context.Context, majorGroup string) ([]*types.Element, error)
}

type Service struct {
	logger logrus.FieldLogger
	config *types.Config
	auth   *Authenticator

	assessments *assessment.Service
	ledger      *ledger.Service
	reports     *report.Compiler
	elements    ElementCatalog

	handler http.Handler
	server  *http.Server
}

func New(
	config *types.Config,
	logger logrus.FieldLogger,
	auth *Authenticator,
	assessments *assessment.Service,
	ledger *ledger.Service,
	reports *report.Compiler,
	elements ElementCatalog,
) *Service {
	mux := flow.New()

	s := &Service{
		logger: logger,
		config: config,
		auth:   auth,

		assessments: assessments,
		ledger:      ledger,
		reports:     reports,
		elements:    elements,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	// flow only runs middleware for matched routes, so path rewriting has to
	// happen in front of the mux.
	s.handler = s.StripTrailingSlash(mux)
	s.server.Handler = s.handler

	return s
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireActor)

		r.HandleFunc("/api/elements", s.handleListElements, http.MethodGet)

		r.HandleFunc("/api/assessments", s.handleCreateAssessment, http.MethodPost)
		r.HandleFunc("/api/assessments", s.handleListAssessments, http.MethodGet)
		r.HandleFunc("/api/assessments/:id", s.handleGetAssessment, http.MethodGet)
		r.HandleFunc("/api/assessments/:id/start", s.handleStartAssessment, http.MethodPost)
		r.HandleFunc("/api/assessments/:id/complete", s.handleCompleteAssessment, http.MethodPost)
		r.HandleFunc("/api/assessments/:id/cancel", s.handleCancelAssessment, http.MethodPost)
		r.HandleFunc("/api/assessments/:id/reassign", s.handleReassignAssessment, http.MethodPost)

		r.HandleFunc("/api/assessments/:id/elements", s.handleListEntries, http.MethodGet)
		r.HandleFunc("/api/assessments/:id/elements/:elementID", s.handleUpsertEntry, http.MethodPut)
		r.HandleFunc("/api/assessments/:id/elements/:elementID", s.handleDeleteEntry, http.MethodDelete)

		r.HandleFunc("/api/assessments/:id/fci", s.handlePreviewFCI, http.MethodGet)
		r.HandleFunc("/api/assessments/:id/report", s.handleGenerateReport, http.MethodPost)
		r.HandleFunc("/api/assessments/:id/report", s.handleGetReport, http.MethodGet)
		r.HandleFunc("/api/assessments/:id/report/regenerate", s.handleRegenerateReport, http.MethodPost)
		r.HandleFunc("/api/assessments/:id/report/artifact", s.handleDownloadArtifact, http.MethodGet)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
