// Package report compiles the FCI report of a completed assessment,
// persists it and renders its PDF artifact.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"fcaengine/internal/fci"
	"fcaengine/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRenderTimeout = 20 * time.Second

	buildOverhead = 30 * time.Second
)

type Store interface {
	Assessment(ctx context.Context, id string) (*types.Assessment, error)
	Building(ctx context.Context, id string) (*types.Building, error)
	ElementsByIDs(ctx context.Context, ids []string) ([]*types.Element, error)
	Entries(ctx context.Context, assessmentID string) ([]*types.ElementConditionEntry, error)
	Report(ctx context.Context, assessmentID string) (*types.Report, error)
	SaveReport(ctx context.Context, report *types.Report) (*types.Report, error)
}

type Renderer interface {
	Render(ctx context.Context, doc types.ReportDocument) (string, error)
}

type ArtifactReader interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type Compiler struct {
	logger    logrus.FieldLogger
	store     Store
	renderer  Renderer
	artifacts ArtifactReader
	policy    *fci.Policy

	renderTimeout time.Duration
	builds        singleflight.Group
	now           func() time.Time
}

type Option func(*Compiler)

func WithPolicy(policy *fci.Policy) Option {
	return func(c *Compiler) { c.policy = policy }
}

func WithRenderTimeout(d time.Duration) Option {
	return func(c *Compiler) {
		if d > 0 {
			c.renderTimeout = d
		}
	}
}

func NewCompiler(logger logrus.FieldLogger, store Store, renderer Renderer, artifacts ArtifactReader, opts ...Option) *Compiler {
	c := &Compiler{
		logger:        logger,
		store:         store,
		renderer:      renderer,
		artifacts:     artifacts,
		policy:        fci.DefaultPolicy,
		renderTimeout: DefaultRenderTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate returns the assessment's report, building it on first use. An
// already rendered report is returned as stored. A report whose render
// failed is rebuilt. When rendering fails again the report comes back with
// RenderStatus pending_render and RenderError set, and no error.
//
// Concurrent calls for one assessment share a single build; late callers
// block and receive the first caller's result.
func (c *Compiler) Generate(ctx context.Context, assessmentID string) (*types.Report, error) {
	return c.do(ctx, assessmentID, false)
}

// Regenerate rebuilds the report from the current ledger and renders a new
// artifact, replacing the previous one.
func (c *Compiler) Regenerate(ctx context.Context, assessmentID string) (*types.Report, error) {
	return c.do(ctx, assessmentID, true)
}

// do runs one build per assessment at a time. The build is detached from
// the caller that started it; each caller stops waiting when its own
// context ends.
func (c *Compiler) do(ctx context.Context, assessmentID string, force bool) (*types.Report, error) {
	ch := c.builds.DoChan(assessmentID, func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.buildTimeout())
		defer cancel()
		return c.build(buildCtx, assessmentID, force)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.WithField("assessment_id", assessmentID).Debug("joined in-flight report build")
		}
		report := *res.Val.(*types.Report)
		return &report, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// buildTimeout covers both render attempts plus the store round trips.
func (c *Compiler) buildTimeout() time.Duration {
	return 2*c.renderTimeout + buildOverhead
}

func (c *Compiler) build(ctx context.Context, assessmentID string, force bool) (*types.Report, error) {
	assessment, err := c.store.Assessment(ctx, assessmentID)
	if err != nil {
		return nil, notFound(err, "assessment", assessmentID)
	}
	if assessment.Status != types.AssessmentStatusCompleted {
		return nil, types.NewError(types.CodeNotReady, "assessment %s is %s, reports require a completed assessment", assessmentID, assessment.Status)
	}

	existing, err := c.store.Report(ctx, assessmentID)
	if err != nil && !errors.Is(err, types.ErrReportNotFound) {
		return nil, err
	}
	if existing != nil && !force && existing.RenderStatus == types.RenderStatusRendered {
		return existing, nil
	}

	building, result, err := c.calculate(ctx, assessment)
	if err != nil {
		return nil, err
	}

	report := &types.Report{
		AssessmentID:     assessment.ID,
		BuildingID:       assessment.BuildingID,
		PolicyVersion:    result.PolicyVersion,
		FCI:              result.FCI,
		Classification:   result.Classification,
		ReplacementValue: result.ReplacementValue,
		DeficiencyCost:   result.DeficiencyCost,
		TotalsByCategory: result.TotalsByCategory,
		TotalsByUrgency:  result.TotalsByUrgency,
		Breakdown:        result.Breakdown,
		RenderStatus:     types.RenderStatusPending,
		GeneratedAt:      c.now().UTC(),
	}
	if existing != nil {
		report.ID = existing.ID
		report.CreatedAt = existing.CreatedAt
		// The previous artifact stays downloadable until a new one replaces it.
		report.ArtifactKey = existing.ArtifactKey
	}

	report, err = c.store.SaveReport(ctx, report)
	if err != nil {
		return nil, err
	}

	logger := c.logger.WithFields(logrus.Fields{
		"assessment_id":  assessment.ID,
		"report_id":      report.ID,
		"fci":            result.FCI,
		"classification": result.Classification,
	})

	key, renderErr := c.render(ctx, types.ReportDocument{
		Report:         report,
		Assessment:     assessment,
		Building:       building,
		Description:    result.Description,
		Recommendation: result.Recommendation,
	})
	if renderErr != nil {
		logger.WithError(renderErr).Error("report render failed, report left pending")

		msg := renderErr.Error()
		report.RenderError = &msg
		report.ArtifactKey = nil
		return c.store.SaveReport(ctx, report)
	}

	report.RenderStatus = types.RenderStatusRendered
	report.RenderError = nil
	report.ArtifactKey = &key

	report, err = c.store.SaveReport(ctx, report)
	if err != nil {
		return nil, err
	}

	if existing != nil && existing.ArtifactKey != nil && *existing.ArtifactKey != key {
		if err := c.artifacts.Delete(ctx, *existing.ArtifactKey); err != nil {
			logger.WithError(err).WithField("artifact_key", *existing.ArtifactKey).Warn("failed to delete superseded artifact")
		}
	}

	logger.WithField("artifact_key", key).Info("report generated")

	return report, nil
}

// render bounds each attempt by the render timeout and retries once, only
// after a timeout.
func (c *Compiler) render(ctx context.Context, doc types.ReportDocument) (string, error) {
	key, err := c.renderOnce(ctx, doc)
	if err == nil {
		return key, nil
	}

	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		c.logger.WithField("assessment_id", doc.Assessment.ID).Warn("report render timed out, retrying once")
		key, err = c.renderOnce(ctx, doc)
		if err == nil {
			return key, nil
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "", types.WrapError(types.CodeRender, err, "render timed out after %s", c.renderTimeout)
	}
	return "", types.WrapError(types.CodeRender, err, "render failed")
}

func (c *Compiler) renderOnce(ctx context.Context, doc types.ReportDocument) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.renderTimeout)
	defer cancel()

	type result struct {
		key string
		err error
	}

	done := make(chan result, 1)
	go func() {
		key, err := c.renderer.Render(ctx, doc)
		done <- result{key, err}
	}()

	select {
	case r := <-done:
		return r.key, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Compiler) calculate(ctx context.Context, assessment *types.Assessment) (*types.Building, *fci.Result, error) {
	building, err := c.store.Building(ctx, assessment.BuildingID)
	if err != nil {
		return nil, nil, notFound(err, "building", assessment.BuildingID)
	}

	entries, err := c.store.Entries(ctx, assessment.ID)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ElementID)
	}

	elements, err := c.store.ElementsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	result, err := fci.Calculate(c.policy, fci.Input{
		Entries:  entries,
		Building: building,
		Catalog:  fci.NewCatalog(elements),
	})
	if err != nil {
		return nil, nil, err
	}

	return building, result, nil
}

// Preview runs the calculator over the current ledger of an assessment in
// any status. Nothing is stored.
func (c *Compiler) Preview(ctx context.Context, assessmentID string) (*fci.Result, error) {
	assessment, err := c.store.Assessment(ctx, assessmentID)
	if err != nil {
		return nil, notFound(err, "assessment", assessmentID)
	}

	_, result, err := c.calculate(ctx, assessment)
	return result, err
}

func (c *Compiler) Report(ctx context.Context, assessmentID string) (*types.Report, error) {
	report, err := c.store.Report(ctx, assessmentID)
	if err != nil {
		return nil, notFound(err, "report for assessment", assessmentID)
	}
	return report, nil
}

// FetchArtifact returns the key of the rendered artifact.
func (c *Compiler) FetchArtifact(ctx context.Context, assessmentID string) (string, error) {
	report, err := c.Report(ctx, assessmentID)
	if err != nil {
		return "", err
	}
	if report.ArtifactKey == nil {
		return "", types.NewError(types.CodeNotFound, "report for assessment %s has no rendered artifact", assessmentID)
	}
	return *report.ArtifactKey, nil
}

// OpenArtifact streams the rendered artifact. The caller closes the reader.
func (c *Compiler) OpenArtifact(ctx context.Context, assessmentID string) (io.ReadCloser, error) {
	key, err := c.FetchArtifact(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	rc, err := c.artifacts.Open(ctx, key)
	if err != nil {
		return nil, notFound(err, "artifact", key)
	}
	return rc, nil
}

func notFound(err error, what, id string) error {
	switch {
	case errors.Is(err, types.ErrAssessmentNotFound),
		errors.Is(err, types.ErrBuildingNotFound),
		errors.Is(err, types.ErrReportNotFound),
		errors.Is(err, types.ErrArtifactNotFound):
		return types.WrapError(types.CodeNotFound, err, "%s %s not found", what, id)
	}
	return fmt.Errorf("failed to load %s %s: %w", what, id, err)
}
