// Package assessment owns the assessment lifecycle: creation, the
// pending → in_progress → completed|cancelled state machine, reassignment
// and the status events every transition emits.
package assessment

import (
	"context"
	"errors"
	"strings"
	"time"

	"fcaengine/internal/events"
	"fcaengine/internal/utils"
	"fcaengine/pkg/types"

	"github.com/sirupsen/logrus"
)

type Store interface {
	Assessment(ctx context.Context, id string) (*types.Assessment, error)
	Assessments(ctx context.Context, filter types.AssessmentFilter) ([]*types.Assessment, error)
	CreateAssessment(ctx context.Context, assessment *types.Assessment) error
	TransitionAssessment(ctx context.Context, id string, change types.StatusChange) (*types.Assessment, error)
	ReassignAssessment(ctx context.Context, id, assessorID string, at time.Time) (*types.Assessment, error)
	PurgeAssessment(ctx context.Context, id string) error
}

type BuildingLookup interface {
	Building(ctx context.Context, id string) (*types.Building, error)
}

// CompletionHook runs after an assessment has been completed and its
// status event published.
type CompletionHook func(ctx context.Context, assessment *types.Assessment)

// DefaultPublishTimeout bounds how long a transition waits on its status event.
const DefaultPublishTimeout = 3 * time.Second

type Service struct {
	logger    logrus.FieldLogger
	store     Store
	buildings BuildingLookup
	publisher events.Publisher

	onComplete     CompletionHook
	publishTimeout time.Duration
	now            func() time.Time
}

func NewService(logger logrus.FieldLogger, store Store, buildings BuildingLookup, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Service{
		logger:    logger,
		store:     store,
		buildings: buildings,
		publisher: publisher,

		publishTimeout: DefaultPublishTimeout,
		now:            time.Now,
	}
}

func (s *Service) SetCompletionHook(hook CompletionHook) {
	s.onComplete = hook
}

type CreateInput struct {
	BuildingID  string               `json:"buildingId"`
	Kind        types.AssessmentKind `json:"kind"`
	CreatedBy   string               `json:"-"`
	ScheduledAt *time.Time           `json:"scheduledAt,omitempty"`
	AssignedTo  *string              `json:"assignedTo,omitempty"`
	Notes       *string              `json:"notes,omitempty"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*types.Assessment, error) {
	if strings.TrimSpace(in.CreatedBy) == "" {
		return nil, types.NewError(types.CodeValidation, "creator is required")
	}
	if !in.Kind.Valid() {
		return nil, types.NewError(types.CodeValidation, "kind must be %s or %s", types.AssessmentKindPre, types.AssessmentKindField)
	}
	if strings.TrimSpace(in.BuildingID) == "" {
		return nil, types.NewError(types.CodeValidation, "building id is required")
	}

	_, err := s.buildings.Building(ctx, in.BuildingID)
	if err != nil {
		if errors.Is(err, types.ErrBuildingNotFound) {
			return nil, types.WrapError(types.CodeValidation, err, "building %s does not exist", in.BuildingID)
		}
		return nil, err
	}

	assignee := in.AssignedTo
	if assignee == nil || strings.TrimSpace(*assignee) == "" {
		assignee = utils.StringPtr(in.CreatedBy)
	}

	assessment := &types.Assessment{
		BuildingID:  in.BuildingID,
		Kind:        in.Kind,
		Status:      types.AssessmentStatusPending,
		ScheduledAt: in.ScheduledAt,
		AssignedTo:  assignee,
		CreatedBy:   in.CreatedBy,
		Notes:       in.Notes,
	}

	if err := s.store.CreateAssessment(ctx, assessment); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"assessment_id": assessment.ID,
		"building_id":   assessment.BuildingID,
		"kind":          assessment.Kind,
	}).Info("assessment created")

	return assessment, nil
}

func (s *Service) Get(ctx context.Context, id string) (*types.Assessment, error) {
	assessment, err := s.store.Assessment(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	return assessment, nil
}

func (s *Service) List(ctx context.Context, filter types.AssessmentFilter) ([]*types.Assessment, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, types.NewError(types.CodeValidation, "unknown status %q", filter.Status)
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, types.NewError(types.CodeValidation, "unknown kind %q", filter.Kind)
	}
	return s.store.Assessments(ctx, filter)
}

func (s *Service) Start(ctx context.Context, id, actor string) (*types.Assessment, error) {
	return s.transition(ctx, id, actor, EventStart, nil)
}

// Complete closes the ledger. It fails with an incomplete data error when no
// element has been rated.
func (s *Service) Complete(ctx context.Context, id, actor string) (*types.Assessment, error) {
	assessment, err := s.transition(ctx, id, actor, EventComplete, nil)
	if err != nil {
		return nil, err
	}

	if s.onComplete != nil {
		s.onComplete(ctx, assessment)
	}

	return assessment, nil
}

func (s *Service) Cancel(ctx context.Context, id, actor, reason string) (*types.Assessment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, types.NewError(types.CodeValidation, "a cancellation reason is required")
	}
	return s.transition(ctx, id, actor, EventCancel, &reason)
}

func (s *Service) Reassign(ctx context.Context, id, assessorID string) (*types.Assessment, error) {
	assessorID = strings.TrimSpace(assessorID)
	if assessorID == "" {
		return nil, types.NewError(types.CodeValidation, "assessor id is required")
	}

	assessment, err := s.store.ReassignAssessment(ctx, id, assessorID, s.now().UTC())
	if err != nil {
		if errors.Is(err, types.ErrStatusConflict) {
			return nil, types.WrapError(types.CodeInvalidTransition, err, "assessment %s is closed and cannot be reassigned", id)
		}
		return nil, notFound(err, id)
	}

	s.logger.WithFields(logrus.Fields{
		"assessment_id": id,
		"assigned_to":   assessorID,
	}).Info("assessment reassigned")

	return assessment, nil
}

// Purge removes the assessment with its ledger and report.
func (s *Service) Purge(ctx context.Context, id, actor string) error {
	if err := s.store.PurgeAssessment(ctx, id); err != nil {
		return notFound(err, id)
	}

	s.logger.WithFields(logrus.Fields{
		"assessment_id": id,
		"actor":         actor,
	}).Warn("assessment purged")

	return nil
}

func (s *Service) transition(ctx context.Context, id, actor string, event Event, reason *string) (*types.Assessment, error) {
	current, err := s.store.Assessment(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}

	to, err := Next(current.Status, event)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	change := types.StatusChange{
		From: current.Status,
		To:   to,
		At:   now,
	}
	switch event {
	case EventStart:
		change.StartedAt = &now
	case EventComplete:
		change.CompletedAt = &now
		change.RequireEntries = true
	case EventCancel:
		if current.Status == types.AssessmentStatusPending {
			change.StartedAt = &now
		}
		change.CancelledAt = &now
		change.CancelReason = reason
	}

	updated, err := s.store.TransitionAssessment(ctx, id, change)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrStatusConflict):
			return nil, types.WrapError(types.CodeInvalidTransition, err, "assessment %s is no longer %s", id, current.Status)
		case errors.Is(err, types.ErrNoEntries):
			return nil, types.WrapError(types.CodeIncompleteData, err, "assessment %s has no rated elements", id)
		}
		return nil, notFound(err, id)
	}

	statusEvent := types.StatusEvent{
		AssessmentID: updated.ID,
		BuildingID:   updated.BuildingID,
		From:         change.From,
		To:           change.To,
		Actor:        actor,
		Reason:       reason,
		OccurredAt:   now,
	}

	logger := s.logger.WithFields(logrus.Fields{
		"assessment_id": id,
		"from":          change.From,
		"to":            change.To,
		"actor":         actor,
	})

	s.publish(ctx, logger, statusEvent)

	logger.Info("assessment status changed")

	return updated, nil
}

// publish sends the event after the transition has committed. A slow or
// failing publisher is logged and never fails the transition.
func (s *Service) publish(ctx context.Context, logger logrus.FieldLogger, event types.StatusEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.WithError(err).Error("failed to publish status event")
	}
}

func notFound(err error, id string) error {
	if errors.Is(err, types.ErrAssessmentNotFound) {
		return types.WrapError(types.CodeNotFound, err, "assessment %s not found", id)
	}
	return err
}
