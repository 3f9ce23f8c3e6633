// Package ledger records the condition rating of each catalog element for an
// assessment. There is at most one entry per element; resubmitting replaces it.
package ledger

import (
	"context"
	"errors"
	"strings"

	"fcaengine/pkg/types"

	"github.com/sirupsen/logrus"
)

type Store interface {
	Assessment(ctx context.Context, id string) (*types.Assessment, error)
	Element(ctx context.Context, id string) (*types.Element, error)
	Entries(ctx context.Context, assessmentID string) ([]*types.ElementConditionEntry, error)
	UpsertEntry(ctx context.Context, entry *types.ElementConditionEntry) (*types.ElementConditionEntry, error)
	DeleteEntry(ctx context.Context, assessmentID, elementID string) error
}

type Service struct {
	logger logrus.FieldLogger
	store  Store
}

func NewService(logger logrus.FieldLogger, store Store) *Service {
	return &Service{logger: logger, store: store}
}

type UpsertInput struct {
	AssessmentID string   `json:"-"`
	ElementID    string   `json:"-"`
	Rating       int      `json:"rating"`
	Notes        *string  `json:"notes,omitempty"`
	PhotoRefs    []string `json:"photoRefs,omitempty"`
}

func (in UpsertInput) validate() error {
	if in.Rating < types.MinConditionRating || in.Rating > types.MaxConditionRating {
		return types.NewError(types.CodeValidation, "rating must be between %d and %d, got %d", types.MinConditionRating, types.MaxConditionRating, in.Rating)
	}
	if len(in.PhotoRefs) > types.MaxPhotoRefs {
		return types.NewError(types.CodeValidation, "at most %d photo references are allowed, got %d", types.MaxPhotoRefs, len(in.PhotoRefs))
	}
	for i, ref := range in.PhotoRefs {
		if strings.TrimSpace(ref) == "" {
			return types.NewError(types.CodeValidation, "photo reference %d is blank", i)
		}
	}
	return nil
}

// UpsertEntry records the rating for (assessment, element). The assessment
// status is checked again by the store in the same transaction as the write,
// so an entry can never land after completion.
func (s *Service) UpsertEntry(ctx context.Context, in UpsertInput) (*types.ElementConditionEntry, error) {
	assessment, err := s.store.Assessment(ctx, in.AssessmentID)
	if err != nil {
		return nil, assessmentErr(err, in.AssessmentID)
	}
	if assessment.Status.Terminal() {
		return nil, lockedErr(assessment.ID, assessment.Status, nil)
	}

	if err := in.validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.Element(ctx, in.ElementID); err != nil {
		if errors.Is(err, types.ErrElementNotFound) {
			return nil, types.WrapError(types.CodeValidation, err, "element %s is not in the catalog", in.ElementID)
		}
		return nil, err
	}

	photos := make([]string, 0, len(in.PhotoRefs))
	photos = append(photos, in.PhotoRefs...)

	entry, err := s.store.UpsertEntry(ctx, &types.ElementConditionEntry{
		AssessmentID: in.AssessmentID,
		ElementID:    in.ElementID,
		Rating:       in.Rating,
		Notes:        in.Notes,
		PhotoRefs:    photos,
	})
	if err != nil {
		if errors.Is(err, types.ErrAssessmentClosed) {
			return nil, lockedErr(in.AssessmentID, "", err)
		}
		return nil, assessmentErr(err, in.AssessmentID)
	}

	s.logger.WithFields(logrus.Fields{
		"assessment_id": in.AssessmentID,
		"element_id":    in.ElementID,
		"rating":        in.Rating,
	}).Debug("element condition recorded")

	return entry, nil
}

func (s *Service) ListEntries(ctx context.Context, assessmentID string) ([]*types.ElementConditionEntry, error) {
	if _, err := s.store.Assessment(ctx, assessmentID); err != nil {
		return nil, assessmentErr(err, assessmentID)
	}
	return s.store.Entries(ctx, assessmentID)
}

// DeleteEntry removes the entry if it exists. Deleting an absent entry is
// not an error.
func (s *Service) DeleteEntry(ctx context.Context, assessmentID, elementID string) error {
	assessment, err := s.store.Assessment(ctx, assessmentID)
	if err != nil {
		return assessmentErr(err, assessmentID)
	}
	if assessment.Status.Terminal() {
		return lockedErr(assessmentID, assessment.Status, nil)
	}

	err = s.store.DeleteEntry(ctx, assessmentID, elementID)
	if err != nil {
		if errors.Is(err, types.ErrAssessmentClosed) {
			return lockedErr(assessmentID, "", err)
		}
		return assessmentErr(err, assessmentID)
	}

	return nil
}

func assessmentErr(err error, id string) error {
	if errors.Is(err, types.ErrAssessmentNotFound) {
		return types.WrapError(types.CodeNotFound, err, "assessment %s not found", id)
	}
	return err
}

func lockedErr(id string, status types.AssessmentStatus, err error) error {
	if status == "" {
		return types.WrapError(types.CodeLockedAssessment, err, "assessment %s is closed to changes", id)
	}
	return types.WrapError(types.CodeLockedAssessment, err, "assessment %s is %s and closed to changes", id, status)
}
