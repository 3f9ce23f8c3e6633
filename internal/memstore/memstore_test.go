package memstore

import (
	"context"
	"testing"
	"time"

	"fcaengine/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssessment(t *testing.T, s *Store, buildingID string) *types.Assessment {
	t.Helper()

	a := &types.Assessment{
		BuildingID: buildingID,
		Kind:       types.AssessmentKindField,
		Status:     types.AssessmentStatusPending,
		CreatedBy:  "assessor-1",
	}
	require.NoError(t, s.CreateAssessment(context.Background(), a))
	return a
}

func TestTransitionAssessment_GuardsOnFromStatus(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newAssessment(t, s, "b1")

	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	updated, err := s.TransitionAssessment(ctx, a.ID, types.StatusChange{
		From:      types.AssessmentStatusPending,
		To:        types.AssessmentStatusInProgress,
		At:        at,
		StartedAt: &at,
	})
	require.NoError(t, err)
	assert.Equal(t, types.AssessmentStatusInProgress, updated.Status)
	require.NotNil(t, updated.StartedAt)
	assert.True(t, updated.StartedAt.Equal(at))

	_, err = s.TransitionAssessment(ctx, a.ID, types.StatusChange{
		From: types.AssessmentStatusPending,
		To:   types.AssessmentStatusInProgress,
		At:   at,
	})
	assert.ErrorIs(t, err, types.ErrStatusConflict)

	_, err = s.TransitionAssessment(ctx, "missing", types.StatusChange{})
	assert.ErrorIs(t, err, types.ErrAssessmentNotFound)
}

func TestTransitionAssessment_RequireEntries(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newAssessment(t, s, "b1")

	complete := types.StatusChange{
		From:           types.AssessmentStatusPending,
		To:             types.AssessmentStatusCompleted,
		At:             time.Now(),
		RequireEntries: true,
	}

	_, err := s.TransitionAssessment(ctx, a.ID, complete)
	require.ErrorIs(t, err, types.ErrNoEntries)

	_, err = s.UpsertEntry(ctx, &types.ElementConditionEntry{AssessmentID: a.ID, ElementID: "e1", Rating: 2})
	require.NoError(t, err)

	updated, err := s.TransitionAssessment(ctx, a.ID, complete)
	require.NoError(t, err)
	assert.Equal(t, types.AssessmentStatusCompleted, updated.Status)
}

func TestUpsertEntry_OnePerElement(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newAssessment(t, s, "b1")

	first, err := s.UpsertEntry(ctx, &types.ElementConditionEntry{AssessmentID: a.ID, ElementID: "e2", Rating: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{}, first.PhotoRefs)

	second, err := s.UpsertEntry(ctx, &types.ElementConditionEntry{AssessmentID: a.ID, ElementID: "e2", Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 4, second.Rating)

	_, err = s.UpsertEntry(ctx, &types.ElementConditionEntry{AssessmentID: a.ID, ElementID: "e1", Rating: 3})
	require.NoError(t, err)

	entries, err := s.Entries(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e1", entries[0].ElementID)
	assert.Equal(t, "e2", entries[1].ElementID)
}

func TestUpsertEntry_ClosedAssessment(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newAssessment(t, s, "b1")

	_, err := s.TransitionAssessment(ctx, a.ID, types.StatusChange{
		From: types.AssessmentStatusPending,
		To:   types.AssessmentStatusCancelled,
		At:   time.Now(),
	})
	require.NoError(t, err)

	_, err = s.UpsertEntry(ctx, &types.ElementConditionEntry{AssessmentID: a.ID, ElementID: "e1", Rating: 3})
	assert.ErrorIs(t, err, types.ErrAssessmentClosed)

	err = s.DeleteEntry(ctx, a.ID, "e1")
	assert.ErrorIs(t, err, types.ErrAssessmentClosed)

	_, err = s.UpsertEntry(ctx, &types.ElementConditionEntry{AssessmentID: "missing", ElementID: "e1", Rating: 3})
	assert.ErrorIs(t, err, types.ErrAssessmentNotFound)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newAssessment(t, s, "b1")

	entry, err := s.UpsertEntry(ctx, &types.ElementConditionEntry{
		AssessmentID: a.ID,
		ElementID:    "e1",
		Rating:       2,
		PhotoRefs:    []string{"p1"},
	})
	require.NoError(t, err)
	entry.PhotoRefs[0] = "changed"

	entries, err := s.Entries(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, entries[0].PhotoRefs)
}

func TestAssessments_FilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i, building := range []string{"b1", "b2", "b1"} {
		s.SetNow(func() time.Time { return base.Add(time.Duration(i) * time.Hour) })
		ids = append(ids, newAssessment(t, s, building).ID)
	}

	all, err := s.Assessments(ctx, types.AssessmentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)

	b1, err := s.Assessments(ctx, types.AssessmentFilter{BuildingID: "b1"})
	require.NoError(t, err)
	assert.Len(t, b1, 2)

	page, err := s.Assessments(ctx, types.AssessmentFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)

	past, err := s.Assessments(ctx, types.AssessmentFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestSaveReport_KeepsIdentity(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.SaveReport(ctx, &types.Report{AssessmentID: "a1", RenderStatus: types.RenderStatusPending})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := s.SaveReport(ctx, &types.Report{AssessmentID: "a1", RenderStatus: types.RenderStatusRendered})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	got, err := s.Report(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, types.RenderStatusRendered, got.RenderStatus)

	_, err = s.Report(ctx, "a2")
	assert.ErrorIs(t, err, types.ErrReportNotFound)
}

func TestPurgeAssessment(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newAssessment(t, s, "b1")

	_, err := s.UpsertEntry(ctx, &types.ElementConditionEntry{AssessmentID: a.ID, ElementID: "e1", Rating: 2})
	require.NoError(t, err)
	_, err = s.SaveReport(ctx, &types.Report{AssessmentID: a.ID})
	require.NoError(t, err)

	require.NoError(t, s.PurgeAssessment(ctx, a.ID))

	_, err = s.Assessment(ctx, a.ID)
	assert.ErrorIs(t, err, types.ErrAssessmentNotFound)
	entries, err := s.Entries(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = s.Report(ctx, a.ID)
	assert.ErrorIs(t, err, types.ErrReportNotFound)

	assert.ErrorIs(t, s.PurgeAssessment(ctx, a.ID), types.ErrAssessmentNotFound)
}
