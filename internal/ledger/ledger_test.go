package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"fcaengine/internal/memstore"
	"fcaengine/internal/utils"
	"fcaengine/pkg/types"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T, status types.AssessmentStatus) (*Service, *memstore.Store, string) {
	t.Helper()

	ctx := context.Background()
	store := memstore.New()
	for _, id := range []string{"el-a", "el-b", "el-c"} {
		require.NoError(t, store.UpsertElement(ctx, &types.Element{ID: id, Code: id, Category: types.ElementCategoryHVAC}))
	}

	a := &types.Assessment{BuildingID: "bldg-1", Kind: types.AssessmentKindField, Status: types.AssessmentStatusPending, CreatedBy: "user-1"}
	require.NoError(t, store.CreateAssessment(ctx, a))

	if status != types.AssessmentStatusPending {
		_, err := store.TransitionAssessment(ctx, a.ID, types.StatusChange{From: types.AssessmentStatusPending, To: status, At: time.Now()})
		require.NoError(t, err)
	}

	logger, _ := test.NewNullLogger()
	return NewService(logger, store), store, a.ID
}

func TestService_UpsertEntry_ReplacesInPlace(t *testing.T) {
	svc, _, id := newLedger(t, types.AssessmentStatusInProgress)
	ctx := context.Background()

	first, err := svc.UpsertEntry(ctx, UpsertInput{AssessmentID: id, ElementID: "el-a", Rating: 2, PhotoRefs: []string{"p1", "p2"}})
	require.NoError(t, err)

	second, err := svc.UpsertEntry(ctx, UpsertInput{AssessmentID: id, ElementID: "el-a", Rating: 4, Notes: utils.StringPtr("patched")})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 4, second.Rating)
	assert.Equal(t, "patched", utils.PtrString(second.Notes))
	assert.Empty(t, second.PhotoRefs)

	entries, err := svc.ListEntries(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].Rating)
}

func TestService_UpsertEntry_ConcurrentWritersKeepOneEntry(t *testing.T) {
	svc, _, id := newLedger(t, types.AssessmentStatusInProgress)
	ctx := context.Background()

	var wg sync.WaitGroup
	for rating := 1; rating <= 5; rating++ {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			_, err := svc.UpsertEntry(ctx, UpsertInput{AssessmentID: id, ElementID: "el-b", Rating: rating})
			assert.NoError(t, err)
		}(rating)
	}
	wg.Wait()

	entries, err := svc.ListEntries(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.GreaterOrEqual(t, entries[0].Rating, 1)
	assert.LessOrEqual(t, entries[0].Rating, 5)
}

func TestService_UpsertEntry_Validation(t *testing.T) {
	svc, _, id := newLedger(t, types.AssessmentStatusPending)
	ctx := context.Background()

	tooMany := make([]string, types.MaxPhotoRefs+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("photo-%d", i)
	}

	cases := map[string]UpsertInput{
		"rating zero":     {AssessmentID: id, ElementID: "el-a", Rating: 0},
		"rating six":      {AssessmentID: id, ElementID: "el-a", Rating: 6},
		"unknown element": {AssessmentID: id, ElementID: "el-z", Rating: 3},
		"too many photos": {AssessmentID: id, ElementID: "el-a", Rating: 3, PhotoRefs: tooMany},
		"blank photo":     {AssessmentID: id, ElementID: "el-a", Rating: 3, PhotoRefs: []string{"ok", " "}},
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.UpsertEntry(ctx, in)
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}
}

func TestService_UpsertEntry_UnknownAssessment(t *testing.T) {
	svc, _, _ := newLedger(t, types.AssessmentStatusPending)

	_, err := svc.UpsertEntry(context.Background(), UpsertInput{AssessmentID: "missing", ElementID: "el-a", Rating: 3})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestService_TerminalAssessmentIsLocked(t *testing.T) {
	for _, status := range []types.AssessmentStatus{types.AssessmentStatusCompleted, types.AssessmentStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			svc, _, id := newLedger(t, status)
			ctx := context.Background()

			_, err := svc.UpsertEntry(ctx, UpsertInput{AssessmentID: id, ElementID: "el-a", Rating: 3})
			assert.ErrorIs(t, err, types.ErrLockedAssessment)

			err = svc.DeleteEntry(ctx, id, "el-a")
			assert.ErrorIs(t, err, types.ErrLockedAssessment)
		})
	}
}

func TestService_CompletedAssessmentIsLocked(t *testing.T) {
	svc, store, id := newLedger(t, types.AssessmentStatusInProgress)
	ctx := context.Background()

	_, err := svc.UpsertEntry(ctx, UpsertInput{AssessmentID: id, ElementID: "el-a", Rating: 3})
	require.NoError(t, err)

	_, err = store.TransitionAssessment(ctx, id, types.StatusChange{
		From:           types.AssessmentStatusInProgress,
		To:             types.AssessmentStatusCompleted,
		At:             time.Now(),
		CompletedAt:    utils.TimePtr(time.Now()),
		RequireEntries: true,
	})
	require.NoError(t, err)

	_, err = svc.UpsertEntry(ctx, UpsertInput{AssessmentID: id, ElementID: "el-a", Rating: 1})
	assert.ErrorIs(t, err, types.ErrLockedAssessment)

	entries, err := svc.ListEntries(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].Rating)
}

func TestService_DeleteEntry(t *testing.T) {
	svc, _, id := newLedger(t, types.AssessmentStatusInProgress)
	ctx := context.Background()

	_, err := svc.UpsertEntry(ctx, UpsertInput{AssessmentID: id, ElementID: "el-c", Rating: 2})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEntry(ctx, id, "el-c"))
	require.NoError(t, svc.DeleteEntry(ctx, id, "el-c"), "deleting an absent entry is a no-op")

	entries, err := svc.ListEntries(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestService_ListEntries_OrderedByElement(t *testing.T) {
	svc, _, id := newLedger(t, types.AssessmentStatusInProgress)
	ctx := context.Background()

	for _, el := range []string{"el-c", "el-a", "el-b"} {
		_, err := svc.UpsertEntry(ctx, UpsertInput{AssessmentID: id, ElementID: el, Rating: 3})
		require.NoError(t, err)
	}

	entries, err := svc.ListEntries(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "el-a", entries[0].ElementID)
	assert.Equal(t, "el-b", entries[1].ElementID)
	assert.Equal(t, "el-c", entries[2].ElementID)
}
