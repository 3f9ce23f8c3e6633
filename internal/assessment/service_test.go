package assessment

import (
	"context"
	"errors"
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

type recordingPublisher struct {
	mu     sync.Mutex
	events []types.StatusEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event types.StatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Events() []types.StatusEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.StatusEvent(nil), p.events...)
}

type fixture struct {
	store     *memstore.Store
	publisher *recordingPublisher
	service   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.UpsertBuilding(ctx, &types.Building{
		ID:               "bldg-1",
		Name:             "Main Hall",
		Area:             5000,
		ReplacementValue: utils.Float64Ptr(1_000_000),
	}))
	require.NoError(t, store.UpsertElement(ctx, &types.Element{
		ID:                        "el-roof",
		Code:                      "B3010",
		Name:                      "Roof Coverings",
		MajorGroup:                "B",
		Category:                  types.ElementCategoryRoofing,
		BaseReplacementCostFactor: 0.04,
	}))

	logger, _ := test.NewNullLogger()
	publisher := &recordingPublisher{}

	return &fixture{
		store:     store,
		publisher: publisher,
		service:   NewService(logger, store, store, publisher),
	}
}

func (f *fixture) create(t *testing.T) *types.Assessment {
	t.Helper()
	a, err := f.service.Create(context.Background(), CreateInput{
		BuildingID: "bldg-1",
		Kind:       types.AssessmentKindField,
		CreatedBy:  "user-1",
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) rate(t *testing.T, assessmentID string) {
	t.Helper()
	_, err := f.store.UpsertEntry(context.Background(), &types.ElementConditionEntry{
		AssessmentID: assessmentID,
		ElementID:    "el-roof",
		Rating:       3,
	})
	require.NoError(t, err)
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)

	a := f.create(t)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, types.AssessmentStatusPending, a.Status)
	assert.Equal(t, "user-1", a.CreatedBy)
	require.NotNil(t, a.AssignedTo)
	assert.Equal(t, "user-1", *a.AssignedTo)
	assert.Nil(t, a.StartedAt)
	assert.Nil(t, a.CompletedAt)
}

func TestService_Create_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]CreateInput{
		"unknown building": {BuildingID: "missing", Kind: types.AssessmentKindField, CreatedBy: "user-1"},
		"bad kind":         {BuildingID: "bldg-1", Kind: "walkthrough", CreatedBy: "user-1"},
		"missing kind":     {BuildingID: "bldg-1", CreatedBy: "user-1"},
		"no creator":       {BuildingID: "bldg-1", Kind: types.AssessmentKindPre},
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.Create(ctx, in)
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}
}

func TestService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)

	started, err := f.service.Start(ctx, a.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, types.AssessmentStatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)

	f.rate(t, a.ID)

	var hooked *types.Assessment
	f.service.SetCompletionHook(func(_ context.Context, done *types.Assessment) {
		hooked = done
	})

	completed, err := f.service.Complete(ctx, a.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, types.AssessmentStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, started.StartedAt, completed.StartedAt)
	require.NotNil(t, hooked)
	assert.Equal(t, a.ID, hooked.ID)

	events := f.publisher.Events()
	require.Len(t, events, 2)
	assert.Equal(t, types.AssessmentStatusPending, events[0].From)
	assert.Equal(t, types.AssessmentStatusInProgress, events[0].To)
	assert.Equal(t, types.AssessmentStatusInProgress, events[1].From)
	assert.Equal(t, types.AssessmentStatusCompleted, events[1].To)
	assert.Equal(t, "bldg-1", events[1].BuildingID)
}

func TestService_Complete_WithoutEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)

	_, err := f.service.Start(ctx, a.ID, "user-1")
	require.NoError(t, err)

	_, err = f.service.Complete(ctx, a.ID, "user-1")
	assert.ErrorIs(t, err, types.ErrIncompleteData)

	got, err := f.service.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AssessmentStatusInProgress, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestService_Complete_FromPending(t *testing.T) {
	f := newFixture(t)
	a := f.create(t)

	_, err := f.service.Complete(context.Background(), a.ID, "user-1")
	assert.ErrorIs(t, err, types.ErrInvalidTransition)
	assert.Empty(t, f.publisher.Events())
}

func TestService_Complete_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)

	_, err := f.service.Start(ctx, a.ID, "user-1")
	require.NoError(t, err)
	f.rate(t, a.ID)

	const callers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Complete(ctx, a.ID, "user-1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, types.ErrInvalidTransition):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, callers-1, rejected)

	completions := 0
	for _, e := range f.publisher.Events() {
		if e.To == types.AssessmentStatusCompleted {
			completions++
		}
	}
	assert.Equal(t, 1, completions)
}

func TestService_Cancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)

	_, err := f.service.Cancel(ctx, a.ID, "user-1", "  ")
	assert.ErrorIs(t, err, types.ErrValidation)

	cancelled, err := f.service.Cancel(ctx, a.ID, "user-2", "building sold")
	require.NoError(t, err)
	assert.Equal(t, types.AssessmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.StartedAt, "leaving pending stamps startedAt")
	assert.True(t, cancelled.StartedAt.Equal(*cancelled.CancelledAt))
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, "building sold", utils.PtrString(cancelled.CancelReason))

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "user-2", events[0].Actor)
	assert.Equal(t, "building sold", utils.PtrString(events[0].Reason))

	_, err = f.service.Start(ctx, a.ID, "user-1")
	assert.ErrorIs(t, err, types.ErrInvalidTransition)
}

func TestService_Reassign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)

	_, err := f.service.Reassign(ctx, a.ID, "")
	assert.ErrorIs(t, err, types.ErrValidation)

	updated, err := f.service.Reassign(ctx, a.ID, "user-9")
	require.NoError(t, err)
	assert.Equal(t, "user-9", utils.PtrString(updated.AssignedTo))

	_, err = f.service.Cancel(ctx, a.ID, "user-1", "duplicate")
	require.NoError(t, err)

	_, err = f.service.Reassign(ctx, a.ID, "user-3")
	assert.ErrorIs(t, err, types.ErrInvalidTransition)

	_, err = f.service.Reassign(ctx, "missing", "user-3")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestService_Get_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestService_PublishFailureKeepsTransition(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")
	ctx := context.Background()
	a := f.create(t)

	started, err := f.service.Start(ctx, a.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, types.AssessmentStatusInProgress, started.Status)
}

func TestService_CancelInProgressKeepsStartedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)

	started, err := f.service.Start(ctx, a.ID, "user-1")
	require.NoError(t, err)
	require.NotNil(t, started.StartedAt)

	cancelled, err := f.service.Cancel(ctx, a.ID, "user-1", "scope changed")
	require.NoError(t, err)
	require.NotNil(t, cancelled.StartedAt)
	assert.True(t, started.StartedAt.Equal(*cancelled.StartedAt))
}

// stallingPublisher blocks until its context is done.
type stallingPublisher struct{}

func (stallingPublisher) Publish(ctx context.Context, _ types.StatusEvent) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestService_StalledPublisherDoesNotBlockTransition(t *testing.T) {
	f := newFixture(t)
	f.service.publisher = stallingPublisher{}
	f.service.publishTimeout = 50 * time.Millisecond
	a := f.create(t)

	done := make(chan error, 1)
	go func() {
		_, err := f.service.Start(context.Background(), a.ID, "user-1")
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start blocked on the event publisher")
	}

	got, err := f.service.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AssessmentStatusInProgress, got.Status)
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.create(t)
	f.create(t)

	_, err := f.service.Start(ctx, first.ID, "user-1")
	require.NoError(t, err)

	all, err := f.service.List(ctx, types.AssessmentFilter{BuildingID: "bldg-1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inProgress, err := f.service.List(ctx, types.AssessmentFilter{Status: types.AssessmentStatusInProgress})
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	assert.Equal(t, first.ID, inProgress[0].ID)

	_, err = f.service.List(ctx, types.AssessmentFilter{Status: "archived"})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestService_Purge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)
	f.rate(t, a.ID)

	require.NoError(t, f.service.Purge(ctx, a.ID, "admin"))

	_, err := f.service.Get(ctx, a.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	entries, err := f.store.Entries(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, f.service.Purge(ctx, a.ID, "admin"), types.ErrNotFound)
}
