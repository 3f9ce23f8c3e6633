// Package memstore keeps every repository in process memory. It backs the
// engine tests and `serve --ephemeral`, and mirrors the guarantees of the
// Postgres store: unique ledger entries, conditional status writes and one
// report per assessment.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"fcaengine/internal/utils"
	"fcaengine/pkg/types"
)

type entryKey struct {
	assessmentID string
	elementID    string
}

type Store struct {
	mu sync.RWMutex

	buildings   map[string]types.Building
	elements    map[string]types.Element
	assessments map[string]types.Assessment
	entries     map[entryKey]types.ElementConditionEntry
	reports     map[string]types.Report

	nowFn func() time.Time
}

func New() *Store {
	return &Store{
		buildings:   make(map[string]types.Building),
		elements:    make(map[string]types.Element),
		assessments: make(map[string]types.Assessment),
		entries:     make(map[entryKey]types.ElementConditionEntry),
		reports:     make(map[string]types.Report),
		nowFn:       time.Now,
	}
}

// SetNow replaces the clock used for created/updated stamps.
func (s *Store) SetNow(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

func (s *Store) now() time.Time {
	return s.nowFn().UTC()
}

// Buildings

func (s *Store) Building(_ context.Context, id string) (*types.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buildings[id]
	if !ok {
		return nil, types.ErrBuildingNotFound
	}
	return cloneBuilding(b), nil
}

func (s *Store) UpsertBuilding(_ context.Context, building *types.Building) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.buildings[building.ID]; ok {
		building.CreatedAt = existing.CreatedAt
	} else if building.CreatedAt.IsZero() {
		building.CreatedAt = now
	}
	building.UpdatedAt = now

	s.buildings[building.ID] = *cloneBuilding(*building)
	return nil
}

// Elements

func (s *Store) AllElements(_ context.Context) ([]*types.Element, error) {
	return s.filterElements(func(types.Element) bool { return true }), nil
}

func (s *Store) ElementsByMajorGroup(_ context.Context, majorGroup string) ([]*types.Element, error) {
	return s.filterElements(func(e types.Element) bool { return e.MajorGroup == majorGroup }), nil
}

func (s *Store) ElementsByIDs(_ context.Context, ids []string) ([]*types.Element, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	return s.filterElements(func(e types.Element) bool {
		_, ok := want[e.ID]
		return ok
	}), nil
}

func (s *Store) filterElements(keep func(types.Element) bool) []*types.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Element, 0, len(s.elements))
	for _, e := range s.elements {
		if !keep(e) {
			continue
		}
		e := e
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (s *Store) Element(_ context.Context, id string) (*types.Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.elements[id]
	if !ok {
		return nil, types.ErrElementNotFound
	}
	return &e, nil
}

func (s *Store) UpsertElement(_ context.Context, element *types.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *element
	if existing, ok := s.elements[e.ID]; ok {
		e.CreatedAt = existing.CreatedAt
	} else {
		e.CreatedAt = s.now()
	}
	s.elements[e.ID] = e
	return nil
}

func (s *Store) DeleteElement(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.elements, id)
	return nil
}

// Assessments

func (s *Store) Assessment(_ context.Context, id string) (*types.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assessments[id]
	if !ok {
		return nil, types.ErrAssessmentNotFound
	}
	return cloneAssessment(a), nil
}

func (s *Store) Assessments(_ context.Context, filter types.AssessmentFilter) ([]*types.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Assessment, 0)
	for _, a := range s.assessments {
		if filter.BuildingID != "" && a.BuildingID != filter.BuildingID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Kind != "" && a.Kind != filter.Kind {
			continue
		}
		if filter.AssignedTo != "" && utils.PtrString(a.AssignedTo) != filter.AssignedTo {
			continue
		}
		out = append(out, cloneAssessment(a))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	limit := filter.Limit
	if limit == 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	start := filter.Offset
	if start > uint64(len(out)) {
		start = uint64(len(out))
	}
	end := start + limit
	if end > uint64(len(out)) {
		end = uint64(len(out))
	}

	return out[start:end], nil
}

func (s *Store) CreateAssessment(_ context.Context, assessment *types.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	assessment.ID = utils.NanoID()
	assessment.CreatedAt = now
	assessment.UpdatedAt = now

	s.assessments[assessment.ID] = *cloneAssessment(*assessment)
	return nil
}

// TransitionAssessment applies change only if the assessment still holds
// change.From; the check and the write happen under one lock.
func (s *Store) TransitionAssessment(_ context.Context, id string, change types.StatusChange) (*types.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assessments[id]
	if !ok {
		return nil, types.ErrAssessmentNotFound
	}
	if a.Status != change.From {
		return nil, types.ErrStatusConflict
	}
	if change.RequireEntries && !s.hasEntries(id) {
		return nil, types.ErrNoEntries
	}

	a.Status = change.To
	a.UpdatedAt = change.At
	if change.StartedAt != nil {
		a.StartedAt = utils.TimePtr(*change.StartedAt)
	}
	if change.CompletedAt != nil {
		a.CompletedAt = utils.TimePtr(*change.CompletedAt)
	}
	if change.CancelledAt != nil {
		a.CancelledAt = utils.TimePtr(*change.CancelledAt)
	}
	if change.CancelReason != nil {
		a.CancelReason = utils.StringPtr(*change.CancelReason)
	}

	s.assessments[id] = a
	return cloneAssessment(a), nil
}

func (s *Store) ReassignAssessment(_ context.Context, id, assessorID string, at time.Time) (*types.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assessments[id]
	if !ok {
		return nil, types.ErrAssessmentNotFound
	}
	if a.Status.Terminal() {
		return nil, types.ErrStatusConflict
	}

	a.AssignedTo = utils.StringPtr(assessorID)
	a.UpdatedAt = at
	s.assessments[id] = a
	return cloneAssessment(a), nil
}

func (s *Store) PurgeAssessment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assessments[id]; !ok {
		return types.ErrAssessmentNotFound
	}

	for key := range s.entries {
		if key.assessmentID == id {
			delete(s.entries, key)
		}
	}
	delete(s.reports, id)
	delete(s.assessments, id)
	return nil
}

// Ledger

func (s *Store) Entries(_ context.Context, assessmentID string) ([]*types.ElementConditionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.ElementConditionEntry, 0)
	for key, e := range s.entries {
		if key.assessmentID == assessmentID {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ElementID < out[j].ElementID })
	return out, nil
}

func (s *Store) UpsertEntry(_ context.Context, entry *types.ElementConditionEntry) (*types.ElementConditionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(entry.AssessmentID); err != nil {
		return nil, err
	}

	now := s.now()
	key := entryKey{entry.AssessmentID, entry.ElementID}
	saved := *cloneEntry(*entry)
	if existing, ok := s.entries[key]; ok {
		saved.ID = existing.ID
		saved.CreatedAt = existing.CreatedAt
	} else {
		saved.ID = utils.NanoID()
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now
	if saved.PhotoRefs == nil {
		saved.PhotoRefs = []string{}
	}

	s.entries[key] = saved
	return cloneEntry(saved), nil
}

func (s *Store) DeleteEntry(_ context.Context, assessmentID, elementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(assessmentID); err != nil {
		return err
	}

	delete(s.entries, entryKey{assessmentID, elementID})
	return nil
}

func (s *Store) checkOpen(assessmentID string) error {
	a, ok := s.assessments[assessmentID]
	if !ok {
		return types.ErrAssessmentNotFound
	}
	if a.Status.Terminal() {
		return types.ErrAssessmentClosed
	}
	return nil
}

func (s *Store) hasEntries(assessmentID string) bool {
	for key := range s.entries {
		if key.assessmentID == assessmentID {
			return true
		}
	}
	return false
}

// Reports

func (s *Store) Report(_ context.Context, assessmentID string) (*types.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[assessmentID]
	if !ok {
		return nil, types.ErrReportNotFound
	}
	return cloneReport(r), nil
}

func (s *Store) SaveReport(_ context.Context, report *types.Report) (*types.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	saved := *cloneReport(*report)
	if existing, ok := s.reports[report.AssessmentID]; ok {
		saved.ID = existing.ID
		saved.CreatedAt = existing.CreatedAt
	} else {
		if saved.ID == "" {
			saved.ID = utils.NanoID()
		}
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	s.reports[report.AssessmentID] = saved
	return cloneReport(saved), nil
}
