package store

import (
	"context"
	"slices"
	"sync"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/matching/ports"
	"mindcare/internal/reference/models"
	id "mindcare/pkg/domain"
	"mindcare/pkg/platform/sentinel"
)

// InMemory keeps the reference list in insertion order. Lookups are linear
// scans, which is fine for lists of a few thousand entries.
type InMemory struct {
	mu      sync.RWMutex
	records []models.Record
	byKey   map[matching.Key]id.ReferenceID
}

// NewInMemory creates an empty reference store.
func NewInMemory() *InMemory {
	return &InMemory{byKey: make(map[matching.Key]id.ReferenceID)}
}

func (s *InMemory) Lookup(_ context.Context, criteria ports.Criteria) ([]matching.ReferenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []matching.ReferenceRecord
	for _, r := range s.records {
		if !criteria.Matches(r) {
			continue
		}
		out = append(out, clone(r))
		if criteria.Limit > 0 && len(out) == criteria.Limit {
			break
		}
	}
	return out, nil
}

func (s *InMemory) Add(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := record.Key()
	if _, exists := s.byKey[key]; exists {
		return sentinel.ErrConflict
	}
	s.records = append(s.records, clone(*record))
	s.byKey[key] = record.ID
	return nil
}

func (s *InMemory) Remove(_ context.Context, referenceID id.ReferenceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.records, func(r models.Record) bool { return r.ID == referenceID })
	if i < 0 {
		return sentinel.ErrNotFound
	}
	delete(s.byKey, s.records[i].Key())
	s.records = slices.Delete(s.records, i, i+1)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, referenceID id.ReferenceID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.ID == referenceID {
			c := clone(r)
			return &c, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByKey(ctx context.Context, key matching.Key) (*models.Record, error) {
	s.mu.RLock()
	refID, ok := s.byKey[matching.KeyOf(key.Email, key.Type, key.Specialization)]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.FindByID(ctx, refID)
}

// List returns every record, newest upload first.
func (s *InMemory) List(_ context.Context) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, clone(r))
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) Search(ctx context.Context, filter models.SearchFilter) ([]models.Record, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(r models.Record) bool { return !filter.Matches(r) }), nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// sortNewestFirst orders by upload time descending; among records uploaded
// in the same instant the last inserted comes first.
func sortNewestFirst(records []models.Record) {
	slices.Reverse(records)
	slices.SortStableFunc(records, func(a, b models.Record) int {
		return b.UploadedAt.Compare(a.UploadedAt)
	})
}

func clone(r models.Record) models.Record {
	r.LanguagesSpoken = slices.Clone(r.LanguagesSpoken)
	if r.ExperienceYears != nil {
		years := *r.ExperienceYears
		r.ExperienceYears = &years
	}
	return r
}
