package store

import (
	"context"
	"slices"
	"sync"

	"mindcare/internal/matching/normalize"
	"mindcare/internal/verification/models"
	id "mindcare/pkg/domain"
	"mindcare/pkg/platform/sentinel"
)

// InMemory stores applications in a map. RunInTx serializes transactional
// sections and restores a snapshot when fn fails.
type InMemory struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	apps map[id.ApplicationID]*models.Application
}

func NewInMemory() *InMemory {
	return &InMemory{apps: make(map[id.ApplicationID]*models.Application)}
}

func (s *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := make(map[id.ApplicationID]*models.Application, len(s.apps))
	for k, v := range s.apps {
		snapshot[k] = clone(v)
	}
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.apps = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *InMemory) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(app)
}

func (s *InMemory) createLocked(app *models.Application) error {
	for _, existing := range s.apps {
		if existing.ApplicantID == app.ApplicantID {
			return sentinel.ErrConflict
		}
	}
	s.apps[app.ID] = clone(app)
	return nil
}

func (s *InMemory) Replace(_ context.Context, previous id.ApplicationID, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.apps[previous]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.apps, previous)
	if err := s.createLocked(app); err != nil {
		s.apps[previous] = old
		return err
	}
	return nil
}

func (s *InMemory) Update(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[app.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.apps[app.ID] = clone(app)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[applicationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(app), nil
}

func (s *InMemory) FindByApplicant(_ context.Context, applicant id.UserID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, app := range s.apps {
		if app.ApplicantID == applicant {
			return clone(app), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindApprovedByRegistration(_ context.Context, registrationKey string) ([]*models.Application, error) {
	if registrationKey == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Application
	for _, app := range s.apps {
		if app.Status == models.StatusApproved && normalize.Registration(app.RegistrationNumber) == registrationKey {
			out = append(out, clone(app))
		}
	}
	sortOldestFirst(out)
	return out, nil
}

func (s *InMemory) List(_ context.Context, statuses ...models.Status) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Application
	for _, app := range s.apps {
		if len(statuses) == 0 || slices.Contains(statuses, app.Status) {
			out = append(out, clone(app))
		}
	}
	sortOldestFirst(out)
	return out, nil
}

func (s *InMemory) CountByStatus(_ context.Context) (models.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := models.Statistics{}
	for _, app := range s.apps {
		stats[app.Status]++
	}
	return stats, nil
}

func sortOldestFirst(apps []*models.Application) {
	slices.SortFunc(apps, func(a, b *models.Application) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
}

func compareIDs(a, b id.ApplicationID) int {
	return slices.Compare(a[:], b[:])
}

func clone(app *models.Application) *models.Application {
	c := *app
	c.LanguagesSpoken = slices.Clone(app.LanguagesSpoken)
	c.AdditionalDocumentURLs = slices.Clone(app.AdditionalDocumentURLs)
	if app.ExperienceYears != nil {
		years := *app.ExperienceYears
		c.ExperienceYears = &years
	}
	if app.VerifiedAt != nil {
		at := *app.VerifiedAt
		c.VerifiedAt = &at
	}
	if app.Assessment != nil {
		a := *app.Assessment
		c.Assessment = &a
	}
	return &c
}
