// Package service manages the pre-approved reference list: single entries
// added by admins, bulk CSV imports, and the pre-approval check.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/reference/metrics"
	"mindcare/internal/reference/models"
	"mindcare/internal/reference/store"
	id "mindcare/pkg/domain"
	dErrors "mindcare/pkg/domain-errors"
	audit "mindcare/pkg/platform/audit"
	"mindcare/pkg/platform/sentinel"
)

// AuditPublisher emits audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns reference list mutations.
type Service struct {
	store   store.Store
	auditor AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(st store.Store, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("reference store is required")
	}
	s := &Service{
		store:  st,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Add validates and stores one entry. The ID and upload metadata are assigned here.
func (s *Service) Add(ctx context.Context, record models.Record, uploadedBy id.UserID) (*models.Record, error) {
	trimRecord(&record)
	if err := validateRecord(record); err != nil {
		return nil, err
	}
	record.ID = id.NewReferenceID()
	record.UploadedAt = s.now()
	record.UploadedBy = uploadedBy

	if err := s.store.Add(ctx, &record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "professional already in reference list")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add reference entry")
	}

	s.logger.InfoContext(ctx, "reference entry added",
		"reference_id", record.ID.String(),
		"type", record.Type,
	)
	s.emit(ctx, audit.Event{
		Action:  string(audit.EventReferenceAdded),
		Subject: record.ID.String(),
		ActorID: actor(uploadedBy),
	})
	return &record, nil
}

// Remove deletes an entry by ID.
func (s *Service) Remove(ctx context.Context, referenceID id.ReferenceID, removedBy id.UserID) error {
	if err := s.store.Remove(ctx, referenceID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "reference entry not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove reference entry")
	}
	s.logger.InfoContext(ctx, "reference entry removed", "reference_id", referenceID.String())
	s.emit(ctx, audit.Event{
		Action:  string(audit.EventReferenceRemoved),
		Subject: referenceID.String(),
		ActorID: actor(removedBy),
	})
	return nil
}

func (s *Service) Get(ctx context.Context, referenceID id.ReferenceID) (*models.Record, error) {
	record, err := s.store.FindByID(ctx, referenceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "reference entry not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reference entry")
	}
	return record, nil
}

// List returns every entry, newest upload first.
func (s *Service) List(ctx context.Context) ([]models.Record, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reference entries")
	}
	return records, nil
}

func (s *Service) Search(ctx context.Context, filter models.SearchFilter) ([]models.Record, error) {
	if filter.IsEmpty() {
		return s.List(ctx)
	}
	records, err := s.store.Search(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search reference entries")
	}
	return records, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count reference entries")
	}
	return n, nil
}

// IsPreApproved reports whether the exact composite key is on the list.
func (s *Service) IsPreApproved(ctx context.Context, email string, t matching.CredentialType, specialization string) (bool, error) {
	_, err := s.store.FindByKey(ctx, matching.KeyOf(email, t, specialization))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return false, nil
	default:
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check reference list")
	}
}

// emit records an operations event. Failures are logged, never returned.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func actor(userID id.UserID) string {
	if userID.IsNil() {
		return ""
	}
	return userID.String()
}

func trimRecord(r *models.Record) {
	for _, f := range []*string{
		&r.Email, &r.FullName, &r.Specialization, &r.RegistrationNumber,
		&r.DegreeTitle, &r.DegreeInstitution, &r.LicenseNumber, &r.Affiliation,
		&r.ClinicAddress, &r.ContactPhone, &r.LicenseDocumentURL,
		&r.DegreeDocumentURL, &r.StatusNote,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// validateRecord checks the fields every entry must carry.
func validateRecord(r models.Record) error {
	switch {
	case r.Email == "":
		return dErrors.New(dErrors.CodeValidation, "email is required")
	case !strings.Contains(r.Email, "@"):
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	case r.FullName == "":
		return dErrors.New(dErrors.CodeValidation, "full_name is required")
	case !r.Type.IsValid():
		return dErrors.New(dErrors.CodeValidation, "professional_type must be PSYCHIATRIST or PSYCHOLOGIST")
	case r.Specialization == "":
		return dErrors.New(dErrors.CodeValidation, "specialization is required")
	case r.ExperienceYears != nil && *r.ExperienceYears < 0:
		return dErrors.New(dErrors.CodeValidation, "experience_years cannot be negative")
	}
	return nil
}
