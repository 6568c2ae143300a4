// Package service runs the professional verification workflow: applicants
// submit credentials, the confidence engine scores them, and admins decide.
//
// Admin decisions are compliance events. The decision and its audit record
// are written in one transaction so a decision is never reported without its
// audit trail. Scoring never blocks a submission.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/verification/metrics"
	"mindcare/internal/verification/models"
	"mindcare/internal/verification/store"
	id "mindcare/pkg/domain"
	dErrors "mindcare/pkg/domain-errors"
	audit "mindcare/pkg/platform/audit"
	"mindcare/pkg/platform/sentinel"
	"mindcare/pkg/requestcontext"
)

// DefaultRescoreConcurrency bounds RescorePending when no option is given.
const DefaultRescoreConcurrency = 4

// Scorer computes a confidence result. Implementations must not fail; lookup
// errors come back as a processing_failed result.
type Scorer interface {
	Score(ctx context.Context, applicant matching.ApplicantCredential) matching.ConfidenceResult
}

// RoleGranter updates the PROFESSIONAL role in the external user store.
type RoleGranter interface {
	GrantProfessional(ctx context.Context, userID id.UserID) error
	RevokeProfessional(ctx context.Context, userID id.UserID) error
}

// AuditPublisher emits audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the application lifecycle.
type Service struct {
	store              store.TxStore
	scorer             Scorer
	roles              RoleGranter
	auditor            AuditPublisher
	logger             *slog.Logger
	metrics            *metrics.Metrics
	now                func() time.Time
	rescoreConcurrency int
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

// WithRoleGranter connects approvals and revocations to the user store.
func WithRoleGranter(g RoleGranter) Option {
	return func(s *Service) {
		s.roles = g
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock fixes the clock. Without it the request-scoped time is used.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRescoreConcurrency caps how many applications RescorePending scores at once.
func WithRescoreConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.rescoreConcurrency = n
		}
	}
}

func New(st store.TxStore, sc Scorer, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("application store is required")
	}
	if sc == nil {
		return nil, errors.New("scorer is required")
	}
	s := &Service{
		store:              st,
		scorer:             sc,
		logger:             slog.New(slog.DiscardHandler),
		rescoreConcurrency: DefaultRescoreConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Status returns the applicant's own application.
func (s *Service) Status(ctx context.Context, applicant id.UserID) (*models.Application, error) {
	app, err := s.store.FindByApplicant(ctx, applicant)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no verification application found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

func (s *Service) Get(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	return s.load(ctx, applicationID)
}

// ListPending returns the admin queue: PENDING and UNDER_REVIEW, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]*models.Application, error) {
	return s.List(ctx, models.StatusPending, models.StatusUnderReview)
}

// List returns applications in the given statuses, or all when none are given.
func (s *Service) List(ctx context.Context, statuses ...models.Status) ([]*models.Application, error) {
	apps, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

func (s *Service) Statistics(ctx context.Context) (models.Statistics, error) {
	stats, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count applications")
	}
	for _, st := range models.AllStatuses {
		if _, ok := stats[st]; !ok {
			stats[st] = 0
		}
	}
	return stats, nil
}

// Preview scores a credential without saving anything.
func (s *Service) Preview(ctx context.Context, applicant matching.ApplicantCredential) matching.ConfidenceResult {
	result := s.scorer.Score(ctx, applicant)
	if result.ScoredAt.IsZero() {
		result.ScoredAt = s.clock(ctx)
	}
	return result
}

func (s *Service) clock(ctx context.Context) time.Time {
	if s.now != nil {
		return s.now()
	}
	return requestcontext.Now(ctx)
}

func (s *Service) load(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	app, err := s.store.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "verification application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

// emit records an operations event. Failures are logged, never returned.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

// emitCompliance records a decision event and returns its error so the
// surrounding transaction rolls back.
func (s *Service) emitCompliance(ctx context.Context, event audit.Event) error {
	if s.auditor == nil {
		return nil
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}
