package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/verification/models"
	id "mindcare/pkg/domain"
	dErrors "mindcare/pkg/domain-errors"
	audit "mindcare/pkg/platform/audit"
	"mindcare/pkg/platform/sentinel"
)

// decision is one admin action on an application.
type decision struct {
	action audit.AuditEvent
	apply  func(app *models.Application, now time.Time) error
	// after runs inside the transaction once the application is saved.
	after  func(ctx context.Context, app *models.Application) error
}

// StartReview takes a PENDING application into review.
func (s *Service) StartReview(ctx context.Context, applicationID id.ApplicationID, admin id.UserID) (*models.Application, error) {
	return s.decide(ctx, applicationID, admin, decision{
		action: audit.EventApplicationReviewStarted,
		apply: func(app *models.Application, now time.Time) error {
			return app.StartReview(admin, now)
		},
	})
}

// Approve grants the PROFESSIONAL role.
func (s *Service) Approve(ctx context.Context, applicationID id.ApplicationID, admin id.UserID, notes string) (*models.Application, error) {
	return s.decide(ctx, applicationID, admin, decision{
		action: audit.EventApplicationApproved,
		apply: func(app *models.Application, now time.Time) error {
			return app.Approve(admin, notes, now)
		},
		after: func(ctx context.Context, app *models.Application) error {
			if s.roles == nil {
				return nil
			}
			if err := s.roles.GrantProfessional(ctx, app.ApplicantID); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant professional role")
			}
			return nil
		},
	})
}

// Reject requires a reason; notes are optional.
func (s *Service) Reject(ctx context.Context, applicationID id.ApplicationID, admin id.UserID, reason, notes string) (*models.Application, error) {
	return s.decide(ctx, applicationID, admin, decision{
		action: audit.EventApplicationRejected,
		apply: func(app *models.Application, now time.Time) error {
			return app.Reject(admin, reason, notes, now)
		},
	})
}

// Revoke withdraws an approval and the PROFESSIONAL role with it.
func (s *Service) Revoke(ctx context.Context, applicationID id.ApplicationID, admin id.UserID, reason string) (*models.Application, error) {
	return s.decide(ctx, applicationID, admin, decision{
		action: audit.EventApplicationRevoked,
		apply: func(app *models.Application, now time.Time) error {
			return app.Revoke(admin, reason, now)
		},
		after: func(ctx context.Context, app *models.Application) error {
			if s.roles == nil {
				return nil
			}
			if err := s.roles.RevokeProfessional(ctx, app.ApplicantID); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke professional role")
			}
			return nil
		},
	})
}

func (s *Service) decide(ctx context.Context, applicationID id.ApplicationID, admin id.UserID, d decision) (*models.Application, error) {
	var app *models.Application
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.load(ctx, applicationID)
		if err != nil {
			return err
		}
		if err := d.apply(app, s.clock(ctx)); err != nil {
			return err
		}
		if err := s.store.Update(ctx, app); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "verification application not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save decision")
		}
		if d.after != nil {
			if err := d.after(ctx, app); err != nil {
				return err
			}
		}
		return s.emitCompliance(ctx, audit.Event{
			Action:   string(d.action),
			UserID:   app.ApplicantID,
			Subject:  app.ID.String(),
			Decision: string(app.Status),
			Reason:   app.RejectionReason,
			ActorID:  actor(admin),
		})
	})
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			s.logger.ErrorContext(ctx, "verification decision failed",
				"application_id", applicationID.String(),
				"action", d.action,
				"error", err,
			)
		}
		return nil, err
	}

	s.metrics.IncDecision(string(app.Status))
	s.logger.InfoContext(ctx, "verification decision recorded",
		"application_id", app.ID.String(),
		"status", app.Status,
		"admin_id", actor(admin),
	)
	return app, nil
}

// Rescore recomputes the assessment of an open application against the
// current reference list.
func (s *Service) Rescore(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	app, err := s.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.CanBeModified() {
		return nil, errNotOpen
	}
	if err := s.rescore(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

var errNotOpen = dErrors.New(dErrors.CodeInvalidState, "only open applications can be rescored")

// RescorePending rescores every PENDING and UNDER_REVIEW application with at
// most rescoreConcurrency in flight. Applications decided while the batch
// runs are skipped. It returns how many were rescored.
func (s *Service) RescorePending(ctx context.Context) (int, error) {
	apps, err := s.ListPending(ctx)
	if err != nil {
		return 0, err
	}

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.rescoreConcurrency)
	for _, app := range apps {
		g.Go(func() error {
			err := s.rescore(gctx, app)
			if errors.Is(err, errNotOpen) {
				return nil
			}
			if err != nil {
				return err
			}
			done.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(done.Load()), err
	}

	s.logger.InfoContext(ctx, "pending applications rescored",
		"count", done.Load(),
		"open", len(apps),
	)
	return int(done.Load()), nil
}

func (s *Service) rescore(ctx context.Context, app *models.Application) error {
	result := s.scorer.Score(ctx, app.Credential())
	if err := s.attach(ctx, app, result, true); err != nil {
		return err
	}
	s.metrics.IncRescored(string(result.Outcome))
	s.emitScored(ctx, app, result)
	return nil
}

// attach stores result on the current version of app. With openOnly set an
// application decided in the meantime is left untouched.
func (s *Service) attach(ctx context.Context, app *models.Application, result matching.ConfidenceResult, openOnly bool) error {
	if result.ScoredAt.IsZero() {
		result.ScoredAt = s.clock(ctx)
	}
	return s.store.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.load(ctx, app.ID)
		if err != nil {
			return err
		}
		if openOnly && !current.CanBeModified() {
			return errNotOpen
		}
		current.AttachConfidence(result)
		if err := s.store.Update(ctx, current); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save confidence assessment")
		}
		*app = *current
		return nil
	})
}

func (s *Service) emitScored(ctx context.Context, app *models.Application, result matching.ConfidenceResult) {
	action := audit.EventConfidenceScored
	if result.Outcome == matching.OutcomeProcessingFailed {
		action = audit.EventConfidenceFailed
	}
	s.emit(ctx, audit.Event{
		Action:   string(action),
		UserID:   app.ApplicantID,
		Subject:  app.ID.String(),
		Decision: string(result.Band),
		Reason:   string(result.Outcome),
	})
}

func actor(userID id.UserID) string {
	if userID.IsNil() {
		return ""
	}
	return userID.String()
}
