package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/verification/metrics"
	"mindcare/internal/verification/models"
	"mindcare/internal/verification/service/mocks"
	"mindcare/internal/verification/store"
	id "mindcare/pkg/domain"
	dErrors "mindcare/pkg/domain-errors"
	audit "mindcare/pkg/platform/audit"
	"mindcare/pkg/platform/audit/publisher"
	auditmemory "mindcare/pkg/platform/audit/store/memory"
)

// =============================================================================
// Verification service
// =============================================================================
// Every submission must reach the admin queue with an assessment attached,
// whatever the engine returns, and every admin decision must leave an audit
// record or not happen at all.

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	ctrl       *gomock.Controller
	scorer     *mocks.MockScorer
	roles      *mocks.MockRoleGranter
	store      *store.InMemory
	auditStore *auditmemory.InMemoryStore
	metrics    *metrics.Metrics
	service    *Service
	admin      id.UserID
	now        time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.scorer = mocks.NewMockScorer(s.ctrl)
	s.roles = mocks.NewMockRoleGranter(s.ctrl)
	s.store = store.NewInMemory()
	s.auditStore = auditmemory.NewInMemoryStore()
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	s.admin = id.UserID(uuid.New())
	s.now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	svc, err := New(s.store, s.scorer,
		WithRoleGranter(s.roles),
		WithAuditPublisher(publisher.NewPublisher(s.auditStore)),
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) TestNewRequiresDependencies() {
	_, err := New(nil, s.scorer)
	s.EqualError(err, "application store is required")

	_, err = New(s.store, nil)
	s.EqualError(err, "scorer is required")
}

func (s *ServiceSuite) psychiatrist() SubmitRequest {
	return SubmitRequest{
		ApplicantID:        id.UserID(uuid.New()),
		Type:               matching.CredentialPsychiatrist,
		FirstName:          " Ayesha ",
		LastName:           "Rahman",
		Email:              "ayesha@example.com",
		RegistrationNumber: "BMDC-12345",
		Specialization:     "Child Psychiatry",
		LicenseDocumentURL: "https://files.example.com/license.pdf",
	}
}

func (s *ServiceSuite) highResult() matching.ConfidenceResult {
	return matching.ConfidenceResult{
		Score:       0.95,
		Band:        matching.BandHigh,
		Gate:        matching.BandHigh,
		Level:       matching.LevelExcellent,
		Outcome:     matching.OutcomeScored,
		Explanation: "registration and name match",
		BestMatch:   &matching.ReferenceRecord{ID: id.NewReferenceID(), FullName: "Dr. Ayesha Rahman"},
		ScoredAt:    s.now.Add(time.Second),
	}
}

func (s *ServiceSuite) submit(req SubmitRequest, result matching.ConfidenceResult) *models.Application {
	s.scorer.EXPECT().Score(gomock.Any(), gomock.Any()).Return(result)
	app, err := s.service.Submit(s.ctx, req)
	s.Require().NoError(err)
	return app
}

func (s *ServiceSuite) actions(subject string) []string {
	events, err := s.auditStore.ListBySubject(s.ctx, subject)
	s.Require().NoError(err)
	// oldest first
	var out []string
	for i := len(events) - 1; i >= 0; i-- {
		out = append(out, events[i].Action)
	}
	return out
}

// =============================================================================
// Submission
// =============================================================================

func (s *ServiceSuite) TestSubmitScoresAndQueues() {
	req := s.psychiatrist()
	s.scorer.EXPECT().
		Score(gomock.Any(), matching.ApplicantCredential{
			Type:               matching.CredentialPsychiatrist,
			FullName:           "Ayesha Rahman",
			Email:              "ayesha@example.com",
			RegistrationNumber: "BMDC-12345",
			Specialization:     "Child Psychiatry",
		}).
		Return(s.highResult())

	app, err := s.service.Submit(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, app.Status)
	s.Equal("Ayesha", app.FirstName)
	s.Require().NotNil(app.Assessment)
	s.Equal(models.QueuePriority, app.Assessment.Queue)
	s.Equal("Dr. Ayesha Rahman", app.Assessment.MatchedName)

	stored, err := s.service.Status(s.ctx, req.ApplicantID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.Assessment)
	s.InDelta(0.95, stored.Assessment.Score, 1e-9)

	s.Equal([]string{
		string(audit.EventApplicationSubmitted),
		string(audit.EventConfidenceScored),
	}, s.actions(app.ID.String()))
	s.InDelta(1, testutil.ToFloat64(s.metrics.Submissions.WithLabelValues("PSYCHIATRIST")), 0)
}

func (s *ServiceSuite) TestSubmitSurvivesScoringFailure() {
	failed := matching.ConfidenceResult{
		Band:        matching.BandNoMatch,
		Gate:        matching.BandNoMatch,
		Level:       matching.LevelNoMatch,
		Outcome:     matching.OutcomeProcessingFailed,
		Explanation: "AI processing failed - manual review required",
	}
	app := s.submit(s.psychiatrist(), failed)

	s.Require().NotNil(app.Assessment)
	s.Equal(models.QueueManual, app.Assessment.Queue)
	s.Equal(s.now, app.Assessment.ScoredAt)
	s.Contains(s.actions(app.ID.String()), string(audit.EventConfidenceFailed))
}

func (s *ServiceSuite) TestSubmitValidation() {
	cases := []struct {
		name   string
		mutate func(*SubmitRequest)
		msg    string
	}{
		{"unknown type", func(r *SubmitRequest) { r.Type = "COUNSELLOR" }, "professional_type must be PSYCHIATRIST or PSYCHOLOGIST"},
		{"missing license", func(r *SubmitRequest) { r.LicenseDocumentURL = "  " }, "license document is required"},
		{"missing BMDC", func(r *SubmitRequest) { r.RegistrationNumber = "" }, "BMDC number is required for psychiatrists"},
		{"malformed BMDC", func(r *SubmitRequest) { r.RegistrationNumber = "12 34" }, "BMDC number must be 6-20 letters, digits or dashes"},
		{"psychologist without degree", func(r *SubmitRequest) {
			r.Type = matching.CredentialPsychologist
			r.DegreeTitle = ""
		}, "degree institution and degree title are required for psychologists"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := s.psychiatrist()
			tc.mutate(&req)
			_, err := s.service.Submit(s.ctx, req)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Equal(tc.msg, dErrors.MessageOf(err))
		})
	}
}

func (s *ServiceSuite) TestSubmitConflictsWithOpenOrApprovedApplication() {
	req := s.psychiatrist()
	app := s.submit(req, s.highResult())

	_, err := s.service.Submit(s.ctx, req)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal("You already have a pending verification application", dErrors.MessageOf(err))

	s.roles.EXPECT().GrantProfessional(gomock.Any(), req.ApplicantID).Return(nil)
	_, err = s.service.Approve(s.ctx, app.ID, s.admin, "")
	s.Require().NoError(err)

	_, err = s.service.Submit(s.ctx, req)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal("You are already a verified professional", dErrors.MessageOf(err))
}

func (s *ServiceSuite) TestResubmitAfterRejectionReplaces() {
	req := s.psychiatrist()
	first := s.submit(req, s.highResult())
	_, err := s.service.Reject(s.ctx, first.ID, s.admin, "license expired", "")
	s.Require().NoError(err)

	second := s.submit(req, s.highResult())
	s.NotEqual(first.ID, second.ID)

	_, err = s.service.Get(s.ctx, first.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	current, err := s.service.Status(s.ctx, req.ApplicantID)
	s.Require().NoError(err)
	s.Equal(second.ID, current.ID)
}

func (s *ServiceSuite) TestSubmitRejectsRegistrationHeldByAnotherProfessional() {
	holder := s.psychiatrist()
	app := s.submit(holder, s.highResult())
	s.roles.EXPECT().GrantProfessional(gomock.Any(), holder.ApplicantID).Return(nil)
	_, err := s.service.Approve(s.ctx, app.ID, s.admin, "")
	s.Require().NoError(err)

	other := s.psychiatrist()
	other.RegistrationNumber = "bmdc-12345"
	_, err = s.service.Submit(s.ctx, other)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal("BMDC number already registered by another professional", dErrors.MessageOf(err))
}

// =============================================================================
// Admin decisions
// =============================================================================

func (s *ServiceSuite) TestReviewThenApprove() {
	app := s.submit(s.psychiatrist(), s.highResult())

	reviewed, err := s.service.StartReview(s.ctx, app.ID, s.admin)
	s.Require().NoError(err)
	s.Equal(models.StatusUnderReview, reviewed.Status)

	s.roles.EXPECT().GrantProfessional(gomock.Any(), app.ApplicantID).Return(nil)
	approved, err := s.service.Approve(s.ctx, app.ID, s.admin, "phoned BMDC")
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, approved.Status)
	s.Equal(s.admin, approved.VerifiedBy)
	s.Equal("phoned BMDC", approved.AdminNotes)

	events, err := s.auditStore.ListBySubject(s.ctx, app.ID.String())
	s.Require().NoError(err)
	last := events[0]
	s.Equal(string(audit.EventApplicationApproved), last.Action)
	s.Equal(audit.CategoryCompliance, last.Category)
	s.Equal(s.admin.String(), last.ActorID)
	s.InDelta(1, testutil.ToFloat64(s.metrics.Decisions.WithLabelValues("APPROVED")), 0)
}

func (s *ServiceSuite) TestRejectRequiresReason() {
	app := s.submit(s.psychiatrist(), s.highResult())

	_, err := s.service.Reject(s.ctx, app.ID, s.admin, " ", "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	rejected, err := s.service.Reject(s.ctx, app.ID, s.admin, "license expired", "call back in March")
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, rejected.Status)
	s.Equal("license expired", rejected.RejectionReason)
}

func (s *ServiceSuite) TestDecisionOnClosedApplication() {
	app := s.submit(s.psychiatrist(), s.highResult())
	_, err := s.service.Reject(s.ctx, app.ID, s.admin, "duplicate", "")
	s.Require().NoError(err)

	_, err = s.service.Approve(s.ctx, app.ID, s.admin, "")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	s.Equal("application cannot be modified in current status: REJECTED", dErrors.MessageOf(err))
}

func (s *ServiceSuite) TestDecisionOnUnknownApplication() {
	_, err := s.service.Approve(s.ctx, id.NewApplicationID(), s.admin, "")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestRevokeRemovesRole() {
	app := s.submit(s.psychiatrist(), s.highResult())
	s.roles.EXPECT().GrantProfessional(gomock.Any(), app.ApplicantID).Return(nil)
	_, err := s.service.Approve(s.ctx, app.ID, s.admin, "")
	s.Require().NoError(err)

	s.roles.EXPECT().RevokeProfessional(gomock.Any(), app.ApplicantID).Return(nil)
	revoked, err := s.service.Revoke(s.ctx, app.ID, s.admin, "license suspended")
	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, revoked.Status)
}

func (s *ServiceSuite) TestRoleGrantFailureRollsBackApproval() {
	app := s.submit(s.psychiatrist(), s.highResult())
	s.roles.EXPECT().GrantProfessional(gomock.Any(), app.ApplicantID).Return(errors.New("user store down"))

	_, err := s.service.Approve(s.ctx, app.ID, s.admin, "")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	stored, err := s.service.Get(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, stored.Status)
}

func (s *ServiceSuite) TestAuditFailureRollsBackDecision() {
	auditor := mocks.NewMockAuditPublisher(s.ctrl)
	svc, err := New(s.store, s.scorer, WithAuditPublisher(auditor), WithClock(func() time.Time { return s.now }))
	s.Require().NoError(err)

	// operations events are best effort
	auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("audit down")).Times(2)
	s.scorer.EXPECT().Score(gomock.Any(), gomock.Any()).Return(s.highResult())
	app, err := svc.Submit(s.ctx, s.psychiatrist())
	s.Require().NoError(err)

	auditor.EXPECT().
		Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventApplicationRejected), e.Action)
			return errors.New("audit down")
		})
	_, err = svc.Reject(s.ctx, app.ID, s.admin, "license expired", "")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	stored, err := svc.Get(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, stored.Status)
}

// =============================================================================
// Queue views and rescoring
// =============================================================================

func (s *ServiceSuite) TestListPendingAndStatistics() {
	first := s.submit(s.psychiatrist(), s.highResult())
	s.now = s.now.Add(time.Minute)
	second := s.submit(s.psychiatrist(), s.highResult())
	s.now = s.now.Add(time.Minute)
	third := s.submit(s.psychiatrist(), s.highResult())
	_, err := s.service.Reject(s.ctx, third.ID, s.admin, "duplicate", "")
	s.Require().NoError(err)

	pending, err := s.service.ListPending(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(first.ID, pending[0].ID)
	s.Equal(second.ID, pending[1].ID)

	rejected, err := s.service.List(s.ctx, models.StatusRejected)
	s.Require().NoError(err)
	s.Len(rejected, 1)

	stats, err := s.service.Statistics(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, stats[models.StatusPending])
	s.Equal(1, stats[models.StatusRejected])
	s.Equal(0, stats[models.StatusApproved])
	s.Len(stats, len(models.AllStatuses))
}

func (s *ServiceSuite) TestRescoreUpdatesAssessment() {
	low := matching.ConfidenceResult{
		Band:    matching.BandNoMatch,
		Gate:    matching.BandNoMatch,
		Level:   matching.LevelNoMatch,
		Outcome: matching.OutcomeNoMatch,
	}
	app := s.submit(s.psychiatrist(), low)
	s.Equal(models.QueueManual, app.Assessment.Queue)

	s.scorer.EXPECT().Score(gomock.Any(), gomock.Any()).Return(s.highResult())
	rescored, err := s.service.Rescore(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(models.QueuePriority, rescored.Assessment.Queue)
	s.InDelta(1, testutil.ToFloat64(s.metrics.Rescored.WithLabelValues("scored")), 0)
}

func (s *ServiceSuite) TestRescoreClosedApplication() {
	app := s.submit(s.psychiatrist(), s.highResult())
	_, err := s.service.Reject(s.ctx, app.ID, s.admin, "duplicate", "")
	s.Require().NoError(err)

	_, err = s.service.Rescore(s.ctx, app.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *ServiceSuite) TestRescorePending() {
	for range 5 {
		s.submit(s.psychiatrist(), s.highResult())
	}
	closed := s.submit(s.psychiatrist(), s.highResult())
	_, err := s.service.Reject(s.ctx, closed.ID, s.admin, "duplicate", "")
	s.Require().NoError(err)

	s.scorer.EXPECT().Score(gomock.Any(), gomock.Any()).Return(s.highResult()).Times(5)
	n, err := s.service.RescorePending(s.ctx)
	s.Require().NoError(err)
	s.Equal(5, n)
}

func (s *ServiceSuite) TestPreviewDoesNotPersist() {
	credential := matching.ApplicantCredential{Type: matching.CredentialPsychologist, FullName: "Nadia Karim"}
	s.scorer.EXPECT().Score(gomock.Any(), credential).Return(matching.ConfidenceResult{Outcome: matching.OutcomeInsufficientData})

	result := s.service.Preview(s.ctx, credential)
	s.Equal(matching.OutcomeInsufficientData, result.Outcome)
	s.Equal(s.now, result.ScoredAt)

	all, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
}
