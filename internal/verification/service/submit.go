package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/matching/normalize"
	"mindcare/internal/verification/models"
	id "mindcare/pkg/domain"
	dErrors "mindcare/pkg/domain-errors"
	audit "mindcare/pkg/platform/audit"
	"mindcare/pkg/platform/sentinel"
)

var registrationFormat = regexp.MustCompile(`^[A-Za-z0-9-]{6,20}$`)

// SubmitRequest carries an applicant's credentials.
type SubmitRequest struct {
	ApplicantID id.UserID
	Type        matching.CredentialType

	FirstName string
	LastName  string
	Email     string

	RegistrationNumber string
	DegreeInstitution  string
	DegreeTitle        string
	Affiliation        string
	ExperienceYears    *int
	Specialization     string
	LanguagesSpoken    []string
	ClinicAddress      string
	ContactEmail       string
	ContactPhone       string

	LicenseDocumentURL     string
	DegreeDocumentURL      string
	AdditionalDocumentURLs []string
}

func (r *SubmitRequest) normalize() {
	for _, f := range []*string{
		&r.FirstName, &r.LastName, &r.Email, &r.RegistrationNumber,
		&r.DegreeInstitution, &r.DegreeTitle, &r.Affiliation, &r.Specialization,
		&r.ClinicAddress, &r.ContactEmail, &r.ContactPhone,
		&r.LicenseDocumentURL, &r.DegreeDocumentURL,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// Validate checks the fields required for the credential type.
func (r SubmitRequest) Validate() error {
	if r.ApplicantID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "applicant is required")
	}
	if !r.Type.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "professional_type must be PSYCHIATRIST or PSYCHOLOGIST")
	}
	if r.LicenseDocumentURL == "" {
		return dErrors.New(dErrors.CodeValidation, "license document is required")
	}
	if r.ExperienceYears != nil && *r.ExperienceYears < 0 {
		return dErrors.New(dErrors.CodeValidation, "experience_years cannot be negative")
	}
	switch r.Type {
	case matching.CredentialPsychiatrist:
		if r.RegistrationNumber == "" {
			return dErrors.New(dErrors.CodeValidation, "BMDC number is required for psychiatrists")
		}
		if !registrationFormat.MatchString(r.RegistrationNumber) {
			return dErrors.New(dErrors.CodeValidation, "BMDC number must be 6-20 letters, digits or dashes")
		}
	case matching.CredentialPsychologist:
		if r.DegreeInstitution == "" || r.DegreeTitle == "" {
			return dErrors.New(dErrors.CodeValidation, "degree institution and degree title are required for psychologists")
		}
	}
	return nil
}

// Submit files a new application and scores it. A previous REJECTED or
// REVOKED application is replaced. The confidence result is attached when
// scoring completes; a failure there never fails the submission.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Application, error) {
	req.normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	app := newApplication(req, s.clock(ctx))
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		previous, err := s.store.FindByApplicant(ctx, req.ApplicantID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			previous = nil
		case err != nil:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load existing application")
		case previous.CanBeModified():
			return dErrors.New(dErrors.CodeConflict, "You already have a pending verification application")
		case previous.Status == models.StatusApproved:
			return dErrors.New(dErrors.CodeConflict, "You are already a verified professional")
		}

		if err := s.checkRegistrationUnclaimed(ctx, app); err != nil {
			return err
		}

		if previous != nil {
			err = s.store.Replace(ctx, previous.ID, app)
		} else {
			err = s.store.Create(ctx, app)
		}
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "You already have a pending verification application")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save application")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncSubmission(app.Type.String())
	s.logger.InfoContext(ctx, "verification application submitted",
		"application_id", app.ID.String(),
		"correlation_id", app.CorrelationID,
		"type", app.Type,
	)
	s.emit(ctx, audit.Event{
		Action:   string(audit.EventApplicationSubmitted),
		UserID:   app.ApplicantID,
		Subject:  app.ID.String(),
		Decision: string(app.Type),
	})

	s.score(ctx, app)
	return app, nil
}

// checkRegistrationUnclaimed rejects a BMDC number already held by another
// approved professional.
func (s *Service) checkRegistrationUnclaimed(ctx context.Context, app *models.Application) error {
	if app.Type != matching.CredentialPsychiatrist {
		return nil
	}
	key := normalize.Registration(app.RegistrationNumber)
	holders, err := s.store.FindApprovedByRegistration(ctx, key)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check registration number")
	}
	for _, h := range holders {
		if h.ApplicantID != app.ApplicantID {
			return dErrors.New(dErrors.CodeConflict, "BMDC number already registered by another professional")
		}
	}
	return nil
}

// score runs the engine and saves the assessment. Errors are logged only.
func (s *Service) score(ctx context.Context, app *models.Application) {
	result := s.scorer.Score(ctx, app.Credential())
	if err := s.attach(ctx, app, result, false); err != nil {
		s.logger.ErrorContext(ctx, "failed to save confidence assessment",
			"application_id", app.ID.String(),
			"error", err,
		)
		return
	}
	s.logger.InfoContext(ctx, "confidence assessment attached",
		"application_id", app.ID.String(),
		"score", result.Score,
		"band", result.Band,
		"queue", app.Assessment.Queue,
	)
	s.emitScored(ctx, app, result)
}

func newApplication(req SubmitRequest, now time.Time) *models.Application {
	app := models.NewApplication(req.ApplicantID, req.Type, now)
	app.FirstName = req.FirstName
	app.LastName = req.LastName
	app.Email = req.Email
	app.RegistrationNumber = req.RegistrationNumber
	app.DegreeInstitution = req.DegreeInstitution
	app.DegreeTitle = req.DegreeTitle
	app.Affiliation = req.Affiliation
	app.ExperienceYears = req.ExperienceYears
	app.Specialization = req.Specialization
	app.LanguagesSpoken = req.LanguagesSpoken
	app.ClinicAddress = req.ClinicAddress
	app.ContactEmail = req.ContactEmail
	app.ContactPhone = req.ContactPhone
	app.LicenseDocumentURL = req.LicenseDocumentURL
	app.DegreeDocumentURL = req.DegreeDocumentURL
	app.AdditionalDocumentURLs = req.AdditionalDocumentURLs
	return app
}
