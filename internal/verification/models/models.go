// Package models holds the professional verification application and its
// review state machine.
package models

import (
	"fmt"
	"strings"
	"time"

	matching "mindcare/internal/matching/models"
	id "mindcare/pkg/domain"
	dErrors "mindcare/pkg/domain-errors"
)

// Status is the review state of an application.
//
//	PENDING -> UNDER_REVIEW -> APPROVED | REJECTED
//	PENDING -> APPROVED | REJECTED
//	APPROVED -> REVOKED
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusRevoked     Status = "REVOKED"
)

// AllStatuses lists statuses in display order.
var AllStatuses = []Status{StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusRevoked}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusRevoked:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid status: "+s)
	}
	return st, nil
}

// Application is one applicant's request for the PROFESSIONAL role.
type Application struct {
	ID            id.ApplicationID
	ApplicantID   id.UserID
	CorrelationID string
	Type          matching.CredentialType

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

	Status          Status
	AdminNotes      string
	RejectionReason string
	VerifiedBy      id.UserID
	VerifiedAt      *time.Time

	// Assessment is nil until scoring has run.
	Assessment *Assessment

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCorrelationID is PROF_<unix millis>_<applicant>.
func NewCorrelationID(now time.Time, applicant id.UserID) string {
	return fmt.Sprintf("PROF_%d_%s", now.UnixMilli(), applicant)
}

// NewApplication creates a PENDING application.
func NewApplication(applicant id.UserID, t matching.CredentialType, now time.Time) *Application {
	return &Application{
		ID:            id.NewApplicationID(),
		ApplicantID:   applicant,
		CorrelationID: NewCorrelationID(now, applicant),
		Type:          t,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CanBeModified reports whether an admin decision can still be taken.
func (a *Application) CanBeModified() bool {
	return a.Status == StatusPending || a.Status == StatusUnderReview
}

// BlocksResubmission reports whether the applicant must wait for or keep
// this application instead of filing a new one.
func (a *Application) BlocksResubmission() bool {
	return a.CanBeModified() || a.Status == StatusApproved
}

// Credential is the view of the application the confidence engine scores.
func (a *Application) Credential() matching.ApplicantCredential {
	return matching.ApplicantCredential{
		Type:               a.Type,
		FullName:           matching.FullName(a.FirstName, a.LastName),
		Email:              a.Email,
		RegistrationNumber: a.RegistrationNumber,
		DegreeTitle:        a.DegreeTitle,
		DegreeInstitution:  a.DegreeInstitution,
		Specialization:     a.Specialization,
	}
}

func (a *Application) notModifiable() error {
	return dErrors.New(dErrors.CodeInvalidState,
		"application cannot be modified in current status: "+string(a.Status))
}

// StartReview moves a PENDING application to UNDER_REVIEW.
func (a *Application) StartReview(admin id.UserID, now time.Time) error {
	if a.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvalidState, "only pending applications can be taken into review")
	}
	a.Status = StatusUnderReview
	a.VerifiedBy = admin
	a.UpdatedAt = now
	return nil
}

func (a *Application) Approve(admin id.UserID, notes string, now time.Time) error {
	if !a.CanBeModified() {
		return a.notModifiable()
	}
	a.Status = StatusApproved
	a.VerifiedBy = admin
	a.VerifiedAt = &now
	a.AdminNotes = strings.TrimSpace(notes)
	a.RejectionReason = ""
	a.UpdatedAt = now
	return nil
}

// Reject requires a reason; notes are optional.
func (a *Application) Reject(admin id.UserID, reason, notes string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	if !a.CanBeModified() {
		return a.notModifiable()
	}
	a.Status = StatusRejected
	a.VerifiedBy = admin
	a.VerifiedAt = &now
	a.RejectionReason = reason
	a.AdminNotes = strings.TrimSpace(notes)
	a.UpdatedAt = now
	return nil
}

// Revoke withdraws an approval.
func (a *Application) Revoke(admin id.UserID, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return dErrors.New(dErrors.CodeValidation, "revocation reason is required")
	}
	if a.Status != StatusApproved {
		return dErrors.New(dErrors.CodeInvalidState, "only approved applications can be revoked")
	}
	a.Status = StatusRevoked
	a.VerifiedBy = admin
	a.VerifiedAt = &now
	a.RejectionReason = reason
	a.UpdatedAt = now
	return nil
}

// AttachConfidence stores the engine's result on the application.
func (a *Application) AttachConfidence(result matching.ConfidenceResult) {
	assessment := AssessmentFrom(result)
	a.Assessment = &assessment
	a.UpdatedAt = result.ScoredAt
}
