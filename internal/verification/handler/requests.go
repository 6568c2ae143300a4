package handler

import (
	"strings"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/verification/service"
	id "mindcare/pkg/domain"
	dErrors "mindcare/pkg/domain-errors"
)

const maxNoteLength = 2000

// SubmitRequest is the body of POST /professional/applications.
type SubmitRequest struct {
	ProfessionalType       string   `json:"professional_type"`
	FirstName              string   `json:"first_name"`
	LastName               string   `json:"last_name"`
	Email                  string   `json:"email"`
	BMDCNumber             string   `json:"bmdc_number"`
	DegreeInstitution      string   `json:"degree_institution"`
	DegreeTitle            string   `json:"degree_title"`
	Affiliation            string   `json:"affiliation"`
	ExperienceYears        *int     `json:"experience_years"`
	Specialization         string   `json:"specialization"`
	LanguagesSpoken        []string `json:"languages_spoken"`
	ClinicAddress          string   `json:"clinic_address"`
	ContactEmail           string   `json:"contact_email"`
	ContactPhone           string   `json:"contact_phone"`
	LicenseDocumentURL     string   `json:"license_document_url"`
	DegreeDocumentURL      string   `json:"degree_document_url"`
	AdditionalDocumentURLs []string `json:"additional_document_urls"`

	parsedType matching.CredentialType
}

// Validate parses the type. Type-specific rules are enforced by the service.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	t, ok := matching.ParseCredentialType(r.ProfessionalType)
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "professional_type must be PSYCHIATRIST or PSYCHOLOGIST")
	}
	if len(r.AdditionalDocumentURLs) > 10 {
		return dErrors.New(dErrors.CodeValidation, "at most 10 additional documents are allowed")
	}
	r.parsedType = t
	return nil
}

func (r *SubmitRequest) Command(applicant id.UserID) service.SubmitRequest {
	return service.SubmitRequest{
		ApplicantID:            applicant,
		Type:                   r.parsedType,
		FirstName:              r.FirstName,
		LastName:               r.LastName,
		Email:                  r.Email,
		RegistrationNumber:     r.BMDCNumber,
		DegreeInstitution:      r.DegreeInstitution,
		DegreeTitle:            r.DegreeTitle,
		Affiliation:            r.Affiliation,
		ExperienceYears:        r.ExperienceYears,
		Specialization:         r.Specialization,
		LanguagesSpoken:        r.LanguagesSpoken,
		ClinicAddress:          r.ClinicAddress,
		ContactEmail:           r.ContactEmail,
		ContactPhone:           r.ContactPhone,
		LicenseDocumentURL:     r.LicenseDocumentURL,
		DegreeDocumentURL:      r.DegreeDocumentURL,
		AdditionalDocumentURLs: r.AdditionalDocumentURLs,
	}
}

// DecisionRequest is the body of approve, reject and revoke.
type DecisionRequest struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

func (r *DecisionRequest) Normalize() {
	r.Notes = strings.TrimSpace(r.Notes)
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *DecisionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Notes) > maxNoteLength || len(r.Reason) > maxNoteLength {
		return dErrors.New(dErrors.CodeValidation, "notes and reason must be at most 2000 characters")
	}
	return nil
}

// PreviewRequest is the body of POST /admin/verifications/preview.
type PreviewRequest struct {
	ProfessionalType  string `json:"professional_type"`
	FullName          string `json:"full_name"`
	Email             string `json:"email"`
	BMDCNumber        string `json:"bmdc_number"`
	DegreeTitle       string `json:"degree_title"`
	DegreeInstitution string `json:"degree_institution"`
	Specialization    string `json:"specialization"`

	parsedType matching.CredentialType
}

func (r *PreviewRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	t, ok := matching.ParseCredentialType(r.ProfessionalType)
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "professional_type must be PSYCHIATRIST or PSYCHOLOGIST")
	}
	r.parsedType = t
	return nil
}

func (r *PreviewRequest) Credential() matching.ApplicantCredential {
	return matching.ApplicantCredential{
		Type:               r.parsedType,
		FullName:           r.FullName,
		Email:              r.Email,
		RegistrationNumber: r.BMDCNumber,
		DegreeTitle:        r.DegreeTitle,
		DegreeInstitution:  r.DegreeInstitution,
		Specialization:     r.Specialization,
	}
}
