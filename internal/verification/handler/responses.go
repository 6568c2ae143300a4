package handler

import (
	"time"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/verification/models"
	id "mindcare/pkg/domain"
)

// ApplicationStatusResponse is what applicants see. It never carries
// confidence data.
type ApplicationStatusResponse struct {
	ID               id.ApplicationID        `json:"id"`
	CorrelationID    string                  `json:"correlation_id"`
	ProfessionalType matching.CredentialType `json:"professional_type"`
	Status           models.Status           `json:"status"`
	RejectionReason  string                  `json:"rejection_reason,omitempty"`
	SubmittedAt      time.Time               `json:"submitted_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
	VerifiedAt       *time.Time              `json:"verified_at,omitempty"`
}

// ApplicationResponse is the admin view, assessment included.
type ApplicationResponse struct {
	ID                     id.ApplicationID        `json:"id"`
	ApplicantID            id.UserID               `json:"applicant_id"`
	CorrelationID          string                  `json:"correlation_id"`
	ProfessionalType       matching.CredentialType `json:"professional_type"`
	FirstName              string                  `json:"first_name"`
	LastName               string                  `json:"last_name"`
	Email                  string                  `json:"email"`
	BMDCNumber             string                  `json:"bmdc_number,omitempty"`
	DegreeInstitution      string                  `json:"degree_institution,omitempty"`
	DegreeTitle            string                  `json:"degree_title,omitempty"`
	Affiliation            string                  `json:"affiliation,omitempty"`
	ExperienceYears        *int                    `json:"experience_years,omitempty"`
	Specialization         string                  `json:"specialization,omitempty"`
	LanguagesSpoken        []string                `json:"languages_spoken,omitempty"`
	ClinicAddress          string                  `json:"clinic_address,omitempty"`
	ContactEmail           string                  `json:"contact_email,omitempty"`
	ContactPhone           string                  `json:"contact_phone,omitempty"`
	LicenseDocumentURL     string                  `json:"license_document_url"`
	DegreeDocumentURL      string                  `json:"degree_document_url,omitempty"`
	AdditionalDocumentURLs []string                `json:"additional_document_urls,omitempty"`
	Status                 models.Status           `json:"status"`
	AdminNotes             string                  `json:"admin_notes,omitempty"`
	RejectionReason        string                  `json:"rejection_reason,omitempty"`
	VerifiedBy             *id.UserID              `json:"verified_by,omitempty"`
	VerifiedAt             *time.Time              `json:"verified_at,omitempty"`
	Assessment             *models.Assessment      `json:"assessment,omitempty"`
	SubmittedAt            time.Time               `json:"submitted_at"`
	UpdatedAt              time.Time               `json:"updated_at"`
}

type ListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Total        int                   `json:"total"`
}

type StatisticsResponse struct {
	Counts map[models.Status]int `json:"counts"`
	Total  int                   `json:"total"`
}

type RescoreResponse struct {
	Rescored int `json:"rescored"`
}

func toStatusResponse(app *models.Application) ApplicationStatusResponse {
	return ApplicationStatusResponse{
		ID:               app.ID,
		CorrelationID:    app.CorrelationID,
		ProfessionalType: app.Type,
		Status:           app.Status,
		RejectionReason:  app.RejectionReason,
		SubmittedAt:      app.CreatedAt,
		UpdatedAt:        app.UpdatedAt,
		VerifiedAt:       app.VerifiedAt,
	}
}

func toResponse(app *models.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:                     app.ID,
		ApplicantID:            app.ApplicantID,
		CorrelationID:          app.CorrelationID,
		ProfessionalType:       app.Type,
		FirstName:              app.FirstName,
		LastName:               app.LastName,
		Email:                  app.Email,
		BMDCNumber:             app.RegistrationNumber,
		DegreeInstitution:      app.DegreeInstitution,
		DegreeTitle:            app.DegreeTitle,
		Affiliation:            app.Affiliation,
		ExperienceYears:        app.ExperienceYears,
		Specialization:         app.Specialization,
		LanguagesSpoken:        app.LanguagesSpoken,
		ClinicAddress:          app.ClinicAddress,
		ContactEmail:           app.ContactEmail,
		ContactPhone:           app.ContactPhone,
		LicenseDocumentURL:     app.LicenseDocumentURL,
		DegreeDocumentURL:      app.DegreeDocumentURL,
		AdditionalDocumentURLs: app.AdditionalDocumentURLs,
		Status:                 app.Status,
		AdminNotes:             app.AdminNotes,
		RejectionReason:        app.RejectionReason,
		VerifiedAt:             app.VerifiedAt,
		Assessment:             app.Assessment,
		SubmittedAt:            app.CreatedAt,
		UpdatedAt:              app.UpdatedAt,
	}
	if !app.VerifiedBy.IsNil() {
		admin := app.VerifiedBy
		resp.VerifiedBy = &admin
	}
	return resp
}

func toListResponse(apps []*models.Application) ListResponse {
	out := ListResponse{Applications: make([]ApplicationResponse, 0, len(apps)), Total: len(apps)}
	for _, app := range apps {
		out.Applications = append(out.Applications, toResponse(app))
	}
	return out
}

func toStatisticsResponse(stats models.Statistics) StatisticsResponse {
	return StatisticsResponse{Counts: stats, Total: stats.Total()}
}
