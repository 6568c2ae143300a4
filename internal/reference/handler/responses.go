package handler

import (
	"time"

	"mindcare/internal/reference/models"
)

// ReferenceResponse is the admin view of one reference entry.
type ReferenceResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	FullName           string    `json:"full_name"`
	ProfessionalType   string    `json:"professional_type"`
	Specialization     string    `json:"specialization"`
	BMDCNumber         string    `json:"bmdc_number,omitempty"`
	LicenseNumber      string    `json:"license_number,omitempty"`
	DegreeInstitution  string    `json:"degree_institution,omitempty"`
	DegreeTitle        string    `json:"degree_title,omitempty"`
	Affiliation        string    `json:"affiliation,omitempty"`
	ExperienceYears    *int      `json:"experience_years,omitempty"`
	LanguagesSpoken    []string  `json:"languages_spoken,omitempty"`
	ClinicAddress      string    `json:"clinic_address,omitempty"`
	ContactPhone       string    `json:"contact_phone,omitempty"`
	LicenseDocumentURL string    `json:"license_document_url,omitempty"`
	DegreeDocumentURL  string    `json:"degree_document_url,omitempty"`
	StatusNote         string    `json:"status_note,omitempty"`
	UploadedAt         time.Time `json:"uploaded_at"`
	UploadedBy         string    `json:"uploaded_by,omitempty"`
}

type ListResponse struct {
	Entries []ReferenceResponse `json:"entries"`
	Total   int                 `json:"total"`
}

type CountResponse struct {
	Count int `json:"count"`
}

func toResponse(r models.Record) ReferenceResponse {
	resp := ReferenceResponse{
		ID:                 r.ID.String(),
		Email:              r.Email,
		FullName:           r.FullName,
		ProfessionalType:   r.Type.String(),
		Specialization:     r.Specialization,
		BMDCNumber:         r.RegistrationNumber,
		LicenseNumber:      r.LicenseNumber,
		DegreeInstitution:  r.DegreeInstitution,
		DegreeTitle:        r.DegreeTitle,
		Affiliation:        r.Affiliation,
		ExperienceYears:    r.ExperienceYears,
		LanguagesSpoken:    r.LanguagesSpoken,
		ClinicAddress:      r.ClinicAddress,
		ContactPhone:       r.ContactPhone,
		LicenseDocumentURL: r.LicenseDocumentURL,
		DegreeDocumentURL:  r.DegreeDocumentURL,
		StatusNote:         r.StatusNote,
		UploadedAt:         r.UploadedAt,
	}
	if !r.UploadedBy.IsNil() {
		resp.UploadedBy = r.UploadedBy.String()
	}
	return resp
}

func toListResponse(records []models.Record) ListResponse {
	out := ListResponse{Entries: make([]ReferenceResponse, 0, len(records)), Total: len(records)}
	for _, r := range records {
		out.Entries = append(out.Entries, toResponse(r))
	}
	return out
}
