package handler

import (
	"strings"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/reference/models"
	dErrors "mindcare/pkg/domain-errors"
)

// AddRequest is the body of POST /admin/reference. Field names follow the
// CSV import columns.
type AddRequest struct {
	Email              string   `json:"email"`
	FullName           string   `json:"full_name"`
	ProfessionalType   string   `json:"professional_type"`
	Specialization     string   `json:"specialization"`
	LicenseNumber      string   `json:"license_number"`
	BMDCNumber         string   `json:"bmdc_number"`
	DegreeInstitution  string   `json:"degree_institution"`
	DegreeTitle        string   `json:"degree_title"`
	Affiliation        string   `json:"affiliation"`
	ExperienceYears    *int     `json:"experience_years"`
	LanguagesSpoken    []string `json:"languages_spoken"`
	ClinicAddress      string   `json:"clinic_address"`
	ContactPhone       string   `json:"contact_phone"`
	LicenseDocumentURL string   `json:"license_document_url"`
	DegreeDocumentURL  string   `json:"degree_document_url"`
	StatusNote         string   `json:"status_note"`

	parsedType matching.CredentialType
}

// Validate implements httputil.Validatable. Field-level rules are enforced
// by the service; only the type is parsed here.
func (r *AddRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Email) > 254 || len(r.FullName) > 200 {
		return dErrors.New(dErrors.CodeValidation, "email or full_name too long")
	}
	t, ok := matching.ParseCredentialType(r.ProfessionalType)
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "professional_type must be PSYCHIATRIST or PSYCHOLOGIST")
	}
	r.parsedType = t
	return nil
}

// Record converts the request to a reference record.
func (r *AddRequest) Record() models.Record {
	return models.Record{
		Email:              r.Email,
		FullName:           r.FullName,
		Type:               r.parsedType,
		Specialization:     r.Specialization,
		RegistrationNumber: r.BMDCNumber,
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
	}
}

// parseSearchFilter reads the search query parameters.
func parseSearchFilter(get func(string) string) (models.SearchFilter, error) {
	filter := models.SearchFilter{
		Email:          strings.TrimSpace(get("email")),
		Name:           strings.TrimSpace(get("name")),
		Specialization: strings.TrimSpace(get("specialization")),
	}
	if raw := strings.TrimSpace(get("type")); raw != "" {
		t, ok := matching.ParseCredentialType(raw)
		if !ok {
			return models.SearchFilter{}, dErrors.New(dErrors.CodeBadRequest, "invalid type filter")
		}
		filter.Type = t
	}
	return filter, nil
}
