package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/reference/models"
	id "mindcare/pkg/domain"
	dErrors "mindcare/pkg/domain-errors"
	audit "mindcare/pkg/platform/audit"
	"mindcare/pkg/platform/sentinel"
	pstrings "mindcare/pkg/platform/strings"
)

// Column names accepted in the CSV header, compared case-insensitively.
const (
	colEmail              = "email"
	colFullName           = "full_name"
	colProfessionalType   = "professional_type"
	colSpecialization     = "specialization"
	colLicenseNumber      = "license_number"
	colBMDCNumber         = "bmdc_number"
	colDegreeInstitution  = "degree_institution"
	colDegreeTitle        = "degree_title"
	colAffiliation        = "affiliation"
	colExperienceYears    = "experience_years"
	colLanguagesSpoken    = "languages_spoken"
	colClinicAddress      = "clinic_address"
	colContactPhone       = "contact_phone"
	colLicenseDocumentURL = "license_document_url"
	colDegreeDocumentURL  = "degree_document_url"
	colStatusNote         = "status_note"
)

var requiredColumns = []string{colEmail, colFullName, colProfessionalType, colSpecialization}

// ImportCSV adds every valid row of a header-mapped CSV to the reference list.
// Rows missing a required field, with an unknown professional type, or whose
// composite key is already present are skipped and reported in the summary.
// A header without data rows is rejected.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader, uploadedBy id.UserID) (*models.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "CSV file is empty or has no data rows")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "unreadable CSV header")
	}
	columns := mapColumns(header)
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, dErrors.New(dErrors.CodeValidation, "missing required column: "+required)
		}
	}

	summary := &models.ImportSummary{}
	rows := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read CSV")
			}
			rows++
			summary.Skip(parseErr.Line, "malformed row")
			continue
		}
		rows++
		line, _ := reader.FieldPos(0)

		record, reason := rowToRecord(columns, fields)
		if reason != "" {
			s.logger.WarnContext(ctx, "skipping reference row", "line", line, "reason", reason)
			summary.Skip(line, reason)
			continue
		}
		record.ID = id.NewReferenceID()
		record.UploadedAt = s.now()
		record.UploadedBy = uploadedBy

		if err := s.store.Add(ctx, record); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				summary.Skip(line, "already in reference list")
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to import reference entries")
		}
		summary.Added++
	}
	if rows == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "CSV file is empty or has no data rows")
	}

	s.metrics.ObserveImport(summary.Added, summary.Skipped)
	s.logger.InfoContext(ctx, "reference list imported",
		"added", summary.Added,
		"skipped", summary.Skipped,
	)
	s.emit(ctx, audit.Event{
		Action:   string(audit.EventReferenceImported),
		Decision: fmt.Sprintf("added=%d skipped=%d", summary.Added, summary.Skipped),
		ActorID:  actor(uploadedBy),
	})
	return summary, nil
}

func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	return columns
}

// rowToRecord returns a non-empty reason when the row must be skipped.
func rowToRecord(columns map[string]int, fields []string) (*models.Record, string) {
	get := func(col string) string {
		i, ok := columns[col]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	record := &models.Record{
		Email:              get(colEmail),
		FullName:           get(colFullName),
		Specialization:     get(colSpecialization),
		RegistrationNumber: get(colBMDCNumber),
		LicenseNumber:      get(colLicenseNumber),
		DegreeInstitution:  get(colDegreeInstitution),
		DegreeTitle:        get(colDegreeTitle),
		Affiliation:        get(colAffiliation),
		ExperienceYears:    parseYears(get(colExperienceYears)),
		LanguagesSpoken:    parseLanguages(get(colLanguagesSpoken)),
		ClinicAddress:      get(colClinicAddress),
		ContactPhone:       get(colContactPhone),
		LicenseDocumentURL: get(colLicenseDocumentURL),
		DegreeDocumentURL:  get(colDegreeDocumentURL),
		StatusNote:         get(colStatusNote),
	}
	rawType := get(colProfessionalType)
	if record.Email == "" || record.FullName == "" || rawType == "" || record.Specialization == "" {
		return nil, "missing required fields"
	}
	t, ok := matching.ParseCredentialType(rawType)
	if !ok {
		return nil, "invalid professional type: " + rawType
	}
	record.Type = t
	if err := validateRecord(*record); err != nil {
		return nil, dErrors.MessageOf(err)
	}
	return record, ""
}

// parseYears ignores values that are not a non-negative integer.
func parseYears(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// parseLanguages accepts a JSON array or a comma/semicolon separated list.
// Repeated languages are kept once.
func parseLanguages(s string) []string {
	if s == "" {
		return nil
	}
	var list []string
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &list); err != nil {
			list = nil
		}
	}
	if list == nil {
		list = strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	}
	out := pstrings.DedupeAndTrim(list)
	if len(out) == 0 {
		return nil
	}
	return out
}
