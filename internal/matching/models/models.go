// Package models holds the types shared by the confidence engine: the
// applicant's credential, reference records, candidates and results.
package models

import (
	"strings"
	"time"

	id "mindcare/pkg/domain"
)

// CredentialType determines which fields are authoritative and which
// matching pipeline runs.
type CredentialType string

const (
	CredentialPsychiatrist CredentialType = "PSYCHIATRIST"
	CredentialPsychologist CredentialType = "PSYCHOLOGIST"
)

// IsValid reports whether t is a supported credential type.
func (t CredentialType) IsValid() bool {
	return t == CredentialPsychiatrist || t == CredentialPsychologist
}

func (t CredentialType) String() string { return string(t) }

// ParseCredentialType accepts the type case-insensitively. The second return
// is false for unknown values.
func ParseCredentialType(s string) (CredentialType, bool) {
	t := CredentialType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.IsValid()
}

// ApplicantCredential is what an applicant submitted, as scored.
type ApplicantCredential struct {
	Type               CredentialType
	FullName           string
	Email              string
	RegistrationNumber string
	DegreeTitle        string
	DegreeInstitution  string
	Specialization     string
}

// FullName joins first and last name, trimming the result.
func FullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// ReferenceRecord is one entry of the pre-approved reference list.
type ReferenceRecord struct {
	ID                 id.ReferenceID
	Email              string
	FullName           string
	Type               CredentialType
	Specialization     string
	RegistrationNumber string
	DegreeTitle        string
	DegreeInstitution  string

	LicenseNumber      string
	Affiliation        string
	ExperienceYears    *int
	LanguagesSpoken    []string
	ClinicAddress      string
	ContactPhone       string
	LicenseDocumentURL string
	DegreeDocumentURL  string
	StatusNote         string

	UploadedAt time.Time
	UploadedBy id.UserID
}

// Key is the implicit composite key (email, type, specialization), compared
// case-insensitively on email and specialization.
type Key struct {
	Email          string
	Type           CredentialType
	Specialization string
}

// KeyOf builds the canonical composite key for a record.
func KeyOf(email string, t CredentialType, specialization string) Key {
	return Key{
		Email:          strings.ToLower(strings.TrimSpace(email)),
		Type:           t,
		Specialization: strings.ToLower(strings.TrimSpace(specialization)),
	}
}

// Key returns the record's composite key.
func (r ReferenceRecord) Key() Key {
	return KeyOf(r.Email, r.Type, r.Specialization)
}
