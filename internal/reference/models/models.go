// Package models holds the reference list types used by the admin surface.
package models

import (
	"strings"

	matching "mindcare/internal/matching/models"
)

// Record is a reference list entry. It is the same type the engine matches
// against.
type Record = matching.ReferenceRecord

// RowIssue explains why one CSV row was not imported.
type RowIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportSummary reports the outcome of a CSV import.
type ImportSummary struct {
	Added   int        `json:"added"`
	Skipped int        `json:"skipped"`
	Rows    []RowIssue `json:"rows,omitempty"`
}

// Skip records a skipped row.
func (s *ImportSummary) Skip(line int, reason string) {
	s.Skipped++
	s.Rows = append(s.Rows, RowIssue{Line: line, Reason: reason})
}

// SearchFilter narrows List for admins. Empty fields are ignored; text
// fields match case-insensitively as substrings.
type SearchFilter struct {
	Email          string
	Name           string
	Type           matching.CredentialType
	Specialization string
}

// IsEmpty reports whether no field is set.
func (f SearchFilter) IsEmpty() bool {
	return strings.TrimSpace(f.Email) == "" &&
		strings.TrimSpace(f.Name) == "" &&
		f.Type == "" &&
		strings.TrimSpace(f.Specialization) == ""
}

// Matches evaluates the filter against a record.
func (f SearchFilter) Matches(r Record) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	return containsFold(r.Email, f.Email) &&
		containsFold(r.FullName, f.Name) &&
		containsFold(r.Specialization, f.Specialization)
}

func containsFold(s, sub string) bool {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
