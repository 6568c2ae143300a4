// Package ports defines the reference lookup the engine consumes. Keeping the
// interface here lets the matcher be tested against an in-memory dataset
// without knowing how the reference list is stored.
package ports

import (
	"context"

	"mindcare/internal/matching/models"
)

// Field names a searchable reference column.
type Field string

const (
	FieldEmail              Field = "email"
	FieldFullName           Field = "full_name"
	FieldSpecialization     Field = "specialization"
	FieldRegistrationNumber Field = "registration_number"
	FieldDegreeTitle        Field = "degree_title"
	FieldDegreeInstitution  Field = "degree_institution"
)

// Op is the comparison applied to a field.
type Op string

const (
	OpEquals       Op = "equals"
	OpEqualsFold   Op = "equals_fold"
	OpContains     Op = "contains"
	OpContainsFold Op = "contains_fold"
)

// Condition is one field comparison. Conditions in a Criteria are ANDed.
type Condition struct {
	Field Field
	Op    Op
	Value string
}

// Criteria is a read-only query over the reference list, always scoped to one
// credential type. An empty Conditions list selects every record of the type.
// Limit caps the result; zero means no cap.
type Criteria struct {
	Type       models.CredentialType
	Conditions []Condition
	Limit      int
}

// Where appends a condition and returns the criteria for chaining.
func (c Criteria) Where(field Field, op Op, value string) Criteria {
	c.Conditions = append(append([]Condition(nil), c.Conditions...), Condition{Field: field, Op: op, Value: value})
	return c
}

// ReferenceLookup queries the reference dataset. An empty result is not an error.
type ReferenceLookup interface {
	Lookup(ctx context.Context, criteria Criteria) ([]models.ReferenceRecord, error)
}
