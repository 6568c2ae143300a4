package ports

import (
	"strings"

	"mindcare/internal/matching/models"
)

// FieldValue returns the record's value for f.
func FieldValue(r models.ReferenceRecord, f Field) (string, bool) {
	switch f {
	case FieldEmail:
		return r.Email, true
	case FieldFullName:
		return r.FullName, true
	case FieldSpecialization:
		return r.Specialization, true
	case FieldRegistrationNumber:
		return r.RegistrationNumber, true
	case FieldDegreeTitle:
		return r.DegreeTitle, true
	case FieldDegreeInstitution:
		return r.DegreeInstitution, true
	default:
		return "", false
	}
}

// Matches evaluates a condition against a record in memory. Stores that
// cannot push a condition down use it as the reference semantics.
func (c Condition) Matches(r models.ReferenceRecord) bool {
	v, ok := FieldValue(r, c.Field)
	if !ok {
		return false
	}
	switch c.Op {
	case OpEquals:
		return v == c.Value
	case OpEqualsFold:
		return strings.EqualFold(v, c.Value)
	case OpContains:
		return c.Value != "" && strings.Contains(v, c.Value)
	case OpContainsFold:
		return c.Value != "" && strings.Contains(strings.ToLower(v), strings.ToLower(c.Value))
	default:
		return false
	}
}

// Matches reports whether r is of the criteria's type and satisfies every condition.
func (c Criteria) Matches(r models.ReferenceRecord) bool {
	if r.Type != c.Type {
		return false
	}
	for _, cond := range c.Conditions {
		if !cond.Matches(r) {
			return false
		}
	}
	return true
}

// Valid reports whether every condition names a known field and operator.
func (c Criteria) Valid() bool {
	if !c.Type.IsValid() || c.Limit < 0 {
		return false
	}
	for _, cond := range c.Conditions {
		if _, ok := FieldValue(models.ReferenceRecord{}, cond.Field); !ok {
			return false
		}
		switch cond.Op {
		case OpEquals, OpEqualsFold, OpContains, OpContainsFold:
		default:
			return false
		}
	}
	return true
}
