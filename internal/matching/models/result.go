package models

import "time"

// Band is a coarse recommendation bucket.
type Band string

const (
	BandHigh    Band = "HIGH"
	BandMedium  Band = "MEDIUM"
	BandLow     Band = "LOW"
	BandNoMatch Band = "NO_MATCH"
)

// Level is the admin-facing display level.
type Level string

const (
	LevelExcellent Level = "EXCELLENT"
	LevelGood      Level = "GOOD"
	LevelFair      Level = "FAIR"
	LevelPoor      Level = "POOR"
	LevelNoMatch   Level = "NO_MATCH"
)

// Label is the display text shown next to a level in the admin queue.
func (l Level) Label() string {
	switch l {
	case LevelExcellent:
		return "Excellent match - recommend approval"
	case LevelGood:
		return "Good match - verify details"
	case LevelFair:
		return "Fair match - manual review required"
	case LevelPoor:
		return "Poor match - careful review required"
	default:
		return "No match - manual verification required"
	}
}

// Outcome says how a result was reached.
type Outcome string

const (
	OutcomeScored           Outcome = "scored"
	OutcomeInsufficientData Outcome = "insufficient_data"
	OutcomeNoMatch          Outcome = "no_match"
	OutcomeProcessingFailed Outcome = "processing_failed"
	OutcomeUnsupportedType  Outcome = "unsupported_type"
)

// Component is one weighted sub-score.
type Component struct {
	Similarity float64
	Weighted   float64
}

// Components are the four sub-scores behind a composite score.
type Components struct {
	Base           Component
	Name           Component
	Email          Component
	Specialization Component
}

// Total is the unclamped sum of the weighted contributions.
func (c Components) Total() float64 {
	return c.Base.Weighted + c.Name.Weighted + c.Email.Weighted + c.Specialization.Weighted
}

// ConfidenceResult is the engine's advisory output for one application.
type ConfidenceResult struct {
	Score       float64
	Band        Band
	Gate        Band
	Level       Level
	BestMatch   *ReferenceRecord
	Components  Components
	Explanation string
	Outcome     Outcome
	SearchedKey string
	ScoredAt    time.Time
}

// HasMatch reports whether a best match was selected.
func (r ConfidenceResult) HasMatch() bool { return r.BestMatch != nil }
