package models

import (
	"time"

	matching "mindcare/internal/matching/models"
	id "mindcare/pkg/domain"
)

// ReviewQueue routes an application in the admin queue.
type ReviewQueue string

const (
	QueuePriority ReviewQueue = "priority"
	QueueFlagged  ReviewQueue = "flagged"
	QueueManual   ReviewQueue = "manual"
)

// QueueFor maps the gate band to a queue. The confidence never approves on
// its own; the best it can do is put an application at the front.
func QueueFor(gate matching.Band) ReviewQueue {
	switch gate {
	case matching.BandHigh:
		return QueuePriority
	case matching.BandMedium:
		return QueueFlagged
	default:
		return QueueManual
	}
}

// Assessment is the persisted projection of a confidence result. It is shown
// to admins only.
type Assessment struct {
	Score              float64             `json:"score"`
	Band               matching.Band       `json:"band"`
	Gate               matching.Band       `json:"gate"`
	Level              matching.Level      `json:"level"`
	LevelLabel         string              `json:"level_label"`
	Outcome            matching.Outcome    `json:"outcome"`
	Queue              ReviewQueue         `json:"queue"`
	Explanation        string              `json:"explanation"`
	SearchedKey        string              `json:"searched_key,omitempty"`
	MatchedReferenceID id.ReferenceID      `json:"matched_reference_id"`
	MatchedName        string              `json:"matched_name,omitempty"`
	Components         AssessmentBreakdown `json:"components"`
	ScoredAt           time.Time           `json:"scored_at"`
}

// AssessmentBreakdown holds the weighted contributions.
type AssessmentBreakdown struct {
	Base           float64 `json:"base"`
	Name           float64 `json:"name"`
	Email          float64 `json:"email"`
	Specialization float64 `json:"specialization"`
}

// HasMatch reports whether a reference entry was matched.
func (a Assessment) HasMatch() bool {
	return !a.MatchedReferenceID.IsNil()
}

func AssessmentFrom(r matching.ConfidenceResult) Assessment {
	a := Assessment{
		Score:       r.Score,
		Band:        r.Band,
		Gate:        r.Gate,
		Level:       r.Level,
		LevelLabel:  r.Level.Label(),
		Outcome:     r.Outcome,
		Queue:       QueueFor(r.Gate),
		Explanation: r.Explanation,
		SearchedKey: r.SearchedKey,
		Components: AssessmentBreakdown{
			Base:           r.Components.Base.Weighted,
			Name:           r.Components.Name.Weighted,
			Email:          r.Components.Email.Weighted,
			Specialization: r.Components.Specialization.Weighted,
		},
		ScoredAt: r.ScoredAt,
	}
	if r.BestMatch != nil {
		a.MatchedReferenceID = r.BestMatch.ID
		a.MatchedName = r.BestMatch.FullName
	}
	return a
}

// Statistics counts applications by status.
type Statistics map[Status]int

// Total sums all statuses.
func (s Statistics) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}
