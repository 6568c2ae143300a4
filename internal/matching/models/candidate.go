package models

// Stage names the matcher step that produced a candidate.
type Stage string

const (
	StageRegistrationExact      Stage = "registration_exact"
	StageRegistrationNormalized Stage = "registration_normalized"
	StageRegistrationContains   Stage = "registration_contains"
	StageDegreeInstitutionExact Stage = "degree_institution_exact"
	StageDegreeContains         Stage = "degree_contains"
	StageDegreeEquivalent       Stage = "degree_equivalent"
)

// Signal records why a reference record became a candidate.
type Signal struct {
	Stage Stage
	Key   string
}

// MatchCandidate pairs a reference record with the signal that found it.
type MatchCandidate struct {
	Record ReferenceRecord
	Signal Signal
}

// Candidates is the matcher's output. Reason is set when the matcher
// short-circuited before querying (missing input).
type Candidates struct {
	Items       []MatchCandidate
	SearchedKey string
	Reason      string
}

// Empty reports whether no candidate was found.
func (c Candidates) Empty() bool { return len(c.Items) == 0 }
