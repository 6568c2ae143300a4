// Package scorer turns matcher candidates into a single advisory confidence
// result. Scoring is a pure function of the applicant and the candidate
// records: the same pair always yields the same score.
package scorer

import (
	"fmt"
	"strings"

	"mindcare/internal/matching/models"
	"mindcare/internal/matching/normalize"
	"mindcare/internal/matching/similarity"
)

// Scorer computes weighted composite scores.
type Scorer struct {
	cfg Config
}

// New validates cfg and returns a Scorer.
func New(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Config returns the scorer's configuration.
func (s *Scorer) Config() Config { return s.cfg }

// Components computes the weighted sub-scores of one candidate.
func (s *Scorer) Components(applicant models.ApplicantCredential, candidate models.MatchCandidate) models.Components {
	w := s.cfg.Weights
	record := candidate.Record
	base := baseSimilarity(applicant, candidate)
	name := similarity.EditSimilarity(normalize.Name(applicant.FullName), normalize.Name(record.FullName))
	email := similarity.EmailSimilarity(applicant.Email, record.Email)
	spec := similarity.TokenOverlapRatio(normalize.Text(applicant.Specialization), normalize.Text(record.Specialization))

	return models.Components{
		Base:           models.Component{Similarity: base, Weighted: w.Base * base},
		Name:           models.Component{Similarity: name, Weighted: w.Name * name},
		Email:          models.Component{Similarity: email, Weighted: w.Email * email},
		Specialization: models.Component{Similarity: spec, Weighted: w.Specialization * spec},
	}
}

// baseSimilarity is 1 for any candidate found by a primary stage: every
// psychiatrist stage is a registration hit, and the exact degree and
// institution stage is the psychologist one. Candidates from the broad
// degree stages get degree and institution re-checked.
func baseSimilarity(applicant models.ApplicantCredential, candidate models.MatchCandidate) float64 {
	if applicant.Type != models.CredentialPsychologist {
		return 1
	}
	if candidate.Signal.Stage == models.StageDegreeInstitutionExact {
		return 1
	}
	record := candidate.Record
	degree := similarity.DegreesMatch(applicant.DegreeTitle, record.DegreeTitle)
	institution := similarity.InstitutionsMatch(applicant.DegreeInstitution, record.DegreeInstitution)
	switch {
	case degree && institution:
		return 1
	case degree || institution:
		return 0.5
	default:
		return 0
	}
}

// Score selects the best candidate and builds the result. Ties keep the
// candidate the matcher returned first. The result has no ScoredAt; the
// orchestrator stamps it.
func (s *Scorer) Score(applicant models.ApplicantCredential, candidates models.Candidates) models.ConfidenceResult {
	if candidates.Reason != "" {
		return s.Empty(models.OutcomeInsufficientData, candidates.Reason, candidates.SearchedKey)
	}
	if candidates.Empty() {
		return s.Empty(models.OutcomeNoMatch,
			fmt.Sprintf("no reference entry found for %s key %q", strings.ToLower(applicant.Type.String()), candidates.SearchedKey),
			candidates.SearchedKey)
	}

	bestIdx := -1
	var best models.Components
	bestScore := 0.0
	for i, c := range candidates.Items {
		comps := s.Components(applicant, c)
		score := clamp(comps.Total())
		if bestIdx < 0 || score > bestScore {
			bestIdx, best, bestScore = i, comps, score
		}
	}

	winner := candidates.Items[bestIdx]
	record := winner.Record
	return models.ConfidenceResult{
		Score:       bestScore,
		Band:        s.cfg.Recommendation.Band(bestScore),
		Gate:        s.cfg.Gate.Band(bestScore),
		Level:       s.cfg.Display.Level(bestScore),
		BestMatch:   &record,
		Components:  best,
		Explanation: explain(applicant, winner, best),
		Outcome:     models.OutcomeScored,
		SearchedKey: candidates.SearchedKey,
	}
}

// Empty builds a zero-score result with the given outcome.
func (s *Scorer) Empty(outcome models.Outcome, explanation, searchedKey string) models.ConfidenceResult {
	return models.ConfidenceResult{
		Score:       0,
		Band:        models.BandNoMatch,
		Gate:        models.BandNoMatch,
		Level:       models.LevelNoMatch,
		Explanation: explanation,
		Outcome:     outcome,
		SearchedKey: searchedKey,
	}
}

func explain(applicant models.ApplicantCredential, winner models.MatchCandidate, c models.Components) string {
	var parts []string
	if c.Base.Weighted > 0 {
		parts = append(parts, fmt.Sprintf("%s %.2f", baseLabel(applicant.Type, c.Base.Similarity), c.Base.Weighted))
	}
	if c.Name.Weighted > 0 {
		parts = append(parts, fmt.Sprintf("name %.2f (similarity %.2f)", c.Name.Weighted, c.Name.Similarity))
	}
	if c.Email.Weighted > 0 {
		parts = append(parts, fmt.Sprintf("email %.2f (similarity %.2f)", c.Email.Weighted, c.Email.Similarity))
	}
	if c.Specialization.Weighted > 0 {
		parts = append(parts, fmt.Sprintf("specialization %.2f (overlap %.2f)", c.Specialization.Weighted, c.Specialization.Similarity))
	}
	contributions := "none"
	if len(parts) > 0 {
		contributions = strings.Join(parts, " + ")
	}
	return fmt.Sprintf("best match %s via %s %q: %s",
		winner.Record.FullName, winner.Signal.Stage, winner.Signal.Key, contributions)
}

func baseLabel(t models.CredentialType, sim float64) string {
	if t != models.CredentialPsychologist {
		return "registration match"
	}
	if sim >= 1 {
		return "degree and institution match"
	}
	return "partial degree/institution match"
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
