// Package matcher retrieves candidate reference records for an applicant,
// widening the search one stage at a time and stopping at the first stage
// that finds anything.
package matcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mindcare/internal/matching/metrics"
	"mindcare/internal/matching/models"
	"mindcare/internal/matching/normalize"
	"mindcare/internal/matching/ports"
	"mindcare/internal/matching/similarity"
)

const (
	// DefaultMaxCandidates bounds each lookup.
	DefaultMaxCandidates = 50

	// MinContainmentDigits is the shortest digit run the containment stage
	// will search for.
	MinContainmentDigits = 4
)

// Matcher runs the credential-type-specific candidate pipelines.
type Matcher struct {
	lookup        ports.ReferenceLookup
	maxCandidates int
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

type Option func(*Matcher)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		m.logger = logger
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Matcher) {
		m.metrics = mt
	}
}

// WithMaxCandidates bounds the number of records each stage may return.
// Non-positive values keep the default.
func WithMaxCandidates(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxCandidates = n
		}
	}
}

// New constructs a Matcher over a reference lookup.
func New(lookup ports.ReferenceLookup, opts ...Option) (*Matcher, error) {
	if lookup == nil {
		return nil, fmt.Errorf("reference lookup is required")
	}
	m := &Matcher{
		lookup:        lookup,
		maxCandidates: DefaultMaxCandidates,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Find dispatches on the applicant's credential type. Missing input is not an
// error: the result is empty with Reason set. Lookup failures are returned.
func (m *Matcher) Find(ctx context.Context, applicant models.ApplicantCredential) (models.Candidates, error) {
	switch applicant.Type {
	case models.CredentialPsychiatrist:
		return m.findPsychiatrist(ctx, applicant)
	case models.CredentialPsychologist:
		return m.findPsychologist(ctx, applicant)
	default:
		return models.Candidates{}, fmt.Errorf("unsupported credential type %q", applicant.Type)
	}
}

func (m *Matcher) findPsychiatrist(ctx context.Context, applicant models.ApplicantCredential) (models.Candidates, error) {
	submitted := strings.TrimSpace(applicant.RegistrationNumber)
	if submitted == "" {
		return models.Candidates{Reason: "insufficient data: registration number missing"}, nil
	}

	canonical := normalize.Registration(submitted)
	digits := normalize.RegistrationDigits(submitted)
	searched := canonical
	if searched == "" {
		searched = submitted
	}

	base := ports.Criteria{Type: models.CredentialPsychiatrist, Limit: m.maxCandidates}

	stages := []struct {
		stage    models.Stage
		key      string
		criteria ports.Criteria
		skip     bool
	}{
		{
			stage:    models.StageRegistrationExact,
			key:      submitted,
			criteria: base.Where(ports.FieldRegistrationNumber, ports.OpEquals, submitted),
		},
		{
			stage:    models.StageRegistrationNormalized,
			key:      canonical,
			criteria: base.Where(ports.FieldRegistrationNumber, ports.OpEquals, canonical),
			skip:     canonical == "" || canonical == submitted,
		},
		{
			stage:    models.StageRegistrationContains,
			key:      digits,
			criteria: base.Where(ports.FieldRegistrationNumber, ports.OpContains, digits),
			skip:     len(digits) < MinContainmentDigits,
		},
	}

	for _, st := range stages {
		if st.skip {
			continue
		}
		records, err := m.run(ctx, st.stage, st.criteria)
		if err != nil {
			return models.Candidates{SearchedKey: searched}, err
		}
		if len(records) > 0 {
			return candidates(records, st.stage, st.key, searched), nil
		}
	}
	return models.Candidates{SearchedKey: searched}, nil
}

func (m *Matcher) findPsychologist(ctx context.Context, applicant models.ApplicantCredential) (models.Candidates, error) {
	degree := strings.TrimSpace(applicant.DegreeTitle)
	institution := strings.TrimSpace(applicant.DegreeInstitution)
	if reason := missingDegreeFields(degree, institution); reason != "" {
		return models.Candidates{Reason: reason}, nil
	}

	searched := normalize.Degree(degree) + " / " + normalize.Institution(institution)
	base := ports.Criteria{Type: models.CredentialPsychologist, Limit: m.maxCandidates}

	exact := base.
		Where(ports.FieldDegreeTitle, ports.OpEquals, degree).
		Where(ports.FieldDegreeInstitution, ports.OpEquals, institution)
	records, err := m.run(ctx, models.StageDegreeInstitutionExact, exact)
	if err != nil {
		return models.Candidates{SearchedKey: searched}, err
	}
	if len(records) > 0 {
		return candidates(records, models.StageDegreeInstitutionExact, degree+" / "+institution, searched), nil
	}

	records, err = m.run(ctx, models.StageDegreeContains, base.Where(ports.FieldDegreeTitle, ports.OpContainsFold, degree))
	if err != nil {
		return models.Candidates{SearchedKey: searched}, err
	}
	if len(records) > 0 {
		return candidates(records, models.StageDegreeContains, degree, searched), nil
	}

	// Abbreviated and spelled-out degrees ("PhD Psychology", "Doctor of
	// Psychology") never contain each other, so scan the type and filter.
	all, err := m.run(ctx, models.StageDegreeEquivalent, ports.Criteria{Type: models.CredentialPsychologist})
	if err != nil {
		return models.Candidates{SearchedKey: searched}, err
	}
	var equivalent []models.ReferenceRecord
	for _, r := range all {
		if similarity.DegreesMatch(degree, r.DegreeTitle) {
			equivalent = append(equivalent, r)
			if len(equivalent) == m.maxCandidates {
				break
			}
		}
	}
	if len(equivalent) > 0 {
		return candidates(equivalent, models.StageDegreeEquivalent, normalize.Degree(degree), searched), nil
	}
	return models.Candidates{SearchedKey: searched}, nil
}

func missingDegreeFields(degree, institution string) string {
	switch {
	case degree == "" && institution == "":
		return "insufficient data: degree title and institution missing"
	case degree == "":
		return "insufficient data: degree title missing"
	case institution == "":
		return "insufficient data: degree institution missing"
	default:
		return ""
	}
}

func (m *Matcher) run(ctx context.Context, stage models.Stage, criteria ports.Criteria) ([]models.ReferenceRecord, error) {
	start := time.Now()
	records, err := m.lookup.Lookup(ctx, criteria)
	m.metrics.ObserveLookup(string(stage), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("reference lookup (%s): %w", stage, err)
	}
	m.logger.DebugContext(ctx, "reference lookup",
		"stage", stage,
		"credential_type", criteria.Type,
		"results", len(records),
	)
	return records, nil
}

func candidates(records []models.ReferenceRecord, stage models.Stage, key, searched string) models.Candidates {
	items := make([]models.MatchCandidate, len(records))
	for i, r := range records {
		items[i] = models.MatchCandidate{Record: r, Signal: models.Signal{Stage: stage, Key: key}}
	}
	return models.Candidates{Items: items, SearchedKey: searched}
}
