// Package orchestrator is the entry point of the confidence engine. It runs
// the matcher and scorer for one application and always returns a result:
// lookup failures and panics are downgraded to a processing_failed result so
// submission is never blocked by scoring.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mindcare/internal/matching/metrics"
	"mindcare/internal/matching/models"
	"mindcare/internal/matching/scorer"
)

// FailedExplanation is shown to admins when scoring could not run.
const FailedExplanation = "AI processing failed - manual review required"

const tracerName = "mindcare/matching"

// Lifecycle stages of one scoring run, logged at debug.
const (
	stageSubmitted = "SUBMITTED"
	stageMatching  = "MATCHING"
	stageScored    = "SCORED"
)

// CandidateFinder retrieves reference candidates for an applicant.
type CandidateFinder interface {
	Find(ctx context.Context, applicant models.ApplicantCredential) (models.Candidates, error)
}

// Orchestrator ties matcher and scorer together.
type Orchestrator struct {
	finder  CandidateFinder
	scorer  *scorer.Scorer
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithClock overrides the clock used for ScoredAt.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

// New constructs an Orchestrator.
func New(finder CandidateFinder, sc *scorer.Scorer, opts ...Option) (*Orchestrator, error) {
	if finder == nil {
		return nil, errors.New("candidate finder is required")
	}
	if sc == nil {
		return nil, errors.New("scorer is required")
	}
	o := &Orchestrator{
		finder: finder,
		scorer: sc,
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Score computes the confidence result for one applicant. It never fails.
func (o *Orchestrator) Score(ctx context.Context, applicant models.ApplicantCredential) (result models.ConfidenceResult) {
	ctx, span := o.tracer.Start(ctx, "matching.Score",
		trace.WithAttributes(attribute.String("credential.type", applicant.Type.String())))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			result = o.failed(ctx, span, fmt.Errorf("panic during scoring: %v", r), "")
		}
		span.SetAttributes(
			attribute.String("confidence.band", string(result.Band)),
			attribute.String("confidence.outcome", string(result.Outcome)),
			attribute.Float64("confidence.score", result.Score),
		)
		o.metrics.ObserveResult(string(result.Band), string(result.Outcome), result.Score)
	}()

	o.logger.DebugContext(ctx, "confidence lifecycle", "stage", stageSubmitted, "credential_type", applicant.Type)

	if !applicant.Type.IsValid() {
		result = o.scorer.Empty(models.OutcomeUnsupportedType,
			fmt.Sprintf("credential type not recognized: %q", applicant.Type), "")
		result.ScoredAt = o.now()
		return result
	}

	o.logger.DebugContext(ctx, "confidence lifecycle", "stage", stageMatching, "credential_type", applicant.Type)
	candidates, err := o.finder.Find(ctx, applicant)
	if err != nil {
		return o.failed(ctx, span, err, candidates.SearchedKey)
	}

	result = o.scorer.Score(applicant, candidates)
	result.ScoredAt = o.now()

	o.logger.DebugContext(ctx, "confidence lifecycle",
		"stage", stageScored,
		"credential_type", applicant.Type,
		"candidates", len(candidates.Items),
		"score", result.Score,
		"band", result.Band,
		"outcome", result.Outcome,
	)
	return result
}

func (o *Orchestrator) failed(ctx context.Context, span trace.Span, err error, searchedKey string) models.ConfidenceResult {
	o.logger.ErrorContext(ctx, "confidence scoring failed, routing to manual review", "error", err)
	o.metrics.IncFailure()
	span.RecordError(err)
	span.SetStatus(codes.Error, "scoring failed")

	result := o.scorer.Empty(models.OutcomeProcessingFailed, FailedExplanation, searchedKey)
	result.ScoredAt = o.now()
	return result
}
