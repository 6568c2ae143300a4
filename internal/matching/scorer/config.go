package scorer

import (
	"errors"
	"fmt"

	"mindcare/internal/matching/models"
)

// Weights are the fixed contributions of each sub-score. They must be
// non-negative and sum to at most 1.
type Weights struct {
	Base           float64
	Name           float64
	Email          float64
	Specialization float64
}

// DefaultWeights is the canonical weighting.
var DefaultWeights = Weights{Base: 0.40, Name: 0.25, Email: 0.20, Specialization: 0.15}

// sumTolerance absorbs float error when weights are parsed from text.
const sumTolerance = 1e-9

func (w Weights) Sum() float64 {
	return w.Base + w.Name + w.Email + w.Specialization
}

func (w Weights) Validate() error {
	if w.Base < 0 || w.Name < 0 || w.Email < 0 || w.Specialization < 0 {
		return errors.New("scoring weights must be non-negative")
	}
	if w.Sum() > 1+sumTolerance {
		return fmt.Errorf("scoring weights sum to %.4f, must not exceed 1", w.Sum())
	}
	return nil
}

// BandPolicy maps a score to a band using inclusive lower bounds. A score of
// zero or less is always NO_MATCH.
type BandPolicy struct {
	High   float64
	Medium float64
}

// RecommendationPolicy is the admin-facing recommendation.
var RecommendationPolicy = BandPolicy{High: 0.90, Medium: 0.70}

// GatePolicy decides whether an application is flagged for priority review
// or left fully manual.
var GatePolicy = BandPolicy{High: 0.85, Medium: 0.70}

func (p BandPolicy) Band(score float64) models.Band {
	switch {
	case score <= 0:
		return models.BandNoMatch
	case score >= p.High:
		return models.BandHigh
	case score >= p.Medium:
		return models.BandMedium
	default:
		return models.BandLow
	}
}

func (p BandPolicy) Validate() error {
	if p.Medium <= 0 || p.High > 1 || p.Medium > p.High {
		return fmt.Errorf("band thresholds must satisfy 0 < medium (%.2f) <= high (%.2f) <= 1", p.Medium, p.High)
	}
	return nil
}

// LevelPolicy is the coarse display banding shown in the admin queue.
type LevelPolicy struct {
	Excellent float64
	Good      float64
	Fair      float64
	Poor      float64
}

// DisplayPolicy is the default display banding.
var DisplayPolicy = LevelPolicy{Excellent: 0.90, Good: 0.75, Fair: 0.50, Poor: 0.25}

func (p LevelPolicy) Level(score float64) models.Level {
	switch {
	case score <= 0:
		return models.LevelNoMatch
	case score >= p.Excellent:
		return models.LevelExcellent
	case score >= p.Good:
		return models.LevelGood
	case score >= p.Fair:
		return models.LevelFair
	case score >= p.Poor:
		return models.LevelPoor
	default:
		return models.LevelNoMatch
	}
}

func (p LevelPolicy) Validate() error {
	if !(0 < p.Poor && p.Poor <= p.Fair && p.Fair <= p.Good && p.Good <= p.Excellent && p.Excellent <= 1) {
		return errors.New("display thresholds must be ascending within (0, 1]")
	}
	return nil
}

// Config holds every tunable of the scorer.
type Config struct {
	Weights        Weights
	Recommendation BandPolicy
	Gate           BandPolicy
	Display        LevelPolicy
}

func DefaultConfig() Config {
	return Config{
		Weights:        DefaultWeights,
		Recommendation: RecommendationPolicy,
		Gate:           GatePolicy,
		Display:        DisplayPolicy,
	}
}

func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if err := c.Recommendation.Validate(); err != nil {
		return fmt.Errorf("recommendation policy: %w", err)
	}
	if err := c.Gate.Validate(); err != nil {
		return fmt.Errorf("gate policy: %w", err)
	}
	return c.Display.Validate()
}
