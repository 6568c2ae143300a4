package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcare/internal/matching/scorer"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 50, cfg.MaxCandidates)
	assert.Equal(t, 4, cfg.RescoreConcurrency)
	assert.Equal(t, DefaultReferenceCacheTTL, cfg.ReferenceCacheTTL)
	assert.Equal(t, scorer.DefaultConfig(), cfg.Scoring)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Redis.URL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MINDCARE_ADDR", ":9090")
	t.Setenv("REFERENCE_CACHE_TTL", "30s")
	t.Setenv("MATCHING_MAX_CANDIDATES", "10")
	t.Setenv("SCORING_WEIGHT_BASE", "0.45")
	t.Setenv("SCORING_WEIGHT_NAME", "0.2")
	t.Setenv("SCORING_HIGH_THRESHOLD", "0.95")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ReferenceCacheTTL)
	assert.Equal(t, 10, cfg.MaxCandidates)
	assert.InDelta(t, 0.45, cfg.Scoring.Weights.Base, 1e-9)
	assert.InDelta(t, 0.2, cfg.Scoring.Weights.Name, 1e-9)
	assert.InDelta(t, 0.95, cfg.Scoring.Recommendation.High, 1e-9)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	t.Run("unparseable number", func(t *testing.T) {
		t.Setenv("SCORING_WEIGHT_EMAIL", "lots")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SCORING_WEIGHT_EMAIL")
	})

	t.Run("weights above one", func(t *testing.T) {
		t.Setenv("SCORING_WEIGHT_BASE", "0.9")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid scoring configuration")
	})

	t.Run("medium above high", func(t *testing.T) {
		t.Setenv("SCORING_MEDIUM_THRESHOLD", "0.95")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("non-positive concurrency", func(t *testing.T) {
		t.Setenv("RESCORE_CONCURRENCY", "0")
		_, err := FromEnv()
		require.Error(t, err)
	})
}
