package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"mindcare/internal/matching/scorer"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string

	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig

	// ReferenceCacheTTL bounds how long a cached reference lookup is served.
	ReferenceCacheTTL time.Duration
	// MaxCandidates caps the candidates returned by one matcher stage.
	MaxCandidates int
	// RescoreConcurrency bounds parallel rescoring of pending applications.
	RescoreConcurrency int

	Scoring scorer.Config
}

// DatabaseConfig selects Postgres. An empty URL keeps every store in memory.
type DatabaseConfig struct {
	URL string
}

// RedisConfig configures the reference lookup cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// DefaultReferenceCacheTTL applies when REFERENCE_CACHE_TTL is unset.
var DefaultReferenceCacheTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence over it.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	p := &envParser{}
	cfg := Server{
		Addr:          getEnv("MINDCARE_ADDR", ":8080"),
		JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     getEnv("JWT_ISSUER", "mindcare"),
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     p.int("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.int("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		ReferenceCacheTTL:  p.duration("REFERENCE_CACHE_TTL", DefaultReferenceCacheTTL),
		MaxCandidates:      p.int("MATCHING_MAX_CANDIDATES", 50),
		RescoreConcurrency: p.int("RESCORE_CONCURRENCY", 4),
	}

	sc := scorer.DefaultConfig()
	sc.Weights.Base = p.float("SCORING_WEIGHT_BASE", sc.Weights.Base)
	sc.Weights.Name = p.float("SCORING_WEIGHT_NAME", sc.Weights.Name)
	sc.Weights.Email = p.float("SCORING_WEIGHT_EMAIL", sc.Weights.Email)
	sc.Weights.Specialization = p.float("SCORING_WEIGHT_SPECIALIZATION", sc.Weights.Specialization)
	sc.Recommendation.High = p.float("SCORING_HIGH_THRESHOLD", sc.Recommendation.High)
	sc.Recommendation.Medium = p.float("SCORING_MEDIUM_THRESHOLD", sc.Recommendation.Medium)
	sc.Gate.High = p.float("SCORING_GATE_HIGH_THRESHOLD", sc.Gate.High)
	sc.Gate.Medium = p.float("SCORING_GATE_MEDIUM_THRESHOLD", sc.Gate.Medium)
	cfg.Scoring = sc

	if err := errors.Join(p.errs...); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (s Server) Validate() error {
	if s.Addr == "" {
		return errors.New("listen address is required")
	}
	if s.MaxCandidates <= 0 {
		return fmt.Errorf("MATCHING_MAX_CANDIDATES must be positive, got %d", s.MaxCandidates)
	}
	if s.RescoreConcurrency <= 0 {
		return fmt.Errorf("RESCORE_CONCURRENCY must be positive, got %d", s.RescoreConcurrency)
	}
	if s.ReferenceCacheTTL <= 0 {
		return fmt.Errorf("REFERENCE_CACHE_TTL must be positive, got %s", s.ReferenceCacheTTL)
	}
	if err := s.Scoring.Validate(); err != nil {
		return fmt.Errorf("invalid scoring configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envParser collects parse failures so every bad key is reported at once.
type envParser struct {
	errs []error
}

func (p *envParser) int(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return defaultValue
	}
	return v
}

func (p *envParser) float(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid number %q", key, raw))
		return defaultValue
	}
	return v
}

func (p *envParser) duration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return defaultValue
	}
	return v
}
