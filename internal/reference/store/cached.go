package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/matching/ports"
	"mindcare/internal/reference/metrics"
	"mindcare/internal/reference/models"
	id "mindcare/pkg/domain"
	"mindcare/pkg/platform/circuit"
)

const (
	cacheKeyPrefix     = "refcache:"
	generationKey      = "refcache:gen"
	DefaultCacheTTL    = 5 * time.Minute
	cacheFailureReason = "reference cache unavailable"
)

// Cached is a read-through Redis cache in front of another Store. Only
// Lookup is cached. Every successful mutation bumps a generation counter
// that is part of the cache key, so stale entries are never read and simply
// expire. Redis errors are logged and the wrapped store is used directly;
// repeated errors open a breaker that bypasses Redis for a cooldown.
type Cached struct {
	inner   Store
	client  redis.Cmdable
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	breaker *circuit.Breaker
}

type CachedOption func(*Cached)

func WithCacheTTL(ttl time.Duration) CachedOption {
	return func(c *Cached) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithCacheLogger(logger *slog.Logger) CachedOption {
	return func(c *Cached) {
		c.logger = logger
	}
}

func WithCacheMetrics(m *metrics.Metrics) CachedOption {
	return func(c *Cached) {
		c.metrics = m
	}
}

func WithCacheBreaker(b *circuit.Breaker) CachedOption {
	return func(c *Cached) {
		if b != nil {
			c.breaker = b
		}
	}
}

// NewCached wraps inner with a Redis lookup cache.
func NewCached(inner Store, client redis.Cmdable, opts ...CachedOption) (*Cached, error) {
	if inner == nil {
		return nil, errors.New("reference store is required")
	}
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	c := &Cached{
		inner:   inner,
		client:  client,
		ttl:     DefaultCacheTTL,
		logger:  slog.New(slog.DiscardHandler),
		breaker: circuit.New("reference-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Cached) Lookup(ctx context.Context, criteria ports.Criteria) ([]matching.ReferenceRecord, error) {
	if !c.breaker.Allow() {
		return c.inner.Lookup(ctx, criteria)
	}
	key, err := c.cacheKey(ctx, criteria)
	if err != nil {
		c.recordFailure(ctx, err)
		return c.inner.Lookup(ctx, criteria)
	}

	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil || errors.Is(err, redis.Nil) {
		c.recordSuccess(ctx)
	}
	switch {
	case err == nil:
		var records []matching.ReferenceRecord
		jsonErr := json.Unmarshal(cached, &records)
		if jsonErr == nil {
			c.metrics.IncCacheHit()
			return records, nil
		}
		c.logger.WarnContext(ctx, "discarding unreadable cache entry", "key", key, "error", jsonErr)
	case errors.Is(err, redis.Nil):
	default:
		c.recordFailure(ctx, err)
		return c.inner.Lookup(ctx, criteria)
	}

	c.metrics.IncCacheMiss()
	records, err := c.inner.Lookup(ctx, criteria)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return records, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "failed to populate reference cache", "error", err)
	}
	return records, nil
}

func (c *Cached) recordFailure(ctx context.Context, err error) {
	c.logger.WarnContext(ctx, cacheFailureReason, "error", err)
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.ErrorContext(ctx, "reference cache breaker opened, reading through to store")
	}
}

func (c *Cached) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "reference cache breaker closed")
	}
}

// cacheKey is refcache:<generation>:<sha256 of the criteria>.
func (c *Cached) cacheKey(ctx context.Context, criteria ports.Criteria) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("read cache generation: %w", err)
	}
	body, err := json.Marshal(criteria)
	if err != nil {
		return "", fmt.Errorf("encode criteria: %w", err)
	}
	sum := sha256.Sum256(body)
	return fmt.Sprintf("%s%d:%s", cacheKeyPrefix, gen, hex.EncodeToString(sum[:])), nil
}

// invalidate bumps the generation. Failure leaves stale entries readable
// until their TTL passes, so it is logged loudly.
func (c *Cached) invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.logger.ErrorContext(ctx, "failed to invalidate reference cache", "error", err)
	}
}

func (c *Cached) Add(ctx context.Context, record *models.Record) error {
	if err := c.inner.Add(ctx, record); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *Cached) Remove(ctx context.Context, referenceID id.ReferenceID) error {
	if err := c.inner.Remove(ctx, referenceID); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *Cached) FindByID(ctx context.Context, referenceID id.ReferenceID) (*models.Record, error) {
	return c.inner.FindByID(ctx, referenceID)
}

func (c *Cached) FindByKey(ctx context.Context, key matching.Key) (*models.Record, error) {
	return c.inner.FindByKey(ctx, key)
}

func (c *Cached) List(ctx context.Context) ([]models.Record, error) {
	return c.inner.List(ctx)
}

func (c *Cached) Search(ctx context.Context, filter models.SearchFilter) ([]models.Record, error) {
	return c.inner.Search(ctx, filter)
}

func (c *Cached) Count(ctx context.Context) (int, error) {
	return c.inner.Count(ctx)
}
