//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/matching/ports"
	"mindcare/internal/reference/metrics"
	"mindcare/internal/reference/models"
	"mindcare/internal/reference/store"
	id "mindcare/pkg/domain"
	"mindcare/pkg/testutil/containers"
)

type CachedStoreSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	inner   *store.InMemory
	cached  *store.Cached
	metrics *metrics.Metrics
}

func TestCachedStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedStoreSuite))
}

func (s *CachedStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *CachedStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.inner = store.NewInMemory()
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	cached, err := store.NewCached(s.inner, s.redis.Client, store.WithCacheMetrics(s.metrics))
	s.Require().NoError(err)
	s.cached = cached
}

func (s *CachedStoreSuite) byRegistration(reg string) ports.Criteria {
	return ports.Criteria{Type: matching.CredentialPsychiatrist}.
		Where(ports.FieldRegistrationNumber, ports.OpEquals, reg)
}

func (s *CachedStoreSuite) TestSecondLookupIsServedFromRedis() {
	ctx := context.Background()
	s.Require().NoError(s.cached.Add(ctx, &models.Record{
		ID: id.NewReferenceID(), Email: "a@example.com", Type: matching.CredentialPsychiatrist,
		Specialization: "General", RegistrationNumber: "BMDC-1",
	}))

	first, err := s.cached.Lookup(ctx, s.byRegistration("BMDC-1"))
	s.Require().NoError(err)
	second, err := s.cached.Lookup(ctx, s.byRegistration("BMDC-1"))
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheMisses))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheHits))
}

func (s *CachedStoreSuite) TestMutationInvalidatesCachedMisses() {
	ctx := context.Background()

	empty, err := s.cached.Lookup(ctx, s.byRegistration("BMDC-2"))
	s.Require().NoError(err)
	s.Empty(empty)

	rec := &models.Record{
		ID: id.NewReferenceID(), Email: "b@example.com", Type: matching.CredentialPsychiatrist,
		Specialization: "General", RegistrationNumber: "BMDC-2",
	}
	s.Require().NoError(s.cached.Add(ctx, rec))

	got, err := s.cached.Lookup(ctx, s.byRegistration("BMDC-2"))
	s.Require().NoError(err)
	s.Require().Len(got, 1)

	s.Require().NoError(s.cached.Remove(ctx, rec.ID))
	got, err = s.cached.Lookup(ctx, s.byRegistration("BMDC-2"))
	s.Require().NoError(err)
	s.Empty(got)
}
