package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"paddock/pkg/platform/circuit"
	"paddock/pkg/platform/sentinel"
)

type fakeRedis struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// =============================================================================
// Redis Cache Test Suite
// =============================================================================

type RedisCacheSuite struct {
	suite.Suite
	client  *fakeRedis
	breaker *circuit.Breaker
	cache   *Redis
	ctx     context.Context
	key     Key
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupTest() {
	s.ctx = context.Background()
	s.client = newFakeRedis()
	s.breaker = circuit.New("graph-cache", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(2))
	c, err := NewRedis(s.client, WithBreaker(s.breaker), WithRedisTTL(time.Minute))
	s.Require().NoError(err)
	s.cache = c
	s.key = Key{SnapshotID: uuid.New(), MinYear: 2000, MaxYear: 2020, Format: "client"}
}

func (s *RedisCacheSuite) TestHealthyRedis() {
	s.Run("miss", func() {
		_, err := s.cache.Get(s.ctx, s.key)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("set then get", func() {
		s.Require().NoError(s.cache.Set(s.ctx, s.key, []byte("doc")))
		doc, err := s.cache.Get(s.ctx, s.key)
		s.Require().NoError(err)
		s.Equal("doc", string(doc))
		s.Equal(time.Minute, s.client.ttls[s.key.String()])
	})
}

func (s *RedisCacheSuite) TestSingleFailureSurfacesError() {
	s.client.fail(errors.New("connection refused"))

	_, err := s.cache.Get(s.ctx, s.key)
	s.Error(err)
	s.NotErrorIs(err, sentinel.ErrNotFound)
	s.False(s.breaker.IsOpen())
}

func (s *RedisCacheSuite) TestOutageUsesFallback() {
	s.client.fail(errors.New("connection refused"))

	_ = s.cache.Set(s.ctx, s.key, []byte("first"))
	s.Require().NoError(s.cache.Set(s.ctx, s.key, []byte("during-outage")))
	s.True(s.breaker.IsOpen())

	doc, err := s.cache.Get(s.ctx, s.key)
	s.Require().NoError(err)
	s.Equal("during-outage", string(doc), "served from fallback")

	s.Run("recovers after consecutive successes", func() {
		s.client.fail(nil)

		doc, err := s.cache.Get(s.ctx, s.key)
		s.Require().NoError(err)
		s.Equal("during-outage", string(doc), "still open, fallback serves")

		_, err = s.cache.Get(s.ctx, s.key)
		s.ErrorIs(err, sentinel.ErrNotFound, "closed again, redis has no entry")
		s.False(s.breaker.IsOpen())
	})
}

func (s *RedisCacheSuite) TestNilClient() {
	_, err := NewRedis(nil)
	s.Error(err)
}
