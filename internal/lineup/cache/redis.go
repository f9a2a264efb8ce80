package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"paddock/pkg/platform/circuit"
	"paddock/pkg/platform/sentinel"
)

// DefaultRedisTTL bounds how long an encoded document stays in Redis.
const DefaultRedisTTL = 10 * time.Minute

// redisClient is the subset of go-redis used by the cache.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Redis stores documents in Redis. While the breaker is open, reads and
// writes go to the in-process fallback instead.
type Redis struct {
	client   redisClient
	fallback *Memory
	breaker  *circuit.Breaker
	ttl      time.Duration
	logger   *slog.Logger
}

type RedisOption func(*Redis)

func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithBreaker(b *circuit.Breaker) RedisOption {
	return func(r *Redis) {
		if b != nil {
			r.breaker = b
		}
	}
}

func WithLogger(logger *slog.Logger) RedisOption {
	return func(r *Redis) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRedis(client redisClient, opts ...RedisOption) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	r := &Redis{
		client:   client,
		fallback: NewMemory(),
		breaker:  circuit.New("graph-cache"),
		ttl:      DefaultRedisTTL,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

var _ Cache = (*Redis)(nil)

func (r *Redis) Get(ctx context.Context, key Key) ([]byte, error) {
	doc, err := r.client.Get(ctx, key.String()).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		if !r.success(ctx) {
			return r.fallback.Get(ctx, key)
		}
		return nil, sentinel.ErrNotFound
	case err != nil:
		if r.failure(ctx, err) {
			return r.fallback.Get(ctx, key)
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	if !r.success(ctx) {
		return r.fallback.Get(ctx, key)
	}
	return doc, nil
}

func (r *Redis) Set(ctx context.Context, key Key, doc []byte) error {
	if err := r.client.Set(ctx, key.String(), doc, r.ttl).Err(); err != nil {
		if r.failure(ctx, err) {
			return r.fallback.Set(ctx, key, doc)
		}
		return fmt.Errorf("redis set: %w", err)
	}
	if !r.success(ctx) {
		return r.fallback.Set(ctx, key, doc)
	}
	return nil
}

// failure reports whether the fallback should serve the call.
func (r *Redis) failure(ctx context.Context, err error) bool {
	useFallback, change := r.breaker.RecordFailure()
	if change.Opened {
		r.logger.WarnContext(ctx, "graph cache circuit opened, using in-process fallback",
			"breaker", r.breaker.Name(),
			"error", err,
		)
	}
	return useFallback
}

// success reports whether Redis should serve the call.
func (r *Redis) success(ctx context.Context) bool {
	usePrimary, change := r.breaker.RecordSuccess()
	if change.Closed {
		r.logger.InfoContext(ctx, "graph cache circuit closed, using redis", "breaker", r.breaker.Name())
	}
	return usePrimary
}
