//go:build integration

package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"paddock/internal/platform/config"
	"paddock/pkg/testutil/containers"
)

func TestNew_Container(t *testing.T) {
	rc := containers.NewRedisContainer(t)

	c, err := New(context.Background(), config.RedisConfig{URL: rc.URL, PoolSize: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Health(context.Background()))
}
