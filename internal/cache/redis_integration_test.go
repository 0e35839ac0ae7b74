//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/spec-kit/staffing-service/internal/domain"
)

func TestRedis_RoundTrip(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedis(client, time.Minute)
	in := &domain.Session{
		ID:             "s1",
		CredentialID:   "c1",
		Payload:        "12345678901",
		LastActivityAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err = c.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, in))
	got, err := c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, in.Payload, got.Payload)
	assert.True(t, in.LastActivityAt.Equal(got.LastActivityAt))

	ttl, err := client.TTL(ctx, "session:s1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Delete(ctx, "s1"))
	_, err = c.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrMiss)
}
