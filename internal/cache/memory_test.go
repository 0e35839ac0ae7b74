package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staffing-service/internal/domain"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute, 10)

	_, err := c.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrMiss)

	in := &domain.Session{ID: "s1", CredentialID: "c1", Payload: "12345678901"}
	require.NoError(t, c.Set(ctx, in))

	got, err := c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, in, got)

	require.NoError(t, c.Delete(ctx, "s1"))
	_, err = c.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemory(time.Minute, 10)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, &domain.Session{ID: "s1"}))
	now = now.Add(2 * time.Minute)

	_, err := c.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 0, c.Len())
}

func TestMemory_Bounded(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute, 2)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, &domain.Session{ID: id}))
	}
	assert.Equal(t, 2, c.Len())

	_, err := c.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c SessionCache = Noop{}

	require.NoError(t, c.Set(ctx, &domain.Session{ID: "s1"}))
	_, err := c.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, c.Delete(ctx, "s1"))
}
