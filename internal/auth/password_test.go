package auth_test

import (
	"strings"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staffing-service/internal/auth"
)

func TestArgon2idHasher(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	t.Run("produces PHC digest", func(t *testing.T) {
		digest, err := hasher.Hash("Str0ng!Pass")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=65536,t=1,p=4$"))
	})

	t.Run("salts every digest", func(t *testing.T) {
		d1, err := hasher.Hash("Str0ng!Pass")
		require.NoError(t, err)
		d2, err := hasher.Hash("Str0ng!Pass")
		require.NoError(t, err)
		assert.NotEqual(t, d1, d2)
	})

	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.ErrorIs(t, err, auth.ErrEmptySecret)
	})

	t.Run("verifies matching secret", func(t *testing.T) {
		digest, err := hasher.Hash("Str0ng!Pass")
		require.NoError(t, err)

		ok, err := hasher.Verify("Str0ng!Pass", digest)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects wrong secret without error", func(t *testing.T) {
		digest, err := hasher.Hash("Str0ng!Pass")
		require.NoError(t, err)

		ok, err := hasher.Verify("Wr0ng!Pass", digest)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	malformed := []struct {
		name   string
		digest string
	}{
		{"not PHC", "not-a-digest"},
		{"wrong algorithm", "$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"bad version", "$argon2id$vXX$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"bad params", "$argon2id$v=19$garbage$c2FsdA$aGFzaA"},
		{"threads overflow", "$argon2id$v=19$m=65536,t=1,p=300$c2FsdA$aGFzaA"},
		{"bad salt", "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"},
		{"empty key", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$"},
		{"zero iterations", "$argon2id$v=19$m=65536,t=0,p=4$c2FsdA$aGFzaA"},
		{"zero threads", "$argon2id$v=19$m=65536,t=1,p=0$c2FsdA$aGFzaA"},
	}
	for _, tt := range malformed {
		t.Run("malformed "+tt.name, func(t *testing.T) {
			var (
				ok  bool
				err error
			)
			require.NotPanics(t, func() { ok, err = hasher.Verify("secret", tt.digest) })
			require.Error(t, err)
			assert.False(t, ok)
			oopsErr, isOops := oops.AsOops(err)
			require.True(t, isOops)
			assert.Equal(t, "AUTH_INVALID_DIGEST", oopsErr.Code())
		})
	}

	t.Run("flags non-argon digests for upgrade", func(t *testing.T) {
		assert.True(t, hasher.NeedsUpgrade("$2a$12$abcdefghijklmnopqrstuu"))
		assert.False(t, hasher.NeedsUpgrade("$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"))
	})
}

func TestBcryptHasher(t *testing.T) {
	hasher := auth.NewBcryptHasher(4)

	digest, err := hasher.Hash("Str0ng!Pass")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$2a$04$"))

	ok, err := hasher.Verify("Str0ng!Pass", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("other", digest)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = hasher.Verify("Str0ng!Pass", "garbage")
	assert.Error(t, err)

	assert.False(t, hasher.NeedsUpgrade(digest))
	assert.True(t, auth.NewBcryptHasher(5).NeedsUpgrade(digest))

	_, err = hasher.Hash("")
	assert.ErrorIs(t, err, auth.ErrEmptySecret)
}

func TestNewHasher(t *testing.T) {
	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := auth.NewHasher("md5", 4)
		assert.Error(t, err)
	})

	t.Run("argon2id primary verifies legacy bcrypt digests", func(t *testing.T) {
		legacy, err := auth.NewBcryptHasher(4).Hash("Str0ng!Pass")
		require.NoError(t, err)

		h, err := auth.NewHasher("argon2id", 4)
		require.NoError(t, err)

		ok, err := h.Verify("Str0ng!Pass", legacy)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, h.NeedsUpgrade(legacy))

		fresh, err := h.Hash("Str0ng!Pass")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(fresh, "$argon2id$"))
		assert.False(t, h.NeedsUpgrade(fresh))
	})

	t.Run("bcrypt primary", func(t *testing.T) {
		h, err := auth.NewHasher("BCRYPT", 4)
		require.NoError(t, err)

		digest, err := h.Hash("Str0ng!Pass")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(digest, "$2a$"))

		ok, err := h.Verify("Str0ng!Pass", digest)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
