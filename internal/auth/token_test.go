package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staffing-service/internal/auth"
	"github.com/spec-kit/staffing-service/internal/domain"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 15*time.Minute)
	cred := &domain.Credential{ID: "cred-1", Role: domain.RoleCompany}
	sess := &domain.Session{ID: "sess-1", CredentialID: "cred-1"}

	token, expiresAt, err := tm.GenerateToken(cred, sess)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "cred-1", claims.Subject)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, domain.RoleCompany, claims.Role)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Minute)
	cred := &domain.Credential{ID: "cred-1", Role: domain.RolePerson}
	sess := &domain.Session{ID: "sess-1"}

	token, _, err := tm.GenerateToken(cred, sess)
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		_, err := auth.NewTokenManager("other", time.Minute).ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tm.ParseToken("not.a.token")
		assert.Error(t, err)
	})

	t.Run("missing session claim", func(t *testing.T) {
		bare, _, err := tm.GenerateToken(cred, &domain.Session{})
		require.NoError(t, err)
		_, err = tm.ParseToken(bare)
		assert.Error(t, err)
	})
}
