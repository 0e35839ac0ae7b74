package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staffing-service/internal/auth"
)

func TestGenerateResetToken(t *testing.T) {
	token, hash, err := auth.GenerateResetToken()
	require.NoError(t, err)

	assert.Len(t, token, auth.ResetTokenBytes*2)
	assert.Len(t, hash, 64)
	assert.NotEqual(t, token, hash)
	assert.Equal(t, hash, auth.HashResetToken(token))

	other, _, err := auth.GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestVerifyResetToken(t *testing.T) {
	token, hash, err := auth.GenerateResetToken()
	require.NoError(t, err)

	assert.True(t, auth.VerifyResetToken(token, hash))
	assert.False(t, auth.VerifyResetToken(token+"0", hash))
	assert.False(t, auth.VerifyResetToken("", hash))
	assert.False(t, auth.VerifyResetToken(token, ""))
}
