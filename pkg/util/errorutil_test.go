package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	wrapped := fmt.Errorf("handler: %w", NewDuplicateIdentifier())
	got := ToDomainError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, KindConflict, got.Kind)
	assert.Equal(t, CodeDuplicateIdentifier, got.Code)

	cause := errors.New("boom")
	internal := ToDomainError(cause)
	assert.Equal(t, KindInternal, internal.Kind)
	assert.ErrorIs(t, internal, cause)
}

func TestDependencyFailureIsRetryable(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDependencyFailure("mail", cause)

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.True(t, de.Retryable())
	assert.Equal(t, "mail unavailable: connection refused", de.Error())
	assert.ErrorIs(t, err, cause)

	assert.False(t, ToDomainError(NewAuthFailure()).Retryable())
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(fmt.Errorf("x: %w", NewInvalidToken()), CodeInvalidToken))
	assert.False(t, IsCode(NewInvalidToken(), CodeAuthFailure))
	assert.False(t, IsCode(errors.New("plain"), CodeInvalidToken))
}

func TestNotFoundAlwaysHasDetails(t *testing.T) {
	de := ToDomainError(NewNotFound("appointment", nil))
	assert.NotNil(t, de.Details)
	assert.Equal(t, "appointment not found", de.Message)
}
