package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staffing-service/internal/service"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

func TestRedeemIsSingleUse(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	id := f.register(t, testIdentifier, testEmail)
	ctx := context.Background()

	token, err := f.resets.Issue(ctx, id)
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Equal(t, token, f.mailedToken(t, testEmail))

	_, err = f.resets.Redeem(ctx, token, "N3w!Secret")
	require.NoError(t, err)

	_, err = f.resets.Redeem(ctx, token, "N3w!Secret")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	_, err = f.credentials.Verify(ctx, testIdentifier, "N3w!Secret")
	assert.NoError(t, err)
}

func TestSecondIssueInvalidatesFirst(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	id := f.register(t, testIdentifier, testEmail)
	ctx := context.Background()

	first, err := f.resets.Issue(ctx, id)
	require.NoError(t, err)
	second, err := f.resets.Issue(ctx, id)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = f.resets.Redeem(ctx, first, "N3w!Secret")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	_, err = f.resets.Redeem(ctx, second, "N3w!Secret")
	assert.NoError(t, err)
}

func TestIssueWithoutContactIsUnknownIdentity(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	id := f.register(t, testIdentifier, "")

	_, err := f.resets.Issue(context.Background(), id)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnknownIdentity))
	assert.Empty(t, f.outbox.Sent())
}

func TestIssueDeliveryFailureIsRetryable(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	id := f.register(t, testIdentifier, testEmail)
	f.outbox.Err = errors.New("smtp down")

	_, err := f.resets.Issue(context.Background(), id)
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeDependencyFailure, de.Code)
	assert.True(t, de.Retryable())
	assert.ErrorIs(t, err, service.ErrDeliveryFailed)
}

func TestRedeemWeakSecretKeepsToken(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	id := f.register(t, testIdentifier, testEmail)
	ctx := context.Background()

	token, err := f.resets.Issue(ctx, id)
	require.NoError(t, err)

	_, err = f.resets.Redeem(ctx, token, "weak")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeWeakSecret))

	_, err = f.resets.Redeem(ctx, token, "N3w!Secret")
	assert.NoError(t, err)
}

func TestRedeemExpiredToken(t *testing.T) {
	f := newFixture(t, fixtureOptions{resetTTL: 15 * time.Minute})
	id := f.register(t, testIdentifier, testEmail)
	ctx := context.Background()

	token, err := f.resets.Issue(ctx, id)
	require.NoError(t, err)

	f.clock.Advance(16 * time.Minute)
	_, err = f.resets.Redeem(ctx, token, "N3w!Secret")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	f.clock.Advance(-16 * time.Minute)
	_, err = f.resets.Redeem(ctx, token, "N3w!Secret")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken), "expired token must be discarded")

	_, err = f.credentials.Verify(ctx, testIdentifier, testSecret)
	assert.NoError(t, err)
}

func TestRedeemUnknownToken(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	for _, token := range []string{"", "   ", "deadbeef"} {
		_, err := f.resets.Redeem(context.Background(), token, "N3w!Secret")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken), "token %q", token)
	}
}
