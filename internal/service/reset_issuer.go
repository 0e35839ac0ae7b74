package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/staffing-service/internal/auth"
	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/mail"
	"github.com/spec-kit/staffing-service/internal/observability"
	"github.com/spec-kit/staffing-service/internal/repository"
	"github.com/spec-kit/staffing-service/internal/validation"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// ErrDeliveryFailed marks a token that was stored but could not be mailed.
var ErrDeliveryFailed = errors.New("reset mail not delivered")

// ResetTokenIssuer issues and redeems single-use credential recovery tokens.
type ResetTokenIssuer struct {
	tokens      repository.ResetTokenRepository
	people      repository.PersonRepository
	credentials *CredentialStore
	sender      mail.Sender
	resetURL    string
	ttl         time.Duration
	clock       Clock
	logger      *zap.Logger
}

// ResetIssuerDeps groups the issuer collaborators.
type ResetIssuerDeps struct {
	Tokens      repository.ResetTokenRepository
	People      repository.PersonRepository
	Credentials *CredentialStore
	Sender      mail.Sender
	ResetURL    string
	TTL         time.Duration
	Clock       Clock
	Logger      *zap.Logger
}

// NewResetTokenIssuer builds the issuer. A zero TTL issues tokens that never expire.
func NewResetTokenIssuer(deps ResetIssuerDeps) *ResetTokenIssuer {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock
	}
	return &ResetTokenIssuer{
		tokens:      deps.Tokens,
		people:      deps.People,
		credentials: deps.Credentials,
		sender:      deps.Sender,
		resetURL:    deps.ResetURL,
		ttl:         deps.TTL,
		clock:       clock,
		logger:      deps.Logger,
	}
}

// Issue stores a fresh token for credentialID, superseding any earlier one, and mails it to
// the credential's contact address. Only the token hash is persisted.
func (i *ResetTokenIssuer) Issue(ctx context.Context, credentialID string) (string, error) {
	person, err := i.people.GetByCredentialID(ctx, credentialID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperrors.NewUnknownIdentity()
	}
	if err != nil {
		return "", apperrors.NewDependencyFailure("person store", err)
	}
	return i.issueFor(ctx, person)
}

// IssueForContact resolves email to a person and issues a token for its credential.
func (i *ResetTokenIssuer) IssueForContact(ctx context.Context, email string) (*domain.Person, error) {
	email = strings.TrimSpace(email)
	if err := validation.Validate(validation.Field{Name: "email", Value: email, Rules: []validation.Rule{
		validation.Required(),
		validation.Email(),
	}}); err != nil {
		return nil, err
	}

	person, err := i.people.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewUnknownIdentity()
	}
	if err != nil {
		return nil, apperrors.NewDependencyFailure("person store", err)
	}
	if _, err := i.issueFor(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

func (i *ResetTokenIssuer) issueFor(ctx context.Context, person *domain.Person) (string, error) {
	token, hash, err := auth.GenerateResetToken()
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	record := &domain.ResetToken{
		CredentialID: person.CredentialID,
		TokenHash:    hash,
		CreatedAt:    i.clock.Now().UTC(),
	}
	if err := i.tokens.Upsert(ctx, record); err != nil {
		if errors.Is(err, repository.ErrReferenceMissing) {
			return "", apperrors.NewUnknownIdentity()
		}
		return "", apperrors.NewDependencyFailure("reset token store", err)
	}
	if err := i.sender.Send(ctx, mail.ResetMessage(person.Email, token, i.resetURL)); err != nil {
		observability.LogError(i.logger, "reset mail failed", err, zap.String("credential_id", person.CredentialID))
		return "", apperrors.NewDependencyFailure("mail", fmt.Errorf("%w: %w", ErrDeliveryFailed, err))
	}
	return token, nil
}

// Redeem consumes token and installs newSecret in one transaction. Unknown, expired or
// already-used tokens are all INVALID_TOKEN; a weak secret leaves the token intact.
func (i *ResetTokenIssuer) Redeem(ctx context.Context, token, newSecret string) (*domain.ResetToken, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.NewInvalidToken()
	}
	digest, err := i.credentials.Digest("new_secret", newSecret)
	if err != nil {
		return nil, err
	}

	now := i.clock.Now()
	redeemed, err := i.tokens.Redeem(ctx, auth.HashResetToken(token), digest, func(t *domain.ResetToken) error {
		if !auth.VerifyResetToken(token, t.TokenHash) {
			return repository.ErrNotFound
		}
		if t.ExpiredAt(now, i.ttl) {
			return repository.ErrExpired
		}
		return nil
	})
	switch {
	case err == nil:
		return redeemed, nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrExpired):
		return nil, apperrors.NewInvalidToken()
	default:
		return nil, apperrors.NewDependencyFailure("reset token store", err)
	}
}
