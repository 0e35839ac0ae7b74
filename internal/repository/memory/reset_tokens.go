package memory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/repository"
)

type resetTokens struct{ s *Store }

func (r *resetTokens) Upsert(_ context.Context, token *domain.ResetToken) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.credentials[token.CredentialID]; !ok {
		return oops.Code("RESET_TOKEN_CREDENTIAL_MISSING").
			With("credential_id", token.CredentialID).
			Wrap(repository.ErrReferenceMissing)
	}
	if prior, ok := s.tokens[token.CredentialID]; ok {
		delete(s.tokenByHash, prior.TokenHash)
	}
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	s.tokens[token.CredentialID] = *token
	s.tokenByHash[token.TokenHash] = token.CredentialID
	return nil
}

func (r *resetTokens) Redeem(_ context.Context, tokenHash, newDigest string, check repository.RedeemFunc) (*domain.ResetToken, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	credentialID, ok := s.tokenByHash[tokenHash]
	if !ok {
		return nil, oops.Code("RESET_TOKEN_NOT_FOUND").Wrap(repository.ErrNotFound)
	}
	token := s.tokens[credentialID]

	if check != nil {
		if err := check(&token); errors.Is(err, repository.ErrExpired) {
			s.deleteTokenLocked(token)
			return nil, oops.Code("RESET_TOKEN_EXPIRED").Wrap(repository.ErrExpired)
		} else if err != nil {
			return nil, oops.Code("RESET_TOKEN_REDEEM_FAILED").Wrap(err)
		}
	}

	if err := s.updateSecretLocked(token.CredentialID, newDigest); err != nil {
		return nil, err
	}
	s.deleteTokenLocked(token)
	return &token, nil
}

func (s *Store) deleteTokenLocked(token domain.ResetToken) {
	delete(s.tokens, token.CredentialID)
	delete(s.tokenByHash, token.TokenHash)
}
