package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/staffing-service/internal/auth"
	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/observability"
	"github.com/spec-kit/staffing-service/internal/repository"
	"github.com/spec-kit/staffing-service/internal/validation"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// Identifier bounds: an 11-digit CPF or a 14-digit CNPJ.
const (
	identifierMinDigits = 11
	identifierMaxDigits = 14
)

// RegisterInput carries the fields accepted at registration. Role defaults to person;
// Name and Email are optional and create the contact record used for reset mails.
type RegisterInput struct {
	Identifier string
	Secret     string
	Role       string
	Name       string
	Email      string
}

// CredentialStore owns credentials: registration, verification and secret replacement.
type CredentialStore struct {
	creds  repository.CredentialRepository
	hasher auth.Hasher
	policy auth.SecretPolicy
	logger *zap.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

// NewCredentialStore builds the store.
func NewCredentialStore(creds repository.CredentialRepository, hasher auth.Hasher, policy auth.SecretPolicy, logger *zap.Logger) *CredentialStore {
	return &CredentialStore{creds: creds, hasher: hasher, policy: policy, logger: logger}
}

// NormalizeIdentifier strips the punctuation and blanks allowed in formatted CPF/CNPJ values.
func NormalizeIdentifier(identifier string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', '/', ' ':
			return -1
		}
		return r
	}, strings.TrimSpace(identifier))
}

// Register validates input, hashes the secret and stores the credential. Uniqueness is
// decided by the store's unique index, not by a prior lookup.
func (s *CredentialStore) Register(ctx context.Context, in RegisterInput) (*domain.Credential, error) {
	identifier := NormalizeIdentifier(in.Identifier)
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = string(domain.RolePerson)
	}
	email := strings.TrimSpace(in.Email)

	errs := validation.Check(
		validation.Field{Name: "identifier", Value: identifier, Rules: []validation.Rule{
			validation.Required(),
			validation.Digits(),
			validation.MinLength(identifierMinDigits),
			validation.MaxLength(identifierMaxDigits),
		}},
		validation.Field{Name: "role", Value: role, Rules: []validation.Rule{
			validation.OneOf(string(domain.RolePerson), string(domain.RoleCompany)),
		}},
		validation.Field{Name: "email", Value: email, Optional: true, Rules: []validation.Rule{
			validation.Email(),
			validation.MaxLength(255),
		}},
		validation.Field{Name: "name", Value: in.Name, Optional: true, Rules: []validation.Rule{
			validation.MaxLength(255),
		}},
	)
	secretErrs := s.policy.Check("secret", in.Secret)
	switch {
	case len(errs) > 0:
		for field, msgs := range secretErrs {
			errs[field] = msgs
		}
		return nil, apperrors.NewValidationError("request validation failed", errs.Details())
	case len(secretErrs) > 0:
		return nil, apperrors.NewWeakSecret(secretErrs.Details())
	}

	digest, err := s.hasher.Hash(in.Secret)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	cred := &domain.Credential{
		Identifier:   identifier,
		SecretDigest: digest,
		Role:         domain.Role(role),
	}
	var person *domain.Person
	if email != "" {
		person = &domain.Person{Name: strings.TrimSpace(in.Name), Email: email}
	}

	if err := s.creds.Create(ctx, cred, person); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateIdentifier):
			return nil, apperrors.NewDuplicateIdentifier()
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": []string{"is already registered"}})
		default:
			observability.LogError(s.logger, "credential create failed", err)
			return nil, apperrors.NewDependencyFailure("credential store", err)
		}
	}
	return cred, nil
}

// Verify authenticates identifier and secret. Unknown identifiers and wrong secrets return the
// same AUTH_FAILURE, and an unknown identifier still pays for one hash verification.
func (s *CredentialStore) Verify(ctx context.Context, identifier, secret string) (*domain.Credential, error) {
	cred, err := s.creds.GetByIdentifier(ctx, NormalizeIdentifier(identifier))
	if errors.Is(err, repository.ErrNotFound) {
		_, _ = s.hasher.Verify(secret, s.dummy())
		return nil, apperrors.NewAuthFailure()
	}
	if err != nil {
		return nil, apperrors.NewDependencyFailure("credential store", err)
	}
	if err := s.checkSecret(ctx, cred, secret); err != nil {
		return nil, err
	}
	return cred, nil
}

// VerifyByID authenticates the owner of credentialID, for secret changes.
func (s *CredentialStore) VerifyByID(ctx context.Context, credentialID, secret string) (*domain.Credential, error) {
	cred, err := s.Get(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSecret(ctx, cred, secret); err != nil {
		return nil, err
	}
	return cred, nil
}

func (s *CredentialStore) checkSecret(ctx context.Context, cred *domain.Credential, secret string) error {
	ok, err := s.hasher.Verify(secret, cred.SecretDigest)
	if err != nil {
		observability.LogError(s.logger, "stored digest unreadable", err, zap.String("credential_id", cred.ID))
		return apperrors.NewAuthFailure()
	}
	if !ok {
		return apperrors.NewAuthFailure()
	}
	if s.hasher.NeedsUpgrade(cred.SecretDigest) {
		s.upgradeDigest(ctx, cred, secret)
	}
	return nil
}

// upgradeDigest rehashes with the current algorithm. Failure leaves the old digest usable.
func (s *CredentialStore) upgradeDigest(ctx context.Context, cred *domain.Credential, secret string) {
	digest, err := s.hasher.Hash(secret)
	if err == nil {
		err = s.creds.UpdateSecret(ctx, cred.ID, digest)
	}
	if err != nil {
		s.logger.Warn("digest upgrade failed", zap.String("credential_id", cred.ID), zap.Error(err))
		return
	}
	cred.SecretDigest = digest
	s.logger.Info("digest upgraded", zap.String("credential_id", cred.ID))
}

// Get loads a credential by id.
func (s *CredentialStore) Get(ctx context.Context, credentialID string) (*domain.Credential, error) {
	cred, err := s.creds.GetByID(ctx, credentialID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("credential", nil)
	}
	if err != nil {
		return nil, apperrors.NewDependencyFailure("credential store", err)
	}
	return cred, nil
}

// CheckSecret applies the secret policy and reports WEAK_SECRET under field.
func (s *CredentialStore) CheckSecret(field, secret string) error {
	if errs := s.policy.Check(field, secret); len(errs) > 0 {
		return apperrors.NewWeakSecret(errs.Details())
	}
	return nil
}

// Digest checks the policy and hashes secret.
func (s *CredentialStore) Digest(field, secret string) (string, error) {
	if err := s.CheckSecret(field, secret); err != nil {
		return "", err
	}
	digest, err := s.hasher.Hash(secret)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return digest, nil
}

// UpdateSecret replaces the digest of credentialID.
func (s *CredentialStore) UpdateSecret(ctx context.Context, credentialID, newSecret string) error {
	digest, err := s.Digest("secret", newSecret)
	if err != nil {
		return err
	}
	err = s.creds.UpdateSecret(ctx, credentialID, digest)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("credential", nil)
	}
	if err != nil {
		return apperrors.NewDependencyFailure("credential store", err)
	}
	return nil
}

func (s *CredentialStore) dummy() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("timing-equalizer-secret")
		if err != nil {
			s.logger.Warn("dummy digest unavailable", zap.Error(err))
			return
		}
		s.dummyDigest = digest
	})
	return s.dummyDigest
}
