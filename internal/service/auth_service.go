package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/staffing-service/internal/auth"
	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/events"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// LoginInput carries credentials and client metadata for a login.
type LoginInput struct {
	Identifier    string
	Secret        string
	OriginAddress string
	ClientAgent   string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Credential  *domain.Credential
	Session     *domain.Session
	Reused      bool
	AccessToken string
	ExpiresAt   time.Time
}

// AuthService coordinates registration, login and credential recovery flows.
type AuthService struct {
	credentials *CredentialStore
	sessions    *SessionManager
	resets      *ResetTokenIssuer
	tokenMgr    *auth.TokenManager
	dispatcher  events.Dispatcher
	clock       Clock
	logger      *zap.Logger
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	Credentials *CredentialStore
	Sessions    *SessionManager
	Resets      *ResetTokenIssuer
	Tokens      *auth.TokenManager
	Dispatcher  events.Dispatcher
	Clock       Clock
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		credentials: deps.Credentials,
		sessions:    deps.Sessions,
		resets:      deps.Resets,
		tokenMgr:    deps.Tokens,
		dispatcher:  deps.Dispatcher,
		clock:       clock,
		logger:      logger,
	}
}

// TokenManager exposes the JWT manager used by the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a credential and its optional contact record.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Credential, error) {
	cred, err := s.credentials.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("credential registered", zap.String("credential_id", cred.ID), zap.String("role", string(cred.Role)))
	s.publish(ctx, events.EventCredentialRegistered, cred.ID, events.CredentialRegisteredPayload{
		Role:      cred.Role,
		HasPerson: strings.TrimSpace(in.Email) != "",
	})
	return cred, nil
}

// Login verifies the credential pair, starts or reuses the session and issues an access token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	cred, err := s.credentials.Verify(ctx, in.Identifier, in.Secret)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeAuthFailure) {
			s.logger.Info("login rejected", zap.String("origin_address", in.OriginAddress))
		}
		return nil, err
	}

	session, reused, err := s.sessions.StartOrReuse(ctx, cred, SessionRequest{
		OriginAddress: in.OriginAddress,
		ClientAgent:   in.ClientAgent,
	})
	if err != nil {
		return nil, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(cred, session)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventSessionStarted, cred.ID, events.SessionStartedPayload{
		SessionID:     session.ID,
		Reused:        reused,
		OriginAddress: in.OriginAddress,
	})
	return &LoginResult{
		Credential:  cred,
		Session:     session,
		Reused:      reused,
		AccessToken: token,
		ExpiresAt:   exp,
	}, nil
}

// Logout ends the caller's session.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if err := s.sessions.End(ctx, principal.Session.ID); err != nil {
		return err
	}
	s.publish(ctx, events.EventSessionEnded, principal.Credential.ID, events.SessionEndedPayload{SessionID: principal.Session.ID})
	return nil
}

// RequestReset mails a reset token to email. Unknown addresses and undelivered mail both
// succeed silently so callers cannot probe which addresses are registered.
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	person, err := s.resets.IssueForContact(ctx, email)
	if apperrors.IsCode(err, apperrors.CodeUnknownIdentity) {
		s.logger.Debug("reset requested for unknown address")
		return nil
	}
	// Only registered addresses reach the mailer, so its failures must look like success.
	if errors.Is(err, ErrDeliveryFailed) {
		s.logger.Warn("reset requested but not delivered", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	s.publish(ctx, events.EventResetRequested, person.CredentialID, nil)
	return nil
}

// ConfirmReset redeems token, installs newSecret and ends any session the credential held.
func (s *AuthService) ConfirmReset(ctx context.Context, token, newSecret string) error {
	redeemed, err := s.resets.Redeem(ctx, token, newSecret)
	if err != nil {
		return err
	}
	s.endSessions(ctx, redeemed.CredentialID)
	s.publish(ctx, events.EventSecretReset, redeemed.CredentialID, events.SecretUpdatedPayload{Via: "reset_token"})
	return nil
}

// ChangeSecret replaces the caller's secret after re-verifying the current one. The caller's
// session stays valid.
func (s *AuthService) ChangeSecret(ctx context.Context, credentialID, currentSecret, newSecret string) error {
	if _, err := s.credentials.VerifyByID(ctx, credentialID, currentSecret); err != nil {
		return err
	}
	if err := s.credentials.UpdateSecret(ctx, credentialID, newSecret); err != nil {
		return err
	}
	s.publish(ctx, events.EventSecretChanged, credentialID, events.SecretUpdatedPayload{Via: "current_secret"})
	return nil
}

// ResolveSession backs the auth middleware: the token's session must exist, belong to the
// token's credential and not be idle.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID, credentialID string) (*domain.Credential, *domain.Session, error) {
	session, err := s.sessions.Lookup(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.CredentialID != credentialID {
		return nil, nil, apperrors.NewUnauthorized("session does not match token")
	}
	cred, err := s.credentials.Get(ctx, credentialID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, nil, apperrors.NewUnauthorized("credential not found")
		}
		return nil, nil, err
	}
	s.sessions.Touch(ctx, session)
	return cred, session, nil
}

func (s *AuthService) endSessions(ctx context.Context, credentialID string) {
	sessionID, err := s.sessions.EndForCredential(ctx, credentialID)
	if err != nil {
		s.logger.Warn("session cleanup after reset failed", zap.String("credential_id", credentialID), zap.Error(err))
		return
	}
	if sessionID != "" {
		s.publish(ctx, events.EventSessionEnded, credentialID, events.SessionEndedPayload{SessionID: sessionID})
	}
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, credentialID string, payload interface{}) {
	publish(ctx, s.dispatcher, s.logger, events.New(eventType, credentialID, s.clock.Now().UTC(), payload))
}
