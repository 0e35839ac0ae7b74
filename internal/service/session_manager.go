package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/staffing-service/internal/cache"
	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/repository"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// touchInterval bounds how often request activity is written back to the store.
const touchInterval = time.Minute

// SessionRequest describes the client that just authenticated.
type SessionRequest struct {
	OriginAddress string
	ClientAgent   string
}

// SessionManager keeps one session per credential and fronts lookups with a cache.
type SessionManager struct {
	sessions repository.SessionRepository
	cache    cache.SessionCache
	idleTTL  time.Duration
	clock    Clock
	logger   *zap.Logger
}

// NewSessionManager builds a manager. A nil cache disables caching; idleTTL <= 0 keeps sessions forever.
func NewSessionManager(sessions repository.SessionRepository, sessionCache cache.SessionCache, idleTTL time.Duration, clock Clock, logger *zap.Logger) *SessionManager {
	if sessionCache == nil {
		sessionCache = cache.Noop{}
	}
	if clock == nil {
		clock = SystemClock
	}
	return &SessionManager{sessions: sessions, cache: sessionCache, idleTTL: idleTTL, clock: clock, logger: logger}
}

// StartOrReuse returns the credential's session, creating it on first login. reused is true
// when an existing session was returned unchanged. Concurrent first logins converge on one row.
func (m *SessionManager) StartOrReuse(ctx context.Context, cred *domain.Credential, req SessionRequest) (session *domain.Session, reused bool, err error) {
	now := m.clock.Now().UTC()

	existing, err := m.sessions.GetByCredential(ctx, cred.ID)
	switch {
	case err == nil && !existing.IdleAt(now, m.idleTTL):
		return existing, true, nil
	case err == nil:
		session, err = m.sessions.Replace(ctx, existing.ID, m.newSession(cred, req, now))
		if err != nil {
			return nil, false, apperrors.NewDependencyFailure("session store", err)
		}
		m.evict(ctx, existing.ID)
		m.logger.Info("idle session replaced", zap.String("credential_id", cred.ID), zap.String("stale_session_id", existing.ID))
		return session, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, apperrors.NewDependencyFailure("session store", err)
	}

	candidate := m.newSession(cred, req, now)
	session, err = m.sessions.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return nil, false, apperrors.NewDependencyFailure("session store", err)
	}
	return session, session.ID != candidate.ID, nil
}

func (m *SessionManager) newSession(cred *domain.Credential, req SessionRequest, now time.Time) *domain.Session {
	return &domain.Session{
		ID:             uuid.NewString(),
		CredentialID:   cred.ID,
		OriginAddress:  req.OriginAddress,
		ClientAgent:    req.ClientAgent,
		Payload:        cred.Identifier,
		LastActivityAt: now,
	}
}

// Lookup resolves a live session by id. Missing or idle sessions are UNAUTHORIZED.
func (m *SessionManager) Lookup(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := m.cache.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			m.logger.Warn("session cache read failed", zap.Error(err))
		}
		session, err = m.sessions.GetByID(ctx, sessionID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("session not found")
		}
		if err != nil {
			return nil, apperrors.NewDependencyFailure("session store", err)
		}
		if err := m.cache.Set(ctx, session); err != nil {
			m.logger.Warn("session cache write failed", zap.Error(err))
		}
	}
	if session.IdleAt(m.clock.Now(), m.idleTTL) {
		return nil, apperrors.NewUnauthorized("session expired")
	}
	return session, nil
}

// Touch records activity, writing at most once per touchInterval. Failures are logged only.
func (m *SessionManager) Touch(ctx context.Context, session *domain.Session) {
	now := m.clock.Now().UTC()
	if now.Sub(session.LastActivityAt) < touchInterval {
		return
	}
	if err := m.sessions.Touch(ctx, session.ID, now); err != nil {
		m.logger.Warn("session touch failed", zap.String("session_id", session.ID), zap.Error(err))
		return
	}
	session.LastActivityAt = now
	if err := m.cache.Set(ctx, session); err != nil {
		m.logger.Warn("session cache write failed", zap.Error(err))
	}
}

// End deletes a session. Ending an already-ended session succeeds.
func (m *SessionManager) End(ctx context.Context, sessionID string) error {
	// Evicting after the delete keeps a concurrent Lookup from re-caching the row.
	err := m.sessions.Delete(ctx, sessionID)
	m.evict(ctx, sessionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewDependencyFailure("session store", err)
	}
	return nil
}

// EndForCredential ends whatever session the credential owns and returns its id, or "".
func (m *SessionManager) EndForCredential(ctx context.Context, credentialID string) (string, error) {
	session, err := m.sessions.GetByCredential(ctx, credentialID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.NewDependencyFailure("session store", err)
	}
	return session.ID, m.End(ctx, session.ID)
}

func (m *SessionManager) evict(ctx context.Context, sessionID string) {
	if err := m.cache.Delete(ctx, sessionID); err != nil {
		m.logger.Warn("session cache evict failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}
