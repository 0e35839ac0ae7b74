package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/repository"
)

type sessions struct{ s *Store }

func (r *sessions) CreateIfAbsent(_ context.Context, session *domain.Session) (*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertSessionLocked(session)
}

func (r *sessions) Replace(_ context.Context, staleID string, session *domain.Session) (*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if stale, ok := r.s.sessions[staleID]; ok {
		delete(r.s.sessions, staleID)
		delete(r.s.sessionByCrd, stale.CredentialID)
	}
	return r.s.insertSessionLocked(session)
}

func (s *Store) insertSessionLocked(session *domain.Session) (*domain.Session, error) {
	if _, ok := s.credentials[session.CredentialID]; !ok {
		return nil, oops.Code("SESSION_CREDENTIAL_MISSING").
			With("credential_id", session.CredentialID).
			Wrap(repository.ErrReferenceMissing)
	}
	if id, exists := s.sessionByCrd[session.CredentialID]; exists {
		stored := s.sessions[id]
		return &stored, nil
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	session.CreatedAt = s.now().UTC()
	s.sessions[session.ID] = *session
	s.sessionByCrd[session.CredentialID] = session.ID
	stored := *session
	return &stored, nil
}

func (r *sessions) GetByID(_ context.Context, id string) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return nil, oops.Code("SESSION_NOT_FOUND").With("session_id", id).Wrap(repository.ErrNotFound)
	}
	return &session, nil
}

func (r *sessions) GetByCredential(ctx context.Context, credentialID string) (*domain.Session, error) {
	r.s.mu.RLock()
	id, ok := r.s.sessionByCrd[credentialID]
	r.s.mu.RUnlock()
	if !ok {
		return nil, oops.Code("SESSION_NOT_FOUND").With("credential_id", credentialID).Wrap(repository.ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

func (r *sessions) Touch(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return oops.Code("SESSION_NOT_FOUND").With("session_id", id).Wrap(repository.ErrNotFound)
	}
	session.LastActivityAt = at
	r.s.sessions[id] = session
	return nil
}

func (r *sessions) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return oops.Code("SESSION_NOT_FOUND").With("session_id", id).Wrap(repository.ErrNotFound)
	}
	delete(r.s.sessions, id)
	delete(r.s.sessionByCrd, session.CredentialID)
	return nil
}
