package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/spec-kit/staffing-service/internal/domain"
)

const (
	insertSessionIfAbsent = `
        INSERT INTO sessions (id, credential_id, origin_address, client_agent, payload, last_activity_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (credential_id) DO NOTHING`
	selectSessionByCredential = `
        SELECT id, credential_id, origin_address, client_agent, payload, last_activity_at, created_at
        FROM sessions WHERE credential_id=$1`
)

type sessionRepository struct {
	db DB
}

// NewSessionRepository returns a Postgres-backed implementation.
func NewSessionRepository(db DB) SessionRepository {
	return &sessionRepository{db: db}
}

// CreateIfAbsent relies on the unique credential_id index: a concurrent writer that lost the
// race inserts nothing and reads back the winner's row.
func (r *sessionRepository) CreateIfAbsent(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if _, err := r.db.Exec(ctx, insertSessionIfAbsent, sessionArgs(session)...); err != nil {
		return nil, sessionWriteError(err, session)
	}
	return r.GetByCredential(ctx, session.CredentialID)
}

func (r *sessionRepository) Replace(ctx context.Context, staleID string, session *domain.Session) (*domain.Session, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	var stored *domain.Session
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, staleID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, insertSessionIfAbsent, sessionArgs(session)...); err != nil {
			return err
		}
		var err error
		stored, err = scanSession(tx.QueryRow(ctx, selectSessionByCredential, session.CredentialID))
		return err
	})
	if err != nil {
		return nil, sessionWriteError(err, session)
	}
	return stored, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	const query = `
        SELECT id, credential_id, origin_address, client_agent, payload, last_activity_at, created_at
        FROM sessions WHERE id=$1`

	session, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, sessionLookupError(err, "session_id", id)
	}
	return session, nil
}

func (r *sessionRepository) GetByCredential(ctx context.Context, credentialID string) (*domain.Session, error) {
	session, err := scanSession(r.db.QueryRow(ctx, selectSessionByCredential, credentialID))
	if err != nil {
		return nil, sessionLookupError(err, "credential_id", credentialID)
	}
	return session, nil
}

func (r *sessionRepository) Touch(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE sessions SET last_activity_at=$2 WHERE id=$1`, id, at)
	if err != nil && !isInvalidText(err) {
		return oops.Code("SESSION_TOUCH_FAILED").With("session_id", id).Wrap(err)
	}
	if err != nil || cmd.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").With("session_id", id).Wrap(ErrNotFound)
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	if err != nil && !isInvalidText(err) {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			With("session_id", id).
			Wrap(err)
	}
	if err != nil || cmd.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").With("session_id", id).Wrap(ErrNotFound)
	}
	return nil
}

func sessionArgs(s *domain.Session) []any {
	return []any{s.ID, s.CredentialID, s.OriginAddress, s.ClientAgent, s.Payload, s.LastActivityAt}
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	if err := row.Scan(
		&s.ID,
		&s.CredentialID,
		&s.OriginAddress,
		&s.ClientAgent,
		&s.Payload,
		&s.LastActivityAt,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func sessionWriteError(err error, s *domain.Session) error {
	if isForeignKeyViolation(err) {
		return oops.Code("SESSION_CREDENTIAL_MISSING").
			With("credential_id", s.CredentialID).
			Wrap(ErrReferenceMissing)
	}
	return oops.Code("SESSION_WRITE_FAILED").
		With("operation", "insert session").
		With("credential_id", s.CredentialID).
		Wrap(err)
}

func sessionLookupError(err error, key, value string) error {
	if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
		return oops.Code("SESSION_NOT_FOUND").With(key, value).Wrap(ErrNotFound)
	}
	return oops.Code("SESSION_LOOKUP_FAILED").With(key, value).Wrap(err)
}
