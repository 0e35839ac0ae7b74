// Package repository defines the persistence contracts of the service and their PostgreSQL
// implementations. Uniqueness and referential invariants are enforced by the database; the
// sentinels below report them to callers independently of the driver.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/staffing-service/internal/domain"
)

var (
	// ErrNotFound reports an absent row.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a unique constraint violation.
	ErrConflict = errors.New("conflict")
	// ErrDuplicateIdentifier reports a credential identifier that is already registered.
	ErrDuplicateIdentifier = fmt.Errorf("%w: identifier already registered", ErrConflict)
	// ErrDuplicateEmail reports a person email that is already registered.
	ErrDuplicateEmail = fmt.Errorf("%w: email already registered", ErrConflict)
	// ErrReferenceMissing reports a foreign key that points nowhere, or a delete blocked by references.
	ErrReferenceMissing = errors.New("referenced record missing")
)

// DB is the subset of pgxpool.Pool used by the repositories.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CredentialRepository persists credentials. Create stores the optional person in the same transaction.
type CredentialRepository interface {
	Create(ctx context.Context, cred *domain.Credential, person *domain.Person) error
	GetByID(ctx context.Context, id string) (*domain.Credential, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Credential, error)
	UpdateSecret(ctx context.Context, id, digest string) error
}

// PersonRepository reads contact records.
type PersonRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Person, error)
	GetByCredentialID(ctx context.Context, credentialID string) (*domain.Person, error)
}

// EmployeeRepository persists employees referenced by appointments.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
}

// SessionRepository persists at most one session per credential.
type SessionRepository interface {
	// CreateIfAbsent inserts session unless the credential already owns one, and returns the
	// stored row either way.
	CreateIfAbsent(ctx context.Context, session *domain.Session) (*domain.Session, error)
	// Replace swaps the credential's existing session (identified by staleID) for session.
	Replace(ctx context.Context, staleID string, session *domain.Session) (*domain.Session, error)
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	GetByCredential(ctx context.Context, credentialID string) (*domain.Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// RedeemFunc decides, under the token's row lock, whether a located token may be consumed.
// Returning an error aborts the redemption; returning ErrExpired also deletes the token.
type RedeemFunc func(token *domain.ResetToken) error

// ErrExpired is returned by a RedeemFunc to discard a token that outlived its TTL.
var ErrExpired = errors.New("reset token expired")

// ResetTokenRepository persists at most one live reset token per credential.
type ResetTokenRepository interface {
	// Upsert stores token, replacing any existing token of the same credential.
	Upsert(ctx context.Context, token *domain.ResetToken) error
	// Redeem atomically locates the token by hash, replaces the credential digest and deletes
	// the token. Either both writes apply or neither does.
	Redeem(ctx context.Context, tokenHash, newDigest string, check RedeemFunc) (*domain.ResetToken, error)
}

// AppointmentRepository persists appointments and answers time-windowed queries.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	Update(ctx context.Context, appt *domain.Appointment) error
	Delete(ctx context.Context, id string) error
	// ListDetailed returns every appointment joined with its employee and owner, ordered by
	// visit_at, id.
	ListDetailed(ctx context.Context) ([]domain.AppointmentDetail, error)
	// ListUpcoming returns appointments with visit_at >= now ordered by visit_at, id.
	ListUpcoming(ctx context.Context, ownerID string, now time.Time) ([]domain.Appointment, error)
	// ListPast returns appointments with visit_at < now ordered by visit_at, id.
	ListPast(ctx context.Context, ownerID string, now time.Time) ([]domain.Appointment, error)
}

// withTx runs fn in a transaction, committing on success and rolling back on any error.
func withTx(ctx context.Context, db DB, fn func(pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func isUniqueViolation(err error) (string, bool) {
	if pgErr, ok := pgError(err); ok && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func isForeignKeyViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgerrcode.ForeignKeyViolation
}

func isInvalidText(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgerrcode.InvalidTextRepresentation
}
