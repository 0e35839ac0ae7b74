package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/spec-kit/staffing-service/internal/domain"
)

const (
	constraintCredentialIdentifier = "credentials_identifier_key"
	constraintPersonEmail          = "people_email_key"
)

type credentialRepository struct {
	db DB
}

// NewCredentialRepository returns a Postgres-backed implementation.
func NewCredentialRepository(db DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, cred *domain.Credential, person *domain.Person) error {
	const insertCredential = `
        INSERT INTO credentials (id, identifier, secret_digest, role)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at`
	const insertPerson = `
        INSERT INTO people (id, credential_id, name, email)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at`

	if cred.ID == "" {
		cred.ID = uuid.NewString()
	}

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertCredential,
			cred.ID,
			cred.Identifier,
			cred.SecretDigest,
			string(cred.Role),
		).Scan(&cred.CreatedAt, &cred.UpdatedAt); err != nil {
			return err
		}
		if person == nil {
			return nil
		}
		if person.ID == "" {
			person.ID = uuid.NewString()
		}
		person.CredentialID = cred.ID
		return tx.QueryRow(ctx, insertPerson,
			person.ID,
			person.CredentialID,
			person.Name,
			person.Email,
		).Scan(&person.CreatedAt)
	})
	if constraint, ok := isUniqueViolation(err); ok {
		sentinel := ErrDuplicateIdentifier
		if constraint == constraintPersonEmail {
			sentinel = ErrDuplicateEmail
		}
		return oops.Code("CREDENTIAL_CONFLICT").
			With("constraint", constraint).
			Wrap(sentinel)
	}
	if err != nil {
		return oops.Code("CREDENTIAL_CREATE_FAILED").
			With("operation", "insert credential").
			With("credential_id", cred.ID).
			Wrap(err)
	}
	return nil
}

func (r *credentialRepository) GetByID(ctx context.Context, id string) (*domain.Credential, error) {
	const query = `
        SELECT id, identifier, secret_digest, role, created_at, updated_at
        FROM credentials WHERE id=$1`

	cred, err := scanCredential(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, credentialLookupError(err, "credential_id", id)
	}
	return cred, nil
}

func (r *credentialRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.Credential, error) {
	const query = `
        SELECT id, identifier, secret_digest, role, created_at, updated_at
        FROM credentials WHERE identifier=$1`

	cred, err := scanCredential(r.db.QueryRow(ctx, query, identifier))
	if err != nil {
		return nil, credentialLookupError(err, "identifier", identifier)
	}
	return cred, nil
}

func (r *credentialRepository) UpdateSecret(ctx context.Context, id, digest string) error {
	const query = `
        UPDATE credentials SET secret_digest=$2, updated_at=NOW()
        WHERE id=$1`

	cmd, err := r.db.Exec(ctx, query, id, digest)
	if isInvalidText(err) {
		return oops.Code("CREDENTIAL_NOT_FOUND").With("credential_id", id).Wrap(ErrNotFound)
	}
	if err != nil {
		return oops.Code("CREDENTIAL_UPDATE_FAILED").
			With("operation", "update credential secret").
			With("credential_id", id).
			Wrap(err)
	}
	if cmd.RowsAffected() == 0 {
		return oops.Code("CREDENTIAL_NOT_FOUND").With("credential_id", id).Wrap(ErrNotFound)
	}
	return nil
}

func scanCredential(row pgx.Row) (*domain.Credential, error) {
	var (
		cred domain.Credential
		role string
	)
	if err := row.Scan(
		&cred.ID,
		&cred.Identifier,
		&cred.SecretDigest,
		&role,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	); err != nil {
		return nil, err
	}
	cred.Role = domain.Role(role)
	return &cred, nil
}

func credentialLookupError(err error, key, value string) error {
	if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
		return oops.Code("CREDENTIAL_NOT_FOUND").With(key, value).Wrap(ErrNotFound)
	}
	return oops.Code("CREDENTIAL_LOOKUP_FAILED").
		With("operation", "select credential").
		With(key, value).
		Wrap(err)
}
