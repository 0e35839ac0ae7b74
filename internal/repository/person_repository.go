package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/spec-kit/staffing-service/internal/domain"
)

type personRepository struct {
	db DB
}

// NewPersonRepository returns a Postgres-backed implementation.
func NewPersonRepository(db DB) PersonRepository {
	return &personRepository{db: db}
}

func (r *personRepository) GetByEmail(ctx context.Context, email string) (*domain.Person, error) {
	const query = `
        SELECT id, credential_id, name, email, created_at
        FROM people WHERE lower(email)=lower($1)`

	return r.get(ctx, query, "email", email)
}

func (r *personRepository) GetByCredentialID(ctx context.Context, credentialID string) (*domain.Person, error) {
	const query = `
        SELECT id, credential_id, name, email, created_at
        FROM people WHERE credential_id=$1`

	return r.get(ctx, query, "credential_id", credentialID)
}

func (r *personRepository) get(ctx context.Context, query, key, value string) (*domain.Person, error) {
	var p domain.Person
	err := r.db.QueryRow(ctx, query, value).Scan(
		&p.ID,
		&p.CredentialID,
		&p.Name,
		&p.Email,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
		return nil, oops.Code("PERSON_NOT_FOUND").With(key, value).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PERSON_LOOKUP_FAILED").
			With("operation", "select person").
			With(key, value).
			Wrap(err)
	}
	return &p, nil
}
