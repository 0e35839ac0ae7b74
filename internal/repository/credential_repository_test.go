package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staffing-service/internal/domain"
)

var credentialCols = []string{"id", "identifier", "secret_digest", "role", "created_at", "updated_at"}

func TestCredentialRepository_Create(t *testing.T) {
	now := time.Date(2024, 2, 1, 3, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		person    *domain.Person
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "credential only",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO credentials`).
					WithArgs(pgxmock.AnyArg(), "12345678901", "digest", "person").
					WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
				mock.ExpectCommit()
			},
		},
		{
			name:   "credential with person",
			person: &domain.Person{Name: "Ana", Email: "ana@example.com"},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO credentials`).
					WithArgs(pgxmock.AnyArg(), "12345678901", "digest", "person").
					WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
				mock.ExpectQuery(`INSERT INTO people`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "Ana", "ana@example.com").
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
				mock.ExpectCommit()
			},
		},
		{
			name: "duplicate identifier",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO credentials`).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintCredentialIdentifier})
				mock.ExpectRollback()
			},
			wantErr: ErrDuplicateIdentifier,
		},
		{
			name:   "duplicate email rolls back credential",
			person: &domain.Person{Name: "Ana", Email: "ana@example.com"},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO credentials`).
					WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
				mock.ExpectQuery(`INSERT INTO people`).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintPersonEmail})
				mock.ExpectRollback()
			},
			wantErr: ErrDuplicateEmail,
		},
		{
			name: "begin fails",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin().WillReturnError(errors.New("connection refused"))
			},
			wantErr: errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			cred := &domain.Credential{Identifier: "12345678901", SecretDigest: "digest", Role: domain.RolePerson}
			err = NewCredentialRepository(mock).Create(context.Background(), cred, tt.person)

			switch {
			case tt.wantErr == nil:
				require.NoError(t, err)
				assert.NotEmpty(t, cred.ID)
				assert.Equal(t, now, cred.CreatedAt)
				if tt.person != nil {
					assert.Equal(t, cred.ID, tt.person.CredentialID)
					assert.NotEmpty(t, tt.person.ID)
				}
			case errors.Is(tt.wantErr, ErrConflict):
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrConflict)
			default:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestCredentialRepository_GetByIdentifier(t *testing.T) {
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, identifier, secret_digest, role`).
			WithArgs("12345678901").
			WillReturnRows(pgxmock.NewRows(credentialCols).
				AddRow("cred-1", "12345678901", "digest", "company", now, now))

		cred, err := NewCredentialRepository(mock).GetByIdentifier(context.Background(), "12345678901")
		require.NoError(t, err)
		assert.Equal(t, "cred-1", cred.ID)
		assert.Equal(t, domain.RoleCompany, cred.Role)
		assert.Equal(t, "digest", cred.SecretDigest)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, identifier, secret_digest, role`).
			WithArgs("00000000000").
			WillReturnRows(pgxmock.NewRows(credentialCols))

		_, err = NewCredentialRepository(mock).GetByIdentifier(context.Background(), "00000000000")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, identifier, secret_digest, role`).
			WillReturnError(errors.New("connection reset"))

		_, err = NewCredentialRepository(mock).GetByIdentifier(context.Background(), "12345678901")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestCredentialRepository_UpdateSecret(t *testing.T) {
	tests := []struct {
		name    string
		result  pgconn.CommandTag
		err     error
		wantErr error
	}{
		{name: "updated", result: pgxmock.NewResult("UPDATE", 1)},
		{name: "unknown id", result: pgxmock.NewResult("UPDATE", 0), wantErr: ErrNotFound},
		{name: "malformed id", err: &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation}, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			exp := mock.ExpectExec(`UPDATE credentials SET secret_digest`).WithArgs("cred-1", "new-digest")
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(tt.result)
			}

			err = NewCredentialRepository(mock).UpdateSecret(context.Background(), "cred-1", "new-digest")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPersonRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, credential_id, name, email`).
		WithArgs("Ana@Example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "credential_id", "name", "email", "created_at"}).
			AddRow("person-1", "cred-1", "Ana", "ana@example.com", now))
	mock.ExpectQuery(`SELECT id, credential_id, name, email`).
		WithArgs("cred-2").
		WillReturnRows(pgxmock.NewRows([]string{"id", "credential_id", "name", "email", "created_at"}))

	repo := NewPersonRepository(mock)
	p, err := repo.GetByEmail(context.Background(), "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "cred-1", p.CredentialID)

	_, err = repo.GetByCredentialID(context.Background(), "cred-2")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
