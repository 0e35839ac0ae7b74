package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/spec-kit/staffing-service/internal/domain"
)

type resetTokenRepository struct {
	db DB
}

// NewResetTokenRepository returns a Postgres-backed implementation.
func NewResetTokenRepository(db DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

// Upsert replaces the credential's previous token, so a stale token can no longer be redeemed.
func (r *resetTokenRepository) Upsert(ctx context.Context, token *domain.ResetToken) error {
	const query = `
        INSERT INTO reset_tokens (id, credential_id, token_hash, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (credential_id) DO UPDATE
        SET id = EXCLUDED.id, token_hash = EXCLUDED.token_hash, created_at = EXCLUDED.created_at`

	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, query, token.ID, token.CredentialID, token.TokenHash, token.CreatedAt)
	if isForeignKeyViolation(err) {
		return oops.Code("RESET_TOKEN_CREDENTIAL_MISSING").
			With("credential_id", token.CredentialID).
			Wrap(ErrReferenceMissing)
	}
	if err != nil {
		return oops.Code("RESET_TOKEN_UPSERT_FAILED").
			With("operation", "upsert reset_token").
			With("credential_id", token.CredentialID).
			Wrap(err)
	}
	return nil
}

func (r *resetTokenRepository) Redeem(ctx context.Context, tokenHash, newDigest string, check RedeemFunc) (*domain.ResetToken, error) {
	const (
		lockToken = `
        SELECT id, credential_id, token_hash, created_at
        FROM reset_tokens WHERE token_hash=$1
        FOR UPDATE`
		updateSecret = `
        UPDATE credentials SET secret_digest=$2, updated_at=NOW()
        WHERE id=$1`
		deleteToken = `DELETE FROM reset_tokens WHERE id=$1 AND token_hash=$2`
	)

	var (
		redeemed *domain.ResetToken
		expired  bool
	)
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		token, err := scanResetToken(tx.QueryRow(ctx, lockToken, tokenHash))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if check != nil {
			if err := check(token); errors.Is(err, ErrExpired) {
				expired = true
				_, err = tx.Exec(ctx, deleteToken, token.ID, token.TokenHash)
				return err
			} else if err != nil {
				return err
			}
		}

		cmd, err := tx.Exec(ctx, updateSecret, token.CredentialID, newDigest)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}

		cmd, err = tx.Exec(ctx, deleteToken, token.ID, token.TokenHash)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		redeemed = token
		return nil
	})
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, oops.Code("RESET_TOKEN_NOT_FOUND").Wrap(ErrNotFound)
	case err != nil:
		return nil, oops.Code("RESET_TOKEN_REDEEM_FAILED").
			With("operation", "redeem reset_token").
			Wrap(err)
	case expired:
		return nil, oops.Code("RESET_TOKEN_EXPIRED").Wrap(ErrExpired)
	}
	return redeemed, nil
}

func scanResetToken(row pgx.Row) (*domain.ResetToken, error) {
	var t domain.ResetToken
	if err := row.Scan(&t.ID, &t.CredentialID, &t.TokenHash, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
