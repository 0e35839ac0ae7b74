package dto

import (
	"time"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// RegisterRequest payload for new credentials.
type RegisterRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
	Role       string `json:"role"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// ResetRequest asks for a reset token to be mailed to Email.
type ResetRequest struct {
	Email string `json:"email"`
}

// ResetConfirmRequest redeems a reset token.
type ResetConfirmRequest struct {
	Token     string `json:"token"`
	NewSecret string `json:"new_secret"`
}

// ChangeSecretRequest replaces the caller's secret.
type ChangeSecretRequest struct {
	CurrentSecret string `json:"current_secret"`
	NewSecret     string `json:"new_secret"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CredentialResponse is the public view of a credential.
type CredentialResponse struct {
	ID         string      `json:"id"`
	Identifier string      `json:"identifier"`
	Role       domain.Role `json:"role"`
	CreatedAt  time.Time   `json:"created_at"`
}

// SessionResponse is the public view of a session. The payload is never exposed.
type SessionResponse struct {
	ID             string    `json:"id"`
	OriginAddress  string    `json:"origin_address"`
	ClientAgent    string    `json:"client_agent"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
	Reused         bool      `json:"reused"`
}

// NewCredentialResponse maps a credential.
func NewCredentialResponse(c *domain.Credential) CredentialResponse {
	return CredentialResponse{ID: c.ID, Identifier: c.Identifier, Role: c.Role, CreatedAt: c.CreatedAt}
}

// NewSessionResponse maps a session.
func NewSessionResponse(s *domain.Session, reused bool) SessionResponse {
	return SessionResponse{
		ID:             s.ID,
		OriginAddress:  s.OriginAddress,
		ClientAgent:    s.ClientAgent,
		LastActivityAt: s.LastActivityAt,
		CreatedAt:      s.CreatedAt,
		Reused:         reused,
	}
}
