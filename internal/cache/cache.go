// Package cache keeps recently resolved sessions close to the request path. A cache is
// only an accelerator: every implementation may drop entries at any time, and callers
// fall back to the session repository on a miss.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// ErrMiss reports that no live entry exists for the key.
var ErrMiss = errors.New("cache miss")

// SessionCache stores sessions keyed by session id.
type SessionCache interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Set(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, sessionID string) error
}

// entry is the cached form of a session. Payload is kept because domain.Session hides it from JSON.
type entry struct {
	ID             string    `json:"id"`
	CredentialID   string    `json:"credential_id"`
	OriginAddress  string    `json:"origin_address"`
	ClientAgent    string    `json:"client_agent"`
	Payload        string    `json:"payload"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

func toEntry(s *domain.Session) entry {
	return entry{
		ID:             s.ID,
		CredentialID:   s.CredentialID,
		OriginAddress:  s.OriginAddress,
		ClientAgent:    s.ClientAgent,
		Payload:        s.Payload,
		LastActivityAt: s.LastActivityAt,
		CreatedAt:      s.CreatedAt,
	}
}

func (e entry) session() *domain.Session {
	return &domain.Session{
		ID:             e.ID,
		CredentialID:   e.CredentialID,
		OriginAddress:  e.OriginAddress,
		ClientAgent:    e.ClientAgent,
		Payload:        e.Payload,
		LastActivityAt: e.LastActivityAt,
		CreatedAt:      e.CreatedAt,
	}
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (*domain.Session, error) { return nil, ErrMiss }
func (Noop) Set(context.Context, *domain.Session) error           { return nil }
func (Noop) Delete(context.Context, string) error                 { return nil }
