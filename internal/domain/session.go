package domain

import "time"

// Session marks a credential that has authenticated at least once. At most one exists per credential.
type Session struct {
	ID             string    `json:"id"`
	CredentialID   string    `json:"credential_id"`
	OriginAddress  string    `json:"origin_address"`
	ClientAgent    string    `json:"client_agent"`
	Payload        string    `json:"-"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// IdleAt reports whether the session has been inactive for longer than ttl at now.
// A non-positive ttl means sessions never go idle.
func (s *Session) IdleAt(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.LastActivityAt) > ttl
}
