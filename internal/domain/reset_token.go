package domain

import "time"

// ResetToken is a single-use recovery token. Only the SHA-256 of the token value is stored.
type ResetToken struct {
	ID           string
	CredentialID string
	TokenHash    string
	CreatedAt    time.Time
}

// ExpiredAt reports whether the token is older than ttl at now. A non-positive ttl never expires.
func (t *ResetToken) ExpiredAt(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(t.CreatedAt) > ttl
}
