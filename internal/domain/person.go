package domain

import "time"

// Person is the contact record bound to a credential. Reset mails are addressed to Email.
type Person struct {
	ID           string    `json:"id"`
	CredentialID string    `json:"credential_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}
