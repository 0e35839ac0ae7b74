package domain

import "time"

// Role differentiates person vs company credentials.
type Role string

const (
	RolePerson  Role = "person"
	RoleCompany Role = "company"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RolePerson || r == RoleCompany
}

// Credential pairs a unique national identifier (CPF or CNPJ) with a hashed secret.
type Credential struct {
	ID           string    `json:"id"`
	Identifier   string    `json:"identifier"`
	SecretDigest string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
