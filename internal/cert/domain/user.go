package domain

import "time"

// Role is the account type baked into issued access tokens.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleIssuer Role = "issuer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleIssuer
}

// Scopes returns the permission scopes granted to the role.
func (r Role) Scopes() []string {
	switch r {
	case RoleAdmin:
		return []string{"certs:issue", "certs:read", "certs:validate", "users:read", "audit:read"}
	case RoleIssuer:
		return []string{"certs:issue", "certs:read", "certs:validate"}
	default:
		return nil
	}
}

type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string // argon2 encoded
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
