package auth

import (
	"slices"
	"time"
)

// AuthMethod names the credential type that produced an Identity.
type AuthMethod string

const (
	AuthMethodJWT       AuthMethod = "jwt"
	AuthMethodAPIKey    AuthMethod = "api_key"
	AuthMethodAnonymous AuthMethod = "anonymous"
)

// Identity is the caller attached to a request context once a credential
// has been accepted.
type Identity struct {
	Principal string // JWT subject or API key id
	Roles     []string
	Method    AuthMethod
	Claims    map[string]any

	// Zero values mean unknown; a zero ExpiresAt never expires.
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (id *Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// IsExpired reports whether now is past ExpiresAt.
func (id *Identity) IsExpired(now time.Time) bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return now.After(id.ExpiresAt)
}

func (id *Identity) IsAnonymous() bool {
	return id.Principal == "" || id.Method == AuthMethodAnonymous
}

// AnonymousIdentity is what handlers see when authentication is off.
func AnonymousIdentity() *Identity {
	return &Identity{Principal: "anonymous", Method: AuthMethodAnonymous, Claims: map[string]any{}}
}
