package auth

import (
	"context"
	"net/http"
)

// Authenticator checks one kind of credential. A rejected credential is a
// result with Authenticated false and a nil error; a non-nil error means
// the check itself could not run. Implementations are safe for concurrent
// use.
type Authenticator interface {
	Name() string

	// Supports reports whether req carries a credential of this kind.
	Supports(ctx context.Context, req *AuthRequest) bool

	Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// AuthRequest is the transport-neutral view of an incoming call.
type AuthRequest struct {
	Headers  http.Header
	Resource string // request path, for logs
}

// Header returns the first value of key, case-insensitively. Nil-safe.
func (r *AuthRequest) Header(key string) string {
	if r == nil {
		return ""
	}
	return r.Headers.Get(key)
}

// AuthResult is the outcome of Authenticate. Identity is set on success and
// Error on rejection. Method names the authenticator that decided.
type AuthResult struct {
	Authenticated bool
	Identity      *Identity
	Error         error
	Method        string
}

func AuthSuccess(id *Identity) *AuthResult {
	return &AuthResult{Authenticated: true, Identity: id, Method: string(id.Method)}
}

func AuthFailure(err error, method string) *AuthResult {
	return &AuthResult{Error: err, Method: method}
}

// AuthenticatorFunc builds an Authenticator from two functions.
type AuthenticatorFunc struct {
	name     string
	supports func(context.Context, *AuthRequest) bool
	auth     func(context.Context, *AuthRequest) (*AuthResult, error)
}

func NewAuthenticatorFunc(
	name string,
	supports func(context.Context, *AuthRequest) bool,
	auth func(context.Context, *AuthRequest) (*AuthResult, error),
) *AuthenticatorFunc {
	return &AuthenticatorFunc{name: name, supports: supports, auth: auth}
}

func (f *AuthenticatorFunc) Name() string { return f.name }

func (f *AuthenticatorFunc) Supports(ctx context.Context, req *AuthRequest) bool {
	return f.supports(ctx, req)
}

func (f *AuthenticatorFunc) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	return f.auth(ctx, req)
}
