package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Middleware authenticates every request with a and attaches the identity
// to the request context. Rejected credentials get 401; authenticator
// failures get 500. A nil a attaches AnonymousIdentity and lets everything
// through.
func Middleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a == nil {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), AnonymousIdentity())))
				return
			}

			req := &AuthRequest{Headers: r.Header, Resource: r.URL.Path}
			if !a.Supports(r.Context(), req) {
				writeAuthError(w, http.StatusUnauthorized, ErrMissingCredentials)
				return
			}
			result, err := a.Authenticate(r.Context(), req)
			if err != nil {
				writeAuthError(w, http.StatusInternalServerError, errors.New("auth: authenticator failed"))
				return
			}
			if !result.Authenticated {
				writeAuthError(w, http.StatusUnauthorized, result.Error)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), result.Identity)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		err = ErrInvalidCredentials
	}
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="websearch"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
