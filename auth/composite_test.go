package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func fixedAuthenticator(name string, supports bool, result *AuthResult, err error) Authenticator {
	return NewAuthenticatorFunc(name,
		func(context.Context, *AuthRequest) bool { return supports },
		func(context.Context, *AuthRequest) (*AuthResult, error) { return result, err },
	)
}

func TestCompositeAuthenticator(t *testing.T) {
	success := AuthSuccess(&Identity{Principal: "ok", Method: AuthMethodAPIKey})
	reject := AuthFailure(ErrInvalidCredentials, "api_key")
	boom := errors.New("boom")

	tests := []struct {
		name          string
		auths         []Authenticator
		wantAuth      bool
		wantErr       error
		wantResultErr error
	}{
		{
			name:          "no authenticators",
			wantResultErr: ErrMissingCredentials,
		},
		{
			name:     "first success wins",
			auths:    []Authenticator{fixedAuthenticator("a", true, success, nil), fixedAuthenticator("b", true, nil, boom)},
			wantAuth: true,
		},
		{
			name:     "falls through a rejection",
			auths:    []Authenticator{fixedAuthenticator("a", true, reject, nil), fixedAuthenticator("b", true, success, nil)},
			wantAuth: true,
		},
		{
			name:          "unsupported are skipped",
			auths:         []Authenticator{fixedAuthenticator("a", false, success, nil)},
			wantResultErr: ErrMissingCredentials,
		},
		{
			name:          "last failure returned",
			auths:         []Authenticator{fixedAuthenticator("a", true, reject, nil)},
			wantResultErr: ErrInvalidCredentials,
		},
		{
			name:    "internal error stops the chain",
			auths:   []Authenticator{fixedAuthenticator("a", true, nil, boom), fixedAuthenticator("b", true, success, nil)},
			wantErr: boom,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompositeAuthenticator(tt.auths...)
			res, err := c.Authenticate(context.Background(), &AuthRequest{Headers: http.Header{}})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if res.Authenticated != tt.wantAuth {
				t.Fatalf("Authenticated = %v, want %v", res.Authenticated, tt.wantAuth)
			}
			if tt.wantResultErr != nil && !errors.Is(res.Error, tt.wantResultErr) {
				t.Errorf("result error = %v, want %v", res.Error, tt.wantResultErr)
			}
		})
	}
}

func TestCompositeAuthenticator_DropsNil(t *testing.T) {
	c := NewCompositeAuthenticator(nil, fixedAuthenticator("a", true, nil, nil), nil)
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if !c.Supports(context.Background(), &AuthRequest{}) {
		t.Error("Supports() should delegate")
	}
}
