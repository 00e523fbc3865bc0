package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func apiKeyRequest(header, key string) *AuthRequest {
	h := http.Header{}
	if key != "" {
		h.Set(header, key)
	}
	return &AuthRequest{Headers: h}
}

func TestAPIKeyAuthenticator_Supports(t *testing.T) {
	a := NewAPIKeyAuthenticator("", NewMemoryAPIKeyStore())

	if a.Name() != "api_key" {
		t.Errorf("Name() = %q", a.Name())
	}
	if !a.Supports(context.Background(), apiKeyRequest("x-api-key", "k")) {
		t.Error("should support requests with the default header")
	}
	if a.Supports(context.Background(), apiKeyRequest("X-Other", "k")) {
		t.Error("should not support other headers")
	}
}

func TestAPIKeyAuthenticator_Authenticate(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := NewMemoryAPIKeyStore()
	store.Add(&APIKeyInfo{ID: "key-1", KeyHash: HashAPIKey("valid"), Roles: []string{"search"}})
	store.Add(&APIKeyInfo{ID: "key-2", KeyHash: HashAPIKey("stale"), ExpiresAt: now.Add(-time.Minute)})

	a := NewAPIKeyAuthenticator("X-API-Key", store)
	a.now = func() time.Time { return now }

	tests := []struct {
		name          string
		key           string
		wantAuth      bool
		wantErr       error
		wantPrincipal string
	}{
		{"valid key", "valid", true, nil, "key-1"},
		{"surrounding whitespace", "  valid ", true, nil, "key-1"},
		{"unknown key", "nope", false, ErrInvalidCredentials, ""},
		{"expired key", "stale", false, ErrTokenExpired, ""},
		{"missing key", "", false, ErrMissingCredentials, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Authenticate(context.Background(), apiKeyRequest("X-API-Key", tt.key))
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if res.Authenticated != tt.wantAuth {
				t.Fatalf("Authenticated = %v, want %v", res.Authenticated, tt.wantAuth)
			}
			if tt.wantAuth {
				if res.Identity.Principal != tt.wantPrincipal || res.Identity.Method != AuthMethodAPIKey {
					t.Errorf("Identity = %+v", res.Identity)
				}
				return
			}
			if !errors.Is(res.Error, tt.wantErr) {
				t.Errorf("Error = %v, want %v", res.Error, tt.wantErr)
			}
		})
	}
}

type failingStore struct{}

func (failingStore) Lookup(context.Context, string) (*APIKeyInfo, error) {
	return nil, errors.New("store offline")
}

func TestAPIKeyAuthenticator_StoreError(t *testing.T) {
	a := NewAPIKeyAuthenticator("", failingStore{})
	res, err := a.Authenticate(context.Background(), apiKeyRequest(DefaultAPIKeyHeader, "k"))
	if err == nil || res != nil {
		t.Errorf("Authenticate() = (%v, %v), want internal error", res, err)
	}
}

func TestMemoryAPIKeyStore(t *testing.T) {
	s := NewMemoryAPIKeyStore()
	h := HashAPIKey("k")
	s.Add(&APIKeyInfo{ID: "a", KeyHash: h})
	if s.Len() != 1 {
		t.Fatalf("Len() = %d", s.Len())
	}
	if info, _ := s.Lookup(context.Background(), h); info == nil || info.ID != "a" {
		t.Errorf("Lookup() = %+v", info)
	}
	s.Remove(h)
	if info, _ := s.Lookup(context.Background(), h); info != nil {
		t.Error("key should be removed")
	}
}

func TestHashAPIKey(t *testing.T) {
	h := HashAPIKey("secret")
	if len(h) != 64 || h != HashAPIKey("secret") || h == HashAPIKey("Secret") {
		t.Errorf("HashAPIKey() = %q", h)
	}
}
