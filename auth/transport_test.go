package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware(t *testing.T) {
	a, err := New(Config{APIKeys: []string{"valid"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var principal string
	h := Middleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name          string
		key           string
		wantCode      int
		wantPrincipal string
	}{
		{"accepted", "valid", http.StatusNoContent, "key-1"},
		{"rejected", "wrong", http.StatusUnauthorized, ""},
		{"missing", "", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal = ""
			req := httptest.NewRequest(http.MethodPost, "/v1/tools/search_web", nil)
			if tt.key != "" {
				req.Header.Set(DefaultAPIKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if principal != tt.wantPrincipal {
				t.Errorf("principal = %q, want %q", principal, tt.wantPrincipal)
			}
			if tt.wantCode == http.StatusUnauthorized {
				var body map[string]string
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
					t.Errorf("body = %q", rec.Body.String())
				}
				if rec.Header().Get("WWW-Authenticate") == "" {
					t.Error("missing WWW-Authenticate header")
				}
			}
		})
	}
}

func TestMiddleware_Disabled(t *testing.T) {
	var anonymous bool
	h := Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		anonymous = IdentityFromContext(r.Context()).IsAnonymous()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !anonymous {
		t.Error("disabled auth should attach the anonymous identity")
	}
}
