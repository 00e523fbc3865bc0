package auth

import "fmt"

// Config selects the credential types accepted by the HTTP endpoint.
type Config struct {
	// APIKeys are plain-text keys. They are hashed on load.
	APIKeys []string

	// APIKeyHeader overrides DefaultAPIKeyHeader.
	APIKeyHeader string

	// JWTSecret enables bearer-token authentication when non-empty.
	JWTSecret string

	// JWT holds claim checks applied to bearer tokens.
	JWT JWTConfig
}

// Enabled reports whether any credential type is configured.
func (c Config) Enabled() bool {
	return len(c.APIKeys) > 0 || c.JWTSecret != ""
}

// New builds the authenticator described by cfg. It returns (nil, nil)
// when authentication is disabled.
func New(cfg Config) (Authenticator, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	var auths []Authenticator
	if len(cfg.APIKeys) > 0 {
		store := NewMemoryAPIKeyStore()
		for i, key := range cfg.APIKeys {
			if key == "" {
				return nil, fmt.Errorf("auth: api key %d is empty", i+1)
			}
			store.Add(&APIKeyInfo{
				ID:      fmt.Sprintf("key-%d", i+1),
				KeyHash: HashAPIKey(key),
			})
		}
		auths = append(auths, NewAPIKeyAuthenticator(cfg.APIKeyHeader, store))
	}
	if cfg.JWTSecret != "" {
		auths = append(auths, NewJWTAuthenticator(cfg.JWT, NewStaticKeyProvider([]byte(cfg.JWTSecret))))
	}

	if len(auths) == 1 {
		return auths[0], nil
	}
	return NewCompositeAuthenticator(auths...), nil
}
