package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/websearch/secret"
)

// ResolveSecrets replaces secret references and ${VAR} expansions in the
// credential fields of cfg. Providers are created from cfg.Secrets and
// closed before returning.
func ResolveSecrets(ctx context.Context, cfg *Config) (err error) {
	reg := secret.NewRegistry()
	if err := secret.RegisterBuiltins(reg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	res, err := reg.NewResolver(cfg.Secrets.Strict, cfg.Secrets.Providers)
	if err != nil {
		return fmt.Errorf("config: secrets: %w", err)
	}
	defer func() {
		err = errors.Join(err, res.Close())
	}()

	fields := []struct {
		name string
		dst  *string
	}{
		{"search.google_cse_api_key", &cfg.Search.APIKey},
		{"search.google_cse_cx", &cfg.Search.CX},
		{"cache.redis.password", &cfg.Cache.Redis.Password},
		{"server.jwt.secret", &cfg.Server.JWT.Secret},
	}
	for _, f := range fields {
		if *f.dst == "" {
			continue
		}
		v, err := res.ResolveValue(ctx, *f.dst)
		if err != nil {
			return fmt.Errorf("config: resolve %s: %w", f.name, err)
		}
		*f.dst = v
	}

	keys, err := res.ResolveSlice(ctx, cfg.Server.APIKeys)
	if err != nil {
		return fmt.Errorf("config: resolve server.api_keys: %w", err)
	}
	cfg.Server.APIKeys = keys
	return nil
}
