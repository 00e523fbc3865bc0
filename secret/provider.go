package secret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider reads secrets from environment variables.
// The reference is the variable name, optionally prefixed.
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates an env provider. Config key "prefix" is prepended to
// every reference.
func NewEnvProvider(cfg map[string]any) (Provider, error) {
	prefix, _ := cfg["prefix"].(string)
	return &EnvProvider{prefix: prefix}, nil
}

func (p *EnvProvider) Name() string { return "env" }

func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	key := p.prefix + ref
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", fmt.Errorf("secret: environment variable %q is not set", key)
	}
	return v, nil
}

func (p *EnvProvider) Close() error { return nil }

// FileProvider reads secrets from files, such as mounted container secrets.
// Trailing newlines are trimmed.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a file provider. Config key "dir" resolves relative
// references against a base directory.
func NewFileProvider(cfg map[string]any) (Provider, error) {
	dir, _ := cfg["dir"].(string)
	return &FileProvider{dir: dir}, nil
}

func (p *FileProvider) Name() string { return "file" }

func (p *FileProvider) Resolve(_ context.Context, ref string) (string, error) {
	path := ref
	if p.dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(p.dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("secret: read %s: %w", path, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (p *FileProvider) Close() error { return nil }
