package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestRegistry_RegisterAndCreate(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("stub", func(map[string]any) (Provider, error) {
		return &stubProvider{name: "stub"}, nil
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := reg.Register("stub", NewEnvProvider); err == nil {
		t.Error("duplicate registration should fail")
	}
	if err := reg.Register(" ", NewEnvProvider); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("blank name error = %v", err)
	}
	if err := reg.Register("nil", nil); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("nil factory error = %v", err)
	}

	p, err := reg.Create("stub", nil)
	if err != nil || p.Name() != "stub" {
		t.Fatalf("Create() = (%v, %v)", p, err)
	}
	if _, err := reg.Create("missing", nil); err == nil {
		t.Error("Create of unregistered provider should fail")
	}
}

func TestRegisterBuiltins(t *testing.T) {
	reg := NewRegistry()
	if err := RegisterBuiltins(reg); err != nil {
		t.Fatalf("RegisterBuiltins() error = %v", err)
	}
	if got := reg.List(); !reflect.DeepEqual(got, []string{"env", "file"}) {
		t.Errorf("List() = %v", got)
	}
}

func TestRegistry_NewResolver(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cse_key"), []byte("file-key\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WEBSEARCH_TEST_CX", "engine-1")

	reg := NewRegistry()
	_ = RegisterBuiltins(reg)
	r, err := reg.NewResolver(true, map[string]map[string]any{
		"env":  {"prefix": "WEBSEARCH_TEST_"},
		"file": {"dir": dir},
	})
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	defer r.Close()

	ctx := context.Background()
	if got, err := r.ResolveValue(ctx, "secretref:env:CX"); err != nil || got != "engine-1" {
		t.Errorf("env ref = (%q, %v)", got, err)
	}
	if got, err := r.ResolveValue(ctx, "secretref:file:cse_key"); err != nil || got != "file-key" {
		t.Errorf("file ref = (%q, %v)", got, err)
	}
	if _, err := r.ResolveValue(ctx, "secretref:env:MISSING"); err == nil {
		t.Error("missing env var should fail")
	}
	if _, err := r.ResolveValue(ctx, "secretref:file:nope"); err == nil {
		t.Error("missing file should fail")
	}
}

func TestRegistry_NewResolverFactoryError(t *testing.T) {
	reg := NewRegistry()
	want := errors.New("bad config")
	_ = reg.Register("broken", func(map[string]any) (Provider, error) { return nil, want })

	if _, err := reg.NewResolver(false, nil); !errors.Is(err, want) {
		t.Errorf("NewResolver() error = %v, want %v", err, want)
	}
}

func TestRegistry_Sentinels(t *testing.T) {
	reg := NewRegistry()
	if err := RegisterBuiltins(reg); err != nil {
		t.Fatalf("RegisterBuiltins() = %v", err)
	}
	if err := reg.Register("env", NewEnvProvider); !errors.Is(err, ErrProviderExists) {
		t.Errorf("duplicate Register() = %v, want ErrProviderExists", err)
	}
	if _, err := reg.Create("vault", nil); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Create(vault) = %v, want ErrUnknownProvider", err)
	}
}
