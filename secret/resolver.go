package secret

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

const refPrefix = "secretref:"

// Ref is a parsed secret reference, secretref:<provider>:<path>.
type Ref struct {
	Provider string
	Path     string
}

func (r Ref) String() string {
	return refPrefix + r.Provider + ":" + r.Path
}

// ParseSecretRef parses value when the whole value is one reference.
func ParseSecretRef(value string) (provider string, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, refPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" || strings.ContainsAny(ref, " \t\r\n") {
		return "", "", false
	}
	return provider, ref, true
}

// embeddedRef finds references inside longer values such as
// "Bearer secretref:env:TOKEN".
var embeddedRef = regexp.MustCompile(`secretref:([^:\s]+):(\S+)`)

// Resolver turns configuration values into plain secrets. ${VAR}
// references are expanded first; the result is then resolved through the
// provider named by each secretref.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver over providers. A strict resolver
// rejects references that resolve to an empty string.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider, len(providers)), strict: strict}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces the provider under its Name.
func (r *Resolver) Register(p Provider) {
	if r == nil || p == nil {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	r.providers[p.Name()] = p
}

// ResolveValue expands environment variables in value and resolves any
// secret references. A nil Resolver only expands the environment.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil {
		return "", err
	}
	if r == nil {
		return expanded, nil
	}

	if provider, path, ok := ParseSecretRef(expanded); ok {
		return r.lookup(ctx, Ref{Provider: provider, Path: path})
	}

	var firstErr error
	out := embeddedRef.ReplaceAllStringFunc(expanded, func(match string) string {
		if firstErr != nil {
			return match
		}
		m := embeddedRef.FindStringSubmatch(match)
		secret, err := r.lookup(ctx, Ref{Provider: m[1], Path: m[2]})
		if err != nil {
			firstErr = err
			return match
		}
		return secret
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// ResolveSlice resolves every element of values.
func (r *Resolver) ResolveSlice(ctx context.Context, values []string) ([]string, error) {
	if values == nil {
		return nil, nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		s, err := r.ResolveValue(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("resolve item %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// Close closes every provider in name order and joins their errors.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(r.providers)) {
		if err := r.providers[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close provider %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Resolver) lookup(ctx context.Context, ref Ref) (string, error) {
	p := r.providers[ref.Provider]
	if p == nil {
		return "", fmt.Errorf("%w %q", ErrUnknownProvider, ref.Provider)
	}
	v, err := p.Resolve(ctx, ref.Path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ref.Provider, err)
	}
	if v == "" && r.strict {
		return "", fmt.Errorf("%w from provider %q", ErrEmptySecret, ref.Provider)
	}
	return v, nil
}
