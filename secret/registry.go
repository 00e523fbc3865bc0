package secret

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ProviderFactory builds a Provider from its configuration block.
type ProviderFactory func(cfg map[string]any) (Provider, error)

// Registry holds the provider factories available to configuration.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

// RegisterBuiltins adds the env and file providers.
func RegisterBuiltins(r *Registry) error {
	for name, f := range map[string]ProviderFactory{"env": NewEnvProvider, "file": NewFileProvider} {
		if err := r.Register(name, f); err != nil {
			return err
		}
	}
	return nil
}

// Register adds factory under name.
func (r *Registry) Register(name string, factory ProviderFactory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return ErrInvalidRegistration
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[name]; dup {
		return fmt.Errorf("%w: %q", ErrProviderExists, name)
	}
	r.factories[name] = factory
	return nil
}

// Create builds the provider registered as name.
func (r *Registry) Create(name string, cfg map[string]any) (Provider, error) {
	r.mu.RLock()
	factory := r.factories[strings.TrimSpace(name)]
	r.mu.RUnlock()

	if factory == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownProvider, name)
	}
	return factory(cfg)
}

// NewResolver builds every registered provider, configured from the
// matching entry of cfgs, and returns a resolver over them. Providers
// already built are closed if a later one fails.
func (r *Registry) NewResolver(strict bool, cfgs map[string]map[string]any) (*Resolver, error) {
	res := NewResolver(strict)
	for _, name := range r.List() {
		p, err := r.Create(name, cfgs[name])
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("create provider %q: %w", name, err)
		}
		res.Register(p)
	}
	return res, nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}
