package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonwraymond/websearch/observe"
)

// Store maps logical requests to JSON payloads on top of a Cache backend.
type Store struct {
	backend Cache
	keyer   Keyer
	logger  observe.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKeyer replaces the DefaultKeyer.
func WithKeyer(k Keyer) StoreOption {
	return func(s *Store) {
		if k != nil {
			s.keyer = k
		}
	}
}

// WithLogger sets the logger used for decode and write failures.
func WithLogger(l observe.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore wraps backend with JSON encoding and key derivation.
func NewStore(backend Cache, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		keyer:   NewDefaultKeyer(),
		logger:  observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the underlying Cache.
func (s *Store) Backend() Cache {
	return s.backend
}

// Key returns the validated cache key for (namespace, params).
func (s *Store) Key(namespace string, params map[string]any) (string, error) {
	key, err := s.keyer.Key(namespace, params)
	if err != nil {
		return "", err
	}
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// Get decodes the payload stored for (namespace, params) into dst.
// It returns false on a miss, and also when the stored payload cannot be
// decoded: a corrupt entry is a miss, not an error.
func (s *Store) Get(ctx context.Context, namespace string, params map[string]any, dst any) bool {
	if s == nil || s.backend == nil || dst == nil {
		return false
	}
	key, err := s.Key(namespace, params)
	if err != nil {
		s.logger.Warn(ctx, "cache key derivation failed",
			observe.Field{Key: "namespace", Value: namespace},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return false
	}

	data, ok := s.backend.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Debug(ctx, "failed to decode cached data",
			observe.Field{Key: "namespace", Value: namespace},
			observe.Field{Key: "cache_key", Value: key},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return false
	}
	return true
}

// Set encodes v and upserts it for (namespace, params).
func (s *Store) Set(ctx context.Context, namespace string, params map[string]any, v any) error {
	if s == nil || s.backend == nil {
		return ErrNilCache
	}
	key, err := s.Key(namespace, params)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode payload: %w", err)
	}
	return s.backend.Set(ctx, key, data)
}
