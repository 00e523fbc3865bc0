package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonwraymond/websearch/observe"
)

// LoaderFunc computes the value for a cache miss.
type LoaderFunc func(ctx context.Context) (any, error)

// LookupRecorder receives one call per cache lookup.
type LookupRecorder interface {
	RecordCacheLookup(ctx context.Context, namespace string, hit bool)
}

// CacheMiddleware implements cache-aside around a loader.
type CacheMiddleware struct {
	store    *Store
	policy   Policy
	recorder LookupRecorder
	logger   observe.Logger
}

// NewCacheMiddleware creates a new cache middleware.
// recorder may be nil.
func NewCacheMiddleware(store *Store, policy Policy, recorder LookupRecorder) *CacheMiddleware {
	logger := observe.NopLogger()
	if store != nil {
		logger = store.logger
	}
	return &CacheMiddleware{
		store:    store,
		policy:   policy,
		recorder: recorder,
		logger:   logger,
	}
}

// Execute fills dst from the cache or, on a miss, from load.
//
// On a hit the loader is not called and hit is true. On a miss the loader
// runs; its error is returned unchanged and nothing is cached. A successful
// value is stored and then decoded into dst through the same JSON path a hit
// takes, so callers see identical shapes either way. A failed cache write is
// logged and does not fail the call.
func (m *CacheMiddleware) Execute(
	ctx context.Context,
	namespace string,
	params map[string]any,
	dst any,
	load LoaderFunc,
) (hit bool, err error) {
	if m == nil || m.store == nil {
		return false, ErrNilCache
	}
	if dst == nil {
		return false, ErrNilTarget
	}

	if !m.policy.ShouldCache() {
		v, err := load(ctx)
		if err != nil {
			return false, err
		}
		return false, assign(v, dst)
	}

	if m.store.Get(ctx, namespace, params, dst) {
		m.record(ctx, namespace, true)
		return true, nil
	}
	m.record(ctx, namespace, false)

	v, err := load(ctx)
	if err != nil {
		return false, err
	}

	if err := m.store.Set(ctx, namespace, params, v); err != nil {
		m.logger.Warn(ctx, "cache write failed",
			observe.Field{Key: "namespace", Value: namespace},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}

	return false, assign(v, dst)
}

func (m *CacheMiddleware) record(ctx context.Context, namespace string, hit bool) {
	if m.recorder != nil {
		m.recorder.RecordCacheLookup(ctx, namespace, hit)
	}
}

func assign(v any, dst any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode payload: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("cache: decode payload: %w", err)
	}
	return nil
}
