package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/websearch/cache"
	"github.com/jonwraymond/websearch/observe"
	"github.com/jonwraymond/websearch/resilience"
)

const (
	// Name is the tool name exposed to models.
	Name = "search_web"

	// Description is the tool description exposed to models.
	Description = "Search the web to lookup information and answer user queries using Google Programmable Search."

	// Namespace scopes search_web entries in the cache.
	Namespace = "google_cse_search"
)

var toolMeta = observe.ToolMeta{Namespace: "google_cse", Name: Name}

// Definition describes the tool to a tool-calling layer.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// Tool is the search_web tool.
type Tool struct {
	cfg        Config
	client     *client
	httpClient *http.Client
	cache      *cache.CacheMiddleware
	exec       *resilience.Executor
	mw         *observe.Middleware
	logger     observe.Logger
	group      singleflight.Group
	run        observe.ExecuteFunc
}

// Option configures a Tool.
type Option func(*Tool)

// WithCache enables result caching. Without it every call goes remote.
func WithCache(m *cache.CacheMiddleware) Option {
	return func(t *Tool) {
		t.cache = m
	}
}

// WithHTTPClient replaces the default pooled client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Tool) {
		t.httpClient = c
	}
}

// WithExecutor replaces the executor built from Config.
func WithExecutor(e *resilience.Executor) Option {
	return func(t *Tool) {
		t.exec = e
	}
}

// WithMiddleware instruments invocations with tracing, metrics and logging.
func WithMiddleware(m *observe.Middleware) Option {
	return func(t *Tool) {
		t.mw = m
	}
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(t *Tool) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a Tool. Missing credentials are not an error here: the tool
// is still created and reports "not configured" on every call.
func New(cfg Config, opts ...Option) *Tool {
	t := &Tool{
		cfg:    cfg.withDefaults(),
		logger: observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.logger = t.logger.WithTool(toolMeta)
	if t.httpClient == nil {
		t.httpClient = NewHTTPClient(t.cfg.Timeout)
	}
	t.client = &client{endpoint: t.cfg.Endpoint, http: t.httpClient}
	if t.exec == nil {
		t.exec = newExecutor(t.cfg, t.logger)
	}
	if t.mw == nil {
		t.mw = observe.NewMiddleware(nil, nil, nil)
	}
	t.run = t.mw.Wrap(t.execute)
	return t
}

func newExecutor(cfg Config, logger observe.Logger) *resilience.Executor {
	opts := []resilience.ExecutorOption{resilience.WithTimeout(cfg.Timeout)}
	if cfg.RateLimit > 0 {
		opts = append(opts, resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:        cfg.RateLimit,
			Burst:       cfg.Burst,
			WaitOnLimit: true,
			MaxWait:     cfg.Timeout,
		})))
	}
	if cfg.MaxConcurrent > 0 {
		opts = append(opts, resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.Timeout,
		})))
	}
	if cfg.CircuitBreaker.Enabled {
		opts = append(opts, resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:         Name,
			MaxFailures:  cfg.CircuitBreaker.MaxFailures,
			ResetTimeout: cfg.CircuitBreaker.ResetTimeout,
			IsFailure:    countsAgainstCircuit,
			OnStateChange: func(from, to resilience.State) {
				logger.Warn(context.Background(), "circuit breaker state changed",
					observe.Field{Key: "from", Value: from.String()},
					observe.Field{Key: "to", Value: to.String()},
				)
			},
		})))
	}
	exec := resilience.NewExecutor(opts...)
	logger.Debug(context.Background(), "executor configured",
		observe.Field{Key: "stages", Value: exec.Stages()},
	)
	return exec
}

// Definition returns the tool's name, description and input schema.
func (t *Tool) Definition() Definition {
	return Definition{Name: Name, Description: Description, InputSchema: InputSchema()}
}

// Configured reports whether API credentials are present.
func (t *Tool) Configured() bool {
	return t.cfg.Configured()
}

// NumResults returns the effective result count.
func (t *Tool) NumResults() int {
	return t.cfg.NumResults
}

// Invoke runs one search and always returns an envelope; failures are
// reported in its error field.
func (t *Tool) Invoke(ctx context.Context, in Input) Envelope {
	env, _ := t.Search(ctx, in.Query)
	return env
}

// InvokeJSON validates raw arguments against the input schema and runs
// the search. Schema failures return an error envelope and an error
// wrapping ErrInvalidInput; every other outcome returns a nil error.
func (t *Tool) InvokeJSON(ctx context.Context, raw []byte) (Envelope, error) {
	in, err := ParseInput(raw)
	if err != nil {
		return Envelope{Error: err.Error()}, err
	}
	return t.Invoke(ctx, in), nil
}

// Search runs one search and returns the envelope together with the
// classified failure, if any. An empty result set is not a failure.
func (t *Tool) Search(ctx context.Context, query string) (Envelope, error) {
	out, err := t.run(ctx, toolMeta, Input{Query: query})
	if err != nil {
		return errorEnvelope(err, t.timeout()), err
	}
	env, _ := out.(Envelope)
	return env, nil
}

func (t *Tool) timeout() time.Duration {
	if d := t.exec.Timeout(); d > 0 {
		return d
	}
	return t.cfg.Timeout
}

type lookupResult struct {
	results []Result
	hit     bool
}

func (t *Tool) execute(ctx context.Context, _ observe.ToolMeta, input any) (any, error) {
	query := input.(Input).Query

	if !t.cfg.Configured() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	params := map[string]any{
		"q":   query,
		"num": t.cfg.NumResults,
		"cx":  t.cfg.CX,
	}
	// The shared call outlives any single caller; the executor timeout
	// bounds it. Each caller still stops waiting when its own ctx ends.
	detached := context.WithoutCancel(ctx)
	ch := t.group.DoChan(query, func() (any, error) {
		return t.lookup(detached, query, params)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
	v, err := res.Val, res.Err
	if errors.Is(err, ErrNoResults) {
		t.logger.Info(ctx, "search returned no results", observe.Field{Key: "query", Value: query})
		return Envelope{NoResults: true}, nil
	}
	if err != nil {
		return nil, err
	}

	found := v.(lookupResult)
	t.logger.Info(ctx, "search completed",
		observe.Field{Key: "query", Value: query},
		observe.Field{Key: "cache_hit", Value: found.hit},
		observe.Field{Key: "results", Value: len(found.results)},
		observe.Field{Key: "shared", Value: res.Shared},
	)
	return resultsEnvelope(slices.Clone(found.results)), nil
}

func (t *Tool) lookup(ctx context.Context, query string, params map[string]any) (lookupResult, error) {
	load := func(ctx context.Context) (any, error) {
		results, err := t.fetch(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, ErrNoResults
		}
		return cachedResults{Results: results}, nil
	}

	if t.cache == nil {
		v, err := load(ctx)
		if err != nil {
			return lookupResult{}, err
		}
		return lookupResult{results: v.(cachedResults).Results}, nil
	}

	var payload cachedResults
	hit, err := t.cache.Execute(ctx, Namespace, params, &payload, load)
	if err != nil {
		return lookupResult{}, err
	}
	if len(payload.Results) == 0 {
		return lookupResult{}, ErrNoResults
	}
	return lookupResult{results: payload.Results, hit: hit}, nil
}

// fetch runs one remote call through the executor. The result travels on
// a channel because a timed-out call may still complete in the background.
func (t *Tool) fetch(ctx context.Context, query string) ([]Result, error) {
	out := make(chan []Result, 1)
	err := t.exec.Execute(ctx, func(ctx context.Context) error {
		results, err := t.client.search(ctx, query, t.cfg.NumResults, t.cfg.APIKey, t.cfg.CX)
		if err != nil {
			return err
		}
		out <- results
		return nil
	})
	if err != nil {
		return nil, err
	}
	return <-out, nil
}
