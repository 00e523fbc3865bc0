package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"

	"github.com/jonwraymond/websearch/auth"
	"github.com/jonwraymond/websearch/cache"
	"github.com/jonwraymond/websearch/config"
	"github.com/jonwraymond/websearch/health"
	"github.com/jonwraymond/websearch/observe"
	"github.com/jonwraymond/websearch/search"
)

// app owns every long-lived component. Close releases them in reverse
// construction order.
type app struct {
	cfg      *config.Config
	registry *prometheus.Registry
	obs      observe.Observer
	logger   observe.Logger
	backend  cache.Cache
	tool     *search.Tool
	health   *health.Aggregator
	authn    auth.Authenticator
	cron     *cron.Cron
	closers  []func() error
}

func newApp(ctx context.Context, cfgPath string) (_ *app, err error) {
	cfg, err := config.Load(ctx, cfgPath)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obsCfg := cfg.Observe
	obsCfg.Version = version
	obsCfg.Output = os.Stderr
	obsCfg.Registerer = a.registry
	if a.obs, err = observe.NewObserver(ctx, obsCfg); err != nil {
		return nil, fmt.Errorf("observer: %w", err)
	}
	a.logger = a.obs.Logger()
	a.closers = append(a.closers, func() error { return a.obs.Shutdown(context.Background()) })

	opts := []search.Option{search.WithLogger(a.logger)}
	mw, err := observe.MiddlewareFromObserver(a.obs)
	if err != nil {
		return nil, fmt.Errorf("observe middleware: %w", err)
	}
	opts = append(opts, search.WithMiddleware(mw))

	if err := a.openCache(ctx); err != nil {
		return nil, err
	}
	if a.backend != nil {
		store := cache.NewStore(a.backend, cache.WithLogger(a.logger))
		opts = append(opts, search.WithCache(cache.NewCacheMiddleware(store, cfg.CachePolicy(), a.obs.Metrics())))
	}

	a.tool = search.New(cfg.ToolConfig(), opts...)
	if !a.tool.Configured() {
		a.logger.Warn(ctx, "google custom search credentials missing; every search will report not configured")
	}

	if a.authn, err = auth.New(cfg.AuthConfig()); err != nil {
		return nil, err
	}

	a.health = health.NewAggregator()
	a.health.Register("search", health.NewConfiguredChecker("search", a.tool.Configured))
	a.health.Register("memory", health.NewMemoryChecker(health.MemoryCheckerConfig{}))
	if p, ok := a.backend.(health.Pinger); ok {
		a.health.Register("cache", health.NewPingChecker("cache", p, a.cacheDetails))
	}

	if err := a.scheduleSweep(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openCache(ctx context.Context) error {
	cfg := a.cfg.Cache
	policy := a.cfg.CachePolicy()

	switch cfg.Driver {
	case config.DriverSQLite:
		c, err := cache.OpenSQLite(ctx, cache.SQLiteConfig{
			Path:      cfg.Path,
			Ephemeral: cfg.Ephemeral,
			Policy:    policy,
			Logger:    a.logger,
		})
		if err != nil {
			return err
		}
		a.backend = c
		a.closers = append(a.closers, c.Close)
	case config.DriverMemory:
		a.backend = cache.NewMemoryCache(policy)
	case config.DriverRedis:
		client := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, client.Close)
		a.backend = cache.NewRedisCache(client, cfg.Redis.Prefix, policy, a.logger)
	case config.DriverNone:
	default:
		return fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}

	a.logger.Info(ctx, "cache ready", observe.Field{Key: "driver", Value: cfg.Driver})
	return nil
}

func (a *app) cacheDetails(ctx context.Context) map[string]any {
	details := map[string]any{"driver": a.cfg.Cache.Driver}
	switch c := a.backend.(type) {
	case *cache.SQLiteCache:
		details["path"] = c.Path()
		if n, err := c.Len(ctx); err == nil {
			details["entries"] = n
		}
	case *cache.MemoryCache:
		details["entries"] = c.Len()
	}
	return details
}

// scheduleSweep runs Sweep on the configured cron schedule. Backends that
// expire entries themselves are skipped.
func (a *app) scheduleSweep() error {
	spec := a.cfg.Cache.SweepSchedule
	if spec == "" {
		return nil
	}
	sweeper, ok := a.backend.(cache.Sweeper)
	if !ok {
		a.logger.Info(context.Background(), "cache driver expires entries itself; sweep schedule ignored",
			observe.Field{Key: "driver", Value: a.cfg.Cache.Driver})
		return nil
	}

	a.cron = cron.New()
	_, err := a.cron.AddFunc(spec, func() {
		ctx := context.Background()
		n, err := sweeper.Sweep(ctx)
		if err != nil {
			a.logger.Warn(ctx, "scheduled cache sweep failed", observe.Field{Key: "error", Value: err.Error()})
			return
		}
		a.logger.Debug(ctx, "scheduled cache sweep", observe.Field{Key: "deleted", Value: n})
	})
	if err != nil {
		return fmt.Errorf("cache sweep schedule: %w", err)
	}
	a.cron.Start()
	return nil
}

// Close stops the sweep and releases resources. Errors are logged.
func (a *app) Close() {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil && a.logger != nil {
		a.logger.Error(context.Background(), "shutdown", observe.Field{Key: "error", Value: err.Error()})
	}
}
