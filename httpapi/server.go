package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonwraymond/websearch/auth"
	"github.com/jonwraymond/websearch/health"
	"github.com/jonwraymond/websearch/observe"
	"github.com/jonwraymond/websearch/search"
)

// Config holds listener settings.
type Config struct {
	Addr         string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Deps are the components the server exposes. Tool and Health are required.
type Deps struct {
	Tool          *search.Tool
	Health        *health.Aggregator
	Authenticator auth.Authenticator

	// MCP mounts an MCP transport at /mcp when non-nil.
	MCP http.Handler

	// Registerer receives the HTTP request metrics and Gatherer backs
	// /metrics. Either may be nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger observe.Logger
}

// Server is the HTTP front end.
type Server struct {
	echo    *echo.Echo
	cfg     Config
	deps    Deps
	logger  observe.Logger
	metrics *requestMetrics
}

// New builds the router. It fails only when the request metrics cannot be
// registered.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Tool == nil || deps.Health == nil {
		return nil, errors.New("httpapi: tool and health aggregator are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, cfg: cfg, deps: deps, logger: logger}
	if deps.Registerer != nil {
		m, err := newRequestMetrics(deps.Registerer)
		if err != nil {
			return nil, err
		}
		s.metrics = m
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(requestID())
	s.echo.Use(s.observeRequests())
	if len(s.cfg.CORSOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: s.cfg.CORSOrigins}))
	}
}

func (s *Server) setupRoutes() {
	s.echo.GET("/healthz", echo.WrapHandler(health.LivenessHandler()))
	s.echo.GET("/readyz", echo.WrapHandler(health.ReadinessHandler(s.deps.Health)))
	s.echo.GET("/health", echo.WrapHandler(health.DetailedHandler(s.deps.Health)))
	s.echo.GET("/health/:name", s.singleCheck)
	if s.deps.Gatherer != nil {
		s.echo.GET("/metrics", metricsHandler(s.deps.Gatherer))
	}

	authn := echo.WrapMiddleware(auth.Middleware(s.deps.Authenticator))

	v1 := s.echo.Group("/v1", authn, middleware.BodyLimit("1M"))
	v1.GET("/tools", s.listTools)
	v1.POST("/tools/"+search.Name, s.searchWeb)

	if s.deps.MCP != nil {
		s.echo.Any("/mcp", echo.WrapHandler(s.deps.MCP), authn)
	}
}

func (s *Server) singleCheck(c echo.Context) error {
	health.SingleCheckHandler(s.deps.Health, c.Param("name")).ServeHTTP(c.Response(), c.Request())
	return nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on cfg.Addr and blocks until Shutdown. It returns nil after
// a clean shutdown.
func (s *Server) Start() error {
	s.echo.Server.ReadTimeout = s.cfg.ReadTimeout
	s.echo.Server.WriteTimeout = s.cfg.WriteTimeout
	s.echo.Server.IdleTimeout = s.cfg.IdleTimeout

	s.logger.Info(context.Background(), "http server listening", observe.Field{Key: "addr", Value: s.cfg.Addr})
	if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
