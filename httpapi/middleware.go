package httpapi

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/websearch/observe"
)

// requestID accepts an inbound X-Request-ID or mints a UUID, echoes it on
// the response and stores it in the request context for log lines.
func requestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(observe.WithRequestID(req.Context(), id)))
		},
	})
}

type requestMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newRequestMetrics(reg prometheus.Registerer) (*requestMetrics, error) {
	m := &requestMetrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "websearch_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "websearch_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	for _, c := range []prometheus.Collector{m.total, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// observeRequests records metrics and a debug log line per request. Handler
// errors are rendered here so the recorded status is the one sent.
func (s *Server) observeRequests() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			route := c.Path()
			if route == "" {
				route = req.URL.Path
			}
			status := c.Response().Status
			elapsed := time.Since(start)

			if s.metrics != nil {
				s.metrics.total.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
				s.metrics.duration.WithLabelValues(req.Method, route).Observe(elapsed.Seconds())
			}
			s.logger.Debug(req.Context(), "http request",
				observe.Field{Key: "method", Value: req.Method},
				observe.Field{Key: "route", Value: route},
				observe.Field{Key: "status", Value: status},
				observe.Field{Key: "duration_ms", Value: elapsed.Milliseconds()},
			)
			return nil
		}
	}
}

func metricsHandler(g prometheus.Gatherer) echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
