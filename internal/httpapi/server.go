// Package httpapi exposes the inventory core as a JSON API served by echo.
package httpapi

import (
	"expvar"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"tmfstock/internal/attachments"
	"tmfstock/internal/core"
	"tmfstock/internal/identity"
	"tmfstock/pkg/domain"
)

// Server wires the core service to HTTP routes.
type Server struct {
	svc      *core.Service
	users    *identity.Directory
	sessions *identity.Sessions
	codec    attachments.Codec
	metrics  http.Handler
	debug    bool
	logger   core.Logger
	loc      *time.Location
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithAttachments sets the receipt codec. Defaults to data URLs.
func WithAttachments(codec attachments.Codec) Option {
	return func(s *Server) {
		if codec != nil {
			s.codec = codec
		}
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithDebugVars mounts the expvar handler on GET /debug/vars.
func WithDebugVars() Option {
	return func(s *Server) { s.debug = true }
}

// WithLogger routes request and error logs to l.
func WithLogger(l core.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocation sets the zone used to interpret date-only query parameters.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the clock used for report file names.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a Server. Call Handler to obtain the echo instance.
func New(svc *core.Service, users *identity.Directory, sessions *identity.Sessions, opts ...Option) *Server {
	s := &Server{
		svc:      svc,
		users:    users,
		sessions: sessions,
		codec:    attachments.DataURLCodec{MaxSize: attachments.DefaultMaxSize},
		logger:   nopLogger{},
		loc:      time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the echo instance with every route registered.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "request_id", v.RequestID)
			return nil
		},
	}))
	e.Use(middleware.BodyLimit("12M"))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics))
	}
	if s.debug {
		e.GET("/debug/vars", echo.WrapHandler(expvar.Handler()))
	}

	api := e.Group("/api")
	api.Use(s.authenticate())
	s.registerSession(api)
	s.registerCatalog(api)
	s.registerStock(api)
	s.registerLoans(api)
	return e
}

// mutationBody wraps the record returned by a mutation with its rule
// warnings.
type mutationBody struct {
	Data     any                `json:"data,omitempty"`
	Warnings []domain.Violation `json:"warnings,omitempty"`
}

func mutation(data any, res domain.Result) mutationBody {
	return mutationBody{Data: data, Warnings: res.Warnings()}
}

// written answers a mutation, or 204 when it carried no record and raised no
// warning.
func written(c echo.Context, status int, data any, res domain.Result) error {
	body := mutation(data, res)
	if data == nil && len(body.Warnings) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(status, body)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
