package core

import (
	"context"
	"time"

	"tmfstock/pkg/domain"
)

// Logger is the structured logging surface the service writes to. Arguments
// after the message are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MetricsRecorder receives one observation per service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// TraceSpan is ended exactly once with the operation outcome.
type TraceSpan interface {
	End(err error)
}

// Tracer opens a span around each service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopTracer struct{}

type noopSpan struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

func (noopSpan) End(error) {}

// Clock supplies the instant stamped on movements and loans.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// ServiceOption customises a Service.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	clock   Clock
	initial *domain.Snapshot
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		clock:   ClockFunc(func() time.Time { return time.Now().UTC() }),
	}
}

// WithLogger sets the service logger.
func WithLogger(l Logger) ServiceOption {
	return func(c *serviceConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(c *serviceConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(t Tracer) ServiceOption {
	return func(c *serviceConfig) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithClock overrides the clock. It only reaches the store when the service
// builds its own store through NewInMemoryService.
func WithClock(clk Clock) ServiceOption {
	return func(c *serviceConfig) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithInitialState loads snap into the store built by NewInMemoryService.
// Stores passed to NewService ignore it.
func WithInitialState(snap domain.Snapshot) ServiceOption {
	return func(c *serviceConfig) {
		c.initial = &snap
	}
}
