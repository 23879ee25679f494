package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"tmfstock/pkg/domain"
)

type logEntry struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	entries []logEntry
}

func (c *captureLogger) Debug(msg string, args ...any) { c.add("debug", msg, args) }
func (c *captureLogger) Info(msg string, args ...any)  { c.add("info", msg, args) }
func (c *captureLogger) Warn(msg string, args ...any)  { c.add("warn", msg, args) }
func (c *captureLogger) Error(msg string, args ...any) { c.add("error", msg, args) }

func (c *captureLogger) add(level, msg string, args []any) {
	c.entries = append(c.entries, logEntry{level: level, msg: msg, args: args})
}

func (c *captureLogger) has(level, msg string) bool {
	for _, e := range c.entries {
		if e.level == level && e.msg == msg {
			return true
		}
	}
	return false
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	started []string
	ended   []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

func TestServiceObservability(t *testing.T) {
	ctx := context.Background()
	logger := &captureLogger{}
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}
	svc := newTestService(t, WithLogger(logger), WithMetricsRecorder(metrics), WithTracer(tracer))
	tech := technicianID(t, svc)

	p, _, err := svc.CreateProduct(ctx, domain.ProductPayload{Name: "Gants nitrile taille L", InitialQuantity: 10, Threshold: 5})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if !metrics.has("create_product", true) || !logger.has("info", "operation committed") {
		t.Fatalf("expected success observation for create_product")
	}

	if _, _, err := svc.Distribute(ctx, DistributeInput{ProductID: p.ID, TechnicianID: tech, Quantity: 6}); err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if !logger.has("warn", "rule warning") {
		t.Fatalf("expected threshold warning to be logged")
	}

	if _, _, err := svc.Distribute(ctx, DistributeInput{ProductID: p.ID, TechnicianID: tech, Quantity: 50}); err == nil {
		t.Fatalf("expected insufficient stock")
	}
	if !metrics.has("distribute", false) || !logger.has("info", "operation rejected") {
		t.Fatalf("expected rejected distribute to be observed")
	}

	if _, _, err := svc.CreateToolLoan(ctx, domain.ToolLoanPayload{ToolName: "Pince", Status: domain.LoanOverdue}); err == nil {
		t.Fatalf("expected custody violation")
	}
	if !logger.has("warn", "operation blocked") {
		t.Fatalf("expected blocked operation warning")
	}

	if _, _, err := svc.Restock(ctx, RestockInput{ProductID: "missing", Quantity: 1}); err == nil {
		t.Fatalf("expected missing product")
	}
	if !logger.has("error", "operation failed") {
		t.Fatalf("expected failure to be logged as error")
	}

	if len(tracer.started) != len(tracer.ended) {
		t.Fatalf("every span must end: %d started, %d ended", len(tracer.started), len(tracer.ended))
	}
	var failed int
	for _, rec := range tracer.ended {
		if rec.err != nil {
			failed++
		}
	}
	if failed != 3 {
		t.Fatalf("expected 3 failed spans, got %d", failed)
	}
}

func TestServiceCancelledContext(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := svc.CreateProduct(ctx, domain.ProductPayload{Name: "x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestNewServiceUsesSuppliedStore(t *testing.T) {
	base := newTestService(t)
	svc := NewService(base.Store())
	if got := len(svc.Snapshot().Technicians); got != 1 {
		t.Fatalf("expected shared store state, got %d technicians", got)
	}
}

func TestNoopObservability(_ *testing.T) {
	logger := noopLogger{}
	logger.Debug("debug", "key", "value")
	logger.Info("info", "key", "value")
	logger.Warn("warn", "key", "value")
	logger.Error("error", "key", "value")
	noopMetrics{}.Observe(context.Background(), "op", true, time.Millisecond)
	_, span := noopTracer{}.Start(context.Background(), "op")
	span.End(nil)
}
