package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"tmfstock/internal/core"
	"tmfstock/pkg/domain"
)

func TestStdLoggerFormatsKeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLogger(log.New(&buf, "", 0), false)
	logger.Debug("hidden")
	logger.Info("operation committed", "op", "restock", "message", "Stock bas pour RJ45")
	logger.Error("odd", "lonely")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines (debug suppressed), got %q", buf.String())
	}
	if lines[0] != `INFO operation committed op=restock message="Stock bas pour RJ45"` {
		t.Fatalf("unexpected line %q", lines[0])
	}
	if lines[1] != "ERROR odd lonely=(missing)" {
		t.Fatalf("unexpected line %q", lines[1])
	}

	buf.Reset()
	NewStdLogger(log.New(&buf, "", 0), true).Debug("visible", "k", "")
	if got := strings.TrimSpace(buf.String()); got != `DEBUG visible k=""` {
		t.Fatalf("unexpected debug line %q", got)
	}
}

func TestPrometheusRecorder(t *testing.T) {
	rec := NewPrometheusRecorder()
	ctx := context.Background()
	rec.Observe(ctx, "restock", true, 2*time.Millisecond)
	rec.Observe(ctx, "restock", true, time.Millisecond)
	rec.Observe(ctx, "distribute", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	if got := testutil.ToFloat64(rec.total.WithLabelValues("restock", "success")); got != 2 {
		t.Fatalf("expected 2 successful restocks, got %v", got)
	}
	if got := testutil.ToFloat64(rec.total.WithLabelValues("distribute", "error")); got != 1 {
		t.Fatalf("expected 1 failed distribute, got %v", got)
	}

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	if !strings.Contains(body.String(), `tmfstock_operations_total{operation="restock",status="success"} 2`) {
		t.Fatalf("exposition missing counter:\n%s", body.String())
	}
	if !strings.Contains(body.String(), "tmfstock_operation_duration_seconds_bucket") {
		t.Fatalf("exposition missing histogram")
	}
}

func TestExpvarRecorder(t *testing.T) {
	rec := NewExpvarRecorder("")
	fixed := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return fixed }
	rec.Observe(context.Background(), "assign_tool", true, 3*time.Millisecond)
	rec.Observe(context.Background(), "assign_tool", false, time.Millisecond)

	stats := rec.Snapshot()["assign_tool"]
	if stats.Success != 1 || stats.Error != 1 || stats.TotalMS != 4 || stats.LastStatus != "error" || !stats.LastAt.Equal(fixed) {
		t.Fatalf("unexpected stats %+v", stats)
	}
	published := expvar.Get(rec.Name())
	if published == nil {
		t.Fatalf("recorder not published under %s", rec.Name())
	}
	var decoded map[string]OperationStats
	if err := json.Unmarshal([]byte(published.String()), &decoded); err != nil {
		t.Fatalf("decode expvar: %v", err)
	}
	if decoded["assign_tool"].Success != 1 {
		t.Fatalf("unexpected published value %s", published.String())
	}
}

func TestJSONTracer(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf, 2)
	ctx := context.Background()
	for _, op := range []string{"a", "b", "c"} {
		_, span := tracer.Start(ctx, op)
		var err error
		if op == "b" {
			err = errors.New("boom")
		}
		span.End(err)
		span.End(nil)
	}
	spans := tracer.Spans()
	if len(spans) != 2 || spans[0].Operation != "b" || spans[0].Status != "error" || spans[0].Error != "boom" || spans[1].Operation != "c" {
		t.Fatalf("unexpected retained spans %+v", spans)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 3 {
		t.Fatalf("expected one JSON line per span, got %d", lines)
	}
}

func TestRecordersDriveService(t *testing.T) {
	prom := NewPrometheusRecorder()
	exp := NewExpvarRecorder("")
	tracer := NewJSONTracer(nil, 0)
	svc := core.NewInMemoryService(nil,
		core.WithMetricsRecorder(FanoutRecorder{prom, exp, nil}),
		core.WithTracer(tracer),
		core.WithLogger(NewWriterLogger(&bytes.Buffer{}, true)),
	)
	if _, _, err := svc.CreateTechnician(context.Background(), domain.TechnicianPayload{Name: "Lina Hadj", Email: "lina@tmf.local", Team: "Install"}); err != nil {
		t.Fatalf("create technician: %v", err)
	}
	if got := testutil.ToFloat64(prom.total.WithLabelValues("create_technician", "success")); got != 1 {
		t.Fatalf("prometheus not fed: %v", got)
	}
	if exp.Snapshot()["create_technician"].Success != 1 {
		t.Fatalf("expvar not fed")
	}
	if spans := tracer.Spans(); len(spans) != 1 || spans[0].Operation != "create_technician" {
		t.Fatalf("tracer not fed: %+v", spans)
	}
}
