package observability

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"tmfstock/internal/core"
)

// Span is one finished operation as written by JSONTracer.
type Span struct {
	Operation  string    `json:"operation"`
	Status     string    `json:"status"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
}

// JSONTracer writes one JSON line per finished span and keeps the most
// recent spans in memory.
type JSONTracer struct {
	mu    sync.Mutex
	enc   *json.Encoder
	keep  int
	spans []Span
	now   func() time.Time
}

var _ core.Tracer = (*JSONTracer)(nil)

// NewJSONTracer writes spans to w (which may be nil) and retains up to keep
// spans; keep <= 0 retains 256.
func NewJSONTracer(w io.Writer, keep int) *JSONTracer {
	if keep <= 0 {
		keep = 256
	}
	t := &JSONTracer{keep: keep, now: func() time.Time { return time.Now().UTC() }}
	if w != nil {
		t.enc = json.NewEncoder(w)
	}
	return t
}

// Spans returns the retained spans, oldest first.
func (t *JSONTracer) Spans() []Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Span, len(t.spans))
	copy(out, t.spans)
	return out
}

// Start implements core.Tracer.
func (t *JSONTracer) Start(ctx context.Context, operation string) (context.Context, core.TraceSpan) {
	return ctx, &jsonSpan{tracer: t, operation: operation, started: t.now()}
}

type jsonSpan struct {
	tracer    *JSONTracer
	operation string
	started   time.Time
	once      sync.Once
}

func (s *jsonSpan) End(err error) {
	s.once.Do(func() { s.tracer.finish(s, err) })
}

func (t *JSONTracer) finish(s *jsonSpan, err error) {
	span := Span{
		Operation:  s.operation,
		Status:     statusLabel(err == nil),
		DurationMS: float64(t.now().Sub(s.started)) / float64(time.Millisecond),
		StartedAt:  s.started,
	}
	if err != nil {
		span.Error = err.Error()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = append(t.spans, span)
	if over := len(t.spans) - t.keep; over > 0 {
		t.spans = append(t.spans[:0:0], t.spans[over:]...)
	}
	if t.enc != nil {
		_ = t.enc.Encode(span)
	}
}
