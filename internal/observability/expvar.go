package observability

import (
	"context"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tmfstock/internal/core"
)

var expvarSeq atomic.Uint64

// OperationStats aggregates one operation's outcomes.
type OperationStats struct {
	Success    int64     `json:"success"`
	Error      int64     `json:"error"`
	TotalMS    float64   `json:"total_ms"`
	LastStatus string    `json:"last_status"`
	LastAt     time.Time `json:"last_at"`
}

// ExpvarRecorder publishes per-operation counters under /debug/vars.
type ExpvarRecorder struct {
	name string
	now  func() time.Time

	mu  sync.Mutex
	ops map[string]*OperationStats
}

var _ core.MetricsRecorder = (*ExpvarRecorder)(nil)

// NewExpvarRecorder publishes the recorder under name; an empty name gets a
// generated one so several recorders can coexist in tests.
func NewExpvarRecorder(name string) *ExpvarRecorder {
	if name == "" {
		name = fmt.Sprintf("tmfstock_operations_%d", expvarSeq.Add(1))
	}
	r := &ExpvarRecorder{
		name: name,
		now:  func() time.Time { return time.Now().UTC() },
		ops:  make(map[string]*OperationStats),
	}
	expvar.Publish(name, expvar.Func(func() any { return r.Snapshot() }))
	return r
}

// Name returns the expvar key.
func (r *ExpvarRecorder) Name() string { return r.name }

// Snapshot copies the current counters.
func (r *ExpvarRecorder) Snapshot() map[string]OperationStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]OperationStats, len(r.ops))
	for op, s := range r.ops {
		out[op] = *s
	}
	return out
}

// Observe implements core.MetricsRecorder.
func (r *ExpvarRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.ops[operation]
	if !ok {
		s = &OperationStats{}
		r.ops[operation] = s
	}
	if success {
		s.Success++
	} else {
		s.Error++
	}
	s.TotalMS += float64(duration) / float64(time.Millisecond)
	s.LastStatus = statusLabel(success)
	s.LastAt = r.now()
}
