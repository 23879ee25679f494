// Package scheduler runs periodic maintenance jobs with robfig/cron. The only
// job today is the overdue-loan sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"tmfstock/internal/core"
	"tmfstock/pkg/domain"
)

// OverdueMarker flags late loans. *core.Service implements it.
type OverdueMarker interface {
	MarkOverdueLoans(ctx context.Context) ([]domain.ToolLoan, domain.Result, error)
}

// Scheduler owns a cron runner.
type Scheduler struct {
	cron    *cron.Cron
	marker  OverdueMarker
	logger  core.Logger
	timeout time.Duration
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocation evaluates schedules in loc instead of local time.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.cron = cron.New(cron.WithLocation(loc), cron.WithChain(s.chain()...), cron.WithLogger(cronLogger{s.logger}))
		}
	}
}

// WithJobTimeout bounds a single job run; the default is one minute.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New builds a stopped scheduler. A nil logger discards output.
func New(marker OverdueMarker, logger core.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = discard{}
	}
	s := &Scheduler{marker: marker, logger: logger, timeout: time.Minute}
	s.cron = cron.New(cron.WithChain(s.chain()...), cron.WithLogger(cronLogger{logger}))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) chain() []cron.JobWrapper {
	l := cronLogger{s.logger}
	return []cron.JobWrapper{cron.Recover(l), cron.SkipIfStillRunning(l)}
}

// ScheduleOverdueSweep registers the sweep under a standard cron spec or a
// descriptor such as "@every 1h".
func (s *Scheduler) ScheduleOverdueSweep(spec string) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_, _ = s.SweepOnce(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("schedule overdue sweep %q: %w", spec, err)
	}
	s.logger.Info("overdue sweep scheduled", "spec", spec)
	return id, nil
}

// SweepOnce runs the sweep immediately and returns the flagged loans.
func (s *Scheduler) SweepOnce(ctx context.Context) ([]domain.ToolLoan, error) {
	flagged, _, err := s.marker.MarkOverdueLoans(ctx)
	if err != nil {
		s.logger.Error("overdue sweep failed", "error", err)
		return nil, err
	}
	for _, l := range flagged {
		s.logger.Warn("tool loan overdue", "loan", l.ID, "tool", l.ToolName)
	}
	s.logger.Info("overdue sweep done", "flagged", len(flagged))
	return flagged, nil
}

// Entries lists the registered jobs.
func (s *Scheduler) Entries() []cron.Entry { return s.cron.Entries() }

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for running jobs or ctx, whichever ends
// first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// cronLogger adapts core.Logger to cron.Logger.
type cronLogger struct{ l core.Logger }

func (c cronLogger) Info(msg string, kv ...interface{}) { c.l.Debug("cron: "+msg, kv...) }

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.l.Error("cron: "+msg, append(kv, "error", err)...)
}

type discard struct{}

func (discard) Debug(string, ...any) {}
func (discard) Info(string, ...any)  {}
func (discard) Warn(string, ...any)  {}
func (discard) Error(string, ...any) {}
