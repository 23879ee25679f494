// Package core implements the inventory mutation operations. Every operation
// runs in a single store transaction and either commits completely or leaves
// the store untouched.
package core

import (
	"context"
	"errors"
	"time"

	"tmfstock/internal/infra/persistence/memory"
	"tmfstock/pkg/domain"
)

// Service exposes the transactional operations over an inventory store.
type Service struct {
	store   domain.PersistentStore
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	clock   Clock
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	cfg := defaultServiceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Service{
		store:   store,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		tracer:  cfg.tracer,
		clock:   cfg.clock,
	}
}

// NewInMemoryService creates a service over a fresh in-memory store. A nil
// engine selects NewDefaultRulesEngine.
func NewInMemoryService(engine *domain.RulesEngine, opts ...ServiceOption) *Service {
	cfg := defaultServiceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	store := memory.NewStore(engine, memory.WithClock(cfg.clock.Now))
	if cfg.initial != nil {
		store.ImportState(*cfg.initial)
	}
	return NewService(store, opts...)
}

// Store returns the underlying store.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// Snapshot returns an immutable copy of the committed state.
func (s *Service) Snapshot() domain.Snapshot {
	return s.store.Snapshot()
}

// run wraps a transaction with tracing, metrics and logging.
func (s *Service) run(ctx context.Context, op string, fn func(tx domain.Transaction) error) (domain.Result, error) {
	ctx, span := s.tracer.Start(ctx, op)
	started := time.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	s.metrics.Observe(ctx, op, err == nil, time.Since(started))
	span.End(err)

	var violation domain.RuleViolationError
	var invalid domain.ValidationError
	switch {
	case err == nil:
		s.logger.Info("operation committed", "op", op)
		for _, w := range res.Warnings() {
			s.logger.Warn("rule warning", "op", op, "rule", w.Rule, "entity", w.EntityID, "message", w.Message)
		}
	case errors.As(err, &violation):
		s.logger.Warn("operation blocked", "op", op, "error", err)
	case errors.As(err, &invalid):
		s.logger.Info("operation rejected", "op", op, "error", err)
	default:
		s.logger.Error("operation failed", "op", op, "error", err)
	}
	return res, err
}

// ignoreMissing turns a not-found error into a silent no-op.
func ignoreMissing(err error) error {
	var nf domain.ErrNotFound
	if errors.As(err, &nf) {
		return nil
	}
	return err
}

// committed drops the entity built inside a transaction that did not commit.
func committed[T any](v T, res domain.Result, err error) (T, domain.Result, error) {
	if err != nil {
		var zero T
		return zero, res, err
	}
	return v, res, nil
}
