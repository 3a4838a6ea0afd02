// Package scheduler fires periodic incremental syncs while the process
// is running, per §4.5. It owns only timing and on/off state; mode
// selection, single-flight, and cancellation all live in the engine it
// drives.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nimbuscommerce/catalogsync/internal/core"
	"github.com/nimbuscommerce/catalogsync/internal/events"
)

// Engine is the subset of syncengine.Engine the scheduler depends on.
type Engine interface {
	PerformSync(ctx context.Context) (events.SyncResult, error)
	Cancel()
}

// Scheduler arms a repeating timer of period Interval and calls
// engine.PerformSync on each tick, dropping the tick silently if a sync
// is already running.
type Scheduler struct {
	engine   Engine
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
	enabled bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New constructs a Scheduler (not started). logger may be nil.
func New(engine Engine, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{engine: engine, interval: interval, logger: logger, enabled: true}
}

// Start arms the timer and begins firing periodic syncs in a background
// goroutine. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.run(ctx)
	s.logger.Info("scheduler started", "interval", s.interval)
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped (context cancelled)")
			return
		case <-s.stopCh:
			s.logger.Info("scheduler stopped (explicit stop)")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	_, err := s.engine.PerformSync(ctx)
	if err == nil {
		return
	}
	se := core.AsSyncError(err)
	if se != nil && se.Kind == core.ErrInProgress {
		s.logger.Debug("scheduled sync dropped, one already in flight")
		return
	}
	s.logger.Error("scheduled sync failed", "error", err)
}

// Stop disarms the timer and cancels any sync currently running. Safe
// to call multiple times or when never started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	s.engine.Cancel()
	<-doneCh
}

// SetEnabled toggles whether ticks drive syncs. enabled is independent
// of started: disabling while running cancels the in-flight sync but
// leaves the timer armed, so re-enabling resumes on the next tick.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
	if !enabled {
		s.engine.Cancel()
	}
}

// Enabled reports the current enabled state.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}
