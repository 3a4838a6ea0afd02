// Package syncengine implements §4.4's single public perform_sync
// operation: mode selection, pagination, batching, progress reporting,
// and cooperative cancellation.
package syncengine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nimbuscommerce/catalogsync/internal/core"
	"github.com/nimbuscommerce/catalogsync/internal/events"
	"github.com/nimbuscommerce/catalogsync/internal/reconciler"
	"github.com/nimbuscommerce/catalogsync/internal/remote"
	"github.com/nimbuscommerce/catalogsync/internal/resilience"
	"github.com/nimbuscommerce/catalogsync/internal/store"
)

// Engine drives full/incremental sync cycles against a RemoteCatalog,
// decoding and reconciling each page into the Store.
type Engine struct {
	remote     remote.RemoteCatalog
	auth       remote.AuthProvider
	resilience *resilience.Resilience
	reconciler *reconciler.Reconciler
	store      *store.Store
	bus        *events.Bus
	clock      core.Clock
	cfg        Config
	logger     *slog.Logger

	mu       sync.Mutex
	inFlight bool
	cancel   context.CancelFunc
}

// New constructs an Engine. auth and bus may be nil.
func New(
	remoteCatalog remote.RemoteCatalog,
	auth remote.AuthProvider,
	res *resilience.Resilience,
	recon *reconciler.Reconciler,
	st *store.Store,
	bus *events.Bus,
	clock core.Clock,
	cfg Config,
	logger *slog.Logger,
) *Engine {
	if clock == nil {
		clock = core.NewSystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if bus == nil {
		bus = events.NewBus(logger)
	}
	return &Engine{
		remote:     remoteCatalog,
		auth:       auth,
		resilience: res,
		reconciler: recon,
		store:      st,
		bus:        bus,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

// Cancel requests cooperative cancellation of any running sync. A no-op
// if no sync is in flight.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// PerformSync is the engine's single public operation. At most one
// invocation runs per Engine instance; a concurrent call returns
// core.NewInProgress() immediately without touching the store.
func (e *Engine) PerformSync(ctx context.Context) (events.SyncResult, error) {
	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return events.SyncResult{}, core.NewInProgress()
	}
	e.inFlight = true
	syncCtx, cancel := context.WithTimeout(ctx, e.cfg.PerSyncDeadline)
	e.cancel = cancel
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.cancel = nil
		e.mu.Unlock()
		cancel()
	}()

	e.bus.Publish(events.SyncProgress{Phase: events.PhasePreparing})

	status, err := e.store.GetSyncStatus(syncCtx, nil)
	if err != nil {
		return e.fail("", core.NewStore(err))
	}

	mode := e.selectMode(status)
	e.bus.Publish(events.SyncProgress{Phase: events.PhaseSyncing, Mode: mode, Fraction: 0})

	var counters core.BatchCounters
	if mode == events.ModeFull {
		counters, err = e.fullSync(syncCtx, status)
	} else {
		counters, err = e.incrementalSync(syncCtx, status)
	}
	if err != nil {
		return e.fail(mode, err)
	}

	result := events.SyncResult{Mode: mode, Counters: counters}
	e.bus.Publish(events.SyncProgress{Phase: events.PhaseCompleted, Mode: mode, Fraction: 1, Result: &result})
	return result, nil
}

func (e *Engine) fail(mode events.Mode, err error) (events.SyncResult, error) {
	e.bus.Publish(events.SyncProgress{Phase: events.PhaseFailed, Mode: mode, Err: err})
	return events.SyncResult{}, err
}

// selectMode implements §4.4's mode-selection rule.
func (e *Engine) selectMode(status core.SyncStatus) events.Mode {
	if status.LastFullSyncAt == nil {
		return events.ModeFull
	}
	last, err := time.Parse(time.RFC3339, *status.LastFullSyncAt)
	if err != nil {
		return events.ModeFull
	}
	if e.clock.Since(last) > e.cfg.FullInterval {
		return events.ModeFull
	}
	return events.ModeIncremental
}

func (e *Engine) ensureAuth(ctx context.Context) error {
	if e.auth == nil {
		return nil
	}
	if !e.auth.IsAuthenticated(ctx) {
		return core.NewNotAuthenticated()
	}
	if _, err := e.auth.EnsureValidToken(ctx); err != nil {
		return err
	}
	return nil
}

func rawPayloads(objects []core.CatalogObject) [][]byte {
	out := make([][]byte, len(objects))
	for i, obj := range objects {
		out[i] = obj.Raw
	}
	return out
}

func chunk(raw [][]byte, size int) [][][]byte {
	if size <= 0 {
		size = len(raw)
		if size == 0 {
			return nil
		}
	}
	var chunks [][][]byte
	for i := 0; i < len(raw); i += size {
		end := i + size
		if end > len(raw) {
			end = len(raw)
		}
		chunks = append(chunks, raw[i:end])
	}
	return chunks
}

// processObjects chunks objects into cfg.BatchSize groups and reconciles
// each inside Resilience's retry wrapper. A batch whose transaction fails
// is retried under the shared retry policy (up to RetryConfig.MaxAttempts
// attempts in all, not a single retry), then surfaced as a batch-level
// error while other batches proceed.
func (e *Engine) processObjects(ctx context.Context, objects []core.CatalogObject, seen *reconciler.Seen) core.BatchCounters {
	var total core.BatchCounters
	for _, batch := range chunk(rawPayloads(objects), e.cfg.BatchSize) {
		counters, err := resilience.Execute(ctx, e.resilience, "store.reconcile_batch",
			func(c context.Context) (core.BatchCounters, error) {
				return e.reconciler.ReconcileBatch(c, batch, seen)
			}, nil, resilience.DegradeFailFast)
		if err != nil {
			total.Errors = append(total.Errors, core.BatchError{Message: "batch failed: " + err.Error()})
			continue
		}
		total.Add(counters)
	}
	return total
}
