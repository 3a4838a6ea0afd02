package syncengine

import (
	"context"
	"time"

	"github.com/nimbuscommerce/catalogsync/internal/core"
	"github.com/nimbuscommerce/catalogsync/internal/events"
	"github.com/nimbuscommerce/catalogsync/internal/reconciler"
	"github.com/nimbuscommerce/catalogsync/internal/remote"
	"github.com/nimbuscommerce/catalogsync/internal/resilience"
)

// fullSync implements §4.4's full_sync() protocol.
func (e *Engine) fullSync(ctx context.Context, status core.SyncStatus) (core.BatchCounters, error) {
	seen := reconciler.NewSeen()
	var total core.BatchCounters
	var cursor *string
	pages := 0

	for {
		if ctx.Err() != nil {
			return total, core.NewCancelled()
		}

		page, err := e.fetchListPage(ctx, cursor)
		if err != nil {
			return total, err
		}
		pages++

		total.Add(e.processObjects(ctx, page.Objects, seen))
		e.bus.Publish(events.SyncProgress{Phase: events.PhaseSyncing, Mode: events.ModeFull, Fraction: approxFraction(pages)})

		if page.Cursor == nil {
			break
		}
		cursor = page.Cursor
	}

	cleanupCounters, err := e.reconciler.Cleanup(ctx, seen)
	if err != nil {
		return total, core.NewStore(err)
	}
	total.Add(cleanupCounters)

	now := e.clock.Now().Format(time.RFC3339)
	status.LastFullSyncAt = &now
	status.LastIncrementalSyncAt = &now
	if err := e.store.PutSyncStatus(ctx, nil, status); err != nil {
		return total, core.NewStore(err)
	}
	return total, nil
}

func (e *Engine) fetchListPage(ctx context.Context, cursor *string) (remote.Page, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.PerFetchTimeout)
	defer cancel()

	return resilience.Execute(fetchCtx, e.resilience, "remote.list",
		func(c context.Context) (remote.Page, error) {
			if err := e.ensureAuth(c); err != nil {
				return remote.Page{}, err
			}
			return e.remote.List(c, core.AllKinds, cursor, e.cfg.PageSize)
		}, nil, resilience.DegradeFailFast)
}

// approxFraction maps a page count to a monotonically increasing
// [0,1) progress fraction. The true total page count isn't known ahead
// of a full sync's pagination, so this is intentionally approximate —
// it converges toward 1 without ever reaching it before Completed.
func approxFraction(pages int) float64 {
	return 1 - 1/float64(pages+1)
}
