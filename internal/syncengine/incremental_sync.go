package syncengine

import (
	"context"
	"time"

	"github.com/nimbuscommerce/catalogsync/internal/core"
	"github.com/nimbuscommerce/catalogsync/internal/events"
	"github.com/nimbuscommerce/catalogsync/internal/remote"
	"github.com/nimbuscommerce/catalogsync/internal/resilience"
)

// incrementalSync implements §4.4's incremental_sync() protocol. There is
// no cleanup pass: incremental search cannot authoritatively detect
// deletions beyond objects explicitly carrying is_deleted.
func (e *Engine) incrementalSync(ctx context.Context, status core.SyncStatus) (core.BatchCounters, error) {
	var total core.BatchCounters
	var cursor *string
	pages := 0

	for {
		if ctx.Err() != nil {
			return total, core.NewCancelled()
		}

		page, err := e.fetchSearchPage(ctx, status.LastIncrementalSyncAt, cursor)
		if err != nil {
			return total, err
		}
		pages++

		total.Add(e.processObjects(ctx, page.Objects, nil))
		e.bus.Publish(events.SyncProgress{Phase: events.PhaseSyncing, Mode: events.ModeIncremental, Fraction: approxFraction(pages)})

		if page.Cursor == nil {
			break
		}
		cursor = page.Cursor
	}

	now := e.clock.Now().Format(time.RFC3339)
	status.LastIncrementalSyncAt = &now
	if err := e.store.PutSyncStatus(ctx, nil, status); err != nil {
		return total, core.NewStore(err)
	}
	return total, nil
}

func (e *Engine) fetchSearchPage(ctx context.Context, beginTime *string, cursor *string) (remote.Page, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.PerFetchTimeout)
	defer cancel()

	return resilience.Execute(fetchCtx, e.resilience, "remote.search",
		func(c context.Context) (remote.Page, error) {
			if err := e.ensureAuth(c); err != nil {
				return remote.Page{}, err
			}
			return e.remote.Search(c, beginTime, cursor)
		}, nil, resilience.DegradeFailFast)
}
