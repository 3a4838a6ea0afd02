// Package reconciler implements §4.3's version-aware upsert/delete
// protocol: each decoded catalog object is routed to insert, update,
// delete, or skip against the Store, and a full sync's cleanup pass
// tombstones rows that were no longer observed.
package reconciler

import (
	"context"
	"log/slog"

	"github.com/nimbuscommerce/catalogsync/internal/core"
	"github.com/nimbuscommerce/catalogsync/internal/decoder"
	"github.com/nimbuscommerce/catalogsync/internal/store"
)

// Reconciler drives the Store from a stream of decoded catalog objects.
type Reconciler struct {
	store  *store.Store
	cache  *store.SearchCache
	logger *slog.Logger
}

// New constructs a Reconciler. cache may be nil if no search cache is in use.
func New(s *store.Store, cache *store.SearchCache, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: s, cache: cache, logger: logger}
}

// ReconcileBatch decodes and applies raw (one JSON object per entry) inside
// a single transaction, accumulating ids into seen for the subsequent
// cleanup pass of a full sync. seen may be nil for an incremental sync.
func (r *Reconciler) ReconcileBatch(ctx context.Context, raw [][]byte, seen *Seen) (core.BatchCounters, error) {
	var counters core.BatchCounters

	err := r.store.WithTx(ctx, func(tx *store.Tx) error {
		for _, payload := range raw {
			counters.Processed++

			d, err := decoder.Decode(payload)
			if err != nil {
				r.recordError(&counters, d.ID, d.Kind, err)
				continue
			}

			if seen != nil {
				trackSeen(seen, d)
			}

			if err := r.reconcileOne(ctx, tx, d, &counters); err != nil {
				if se := core.AsSyncError(err); se != nil && se.Kind == core.ErrStore {
					return err // a store-level failure aborts and rolls back the whole batch
				}
				r.recordError(&counters, d.ID, d.Kind, err)
			}
		}
		return nil
	})
	if err != nil {
		return counters, err
	}

	if r.cache != nil {
		r.cache.Invalidate()
	}
	return counters, nil
}

func trackSeen(seen *Seen, d decoder.Decoded) {
	switch d.Kind {
	case core.KindItem:
		seen.Items[d.ID] = struct{}{}
	case core.KindCategory:
		seen.Categories[d.ID] = struct{}{}
	case core.KindItemVariation:
		seen.Variations[d.ID] = struct{}{}
	}
}

func (r *Reconciler) recordError(counters *core.BatchCounters, id string, kind core.Kind, err error) {
	counters.Errors = append(counters.Errors, core.BatchError{ID: id, Kind: kind, Message: err.Error()})
	r.logger.Warn("reconcile: object failed, continuing batch", "id", id, "kind", kind, "error", err)
}

// reconcileOne applies step 2-4 of §4.3's protocol for a single decoded
// object, inside the caller's transaction.
func (r *Reconciler) reconcileOne(ctx context.Context, tx *store.Tx, d decoder.Decoded, counters *core.BatchCounters) error {
	if d.IsDeleted {
		outcome, err := r.delete(ctx, tx, d)
		if err != nil {
			return core.NewStore(err)
		}
		switch outcome {
		case core.Deleted:
			counters.Deleted++
		case core.NotDeleted:
			counters.Skipped++
		}
		return nil
	}

	existingVersion, found, err := r.existingVersion(ctx, tx, d)
	if err != nil {
		return core.NewStore(err)
	}
	if found && d.Version <= existingVersion {
		counters.Skipped++
		return nil
	}

	outcome, err := r.upsert(ctx, tx, d)
	if err != nil {
		return core.NewStore(err)
	}
	switch outcome {
	case core.Inserted:
		counters.Inserted++
	case core.Updated:
		counters.Updated++
	case core.Skipped:
		counters.Skipped++
	}
	return nil
}

func (r *Reconciler) existingVersion(ctx context.Context, tx *store.Tx, d decoder.Decoded) (int64, bool, error) {
	var version int64
	var err error
	switch d.Kind {
	case core.KindCategory:
		var row *core.Category
		row, err = r.store.GetCategory(ctx, tx, d.ID)
		if row != nil {
			version = row.Version
		}
	case core.KindItem:
		var row *core.Item
		row, err = r.store.GetItem(ctx, tx, d.ID)
		if row != nil {
			version = row.Version
		}
	case core.KindItemVariation:
		var row *core.ItemVariation
		row, err = r.store.GetVariation(ctx, tx, d.ID)
		if row != nil {
			version = row.Version
		}
	case core.KindTax:
		var row *core.Tax
		row, err = r.store.GetTax(ctx, tx, d.ID)
		if row != nil {
			version = row.Version
		}
	case core.KindDiscount:
		var row *core.Discount
		row, err = r.store.GetDiscount(ctx, tx, d.ID)
		if row != nil {
			version = row.Version
		}
	case core.KindModifierList:
		var row *core.ModifierList
		row, err = r.store.GetModifierList(ctx, tx, d.ID)
		if row != nil {
			version = row.Version
		}
	case core.KindModifier:
		var row *core.Modifier
		row, err = r.store.GetModifier(ctx, tx, d.ID)
		if row != nil {
			version = row.Version
		}
	case core.KindImage:
		var row *core.Image
		row, err = r.store.GetImage(ctx, tx, d.ID)
		if row != nil {
			version = row.Version
		}
	}
	if err == store.ErrNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, true, nil
}

func (r *Reconciler) upsert(ctx context.Context, tx *store.Tx, d decoder.Decoded) (core.UpsertOutcome, error) {
	switch d.Kind {
	case core.KindCategory:
		return r.store.UpsertCategory(ctx, tx, *d.Category)
	case core.KindItem:
		return r.store.UpsertItem(ctx, tx, *d.Item)
	case core.KindItemVariation:
		return r.store.UpsertVariation(ctx, tx, *d.Variation)
	case core.KindTax:
		return r.store.UpsertTax(ctx, tx, *d.Tax)
	case core.KindDiscount:
		return r.store.UpsertDiscount(ctx, tx, *d.Discount)
	case core.KindModifierList:
		return r.store.UpsertModifierList(ctx, tx, *d.ModifierList)
	case core.KindModifier:
		return r.store.UpsertModifier(ctx, tx, *d.Modifier)
	case core.KindImage:
		return r.store.UpsertImage(ctx, tx, *d.Image)
	}
	return core.Skipped, nil
}

func (r *Reconciler) delete(ctx context.Context, tx *store.Tx, d decoder.Decoded) (core.DeleteOutcome, error) {
	switch d.Kind {
	case core.KindCategory:
		return r.store.DeleteCategory(ctx, tx, d.ID)
	case core.KindItem:
		return r.store.DeleteItem(ctx, tx, d.ID)
	case core.KindItemVariation:
		return r.store.DeleteVariation(ctx, tx, d.ID)
	case core.KindTax:
		return r.store.DeleteTax(ctx, tx, d.ID)
	case core.KindDiscount:
		return r.store.DeleteDiscount(ctx, tx, d.ID)
	case core.KindModifierList:
		return r.store.DeleteModifierList(ctx, tx, d.ID)
	case core.KindModifier:
		return r.store.DeleteModifier(ctx, tx, d.ID)
	case core.KindImage:
		return r.store.DeleteImage(ctx, tx, d.ID)
	}
	return core.NotDeleted, nil
}

// Cleanup implements §4.3's full-sync cleanup: every stored Item,
// Category, or Variation id not present in seen is tombstoned. Runs in
// its own transaction, separate from the per-page ReconcileBatch calls.
func (r *Reconciler) Cleanup(ctx context.Context, seen *Seen) (core.BatchCounters, error) {
	var counters core.BatchCounters

	err := r.store.WithTx(ctx, func(tx *store.Tx) error {
		if err := r.cleanupKind(ctx, tx, core.KindCategory, seen.Categories, &counters); err != nil {
			return err
		}
		if err := r.cleanupKind(ctx, tx, core.KindItem, seen.Items, &counters); err != nil {
			return err
		}
		if err := r.cleanupKind(ctx, tx, core.KindItemVariation, seen.Variations, &counters); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return counters, err
	}

	if r.cache != nil {
		r.cache.Invalidate()
	}
	return counters, nil
}

func (r *Reconciler) cleanupKind(ctx context.Context, tx *store.Tx, kind core.Kind, seen map[string]struct{}, counters *core.BatchCounters) error {
	var all map[string]struct{}
	var err error
	switch kind {
	case core.KindCategory:
		all, err = r.store.AllCategoryIDs(ctx, tx)
	case core.KindItem:
		all, err = r.store.AllItemIDs(ctx, tx)
	case core.KindItemVariation:
		all, err = r.store.AllVariationIDs(ctx, tx)
	}
	if err != nil {
		return core.NewStore(err)
	}

	for id := range all {
		if _, ok := seen[id]; ok {
			continue
		}
		d := decoder.Decoded{ID: id, Kind: kind}
		outcome, err := r.delete(ctx, tx, d)
		if err != nil {
			return core.NewStore(err)
		}
		if outcome == core.Deleted {
			counters.Deleted++
		}
	}
	return nil
}
