package store

import (
	"context"
	"fmt"
)

// clearOrder lists tables in reverse dependency order so FK constraints
// never block a delete, per §4.2's clear_all contract.
var clearOrder = []string{
	"modifiers",
	"modifier_lists",
	"inventory_counts",
	"item_variations",
	"items",
	"categories",
	"taxes",
	"discounts",
	"images",
}

// ClearAll performs the destructive reset described in §4.2: deletes every
// row in reverse dependency order inside one transaction, then resets the
// sync_status singleton, leaving count(items)=0 as the post-condition.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		for _, table := range clearOrder {
			if _, err := tx.tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
				return fmt.Errorf("clear_all: deleting %s: %w", table, err)
			}
		}
		if _, err := tx.tx.ExecContext(ctx, `
			UPDATE sync_status SET
				last_full_sync_at=NULL, last_incremental_sync_at=NULL, in_flight=0,
				last_cursor=NULL, attempt_count=0, last_error=NULL,
				progress_current=0, progress_total=0
			WHERE id=1`); err != nil {
			return fmt.Errorf("clear_all: resetting sync_status: %w", err)
		}
		return nil
	})
}
