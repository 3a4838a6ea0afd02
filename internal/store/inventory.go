package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

// UpsertInventoryCount writes an inventory count row keyed by its
// composite id (variation_id + "_" + location_id + "_" + state), per the
// data model's invariant. InventoryCount has no version field of its own,
// so every call simply overwrites: the latest write for a composite id
// wins.
func (s *Store) UpsertInventoryCount(ctx context.Context, tx *Tx, c core.InventoryCount) error {
	_, err := s.conn(tx).ExecContext(ctx, `
		INSERT INTO inventory_counts (composite_id, variation_id, location_id, state, quantity, calculated_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(composite_id) DO UPDATE SET
			quantity=excluded.quantity, calculated_at=excluded.calculated_at, updated_at=excluded.updated_at`,
		c.CompositeID(), c.VariationID, c.LocationID, string(c.State), c.Quantity, c.CalculatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert inventory count %s: %w", c.CompositeID(), err)
	}
	return nil
}

func (s *Store) GetInventoryCount(ctx context.Context, tx *Tx, variationID, locationID string, state core.InventoryState) (*core.InventoryCount, error) {
	compositeID := variationID + "_" + locationID + "_" + string(state)
	row := s.conn(tx).QueryRowContext(ctx, `
		SELECT variation_id, location_id, state, quantity, calculated_at, updated_at
		FROM inventory_counts WHERE composite_id = ?`, compositeID)

	var c core.InventoryCount
	var calculatedAt, updatedAt sql.NullString
	var stateStr string
	if err := row.Scan(&c.VariationID, &c.LocationID, &stateStr, &c.Quantity, &calculatedAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get inventory count %s: %w", compositeID, err)
	}
	c.State = core.InventoryState(stateStr)
	if calculatedAt.Valid {
		c.CalculatedAt = calculatedAt.String
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.String
	}
	return &c, nil
}

func (s *Store) InventoryCountsForVariation(ctx context.Context, tx *Tx, variationID string) ([]core.InventoryCount, error) {
	rows, err := s.conn(tx).QueryContext(ctx, `
		SELECT variation_id, location_id, state, quantity, calculated_at, updated_at
		FROM inventory_counts WHERE variation_id = ?`, variationID)
	if err != nil {
		return nil, fmt.Errorf("list inventory counts for %s: %w", variationID, err)
	}
	defer rows.Close()

	var out []core.InventoryCount
	for rows.Next() {
		var c core.InventoryCount
		var calculatedAt, updatedAt sql.NullString
		var stateStr string
		if err := rows.Scan(&c.VariationID, &c.LocationID, &stateStr, &c.Quantity, &calculatedAt, &updatedAt); err != nil {
			return nil, err
		}
		c.State = core.InventoryState(stateStr)
		c.CalculatedAt = calculatedAt.String
		c.UpdatedAt = updatedAt.String
		out = append(out, c)
	}
	return out, rows.Err()
}
