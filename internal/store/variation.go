package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

func (s *Store) GetVariation(ctx context.Context, tx *Tx, id string) (*core.ItemVariation, error) {
	row := s.conn(tx).QueryRowContext(ctx, `
		SELECT id, updated_at, version, is_deleted, data_json,
		       item_id, name, sku, upc, ordinal, pricing_type, price_amount, price_currency,
		       measurement_unit_id, sellable, stockable, location_overrides_json
		FROM item_variations WHERE id = ?`, id)

	var v core.ItemVariation
	var name, sku, upc, pricingType, priceCurrency, measurementUnitID, overridesJSON sql.NullString
	var ordinal, priceAmount sql.NullInt64
	var sellable, stockable sql.NullInt64
	if err := row.Scan(&v.ID, &v.UpdatedAt, &v.Version, &v.IsDeleted, &v.DataJSON,
		&v.ItemID, &name, &sku, &upc, &ordinal, &pricingType, &priceAmount, &priceCurrency,
		&measurementUnitID, &sellable, &stockable, &overridesJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get variation %s: %w", id, err)
	}

	v.Name = nullString(name)
	v.SKU = nullString(sku)
	v.UPC = nullString(upc)
	v.PricingType = nullString(pricingType)
	v.PriceCurrency = nullString(priceCurrency)
	v.MeasurementUnitID = nullString(measurementUnitID)
	if ordinal.Valid {
		v.Ordinal = &ordinal.Int64
	}
	if priceAmount.Valid {
		v.PriceAmount = &priceAmount.Int64
	}
	v.Sellable = intToBool(sellable)
	v.Stockable = intToBool(stockable)
	unmarshalJSON(nullString(overridesJSON), &v.LocationOverrides)
	return &v, nil
}

func (s *Store) UpsertVariation(ctx context.Context, tx *Tx, v core.ItemVariation) (core.UpsertOutcome, error) {
	_, err := s.GetVariation(ctx, tx, v.ID)
	outcome := core.Updated
	if err == ErrNotFound {
		outcome = core.Inserted
	} else if err != nil {
		return "", err
	}

	// item_id carries no FK constraint: a variation may arrive before its
	// item. True orphans are repaired by the next full-sync cleanup pass.
	_, err = s.conn(tx).ExecContext(ctx, `
		INSERT INTO item_variations (id, updated_at, version, is_deleted, data_json,
			item_id, name, sku, upc, ordinal, pricing_type, price_amount, price_currency,
			measurement_unit_id, sellable, stockable, location_overrides_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at=excluded.updated_at, version=excluded.version, is_deleted=excluded.is_deleted,
			data_json=excluded.data_json, item_id=excluded.item_id, name=excluded.name, sku=excluded.sku,
			upc=excluded.upc, ordinal=excluded.ordinal, pricing_type=excluded.pricing_type,
			price_amount=excluded.price_amount, price_currency=excluded.price_currency,
			measurement_unit_id=excluded.measurement_unit_id, sellable=excluded.sellable,
			stockable=excluded.stockable, location_overrides_json=excluded.location_overrides_json`,
		v.ID, v.UpdatedAt, v.Version, v.IsDeleted, v.DataJSON,
		v.ItemID, v.Name, v.SKU, v.UPC, v.Ordinal, v.PricingType, v.PriceAmount, v.PriceCurrency,
		v.MeasurementUnitID, nullableBoolToPtr(v.Sellable), nullableBoolToPtr(v.Stockable), marshalJSON(v.LocationOverrides))
	if err != nil {
		return "", fmt.Errorf("upsert variation %s: %w", v.ID, err)
	}
	return outcome, nil
}

func (s *Store) DeleteVariation(ctx context.Context, tx *Tx, id string) (core.DeleteOutcome, error) {
	res, err := s.conn(tx).ExecContext(ctx, `UPDATE item_variations SET is_deleted=1 WHERE id=? AND is_deleted=0`, id)
	if err != nil {
		return "", fmt.Errorf("delete variation %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.NotDeleted, nil
	}
	return core.Deleted, nil
}

func (s *Store) AllVariationIDs(ctx context.Context, tx *Tx) (map[string]struct{}, error) {
	rows, err := s.conn(tx).QueryContext(ctx, `SELECT id FROM item_variations WHERE is_deleted=0`)
	if err != nil {
		return nil, fmt.Errorf("list variation ids: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

// ItemsByCaseUPC returns non-deleted items that have a non-deleted
// variation whose upc equals upc exactly — used by the barcode filter for
// case-pack codes (§4.2). The store has no separate case-code column, so
// this matches the variations' ordinary upc column.
func (s *Store) ItemsByCaseUPC(ctx context.Context, tx *Tx, upc string) ([]core.Item, error) {
	rows, err := s.conn(tx).QueryContext(ctx, `
		SELECT DISTINCT i.id FROM items i
		JOIN item_variations v ON v.item_id = i.id
		WHERE v.upc = ? AND i.is_deleted = 0 AND v.is_deleted = 0`, upc)
	if err != nil {
		return nil, fmt.Errorf("items by case upc %s: %w", upc, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items := make([]core.Item, 0, len(ids))
	for _, id := range ids {
		item, err := s.GetItem(ctx, tx, id)
		if err != nil {
			continue
		}
		items = append(items, *item)
	}
	return items, nil
}
