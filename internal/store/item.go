package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

func (s *Store) GetItem(ctx context.Context, tx *Tx, id string) (*core.Item, error) {
	row := s.conn(tx).QueryRowContext(ctx, `
		SELECT id, updated_at, version, is_deleted, data_json,
		       name, description, abbreviation, label_color, category_id, reporting_category_id,
		       present_at_all_locations, present_at_all_locations_ids_json, absent_at_location_ids_json,
		       available_online, available_for_pickup, available_electronically,
		       tax_ids_json, modifier_list_ids_json, image_ids_json
		FROM items WHERE id = ?`, id)

	var it core.Item
	var description, abbreviation, labelColor, categoryID, reportingCategoryID sql.NullString
	var presentIDsJSON, absentIDsJSON, taxIDsJSON, modifierListIDsJSON, imageIDsJSON sql.NullString
	var availableOnline, availableForPickup, availableElectronically sql.NullInt64
	if err := row.Scan(&it.ID, &it.UpdatedAt, &it.Version, &it.IsDeleted, &it.DataJSON,
		&it.Name, &description, &abbreviation, &labelColor, &categoryID, &reportingCategoryID,
		&it.PresentAtAllLocations, &presentIDsJSON, &absentIDsJSON,
		&availableOnline, &availableForPickup, &availableElectronically,
		&taxIDsJSON, &modifierListIDsJSON, &imageIDsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}

	if description.Valid {
		it.Description = &description.String
	}
	if abbreviation.Valid {
		it.Abbreviation = &abbreviation.String
	}
	if labelColor.Valid {
		it.LabelColor = &labelColor.String
	}
	if categoryID.Valid {
		it.CategoryID = &categoryID.String
	}
	if reportingCategoryID.Valid {
		it.ReportingCategoryID = &reportingCategoryID.String
	}
	it.AvailableOnline = intToBool(availableOnline)
	it.AvailableForPickup = intToBool(availableForPickup)
	it.AvailableElectronically = intToBool(availableElectronically)
	it.PresentAtAllLocationIDs = unmarshalStrings(nullString(presentIDsJSON))
	it.AbsentAtLocationIDs = unmarshalStrings(nullString(absentIDsJSON))
	it.TaxIDs = unmarshalStrings(nullString(taxIDsJSON))
	it.ModifierListIDs = unmarshalStrings(nullString(modifierListIDsJSON))
	it.ImageIDs = unmarshalStrings(nullString(imageIDsJSON))
	return &it, nil
}

func (s *Store) UpsertItem(ctx context.Context, tx *Tx, it core.Item) (core.UpsertOutcome, error) {
	_, err := s.GetItem(ctx, tx, it.ID)
	outcome := core.Updated
	if err == ErrNotFound {
		outcome = core.Inserted
	} else if err != nil {
		return "", err
	}

	_, err = s.conn(tx).ExecContext(ctx, `
		INSERT INTO items (id, updated_at, version, is_deleted, data_json,
			name, description, abbreviation, label_color, category_id, reporting_category_id,
			present_at_all_locations, present_at_all_locations_ids_json, absent_at_location_ids_json,
			available_online, available_for_pickup, available_electronically,
			tax_ids_json, modifier_list_ids_json, image_ids_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at=excluded.updated_at, version=excluded.version, is_deleted=excluded.is_deleted,
			data_json=excluded.data_json, name=excluded.name, description=excluded.description,
			abbreviation=excluded.abbreviation, label_color=excluded.label_color,
			category_id=excluded.category_id, reporting_category_id=excluded.reporting_category_id,
			present_at_all_locations=excluded.present_at_all_locations,
			present_at_all_locations_ids_json=excluded.present_at_all_locations_ids_json,
			absent_at_location_ids_json=excluded.absent_at_location_ids_json,
			available_online=excluded.available_online, available_for_pickup=excluded.available_for_pickup,
			available_electronically=excluded.available_electronically,
			tax_ids_json=excluded.tax_ids_json, modifier_list_ids_json=excluded.modifier_list_ids_json,
			image_ids_json=excluded.image_ids_json`,
		it.ID, it.UpdatedAt, it.Version, it.IsDeleted, it.DataJSON,
		it.Name, it.Description, it.Abbreviation, it.LabelColor, it.CategoryID, it.ReportingCategoryID,
		it.PresentAtAllLocations, marshalStrings(it.PresentAtAllLocationIDs), marshalStrings(it.AbsentAtLocationIDs),
		nullableBoolToPtr(it.AvailableOnline), nullableBoolToPtr(it.AvailableForPickup), nullableBoolToPtr(it.AvailableElectronically),
		marshalStrings(it.TaxIDs), marshalStrings(it.ModifierListIDs), marshalStrings(it.ImageIDs))
	if err != nil {
		return "", fmt.Errorf("upsert item %s: %w", it.ID, err)
	}
	return outcome, nil
}

// DeleteItem tombstones an item and leaves its variations in place.
// item_variations.item_id carries no foreign key, so nothing cascades;
// ClearAll removes variation rows with its own DELETE, and a variation
// that the next full sync no longer lists is tombstoned by that sync's
// cleanup, per §4.3's orphan-repair note.
func (s *Store) DeleteItem(ctx context.Context, tx *Tx, id string) (core.DeleteOutcome, error) {
	res, err := s.conn(tx).ExecContext(ctx, `UPDATE items SET is_deleted=1 WHERE id=? AND is_deleted=0`, id)
	if err != nil {
		return "", fmt.Errorf("delete item %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.NotDeleted, nil
	}
	return core.Deleted, nil
}

func (s *Store) AllItemIDs(ctx context.Context, tx *Tx) (map[string]struct{}, error) {
	rows, err := s.conn(tx).QueryContext(ctx, `SELECT id FROM items WHERE is_deleted=0`)
	if err != nil {
		return nil, fmt.Errorf("list item ids: %w", err)
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

func nullString(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return &n.String
}
