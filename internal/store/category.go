package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

// GetCategory looks up a category by id, per spec §4.2's get_by_id.
func (s *Store) GetCategory(ctx context.Context, tx *Tx, id string) (*core.Category, error) {
	row := s.conn(tx).QueryRowContext(ctx, `
		SELECT id, updated_at, version, is_deleted, data_json,
		       name, image_url, parent_category_id, is_top_level, path_to_root_json
		FROM categories WHERE id = ?`, id)

	var c core.Category
	var imageURL, parentID, pathJSON sql.NullString
	var isTopLevel sql.NullInt64
	if err := row.Scan(&c.ID, &c.UpdatedAt, &c.Version, &c.IsDeleted, &c.DataJSON,
		&c.Name, &imageURL, &parentID, &isTopLevel, &pathJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category %s: %w", id, err)
	}
	if imageURL.Valid {
		c.ImageURL = &imageURL.String
	}
	if parentID.Valid {
		c.ParentCategoryID = &parentID.String
	}
	c.IsTopLevel = intToBool(isTopLevel)
	if pathJSON.Valid {
		unmarshalJSON(&pathJSON.String, &c.PathToRoot)
	}
	return &c, nil
}

// UpsertCategory writes c, returning Inserted or Updated depending on
// whether the row previously existed.
func (s *Store) UpsertCategory(ctx context.Context, tx *Tx, c core.Category) (core.UpsertOutcome, error) {
	_, err := s.GetCategory(ctx, tx, c.ID)
	outcome := core.Updated
	if err == ErrNotFound {
		outcome = core.Inserted
	} else if err != nil {
		return "", err
	}

	_, err = s.conn(tx).ExecContext(ctx, `
		INSERT INTO categories (id, updated_at, version, is_deleted, data_json,
			name, image_url, parent_category_id, is_top_level, path_to_root_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at=excluded.updated_at, version=excluded.version, is_deleted=excluded.is_deleted,
			data_json=excluded.data_json, name=excluded.name, image_url=excluded.image_url,
			parent_category_id=excluded.parent_category_id, is_top_level=excluded.is_top_level,
			path_to_root_json=excluded.path_to_root_json`,
		c.ID, c.UpdatedAt, c.Version, c.IsDeleted, c.DataJSON,
		c.Name, c.ImageURL, c.ParentCategoryID, nullableBoolToPtr(c.IsTopLevel), marshalJSON(c.PathToRoot))
	if err != nil {
		return "", fmt.Errorf("upsert category %s: %w", c.ID, err)
	}
	return outcome, nil
}

// DeleteCategory tombstones a category (sets is_deleted=true), per the
// tombstoning testable property. Returns NotDeleted if the row was
// already absent.
func (s *Store) DeleteCategory(ctx context.Context, tx *Tx, id string) (core.DeleteOutcome, error) {
	res, err := s.conn(tx).ExecContext(ctx, `UPDATE categories SET is_deleted=1 WHERE id=? AND is_deleted=0`, id)
	if err != nil {
		return "", fmt.Errorf("delete category %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.NotDeleted, nil
	}
	return core.Deleted, nil
}

// AllCategoryIDs returns the ids of all non-tombstoned categories, used
// by full-sync cleanup.
func (s *Store) AllCategoryIDs(ctx context.Context, tx *Tx) (map[string]struct{}, error) {
	rows, err := s.conn(tx).QueryContext(ctx, `SELECT id FROM categories WHERE is_deleted=0`)
	if err != nil {
		return nil, fmt.Errorf("list category ids: %w", err)
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
