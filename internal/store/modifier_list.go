package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

func (s *Store) GetModifierList(ctx context.Context, tx *Tx, id string) (*core.ModifierList, error) {
	row := s.conn(tx).QueryRowContext(ctx, `
		SELECT id, updated_at, version, is_deleted, data_json,
		       name, selection_type, ordinal, modifier_ids_json
		FROM modifier_lists WHERE id = ?`, id)

	var ml core.ModifierList
	var selectionType sql.NullString
	var ordinal sql.NullInt64
	var idsJSON sql.NullString
	if err := row.Scan(&ml.ID, &ml.UpdatedAt, &ml.Version, &ml.IsDeleted, &ml.DataJSON,
		&ml.Name, &selectionType, &ordinal, &idsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get modifier list %s: %w", id, err)
	}
	ml.SelectionType = core.SelectionType(selectionType.String)
	if ordinal.Valid {
		ml.Ordinal = &ordinal.Int64
	}
	ml.ModifierIDs = unmarshalStrings(nullString(idsJSON))
	return &ml, nil
}

func (s *Store) UpsertModifierList(ctx context.Context, tx *Tx, ml core.ModifierList) (core.UpsertOutcome, error) {
	_, err := s.GetModifierList(ctx, tx, ml.ID)
	outcome := core.Updated
	if err == ErrNotFound {
		outcome = core.Inserted
	} else if err != nil {
		return "", err
	}

	_, err = s.conn(tx).ExecContext(ctx, `
		INSERT INTO modifier_lists (id, updated_at, version, is_deleted, data_json,
			name, selection_type, ordinal, modifier_ids_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at=excluded.updated_at, version=excluded.version, is_deleted=excluded.is_deleted,
			data_json=excluded.data_json, name=excluded.name, selection_type=excluded.selection_type,
			ordinal=excluded.ordinal, modifier_ids_json=excluded.modifier_ids_json`,
		ml.ID, ml.UpdatedAt, ml.Version, ml.IsDeleted, ml.DataJSON,
		ml.Name, string(ml.SelectionType), ml.Ordinal, marshalStrings(ml.ModifierIDs))
	if err != nil {
		return "", fmt.Errorf("upsert modifier list %s: %w", ml.ID, err)
	}
	return outcome, nil
}

func (s *Store) DeleteModifierList(ctx context.Context, tx *Tx, id string) (core.DeleteOutcome, error) {
	res, err := s.conn(tx).ExecContext(ctx, `UPDATE modifier_lists SET is_deleted=1 WHERE id=? AND is_deleted=0`, id)
	if err != nil {
		return "", fmt.Errorf("delete modifier list %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.NotDeleted, nil
	}
	return core.Deleted, nil
}
