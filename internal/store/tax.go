package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

func (s *Store) GetTax(ctx context.Context, tx *Tx, id string) (*core.Tax, error) {
	row := s.conn(tx).QueryRowContext(ctx, `
		SELECT id, updated_at, version, is_deleted, data_json,
		       name, calculation_phase, inclusion_type, percentage, enabled, applies_to_custom_amounts
		FROM taxes WHERE id = ?`, id)

	var t core.Tax
	var phase, inclusion, pct sql.NullString
	if err := row.Scan(&t.ID, &t.UpdatedAt, &t.Version, &t.IsDeleted, &t.DataJSON,
		&t.Name, &phase, &inclusion, &pct, &t.Enabled, &t.AppliesToCustomAmounts); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get tax %s: %w", id, err)
	}
	t.CalculationPhase = nullString(phase)
	t.InclusionType = nullString(inclusion)
	t.Percentage = nullString(pct)
	return &t, nil
}

func (s *Store) UpsertTax(ctx context.Context, tx *Tx, t core.Tax) (core.UpsertOutcome, error) {
	_, err := s.GetTax(ctx, tx, t.ID)
	outcome := core.Updated
	if err == ErrNotFound {
		outcome = core.Inserted
	} else if err != nil {
		return "", err
	}

	_, err = s.conn(tx).ExecContext(ctx, `
		INSERT INTO taxes (id, updated_at, version, is_deleted, data_json,
			name, calculation_phase, inclusion_type, percentage, enabled, applies_to_custom_amounts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at=excluded.updated_at, version=excluded.version, is_deleted=excluded.is_deleted,
			data_json=excluded.data_json, name=excluded.name, calculation_phase=excluded.calculation_phase,
			inclusion_type=excluded.inclusion_type, percentage=excluded.percentage,
			enabled=excluded.enabled, applies_to_custom_amounts=excluded.applies_to_custom_amounts`,
		t.ID, t.UpdatedAt, t.Version, t.IsDeleted, t.DataJSON,
		t.Name, t.CalculationPhase, t.InclusionType, t.Percentage, t.Enabled, t.AppliesToCustomAmounts)
	if err != nil {
		return "", fmt.Errorf("upsert tax %s: %w", t.ID, err)
	}
	return outcome, nil
}

func (s *Store) DeleteTax(ctx context.Context, tx *Tx, id string) (core.DeleteOutcome, error) {
	res, err := s.conn(tx).ExecContext(ctx, `UPDATE taxes SET is_deleted=1 WHERE id=? AND is_deleted=0`, id)
	if err != nil {
		return "", fmt.Errorf("delete tax %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.NotDeleted, nil
	}
	return core.Deleted, nil
}
