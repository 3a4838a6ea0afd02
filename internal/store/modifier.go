package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

func (s *Store) GetModifier(ctx context.Context, tx *Tx, id string) (*core.Modifier, error) {
	row := s.conn(tx).QueryRowContext(ctx, `
		SELECT id, updated_at, version, is_deleted, data_json,
		       modifier_list_id, name, price_amount, price_currency, ordinal, on_by_default
		FROM modifiers WHERE id = ?`, id)

	var m core.Modifier
	var priceCurrency sql.NullString
	var priceAmount, ordinal sql.NullInt64
	if err := row.Scan(&m.ID, &m.UpdatedAt, &m.Version, &m.IsDeleted, &m.DataJSON,
		&m.ModifierListID, &m.Name, &priceAmount, &priceCurrency, &ordinal, &m.OnByDefault); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get modifier %s: %w", id, err)
	}
	if priceAmount.Valid {
		m.PriceAmount = &priceAmount.Int64
	}
	m.PriceCurrency = nullString(priceCurrency)
	if ordinal.Valid {
		m.Ordinal = &ordinal.Int64
	}
	return &m, nil
}

func (s *Store) UpsertModifier(ctx context.Context, tx *Tx, m core.Modifier) (core.UpsertOutcome, error) {
	_, err := s.GetModifier(ctx, tx, m.ID)
	outcome := core.Updated
	if err == ErrNotFound {
		outcome = core.Inserted
	} else if err != nil {
		return "", err
	}

	_, err = s.conn(tx).ExecContext(ctx, `
		INSERT INTO modifiers (id, updated_at, version, is_deleted, data_json,
			modifier_list_id, name, price_amount, price_currency, ordinal, on_by_default)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at=excluded.updated_at, version=excluded.version, is_deleted=excluded.is_deleted,
			data_json=excluded.data_json, modifier_list_id=excluded.modifier_list_id, name=excluded.name,
			price_amount=excluded.price_amount, price_currency=excluded.price_currency,
			ordinal=excluded.ordinal, on_by_default=excluded.on_by_default`,
		m.ID, m.UpdatedAt, m.Version, m.IsDeleted, m.DataJSON,
		m.ModifierListID, m.Name, m.PriceAmount, m.PriceCurrency, m.Ordinal, m.OnByDefault)
	if err != nil {
		return "", fmt.Errorf("upsert modifier %s: %w", m.ID, err)
	}
	return outcome, nil
}

func (s *Store) DeleteModifier(ctx context.Context, tx *Tx, id string) (core.DeleteOutcome, error) {
	res, err := s.conn(tx).ExecContext(ctx, `UPDATE modifiers SET is_deleted=1 WHERE id=? AND is_deleted=0`, id)
	if err != nil {
		return "", fmt.Errorf("delete modifier %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.NotDeleted, nil
	}
	return core.Deleted, nil
}
