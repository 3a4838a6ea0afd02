package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

func (s *Store) GetDiscount(ctx context.Context, tx *Tx, id string) (*core.Discount, error) {
	row := s.conn(tx).QueryRowContext(ctx, `
		SELECT id, updated_at, version, is_deleted, data_json,
		       name, discount_type, percentage, amount, amount_currency
		FROM discounts WHERE id = ?`, id)

	var d core.Discount
	var discountType, pct, currency sql.NullString
	var amount sql.NullInt64
	if err := row.Scan(&d.ID, &d.UpdatedAt, &d.Version, &d.IsDeleted, &d.DataJSON,
		&d.Name, &discountType, &pct, &amount, &currency); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get discount %s: %w", id, err)
	}
	d.DiscountType = nullString(discountType)
	d.Percentage = nullString(pct)
	if amount.Valid && currency.Valid {
		d.Amount = &core.Money{Amount: amount.Int64, Currency: currency.String}
	}
	return &d, nil
}

func (s *Store) UpsertDiscount(ctx context.Context, tx *Tx, d core.Discount) (core.UpsertOutcome, error) {
	_, err := s.GetDiscount(ctx, tx, d.ID)
	outcome := core.Updated
	if err == ErrNotFound {
		outcome = core.Inserted
	} else if err != nil {
		return "", err
	}

	var amount any
	var currency any
	if d.Amount != nil {
		amount = d.Amount.Amount
		currency = d.Amount.Currency
	}

	_, err = s.conn(tx).ExecContext(ctx, `
		INSERT INTO discounts (id, updated_at, version, is_deleted, data_json,
			name, discount_type, percentage, amount, amount_currency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at=excluded.updated_at, version=excluded.version, is_deleted=excluded.is_deleted,
			data_json=excluded.data_json, name=excluded.name, discount_type=excluded.discount_type,
			percentage=excluded.percentage, amount=excluded.amount, amount_currency=excluded.amount_currency`,
		d.ID, d.UpdatedAt, d.Version, d.IsDeleted, d.DataJSON,
		d.Name, d.DiscountType, d.Percentage, amount, currency)
	if err != nil {
		return "", fmt.Errorf("upsert discount %s: %w", d.ID, err)
	}
	return outcome, nil
}

func (s *Store) DeleteDiscount(ctx context.Context, tx *Tx, id string) (core.DeleteOutcome, error) {
	res, err := s.conn(tx).ExecContext(ctx, `UPDATE discounts SET is_deleted=1 WHERE id=? AND is_deleted=0`, id)
	if err != nil {
		return "", fmt.Errorf("delete discount %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.NotDeleted, nil
	}
	return core.Deleted, nil
}
