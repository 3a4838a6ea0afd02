package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

func (s *Store) GetImage(ctx context.Context, tx *Tx, id string) (*core.Image, error) {
	row := s.conn(tx).QueryRowContext(ctx, `
		SELECT id, updated_at, version, is_deleted, data_json, name, url, caption
		FROM images WHERE id = ?`, id)

	var img core.Image
	var name, url, caption sql.NullString
	if err := row.Scan(&img.ID, &img.UpdatedAt, &img.Version, &img.IsDeleted, &img.DataJSON,
		&name, &url, &caption); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get image %s: %w", id, err)
	}
	img.Name = nullString(name)
	img.URL = nullString(url)
	img.Caption = nullString(caption)
	return &img, nil
}

func (s *Store) UpsertImage(ctx context.Context, tx *Tx, img core.Image) (core.UpsertOutcome, error) {
	_, err := s.GetImage(ctx, tx, img.ID)
	outcome := core.Updated
	if err == ErrNotFound {
		outcome = core.Inserted
	} else if err != nil {
		return "", err
	}

	_, err = s.conn(tx).ExecContext(ctx, `
		INSERT INTO images (id, updated_at, version, is_deleted, data_json, name, url, caption)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at=excluded.updated_at, version=excluded.version, is_deleted=excluded.is_deleted,
			data_json=excluded.data_json, name=excluded.name, url=excluded.url, caption=excluded.caption`,
		img.ID, img.UpdatedAt, img.Version, img.IsDeleted, img.DataJSON, img.Name, img.URL, img.Caption)
	if err != nil {
		return "", fmt.Errorf("upsert image %s: %w", img.ID, err)
	}
	return outcome, nil
}

func (s *Store) DeleteImage(ctx context.Context, tx *Tx, id string) (core.DeleteOutcome, error) {
	res, err := s.conn(tx).ExecContext(ctx, `UPDATE images SET is_deleted=1 WHERE id=? AND is_deleted=0`, id)
	if err != nil {
		return "", fmt.Errorf("delete image %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.NotDeleted, nil
	}
	return core.Deleted, nil
}
