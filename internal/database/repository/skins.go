package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SkinRepo stores avatar textures by name.
type SkinRepo struct {
	db *sql.DB
}

func NewSkinRepo(db *sql.DB) *SkinRepo {
	return &SkinRepo{db: db}
}

const upsertSkin = `
	INSERT INTO skins(name, value, signature, source, created_at, updated_at)
	VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(name) DO UPDATE SET
	 value=excluded.value,
	 signature=excluded.signature,
	 source=excluded.source,
	 updated_at=CURRENT_TIMESTAMP;
	`

func (r *SkinRepo) Upsert(ctx context.Context, s Skin) error {
	if s.Source == "" {
		s.Source = "import"
	}
	_, err := r.db.ExecContext(ctx, upsertSkin, s.Name, s.Value, s.Signature, s.Source)
	return err
}

// Import upserts every skin in one transaction and reports how many were written.
func (r *SkinRepo) Import(ctx context.Context, skins []Skin) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, upsertSkin)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer stmt.Close()
	for _, s := range skins {
		if s.Source == "" {
			s.Source = "import"
		}
		if _, err := stmt.ExecContext(ctx, s.Name, s.Value, s.Signature, s.Source); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("skin %s: %w", s.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(skins), nil
}

// Get returns the named skin, or nil when it is not stored.
func (r *SkinRepo) Get(ctx context.Context, name string) (*Skin, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT name, value, signature, source, created_at, updated_at
	FROM skins WHERE name = ?
	`, name)
	var s Skin
	err := row.Scan(&s.Name, &s.Value, &s.Signature, &s.Source, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SkinRepo) List(ctx context.Context) ([]Skin, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, value, signature, source, created_at, updated_at FROM skins ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Skin
	for rows.Next() {
		var s Skin
		if err := rows.Scan(&s.Name, &s.Value, &s.Signature, &s.Source, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a skin and reports whether it existed.
func (r *SkinRepo) Delete(ctx context.Context, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM skins WHERE name = ?`, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
