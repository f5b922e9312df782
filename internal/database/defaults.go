package database

import (
	"context"
	"database/sql"

	"github.com/jask/rostertab/internal/roster"
)

// SeedDefaults ensures the fallback skin exists for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	return WithTx(db, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM skins WHERE name = ?`, roster.UnknownAvatar.Name).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO skins(name, value, signature, source)
		VALUES (?, ?, ?, 'default')
		`, roster.UnknownAvatar.Name, roster.UnknownAvatar.Value, roster.UnknownAvatar.Signature)
		return err
	})
}
