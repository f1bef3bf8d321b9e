package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
)

// migration is one linear schema step. Migrations run in order and the
// applied version is tagged in app_settings.db_version, per §4.1/§6.
type migration struct {
	version int
	sql     string
}

var userdataMigrations = []migration{
	{version: 1, sql: userdataSchema},
	// Future schema changes append here; never edit an applied entry.
}

func (m *Manager) migrateUserdata(ctx context.Context) error {
	return m.Userdata.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS app_settings (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
			return corerr.Wrap(corerr.Store, "userdata", err)
		}
		current := 0
		row := tx.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = 'db_version'`)
		var raw string
		if err := row.Scan(&raw); err == nil {
			fmt.Sscanf(raw, "%d", &current)
		} else if err != sql.ErrNoRows {
			return corerr.Wrap(corerr.Store, "userdata", err)
		}

		for _, mig := range userdataMigrations {
			if mig.version <= current {
				continue
			}
			if _, err := tx.ExecContext(ctx, mig.sql); err != nil {
				return corerr.Wrap(corerr.Store, "userdata", fmt.Errorf("migration %d: %w", mig.version, err))
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO app_settings(key, value) VALUES('db_version', ?)
				 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
				fmt.Sprintf("%d", mig.version)); err != nil {
				return corerr.Wrap(corerr.Store, "userdata", err)
			}
			current = mig.version
		}
		return nil
	})
}
