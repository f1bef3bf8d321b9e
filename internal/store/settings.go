package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
	"github.com/simsapa/tipitaka-engine/internal/model"
)

const appSettingsKey = "app_settings"

// settingsDoc is the JSON-encoded shape stored under appSettingsKey;
// db_version is tracked separately by the migration runner and is not
// part of this document.
type settingsDoc struct {
	FontSize       int                `json:"fontSize"`
	MaxWidth       int                `json:"maxWidth"`
	ShowBookmarks  bool               `json:"showBookmarks"`
	ShowLineByLine bool               `json:"showLineByLine"`
	Theme          string             `json:"theme"`
	APIKeys        map[string]string  `json:"apiKeys"`
	SystemPrompts  map[string]string  `json:"systemPrompts"`
	Models         []model.ModelEntry `json:"models"`
}

// LoadAppSettings returns the persisted settings, or the compiled
// defaults seeded on first access (§5: the AppSettings record is cached
// per-process by the caller, e.g. internal/appctx; this is the read-
// through to disk).
func (m *Manager) LoadAppSettings(ctx context.Context) (model.AppSettings, error) {
	defaults := model.DefaultAppSettings()
	var doc settingsDoc
	err := m.Userdata.Read(ctx, func(db *sql.DB) error {
		var raw string
		row := db.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = ?`, appSettingsKey)
		if err := row.Scan(&raw); err == sql.ErrNoRows {
			doc = settingsDoc{
				FontSize: defaults.FontSize, MaxWidth: defaults.MaxWidth,
				ShowBookmarks: defaults.ShowBookmarks, ShowLineByLine: defaults.ShowLineByLine,
				Theme: defaults.Theme, APIKeys: defaults.APIKeys, SystemPrompts: defaults.SystemPrompts,
			}
			return nil
		} else if err != nil {
			return corerr.Wrap(corerr.Store, "userdata", err)
		}
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return corerr.Wrap(corerr.Decode, "userdata", err)
		}
		return nil
	})
	if err != nil {
		return model.AppSettings{}, err
	}
	return model.AppSettings{
		FontSize: doc.FontSize, MaxWidth: doc.MaxWidth,
		ShowBookmarks: doc.ShowBookmarks, ShowLineByLine: doc.ShowLineByLine,
		Theme: doc.Theme, APIKeys: doc.APIKeys, SystemPrompts: doc.SystemPrompts,
		Models: doc.Models, DBVersion: defaults.DBVersion,
	}, nil
}

// SaveAppSettings writes settings back, overwriting whatever was there.
// Callers (internal/appctx) invalidate any in-process cache after this
// returns.
func (m *Manager) SaveAppSettings(ctx context.Context, s model.AppSettings) error {
	doc := settingsDoc{
		FontSize: s.FontSize, MaxWidth: s.MaxWidth, ShowBookmarks: s.ShowBookmarks,
		ShowLineByLine: s.ShowLineByLine, Theme: s.Theme, APIKeys: s.APIKeys,
		SystemPrompts: s.SystemPrompts, Models: s.Models,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return corerr.Wrap(corerr.Decode, "userdata", err)
	}
	return m.Userdata.Write(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO app_settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, appSettingsKey, string(raw))
		return corerr.Wrap(corerr.Store, "userdata", err)
	})
}
