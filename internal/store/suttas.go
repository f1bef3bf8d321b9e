package store

import (
	"context"
	"database/sql"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
	"github.com/simsapa/tipitaka-engine/internal/model"
)

// InsertSutta inserts a new sutta row into the appdata store.
func (m *Manager) InsertSutta(ctx context.Context, s *model.Sutta) error {
	return m.Appdata.Write(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `
			INSERT INTO suttas (uid, sutta_ref, nikaya, language, title, title_pali, title_ascii,
				content_plain, content_html, content_json, content_json_tmpl,
				source_uid, copyright, license, sutta_range_start, sutta_range_end)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, s.UID, s.SuttaRef, s.Nikaya, s.Language, s.Title, s.TitlePali, s.TitleASCII,
			s.ContentPlain, s.ContentHTML, s.ContentJSON, s.ContentJSONTmpl,
			s.SourceUID, s.Copyright, s.License, nullableInt(s.HasSuttaRange, s.SuttaRangeStart), nullableInt(s.HasSuttaRange, s.SuttaRangeEnd))
		if err != nil {
			return corerr.Wrap(corerr.Store, "appdata", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return corerr.Wrap(corerr.Store, "appdata", err)
		}
		s.ID = id
		return nil
	})
}

func nullableInt(ok bool, v int) any {
	if !ok {
		return nil
	}
	return v
}

const suttaColumns = `id, uid, sutta_ref, nikaya, language, title, title_pali, title_ascii,
	content_plain, content_html, content_json, content_json_tmpl,
	source_uid, copyright, license, sutta_range_start, sutta_range_end`

const suttaColumnsPrefixed = `s.id, s.uid, s.sutta_ref, s.nikaya, s.language, s.title, s.title_pali, s.title_ascii,
	s.content_plain, s.content_html, s.content_json, s.content_json_tmpl,
	s.source_uid, s.copyright, s.license, s.sutta_range_start, s.sutta_range_end`

func scanSutta(row interface{ Scan(...any) error }) (*model.Sutta, error) {
	var s model.Sutta
	var titlePali, titleASCII, contentPlain, contentHTML, contentJSON, contentJSONTmpl sql.NullString
	var sourceUID, copyrightS, license sql.NullString
	var rangeStart, rangeEnd sql.NullInt64
	if err := row.Scan(&s.ID, &s.UID, &s.SuttaRef, &s.Nikaya, &s.Language, &s.Title,
		&titlePali, &titleASCII, &contentPlain, &contentHTML, &contentJSON, &contentJSONTmpl,
		&sourceUID, &copyrightS, &license, &rangeStart, &rangeEnd); err != nil {
		return nil, err
	}
	s.TitlePali = titlePali.String
	s.TitleASCII = titleASCII.String
	s.ContentPlain = contentPlain.String
	s.ContentHTML = contentHTML.String
	s.ContentJSON = contentJSON.String
	s.ContentJSONTmpl = contentJSONTmpl.String
	s.SourceUID = sourceUID.String
	s.Copyright = copyrightS.String
	s.License = license.String
	if rangeStart.Valid && rangeEnd.Valid {
		s.SuttaRangeStart = int(rangeStart.Int64)
		s.SuttaRangeEnd = int(rangeEnd.Int64)
		s.HasSuttaRange = true
	}
	return &s, nil
}

// GetSuttaByUID returns (nil, nil) when no sutta has that uid — absence
// is not a failure on read paths, per §7.
func (m *Manager) GetSuttaByUID(ctx context.Context, uid string) (*model.Sutta, error) {
	var result *model.Sutta
	err := m.Appdata.Read(ctx, func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `SELECT `+suttaColumns+` FROM suttas WHERE uid = ?`, uid)
		s, err := scanSutta(row)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return corerr.Wrap(corerr.Store, "appdata", err)
		}
		result = s
		return nil
	})
	return result, err
}

// ListSuttasByUIDPrefix supports UidMatch: "sn56" matches "sn56.*".
func (m *Manager) ListSuttasByUIDPrefix(ctx context.Context, prefix, language string) ([]*model.Sutta, error) {
	var results []*model.Sutta
	err := m.Appdata.Read(ctx, func(db *sql.DB) error {
		q := `SELECT ` + suttaColumns + ` FROM suttas WHERE uid LIKE ? ESCAPE '\'`
		args := []any{escapeLike(prefix) + "%"}
		if language != "" {
			q += ` AND language = ?`
			args = append(args, language)
		}
		q += ` ORDER BY id ASC`
		rows, err := db.QueryContext(ctx, q, args...)
		if err != nil {
			return corerr.Wrap(corerr.Store, "appdata", err)
		}
		defer rows.Close()
		for rows.Next() {
			s, err := scanSutta(rows)
			if err != nil {
				return corerr.Wrap(corerr.Store, "appdata", err)
			}
			results = append(results, s)
		}
		return rows.Err()
	})
	return results, err
}

// ListSuttasByRefPrefix finds related suttas: uid LIKE "<ref>/%",
// "<ref>.att/%", or "<ref>.tik/%", excluding the caller's own uid.
func (m *Manager) ListSuttasByRefPrefix(ctx context.Context, ref, excludeUID string) ([]*model.Sutta, error) {
	var results []*model.Sutta
	err := m.Appdata.Read(ctx, func(db *sql.DB) error {
		q := `SELECT ` + suttaColumns + ` FROM suttas
			WHERE (uid LIKE ? ESCAPE '\' OR uid LIKE ? ESCAPE '\' OR uid LIKE ? ESCAPE '\') AND uid != ?`
		escaped := escapeLike(ref)
		rows, err := db.QueryContext(ctx, q, escaped+"/%", escaped+".att/%", escaped+".tik/%", excludeUID)
		if err != nil {
			return corerr.Wrap(corerr.Store, "appdata", err)
		}
		defer rows.Close()
		for rows.Next() {
			s, err := scanSutta(rows)
			if err != nil {
				return corerr.Wrap(corerr.Store, "appdata", err)
			}
			results = append(results, s)
		}
		return rows.Err()
	})
	return results, err
}

func escapeLike(s string) string {
	r := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' || c == '_' || c == '\\' {
			r = append(r, '\\')
		}
		r = append(r, c)
	}
	return string(r)
}

// ContainsSuttas runs the ContainsMatch mode: LIKE %query% over
// content_plain, ordered by uid, with an optional language filter.
func (m *Manager) ContainsSuttas(ctx context.Context, query, language string) ([]*model.Sutta, error) {
	var results []*model.Sutta
	err := m.Appdata.Read(ctx, func(db *sql.DB) error {
		q := `SELECT ` + suttaColumns + ` FROM suttas WHERE content_plain LIKE ? ESCAPE '\'`
		args := []any{"%" + escapeLike(query) + "%"}
		if language != "" {
			q += ` AND language = ?`
			args = append(args, language)
		}
		q += ` ORDER BY uid ASC`
		rows, err := db.QueryContext(ctx, q, args...)
		if err != nil {
			return corerr.Wrap(corerr.Store, "appdata", err)
		}
		defer rows.Close()
		for rows.Next() {
			s, err := scanSutta(rows)
			if err != nil {
				return corerr.Wrap(corerr.Store, "appdata", err)
			}
			results = append(results, s)
		}
		return rows.Err()
	})
	return results, err
}

// TitleMatchSuttas runs the TitleMatch mode: case-insensitive
// Latinization-folded substring over title_ascii, ordered by uid.
func (m *Manager) TitleMatchSuttas(ctx context.Context, asciiQuery, language string) ([]*model.Sutta, error) {
	var results []*model.Sutta
	err := m.Appdata.Read(ctx, func(db *sql.DB) error {
		q := `SELECT ` + suttaColumns + ` FROM suttas WHERE title_ascii LIKE ? ESCAPE '\'`
		args := []any{"%" + escapeLike(asciiQuery) + "%"}
		if language != "" {
			q += ` AND language = ?`
			args = append(args, language)
		}
		q += ` ORDER BY uid ASC`
		rows, err := db.QueryContext(ctx, q, args...)
		if err != nil {
			return corerr.Wrap(corerr.Store, "appdata", err)
		}
		defer rows.Close()
		for rows.Next() {
			s, err := scanSutta(rows)
			if err != nil {
				return corerr.Wrap(corerr.Store, "appdata", err)
			}
			results = append(results, s)
		}
		return rows.Err()
	})
	return results, err
}

// ListAllSuttas supports RegExMatch's full-scan requirement: every sutta,
// optionally filtered by language, ordered by uid.
func (m *Manager) ListAllSuttas(ctx context.Context, language string) ([]*model.Sutta, error) {
	var results []*model.Sutta
	err := m.Appdata.Read(ctx, func(db *sql.DB) error {
		q := `SELECT ` + suttaColumns + ` FROM suttas`
		var args []any
		if language != "" {
			q += ` WHERE language = ?`
			args = append(args, language)
		}
		q += ` ORDER BY uid ASC`
		rows, err := db.QueryContext(ctx, q, args...)
		if err != nil {
			return corerr.Wrap(corerr.Store, "appdata", err)
		}
		defer rows.Close()
		for rows.Next() {
			s, err := scanSutta(rows)
			if err != nil {
				return corerr.Wrap(corerr.Store, "appdata", err)
			}
			results = append(results, s)
		}
		return rows.Err()
	})
	return results, err
}

// FulltextSuttas runs FTS5 MATCH over suttas_fts, rows in FTS5 rank order.
func (m *Manager) FulltextSuttas(ctx context.Context, query string) ([]*model.Sutta, error) {
	var results []*model.Sutta
	err := m.Appdata.Read(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT `+suttaColumnsPrefixed+` FROM suttas_fts
			JOIN suttas s ON s.id = suttas_fts.rowid
			WHERE suttas_fts MATCH ? ORDER BY rank`, query)
		if err != nil {
			return corerr.Wrap(corerr.Store, "appdata", err)
		}
		defer rows.Close()
		for rows.Next() {
			s, err := scanSutta(rows)
			if err != nil {
				return corerr.Wrap(corerr.Store, "appdata", err)
			}
			results = append(results, s)
		}
		return rows.Err()
	})
	return results, err
}

