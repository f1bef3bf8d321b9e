package store

import (
	"context"
	"database/sql"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
	"github.com/simsapa/tipitaka-engine/internal/model"
)

// UpsertDictionary inserts or returns the existing dictionary row for
// label, which is unique.
func (m *Manager) UpsertDictionary(ctx context.Context, d *model.Dictionary) error {
	return m.Dictionaries.Write(ctx, func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `SELECT id FROM dictionaries WHERE label = ?`, d.Label)
		var id int64
		if err := row.Scan(&id); err == nil {
			d.ID = id
			_, err := db.ExecContext(ctx, `UPDATE dictionaries SET title = ? WHERE id = ?`, d.Title, id)
			return corerr.Wrap(corerr.Store, "dictionaries", err)
		} else if err != sql.ErrNoRows {
			return corerr.Wrap(corerr.Store, "dictionaries", err)
		}
		res, err := db.ExecContext(ctx, `INSERT INTO dictionaries (label, title) VALUES (?, ?)`, d.Label, d.Title)
		if err != nil {
			return corerr.Wrap(corerr.Store, "dictionaries", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return corerr.Wrap(corerr.Store, "dictionaries", err)
		}
		d.ID = id
		return nil
	})
}

// DeleteDictionary cascades to delete every DictWord belonging to it
// (testable property 6).
func (m *Manager) DeleteDictionary(ctx context.Context, label string) error {
	return m.Dictionaries.Write(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `DELETE FROM dictionaries WHERE label = ?`, label)
		return corerr.Wrap(corerr.Store, "dictionaries", err)
	})
}

// InsertDictWordsChunk bulk-inserts a chunk (~5000 rows) of dict words in
// a single transaction; any row error rolls back the whole chunk.
func (m *Manager) InsertDictWordsChunk(ctx context.Context, words []*model.DictWord) error {
	return m.Dictionaries.WithWriteTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO dict_words (uid, dictionary_id, word, word_ascii, language,
				definition_plain, definition_html, summary, synonyms, etymology)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(uid) DO UPDATE SET
				definition_plain = excluded.definition_plain,
				definition_html = excluded.definition_html,
				summary = excluded.summary,
				synonyms = excluded.synonyms`)
		if err != nil {
			return corerr.Wrap(corerr.Import, "dictionaries", err)
		}
		defer stmt.Close()
		for _, w := range words {
			if _, err := stmt.ExecContext(ctx, w.UID, w.DictionaryID, w.Word, w.WordASCII, w.Language,
				w.DefinitionPlain, w.DefinitionHTML, w.Summary, w.Synonyms, w.Etymology); err != nil {
				return corerr.Wrap(corerr.Import, "dictionaries", err)
			}
		}
		return nil
	})
}

const dictWordColumns = `id, uid, dictionary_id, word, word_ascii, language,
	definition_plain, definition_html, summary, synonyms, etymology`

func scanDictWord(row interface{ Scan(...any) error }) (*model.DictWord, error) {
	var w model.DictWord
	var wordASCII, language, defPlain, defHTML, summary, synonyms, etymology sql.NullString
	if err := row.Scan(&w.ID, &w.UID, &w.DictionaryID, &w.Word, &wordASCII, &language,
		&defPlain, &defHTML, &summary, &synonyms, &etymology); err != nil {
		return nil, err
	}
	w.WordASCII = wordASCII.String
	w.Language = language.String
	w.DefinitionPlain = defPlain.String
	w.DefinitionHTML = defHTML.String
	w.Summary = summary.String
	w.Synonyms = synonyms.String
	w.Etymology = etymology.String
	return &w, nil
}

// GetDictWordByUID returns (nil, nil) when absent.
func (m *Manager) GetDictWordByUID(ctx context.Context, uid string) (*model.DictWord, error) {
	var result *model.DictWord
	err := m.Dictionaries.Read(ctx, func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `SELECT `+dictWordColumns+` FROM dict_words WHERE uid = ?`, uid)
		w, err := scanDictWord(row)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return corerr.Wrap(corerr.Store, "dictionaries", err)
		}
		result = w
		return nil
	})
	return result, err
}

// HeadwordMatchDictWords: string-contains over word, case-insensitive
// with Latinization fold is applied by the caller (internal/search).
func (m *Manager) HeadwordMatchDictWords(ctx context.Context, asciiQuery string) ([]*model.DictWord, error) {
	var results []*model.DictWord
	err := m.Dictionaries.Read(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			`SELECT `+dictWordColumns+` FROM dict_words WHERE word_ascii LIKE ? ESCAPE '\' ORDER BY word_ascii ASC`,
			"%"+escapeLike(asciiQuery)+"%")
		if err != nil {
			return corerr.Wrap(corerr.Store, "dictionaries", err)
		}
		defer rows.Close()
		for rows.Next() {
			w, err := scanDictWord(rows)
			if err != nil {
				return corerr.Wrap(corerr.Store, "dictionaries", err)
			}
			results = append(results, w)
		}
		return rows.Err()
	})
	return results, err
}

// ListAllDictWords supports RegExMatch's full-scan requirement: every
// dict word, optionally filtered by language, ordered by word_ascii.
func (m *Manager) ListAllDictWords(ctx context.Context, language string) ([]*model.DictWord, error) {
	var results []*model.DictWord
	err := m.Dictionaries.Read(ctx, func(db *sql.DB) error {
		q := `SELECT ` + dictWordColumns + ` FROM dict_words`
		var args []any
		if language != "" {
			q += ` WHERE language = ?`
			args = append(args, language)
		}
		q += ` ORDER BY word_ascii ASC`
		rows, err := db.QueryContext(ctx, q, args...)
		if err != nil {
			return corerr.Wrap(corerr.Store, "dictionaries", err)
		}
		defer rows.Close()
		for rows.Next() {
			w, err := scanDictWord(rows)
			if err != nil {
				return corerr.Wrap(corerr.Store, "dictionaries", err)
			}
			results = append(results, w)
		}
		return rows.Err()
	})
	return results, err
}

// FulltextDictWords runs FTS5 MATCH over dict_words_fts.
func (m *Manager) FulltextDictWords(ctx context.Context, query string) ([]*model.DictWord, error) {
	var results []*model.DictWord
	err := m.Dictionaries.Read(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT w.id, w.uid, w.dictionary_id, w.word, w.word_ascii, w.language,
				w.definition_plain, w.definition_html, w.summary, w.synonyms, w.etymology
			FROM dict_words_fts
			JOIN dict_words w ON w.id = dict_words_fts.rowid
			WHERE dict_words_fts MATCH ? ORDER BY rank`, query)
		if err != nil {
			return corerr.Wrap(corerr.Store, "dictionaries", err)
		}
		defer rows.Close()
		for rows.Next() {
			w, err := scanDictWord(rows)
			if err != nil {
				return corerr.Wrap(corerr.Store, "dictionaries", err)
			}
			results = append(results, w)
		}
		return rows.Err()
	})
	return results, err
}
