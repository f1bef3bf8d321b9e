package store

import (
	"context"
	"database/sql"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
	"github.com/simsapa/tipitaka-engine/internal/model"
)

// InsertBook inserts a Book with its spine items and resources inside a
// single write transaction.
func (m *Manager) InsertBook(ctx context.Context, b *model.Book, spine []*model.BookSpineItem, resources []*model.BookResource) error {
	return m.Userdata.WithWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO books (uid, title, author, language, document_type, metadata_json)
			VALUES (?, ?, ?, ?, ?, ?)`,
			b.UID, b.Title, b.Author, b.Language, b.DocumentType, b.MetadataJSON)
		if err != nil {
			return corerr.Wrap(corerr.Import, "userdata", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return corerr.Wrap(corerr.Import, "userdata", err)
		}
		b.ID = id

		for _, item := range spine {
			item.BookID = id
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO book_spine_items (book_id, spine_index, title, content_html, content_plain, resource_path)
				VALUES (?, ?, ?, ?, ?, ?)`,
				item.BookID, item.SpineIndex, item.Title, item.ContentHTML, item.ContentPlain, item.ResourcePath); err != nil {
				return corerr.Wrap(corerr.Import, "userdata", err)
			}
		}
		for _, r := range resources {
			r.BookID = id
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO book_resources (book_id, path, mime, content_data)
				VALUES (?, ?, ?, ?)`,
				r.BookID, r.Path, r.Mime, r.ContentData); err != nil {
				return corerr.Wrap(corerr.Import, "userdata", err)
			}
		}
		return nil
	})
}

// GetBookResource returns (nil, nil) when absent.
func (m *Manager) GetBookResource(ctx context.Context, bookUID, path string) (*model.BookResource, error) {
	var result *model.BookResource
	err := m.Userdata.Read(ctx, func(db *sql.DB) error {
		var r model.BookResource
		row := db.QueryRowContext(ctx, `
			SELECT br.id, br.book_id, br.path, br.mime, br.content_data
			FROM book_resources br JOIN books b ON b.id = br.book_id
			WHERE b.uid = ? AND br.path = ?`, bookUID, path)
		if err := row.Scan(&r.ID, &r.BookID, &r.Path, &r.Mime, &r.ContentData); err == sql.ErrNoRows {
			return nil
		} else if err != nil {
			return corerr.Wrap(corerr.Store, "userdata", err)
		}
		result = &r
		return nil
	})
	return result, err
}
