package store

import (
	"context"
	"database/sql"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
	"github.com/simsapa/tipitaka-engine/internal/model"
)

const dpdHeadwordColumns = `id, uid, lemma_1, lemma_2, pos, meaning_1, construction, grammar,
	derived_from, derivative, example_1, synonym, antonym, summary, lemma_clean`

func scanDpdHeadword(row interface{ Scan(...any) error }) (*model.DpdHeadword, error) {
	var h model.DpdHeadword
	var lemma2, pos, meaning1, construction, grammar, derivedFrom, derivative, example1, synonym, antonym, summary, lemmaClean sql.NullString
	if err := row.Scan(&h.ID, &h.UID, &h.Lemma1, &lemma2, &pos, &meaning1, &construction, &grammar,
		&derivedFrom, &derivative, &example1, &synonym, &antonym, &summary, &lemmaClean); err != nil {
		return nil, err
	}
	h.Lemma2 = lemma2.String
	h.POS = pos.String
	h.Meaning1 = meaning1.String
	h.Construction = construction.String
	h.Grammar = grammar.String
	h.DerivedFrom = derivedFrom.String
	h.Derivative = derivative.String
	h.Example1 = example1.String
	h.Synonym = synonym.String
	h.Antonym = antonym.String
	h.Summary = summary.String
	h.LemmaClean = lemmaClean.String
	return &h, nil
}

// GetDpdHeadwordByID returns (nil, nil) when absent.
func (m *Manager) GetDpdHeadwordByID(ctx context.Context, id int64) (*model.DpdHeadword, error) {
	var result *model.DpdHeadword
	err := m.Dpd.Read(ctx, func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `SELECT `+dpdHeadwordColumns+` FROM dpd_headwords WHERE id = ?`, id)
		h, err := scanDpdHeadword(row)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return corerr.Wrap(corerr.Store, "dpd", err)
		}
		result = h
		return nil
	})
	return result, err
}

// GetLookup returns (nil, nil) when the key is absent from the Lookup
// table.
func (m *Manager) GetLookup(ctx context.Context, lookupKey string) (*model.Lookup, error) {
	var result *model.Lookup
	err := m.Dpd.Read(ctx, func(db *sql.DB) error {
		var l model.Lookup
		var headwords, roots, decon sql.NullString
		row := db.QueryRowContext(ctx, `SELECT lookup_key, headwords_json, roots_json, decon_json FROM lookups WHERE lookup_key = ?`, lookupKey)
		if err := row.Scan(&l.LookupKey, &headwords, &roots, &decon); err == sql.ErrNoRows {
			return nil
		} else if err != nil {
			return corerr.Wrap(corerr.Store, "dpd", err)
		}
		l.HeadwordsJSON = headwords.String
		l.RootsJSON = roots.String
		l.DeconJSON = decon.String
		result = &l
		return nil
	})
	return result, err
}

// InsertLookupsChunk bulk-inserts Lookup rows within a single transaction.
func (m *Manager) InsertLookupsChunk(ctx context.Context, lookups []*model.Lookup) error {
	return m.Dpd.WithWriteTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO lookups (lookup_key, headwords_json, roots_json, decon_json)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(lookup_key) DO UPDATE SET
				headwords_json = excluded.headwords_json,
				roots_json = excluded.roots_json,
				decon_json = excluded.decon_json`)
		if err != nil {
			return corerr.Wrap(corerr.Import, "dpd", err)
		}
		defer stmt.Close()
		for _, l := range lookups {
			if _, err := stmt.ExecContext(ctx, l.LookupKey, l.HeadwordsJSON, l.RootsJSON, l.DeconJSON); err != nil {
				return corerr.Wrap(corerr.Import, "dpd", err)
			}
		}
		return nil
	})
}

// InsertDpdHeadwordsChunk bulk-inserts headwords within a single
// transaction.
func (m *Manager) InsertDpdHeadwordsChunk(ctx context.Context, headwords []*model.DpdHeadword) error {
	return m.Dpd.WithWriteTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO dpd_headwords (id, uid, lemma_1, lemma_2, pos, meaning_1, construction,
				grammar, derived_from, derivative, example_1, synonym, antonym, summary, lemma_clean)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET summary = excluded.summary`)
		if err != nil {
			return corerr.Wrap(corerr.Import, "dpd", err)
		}
		defer stmt.Close()
		for _, h := range headwords {
			if _, err := stmt.ExecContext(ctx, h.ID, h.UID, h.Lemma1, h.Lemma2, h.POS, h.Meaning1,
				h.Construction, h.Grammar, h.DerivedFrom, h.Derivative, h.Example1, h.Synonym,
				h.Antonym, h.Summary, h.LemmaClean); err != nil {
				return corerr.Wrap(corerr.Import, "dpd", err)
			}
		}
		return nil
	})
}
