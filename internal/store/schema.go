package store

// appdataSchema holds the shipped, read-mostly catalog of suttas.
// Manager.Open applies it only in Bootstrap mode; otherwise the file must
// already exist (it ships pre-populated with the application), and a
// missing file is an error.
const appdataSchema = `
CREATE TABLE IF NOT EXISTS suttas (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uid TEXT NOT NULL UNIQUE,
    sutta_ref TEXT,
    nikaya TEXT,
    language TEXT NOT NULL,
    title TEXT,
    title_pali TEXT,
    title_ascii TEXT,
    content_plain TEXT,
    content_html TEXT,
    content_json TEXT,
    content_json_tmpl TEXT,
    source_uid TEXT,
    copyright TEXT,
    license TEXT,
    sutta_range_start INTEGER,
    sutta_range_end INTEGER
);
CREATE INDEX IF NOT EXISTS idx_suttas_nikaya ON suttas(nikaya);
CREATE INDEX IF NOT EXISTS idx_suttas_language ON suttas(language);
CREATE INDEX IF NOT EXISTS idx_suttas_source_uid ON suttas(source_uid);

CREATE TABLE IF NOT EXISTS sutta_variants (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sutta_id INTEGER NOT NULL REFERENCES suttas(id) ON DELETE CASCADE,
    label TEXT,
    content TEXT
);
CREATE TABLE IF NOT EXISTS sutta_comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sutta_id INTEGER NOT NULL REFERENCES suttas(id) ON DELETE CASCADE,
    author TEXT,
    content TEXT
);
CREATE TABLE IF NOT EXISTS sutta_glosses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sutta_id INTEGER NOT NULL REFERENCES suttas(id) ON DELETE CASCADE,
    content TEXT
);

CREATE VIRTUAL TABLE IF NOT EXISTS suttas_fts USING fts5(
    content_plain, content='suttas', content_rowid='id', tokenize='trigram'
);

CREATE TABLE IF NOT EXISTS pts_references (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sutta_ref TEXT,
    title_pali TEXT,
    pts_reference TEXT,
    dpr_reference TEXT,
    dpr_reference_alt TEXT,
    url TEXT,
    pts_nikaya TEXT,
    pts_vol TEXT,
    pts_vol_verse TEXT,
    pts_start_page INTEGER,
    pts_end_page INTEGER,
    edition TEXT
);
`

// userdataSchema holds the user's mutable data: settings, bookmarks,
// imported books. This store is created fresh on first run.
const userdataSchema = `
CREATE TABLE IF NOT EXISTS app_settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS books (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uid TEXT NOT NULL UNIQUE,
    title TEXT,
    author TEXT,
    language TEXT,
    document_type TEXT,
    metadata_json TEXT
);
CREATE TABLE IF NOT EXISTS book_spine_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
    spine_index INTEGER NOT NULL,
    title TEXT,
    content_html TEXT,
    content_plain TEXT,
    resource_path TEXT
);
CREATE TABLE IF NOT EXISTS book_resources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
    path TEXT NOT NULL,
    mime TEXT,
    content_data BLOB
);
CREATE INDEX IF NOT EXISTS idx_book_resources_book_path ON book_resources(book_id, path);
`

// dictionariesSchema holds imported StarDict (and similar) dictionaries.
const dictionariesSchema = `
CREATE TABLE IF NOT EXISTS dictionaries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    label TEXT NOT NULL UNIQUE,
    title TEXT
);

CREATE TABLE IF NOT EXISTS dict_words (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uid TEXT NOT NULL UNIQUE,
    dictionary_id INTEGER NOT NULL REFERENCES dictionaries(id) ON DELETE CASCADE,
    word TEXT NOT NULL,
    word_ascii TEXT,
    language TEXT,
    definition_plain TEXT,
    definition_html TEXT,
    summary TEXT,
    synonyms TEXT,
    etymology TEXT
);
CREATE INDEX IF NOT EXISTS idx_dict_words_word ON dict_words(word);
CREATE INDEX IF NOT EXISTS idx_dict_words_dictionary ON dict_words(dictionary_id);

CREATE VIRTUAL TABLE IF NOT EXISTS dict_words_fts USING fts5(
    definition_plain, content='dict_words', content_rowid='id', tokenize='trigram'
);
`

// dpdSchema holds the Digital Pāḷi Dictionary's morphological database.
const dpdSchema = `
CREATE TABLE IF NOT EXISTS dpd_headwords (
    id INTEGER PRIMARY KEY,
    uid TEXT NOT NULL UNIQUE,
    lemma_1 TEXT,
    lemma_2 TEXT,
    pos TEXT,
    meaning_1 TEXT,
    construction TEXT,
    grammar TEXT,
    derived_from TEXT,
    derivative TEXT,
    example_1 TEXT,
    synonym TEXT,
    antonym TEXT,
    summary TEXT,
    lemma_clean TEXT
);
CREATE INDEX IF NOT EXISTS idx_dpd_headwords_lemma_clean ON dpd_headwords(lemma_clean);

CREATE TABLE IF NOT EXISTS dpd_roots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uid TEXT NOT NULL UNIQUE,
    root TEXT,
    root_clean TEXT,
    root_no_sign TEXT
);

CREATE TABLE IF NOT EXISTS lookups (
    lookup_key TEXT PRIMARY KEY,
    headwords_json TEXT,
    roots_json TEXT,
    decon_json TEXT
);
`

// ftsPopulateSQL is executed once after the initial schema, as a static
// SQL script per §4.1 (FTS5 trigram tokenizer availability can differ
// between driver and CLI builds, so this is kept outside the ORM-level
// schema exec).
const ftsPopulateSQL = `
INSERT INTO suttas_fts(rowid, content_plain) SELECT id, content_plain FROM suttas
    WHERE id NOT IN (SELECT rowid FROM suttas_fts);
INSERT INTO dict_words_fts(rowid, definition_plain) SELECT id, definition_plain FROM dict_words
    WHERE id NOT IN (SELECT rowid FROM dict_words_fts);
`
