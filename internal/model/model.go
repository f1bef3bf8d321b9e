// Package model defines the core entities persisted by the store layer:
// suttas, dictionary words, DPD morphological entries, imported books,
// and process-wide settings.
package model

import "strings"

// Sutta is a canonical or translated text.
type Sutta struct {
	ID               int64
	UID              string // "<ref>/<lang>/<source>", lowercase
	SuttaRef         string
	Nikaya           string
	Language         string
	Title            string
	TitlePali        string
	TitleASCII       string
	ContentPlain     string
	ContentHTML      string
	ContentJSON      string // segmented key -> Pāli string, JSON-encoded
	ContentJSONTmpl  string // segmented key -> template with "{}" placeholder
	SourceUID        string
	Copyright        string
	License          string
	SuttaRangeStart  int
	SuttaRangeEnd    int
	HasSuttaRange    bool
}

// SuttaVariant, SuttaComment, SuttaGloss are 1:N children of Sutta, all
// cascading on delete.
type SuttaVariant struct {
	ID      int64
	SuttaID int64
	Label   string
	Content string
}

type SuttaComment struct {
	ID      int64
	SuttaID int64
	Author  string
	Content string
}

type SuttaGloss struct {
	ID      int64
	SuttaID int64
	Content string
}

// Dictionary groups the DictWords imported from a single source.
type Dictionary struct {
	ID    int64
	Label string // unique
	Title string
}

// DictWord is one meaning of one headword from one dictionary.
type DictWord struct {
	ID              int64
	UID             string // "<word>/<dict-label>"
	DictionaryID    int64
	Word            string
	WordASCII       string
	Language        string
	DefinitionPlain string
	DefinitionHTML  string
	Summary         string
	Synonyms        string // comma-joined
	Etymology       string
}

// DictWordUID builds the uid exactly per the preserved open-question
// policy: trim whitespace from word, join by "/" with the dictionary
// label. No further sanitization is applied.
func DictWordUID(word, dictLabel string) string {
	return strings.TrimSpace(word) + "/" + dictLabel
}

// DpdHeadword is a rich morphological dictionary entry.
type DpdHeadword struct {
	ID          int64
	UID         string // "<id>/dpd"
	Lemma1      string
	Lemma2      string
	POS         string
	Meaning1    string
	Construction string
	Grammar     string
	DerivedFrom string
	Derivative  string
	Example1    string
	Synonym     string
	Antonym     string
	Summary     string
	LemmaClean  string
}

// DpdRoot is a morphological root entry.
type DpdRoot struct {
	ID         int64
	UID        string // "√<root>/dpd"
	Root       string
	RootClean  string
	RootNoSign string
}

// Lookup maps an inflected form to JSON-packed headword ids, root keys,
// and deconstructions.
type Lookup struct {
	LookupKey     string
	HeadwordsJSON string // JSON list of ints, may be empty
	RootsJSON     string
	DeconJSON     string // JSON list of "a + b + c" strings
}

// Book is an imported EPUB/PDF/HTML document.
type Book struct {
	ID           int64
	UID          string
	Title        string
	Author       string
	Language     string
	DocumentType string // "epub" | "pdf" | "html"
	MetadataJSON string
}

// BookSpineItem is one ordered chapter of an imported book.
type BookSpineItem struct {
	ID           int64
	BookID       int64
	SpineIndex   int
	Title        string
	ContentHTML  string
	ContentPlain string
	ResourcePath string
}

// BookResource is a binary blob (image, font, the raw PDF, ...) keyed by
// path and mime type.
type BookResource struct {
	ID          int64
	BookID      int64
	Path        string
	Mime        string
	ContentData []byte
}

// ModelEntry is one entry in AppSettings' ordered list of LLM models.
type ModelEntry struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// AppSettings is the process-wide persisted configuration.
type AppSettings struct {
	FontSize        int
	MaxWidth        int
	ShowBookmarks   bool
	ShowLineByLine  bool
	Theme           string // "system" | "light" | "dark"
	APIKeys         map[string]string
	SystemPrompts   map[string]string
	Models          []ModelEntry
	DBVersion       int
}

// DefaultAppSettings returns the compiled-in defaults, the innermost
// layer of the three-layer configuration model.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		FontSize:       16,
		MaxWidth:       60,
		ShowBookmarks:  true,
		ShowLineByLine: false,
		Theme:          "system",
		APIKeys:        map[string]string{},
		SystemPrompts:  map[string]string{},
		Models:         nil,
		DBVersion:      1,
	}
}
