// Package search implements the mode-dispatched search executor (C4):
// fulltext, substring, UID/prefix, headword, regex, and DPD-specific
// lookup modes over suttas and dictionary words, with snippeting,
// ranking, and pagination, grounded on spec §4.3.
package search

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/golang-lru/v2"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
	"github.com/simsapa/tipitaka-engine/internal/dpd"
	"github.com/simsapa/tipitaka-engine/internal/model"
	"github.com/simsapa/tipitaka-engine/internal/text"
)

// Area is the entity class a search task runs against.
type Area int

const (
	AreaSuttas Area = iota
	AreaDictWords
)

// Mode is one of the dispatch modes in spec §4.3.
type Mode string

const (
	FulltextMatch Mode = "fulltext"
	ContainsMatch Mode = "contains"
	HeadwordMatch Mode = "headword"
	TitleMatch    Mode = "title"
	DpdIdMatch    Mode = "dpd_id"
	DpdLookup     Mode = "dpd_lookup"
	Combined      Mode = "combined"
	UidMatch      Mode = "uid"
	RegExMatch    Mode = "regex"
)

const defaultPageLen = 10

// languageSentinel is the "no filter" value alongside the empty string
// (spec §4.3: "None and the sentinel value 'Language' both mean no
// filter").
const languageSentinel = "Language"

// Params carries the per-task search parameters beyond area/query/mode.
type Params struct {
	Mode          Mode
	PageLen       int
	Language      string
	SourceInclude []string
	SourceExclude []string
	// Fuzzy enables the StarDict-style fold-and-collapse comparison
	// (SPEC_FULL §C.4) for HeadwordMatch instead of a plain substring.
	Fuzzy bool
}

func (p Params) pageLen() int {
	if p.PageLen <= 0 {
		return defaultPageLen
	}
	return p.PageLen
}

func (p Params) effectiveLanguage() string {
	if p.Language == "" || p.Language == languageSentinel {
		return ""
	}
	return p.Language
}

// Store is the subset of *store.Manager the search executor needs.
type Store interface {
	FulltextSuttas(ctx context.Context, query string) ([]*model.Sutta, error)
	ContainsSuttas(ctx context.Context, query, language string) ([]*model.Sutta, error)
	ListSuttasByUIDPrefix(ctx context.Context, prefix, language string) ([]*model.Sutta, error)
	TitleMatchSuttas(ctx context.Context, asciiQuery, language string) ([]*model.Sutta, error)
	ListAllSuttas(ctx context.Context, language string) ([]*model.Sutta, error)

	FulltextDictWords(ctx context.Context, query string) ([]*model.DictWord, error)
	HeadwordMatchDictWords(ctx context.Context, asciiQuery string) ([]*model.DictWord, error)
	ListAllDictWords(ctx context.Context, language string) ([]*model.DictWord, error)

	GetLookup(ctx context.Context, lookupKey string) (*model.Lookup, error)
	GetDpdHeadwordByID(ctx context.Context, id int64) (*model.DpdHeadword, error)
}

// Item is one result row; exactly one of Sutta/DictWord/DpdSummary is
// set, matching the area the task ran against (DpdSummary for
// DpdIdMatch/DpdLookup).
type Item struct {
	Sutta      *model.Sutta
	DictWord   *model.DictWord
	DpdSummary string
	Snippet    string
}

// Result holds every matching row (FTS5's own ranking, or the mode's
// documented order, is preserved) plus pagination helpers.
type Result struct {
	Items   []Item
	PageLen int
}

// TotalHits is exact row count, independent of page size (§4.3).
func (r *Result) TotalHits() int { return len(r.Items) }

// Page returns rows n*PageLen .. (n+1)*PageLen, clipped to bounds.
func (r *Result) Page(n int) []Item {
	pageLen := r.PageLen
	if pageLen <= 0 {
		pageLen = defaultPageLen
	}
	start := n * pageLen
	if start >= len(r.Items) || start < 0 {
		return nil
	}
	end := start + pageLen
	if end > len(r.Items) {
		end = len(r.Items)
	}
	return r.Items[start:end]
}

// Executor runs search tasks against a Store.
type Executor struct {
	store      Store
	dpdEngine  *dpd.Engine
	regexCache *lru.Cache[string, *regexp.Regexp]
}

// NewExecutor wraps store; regexCacheSize bounds the compiled-regex
// memoization (0 uses a sane default).
func NewExecutor(store Store, regexCacheSize int) (*Executor, error) {
	if regexCacheSize <= 0 {
		regexCacheSize = 128
	}
	cache, err := lru.New[string, *regexp.Regexp](regexCacheSize)
	if err != nil {
		return nil, corerr.Wrap(corerr.Internal, "search", err)
	}
	return &Executor{store: store, dpdEngine: dpd.NewEngine(store), regexCache: cache}, nil
}

// Execute dispatches (area, query, params) to the appropriate mode.
func (e *Executor) Execute(ctx context.Context, area Area, query string, params Params) (*Result, error) {
	switch area {
	case AreaSuttas:
		return e.executeSuttas(ctx, query, params)
	case AreaDictWords:
		return e.executeDictWords(ctx, query, params)
	default:
		return nil, corerr.New(corerr.Query, "search", "unknown area")
	}
}

func (e *Executor) executeSuttas(ctx context.Context, query string, params Params) (*Result, error) {
	lang := params.effectiveLanguage()
	switch params.Mode {
	case FulltextMatch:
		rows, err := e.store.FulltextSuttas(ctx, query)
		if err != nil {
			return nil, err
		}
		return suttaResult(filterSuttaLanguage(rows, lang), params, query), nil

	case ContainsMatch:
		rows, err := e.store.ContainsSuttas(ctx, query, lang)
		if err != nil {
			return nil, err
		}
		return suttaResult(rows, params, query), nil

	case UidMatch:
		rows, err := e.store.ListSuttasByUIDPrefix(ctx, query, lang)
		if err != nil {
			return nil, err
		}
		return suttaResult(rows, params, ""), nil

	case TitleMatch:
		rows, err := e.store.TitleMatchSuttas(ctx, text.PaliASCIIFold(query), lang)
		if err != nil {
			return nil, err
		}
		return suttaResult(rows, params, ""), nil

	case RegExMatch:
		re, err := e.compileRegex(query)
		if err != nil {
			return nil, err
		}
		all, err := e.store.ListAllSuttas(ctx, lang)
		if err != nil {
			return nil, err
		}
		var matched []*model.Sutta
		for _, s := range all {
			if re.MatchString(s.ContentPlain) {
				matched = append(matched, s)
			}
		}
		return suttaResult(matched, params, ""), nil

	case Combined:
		ftsRows, err := e.store.FulltextSuttas(ctx, query)
		if err != nil {
			return nil, err
		}
		uidRows, err := e.store.ListSuttasByUIDPrefix(ctx, query, lang)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool, len(ftsRows)+len(uidRows))
		var combined []*model.Sutta
		for _, s := range filterSuttaLanguage(ftsRows, lang) {
			if !seen[s.UID] {
				seen[s.UID] = true
				combined = append(combined, s)
			}
		}
		for _, s := range uidRows {
			if !seen[s.UID] {
				seen[s.UID] = true
				combined = append(combined, s)
			}
		}
		return suttaResult(combined, params, query), nil

	default:
		return nil, corerr.New(corerr.Query, "search", "mode not supported for suttas area")
	}
}

func (e *Executor) executeDictWords(ctx context.Context, query string, params Params) (*Result, error) {
	lang := params.effectiveLanguage()
	switch params.Mode {
	case FulltextMatch:
		rows, err := e.store.FulltextDictWords(ctx, query)
		if err != nil {
			return nil, err
		}
		return dictWordResult(filterDictWordLanguage(rows, lang), params, query), nil

	case HeadwordMatch:
		asciiQuery := text.PaliASCIIFold(query)
		if params.Fuzzy {
			asciiQuery = toFuzzy(asciiQuery)
		}
		rows, err := e.store.HeadwordMatchDictWords(ctx, asciiQuery)
		if err != nil {
			return nil, err
		}
		return dictWordResult(filterDictWordLanguage(rows, lang), params, ""), nil

	case RegExMatch:
		re, err := e.compileRegex(query)
		if err != nil {
			return nil, err
		}
		all, err := e.store.ListAllDictWords(ctx, lang)
		if err != nil {
			return nil, err
		}
		var matched []*model.DictWord
		for _, w := range all {
			if re.MatchString(w.DefinitionPlain) || re.MatchString(w.Word) {
				matched = append(matched, w)
			}
		}
		return dictWordResult(matched, params, ""), nil

	case DpdIdMatch:
		id, err := strconv.ParseInt(strings.TrimSpace(query), 10, 64)
		if err != nil {
			return nil, corerr.Wrap(corerr.Query, "search", err)
		}
		h, err := e.store.GetDpdHeadwordByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if h == nil {
			return &Result{PageLen: params.pageLen()}, nil
		}
		return &Result{Items: []Item{{DpdSummary: dpd.FormatSummary(h)}}, PageLen: params.pageLen()}, nil

	case DpdLookup:
		summaries, err := e.dpdEngine.LookupList(ctx, query, false)
		if err != nil {
			return nil, err
		}
		items := make([]Item, len(summaries))
		for i, s := range summaries {
			items[i] = Item{DpdSummary: s}
		}
		return &Result{Items: items, PageLen: params.pageLen()}, nil

	default:
		return nil, corerr.New(corerr.Query, "search", "mode not supported for dict words area")
	}
}

func (e *Executor) compileRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := e.regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, corerr.Wrap(corerr.Query, "search", err)
	}
	e.regexCache.Add(pattern, re)
	return re, nil
}

func filterSuttaLanguage(rows []*model.Sutta, language string) []*model.Sutta {
	if language == "" {
		return rows
	}
	var out []*model.Sutta
	for _, s := range rows {
		if s.Language == language {
			out = append(out, s)
		}
	}
	return out
}

func filterDictWordLanguage(rows []*model.DictWord, language string) []*model.DictWord {
	if language == "" {
		return rows
	}
	var out []*model.DictWord
	for _, w := range rows {
		if w.Language == language {
			out = append(out, w)
		}
	}
	return out
}

func suttaResult(rows []*model.Sutta, params Params, snippetQuery string) *Result {
	rows = filterSuttaSource(rows, params)
	items := make([]Item, len(rows))
	for i, s := range rows {
		snippet := ""
		if snippetQuery != "" {
			snippet = Snippet(s.ContentPlain, snippetQuery)
		}
		items[i] = Item{Sutta: s, Snippet: snippet}
	}
	return &Result{Items: items, PageLen: params.pageLen()}
}

func dictWordResult(rows []*model.DictWord, params Params, snippetQuery string) *Result {
	items := make([]Item, len(rows))
	for i, w := range rows {
		snippet := ""
		if snippetQuery != "" {
			snippet = Snippet(w.DefinitionPlain, snippetQuery)
		}
		items[i] = Item{DictWord: w, Snippet: snippet}
	}
	return &Result{Items: items, PageLen: params.pageLen()}
}

func filterSuttaSource(rows []*model.Sutta, params Params) []*model.Sutta {
	if len(params.SourceInclude) == 0 && len(params.SourceExclude) == 0 {
		return rows
	}
	include := toSet(params.SourceInclude)
	exclude := toSet(params.SourceExclude)
	var out []*model.Sutta
	for _, s := range rows {
		if len(include) > 0 && !include[s.SourceUID] {
			continue
		}
		if exclude[s.SourceUID] {
			continue
		}
		out = append(out, s)
	}
	return out
}

func toSet(vals []string) map[string]bool {
	if len(vals) == 0 {
		return nil
	}
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// toFuzzy collapses each run of a repeated rune (a doubled consonant, or
// any other repeat) to one rune, grounded on the StarDict `toFuzzy` idiom
// (SPEC_FULL §C.4). Its input is already Latinized and lowercased by the
// caller.
func toFuzzy(asciiFolded string) string {
	var b strings.Builder
	var last rune
	for _, r := range asciiFolded {
		if r == last {
			continue
		}
		b.WriteRune(r)
		last = r
	}
	return b.String()
}
