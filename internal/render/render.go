// Package render implements the sutta renderer (C6): segmented-JSON plus
// template assembly into a study-oriented HTML page, grounded on spec
// §4.5.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
	"github.com/simsapa/tipitaka-engine/internal/model"
	"github.com/simsapa/tipitaka-engine/internal/text"
)

// Store is the subset of *store.Manager the renderer needs.
type Store interface {
	GetSuttaByUID(ctx context.Context, uid string) (*model.Sutta, error)
	ListSuttasByUIDPrefix(ctx context.Context, prefix, language string) ([]*model.Sutta, error)
	ListSuttasByRefPrefix(ctx context.Context, ref, excludeUID string) ([]*model.Sutta, error)
}

// Renderer assembles sutta pages against a Store.
type Renderer struct {
	store Store
}

func NewRenderer(store Store) *Renderer {
	return &Renderer{store: store}
}

// PageOptions carries the per-request inputs that aren't on the Sutta
// itself: an optional selection to highlight, an optional extra JS
// prefix injected before the page's own script, and the settings that
// drive the CSS/JS the shell emits.
type PageOptions struct {
	Quote    string
	JSPrefix string
	Settings model.AppSettings
}

// Render produces the complete HTML page for s.
func (r *Renderer) Render(ctx context.Context, s *model.Sutta, opts PageOptions) (string, error) {
	body, err := r.renderBody(ctx, s, opts.Settings)
	if err != nil {
		return "", err
	}
	return wrapInShell(body, s.UID, opts), nil
}

func (r *Renderer) renderBody(ctx context.Context, s *model.Sutta, settings model.AppSettings) (string, error) {
	if s.ContentJSON != "" {
		return r.renderSegmented(ctx, s, settings)
	}
	if s.ContentHTML != "" {
		return s.ContentHTML, nil
	}
	if s.ContentPlain != "" {
		return "<pre>" + html.EscapeString(s.ContentPlain) + "</pre>", nil
	}
	return "", nil
}

func (r *Renderer) renderSegmented(ctx context.Context, s *model.Sutta, settings model.AppSettings) (string, error) {
	segments, err := decodeStringMap(s.ContentJSON)
	if err != nil {
		return "", err
	}
	templates, err := decodeStringMap(s.ContentJSONTmpl)
	if err != nil {
		return "", err
	}
	if len(templates) > 0 && !sameKeySet(segments, templates) {
		return "", corerr.New(corerr.Internal, "render", "content_json and content_json_tmpl key sets differ for "+s.UID)
	}

	keys := sortedKeys(segments)

	if settings.ShowLineByLine && s.Language != "pli" {
		paliSutta, err := r.findPaliCounterpart(ctx, s.UID)
		if err != nil {
			return "", err
		}
		if paliSutta != nil {
			paliSegments, err := decodeStringMap(paliSutta.ContentJSON)
			if err == nil && sameKeySet(paliSegments, segments) {
				return renderLineByLine(keys, paliSegments, segments, templates), nil
			}
		}
	}

	return renderLinear(keys, segments, templates), nil
}

func renderLinear(keys []string, segments, templates map[string]string) string {
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(substitute(templates[k], segments[k]))
	}
	return b.String()
}

func renderLineByLine(keys []string, paliSegments, translationSegments, templates map[string]string) string {
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(substitute(templates[k], paliSegments[k]))
		b.WriteString(substitute(templates[k], translationSegments[k]))
	}
	return b.String()
}

// substitute fills the single "{}" placeholder in tmpl with value. When
// tmpl is empty (no content_json_tmpl supplied), value is emitted as-is.
func substitute(tmpl, value string) string {
	if tmpl == "" {
		return value
	}
	return strings.Replace(tmpl, "{}", value, 1)
}

func decodeStringMap(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, corerr.Wrap(corerr.Decode, "render", err)
	}
	return out, nil
}

func sameKeySet(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return text.NaturalLess(keys[i], keys[j]) })
	return keys
}

// findPaliCounterpart strips the uid's author segment ("<ref>/<lang>/<source>"
// -> "<ref>") and looks for a sibling "<ref>/pli/*" sutta.
func (r *Renderer) findPaliCounterpart(ctx context.Context, uid string) (*model.Sutta, error) {
	ref, _, ok := strings.Cut(uid, "/")
	if !ok {
		return nil, nil
	}
	matches, err := r.store.ListSuttasByUIDPrefix(ctx, ref+"/pli/", "")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func wrapInShell(body, suttaUID string, opts PageOptions) string {
	css := fmt.Sprintf("html{font-size:%dpx} body{max-width:%dex}", opts.Settings.FontSize, opts.Settings.MaxWidth)
	var js strings.Builder
	fmt.Fprintf(&js, "const SUTTA_UID=%q;\n", suttaUID)
	fmt.Fprintf(&js, "const SHOW_BOOKMARKS=%t;\n", opts.Settings.ShowBookmarks)
	fmt.Fprintf(&js, "const SHOW_QUOTE=%t;\n", opts.Quote != "")
	if opts.JSPrefix != "" {
		js.WriteString(opts.JSPrefix)
		js.WriteString("\n")
	}
	if opts.Quote != "" {
		escaped := strings.ReplaceAll(opts.Quote, `"`, `\"`)
		fmt.Fprintf(&js, "document.addEventListener('DOMContentLoaded', function() { highlight_and_scroll_to(\"%s\"); });\n", escaped)
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<style>")
	page.WriteString(css)
	page.WriteString("</style>\n<script>\n")
	page.WriteString(js.String())
	page.WriteString("</script>\n</head>\n<body>\n")
	page.WriteString(body)
	page.WriteString("\n</body>\n</html>\n")
	return page.String()
}

// TranslationEntry is one row of the related-texts sidebar.
type TranslationEntry struct {
	UID      string `json:"uid"`
	Title    string `json:"title"`
	Language string `json:"language"`
	SourceUID string `json:"source_uid"`
}

// GetTranslationsDataForSuttaUID implements
// get_translations_data_json_for_sutta_uid: all suttas sharing the
// caller's reference (the segment before the first "/"), excluding the
// caller itself, sorted with the Pāli mainline source first, other Pāli
// texts second, then non-Pāli texts ordered by language code.
func (r *Renderer) GetTranslationsDataForSuttaUID(ctx context.Context, uid string) ([]TranslationEntry, error) {
	ref, _, ok := strings.Cut(uid, "/")
	if !ok {
		ref = uid
	}
	matches, err := r.store.ListSuttasByRefPrefix(ctx, ref, uid)
	if err != nil {
		return nil, err
	}

	entries := make([]TranslationEntry, len(matches))
	for i, s := range matches {
		entries[i] = TranslationEntry{UID: s.UID, Title: s.Title, Language: s.Language, SourceUID: s.SourceUID}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return translationRank(entries[i]) < translationRank(entries[j]) ||
			(translationRank(entries[i]) == translationRank(entries[j]) && entries[i].Language < entries[j].Language)
	})
	return entries, nil
}

// translationRank: 0 = Pāli mainline source (uid ends "/ms"), 1 = other
// Pāli, 2 = non-Pāli.
func translationRank(e TranslationEntry) int {
	if e.Language != "pli" {
		return 2
	}
	if strings.HasSuffix(e.UID, "/ms") {
		return 0
	}
	return 1
}

// GetTranslationsDataJSONForSuttaUID is the JSON-encoded form used by host
// layers that consume the core over a serialization boundary.
func (r *Renderer) GetTranslationsDataJSONForSuttaUID(ctx context.Context, uid string) ([]byte, error) {
	entries, err := r.GetTranslationsDataForSuttaUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, corerr.Wrap(corerr.Internal, "render", err)
	}
	return b, nil
}
