// Package dpd implements the DPD lookup engine (C5): inflection →
// headword expansion, deconstructor chains, and formatted HTML
// summaries, grounded on the deconstructor/lookup composition described
// in spec §4.4.
package dpd

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/coregx/ahocorasick"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
	"github.com/simsapa/tipitaka-engine/internal/model"
	"github.com/simsapa/tipitaka-engine/internal/text"
)

// Store is the subset of *store.Manager this engine needs; declared as
// an interface so callers can fake it in tests without a real SQLite
// file.
type Store interface {
	GetLookup(ctx context.Context, lookupKey string) (*model.Lookup, error)
	GetDpdHeadwordByID(ctx context.Context, id int64) (*model.DpdHeadword, error)
}

// Engine runs lookup/deconstructor expansion against a Store.
type Engine struct {
	store Store
}

// NewEngine wraps store for lookup/deconstructor queries.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// NormalizeQuery applies niggahita normalization, the only transform the
// Lookup table's keys are guaranteed to have received at ingest.
func NormalizeQuery(q string) string {
	return text.Niggahita(strings.TrimSpace(q))
}

// DeconstructorList returns the raw deconstructor strings for q with
// uniform spacing around "+", in stored order (S3).
func (e *Engine) DeconstructorList(ctx context.Context, q string) ([]string, error) {
	lookup, err := e.store.GetLookup(ctx, NormalizeQuery(q))
	if err != nil {
		return nil, err
	}
	if lookup == nil || lookup.DeconJSON == "" {
		return nil, nil
	}
	raw, err := decodeStringList(lookup.DeconJSON)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(raw))
	for i, d := range raw {
		out[i] = normalizeDeconSpacing(d)
	}
	return out, nil
}

func normalizeDeconSpacing(s string) string {
	parts := splitAndTrim(s)
	return strings.Join(parts, " + ")
}

func splitAndTrim(s string) []string {
	raw := strings.Split(s, "+")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func decodeStringList(raw string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, corerr.Wrap(corerr.Decode, "dpd", err)
	}
	return out, nil
}

func decodeIntList(raw string) ([]int64, error) {
	var out []int64
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, corerr.Wrap(corerr.Decode, "dpd", err)
	}
	return out, nil
}

// componentsFromDeconstructions flattens every decomposition string's
// "+"-separated words, in order, deduplicated by first occurrence (§4.4
// step 3).
func componentsFromDeconstructions(decons []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range decons {
		for _, word := range splitAndTrim(d) {
			if seen[word] {
				continue
			}
			seen[word] = true
			out = append(out, word)
		}
	}
	return out
}

// FormatSummary renders the one-line HTML summary for a headword,
// omitting empty groups and their surrounding markup:
// "<b>{lemma_1}</b> <i>({pos})</i> {meaning_1} <b>[{construction}]</b> <i>{grammar}</i>".
func FormatSummary(h *model.DpdHeadword) string {
	var parts []string
	if h.Lemma1 != "" {
		parts = append(parts, "<b>"+h.Lemma1+"</b>")
	}
	if h.POS != "" {
		parts = append(parts, "<i>("+h.POS+")</i>")
	}
	if h.Meaning1 != "" {
		parts = append(parts, h.Meaning1)
	}
	if h.Construction != "" {
		parts = append(parts, "<b>["+h.Construction+"]</b>")
	}
	if h.Grammar != "" {
		parts = append(parts, "<i>"+h.Grammar+"</i>")
	}
	return strings.Join(parts, " ")
}

// LookupList runs the full §4.4 algorithm for q and returns formatted
// summaries: when q's Lookup row lists headword ids, the summaries of
// those headwords only; otherwise the summaries of the component words
// derived from its deconstructions, in the order the deduplication
// produced. The two groups are never combined. transitive controls
// whether component words are themselves expanded (recursed into) or only resolved one level
// deep.
func (e *Engine) LookupList(ctx context.Context, q string, transitive bool) ([]string, error) {
	headwords, components, err := e.lookupHeadwordsOrComponents(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(headwords) > 0 {
		return e.formatAll(ctx, headwords)
	}
	if len(components) == 0 {
		return nil, nil
	}

	var out []string
	for _, comp := range components {
		var sub []string
		var err error
		if transitive {
			sub, err = e.LookupList(ctx, comp, true)
		} else {
			compHeadwords, _, e2 := e.lookupHeadwordsOrComponents(ctx, comp)
			err = e2
			if err == nil {
				sub, err = e.formatAll(ctx, compHeadwords)
			}
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// lookupHeadwordsOrComponents is §4.4 steps 1-3: resolve q's Lookup row,
// returning either the direct headword ids (when non-empty) or the
// deduplicated component word list derived from its deconstructions.
func (e *Engine) lookupHeadwordsOrComponents(ctx context.Context, q string) ([]int64, []string, error) {
	lookup, err := e.store.GetLookup(ctx, NormalizeQuery(q))
	if err != nil {
		return nil, nil, err
	}
	if lookup == nil {
		return nil, nil, nil
	}
	if lookup.HeadwordsJSON != "" {
		ids, err := decodeIntList(lookup.HeadwordsJSON)
		if err != nil {
			return nil, nil, err
		}
		if len(ids) > 0 {
			return ids, nil, nil
		}
	}
	if lookup.DeconJSON == "" {
		return nil, nil, nil
	}
	decons, err := decodeStringList(lookup.DeconJSON)
	if err != nil {
		return nil, nil, err
	}
	return nil, componentsFromDeconstructions(decons), nil
}

func (e *Engine) formatAll(ctx context.Context, ids []int64) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		h, err := e.store.GetDpdHeadwordByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if h == nil {
			continue
		}
		out = append(out, FormatSummary(h))
	}
	return out, nil
}

// quickScan builds one Aho-Corasick automaton over keys and returns every
// (overlapping) match in haystack; PrefilterKnownKeys is its only caller.
func quickScan(keys []string, haystack string) []ahocorasick.Match {
	a, err := ahocorasick.NewBuilder().AddStrings(keys).Build()
	if err != nil {
		return nil
	}
	return a.FindAllOverlapping([]byte(haystack))
}

// PrefilterKnownKeys reports which of candidateKeys occur verbatim in
// text, using one Aho-Corasick scan instead of one LIKE query per
// candidate. Neither the gloss exporter (C9) nor LookupList's transitive
// expansion calls it; only its own tests do.
func PrefilterKnownKeys(candidateKeys []string, haystack string) map[string]bool {
	if len(candidateKeys) == 0 {
		return nil
	}
	matches := quickScan(candidateKeys, haystack)
	found := make(map[string]bool, len(matches))
	for _, m := range matches {
		found[candidateKeys[m.PatternID]] = true
	}
	return found
}
