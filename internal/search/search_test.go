package search

import (
	"context"
	"strings"
	"testing"

	"github.com/simsapa/tipitaka-engine/internal/model"
)

type fakeStore struct {
	suttas    []*model.Sutta
	dictWords []*model.DictWord
	lookups   map[string]*model.Lookup
	headwords map[int64]*model.DpdHeadword
}

func newFakeStore() *fakeStore {
	return &fakeStore{lookups: map[string]*model.Lookup{}, headwords: map[int64]*model.DpdHeadword{}}
}

func (f *fakeStore) FulltextSuttas(ctx context.Context, query string) ([]*model.Sutta, error) {
	var out []*model.Sutta
	for _, s := range f.suttas {
		if strings.Contains(s.ContentPlain, query) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ContainsSuttas(ctx context.Context, query, language string) ([]*model.Sutta, error) {
	var out []*model.Sutta
	for _, s := range f.suttas {
		if language != "" && s.Language != language {
			continue
		}
		if strings.Contains(s.ContentPlain, query) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSuttasByUIDPrefix(ctx context.Context, prefix, language string) ([]*model.Sutta, error) {
	var out []*model.Sutta
	for _, s := range f.suttas {
		if language != "" && s.Language != language {
			continue
		}
		if strings.HasPrefix(s.UID, prefix) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) TitleMatchSuttas(ctx context.Context, asciiQuery, language string) ([]*model.Sutta, error) {
	var out []*model.Sutta
	for _, s := range f.suttas {
		if language != "" && s.Language != language {
			continue
		}
		if strings.Contains(strings.ToLower(s.TitleASCII), asciiQuery) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAllSuttas(ctx context.Context, language string) ([]*model.Sutta, error) {
	var out []*model.Sutta
	for _, s := range f.suttas {
		if language != "" && s.Language != language {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) FulltextDictWords(ctx context.Context, query string) ([]*model.DictWord, error) {
	var out []*model.DictWord
	for _, w := range f.dictWords {
		if strings.Contains(w.DefinitionPlain, query) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) HeadwordMatchDictWords(ctx context.Context, asciiQuery string) ([]*model.DictWord, error) {
	var out []*model.DictWord
	for _, w := range f.dictWords {
		if strings.Contains(w.WordASCII, asciiQuery) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAllDictWords(ctx context.Context, language string) ([]*model.DictWord, error) {
	var out []*model.DictWord
	for _, w := range f.dictWords {
		if language != "" && w.Language != language {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeStore) GetLookup(ctx context.Context, lookupKey string) (*model.Lookup, error) {
	return f.lookups[lookupKey], nil
}

func (f *fakeStore) GetDpdHeadwordByID(ctx context.Context, id int64) (*model.DpdHeadword, error) {
	return f.headwords[id], nil
}

func TestUidMatch_PrefixSemantics(t *testing.T) {
	fs := newFakeStore()
	fs.suttas = []*model.Sutta{
		{UID: "sn56.11/pli/ms", Language: "pli"},
		{UID: "sn56.11/en/bodhi", Language: "en"},
		{UID: "sn56.12/pli/ms", Language: "pli"},
		{UID: "dn1/pli/ms", Language: "pli"},
	}
	exec, err := NewExecutor(fs, 0)
	if err != nil {
		t.Fatal(err)
	}
	res, err := exec.Execute(context.Background(), AreaSuttas, "sn56", Params{Mode: UidMatch, Language: languageSentinel})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalHits() != 3 {
		t.Fatalf("expected 3 hits for sn56 prefix, got %d", res.TotalHits())
	}
	baseUIDs := map[string]bool{}
	for _, item := range res.Items {
		if !strings.HasPrefix(item.Sutta.UID, "sn56") {
			t.Errorf("unexpected uid in sn56 match: %s", item.Sutta.UID)
		}
		ref, _, _ := strings.Cut(item.Sutta.UID, "/")
		baseUIDs[ref] = true
	}
	if len(baseUIDs) < 2 {
		t.Errorf("expected at least 2 distinct base uids, got %d", len(baseUIDs))
	}
}

func TestContainsMatch_Snippet(t *testing.T) {
	fs := newFakeStore()
	fs.suttas = []*model.Sutta{
		{UID: "mil5.3.7/en/tw_rhysdavids", Language: "en",
			ContentPlain: "...in accordance with the rules of satipaṭṭhāna the monk should fight..."},
	}
	exec, err := NewExecutor(fs, 0)
	if err != nil {
		t.Fatal(err)
	}
	res, err := exec.Execute(context.Background(), AreaSuttas, "satipaṭṭhāna", Params{Mode: ContainsMatch, Language: "en"})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalHits() != 1 {
		t.Fatalf("expected 1 hit, got %d", res.TotalHits())
	}
	snippet := res.Items[0].Snippet
	if !strings.Contains(snippet, "<span class='match'>satipaṭṭhāna</span>") {
		t.Errorf("expected match span, got %q", snippet)
	}
}

func TestCombined_DedupesByUID_FTSFirst(t *testing.T) {
	fs := newFakeStore()
	fs.suttas = []*model.Sutta{
		{UID: "sn56.11/pli/ms", Language: "pli", ContentPlain: "dukkha samudaya"},
		{UID: "sn56.12/pli/ms", Language: "pli", ContentPlain: "other text, cf. sn56.11"},
	}
	exec, err := NewExecutor(fs, 0)
	if err != nil {
		t.Fatal(err)
	}
	res, err := exec.Execute(context.Background(), AreaSuttas, "sn56.1", Params{Mode: Combined})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalHits() != 2 {
		t.Fatalf("expected 2 deduped hits, got %d", res.TotalHits())
	}
	if res.Items[0].Sutta.UID != "sn56.12/pli/ms" {
		t.Fatalf("expected the FTS hit first, got %s", res.Items[0].Sutta.UID)
	}
}

func TestRegExMatch_DictWords(t *testing.T) {
	fs := newFakeStore()
	fs.dictWords = []*model.DictWord{
		{UID: "dukkha/pts", Word: "dukkha", DefinitionPlain: "suffering, unsatisfactoriness"},
		{UID: "sukha/pts", Word: "sukha", DefinitionPlain: "happiness"},
	}
	exec, err := NewExecutor(fs, 0)
	if err != nil {
		t.Fatal(err)
	}
	res, err := exec.Execute(context.Background(), AreaDictWords, "^suff", Params{Mode: RegExMatch})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalHits() != 1 || res.Items[0].DictWord.Word != "dukkha" {
		t.Fatalf("expected dukkha only, got %+v", res.Items)
	}
}

func TestDpdIdMatch(t *testing.T) {
	fs := newFakeStore()
	fs.headwords[5] = &model.DpdHeadword{ID: 5, Lemma1: "olokita", POS: "pp", Meaning1: "looked at"}
	exec, err := NewExecutor(fs, 0)
	if err != nil {
		t.Fatal(err)
	}
	res, err := exec.Execute(context.Background(), AreaDictWords, "5", Params{Mode: DpdIdMatch})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalHits() != 1 {
		t.Fatalf("expected 1 hit, got %d", res.TotalHits())
	}
	if res.Items[0].DpdSummary != "<b>olokita</b> <i>(pp)</i> looked at" {
		t.Fatalf("got %q", res.Items[0].DpdSummary)
	}
}

func TestPagination(t *testing.T) {
	fs := newFakeStore()
	for i := 0; i < 25; i++ {
		fs.suttas = append(fs.suttas, &model.Sutta{UID: "x" + string(rune('a'+i)) + "/pli/ms", Language: "pli"})
	}
	exec, err := NewExecutor(fs, 0)
	if err != nil {
		t.Fatal(err)
	}
	res, err := exec.Execute(context.Background(), AreaSuttas, "x", Params{Mode: UidMatch, PageLen: 10})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalHits() != 25 {
		t.Fatalf("expected total 25, got %d", res.TotalHits())
	}
	if len(res.Page(0)) != 10 || len(res.Page(1)) != 10 || len(res.Page(2)) != 5 {
		t.Fatalf("unexpected page sizes: %d, %d, %d", len(res.Page(0)), len(res.Page(1)), len(res.Page(2)))
	}
	if res.Page(3) != nil {
		t.Fatalf("expected nil beyond last page, got %v", res.Page(3))
	}
}

func TestSourceFilter_IncludeExclude(t *testing.T) {
	fs := newFakeStore()
	fs.suttas = []*model.Sutta{
		{UID: "a/pli/ms", SourceUID: "ms", Language: "pli"},
		{UID: "a/pli/vri", SourceUID: "vri", Language: "pli"},
	}
	exec, err := NewExecutor(fs, 0)
	if err != nil {
		t.Fatal(err)
	}
	res, err := exec.Execute(context.Background(), AreaSuttas, "a/", Params{Mode: UidMatch, SourceInclude: []string{"ms"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalHits() != 1 || res.Items[0].Sutta.SourceUID != "ms" {
		t.Fatalf("expected only ms source, got %+v", res.Items)
	}
}

func TestModeRejectedForWrongArea(t *testing.T) {
	fs := newFakeStore()
	exec, err := NewExecutor(fs, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := exec.Execute(context.Background(), AreaDictWords, "x", Params{Mode: UidMatch}); err == nil {
		t.Fatal("expected an error for UidMatch on dict words area")
	}
}
