package tipitaka

import "testing"

func TestTransformToHTML(t *testing.T) {
	paras := []paragraph{
		{
			Rend: "bodytext",
			N:    "1",
			HasN: true,
			Content: []contentNode{
				{Kind: "text", Text: "Evam me sutam"},
				{Kind: "hi", Rend: "paranum", Text: "1"},
				{Kind: "note", Text: "a footnote"},
				{Kind: "pb", Ed: "pts", N: "5"},
			},
		},
	}
	got := transformToHTML(paras)
	want := `<p class="bodytext"><span class="paranum">1</span> Evam me sutam<span class="paranum">1</span><span class="note">[a footnote]</span><span class="pagebreak" data-ed="pts" data-n="5"></span></p>
`
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestTransformToHTMLCentreClass(t *testing.T) {
	got := transformToHTML([]paragraph{{Rend: "centre"}})
	if got != "<p class=\"centered\"></p>\n" {
		t.Errorf("got %q", got)
	}
}

func TestTransformToHTMLEscapesText(t *testing.T) {
	got := transformToHTML([]paragraph{{Rend: "bodytext", Content: []contentNode{{Kind: "text", Text: "<tag>"}}}})
	if got != "<p class=\"bodytext\">&lt;tag&gt;</p>\n" {
		t.Errorf("got %q", got)
	}
}

func TestExtractPlainText(t *testing.T) {
	paras := []paragraph{
		{Content: []contentNode{{Kind: "text", Text: "hello"}, {Kind: "note", Text: "skip me"}}},
		{Content: []contentNode{{Kind: "hi", Rend: "x", Text: "world"}}},
	}
	got := extractPlainText(paras)
	if got != "hello \nworld" {
		t.Errorf("got %q", got)
	}
}
