package gloss

import (
	"strings"
	"testing"

	"github.com/simsapa/tipitaka-engine/internal/model"
)

func TestCleanStem(t *testing.T) {
	cases := map[string]string{
		"dhamma 1.01":    "dhamma",
		"ña 2.1":         "ña",
		"jhāyī 1":        "jhāyī",
		"test 123.456":   "test",
		"yo pana bhikkhu": "yo pana bhikkhu",
		"karitvā 1":      "karitvā",
		"citta 1.1":      "citta",
	}
	for in, want := range cases {
		if got := CleanStem(in); got != want {
			t.Errorf("CleanStem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeCSVField(t *testing.T) {
	cases := []struct{ in, want string }{
		{"simple text", "simple text"},
		{"text, with comma", `"text, with comma"`},
		{`text with "quotes"`, `"text with ""quotes"""`},
		{"text\nwith newline", "\"text\nwith newline\""},
		{`text, with "quotes" and` + "\nnewline", "\"text, with \"\"quotes\"\" and\nnewline\""},
	}
	for _, c := range cases {
		if got := EscapeCSVField(c.in); got != c.want {
			t.Errorf("EscapeCSVField(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatCSVRow(t *testing.T) {
	cases := []struct{ front, back, want string }{
		{"front", "back", "front,back"},
		{"front, comma", "back", `"front, comma",back`},
		{"front", `back "quoted"`, `front,"back ""quoted"""`},
		{"front, comma", `back "quoted"`, `"front, comma","back ""quoted"""`},
	}
	for _, c := range cases {
		if got := formatCSVRow(c.front, c.back); got != c.want {
			t.Errorf("formatCSVRow(%q, %q) = %q, want %q", c.front, c.back, got, c.want)
		}
	}
}

func sampleGlossJSON() string {
	return `{
		"text": "Test paragraph",
		"paragraphs": [{
			"text": "Test paragraph",
			"vocabulary": [{
				"uid": "test_1",
				"word": "test 1",
				"summary": "test summary"
			}]
		}]
	}`
}

func TestExportAnkiCSV_Simple(t *testing.T) {
	files, err := ExportAnkiCSV(ExportInput{
		GlossDataJSON: sampleGlossJSON(),
		Format:        Simple,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Filename != "gloss_export_anki_basic.csv" {
		t.Fatalf("unexpected files: %+v", files)
	}
	want := "<div><p>test</p></div>,test summary"
	if files[0].Content != want {
		t.Errorf("got %q, want %q", files[0].Content, want)
	}
}

func TestExportAnkiCSV_Simple_WithCloze(t *testing.T) {
	files, err := ExportAnkiCSV(ExportInput{
		GlossDataJSON: sampleGlossJSON(),
		Format:        Simple,
		IncludeCloze:  true,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[1].Filename != "gloss_export_anki_cloze.csv" {
		t.Fatalf("unexpected files: %+v", files)
	}
	if !strings.Contains(files[1].Content, "{{c1::test}}") {
		t.Errorf("expected cloze deletion, got %q", files[1].Content)
	}
}

func TestExportAnkiCSV_Templated(t *testing.T) {
	dpd := map[string]*model.DpdHeadword{
		"test_1": {Lemma1: "test", POS: "nt", Meaning1: "a trial"},
	}
	files, err := ExportAnkiCSV(ExportInput{
		GlossDataJSON: sampleGlossJSON(),
		Format:        Templated,
		Templates: Templates{
			Front: "{word_stem}",
			Back:  "{vocab.summary} / {dpd.meaning_1}",
		},
	}, dpd)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %+v", files)
	}
	want := "test,test summary / a trial"
	if files[0].Content != want {
		t.Errorf("got %q, want %q", files[0].Content, want)
	}
}

func TestExportAnkiCSV_DataCsv(t *testing.T) {
	dpd := map[string]*model.DpdHeadword{
		"test_1": {Lemma1: "test", POS: "nt", Meaning1: "a trial"},
	}
	files, err := ExportAnkiCSV(ExportInput{
		GlossDataJSON: sampleGlossJSON(),
		Format:        DataCsv,
	}, dpd)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(files[0].Content, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines: %v", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "word_stem,context_snippet,word,uid") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "test,,test 1,test_1,test") {
		t.Errorf("unexpected row: %q", lines[1])
	}
}

func TestExportAnkiCSV_UnknownFormat(t *testing.T) {
	if _, err := ExportAnkiCSV(ExportInput{GlossDataJSON: sampleGlossJSON(), Format: "Bogus"}, nil); err == nil {
		t.Fatal("expected an error for unknown export format")
	}
}
