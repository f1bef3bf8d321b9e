// Package gloss builds per-paragraph vocabulary glosses and exports them
// as Anki-ready CSV packs (C9), grounded on
// original_source/backend/src/anki_export.rs.
package gloss

import (
	"encoding/csv"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
	"github.com/simsapa/tipitaka-engine/internal/model"
)

// ExportFormat selects which CSV pack(s) ExportAnkiCSV produces.
type ExportFormat string

const (
	Simple    ExportFormat = "Simple"
	Templated ExportFormat = "Templated"
	DataCsv   ExportFormat = "DataCsv"
)

// VocabItem is one glossed word within a paragraph.
type VocabItem struct {
	UID     string `json:"uid"`
	Word    string `json:"word"`
	Summary string `json:"summary"`
}

// ParagraphData pairs a source passage with the vocabulary glossed from it.
type ParagraphData struct {
	Text       string      `json:"text"`
	Vocabulary []VocabItem `json:"vocabulary"`
}

// GlossData is the tree ExportAnkiCSV consumes: a passage broken into
// paragraphs, each carrying the vocabulary glossed from it.
type GlossData struct {
	Text       string          `json:"text"`
	Paragraphs []ParagraphData `json:"paragraphs"`
}

// Templates holds the user-supplied front/back template strings for the
// Templated export format.
type Templates struct {
	Front string
	Back  string
}

// Store declares a by-id DPD headword getter. ExportAnkiCSV does not use
// it (every format reads headwords from the map passed in ExportInput),
// and *store.Manager does not satisfy it, since Manager's
// GetDpdHeadwordByID also takes a context.
type Store interface {
	GetDpdHeadwordByID(id int64) (*model.DpdHeadword, error)
}

// ExportInput parameterizes ExportAnkiCSV.
type ExportInput struct {
	GlossDataJSON string
	Format        ExportFormat
	IncludeCloze  bool
	Templates     Templates
}

// File is one named CSV pack in the export result.
type File struct {
	Filename string
	Content  string
}

// ExportAnkiCSV dispatches on input.Format, producing one or two CSV
// packs per spec §4.8.
func ExportAnkiCSV(input ExportInput, dpdByWord map[string]*model.DpdHeadword) ([]File, error) {
	var data GlossData
	if err := json.Unmarshal([]byte(input.GlossDataJSON), &data); err != nil {
		return nil, corerr.Wrap(corerr.Decode, "gloss", err)
	}

	switch input.Format {
	case Simple:
		files := []File{{Filename: "gloss_export_anki_basic.csv", Content: generateBasicCSV(&data)}}
		if input.IncludeCloze {
			files = append(files, File{Filename: "gloss_export_anki_cloze.csv", Content: generateClozeCSV(&data)})
		}
		return files, nil

	case Templated:
		content, err := generateTemplatedCSV(&data, input.Templates, dpdByWord, false)
		if err != nil {
			return nil, err
		}
		files := []File{{Filename: "gloss_export_anki_templated.csv", Content: content}}
		if input.IncludeCloze {
			clozeContent, err := generateTemplatedCSV(&data, input.Templates, dpdByWord, true)
			if err != nil {
				return nil, err
			}
			files = append(files, File{Filename: "gloss_export_anki_templated_cloze.csv", Content: clozeContent})
		}
		return files, nil

	case DataCsv:
		content, err := generateDataCSV(&data, dpdByWord)
		if err != nil {
			return nil, err
		}
		return []File{{Filename: "gloss_export_anki_data.csv", Content: content}}, nil

	default:
		return nil, corerr.New(corerr.Query, "gloss", "unknown export format: "+string(input.Format))
	}
}

var trailingStemNumber = regexp.MustCompile(`\s+\d+(\.\d+)?$`)

// CleanStem strips a trailing " <digits>(.<digits>)?" and lowercases,
// e.g. "dhamma 1.01" -> "dhamma", "yo pana bhikkhu" -> "yo pana bhikkhu"
// (no trailing number, left untouched but lowercased).
func CleanStem(stem string) string {
	return strings.ToLower(trailingStemNumber.ReplaceAllString(stem, ""))
}

func generateBasicCSV(data *GlossData) string {
	var lines []string
	for _, p := range data.Paragraphs {
		for _, v := range p.Vocabulary {
			front := "<div><p>" + CleanStem(v.Word) + "</p></div>"
			lines = append(lines, formatCSVRow(front, v.Summary))
		}
	}
	return strings.Join(lines, "\n")
}

func generateClozeCSV(data *GlossData) string {
	var lines []string
	for _, p := range data.Paragraphs {
		for _, v := range p.Vocabulary {
			front := "{{c1::" + CleanStem(v.Word) + "}}"
			back := "<div>" + v.Summary + "</div>"
			lines = append(lines, formatCSVRow(front, back))
		}
	}
	return strings.Join(lines, "\n")
}

func generateTemplatedCSV(data *GlossData, templates Templates, dpdByWord map[string]*model.DpdHeadword, isCloze bool) (string, error) {
	var lines []string
	for _, p := range data.Paragraphs {
		for _, v := range p.Vocabulary {
			ctx := buildTemplateContext(v, dpdByWord[v.UID], "")
			front := renderTemplate(templates.Front, ctx)
			back := renderTemplate(templates.Back, ctx)
			if isCloze {
				front = "{{c1::" + front + "}}"
			}
			lines = append(lines, formatCSVRow(front, back))
		}
	}
	return strings.Join(lines, "\n"), nil
}

// templateContext is the flat field set user templates may reference,
// grounded on anki_export.rs's TemplateContext/VocabContextData shapes.
type templateContext struct {
	wordStem       string
	contextSnippet string
	originalWord   string
	cleanWord      string
	vocabUID       string
	vocabWord      string
	vocabSummary   string
	dpd            *model.DpdHeadword
}

func buildTemplateContext(v VocabItem, h *model.DpdHeadword, contextSnippet string) templateContext {
	stem := CleanStem(v.Word)
	return templateContext{
		wordStem:       stem,
		contextSnippet: contextSnippet,
		originalWord:   stem,
		cleanWord:      stem,
		vocabUID:       v.UID,
		vocabWord:      v.Word,
		vocabSummary:   v.Summary,
		dpd:            h,
	}
}

var templateFieldPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+(?:\.[a-zA-Z0-9_]+)?)\}`)

// renderTemplate substitutes every "{field}" / "{group.field}" token in
// tmpl against ctx, unescaped (no HTML-escaping of the resolved value),
// mirroring TinyTemplate's set_default_formatter(format_unescaped) used
// by the original. Unknown fields resolve to "".
func renderTemplate(tmpl string, ctx templateContext) string {
	return templateFieldPattern.ReplaceAllStringFunc(tmpl, func(token string) string {
		field := token[1 : len(token)-1]
		return resolveTemplateField(field, ctx)
	})
}

func resolveTemplateField(field string, ctx templateContext) string {
	switch field {
	case "word_stem":
		return ctx.wordStem
	case "context_snippet":
		return ctx.contextSnippet
	case "original_word":
		return ctx.originalWord
	case "clean_word":
		return ctx.cleanWord
	case "vocab.uid":
		return ctx.vocabUID
	case "vocab.word":
		return ctx.vocabWord
	case "vocab.summary":
		return ctx.vocabSummary
	}
	if group, key, ok := strings.Cut(field, "."); ok && group == "dpd" {
		return headwordField(ctx.dpd, key)
	}
	return ""
}

var dataCSVHeader = []string{
	"word_stem", "context_snippet", "word", "uid",
	"lemma_1", "lemma_2", "pos", "grammar", "derived_from",
	"meaning_1", "construction", "derivative", "example_1",
	"synonym", "antonym", "summary",
}

func generateDataCSV(data *GlossData, dpdByWord map[string]*model.DpdHeadword) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.UseCRLF = false
	if err := w.Write(dataCSVHeader); err != nil {
		return "", corerr.Wrap(corerr.Internal, "gloss", err)
	}
	for _, p := range data.Paragraphs {
		for _, v := range p.Vocabulary {
			h := dpdByWord[v.UID]
			row := []string{
				CleanStem(v.Word), "", v.Word, v.UID,
				headwordField(h, "lemma_1"), headwordField(h, "lemma_2"),
				headwordField(h, "pos"), headwordField(h, "grammar"),
				headwordField(h, "derived_from"), headwordField(h, "meaning_1"),
				headwordField(h, "construction"), headwordField(h, "derivative"),
				headwordField(h, "example_1"), headwordField(h, "synonym"),
				headwordField(h, "antonym"), v.Summary,
			}
			if err := w.Write(row); err != nil {
				return "", corerr.Wrap(corerr.Internal, "gloss", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", corerr.Wrap(corerr.Internal, "gloss", err)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func headwordField(h *model.DpdHeadword, key string) string {
	if h == nil {
		return ""
	}
	switch key {
	case "lemma_1":
		return h.Lemma1
	case "lemma_2":
		return h.Lemma2
	case "pos":
		return h.POS
	case "grammar":
		return h.Grammar
	case "derived_from":
		return h.DerivedFrom
	case "meaning_1":
		return h.Meaning1
	case "construction":
		return h.Construction
	case "derivative":
		return h.Derivative
	case "example_1":
		return h.Example1
	case "synonym":
		return h.Synonym
	case "antonym":
		return h.Antonym
	default:
		return ""
	}
}

// EscapeCSVField doubles embedded quotes and wraps the field in quotes
// whenever it contains a comma, newline, or quote (RFC-4180).
func EscapeCSVField(field string) string {
	escaped := strings.ReplaceAll(field, `"`, `""`)
	if strings.ContainsAny(escaped, ",\n\"") {
		return `"` + escaped + `"`
	}
	return escaped
}

func formatCSVRow(front, back string) string {
	return EscapeCSVField(front) + "," + EscapeCSVField(back)
}
