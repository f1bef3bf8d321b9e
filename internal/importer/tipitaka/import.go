package tipitaka

import (
	"math"
	"strconv"
	"strings"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
	"github.com/simsapa/tipitaka-engine/internal/model"
	"github.com/simsapa/tipitaka-engine/internal/text"
)

// ImportResult is one VRI-CST XML file's parsed suttas, ready for a loop
// of store.Manager.InsertSutta calls, plus the line/char-tracked
// fragments ParseFragments produced for it (Reconstruct(result.Fragments)
// reproduces the file's decoded content exactly).
type ImportResult struct {
	Nikaya    string
	Levels    []string // e.g. ["nikaya","book","vagga","sutta"]
	Suttas    []*model.Sutta
	Fragments []Fragment
}

// Importer processes Tipitaka XML files against a shared CST-to-
// SuttaCentral code mapping, matching
// tipitaka_xml_parser_tsv/integration.rs's TipitakaImporterUsingTSV.
type Importer struct {
	mapping *cstMapping
}

// NewImporter loads the cst-vs-sc.tsv mapping once so it can be reused
// across every XML file in an import run.
func NewImporter(tsvPath string) (*Importer, error) {
	mapping, err := loadCstMapping(tsvPath)
	if err != nil {
		return nil, err
	}
	return &Importer{mapping: mapping}, nil
}

// ImportFile reads, decodes, parses, and transforms one VRI-CST XML file
// into Sutta rows, matching
// TipitakaImporterUsingTSV::process_file. Unlike the non-TSV tree
// pipeline, a file with no paragraph-range coverage in cst-vs-sc.tsv is
// an explicit error - the importer never guesses a UID for it.
func (imp *Importer) ImportFile(xmlPath string) (*ImportResult, error) {
	filename := basename(xmlPath)
	commentarySuffix := detectCommentarySuffix(filename)
	mappingFilename := normalizeFilenameForMapping(filename)

	content, err := readXMLFile(xmlPath)
	if err != nil {
		return nil, err
	}

	col, err := parseXML(content, commentarySuffix != "")
	if err != nil {
		return nil, err
	}

	nikayaKey, ok := normalizeNikayaName(col.Nikaya)
	if !ok {
		return nil, corerr.New(corerr.Import, "tipitaka", "unknown nikaya name: "+col.Nikaya)
	}

	bounds, ok := imp.mapping.suttaBoundaries(mappingFilename)
	if !ok {
		return nil, corerr.New(corerr.Import, "tipitaka",
			"no TSV boundaries for file "+filename+", skipping import of this file")
	}

	chapterIsBoundary := nikayaKey == "digha" || commentarySuffix != ""
	fragments, err := ParseFragments(content, chapterIsBoundary)
	if err != nil {
		return nil, err
	}

	suttas := buildSuttas(nikayaKey, col, bounds, commentarySuffix)

	levels, _ := nikayaLevels(nikayaKey)
	return &ImportResult{Nikaya: nikayaKey, Levels: levels, Suttas: suttas, Fragments: fragments}, nil
}

// flatParagraph is one paragraph from the parsed tree, carrying the
// parsedSutta title it fell under so a TSV-defined sutta's display title
// can be recovered even though its content boundaries are now driven by
// paragraph-number ranges rather than the XML's own <p rend="subhead">/
// <head rend="chapter"> markers.
type flatParagraph struct {
	para  paragraph
	title string
}

// buildSuttas groups every paragraph in col by the [start_paranum,
// next_start_paranum-1] ranges bounds defines, matching
// integration.rs's process_file. A range with no matching paragraphs is
// skipped (that one sutta is dropped, not the whole file), matching the
// original's per-boundary "no paragraphs in range" warn-and-continue.
func buildSuttas(nikayaKey string, col *collection, bounds []suttaBoundary, commentarySuffix string) []*model.Sutta {
	var flat []flatParagraph
	var bookID string
	for _, b := range col.Books {
		if bookID == "" {
			bookID = b.ID
		}
		for _, v := range b.Vaggas {
			for _, s := range v.Suttas {
				for _, p := range s.Content {
					flat = append(flat, flatParagraph{para: p, title: s.Title})
				}
			}
		}
	}

	var suttas []*model.Sutta
	for i, boundary := range bounds {
		startParanum := boundary.StartParanum
		endParanum := math.MaxInt32
		if i+1 < len(bounds) {
			endParanum = bounds[i+1].StartParanum - 1
		}

		var content []paragraph
		var title string
		for _, fp := range flat {
			if !fp.para.HasN {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(fp.para.N))
			if err != nil {
				continue
			}
			if n < startParanum || n > endParanum {
				continue
			}
			content = append(content, fp.para)
			if title == "" {
				title = fp.title
			}
		}
		if len(content) == 0 {
			continue
		}
		if title == "" {
			title = boundary.CstCode
		}

		code := boundary.ScCode
		switch commentarySuffix {
		case ".att":
			code += ".att"
		case ".tik":
			code += ".tik"
		}

		suttas = append(suttas, &model.Sutta{
			UID:          code + "/pli/cst4",
			SuttaRef:     strings.ToUpper(bookID) + " " + strconv.Itoa(i+1),
			Nikaya:       nikayaKey,
			Language:     "pli",
			Title:        title,
			TitlePali:    title,
			TitleASCII:   text.PaliASCIIFold(title),
			ContentPlain: extractPlainText(content),
			ContentHTML:  transformToHTML(content),
			SourceUID:    "cst4",
		})
	}
	return suttas
}

func basename(p string) string {
	if idx := strings.LastIndexAny(p, `/\`); idx >= 0 {
		return p[idx+1:]
	}
	return p
}
