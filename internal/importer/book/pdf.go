package book

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpumodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
	"github.com/simsapa/tipitaka-engine/internal/model"
)

// ImportPDF loads a PDF at pdfPath, extracts its Info-dictionary/XMP
// metadata and plain text, and stores the raw bytes as the book's single
// resource, per spec §4.7. PDFs are treated as a single spine item;
// customTitle/customAuthor/customLanguage (any of which may be "")
// override the extracted metadata, matching pdf_import.rs.
func ImportPDF(pdfPath, bookUID, customTitle, customAuthor, customLanguage string) (*ImportedBook, error) {
	raw, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, corerr.Wrap(corerr.Import, "book", err)
	}

	extractedTitle, _ := extractPDFMetadata(raw, "Title")
	if extractedTitle == "" {
		extractedTitle = "Untitled"
	}

	extractedAuthor, ok := extractPDFMetadata(raw, "Author")
	if !ok {
		extractedAuthor, ok = extractXMPAuthor(raw)
	}
	if !ok {
		extractedAuthor, _ = extractPDFMetadata(raw, "Creator")
	}

	extractedLanguage, ok := extractPDFMetadata(raw, "Language")
	if !ok {
		extractedLanguage, _ = extractPDFMetadata(raw, "Lang")
	}

	title := firstNonEmptyString(customTitle, extractedTitle)
	author := firstNonEmptyString(customAuthor, extractedAuthor)
	language := firstNonEmptyString(customLanguage, extractedLanguage)

	contentPlain, err := extractPDFPlainText(pdfPath)
	if err != nil {
		contentPlain = ""
	}

	b := &model.Book{
		UID:          bookUID,
		Title:        title,
		Author:       author,
		Language:     language,
		DocumentType: "pdf",
	}

	spine := []*model.BookSpineItem{{
		SpineIndex:   0,
		Title:        title,
		ContentHTML:  "",
		ContentPlain: contentPlain,
		ResourcePath: "document.pdf",
	}}

	resources := []*model.BookResource{{
		Path:        "document.pdf",
		Mime:        "application/pdf",
		ContentData: raw,
	}}

	return &ImportedBook{Book: b, Spine: spine, Resources: resources}, nil
}

func firstNonEmptyString(primary, fallback string) string {
	if strings.TrimSpace(primary) != "" {
		return primary
	}
	return fallback
}

// extractPDFPlainText runs pdfcpu's content extractor, grounded
// on ternarybob-quaero's internal/services/pdf/extractor.go: write the
// per-page "Content_page_N"/"page_N" files to a scratch directory and
// reassemble them in page order.
func extractPDFPlainText(pdfPath string) (string, error) {
	pdfCtx, err := api.ReadContextFile(pdfPath)
	if err != nil {
		return "", corerr.Wrap(corerr.Import, "book", err)
	}
	pageCount := pdfCtx.PageCount

	outDir, err := os.MkdirTemp("", "tipitaka-pdf-*")
	if err != nil {
		return "", corerr.Wrap(corerr.Import, "book", err)
	}
	defer os.RemoveAll(outDir)

	conf := pdfcpumodel.NewDefaultConfiguration()
	if err := api.ExtractContentFile(pdfPath, outDir, nil, conf); err != nil {
		return "", corerr.Wrap(corerr.Import, "book", err)
	}

	files, err := os.ReadDir(outDir)
	if err != nil {
		return "", corerr.Wrap(corerr.Import, "book", err)
	}
	pageTexts := make(map[int]string, len(files))
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		var pageNum int
		name := f.Name()
		if _, err := fmt.Sscanf(name, "Content_page_%d", &pageNum); err != nil {
			if _, err := fmt.Sscanf(name, "page_%d", &pageNum); err != nil {
				continue
			}
		}
		content, err := os.ReadFile(filepath.Join(outDir, name))
		if err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	var b strings.Builder
	for n := 1; n <= pageCount; n++ {
		if text, ok := pageTexts[n]; ok {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(text)
		}
	}
	return strings.Join(strings.Fields(b.String()), " "), nil
}

// The Info dictionary and XMP accessors below are a best-effort byte
// scanner, not a full PDF object parser: pdfcpu's verified Go API (see
// extractPDFPlainText) covers page count and content extraction but not
// Info-dictionary field lookup, so metadata is read directly off the raw
// bytes the way pdf_import.rs's decode/trim helpers do once lopdf has
// handed it a dictionary value. This only resolves uncompressed trailers
// and Info objects, which covers the common case; compressed xref/object
// streams fall back to the "Untitled"/empty defaults above.

var trailerInfoRefPattern = regexp.MustCompile(`/Info\s+(\d+)\s+\d+\s+R`)

func findPDFInfoDict(raw []byte) ([]byte, bool) {
	m := trailerInfoRefPattern.FindSubmatch(raw)
	if m == nil {
		return nil, false
	}
	objPattern := regexp.MustCompile(`(?s)\b` + string(m[1]) + `\s+\d+\s+obj(.*?)endobj`)
	obj := objPattern.FindSubmatch(raw)
	if obj == nil {
		return nil, false
	}
	return obj[1], true
}

// extractPDFMetadata looks up /key in the Info dictionary, as a literal
// string "(...)", a hex string "<...>", or a name "/Value".
func extractPDFMetadata(raw []byte, key string) (string, bool) {
	dict, ok := findPDFInfoDict(raw)
	if !ok {
		return "", false
	}

	if m := regexp.MustCompile(`/` + key + `\s*\(((?:\\.|[^()\\])*)\)`).FindSubmatch(dict); m != nil {
		literal := unescapePDFLiteralString(m[1])
		return trimPDFString(decodePDFTextString(literal)), true
	}
	if m := regexp.MustCompile(`/` + key + `\s*<([0-9A-Fa-f]+)>`).FindSubmatch(dict); m != nil {
		decoded := decodePDFHexString(string(m[1]))
		return trimPDFString(decodePDFTextString(decoded)), true
	}
	if m := regexp.MustCompile(`/` + key + `\s*/([A-Za-z0-9_.#-]+)`).FindSubmatch(dict); m != nil {
		return trimPDFString(string(m[1])), true
	}
	return "", false
}

func unescapePDFLiteralString(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] == '\\' && i+1 < len(b) {
			i++
			switch b[i] {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			default:
				out = append(out, b[i])
			}
			continue
		}
		out = append(out, b[i])
	}
	return out
}

func decodePDFHexString(hexDigits string) []byte {
	if len(hexDigits)%2 != 0 {
		hexDigits += "0"
	}
	out := make([]byte, 0, len(hexDigits)/2)
	for i := 0; i+1 < len(hexDigits); i += 2 {
		var v int
		if _, err := fmt.Sscanf(hexDigits[i:i+2], "%02x", &v); err == nil {
			out = append(out, byte(v))
		}
	}
	return out
}

// decodePDFTextString decodes a PDF string that may be UTF-16BE/LE (with
// BOM), UTF-8, or PDFDocEncoding/Latin1 (bytes that are not valid UTF-8),
// ported from pdf_import.rs's decode_pdf_text_string.
func decodePDFTextString(bytes []byte) string {
	if len(bytes) >= 2 && bytes[0] == 0xFE && bytes[1] == 0xFF {
		return decodeUTF16(bytes[2:], true)
	}
	if len(bytes) >= 2 && bytes[0] == 0xFF && bytes[1] == 0xFE {
		return decodeUTF16(bytes[2:], false)
	}
	if utf8.Valid(bytes) {
		return string(bytes)
	}
	runes := make([]rune, len(bytes))
	for i, c := range bytes {
		runes[i] = rune(c)
	}
	return string(runes)
}

func decodeUTF16(b []byte, bigEndian bool) string {
	var units []uint16
	for i := 0; i+1 < len(b); i += 2 {
		if bigEndian {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		} else {
			units = append(units, uint16(b[i+1])<<8|uint16(b[i]))
		}
	}
	runes := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		r := rune(units[i])
		if r >= 0xD800 && r <= 0xDBFF && i+1 < len(units) {
			low := rune(units[i+1])
			if low >= 0xDC00 && low <= 0xDFFF {
				r = ((r - 0xD800) << 10) + (low - 0xDC00) + 0x10000
				i++
			}
		}
		runes = append(runes, r)
	}
	return string(runes)
}

// trimPDFString strips surrounding whitespace, NUL, and a BOM, matching
// pdf_import.rs's trim_pdf_string.
func trimPDFString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, " ")
	s = strings.Trim(s, "﻿")
	return strings.TrimSpace(s)
}

var (
	dcCreatorPattern  = regexp.MustCompile(`(?s)<dc:creator>(.*?)</dc:creator>`)
	rdfLiPattern      = regexp.MustCompile(`(?s)<rdf:li[^>]*>(.*?)</rdf:li>`)
	pdfAuthorPattern  = regexp.MustCompile(`(?s)<pdf:Author>(.*?)</pdf:Author>`)
)

// extractXMPAuthor looks for an XMP dc:creator (optionally wrapped in an
// rdf:li) or pdf:Author element anywhere in the raw PDF bytes, matching
// pdf_import.rs's extract_xmp_author.
func extractXMPAuthor(raw []byte) (string, bool) {
	if m := dcCreatorPattern.FindSubmatch(raw); m != nil {
		content := m[1]
		if li := rdfLiPattern.FindSubmatch(content); li != nil {
			return strings.TrimSpace(string(li[1])), true
		}
		return strings.TrimSpace(string(content)), true
	}
	if m := pdfAuthorPattern.FindSubmatch(raw); m != nil {
		return strings.TrimSpace(string(m[1])), true
	}
	return "", false
}
