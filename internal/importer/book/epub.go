// Package book implements the EPUB and PDF importers (C8), grounded on
// original_source/backend/src/epub_import.rs and pdf_import.rs.
package book

import (
	"archive/zip"
	"encoding/json"
	"encoding/xml"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
	"github.com/simsapa/tipitaka-engine/internal/model"
	"github.com/simsapa/tipitaka-engine/internal/text"
)

// ImportedBook is the result of parsing one EPUB or PDF, ready to hand to
// store.Manager.InsertBook.
type ImportedBook struct {
	Book      *model.Book
	Spine     []*model.BookSpineItem
	Resources []*model.BookResource
}

type container struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	Metadata struct {
		Title    []string `xml:"title"`
		DCTitle  []string `xml:"http://purl.org/dc/elements/1.1/ title"`
		Creator  []string `xml:"creator"`
		DCCreator []string `xml:"http://purl.org/dc/elements/1.1/ creator"`
		Language []string `xml:"language"`
		DCLanguage []string `xml:"http://purl.org/dc/elements/1.1/ language"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID        string `xml:"id,attr"`
			Href      string `xml:"href,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type ncxDoc struct {
	NavMap struct {
		NavPoints []ncxNavPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type ncxNavPoint struct {
	NavLabel struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	NavPoints []ncxNavPoint `xml:"navPoint"`
}

func (n ncxNavPoint) flatten(out map[string]string) {
	if n.Content.Src != "" {
		key := firstField(n.Content.Src, "#")
		if _, exists := out[key]; !exists {
			out[key] = n.NavLabel.Text
		}
	}
	for _, child := range n.NavPoints {
		child.flatten(out)
	}
}

func firstField(s, sep string) string {
	if idx := strings.Index(s, sep); idx >= 0 {
		return s[:idx]
	}
	return s
}

// ImportEPUB opens the zip container at path, resolves its OPF/NCX, and
// produces the Book/spine/resource rows per spec §4.7.
func ImportEPUB(zipPath, bookUID string) (*ImportedBook, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, corerr.Wrap(corerr.Import, "book", err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	contAccFile, ok := files["META-INF/container.xml"]
	if !ok {
		return nil, corerr.New(corerr.Import, "book", "epub missing META-INF/container.xml")
	}
	var cont container
	if err := decodeZipXML(contAccFile, &cont); err != nil {
		return nil, err
	}
	if len(cont.Rootfiles) == 0 {
		return nil, corerr.New(corerr.Import, "book", "epub container.xml has no rootfile")
	}
	opfPath := cont.Rootfiles[0].FullPath
	opfDir := path.Dir(opfPath)

	opfFile, ok := files[opfPath]
	if !ok {
		return nil, corerr.New(corerr.Import, "book", "epub opf not found: "+opfPath)
	}
	var pkg opfPackage
	if err := decodeZipXML(opfFile, &pkg); err != nil {
		return nil, err
	}

	title := firstNonEmpty(pkg.Metadata.Title, pkg.Metadata.DCTitle, "Untitled")
	author := firstNonEmpty(pkg.Metadata.Creator, pkg.Metadata.DCCreator, "")
	language := firstNonEmpty(pkg.Metadata.Language, pkg.Metadata.DCLanguage, "")

	metaItems := make([]map[string]string, 0, len(pkg.Metadata.Title))
	for _, t := range pkg.Metadata.DCTitle {
		metaItems = append(metaItems, map[string]string{"key": "dc:title", "value": t})
	}
	metadataJSON, err := json.Marshal(metaItems)
	if err != nil {
		return nil, corerr.Wrap(corerr.Import, "book", err)
	}

	manifestByID := make(map[string]string, len(pkg.Manifest.Items))
	manifestMime := make(map[string]string, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		resolved := joinEpubPath(opfDir, item.Href)
		manifestByID[item.ID] = resolved
		manifestMime[resolved] = item.MediaType
	}

	// Resolve the NCX title map, keyed by resource path. An EPUB 3 nav
	// document is not read.
	tocMap := map[string]string{}
	for _, item := range pkg.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			if ncxFile, ok := files[joinEpubPath(opfDir, item.Href)]; ok {
				var ncx ncxDoc
				if err := decodeZipXML(ncxFile, &ncx); err == nil {
					ncxDir := path.Dir(joinEpubPath(opfDir, item.Href))
					for _, nav := range ncx.NavMap.NavPoints {
						nav.flatten(tocMap)
					}
					rebased := map[string]string{}
					for k, v := range tocMap {
						rebased[joinEpubPath(ncxDir, k)] = v
					}
					tocMap = rebased
				}
			}
		}
	}

	b := &model.Book{UID: bookUID, Title: title, Author: author, Language: language,
		DocumentType: "epub", MetadataJSON: string(metadataJSON)}

	var spine []*model.BookSpineItem
	for idx, ref := range pkg.Spine.ItemRefs {
		resourcePath, ok := manifestByID[ref.IDRef]
		if !ok {
			continue
		}
		f, ok := files[resourcePath]
		if !ok {
			continue
		}
		raw, err := readZipFile(f)
		if err != nil {
			return nil, err
		}

		chapterTitle, ok := tocMap[resourcePath]
		if !ok {
			chapterTitle, ok = extractHTMLTitle(raw)
			if !ok {
				chapterTitle = "Untitled"
			}
		}

		baseDir := path.Dir(resourcePath)
		if baseDir == "." {
			baseDir = ""
		}
		contentHTML := rewriteResourceLinks(string(raw), bookUID, baseDir)
		contentPlain := text.HTMLToPlainText(contentHTML)

		spine = append(spine, &model.BookSpineItem{
			SpineIndex:   idx,
			Title:        chapterTitle,
			ContentHTML:  contentHTML,
			ContentPlain: contentPlain,
			ResourcePath: resourcePath,
		})
	}

	var resources []*model.BookResource
	for _, item := range pkg.Manifest.Items {
		if strings.Contains(item.MediaType, "html") || strings.Contains(item.MediaType, "xhtml") {
			continue
		}
		resourcePath := joinEpubPath(opfDir, item.Href)
		f, ok := files[resourcePath]
		if !ok {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		resources = append(resources, &model.BookResource{Path: resourcePath, Mime: item.MediaType, ContentData: data})
	}

	return &ImportedBook{Book: b, Spine: spine, Resources: resources}, nil
}

func joinEpubPath(dir, rel string) string {
	if dir == "" || dir == "." {
		return path.Clean(rel)
	}
	return path.Clean(dir + "/" + rel)
}

func firstNonEmpty(primary, fallback []string, def string) string {
	if len(primary) > 0 && strings.TrimSpace(primary[0]) != "" {
		return primary[0]
	}
	if len(fallback) > 0 && strings.TrimSpace(fallback[0]) != "" {
		return fallback[0]
	}
	return def
}

func decodeZipXML(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return corerr.Wrap(corerr.Import, "book", err)
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return corerr.Wrap(corerr.Import, "book", err)
	}
	return nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, corerr.Wrap(corerr.Import, "book", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, corerr.Wrap(corerr.Import, "book", err)
	}
	return data, nil
}

var titleTagPattern = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)

// extractHTMLTitle returns the <title> tag text up to the first '|'
// separator; "" or a bare "Untitled" (case-insensitive) count as absent.
func extractHTMLTitle(content []byte) (string, bool) {
	m := titleTagPattern.FindSubmatch(content)
	if m == nil {
		return "", false
	}
	title := strings.TrimSpace(string(m[1]))
	titlePart := strings.TrimSpace(strings.SplitN(title, "|", 2)[0])
	if titlePart == "" || strings.EqualFold(titlePart, "untitled") {
		return "", false
	}
	return titlePart, true
}

var resourceLinkPattern = regexp.MustCompile(`(?i)(src|href)=["']([^"']+)["']`)

// rewriteResourceLinks rewrites relative src/href attributes to
// "/book_resources/<bookUID>/<normalized-path>", resolved against
// baseDir; absolute URLs, root-relative paths, and fragments pass
// through untouched.
func rewriteResourceLinks(html, bookUID, baseDir string) string {
	return resourceLinkPattern.ReplaceAllStringFunc(html, func(match string) string {
		sub := resourceLinkPattern.FindStringSubmatch(match)
		attr, linkPath := sub[1], sub[2]
		if strings.HasPrefix(linkPath, "http://") || strings.HasPrefix(linkPath, "https://") ||
			strings.HasPrefix(linkPath, "//") || strings.HasPrefix(linkPath, "/") || strings.HasPrefix(linkPath, "#") {
			return match
		}
		var combined string
		if baseDir != "" {
			combined = baseDir + "/" + linkPath
		} else {
			combined = linkPath
		}
		return attr + `="/book_resources/` + bookUID + "/" + normalizeRelPath(combined) + `"`
	})
}

// normalizeRelPath resolves ".."/"." components, matching the original's
// pure string-split algorithm. Empty segments are dropped, so a leading
// "/" is removed as well.
func normalizeRelPath(p string) string {
	parts := strings.Split(p, "/")
	var out []string
	for _, part := range parts {
		switch part {
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case ".", "":
		default:
			out = append(out, part)
		}
	}
	return strings.Join(out, "/")
}

