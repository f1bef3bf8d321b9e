package tipitaka

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
)

// collection is the parsed tree for one VRI-CST XML file, grounded on
// xml_parser.rs's TipitakaCollection/Book/Vagga/Sutta/XmlElement types.
type collection struct {
	Nikaya string
	Books  []*book
}

type book struct {
	ID     string
	Title  string
	Vaggas []*vagga
}

type vagga struct {
	ID     string
	Title  string
	Suttas []*parsedSutta
}

type parsedSutta struct {
	Title   string
	Content []paragraph
}

type paragraph struct {
	Rend    string
	N       string
	HasN    bool
	Content []contentNode
}

// contentNode is a tagged union over quick_xml's ContentNode enum: plain
// text, a <hi> highlighted span, a <note>, or a <pb/> page break.
type contentNode struct {
	Kind string // "text", "hi", "note", "pb"
	Text string
	Rend string // hi's rend attribute
	Ed   string // pb's ed attribute
	N    string // pb's n attribute
}

// parseXML walks a Tipitaka VRI-CST XML document and builds the
// nikaya/book/vagga/sutta tree, matching xml_parser.rs's parse_xml.
//
// forceChapterBoundary is true for commentary/sub-commentary files
// (detected from the filename before parsing starts). Whether or not it
// is set, a Dīgha-nikāya file also treats <head rend="chapter"> as a
// sutta boundary once the leading <p rend="nikaya"> heading resolves to
// "digha" - DN and its commentaries never carry a <p rend="subhead">,
// matching FragmentBoundaryDetector::check_boundary's
// nikaya_structure.nikaya == "digha" branch. Every other nikaya keeps
// treating <head rend="chapter"> as a vagga title and <p rend="subhead">
// as the sutta boundary.
func parseXML(content string, forceChapterBoundary bool) (*collection, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	dec.Strict = false

	var (
		col               collection
		curBook           *book
		curVagga          *vagga
		curSutta          *parsedSutta
		chapterIsBoundary = forceChapterBoundary
	)

	closeSutta := func() {
		if curSutta == nil {
			return
		}
		if curVagga == nil {
			// Commentary-style books (.att/.tik) carry <head
			// rend="chapter"> directly under <div type="book">
			// with no nested <div type="vagga">; synthesize one
			// so the sutta isn't dropped.
			curVagga = &vagga{ID: ""}
		}
		curVagga.Suttas = append(curVagga.Suttas, curSutta)
		curSutta = nil
	}

	closeVagga := func() {
		if curVagga == nil || curBook == nil {
			return
		}
		if len(curVagga.Suttas) > 0 {
			curBook.Vaggas = append(curBook.Vaggas, curVagga)
		}
		curVagga = nil
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, corerr.Wrap(corerr.Decode, "tipitaka", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "div":
			switch attrVal(start.Attr, "type") {
			case "book":
				if curBook != nil {
					closeSutta()
					closeVagga()
					col.Books = append(col.Books, curBook)
				}
				curBook = &book{ID: attrVal(start.Attr, "id")}
			case "vagga":
				closeSutta()
				closeVagga()
				curVagga = &vagga{ID: attrVal(start.Attr, "id")}
			}

		case "p":
			rend := attrVal(start.Attr, "rend")
			switch rend {
			case "nikaya":
				text, err := readTextUntilEnd(dec)
				if err != nil {
					return nil, corerr.Wrap(corerr.Decode, "tipitaka", err)
				}
				col.Nikaya = text
				if key, ok := normalizeNikayaName(text); ok && key == "digha" {
					chapterIsBoundary = true
				}
			case "subhead":
				closeSutta()
				title, err := readTextUntilEnd(dec)
				if err != nil {
					return nil, corerr.Wrap(corerr.Decode, "tipitaka", err)
				}
				curSutta = &parsedSutta{Title: title}
			default:
				if curSutta == nil {
					curSutta = &parsedSutta{}
				}
				para, err := parseParagraph(dec, rend, start.Attr)
				if err != nil {
					return nil, corerr.Wrap(corerr.Decode, "tipitaka", err)
				}
				curSutta.Content = append(curSutta.Content, para)
			}

		case "head":
			rend := attrVal(start.Attr, "rend")
			text, err := readTextUntilEnd(dec)
			if err != nil {
				return nil, corerr.Wrap(corerr.Decode, "tipitaka", err)
			}
			switch rend {
			case "book":
				if curBook != nil {
					curBook.Title = text
				}
			case "chapter":
				if chapterIsBoundary {
					closeSutta()
					curSutta = &parsedSutta{Title: text}
				} else if curVagga != nil {
					curVagga.Title = text
				}
			}
		}
	}

	closeSutta()
	closeVagga()
	if curBook != nil {
		col.Books = append(col.Books, curBook)
	}

	return &col, nil
}

// parseParagraph consumes a <p rend="..."> element's children (<hi>,
// <note>, <pb/>, and raw text) up to its matching close tag, matching
// xml_parser.rs's parse_paragraph.
func parseParagraph(dec *xml.Decoder, rend string, attrs []xml.Attr) (paragraph, error) {
	para := paragraph{Rend: rend}
	if n, ok := attrValOK(attrs, "n"); ok {
		para.N, para.HasN = n, true
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return para, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "hi":
				hiRend := attrVal(t.Attr, "rend")
				text, err := readTextUntilEnd(dec)
				if err != nil {
					return para, err
				}
				para.Content = append(para.Content, contentNode{Kind: "hi", Rend: hiRend, Text: text})
			case "note":
				text, err := readTextUntilEnd(dec)
				if err != nil {
					return para, err
				}
				para.Content = append(para.Content, contentNode{Kind: "note", Text: text})
			case "pb":
				ed := attrVal(t.Attr, "ed")
				n := attrVal(t.Attr, "n")
				para.Content = append(para.Content, contentNode{Kind: "pb", Ed: ed, N: n})
				if err := skipToEnd(dec); err != nil {
					return para, err
				}
			default:
				if err := skipToEnd(dec); err != nil {
					return para, err
				}
			}
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text != "" {
				para.Content = append(para.Content, contentNode{Kind: "text", Text: text})
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				return para, nil
			}
		}
	}
}

// readTextUntilEnd accumulates character data up to the next matching
// close tag, matching xml_parser.rs's read_text_content. Any unexpected
// nested element is skipped rather than misread as text.
func readTextUntilEnd(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if err := skipToEnd(dec); err != nil {
				return "", err
			}
		case xml.EndElement:
			return strings.TrimSpace(sb.String()), nil
		}
	}
}

// skipToEnd discards tokens until the start element already consumed by
// the caller is closed, tracking nesting depth generically.
func skipToEnd(dec *xml.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

func attrVal(attrs []xml.Attr, local string) string {
	v, _ := attrValOK(attrs, local)
	return v
}

func attrValOK(attrs []xml.Attr, local string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
