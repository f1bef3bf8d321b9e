package tipitaka

import (
	"encoding/xml"
	"io"
	"sort"
	"strings"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
)

// FragmentType distinguishes a Tipitaka XML fragment's role, matching
// types.rs's FragmentType.
type FragmentType int

const (
	FragmentHeader FragmentType = iota
	FragmentSutta
)

func (t FragmentType) String() string {
	if t == FragmentSutta {
		return "sutta"
	}
	return "header"
}

// GroupLevel is one level of the book/vagga hierarchy a fragment falls
// under at the point it was opened, matching types.rs's GroupLevel.
type GroupLevel struct {
	GroupType string // "book" or "vagga"
	ID        string
}

// Fragment is a contiguous byte span of a Tipitaka XML file, tagged with
// its role and the line/char cursor of its start and end, matching
// types.rs's XmlFragment. Char is a byte offset within the current line,
// reset to 0 at every '\n'. Fragments produced by one ParseFragments call
// are a gap-free partition of the file in document order, so feeding them
// to Reconstruct in that order reproduces the original content
// byte-for-byte - the round-trip property fragment_reconstructor.rs's
// test_roundtrip_reconstruction/test_roundtrip_commentary_style check.
type Fragment struct {
	Type        FragmentType
	Content     string
	StartLine   int
	StartChar   int
	EndLine     int
	EndChar     int
	GroupLevels []GroupLevel
}

// Reconstruct concatenates fragment content in order, matching
// fragment_reconstructor.rs's reconstruct_xml_from_fragments. Fragments
// must all come from a single ParseFragments call over one file, kept in
// the order that call returned them.
func Reconstruct(fragments []Fragment) string {
	var sb strings.Builder
	for _, f := range fragments {
		sb.WriteString(f.Content)
	}
	return sb.String()
}

// lineIndex converts an absolute byte offset into a (line, char) cursor.
// fragment_parser.rs's LineTrackingReader tracks this incrementally by
// counting newlines between successive buffer_position() reads;
// encoding/xml.Decoder.InputOffset already reports the exact byte
// boundary between tokens, so it is simpler to build the line table once
// up front and binary-search it per fragment boundary instead.
type lineIndex struct {
	starts []int // byte offset of the start of each line; starts[0] == 0
}

func newLineIndex(content string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

// at returns the 1-based line number and 0-based in-line byte offset for
// an absolute byte offset into the indexed content.
func (idx *lineIndex) at(offset int) (line, char int) {
	i := sort.Search(len(idx.starts), func(i int) bool { return idx.starts[i] > offset })
	return i, offset - idx.starts[i-1]
}

// isSuttaBoundary reports whether a start tag opens a new sutta fragment,
// adapted from FragmentBoundaryDetector::check_boundary/is_sutta_start to
// the same boundary rule parseXML uses: <p rend="subhead"> always opens
// one, and <head rend="chapter"> opens one only when chapterIsBoundary is
// set (Dīgha nikāya and commentary/sub-commentary files, which never
// carry a <p rend="subhead">).
func isSuttaBoundary(start xml.StartElement, chapterIsBoundary bool) bool {
	switch start.Name.Local {
	case "p":
		return attrVal(start.Attr, "rend") == "subhead"
	case "head":
		return chapterIsBoundary && attrVal(start.Attr, "rend") == "chapter"
	default:
		return false
	}
}

// truncateLevels drops any existing level of groupType, and anything
// nested under it, before a new one of that type is pushed, matching
// HierarchyTracker::enter_level's truncate-then-push behavior.
func truncateLevels(levels []GroupLevel, groupType string) []GroupLevel {
	for i, l := range levels {
		if l.GroupType == groupType {
			return levels[:i]
		}
	}
	return levels
}

// ParseFragments splits a Tipitaka VRI-CST XML file (already decoded to
// UTF-8 with LF line endings by readXMLFile) into line/char-tracked
// fragments, adapted from fragment_parser.rs's parse_into_fragments. The
// leading Header fragment covers everything up to the first sutta
// boundary tag; every fragment after that is a Sutta fragment running up
// to (but not including) the next boundary, or end of file.
func ParseFragments(content string, chapterIsBoundary bool) ([]Fragment, error) {
	idx := newLineIndex(content)
	dec := xml.NewDecoder(strings.NewReader(content))
	dec.Strict = false

	var (
		fragments  []Fragment
		fragStart  int
		fragType   = FragmentHeader
		fragLevels []GroupLevel
		levels     []GroupLevel
		prevOffset int64
	)

	closeFragment := func(end int) {
		if end <= fragStart {
			return
		}
		sl, sc := idx.at(fragStart)
		el, ec := idx.at(end)
		fragments = append(fragments, Fragment{
			Type:        fragType,
			Content:     content[fragStart:end],
			StartLine:   sl,
			StartChar:   sc,
			EndLine:     el,
			EndChar:     ec,
			GroupLevels: append([]GroupLevel(nil), fragLevels...),
		})
	}

	for {
		tokStart := int(prevOffset)
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, corerr.Wrap(corerr.Decode, "tipitaka", err)
		}
		prevOffset = dec.InputOffset()

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if start.Name.Local == "div" {
			switch attrVal(start.Attr, "type") {
			case "book":
				levels = append(truncateLevels(levels, "book"), GroupLevel{GroupType: "book", ID: attrVal(start.Attr, "id")})
			case "vagga":
				levels = append(truncateLevels(levels, "vagga"), GroupLevel{GroupType: "vagga", ID: attrVal(start.Attr, "id")})
			}
		}

		if isSuttaBoundary(start, chapterIsBoundary) {
			closeFragment(tokStart)
			fragStart = tokStart
			fragType = FragmentSutta
			fragLevels = append([]GroupLevel(nil), levels...)
		}
	}

	closeFragment(len(content))
	return fragments, nil
}
