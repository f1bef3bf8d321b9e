package search

import (
	"strings"

	"github.com/simsapa/tipitaka-engine/internal/text"
)

const leftContextTokens = 10
const rightContextChars = 200

// Snippet finds the first case-insensitive, Latinization-folded
// occurrence of query in haystack and emits a fragment with up to 10
// tokens of left context and ~200 characters of right context, the hit
// wrapped in <span class='match'>…</span>, prefixed "... " if cut on the
// left and suffixed " ..." if cut on the right (§4.3). Returns "" if
// query does not occur.
func Snippet(haystack, query string) string {
	if haystack == "" || query == "" {
		return ""
	}
	origRunes := []rune(haystack)
	// PaliASCIIFold's replacer maps every pattern one rune to one rune, so
	// folding never changes rune count or alignment; the folded index
	// below maps directly onto origRunes.
	foldedHaystack := []rune(text.PaliASCIIFold(haystack))
	foldedQuery := []rune(text.PaliASCIIFold(query))

	idx := indexRunes(foldedHaystack, foldedQuery)
	if idx < 0 {
		return ""
	}
	matchEnd := idx + len(foldedQuery)

	leftStart := leftTokenBoundary(origRunes, idx, leftContextTokens)
	rightEnd := matchEnd + rightContextChars
	if rightEnd > len(origRunes) {
		rightEnd = len(origRunes)
	}

	cutLeft := leftStart > 0
	cutRight := rightEnd < len(origRunes)

	var b strings.Builder
	if cutLeft {
		b.WriteString("... ")
	}
	b.WriteString(string(origRunes[leftStart:idx]))
	b.WriteString("<span class='match'>")
	b.WriteString(string(origRunes[idx:matchEnd]))
	b.WriteString("</span>")
	b.WriteString(string(origRunes[matchEnd:rightEnd]))
	if cutRight {
		b.WriteString(" ...")
	}
	return b.String()
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i <= len(haystack)-len(needle); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// leftTokenBoundary walks backward from pos, returning the rune index
// just past the start of the maxTokens-th whitespace-delimited token
// before pos (or 0 if the text is shorter than that).
func leftTokenBoundary(rs []rune, pos, maxTokens int) int {
	i := pos
	tokens := 0
	inToken := false
	for i > 0 {
		i--
		if isSpace(rs[i]) {
			if inToken {
				tokens++
				inToken = false
				if tokens >= maxTokens {
					return i + 1
				}
			}
		} else {
			inToken = true
		}
	}
	return 0
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
