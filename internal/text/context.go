package text

import (
	"strings"
	"unicode"

	"github.com/coregx/ahocorasick"
)

// sandhiVowels are the vowels (plus niggahīta) that can precede a dropped
// quote before "ti".
var sandhiVowels = []string{"a", "ā", "i", "ī", "u", "ū", "e", "o", "ṁ"}
var sandhiQuotes = []string{"'", "\"", "’"}

type sandhiRule struct {
	pattern     string
	replacement string
}

var sandhiRules = buildSandhiRules()
var sandhiAutomaton = buildSandhiAutomaton(sandhiRules)

func buildSandhiRules() []sandhiRule {
	// A long final vowel before the quote is the sandhi lengthening of a
	// short one, so the unwrapped word gets its short vowel back.
	shortVowel := map[string]string{"ā": "a", "ī": "i", "ū": "u"}
	var rules []sandhiRule
	for _, v := range sandhiVowels {
		base := v
		if s, ok := shortVowel[v]; ok {
			base = s
		}
		for _, q := range sandhiQuotes {
			rules = append(rules, sandhiRule{
				pattern:     v + q + "ti",
				replacement: base + " ti",
			})
		}
	}
	for _, q := range sandhiQuotes {
		rules = append(rules, sandhiRule{
			pattern:     "n" + q + "ti",
			replacement: "ṁ ti",
		})
	}
	return rules
}

func buildSandhiAutomaton(rules []sandhiRule) *ahocorasick.Automaton {
	patterns := make([]string, len(rules))
	for i, r := range rules {
		patterns[i] = r.pattern
	}
	a, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		Build()
	if err != nil {
		// Patterns are a fixed, known-valid literal set; failure here
		// indicates a build-time programming error.
		panic("text: failed to build sandhi automaton: " + err.Error())
	}
	return a
}

// PreprocessForWordExtraction applies the fixed sandhi-unwrapping rewrite
// table to a working copy of the text: "…<vowel-or-ṁ>['\"]ti" becomes
// "…<vowel> ti" (a long ā, ī or ū becomes its short a, i or u) and
// "…n['\"]ti" becomes "…ṁ ti". The original string is
// never mutated by callers of this function; it exists purely to drive
// word extraction in the next stage.
func PreprocessForWordExtraction(s string) string {
	b := []byte(s)
	matches := sandhiAutomaton.FindAllOverlapping(b)
	if len(matches) == 0 {
		return s
	}
	// Keep only non-overlapping matches, earliest-first.
	var kept []ahocorasick.Match
	lastEnd := -1
	for _, m := range matches {
		if m.Start >= lastEnd {
			kept = append(kept, m)
			lastEnd = m.End
		}
	}
	var out strings.Builder
	cursor := 0
	for _, m := range kept {
		out.WriteString(s[cursor:m.Start])
		out.WriteString(sandhiRules[m.PatternID].replacement)
		cursor = m.End
	}
	out.WriteString(s[cursor:])
	return out.String()
}

// ExtractCleanWords tokenizes a preprocessed passage into lowercased words
// over the Pāli alphabet (diacritics preserved, punctuation dropped).
func ExtractCleanWords(preprocessed string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	for _, r := range preprocessed {
		if unicode.IsLetter(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

// WordPosition is the result of locating a clean word in the original
// text using character-based indexing.
type WordPosition struct {
	CharStart    int
	CharEnd      int
	OriginalWord string
}

// FindWordPositionCharBased searches chars (the original text) for word
// (case-insensitively, via lowerChars) starting no earlier than startPos,
// advancing a non-regressing cursor across successive calls.
func FindWordPositionCharBased(chars, lowerChars []rune, word string, startPos int) (WordPosition, bool) {
	wordRunes := []rune(strings.ToLower(word))
	n := len(wordRunes)
	if n == 0 || startPos > len(lowerChars)-n {
		if startPos > len(lowerChars)-n {
			return WordPosition{}, false
		}
	}
	for i := startPos; i+n <= len(lowerChars); i++ {
		if runesEqual(lowerChars[i:i+n], wordRunes) {
			return WordPosition{
				CharStart:    i,
				CharEnd:      i + n,
				OriginalWord: string(chars[i : i+n]),
			}, true
		}
	}
	return WordPosition{}, false
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ContextBoundaries describes the sentence-boundary window computed
// around a located word.
type ContextBoundaries struct {
	ContextStart int
	ContextEnd   int
	WordStart    int
	WordEnd      int
}

var sentenceTerminators = map[rune]bool{
	'.': true, '?': true, '!': true, ';': true, ':': true,
}

// CalculateContextBoundaries searches outward from pos for the nearest
// preceding and following sentence terminator, bounded by start/end of
// text. The start skips the whitespace that follows the preceding
// terminator.
func CalculateContextBoundaries(pos WordPosition, text string, totalChars int) ContextBoundaries {
	chars := []rune(text)
	start := 0
	for i := pos.CharStart - 1; i >= 0; i-- {
		if sentenceTerminators[chars[i]] {
			start = i + 1
			break
		}
	}
	for start < pos.CharStart && unicode.IsSpace(chars[start]) {
		start++
	}
	end := totalChars
	for i := pos.CharEnd; i < totalChars; i++ {
		if sentenceTerminators[chars[i]] {
			end = i + 1
			break
		}
	}
	return ContextBoundaries{
		ContextStart: start,
		ContextEnd:   end,
		WordStart:    pos.CharStart,
		WordEnd:      pos.CharEnd,
	}
}

// BuildContextSnippet slices chars between the context boundaries and
// wraps the word span in <b>…</b>, trimming leading/trailing whitespace.
func BuildContextSnippet(chars []rune, b ContextBoundaries) string {
	before := string(chars[b.ContextStart:b.WordStart])
	word := string(chars[b.WordStart:b.WordEnd])
	after := string(chars[b.WordEnd:b.ContextEnd])
	return strings.TrimSpace(before + "<b>" + word + "</b>" + after)
}

// WordWithContext is one element of the staged extraction's output.
type WordWithContext struct {
	CleanWord      string
	OriginalWord   string
	ContextSnippet string
}

// ExtractWordsWithContext runs the full five-stage pipeline over a Pāli
// passage. It tolerates words from the preprocessed copy that cannot be
// matched at the cursor position in the original by re-seeking forward;
// the cursor never regresses.
func ExtractWordsWithContext(text string) []WordWithContext {
	preprocessed := PreprocessForWordExtraction(text)
	cleanWords := ExtractCleanWords(preprocessed)

	chars := []rune(text)
	lowerChars := []rune(strings.ToLower(text))
	totalChars := len(chars)

	var results []WordWithContext
	cursor := 0
	for _, w := range cleanWords {
		pos, ok := FindWordPositionCharBased(chars, lowerChars, w, cursor)
		if !ok {
			continue
		}
		boundaries := CalculateContextBoundaries(pos, text, totalChars)
		snippet := BuildContextSnippet(chars, boundaries)
		results = append(results, WordWithContext{
			CleanWord:      w,
			OriginalWord:   pos.OriginalWord,
			ContextSnippet: snippet,
		})
		cursor = pos.CharEnd
	}
	return results
}
