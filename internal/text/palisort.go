package text

import (
	"regexp"
	"sort"
	"strings"
)

// letterToNumber is the Pāli alphabetical ordinal table, transliterated
// directly from the ordering used by the original implementation.
var letterToNumber = map[string]string{
	"√": "00",
	"a": "01", "ā": "02", "i": "03", "ī": "04", "u": "05", "ū": "06",
	"e": "07", "o": "08",
	"k": "09", "kh": "10", "g": "11", "gh": "12", "ṅ": "13",
	"c": "14", "ch": "15", "j": "16", "jh": "17", "ñ": "18",
	"ṭ": "19", "ṭh": "20", "ḍ": "21", "ḍh": "22", "ṇ": "23",
	"t": "24", "th": "25", "d": "26", "dh": "27", "n": "28",
	"p": "29", "ph": "30", "b": "31", "bh": "32", "m": "33",
	"y": "34", "r": "35", "l": "36", "v": "37", "s": "38", "h": "39",
	"ḷ": "40", "ṁ": "41",
}

// sanskritLetterToNumber is the Sanskrit ordinal table, a larger table
// with a few different slots (vocalic r/l, diphthongs, visarga,
// sibilants); unlike the Pāli table it has no "√" entry.
var sanskritLetterToNumber = map[string]string{
	"a": "01", "ā": "02", "i": "03", "ī": "04", "u": "05", "ū": "06",
	"ṛ": "07", "ṝ": "08", "ḷ": "09", "ḹ": "10",
	"e": "11", "ai": "12", "o": "13", "au": "14", "ṁ": "15", "ḥ": "16",
	"k": "17", "kh": "18", "g": "19", "gh": "20", "ṅ": "21",
	"c": "22", "ch": "23", "j": "24", "jh": "25", "ñ": "26",
	"ṭ": "27", "ṭh": "28", "ḍ": "29", "ḍh": "30", "ṇ": "31",
	"t": "32", "th": "33", "d": "34", "dh": "35", "n": "36",
	"p": "37", "ph": "38", "b": "39", "bh": "40", "m": "41",
	"y": "42", "r": "43", "l": "44", "v": "45",
	"ś": "46", "ṣ": "47", "s": "48", "h": "49",
}

func patternsFor(table map[string]string) []string {
	patterns := make([]string, 0, len(table))
	for p := range table {
		patterns = append(patterns, p)
	}
	// Longest pattern first so multi-letter digraphs (kh, ṭh, ...) match
	// before their single-letter prefix.
	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i]) != len(patterns[j]) {
			return len(patterns[i]) > len(patterns[j])
		}
		return patterns[i] < patterns[j]
	})
	return patterns
}

func buildPatternRegexp(patterns []string) *regexp.Regexp {
	escaped := make([]string, len(patterns))
	for i, p := range patterns {
		escaped[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(strings.Join(escaped, "|"))
}

var (
	paliPatterns    = patternsFor(letterToNumber)
	paliPatternRe   = buildPatternRegexp(paliPatterns)
	sanskritPatterns  = patternsFor(sanskritLetterToNumber)
	sanskritPatternRe = buildPatternRegexp(sanskritPatterns)
)

func sortKey(s string, re *regexp.Regexp, table map[string]string) string {
	lower := strings.ToLower(s)
	var b strings.Builder
	matches := re.FindAllString(lower, -1)
	for _, m := range matches {
		if ord, ok := table[m]; ok {
			b.WriteString(ord)
		}
	}
	return b.String()
}

// PaliSortKey produces a two-digit-per-letter ordinal key such that raw
// lexicographic ordering of keys yields Pāli alphabetical order.
func PaliSortKey(s string) string {
	return sortKey(s, paliPatternRe, letterToNumber)
}

// SanskritSortKey is PaliSortKey's counterpart for Sanskrit-table-ordered
// forms (used by DPD root sorting, which mixes Pāli and Sanskrit-derived
// roots).
func SanskritSortKey(s string) string {
	return sortKey(s, sanskritPatternRe, sanskritLetterToNumber)
}

// PaliSortKeyFlexible handles the two shapes dictionary headword lists
// key on: a Pāli string, or a bare integer (DPD numeric ids). Integers
// sort by their own value, before any string key, and are rendered with
// fixed-width zero padding so that lexicographic key comparison still
// agrees with numeric order for reasonably small ids.
func PaliSortKeyFlexible(v any) string {
	switch t := v.(type) {
	case int:
		return "0\x00" + zeroPad(t)
	case int64:
		return "0\x00" + zeroPad(int(t))
	case string:
		return "1\x00" + PaliSortKey(t)
	default:
		return "1\x00"
	}
}

func zeroPad(n int) string {
	const width = 12
	s := "000000000000"
	digits := []byte{}
	if n == 0 {
		digits = []byte{'0'}
	}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if len(digits) >= width {
		return string(digits)
	}
	return s[:width-len(digits)] + string(digits)
}
