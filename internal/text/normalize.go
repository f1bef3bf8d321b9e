// Package text implements the Pāli-aware text utilities: diacritic
// normalization, Latinization, alphabetical sort keys, natural sort,
// staged word-with-context extraction, and PTS reference parsing.
package text

import "strings"

// Niggahita maps every ṃ to ṁ and is otherwise the identity. All stored
// Pāli text and all query text pass through this exactly once, at ingest
// and at query entry respectively.
func Niggahita(s string) string {
	if !strings.ContainsRune(s, 'ṃ') {
		return s
	}
	return strings.ReplaceAll(s, "ṃ", "ṁ")
}

var latinizeReplacer = strings.NewReplacer(
	"ā", "a", "Ā", "A",
	"ī", "i", "Ī", "I",
	"ū", "u", "Ū", "U",
	"ṃ", "m", "Ṃ", "M",
	"ṁ", "m", "Ṁ", "M",
	"ṅ", "n", "Ṅ", "N",
	"ñ", "n", "Ñ", "N",
	"ṭ", "t", "Ṭ", "T",
	"ḍ", "d", "Ḍ", "D",
	"ṇ", "n", "Ṇ", "N",
	"ḷ", "l", "Ḷ", "L",
	"ṛ", "r", "Ṛ", "R",
	"ṝ", "r", "Ṝ", "R",
	"ḹ", "l", "Ḹ", "L",
	"ś", "s", "Ś", "S",
	"ṣ", "s", "Ṣ", "S",
	"ḥ", "h", "Ḥ", "H",
)

// Latinize maps Pāli/Sanskrit diacritics to their ASCII base letter, for
// search-index augmentation. It does not change case.
func Latinize(s string) string {
	return latinizeReplacer.Replace(s)
}

// PaliASCIIFold latinizes and lowercases, the form used for
// case-insensitive, diacritic-insensitive matching.
func PaliASCIIFold(s string) string {
	return strings.ToLower(Latinize(s))
}
