package text

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	romanVolumeRe  = regexp.MustCompile(`^[ivx]+$`)
	alphabeticRe   = regexp.MustCompile(`^[a-z]+$`)
	trailingRangeRe = regexp.MustCompile(`-(\d+)$`)
)

// NormalizePTSReference lowercases, replaces '.' and '~' with a space,
// collapses whitespace, and drops a trailing range suffix ("-N") after
// the last whitespace-delimited token.
func NormalizePTSReference(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	lower = strings.ReplaceAll(lower, ".", " ")
	lower = strings.ReplaceAll(lower, "~", " ")
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	if m := trailingRangeRe.FindStringSubmatch(last); m != nil {
		fields[len(fields)-1] = last[:len(last)-len(m[0])]
	}
	return strings.Join(fields, " ")
}

// PTSReference is a parsed citation into a Pali Text Society edition.
type PTSReference struct {
	Nikaya string
	Volume string // empty if the two-part <nikaya> <page> shape was used
	Page   uint32
}

// ParsePTSReference accepts "<nikaya> <roman-volume> <page>" or
// "<nikaya> <page>"; anything else (including an empty string) returns
// false.
func ParsePTSReference(s string) (PTSReference, bool) {
	normalized := NormalizePTSReference(s)
	if normalized == "" {
		return PTSReference{}, false
	}
	parts := strings.Fields(normalized)
	if len(parts) >= 3 && alphabeticRe.MatchString(parts[0]) && romanVolumeRe.MatchString(parts[1]) {
		page, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return PTSReference{}, false
		}
		return PTSReference{Nikaya: parts[0], Volume: parts[1], Page: uint32(page)}, true
	}
	if len(parts) >= 2 && alphabeticRe.MatchString(parts[0]) {
		page, err := strconv.ParseUint(parts[1], 10, 32)
		if err == nil {
			return PTSReference{Nikaya: parts[0], Page: uint32(page)}, true
		}
	}
	return PTSReference{}, false
}
