// Package version implements the parse/compare/compatibility logic for
// the application's update probe (C10): "[v]MAJOR.MINOR.PATCH[-alpha.N]"
// version strings, total ordering, and app/db compatibility checks.
package version

import (
	"strconv"
	"strings"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
)

// Version is a parsed "[v]MAJOR.MINOR.PATCH[-alpha.N]" string.
// Alpha == nil means a stable release.
type Version struct {
	Major, Minor, Patch uint32
	Alpha               *uint32
}

// Parse accepts "0.1.0", "v0.1.0", "0.1.0-alpha.1", "v0.1.0-alpha.1".
func Parse(s string) (Version, error) {
	raw := strings.TrimPrefix(s, "v")

	versionPart, alphaPart, hasAlpha := strings.Cut(raw, "-")

	parts := strings.Split(versionPart, ".")
	if len(parts) != 3 {
		return Version{}, corerr.New(corerr.Query, "version", "expected major.minor.patch, got "+s)
	}
	major, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Version{}, corerr.Wrap(corerr.Query, "version", err)
	}
	minor, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Version{}, corerr.Wrap(corerr.Query, "version", err)
	}
	patch, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return Version{}, corerr.Wrap(corerr.Query, "version", err)
	}

	v := Version{Major: uint32(major), Minor: uint32(minor), Patch: uint32(patch)}
	if hasAlpha {
		num, ok := strings.CutPrefix(alphaPart, "alpha.")
		if !ok {
			return Version{}, corerr.New(corerr.Query, "version", "expected 'alpha.N', got "+alphaPart)
		}
		n, err := strconv.ParseUint(num, 10, 32)
		if err != nil {
			return Version{}, corerr.Wrap(corerr.Query, "version", err)
		}
		n32 := uint32(n)
		v.Alpha = &n32
	}
	return v, nil
}

// Compare returns -1, 0, 1 for a<b, a==b, a>b. Stable (nil Alpha) sorts
// above alpha at equal major.minor.patch; two alphas compare by number.
func Compare(a, b Version) int {
	if c := cmpU32(a.Major, b.Major); c != 0 {
		return c
	}
	if c := cmpU32(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := cmpU32(a.Patch, b.Patch); c != 0 {
		return c
	}
	switch {
	case a.Alpha == nil && b.Alpha == nil:
		return 0
	case a.Alpha == nil:
		return 1
	case b.Alpha == nil:
		return -1
	default:
		return cmpU32(*a.Alpha, *b.Alpha)
	}
}

func cmpU32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less is the sort.Slice-friendly predicate form of Compare.
func Less(a, b Version) bool { return Compare(a, b) < 0 }

// CompatibleWithDB reports whether app and db versions are compatible:
// major and minor must match; patch and alpha differences are fine.
func CompatibleWithDB(app, db Version) bool {
	return app.Major == db.Major && app.Minor == db.Minor
}
