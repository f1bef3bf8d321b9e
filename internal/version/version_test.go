package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStable(t *testing.T) {
	v, err := Parse("0.1.0")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 0, Minor: 1, Patch: 0}, v)
	assert.Nil(t, v.Alpha)
}

func TestParseWithVPrefix(t *testing.T) {
	v, err := Parse("v1.2.3")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v.Major)
	assert.Equal(t, uint32(2), v.Minor)
	assert.Equal(t, uint32(3), v.Patch)
}

func TestParseAlpha(t *testing.T) {
	v, err := Parse("v0.1.0-alpha.5")
	require.NoError(t, err)
	require.NotNil(t, v.Alpha)
	assert.Equal(t, uint32(5), *v.Alpha)
}

func TestParseInvalidShape(t *testing.T) {
	_, err := Parse("0.1")
	assert.Error(t, err)
}

func TestParseInvalidAlphaPrefix(t *testing.T) {
	_, err := Parse("0.1.0-beta.1")
	assert.Error(t, err)
}

func TestParseNonNumeric(t *testing.T) {
	_, err := Parse("a.b.c")
	assert.Error(t, err)
}

func TestCompareMajorMinorPatch(t *testing.T) {
	a, _ := Parse("1.0.0")
	b, _ := Parse("2.0.0")
	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(b, a))

	c, _ := Parse("1.1.0")
	d, _ := Parse("1.0.0")
	assert.Equal(t, 1, Compare(c, d))

	e, _ := Parse("1.0.1")
	f, _ := Parse("1.0.0")
	assert.Equal(t, 1, Compare(e, f))
}

func TestCompareStableAboveAlpha(t *testing.T) {
	stable, _ := Parse("1.0.0")
	alpha, _ := Parse("1.0.0-alpha.9")
	assert.Equal(t, 1, Compare(stable, alpha))
	assert.Equal(t, -1, Compare(alpha, stable))
}

func TestCompareAlphaByNumber(t *testing.T) {
	a1, _ := Parse("1.0.0-alpha.1")
	a2, _ := Parse("1.0.0-alpha.2")
	assert.Equal(t, -1, Compare(a1, a2))
}

func TestCompareEqual(t *testing.T) {
	a, _ := Parse("1.2.3")
	b, _ := Parse("1.2.3")
	assert.Equal(t, 0, Compare(a, b))
}

func TestLess(t *testing.T) {
	a, _ := Parse("1.0.0")
	b, _ := Parse("1.0.1")
	assert.True(t, Less(a, b))
	assert.False(t, Less(b, a))
}

func TestCompatibleWithDB(t *testing.T) {
	app, _ := Parse("1.2.5")
	db, _ := Parse("1.2.0")
	assert.True(t, CompatibleWithDB(app, db))

	dbOtherMinor, _ := Parse("1.3.0")
	assert.False(t, CompatibleWithDB(app, dbOtherMinor))

	dbOtherMajor, _ := Parse("2.2.5")
	assert.False(t, CompatibleWithDB(app, dbOtherMajor))
}
