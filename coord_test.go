package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColSpecRoundTrip(t *testing.T) {
	cases := []struct {
		spec string
		idx  int
	}{
		{"a", 0}, {"b", 1}, {"z", 25},
	}
	for _, c := range cases {
		idx, err := colSpecToIndex(c.spec)
		require.NoError(t, err)
		assert.Equal(t, c.idx, idx)

		spec, err := indexToColSpec(c.idx, 0)
		require.NoError(t, err)
		assert.Equal(t, c.spec, spec)
	}
}

func TestColSpecMalformed(t *testing.T) {
	_, err := colSpecToIndex("aaaaaaa")
	require.Error(t, err)
	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrSyntax, ee.Code)
}

func TestRowSpecOutOfRange(t *testing.T) {
	_, err := rowSpecToIndex("100000")
	require.Error(t, err)
	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrLimits, ee.Code)
}

func TestSplitCellSpec(t *testing.T) {
	colAbs, colSpec, rowAbs, rowSpec, err := splitCellSpec("$a$1")
	require.NoError(t, err)
	assert.True(t, colAbs)
	assert.True(t, rowAbs)
	assert.Equal(t, "a", colSpec)
	assert.Equal(t, "1", rowSpec)

	colAbs, colSpec, rowAbs, rowSpec, err = splitCellSpec("b12")
	require.NoError(t, err)
	assert.False(t, colAbs)
	assert.False(t, rowAbs)
	assert.Equal(t, "b", colSpec)
	assert.Equal(t, "12", rowSpec)
}

func TestSplitCellSpecMalformed(t *testing.T) {
	for _, spec := range []string{"", "1a", "a", "$a", "a$", "a$$1"} {
		_, _, _, _, err := splitCellSpec(spec)
		assert.Error(t, err, spec)
	}
}

func TestParseCellId(t *testing.T) {
	id, err := ParseCellId("C12")
	require.NoError(t, err)
	assert.Equal(t, CellId("c12"), id)

	id, err = ParseCellId("$a$1")
	require.NoError(t, err)
	assert.Equal(t, CellId("a1"), id)
}

func TestCellIdIndices(t *testing.T) {
	id, err := ParseCellId("b3")
	require.NoError(t, err)
	col, row := id.indices()
	assert.Equal(t, 1, col)
	assert.Equal(t, 2, row)
}
