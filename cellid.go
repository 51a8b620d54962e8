package sheet

import "fmt"

// CellId is the canonical, lowercase, absolute-marker-free identifier of a
// cell: "<colLetter><rowDigits>", e.g. "a1", "b12". It is equivalent to a
// (colIndex, rowIndex) pair with both indices absolute and in range.
type CellId string

// ParseCellId parses a canonical or $-marked cell spec into a CellId,
// resolving both axes to absolute indices. It rejects out-of-range axes with
// ErrLimits, and malformed specs with ErrSyntax.
func ParseCellId(spec string) (CellId, error) {
	_, colSpec, _, rowSpec, err := splitCellSpec(spec)
	if err != nil {
		return "", err
	}
	colIdx, err := colSpecToIndex(colSpec)
	if err != nil {
		return "", err
	}
	rowIdx, err := rowSpecToIndex(rowSpec)
	if err != nil {
		return "", err
	}
	return cellIdFromIndices(colIdx, rowIdx)
}

// cellIdFromIndices renders a zero-based (col, row) pair as its canonical
// CellId text, failing if either index is out of range.
func cellIdFromIndices(col, row int) (CellId, error) {
	colSpec, err := indexToColSpec(col, 0)
	if err != nil {
		return "", err
	}
	rowSpec, err := indexToRowSpec(row, 0)
	if err != nil {
		return "", err
	}
	return CellId(fmt.Sprintf("%s%s", colSpec, rowSpec)), nil
}

// indices decodes a CellId back into its zero-based (col, row) pair. Panics
// on a malformed CellId, since every CellId in circulation is produced by
// ParseCellId or cellIdFromIndices and is therefore already validated.
func (id CellId) indices() (col, row int) {
	_, colSpec, _, rowSpec, err := splitCellSpec(string(id))
	if err != nil {
		panic(fmt.Sprintf("sheet: invalid CellId %q: %v", id, err))
	}
	col, err = colSpecToIndex(colSpec)
	if err != nil {
		panic(fmt.Sprintf("sheet: invalid CellId %q: %v", id, err))
	}
	row, err = rowSpecToIndex(rowSpec)
	if err != nil {
		panic(fmt.Sprintf("sheet: invalid CellId %q: %v", id, err))
	}
	return col, row
}
