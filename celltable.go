package sheet

import "golang.org/x/exp/maps"

// CellInfo is the per-cell record the table holds: the parsed formula (nil
// for a cell that only exists as a dependency target), the last computed
// value, and the set of cells whose formula references this one directly.
//
// There is no separate precedent set: a cell's precedents are just the Ref
// leaves of its own Ast, walked on demand via refsOf. Only the reverse edge
// (Dependents) needs to be stored, since nothing else can recover it.
type CellInfo struct {
	Id         CellId
	Formula    string // raw formula text as last eval'd, "" if none
	Ast        Ast    // nil if this cell currently holds no formula
	Value      float64
	Dependents map[CellId]struct{}
}

// CellTable is the single-sheet dependency graph: one CellInfo per cell
// that either holds a formula or is depended upon by one. There are no
// ranges or named ranges — a cell reference always names exactly one cell.
type CellTable struct {
	cells map[CellId]*CellInfo

	// onTouch, when set, is called before any write this table makes to a
	// cell's record — creation, field mutation, or deletion. Engine wires
	// this to its UndoLog's touch method so every mutation along any path
	// (direct, or via the Evaluator) is snapshotted exactly once per
	// operation, without every call site having to remember to stage undo
	// itself.
	onTouch func(CellId)
}

// NewCellTable constructs an empty table.
func NewCellTable() *CellTable {
	return &CellTable{cells: make(map[CellId]*CellInfo)}
}

func (t *CellTable) notifyTouch(id CellId) {
	if t.onTouch != nil {
		t.onTouch(id)
	}
}

// getOrInsert returns the CellInfo for id, creating an empty one — no
// formula, value zero, no dependents — if none exists yet. Used both when a
// cell is about to receive a formula and when a reference is installed
// against a cell that has never been eval'd directly.
func (t *CellTable) getOrInsert(id CellId) *CellInfo {
	t.notifyTouch(id)
	if info, ok := t.cells[id]; ok {
		return info
	}
	info := &CellInfo{Id: id, Dependents: make(map[CellId]struct{})}
	t.cells[id] = info
	return info
}

// get returns the CellInfo for id, or nil if the cell has no record at all.
func (t *CellTable) get(id CellId) *CellInfo {
	return t.cells[id]
}

// addDependent records that dependent's formula references precedent,
// creating a record for precedent if it has none yet: every reference edge
// has a live node on both ends, even if the referenced cell has never been
// eval'd directly.
func (t *CellTable) addDependent(precedent, dependent CellId) {
	info := t.getOrInsert(precedent)
	info.Dependents[dependent] = struct{}{}
}

// removeDependent drops the precedent -> dependent edge, then removes
// precedent's record entirely if it is now empty: no formula and no
// remaining dependents. A table with no stale, pointless nodes.
func (t *CellTable) removeDependent(precedent, dependent CellId) {
	info, ok := t.cells[precedent]
	if !ok {
		return
	}
	t.notifyTouch(precedent)
	delete(info.Dependents, dependent)
	t.removeIfDead(precedent)
}

// removeIfDead deletes id's record if it carries no formula and has no
// dependents left — a cell that is neither a formula holder nor referenced
// by one has no reason to occupy a slot in the table.
func (t *CellTable) removeIfDead(id CellId) {
	info, ok := t.cells[id]
	if !ok {
		return
	}
	if info.Ast == nil && len(info.Dependents) == 0 {
		t.notifyTouch(id)
		delete(t.cells, id)
	}
}

// refsOf walks ast's Ref leaves and returns the CellIds they resolve to
// against base. A nil ast has no refs. Shared by the Evaluator's edge
// installation and by Engine's reverse-walk of a cell's old AST.
func refsOf(ast Ast, base CellId) ([]CellId, error) {
	if ast == nil {
		return nil, nil
	}
	var out []CellId
	var walk func(Ast) error
	walk = func(n Ast) error {
		switch v := n.(type) {
		case Ref:
			target, err := v.CellRef.resolve(base)
			if err != nil {
				return err
			}
			out = append(out, target)
		case App:
			for _, kid := range v.Kids {
				if err := walk(kid); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(ast); err != nil {
		return nil, err
	}
	return out, nil
}

// dependentsOf returns the live CellIds that reference id directly, in no
// particular order.
func (t *CellTable) dependentsOf(id CellId) []CellId {
	info, ok := t.cells[id]
	if !ok {
		return nil
	}
	return maps.Keys(info.Dependents)
}

// ids returns every CellId currently tracked, formula-bearing or not.
func (t *CellTable) ids() []CellId {
	return maps.Keys(t.cells)
}

// clear empties the table in one shot.
func (t *CellTable) clear() {
	maps.Clear(t.cells)
}
