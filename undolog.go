package sheet

// UndoLog is a single-operation shadow map: reset to empty at the start of
// every public mutating operation, it snapshots each cell's prior CellInfo
// the first time that operation touches it, so a failure partway through
// can restore the CellTable to exactly its pre-operation state.
type UndoLog struct {
	table     *CellTable
	snapshots map[CellId]*CellInfo // nil value means "did not exist"
	touched   map[CellId]bool      // distinguishes "not touched" from "touched, snapshot nil"
}

// NewUndoLog constructs an UndoLog over table.
func NewUndoLog(table *CellTable) *UndoLog {
	return &UndoLog{
		table:     table,
		snapshots: make(map[CellId]*CellInfo),
		touched:   make(map[CellId]bool),
	}
}

// reset discards any prior snapshots, starting a fresh shadow map for a new
// public mutating operation.
func (u *UndoLog) reset() {
	clear(u.snapshots)
	clear(u.touched)
}

// touch snapshots id's current CellInfo, but only the first time it is
// called for id since the last reset. Engine wires this into the CellTable's
// onTouch hook, so the table calls it before any write to a cell's record.
func (u *UndoLog) touch(id CellId) {
	if u.touched[id] {
		return
	}
	u.touched[id] = true
	info := u.table.get(id)
	if info == nil {
		u.snapshots[id] = nil
		return
	}
	u.snapshots[id] = cloneCellInfo(info)
}

// cloneCellInfo deep-copies info so a later mutation of the live CellInfo
// cannot corrupt the snapshot.
func cloneCellInfo(info *CellInfo) *CellInfo {
	dependents := make(map[CellId]struct{}, len(info.Dependents))
	for d := range info.Dependents {
		dependents[d] = struct{}{}
	}
	return &CellInfo{
		Id:         info.Id,
		Formula:    info.Formula,
		Ast:        info.Ast,
		Value:      info.Value,
		Dependents: dependents,
	}
}

// rollback restores every snapshotted cell to its pre-operation state,
// deleting cells that did not exist before the operation began.
func (u *UndoLog) rollback() {
	for id, snapshot := range u.snapshots {
		if snapshot == nil {
			delete(u.table.cells, id)
			continue
		}
		u.table.cells[id] = snapshot
	}
}
