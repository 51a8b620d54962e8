package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoLogRollbackRestoresMissingCell(t *testing.T) {
	table := NewCellTable()
	undo := NewUndoLog(table)
	table.onTouch = undo.touch

	undo.reset()
	info := table.getOrInsert("a1")
	info.Ast = Num{Value: 1}
	info.Value = 1
	require.NotNil(t, table.get("a1"))

	undo.rollback()
	assert.Nil(t, table.get("a1"))
}

func TestUndoLogRollbackRestoresPriorValue(t *testing.T) {
	table := NewCellTable()
	undo := NewUndoLog(table)
	table.onTouch = undo.touch

	info := table.getOrInsert("a1")
	info.Ast = Num{Value: 1}
	info.Value = 1

	undo.reset()
	info = table.getOrInsert("a1")
	info.Value = 99
	info.Ast = Num{Value: 99}

	undo.rollback()
	restored := table.get("a1")
	require.NotNil(t, restored)
	assert.Equal(t, float64(1), restored.Value)
	assert.Equal(t, Num{Value: 1}, restored.Ast)
}

func TestUndoLogOnlySnapshotsFirstTouch(t *testing.T) {
	table := NewCellTable()
	undo := NewUndoLog(table)
	table.onTouch = undo.touch

	undo.reset()
	info := table.getOrInsert("a1")
	info.Value = 1
	info2 := table.getOrInsert("a1") // second touch in the same operation
	info2.Value = 2

	undo.rollback()
	assert.Nil(t, table.get("a1"), "a1 did not exist before this operation began")
}

func TestUndoLogResetDropsPriorSnapshots(t *testing.T) {
	table := NewCellTable()
	undo := NewUndoLog(table)
	table.onTouch = undo.touch

	undo.reset()
	table.getOrInsert("a1").Value = 1
	undo.reset() // start a fresh operation; a1's creation is no longer undoable
	table.getOrInsert("b1").Value = 2

	undo.rollback()
	assert.NotNil(t, table.get("a1"), "a1 belongs to a prior, already-committed operation")
	assert.Nil(t, table.get("b1"))
}
