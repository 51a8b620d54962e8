package sheet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installFormula is a test-only helper that installs ast directly on id
// without going through Engine, for evaluator tests that don't need
// undo/store plumbing.
func installFormula(table *CellTable, id CellId, formula string) Ast {
	ast, err := Parse(formula, id)
	if err != nil {
		panic(err)
	}
	table.getOrInsert(id).Ast = ast
	return ast
}

func TestEvaluatorArithmetic(t *testing.T) {
	table := NewCellTable()
	evalr := NewEvaluator(table)
	installFormula(table, "a1", "(1+2)*3")
	result, err := evalr.evalFromRoot("a1")
	require.NoError(t, err)
	assert.Equal(t, map[CellId]float64{"a1": 9}, result)
}

func TestEvaluatorPropagatesThroughDependents(t *testing.T) {
	table := NewCellTable()
	evalr := NewEvaluator(table)
	installFormula(table, "a1", "5")
	_, err := evalr.evalFromRoot("a1")
	require.NoError(t, err)

	installFormula(table, "b1", "a1+1")
	_, err = evalr.evalFromRoot("b1")
	require.NoError(t, err)
	assert.Contains(t, table.get("a1").Dependents, CellId("b1"))

	installFormula(table, "a1", "10")
	result, err := evalr.evalFromRoot("a1")
	require.NoError(t, err)
	assert.Equal(t, float64(10), result["a1"])
	assert.Equal(t, float64(11), result["b1"])
}

func TestEvaluatorEmptyCellIsZero(t *testing.T) {
	table := NewCellTable()
	evalr := NewEvaluator(table)
	installFormula(table, "a1", "b1+1")
	result, err := evalr.evalFromRoot("a1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), result["a1"])
}

func TestEvaluatorDivideByZeroPropagatesInf(t *testing.T) {
	table := NewCellTable()
	evalr := NewEvaluator(table)
	installFormula(table, "a1", "1/0")
	result, err := evalr.evalFromRoot("a1")
	require.NoError(t, err)
	assert.True(t, math.IsInf(result["a1"], 1))
}

func TestEvaluatorCircularRefDetected(t *testing.T) {
	table := NewCellTable()
	evalr := NewEvaluator(table)
	installFormula(table, "a1", "b1+1")
	_, err := evalr.evalFromRoot("a1")
	require.NoError(t, err)

	installFormula(table, "b1", "a1+1")
	_, err = evalr.evalFromRoot("b1")
	require.Error(t, err)
	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrCircularRef, ee.Code)
}

func TestEvaluatorMinMax(t *testing.T) {
	table := NewCellTable()
	evalr := NewEvaluator(table)
	installFormula(table, "a1", "min(3,1,2)")
	result, err := evalr.evalFromRoot("a1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), result["a1"])

	installFormula(table, "b1", "max(3,1,2)")
	result, err = evalr.evalFromRoot("b1")
	require.NoError(t, err)
	assert.Equal(t, float64(3), result["b1"])
}

func TestRemoveAsDependentPrunesEdges(t *testing.T) {
	table := NewCellTable()
	evalr := NewEvaluator(table)
	ast := installFormula(table, "b1", "a1+1")
	_, err := evalr.evalFromRoot("b1")
	require.NoError(t, err)
	require.Contains(t, table.get("a1").Dependents, CellId("b1"))

	require.NoError(t, removeAsDependent(table, "b1", ast))
	assert.Nil(t, table.get("a1"), "a1 had no formula and should be collected once b1's edge is removed")
}
