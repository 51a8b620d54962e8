package sheet

import (
	"context"
	"sort"

	"golang.org/x/exp/maps"
)

// CellQuery is the result of Engine.Query: a cell's cached value and its
// current formula text, or the zero value for an unknown or empty cell.
type CellQuery struct {
	Value   float64
	Formula string
}

// Engine is the public entry point over one sheet: it simply owns handles
// to its collaborators (table, undo log, evaluator, store) rather than
// managing worksheets, named ranges, or chunked storage — this is a
// single-sheet, finite-cell-count model.
type Engine struct {
	name   string
	store  Store
	table  *CellTable
	undo   *UndoLog
	evalr  *Evaluator
	closed bool
}

// NewEngine constructs an Engine for sheet name backed by store, replaying
// every persisted formula in the order store.ReadFormulas returns it. Each
// replayed formula goes through the same parse/install/evaluate path as
// Eval, with persistence suppressed since the store already holds it; the
// first replay failure aborts construction and is returned.
func NewEngine(ctx context.Context, name string, store Store) (*Engine, error) {
	e := &Engine{
		name:  name,
		store: store,
		table: NewCellTable(),
	}
	e.undo = NewUndoLog(e.table)
	e.table.onTouch = e.undo.touch
	e.evalr = NewEvaluator(e.table)

	entries, err := store.ReadFormulas(ctx, name)
	if err != nil {
		return nil, newDBError("readFormulas: %v", err)
	}
	for _, entry := range entries {
		if _, err := e.evalCore(ctx, entry.Id, entry.Formula, false); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Eval parses formula against targetSpec, installs it, recomputes
// targetSpec and everything transitively dependent on it, persists the
// change, and returns every recomputed cell's new value. Any failure —
// parse, cycle, bounds, or store — rolls the table back to its
// pre-operation state and returns the error unchanged.
func (e *Engine) Eval(ctx context.Context, targetSpec, formula string) (map[CellId]float64, error) {
	target, err := ParseCellId(targetSpec)
	if err != nil {
		return nil, err
	}
	e.undo.reset()
	updates, err := e.evalCore(ctx, target, formula, true)
	if err != nil {
		e.undo.rollback()
		return nil, err
	}
	return updates, nil
}

// evalCore is the undo-agnostic core of Eval: parse, reverse-walk the old
// AST's edges, install the new one, forward-evaluate, and (if persist)
// write through to the store. Callers own resetting and rolling back the
// UndoLog around one or more calls to this method, which lets Delete share
// one atomic undo scope across its own mutation and the re-evals it
// triggers.
func (e *Engine) evalCore(ctx context.Context, target CellId, formula string, persist bool) (map[CellId]float64, error) {
	ast, err := Parse(formula, target)
	if err != nil {
		return nil, err
	}
	if old := e.table.get(target); old != nil && old.Ast != nil {
		if err := removeAsDependent(e.table, target, old.Ast); err != nil {
			return nil, err
		}
	}
	info := e.table.getOrInsert(target)
	info.Ast = ast
	info.Formula = formula

	updates, err := e.evalr.evalFromRoot(target)
	if err != nil {
		return nil, err
	}
	if persist {
		if err := e.store.UpdateCell(ctx, e.name, target, formula); err != nil {
			return nil, newDBError("updateCell: %v", err)
		}
	}
	return updates, nil
}

// Query returns cellSpec's cached value and current formula text, or the
// zero CellQuery for an unknown or empty cell.
func (e *Engine) Query(cellSpec string) (CellQuery, error) {
	id, err := ParseCellId(cellSpec)
	if err != nil {
		return CellQuery{}, err
	}
	return e.queryId(id)
}

func (e *Engine) queryId(id CellId) (CellQuery, error) {
	info := e.table.get(id)
	if info == nil || info.Ast == nil {
		return CellQuery{}, nil
	}
	formula, err := PrintAst(info.Ast, id)
	if err != nil {
		return CellQuery{}, err
	}
	return CellQuery{Value: info.Value, Formula: formula}, nil
}

// Delete clears cellSpec's formula and re-evaluates every cell that
// depended on it, so they observe the now-empty cell as 0. An empty or
// unknown cell is a no-op except that the store is still asked to delete
// it.
func (e *Engine) Delete(ctx context.Context, cellSpec string) (map[CellId]float64, error) {
	id, err := ParseCellId(cellSpec)
	if err != nil {
		return nil, err
	}
	e.undo.reset()
	updates, err := e.deleteCore(ctx, id)
	if err != nil {
		e.undo.rollback()
		return nil, err
	}
	return updates, nil
}

func (e *Engine) deleteCore(ctx context.Context, id CellId) (map[CellId]float64, error) {
	info := e.table.get(id)
	if info == nil || info.Ast == nil {
		if err := e.store.Delete(ctx, e.name, id); err != nil {
			return nil, newDBError("delete: %v", err)
		}
		return map[CellId]float64{}, nil
	}

	dependents := maps.Keys(info.Dependents)
	if err := removeAsDependent(e.table, id, info.Ast); err != nil {
		return nil, err
	}
	info.Ast = nil
	info.Formula = ""
	info.Value = 0
	e.table.removeIfDead(id)

	result := map[CellId]float64{id: 0}
	for _, d := range dependents {
		dinfo := e.table.get(d)
		if dinfo == nil || dinfo.Ast == nil {
			continue
		}
		sub, err := e.evalCore(ctx, d, dinfo.Formula, true)
		if err != nil {
			return nil, err
		}
		for k, v := range sub {
			result[k] = v
		}
	}
	if err := e.store.Delete(ctx, e.name, id); err != nil {
		return nil, newDBError("delete: %v", err)
	}
	return result, nil
}

// Copy prints srcSpec's AST rebased against destSpec — which naturally
// adjusts relative references and leaves absolutes intact — and evaluates
// the result into destSpec. A source cell with no formula is treated as
// Delete(destSpec).
func (e *Engine) Copy(ctx context.Context, destSpec, srcSpec string) (map[CellId]float64, error) {
	destId, err := ParseCellId(destSpec)
	if err != nil {
		return nil, err
	}
	srcId, err := ParseCellId(srcSpec)
	if err != nil {
		return nil, err
	}
	srcInfo := e.table.get(srcId)
	if srcInfo == nil || srcInfo.Ast == nil {
		return e.Delete(ctx, destSpec)
	}
	destFormula, err := PrintAst(srcInfo.Ast, destId)
	if err != nil {
		return nil, err
	}
	return e.Eval(ctx, destSpec, destFormula)
}

// Clear wipes every cell without recording undos — it is not itself
// rollback-able — and asks the store to drop the sheet's persisted state.
func (e *Engine) Clear(ctx context.Context) error {
	e.table.clear()
	if err := e.store.Clear(ctx, e.name); err != nil {
		return newDBError("clear: %v", err)
	}
	return nil
}

// Dump returns every non-empty cell's (id, formula) pair in topological
// order: increasing depth, then lexicographic by CellId within a depth.
func (e *Engine) Dump() ([]FormulaEntry, error) {
	type node struct {
		prereqs []CellId
	}
	nodes := make(map[CellId]node)
	for _, id := range e.table.ids() {
		info := e.table.get(id)
		if info == nil || info.Ast == nil {
			continue
		}
		refs, err := refsOf(info.Ast, id)
		if err != nil {
			return nil, err
		}
		var prereqs []CellId
		for _, r := range refs {
			rinfo := e.table.get(r)
			if rinfo != nil && rinfo.Ast != nil {
				prereqs = append(prereqs, r)
			}
		}
		nodes[id] = node{prereqs: prereqs}
	}

	remaining := maps.Keys(nodes)
	sort.Slice(remaining, func(i, j int) bool { return remaining[i] < remaining[j] })
	emitted := make(map[CellId]bool, len(remaining))
	var order []CellId

	for len(order) < len(remaining) {
		var ready []CellId
		for _, id := range remaining {
			if emitted[id] {
				continue
			}
			allReady := true
			for _, p := range nodes[id].prereqs {
				if !emitted[p] {
					allReady = false
					break
				}
			}
			if allReady {
				ready = append(ready, id)
			}
		}
		if len(ready) == 0 {
			break // unreachable: the table never holds a cyclic dependency graph
		}
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		for _, id := range ready {
			emitted[id] = true
			order = append(order, id)
		}
	}

	out := make([]FormulaEntry, 0, len(order))
	for _, id := range order {
		info := e.table.get(id)
		formula, err := PrintAst(info.Ast, id)
		if err != nil {
			return nil, err
		}
		out = append(out, FormulaEntry{Id: id, Formula: formula})
	}
	return out, nil
}

// ValueFormulas returns the current {value, formula} for every id in ids,
// defaulting to every non-empty id from Dump when ids is nil.
func (e *Engine) ValueFormulas(ids []CellId) (map[CellId]CellQuery, error) {
	if ids == nil {
		entries, err := e.Dump()
		if err != nil {
			return nil, err
		}
		ids = make([]CellId, len(entries))
		for i, entry := range entries {
			ids[i] = entry.Id
		}
	}
	out := make(map[CellId]CellQuery, len(ids))
	for _, id := range ids {
		q, err := e.queryId(id)
		if err != nil {
			return nil, err
		}
		out[id] = q
	}
	return out, nil
}

// Close releases the store handle. Idempotent: a second call is a no-op.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.store.Close(); err != nil {
		return newDBError("close: %v", err)
	}
	return nil
}
