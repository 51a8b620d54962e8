package sheet

// Evaluator recomputes cell values over a CellTable. It owns no state of its
// own beyond the table it was constructed over: a single changed root is
// recursively forward-evaluated into every transitively dependent cell,
// with no dirty-set bookkeeping or volatile-function scheduling needed.
type Evaluator struct {
	table *CellTable
}

// NewEvaluator constructs an Evaluator over table.
func NewEvaluator(table *CellTable) *Evaluator {
	return &Evaluator{table: table}
}

// evalFromRoot recomputes rootId and every cell transitively dependent on
// it, depth-first with each cell computed before its dependents, and
// returns the accumulated id -> value map. A CIRCULAR_REF named at the cell
// where the cycle closes aborts the whole recursion.
//
// There is no "completed" set to skip cells already recalculated in the
// same pass: a diamond-shaped fan-in just means two recursion paths reach
// the same non-cyclic dependent and recompute it twice. The earlier pass may
// read a precedent that has not been recomputed yet; the later pass runs
// after that precedent and overwrites the value.
func (e *Evaluator) evalFromRoot(rootId CellId) (map[CellId]float64, error) {
	result := make(map[CellId]float64)
	visiting := make(map[CellId]struct{})
	if err := e.evalOne(rootId, visiting, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Evaluator) evalOne(id CellId, visiting map[CellId]struct{}, result map[CellId]float64) error {
	if _, ok := visiting[id]; ok {
		return newCircularRefError(id)
	}
	visiting[id] = struct{}{}
	defer delete(visiting, id)

	info := e.table.getOrInsert(id)
	v, err := e.evalAst(id, info.Ast)
	if err != nil {
		return err
	}
	info.Value = v
	result[id] = v

	for _, d := range e.table.dependentsOf(id) {
		if err := e.evalOne(d, visiting, result); err != nil {
			return err
		}
	}
	return nil
}

// evalAst evaluates ast as if it lived in cell base. A nil ast (empty cell)
// evaluates to 0. Evaluating a Ref installs base into the referenced cell's
// dependents set — edge installation is idempotent and happens here, on
// every eval, rather than as a separate up-front pass.
func (e *Evaluator) evalAst(base CellId, ast Ast) (float64, error) {
	if ast == nil {
		return 0, nil
	}
	switch n := ast.(type) {
	case Num:
		return n.Value, nil
	case Ref:
		target, err := n.CellRef.resolve(base)
		if err != nil {
			return 0, err
		}
		info := e.table.getOrInsert(target)
		info.Dependents[base] = struct{}{}
		return info.Value, nil
	case App:
		args := make([]float64, len(n.Kids))
		for i, kid := range n.Kids {
			v, err := e.evalAst(base, kid)
			if err != nil {
				return 0, err
			}
			args[i] = v
		}
		return apply(n.Fn, args)
	default:
		return 0, newSyntaxError("unevaluable AST node")
	}
}

// apply implements the fixed arithmetic vocabulary the closed FnId set
// allows — no string/boolean builtins, no variadic SUM/AVERAGE/IF.
//
// Division by zero is not guarded: the IEEE 754 quotient (±Inf or NaN) is
// returned as-is and stored as a cell's value.
func apply(fn FnId, args []float64) (float64, error) {
	switch fn {
	case FnAdd:
		return args[0] + args[1], nil
	case FnSub:
		return args[0] - args[1], nil
	case FnMul:
		return args[0] * args[1], nil
	case FnDiv:
		return args[0] / args[1], nil
	case FnNeg:
		return -args[0], nil
	case FnMin:
		m := args[0]
		for _, a := range args[1:] {
			if a < m {
				m = a
			}
		}
		return m, nil
	case FnMax:
		m := args[0]
		for _, a := range args[1:] {
			if a > m {
				m = a
			}
		}
		return m, nil
	default:
		return 0, newSyntaxError("unknown function")
	}
}

// removeAsDependent reverse-walks oldAst (as it was installed in cell id)
// and deletes id from every referenced cell's dependents set. Called by
// Engine before installing a cell's new AST, so stale back-edges never
// outlive the formula that created them.
func removeAsDependent(table *CellTable, id CellId, oldAst Ast) error {
	refs, err := refsOf(oldAst, id)
	if err != nil {
		return err
	}
	for _, r := range refs {
		table.removeDependent(r, id)
	}
	return nil
}
