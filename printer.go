package sheet

import (
	"strconv"
	"strings"
)

// PrintAst renders ast as a formula string rebased against baseCellId:
// absolute references render with a leading '$' per axis, relative
// references are rebased so the printed text resolves to the same absolute
// cell it denoted against its original base, and infix applications are
// parenthesized with the minimum parentheses needed to preserve meaning. An
// empty baseCellId defaults to "a1".
//
// Round-trip law: Parse(PrintAst(a, c), c) is structurally equal to a for
// every well-formed a whose refs stay in range under base c.
func PrintAst(ast Ast, baseCellId CellId) (string, error) {
	if baseCellId == "" {
		baseCellId = "a1"
	}
	return printNode(ast, baseCellId)
}

func printNode(ast Ast, base CellId) (string, error) {
	switch n := ast.(type) {
	case Num:
		return formatNumber(n.Value), nil
	case Ref:
		return printRef(n.CellRef, base)
	case App:
		return printApp(n, base)
	default:
		return "", newSyntaxError("unprintable AST node")
	}
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func printRef(ref CellRef, base CellId) (string, error) {
	baseCol, baseRow := 0, 0
	if base != "" {
		baseCol, baseRow = base.indices()
	}

	var colSpec, rowSpec string
	var err error
	if ref.Col.IsAbs {
		colSpec, err = indexToColSpec(ref.Col.Index, 0)
	} else {
		colSpec, err = indexToColSpec(ref.Col.Index, baseCol)
	}
	if err != nil {
		return "", err
	}
	if ref.Row.IsAbs {
		rowSpec, err = indexToRowSpec(ref.Row.Index, 0)
	} else {
		rowSpec, err = indexToRowSpec(ref.Row.Index, baseRow)
	}
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if ref.Col.IsAbs {
		b.WriteByte('$')
	}
	b.WriteString(colSpec)
	if ref.Row.IsAbs {
		b.WriteByte('$')
	}
	b.WriteString(rowSpec)
	return b.String(), nil
}

func printApp(n App, base CellId) (string, error) {
	switch n.Fn {
	case FnMin, FnMax:
		parts := make([]string, len(n.Kids))
		for i, kid := range n.Kids {
			s, err := printNode(kid, base)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return n.Fn.symbol() + "(" + strings.Join(parts, ", ") + ")", nil
	case FnNeg:
		operand := n.Kids[0]
		s, err := printNode(operand, base)
		if err != nil {
			return "", err
		}
		if appOperand, ok := operand.(App); ok && isBinaryOp(appOperand.Fn) {
			s = "(" + s + ")"
		}
		return "-" + s, nil
	default:
		left, err := printNode(n.Kids[0], base)
		if err != nil {
			return "", err
		}
		if needsParen(n.Kids[0], n.Fn.precedence(), false) {
			left = "(" + left + ")"
		}
		right, err := printNode(n.Kids[1], base)
		if err != nil {
			return "", err
		}
		if needsParen(n.Kids[1], n.Fn.precedence(), true) {
			right = "(" + right + ")"
		}
		return left + n.Fn.symbol() + right, nil
	}
}

func isBinaryOp(fn FnId) bool {
	switch fn {
	case FnAdd, FnSub, FnMul, FnDiv:
		return true
	default:
		return false
	}
}

// needsParen implements the minimum-parenthesization rule: a child is
// wrapped iff its own operator binds strictly looser than the parent (left
// child), or no more tightly than the parent (right child). Min/Max
// children are call-syntax and never need wrapping.
func needsParen(child Ast, parentPrec int, isRightChild bool) bool {
	app, ok := child.(App)
	if !ok || !isBinaryOp(app.Fn) {
		return false
	}
	childPrec := app.Fn.precedence()
	if isRightChild {
		return childPrec <= parentPrec
	}
	return childPrec < parentPrec
}
