package sheet

import "fmt"

// ErrCode is the closed set of user-visible error categories the engine can
// raise.
type ErrCode uint8

const (
	// ErrSyntax covers malformed formulas, malformed cell references, and
	// out-of-range coordinates discovered during parse or print.
	ErrSyntax ErrCode = iota + 1
	// ErrCircularRef is raised when forward evaluation revisits a cell that
	// is still on the current evaluation stack.
	ErrCircularRef
	// ErrLimits is raised when a row or column index falls outside the
	// configured maxima.
	ErrLimits
	// ErrDB wraps any failure reported by the Store collaborator.
	ErrDB
)

func (c ErrCode) String() string {
	switch c {
	case ErrSyntax:
		return "SYNTAX"
	case ErrCircularRef:
		return "CIRCULAR_REF"
	case ErrLimits:
		return "LIMITS"
	case ErrDB:
		return "DB"
	default:
		return "ERROR"
	}
}

// EngineError is the error type returned from every package-level operation
// that can fail. It preserves the error code for callers that want to
// branch on it.
type EngineError struct {
	Code    ErrCode
	Cell    CellId // zero value when not tied to a specific cell
	Message string
}

func (e *EngineError) Error() string {
	if e.Cell != "" {
		return fmt.Sprintf("%s: %s (cell %s)", e.Code, e.Message, e.Cell)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newSyntaxError(format string, args ...any) *EngineError {
	return &EngineError{Code: ErrSyntax, Message: fmt.Sprintf(format, args...)}
}

func newLimitsError(format string, args ...any) *EngineError {
	return &EngineError{Code: ErrLimits, Message: fmt.Sprintf(format, args...)}
}

func newCircularRefError(cell CellId) *EngineError {
	return &EngineError{Code: ErrCircularRef, Cell: cell, Message: "circular reference detected"}
}

func newDBError(format string, args ...any) *EngineError {
	return &EngineError{Code: ErrDB, Message: fmt.Sprintf(format, args...)}
}

// AsEngineError unwraps err into an *EngineError, wrapping unrecognized
// errors as ErrDB since any error that escapes the Store boundary is, by
// definition, a storage failure.
func AsEngineError(err error) *EngineError {
	if err == nil {
		return nil
	}
	if ee, ok := err.(*EngineError); ok {
		return ee
	}
	return &EngineError{Code: ErrDB, Message: err.Error()}
}
