package lang

import "fmt"

// ErrorKind discriminates the structural and semantic errors the compiler
// can report. Build-time kinds abort AST construction; the run-time kinds
// (IntegerOverflow, DivideByZero) are registered as error points and fire
// only when the generated code detects them.
type ErrorKind int

const (
	InternalError ErrorKind = iota
	UnexpectedCharacter
	SyntaxError
	Unimplemented
	Expected
	ExpectedGot
	BecomeInHelperFunction
	ReturnInTransitionFunction
	UseOfUninitializedVariable
	TypeError
	CmpError
	CannotEvalAsConst
	IntegerOverflow
	DivideByZero
)

func (k ErrorKind) String() string {
	switch k {
	case InternalError:
		return "internal error"
	case UnexpectedCharacter:
		return "unexpected character"
	case SyntaxError:
		return "syntax error"
	case Unimplemented:
		return "unimplemented"
	case Expected:
		return "expected"
	case ExpectedGot:
		return "expected/got mismatch"
	case BecomeInHelperFunction:
		return "become in helper function"
	case ReturnInTransitionFunction:
		return "return in transition function"
	case UseOfUninitializedVariable:
		return "use of uninitialized variable"
	case TypeError:
		return "type error"
	case CmpError:
		return "comparison error"
	case CannotEvalAsConst:
		return "cannot evaluate as constant"
	case IntegerOverflow:
		return "integer overflow"
	case DivideByZero:
		return "division by zero"
	}
	return "unknown error"
}

// Error is the structured error type every fallible compiler operation
// returns. Msg supplements the kind with detail; Span points at the
// offending source text, or NoSpan.
type Error struct {
	Kind ErrorKind
	Span Span
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	switch e.Kind {
	case Expected:
		return fmt.Sprintf("expected %s", e.Msg)
	case Unimplemented:
		return fmt.Sprintf("%s is unimplemented", e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

// NewError constructs an Error of the given kind at the given span.
func NewError(kind ErrorKind, span Span, msg string) *Error {
	return &Error{Kind: kind, Span: span, Msg: msg}
}

// Errorf is NewError with a formatted message.
func Errorf(kind ErrorKind, span Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// NewExpectedGot reports that one construct appeared where another was
// required, e.g. a comma-separated list in expression position.
func NewExpectedGot(span Span, expected, got string) *Error {
	return &Error{Kind: ExpectedGot, Span: span, Msg: fmt.Sprintf("expected %s, got %s", expected, got)}
}

// Internal reports a condition that indicates a compiler bug rather than a
// user error.
func Internal(span Span, msg string) *Error {
	return &Error{Kind: InternalError, Span: span, Msg: msg}
}

// Warning is a non-fatal diagnostic collected during AST building. Name
// matches a toggle in pkg/config.
type Warning struct {
	Name string
	Span Span
	Msg  string
}
