package lang

import "fmt"

// TypeKind defines the kind of a Type.
type TypeKind int

// The closed set of value types in the rule language.
const (
	IntKind TypeKind = iota
	CellStateKind
	VectorKind
)

// Type is a tagged variant over the language's value types. Len is only
// meaningful for vectors. Types are compared structurally; the zero value is
// the integer type.
type Type struct {
	Kind TypeKind
	Len  int
}

// Pre-defined types.
var (
	Int       = Type{Kind: IntKind}
	CellState = Type{Kind: CellStateKind}
)

// Vector returns the fixed-length integer-vector type of the given length.
func Vector(length int) Type { return Type{Kind: VectorKind, Len: length} }

func (t Type) String() string {
	switch t.Kind {
	case IntKind:
		return "int"
	case CellStateKind:
		return "cell"
	case VectorKind:
		return fmt.Sprintf("vec%d", t.Len)
	}
	return "unknown"
}
