package lang

import "fmt"

// ConstValue is a compile-time-known value of some Type, produced by
// constant folding. Integers and cell states are carried in Int; vectors use
// Vec with one lane per element.
type ConstValue struct {
	Type Type
	Int  int64
	Vec  []int64
}

// NewIntConst returns an integer constant.
func NewIntConst(v int64) ConstValue { return ConstValue{Type: Int, Int: v} }

// NewCellStateConst returns a cell-state constant.
func NewCellStateConst(id uint8) ConstValue {
	return ConstValue{Type: CellState, Int: int64(id)}
}

func (v ConstValue) String() string {
	switch v.Type.Kind {
	case CellStateKind:
		return fmt.Sprintf("#%d", v.Int)
	case VectorKind:
		return fmt.Sprintf("%s%v", v.Type, v.Vec)
	default:
		return fmt.Sprintf("%d", v.Int)
	}
}
