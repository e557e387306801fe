// Package compiler is the native back end: it lowers one built UserFunction
// at a time into LLVM IR and JIT-compiles the result. The Compiler type owns
// the module, the instruction-builder cursor, the currently active function
// and the per-variable storage slots; AST nodes call its Build* primitives
// from their own code-generation routines.
package compiler

import (
	"fmt"

	"github.com/carl-lang/carl/pkg/config"
	"github.com/carl-lang/carl/pkg/lang"
	"tinygo.org/x/go-llvm"
)

// Value is the runtime representation of a computed result: an LLVM value
// tagged with its language type.
type Value struct {
	Type lang.Type
	LLVM llvm.Value
}

// A BuildFn emits instructions for one arm of a conditional. It runs with
// the cursor positioned at the arm's block and may terminate the block.
type BuildFn func(c *Compiler) error

// Compiler generates code for one function at a time. It is single-threaded;
// concurrent generation needs independent Compiler instances on independent
// Workers.
type Compiler struct {
	cfg     *config.Config
	ctx     llvm.Context
	module  llvm.Module
	builder llvm.Builder

	fn     llvm.Value
	fnName string
	vars   map[string]llvm.Value
}

// New creates a Compiler emitting into a fresh module owned by the worker's
// context.
func New(w *Worker, cfg *config.Config, moduleName string) *Compiler {
	ctx := w.Context()
	return &Compiler{
		cfg:     cfg,
		ctx:     ctx,
		module:  ctx.NewModule(moduleName),
		builder: ctx.NewBuilder(),
		vars:    make(map[string]llvm.Value),
	}
}

func (c *Compiler) Config() *config.Config { return c.cfg }
func (c *Compiler) Builder() llvm.Builder  { return c.builder }
func (c *Compiler) Module() llvm.Module    { return c.module }

// ReturnType is the wide integer every generated function returns; results
// and error indices are both encoded into it.
func (c *Compiler) ReturnType() llvm.Type { return c.ctx.Int64Type() }

// IntType is the language's integer type.
func (c *Compiler) IntType() llvm.Type { return c.ctx.IntType(c.cfg.IntBits) }

// CellStateType is the language's cell-state type.
func (c *Compiler) CellStateType() llvm.Type { return c.ctx.IntType(c.cfg.CellStateBits) }

// LLVMType maps a language type to its LLVM representation.
func (c *Compiler) LLVMType(t lang.Type) llvm.Type {
	switch t.Kind {
	case lang.IntKind:
		return c.IntType()
	case lang.CellStateKind:
		return c.CellStateType()
	case lang.VectorKind:
		return llvm.VectorType(c.IntType(), t.Len)
	}
	return c.IntType()
}

// BeginFunction starts emitting a new niladic function returning the wide
// result integer, positions the cursor at its entry block, and clears the
// variable slot map.
func (c *Compiler) BeginFunction(name string) llvm.Value {
	fnType := llvm.FunctionType(c.ReturnType(), nil, false)
	c.fn = llvm.AddFunction(c.module, name, fnType)
	c.fnName = name
	c.vars = make(map[string]llvm.Value)
	entry := c.ctx.AddBasicBlock(c.fn, "entry")
	c.builder.SetInsertPointAtEnd(entry)
	return c.fn
}

// CurrentFunction returns the LLVM function currently being built.
func (c *Compiler) CurrentFunction() llvm.Value { return c.fn }

// BindVar records the storage slot for a variable; AllocVar is the usual
// way to create one.
func (c *Compiler) BindVar(name string, slot llvm.Value) { c.vars[name] = slot }

// VarSlot returns the storage slot of a variable, if one has been bound.
func (c *Compiler) VarSlot(name string) (llvm.Value, bool) {
	slot, ok := c.vars[name]
	return slot, ok
}

// AllocVar creates a stack slot for a variable and initializes it with the
// default value for its type.
func (c *Compiler) AllocVar(name string, t lang.Type) (llvm.Value, error) {
	slot := c.builder.CreateAlloca(c.LLVMType(t), name)
	def, err := c.GetDefaultVarValue(t)
	if err != nil {
		return llvm.Value{}, err
	}
	c.builder.CreateStore(def, slot)
	c.vars[name] = slot
	return slot, nil
}

// AppendBasicBlock appends a block to the end of the current function.
func (c *Compiler) AppendBasicBlock(name string) llvm.BasicBlock {
	return c.ctx.AddBasicBlock(c.fn, name)
}

// NeedsTerminator reports whether the block at the cursor has no terminator
// instruction yet.
func (c *Compiler) NeedsTerminator() bool {
	last := c.builder.GetInsertBlock().LastInstruction()
	if last.IsNil() {
		return true
	}
	switch last.InstructionOpcode() {
	case llvm.Ret, llvm.Br, llvm.Switch, llvm.IndirectBr, llvm.Invoke, llvm.Unreachable:
		return false
	}
	return true
}

// BuildConditional branches on the zero/non-zero value of condition. It is
// the single control-flow primitive: a switch rather than a two-way branch,
// because condition values are not guaranteed to be single-bit. Each arm
// callback runs with the cursor at its own block; arms that do not
// terminate fall through to a shared merge block, where the cursor is left.
func (c *Compiler) BuildConditional(condition llvm.Value, buildIfTrue, buildIfFalse BuildFn) error {
	ifTrueBB := c.AppendBasicBlock("ifTrue")
	ifFalseBB := c.AppendBasicBlock("ifFalse")
	mergeBB := c.AppendBasicBlock("endIf")

	sw := c.builder.CreateSwitch(condition, ifTrueBB, 1)
	sw.AddCase(llvm.ConstInt(condition.Type(), 0, false), ifFalseBB)

	c.builder.SetInsertPointAtEnd(ifTrueBB)
	if err := buildIfTrue(c); err != nil {
		return err
	}
	if c.NeedsTerminator() {
		c.builder.CreateBr(mergeBB)
	}

	c.builder.SetInsertPointAtEnd(ifFalseBB)
	if err := buildIfFalse(c); err != nil {
		return err
	}
	if c.NeedsTerminator() {
		c.builder.CreateBr(mergeBB)
	}

	c.builder.SetInsertPointAtEnd(mergeBB)
	return nil
}

// BuildCheckedIntArithmetic invokes the overflow-reporting LLVM intrinsic
// for the named operation ("sadd", "ssub" or "smul"), branches on the
// overflow flag, and returns the arithmetic result. onOverflow must
// terminate its path, typically with a trapping error return; the result is
// only valid on the non-overflow path.
func (c *Compiler) BuildCheckedIntArithmetic(lhs, rhs llvm.Value, opName string, onOverflow BuildFn) (llvm.Value, error) {
	intrinsicName := fmt.Sprintf("llvm.%s.with.overflow.i%d", opName, c.cfg.IntBits)
	returnType := c.ctx.StructType([]llvm.Type{c.IntType(), c.ctx.Int1Type()}, false)
	fnType := llvm.FunctionType(returnType, []llvm.Type{c.IntType(), c.IntType()}, false)
	intrinsicFn := c.intrinsic(intrinsicName, fnType)

	call := c.builder.CreateCall(fnType, intrinsicFn, []llvm.Value{lhs, rhs}, "tmp_"+opName)

	// The intrinsic returns {result, overflowed}.
	result := c.builder.CreateExtractValue(call, 0, opName+"Result")
	isOverflow := c.builder.CreateExtractValue(call, 1, opName+"Overflow")

	err := c.BuildConditional(isOverflow, onOverflow, func(*Compiler) error { return nil })
	return result, err
}

// BuildDivCheck guards a signed division or remainder. Stage 1: a zero
// denominator reports division by zero. Stage 2, reached only for non-zero
// denominators: MIN_INT / -1 is the one signed division that overflows.
// Both callbacks must terminate their paths; the caller performs the
// division itself once BuildDivCheck returns.
func (c *Compiler) BuildDivCheck(lhs, rhs llvm.Value, onOverflow, onDivByZero BuildFn) error {
	zero := llvm.ConstInt(c.IntType(), 0, false)
	isDivByZero := c.builder.CreateICmp(llvm.IntEQ, rhs, zero, "isDivByZero")

	return c.BuildConditional(
		isDivByZero,
		onDivByZero,
		func(c *Compiler) error {
			minValue := c.MinIntValue()
			numIsMin := c.builder.CreateICmp(llvm.IntEQ, lhs, minValue, "isMinValue")
			negOne := llvm.ConstInt(c.IntType(), ^uint64(0), true)
			denomIsNegOne := c.builder.CreateICmp(llvm.IntEQ, rhs, negOne, "isNegOne")
			isOverflow := c.builder.CreateAnd(numIsMin, denomIsNegOne, "isOverflow")

			return c.BuildConditional(
				isOverflow,
				onOverflow,
				func(*Compiler) error { return nil },
			)
		},
	)
}

// BuildReturnError encodes a runtime failure into the function's return
// value: the top bit set, the error-point index in the remaining bits.
func (c *Compiler) BuildReturnError(errorIndex int) {
	encoded := EncodeError(errorIndex)
	c.builder.CreateRet(llvm.ConstInt(c.ReturnType(), encoded, false))
}

// BuildReturnValue encodes a result into the wide return integer and
// returns it. Integers return as-is, cell states zero-extend, vectors pack
// their lanes into 8-bit fields from the low end.
func (c *Compiler) BuildReturnValue(v Value) error {
	switch v.Type.Kind {
	case lang.IntKind:
		c.builder.CreateRet(v.LLVM)
		return nil
	case lang.CellStateKind:
		wide := c.builder.CreateZExt(v.LLVM, c.ReturnType(), "retWide")
		c.builder.CreateRet(wide)
		return nil
	case lang.VectorKind:
		packed, err := c.packVector(v)
		if err != nil {
			return err
		}
		c.builder.CreateRet(packed)
		return nil
	}
	return lang.Internal(lang.NoSpan, fmt.Sprintf("cannot return value of type %s", v.Type))
}

// packVector truncates each lane to 8 bits and packs them little-endian
// into the return integer. Bit 63 must stay clear, so at most 7 lanes fit.
func (c *Compiler) packVector(v Value) (llvm.Value, error) {
	if v.Type.Len > 7 {
		return llvm.Value{}, lang.Internal(lang.NoSpan,
			fmt.Sprintf("vector of length %d does not fit in the return value", v.Type.Len))
	}
	packed := llvm.ConstInt(c.ReturnType(), 0, false)
	for i := 0; i < v.Type.Len; i++ {
		idx := llvm.ConstInt(c.ctx.Int32Type(), uint64(i), false)
		lane := c.builder.CreateExtractElement(v.LLVM, idx, "lane")
		lane = c.builder.CreateAnd(lane, llvm.ConstInt(c.IntType(), 0xff, false), "laneByte")
		wide := c.builder.CreateZExtOrBitCast(lane, c.ReturnType(), "laneWide")
		shifted := c.builder.CreateShl(wide, llvm.ConstInt(c.ReturnType(), uint64(8*i), false), "laneShifted")
		packed = c.builder.CreateOr(packed, shifted, "packed")
	}
	return packed, nil
}

// GetDefaultVarValue returns the zero value for variables of the given
// type, used to initialize storage slots before first assignment.
func (c *Compiler) GetDefaultVarValue(t lang.Type) (llvm.Value, error) {
	switch t.Kind {
	case lang.IntKind:
		return llvm.ConstInt(c.IntType(), 0, false), nil
	case lang.CellStateKind:
		return llvm.ConstInt(c.CellStateType(), 0, false), nil
	case lang.VectorKind:
		return llvm.ConstNull(llvm.VectorType(c.IntType(), t.Len)), nil
	}
	return llvm.Value{}, lang.Internal(lang.NoSpan, fmt.Sprintf("no default value for type %s", t))
}

// MinIntValue is the minimum value representable by the language's signed
// integer type.
func (c *Compiler) MinIntValue() llvm.Value {
	return llvm.ConstInt(c.IntType(), 1<<(uint(c.cfg.IntBits)-1), false)
}

// intrinsic returns the named intrinsic declaration, adding it to the
// module on first use.
func (c *Compiler) intrinsic(name string, fnType llvm.Type) llvm.Value {
	if fn := c.module.NamedFunction(name); !fn.IsNil() {
		return fn
	}
	fn := llvm.AddFunction(c.module, name, fnType)
	fn.SetLinkage(llvm.ExternalLinkage)
	return fn
}

// IR returns the textual LLVM IR of the module built so far.
func (c *Compiler) IR() string { return c.module.String() }

// Verify checks the module for structural errors.
func (c *Compiler) Verify() error {
	return llvm.VerifyModule(c.module, llvm.ReturnStatusAction)
}
