package compiler

import (
	"fmt"

	"github.com/carl-lang/carl/pkg/lang"
	"tinygo.org/x/go-llvm"
)

// Result is the outcome of calling a compiled function: either a constant
// value or the error recorded at the error point that tripped.
type Result struct {
	Value *lang.ConstValue
	Err   *lang.Error
}

// Ok reports whether the call completed without tripping an error point.
func (r Result) Ok() bool { return r.Err == nil }

// CompiledFunction is a JIT-compiled function ready to call in-process. It
// keeps the execution engine alive for as long as the function may run and
// holds the error-point table used to decode failed calls.
type CompiledFunction struct {
	engine      llvm.ExecutionEngine
	fn          llvm.Value
	returnType  lang.Type
	errorPoints []*lang.Error
}

// Finish hands the compiler's module to a fresh MCJIT execution engine and
// looks up the named function in it. The module must not be modified
// afterwards; ownership passes to the engine.
func Finish(c *Compiler, name string, returnType lang.Type, errorPoints []*lang.Error) (*CompiledFunction, error) {
	if err := c.Verify(); err != nil {
		return nil, lang.Internal(lang.NoSpan, fmt.Sprintf("LLVM module verification failed: %v", err))
	}

	opts := llvm.NewMCJITCompilerOptions()
	opts.SetMCJITOptimizationLevel(uint(c.cfg.OptLevel))
	engine, err := llvm.NewMCJITCompiler(c.module, opts)
	if err != nil {
		return nil, lang.Internal(lang.NoSpan, fmt.Sprintf("cannot create execution engine: %v", err))
	}

	fn := engine.FindFunction(name)
	if fn.IsNil() {
		engine.Dispose()
		return nil, lang.Internal(lang.NoSpan, fmt.Sprintf("compiled function %q not found", name))
	}

	points := make([]*lang.Error, len(errorPoints))
	copy(points, errorPoints)

	return &CompiledFunction{
		engine:      engine,
		fn:          fn,
		returnType:  returnType,
		errorPoints: points,
	}, nil
}

// ReturnType is the language-level type of the function's result.
func (f *CompiledFunction) ReturnType() lang.Type { return f.returnType }

// ErrorPoints returns the error table compiled into the function.
func (f *CompiledFunction) ErrorPoints() []*lang.Error { return f.errorPoints }

// Call executes the compiled function and decodes its raw return value.
func (f *CompiledFunction) Call() Result {
	gv := f.engine.RunFunction(f.fn, nil)
	raw := gv.Int(false)
	gv.Dispose()
	return f.decode(raw)
}

func (f *CompiledFunction) decode(raw uint64) Result {
	value, errorIndex, isError := DecodeResult(raw)
	if isError {
		if errorIndex >= len(f.errorPoints) {
			return Result{Err: lang.Internal(lang.NoSpan,
				fmt.Sprintf("error-point index %d out of range", errorIndex))}
		}
		return Result{Err: f.errorPoints[errorIndex]}
	}

	switch f.returnType.Kind {
	case lang.IntKind:
		v := lang.NewIntConst(value)
		return Result{Value: &v}
	case lang.CellStateKind:
		v := lang.NewCellStateConst(uint8(value))
		return Result{Value: &v}
	case lang.VectorKind:
		lanes := make([]int64, f.returnType.Len)
		for i := range lanes {
			lanes[i] = int64(uint8(value >> (8 * uint(i))))
		}
		return Result{Value: &lang.ConstValue{Type: f.returnType, Vec: lanes}}
	}
	return Result{Err: lang.Internal(lang.NoSpan,
		fmt.Sprintf("cannot decode result of type %s", f.returnType))}
}

// Dispose releases the execution engine and the compiled code.
func (f *CompiledFunction) Dispose() {
	f.engine.Dispose()
}
