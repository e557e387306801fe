package compiler

import (
	"sync"

	"tinygo.org/x/go-llvm"
)

var jitInit sync.Once

func initJIT() {
	jitInit.Do(func() {
		llvm.LinkInMCJIT()
		llvm.InitializeNativeTarget()
		llvm.InitializeNativeAsmPrinter()
	})
}

// Worker owns one LLVM context. Contexts are not thread-safe, so each
// goroutine compiling functions needs its own Worker; the context itself is
// created lazily on first use so that idle workers cost nothing.
type Worker struct {
	once sync.Once
	ctx  llvm.Context
}

// NewWorker returns a Worker whose context has not been created yet.
func NewWorker() *Worker { return &Worker{} }

// Context returns the worker's LLVM context, creating it on first call.
func (w *Worker) Context() llvm.Context {
	w.once.Do(func() {
		initJIT()
		w.ctx = llvm.NewContext()
	})
	return w.ctx
}

// Dispose releases the context if it was ever created. The worker must not
// be used afterwards.
func (w *Worker) Dispose() {
	if w.ctx.C != nil {
		w.ctx.Dispose()
	}
}
