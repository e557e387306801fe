// Package lang holds the value model shared by the front and back ends of the
// carl compiler: source spans, the closed type set, compile-time constants,
// and the structured error type every fallible operation returns.
package lang

// Span locates a range of source text. FileIndex refers to the table of
// source files registered with pkg/util for diagnostics.
type Span struct {
	FileIndex int
	Line      int
	Column    int
	Len       int
}

// NoSpan is used for errors that have no source location, such as internal
// errors raised outside of any build step.
var NoSpan = Span{FileIndex: -1}

// IsValid reports whether the span points at real source text.
func (s Span) IsValid() bool { return s.FileIndex >= 0 && s.Line > 0 }
