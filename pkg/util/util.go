// Package util renders compiler diagnostics: the file:line:col prefix, the
// offending source line, and a caret under the offending span.
package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/carl-lang/carl/pkg/config"
	"github.com/carl-lang/carl/pkg/lang"
	"golang.org/x/term"
)

// SourceFileRecord tracks the name and content of a single source file.
type SourceFileRecord struct {
	Name    string
	Content []rune
}

var sourceFiles []SourceFileRecord

// SetSourceFiles stores the source code for all input files for rich error
// messages.
func SetSourceFiles(files []SourceFileRecord) {
	sourceFiles = files
}

// useColor is decided once per stream; escape codes in a log file help
// nobody.
var useColor = map[*os.File]bool{}

func colorize(stream *os.File) bool {
	if on, ok := useColor[stream]; ok {
		return on
	}
	on := term.IsTerminal(int(stream.Fd()))
	useColor[stream] = on
	return on
}

func paint(stream *os.File, code string) string {
	if colorize(stream) {
		return code
	}
	return ""
}

func findFile(span lang.Span) string {
	if span.FileIndex < 0 || span.FileIndex >= len(sourceFiles) {
		return "unknown"
	}
	return sourceFiles[span.FileIndex].Name
}

// printErrorLine prints the source line and a caret indicating the span.
func printErrorLine(stream *os.File, span lang.Span) {
	if span.FileIndex < 0 || span.FileIndex >= len(sourceFiles) || span.Line == 0 {
		return
	}

	content := sourceFiles[span.FileIndex].Content
	lineNum := span.Line
	lineStart := 0
	for i, r := range content {
		if lineNum <= 1 {
			break
		}
		if r == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}

	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}

	fmt.Fprintf(stream, "  %s\n", string(content[lineStart:lineEnd]))

	fmt.Fprintf(stream, "  %s%s^", strings.Repeat(" ", span.Column-1), paint(stream, "\033[32m"))
	if span.Len > 1 {
		fmt.Fprint(stream, strings.Repeat("~", span.Len-1))
	}
	fmt.Fprintln(stream, paint(stream, "\033[0m"))
}

// PrintError prints a compile error with the source line it points at.
func PrintError(err *lang.Error) {
	if err.Span.IsValid() {
		fmt.Fprintf(os.Stderr, "%s:%d:%d: ", findFile(err.Span), err.Span.Line, err.Span.Column)
	}
	fmt.Fprintf(os.Stderr, "%serror:%s %s\n", paint(os.Stderr, "\033[31m"), paint(os.Stderr, "\033[0m"), err.Error())
	printErrorLine(os.Stderr, err.Span)
}

// PrintWarning prints a warning if its toggle is enabled in cfg.
func PrintWarning(cfg *config.Config, w lang.Warning) {
	if !cfg.IsWarningEnabledByName(w.Name) {
		return
	}
	if w.Span.IsValid() {
		fmt.Fprintf(os.Stderr, "%s:%d:%d: ", findFile(w.Span), w.Span.Line, w.Span.Column)
	}
	fmt.Fprintf(os.Stderr, "%swarning:%s %s [-W%s]\n",
		paint(os.Stderr, "\033[33m"), paint(os.Stderr, "\033[0m"), w.Msg, w.Name)
	printErrorLine(os.Stderr, w.Span)
}

// PrintWarnings prints every collected warning whose toggle is enabled.
func PrintWarnings(cfg *config.Config, warnings []lang.Warning) {
	for _, w := range warnings {
		PrintWarning(cfg, w)
	}
}
