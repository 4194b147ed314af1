// Package diagnostics renders a *pcomb.ParseError as source-anchored,
// human-readable text and provides the top-level failure path CLI front
// ends use to report it.
//
// Grounded on SeleniaProject-Orizon's internal/position visualization
// tools (SpanHighlighter, ErrorVisualizer) for the snippet-with-caret
// rendering, and on internal/cli/common.go's ExitWithError/HandleError
// convention for the process-exit path.
package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/orizon-lang/pcomb/internal/pcomb"
	"github.com/orizon-lang/pcomb/internal/position"
)

// Style selects the on-disk convention a Print call renders its output
// in. Both are one-error-per-call formats; StyleGCC is the compact
// "file:line:col: error: message" line compilers since gcc have used,
// StyleOCaml is the multi-line "File \"f\", line L, characters C1-C2:"
// block with a source snippet underneath, after ocamlc's own diagnostic
// format (and, within the pack, the shape SeleniaProject-Orizon's own
// ErrorVisualizer produces).
type Style int

const (
	StyleGCC Style = iota
	StyleOCaml
)

// Print writes a rendering of parseErr against src (registered under
// filename) to w in the requested style.
func Print(w io.Writer, style Style, parseErr *pcomb.ParseError, filename, src string) {
	switch style {
	case StyleOCaml:
		printOCaml(w, parseErr, filename, src)
	default:
		printGCC(w, parseErr, filename, src)
	}
}

func printGCC(w io.Writer, parseErr *pcomb.ParseError, filename, src string) {
	pos := parseErr.Position
	pos.Filename = filename
	fmt.Fprintf(w, "%s: error: %s\n", pos.String(), expectationMessage(parseErr.Messages))

	sm := position.NewSourceMap()
	file := sm.AddFile(filename, src)
	line := file.GetLine(pos.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(w, "%5d | %s\n", pos.Line, line)
	fmt.Fprintf(w, "      | %s^\n", spaces(pos.Column-1, line))
}

func printOCaml(w io.Writer, parseErr *pcomb.ParseError, filename, src string) {
	pos := parseErr.Position
	pos.Filename = filename
	fmt.Fprintf(w, "File %q, line %d, characters %d-%d:\n", filename, pos.Line, pos.Column-1, pos.Column)
	fmt.Fprintf(w, "Error: %s\n", expectationMessage(parseErr.Messages))

	sm := position.NewSourceMap()
	sm.AddFile(filename, src)
	highlighter := position.NewSpanHighlighter(sm)
	span := position.Span{
		Start: pos,
		End:   position.Position{Filename: filename, Line: pos.Line, Column: pos.Column + 1, Offset: pos.Offset + 1},
	}
	fmt.Fprint(w, highlighter.HighlightSpan(span))
}

func expectationMessage(messages []string) string {
	if len(messages) == 0 {
		return "parse error"
	}
	msg := "expecting " + messages[0]
	for _, m := range messages[1:] {
		msg += " or " + m
	}
	return msg
}

// spaces renders a tab-preserving run of n leading columns' worth of
// indentation drawn from line, the way
// SpanHighlighter.addSingleLineHighlight does.
func spaces(n int, line string) string {
	runes := []rune(line)
	out := make([]rune, 0, n)
	for i := 0; i < n; i++ {
		if i < len(runes) && runes[i] == '\t' {
			out = append(out, '\t')
		} else {
			out = append(out, ' ')
		}
	}
	return string(out)
}

// Handle prints err (if it is a *pcomb.ParseError, with source context
// in the given style; otherwise as a bare message) to stderr and exits
// the process with status 1. It is a no-op if err is nil.
//
// Mirrors internal/cli/common.go's ExitWithError/HandleError: a parse
// failure reported at the CLI boundary is fatal the same way any other
// CLI-level error is, just with richer formatting.
func Handle(err error, style Style, filename, src string) {
	if err == nil {
		return
	}
	if parseErr, ok := err.(*pcomb.ParseError); ok {
		Print(os.Stderr, style, parseErr, filename, src)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
