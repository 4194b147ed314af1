// Command pcomb-repl is an interactive read-parse-print loop over one
// of pcomb's worked example grammars.
//
//	-grammar  arith (default) or sexpr
//	-style    gcc (default) or ocaml, for parse-error rendering
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/orizon-lang/pcomb/examples/arith"
	"github.com/orizon-lang/pcomb/examples/sexpr"
	"github.com/orizon-lang/pcomb/internal/cli"
	"github.com/orizon-lang/pcomb/internal/diagnostics"
	"github.com/orizon-lang/pcomb/internal/pcomb"
)

func main() {
	var grammarName, styleName string
	var showVersion bool
	flag.StringVar(&grammarName, "grammar", "arith", "grammar to parse against: arith or sexpr")
	flag.StringVar(&styleName, "style", "gcc", "parse-error rendering style: gcc or ocaml")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		cli.PrintVersion("pcomb-repl", false)
		return
	}

	style := diagnostics.StyleGCC
	if styleName == "ocaml" {
		style = diagnostics.StyleOCaml
	}

	parse, err := parserFor(grammarName)
	if err != nil {
		cli.ExitWithError("%v", err)
	}

	fmt.Printf("pcomb-repl (%s) — one expression per line, Ctrl-D to quit\n", grammarName)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		v, err := parse(line)
		if err != nil {
			diagnostics.Print(os.Stderr, style, asParseError(err), "<stdin>", line)
			continue
		}
		fmt.Printf("%v\n", v)
	}
}

// asParseError normalizes parse into *pcomb.ParseError for
// diagnostics.Print, which renders source-anchored errors; a parse
// failure that isn't one (shouldn't happen for these two grammars,
// but ParsePartial's ambiguous-parse error is a plain *ParseError too
// so this is just future-proofing) still gets its message printed.
func asParseError(err error) *pcomb.ParseError {
	if pe, ok := err.(*pcomb.ParseError); ok {
		return pe
	}
	return &pcomb.ParseError{Messages: []string{err.Error()}}
}

func parserFor(name string) (func(string) (interface{}, error), error) {
	switch name {
	case "arith":
		return func(s string) (interface{}, error) { return arith.Parse(s) }, nil
	case "sexpr":
		return func(s string) (interface{}, error) { return sexpr.Parse(s) }, nil
	default:
		return nil, fmt.Errorf("unknown grammar %q (want arith or sexpr)", name)
	}
}
