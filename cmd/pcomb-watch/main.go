// Command pcomb-watch reparses a file every time it changes on disk,
// printing the result or a diagnostic after each reparse.
//
//	-grammar  arith (default) or sexpr
//	-style    gcc (default) or ocaml, for parse-error rendering
//	-file     path to the file to watch (required)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/orizon-lang/pcomb/examples/arith"
	"github.com/orizon-lang/pcomb/examples/sexpr"
	"github.com/orizon-lang/pcomb/internal/cli"
	"github.com/orizon-lang/pcomb/internal/diagnostics"
	"github.com/orizon-lang/pcomb/internal/pcomb"
	"github.com/orizon-lang/pcomb/internal/watch"
)

func main() {
	var grammarName, styleName, path string
	flag.StringVar(&grammarName, "grammar", "arith", "grammar to parse against: arith or sexpr")
	flag.StringVar(&styleName, "style", "gcc", "parse-error rendering style: gcc or ocaml")
	flag.StringVar(&path, "file", "", "path to the file to watch (required)")
	flag.Parse()

	if path == "" {
		cli.ExitWithError("missing required -file flag")
	}

	style := diagnostics.StyleGCC
	if styleName == "ocaml" {
		style = diagnostics.StyleOCaml
	}

	parse, err := parserFor(grammarName)
	if err != nil {
		cli.ExitWithError("%v", err)
	}

	fw, err := watch.New(path)
	if err != nil {
		cli.ExitWithError("%v", err)
	}
	defer fw.Close()

	reparse := func(src string) {
		v, err := parse(src)
		if err != nil {
			var pe *pcomb.ParseError
			if e, ok := err.(*pcomb.ParseError); ok {
				pe = e
			} else {
				pe = &pcomb.ParseError{Messages: []string{err.Error()}}
			}
			diagnostics.Print(os.Stderr, style, pe, path, src)
			return
		}
		fmt.Printf("%s -> %v\n", path, v)
	}

	fw.Handler = func(ev watch.Event) {
		if ev.Err != nil {
			fmt.Fprintf(os.Stderr, "watch: %v\n", ev.Err)
			return
		}
		reparse(string(ev.Data))
	}

	if data, err := os.ReadFile(path); err == nil {
		reparse(string(data))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	fw.Start(ctx)

	fmt.Printf("watching %s (grammar=%s) — Ctrl-C to quit\n", path, grammarName)
	<-ctx.Done()
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
