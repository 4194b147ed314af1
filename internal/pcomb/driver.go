package pcomb

import (
	"fmt"
	"io"
	"os"

	"github.com/orizon-lang/pcomb/internal/pcomb/buffer"
	"github.com/orizon-lang/pcomb/internal/position"
)

// ParseError is raised by the driver when zero results were collected,
// carrying the furthest position reached and the deduplicated,
// lexicographically sorted expectation messages accumulated there
// (spec.md §6, §7).
type ParseError struct {
	Position position.Position
	Messages []string
}

func (e *ParseError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("parse error at %s", e.Position.String())
	}
	return fmt.Sprintf("parse error at %s: expecting %v", e.Position.String(), e.Messages)
}

type resultItem[T any] struct {
	value     T
	preBlank  int
	postBlank int
}

// pendingResult holds a result's env snapshot and its still-unforced
// value, collected while the scheduler drains.
type pendingResult struct {
	env Env
	lv  LazyValue
}

// collect drives the scheduler for grammar g starting from env,
// recording every result the top-level terminal continuation receives
// (spec.md §4.E's driver paragraph). allResults false stops at the
// first accepted value.
//
// Forcing each LazyValue is deferred until the scheduler has fully
// drained rather than done inline in the terminal sink. A cache frame
// with merge (spec.md §4.H) keeps accepting contributions to the same
// end-position bucket from residuals still queued in the frontier;
// forcing the bucket's combined value as soon as the first contributor
// reaches the top would finalize it before the others arrive, which
// the cache's own too-late assertion would then reject outright. Since
// nothing about the env snapshot captured at invocation time depends
// on when the value is forced, deferring it is free.
func collect[T any](g Grammar[T], env Env, allResults bool) ([]resultItem[T], *Furthest) {
	sched := newScheduler()
	env.sched = sched

	var pending []pendingResult
	term := Cont{sink: func(env2 Env, lv LazyValue) *Residual {
		pending = append(pending, pendingResult{env: env2, lv: lv})
		if !allResults {
			sched.stop()
		}
		return nil
	}}

	first := g.run(env, term, func() {})
	sched.run(first)

	var results []resultItem[T]
	for _, p := range pending {
		v, err := p.lv()
		if err != nil {
			if !IsReject(err) {
				panic(err)
			}
			p.env.updateFurthest(rejectMsg(err))
			continue
		}
		results = append(results, resultItem[T]{value: v.(T), preBlank: p.env.preBlank, postBlank: p.env.cur})
	}
	return results, env.furthest
}

func parseErrorFrom(buf *buffer.Buffer, furthest *Furthest) *ParseError {
	return &ParseError{Position: buf.PositionAt(furthest.col), Messages: furthest.messages()}
}

// ParseAll runs g against buf starting at col, skipping leading blanks
// with blank, and returns every value the grammar accepts — spec.md
// §6's parse_all_buffer.
func ParseAll[T any](g Grammar[T], blank buffer.BlankFunc, buf *buffer.Buffer, col int) ([]T, error) {
	env := NewEnv(buf, blank, buf.SkipBlank(col, blank))
	items, furthest := collect(g, env, true)
	if len(items) == 0 {
		return nil, parseErrorFrom(buf, furthest)
	}
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = it.value
	}
	return out, nil
}

// ParsePartial runs g and returns its single value along with the
// position right after it, failing if g accepted zero or more than one
// parse — spec.md §6's partial_parse_buffer. blankAfter selects
// whether the returned column is pre- or post-blank.
func ParsePartial[T any](g Grammar[T], blank buffer.BlankFunc, blankAfter bool, buf *buffer.Buffer, col int) (T, int, error) {
	var zero T
	env := NewEnv(buf, blank, buf.SkipBlank(col, blank))
	items, furthest := collect(g, env, true)

	switch {
	case len(items) == 0:
		return zero, 0, parseErrorFrom(buf, furthest)
	case len(items) > 1:
		return zero, 0, &ParseError{
			Position: buf.PositionAt(items[0].preBlank),
			Messages: []string{"ambiguous parse: grammar accepted more than one value"},
		}
	}

	r := items[0]
	if blankAfter {
		return r.value, r.postBlank, nil
	}
	return r.value, r.preBlank, nil
}

// eofTerminal succeeds only at the end of the buffer; ParseToEnd uses
// it to require the whole input be consumed.
func eofTerminal() Terminal[struct{}] {
	return Terminal[struct{}]{
		Predict: AnyChar,
		Match: func(buf *buffer.Buffer, col int) (struct{}, int, error) {
			if col >= buf.Len() {
				return struct{}{}, col, nil
			}
			return struct{}{}, col, GiveUp{Msg: "end of input"}
		},
	}
}

// ParseToEnd is ParsePartial with an implicit trailing end-of-input
// terminal, requiring g to consume the entire buffer — spec.md §6's
// parse_buffer.
func ParseToEnd[T any](g Grammar[T], blank buffer.BlankFunc, buf *buffer.Buffer, col int) (T, error) {
	whole := App(Seq(g, Lexeme(eofTerminal())), func(p Pair) T { return p.First.(T) })
	v, _, err := ParsePartial(whole, blank, false, buf, col)
	return v, err
}

// ParseAllString is the from-string convenience wrapper around ParseAll.
func ParseAllString[T any](g Grammar[T], blank buffer.BlankFunc, filename, src string) ([]T, error) {
	return ParseAll(g, blank, buffer.New(filename, src), 0)
}

// ParseToEndString is the from-string convenience wrapper around
// ParseToEnd.
func ParseToEndString[T any](g Grammar[T], blank buffer.BlankFunc, filename, src string) (T, error) {
	return ParseToEnd(g, blank, buffer.New(filename, src), 0)
}

// ParseToEndReader reads r fully and parses it as ParseToEndString does.
func ParseToEndReader[T any](g Grammar[T], blank buffer.BlankFunc, filename string, r io.Reader) (T, error) {
	var zero T
	data, err := io.ReadAll(r)
	if err != nil {
		return zero, err
	}
	return ParseToEndString(g, blank, filename, string(data))
}

// ParseToEndFile reads the named file and parses it as ParseToEndString
// does.
func ParseToEndFile[T any](g Grammar[T], blank buffer.BlankFunc, path string) (T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, err
	}
	return ParseToEndString(g, blank, path, string(data))
}
