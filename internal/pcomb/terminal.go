package pcomb

import "github.com/orizon-lang/pcomb/internal/pcomb/buffer"

// NoParse is the unrecoverable-at-this-point rejection signal
// (spec.md §7(i)): it carries no message, only a furthest-progress
// update.
type NoParse struct{}

func (NoParse) Error() string { return "no parse" }

// GiveUp is the same rejection signal, but contributes an expectation
// message at the current position (spec.md §7(ii)).
type GiveUp struct {
	Msg string
}

func (g GiveUp) Error() string { return g.Msg }

// IsReject reports whether err is a NoParse or GiveUp rejection signal
// — the only two errors the core ever catches and converts into
// error-thunk invocation (spec.md §7). Anything else propagates as a
// genuine Go panic/error, unconverted.
func IsReject(err error) bool {
	switch err.(type) {
	case NoParse, GiveUp:
		return true
	default:
		return false
	}
}

// Terminal is the contract a terminal/lexeme library implements
// (spec.md §6): given (buffer, column), it either succeeds with a
// value and the post-consume column (blanks not yet skipped), or
// signals NoParse/GiveUp via the returned error. Predict reports the
// one-character lookahead set alt/option use to prune branches.
type Terminal[T any] struct {
	// Match attempts to consume starting at col, returning the parsed
	// value and the column immediately after the consumed text.
	Match func(buf *buffer.Buffer, col int) (value T, next int, err error)
	// Predict is the first-character set this terminal can start
	// with. A nil Predict is treated as AnyChar (always attempt).
	Predict CharSet
}

// LazyValue is a thunk producing a value or a rejection signal,
// forced only at the two points spec.md §4.D names: eagerization on
// lexeme success, and final result recording by the driver.
type LazyValue func() (interface{}, error)

// now wraps an already-known value as a LazyValue with no deferred
// work — the common case for empty(x) and eagerized arguments.
func now(v interface{}) LazyValue {
	return func() (interface{}, error) { return v, nil }
}

// Pair is the value produced by the Apply-Arg transformer case: the
// result of threading a stored value alongside whatever the inner
// chain produces. seq(g1, g2) yields Pair{First: v1, Second: v2}; app
// is the idiomatic way to project it into a real AST node.
type Pair struct {
	First  interface{}
	Second interface{}
}
