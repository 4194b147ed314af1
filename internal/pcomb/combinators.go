package pcomb

import (
	"fmt"

	"github.com/orizon-lang/pcomb/internal/position"
)

// rejectMsg extracts the expectation message carried by a rejection
// signal, or "" for a bare NoParse.
func rejectMsg(err error) string {
	if g, ok := err.(GiveUp); ok {
		return g.Msg
	}
	return ""
}

// Fail always invokes error, after recording the attempt at the
// current position (spec.md §4.F).
func Fail[T any]() Grammar[T] {
	return wrap[T](func(env Env, _ Cont, err ErrThunk) *Residual {
		env.updateFurthest("")
		err()
		return nil
	})
}

// ErrorMsg is spec.md §4.F's error(msg): like Fail, but contributes an
// expectation message.
func ErrorMsg[T any](msg string) Grammar[T] {
	return wrap[T](func(env Env, _ Cont, err ErrThunk) *Residual {
		env.updateFurthest(msg)
		err()
		return nil
	})
}

// Empty always succeeds without consuming input, handing x to the
// continuation as an already-resolved lazy value.
func Empty[T any](x T) Grammar[T] {
	return wrap[T](func(env Env, k Cont, _ ErrThunk) *Residual {
		return k.Invoke(env, now(x))
	})
}

// Lexeme runs a terminal at the current position. On success it skips
// trailing blanks, eagerizes the continuation, clears the key store,
// and hands a Residual to whoever called it — the one suspension
// point in the whole engine (spec.md §4.F, §5).
func Lexeme[T any](t Terminal[T]) Grammar[T] {
	return wrap[T](func(env Env, k Cont, err ErrThunk) *Residual {
		v, next, merr := t.Match(env.Buffer(), env.Current())
		if merr != nil {
			if !IsReject(merr) {
				panic(merr)
			}
			env.updateFurthest(rejectMsg(merr))
			err()
			return nil
		}

		newEnv := env.withLexemeEnd(next)
		k2, eerr := eagerizeCont(k)
		if eerr != nil {
			if !IsReject(eerr) {
				panic(eerr)
			}
			newEnv.updateFurthest(rejectMsg(eerr))
			err()
			return nil
		}

		return &Residual{Env: newEnv, Cont: k2, Err: err, Value: now(v)}
	})
}

// Seq runs g1, then g2, yielding Pair{g1's value, g2's value}. g1's
// value is threaded to g2's eventual continuation as Apply-LazyArg, so
// it is not forced until the next lexeme succeeds (spec.md §4.F).
func Seq[A, B any](g1 Grammar[A], g2 Grammar[B]) Grammar[Pair] {
	return wrap[Pair](func(env Env, k Cont, err ErrThunk) *Residual {
		k1 := Cont{sink: func(env2 Env, lv LazyValue) *Residual {
			return g2.run(env2, k.ExtendLazyArg(lv), err)
		}}
		return g1.run(env, k1, err)
	})
}

// DSeq runs g1, forces its value immediately to select the next
// grammar via choose, then runs that grammar, yielding Pair{g1's
// value, chosen grammar's value}. Forcing a eagerly (rather than
// deferring it as Seq does) is what lets the next grammar depend on
// the parsed value without the caller duplicating the grammar tree
// (spec.md §4.F).
func DSeq[A, B any](g1 Grammar[A], choose func(A) Grammar[B]) Grammar[Pair] {
	return wrap[Pair](func(env Env, k Cont, err ErrThunk) *Residual {
		k1 := Cont{sink: func(env2 Env, lv LazyValue) *Residual {
			v, ferr := lv()
			if ferr != nil {
				if !IsReject(ferr) {
					panic(ferr)
				}
				env2.updateFurthest(rejectMsg(ferr))
				err()
				return nil
			}
			a := v.(A)
			g2 := choose(a)
			return g2.run(env2, k.ExtendArg(a), err)
		}}
		return g1.run(env, k1, err)
	})
}

// Alt inspects the next character's membership in cs1/cs2 (the
// predict sets attached at construction time) to decide which
// branches are worth attempting; when both match, g1 runs first with
// an error that falls through to g2 (spec.md §4.F). g2 is started at
// most once, however many times g1 calls that error.
func Alt[T any](cs1 CharSet, g1 Grammar[T], cs2 CharSet, g2 Grammar[T]) Grammar[T] {
	if cs1 == nil {
		cs1 = AnyChar
	}
	if cs2 == nil {
		cs2 = AnyChar
	}
	return wrap[T](func(env Env, k Cont, err ErrThunk) *Residual {
		r, _, _ := env.Buffer().ReadRune(env.Current())
		m1, m2 := cs1(r), cs2(r)
		switch {
		case m1 && !m2:
			return g1.run(env, k, err)
		case m2 && !m1:
			return g2.run(env, k, err)
		case m1 && m2:
			tried := false
			return g1.run(env, k, func() {
				if tried {
					return
				}
				tried = true
				env.Push(g2.run(env, k, err))
			})
		default:
			env.updateFurthest("")
			err()
			return nil
		}
	})
}

// Option runs g only if the next character is in cs; otherwise, or if
// g rejects immediately, it succeeds with x without consuming input
// (spec.md §4.F). Unlike Alt, this is not an ambiguity point: once g
// commits to a residual, g's own err is left untouched rather than
// rewired through a fallback, so the scheduler's unconditional
// err-then-cont firing on that residual never re-delivers x alongside
// g's real value.
func Option[T any](x T, cs CharSet, g Grammar[T]) Grammar[T] {
	if cs == nil {
		cs = AnyChar
	}
	return wrap[T](func(env Env, k Cont, err ErrThunk) *Residual {
		r, _, _ := env.Buffer().ReadRune(env.Current())
		if !cs(r) {
			return k.Invoke(env, now(x))
		}
		if res := g.run(env, k, err); res != nil {
			return res
		}
		return k.Invoke(env, now(x))
	})
}

// App extends the continuation with Apply-Function(f), deferring f's
// evaluation to the same lexeme-boundary/final-recording points as
// every other transformer step (spec.md §4.F).
func App[T, R any](g Grammar[T], f func(T) R) Grammar[R] {
	return wrap[R](func(env Env, k Cont, err ErrThunk) *Residual {
		step := func(v interface{}) interface{} { return f(v.(T)) }
		return g.run(env, k.ExtendFunction(step), err)
	})
}

// PositionPredicate inspects the pre-blank and current positions of
// an environment, used by TestBefore/TestAfter.
type PositionPredicate func(env Env) bool

// TestBefore runs g only if pred holds at the position reached before
// g starts (spec.md §4.F).
func TestBefore[T any](pred PositionPredicate, g Grammar[T]) Grammar[T] {
	return wrap[T](func(env Env, k Cont, err ErrThunk) *Residual {
		if !pred(env) {
			err()
			return nil
		}
		return g.run(env, k, err)
	})
}

// TestAfter runs g, but checks pred at the point g's continuation
// fires rather than before g starts (spec.md §4.F).
func TestAfter[T any](pred PositionPredicate, g Grammar[T]) Grammar[T] {
	return wrap[T](func(env Env, k Cont, err ErrThunk) *Residual {
		k2 := Cont{sink: func(env2 Env, lv LazyValue) *Residual {
			if !pred(env2) {
				err()
				return nil
			}
			return k.Invoke(env2, lv)
		}}
		return g.run(env, k2, err)
	})
}

// LeftPos captures the position before g runs and threads it into the
// result as Pair{leftPosition, g's value} (spec.md §4.F).
func LeftPos[T any](g Grammar[T]) Grammar[Pair] {
	return wrap[Pair](func(env Env, k Cont, err ErrThunk) *Residual {
		p := env.CurrentPosition()
		return g.run(env, k.ExtendArg(p), err)
	})
}

// RightPos installs a position-capturing continuation so the position
// reached immediately after g succeeds is threaded into the result as
// Pair{rightPosition, g's value} (spec.md §4.F).
func RightPos[T any](g Grammar[T]) Grammar[Pair] {
	return wrap[Pair](func(env Env, k Cont, err ErrThunk) *Residual {
		cell := new(position.Position)
		return g.run(env, k.WithPositionCapture(cell), err)
	})
}

// Ref is the mutable slot behind a declared, possibly self-referential
// grammar (spec.md §6, §9): declare(name) creates it pointing at
// nothing; Set installs the real grammar; Deref builds a Grammar that
// looks the slot up lazily, at invocation time, so cyclic grammars
// never require an actual Go value cycle.
type Ref[T any] struct {
	name string
	g    *Grammar[T]
}

// Declare creates an unset slot labeled name. Using it via Deref
// before Set is called fails with a message naming the slot, exactly
// spec.md §6's "initially a failing grammar with a name label."
func Declare[T any](name string) *Ref[T] {
	return &Ref[T]{name: name}
}

// Set installs g as ref's grammar.
func Set[T any](ref *Ref[T], g Grammar[T]) {
	gg := g
	ref.g = &gg
}

// Deref builds a Grammar that delegates to whatever ref currently
// holds, resolved fresh on every invocation.
func Deref[T any](ref *Ref[T]) Grammar[T] {
	return wrap[T](func(env Env, k Cont, err ErrThunk) *Residual {
		if ref.g == nil {
			env.updateFurthest(fmt.Sprintf("%s (undeclared)", ref.name))
			err()
			return nil
		}
		return ref.g.run(env, k, err)
	})
}

// Family is a parametric slot keyed by an arbitrary comparable
// parameter, memoizing one grammar per parameter value (spec.md §6's
// grammar_family). Declaring the slot before calling build lets build
// itself recurse through Get for the same or a different parameter,
// supporting mutually recursive parametric grammars.
type Family[P comparable, T any] struct {
	build func(P) Grammar[T]
	slots map[P]*Ref[T]
}

// NewFamily creates a grammar family backed by build, called at most
// once per distinct parameter value.
func NewFamily[P comparable, T any](build func(P) Grammar[T]) *Family[P, T] {
	return &Family[P, T]{build: build, slots: make(map[P]*Ref[T])}
}

// Get returns the (possibly still-being-built) grammar for p.
func (f *Family[P, T]) Get(p P) Grammar[T] {
	if ref, ok := f.slots[p]; ok {
		return Deref(ref)
	}
	ref := Declare[T](fmt.Sprintf("family(%v)", p))
	f.slots[p] = ref
	Set(ref, f.build(p))
	return Deref(ref)
}
