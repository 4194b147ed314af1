package pcomb

import "github.com/orizon-lang/pcomb/internal/position"

// transformerKind discriminates the small closed variant spec.md §3
// describes for Transformer.
type transformerKind int

const (
	tIdentity transformerKind = iota
	tApplyArg
	tApplyLazyArg
	tApplyPosition
	tApplyFunction
)

// Transformer is the deferred semantic-action value spec.md §3/§4.D
// describes: a left-biased, singly linked chain of steps, evaluated in
// one O(depth) pass only at a lexeme boundary or at final result
// recording — never per combinator descent.
type Transformer struct {
	kind    transformerKind
	arg     interface{}
	lazyArg LazyValue
	posCell *position.Position
	fn      func(interface{}) interface{}
	inner   *Transformer
}

// apply folds t against v, the raw value produced by whatever is
// innermost (a lexeme's parsed value, or an empty(x)'s x). Each step
// is visited exactly once; total cost is O(depth).
func applyTransformer(t *Transformer, v interface{}) (interface{}, error) {
	for t != nil {
		switch t.kind {
		case tIdentity:
			// no-op
		case tApplyArg:
			v = Pair{First: t.arg, Second: v}
		case tApplyLazyArg:
			fv, err := t.lazyArg()
			if err != nil {
				return nil, err
			}
			v = Pair{First: fv, Second: v}
		case tApplyPosition:
			v = Pair{First: *t.posCell, Second: v}
		case tApplyFunction:
			v = t.fn(v)
		}
		t = t.inner
	}
	return v, nil
}

// eagerize forces every Apply-LazyArg thunk at the head of t and
// replaces it in place with the resolved Apply-Arg — spec.md §4.D's
// "convert all Apply-LazyArg to Apply-Arg by forcing their thunks,
// performed exactly on lexeme success." Forcing here, rather than at
// final evaluation, fixes each argument's value against the
// environment state at the moment it was produced instead of
// replaying possibly-stale thunks later.
//
// Recursion stops at the first node that is not Apply-LazyArg: every
// chain this function ever returns has already had its lazy prefix
// collapsed, so anything beneath the first eager node was already
// forced by an earlier call and needs no revisiting. Walking past it
// anyway would make each lexeme success pay for the whole chain built
// up since the start of the parse — exactly the quadratic blowup on
// right recursion spec.md §4.D and §9 call out.
func eagerize(t *Transformer) (*Transformer, error) {
	if t == nil || t.kind != tApplyLazyArg {
		return t, nil
	}
	fv, err := t.lazyArg()
	if err != nil {
		return nil, err
	}
	inner, err := eagerize(t.inner)
	if err != nil {
		return nil, err
	}
	return &Transformer{kind: tApplyArg, arg: fv, inner: inner}, nil
}

// Sink is what a Continuation does once its transformer has been
// threaded onto a value: most often it is another Grammar's CPS
// invocation, closed over the next combinator step.
type Sink func(env Env, lv LazyValue) *Residual

// Cont is the Continuation of spec.md §3: either plain (transform
// only) or position-capturing (transform plus a cell written on
// invocation). There is no separate position-capturing struct —
// posCell is simply nil on a plain continuation.
type Cont struct {
	transform *Transformer
	posCell   *position.Position
	sink      Sink
}

// Invoke threads lv through c's transformer, captures the current
// position into c.posCell if set, and calls c's sink. This is the one
// place a Continuation actually "fires" — whether that happens
// synchronously (empty, app) or from the scheduler resuming a residual
// after a lexeme success, the rule is identical: the position captured
// by a position-capturing continuation is always the environment's
// current column at invocation time, which is exactly "the position
// reached right after" whatever just succeeded.
func (c Cont) Invoke(env Env, lv LazyValue) *Residual {
	if c.posCell != nil {
		p := env.CurrentPosition()
		*c.posCell = p
	}
	wrapped := lv
	if c.transform != nil {
		t := c.transform
		wrapped = func() (interface{}, error) {
			v, err := lv()
			if err != nil {
				return nil, err
			}
			return applyTransformer(t, v)
		}
	}
	return c.sink(env, wrapped)
}

// ExtendArg returns a new Cont identical to c but whose transform first
// applies Apply-Arg(x) before whatever c already accumulates.
func (c Cont) ExtendArg(x interface{}) Cont {
	next := c
	next.transform = &Transformer{kind: tApplyArg, arg: x, inner: c.transform}
	return next
}

// ExtendLazyArg is ExtendArg's lazy counterpart (Apply-LazyArg):
// x is not forced until eagerize runs at the next lexeme success.
func (c Cont) ExtendLazyArg(x LazyValue) Cont {
	next := c
	next.transform = &Transformer{kind: tApplyLazyArg, lazyArg: x, inner: c.transform}
	return next
}

// ExtendFunction returns a new Cont that applies f to whatever value
// reaches this point before continuing with c's existing transform.
func (c Cont) ExtendFunction(f func(interface{}) interface{}) Cont {
	next := c
	next.transform = &Transformer{kind: tApplyFunction, fn: f, inner: c.transform}
	return next
}

// WithPositionCapture returns a new Cont that, on invocation, both
// writes the invocation-time position into cell and threads it into
// the value chain via Apply-Position.
func (c Cont) WithPositionCapture(cell *position.Position) Cont {
	next := c
	next.posCell = cell
	next.transform = &Transformer{kind: tApplyPosition, posCell: cell, inner: c.transform}
	return next
}

// eagerizeCont returns a Cont whose transform chain has had every
// Apply-LazyArg forced, or the rejection error a thunk raised.
func eagerizeCont(c Cont) (Cont, error) {
	t, err := eagerize(c.transform)
	if err != nil {
		return Cont{}, err
	}
	c.transform = t
	return c, nil
}
