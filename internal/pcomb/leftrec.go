package pcomb

import "github.com/orizon-lang/pcomb/internal/position"

// LR parses g followed by gf repeated zero or more times, left
// associatively, without recursing into itself the way a naive
// `g (gf)*` expansion would (spec.md §4.G). After g succeeds with v,
// (key, v) is staged into the environment's key store and gf is tried
// against that environment; each time gf succeeds with v', the loop
// reinstalls (key, v') and tries again. Each iteration's error thunk
// resumes the outer continuation with that iteration's value, at most
// once: when gf fails, or earlier, when the scheduler calls the error
// thunk of a residual gf is suspended at. gf and the outer
// continuation are thus explored side by side, and an unanchored parse
// sees one result per iteration.
func LR[V any](g Grammar[V], key Key[V], gf Grammar[V]) Grammar[V] {
	return wrap[V](func(env Env, k Cont, err ErrThunk) *Residual {
		var loop func(frameEnv Env, v V) *Residual
		loop = func(frameEnv Env, v V) *Residual {
			staged := key.Set(frameEnv, v)

			kSucc := Cont{sink: func(env2 Env, lv LazyValue) *Residual {
				val, ferr := lv()
				if ferr != nil {
					if !IsReject(ferr) {
						panic(ferr)
					}
					env2.updateFurthest(rejectMsg(ferr))
					return k.Invoke(frameEnv, now(v))
				}
				return loop(env2, val.(V))
			}}

			fired := false
			fallback := func() {
				if fired {
					return
				}
				fired = true
				frameEnv.Push(k.Invoke(frameEnv, now(v)))
			}

			return gf.run(staged, kSucc, fallback)
		}

		k0 := Cont{sink: func(env1 Env, lv LazyValue) *Residual {
			val, ferr := lv()
			if ferr != nil {
				if !IsReject(ferr) {
					panic(ferr)
				}
				env1.updateFurthest(rejectMsg(ferr))
				err()
				return nil
			}
			return loop(env1, val.(V))
		}}

		return g.run(env, k0, err)
	})
}

// LRPos is LR's companion that additionally stages the left position
// of the whole expression under posKey, so that gf can read_pos back
// to the start of the entire left-recursive expression rather than the
// start of just the most recent iteration (spec.md §4.G). Like key,
// posKey is readable only until gf's first lexeme succeeds, because
// the key store is cleared on every lexeme success; a ReadPos placed
// after that lexeme finds nothing and fails.
func LRPos[V any](g Grammar[V], key Key[V], posKey Key[position.Position], gf Grammar[V]) Grammar[V] {
	return wrap[V](func(env Env, k Cont, err ErrThunk) *Residual {
		leftP := env.CurrentPosition()

		var loop func(frameEnv Env, v V) *Residual
		loop = func(frameEnv Env, v V) *Residual {
			staged := key.Set(frameEnv, v)
			staged = posKey.Set(staged, leftP)

			kSucc := Cont{sink: func(env2 Env, lv LazyValue) *Residual {
				val, ferr := lv()
				if ferr != nil {
					if !IsReject(ferr) {
						panic(ferr)
					}
					env2.updateFurthest(rejectMsg(ferr))
					return k.Invoke(frameEnv, now(v))
				}
				return loop(env2, val.(V))
			}}

			fired := false
			fallback := func() {
				if fired {
					return
				}
				fired = true
				frameEnv.Push(k.Invoke(frameEnv, now(v)))
			}

			return gf.run(staged, kSucc, fallback)
		}

		k0 := Cont{sink: func(env1 Env, lv LazyValue) *Residual {
			val, ferr := lv()
			if ferr != nil {
				if !IsReject(ferr) {
					panic(ferr)
				}
				env1.updateFurthest(rejectMsg(ferr))
				err()
				return nil
			}
			return loop(env1, val.(V))
		}}

		return g.run(env, k0, err)
	})
}

// ReadTbl retrieves the value lr staged under key, succeeding
// immediately with it. Used inside a gf grammar to refer back to the
// value accumulated by the left-recursive chain so far.
func ReadTbl[V any](key Key[V]) Grammar[V] {
	return wrap[V](func(env Env, k Cont, err ErrThunk) *Residual {
		v, ok := key.Get(env)
		if !ok {
			env.updateFurthest("")
			err()
			return nil
		}
		return k.Invoke(env, now(v))
	})
}

// ReadPos retrieves the position lr_pos staged under posKey and
// threads it alongside g's value as Pair{position, g's value}, the
// same shape LeftPos produces — but using the staged left position of
// the whole left-recursive expression instead of capturing the
// position fresh at invocation time.
func ReadPos[T any](posKey Key[position.Position], g Grammar[T]) Grammar[Pair] {
	return wrap[Pair](func(env Env, k Cont, err ErrThunk) *Residual {
		p, ok := posKey.Get(env)
		if !ok {
			env.updateFurthest("")
			err()
			return nil
		}
		return g.run(env, k.ExtendArg(p), err)
	})
}
