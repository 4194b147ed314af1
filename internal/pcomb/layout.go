package pcomb

import "github.com/orizon-lang/pcomb/internal/pcomb/buffer"

// LayoutConfig controls which blank function, if any, runs at the
// four edges of a change_layout scope (spec.md §4.J): before entering
// g (with the old and/or new blank) and after leaving g (with the new
// and/or old blank).
type LayoutConfig struct {
	OldBefore bool
	NewBefore bool
	NewAfter  bool
	OldAfter  bool
}

// ChangeLayout replaces the environment's blank function with newBlank
// for the duration of g. The outer blank function is restored on the
// continuation edge rather than when ChangeLayout's own call returns,
// because g may suspend at a lexeme and resume later through the
// scheduler — the restoration has to survive that suspension
// (spec.md §4.J, testable property 5).
func ChangeLayout[T any](newBlank buffer.BlankFunc, cfg LayoutConfig, g Grammar[T]) Grammar[T] {
	return wrap[T](func(env Env, k Cont, err ErrThunk) *Residual {
		oldBlank := env.blank

		col := env.cur
		if cfg.OldBefore {
			col = env.buf.SkipBlank(col, oldBlank)
		}
		if cfg.NewBefore {
			col = env.buf.SkipBlank(col, newBlank)
		}
		innerEnv := env.withBlank(newBlank).withCurrent(col)

		k2 := Cont{sink: func(env2 Env, lv LazyValue) *Residual {
			restored := env2.withBlank(oldBlank)
			end := restored.cur
			if cfg.NewAfter {
				end = restored.buf.SkipBlank(end, newBlank)
			}
			if cfg.OldAfter {
				end = restored.buf.SkipBlank(end, oldBlank)
			}
			restored = restored.withCurrent(end)
			return k.Invoke(restored, lv)
		}}

		return g.run(innerEnv, k2, err)
	})
}
