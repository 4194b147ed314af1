package pcomb

import (
	"github.com/orizon-lang/pcomb/internal/pcomb/buffer"

	pcomberrors "github.com/orizon-lang/pcomb/internal/errors"
)

// waiter is one continuation queued behind a cache frame that is still
// being resolved — either the original caller that triggered g, or a
// later arrival at the same start position (spec.md §4.H).
type waiter struct {
	k   Cont
	err ErrThunk
	env Env
}

// cacheSlot tracks one (buffer, start column) cache frame: everyone
// waiting on its result, and the result itself once resolved.
type cacheSlot struct {
	waiting       []waiter
	resolved      bool
	resolvedValue LazyValue
	resolvedEnd   int
}

// mergeEntry accumulates the lazy values g produced at one end
// position, finalized into a single combined lazy value the first time
// any waiter is resumed with it (spec.md §4.H).
type mergeEntry struct {
	lazies  []LazyValue
	tooLate bool
}

// buildCombinedMerge returns a LazyValue that, forced, forces every
// queued lazy value (discarding NoParse/GiveUp rejects) and folds the
// survivors left to right with merge. Marks me too-late on the first
// force, so a later append is a programming-error assertion rather
// than a silent correctness bug.
func buildCombinedMerge[V any](me *mergeEntry, merge func(a, b V) V) LazyValue {
	return func() (interface{}, error) {
		me.tooLate = true
		var (
			result V
			got    bool
		)
		for _, lz := range me.lazies {
			raw, err := lz()
			if err != nil {
				if IsReject(err) {
					continue
				}
				return nil, err
			}
			v := raw.(V)
			if !got {
				result, got = v, true
			} else {
				result = merge(result, v)
			}
		}
		if !got {
			return nil, NoParse{}
		}
		return result, nil
	}
}

// Cache memoizes g at each input position (spec.md §4.H). Without
// merge, every distinct result g produces at a given start position is
// delivered independently to every waiter, matching plain g's
// multiset of results (testable property 3). With merge, results
// sharing an end position are folded by merge into a single value.
func Cache[V any](g Grammar[V], merge func(a, b V) V) Grammar[V] {
	slots := buffer.NewTable[*cacheSlot]()
	merges := buffer.NewTable[*mergeEntry]()

	return wrap[V](func(env Env, k Cont, err ErrThunk) *Residual {
		buf := env.Buffer()
		startCol := env.Current()

		if slot, ok := slots.Lookup(buf, startCol); ok {
			if slot.resolved {
				return k.Invoke(env.withCurrent(slot.resolvedEnd), slot.resolvedValue)
			}
			slot.waiting = append(slot.waiting, waiter{k: k, err: err, env: env.enterCache()})
			err()
			return nil
		}

		slot := &cacheSlot{}
		slot.waiting = append(slot.waiting, waiter{k: k, err: err, env: env.enterCache()})
		slots.Insert(buf, startCol, slot)

		resume := func(lv LazyValue, endCol int) *Residual {
			slot.resolved = true
			slot.resolvedValue = lv
			slot.resolvedEnd = endCol

			var first *Residual
			for i, w := range slot.waiting {
				r := w.k.Invoke(w.env.withCurrent(endCol).resumeFromCache(), lv)
				if i == 0 {
					first = r
				} else {
					w.env.Push(r)
				}
			}
			return first
		}

		k0 := Cont{sink: func(env2 Env, lv LazyValue) *Residual {
			endCol := env2.Current()

			if merge == nil {
				return resume(lv, endCol)
			}

			if me, ok := merges.Lookup(buf, endCol); ok {
				if me.tooLate {
					panic(pcomberrors.CacheFinalizedTwice(endCol))
				}
				me.lazies = append(me.lazies, lv)
				err()
				return nil
			}

			me := &mergeEntry{lazies: []LazyValue{lv}}
			merges.Insert(buf, endCol, me)
			return resume(buildCombinedMerge[V](me, merge), endCol)
		}}

		return g.run(env.enterCache(), k0, err)
	})
}
