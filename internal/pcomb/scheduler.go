package pcomb

import "container/heap"

// frontierItem is one entry in the scheduler's frontier, ordered per
// spec.md §3/§4.E: position ascending, then merge depth descending so
// that deeper cache frames resume before shallower ones at the same
// column, letting a cache finalize its merged value before any outer
// path reconsumes it.
type frontierItem struct {
	pos   int
	depth int
	seq   int // insertion order, for a stable tie-break among equals
	r     *Residual
}

type frontierHeap []*frontierItem

func (h frontierHeap) Len() int { return len(h) }
func (h frontierHeap) Less(i, j int) bool {
	if h[i].pos != h[j].pos {
		return h[i].pos < h[j].pos
	}
	if h[i].depth != h[j].depth {
		return h[i].depth > h[j].depth
	}
	return h[i].seq < h[j].seq
}
func (h frontierHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *frontierHeap) Push(x interface{}) { *h = append(*h, x.(*frontierItem)) }
func (h *frontierHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// scheduler drives the residual frontier to completion (spec.md §4.E).
type scheduler struct {
	frontier frontierHeap
	nextSeq  int
	stopped  bool
}

func newScheduler() *scheduler {
	s := &scheduler{}
	heap.Init(&s.frontier)
	return s
}

// push enqueues r, deriving its ordering keys from its environment.
func (s *scheduler) push(r *Residual) {
	if s.stopped || r == nil {
		return
	}
	item := &frontierItem{pos: r.Env.Current(), depth: r.Env.Depth(), seq: s.nextSeq, r: r}
	s.nextSeq++
	heap.Push(&s.frontier, item)
}

// stop requests that run return at once, without processing the rest
// of the current extraction group, and makes push ignore residuals
// from then on, per the driver's cancellation policy (spec.md §5).
func (s *scheduler) stop() { s.stopped = true }

// run drains the frontier: each iteration extracts every residual
// sharing the minimum (position, depth) key and, per spec.md §4.E,
// calls both its error thunk and its continuation.
func (s *scheduler) run(first *Residual) {
	s.push(first)
	for s.frontier.Len() > 0 && !s.stopped {
		minPos := s.frontier[0].pos
		minDepth := s.frontier[0].depth

		var group []*frontierItem
		for s.frontier.Len() > 0 && s.frontier[0].pos == minPos && s.frontier[0].depth == minDepth {
			group = append(group, heap.Pop(&s.frontier).(*frontierItem))
		}

		for _, item := range group {
			if s.stopped {
				return
			}
			r := item.r
			if r.Err != nil {
				r.Err()
			}
			if s.stopped {
				return
			}
			s.push(r.Cont.Invoke(r.Env, r.Value))
		}
	}
}
