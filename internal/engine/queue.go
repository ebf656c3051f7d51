package engine

import "container/heap"

// actionQueue is a min-heap of actions ordered by (due, priority, seq).
//
// The heap holds tombstoned actions too; the flush loop skips them when they
// reach the front instead of paying for removal on cancel.
type actionQueue []*Action

func (q actionQueue) Len() int { return len(q) }

func (q actionQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.due != b.due {
		return a.due < b.due
	}
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.seq < b.seq
}

func (q actionQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *actionQueue) Push(x any) {
	a := x.(*Action)
	a.index = len(*q)
	*q = append(*q, a)
}

func (q *actionQueue) Pop() any {
	old := *q
	n := len(old)
	a := old[n-1]
	// Nil out the slot so the popped action can be collected.
	old[n-1] = nil
	a.index = -1
	*q = old[:n-1]
	return a
}

// push inserts a.
func (q *actionQueue) push(a *Action) {
	heap.Push(q, a)
}

// peek returns the minimum action without removing it.
func (q actionQueue) peek() *Action {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}

// pop removes and returns the minimum action.
func (q *actionQueue) pop() *Action {
	return heap.Pop(q).(*Action)
}

// fix restores heap order after a queued action's key changed.
func (q *actionQueue) fix(a *Action) {
	heap.Fix(q, a.index)
}

// drain empties the queue and returns what it held, in no particular order.
func (q *actionQueue) drain() []*Action {
	out := make([]*Action, len(*q))
	copy(out, *q)
	for _, a := range out {
		a.index = -1
	}
	*q = (*q)[:0]
	return out
}
