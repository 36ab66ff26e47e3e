// Reference:
// https://github.com/nsqio/nsq/blob/master/internal/pqueue/pqueue.go

package queue

// PriorityQueue is a min queue, the item with the least priority (by the
// comparator) is popped first.
type PriorityQueue[E comparable] interface {
	Len() int64
	Push(item PQItem[E])
	Pop() ReadOnlyPQItem[E]
	Peek() ReadOnlyPQItem[E]
	// Comparisons returns the number of item comparisons performed so far.
	Comparisons() int64
}

type ReadOnlyPQItem[E comparable] interface {
	Index() int64
	Value() E
	Priority() int64
}

type CmpEnum int64

const (
	iLTj CmpEnum = -1 + iota
	iEQj
	iGTj
)

// PQItemLessThenComparator
// Priority queue item comparator
// if return 1, i > j
// if return 0, i == j
// if return -1, i < j
type PQItemLessThenComparator[E comparable] func(i, j ReadOnlyPQItem[E]) CmpEnum

type PQItem[E comparable] interface {
	ReadOnlyPQItem[E]
	SetIndex(idx int64)
	SetPriority(pri int64)
}

// CountedHeap is an indexed min heap whose mutating operations report
// the number of priority comparisons they performed.
type CountedHeap[E comparable] interface {
	Len() int64
	// Build replaces the contents by items and heapifies them bottom-up.
	Build(items []PQItem[E]) int
	Push(item PQItem[E]) (int, error)
	Peek() ReadOnlyPQItem[E]
	Pop() (ReadOnlyPQItem[E], int)
	// DecreasePriority lowers the priority of an item of this heap by delta.
	// The priority stops at math.MinInt64.
	DecreasePriority(item PQItem[E], delta int64) (int, error)
	Remove(item PQItem[E]) (int, error)
	IsHeap() bool
}
