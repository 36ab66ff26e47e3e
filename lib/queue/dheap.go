package queue

import (
	"errors"
	"math"
	"sync"
)

var (
	ErrDHeapIsFull        = errors.New("[dheap] heap is full")
	ErrDHeapInvalidArity  = errors.New("[dheap] arity must be at least 2")
	ErrDHeapItemNotFound  = errors.New("[dheap] item not in the heap")
	ErrDHeapNegativeDelta = errors.New("[dheap] negative priority delta")
	ErrDHeapNilItem       = errors.New("[dheap] nil item")
)

var _ CountedHeap[int] = (*DHeap[int])(nil)

// DHeap is a d-ary min heap stored in a slice. The items keep their own
// index, so DecreasePriority and Remove locate them in O(1).
// The parent of i is (i-1)/d and the k-th child (1 <= k <= d) is d*i+k.
type DHeap[E comparable] struct {
	arr        []PQItem[E]
	comparator PQItemLessThenComparator[E]
	lock       *sync.Mutex
	d          int
	capacity   int
}

func (h *DHeap[E]) parent(i int) int {
	return (i - 1) / h.d
}

func (h *DHeap[E]) child(i, k int) int {
	return h.d*i + k
}

func (h *DHeap[E]) less(i, j int) bool {
	return h.comparator(h.arr[i], h.arr[j]) == iLTj
}

func (h *DHeap[E]) swap(i, j int) {
	h.arr[i], h.arr[j] = h.arr[j], h.arr[i]
	h.arr[i].SetIndex(int64(i))
	h.arr[j].SetIndex(int64(j))
}

// siftUp returns the comparisons made, one per parent visited.
func (h *DHeap[E]) siftUp(i int) (comparisons int) {
	for i > 0 {
		p := h.parent(i)
		comparisons++
		if !h.less(i, p) {
			break
		}
		h.swap(i, p)
		i = p
	}
	return comparisons
}

// siftDown returns the comparisons made, one per existing child visited.
func (h *DHeap[E]) siftDown(i int) (comparisons int) {
	n := len(h.arr)
	for {
		smallest := i
		for k := 1; k <= h.d; k++ {
			c := h.child(i, k)
			if c >= n {
				break
			}
			comparisons++
			if h.less(c, smallest) {
				smallest = c
			}
		}
		if smallest == i {
			return comparisons
		}
		h.swap(i, smallest)
		i = smallest
	}
}

// removeAt moves the last item into slot i and restores the heap order
// from there.
func (h *DHeap[E]) removeAt(i int) (item PQItem[E], comparisons int) {
	last := len(h.arr) - 1
	item = h.arr[i]
	if i != last {
		h.swap(i, last)
	}
	h.arr[last] = nil
	h.arr = h.arr[:last]
	item.SetIndex(-1)

	if i < last {
		if i > 0 {
			comparisons++
			if p := h.parent(i); h.less(i, p) {
				h.swap(i, p)
				return item, comparisons + h.siftUp(p)
			}
		}
		comparisons += h.siftDown(i)
	}
	return item, comparisons
}

func (h *DHeap[E]) contains(item PQItem[E]) (int, bool) {
	if item == nil {
		return -1, false
	}
	idx := item.Index()
	if idx < 0 || idx >= int64(len(h.arr)) || h.arr[idx] != item {
		return -1, false
	}
	return int(idx), true
}

func (h *DHeap[E]) Len() int64 {
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}
	return int64(len(h.arr))
}

func (h *DHeap[E]) Arity() int {
	return h.d
}

func (h *DHeap[E]) Build(items []PQItem[E]) (comparisons int) {
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}

	clear(h.arr)
	h.arr = h.arr[:0]
	for _, item := range items {
		if item == nil {
			continue
		}
		item.SetIndex(int64(len(h.arr)))
		h.arr = append(h.arr, item)
	}
	if len(h.arr) <= 1 {
		return 0
	}
	for i := h.parent(len(h.arr) - 1); i >= 0; i-- {
		comparisons += h.siftDown(i)
	}
	return comparisons
}

func (h *DHeap[E]) Push(item PQItem[E]) (int, error) {
	if item == nil {
		return 0, ErrDHeapNilItem
	}
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}

	if h.capacity > 0 && len(h.arr) >= h.capacity {
		return 0, ErrDHeapIsFull
	}
	item.SetIndex(int64(len(h.arr)))
	h.arr = append(h.arr, item)
	return h.siftUp(len(h.arr) - 1), nil
}

func (h *DHeap[E]) Peek() ReadOnlyPQItem[E] {
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}
	if len(h.arr) == 0 {
		return nil
	}
	return h.arr[0]
}

// Pop removes the least item. It returns nil on an empty heap.
func (h *DHeap[E]) Pop() (ReadOnlyPQItem[E], int) {
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}
	if len(h.arr) == 0 {
		return nil, 0
	}
	item, comparisons := h.removeAt(0)
	return item, comparisons
}

func (h *DHeap[E]) DecreasePriority(item PQItem[E], delta int64) (int, error) {
	if delta < 0 {
		return 0, ErrDHeapNegativeDelta
	}
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}

	i, ok := h.contains(item)
	if !ok {
		return 0, ErrDHeapItemNotFound
	}
	item.SetPriority(saturatingSub(item.Priority(), delta))
	return h.siftUp(i), nil
}

// saturatingSub returns pri - delta, clamped to math.MinInt64.
func saturatingSub(pri, delta int64) int64 {
	if pri < math.MinInt64+delta {
		return math.MinInt64
	}
	return pri - delta
}

func (h *DHeap[E]) Remove(item PQItem[E]) (int, error) {
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}

	i, ok := h.contains(item)
	if !ok {
		return 0, ErrDHeapItemNotFound
	}
	_, comparisons := h.removeAt(i)
	return comparisons, nil
}

func (h *DHeap[E]) IsHeap() bool {
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}
	for i := len(h.arr) - 1; i > 0; i-- {
		if h.less(i, h.parent(i)) {
			return false
		}
	}
	return true
}

type DHeapOption[E comparable] func(*DHeap[E])

// WithDHeapCapacity bounds the heap size. Push returns ErrDHeapIsFull
// at the bound. Zero means unbounded.
func WithDHeapCapacity[E comparable](capacity int) DHeapOption[E] {
	return func(h *DHeap[E]) {
		if capacity < 0 {
			capacity = 0
		}
		h.capacity = capacity
	}
}

func WithDHeapComparator[E comparable](fn PQItemLessThenComparator[E]) DHeapOption[E] {
	return func(h *DHeap[E]) {
		if fn == nil {
			fn = defaultPQItemComparator[E]
		}
		h.comparator = fn
	}
}

func WithDHeapEnableThreadSafe[E comparable]() DHeapOption[E] {
	return func(h *DHeap[E]) {
		h.lock = &sync.Mutex{}
	}
}

func NewDHeap[E comparable](d int, opts ...DHeapOption[E]) (*DHeap[E], error) {
	if d < 2 {
		return nil, ErrDHeapInvalidArity
	}
	h := &DHeap[E]{
		d: d,
	}
	for _, o := range opts {
		if o != nil {
			o(h)
		}
	}
	if h.comparator == nil {
		h.comparator = defaultPQItemComparator[E]
	}
	h.arr = make([]PQItem[E], 0, h.capacity)
	return h, nil
}

// DHeapSort sorts arr ascending in place by a d-ary heap. It returns the
// number of comparisons, building the heap bottom-up then popping n times.
func DHeapSort(arr []int64, d int) (int, error) {
	h, err := NewDHeap[struct{}](d, WithDHeapCapacity[struct{}](len(arr)))
	if err != nil {
		return 0, err
	}

	items := make([]PQItem[struct{}], 0, len(arr))
	for _, pri := range arr {
		items = append(items, NewPriorityQueueItem[struct{}](struct{}{}, pri))
	}
	comparisons := h.Build(items)
	for i := range arr {
		item, c := h.Pop()
		comparisons += c
		arr[i] = item.Priority()
	}
	return comparisons, nil
}
