package bench

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/benz9527/xwavl/lib/infra"
	"github.com/benz9527/xwavl/lib/queue"
	"github.com/benz9527/xwavl/lib/tree"
)

// DecreaseDelta is subtracted from every heap item in the decrease
// priority run.
const DecreaseDelta = 100

// Context is checked once per ctxCheckMask+1 operations.
const ctxCheckMask = 1<<10 - 1

var (
	ErrExperimentSteps    = errors.New("[bench] rebalancing steps out of bound")
	ErrExperimentUnsorted = errors.New("[bench] heap sort output is not sorted")
	ErrExperimentNotHeap  = errors.New("[bench] heap order violated")
	ErrExperimentNotEmpty = errors.New("[bench] tree is not empty after removing every key")
)

type WAVLResult struct {
	Size  int
	Round int
	// Height of the tree holding all the keys.
	Height      int
	InsertSteps int
	InsertMax   int
	RemoveSteps int
	RemoveMax   int
	Elapsed     time.Duration
}

func (r WAVLResult) AvgInsertSteps() float64 {
	if r.Size == 0 {
		return 0
	}
	return float64(r.InsertSteps) / float64(r.Size)
}

func (r WAVLResult) AvgRemoveSteps() float64 {
	if r.Size == 0 {
		return 0
	}
	return float64(r.RemoveSteps) / float64(r.Size)
}

type DHeapResult struct {
	Size  int
	Arity int
	Round int
	// Comparisons of building n items bottom-up then popping them all.
	SortComparisons int
	// Comparisons of decreasing every item by DecreaseDelta in a built heap.
	DecreaseComparisons int
	// Comparisons of container/heap pushing then popping the same items.
	BaselineComparisons int64
	Elapsed             time.Duration
}

func (r DHeapResult) SortComparisonsPerItem() float64 {
	if r.Size == 0 {
		return 0
	}
	return float64(r.SortComparisons) / float64(r.Size)
}

func genKeys(n int, mode KeyMode, rng *rand.Rand) []int {
	keys := lo.Range(n)
	switch mode {
	case ReversedKeys:
		keys = lo.Reverse(keys)
	case RandomKeys:
		rng.Shuffle(len(keys), func(i, j int) {
			keys[i], keys[j] = keys[j], keys[i]
		})
	default:
	}
	return keys
}

// RunWAVLExperiment inserts n distinct keys into an empty tree, then
// removes all of them, recording the rebalancing steps per operation.
// The random mode removes the keys in a new random order.
func RunWAVLExperiment(
	ctx context.Context,
	n int,
	mode KeyMode,
	rng *rand.Rand,
	opts ...tree.WAVLTreeOpt[int, int],
) (WAVLResult, error) {
	res := WAVLResult{Size: n}
	keys := genKeys(n, mode, rng)
	opts = append([]tree.WAVLTreeOpt[int, int]{tree.WithWAVLTreeCapacity[int, int](n)}, opts...)
	t := tree.NewWAVLTree[int, int](opts...)
	defer t.Release()

	start := time.Now()
	for i, key := range keys {
		if i&ctxCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		steps, err := t.Insert(key, i)
		if err != nil {
			return res, infra.WrapErrorStack(err)
		}
		// Promotions climb at most the rank of the root.
		if steps > 2*max(t.Root().Rank(), 1)+5 {
			return res, infra.WrapErrorStackWithMessage(ErrExperimentSteps, "insert")
		}
		res.InsertSteps += steps
		res.InsertMax = max(res.InsertMax, steps)
	}
	res.Height = t.Root().Height()
	if err := tree.Validate[int, int](t); err != nil {
		return res, infra.WrapErrorStack(err)
	}

	if mode == RandomKeys {
		rng.Shuffle(len(keys), func(i, j int) {
			keys[i], keys[j] = keys[j], keys[i]
		})
	}
	for i, key := range keys {
		if i&ctxCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		steps, err := t.Remove(key)
		if err != nil {
			return res, infra.WrapErrorStack(err)
		}
		res.RemoveSteps += steps
		res.RemoveMax = max(res.RemoveMax, steps)
	}
	if !t.Empty() {
		return res, ErrExperimentNotEmpty
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

func genPriorities(n int, rng *rand.Rand) []int64 {
	return lo.Times(n, func(int) int64 {
		return rng.Int64N(int64(n)*10 + 1)
	})
}

// RunDHeapExperiment sorts n random priorities by a d-ary heap, decreases
// every priority of a built heap by DecreaseDelta, and counts the
// comparisons of both. The container/heap binary queue sorts the same
// priorities as the baseline.
func RunDHeapExperiment(ctx context.Context, n, d int, rng *rand.Rand) (DHeapResult, error) {
	res := DHeapResult{Size: n, Arity: d}
	pris := genPriorities(n, rng)

	start := time.Now()
	arr := slices.Clone(pris)
	comparisons, err := queue.DHeapSort(arr, d)
	if err != nil {
		return res, err
	}
	if !slices.IsSorted(arr) {
		return res, ErrExperimentUnsorted
	}
	res.SortComparisons = comparisons
	if err = ctx.Err(); err != nil {
		return res, err
	}

	h, err := queue.NewDHeap[int](d, queue.WithDHeapCapacity[int](n))
	if err != nil {
		return res, err
	}
	items := lo.Map(pris, func(pri int64, i int) queue.PQItem[int] {
		return queue.NewPriorityQueueItem[int](i, pri)
	})
	h.Build(items)
	for i, item := range items {
		if i&ctxCheckMask == 0 {
			if err = ctx.Err(); err != nil {
				return res, err
			}
		}
		c, err := h.DecreasePriority(item, DecreaseDelta)
		if err != nil {
			return res, infra.WrapErrorStack(err)
		}
		res.DecreaseComparisons += c
	}
	if !h.IsHeap() {
		return res, ErrExperimentNotHeap
	}

	pq := queue.NewArrayPriorityQueue[int](queue.WithArrayPriorityQueueCapacity[int](n))
	for i, pri := range pris {
		pq.Push(queue.NewPriorityQueueItem[int](i, pri))
	}
	prev := int64(-1)
	for pq.Len() > 0 {
		pri := pq.Pop().Priority()
		if pri < prev {
			return res, ErrExperimentUnsorted
		}
		prev = pri
	}
	res.BaselineComparisons = pq.Comparisons()
	res.Elapsed = time.Since(start)
	return res, nil
}
