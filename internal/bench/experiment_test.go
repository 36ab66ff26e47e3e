package bench

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenKeys(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	require.Equal(t, []int{0, 1, 2, 3, 4}, genKeys(5, SequentialKeys, rng))
	require.Equal(t, []int{4, 3, 2, 1, 0}, genKeys(5, ReversedKeys, rng))

	keys := genKeys(100, RandomKeys, rng)
	require.Len(t, keys, 100)
	require.False(t, slices.IsSorted(keys))
	slices.Sort(keys)
	for i, key := range keys {
		require.Equal(t, i, key)
	}
}

func TestRunWAVLExperiment(t *testing.T) {
	testcases := []struct {
		name string
		n    int
		mode KeyMode
	}{
		{"random 1k", 1000, RandomKeys},
		{"sequential 1k", 1000, SequentialKeys},
		{"reversed 1k", 1000, ReversedKeys},
		{"random 4k", 4096, RandomKeys},
		{"single", 1, RandomKeys},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rng := rand.New(rand.NewPCG(7, uint64(tc.n)))
			res, err := RunWAVLExperiment(context.Background(), tc.n, tc.mode, rng)
			require.NoError(tt, err)
			require.Equal(tt, tc.n, res.Size)
			require.LessOrEqual(tt, float64(res.Height), math.Log(float64(tc.n))/math.Log(math.Phi)+1)
			// Amortized constant rebalancing.
			require.Less(tt, res.AvgInsertSteps(), 8.0)
			require.Less(tt, res.AvgRemoveSteps(), 8.0)
			require.GreaterOrEqual(tt, res.InsertSteps, res.InsertMax)
			require.GreaterOrEqual(tt, res.RemoveSteps, res.RemoveMax)
		})
	}
}

func TestRunWAVLExperiment_SameSeedSameSteps(t *testing.T) {
	r1, err := RunWAVLExperiment(context.Background(), 2000, RandomKeys, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	r2, err := RunWAVLExperiment(context.Background(), 2000, RandomKeys, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	r1.Elapsed, r2.Elapsed = 0, 0
	require.Equal(t, r1, r2)
}

func TestRunWAVLExperiment_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunWAVLExperiment(ctx, 100, RandomKeys, rand.New(rand.NewPCG(1, 1)))
	require.ErrorIs(t, err, context.Canceled)

	_, err = RunDHeapExperiment(ctx, 100, 2, rand.New(rand.NewPCG(1, 1)))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunDHeapExperiment(t *testing.T) {
	n := 2000
	prevSort := 0
	for _, d := range []int{2, 3, 4, 8} {
		res, err := RunDHeapExperiment(context.Background(), n, d, rand.New(rand.NewPCG(11, 0)))
		require.NoError(t, err)
		require.Equal(t, n, res.Size)
		require.Equal(t, d, res.Arity)
		require.Positive(t, res.SortComparisons)
		require.Positive(t, res.BaselineComparisons)
		require.InDelta(t, float64(res.SortComparisons)/float64(n), res.SortComparisonsPerItem(), 1e-9)

		// Every pop sifts down at most log_d(n)+1 levels with d comparisons each.
		levels := math.Ceil(math.Log(float64(n))/math.Log(float64(d))) + 1
		require.LessOrEqual(t, float64(res.SortComparisons), 2*float64(n)*float64(d)*levels)
		// A decrease sifts up at most one comparison per level.
		require.LessOrEqual(t, float64(res.DecreaseComparisons), float64(n)*levels)
		if d == 8 {
			// Wide heaps pay for shallowness on pop.
			require.Greater(t, res.SortComparisons, prevSort)
		}
		prevSort = res.SortComparisons
	}
}

func TestRunDHeapExperiment_InvalidArity(t *testing.T) {
	_, err := RunDHeapExperiment(context.Background(), 10, 1, rand.New(rand.NewPCG(1, 1)))
	require.Error(t, err)
}
