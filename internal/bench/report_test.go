package bench

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregateWAVL(t *testing.T) {
	rows := aggregateWAVL([]WAVLResult{
		{Size: 2000, Round: 0, Height: 14, InsertSteps: 2000, InsertMax: 3, RemoveSteps: 4000, RemoveMax: 6, Elapsed: time.Millisecond},
		{Size: 2000, Round: 1, Height: 15, InsertSteps: 4000, InsertMax: 5, RemoveSteps: 2000, RemoveMax: 4, Elapsed: 2 * time.Millisecond},
		{Size: 1000, Round: 0, Height: 12, InsertSteps: 1500, InsertMax: 4, RemoveSteps: 1000, RemoveMax: 2, Elapsed: time.Millisecond},
	})
	require.Len(t, rows, 2)

	require.Equal(t, 2000, rows[0].size)
	require.Equal(t, 2, rows[0].rounds)
	require.InDelta(t, 14.5, rows[0].height, 1e-9)
	require.InDelta(t, 1.5, rows[0].avgInsert, 1e-9)
	require.Equal(t, 5, rows[0].maxInsert)
	require.InDelta(t, 1.5, rows[0].avgRemove, 1e-9)
	require.Equal(t, 6, rows[0].maxRemove)
	require.Equal(t, 3*time.Millisecond, rows[0].elapsed)
	require.InDelta(t, math.Log(2000)/math.Log(math.Phi), rows[0].rankBound, 1e-9)

	require.Equal(t, 1000, rows[1].size)
	require.InDelta(t, 1.5, rows[1].avgInsert, 1e-9)
	require.InDelta(t, 1.0, rows[1].avgRemove, 1e-9)
}

func TestAggregateDHeap(t *testing.T) {
	rows := aggregateDHeap([]DHeapResult{
		{Size: 100, Arity: 2, Round: 0, SortComparisons: 1000, DecreaseComparisons: 50, BaselineComparisons: 1100},
		{Size: 100, Arity: 2, Round: 1, SortComparisons: 1200, DecreaseComparisons: 70, BaselineComparisons: 1300},
		{Size: 100, Arity: 4, Round: 0, SortComparisons: 900, DecreaseComparisons: 30, BaselineComparisons: 1100},
	})
	require.Len(t, rows, 2)
	require.Equal(t, dheapKey{size: 100, arity: 2}, rows[0].dheapKey)
	require.InDelta(t, 1100.0, rows[0].sort, 1e-9)
	require.InDelta(t, 11.0, rows[0].perItem, 1e-9)
	require.InDelta(t, 60.0, rows[0].decrease, 1e-9)
	require.InDelta(t, 1200.0, rows[0].baseline, 1e-9)
	require.Equal(t, dheapKey{size: 100, arity: 4}, rows[1].dheapKey)
	require.Equal(t, 1, rows[1].rounds)
}

func TestRenderReports(t *testing.T) {
	out := &bytes.Buffer{}
	RenderWAVLReport(out, []WAVLResult{
		{Size: 10000, Height: 17, InsertSteps: 15000, InsertMax: 9, RemoveSteps: 12000, RemoveMax: 7},
	})
	report := out.String()
	require.Contains(t, report, "WAVL rebalancing steps")
	require.Contains(t, report, "10,000")
	require.Contains(t, report, "1.5")
	require.Contains(t, report, "1.2")
	require.Contains(t, strings.ToUpper(report), "TOTAL")

	out.Reset()
	RenderDHeapReport(out, []DHeapResult{
		{Size: 100000, Arity: 3, SortComparisons: 3456789, DecreaseComparisons: 12345, BaselineComparisons: 4000000},
	})
	report = out.String()
	require.Contains(t, report, "100,000")
	require.Contains(t, report, "3,456,789")
	require.Contains(t, report, "34.57")
	require.Contains(t, report, "4,000,000")
}
