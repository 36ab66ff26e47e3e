package bench

import (
	"io"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
)

type wavlRow struct {
	size      int
	rounds    int
	height    float64
	avgInsert float64
	maxInsert int
	avgRemove float64
	maxRemove int
	elapsed   time.Duration
	rankBound float64
}

func aggregateWAVL(results []WAVLResult) []wavlRow {
	groups := lo.GroupBy(results, func(r WAVLResult) int { return r.Size })
	sizes := lo.Uniq(lo.Map(results, func(r WAVLResult, _ int) int { return r.Size }))
	return lo.Map(sizes, func(size int, _ int) wavlRow {
		group := groups[size]
		rounds := float64(len(group))
		return wavlRow{
			size:   size,
			rounds: len(group),
			height: float64(lo.SumBy(group, func(r WAVLResult) int { return r.Height })) / rounds,
			avgInsert: lo.SumBy(group, func(r WAVLResult) float64 {
				return r.AvgInsertSteps()
			}) / rounds,
			maxInsert: lo.Max(lo.Map(group, func(r WAVLResult, _ int) int { return r.InsertMax })),
			avgRemove: lo.SumBy(group, func(r WAVLResult) float64 {
				return r.AvgRemoveSteps()
			}) / rounds,
			maxRemove: lo.Max(lo.Map(group, func(r WAVLResult, _ int) int { return r.RemoveMax })),
			elapsed:   lo.SumBy(group, func(r WAVLResult) time.Duration { return r.Elapsed }),
			// Built by inserts only, a WAVL tree has height at most log_phi(n).
			rankBound: math.Log(float64(size)) / math.Log(math.Phi),
		}
	})
}

// RenderWAVLReport writes one row per tree size, averaged over the rounds.
func RenderWAVLReport(w io.Writer, results []WAVLResult) {
	rows := aggregateWAVL(results)
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("WAVL rebalancing steps")
	t.AppendHeader(table.Row{
		"Size", "Rounds", "Height", "log_phi(n)",
		"Avg insert", "Max insert", "Avg remove", "Max remove", "Elapsed",
	})
	for _, row := range rows {
		t.AppendRow(table.Row{
			humanize.Comma(int64(row.size)),
			row.rounds,
			humanize.FtoaWithDigits(row.height, 1),
			humanize.FtoaWithDigits(row.rankBound, 1),
			humanize.FtoaWithDigits(row.avgInsert, 3),
			row.maxInsert,
			humanize.FtoaWithDigits(row.avgRemove, 3),
			row.maxRemove,
			row.elapsed.Round(time.Microsecond).String(),
		})
	}
	t.AppendFooter(table.Row{
		"Total", lo.SumBy(rows, func(row wavlRow) int { return row.rounds }),
		"", "", "", "", "", "",
		lo.SumBy(rows, func(row wavlRow) time.Duration { return row.elapsed }).Round(time.Microsecond).String(),
	})
	t.Render()
}

type dheapKey struct {
	size  int
	arity int
}

type dheapRow struct {
	dheapKey
	rounds   int
	sort     float64
	perItem  float64
	decrease float64
	baseline float64
	elapsed  time.Duration
}

func aggregateDHeap(results []DHeapResult) []dheapRow {
	keyOf := func(r DHeapResult) dheapKey { return dheapKey{size: r.Size, arity: r.Arity} }
	groups := lo.GroupBy(results, keyOf)
	keys := lo.Uniq(lo.Map(results, func(r DHeapResult, _ int) dheapKey { return keyOf(r) }))
	return lo.Map(keys, func(key dheapKey, _ int) dheapRow {
		group := groups[key]
		rounds := float64(len(group))
		return dheapRow{
			dheapKey: key,
			rounds:   len(group),
			sort:     float64(lo.SumBy(group, func(r DHeapResult) int { return r.SortComparisons })) / rounds,
			perItem:  lo.SumBy(group, func(r DHeapResult) float64 { return r.SortComparisonsPerItem() }) / rounds,
			decrease: float64(lo.SumBy(group, func(r DHeapResult) int { return r.DecreaseComparisons })) / rounds,
			baseline: float64(lo.SumBy(group, func(r DHeapResult) int64 { return r.BaselineComparisons })) / rounds,
			elapsed:  lo.SumBy(group, func(r DHeapResult) time.Duration { return r.Elapsed }),
		}
	})
}

// RenderDHeapReport writes one row per size and arity, averaged over the
// rounds.
func RenderDHeapReport(w io.Writer, results []DHeapResult) {
	rows := aggregateDHeap(results)
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("d-ary heap comparisons")
	t.AppendHeader(table.Row{
		"Size", "d", "Rounds", "Heap sort", "Per item",
		"Decrease priority", "container/heap", "Elapsed",
	})
	for _, row := range rows {
		t.AppendRow(table.Row{
			humanize.Comma(int64(row.size)),
			row.arity,
			row.rounds,
			humanize.Commaf(math.Round(row.sort)),
			humanize.FtoaWithDigits(row.perItem, 2),
			humanize.Commaf(math.Round(row.decrease)),
			humanize.Commaf(math.Round(row.baseline)),
			row.elapsed.Round(time.Microsecond).String(),
		})
	}
	t.Render()
}
