package tree

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	WAVLTreeStatsName = "xwavl/tree"
)

var (
	insertOpAttrs = metric.WithAttributeSet(attribute.NewSet(attribute.String("wavl.op", "insert")))
	removeOpAttrs = metric.WithAttributeSet(attribute.NewSet(attribute.String("wavl.op", "remove")))
)

type wavlStats struct {
	nodeCount      metric.Int64UpDownCounter
	opCount        metric.Int64Counter
	rotationCount  metric.Int64Counter
	rebalanceSteps metric.Int64Histogram
}

func (stats *wavlStats) RecordInsert(steps int) {
	if stats == nil {
		return
	}
	stats.nodeCount.Add(context.Background(), 1)
	stats.opCount.Add(context.Background(), 1, insertOpAttrs)
	stats.rebalanceSteps.Record(context.Background(), int64(steps), insertOpAttrs)
}

func (stats *wavlStats) RecordRemove(steps int) {
	if stats == nil {
		return
	}
	stats.nodeCount.Add(context.Background(), -1)
	stats.opCount.Add(context.Background(), 1, removeOpAttrs)
	stats.rebalanceSteps.Record(context.Background(), int64(steps), removeOpAttrs)
}

func (stats *wavlStats) RecordRelease(count int64) {
	if stats == nil || count <= 0 {
		return
	}
	stats.nodeCount.Add(context.Background(), -count)
}

func (stats *wavlStats) IncreaseRotationCount() {
	if stats == nil {
		return
	}
	stats.rotationCount.Add(context.Background(), 1)
}

func newWAVLStats(name string) *wavlStats {
	meter := otel.Meter(fmt.Sprintf("%s/%s", WAVLTreeStatsName, name))
	return &wavlStats{
		nodeCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"wavl.node.count",
			metric.WithDescription("The number of real nodes in the WAVL tree."),
		)),
		opCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"wavl.op.count",
			metric.WithDescription("The number of successful inserts and removes."),
		)),
		rotationCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"wavl.rotation.count",
			metric.WithDescription("The number of single rotations."),
		)),
		rebalanceSteps: lo.Must[metric.Int64Histogram](meter.Int64Histogram(
			"wavl.rebalance.steps",
			metric.WithDescription("The promotions, demotions and rotations done by one insert or remove."),
			metric.WithExplicitBucketBoundaries(0, 1, 2, 3, 4, 5, 8, 13, 21, 34),
		)),
	}
}
