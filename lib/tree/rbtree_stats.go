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
	RBTreeStatsName = "xrbtree"
)

var (
	rotationAttrs = map[RBDirection]metric.MeasurementOption{
		Left:  metric.WithAttributeSet(attribute.NewSet(attribute.String("xrbtree.rotation.direction", Left.String()))),
		Right: metric.WithAttributeSet(attribute.NewSet(attribute.String("xrbtree.rotation.direction", Right.String()))),
	}
	insertCaseAttrs = lo.Associate(
		[]insertCase{insertUncleRed, insertInnerChild, insertOuterChild},
		func(c insertCase) (insertCase, metric.MeasurementOption) {
			return c, metric.WithAttributeSet(attribute.NewSet(attribute.String("xrbtree.fixup.case", c.String())))
		},
	)
	removeCaseAttrs = lo.Associate(
		[]removeCase{removeSiblingRed, removeNephewsBlack, removeNearNephewRed, removeFarNephewRed},
		func(c removeCase) (removeCase, metric.MeasurementOption) {
			return c, metric.WithAttributeSet(attribute.NewSet(attribute.String("xrbtree.fixup.case", c.String())))
		},
	)
)

// A nil *rbTreeStats is a valid no-op recorder.
type rbTreeStats struct {
	nodeCount        metric.Int64UpDownCounter
	rotationCount    metric.Int64Counter
	insertFixupCount metric.Int64Counter
	removeFixupCount metric.Int64Counter
}

func (stats *rbTreeStats) RecordNodeCount(delta int64) {
	if stats == nil {
		return
	}
	stats.nodeCount.Add(context.Background(), delta)
}

func (stats *rbTreeStats) IncreaseRotationCount(dir RBDirection) {
	if stats == nil {
		return
	}
	stats.rotationCount.Add(context.Background(), 1, rotationAttrs[dir])
}

func (stats *rbTreeStats) IncreaseInsertFixupCount(c insertCase) {
	if stats == nil {
		return
	}
	stats.insertFixupCount.Add(context.Background(), 1, insertCaseAttrs[c])
}

func (stats *rbTreeStats) IncreaseRemoveFixupCount(c removeCase) {
	if stats == nil {
		return
	}
	stats.removeFixupCount.Add(context.Background(), 1, removeCaseAttrs[c])
}

func newRBTreeStats(name string) *rbTreeStats {
	meterName := RBTreeStatsName
	if len(name) > 0 {
		meterName = fmt.Sprintf("%s/%s", RBTreeStatsName, name)
	}
	meter := otel.Meter(meterName)
	return &rbTreeStats{
		nodeCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"xrbtree.node.count",
			metric.WithDescription("The number of nodes in the red-black tree."),
		)),
		rotationCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xrbtree.rotation.count",
			metric.WithDescription("The number of rotations applied by the rebalancing."),
		)),
		insertFixupCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xrbtree.insert.fixup.count",
			metric.WithDescription("The number of insert rebalancing steps, by case."),
		)),
		removeFixupCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xrbtree.remove.fixup.count",
			metric.WithDescription("The number of remove rebalancing steps, by case."),
		)),
	}
}
