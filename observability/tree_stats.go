package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
)

var _ tree.RBTreeObserver = (*TreeStats)(nil)

// TreeStats counts the red-black tree events as otel metrics.
// Register it by tree.WithRBTreeObserver.
type TreeStats struct {
	inserts    metric.Int64Counter
	duplicates metric.Int64Counter
	recolors   metric.Int64Counter
	rotations  metric.Int64Counter
	releases   metric.Int64Counter
	size       metric.Int64UpDownCounter
	treeAttr   metric.MeasurementOption
	leftAttr   metric.MeasurementOption
	rightAttr  metric.MeasurementOption
}

func (stats *TreeStats) Observe(event tree.RBTreeEvent, n int64) {
	ctx := context.Background()
	switch event {
	case tree.EventInsert:
		stats.inserts.Add(ctx, n, stats.treeAttr)
		stats.size.Add(ctx, n, stats.treeAttr)
	case tree.EventDuplicate:
		stats.duplicates.Add(ctx, n, stats.treeAttr)
	case tree.EventRecolor:
		stats.recolors.Add(ctx, n, stats.treeAttr)
	case tree.EventRotateLeft:
		stats.rotations.Add(ctx, n, stats.treeAttr, stats.leftAttr)
	case tree.EventRotateRight:
		stats.rotations.Add(ctx, n, stats.treeAttr, stats.rightAttr)
	case tree.EventClear:
		stats.releases.Add(ctx, n, stats.treeAttr)
		stats.size.Add(ctx, -n, stats.treeAttr)
	default:
	}
}

type treeStatsCfg struct {
	provider metric.MeterProvider
}

type TreeStatsOption func(*treeStatsCfg)

// WithTreeStatsMeterProvider replaces the otel global meter provider.
func WithTreeStatsMeterProvider(mp metric.MeterProvider) TreeStatsOption {
	return func(cfg *treeStatsCfg) {
		cfg.provider = mp
	}
}

func NewTreeStats(name string, opts ...TreeStatsOption) (*TreeStats, error) {
	cfg := &treeStatsCfg{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if cfg.provider == nil {
		cfg.provider = otel.GetMeterProvider()
	}

	meter := cfg.provider.Meter(meterName("xtree/rbtree", name))
	stats := &TreeStats{
		treeAttr:  metric.WithAttributes(attribute.String("tree", name)),
		leftAttr:  metric.WithAttributes(attribute.String("direction", tree.Left.String())),
		rightAttr: metric.WithAttributes(attribute.String("direction", tree.Right.String())),
	}

	var err, merr error
	stats.inserts, err = meter.Int64Counter(
		"xtree.rbtree.inserts",
		metric.WithDescription("New keys attached to the tree."),
	)
	merr = multierr.Append(merr, err)
	stats.duplicates, err = meter.Int64Counter(
		"xtree.rbtree.duplicates",
		metric.WithDescription("Inserts ignored because the key is present."),
	)
	merr = multierr.Append(merr, err)
	stats.recolors, err = meter.Int64Counter(
		"xtree.rbtree.recolors",
		metric.WithDescription("Red uncle recolorings while rebalancing."),
	)
	merr = multierr.Append(merr, err)
	stats.rotations, err = meter.Int64Counter(
		"xtree.rbtree.rotations",
		metric.WithDescription("Rotations while rebalancing."),
	)
	merr = multierr.Append(merr, err)
	stats.releases, err = meter.Int64Counter(
		"xtree.rbtree.releases",
		metric.WithDescription("Nodes released by clear."),
	)
	merr = multierr.Append(merr, err)
	stats.size, err = meter.Int64UpDownCounter(
		"xtree.rbtree.size",
		metric.WithDescription("Keys currently stored."),
	)
	merr = multierr.Append(merr, err)
	if merr != nil {
		return nil, infra.WrapErrorStackWithMessage(merr, "rbtree stats instruments")
	}
	return stats, nil
}
