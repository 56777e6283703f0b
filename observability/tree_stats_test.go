package observability

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/benz9527/xtree/lib/tree"
)

func collectSums(t *testing.T, reader sdkmetric.Reader) map[string][]metricdata.DataPoint[int64] {
	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	res := make(map[string][]metricdata.DataPoint[int64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				res[m.Name] = append(res[m.Name], sum.DataPoints...)
			}
		}
	}
	return res
}

func total(points []metricdata.DataPoint[int64]) int64 {
	var sum int64
	for _, p := range points {
		sum += p.Value
	}
	return sum
}

func TestTreeStats_AscendingInsert(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() {
		require.NoError(t, mp.Shutdown(context.Background()))
	}()

	stats, err := NewTreeStats("ascending", WithTreeStatsMeterProvider(mp))
	require.NoError(t, err)

	rbtree := tree.NewRBTree[int](tree.WithRBTreeObserver[int](stats))
	for i := 1; i <= 7; i++ {
		require.True(t, rbtree.Insert(i))
	}
	require.False(t, rbtree.Insert(5))

	sums := collectSums(t, reader)
	require.Equal(t, int64(7), total(sums["xtree.rbtree.inserts"]))
	require.Equal(t, int64(1), total(sums["xtree.rbtree.duplicates"]))
	require.Equal(t, int64(2), total(sums["xtree.rbtree.recolors"]))
	require.Equal(t, int64(7), total(sums["xtree.rbtree.size"]))

	rotations := sums["xtree.rbtree.rotations"]
	require.Equal(t, int64(3), total(rotations))
	for _, p := range rotations {
		dir, ok := p.Attributes.Value(attribute.Key("direction"))
		require.True(t, ok)
		require.Equal(t, "Left", dir.AsString())
		name, ok := p.Attributes.Value(attribute.Key("tree"))
		require.True(t, ok)
		require.Equal(t, "ascending", name.AsString())
	}

	rbtree.Clear()
	sums = collectSums(t, reader)
	require.Equal(t, int64(7), total(sums["xtree.rbtree.releases"]))
	require.Equal(t, int64(0), total(sums["xtree.rbtree.size"]))
}

func TestTreeStats_DescendingInsertRotatesRight(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	stats, err := NewTreeStats("", WithTreeStatsMeterProvider(mp))
	require.NoError(t, err)

	rbtree := tree.NewRBTree[int](tree.WithRBTreeObserver[int](stats))
	for i := 7; i >= 1; i-- {
		rbtree.Insert(i)
	}
	rotations := collectSums(t, reader)["xtree.rbtree.rotations"]
	require.Equal(t, int64(3), total(rotations))
	for _, p := range rotations {
		dir, _ := p.Attributes.Value(attribute.Key("direction"))
		require.Equal(t, "Right", dir.AsString())
	}
}

func TestMeterName(t *testing.T) {
	require.Equal(t, "xtree/rbtree/default", meterName("xtree/rbtree", " "))
	require.Equal(t, "xtree/app/bench", meterName("xtree/app", "bench"))
}

func TestNewConsoleMetricsExporter(t *testing.T) {
	prev := otel.GetMeterProvider()
	defer otel.SetMeterProvider(prev)

	shutdown, err := NewConsoleMetricsExporter(
		time.Second,
		time.Second,
		stdoutmetric.WithWriter(io.Discard),
	)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	stats, err := NewTreeStats("console")
	require.NoError(t, err)
	stats.Observe(tree.EventInsert, 1)
	require.NoError(t, shutdown(context.Background()))
}

func TestNewPrometheusMetricsExporter(t *testing.T) {
	prev := otel.GetMeterProvider()
	defer otel.SetMeterProvider(prev)

	shutdown, err := NewPrometheusMetricsExporter()
	require.NoError(t, err)
	InitRuntimeStats("prometheus")
	require.NoError(t, shutdown(context.Background()))
}
