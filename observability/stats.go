package observability

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	once sync.Once
)

func meterName(prefix, name string) string {
	builder := &strings.Builder{}
	builder.WriteString(prefix)
	builder.WriteString("/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitRuntimeStats registers the process gauges on the global meter
// provider and starts the otel runtime instrumentation.
// Only the first call takes effect.
func InitRuntimeStats(name string) {
	once.Do(func() {
		meter := otel.Meter(
			meterName("xtree/app", name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
			"app.core.goroutines",
			metric.WithDescription(`The application goroutines' info.`),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				ob.Observe(int64(runtime.NumGoroutine()))
				return nil
			}),
		))
		lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
			"app.core.processes",
			metric.WithDescription(`The application processes' info.`),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				ob.Observe(int64(runtime.GOMAXPROCS(0)))
				return nil
			}),
		))
		lo.Must0(otelruntime.Start())
	})
}
