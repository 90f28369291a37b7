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
	once  sync.Once
	stats *appStats
)

type appStats struct {
	goroutines metric.Int64ObservableUpDownCounter
	heapAlloc  metric.Int64ObservableGauge
}

// InitAppStats observes the process once for the whole application,
// it has to be called after the meter provider is set.
func InitAppStats(name string) (err error) {
	once.Do(func() {
		builder := &strings.Builder{}
		builder.WriteString("xrbtree/app/")
		if len(strings.TrimSpace(name)) > 0 {
			builder.WriteString(name)
		} else {
			builder.WriteString("default")
		}
		meter := otel.Meter(
			builder.String(),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		stats = &appStats{
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.NumGoroutine()))
					return nil
				}),
			)),
			heapAlloc: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
				"app.core.heap.alloc",
				metric.WithDescription(`The bytes of allocated heap objects, the tree nodes included.`),
				metric.WithUnit("By"),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ms := runtime.MemStats{}
					runtime.ReadMemStats(&ms)
					ob.Observe(int64(ms.HeapAlloc))
					return nil
				}),
			)),
		}
		err = otelruntime.Start()
	})
	return err
}
