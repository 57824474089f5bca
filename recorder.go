package otelquery

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// methodRecorder records metrics about a sql method.
type methodRecorder interface {
	Record(ctx context.Context, method string, labels ...attribute.KeyValue) func(err error)
}

// callRecorder counts the calls of a method and records their latency in milliseconds.
type callRecorder struct {
	latency metric.Float64Histogram
	calls   metric.Int64Counter

	// recordSummary adds the query summary found in the context to the attributes.
	recordSummary bool
	attributes    []attribute.KeyValue
}

// newCallRecorder creates the instruments. An instrument that cannot be created is replaced by a noop one.
func newCallRecorder(meter metric.Meter, logger zerolog.Logger, recordSummary bool, attrs ...attribute.KeyValue) callRecorder {
	latency, err := meter.Float64Histogram(dbSQLClientLatencyMs,
		metric.WithUnit("ms"),
		metric.WithDescription(`The distribution of latencies of various calls in milliseconds`),
	)
	if err != nil {
		handleErr(logger, err)

		latency = noop.Float64Histogram{}
	}

	calls, err := meter.Int64Counter(dbSQLClientCalls,
		metric.WithUnit("1"),
		metric.WithDescription(`The number of various calls of methods`),
	)
	if err != nil {
		handleErr(logger, err)

		calls = noop.Int64Counter{}
	}

	return callRecorder{
		latency:       latency,
		calls:         calls,
		recordSummary: recordSummary,
		attributes:    attrs,
	}
}

func (r callRecorder) Record(ctx context.Context, method string, labels ...attribute.KeyValue) func(err error) {
	start := time.Now()
	ctx = context.WithoutCancel(ctx)

	attrs := make([]attribute.KeyValue, 0, len(r.attributes)+len(labels)+4)

	attrs = append(attrs, r.attributes...)
	attrs = append(attrs, labels...)
	attrs = append(attrs, semconv.DBOperationNameKey.String(method))

	if r.recordSummary {
		if summary, ok := QuerySummaryFromContext(ctx); ok && summary != "" {
			attrs = append(attrs, dbQuerySummary.String(summary))
		}
	}

	return func(err error) {
		elapsed := float64(time.Since(start).Nanoseconds()) / 1e6

		if err == nil {
			attrs = append(attrs, dbSQLStatusOK)
		} else {
			attrs = append(attrs, dbSQLStatusERROR, dbSQLError.String(err.Error()))
		}

		set := metric.WithAttributeSet(attribute.NewSet(attrs...))

		r.calls.Add(ctx, 1, set)
		r.latency.Record(ctx, elapsed, set)
	}
}
