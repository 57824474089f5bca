// Package trace provides extra options for tracing the queries.
package trace

import (
	"context"
	"database/sql/driver"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"go.nhat.io/otelquery"
)

// TransformAndTraceQueryWithoutArgs transforms the query using a given function and adds that to the span without
// arguments. The query is transformed as is, its literals are not removed.
//
//	trace.TransformAndTraceQueryWithoutArgs(strings.TrimSpace)
func TransformAndTraceQueryWithoutArgs(transform func(query string) string) otelquery.DriverOption {
	return otelquery.TraceQuery(func(_ context.Context, query string, _ []driver.NamedValue) []attribute.KeyValue {
		return []attribute.KeyValue{
			semconv.DBQueryTextKey.String(transform(query)),
		}
	})
}

// TransformAndTraceSanitizedQuery transforms the sanitized query using a given function and adds that to the span. The
// query is sanitized before it is transformed. When the query could not be sanitized, nothing is added.
//
//	trace.TransformAndTraceSanitizedQuery(strings.ToLower)
func TransformAndTraceSanitizedQuery(transform func(query string) string) otelquery.DriverOption {
	traceQuery := otelquery.TraceQuery(func(ctx context.Context, _ string, _ []driver.NamedValue) []attribute.KeyValue {
		sanitized, ok := otelquery.SanitizedQueryFromContext(ctx)
		if !ok {
			return nil
		}

		return []attribute.KeyValue{
			semconv.DBQueryTextKey.String(transform(sanitized)),
		}
	})

	return otelquery.DriverOptions(otelquery.SanitizeQuery(), traceQuery)
}
