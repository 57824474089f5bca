package otelquery

import (
	"context"
	"database/sql/driver"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

type spanNameFormatter func(ctx context.Context, op string) string

type errorToSpanStatus func(err error) (codes.Code, string)

type queryTracer func(ctx context.Context, query string, args []driver.NamedValue) []attribute.KeyValue

// methodTracer traces a sql method.
type methodTracer interface {
	// ShouldTrace checks whether it should trace a method and the given context has a parent span.
	ShouldTrace(ctx context.Context) (bool, bool)
	// Trace starts a client span. The returned context carries the span and the returned func ends it.
	Trace(ctx context.Context, method string, labels ...attribute.KeyValue) (context.Context, func(err error, attrs ...attribute.KeyValue))
}

type spanTracer struct {
	tracer trace.Tracer

	formatSpanName spanNameFormatter
	errorToStatus  errorToSpanStatus
	allowRoot      bool
	attributes     []attribute.KeyValue
}

func newMethodTracer(tracer trace.Tracer, o traceOptions, attrs ...attribute.KeyValue) *spanTracer {
	t := &spanTracer{
		tracer:         tracer,
		formatSpanName: formatSpanName,
		errorToStatus:  spanStatusFromError,
		allowRoot:      o.allowRoot,
		attributes:     attrs,
	}

	if o.spanNameFormatter != nil {
		t.formatSpanName = o.spanNameFormatter
	}

	if o.errorToSpanStatus != nil {
		t.errorToStatus = o.errorToSpanStatus
	}

	return t
}

func (t *spanTracer) ShouldTrace(ctx context.Context) (bool, bool) {
	hasSpan := trace.SpanContextFromContext(ctx).IsValid()

	return t.allowRoot || hasSpan, hasSpan
}

func (t *spanTracer) Trace(ctx context.Context, method string, labels ...attribute.KeyValue) (context.Context, func(err error, attrs ...attribute.KeyValue)) {
	if shouldTrace, _ := t.ShouldTrace(ctx); !shouldTrace {
		return ctx, func(error, ...attribute.KeyValue) {}
	}

	attrs := make([]attribute.KeyValue, 0, len(t.attributes)+len(labels)+1)

	attrs = append(attrs, t.attributes...)
	attrs = append(attrs, labels...)
	attrs = append(attrs, semconv.DBOperationNameKey.String(method))

	ctx, span := t.tracer.Start(ctx, t.formatSpanName(ctx, method),
		trace.WithTimestamp(time.Now()),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, func(err error, attrs ...attribute.KeyValue) {
		code, desc := t.errorToStatus(err)

		span.SetAttributes(attrs...)
		span.SetStatus(code, desc)

		if code == codes.Error {
			span.RecordError(err)
		}

		span.End(trace.WithTimestamp(time.Now()))
	}
}

// formatSpanName names the span after the query summary, or after the method when there is no summary.
func formatSpanName(ctx context.Context, method string) string {
	if summary, ok := QuerySummaryFromContext(ctx); ok && summary != "" {
		return summary
	}

	return "sql:" + method
}

func spanStatusFromError(err error) (codes.Code, string) {
	if err == nil {
		return codes.Ok, ""
	}

	return codes.Error, err.Error()
}

func spanStatusFromErrorIgnoreErrSkip(err error) (codes.Code, string) {
	if errors.Is(err, driver.ErrSkip) {
		return codes.Ok, ""
	}

	return spanStatusFromError(err)
}

func traceNoQuery(context.Context, string, []driver.NamedValue) []attribute.KeyValue {
	return nil
}

func traceRawQuery(_ context.Context, query string, _ []driver.NamedValue) []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.DBQueryTextKey.String(query),
	}
}

func traceSanitizedQuery(ctx context.Context, _ string, _ []driver.NamedValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)

	if sanitized, ok := SanitizedQueryFromContext(ctx); ok {
		attrs = append(attrs, semconv.DBQueryTextKey.String(sanitized))
	}

	if summary, ok := QuerySummaryFromContext(ctx); ok && summary != "" {
		attrs = append(attrs, dbQuerySummary.String(summary))
	}

	return attrs
}
