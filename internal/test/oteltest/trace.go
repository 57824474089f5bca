package oteltest

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// NilTraceID is the trace id of a span without parent.
	NilTraceID trace.TraceID
	// NilSpanID is the span id of a span without parent.
	NilSpanID trace.SpanID

	SampleTraceID = must(trace.TraceIDFromHex("25239e8a2ad5562d561f2ecd6a9744de"))
	SampleSpanID  = must(trace.SpanIDFromHex("1d256548fd1a0dba"))
)

// ContextWithSpanContext returns a copy of ctx carrying a sampled remote span context with the trace id and span id.
func ContextWithSpanContext(ctx context.Context, traceID trace.TraceID, spanID trace.SpanID) context.Context {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})

	return trace.ContextWithSpanContext(ctx, sc)
}

// Span is the part of an exported span that the tests look at.
type Span struct {
	Name        string
	SpanContext SpanContext
	Parent      SpanContext
	Attributes  []SpanAttribute
	Status      SpanStatus
}

// Attribute returns the value of a span attribute.
func (s Span) Attribute(key string) (any, bool) {
	for _, attr := range s.Attributes {
		if attr.Key == key {
			return attr.Value.Value, true
		}
	}

	return nil, false
}

// SpanStatus is the status of an exported span. The code is exported as its name or as its number depending on the
// exporter version.
type SpanStatus struct {
	Code        any
	Description string
}

// String returns the name of the status code, such as "Ok" or "Error".
func (s SpanStatus) String() string {
	switch c := s.Code.(type) {
	case string:
		return c

	case float64:
		return codes.Code(uint32(c)).String()
	}

	return ""
}

type SpanContext struct {
	TraceID string
	SpanID  string
}

type SpanAttribute struct {
	Key   string
	Value struct {
		Type  string
		Value any
	}
}
