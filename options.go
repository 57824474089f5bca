package otelquery

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"go.nhat.io/otelquery/sanitizer"
)

// DriverOption allows for managing otelquery configuration using functional options.
type DriverOption interface {
	applyDriverOptions(o *driverOptions)
}

// driverOptions holds configuration of our otelquery tracing middleware.
//
// By default, the query text is neither processed nor traced. Each of them has to be enabled explicitly.
type driverOptions struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	logger         zerolog.Logger

	trace traceOptions
	query queryOptions

	// defaultAttributes will be set to each span and metrics as default.
	defaultAttributes []attribute.KeyValue
}

type traceOptions struct {
	spanNameFormatter spanNameFormatter
	errorToSpanStatus errorToSpanStatus
	queryTracer       queryTracer

	// allowRoot, if set to true, will allow otelquery to create root spans in absence of existing spans or even
	// context.
	allowRoot bool
}

type queryOptions struct {
	dialect   sanitizer.Dialect
	sanitize  bool
	summarize bool

	// recordSummary adds the query summary to the metric attributes.
	recordSummary bool
}

// WithMeterProvider sets meter provider.
func WithMeterProvider(p metric.MeterProvider) DriverOption {
	return driverOptionFunc(func(o *driverOptions) {
		o.meterProvider = p
	})
}

// WithTracerProvider sets tracer provider.
func WithTracerProvider(p trace.TracerProvider) DriverOption {
	return driverOptionFunc(func(o *driverOptions) {
		o.tracerProvider = p
	})
}

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(l zerolog.Logger) DriverOption {
	return driverOptionFunc(func(o *driverOptions) {
		o.logger = l
	})
}

// WithInstanceName sets database instance name.
func WithInstanceName(instanceName string) DriverOption {
	return WithDefaultAttributes(dbInstance.String(instanceName))
}

// WithSystem sets database system name.
// See: semconv.DBSystemKey.
func WithSystem(system attribute.KeyValue) DriverOption {
	return WithDefaultAttributes(system)
}

// WithDatabaseName sets database name.
func WithDatabaseName(name string) DriverOption {
	return WithDefaultAttributes(semconv.DBNamespaceKey.String(name))
}

// WithDefaultAttributes will be set to each span and metric as default.
func WithDefaultAttributes(attrs ...attribute.KeyValue) DriverOption {
	return driverOptionFunc(func(o *driverOptions) {
		o.defaultAttributes = append(o.defaultAttributes, attrs...)
	})
}

// WithSpanNameFormatter sets a custom span name formatter.
func WithSpanNameFormatter(f spanNameFormatter) DriverOption {
	return driverOptionFunc(func(o *driverOptions) {
		o.trace.spanNameFormatter = f
	})
}

// ConvertErrorToSpanStatus sets a custom error converter.
func ConvertErrorToSpanStatus(f errorToSpanStatus) DriverOption {
	return driverOptionFunc(func(o *driverOptions) {
		o.trace.errorToSpanStatus = f
	})
}

// DisableErrSkip suppresses driver.ErrSkip errors in spans if set to true.
func DisableErrSkip() DriverOption {
	return ConvertErrorToSpanStatus(spanStatusFromErrorIgnoreErrSkip)
}

// AllowRoot allows otelquery to create root spans in absence of existing spans or even context.
//
// Default is to not trace otelquery calls if no existing parent span is found in context or when using methods not
// taking context.
func AllowRoot() DriverOption {
	return driverOptionFunc(func(o *driverOptions) {
		o.trace.allowRoot = true
	})
}

// WithDialect sets the query language used to sanitize and summarize queries. Default is sanitizer.GenericSQL.
func WithDialect(d sanitizer.Dialect) DriverOption {
	return driverOptionFunc(func(o *driverOptions) {
		o.query.dialect = d
	})
}

// SanitizeQuery replaces the literals of every query with a placeholder. The result is available with
// SanitizedQueryFromContext.
func SanitizeQuery() DriverOption {
	return driverOptionFunc(func(o *driverOptions) {
		o.query.sanitize = true
	})
}

// SummarizeQuery derives a summary of every query, such as "SELECT users". The summary becomes the span name and is
// available with QuerySummaryFromContext.
func SummarizeQuery() DriverOption {
	return driverOptionFunc(func(o *driverOptions) {
		o.query.summarize = true
	})
}

// RecordQuerySummary summarizes every query and adds the summary to the metric attributes.
func RecordQuerySummary() DriverOption {
	return driverOptionFunc(func(o *driverOptions) {
		o.query.summarize = true
		o.query.recordSummary = true
	})
}

// TraceQuery sets a custom function that will return a list of attributes to add to the spans with a given query and
// args.
//
// For example:
//
//	otelquery.TraceQuery(func(ctx context.Context, query string, args []driver.NamedValue) []attribute.KeyValue {
//		sanitized, ok := otelquery.SanitizedQueryFromContext(ctx)
//		if !ok {
//			return nil
//		}
//
//		return []attribute.KeyValue{semconv.DBQueryTextKey.String(sanitized)}
//	})
func TraceQuery(f queryTracer) DriverOption {
	return driverOptionFunc(func(o *driverOptions) {
		o.trace.queryTracer = f
	})
}

// TraceSanitizedQuery sanitizes and summarizes every query and adds both to the spans.
func TraceSanitizedQuery() DriverOption {
	return driverOptionFunc(func(o *driverOptions) {
		o.query.sanitize = true
		o.query.summarize = true
		o.trace.queryTracer = traceSanitizedQuery
	})
}

// TraceRawQuery adds the query to the spans as is. The literals of the query are not removed.
func TraceRawQuery() DriverOption {
	return TraceQuery(traceRawQuery)
}

type driverOptionFunc func(o *driverOptions)

func (f driverOptionFunc) applyDriverOptions(o *driverOptions) {
	f(o)
}

// DriverOptions combines several options into one.
func DriverOptions(opts ...DriverOption) DriverOption {
	return driverOptionFunc(func(o *driverOptions) {
		for _, opt := range opts {
			opt.applyDriverOptions(o)
		}
	})
}
