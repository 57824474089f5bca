// Package oteltest runs tests against in-memory trace and metric pipelines and a sqlmock database, then decodes what
// was exported into Span and Metric values for assertions.
package oteltest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricsdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"go.nhat.io/otelquery/internal/test/sqlmock"
)

const serviceName = "otelquery"

// Suite is a test suite.
type Suite interface {
	Run(t *testing.T, f func(sc SuiteContext))
}

// SuiteContext represents a test suite context.
type SuiteContext interface {
	TracerProvider() trace.TracerProvider
	MeterProvider() metric.MeterProvider
	DatabaseDSN() string
}

// SuiteOption setups the test suite.
type SuiteOption func(s *suite)

type suite struct {
	traceAsserters  []func(t assert.TestingT, actual []Span) bool
	metricAsserters []func(t assert.TestingT, actual []Metric) bool

	sqlMocks []func(m sqlmock.Sqlmock)
}

type suiteContext struct {
	test testing.TB

	tracerProvider *tracesdk.TracerProvider
	meterProvider  *metricsdk.MeterProvider

	sqlMocker sqlmock.Sqlmocker
}

// TracerProvider provides access to instrumentation Tracers.
func (s *suiteContext) TracerProvider() trace.TracerProvider {
	return s.tracerProvider
}

// MeterProvider supports named Meter instances.
func (s *suiteContext) MeterProvider() metric.MeterProvider {
	return s.meterProvider
}

// DatabaseDSN returns a database dsn to the sqlmock instance.
func (s *suiteContext) DatabaseDSN() string {
	return s.sqlMocker(s.test)
}

// New creates a new test suite.
func New(opts ...SuiteOption) Suite {
	s := &suite{}

	for _, o := range opts {
		o(s)
	}

	return s
}

// Run runs the test with fresh providers. The exported spans and metrics are asserted when the test ends.
func (s *suite) Run(t *testing.T, f func(sc SuiteContext)) {
	t.Helper()

	var tracesOut, metricsOut bytes.Buffer

	sc := &suiteContext{
		test:           t,
		tracerProvider: newTracerProvider(&tracesOut),
		meterProvider:  newMeterProvider(&metricsOut),
		sqlMocker:      sqlmock.Register(s.sqlMocks...),
	}

	f(sc)

	t.Cleanup(func() {
		ctx := context.Background()

		_ = sc.tracerProvider.Shutdown(ctx) //nolint: errcheck
		_ = sc.meterProvider.Shutdown(ctx)  //nolint: errcheck

		spans, err := decodeAll[Span](tracesOut.Bytes())
		handleErr(err)

		for _, match := range s.traceAsserters {
			if !match(t, spans) {
				t.Logf("actual traces:\n%s", tracesOut.String())

				break
			}
		}

		var metrics []Metric

		batches, err := decodeAll[[]Metric](metricsOut.Bytes())
		handleErr(err)

		for _, b := range batches {
			metrics = append(metrics, b...)
		}

		for _, match := range s.metricAsserters {
			if !match(t, metrics) {
				t.Logf("actual metrics:\n%s", metricsOut.String())

				break
			}
		}
	})
}

// MetricsMatch asserts metrics by a callback.
func MetricsMatch(f func(t assert.TestingT, actual []Metric) bool) SuiteOption {
	return func(s *suite) {
		s.metricAsserters = append(s.metricAsserters, f)
	}
}

// TracesMatch asserts traces by a callback.
func TracesMatch(f func(t assert.TestingT, actual []Span) bool) SuiteOption {
	return func(s *suite) {
		s.traceAsserters = append(s.traceAsserters, f)
	}
}

// TracesEmpty asserts that no span was exported.
func TracesEmpty() SuiteOption {
	return TracesMatch(func(t assert.TestingT, actual []Span) bool {
		return assert.Empty(t, actual)
	})
}

// MockDatabase sets sql mockers.
func MockDatabase(mocks ...func(m sqlmock.Sqlmock)) SuiteOption {
	return func(s *suite) {
		s.sqlMocks = append(s.sqlMocks, mocks...)
	}
}

func newTracerProvider(out io.Writer) *tracesdk.TracerProvider {
	e, err := stdouttrace.New(
		stdouttrace.WithPrettyPrint(),
		stdouttrace.WithoutTimestamps(),
		stdouttrace.WithWriter(out),
	)
	handleErr(err)

	return tracesdk.NewTracerProvider(
		tracesdk.WithSampler(tracesdk.AlwaysSample()),
		tracesdk.WithSyncer(e),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL, semconv.ServiceNameKey.String(serviceName),
		)),
	)
}

func newMeterProvider(out io.Writer) *metricsdk.MeterProvider {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	e, err := stdoutmetric.New(stdoutmetric.WithEncoder(&metricEncoder{Encoder: enc}))
	handleErr(err)

	return metricsdk.NewMeterProvider(
		metricsdk.WithReader(&metricReader{
			exporter: e,
			Reader:   metricsdk.NewManualReader(),
		}),
		metricsdk.WithResource(resource.NewSchemaless(
			semconv.ServiceNameKey.String(serviceName),
		)),
	)
}

// decodeAll decodes a stream of concatenated JSON values.
func decodeAll[T any](data []byte) ([]T, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var result []T

	for {
		var v T

		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return result, nil
		}

		if err != nil {
			return nil, err
		}

		result = append(result, v)
	}
}

func handleErr(err error) {
	if err != nil {
		panic(err)
	}
}

func must[T any](v T, err error) T {
	handleErr(err)

	return v
}
