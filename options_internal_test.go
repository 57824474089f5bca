package otelquery

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"go.nhat.io/otelquery/sanitizer"
)

func TestDisableErrSkip(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		scenario            string
		error               error
		expectedCode        codes.Code
		expectedDescription string
	}{
		{
			scenario:            "no error",
			error:               nil,
			expectedCode:        codes.Ok,
			expectedDescription: "",
		},
		{
			scenario:            "skip",
			error:               driver.ErrSkip,
			expectedCode:        codes.Ok,
			expectedDescription: "",
		},
		{
			scenario:            "error",
			error:               errors.New("error"),
			expectedCode:        codes.Error,
			expectedDescription: "error",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.scenario, func(t *testing.T) {
			t.Parallel()

			o := driverOptions{}

			DisableErrSkip().applyDriverOptions(&o)

			code, description := o.trace.errorToSpanStatus(tc.error)

			assert.Equal(t, tc.expectedCode, code)
			assert.Equal(t, tc.expectedDescription, description)
		})
	}
}

func TestQueryOptions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		scenario              string
		options               []DriverOption
		expectedSanitize      bool
		expectedSummarize     bool
		expectedRecordSummary bool
	}{
		{
			scenario: "nothing",
		},
		{
			scenario:         "sanitize",
			options:          []DriverOption{SanitizeQuery()},
			expectedSanitize: true,
		},
		{
			scenario:          "summarize",
			options:           []DriverOption{SummarizeQuery()},
			expectedSummarize: true,
		},
		{
			scenario:              "record summary",
			options:               []DriverOption{RecordQuerySummary()},
			expectedSummarize:     true,
			expectedRecordSummary: true,
		},
		{
			scenario:          "trace sanitized query",
			options:           []DriverOption{TraceSanitizedQuery()},
			expectedSanitize:  true,
			expectedSummarize: true,
		},
		{
			scenario:          "trace raw query",
			options:           []DriverOption{TraceRawQuery()},
			expectedSanitize:  false,
			expectedSummarize: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.scenario, func(t *testing.T) {
			t.Parallel()

			o := driverOptions{}

			for _, opt := range tc.options {
				opt.applyDriverOptions(&o)
			}

			assert.Equal(t, tc.expectedSanitize, o.query.sanitize)
			assert.Equal(t, tc.expectedSummarize, o.query.summarize)
			assert.Equal(t, tc.expectedRecordSummary, o.query.recordSummary)
		})
	}
}

func TestTraceSanitizedQuery(t *testing.T) {
	t.Parallel()

	o := driverOptions{}

	TraceSanitizedQuery().applyDriverOptions(&o)

	const query = "DELETE FROM sessions WHERE expires_at < '2024-01-01'"

	q := query
	ctx := contextWithProcessedQuery(context.Background(), query, sanitizer.GenericSQL.Process(&q, true, true))

	expected := []attribute.KeyValue{
		semconv.DBQueryTextKey.String("DELETE FROM sessions WHERE expires_at < ?"),
		dbQuerySummary.String("DELETE sessions"),
	}

	assert.Equal(t, expected, o.trace.queryTracer(ctx, query, nil))
}

func TestAttributeOptions(t *testing.T) {
	t.Parallel()

	o := driverOptions{}

	for _, opt := range []DriverOption{
		WithInstanceName("primary"),
		WithSystem(semconv.DBSystemPostgreSQL),
		WithDatabaseName("billing"),
		AllowRoot(),
		WithDialect(sanitizer.PipeQuery),
		WithLogger(zerolog.Nop()),
	} {
		opt.applyDriverOptions(&o)
	}

	expected := []attribute.KeyValue{
		dbInstance.String("primary"),
		semconv.DBSystemPostgreSQL,
		semconv.DBNamespaceKey.String("billing"),
	}

	assert.Equal(t, expected, o.defaultAttributes)
	assert.True(t, o.trace.allowRoot)
	assert.Equal(t, "pipe", o.query.dialect.Name())
}
