package otelquery

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"go.nhat.io/otelquery/internal/test/oteltest"
	"go.nhat.io/otelquery/sanitizer"
)

func TestSkippedCall(t *testing.T) {
	t.Parallel()

	result, err := skippedCall[driver.Result](context.Background(), "", nil)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, driver.ErrSkip)

	rows, err := skippedCall[driver.Rows](context.Background(), "", nil)

	assert.Nil(t, rows)
	assert.ErrorIs(t, err, driver.ErrSkip)
}

func TestChainMiddlewares(t *testing.T) {
	t.Parallel()

	stack := make([]string, 0)

	push := func(s string) queryContextFunc {
		return func(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
			stack = append(stack, s)

			return nil, nil
		}
	}

	pushMiddleware := func(s string) queryMiddleware {
		return func(next queryContextFunc) queryContextFunc {
			return func(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
				stack = append(stack, s)

				return next(ctx, query, args)
			}
		}
	}

	query := chainMiddlewares([]queryMiddleware{pushMiddleware("outer"), pushMiddleware("inner")}, push("end"))
	result, err := query(context.Background(), "", nil)

	assert.Nil(t, result)
	assert.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "end"}, stack)
}

func TestExecMiddlewares_NoParentSpan(t *testing.T) {
	t.Parallel()

	oteltest.New(
		oteltest.TracesEmpty(),
		oteltest.MetricsMatch(func(t assert.TestingT, actual []oteltest.Metric) bool {
			calls := oteltest.FindMetrics(actual, dbSQLClientCalls)

			if !assert.Len(t, calls, 1) {
				return false
			}

			method, _ := calls[0].Attribute("db.operation.name")

			return assert.Equal(t, metricMethodExec, method)
		}),
	).
		Run(t, func(s oteltest.SuiteContext) {
			r := newTestRecorder(t, s, false)
			tr := newMethodTracer(s.TracerProvider().Tracer("call_test"), traceOptions{})

			middlewares := makeCallMiddlewares[driver.Result](r, tr, callConfig{
				metricMethod: metricMethodExec,
				traceMethod:  traceMethodExec,
				traceQuery:   traceRawQuery,
				processor:    queryProcessor{logger: zerolog.Nop()},
			})

			exec := chainMiddlewares(middlewares, func(ctx context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
				assert.Equal(t, query, QueryFromContext(ctx))

				return driver.RowsAffected(1), nil
			})

			result, err := exec(context.Background(), "DELETE FROM t", nil)

			assert.NoError(t, err)
			assert.Equal(t, driver.RowsAffected(1), result)
		})
}

func TestExecMiddlewares_WithParentSpan(t *testing.T) {
	t.Parallel()

	oteltest.New(
		oteltest.TracesMatch(func(t assert.TestingT, actual []oteltest.Span) bool {
			if !assert.Len(t, actual, 1) {
				return false
			}

			text, _ := actual[0].Attribute("db.query.text")

			return assert.Equal(t, "sql:exec", actual[0].Name) &&
				assert.Equal(t, "DELETE FROM t WHERE id = 1", text) &&
				assert.Equal(t, oteltest.SampleTraceID.String(), actual[0].Parent.TraceID) &&
				assert.Equal(t, oteltest.SampleSpanID.String(), actual[0].Parent.SpanID)
		}),
	).
		Run(t, func(s oteltest.SuiteContext) {
			r := newTestRecorder(t, s, false)
			tr := newMethodTracer(s.TracerProvider().Tracer("call_test"), traceOptions{})

			middlewares := makeCallMiddlewares[driver.Result](r, tr, callConfig{
				metricMethod: metricMethodExec,
				traceMethod:  traceMethodExec,
				traceQuery:   traceRawQuery,
				processor:    queryProcessor{logger: zerolog.Nop()},
			})

			exec := chainMiddlewares(middlewares, func(context.Context, string, []driver.NamedValue) (driver.Result, error) {
				return driver.ResultNoRows, nil
			})

			ctx := oteltest.ContextWithSpanContext(context.Background(), oteltest.SampleTraceID, oteltest.SampleSpanID)

			_, err := exec(ctx, "DELETE FROM t WHERE id = 1", nil)

			assert.NoError(t, err)
		})
}

func TestQueryMiddlewares(t *testing.T) {
	t.Parallel()

	const query = "SELECT name FROM users WHERE id = 42"

	testCases := []struct {
		scenario       string
		query          queryContextFunc
		expectedStatus string
	}{
		{
			scenario: "error",
			query: func(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
				return nil, errors.New("query error")
			},
			expectedStatus: "Error",
		},
		{
			scenario: "no error",
			query: func(_ context.Context, q string, _ []driver.NamedValue) (driver.Rows, error) {
				// The driver receives the query as is.
				if q != query {
					return nil, errors.New("unexpected query")
				}

				return nil, nil
			},
			expectedStatus: "Ok",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.scenario, func(t *testing.T) {
			t.Parallel()

			oteltest.New(
				oteltest.TracesMatch(func(t assert.TestingT, actual []oteltest.Span) bool {
					if !assert.Len(t, actual, 1) {
						return false
					}

					text, _ := actual[0].Attribute("db.query.text")

					return assert.Equal(t, "SELECT users", actual[0].Name) &&
						assert.Equal(t, "SELECT name FROM users WHERE id = ?", text) &&
						assert.Equal(t, tc.expectedStatus, actual[0].Status.String())
				}),
				oteltest.MetricsMatch(func(t assert.TestingT, actual []oteltest.Metric) bool {
					return assert.Len(t, oteltest.FindMetrics(actual, dbSQLClientCalls), 1)
				}),
			).
				Run(t, func(s oteltest.SuiteContext) {
					r := newTestRecorder(t, s, false)
					tr := newMethodTracer(s.TracerProvider().Tracer("call_test"), traceOptions{allowRoot: true})

					middlewares := makeCallMiddlewares[driver.Rows](r, tr, callConfig{
						metricMethod: metricMethodQuery,
						traceMethod:  traceMethodQuery,
						traceQuery:   traceSanitizedQuery,
						processor: queryProcessor{
							dialect:   "sql",
							processor: sanitizer.GenericSQL.Process,
							sanitize:  true,
							summarize: true,
							logger:    zerolog.Nop(),
						},
					})

					_, _ = chainMiddlewares(middlewares, tc.query)(context.Background(), query, nil) //nolint: errcheck
				})
		})
	}
}
