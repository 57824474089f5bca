package otelquery

import (
	"context"
	"database/sql/driver"
)

const (
	metricMethodExec  = "go.sql.exec"
	traceMethodExec   = "exec"
	metricMethodQuery = "go.sql.query"
	traceMethodQuery  = "query"
)

type middleware[T any] func(next T) T

// chainMiddlewares wraps last so that the middlewares run in the order they are given.
func chainMiddlewares[T any](middlewares []middleware[T], last T) T {
	h := last

	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	return h
}

// callFunc is the shape shared by exec, query and prepare. Prepare is called without arguments.
type callFunc[R any] func(ctx context.Context, query string, args []driver.NamedValue) (R, error)

type (
	execContextFunc  = callFunc[driver.Result]
	queryContextFunc = callFunc[driver.Rows]
)

type (
	execMiddleware  = middleware[execContextFunc]
	queryMiddleware = middleware[queryContextFunc]
)

func skippedCall[R any](context.Context, string, []driver.NamedValue) (R, error) {
	var zero R

	return zero, driver.ErrSkip
}

// callAnnotate processes the query once and hands the result to the next middlewares through the context.
func callAnnotate[R any](p queryProcessor) middleware[callFunc[R]] {
	return func(next callFunc[R]) callFunc[R] {
		return func(ctx context.Context, query string, args []driver.NamedValue) (R, error) {
			return next(p.annotate(ctx, query), query, args)
		}
	}
}

func callStats[R any](r methodRecorder, method string) middleware[callFunc[R]] {
	return func(next callFunc[R]) callFunc[R] {
		return func(ctx context.Context, query string, args []driver.NamedValue) (result R, err error) {
			end := r.Record(ctx, method)

			defer func() {
				end(err)
			}()

			return next(ctx, query, args)
		}
	}
}

func callTrace[R any](t methodTracer, traceQuery queryTracer, method string) middleware[callFunc[R]] {
	return func(next callFunc[R]) callFunc[R] {
		return func(ctx context.Context, query string, args []driver.NamedValue) (result R, err error) {
			ctx, end := t.Trace(ctx, method)

			defer func() {
				end(err, traceQuery(ctx, query, args)...)
			}()

			return next(ctx, query, args)
		}
	}
}

type callConfig struct {
	metricMethod string
	traceMethod  string
	traceQuery   queryTracer
	processor    queryProcessor
}

func newCallConfig(opts driverOptions, metricMethod, traceMethod string) callConfig {
	return callConfig{
		metricMethod: metricMethod,
		traceMethod:  traceMethod,
		traceQuery:   opts.trace.queryTracer,
		processor:    newQueryProcessor(opts),
	}
}

// makeCallMiddlewares annotates first so that both the recorder and the tracer see the processed query.
func makeCallMiddlewares[R any](r methodRecorder, t methodTracer, cfg callConfig) []middleware[callFunc[R]] {
	return []middleware[callFunc[R]]{
		callAnnotate[R](cfg.processor),
		callStats[R](r, cfg.metricMethod),
		callTrace[R](t, cfg.traceQuery, cfg.traceMethod),
	}
}
