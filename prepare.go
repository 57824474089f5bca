package otelquery

import (
	"context"
	"database/sql/driver"
)

const (
	metricMethodPrepare = "go.sql.prepare"
	traceMethodPrepare  = "prepare"
)

type (
	prepareContextFunc = callFunc[driver.Stmt]
	prepareMiddleware  = middleware[prepareContextFunc]
)

// ensurePrepareContext adapts the parent to a call without arguments.
func ensurePrepareContext(conn driver.Conn) prepareContextFunc {
	if p, ok := conn.(driver.ConnPrepareContext); ok {
		return func(ctx context.Context, query string, _ []driver.NamedValue) (driver.Stmt, error) {
			return p.PrepareContext(ctx, query)
		}
	}

	return func(_ context.Context, query string, _ []driver.NamedValue) (driver.Stmt, error) {
		return conn.Prepare(query)
	}
}

// prepareWrapResult wraps the prepared statement so its executions are instrumented with the query processed here.
func prepareWrapResult(cfg stmtConfig) prepareMiddleware {
	return func(next prepareContextFunc) prepareContextFunc {
		return func(ctx context.Context, query string, args []driver.NamedValue) (driver.Stmt, error) {
			stmt, err := next(ctx, query, args)
			if err != nil {
				return nil, err
			}

			cfg := cfg
			cfg.query = query

			if p, ok := processedQueryFromContext(ctx); ok && p.query == query {
				cfg.processed = &p
			}

			return wrapStmt(stmt, cfg), nil
		}
	}
}

type prepareConfig struct {
	traceQuery queryTracer
	processor  queryProcessor

	execMiddlewares  []execMiddleware
	queryMiddlewares []queryMiddleware
}

func makePrepareMiddlewares(r methodRecorder, t methodTracer, cfg prepareConfig) []prepareMiddleware {
	middlewares := makeCallMiddlewares[driver.Stmt](r, t, callConfig{
		metricMethod: metricMethodPrepare,
		traceMethod:  traceMethodPrepare,
		traceQuery:   cfg.traceQuery,
		processor:    cfg.processor,
	})

	return append(middlewares, prepareWrapResult(stmtConfig{
		execMiddlewares:  cfg.execMiddlewares,
		queryMiddlewares: cfg.queryMiddlewares,
	}))
}
