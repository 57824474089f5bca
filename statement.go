package otelquery

import (
	"context"
	"database/sql/driver"
)

const (
	metricMethodStmtExec  = "go.sql.stmt.exec"
	traceMethodStmtExec   = "exec"
	metricMethodStmtQuery = "go.sql.stmt.query"
	traceMethodStmtQuery  = "query"
)

var (
	_ driver.Stmt             = (*stmt)(nil)
	_ driver.StmtExecContext  = (*stmt)(nil)
	_ driver.StmtQueryContext = (*stmt)(nil)
)

type stmt struct {
	stmtQuery string
	// processed is the query processed when the statement was prepared.
	processed *processedQuery

	exec  execContextFunc
	query queryContextFunc

	close    func() error
	numInput func() int
}

func (s stmt) context(ctx context.Context) context.Context {
	if s.processed == nil {
		return ctx
	}

	return contextWithProcessedQuery(ctx, s.processed.query, s.processed.result)
}

func (s stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.exec(s.context(context.Background()), s.stmtQuery, valuesToNamedValues(args))
}

func (s stmt) Close() error {
	return s.close()
}

func (s stmt) NumInput() int {
	return s.numInput()
}

func (s stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.query(s.context(context.Background()), s.stmtQuery, valuesToNamedValues(args))
}

func (s stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	return s.exec(s.context(ctx), s.stmtQuery, args)
}

func (s stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	return s.query(s.context(ctx), s.stmtQuery, args)
}

type stmtConfig struct {
	query     string
	processed *processedQuery

	execMiddlewares  []execMiddleware
	queryMiddlewares []queryMiddleware
}

func wrapStmt(parent driver.Stmt, cfg stmtConfig) driver.Stmt {
	s := makeStmt(parent, cfg)

	if n, ok := parent.(driver.NamedValueChecker); ok {
		return struct {
			stmt
			driver.NamedValueChecker
		}{s, n}
	}

	return s
}

func makeStmt(parent driver.Stmt, cfg stmtConfig) stmt {
	return stmt{
		stmtQuery: cfg.query,
		processed: cfg.processed,
		exec:      chainMiddlewares(cfg.execMiddlewares, stmtExecContext(parent)),
		query:     chainMiddlewares(cfg.queryMiddlewares, stmtQueryContext(parent)),
		close:     parent.Close,
		numInput:  parent.NumInput,
	}
}

func stmtExecContext(parent driver.Stmt) execContextFunc {
	if execer, ok := parent.(driver.StmtExecContext); ok {
		return func(ctx context.Context, _ string, args []driver.NamedValue) (driver.Result, error) {
			return execer.ExecContext(ctx, args)
		}
	}

	return func(ctx context.Context, _ string, args []driver.NamedValue) (driver.Result, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		return parent.Exec(namedValuesToValues(args)) //nolint: staticcheck
	}
}

func stmtQueryContext(parent driver.Stmt) queryContextFunc {
	if queryer, ok := parent.(driver.StmtQueryContext); ok {
		return func(ctx context.Context, _ string, args []driver.NamedValue) (driver.Rows, error) {
			return queryer.QueryContext(ctx, args)
		}
	}

	return func(ctx context.Context, _ string, args []driver.NamedValue) (driver.Rows, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		return parent.Query(namedValuesToValues(args)) //nolint: staticcheck
	}
}

// valuesToNamedValues numbers the values from 1, the way database/sql does for positional arguments.
func valuesToNamedValues(values []driver.Value) []driver.NamedValue {
	if values == nil {
		return nil
	}

	named := make([]driver.NamedValue, len(values))

	for i, v := range values {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}

	return named
}

// namedValuesToValues drops the names and ordinals.
func namedValuesToValues(named []driver.NamedValue) []driver.Value {
	if named == nil {
		return nil
	}

	values := make([]driver.Value, len(named))

	for i, nv := range named {
		values[i] = nv.Value
	}

	return values
}
