package otelquery

import (
	"context"
	"database/sql/driver"
	"errors"
)

var (
	_ driver.Conn               = (*conn)(nil)
	_ driver.Pinger             = (*conn)(nil)
	_ driver.ExecerContext      = (*conn)(nil)
	_ driver.QueryerContext     = (*conn)(nil)
	_ driver.ConnPrepareContext = (*conn)(nil)
	_ driver.ConnBeginTx        = (*conn)(nil)
	_ driver.NamedValueChecker  = (*conn)(nil)
	_ driver.SessionResetter    = (*conn)(nil)
	_ driver.Validator          = (*conn)(nil)
)

type connConfig struct {
	execMiddlewares    []execMiddleware
	queryMiddlewares   []queryMiddleware
	prepareMiddlewares []prepareMiddleware
}

// conn instruments the queries of a connection. Everything else is passed through. When the parent connection lacks
// an optional interface, conn behaves the way database/sql does without it.
type conn struct {
	ping    func(ctx context.Context) error
	exec    execContextFunc
	query   queryContextFunc
	begin   beginFunc
	prepare prepareContextFunc

	checkValue   func(v *driver.NamedValue) error
	resetSession func(ctx context.Context) error
	isValid      func() bool

	close func() error
}

func (c conn) Ping(ctx context.Context) error {
	return c.ping(ctx)
}

// Deprecated: Drivers should implement ExecerContext instead.
func (c conn) Exec(string, []driver.Value) (driver.Result, error) {
	return nil, errors.New("otelquery: Exec is deprecated")
}

func (c conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	return c.exec(ctx, query, args)
}

// Deprecated: Drivers should implement QueryerContext instead.
func (c conn) Query(string, []driver.Value) (driver.Rows, error) {
	return nil, errors.New("otelquery: Query is deprecated")
}

func (c conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	return c.query(ctx, query, args)
}

func (c conn) Prepare(query string) (driver.Stmt, error) {
	return c.prepare(context.Background(), query, nil)
}

func (c conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	return c.prepare(ctx, query, nil)
}

func (c conn) Begin() (driver.Tx, error) {
	return c.begin(context.Background(), driver.TxOptions{})
}

func (c conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return c.begin(ctx, opts)
}

func (c conn) CheckNamedValue(v *driver.NamedValue) error {
	return c.checkValue(v)
}

func (c conn) ResetSession(ctx context.Context) error {
	return c.resetSession(ctx)
}

func (c conn) IsValid() bool {
	return c.isValid()
}

func (c conn) Close() error {
	return c.close()
}

func wrapConn(parent driver.Conn, cfg connConfig) driver.Conn {
	return makeConn(parent, cfg)
}

func makeConn(parent driver.Conn, cfg connConfig) conn {
	c := conn{
		ping:         nopPing,
		exec:         skippedCall[driver.Result],
		query:        skippedCall[driver.Rows],
		begin:        ensureBegin(parent),
		close:        parent.Close,
		checkValue:   skipCheckNamedValue,
		resetSession: nopResetSession,
		isValid:      alwaysValid,
	}

	if p, ok := parent.(driver.Pinger); ok {
		c.ping = p.Ping
	}

	if p, ok := parent.(driver.ExecerContext); ok {
		c.exec = chainMiddlewares(cfg.execMiddlewares, p.ExecContext)
	}

	if p, ok := parent.(driver.QueryerContext); ok {
		c.query = chainMiddlewares(cfg.queryMiddlewares, p.QueryContext)
	}

	if p, ok := parent.(driver.NamedValueChecker); ok {
		c.checkValue = p.CheckNamedValue
	}

	if p, ok := parent.(driver.SessionResetter); ok {
		c.resetSession = p.ResetSession
	}

	if p, ok := parent.(driver.Validator); ok {
		c.isValid = p.IsValid
	}

	c.prepare = chainMiddlewares(cfg.prepareMiddlewares, ensurePrepareContext(parent))

	return c
}

// nopPing pings nothing.
func nopPing(context.Context) error {
	return nil
}

// skipCheckNamedValue lets database/sql convert the value.
func skipCheckNamedValue(*driver.NamedValue) error {
	return driver.ErrSkip
}

func nopResetSession(context.Context) error {
	return nil
}

func alwaysValid() bool {
	return true
}

type beginFunc func(ctx context.Context, opts driver.TxOptions) (driver.Tx, error)

func ensureBegin(conn driver.Conn) beginFunc {
	if b, ok := conn.(driver.ConnBeginTx); ok {
		return b.BeginTx
	}

	return func(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
		return conn.Begin() //nolint: staticcheck
	}
}
