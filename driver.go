package otelquery

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"go.nhat.io/otelquery/sanitizer"
)

const (
	instrumentationName = "go.nhat.io/otelquery"

	// maxDriverSlots is how many times the same driver can be registered.
	maxDriverSlots = 150
)

// ErrNoDriverSlot is returned by Register when the driver has been wrapped too many times.
var ErrNoDriverSlot = errors.New("unable to register driver, all slots have been taken")

var regMu sync.Mutex

// Register initializes and registers our otelquery wrapped database driver identified by its driverName and using
// provided options. On success, it returns the generated driverName to use when calling sql.Open.
//
// It is possible to register multiple wrappers for the same database driver if needing different options for
// different connections.
func Register(driverName string, options ...DriverOption) (string, error) {
	return RegisterWithSource(driverName, "", options...)
}

// RegisterWithSource is Register for drivers that do not accept an empty data source name. The source is only used to
// look up the driver, no connection is made.
func RegisterWithSource(driverName string, source string, options ...DriverOption) (string, error) {
	parent, err := lookupDriver(driverName, source)
	if err != nil {
		return "", err
	}

	regMu.Lock()
	defer regMu.Unlock()

	name, ok := freeDriverName(driverName + "-otelquery-")
	if !ok {
		return "", ErrNoDriverSlot
	}

	sql.Register(name, Wrap(parent, options...))

	return name, nil
}

func lookupDriver(driverName, source string) (driver.Driver, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, err
	}

	d := db.Driver()

	if err := db.Close(); err != nil {
		return nil, err
	}

	return d, nil
}

// freeDriverName finds the first slot under prefix that is not registered yet.
func freeDriverName(prefix string) (string, bool) {
	taken := make(map[string]struct{})

	for _, name := range sql.Drivers() {
		taken[name] = struct{}{}
	}

	for i := 0; i < maxDriverSlots; i++ {
		name := prefix + strconv.Itoa(i)

		if _, ok := taken[name]; !ok {
			return name, true
		}
	}

	return "", false
}

// Wrap takes a SQL driver and wraps it with OpenTelemetry instrumentation.
func Wrap(d driver.Driver, opts ...DriverOption) driver.Driver {
	o := driverOptions{
		meterProvider:  otel.GetMeterProvider(),
		tracerProvider: otel.GetTracerProvider(),
		logger:         zerolog.Nop(),
	}

	o.trace.spanNameFormatter = formatSpanName
	o.trace.errorToSpanStatus = spanStatusFromError
	o.trace.queryTracer = traceNoQuery
	o.query.dialect = sanitizer.GenericSQL

	for _, option := range opts {
		option.applyDriverOptions(&o)
	}

	return wrapDriver(d, o)
}

func wrapDriver(d driver.Driver, o driverOptions) driver.Driver {
	drv := instrumentedDriver{
		parent: d,
		cfg:    newConnConfig(o),
	}

	if _, ok := d.(driver.DriverContext); ok {
		return struct {
			driver.Driver
			driver.DriverContext
		}{drv, drv}
	}

	return struct{ driver.Driver }{drv}
}

func newConnConfig(opts driverOptions) connConfig {
	meter := opts.meterProvider.Meter(instrumentationName,
		metric.WithInstrumentationVersion(Version()),
		metric.WithSchemaURL(semconv.SchemaURL),
	)
	tracer := opts.tracerProvider.Tracer(instrumentationName,
		trace.WithInstrumentationVersion(Version()),
		trace.WithSchemaURL(semconv.SchemaURL),
	)

	r := newCallRecorder(meter, opts.logger, opts.query.recordSummary, opts.defaultAttributes...)
	t := newMethodTracer(tracer, opts.trace, opts.defaultAttributes...)

	prepareCfg := prepareConfig{
		traceQuery:       opts.trace.queryTracer,
		processor:        newQueryProcessor(opts),
		execMiddlewares:  makeCallMiddlewares[driver.Result](r, t, newCallConfig(opts, metricMethodStmtExec, traceMethodStmtExec)),
		queryMiddlewares: makeCallMiddlewares[driver.Rows](r, t, newCallConfig(opts, metricMethodStmtQuery, traceMethodStmtQuery)),
	}

	return connConfig{
		execMiddlewares:    makeCallMiddlewares[driver.Result](r, t, newCallConfig(opts, metricMethodExec, traceMethodExec)),
		queryMiddlewares:   makeCallMiddlewares[driver.Rows](r, t, newCallConfig(opts, metricMethodQuery, traceMethodQuery)),
		prepareMiddlewares: makePrepareMiddlewares(r, t, prepareCfg),
	}
}

var (
	_ driver.Driver    = (*instrumentedDriver)(nil)
	_ driver.Connector = (*instrumentedConnector)(nil)
	_ io.Closer        = (*instrumentedConnector)(nil)
)

type instrumentedDriver struct {
	parent driver.Driver
	cfg    connConfig
}

func (d instrumentedDriver) Open(name string) (driver.Conn, error) {
	c, err := d.parent.Open(name)
	if err != nil {
		return nil, err
	}

	return wrapConn(c, d.cfg), nil
}

// Close does nothing. The resources are owned by the connectors.
func (d instrumentedDriver) Close() error {
	return nil
}

func (d instrumentedDriver) OpenConnector(name string) (driver.Connector, error) {
	c, err := d.parent.(driver.DriverContext).OpenConnector(name)
	if err != nil {
		return nil, err
	}

	return instrumentedConnector{parent: c, driver: d}, nil
}

type instrumentedConnector struct {
	parent driver.Connector
	driver instrumentedDriver
}

func (c instrumentedConnector) Connect(ctx context.Context) (driver.Conn, error) {
	parent, err := c.parent.Connect(ctx)
	if err != nil {
		return nil, err
	}

	return wrapConn(parent, c.driver.cfg), nil
}

func (c instrumentedConnector) Driver() driver.Driver {
	return c.driver
}

// Close closes the parent connector when it holds resources. database/sql calls it on DB.Close.
func (c instrumentedConnector) Close() error {
	if closer, ok := c.parent.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
