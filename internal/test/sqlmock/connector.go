package sqlmock

import (
	"context"
	"database/sql/driver"
)

// DriverContext creates a driver.DriverContext whose connectors connect to a new sqlmock database. The mocks are
// applied on every connect.
func DriverContext(mocks ...func(m Sqlmock)) driver.DriverContext {
	return &driverContext{mocks: mocks}
}

type driverContext struct {
	mocks []func(m Sqlmock)
}

func (d *driverContext) Open(string) (driver.Conn, error) {
	return nil, driver.ErrSkip
}

func (d *driverContext) OpenConnector(string) (driver.Connector, error) {
	_, m, err := newMock()
	if err != nil {
		return nil, err
	}

	return &connector{driver: d, mock: m}, nil
}

type connector struct {
	driver *driverContext
	mock   Sqlmock
}

func (c *connector) Connect(context.Context) (driver.Conn, error) {
	for _, mock := range c.driver.mocks {
		mock(c.mock)
	}

	return c.mock.(driver.Conn), nil
}

func (c *connector) Driver() driver.Driver {
	return c.driver
}
