// Package sqlmock registers go-sqlmock databases for the driver tests.
package sqlmock

import (
	"database/sql"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Sqlmock = sqlmock.Sqlmock

var (
	NewResult = sqlmock.NewResult
	NewRows   = sqlmock.NewRows
)

// Sqlmocker mocks and returns the dsn of a sqlmock database.
type Sqlmocker func(tb testing.TB) string

// newMock matches queries exactly, so the tests see the query the wrapped driver receives.
func newMock(mocks ...func(m Sqlmock)) (*sql.DB, Sqlmock, error) {
	db, m, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true),
	)
	if err != nil {
		return nil, nil, err
	}

	for _, mock := range mocks {
		mock(m)
	}

	return db, m, nil
}

// Register creates a new sqlmock database and returns the dsn to connect to it with the "sqlmock" driver. The
// expectations are checked when the test ends.
func Register(mocks ...func(m Sqlmock)) Sqlmocker {
	return func(tb testing.TB) string {
		tb.Helper()

		db, m, err := newMock(mocks...)
		require.NoError(tb, err)

		tb.Cleanup(func() {
			assert.NoError(tb, m.ExpectationsWereMet())

			_ = db.Close() //nolint: errcheck
		})

		return dsn(m)
	}
}

// dsn reads the unexported dsn go-sqlmock generates for each database.
func dsn(m Sqlmock) string {
	return reflect.Indirect(reflect.ValueOf(m)).FieldByName("dsn").String()
}
