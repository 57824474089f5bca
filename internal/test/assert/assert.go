// Package assert provides asserters for text the tests capture, such as command output.
package assert

import (
	"github.com/stretchr/testify/assert"
	"github.com/swaggest/assertjson"
)

// Func asserts actual input.
type Func func(t assert.TestingT, actual string, msgAndArgs ...any) bool

// EqualJSON creates a new Func to check whether the two JSON values are equal. The expectation may use the
// "<ignore-diff>" placeholder of assertjson.
func EqualJSON(expect string) Func {
	return func(t assert.TestingT, actual string, msgAndArgs ...any) bool {
		return assertjson.Equal(t, []byte(expect), []byte(actual), msgAndArgs...)
	}
}
