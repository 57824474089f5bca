package otelquery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.nhat.io/otelquery"
)

func TestVersion(t *testing.T) {
	t.Parallel()

	assert.Regexp(t, `^\d+\.\d+\.\d+$`, otelquery.Version())
}
