package otelquery

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestHandleError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := zerolog.New(&buf)

	assert.NotPanics(t, func() {
		handleErr(logger, nil)
	})

	assert.Empty(t, buf.String())

	assert.NotPanics(t, func() {
		handleErr(logger, assert.AnError)
	})

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"message":"could not create instrument"`)
}
