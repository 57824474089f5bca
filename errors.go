package otelquery

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

func handleErr(logger zerolog.Logger, err error) {
	if err != nil {
		logger.Warn().Err(err).Msg("could not create instrument")
		otel.Handle(err)
	}
}
