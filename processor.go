package otelquery

import (
	"context"

	"github.com/rs/zerolog"

	"go.nhat.io/otelquery/sanitizer"
)

// queryProcessor sanitizes and summarizes the queries before they are traced and recorded.
type queryProcessor struct {
	dialect   string
	processor func(query *string, sanitize, summarize bool) sanitizer.Result
	sanitize  bool
	summarize bool

	logger zerolog.Logger
}

func newQueryProcessor(opts driverOptions) queryProcessor {
	return queryProcessor{
		dialect:   opts.query.dialect.Name(),
		processor: opts.query.dialect.Process,
		sanitize:  opts.query.sanitize,
		summarize: opts.query.summarize,
		logger:    opts.logger,
	}
}

func (p queryProcessor) enabled() bool {
	return p.sanitize || p.summarize
}

// process never lets a failure reach the database call. On a panic, the query is traced without its processed forms.
func (p queryProcessor) process(query string) (result sanitizer.Result) {
	if !p.enabled() {
		return sanitizer.Result{}
	}

	defer func() {
		if v := recover(); v != nil {
			p.logger.Error().
				Str("dialect", p.dialect).
				Int("query_length", len(query)).
				Interface("panic", v).
				Msg("could not process query")

			result = sanitizer.Result{}
		}
	}()

	return p.processor(&query, p.sanitize, p.summarize)
}

// annotate attaches the query and its processed forms to the context. A query that was already processed, for example
// when a prepared statement is executed, is not processed again.
func (p queryProcessor) annotate(ctx context.Context, query string) context.Context {
	ctx = ContextWithQuery(ctx, query)

	if !p.enabled() {
		return ctx
	}

	if prev, ok := processedQueryFromContext(ctx); ok && prev.query == query {
		return ctx
	}

	return contextWithProcessedQuery(ctx, query, p.process(query))
}
