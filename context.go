package otelquery

import (
	"context"

	"go.nhat.io/otelquery/sanitizer"
)

type queryCtxKey struct{}

type resultCtxKey struct{}

// processedQuery is the outcome of processing a query, kept with the query it belongs to.
type processedQuery struct {
	query  string
	result sanitizer.Result
}

// QueryFromContext gets the query from context.
func QueryFromContext(ctx context.Context) string {
	query, ok := ctx.Value(queryCtxKey{}).(string)
	if !ok {
		return ""
	}

	return query
}

// ContextWithQuery attaches the query to the parent context.
func ContextWithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryCtxKey{}, query)
}

// SanitizedQueryFromContext gets the sanitized query from context. It is only available when the query was sanitized.
func SanitizedQueryFromContext(ctx context.Context) (string, bool) {
	p, ok := processedQueryFromContext(ctx)
	if !ok {
		return "", false
	}

	return p.result.Sanitized()
}

// QuerySummaryFromContext gets the query summary from context. It is only available when the query was summarized.
func QuerySummaryFromContext(ctx context.Context) (string, bool) {
	p, ok := processedQueryFromContext(ctx)
	if !ok {
		return "", false
	}

	return p.result.Summary()
}

func contextWithProcessedQuery(ctx context.Context, query string, r sanitizer.Result) context.Context {
	return context.WithValue(ctx, resultCtxKey{}, processedQuery{query: query, result: r})
}

func processedQueryFromContext(ctx context.Context) (processedQuery, bool) {
	p, ok := ctx.Value(resultCtxKey{}).(processedQuery)

	return p, ok
}
