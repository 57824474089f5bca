// Package sanitizer removes literal values and comments from query text and derives a short summary of the query.
//
// Processing never fails: unterminated strings and comments, unbalanced parentheses and invalid UTF-8 are all handled
// without an error or a panic. The functions are safe for concurrent use.
package sanitizer

import (
	"strings"
	"sync"

	"go.nhat.io/otelquery/internal/lexer"
)

// Dialect is a query language family. The zero value is GenericSQL.
type Dialect struct {
	profile *lexer.Profile
}

var (
	// GenericSQL processes SQL-like query text.
	GenericSQL = Dialect{profile: lexer.GenericSQL}
	// PipeQuery processes pipe-based query languages, similar to KQL.
	PipeQuery = Dialect{profile: lexer.PipeQuery}
)

// Lookup finds a dialect by its name, "sql" or "pipe".
func Lookup(name string) (Dialect, bool) {
	for _, d := range []Dialect{GenericSQL, PipeQuery} {
		if strings.EqualFold(d.Name(), name) {
			return d, true
		}
	}

	return Dialect{}, false
}

// Name returns the name of the dialect.
func (d Dialect) Name() string {
	return d.lexical().Name
}

func (d Dialect) lexical() *lexer.Profile {
	if d.profile == nil {
		return lexer.GenericSQL
	}

	return d.profile
}

// Process sanitizes and summarizes a query. A nil query, or a query with nothing requested, gives an empty Result.
func (d Dialect) Process(query *string, sanitize, summarize bool) Result {
	if query == nil || (!sanitize && !summarize) {
		return Result{}
	}

	var r Result

	switch {
	case sanitize && summarize:
		sanitized, summary := d.process(*query)

		r.SanitizedText, r.QuerySummary = &sanitized, &summary

	case sanitize:
		sanitized := d.sanitize(*query)

		r.SanitizedText = &sanitized

	default:
		summary := d.summarize(*query)

		r.QuerySummary = &summary
	}

	return r
}

// sanitize replaces the literals of a query with a placeholder and removes its comments.
func (d Dialect) sanitize(query string) string {
	return sanitizeTokens(query, lexer.NewTokenizer(query, d.lexical()))
}

// summarize returns a short description of a query made of its operations and targets.
func (d Dialect) summarize(query string) string {
	return summarizeTokens(query, lexer.NewTokenizer(query, d.lexical()), d.lexical())
}

// process scans the query once and feeds the tokens to both the sanitizer and the summarizer.
func (d Dialect) process(query string) (string, string) {
	buf := getTokens()
	defer putTokens(buf)

	*buf = lexer.Collect((*buf)[:0], query, d.lexical())

	r := lexer.NewReplay(*buf)
	sanitized := sanitizeTokens(query, r)

	r.Reset()

	return sanitized, summarizeTokens(query, r, d.lexical())
}

// maxPooledTokens keeps unusually large token buffers out of the pool.
const maxPooledTokens = 4096

var tokenPool = sync.Pool{
	New: func() any {
		buf := make([]lexer.Token, 0, 64)

		return &buf
	},
}

func getTokens() *[]lexer.Token {
	return tokenPool.Get().(*[]lexer.Token) //nolint: errcheck,forcetypeassert
}

func putTokens(buf *[]lexer.Token) {
	if cap(*buf) > maxPooledTokens {
		return
	}

	*buf = (*buf)[:0]

	tokenPool.Put(buf)
}
