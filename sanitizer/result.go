package sanitizer

// Result is the outcome of processing a query. A field is nil when its output was not requested, or when there was no
// query at all.
type Result struct {
	SanitizedText *string
	QuerySummary  *string
}

// Sanitized returns the sanitized text and whether it was produced.
func (r Result) Sanitized() (string, bool) {
	if r.SanitizedText == nil {
		return "", false
	}

	return *r.SanitizedText, true
}

// Summary returns the query summary and whether it was produced.
func (r Result) Summary() (string, bool) {
	if r.QuerySummary == nil {
		return "", false
	}

	return *r.QuerySummary, true
}
