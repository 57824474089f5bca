package sanitizer

import (
	"strings"
	"unicode/utf8"

	"go.nhat.io/otelquery/internal/lexer"
)

const (
	// MaxSummaryLength is the maximum length of a query summary, in bytes.
	MaxSummaryLength = 255
	// maxSummaryParts is the maximum number of operations and targets in a summary.
	maxSummaryParts = 16
)

type summarizer struct {
	src     string
	profile *lexer.Profile
	pipe    bool

	out   strings.Builder
	parts int

	// statementStart is true until the first significant token of a statement.
	statementStart bool
	// afterPipe is true right after a pipe.
	afterPipe bool
	// afterOperation is true right after an operation, where an object type may follow.
	afterOperation bool
	// expectTarget is true when the next identifier is the target of the last target keyword.
	expectTarget bool
	// list is true inside a FROM or union list, where a comma introduces another target.
	list bool
	// lastTarget is true when the previous significant token was a target.
	lastTarget bool
	// joining is true when a dot follows a target, so the next name extends it.
	joining bool
}

// summarizeTokens collects operations and their targets into a short, low-cardinality description of the query.
func summarizeTokens(src string, tokens lexer.Stream, p *lexer.Profile) string {
	s := summarizer{
		src:            src,
		profile:        p,
		pipe:           p.HasPipeOperators(),
		statementStart: true,
	}

	for tok, ok := tokens.Next(); ok; tok, ok = tokens.Next() {
		if tok.Kind.IsTrivia() {
			continue
		}

		s.feed(tok)
	}

	return truncate(s.out.String(), MaxSummaryLength)
}

func (s *summarizer) feed(tok lexer.Token) {
	statementStart, afterPipe, afterOperation := s.statementStart, s.afterPipe, s.afterOperation
	joining := s.joining

	s.statementStart, s.afterPipe, s.afterOperation, s.joining = false, false, false, false

	switch tok.Kind {
	case lexer.Keyword:
		if joining {
			s.extend(tok)

			return
		}

		s.lastTarget = false

		s.keyword(tok.Text(s.src), afterPipe || statementStart, afterOperation)

	case lexer.Identifier:
		if tok.Flag.Has(lexer.FlagPlaceholder) {
			s.lastTarget = false

			return
		}

		if joining {
			s.extend(tok)

			return
		}

		s.lastTarget = false

		if s.expectTarget || (s.pipe && statementStart) {
			s.expectTarget = false
			s.lastTarget = s.add(tok.Text(s.src))
		}

	case lexer.Punctuation:
		s.punctuation(tok)

	case lexer.StringLiteral, lexer.NumericLiteral, lexer.Other,
		lexer.Whitespace, lexer.LineComment, lexer.BlockComment:
		s.lastTarget = false
	}
}

// keyword handles a keyword. leading is set after a pipe or at the start of a statement, where pipe operators count.
func (s *summarizer) keyword(word string, leading, afterOperation bool) {
	p := s.profile

	switch {
	case !s.pipe && p.IsOperation(word), s.pipe && leading && p.IsPipeOperator(word):
		s.addUpper(word)
		s.afterOperation = true
		s.expectTarget = p.IsTarget(word)
		s.list = s.expectTarget && isList(word)

	case afterOperation && p.IsObjectType(word):
		s.addUpper(word)
		s.expectTarget = p.IsTarget(word)

	case p.IsTarget(word):
		s.expectTarget = true
		s.list = isList(word)

	case p.IsModifier(word):

	case strings.EqualFold(word, "AS"):
		s.expectTarget = false

	default:
		s.expectTarget = false
		s.list = false
	}
}

func (s *summarizer) punctuation(tok lexer.Token) {
	lastTarget := s.lastTarget
	s.lastTarget = false

	switch {
	case tok.Flag.Has(lexer.FlagDot):
		if lastTarget {
			s.joining = true
			s.lastTarget = true
		}

	case tok.Flag.Has(lexer.FlagComma):
		if s.list {
			s.expectTarget = true
		}

	case tok.Flag.Has(lexer.FlagTerminator):
		s.reset()

	case tok.Flag.Has(lexer.FlagPipe):
		s.expectTarget = false
		s.list = false
		s.afterPipe = true

	case !s.pipe:
		s.expectTarget = false
		s.list = false
	}
}

func (s *summarizer) reset() {
	s.statementStart = true
	s.expectTarget = false
	s.list = false
}

func (s *summarizer) add(piece string) bool {
	if s.parts >= maxSummaryParts {
		return false
	}

	if s.parts > 0 {
		s.out.WriteByte(' ')
	}

	s.out.WriteString(piece)
	s.parts++

	return true
}

func (s *summarizer) addUpper(word string) {
	if s.parts >= maxSummaryParts {
		return
	}

	if s.parts > 0 {
		s.out.WriteByte(' ')
	}

	for i := 0; i < len(word); i++ {
		c := word[i]

		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}

		s.out.WriteByte(c)
	}

	s.parts++
}

// extend appends a qualified name part, such as the table in schema.table, to the last target.
func (s *summarizer) extend(tok lexer.Token) {
	s.out.WriteByte('.')
	s.out.WriteString(tok.Text(s.src))

	s.lastTarget = true
}

// isList checks whether a target keyword takes a comma separated list of targets.
func isList(word string) bool {
	return strings.EqualFold(word, "FROM") || strings.EqualFold(word, "UNION")
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	i := n

	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}

	return strings.TrimRight(s[:i], " ")
}
