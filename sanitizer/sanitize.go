package sanitizer

import (
	"strings"

	"go.nhat.io/otelquery/internal/lexer"
)

const placeholder = '?'

type sanitizeState uint8

const (
	stateNormal sanitizeState = iota
	// stateSawIn is entered after an IN keyword. Whitespace and comments keep it.
	stateSawIn
	// stateInList buffers the group opened right after IN until it is known whether it collapses.
	stateInList
)

// maxPendingOnStack is the number of buffered list tokens that fit without a heap allocation.
const maxPendingOnStack = 32

type sanitizer struct {
	src   string
	out   strings.Builder
	state sanitizeState

	pending []lexer.Token
	// members counts the literals and placeholders of the buffered group.
	members int
}

// sanitizeTokens replaces literals with a placeholder, drops comments and collapses literal lists after IN.
func sanitizeTokens(src string, tokens lexer.Stream) string {
	var backing [maxPendingOnStack]lexer.Token

	s := sanitizer{src: src, pending: backing[:0]}

	s.out.Grow(len(src))

	for tok, ok := tokens.Next(); ok; tok, ok = tokens.Next() {
		s.feed(tok)
	}

	// An unterminated list is kept token by token.
	s.flush()

	return s.out.String()
}

func (s *sanitizer) feed(tok lexer.Token) {
	switch s.state {
	case stateInList:
		switch {
		case tok.Flag.Has(lexer.FlagCloseParen):
			if s.members > 0 {
				s.out.WriteString("(?)")
				s.reset()

				return
			}

			s.flush()
			s.write(tok)

			return

		case tok.Kind.IsLiteral() || tok.Flag.Has(lexer.FlagPlaceholder):
			s.members++
			s.pending = append(s.pending, tok)

			return

		case tok.Kind.IsTrivia() || tok.Flag.Has(lexer.FlagComma):
			s.pending = append(s.pending, tok)

			return
		}

		// Anything else, a nested group included, disqualifies the collapse.
		s.flush()

	case stateSawIn:
		if tok.Kind.IsTrivia() {
			s.write(tok)

			return
		}

		if tok.Flag.Has(lexer.FlagOpenParen) {
			s.state = stateInList
			s.pending = append(s.pending[:0], tok)
			s.members = 0

			return
		}

		s.state = stateNormal

	case stateNormal:
	}

	if tok.Flag.Has(lexer.FlagIn) {
		s.state = stateSawIn
	}

	s.write(tok)
}

// flush writes the buffered group token by token and goes back to the normal state.
func (s *sanitizer) flush() {
	for _, tok := range s.pending {
		s.write(tok)
	}

	s.reset()
}

func (s *sanitizer) reset() {
	s.pending = s.pending[:0]
	s.members = 0
	s.state = stateNormal
}

func (s *sanitizer) write(tok lexer.Token) {
	switch {
	case tok.Kind.IsLiteral():
		s.out.WriteByte(placeholder)

	case tok.Kind.IsComment():

	default:
		s.out.WriteString(tok.Text(s.src))
	}
}
