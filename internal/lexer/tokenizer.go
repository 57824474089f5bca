package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Stream is a sequence of tokens read one at a time.
type Stream interface {
	// Next returns the next token, or false when the input is exhausted.
	Next() (Token, bool)
}

var _ Stream = (*Tokenizer)(nil)

// Tokenizer scans query text from left to right, one token per call to Next. It cannot be restarted.
type Tokenizer struct {
	src     string
	pos     int
	profile *Profile

	// operand is true when the last significant token may be followed by a binary operator, so a '-' right after it
	// is an operator and not the sign of a number.
	operand bool
}

// NewTokenizer creates a new Tokenizer for the given text. A nil profile means GenericSQL.
func NewTokenizer(src string, p *Profile) *Tokenizer {
	if p == nil {
		p = GenericSQL
	}

	return &Tokenizer{
		src:     src,
		profile: p,
	}
}

// Next returns the next token. Every call either advances by at least one byte or reports the end of the input.
func (t *Tokenizer) Next() (Token, bool) {
	if t.pos >= len(t.src) {
		return Token{}, false
	}

	tok := t.scan()

	if tok.Start != t.pos || tok.End <= tok.Start || tok.End > len(t.src) {
		tok = Token{Kind: Other, Start: t.pos, End: t.pos + 1}
	}

	t.pos = tok.End

	if !tok.Kind.IsTrivia() {
		t.operand = t.isOperand(tok)
	}

	return tok, true
}

func (t *Tokenizer) scan() Token {
	p := t.profile
	start := t.pos
	rest := t.src[start:]
	c := rest[0]

	switch {
	case p.LineComment != "" && strings.HasPrefix(rest, p.LineComment):
		end := strings.IndexByte(rest, '\n')
		if end < 0 {
			end = len(rest)
		}

		return t.token(LineComment, start+end, 0)

	case p.BlockCommentStart != "" && strings.HasPrefix(rest, p.BlockCommentStart):
		body := rest[len(p.BlockCommentStart):]

		end := strings.Index(body, p.BlockCommentEnd)
		if end < 0 || p.BlockCommentEnd == "" {
			return t.token(BlockComment, len(t.src), 0)
		}

		return t.token(BlockComment, start+len(p.BlockCommentStart)+end+len(p.BlockCommentEnd), 0)

	case strings.IndexByte(p.Quotes, c) >= 0:
		return t.token(StringLiteral, t.scanString(start+1, c, p.Escape), 0)

	case p.VerbatimPrefix != 0 && c == p.VerbatimPrefix && len(rest) > 1 && strings.IndexByte(p.Quotes, rest[1]) >= 0:
		return t.token(StringLiteral, t.scanString(start+2, rest[1], EscapeDoubled), 0)
	}

	if end, ok := t.scanNumber(start); ok {
		return t.token(NumericLiteral, end, 0)
	}

	if q, ok := p.identifierQuote(c); ok && t.quotes(q, start) {
		if end, ok := t.scanQuoted(start+1, q.Close); ok {
			return t.token(Identifier, end, 0)
		}

		// Unterminated: only the name right after the quote belongs to the identifier.
		return t.token(Identifier, t.scanName(start+1), 0)
	}

	if p.PlaceholderPrefix != 0 && c == p.PlaceholderPrefix {
		if end := t.scanDigits(start + 1); end > start+1 {
			return t.token(Identifier, end, FlagPlaceholder)
		}

		if end, ok := t.scanDollarQuoted(start); ok {
			return t.token(StringLiteral, end, 0)
		}
	}

	if end := t.scanWord(start); end > start {
		word := t.src[start:end]

		if !p.IsKeyword(word) {
			return t.token(Identifier, end, 0)
		}

		var f Flag

		if isIn(word) {
			f = FlagIn
		}

		return t.token(Keyword, end, f)
	}

	if end := t.scanSpace(start); end > start {
		return t.token(Whitespace, end, 0)
	}

	return t.scanSymbol(start, c)
}

func (t *Tokenizer) token(k Kind, end int, f Flag) Token {
	return Token{Kind: k, Flag: f, Start: t.pos, End: end}
}

// scanString finds the end of a string literal whose body starts at from. An unterminated literal ends with the input.
func (t *Tokenizer) scanString(from int, quote byte, esc Escape) int {
	src := t.src

	for i := from; i < len(src); i++ {
		switch src[i] {
		case '\\':
			if esc == EscapeBackslash {
				i++
			}

		case quote:
			if i+1 < len(src) && src[i+1] == quote {
				i++

				continue
			}

			return i + 1
		}
	}

	return len(src)
}

// quotes tells whether the quote character at start opens a quoted identifier.
func (t *Tokenizer) quotes(q QuotePair, start int) bool {
	if !q.Bracket {
		return true
	}

	if t.operand || start+1 >= len(t.src) {
		return false
	}

	c := t.src[start+1]

	return isLetter(c) || c == '_' || c >= utf8.RuneSelf
}

// scanQuoted finds the end of a quoted identifier. A doubled closing character stays inside the identifier.
func (t *Tokenizer) scanQuoted(from int, closing byte) (int, bool) {
	src := t.src

	for i := from; i < len(src); i++ {
		if src[i] != closing {
			continue
		}

		if i+1 < len(src) && src[i+1] == closing {
			i++

			continue
		}

		return i + 1, true
	}

	return from, false
}

// scanName scans a name that does not start with a digit.
func (t *Tokenizer) scanName(i int) int {
	if i < len(t.src) && isDigit(t.src[i]) {
		return i
	}

	return t.scanWord(i)
}

// scanDollarQuoted scans a $tag$...$tag$ string. The tag may be empty.
func (t *Tokenizer) scanDollarQuoted(start int) (int, bool) {
	src := t.src
	i := start + 1

	for i < len(src) && isWordByte(src[i]) && !isDigit(src[i]) {
		i++
	}

	if i >= len(src) || src[i] != '$' {
		return start, false
	}

	tag := src[start : i+1]

	end := strings.Index(src[i+1:], tag)
	if end < 0 {
		return len(src), true
	}

	return i + 1 + end + len(tag), true
}

// scanNumber scans a numeric literal: an optional sign, digits with an optional fraction and exponent, or a
// hexadecimal number.
func (t *Tokenizer) scanNumber(start int) (int, bool) {
	src, p := t.src, t.profile
	i := start

	if src[i] == '-' {
		if t.operand {
			return start, false
		}

		i++
	}

	if i >= len(src) {
		return start, false
	}

	if p.Hex && i+2 < len(src) && src[i] == '0' && src[i+1]|0x20 == 'x' && isHex(src[i+2]) {
		j := i + 2

		for j < len(src) && isHex(src[j]) {
			j++
		}

		return t.scanSuffix(j), true
	}

	j := t.scanDigits(i)

	if j == i && t.operand {
		// ".5" right after an operand is a member access, not a number.
		return start, false
	}

	if j+1 < len(src) && src[j] == '.' && isDigit(src[j+1]) {
		j = t.scanDigits(j + 1)
	}

	if j == i {
		return start, false
	}

	if p.Exponent && j < len(src) && src[j]|0x20 == 'e' {
		k := j + 1

		if k < len(src) && (src[k] == '+' || src[k] == '-') {
			k++
		}

		if k < len(src) && isDigit(src[k]) {
			j = t.scanDigits(k)
		}
	}

	return t.scanSuffix(j), true
}

func (t *Tokenizer) scanSuffix(i int) int {
	if !t.profile.NumericSuffix {
		return i
	}

	for i < len(t.src) && isLetter(t.src[i]) {
		i++
	}

	return i
}

func (t *Tokenizer) scanDigits(i int) int {
	for i < len(t.src) && isDigit(t.src[i]) {
		i++
	}

	return i
}

// scanWord scans a run of letters, digits and underscores.
func (t *Tokenizer) scanWord(i int) int {
	src := t.src

	for i < len(src) {
		c := src[i]

		if c < utf8.RuneSelf {
			if !isWordByte(c) {
				break
			}

			i++

			continue
		}

		r, size := utf8.DecodeRuneInString(src[i:])
		if r == utf8.RuneError || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			break
		}

		i += size
	}

	return i
}

func (t *Tokenizer) scanSpace(i int) int {
	src := t.src

	for i < len(src) {
		c := src[i]

		if c < utf8.RuneSelf {
			if !isSpace(c) {
				break
			}

			i++

			continue
		}

		r, size := utf8.DecodeRuneInString(src[i:])
		if r == utf8.RuneError || !unicode.IsSpace(r) {
			break
		}

		i += size
	}

	return i
}

// scanSymbol emits a single character. A valid multi-byte rune is kept whole, an invalid byte is emitted alone.
func (t *Tokenizer) scanSymbol(start int, c byte) Token {
	if c >= utf8.RuneSelf {
		_, size := utf8.DecodeRuneInString(t.src[start:])

		return t.token(Other, start+size, 0)
	}

	var f Flag

	switch c {
	case '(':
		f = FlagOpenParen
	case ')':
		f = FlagCloseParen
	case ',':
		f = FlagComma
	case '?':
		f = FlagPlaceholder
	case ';':
		f = FlagTerminator
	case '.':
		f = FlagDot
	case '|':
		if t.profile.HasPipeOperators() {
			f = FlagPipe
		}
	}

	if f == 0 && !isPunct(c) {
		return t.token(Other, start+1, 0)
	}

	return t.token(Punctuation, start+1, f)
}

func (p *Profile) identifierQuote(c byte) (QuotePair, bool) {
	for _, q := range p.IdentifierQuotes {
		if q.Open == c {
			return q, true
		}
	}

	return QuotePair{}, false
}

func (t *Tokenizer) isOperand(tok Token) bool {
	switch tok.Kind {
	case Identifier, StringLiteral, NumericLiteral:
		return true
	case Keyword:
		return isValueKeyword(tok.Text(t.src))
	case Punctuation:
		return tok.Flag.Has(FlagCloseParen) || tok.Flag.Has(FlagPlaceholder) || t.src[tok.Start] == ']'
	default:
		return false
	}
}

// isValueKeyword reports keywords that end an operand, such as NULL or the END of a CASE expression.
func isValueKeyword(word string) bool {
	for _, k := range [...]string{"NULL", "TRUE", "FALSE", "END"} {
		if strings.EqualFold(word, k) {
			return true
		}
	}

	return false
}

func isIn(word string) bool {
	return len(word) == 2 && word[0]|0x20 == 'i' && word[1]|0x20 == 'n'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || ('a' <= c|0x20 && c|0x20 <= 'f')
}

func isLetter(c byte) bool {
	return 'a' <= c|0x20 && c|0x20 <= 'z'
}

func isWordByte(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isPunct(c byte) bool {
	return c > ' ' && c < 0x7f
}
