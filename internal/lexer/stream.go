package lexer

// Collect appends every token of src to dst and returns the extended slice.
func Collect(dst []Token, src string, p *Profile) []Token {
	t := NewTokenizer(src, p)

	for {
		tok, ok := t.Next()
		if !ok {
			return dst
		}

		dst = append(dst, tok)
	}
}

// Replay is a Stream over tokens that were collected before.
type Replay struct {
	tokens []Token
	pos    int
}

var _ Stream = (*Replay)(nil)

// NewReplay creates a new Replay.
func NewReplay(tokens []Token) *Replay {
	return &Replay{tokens: tokens}
}

// Next returns the next token.
func (r *Replay) Next() (Token, bool) {
	if r.pos >= len(r.tokens) {
		return Token{}, false
	}

	tok := r.tokens[r.pos]
	r.pos++

	return tok, true
}

// Reset rewinds the replay to the first token.
func (r *Replay) Reset() {
	r.pos = 0
}
