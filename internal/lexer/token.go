// Package lexer splits query text into classified tokens for the sanitizer and the summarizer.
//
// It is not a parser: only enough lexical structure is recognized to find literals, comments and the few keywords
// that matter for summaries. Any input, including invalid UTF-8, is scanned to the end without failing.
package lexer

// Kind is the class of a token.
type Kind uint8

// Token kinds.
const (
	Whitespace Kind = iota
	LineComment
	BlockComment
	StringLiteral
	NumericLiteral
	Keyword
	Identifier
	Punctuation
	Other
)

var kindNames = [...]string{
	Whitespace:     "Whitespace",
	LineComment:    "LineComment",
	BlockComment:   "BlockComment",
	StringLiteral:  "StringLiteral",
	NumericLiteral: "NumericLiteral",
	Keyword:        "Keyword",
	Identifier:     "Identifier",
	Punctuation:    "Punctuation",
	Other:          "Other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Unknown"
}

// IsLiteral returns true for string and numeric literals.
func (k Kind) IsLiteral() bool {
	return k == StringLiteral || k == NumericLiteral
}

// IsComment returns true for line and block comments.
func (k Kind) IsComment() bool {
	return k == LineComment || k == BlockComment
}

// IsTrivia returns true for tokens that carry no statement semantics.
func (k Kind) IsTrivia() bool {
	return k == Whitespace || k.IsComment()
}

// Flag marks tokens the consumers need to recognize without looking at the text again.
type Flag uint8

// Token flags.
const (
	FlagIn Flag = 1 << iota
	FlagOpenParen
	FlagCloseParen
	FlagComma
	FlagPlaceholder
	FlagPipe
	FlagTerminator
	FlagDot
)

// Has returns true if all the given flags are set.
func (f Flag) Has(o Flag) bool {
	return f&o == o
}

// Token is a view into the source text. It does not own the text.
type Token struct {
	Kind  Kind
	Flag  Flag
	Start int
	End   int
}

// Text returns the part of the source covered by the token.
func (t Token) Text(src string) string {
	return src[t.Start:t.End]
}

// Len returns the length of the token in bytes.
func (t Token) Len() int {
	return t.End - t.Start
}
