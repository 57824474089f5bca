package lexer

import "strings"

// Escape is the convention used to put a quote character inside a string literal.
type Escape uint8

const (
	// EscapeDoubled treats a doubled quote ('') as a literal quote.
	EscapeDoubled Escape = iota
	// EscapeBackslash treats a backslash as escaping the next character. A doubled quote is accepted as well.
	EscapeBackslash
)

// QuotePair is the opening and closing character of a quoted identifier.
type QuotePair struct {
	Open  byte
	Close byte
	// Bracket pairs double as subscripts. After an operand, or before anything but a letter, the opening character
	// is punctuation.
	Bracket bool
}

// Profile holds the lexical rules of a query dialect.
//
// Profiles are built once and never modified afterward, so a single instance is shared by all callers.
type Profile struct {
	Name string

	LineComment       string
	BlockCommentStart string
	BlockCommentEnd   string

	// Quotes lists the characters that open a string literal.
	Quotes string
	Escape Escape
	// VerbatimPrefix, when set, switches the string literal right after it to doubled-quote escaping.
	VerbatimPrefix byte

	IdentifierQuotes []QuotePair
	// PlaceholderPrefix starts a positional bind placeholder such as $1.
	PlaceholderPrefix byte

	Hex           bool
	Exponent      bool
	NumericSuffix bool

	keywords      map[string]struct{}
	operations    map[string]struct{}
	objectTypes   map[string]struct{}
	targets       map[string]struct{}
	pipeOperators map[string]struct{}
	modifiers     map[string]struct{}
}

// ProfileConfig is used to build a Profile.
type ProfileConfig struct {
	Profile

	Keywords      []string
	Operations    []string
	ObjectTypes   []string
	Targets       []string
	PipeOperators []string
	// Modifiers are keywords allowed between a target keyword and its target, such as IF NOT EXISTS.
	Modifiers []string
}

// NewProfile creates a Profile. Every operation, object type, target, pipe operator and modifier is a keyword as well.
func NewProfile(cfg ProfileConfig) *Profile {
	p := cfg.Profile

	p.operations = wordSet(cfg.Operations)
	p.objectTypes = wordSet(cfg.ObjectTypes)
	p.targets = wordSet(cfg.Targets)
	p.pipeOperators = wordSet(cfg.PipeOperators)
	p.modifiers = wordSet(cfg.Modifiers)

	groups := [][]string{cfg.Keywords, cfg.Operations, cfg.ObjectTypes, cfg.Targets, cfg.PipeOperators, cfg.Modifiers}
	size := 0

	for _, g := range groups {
		size += len(g)
	}

	all := make([]string, 0, size)

	for _, g := range groups {
		all = append(all, g...)
	}

	p.keywords = wordSet(all)

	return &p
}

// IsKeyword checks whether a word is a keyword of the profile, ignoring case.
func (p *Profile) IsKeyword(word string) bool {
	return contains(p.keywords, word)
}

// IsOperation checks whether a keyword starts an operation.
func (p *Profile) IsOperation(word string) bool {
	return contains(p.operations, word)
}

// IsObjectType checks whether a keyword names an object type, such as TABLE.
func (p *Profile) IsObjectType(word string) bool {
	return contains(p.objectTypes, word)
}

// IsTarget checks whether a keyword is followed by the target of an operation.
func (p *Profile) IsTarget(word string) bool {
	return contains(p.targets, word)
}

// IsPipeOperator checks whether a keyword is an operator that follows a pipe.
func (p *Profile) IsPipeOperator(word string) bool {
	return contains(p.pipeOperators, word)
}

// IsModifier checks whether a keyword may sit between a target keyword and its target.
func (p *Profile) IsModifier(word string) bool {
	return contains(p.modifiers, word)
}

// HasPipeOperators returns true if the dialect chains operators with pipes.
func (p *Profile) HasPipeOperators() bool {
	return len(p.pipeOperators) > 0
}

func wordSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))

	for _, w := range words {
		m[strings.ToUpper(w)] = struct{}{}
	}

	return m
}

// maxKeywordLength bounds the stack buffer used to upper-case a word before a lookup.
const maxKeywordLength = 32

func contains(set map[string]struct{}, word string) bool {
	if len(word) == 0 || len(word) > maxKeywordLength || len(set) == 0 {
		return false
	}

	var buf [maxKeywordLength]byte

	upper := buf[:len(word)]

	for i := 0; i < len(word); i++ {
		c := word[i]

		if c >= 0x80 {
			return false
		}

		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}

		upper[i] = c
	}

	_, ok := set[string(upper)]

	return ok
}
