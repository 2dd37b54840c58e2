package yakka

import "fmt"

// --- A general purpose interface for tokens --------------------------------

// TokType is a category type for a Token. The toolkit does not define any
// constants here, as token values are owned by the grammar: terminals of a
// grammar carry their token value, and scanners have to produce matching
// values.
type TokType int

// TokTypeStringer is a type to be provided by a scanner/parser combination to be
// able to print out token categories.
type TokTypeStringer func(TokType) string

// Tokens represent input tokens. They are usually produced by a scanner and
// reflect terminals of a grammar.
//
// An example would be a token for an integer literal:
//
//	TokType = Int         // identifier for this kind of tokens (grammar specific)
//	Lexeme  = "4711"      // lexeme as it appeared in the input stream
//	Value   = 4711        // is an int value
//	Span    = 67…71       // occupied positions 67–71 of the input stream
//
// Token.Value() could either have been set by the scanner, or converted from
// Token.Lexeme() by a parse listener.
type Token interface {
	TokType() TokType
	Lexeme() string
	Value() interface{}
	Span() Span
}

// TokenRetriever is a type for getting tokens at an input position.
// Parsers with error recovery will keep track of input tokens; factoring the
// lookup out into a type keeps this design decision out of the interfaces.
type TokenRetriever func(uint64) Token

// --- Spans ------------------------------------------------------------

// Span is a small type for capturing a range of input bytes. For every
// terminal and non-terminal, the parser tracks which input positions this
// symbol covers. A span denotes a start position and the position just
// behind the end.
type Span [2]uint64 // (x…y)

// From returns the start value of a span.
func (s Span) From() uint64 {
	return s[0]
}

// To returns the end value of a span.
func (s Span) To() uint64 {
	return s[1]
}

// Len returns the length of (x…y)
func (s Span) Len() uint64 {
	return s[1] - s[0]
}

// IsNull is true for the zero span.
func (s Span) IsNull() bool {
	return s == Span{}
}

// Extend returns the union of two spans.
func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}
