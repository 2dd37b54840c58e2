/*
Package scanner defines the lexeme-producer interface the parsers of
package lrpar rely on.

Scanners produce a finite sequence of tokens carrying byte spans into the
input. Two default scanner implementations are provided: (1) a thin wrapper
over the Go std lib 'text/scanner', and (2) an adapter for lexmachine,
living in sub-package `lexmach`.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2019–2026 The Yakka Project
*/
package scanner

import (
	"fmt"
	"io"
	"text/scanner"

	"github.com/borgstrand/yakka"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'yakka.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("yakka.scanner")
}

// EOF is identical to text/scanner.EOF.
// Token types are replicated here for practical reasons.
const (
	EOF       = scanner.EOF
	Ident     = scanner.Ident
	Int       = scanner.Int
	Float     = scanner.Float
	Char      = scanner.Char
	String    = scanner.String
	RawString = scanner.RawString
	Comment   = scanner.Comment
)

// Tokenizer is a scanner interface. Token production is finite and
// deterministic: after the end of input every call returns an EOF token.
type Tokenizer interface {
	NextToken() yakka.Token
	SetErrorHandler(func(error))
}

// LexError is an ill-formed piece of input, reported with its span. The
// parser surfaces lex errors as diagnostics. It does not drop input itself:
// a token the scanner returns for the ill-formed input goes through error
// recovery like any other token.
type LexError struct {
	Msg  string
	Span yakka.Span
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexical error at %s: %s", e.Span, e.Msg)
}

// LineCol maps a byte offset into an input to 1-based line and column
// numbers, for rendering diagnostics.
func LineCol(input []byte, offset uint64) (line, col int) {
	line, col = 1, 1
	for i := uint64(0); i < offset && i < uint64(len(input)); i++ {
		if input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// DefaultTokenizer is a default implementation, backed by scanner.Scanner.
// Create one with GoTokenizer.
type DefaultTokenizer struct {
	scanner.Scanner
	lastToken    rune        // last token this scanner has produced
	Error        func(error) // error handler
	unifyStrings bool        // convert single chars to strings
}

var _ Tokenizer = (*DefaultTokenizer)(nil)

// Default error reporting function for scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// GoTokenizer creates a scanner/tokenizer accepting tokens similar to the Go
// language.
func GoTokenizer(sourceID string, input io.Reader, opts ...Option) *DefaultTokenizer {
	t := &DefaultTokenizer{}
	t.Error = logError
	t.Init(input)
	t.Filename = sourceID
	t.Scanner.Error = func(s *scanner.Scanner, msg string) {
		off := uint64(s.Position.Offset)
		t.Error(&LexError{Msg: msg, Span: yakka.Span{off, off + 1}})
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetErrorHandler sets an error handler for the scanner.
func (t *DefaultTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		t.Error = logError
		return
	}
	t.Error = h
}

// NextToken is part of the Tokenizer interface.
func (t *DefaultTokenizer) NextToken() yakka.Token {
	t.lastToken = t.Scan()
	if t.lastToken == scanner.EOF {
		tracer().Debugf("DefaultTokenizer reached end of input")
	}
	if t.unifyStrings &&
		(t.lastToken == scanner.RawString || t.lastToken == scanner.Char) {
		t.lastToken = scanner.String
	}
	return DefaultToken{
		kind:   yakka.TokType(t.lastToken),
		lexeme: t.TokenText(),
		span:   yakka.Span{uint64(t.Position.Offset), uint64(t.Pos().Offset)},
	}
}

// --- Default tokens --------------------------------------------------------

// DefaultToken is a very unsophisticated token type, used as default for the
// Go tokenizer as well as the lexmachine scanner.
type DefaultToken struct {
	kind   yakka.TokType
	lexeme string
	Val    interface{}
	span   yakka.Span
}

// MakeDefaultToken wraps token data into a DefaultToken.
func MakeDefaultToken(typ yakka.TokType, lexeme string, span yakka.Span) DefaultToken {
	return DefaultToken{
		kind:   typ,
		lexeme: lexeme,
		span:   span,
	}
}

// TokType is part of the yakka.Token interface.
func (t DefaultToken) TokType() yakka.TokType {
	return t.kind
}

// Value is part of the yakka.Token interface.
func (t DefaultToken) Value() interface{} {
	return t.Val
}

// Lexeme is part of the yakka.Token interface.
func (t DefaultToken) Lexeme() string {
	return t.lexeme
}

// Span is part of the yakka.Token interface.
func (t DefaultToken) Span() yakka.Span {
	return t.span
}

// --- Scanner options for the default (Go) tokenizer ------------------------

// Option configures a default tokenizer.
type Option func(p *DefaultTokenizer)

const (
	optionSkipComments uint = 1 << 1 // do not pass comments
	optionUnifyStrings uint = 1 << 2 // treat raw strings and single chars as strings
)

// SkipComments sets or clears mode-flag SkipComments.
func SkipComments(b bool) Option {
	return func(t *DefaultTokenizer) {
		if b {
			t.Mode |= scanner.SkipComments
		} else {
			t.Mode &^= scanner.SkipComments
		}
	}
}

// UnifyStrings sets or clears option UnifyStrings:
// treat raw strings and single chars as strings.
func UnifyStrings(b bool) Option {
	return func(t *DefaultTokenizer) {
		t.unifyStrings = b
	}
}

func (t *DefaultTokenizer) hasmode(m uint) bool {
	if m == optionUnifyStrings {
		return t.unifyStrings
	}
	return t.Mode&m > 0
}
