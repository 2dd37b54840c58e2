package lrpar

import (
	"bytes"
	"fmt"

	"github.com/borgstrand/yakka"
	"github.com/borgstrand/yakka/lrpar/scanner"
)

// DiagnosticKind distinguishes the errors a parse can produce.
type DiagnosticKind int8

// Kinds of diagnostics.
const (
	ParseError   DiagnosticKind = iota // syntactic mismatch
	LexError                           // ill-formed input, skipped
	SkippedInput                       // recovery fell back to skipping tokens
	ActionError                        // a semantic action failed
)

func (k DiagnosticKind) String() string {
	switch k {
	case ParseError:
		return "parse error"
	case LexError:
		return "lexical error"
	case SkippedInput:
		return "input skipped"
	case ActionError:
		return "action error"
	}
	return "error"
}

// Diagnostic is an error finding of a parse, attributed to a span of the
// input. Parse errors additionally carry the minimum-cost repair sequences
// which recovery found; the first one is the one that has been applied.
//
// Diagnostics are collected during the parse and handed to the client as a
// batch when parsing ends; constructing them is decoupled from rendering.
type Diagnostic struct {
	Kind    DiagnosticKind
	Span    yakka.Span
	Message string
	Repairs []RepairSequence
}

func (d Diagnostic) String() string {
	var b bytes.Buffer
	b.WriteString(fmt.Sprintf("%s at %s: %s", d.Kind, d.Span, d.Message))
	for _, r := range d.Repairs {
		b.WriteString(fmt.Sprintf("\n    possible repair: %s", r))
	}
	return b.String()
}

// Render formats a diagnostic for display, mapping its span to 1-based
// line/column positions of the given input.
func Render(d Diagnostic, input []byte) string {
	line, col := scanner.LineCol(input, d.Span.From())
	var b bytes.Buffer
	b.WriteString(fmt.Sprintf("%d:%d: %s: %s", line, col, d.Kind, d.Message))
	for _, r := range d.Repairs {
		b.WriteString(fmt.Sprintf("\n    possible repair: %s", r))
	}
	return b.String()
}
