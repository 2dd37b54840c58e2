/*
Package lrpar provides an LALR(1) parser with error recovery. Clients have
to use the tools of package lrtable to prepare the necessary parse tables.
The parser utilizes these tables to create a right derivation for a given
input, provided through a scanner interface.

# Usage

Clients construct a grammar, usually with the Yacc frontend or a grammar
builder:

	b := cfgrammar.NewGrammarBuilder("Signed Variables Grammar")
	b.LHS("Var").N("Sign").T("a", scanner.Ident).End()  // Var  --> Sign Id
	b.LHS("Sign").T("+", '+').End()                     // Sign --> +
	b.LHS("Sign").T("-", '-').End()                     // Sign --> -
	b.LHS("Sign").Epsilon()                             // Sign -->
	g, err := b.Grammar()

This grammar is subjected to grammar analysis and table generation.

	ga := cfgrammar.Analysis(g)
	lrgen := lrtable.NewTableGenerator(ga)
	if err := lrgen.CreateTables(); err != nil { … }

Finally parse some input:

	p := lrpar.NewParser(g, lrgen.GotoTable(), lrgen.ActionTable())
	scanner := scanner.GoTokenizer("input", strings.NewReader("+a"))
	result, err := p.Parse(scanner, listener)

Clients may instrument the parse with a listener, which is called for every
terminal shifted and every rule reduced, and produces the semantic value of
the parse (an AST, an evaluated result, …).

# Error Recovery

The parser does not stop at the first syntax error. At every error site it
runs the CPCT+ algorithm: a best-first search over sequences of token edits
(insert, delete, shift), looking for the cheapest way to transform the
input such that parsing can continue. All minimum-cost repair sequences
are collected and attached to the error's diagnostic; one of them is
applied to the input and parsing resumes. The search is bounded by a
wall-clock budget per error site; when the budget is exhausted the parser
falls back to skipping input tokens, which is reported as such.

Diagnostics carry byte spans into the input and are returned as a batch
when parsing ends, alongside any semantic value produced.

___________________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2019–2026 The Yakka Project
*/
package lrpar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'yakka.lrpar'.
func tracer() tracing.Trace {
	return tracing.Select("yakka.lrpar")
}
