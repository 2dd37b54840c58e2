/*
Package lrtable constructs LALR(1) parser tables.

Clients create a grammar with package cfgrammar, subject it to grammar
analysis, and hand the analysis to a table generator:

	ga := cfgrammar.Analysis(g)
	lrgen := lrtable.NewTableGenerator(ga)
	if err := lrgen.CreateTables(); err != nil { … }  // conflicts beyond %expect
	parser := lrpar.NewParser(g, lrgen.GotoTable(), lrgen.ActionTable())

Table construction proceeds in the classical way: the canonical LR(1)
item-set graph is built first, with lookahead sets propagated through the
closure operation. States sharing identical kernel cores are then collapsed
to obtain the LALR(1) machine, unioning their lookahead sets. Finally every
table cell holding more than one candidate action is subjected to conflict
resolution via the grammar's precedence and associativity declarations;
residual conflicts are resolved Yacc-style (shift over reduce, earlier rule
over later rule) and reported.

The characteristic finite state machine (CFSM) is not thrown away after
table generation, but made available to clients. This is intended for
debugging purposes: it can be exported to GraphViz's Dot format, and the
tables can be exported to HTML.

Tables can be serialized to a versioned format and re-loaded later; a
content hash of the grammar ties a serialized table file to the grammar it
was built from.

___________________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2019–2026 The Yakka Project
*/
package lrtable

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'yakka.lrtable'.
func tracer() tracing.Trace {
	return tracing.Select("yakka.lrtable")
}
