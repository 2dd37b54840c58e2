/*
Package yakka is an LALR(1) parsing toolkit in the Yacc lineage.

Yakka reads context-free grammars in a Yacc-like notation and produces
deterministic bottom-up parsers which are able to recover from syntax
errors and report more than one diagnostic per input. Package structure
is as follows:

■ cfgrammar: Package cfgrammar holds the grammar representation. It parses
Yacc-style grammar sources, normalizes them into an immutable grammar IR,
and computes FIRST- and FOLLOW-sets.

■ lrtable: Package lrtable constructs the canonical LR(1) item-set graph for
a grammar, collapses it to LALR(1), resolves conflicts via precedence and
associativity, and emits compact ACTION- and GOTO-tables.

■ lrpar: Package lrpar contains the table-driven pushdown parser, including
CPCT+ error recovery, which searches for minimum-cost token-edit repair
sequences when the input does not match the grammar.

The base package contains data types which are used throughout all the
other packages.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2019–2026 The Yakka Project
*/
package yakka
