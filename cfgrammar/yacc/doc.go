/*
Package yacc reads grammars written in Yacc-like notation and lowers them
to the grammar IR of package cfgrammar.

A grammar source consists of three sections, separated by '%%': declarations,
rules, and an optional trailer, which is carried along verbatim.

	%start Expr
	%token INT
	%left '+' '-'
	%left '*' '/'
	%%
	Expr: Expr '+' Expr { $$ = $1 + $3 }
	    | INT
	    ;
	%%
	…trailer…

Two surface dialects are understood. KindOriginal is the classical notation
shown above. KindGrmtools additionally annotates each rule with the type of
its semantic value:

	Expr -> int:
	      Expr '+' Expr { $1 + $3 }
	    | INT { atoi($lexer, $span) }
	    ;

Both dialects lower to the same IR; semantic action bodies are opaque text
to the analysis and are only ever embedded by a downstream code generator.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2019–2026 The Yakka Project
*/
package yacc

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'yakka.cfgrammar'.
func tracer() tracing.Trace {
	return tracing.Select("yakka.cfgrammar")
}
