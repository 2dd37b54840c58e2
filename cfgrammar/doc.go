/*
Package cfgrammar implements the context-free grammar representation of the
yakka parsing toolkit.

# Building a Grammar

Grammars are specified using a grammar builder object. Clients add
rules, consisting of non-terminal symbols and terminals. Terminals
carry a token value of type int. Grammars may contain epsilon-productions.

Example:

	b := cfgrammar.NewGrammarBuilder("G")
	b.LHS("S").N("A").T("a", 1).End()  // S  ->  A a
	b.LHS("A").N("B").N("D").End()     // A  ->  B D
	b.LHS("B").T("b", 2).End()         // B  ->  b
	b.LHS("B").Epsilon()               // B  ->
	b.LHS("D").T("d", 3).End()         // D  ->  d
	b.LHS("D").Epsilon()               // D  ->

This results in the following grammar (the start rule has been synthesized):

	b.Grammar().Dump()

	0: [#start] ::= [S #eof]
	1: [S] ::= [A a]
	2: [A] ::= [B D]
	3: [B] ::= [b]
	4: [B] ::= []
	5: [D] ::= [d]
	6: [D] ::= []

Tokens may carry precedence and associativity, declared Yacc-style in
levels of increasing binding strength:

	b.Left("+", "-")
	b.Left("*", "/")
	b.Nonassoc("==")

An alternative to the builder is the Yacc-notation frontend in sub-package
yacc, which reads grammar source text and produces the same IR.

# Static Grammar Analysis

After the grammar is complete, it has to be analysed. For this end, the
grammar is subjected to an LRAnalysis object, which computes FIRST- and
FOLLOW-sets for the grammar and determines all epsilon-derivable symbols.

Although FIRST- and FOLLOW-sets are mainly intended to be used for internal
purposes of constructing the parser tables, methods for getting FIRST(N)
and FOLLOW(N) of non-terminals are defined to be public.

	ga := cfgrammar.Analysis(g)  // analyser for grammar above
	ga.Grammar().EachNonTerminal(
	    func(N *Symbol) interface{} {                         // ad-hoc mapper function
	        fmt.Printf("FIRST(%s) = %v\n", N.Name, ga.First(N)) // get FIRST-set for N
	        return nil
	    })

	// Output:
	FIRST(S) = {1 2 3}         // terminal token values as int, 1 = 'a'
	FIRST(A) = {0 2 3}         // 0 = epsilon
	FIRST(B) = {0 2}           // 2 = 'b'
	FIRST(D) = {0 3}           // 3 = 'd'
	FIRST(#start) = {1 2 3}    // augmented start rule  #start → S #eof

___________________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2019–2026 The Yakka Project
*/
package cfgrammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'yakka.cfgrammar'.
func tracer() tracing.Trace {
	return tracing.Select("yakka.cfgrammar")
}
