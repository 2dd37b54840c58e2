package yacc

import (
	"testing"

	"github.com/borgstrand/yakka/cfgrammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

const calcGrammar = `
%start Expr
%token INT
%avoid_insert INT
%epp INT "integer"
%left '+'
%left '*'
%%
Expr: Expr '+' Term  { $$ = $1 + $3 }
    | Term           { $$ = $1 }
    ;
Term: Term '*' Factor { $$ = $1 * $3 }
    | Factor          { $$ = $1 }
    ;
Factor: '(' Expr ')'  { $$ = $2 }
    | INT             { $$ = $1 }
    ;
%%
trailing text
`

func TestParseCalcGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.cfgrammar")
	defer teardown()
	//
	ast, err := Parse([]byte(calcGrammar), KindOriginal)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ast.Start != "Expr" {
		t.Errorf("expected start symbol Expr, is %q", ast.Start)
	}
	if len(ast.Rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(ast.Rules))
	}
	if len(ast.Rules[0].Alts) != 2 || len(ast.Rules[2].Alts) != 2 {
		t.Errorf("expected 2 alternatives per rule")
	}
	if ast.Rules[0].Alts[0].Action != "$$ = $1 + $3" {
		t.Errorf("action text mangled: %q", ast.Rules[0].Alts[0].Action)
	}
	if len(ast.Precs) != 2 || ast.Precs[0].Assoc != cfgrammar.AssocLeft {
		t.Errorf("expected two %%left declarations, got %v", ast.Precs)
	}
	if ast.Trailer != "trailing text" {
		t.Errorf("expected trailer to be preserved, is %q", ast.Trailer)
	}
}

func TestLowerCalcGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.cfgrammar")
	defer teardown()
	//
	g, err := BuildGrammar("calc", []byte(calcGrammar), KindOriginal)
	if err != nil {
		t.Fatalf("building grammar failed: %v", err)
	}
	g.Dump()
	if g.Size() != 7 { // 6 + start rule
		t.Errorf("expected 7 rules, got %d", g.Size())
	}
	if g.Start().Name != "Expr" {
		t.Errorf("expected start symbol Expr, is %s", g.Start())
	}
	plus := g.SymbolByName("+")
	if plus == nil || plus.Value != '+' {
		t.Fatalf("expected literal token '+' to carry its rune value")
	}
	intTok := g.SymbolByName("INT")
	if intTok == nil || intTok.Value < cfgrammar.TokenBase {
		t.Fatalf("expected named token INT to get a value from the sequence")
	}
	if !g.AvoidInsert(intTok) {
		t.Errorf("expected INT to be marked %%avoid_insert")
	}
	if g.DisplayName(intTok) != "integer" {
		t.Errorf("expected %%epp display name for INT, got %q", g.DisplayName(intTok))
	}
	pplus, _ := g.Precedence(plus)
	ptimes, _ := g.Precedence(g.SymbolByName("*"))
	if !(pplus.Level < ptimes.Level) {
		t.Errorf("expected '*' to bind stronger than '+'")
	}
}

func TestParseGrmtoolsDialect(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.cfgrammar")
	defer teardown()
	//
	src := `
%start Expr
%actiontype Result<u64, ()>
%%
Expr -> Result<u64, ()>:
      Expr '+' Term { Ok($1? + $3?) }
    | Term { $1 }
    ;
Term -> Result<u64, ()>:
      'INT' { parse_int($lexer.span_str($span)) }
    ;
`
	ast, err := Parse([]byte(src), KindGrmtools)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ast.ActionType != "Result<u64, ()>" {
		t.Errorf("expected %%actiontype to be free text, got %q", ast.ActionType)
	}
	if ast.Rules[0].RetType == "" {
		t.Errorf("expected rule Expr to carry a result type")
	}
	if _, err := ast.Grammar("grmtools-dialect"); err != nil {
		t.Errorf("lowering failed: %v", err)
	}
}

func TestParseArrowRejectedInOriginal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.cfgrammar")
	defer teardown()
	//
	src := "%%\nExpr -> u64:\n 'INT' ;\n"
	_, err := Parse([]byte(src), KindOriginal)
	if err == nil {
		t.Errorf("expected the classical dialect to reject '->' rule headers")
	}
}

func TestParseUnknownDeclaration(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.cfgrammar")
	defer teardown()
	//
	src := "%frobnicate a b\n%%\nS: 'x' ;\n"
	_, err := Parse([]byte(src), KindOriginal)
	el, ok := err.(cfgrammar.ErrorList)
	if !ok || len(el) != 1 || el[0].Kind != cfgrammar.UnknownDeclaration {
		t.Errorf("expected a single unknown-declaration error, got %v", err)
	}
}

func TestParseErrorToken(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.cfgrammar")
	defer teardown()
	//
	src := "%%\nStmt: 'x' | error ';' ;\n"
	g, err := BuildGrammar("sync", []byte(src), KindOriginal)
	if err != nil {
		t.Fatalf("building grammar failed: %v", err)
	}
	r := g.Rule(2)
	if len(r.RHS()) != 2 || r.RHS()[0] != g.ErrorSymbol() {
		t.Errorf("expected bare 'error' to map to the #error token, rule is %s", r)
	}
}

func TestParseExpect(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.cfgrammar")
	defer teardown()
	//
	src := "%expect 2\n%%\nS: 'x' ;\n"
	g, err := BuildGrammar("expect", []byte(src), KindOriginal)
	if err != nil {
		t.Fatalf("building grammar failed: %v", err)
	}
	if g.Expect() != 2 {
		t.Errorf("expected %%expect to be 2, is %d", g.Expect())
	}
}
