package lrtable

import (
	"bytes"
	"strings"
	"testing"

	"github.com/borgstrand/yakka/cfgrammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// We use the unambiguous expression grammar which most of the runtime tests
// use as well:
//
//	Sum     = Sum     '+' Product | Product
//	Product = Product '*' Factor  | Factor
//	Factor  = '(' Sum ')' | int
const intToken = 1 // an arbitrary token value for 'int'

func makeExprGrammar(t *testing.T) *cfgrammar.LRAnalysis {
	b := cfgrammar.NewGrammarBuilder("Expressions")
	b.LHS("Sum").N("Sum").T("+", '+').N("Product").End()
	b.LHS("Sum").N("Product").End()
	b.LHS("Product").N("Product").T("*", '*').N("Factor").End()
	b.LHS("Product").N("Factor").End()
	b.LHS("Factor").T("(", '(').N("Sum").T(")", ')').End()
	b.LHS("Factor").T("int", intToken).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("could not build grammar: %v", err)
	}
	return cfgrammar.Analysis(g)
}

func TestCreateTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrtable")
	defer teardown()
	//
	lrgen := NewTableGenerator(makeExprGrammar(t))
	if err := lrgen.CreateTables(); err != nil {
		t.Fatalf("table construction failed: %v", err)
	}
	if lrgen.HasConflicts {
		t.Errorf("expected the expression grammar to be conflict-free, got %v", lrgen.Conflicts())
	}
	cfsm := lrgen.CFSM()
	if cfsm.Size() == 0 || cfsm.S0 == nil {
		t.Fatalf("CFSM not constructed")
	}
	if cfsm.S0.ID != 0 {
		t.Errorf("expected start state to have ID 0, has %d", cfsm.S0.ID)
	}
	// the start state must shift '(' and int, and must not shift '+'
	aT := lrgen.ActionTable()
	if aT.Value(0, '(') != ShiftAction {
		t.Errorf("expected action(0, '(') to be shift")
	}
	if aT.Value(0, intToken) != ShiftAction {
		t.Errorf("expected action(0, int) to be shift")
	}
	if aT.Value(0, '+') != aT.NullValue() {
		t.Errorf("expected action(0, '+') to be an error entry")
	}
	// the goto for the start symbol must be defined in state 0
	gT := lrgen.GotoTable()
	sum := lrgen.Grammar().SymbolByName("Sum")
	if gT.Value(0, sum.Value) == gT.NullValue() {
		t.Errorf("expected goto(0, Sum) to be defined")
	}
}

func TestLALRCollapse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrtable")
	defer teardown()
	//
	lrgen := NewTableGenerator(makeExprGrammar(t))
	lr1 := lrgen.buildCFSM()
	lalr := lrgen.collapse(lr1)
	if lalr.Size() > lr1.Size() {
		t.Errorf("collapse may not grow the machine: %d → %d", lr1.Size(), lalr.Size())
	}
	// collapsing twice must be the identity
	lrgen2 := NewTableGenerator(makeExprGrammar(t))
	lalr2 := lrgen2.collapse(lrgen2.collapse(lrgen2.buildCFSM()))
	if lalr2.Size() != lalr.Size() {
		t.Errorf("collapse is not idempotent: %d != %d", lalr.Size(), lalr2.Size())
	}
}

func TestTablesDeterministic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrtable")
	defer teardown()
	//
	var bufs [2]bytes.Buffer
	for n := 0; n < 2; n++ {
		lrgen := NewTableGenerator(makeExprGrammar(t))
		if err := lrgen.CreateTables(); err != nil {
			t.Fatalf("table construction failed: %v", err)
		}
		if err := lrgen.WriteTables(&bufs[n]); err != nil {
			t.Fatalf("serialization failed: %v", err)
		}
	}
	if !bytes.Equal(bufs[0].Bytes(), bufs[1].Bytes()) {
		t.Errorf("identical grammars must serialize to byte-identical tables")
	}
}

func TestTablesRoundtrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrtable")
	defer teardown()
	//
	ga := makeExprGrammar(t)
	lrgen := NewTableGenerator(ga)
	if err := lrgen.CreateTables(); err != nil {
		t.Fatalf("table construction failed: %v", err)
	}
	var buf bytes.Buffer
	if err := lrgen.WriteTables(&buf); err != nil {
		t.Fatalf("serialization failed: %v", err)
	}
	actions, gotos, err := ReadTables(&buf, ga.Grammar())
	if err != nil {
		t.Fatalf("loading failed: %v", err)
	}
	g := ga.Grammar()
	for s := uint(0); s < uint(lrgen.CFSM().Size()); s++ {
		g.EachSymbol(func(A *cfgrammar.Symbol) interface{} {
			if actions.Value(s, A.Value) != lrgen.ActionTable().Value(s, A.Value) {
				t.Errorf("action(%d,%s) differs after roundtrip", s, A.Name)
			}
			if gotos.Value(s, A.Value) != lrgen.GotoTable().Value(s, A.Value) {
				t.Errorf("goto(%d,%s) differs after roundtrip", s, A.Name)
			}
			return nil
		})
	}
}

func TestTablesStale(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrtable")
	defer teardown()
	//
	lrgen := NewTableGenerator(makeExprGrammar(t))
	if err := lrgen.CreateTables(); err != nil {
		t.Fatalf("table construction failed: %v", err)
	}
	var buf bytes.Buffer
	if err := lrgen.WriteTables(&buf); err != nil {
		t.Fatalf("serialization failed: %v", err)
	}
	b := cfgrammar.NewGrammarBuilder("Other")
	b.LHS("S").T("x", 9).End()
	other, _ := b.Grammar()
	if _, _, err := ReadTables(bytes.NewReader(buf.Bytes()), other); err == nil {
		t.Errorf("expected stale tables to be rejected")
	} else if _, ok := err.(*TableError); !ok {
		t.Errorf("expected a TableError, got %T", err)
	}
	// a tampered version number must be rejected, too
	tampered := strings.Replace(buf.String(), `"version":1`, `"version":99`, 1)
	if _, _, err := ReadTables(strings.NewReader(tampered), lrgen.Grammar()); err == nil {
		t.Errorf("expected a version mismatch to be rejected")
	}
}

func TestConflictShiftReduce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrtable")
	defer teardown()
	//
	b := cfgrammar.NewGrammarBuilder("ambiguous")
	b.LHS("E").N("E").T("+", '+').N("E").End()
	b.LHS("E").T("n", 1).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("could not build grammar: %v", err)
	}
	lrgen := NewTableGenerator(cfgrammar.Analysis(g))
	err = lrgen.CreateTables()
	ce, ok := err.(*ConflictError)
	if !ok {
		t.Fatalf("expected a conflict error, got %v", err)
	}
	if len(ce.Conflicts) != 1 || ce.Conflicts[0].Kind != ShiftReduce {
		t.Fatalf("expected exactly one shift/reduce conflict, got %v", ce.Conflicts)
	}
	if report := ConflictReport(lrgen); report == "" {
		t.Errorf("expected a non-empty conflict report")
	}
	// declaring the conflict as expected makes construction succeed
	b2 := cfgrammar.NewGrammarBuilder("ambiguous")
	b2.LHS("E").N("E").T("+", '+').N("E").End()
	b2.LHS("E").T("n", 1).End()
	b2.Expect(1)
	g2, _ := b2.Grammar()
	lrgen2 := NewTableGenerator(cfgrammar.Analysis(g2))
	if err := lrgen2.CreateTables(); err != nil {
		t.Errorf("%%expect 1 should tolerate the conflict, got %v", err)
	}
	if !lrgen2.HasConflicts {
		t.Errorf("the conflict must still be reported")
	}
}

func TestConflictResolvedByPrecedence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrtable")
	defer teardown()
	//
	b := cfgrammar.NewGrammarBuilder("prec")
	b.LHS("E").N("E").T("+", '+').N("E").End()
	b.LHS("E").N("E").T("*", '*').N("E").End()
	b.LHS("E").T("n", 1).End()
	b.Left("+")
	b.Left("*")
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("could not build grammar: %v", err)
	}
	lrgen := NewTableGenerator(cfgrammar.Analysis(g))
	if err := lrgen.CreateTables(); err != nil {
		t.Fatalf("precedence should resolve every conflict, got %v", err)
	}
	if lrgen.HasConflicts {
		t.Errorf("resolved conflicts must not be reported, got %v", lrgen.Conflicts())
	}
	// after E + E the parser must reduce on '+' (left-assoc) and shift on
	// '*' (higher precedence)
	aT := lrgen.ActionTable()
	plusRule := 1 // E → E + E
	found := false
	for s := uint(0); s < uint(lrgen.CFSM().Size()); s++ {
		if aT.Value(s, '+') == int32(plusRule) {
			found = true
			if aT.Value(s, '*') != ShiftAction {
				t.Errorf("state %d: expected shift on '*' after E + E", s)
			}
		}
	}
	if !found {
		t.Errorf("expected a state which reduces E → E + E on '+'")
	}
}

func TestConflictNonassoc(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrtable")
	defer teardown()
	//
	b := cfgrammar.NewGrammarBuilder("nonassoc")
	b.LHS("E").N("E").T("<", '<').N("E").End()
	b.LHS("E").T("n", 1).End()
	b.Nonassoc("<")
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("could not build grammar: %v", err)
	}
	lrgen := NewTableGenerator(cfgrammar.Analysis(g))
	if err := lrgen.CreateTables(); err != nil {
		t.Fatalf("nonassoc resolves the conflict, got %v", err)
	}
	// there must be a state where '<' could be shifted (goto is defined)
	// but the action cell is an error entry
	aT, gT := lrgen.ActionTable(), lrgen.GotoTable()
	found := false
	for s := uint(0); s < uint(lrgen.CFSM().Size()); s++ {
		if gT.Value(s, '<') != gT.NullValue() && aT.Value(s, '<') == aT.NullValue() {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a nonassoc error entry for '<'")
	}
}

func TestConflictReduceReduce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrtable")
	defer teardown()
	//
	b := cfgrammar.NewGrammarBuilder("rr")
	b.LHS("S").N("A").End()
	b.LHS("S").N("B").End()
	b.LHS("A").T("x", 1).End()
	b.LHS("B").T("x", 1).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("could not build grammar: %v", err)
	}
	lrgen := NewTableGenerator(cfgrammar.Analysis(g))
	err = lrgen.CreateTables()
	ce, ok := err.(*ConflictError)
	if !ok {
		t.Fatalf("expected a conflict error, got %v", err)
	}
	if len(ce.Conflicts) != 1 || ce.Conflicts[0].Kind != ReduceReduce {
		t.Fatalf("expected exactly one reduce/reduce conflict, got %v", ce.Conflicts)
	}
	if ce.Conflicts[0].Winner != 3 { // A → x, declared before B → x
		t.Errorf("expected the earlier rule 3 to win, winner is %d", ce.Conflicts[0].Winner)
	}
	// the losing reduce must not be in the table
	aT := lrgen.ActionTable()
	for s := uint(0); s < uint(lrgen.CFSM().Size()); s++ {
		if aT.Value(s, cfgrammar.EOFType) == 4 {
			t.Errorf("state %d reduces the losing rule 4", s)
		}
	}
}
