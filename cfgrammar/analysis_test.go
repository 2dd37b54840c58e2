package cfgrammar

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func setOf(t *testing.T, ga *LRAnalysis, name string, follow bool) map[int]bool {
	sym := ga.Grammar().SymbolByName(name)
	if sym == nil {
		t.Fatalf("no symbol %s in grammar", name)
	}
	S := ga.First(sym)
	if follow {
		S = ga.Follow(sym)
	}
	m := make(map[int]bool)
	for _, v := range S.AppendTo(nil) {
		m[v] = true
	}
	return m
}

func expectSet(t *testing.T, got map[int]bool, want ...int) {
	if len(got) != len(want) {
		t.Errorf("expected set of size %d, got %v", len(want), got)
		return
	}
	for _, v := range want {
		if !got[v] {
			t.Errorf("expected %d to be in set, is not; set is %v", v, got)
		}
	}
}

func TestAnalysisEpsilon(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.cfgrammar")
	defer teardown()
	//
	ga := Analysis(makeGrammar(t))
	for name, eps := range map[string]bool{"S": false, "A": true, "B": true, "D": true} {
		if ga.DerivesEpsilon(ga.Grammar().SymbolByName(name)) != eps {
			t.Errorf("expected derives-epsilon(%s) to be %v", name, eps)
		}
	}
}

// The expected sets follow the example in the package documentation.
func TestAnalysisFirst(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.cfgrammar")
	defer teardown()
	//
	ga := Analysis(makeGrammar(t))
	expectSet(t, setOf(t, ga, "S", false), 1, 2, 3)           // a b d
	expectSet(t, setOf(t, ga, "A", false), EpsilonType, 2, 3) // ε b d
	expectSet(t, setOf(t, ga, "B", false), EpsilonType, 2)    // ε b
	expectSet(t, setOf(t, ga, "D", false), EpsilonType, 3)    // ε d
}

func TestAnalysisFollow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.cfgrammar")
	defer teardown()
	//
	ga := Analysis(makeGrammar(t))
	expectSet(t, setOf(t, ga, "S", true), EOFType) // FOLLOW(start) ∋ #eof
	expectSet(t, setOf(t, ga, "A", true), 1)       // a
	expectSet(t, setOf(t, ga, "B", true), 1, 3)    // FIRST(D) ∪ FOLLOW(A)
	expectSet(t, setOf(t, ga, "D", true), 1)       // FOLLOW(A)
}

func TestAnalysisFirstOfSeq(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.cfgrammar")
	defer teardown()
	//
	ga := Analysis(makeGrammar(t))
	g := ga.Grammar()
	B, D, a := g.SymbolByName("B"), g.SymbolByName("D"), g.SymbolByName("a")
	F := ga.FirstOfSeq([]*Symbol{B, D, a})
	if F.Has(EpsilonType) {
		t.Errorf("sequence [B D a] cannot derive epsilon, FIRST = %s", F)
	}
	if !F.Has(1) || !F.Has(2) || !F.Has(3) {
		t.Errorf("expected FIRST([B D a]) = {a b d}, is %s", F)
	}
	F = ga.FirstOfSeq([]*Symbol{B, D})
	if !F.Has(EpsilonType) {
		t.Errorf("sequence [B D] derives epsilon, FIRST = %s", F)
	}
	F = ga.FirstOfSeq(nil)
	if !F.Has(EpsilonType) || F.Len() != 1 {
		t.Errorf("FIRST of the empty sequence must be {ε}, is %s", F)
	}
}
