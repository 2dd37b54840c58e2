package lrpar

import (
	"strings"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestRecoverDeleteSurplusPlus(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrpar")
	defer teardown()
	//
	parser, tokenizer := makeParser(t, "Recover", "2++3", false)
	result, err := parser.Parse(tokenizer, &calcListener{t})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", result.Diagnostics)
	}
	d := result.Diagnostics[0]
	if d.Kind != ParseError || d.Span.From() != 2 {
		t.Errorf("expected a parse error at offset 2, got %v", d)
	}
	if len(d.Repairs) == 0 {
		t.Fatalf("expected repair sequences to be reported")
	}
	best := d.Repairs[0]
	if best.Cost() != 1 {
		t.Errorf("expected a minimum-cost repair of cost 1, got %s", best)
	}
	if len(best) != 1 || best[0].Op != DeleteOp {
		t.Errorf("expected Delete('+') to rank first, got %s", best)
	}
	if !result.Accepted {
		t.Fatalf("expected the repaired input to be accepted")
	}
	if v, ok := result.Value.(int); !ok || v != 5 {
		t.Errorf("expected the repaired input to evaluate to 5, got %v", result.Value)
	}
}

func TestRecoverInsertAtEndOfInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrpar")
	defer teardown()
	//
	parser, tokenizer := makeParser(t, "Recover", "2+", false)
	result, err := parser.Parse(tokenizer, &calcListener{t})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", result.Diagnostics)
	}
	d := result.Diagnostics[0]
	if d.Span.From() != 2 {
		t.Errorf("expected the error at offset 2 (end of input), got %v", d.Span)
	}
	if len(d.Repairs) == 0 {
		t.Fatalf("expected repair sequences to be reported")
	}
	best := d.Repairs[0]
	if len(best) != 1 || best[0].Op != InsertOp || best[0].Sym.Name != "int" {
		t.Errorf("expected Insert(int), got %s", best)
	}
	if !result.Accepted {
		t.Errorf("expected the repaired input to be accepted")
	}
}

func TestRecoverAvoidInsert(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrpar")
	defer teardown()
	//
	// with %avoid_insert int, no repair may synthesize an int token
	parser, tokenizer := makeParser(t, "Recover", "2+", true)
	result, err := parser.Parse(tokenizer, &calcListener{t})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Diagnostics) == 0 {
		t.Fatalf("expected diagnostics for '2+'")
	}
	for _, d := range result.Diagnostics {
		for _, rs := range d.Repairs {
			for _, r := range rs {
				if r.Op == InsertOp && r.Sym.Name == "int" {
					t.Errorf("repair %s inserts an %%avoid_insert token", rs)
				}
			}
		}
	}
}

func TestRecoverMissingParen(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrpar")
	defer teardown()
	//
	parser, tokenizer := makeParser(t, "Recover", "(1+2", false)
	result, err := parser.Parse(tokenizer, &calcListener{t})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", result.Diagnostics)
	}
	best := result.Diagnostics[0].Repairs
	if len(best) == 0 || len(best[0]) != 1 ||
		best[0][0].Op != InsertOp || best[0][0].Sym.Name != ")" {
		t.Errorf("expected Insert(')'), got %v", best)
	}
	if v, ok := result.Value.(int); !ok || v != 3 {
		t.Errorf("expected the repaired input to evaluate to 3, got %v", result.Value)
	}
}

func TestRecoverPathologicalInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrpar")
	defer teardown()
	//
	parser, tokenizer := makeParser(t, "Recover", "))((", false)
	done := make(chan *ParseResult)
	go func() {
		result, err := parser.Parse(tokenizer, &calcListener{t})
		if err != nil {
			t.Error(err)
		}
		done <- result
	}()
	select {
	case result := <-done:
		if len(result.Diagnostics) == 0 {
			t.Errorf("expected diagnostics for '))((' ")
		}
		for _, d := range result.Diagnostics {
			if len(d.Repairs) > 3 {
				t.Errorf("repair set must be bounded, got %d sequences", len(d.Repairs))
			}
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("parser did not terminate on pathological input")
	}
}

func TestRecoverMultipleErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrpar")
	defer teardown()
	//
	// two independent error sites; recovery restarts for each
	parser, tokenizer := makeParser(t, "Recover", "1++2)*3++4", false)
	result, err := parser.Parse(tokenizer, &calcListener{t})
	if err != nil {
		t.Fatal(err)
	}
	parseErrs := 0
	for _, d := range result.Diagnostics {
		if d.Kind == ParseError {
			parseErrs++
		}
	}
	if parseErrs < 2 {
		t.Errorf("expected at least two parse errors, got %v", result.Diagnostics)
	}
}

func TestRecoverReparseProperty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrpar")
	defer teardown()
	//
	// applying a reported repair to the input source must move the error
	// site past the original one; for '2++3' and Delete('+') the repaired
	// source parses cleanly
	parser, tokenizer := makeParser(t, "Recover", "2++3", false)
	result, err := parser.Parse(tokenizer, &calcListener{t})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Diagnostics) == 0 || len(result.Diagnostics[0].Repairs) == 0 {
		t.Fatalf("expected a repair for '2++3'")
	}
	parser2, tokenizer2 := makeParser(t, "Recover", "2+3", false)
	result2, err := parser2.Parse(tokenizer2, &calcListener{t})
	if err != nil {
		t.Fatal(err)
	}
	if !result2.Accepted || len(result2.Diagnostics) != 0 {
		t.Errorf("repaired input must re-parse without errors, got %v", result2.Diagnostics)
	}
}

func TestRecoverCeilingFallback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrpar")
	defer teardown()
	//
	// a zero cost ceiling forbids any edit and forces the fallback to
	// token skipping
	parser, tokenizer := makeParser(t, "Recover", "2+)3", false,
		WithCostCeiling(0))
	result, err := parser.Parse(tokenizer, &calcListener{t})
	if err != nil {
		t.Fatal(err)
	}
	hasParseError := false
	for _, d := range result.Diagnostics {
		if d.Kind == ParseError && len(d.Repairs) == 0 {
			hasParseError = true
		}
	}
	if !hasParseError {
		t.Errorf("expected a repair-less parse error under a zero cost ceiling, got %v", result.Diagnostics)
	}
	if !result.Accepted {
		t.Errorf("skipping ')' should still let '2+3' parse, got %v", result.Diagnostics)
	}
}

func TestRecoverRepairOrderingDeterministic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.lrpar")
	defer teardown()
	//
	var first string
	for n := 0; n < 5; n++ {
		parser, tokenizer := makeParser(t, "Recover", "2++3", false)
		result, err := parser.Parse(tokenizer, &calcListener{t})
		if err != nil {
			t.Fatal(err)
		}
		if len(result.Diagnostics) == 0 {
			t.Fatalf("expected a diagnostic")
		}
		var b strings.Builder
		for _, rs := range result.Diagnostics[0].Repairs {
			b.WriteString(rs.String())
			b.WriteString("; ")
		}
		if n == 0 {
			first = b.String()
		} else if b.String() != first {
			t.Errorf("repair ordering not deterministic: %q vs %q", first, b.String())
		}
	}
}
