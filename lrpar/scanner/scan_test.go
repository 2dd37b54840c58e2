package scanner

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

var inputStrings = []string{
	"1", "1+2", "1*2", "1+2*3", "1*(2+3)", "1+2+3+4", "1*2+3*4",
}

var tokenCounts = []int{1, 3, 3, 5, 7, 7, 7}

func TestGoTokenizer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.scanner")
	defer teardown()
	//
	for i, input := range inputStrings {
		sc := GoTokenizer("test", strings.NewReader(input))
		count := 0
		token := sc.NextToken()
		for token.TokType() != EOF {
			token = sc.NextToken()
			count++
		}
		if count != tokenCounts[i] {
			t.Errorf("expected token count for #%d to be %d, is %d", i, tokenCounts[i], count)
		}
	}
}

func TestGoTokenizerSpans(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.scanner")
	defer teardown()
	//
	sc := GoTokenizer("test", strings.NewReader("12+3"))
	tok := sc.NextToken()
	if tok.Span().From() != 0 || tok.Span().To() != 2 {
		t.Errorf("expected span (0…2) for '12', is %s", tok.Span())
	}
	tok = sc.NextToken()
	if tok.Span().From() != 2 || tok.Lexeme() != "+" {
		t.Errorf("expected '+' at offset 2, is %q at %s", tok.Lexeme(), tok.Span())
	}
}

func TestLineCol(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "yakka.scanner")
	defer teardown()
	//
	input := []byte("ab\ncde\nf")
	line, col := LineCol(input, 0)
	if line != 1 || col != 1 {
		t.Errorf("expected offset 0 to be 1:1, is %d:%d", line, col)
	}
	line, col = LineCol(input, 4)
	if line != 2 || col != 2 {
		t.Errorf("expected offset 4 to be 2:2, is %d:%d", line, col)
	}
	line, col = LineCol(input, 7)
	if line != 3 || col != 1 {
		t.Errorf("expected offset 7 to be 3:1, is %d:%d", line, col)
	}
}
