package lrtable

import (
	"bytes"
	"fmt"

	"github.com/borgstrand/yakka/cfgrammar"
	"github.com/borgstrand/yakka/lrtable/iteratable"
)

// Item is a grammar rule with a dot position: the parser has recognized the
// RHS symbols before the dot. Items are value types and hashable; lookahead
// sets are kept per state, not inside the item, so that two occurrences of
// the same core compare equal.
type Item struct {
	rule *cfgrammar.Rule
	dot  int
}

func item(r *cfgrammar.Rule, dot int) Item {
	return Item{rule: r, dot: dot}
}

// StartItem returns the initial item of the augmented start rule,
// `#start → · S #eof`, together with the symbol after its dot.
func StartItem(r *cfgrammar.Rule) (Item, *cfgrammar.Symbol) {
	i := item(r, 0)
	return i, i.PeekSymbol()
}

// Rule returns the grammar rule of an item.
func (i Item) Rule() *cfgrammar.Rule {
	return i.rule
}

// Dot returns the dot position of an item, in 0…|RHS|.
func (i Item) Dot() int {
	return i.dot
}

// PeekSymbol returns the symbol after the dot, or nil for a completed item.
func (i Item) PeekSymbol() *cfgrammar.Symbol {
	rhs := i.rule.RHS()
	if i.dot >= len(rhs) {
		return nil
	}
	return rhs[i.dot]
}

// Prefix returns the symbols before the dot.
func (i Item) Prefix() []*cfgrammar.Symbol {
	return i.rule.RHS()[:i.dot]
}

// Suffix returns the symbols after the symbol after the dot, i.e. the rest
// of the RHS relevant for lookahead propagation.
func (i Item) Suffix() []*cfgrammar.Symbol {
	rhs := i.rule.RHS()
	if i.dot+1 >= len(rhs) {
		return nil
	}
	return rhs[i.dot+1:]
}

// Advance moves the dot of an item one symbol to the right. It must not be
// called on a completed item.
func (i Item) Advance() Item {
	if i.PeekSymbol() == nil {
		panic(fmt.Sprintf("cannot advance completed item %v", i))
	}
	return item(i.rule, i.dot+1)
}

// IsKernel is true for kernel items: the dot has moved, or the item belongs
// to the augmented start rule.
func (i Item) IsKernel() bool {
	return i.dot > 0 || i.rule.Serial == 0
}

func (i Item) String() string {
	var b bytes.Buffer
	b.WriteString(fmt.Sprintf("[%s ::=", i.rule.LHS.Name))
	for n, sym := range i.rule.RHS() {
		if n == i.dot {
			b.WriteString(" ·")
		}
		b.WriteString(" ")
		b.WriteString(sym.Name)
	}
	if i.dot == len(i.rule.RHS()) {
		b.WriteString(" ·")
	}
	b.WriteString("]")
	return b.String()
}

// asItem casts an item set member.
func asItem(x interface{}) Item {
	if i, ok := x.(Item); ok {
		return i
	}
	panic("not an item in item set")
}

func newItemSet() *iteratable.Set {
	return iteratable.NewSet(10)
}

// Dump is a debugging helper, listing the items of an item set.
func Dump(S *iteratable.Set) {
	for n, x := range S.Values() {
		i := asItem(x)
		tracer().Debugf("item %2d = %v", n, i)
	}
}
