package lrtable

import (
	"fmt"
	"sort"

	"github.com/borgstrand/yakka/cfgrammar"
	"github.com/borgstrand/yakka/lrtable/sparse"
)

// ConflictKind distinguishes shift/reduce from reduce/reduce conflicts.
type ConflictKind int8

// The two kinds of LALR conflicts.
const (
	ShiftReduce ConflictKind = iota
	ReduceReduce
)

func (k ConflictKind) String() string {
	if k == ShiftReduce {
		return "shift/reduce"
	}
	return "reduce/reduce"
}

// Conflict is a residual table conflict: a cell which admitted more than
// one action and which precedence/associativity could not decide. The
// Yacc-compatible default has been applied (shift over reduce, earlier
// rule over later rule); the conflict is reported for the user to judge.
type Conflict struct {
	State   uint
	Sym     *cfgrammar.Symbol
	Kind    ConflictKind
	ShiftTo uint // shift/reduce: the shift target state
	Rule    int  // the losing reduce rule
	Winner  int  // reduce/reduce: the winning rule; -1 if shift won
}

func (c *Conflict) String() string {
	if c.Kind == ShiftReduce {
		return fmt.Sprintf("state %d, token %s: shift/reduce conflict (shift %d over reduce %d)",
			c.State, c.Sym.Name, c.ShiftTo, c.Rule)
	}
	return fmt.Sprintf("state %d, token %s: reduce/reduce conflict (reduce %d over reduce %d)",
		c.State, c.Sym.Name, c.Winner, c.Rule)
}

// ConflictError fails table construction when the residual conflict count
// exceeds the grammar's %expect declaration.
type ConflictError struct {
	Conflicts []*Conflict
	Expected  int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("grammar has %d conflicts, %d expected", len(e.Conflicts), e.Expected)
}

// --- Cell candidates -------------------------------------------------------

// cell holds the candidate actions of one ACTION-table cell before
// resolution.
type cell struct {
	shiftTo *CFSMState // shift target, or nil
	reduces []int      // rule serials, ascending
}

func (c cell) empty() bool {
	return c.shiftTo == nil && len(c.reduces) == 0
}

// cellCandidates collects the candidate actions for (state, terminal): a
// shift if the state has an outgoing edge for the terminal, and a reduce
// for every completed item whose lookahead set contains the terminal.
func (lrgen *TableGenerator) cellCandidates(s *CFSMState, A *cfgrammar.Symbol) cell {
	var c cell
	c.shiftTo = lrgen.dfa.successor(s, A)
	seen := make(map[int]bool)
	for _, x := range s.items.Values() {
		i := asItem(x)
		if i.PeekSymbol() != nil {
			continue
		}
		if i.rule.Serial == 0 {
			continue // completing the start rule is encoded as accept, not reduce
		}
		if !s.lookahead(i).Has(A.Value) {
			continue
		}
		if !seen[i.rule.Serial] {
			seen[i.rule.Serial] = true
			c.reduces = append(c.reduces, i.rule.Serial)
		}
	}
	sort.Ints(c.reduces)
	return c
}

// resolveCell decides the action for a cell with candidates, applying
// precedence and associativity:
//
//	▪ reduce/reduce: the rule with the lowest serial (declared earliest)
//	  wins; every loser is reported as a conflict.
//	▪ shift/reduce with both precedences declared: the higher precedence
//	  wins; on equal precedence, left associativity reduces, right
//	  associativity shifts, and non-associativity turns the cell into an
//	  error entry.
//	▪ shift/reduce otherwise: shift wins (the Yacc-compatible default) and
//	  the conflict is reported.
//
// Shifting the end-of-input token in an accepting context is encoded as
// AcceptAction.
func (lrgen *TableGenerator) resolveCell(s *CFSMState, A *cfgrammar.Symbol, c cell) (int32, []*Conflict) {
	var conflicts []*Conflict
	reduce := -1
	if len(c.reduces) > 0 {
		reduce = c.reduces[0]
		for _, loser := range c.reduces[1:] {
			conflicts = append(conflicts, &Conflict{
				State:  s.ID,
				Sym:    A,
				Kind:   ReduceReduce,
				Rule:   loser,
				Winner: reduce,
			})
			tracer().Infof("state %d: reduce/reduce conflict on %s: rules %d/%d",
				s.ID, A.Name, reduce, loser)
		}
	}
	shift := shiftValue(A, c.shiftTo)
	if c.shiftTo == nil {
		return int32(reduce), conflicts
	}
	if reduce < 0 {
		return shift, conflicts
	}
	// shift/reduce: try precedence
	tokPrec, tokOK := lrgen.g.Precedence(A)
	rulePrec, ruleOK := lrgen.g.RulePrecedence(lrgen.g.Rule(reduce))
	if tokOK && ruleOK {
		switch {
		case tokPrec.Level > rulePrec.Level:
			return shift, conflicts
		case tokPrec.Level < rulePrec.Level:
			return int32(reduce), conflicts
		case tokPrec.Assoc == cfgrammar.AssocLeft:
			return int32(reduce), conflicts
		case tokPrec.Assoc == cfgrammar.AssocRight:
			return shift, conflicts
		case tokPrec.Assoc == cfgrammar.AssocNonassoc:
			tracer().Infof("state %d: %s is non-associative, cell becomes an error entry",
				s.ID, A.Name)
			return sparseNull, conflicts
		}
	}
	// unresolved: Yacc chooses shift
	conflicts = append(conflicts, &Conflict{
		State:   s.ID,
		Sym:     A,
		Kind:    ShiftReduce,
		ShiftTo: c.shiftTo.ID,
		Rule:    reduce,
		Winner:  -1,
	})
	tracer().Infof("state %d: shift/reduce conflict on %s: shift %d / reduce %d",
		s.ID, A.Name, c.shiftTo.ID, reduce)
	return shift, conflicts
}

// sparseNull is the null value of freshly created tables; resolveCell
// returns it for cells which resolution turns into error entries.
const sparseNull = int32(sparse.DefaultNullValue)

// shiftValue encodes a shift action; shifting end-of-input accepts.
func shiftValue(A *cfgrammar.Symbol, to *CFSMState) int32 {
	if to == nil {
		return sparseNull
	}
	if A.Value == cfgrammar.EOFType {
		return AcceptAction
	}
	return ShiftAction
}

func sortConflicts(conflicts []*Conflict) {
	sort.SliceStable(conflicts, func(a, b int) bool {
		if conflicts[a].State != conflicts[b].State {
			return conflicts[a].State < conflicts[b].State
		}
		return conflicts[a].Sym.Value < conflicts[b].Sym.Value
	})
}
