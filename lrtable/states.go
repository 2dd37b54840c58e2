package lrtable

import (
	"fmt"
	"sort"

	"github.com/borgstrand/yakka/cfgrammar"
	"github.com/borgstrand/yakka/lrtable/iteratable"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"golang.org/x/tools/container/intsets"
)

// === CFSM Construction =====================================================

// CFSMState is a state within the CFSM for a grammar: a set of LR(1) items.
// The item cores live in an iteratable set; the lookahead set of every item
// is kept alongside, keyed by the item core.
type CFSMState struct {
	ID     uint            // serial ID of this state
	items  *iteratable.Set // closure items within this state
	la     map[Item]*intsets.Sparse
	Accept bool // is this an accepting state?
}

// CFSM edge between 2 states, directed and labelled with a symbol
type cfsmEdge struct {
	from  *CFSMState
	to    *CFSMState
	label *cfgrammar.Symbol
}

// Create a state from an item set
func state(id uint, iset *iteratable.Set) *CFSMState {
	s := &CFSMState{ID: id}
	if iset == nil {
		s.items = newItemSet()
	} else {
		s.items = iset
	}
	s.la = make(map[Item]*intsets.Sparse)
	return s
}

func (s *CFSMState) isErrorState() bool {
	return s.items.Size() == 0
}

func (s *CFSMState) String() string {
	return fmt.Sprintf("(state %d | [%d])", s.ID, s.items.Size())
}

// Dump is a debugging helper
func (s *CFSMState) Dump() {
	tracer().Debugf("--- state %03d -----------", s.ID)
	for n, x := range s.items.Values() {
		i := asItem(x)
		tracer().Debugf("item %2d = %v  %v", n, i, s.la[i])
	}
	tracer().Debugf("-------------------------")
}

// lookahead returns the lookahead set of an item within this state,
// creating an empty one on first access.
func (s *CFSMState) lookahead(i Item) *intsets.Sparse {
	if la, ok := s.la[i]; ok {
		return la
	}
	la := &intsets.Sparse{}
	s.la[i] = la
	return la
}

// kernel returns the kernel items of a state.
func (s *CFSMState) kernel() *iteratable.Set {
	return s.items.Copy().Subset(func(x interface{}) bool {
		return asItem(x).IsKernel()
	})
}

func (s *CFSMState) containsCompletedStartRule() bool {
	for _, x := range s.items.Values() {
		i := asItem(x)
		if i.rule.Serial == 0 && i.PeekSymbol() == nil {
			return true
		}
	}
	return false
}

// equals compares two states for canonical-LR(1) identity: same item cores
// with the same lookahead sets.
func (s *CFSMState) equals(items *iteratable.Set, la map[Item]*intsets.Sparse) bool {
	if !s.items.Equals(items) {
		return false
	}
	for _, x := range items.Values() {
		i := asItem(x)
		mine, theirs := s.la[i], la[i]
		if (mine == nil) != (theirs == nil) {
			return false
		}
		if mine != nil && !mine.Equals(theirs) {
			return false
		}
	}
	return true
}

// coreID returns a canonical signature of a state's kernel item cores,
// ignoring lookaheads. States with equal core signatures are merged during
// the LALR collapse.
func (s *CFSMState) coreID() string {
	kernel := s.kernel()
	serials := make([][2]int, 0, kernel.Size())
	for _, x := range kernel.Values() {
		i := asItem(x)
		serials = append(serials, [2]int{i.rule.Serial, i.dot})
	}
	sort.Slice(serials, func(a, b int) bool {
		if serials[a][0] != serials[b][0] {
			return serials[a][0] < serials[b][0]
		}
		return serials[a][1] < serials[b][1]
	})
	return fmt.Sprintf("%v", serials)
}

// Create an edge
func edge(from, to *CFSMState, label *cfgrammar.Symbol) *cfsmEdge {
	return &cfsmEdge{
		from:  from,
		to:    to,
		label: label,
	}
}

// We need this for the set of states. It sorts states by serial ID.
func stateComparator(s1, s2 interface{}) int {
	c1 := s1.(*CFSMState)
	c2 := s2.(*CFSMState)
	return utils.IntComparator(int(c1.ID), int(c2.ID))
}

// CFSM is the characteristic finite state machine for an LR grammar, i.e.
// the LR(1) state diagram. Will be constructed by a TableGenerator.
// Clients normally do not use it directly. Nevertheless, there are some
// methods defined on it, e.g, for debugging purposes, or even to compute
// your own tables from it.
type CFSM struct {
	g       *cfgrammar.Grammar // this CFSM is for Grammar g
	states  *treeset.Set       // all the states
	edges   *arraylist.List    // all the edges between states
	S0      *CFSMState         // start state
	cfsmIds uint               // serial IDs for CFSM states
}

// create an empty (initial) CFSM automata.
func emptyCFSM(g *cfgrammar.Grammar) *CFSM {
	c := &CFSM{g: g}
	c.states = treeset.NewWith(stateComparator)
	c.edges = arraylist.New()
	return c
}

// Add a state to the CFSM, unless an identical state is already present.
func (c *CFSM) addState(iset *iteratable.Set, la map[Item]*intsets.Sparse) *CFSMState {
	s := c.findState(iset, la)
	if s == nil {
		s = state(c.cfsmIds, iset)
		s.la = la
		c.cfsmIds++
		c.states.Add(s)
	}
	return s
}

// Find a CFSM state by items and lookaheads.
func (c *CFSM) findState(iset *iteratable.Set, la map[Item]*intsets.Sparse) *CFSMState {
	it := c.states.Iterator()
	for it.Next() {
		s := it.Value().(*CFSMState)
		if s.equals(iset, la) {
			return s
		}
	}
	return nil
}

func (c *CFSM) addEdge(s0, s1 *CFSMState, sym *cfgrammar.Symbol) *cfsmEdge {
	e := edge(s0, s1, sym)
	c.edges.Add(e)
	return e
}

func (c *CFSM) allEdges(s *CFSMState) []*cfsmEdge {
	it := c.edges.Iterator()
	r := make([]*cfsmEdge, 0, 2)
	for it.Next() {
		e := it.Value().(*cfsmEdge)
		if e.from == s {
			r = append(r, e)
		}
	}
	return r
}

// successor returns the target of the edge leaving s with the given label,
// or nil.
func (c *CFSM) successor(s *CFSMState, sym *cfgrammar.Symbol) *CFSMState {
	it := c.edges.Iterator()
	for it.Next() {
		e := it.Value().(*cfsmEdge)
		if e.from == s && e.label == sym {
			return e.to
		}
	}
	return nil
}

// Size returns the number of states of the CFSM.
func (c *CFSM) Size() int {
	return c.states.Size()
}

// === Closure and Goto-Set Operations =======================================

// Refer to "Crafting A Compiler" by Charles N. Fisher & Richard J. LeBlanc, Jr.
// Section 6.2.3 LR(1) Parsing, and to the goyacc lineage for the treatment
// of lookahead propagation through repeated passes.

// closure expands a state in place: for every item  A → α · B β  with
// lookahead set L, all items  B → · γ  are added, with lookahead
// FIRST(β) ∪ (L if β is epsilon-derivable). Lookahead sets of items already
// present keep growing, so passes repeat until nothing changes.
func (lrgen *TableGenerator) closure(s *CFSMState) *CFSMState {
	changed := true
	for changed {
		changed = false
		s.items.IterateOnce()
		for s.items.Next() {
			i := asItem(s.items.Item())
			B := i.PeekSymbol()
			if B == nil || B.IsTerminal() {
				continue
			}
			la := lrgen.derivedLookahead(s, i)
			for _, r := range lrgen.g.FindNonTermRules(B) {
				j := item(r, 0)
				if !s.items.Contains(j) {
					s.items.Add(j)
					changed = true
				}
				n := s.lookahead(j).Len()
				s.lookahead(j).UnionWith(la)
				if s.lookahead(j).Len() != n {
					changed = true
				}
			}
		}
	}
	return s
}

// derivedLookahead computes the lookahead set which items derived from i
// inherit: FIRST of the RHS rest behind the dot symbol, plus i's own
// lookahead if the rest derives epsilon.
func (lrgen *TableGenerator) derivedLookahead(s *CFSMState, i Item) *intsets.Sparse {
	la := &intsets.Sparse{}
	first := lrgen.ga.FirstOfSeq(i.Suffix())
	la.Copy(first)
	if la.Remove(cfgrammar.EpsilonType) {
		la.UnionWith(s.lookahead(i))
	}
	return la
}

// gotoSet computes the kernel of the state reached from s by reading A:
// all items of s with A after the dot, advanced by one, keeping their
// lookaheads.
func (lrgen *TableGenerator) gotoSet(s *CFSMState, A *cfgrammar.Symbol) (*iteratable.Set, map[Item]*intsets.Sparse) {
	gotoset := newItemSet()
	la := make(map[Item]*intsets.Sparse)
	for _, x := range s.items.Values() {
		i := asItem(x)
		if i.PeekSymbol() == A {
			ii := i.Advance()
			tracer().Debugf("goto(%s) -%s-> %s", i, A, ii)
			gotoset.Add(ii)
			l := &intsets.Sparse{}
			l.Copy(s.lookahead(i))
			la[ii] = l
		}
	}
	return gotoset, la
}

// Construct the characteristic finite state machine CFSM for a grammar.
// States are the canonical LR(1) item sets; the LALR collapse happens
// afterwards.
func (lrgen *TableGenerator) buildCFSM() *CFSM {
	tracer().Debugf("=== build CFSM ==================================================")
	G := lrgen.g
	cfsm := emptyCFSM(G)
	start, _ := StartItem(G.Rule(0))
	closure0 := newItemSet()
	closure0.Add(start)
	la := map[Item]*intsets.Sparse{start: eofSet()}
	cfsm.S0 = cfsm.addState(closure0, la)
	lrgen.closure(cfsm.S0)
	cfsm.S0.Dump()
	S := treeset.NewWith(stateComparator)
	S.Add(cfsm.S0)
	for S.Size() > 0 {
		s := S.Values()[0].(*CFSMState)
		S.Remove(s)
		G.EachSymbol(func(A *cfgrammar.Symbol) interface{} {
			gotoset, gotola := lrgen.gotoSet(s, A)
			if gotoset.Empty() {
				return nil
			}
			probe := state(cfsm.cfsmIds, gotoset)
			probe.la = gotola
			lrgen.closure(probe)
			snew := cfsm.findState(probe.items, probe.la)
			if snew == nil {
				snew = probe
				cfsm.cfsmIds++
				cfsm.states.Add(snew)
				S.Add(snew)
				if snew.containsCompletedStartRule() {
					snew.Accept = true
				}
			}
			cfsm.addEdge(s, snew, A)
			return nil
		})
	}
	tracer().Infof("CFSM has %d LR(1) states", cfsm.Size())
	return cfsm
}

func eofSet() *intsets.Sparse {
	s := &intsets.Sparse{}
	s.Insert(cfgrammar.EOFType)
	return s
}
