package lrtable

import (
	"sort"
)

// === LALR Collapse =========================================================

// collapse merges all LR(1) states which share an identical kernel core
// (the same items, ignoring lookaheads) into one LALR(1) state, unioning
// the lookahead sets per item. Collapsing cannot introduce shift/reduce
// conflicts which the canonical machine did not have, but may introduce
// reduce/reduce conflicts; those surface during table construction and are
// reported there.
//
// Merged states are renumbered in the order of the lowest constituent
// LR(1) state ID, so identical grammars produce identical state numbers
// across runs.
func (lrgen *TableGenerator) collapse(cfsm *CFSM) *CFSM {
	groups := make(map[string][]*CFSMState)
	var order []string // core signatures by lowest state ID
	it := cfsm.states.Iterator()
	for it.Next() { // states iterate by ascending ID
		s := it.Value().(*CFSMState)
		core := s.coreID()
		if _, ok := groups[core]; !ok {
			order = append(order, core)
		}
		groups[core] = append(groups[core], s)
	}
	merged := emptyCFSM(cfsm.g)
	represents := make(map[uint]*CFSMState) // old state ID → merged state
	for _, core := range order {
		group := groups[core]
		m := state(merged.cfsmIds, group[0].items.Copy())
		merged.cfsmIds++
		for _, old := range group {
			for _, x := range old.items.Values() {
				i := asItem(x)
				m.items.Add(i) // same core, closures may still differ in la
				m.lookahead(i).UnionWith(old.lookahead(i))
			}
			if old.Accept {
				m.Accept = true
			}
			represents[old.ID] = m
		}
		merged.states.Add(m)
		if group[0] == cfsm.S0 || containsState(group, cfsm.S0) {
			merged.S0 = m
		}
	}
	lrgen.remapEdges(cfsm, merged, represents)
	tracer().Infof("LALR collapse: %d LR(1) states → %d LALR(1) states",
		cfsm.Size(), merged.Size())
	return merged
}

func containsState(group []*CFSMState, s *CFSMState) bool {
	for _, m := range group {
		if m == s {
			return true
		}
	}
	return false
}

// remapEdges rebuilds the edge list of the collapsed machine. Edges of
// merged siblings coincide after the mapping and are deduplicated; they are
// added in (from, symbol value) order for deterministic reports.
func (lrgen *TableGenerator) remapEdges(cfsm, merged *CFSM, represents map[uint]*CFSMState) {
	type edgeKey struct {
		from, to uint
		sym      int
	}
	seen := make(map[edgeKey]bool)
	var keys []edgeKey
	bySym := make(map[edgeKey]*cfsmEdge)
	it := cfsm.edges.Iterator()
	for it.Next() {
		e := it.Value().(*cfsmEdge)
		from := represents[e.from.ID]
		to := represents[e.to.ID]
		k := edgeKey{from: from.ID, to: to.ID, sym: e.label.Value}
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
		bySym[k] = edge(from, to, e.label)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].from != keys[b].from {
			return keys[a].from < keys[b].from
		}
		return keys[a].sym < keys[b].sym
	})
	for _, k := range keys {
		merged.edges.Add(bySym[k])
	}
}
