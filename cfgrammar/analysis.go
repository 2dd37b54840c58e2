package cfgrammar

import (
	"golang.org/x/tools/container/intsets"
)

// LRAnalysis is the static analysis of a grammar: the epsilon-derivability
// of its non-terminals and their FIRST- and FOLLOW-sets. All sets are
// computed once, to fixed point, at construction time. The fixpoint
// iterations run in rule-serial order, so identical grammars analyse
// identically across runs.
//
// Sets contain terminal token values; FIRST-sets additionally may contain
// EpsilonType (0) for epsilon-derivable symbols.
type LRAnalysis struct {
	g          *Grammar
	derivesEps map[*Symbol]bool
	first      map[*Symbol]*intsets.Sparse
	follow     map[*Symbol]*intsets.Sparse
}

// Analysis creates and runs the static analysis for a grammar.
func Analysis(g *Grammar) *LRAnalysis {
	ga := &LRAnalysis{
		g:          g,
		derivesEps: make(map[*Symbol]bool),
		first:      make(map[*Symbol]*intsets.Sparse),
		follow:     make(map[*Symbol]*intsets.Sparse),
	}
	ga.analyse()
	return ga
}

// Grammar returns the grammar this analysis is for.
func (ga *LRAnalysis) Grammar() *Grammar {
	return ga.g
}

// DerivesEpsilon is true iff sym can derive the empty word.
func (ga *LRAnalysis) DerivesEpsilon(sym *Symbol) bool {
	if sym == nil || sym.IsTerminal() {
		return false
	}
	return ga.derivesEps[sym]
}

// First returns FIRST(sym): the set of tokens which can begin a string
// derived from sym. For epsilon-derivable symbols the set contains
// EpsilonType. Callers must not mutate the returned set.
func (ga *LRAnalysis) First(sym *Symbol) *intsets.Sparse {
	if sym.IsTerminal() {
		s := &intsets.Sparse{}
		s.Insert(sym.Value)
		return s
	}
	return ga.first[sym]
}

// Follow returns FOLLOW(sym): the set of tokens which can immediately
// follow sym in a derivation of the start symbol. Callers must not mutate
// the returned set.
func (ga *LRAnalysis) Follow(sym *Symbol) *intsets.Sparse {
	return ga.follow[sym]
}

// FirstOfSeq returns FIRST(syms) for a symbol sequence, i.e. for the RHS
// suffix of an item. The set contains EpsilonType iff every symbol of the
// sequence derives epsilon (this includes the empty sequence).
func (ga *LRAnalysis) FirstOfSeq(syms []*Symbol) *intsets.Sparse {
	result := &intsets.Sparse{}
	for _, sym := range syms {
		if sym.IsTerminal() {
			result.Insert(sym.Value)
			return result
		}
		unionWithoutEps(result, ga.first[sym])
		if !ga.derivesEps[sym] {
			return result
		}
	}
	result.Insert(EpsilonType)
	return result
}

func (ga *LRAnalysis) analyse() {
	for _, nt := range ga.g.ntList {
		ga.first[nt] = &intsets.Sparse{}
		ga.follow[nt] = &intsets.Sparse{}
	}
	ga.epsilonDerivability()
	ga.firstSets()
	ga.followSets()
	dumpSets(ga)
}

// epsilonDerivability computes, to fixed point, which non-terminals derive
// the empty word. A non-terminal does iff one of its rules has an
// all-epsilon-derivable RHS.
func (ga *LRAnalysis) epsilonDerivability() {
	changed := true
	for changed {
		changed = false
		for _, r := range ga.g.rules {
			if ga.derivesEps[r.LHS] {
				continue
			}
			eps := true
			for _, sym := range r.RHS() {
				if sym.IsTerminal() || !ga.derivesEps[sym] {
					eps = false
					break
				}
			}
			if eps {
				ga.derivesEps[r.LHS] = true
				changed = true
			}
		}
	}
}

// firstSets computes the FIRST-sets of all non-terminals, to fixed point.
// Termination is guaranteed: sets only ever grow and are bounded by the
// terminal table.
func (ga *LRAnalysis) firstSets() {
	changed := true
	for changed {
		changed = false
		for _, r := range ga.g.rules {
			F := ga.first[r.LHS]
			eps := true
			for _, sym := range r.RHS() {
				if sym.IsTerminal() {
					if F.Insert(sym.Value) {
						changed = true
					}
					eps = false
					break
				}
				if unionWithoutEps(F, ga.first[sym]) {
					changed = true
				}
				if !ga.derivesEps[sym] {
					eps = false
					break
				}
			}
			if eps {
				if F.Insert(EpsilonType) {
					changed = true
				}
			}
		}
	}
}

// followSets computes the FOLLOW-sets of all non-terminals, to fixed point.
// The augmented start rule  #start → S #eof  seeds FOLLOW(S) with #eof.
func (ga *LRAnalysis) followSets() {
	changed := true
	for changed {
		changed = false
		for _, r := range ga.g.rules {
			rhs := r.RHS()
			for i, sym := range rhs {
				if sym.IsTerminal() {
					continue
				}
				F := ga.follow[sym]
				rest := ga.FirstOfSeq(rhs[i+1:])
				hadEps := rest.Has(EpsilonType)
				if unionWithoutEps(F, rest) {
					changed = true
				}
				if hadEps {
					n := F.Len()
					F.UnionWith(ga.follow[r.LHS])
					if F.Len() != n {
						changed = true
					}
				}
			}
		}
	}
}

// unionWithoutEps unions src into dst, ignoring the epsilon pseudo-token.
// It reports whether dst changed.
func unionWithoutEps(dst, src *intsets.Sparse) bool {
	if src == nil {
		return false
	}
	var tmp intsets.Sparse
	tmp.Copy(src)
	tmp.Remove(EpsilonType)
	n := dst.Len()
	dst.UnionWith(&tmp)
	return dst.Len() != n
}

func dumpSets(ga *LRAnalysis) {
	for _, nt := range ga.g.ntList {
		tracer().Debugf("eps(%s)=%v  FIRST(%s) = %s  FOLLOW(%s) = %s",
			nt.Name, ga.derivesEps[nt], nt.Name, ga.first[nt], nt.Name, ga.follow[nt])
	}
}
