package lrpar

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/borgstrand/yakka"
	"github.com/borgstrand/yakka/cfgrammar"
	"github.com/borgstrand/yakka/lrpar/scanner"
	"github.com/borgstrand/yakka/lrtable"
	"github.com/emirpasic/gods/trees/binaryheap"
)

// CPCT+ error recovery.
//
// On encountering an error entry at (state, token) the recoverer searches
// for a minimum-cost sequence of token edits which brings the parser into a
// configuration from which a number of subsequent input tokens can be
// shifted without further error. Edit operations and their unit costs:
//
//     Insert(T)  pretend token T appeared before the error site   1
//     Delete     skip the token at the error site                 1
//     Shift      accept the token at the error site               0
//
// The search is a best-first expansion over parser configurations, ordered
// by cost, with deterministic tie-breaking (shift before delete before
// insert, inserts by ascending token value). All minimum-cost repair
// sequences are collected; the first one is applied to the input and
// parsing resumes. See Corchuelo et al. for the underlying idea; the
// "plus" part is collecting the complete minimum-cost set.

// RepairOp is a kind of token edit.
type RepairOp int8

// The edit operations of a repair sequence.
const (
	ShiftOp RepairOp = iota
	DeleteOp
	InsertOp
)

// Repair is a single token edit: shift or delete the token at the current
// input position, or insert a synthesized token before it.
type Repair struct {
	Op  RepairOp
	Sym *cfgrammar.Symbol // the inserted terminal (InsertOp only)
	Tok yakka.Token       // the affected input token (ShiftOp, DeleteOp)
}

func (r Repair) String() string {
	switch r.Op {
	case ShiftOp:
		return fmt.Sprintf("Shift(%s)", r.Tok.Lexeme())
	case DeleteOp:
		return fmt.Sprintf("Delete(%s)", r.Tok.Lexeme())
	}
	return fmt.Sprintf("Insert(%s)", r.Sym.Name)
}

// RepairSequence is an ordered list of token edits which transforms the
// input into something the parser can continue from.
type RepairSequence []Repair

func (rs RepairSequence) String() string {
	var b bytes.Buffer
	for n, r := range rs {
		if n > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.String())
	}
	return b.String()
}

// Cost is the summed edit cost of a repair sequence.
func (rs RepairSequence) Cost() int {
	cost := 0
	for _, r := range rs {
		if r.Op != ShiftOp {
			cost++
		}
	}
	return cost
}

// config is a node of the recovery search: a parser state stack, a position
// in the buffered input, the edits taken so far and their cost. shifts
// counts the trailing run of consecutive shifts, which certifies a repair
// when it reaches the parser's lookahead setting.
type config struct {
	stack   []uint
	pos     int
	repairs []Repair
	cost    int
	shifts  int
	serial  int // insertion order, for deterministic heap ordering
	done    bool
}

// recoverAt is called by the main parser loop with the cursor at an
// unparseable token. It reports the error, runs the repair search, applies
// the best repair to the buffered input, and returns the new cursor
// position. When no repair can be found it falls back to skipping input;
// at the end of input it gives up and returns -1.
func (p *Parser) recoverAt(cursor int) int {
	errTok := p.tokens[cursor]
	tracer().Infof("syntax error at %s (%q)", errTok.Span(), errTok.Lexeme())
	repairs := p.repairSearch(cursor)
	diag := Diagnostic{
		Kind:    ParseError,
		Span:    errTok.Span(),
		Message: fmt.Sprintf("unexpected %s", p.displayName(errTok)),
		Repairs: repairs,
	}
	if len(repairs) == 0 {
		// budget exhausted or nothing found: degrade to skipping tokens
		// until one is shiftable again
		p.diags = append(p.diags, diag)
		return p.skipTokens(cursor)
	}
	p.diags = append(p.diags, diag)
	tracer().Infof("applying repair: %s", repairs[0])
	p.applyRepair(cursor, repairs[0])
	return cursor
}

func (p *Parser) displayName(tok yakka.Token) string {
	if sym := p.G.Terminal(int(tok.TokType())); sym != nil {
		return p.G.DisplayName(sym)
	}
	if tok.TokType() == cfgrammar.EOFType {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Lexeme())
}

// skipTokens reports skipped input and advances the cursor past it, to the
// first token the current stack can shift (possibly end of input).
func (p *Parser) skipTokens(cursor int) int {
	stack := p.stateIDs()
	from := cursor
	for ; cursor < len(p.tokens)-1; cursor++ {
		if _, ok := p.advance(stack, int(p.tokens[cursor].TokType())); ok {
			break
		}
	}
	if cursor > from {
		span := p.tokens[from].Span().Extend(p.tokens[cursor-1].Span())
		p.diags = append(p.diags, Diagnostic{
			Kind:    SkippedInput,
			Span:    span,
			Message: fmt.Sprintf("%d tokens skipped", cursor-from),
		})
	}
	if cursor >= len(p.tokens)-1 &&
		p.actionT.Value(p.stack[len(p.stack)-1].stateID, cfgrammar.EOFType) == p.actionT.NullValue() {
		return -1 // not even EOF is parseable; give up
	}
	return cursor
}

// applyRepair rewrites the buffered token stream according to a repair
// sequence: deletions drop input tokens, insertions splice in synthesized
// tokens with an empty span at the error site. The parser then simply
// continues reading the repaired stream.
func (p *Parser) applyRepair(cursor int, rs RepairSequence) {
	repaired := append([]yakka.Token{}, p.tokens[:cursor]...)
	j := cursor
	for _, r := range rs {
		switch r.Op {
		case ShiftOp:
			repaired = append(repaired, p.tokens[j])
			j++
		case DeleteOp:
			j++
		case InsertOp:
			at := p.tokens[j].Span().From()
			repaired = append(repaired, scanner.MakeDefaultToken(
				yakka.TokType(r.Sym.Value), p.G.DisplayName(r.Sym), yakka.Span{at, at}))
		}
	}
	repaired = append(repaired, p.tokens[j:]...)
	p.tokens = repaired
}

// repairSearch is the best-first CPCT+ search. It returns all minimum-cost
// repair sequences found within the time budget (bounded by the parser's
// maxRepairs setting), with trailing shifts trimmed. The first sequence is
// the one to apply.
func (p *Parser) repairSearch(cursor int) []RepairSequence {
	deadline := time.Now().Add(p.budget)
	serial := 0
	heap := binaryheap.NewWith(configComparator)
	start := &config{stack: p.stateIDs(), pos: cursor}
	heap.Push(start)
	seen := make(map[memoKey]int) // (stack, position) → best cost
	bestCost := -1
	var solutions []*config
	for !heap.Empty() {
		if time.Now().After(deadline) {
			tracer().Infof("recovery budget exhausted, %d repairs found", len(solutions))
			break
		}
		x, _ := heap.Pop()
		c := x.(*config)
		if bestCost >= 0 && c.cost > bestCost {
			break // everything beyond is more expensive; heap is cost-ordered
		}
		if c.cost > p.costCeiling {
			break // edit-cost ceiling; give up and fall back to skipping
		}
		if c.done || c.shifts >= p.lookahead {
			if bestCost < 0 {
				bestCost = c.cost
			}
			if len(solutions) < p.maxRepairs {
				solutions = append(solutions, c)
			}
			continue
		}
		key := memo(c)
		if best, ok := seen[key]; ok && best < c.cost {
			continue // a cheaper path reached this configuration before
		}
		seen[key] = c.cost
		serial = p.expand(c, heap, serial)
	}
	return p.collectRepairs(solutions)
}

// expand pushes all successor configurations of c: shifting the real input
// token, deleting it, and inserting each insertable terminal. Expansion
// order (shift, delete, inserts by token value) together with the serial
// numbers keeps equal-cost configurations deterministically ordered.
func (p *Parser) expand(c *config, heap *binaryheap.Heap, serial int) int {
	tok := p.tokens[c.pos]
	tokval := int(tok.TokType())
	// Shift: accept the real input token, cost 0
	if stack, ok := p.advance(c.stack, tokval); ok {
		serial++
		succ := &config{
			stack:   stack,
			pos:     c.pos + 1,
			repairs: appendRepair(c.repairs, Repair{Op: ShiftOp, Tok: tok}),
			cost:    c.cost,
			shifts:  c.shifts + 1,
			serial:  serial,
		}
		if tokval == cfgrammar.EOFType {
			succ.pos = c.pos // there is nothing behind EOF
			succ.done = true // accepting (or shifting) EOF certifies the repair
		}
		heap.Push(succ)
	}
	// Delete: skip the real input token, cost 1 (EOF cannot be deleted)
	if tokval != cfgrammar.EOFType {
		serial++
		heap.Push(&config{
			stack:   c.stack,
			pos:     c.pos + 1,
			repairs: appendRepair(c.repairs, Repair{Op: DeleteOp, Tok: tok}),
			cost:    c.cost + 1,
			serial:  serial,
		})
	}
	// Insert(T) for every insertable terminal, cost 1
	for _, sym := range p.insertables() {
		if stack, ok := p.advance(c.stack, sym.Value); ok {
			serial++
			heap.Push(&config{
				stack:   stack,
				pos:     c.pos,
				repairs: appendRepair(c.repairs, Repair{Op: InsertOp, Sym: sym}),
				cost:    c.cost + 1,
				serial:  serial,
			})
		}
	}
	return serial
}

// insertables returns the terminals recovery may insert, in ascending
// token-value order: everything except end-of-input, the error token, and
// tokens declared %avoid_insert.
func (p *Parser) insertables() []*cfgrammar.Symbol {
	if p.insertableSyms != nil {
		return p.insertableSyms
	}
	var syms []*cfgrammar.Symbol
	p.G.EachTerminal(func(A *cfgrammar.Symbol) interface{} {
		if A.Value == cfgrammar.EOFType || A.Value == cfgrammar.ErrorType {
			return nil
		}
		if p.G.AvoidInsert(A) {
			return nil
		}
		syms = append(syms, A)
		return nil
	})
	sortSymbolsByValue(syms)
	p.insertableSyms = syms
	return syms
}

// advance simulates the parser on a stack of state IDs: it performs any
// pending reductions and then shifts the token, without touching semantic
// values. It reports whether the token was consumable (shifting and
// accepting both qualify).
func (p *Parser) advance(stack []uint, tokval int) ([]uint, bool) {
	stack = append([]uint{}, stack...)
	for steps := 0; steps < maxReduceChain; steps++ {
		top := stack[len(stack)-1]
		action := p.actionT.Value(top, tokval)
		switch {
		case action == p.actionT.NullValue():
			return nil, false
		case action == lrtable.AcceptAction:
			return stack, true
		case action == lrtable.ShiftAction:
			next := p.gotoT.Value(top, tokval)
			if next == p.gotoT.NullValue() {
				return nil, false
			}
			return append(stack, uint(next)), true
		default: // reduce
			rule := p.G.Rule(int(action))
			stack = stack[:len(stack)-len(rule.RHS())]
			next := p.gotoT.Value(stack[len(stack)-1], rule.LHS.Value)
			if next == p.gotoT.NullValue() {
				return nil, false
			}
			stack = append(stack, uint(next))
		}
	}
	return nil, false // reduce cycle; only reachable with degenerate grammars
}

// maxReduceChain caps the reductions advance may perform for a single
// token, guarding against epsilon-reduction cycles.
const maxReduceChain = 4096

// collectRepairs turns the solved configurations into reportable repair
// sequences: trailing shifts (the certification lookahead) are trimmed and
// duplicates dropped.
func (p *Parser) collectRepairs(solutions []*config) []RepairSequence {
	var rs []RepairSequence
	seen := make(map[string]bool)
	for _, c := range solutions {
		seq := RepairSequence(trimShifts(c.repairs))
		if len(seq) == 0 {
			continue
		}
		if key := seq.String(); !seen[key] {
			seen[key] = true
			rs = append(rs, seq)
		}
	}
	return rs
}

func trimShifts(repairs []Repair) []Repair {
	end := len(repairs)
	for end > 0 && repairs[end-1].Op == ShiftOp {
		end--
	}
	return repairs[:end]
}

func appendRepair(repairs []Repair, r Repair) []Repair {
	seq := make([]Repair, len(repairs)+1)
	copy(seq, repairs)
	seq[len(repairs)] = r
	return seq
}

// --- Search bookkeeping -----------------------------------------------------

type memoKey struct {
	stack string
	pos   int
}

// memo prunes dominated configurations: reaching the same (stack, input
// position) again at higher cost cannot lead to a cheaper repair.
func memo(c *config) memoKey {
	var b bytes.Buffer
	for _, s := range c.stack {
		fmt.Fprintf(&b, "%d,", s)
	}
	return memoKey{stack: b.String(), pos: c.pos}
}

// configComparator orders the search heap by cost; among equal costs the
// configuration created first wins, which realizes the shift-over-delete-
// over-insert preference of the expansion order.
func configComparator(a, b interface{}) int {
	ca := a.(*config)
	cb := b.(*config)
	if ca.cost != cb.cost {
		return ca.cost - cb.cost
	}
	return ca.serial - cb.serial
}

func sortSymbolsByValue(syms []*cfgrammar.Symbol) {
	sort.Slice(syms, func(a, b int) bool {
		return syms[a].Value < syms[b].Value
	})
}
