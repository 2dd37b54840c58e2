package lrpar

import (
	"fmt"
	"time"

	"github.com/borgstrand/yakka"
	"github.com/borgstrand/yakka/cfgrammar"
	"github.com/borgstrand/yakka/lrpar/scanner"
	"github.com/borgstrand/yakka/lrtable"
	"github.com/npillmayer/schuko/gconf"
)

// Listener is a type for client callbacks during a parse: it receives every
// terminal the parser shifts and every rule it reduces, and produces the
// semantic values which travel on the parse stack. A nil listener is
// allowed; the parse then merely recognizes.
type Listener interface {
	// Terminal produces the semantic value of a shifted token.
	Terminal(tok yakka.Token) interface{}
	// Reduce produces the semantic value of a reduction. The args carry
	// the values of the RHS symbols in order; span covers the input the
	// whole rule consumed. A non-nil error is recorded as a diagnostic
	// and does not stop the parse.
	Reduce(rule *cfgrammar.Rule, args []*RuleNode, span yakka.Span) (interface{}, error)
}

// RuleNode represents a node occurring during a parse: a shifted terminal
// or a reduced rule, together with its input extent and semantic value.
type RuleNode struct {
	sym    *cfgrammar.Symbol
	Extent yakka.Span  // span of input symbols this node covers
	Value  interface{} // user defined value
}

// Symbol returns the grammar symbol a RuleNode refers to.
// It is either a terminal or the LHS of a reduced rule.
func (rnode *RuleNode) Symbol() *cfgrammar.Symbol {
	return rnode.sym
}

// ParseResult is what a parse returns: whether the input was accepted, the
// semantic value of the start symbol (nil without a listener), and the
// batch of diagnostics collected along the way. An input is part of the
// grammar's language iff it is accepted with zero diagnostics.
type ParseResult struct {
	Accepted    bool
	Value       interface{}
	Diagnostics []Diagnostic
}

// Parser is an LALR(1) parser with CPCT+ error recovery. Create and
// initialize one with lrpar.NewParser(…).
//
// A Parser is not safe for concurrent use; the tables are, and may back any
// number of parsers in different goroutines.
type Parser struct {
	G       *cfgrammar.Grammar
	stack   []stackitem    // parser stack
	gotoT   *lrtable.Table // GOTO table
	actionT *lrtable.Table // ACTION table
	tokens  []yakka.Token  // buffered input lexemes, EOF-terminated
	diags   []Diagnostic

	budget      time.Duration // recovery budget per error site
	costCeiling int           // maximum summed edit cost of a repair
	maxRepairs  int           // max repair sequences reported per error
	lookahead   int           // shifts needed to certify a repair

	insertableSyms []*cfgrammar.Symbol // cached insert candidates
}

// We store tuples of state-IDs, symbol values, spans and semantic values on
// the parse stack.
type stackitem struct {
	stateID uint        // ID of a CFSM state
	symID   int         // value of a grammar symbol (terminal or non-terminal)
	span    yakka.Span  // input span over which this symbol reaches
	value   interface{} // semantic value produced by the listener
}

// Option configures a parser.
type Option func(p *Parser)

// WithRecoveryBudget sets the wall-clock budget the CPCT+ search may spend
// per error site. The default is 500ms.
func WithRecoveryBudget(d time.Duration) Option {
	return func(p *Parser) {
		p.budget = d
	}
}

// WithCostCeiling bounds the summed edit cost of repair sequences the
// recovery search will consider. The default is 8.
func WithCostCeiling(n int) Option {
	return func(p *Parser) {
		p.costCeiling = n
	}
}

// WithMaxRepairs bounds the number of minimum-cost repair sequences
// reported per error. The default is 3.
func WithMaxRepairs(n int) Option {
	return func(p *Parser) {
		p.maxRepairs = n
	}
}

// WithLookahead sets the number of consecutive input tokens which must be
// shiftable after a repair for the repair to count as successful. The
// default is 3.
func WithLookahead(n int) Option {
	return func(p *Parser) {
		p.lookahead = n
	}
}

// NewParser creates an LALR(1) parser from a grammar and its tables.
func NewParser(g *cfgrammar.Grammar, gotoTable, actionTable *lrtable.Table, opts ...Option) *Parser {
	parser := &Parser{
		G:           g,
		stack:       make([]stackitem, 0, 512),
		gotoT:       gotoTable,
		actionT:     actionTable,
		budget:      500 * time.Millisecond,
		costCeiling: 8,
		maxRepairs:  3,
		lookahead:   3,
	}
	for _, opt := range opts {
		opt(parser)
	}
	return parser
}

// Parse starts a new parse, given a scanner tokenizing the input. The
// parser must have been initialized. Lex errors and syntax errors do not
// stop the parse; they are collected into the result's diagnostics.
func (p *Parser) Parse(scan scanner.Tokenizer, listener Listener) (*ParseResult, error) {
	tracer().Debugf("~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~")
	if p.G == nil || p.gotoT == nil || p.actionT == nil {
		return nil, fmt.Errorf("LALR(1)-parser not initialized")
	}
	p.stack = p.stack[:0]
	p.diags = nil
	p.bufferTokens(scan)
	p.stack = append(p.stack, stackitem{0, 0, yakka.Span{0, 0}, nil}) // push initial state
	var accepted bool
	cursor := 0
	for {
		tok := p.tokens[cursor]
		tokval := int(tok.TokType())
		state := p.stack[len(p.stack)-1] // TOS
		action := p.actionT.Value(state.stateID, tokval)
		tracer().Debugf("action(%d,%q)=%s", state.stateID, tok.Lexeme(), actionString(action, p.actionT))
		if action == p.actionT.NullValue() {
			cursor = p.recoverAt(cursor)
			if cursor < 0 {
				break // recovery gave up at end of input
			}
			continue
		}
		if action == lrtable.AcceptAction {
			accepted = true
			break
		}
		if action == lrtable.ShiftAction {
			nextstate := uint(p.gotoT.Value(state.stateID, tokval))
			tracer().Debugf("shifting %q, next state = %d", tok.Lexeme(), nextstate)
			var value interface{}
			if listener != nil {
				value = listener.Terminal(tok)
			}
			p.stack = append(p.stack, // push a terminal state onto stack
				stackitem{nextstate, tokval, tok.Span(), value})
			cursor++
			continue
		}
		// action is a reduce entry
		rule := p.G.Rule(int(action))
		if ok := p.reduce(rule, tok, listener); !ok {
			break
		}
	}
	result := &ParseResult{
		Accepted:    accepted,
		Diagnostics: p.diags,
	}
	if accepted {
		result.Value = p.stack[len(p.stack)-1].value
	}
	return result, nil
}

// bufferTokens drains the scanner into the parser's token buffer. The
// buffer always ends with the EOF token. Input is finite per the scanner
// contract, so buffering the lexeme sequence is sound; it gives the error
// recovery random access to the input. Lex errors become diagnostics.
func (p *Parser) bufferTokens(scan scanner.Tokenizer) {
	p.tokens = p.tokens[:0]
	scan.SetErrorHandler(func(e error) {
		d := Diagnostic{Kind: LexError, Message: e.Error()}
		if lexerr, ok := e.(*scanner.LexError); ok {
			d.Span = lexerr.Span
			d.Message = lexerr.Msg
		}
		p.diags = append(p.diags, d)
	})
	for {
		tok := scan.NextToken()
		p.tokens = append(p.tokens, tok)
		if tok.TokType() == cfgrammar.EOFType {
			return
		}
	}
}

// reduce performs a reduce action for a rule
//
//	LHS --> X1 ... Xn   (with X being terminals or non-terminals)
//
// The top n stack entries hold the states and values for X1 … Xn; they are
// replaced by a single entry for LHS, whose span is the union of theirs.
// Epsilon-reductions produce an empty span just before the lookahead.
func (p *Parser) reduce(rule *cfgrammar.Rule, lookahead yakka.Token, listener Listener) bool {
	tracer().Debugf("reduce %v", rule)
	n := len(rule.RHS())
	handle := p.stack[len(p.stack)-n:]
	var span yakka.Span
	args := make([]*RuleNode, n)
	for k, tos := range handle {
		sym := rule.RHS()[k]
		if tos.symID != sym.Value {
			tracer().Errorf("expected %v on stack, got %d", sym, tos.symID)
		}
		if k == 0 {
			span = tos.span
		} else {
			span = span.Extend(tos.span)
		}
		args[k] = &RuleNode{sym: sym, Extent: tos.span, Value: tos.value}
	}
	if n == 0 { // epsilon was derived just before the lookahead
		pos := lookahead.Span().From()
		span = yakka.Span{pos, pos}
	}
	var value interface{}
	if listener != nil {
		var aerr error
		value, aerr = listener.Reduce(rule, args, span)
		if aerr != nil {
			// a failed action neither stops nor corrupts the parse
			p.diags = append(p.diags, Diagnostic{
				Kind:    ActionError,
				Span:    span,
				Message: aerr.Error(),
			})
			value = nil
		}
	}
	p.stack = p.stack[:len(p.stack)-n] // pop the handle
	state := p.stack[len(p.stack)-1]   // TOS
	nextstate := p.gotoT.Value(state.stateID, rule.LHS.Value)
	if nextstate == p.gotoT.NullValue() {
		// unreachable with well-formed tables
		if gconf.GetBool("panic-on-inconsistent-table") {
			panic(fmt.Sprintf("GOTO(%d, %s) is undefined; tables are inconsistent",
				state.stateID, rule.LHS.Name))
		}
		tracer().Errorf("GOTO(%d, %s) is undefined; tables are inconsistent", state.stateID, rule.LHS.Name)
		p.diags = append(p.diags, Diagnostic{
			Kind:    ParseError,
			Span:    span,
			Message: fmt.Sprintf("inconsistent parse tables for %s", rule.LHS.Name),
		})
		return false
	}
	tracer().Debugf("reduced to next state = %d", nextstate)
	p.stack = append(p.stack, // push a non-terminal state onto stack
		stackitem{uint(nextstate), rule.LHS.Value, span, value})
	return true
}

// stateIDs returns a copy of the state column of the parse stack, which is
// all the recovery search needs to simulate the parser.
func (p *Parser) stateIDs() []uint {
	states := make([]uint, len(p.stack))
	for k, item := range p.stack {
		states[k] = item.stateID
	}
	return states
}

// actionString is a short helper to stringify an action table entry.
func actionString(v int32, m *lrtable.Table) string {
	if v == m.NullValue() {
		return "<none>"
	} else if v == lrtable.AcceptAction {
		return "<accept>"
	} else if v == lrtable.ShiftAction {
		return "<shift>"
	}
	return fmt.Sprintf("<reduce %d>", v)
}
