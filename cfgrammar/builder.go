package cfgrammar

import "sort"

// GrammarBuilder is an API to construct grammars programmatically, rule by
// rule. The builder owns the symbol tables while the grammar is under
// construction; a call to Grammar() validates the rule set, synthesizes the
// augmented start rule and freezes everything into an immutable Grammar.
//
//	b := NewGrammarBuilder("Expressions")
//	b.LHS("Sum").N("Sum").T("+", '+').N("Product").End()
//	b.LHS("Sum").N("Product").End()
//	…
//	g, err := b.Grammar()
type GrammarBuilder struct {
	name         string
	actionType   string
	rules        []*Rule
	terminals    map[string]*Symbol
	nonterminals map[string]*Symbol
	termsByValue map[int]*Symbol
	termList     []*Symbol
	ntList       []*Symbol
	startName    string
	preclevel    int
	precByName   map[string]Precedence
	avoidByName  map[string]bool
	implByName   map[string]bool
	eppByName    map[string]string
	expect       int
	errors       ErrorList
}

// NewGrammarBuilder creates a new grammar builder for a grammar with the
// given name.
func NewGrammarBuilder(name string) *GrammarBuilder {
	return &GrammarBuilder{
		name:         name,
		terminals:    make(map[string]*Symbol),
		nonterminals: make(map[string]*Symbol),
		termsByValue: make(map[int]*Symbol),
		precByName:   make(map[string]Precedence),
		avoidByName:  make(map[string]bool),
		implByName:   make(map[string]bool),
		eppByName:    make(map[string]string),
	}
}

func (b *GrammarBuilder) terminal(name string, tokval int) *Symbol {
	if sym, ok := b.terminals[name]; ok {
		return sym
	}
	if old := b.termsByValue[tokval]; old != nil {
		b.errors = append(b.errors, &GrammarError{
			Kind: DuplicateRule,
			Name: name,
			Msg:  "terminals " + old.Name + " and " + name + " share the same token value",
		})
	}
	sym := &Symbol{Name: name, Value: tokval}
	b.terminals[name] = sym
	b.termsByValue[tokval] = sym
	b.termList = append(b.termList, sym)
	return sym
}

func (b *GrammarBuilder) nonterminal(name string) *Symbol {
	if sym, ok := b.nonterminals[name]; ok {
		return sym
	}
	sym := &Symbol{Name: name, Value: NonTermBase + len(b.ntList)}
	b.nonterminals[name] = sym
	b.ntList = append(b.ntList, sym)
	return sym
}

// Terminal pre-declares a terminal with an explicit token value, without
// it appearing in a rule yet. The Yacc frontend uses this for %token
// declarations.
func (b *GrammarBuilder) Terminal(name string, tokval int) *GrammarBuilder {
	b.terminal(name, tokval)
	return b
}

// SetStart declares the start symbol. Without a declaration, the LHS of the
// first rule is the start symbol.
func (b *GrammarBuilder) SetStart(name string) *GrammarBuilder {
	b.startName = name
	return b
}

// SetActionType declares the semantic value type of the grammar's actions
// (%actiontype). The text is opaque to grammar analysis.
func (b *GrammarBuilder) SetActionType(typ string) *GrammarBuilder {
	b.actionType = typ
	return b
}

// Left declares tokens to be left-associative, on a new precedence level.
// Repeated calls to Left/Right/Nonassoc declare levels of increasing
// binding strength, Yacc-style.
func (b *GrammarBuilder) Left(names ...string) *GrammarBuilder {
	return b.precedence(AssocLeft, names)
}

// Right declares tokens to be right-associative, on a new precedence level.
func (b *GrammarBuilder) Right(names ...string) *GrammarBuilder {
	return b.precedence(AssocRight, names)
}

// Nonassoc declares tokens to be non-associative, on a new precedence
// level. A shift/reduce conflict on a non-associative token of equal
// precedence is resolved to an error entry.
func (b *GrammarBuilder) Nonassoc(names ...string) *GrammarBuilder {
	return b.precedence(AssocNonassoc, names)
}

func (b *GrammarBuilder) precedence(assoc AssocKind, names []string) *GrammarBuilder {
	b.preclevel++
	for _, name := range names {
		b.precByName[name] = Precedence{Level: b.preclevel, Assoc: assoc}
	}
	return b
}

// AvoidInsert declares tokens which error recovery must never propose to
// insert.
func (b *GrammarBuilder) AvoidInsert(names ...string) *GrammarBuilder {
	for _, name := range names {
		b.avoidByName[name] = true
	}
	return b
}

// ImplicitTokens declares the %implicit_tokens set.
func (b *GrammarBuilder) ImplicitTokens(names ...string) *GrammarBuilder {
	for _, name := range names {
		b.implByName[name] = true
	}
	return b
}

// Epp declares a display name for a token, used in diagnostics instead of
// the symbol name.
func (b *GrammarBuilder) Epp(name, display string) *GrammarBuilder {
	b.eppByName[name] = display
	return b
}

// Expect declares the number of conflicts the grammar is expected to
// produce. Table construction fails if the actual count exceeds it.
func (b *GrammarBuilder) Expect(n int) *GrammarBuilder {
	b.expect = n
	return b
}

// LHS starts a new rule with the given non-terminal as its left hand side.
func (b *GrammarBuilder) LHS(name string) *RuleBuilder {
	return &RuleBuilder{
		b:   b,
		lhs: b.nonterminal(name),
	}
}

// RuleBuilder is a builder type for grammar rules. Clients obtain one
// through GrammarBuilder.LHS and chain symbols onto it.
type RuleBuilder struct {
	b      *GrammarBuilder
	lhs    *Symbol
	rhs    []*Symbol
	prec   string
	action string
}

// N appends a non-terminal to the rule under construction.
func (rb *RuleBuilder) N(name string) *RuleBuilder {
	rb.rhs = append(rb.rhs, rb.b.nonterminal(name))
	return rb
}

// T appends a terminal with the given token value to the rule under
// construction.
func (rb *RuleBuilder) T(name string, tokval int) *RuleBuilder {
	rb.rhs = append(rb.rhs, rb.b.terminal(name, tokval))
	return rb
}

// Error appends the error synchronization token to the rule under
// construction.
func (rb *RuleBuilder) Error() *RuleBuilder {
	rb.rhs = append(rb.rhs, rb.b.terminal("#error", ErrorType))
	return rb
}

// Prec sets a %prec override: the rule takes the precedence of the named
// token instead of the precedence of its last terminal.
func (rb *RuleBuilder) Prec(tokname string) *RuleBuilder {
	rb.prec = tokname
	return rb
}

// Action attaches opaque semantic action text to the rule under
// construction. The analysis never interprets it.
func (rb *RuleBuilder) Action(text string) *RuleBuilder {
	rb.action = text
	return rb
}

// End finishes a rule and appends it to the grammar under construction.
func (rb *RuleBuilder) End() *Rule {
	r := newRule(rb.lhs, rb.rhs)
	r.Action = rb.action
	if rb.prec != "" {
		if sym, ok := rb.b.terminals[rb.prec]; ok {
			r.prec = sym
		} else {
			rb.b.errors = append(rb.b.errors, &GrammarError{
				Kind: UnknownPrecSymbol,
				Name: rb.prec,
			})
		}
	}
	for _, old := range rb.b.rules {
		if old.LHS == r.LHS && old.eqRHS(r.rhs) {
			rb.b.errors = append(rb.b.errors, &GrammarError{
				Kind: DuplicateRule,
				Name: r.LHS.Name,
				Msg:  "rule " + r.String() + " declared twice",
			})
			return old
		}
	}
	rb.b.rules = append(rb.b.rules, r)
	return r
}

// Epsilon finishes a rule with an empty RHS.
func (rb *RuleBuilder) Epsilon() *Rule {
	rb.rhs = nil
	return rb.End()
}

// EOF appends the end-of-input token to a rule and finishes it.
func (rb *RuleBuilder) EOF() *Rule {
	rb.rhs = append(rb.rhs, rb.b.terminal("#eof", EOFType))
	return rb.End()
}

// Grammar validates the rule set and returns the finished grammar. All
// validation findings are collected; if any of them is fatal, the grammar
// is nil and the error is an ErrorList.
func (b *GrammarBuilder) Grammar() (*Grammar, error) {
	errors := b.errors
	// resolve the start symbol
	var start *Symbol
	if b.startName != "" {
		start = b.nonterminals[b.startName]
		if start == nil {
			errors = append(errors, &GrammarError{
				Kind: MissingStartSymbol,
				Name: b.startName,
			})
		}
	} else if len(b.rules) > 0 {
		start = b.rules[0].LHS
	} else {
		errors = append(errors, &GrammarError{
			Kind: MissingStartSymbol,
			Msg:  "grammar has no rules",
		})
	}
	// every non-terminal must have at least one rule
	for _, nt := range b.ntList {
		found := false
		for _, r := range b.rules {
			if r.LHS == nt {
				found = true
				break
			}
		}
		if !found {
			errors = append(errors, &GrammarError{
				Kind: UndefinedSymbol,
				Name: nt.Name,
			})
		}
	}
	// precedence, avoid-insert, epp and implicit-token declarations must
	// refer to known terminals
	precedences := make(map[int]Precedence)
	for _, name := range sortedKeys(b.precByName) {
		if sym, ok := b.terminals[name]; ok {
			precedences[sym.Value] = b.precByName[name]
		} else {
			errors = append(errors, &GrammarError{Kind: UndefinedSymbol, Name: name})
		}
	}
	avoid := make(map[int]bool)
	for _, name := range sortedBoolKeys(b.avoidByName) {
		if sym, ok := b.terminals[name]; ok {
			avoid[sym.Value] = true
		} else {
			errors = append(errors, &GrammarError{Kind: UndefinedSymbol, Name: name})
		}
	}
	implicit := make(map[int]bool)
	for _, name := range sortedBoolKeys(b.implByName) {
		if sym, ok := b.terminals[name]; ok {
			implicit[sym.Value] = true
		} else {
			errors = append(errors, &GrammarError{Kind: UndefinedSymbol, Name: name})
		}
	}
	epp := make(map[int]string)
	for _, name := range sortedKeysS(b.eppByName) {
		if sym, ok := b.terminals[name]; ok {
			epp[sym.Value] = b.eppByName[name]
		} else {
			errors = append(errors, &GrammarError{Kind: UndefinedSymbol, Name: name})
		}
	}
	if len(errors) > 0 {
		return nil, errors
	}
	// the distinguished terminals exist in every grammar
	eof := b.terminal("#eof", EOFType)
	errSym := b.terminal("#error", ErrorType)
	// synthesize the augmented start rule  #start → start #eof
	augmented := b.nonterminal("#start")
	startRule := newRule(augmented, []*Symbol{start, eof})
	g := &Grammar{
		Name:         b.name,
		ActionType:   b.actionType,
		rules:        append([]*Rule{startRule}, b.rules...),
		terminals:    b.terminals,
		nonterminals: b.nonterminals,
		termsByValue: b.termsByValue,
		termList:     b.termList,
		ntList:       b.ntList,
		start:        start,
		eof:          eof,
		errSym:       errSym,
		precedences:  precedences,
		avoidInsert:  avoid,
		implicit:     implicit,
		epp:          epp,
		expect:       b.expect,
	}
	for i, r := range g.rules {
		r.Serial = i
	}
	g.checkReachability()
	tracer().Infof("built grammar %s with %d rules", g.Name, g.Size())
	return g, nil
}

// checkReachability reports non-terminals which cannot be reached from the
// start symbol. They are reported as warnings, not pruned.
func (g *Grammar) checkReachability() {
	reached := map[*Symbol]bool{g.rules[0].LHS: true}
	worklist := []*Symbol{g.rules[0].LHS}
	for len(worklist) > 0 {
		nt := worklist[0]
		worklist = worklist[1:]
		for _, r := range g.FindNonTermRules(nt) {
			for _, sym := range r.RHS() {
				if !sym.IsTerminal() && !reached[sym] {
					reached[sym] = true
					worklist = append(worklist, sym)
				}
			}
		}
	}
	for _, nt := range g.ntList {
		if !reached[nt] {
			tracer().Infof("non-terminal %s is unreachable from %s", nt.Name, g.start.Name)
			g.warnings = append(g.warnings, &GrammarError{
				Kind: UnreachableNonTerm,
				Name: nt.Name,
			})
		}
	}
}

// --- Helpers ----------------------------------------------------------

func sortedKeys(m map[string]Precedence) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedBoolKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysS(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
