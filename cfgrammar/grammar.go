package cfgrammar

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/borgstrand/yakka"
	"github.com/cnf/structhash"
)

// Token values of the distinguished symbols every grammar carries, plus the
// boundary between terminal and non-terminal symbol values.
const (
	EpsilonType = 0  // pseudo-token for the empty word, occurs in FIRST-sets only
	EOFType     = -1 // end-of-input token, identical to text/scanner.EOF
	ErrorType   = -9 // token reserved for error synchronization
	NonTermBase = 1000
)

// TokenBase is the lowest token value the Yacc frontend assigns to named
// tokens. Values below are reserved for character literals.
const TokenBase = 256

// Symbol is a grammar symbol, i.e. a terminal or a non-terminal.
// Terminals carry the token value a scanner will produce for them; values of
// non-terminals are serial numbers offset by NonTermBase. Symbols are
// interned per grammar: two symbols of the same grammar are identical iff
// their pointers are.
type Symbol struct {
	Name  string
	Value int
}

// IsTerminal is true for terminal symbols.
func (s *Symbol) IsTerminal() bool {
	return s.Value < NonTermBase
}

// TokenType returns the token value of a symbol.
func (s *Symbol) TokenType() yakka.TokType {
	return yakka.TokType(s.Value)
}

func (s *Symbol) String() string {
	return s.Name
}

// --- Associativity and precedence ------------------------------------------

// AssocKind is the associativity of a token, declared Yacc-style with
// %left, %right or %nonassoc.
type AssocKind int8

// Associativity of tokens.
const (
	AssocNone AssocKind = iota
	AssocLeft
	AssocRight
	AssocNonassoc
)

func (a AssocKind) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	case AssocNonassoc:
		return "nonassoc"
	}
	return "none"
}

// Precedence is a precedence level together with an associativity.
// Higher levels bind stronger.
type Precedence struct {
	Level int
	Assoc AssocKind
}

// --- Rules -----------------------------------------------------------------

// Rule is a grammar rule (a production). The empty RHS is allowed and
// represents an epsilon-production. Rules are numbered by definition order;
// rule 0 is always the synthesized start rule.
type Rule struct {
	Serial int     // rule number
	LHS    *Symbol // left hand side symbol
	rhs    []*Symbol
	Action string  // opaque semantic action text, may be empty
	prec   *Symbol // %prec override token, or nil
}

func newRule(lhs *Symbol, rhs []*Symbol) *Rule {
	return &Rule{
		LHS: lhs,
		rhs: rhs,
	}
}

// RHS returns the right hand side symbols of a rule.
func (r *Rule) RHS() []*Symbol {
	return r.rhs
}

// IsEps is true for epsilon-rules, i.e. rules with an empty RHS.
func (r *Rule) IsEps() bool {
	return len(r.rhs) == 0
}

// PrecSymbol returns the token which overrides the rule's precedence
// (declared with %prec), or nil.
func (r *Rule) PrecSymbol() *Symbol {
	return r.prec
}

func (r *Rule) String() string {
	var b bytes.Buffer
	b.WriteString(fmt.Sprintf("%d: [%s] ::= [", r.Serial, r.LHS.Name))
	for i, sym := range r.rhs {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(sym.Name)
	}
	b.WriteString("]")
	return b.String()
}

// eqRHS is true if a rule's RHS consists of exactly the given symbols.
func (r *Rule) eqRHS(rhs []*Symbol) bool {
	if len(r.rhs) != len(rhs) {
		return false
	}
	for i, sym := range r.rhs {
		if sym != rhs[i] {
			return false
		}
	}
	return true
}

// --- Grammar ---------------------------------------------------------------

// Grammar is the normalized representation of a context-free grammar. It
// owns the symbol and rule tables; parser tables reference rules and symbols
// by their serial numbers and token values only. A Grammar is immutable
// after the builder (or the Yacc frontend) has finished with it, and may be
// shared freely between goroutines.
type Grammar struct {
	Name         string
	ActionType   string // %actiontype declaration, opaque to the analysis
	rules        []*Rule
	terminals    map[string]*Symbol
	nonterminals map[string]*Symbol
	termsByValue map[int]*Symbol
	termList     []*Symbol // terminals in definition order
	ntList       []*Symbol // non-terminals in definition order
	start        *Symbol   // the user's start symbol; rules[0].LHS is the augmented start
	eof          *Symbol
	errSym       *Symbol
	precedences  map[int]Precedence // token value → precedence
	avoidInsert  map[int]bool       // token value → never insert during recovery
	implicit     map[int]bool       // token value → %implicit_tokens member
	epp          map[int]string     // token value → display name (%epp)
	expect       int                // tolerated conflict count (%expect)
	warnings     []*GrammarError
}

// Rule returns grammar rule no. n, or nil if no such rule exists.
func (g *Grammar) Rule(n int) *Rule {
	if n < 0 || n >= len(g.rules) {
		return nil
	}
	return g.rules[n]
}

// Size returns the number of rules, including the synthesized start rule.
func (g *Grammar) Size() int {
	return len(g.rules)
}

// Start returns the user's start symbol.
func (g *Grammar) Start() *Symbol {
	return g.start
}

// EOFSymbol returns the end-of-input terminal #eof.
func (g *Grammar) EOFSymbol() *Symbol {
	return g.eof
}

// ErrorSymbol returns the error synchronization terminal #error.
func (g *Grammar) ErrorSymbol() *Symbol {
	return g.errSym
}

// SymbolByName returns the symbol with the given name, or nil.
func (g *Grammar) SymbolByName(name string) *Symbol {
	if sym, ok := g.terminals[name]; ok {
		return sym
	}
	return g.nonterminals[name]
}

// Terminal returns the terminal with the given token value, or nil.
func (g *Grammar) Terminal(value int) *Symbol {
	return g.termsByValue[value]
}

// EachSymbol applies a mapper function to all symbols of the grammar,
// terminals first. Iteration order is definition order and therefore
// stable across runs.
func (g *Grammar) EachSymbol(f func(*Symbol) interface{}) []interface{} {
	var r []interface{}
	for _, sym := range g.termList {
		r = append(r, f(sym))
	}
	for _, sym := range g.ntList {
		r = append(r, f(sym))
	}
	return r
}

// EachTerminal applies a mapper function to all terminals of the grammar.
func (g *Grammar) EachTerminal(f func(*Symbol) interface{}) []interface{} {
	var r []interface{}
	for _, sym := range g.termList {
		r = append(r, f(sym))
	}
	return r
}

// EachNonTerminal applies a mapper function to all non-terminals of the
// grammar.
func (g *Grammar) EachNonTerminal(f func(*Symbol) interface{}) []interface{} {
	var r []interface{}
	for _, sym := range g.ntList {
		r = append(r, f(sym))
	}
	return r
}

// FindNonTermRules returns all rules with the given non-terminal as their
// LHS, in rule order.
func (g *Grammar) FindNonTermRules(sym *Symbol) []*Rule {
	var rules []*Rule
	for _, r := range g.rules {
		if r.LHS == sym {
			rules = append(rules, r)
		}
	}
	return rules
}

// Precedence returns the declared precedence of a token, if any.
func (g *Grammar) Precedence(sym *Symbol) (Precedence, bool) {
	if sym == nil || !sym.IsTerminal() {
		return Precedence{}, false
	}
	p, ok := g.precedences[sym.Value]
	return p, ok
}

// RulePrecedence returns the precedence of a rule: the precedence of its
// %prec token if overridden, otherwise the precedence of the last terminal
// of its RHS.
func (g *Grammar) RulePrecedence(r *Rule) (Precedence, bool) {
	if r.prec != nil {
		return g.Precedence(r.prec)
	}
	for i := len(r.rhs) - 1; i >= 0; i-- {
		if r.rhs[i].IsTerminal() {
			return g.Precedence(r.rhs[i])
		}
	}
	return Precedence{}, false
}

// AvoidInsert is true if a token has been declared %avoid_insert: error
// recovery will never propose inserting it.
func (g *Grammar) AvoidInsert(sym *Symbol) bool {
	if sym == nil {
		return false
	}
	return g.avoidInsert[sym.Value]
}

// IsImplicit is true if a token is a member of the %implicit_tokens set.
func (g *Grammar) IsImplicit(sym *Symbol) bool {
	if sym == nil {
		return false
	}
	return g.implicit[sym.Value]
}

// Expect returns the tolerated conflict count declared with %expect.
func (g *Grammar) Expect() int {
	return g.expect
}

// DisplayName returns the name to use for a token in diagnostics: the %epp
// declaration if present, the symbol name otherwise.
func (g *Grammar) DisplayName(sym *Symbol) string {
	if sym == nil {
		return "?"
	}
	if epp, ok := g.epp[sym.Value]; ok {
		return epp
	}
	return sym.Name
}

// Warnings returns non-fatal findings of grammar validation, currently
// unreachable non-terminals.
func (g *Grammar) Warnings() []*GrammarError {
	return g.warnings
}

// Dump is a debugging helper, listing all rules of the grammar.
func (g *Grammar) Dump() {
	tracer().Debugf("grammar %s:", g.Name)
	for _, r := range g.rules {
		tracer().Debugf("%s", r)
	}
}

// --- Grammar hash ----------------------------------------------------------

// hashableGrammar is the stable projection of a grammar which the content
// hash is computed over. Only data that influences table construction is
// included.
type hashableGrammar struct {
	Name      string
	Terminals []hashableSymbol
	NonTerms  []hashableSymbol
	Rules     []hashableRule
	Precs     []hashablePrec
	Expect    int
}

type hashableSymbol struct {
	Name  string
	Value int
}

type hashableRule struct {
	LHS  int
	RHS  []int
	Prec int
}

type hashablePrec struct {
	Token int
	Level int
	Assoc int
}

// Hash returns a content hash of the grammar, used to detect stale parser
// tables. Identical grammars hash identically across runs.
func (g *Grammar) Hash() (string, error) {
	h := hashableGrammar{
		Name:   g.Name,
		Expect: g.expect,
	}
	for _, sym := range g.termList {
		h.Terminals = append(h.Terminals, hashableSymbol{Name: sym.Name, Value: sym.Value})
	}
	for _, sym := range g.ntList {
		h.NonTerms = append(h.NonTerms, hashableSymbol{Name: sym.Name, Value: sym.Value})
	}
	for _, r := range g.rules {
		hr := hashableRule{LHS: r.LHS.Value}
		for _, sym := range r.rhs {
			hr.RHS = append(hr.RHS, sym.Value)
		}
		if r.prec != nil {
			hr.Prec = r.prec.Value
		}
		h.Rules = append(h.Rules, hr)
	}
	precvals := make([]int, 0, len(g.precedences))
	for v := range g.precedences {
		precvals = append(precvals, v)
	}
	sort.Ints(precvals)
	for _, v := range precvals {
		p := g.precedences[v]
		h.Precs = append(h.Precs, hashablePrec{Token: v, Level: p.Level, Assoc: int(p.Assoc)})
	}
	return structhash.Hash(h, 1)
}

// --- Grammar errors --------------------------------------------------------

// GrammarErrorKind distinguishes the findings of grammar construction and
// validation.
type GrammarErrorKind int8

// Kinds of grammar errors.
const (
	NoGrammarError GrammarErrorKind = iota
	SyntaxError
	UnknownDeclaration
	DuplicateRule
	UndefinedSymbol
	MissingStartSymbol
	UnreachableNonTerm // a warning, not fatal
	UnknownPrecSymbol
)

func (k GrammarErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case UnknownDeclaration:
		return "unknown declaration"
	case DuplicateRule:
		return "duplicate rule"
	case UndefinedSymbol:
		return "undefined symbol"
	case MissingStartSymbol:
		return "missing start symbol"
	case UnreachableNonTerm:
		return "unreachable non-terminal"
	case UnknownPrecSymbol:
		return "unknown %prec symbol"
	}
	return "unknown error"
}

// GrammarError is a finding of grammar construction or validation, with a
// span into the grammar source where one exists (builder-constructed
// grammars carry the zero span).
type GrammarError struct {
	Kind GrammarErrorKind
	Span yakka.Span
	Name string // offending symbol or declaration name
	Msg  string
}

func (e *GrammarError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Name)
}

// ErrorList is a batch of grammar errors. Grammar construction collects all
// findings instead of stopping at the first one.
type ErrorList []*GrammarError

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
}
