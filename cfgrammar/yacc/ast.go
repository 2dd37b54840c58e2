package yacc

import (
	"github.com/borgstrand/yakka"
	"github.com/borgstrand/yakka/cfgrammar"
)

// Kind is the surface dialect of a grammar source.
type Kind int8

// The dialects understood by the frontend.
const (
	// KindOriginal is the classical Yacc notation.
	KindOriginal Kind = iota
	// KindGrmtools annotates rules with result types:  Rule -> Type: …
	KindGrmtools
)

// SymRef is an occurrence of a symbol name in the grammar source: a bare
// identifier, or a literal written as 'c' or "string".
type SymRef struct {
	Name    string
	Span    yakka.Span
	Literal bool
}

// TokenDecl is a %token declaration. The type tag is opaque text.
type TokenDecl struct {
	Sym  SymRef
	Type string
}

// PrecDecl is a %left, %right or %nonassoc declaration. Declarations are
// kept in source order; each one opens a new precedence level.
type PrecDecl struct {
	Assoc cfgrammar.AssocKind
	Syms  []SymRef
}

// EppDecl is a %epp declaration, assigning a token a display name for use
// in diagnostics.
type EppDecl struct {
	Sym     SymRef
	Display string
}

// Alt is one alternative of a rule: a symbol sequence, an optional %prec
// override and an optional semantic action. The action body is opaque text
// without the delimiting braces.
type Alt struct {
	Syms   []SymRef
	Prec   *SymRef
	Action string
	Span   yakka.Span
}

// RuleDecl is a rule of the grammar source with all its alternatives. In
// the grmtools dialect, RetType carries the declared result type.
type RuleDecl struct {
	Name    string
	Span    yakka.Span
	RetType string
	Alts    []*Alt
}

// AST is the raw, unvalidated parse of a grammar source. It preserves
// declaration order; lowering to the IR happens in Grammar.
type AST struct {
	Kind        Kind
	Start       string
	StartSpan   yakka.Span
	Tokens      []TokenDecl
	Precs       []PrecDecl
	AvoidInsert []SymRef
	Implicit    []SymRef
	Epps        []EppDecl
	Expect      int
	HasExpect   bool
	ActionType  string
	Rules       []*RuleDecl
	Trailer     string
}

// Grammar lowers the AST to the grammar IR, assigning token values and
// running the cfgrammar validation. Named tokens receive sequential values
// from cfgrammar.TokenBase upwards; literal tokens of a single rune receive
// the rune's value.
func (ast *AST) Grammar(name string) (*cfgrammar.Grammar, error) {
	b := cfgrammar.NewGrammarBuilder(name)
	lower := &lowering{
		ast:     ast,
		b:       b,
		tokvals: make(map[string]int),
		used:    make(map[int]bool),
		nextval: cfgrammar.TokenBase,
		ruleLHS: make(map[string]bool),
	}
	for _, r := range ast.Rules {
		lower.ruleLHS[r.Name] = true
	}
	lower.declareTokens()
	lower.lowerRules()
	lower.lowerDecls()
	return b.Grammar()
}

// lowering is the working state of AST → IR lowering.
type lowering struct {
	ast     *AST
	b       *cfgrammar.GrammarBuilder
	tokvals map[string]int
	used    map[int]bool
	nextval int
	ruleLHS map[string]bool
}

// tokenValue interns a terminal name, assigning a token value on first use.
func (lo *lowering) tokenValue(ref SymRef) int {
	if v, ok := lo.tokvals[ref.Name]; ok {
		return v
	}
	var v int
	if ref.Literal && len([]rune(ref.Name)) == 1 {
		v = int([]rune(ref.Name)[0])
	} else {
		for lo.used[lo.nextval] {
			lo.nextval++
		}
		v = lo.nextval
		lo.nextval++
	}
	if lo.used[v] {
		// a literal collided with an assigned value; fall back to the sequence
		for lo.used[lo.nextval] {
			lo.nextval++
		}
		v = lo.nextval
		lo.nextval++
	}
	lo.tokvals[ref.Name] = v
	lo.used[v] = true
	lo.b.Terminal(ref.Name, v)
	return v
}

// isTerminal decides whether a symbol occurrence refers to a terminal:
// literals always do, identifiers do unless a rule of that name exists.
func (lo *lowering) isTerminal(ref SymRef) bool {
	if ref.Literal {
		return true
	}
	if lo.ruleLHS[ref.Name] {
		return false
	}
	if _, ok := lo.tokvals[ref.Name]; ok {
		return true
	}
	return false
}

func (lo *lowering) declareTokens() {
	for _, td := range lo.ast.Tokens {
		lo.tokenValue(td.Sym)
	}
	for _, pd := range lo.ast.Precs {
		for _, ref := range pd.Syms {
			lo.tokenValue(ref)
		}
	}
	for _, ref := range lo.ast.AvoidInsert {
		lo.tokenValue(ref)
	}
	for _, ref := range lo.ast.Implicit {
		lo.tokenValue(ref)
	}
	for _, ed := range lo.ast.Epps {
		lo.tokenValue(ed.Sym)
	}
	// literals occurring in rules are tokens, too
	for _, r := range lo.ast.Rules {
		for _, alt := range r.Alts {
			for _, ref := range alt.Syms {
				if ref.Literal {
					lo.tokenValue(ref)
				}
			}
		}
	}
}

func (lo *lowering) lowerRules() {
	for _, r := range lo.ast.Rules {
		for _, alt := range r.Alts {
			rb := lo.b.LHS(r.Name)
			for _, ref := range alt.Syms {
				switch {
				case ref.Name == "error" && !ref.Literal:
					rb.Error()
				case lo.isTerminal(ref):
					rb.T(ref.Name, lo.tokenValue(ref))
				default:
					rb.N(ref.Name)
				}
			}
			if alt.Prec != nil {
				lo.tokenValue(*alt.Prec)
				rb.Prec(alt.Prec.Name)
			}
			if alt.Action != "" {
				rb.Action(alt.Action)
			}
			rb.End()
		}
	}
}

func (lo *lowering) lowerDecls() {
	b := lo.b
	if lo.ast.Start != "" {
		b.SetStart(lo.ast.Start)
	}
	for _, pd := range lo.ast.Precs {
		names := make([]string, len(pd.Syms))
		for i, ref := range pd.Syms {
			names[i] = ref.Name
		}
		switch pd.Assoc {
		case cfgrammar.AssocLeft:
			b.Left(names...)
		case cfgrammar.AssocRight:
			b.Right(names...)
		case cfgrammar.AssocNonassoc:
			b.Nonassoc(names...)
		}
	}
	for _, ref := range lo.ast.AvoidInsert {
		b.AvoidInsert(ref.Name)
	}
	for _, ref := range lo.ast.Implicit {
		b.ImplicitTokens(ref.Name)
	}
	for _, ed := range lo.ast.Epps {
		b.Epp(ed.Sym.Name, ed.Display)
	}
	if lo.ast.HasExpect {
		b.Expect(lo.ast.Expect)
	}
	if lo.ast.ActionType != "" {
		b.SetActionType(lo.ast.ActionType)
	}
}
