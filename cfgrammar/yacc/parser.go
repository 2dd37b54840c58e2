package yacc

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/borgstrand/yakka"
	"github.com/borgstrand/yakka/cfgrammar"
)

// Parse reads a grammar source and returns its raw AST. Errors carry byte
// spans into the source; all findings are collected into an
// cfgrammar.ErrorList instead of stopping at the first one.
func Parse(source []byte, kind Kind) (*AST, error) {
	p := &parser{
		lex:  lexer{src: source},
		kind: kind,
		ast:  &AST{Kind: kind},
	}
	p.next()
	p.parseDecls()
	p.parseRules()
	p.parseTrailer()
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return p.ast, nil
}

// BuildGrammar is the one-stop entry: it parses a grammar source and lowers
// it to the IR in one go.
func BuildGrammar(name string, source []byte, kind Kind) (*cfgrammar.Grammar, error) {
	ast, err := Parse(source, kind)
	if err != nil {
		return nil, err
	}
	tracer().Infof("parsed grammar source %s: %d rules", name, len(ast.Rules))
	return ast.Grammar(name)
}

// --- Grammar source tokens --------------------------------------------------

type tokKind int8

const (
	tokEOF       tokKind = iota
	tokMark              // %%
	tokDirective         // %start, %token, …
	tokIdent
	tokLiteral // 'c' or "string"
	tokTypeTag // <…>
	tokNumber
	tokColon
	tokOr
	tokSemi
	tokArrow  // ->
	tokAction // {…}
	tokBad
)

type srctok struct {
	kind tokKind
	text string
	span yakka.Span
}

// lexer is a small rune scanner over the grammar source.
type lexer struct {
	src []byte
	pos int
}

func (lx *lexer) span(from int) yakka.Span {
	return yakka.Span{uint64(from), uint64(lx.pos)}
}

func (lx *lexer) peekRune() (rune, int) {
	if lx.pos >= len(lx.src) {
		return -1, 0
	}
	return utf8.DecodeRune(lx.src[lx.pos:])
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.src) {
		r, w := lx.peekRune()
		if unicode.IsSpace(r) {
			lx.pos += w
			continue
		}
		if r == '/' && lx.pos+1 < len(lx.src) {
			// line and block comments, C-style
			if lx.src[lx.pos+1] == '/' {
				for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
					lx.pos++
				}
				continue
			}
			if lx.src[lx.pos+1] == '*' {
				end := strings.Index(string(lx.src[lx.pos+2:]), "*/")
				if end < 0 {
					lx.pos = len(lx.src)
				} else {
					lx.pos += end + 4
				}
				continue
			}
		}
		break
	}
}

func isIdentRune(r rune, first bool) bool {
	if unicode.IsLetter(r) || r == '_' || r == '.' || r == '$' {
		return true
	}
	return !first && unicode.IsDigit(r)
}

func (lx *lexer) next() srctok {
	lx.skipSpace()
	from := lx.pos
	r, w := lx.peekRune()
	if r == -1 {
		return srctok{kind: tokEOF, span: lx.span(from)}
	}
	switch r {
	case '%':
		lx.pos += w
		if r2, w2 := lx.peekRune(); r2 == '%' {
			lx.pos += w2
			return srctok{kind: tokMark, text: "%%", span: lx.span(from)}
		}
		word := lx.ident()
		return srctok{kind: tokDirective, text: "%" + word, span: lx.span(from)}
	case ':':
		lx.pos += w
		return srctok{kind: tokColon, text: ":", span: lx.span(from)}
	case '|':
		lx.pos += w
		return srctok{kind: tokOr, text: "|", span: lx.span(from)}
	case ';':
		lx.pos += w
		return srctok{kind: tokSemi, text: ";", span: lx.span(from)}
	case '-':
		lx.pos += w
		if r2, w2 := lx.peekRune(); r2 == '>' {
			lx.pos += w2
			return srctok{kind: tokArrow, text: "->", span: lx.span(from)}
		}
		return srctok{kind: tokBad, text: "-", span: lx.span(from)}
	case '\'', '"':
		return lx.literal(r)
	case '{':
		return lx.action()
	case '<':
		return lx.typeTag()
	}
	if unicode.IsDigit(r) {
		num := lx.ident() // digits only, but ident() collects them fine
		return srctok{kind: tokNumber, text: num, span: lx.span(from)}
	}
	if isIdentRune(r, true) {
		word := lx.ident()
		return srctok{kind: tokIdent, text: word, span: lx.span(from)}
	}
	lx.pos += w
	return srctok{kind: tokBad, text: string(r), span: lx.span(from)}
}

func (lx *lexer) ident() string {
	from := lx.pos
	first := true
	for lx.pos < len(lx.src) {
		r, w := lx.peekRune()
		if !isIdentRune(r, first) && !unicode.IsDigit(r) {
			break
		}
		lx.pos += w
		first = false
	}
	return string(lx.src[from:lx.pos])
}

// literal scans a quoted token literal 'c' or "string" and unquotes it.
func (lx *lexer) literal(quote rune) srctok {
	from := lx.pos
	lx.pos++ // opening quote
	var b strings.Builder
	for lx.pos < len(lx.src) {
		r, w := lx.peekRune()
		if r == quote {
			lx.pos += w
			return srctok{kind: tokLiteral, text: b.String(), span: lx.span(from)}
		}
		if r == '\\' {
			lx.pos += w
			r2, w2 := lx.peekRune()
			switch r2 {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			default:
				b.WriteRune(r2)
			}
			lx.pos += w2
			continue
		}
		b.WriteRune(r)
		lx.pos += w
	}
	return srctok{kind: tokBad, text: b.String(), span: lx.span(from)}
}

// action scans a balanced-brace action body. Braces inside string and
// character literals of the action text do not count.
func (lx *lexer) action() srctok {
	from := lx.pos
	lx.pos++ // opening brace
	depth := 1
	var quote rune
	start := lx.pos
	for lx.pos < len(lx.src) {
		r, w := lx.peekRune()
		lx.pos += w
		if quote != 0 {
			if r == '\\' {
				_, w2 := lx.peekRune()
				lx.pos += w2
			} else if r == quote {
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"', '`':
			quote = r
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				body := string(lx.src[start : lx.pos-1])
				return srctok{kind: tokAction, text: strings.TrimSpace(body), span: lx.span(from)}
			}
		}
	}
	return srctok{kind: tokBad, text: string(lx.src[start:lx.pos]), span: lx.span(from)}
}

func (lx *lexer) typeTag() srctok {
	from := lx.pos
	lx.pos++ // '<'
	start := lx.pos
	for lx.pos < len(lx.src) {
		r, w := lx.peekRune()
		if r == '>' {
			body := string(lx.src[start:lx.pos])
			lx.pos += w
			return srctok{kind: tokTypeTag, text: body, span: lx.span(from)}
		}
		lx.pos += w
	}
	return srctok{kind: tokBad, text: string(lx.src[start:lx.pos]), span: lx.span(from)}
}

// restOfLine consumes source text up to the next newline, for declarations
// whose argument is free text (%actiontype).
func (lx *lexer) restOfLine() string {
	from := lx.pos
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
		lx.pos++
	}
	return strings.TrimSpace(string(lx.src[from:lx.pos]))
}

// --- The grammar-source parser ----------------------------------------------

type parser struct {
	lex    lexer
	tok    srctok
	kind   Kind
	ast    *AST
	errors cfgrammar.ErrorList
}

func (p *parser) next() {
	p.tok = p.lex.next()
}

func (p *parser) errorf(kind cfgrammar.GrammarErrorKind, span yakka.Span, format string, args ...interface{}) {
	e := &cfgrammar.GrammarError{
		Kind: kind,
		Span: span,
		Msg:  fmt.Sprintf(format, args...),
	}
	tracer().Errorf("grammar source: %v", e)
	p.errors = append(p.errors, e)
}

func (p *parser) symRef() SymRef {
	ref := SymRef{
		Name:    p.tok.text,
		Span:    p.tok.span,
		Literal: p.tok.kind == tokLiteral,
	}
	p.next()
	return ref
}

// symRefList collects identifiers and literals as long as they keep coming,
// the way Yacc declaration arguments are written.
func (p *parser) symRefList() []SymRef {
	var refs []SymRef
	for p.tok.kind == tokIdent || p.tok.kind == tokLiteral {
		refs = append(refs, p.symRef())
	}
	return refs
}

func (p *parser) parseDecls() {
	for {
		switch p.tok.kind {
		case tokMark:
			p.next()
			return
		case tokEOF:
			p.errorf(cfgrammar.SyntaxError, p.tok.span, "grammar has no rule section ('%%%%' missing)")
			return
		case tokDirective:
			p.parseDecl()
		default:
			p.errorf(cfgrammar.SyntaxError, p.tok.span, "unexpected %q in declaration section", p.tok.text)
			p.next()
		}
	}
}

func (p *parser) parseDecl() {
	decl := p.tok
	if decl.text == "%actiontype" {
		// free-text argument: consume the rest of the source line before
		// the lexer gets a chance to tokenize it
		p.ast.ActionType = p.lex.restOfLine()
		p.next()
		return
	}
	p.next()
	switch decl.text {
	case "%start":
		if p.tok.kind != tokIdent {
			p.errorf(cfgrammar.SyntaxError, p.tok.span, "%%start needs a symbol name")
			return
		}
		p.ast.Start = p.tok.text
		p.ast.StartSpan = p.tok.span
		p.next()
	case "%token", "%term":
		typ := ""
		if p.tok.kind == tokTypeTag {
			typ = p.tok.text
			p.next()
		}
		refs := p.symRefList()
		if len(refs) == 0 {
			p.errorf(cfgrammar.SyntaxError, decl.span, "%%token without token names")
		}
		for _, ref := range refs {
			p.ast.Tokens = append(p.ast.Tokens, TokenDecl{Sym: ref, Type: typ})
		}
	case "%left", "%right", "%nonassoc":
		assoc := cfgrammar.AssocLeft
		if decl.text == "%right" {
			assoc = cfgrammar.AssocRight
		} else if decl.text == "%nonassoc" {
			assoc = cfgrammar.AssocNonassoc
		}
		refs := p.symRefList()
		if len(refs) == 0 {
			p.errorf(cfgrammar.SyntaxError, decl.span, "%s without token names", decl.text)
			return
		}
		p.ast.Precs = append(p.ast.Precs, PrecDecl{Assoc: assoc, Syms: refs})
	case "%avoid_insert":
		refs := p.symRefList()
		if len(refs) == 0 {
			p.errorf(cfgrammar.SyntaxError, decl.span, "%%avoid_insert without token names")
			return
		}
		p.ast.AvoidInsert = append(p.ast.AvoidInsert, refs...)
	case "%implicit_tokens":
		refs := p.symRefList()
		if len(refs) == 0 {
			p.errorf(cfgrammar.SyntaxError, decl.span, "%%implicit_tokens without token names")
			return
		}
		p.ast.Implicit = append(p.ast.Implicit, refs...)
	case "%expect":
		if p.tok.kind != tokNumber {
			p.errorf(cfgrammar.SyntaxError, p.tok.span, "%%expect needs a number")
			return
		}
		n, err := strconv.Atoi(p.tok.text)
		if err != nil {
			p.errorf(cfgrammar.SyntaxError, p.tok.span, "%%expect: %v", err)
			return
		}
		p.ast.Expect = n
		p.ast.HasExpect = true
		p.next()
	case "%epp":
		if p.tok.kind != tokIdent && p.tok.kind != tokLiteral {
			p.errorf(cfgrammar.SyntaxError, p.tok.span, "%%epp needs a token name")
			return
		}
		sym := p.symRef()
		if p.tok.kind != tokLiteral {
			p.errorf(cfgrammar.SyntaxError, p.tok.span, "%%epp needs a display string")
			return
		}
		p.ast.Epps = append(p.ast.Epps, EppDecl{Sym: sym, Display: p.tok.text})
		p.next()
	default:
		p.errorf(cfgrammar.UnknownDeclaration, decl.span, "%s", decl.text)
		// skip the declaration's arguments
		for p.tok.kind == tokIdent || p.tok.kind == tokLiteral ||
			p.tok.kind == tokNumber || p.tok.kind == tokTypeTag {
			p.next()
		}
	}
}

func (p *parser) parseRules() {
	for p.tok.kind != tokMark && p.tok.kind != tokEOF {
		p.parseRule()
	}
}

func (p *parser) parseRule() {
	if p.tok.kind != tokIdent {
		p.errorf(cfgrammar.SyntaxError, p.tok.span, "expected a rule name, got %q", p.tok.text)
		p.next()
		return
	}
	rule := &RuleDecl{
		Name: p.tok.text,
		Span: p.tok.span,
	}
	p.next()
	if p.tok.kind == tokArrow {
		if p.kind != KindGrmtools {
			p.errorf(cfgrammar.SyntaxError, p.tok.span,
				"rule %s: result types are not part of the classical dialect", rule.Name)
		}
		p.next()
		rule.RetType = p.retType()
	}
	if p.tok.kind != tokColon {
		p.errorf(cfgrammar.SyntaxError, p.tok.span, "rule %s: expected ':', got %q", rule.Name, p.tok.text)
		p.recoverToSemi()
		return
	}
	p.next()
	for {
		alt := p.parseAlt()
		rule.Alts = append(rule.Alts, alt)
		if p.tok.kind != tokOr {
			break
		}
		p.next()
	}
	if p.tok.kind == tokSemi {
		p.next()
	} else {
		p.errorf(cfgrammar.SyntaxError, p.tok.span, "rule %s: expected ';', got %q", rule.Name, p.tok.text)
		p.recoverToSemi()
	}
	p.ast.Rules = append(p.ast.Rules, rule)
}

// retType collects the type text between '->' and ':'. Types may contain
// almost anything (e.g. Result<u64, ()>), so everything up to the next
// colon belongs to them.
func (p *parser) retType() string {
	var parts []string
	for p.tok.kind != tokColon && p.tok.kind != tokEOF {
		parts = append(parts, p.tok.text)
		p.next()
	}
	return strings.Join(parts, " ")
}

func (p *parser) parseAlt() *Alt {
	alt := &Alt{Span: p.tok.span}
	for {
		switch p.tok.kind {
		case tokIdent, tokLiteral:
			ref := p.symRef()
			alt.Syms = append(alt.Syms, ref)
		case tokDirective:
			if p.tok.text != "%prec" {
				p.errorf(cfgrammar.UnknownDeclaration, p.tok.span, "%s in a rule", p.tok.text)
				p.next()
				continue
			}
			p.next()
			if p.tok.kind != tokIdent && p.tok.kind != tokLiteral {
				p.errorf(cfgrammar.SyntaxError, p.tok.span, "%%prec needs a token name")
				continue
			}
			ref := p.symRef()
			alt.Prec = &ref
		case tokAction:
			if alt.Action != "" {
				p.errorf(cfgrammar.SyntaxError, p.tok.span, "only one action per alternative is supported")
			}
			alt.Action = p.tok.text
			alt.Span = alt.Span.Extend(p.tok.span)
			p.next()
		default:
			if len(alt.Syms) > 0 {
				alt.Span = alt.Span.Extend(alt.Syms[len(alt.Syms)-1].Span)
			}
			return alt
		}
	}
}

// recoverToSemi skips source tokens up to the end of the current rule, so
// that one malformed rule produces one error instead of a cascade.
func (p *parser) recoverToSemi() {
	for p.tok.kind != tokSemi && p.tok.kind != tokMark && p.tok.kind != tokEOF {
		p.next()
	}
	if p.tok.kind == tokSemi {
		p.next()
	}
}

func (p *parser) parseTrailer() {
	if p.tok.kind != tokMark {
		return
	}
	p.ast.Trailer = strings.TrimSpace(string(p.lex.src[p.lex.pos:]))
	p.lex.pos = len(p.lex.src)
	p.tok = srctok{kind: tokEOF}
}
