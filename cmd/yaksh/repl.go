package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/borgstrand/yakka"
	"github.com/borgstrand/yakka/cfgrammar"
	"github.com/borgstrand/yakka/cfgrammar/yacc"
	"github.com/borgstrand/yakka/lrpar"
	"github.com/borgstrand/yakka/lrpar/scanner"
	"github.com/borgstrand/yakka/lrtable"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2019–2026 The Yakka Project

*/

func tracer() tracing.Trace {
	return tracing.Select("yakka.lrpar")
}

// We provide a simple expression grammar as a default for parsing and
// error-recovery experiments.
//
//	S'     ➞ Sum #eof
//	Sum    ➞ Sum + Product  |  Product
//	Product➞ Product * Factor  |  Factor
//	Factor ➞ number  |  ( Sum )
func makeExprGrammar() *cfgrammar.LRAnalysis {
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelError)
	b := cfgrammar.NewGrammarBuilder("G")
	b.LHS("Sum").N("Sum").T("+", '+').N("Product").End()
	b.LHS("Sum").N("Product").End()
	b.LHS("Product").N("Product").T("*", '*').N("Factor").End()
	b.LHS("Product").N("Factor").End()
	b.LHS("Factor").T("number", scanner.Int).End()
	b.LHS("Factor").T("(", '(').N("Sum").T(")", ')').End()
	g, err := b.Grammar()
	if err != nil {
		panic(fmt.Errorf("error creating grammar: %s", err.Error()))
	}
	tracer().SetTraceLevel(level)
	return cfgrammar.Analysis(g)
}

// main() starts an interactive CLI ("yaksh"), where users may enter
// expressions of a grammar's language. yaksh parses the input and prints
// out the result, together with all diagnostics and the repair sequences
// error recovery proposes. It is intended as a sandbox for experimenting
// with grammars during parser development, with a focus on error recovery.
func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	grammarf := flag.String("grammar", "", "Yacc grammar file to load")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelInfo)
	pterm.Info.Println("Welcome to yaksh")
	tracer().Infof("Trace level is %s", *tlevel)
	//
	ga := loadGrammar(*grammarf)
	tracer().SetTraceLevel(traceLevel(*tlevel))
	ga.Grammar().Dump() // only visible in debug mode
	lrgen := lrtable.NewTableGenerator(ga)
	if err := lrgen.CreateTables(); err != nil {
		pterm.Error.Println(err.Error())
		if report := lrtable.ConflictReport(lrgen); report != "" {
			fmt.Println(report)
		}
		os.Exit(1)
	}
	//
	repl, err := readline.New("yaksh> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{
		ga:    ga,
		lrgen: lrgen,
		repl:  repl,
	}
	tracer().Infof("Quit with <ctrl>D")
	intp.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func loadGrammar(path string) *cfgrammar.LRAnalysis {
	if path == "" {
		return makeExprGrammar()
	}
	source, err := ioutil.ReadFile(path)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	g, err := yacc.BuildGrammar(path, source, yacc.KindOriginal)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	return cfgrammar.Analysis(g)
}

func traceLevel(l string) tracing.TraceLevel {
	switch strings.ToLower(l) {
	case "debug":
		return tracing.LevelDebug
	case "error":
		return tracing.LevelError
	}
	return tracing.LevelInfo
}

// Intp is the interpreter state of the shell.
type Intp struct {
	ga    *cfgrammar.LRAnalysis
	lrgen *lrtable.TableGenerator
	repl  *readline.Instance
}

// REPL is the read-eval-print loop of the shell.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF for <ctrl>D
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := intp.command(line); quit {
				break
			}
			continue
		}
		intp.parse(line)
	}
	pterm.Info.Println("Good bye!")
}

func (intp *Intp) command(line string) bool {
	switch line {
	case ":quit":
		return true
	case ":grammar":
		for n := 0; n < intp.ga.Grammar().Size(); n++ {
			fmt.Println(intp.ga.Grammar().Rule(n))
		}
	case ":conflicts":
		if report := lrtable.ConflictReport(intp.lrgen); report != "" {
			fmt.Println(report)
		} else {
			pterm.Info.Println("grammar is conflict-free")
		}
	case ":states":
		pterm.Info.Printf("CFSM has %d states\n", intp.lrgen.CFSM().Size())
	default:
		pterm.Error.Printf("unknown command %s\n", line)
	}
	return false
}

func (intp *Intp) parse(input string) {
	parser := lrpar.NewParser(intp.ga.Grammar(),
		intp.lrgen.GotoTable(), intp.lrgen.ActionTable())
	tokenizer := scanner.GoTokenizer("yaksh", strings.NewReader(input))
	result, err := parser.Parse(tokenizer, evaluator{})
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	for _, d := range result.Diagnostics {
		pterm.Error.Println(lrpar.Render(d, []byte(input)))
	}
	if result.Accepted {
		pterm.Info.Printf("= %v\n", result.Value)
	} else {
		pterm.Error.Println("input not accepted")
	}
}

// evaluator computes integer values for inputs of the built-in expression
// grammar; inputs of user-supplied grammars are merely recognized.
type evaluator struct{}

func (ev evaluator) Terminal(tok yakka.Token) interface{} {
	if tok.TokType() == scanner.Int {
		n, err := strconv.Atoi(tok.Lexeme())
		if err != nil {
			return 0
		}
		return n
	}
	return nil
}

func (ev evaluator) Reduce(rule *cfgrammar.Rule, args []*lrpar.RuleNode, span yakka.Span) (interface{}, error) {
	lhs, rhs := rule.LHS.Name, rule.RHS()
	switch {
	case lhs == "Sum" && len(rhs) == 3:
		return intOf(args[0]) + intOf(args[2]), nil
	case lhs == "Product" && len(rhs) == 3:
		return intOf(args[0]) * intOf(args[2]), nil
	case lhs == "Factor" && len(rhs) == 3:
		return args[1].Value, nil
	case len(args) > 0:
		return args[0].Value, nil
	}
	return nil, nil
}

func intOf(node *lrpar.RuleNode) int {
	if n, ok := node.Value.(int); ok {
		return n
	}
	return 0
}
