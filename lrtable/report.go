package lrtable

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/borgstrand/yakka/cfgrammar"
	"github.com/pterm/pterm"
)

// CFSM2GraphViz exports a CFSM to the Graphviz Dot format, given a filename.
func (c *CFSM) CFSM2GraphViz(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		panic(fmt.Sprintf("file open error: %v", err.Error()))
	}
	defer f.Close()
	f.WriteString(`digraph {
graph [splines=true, fontname=Helvetica, fontsize=10];
node [shape=Mrecord, style=filled, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`)
	it := c.states.Iterator()
	for it.Next() {
		s := it.Value().(*CFSMState)
		f.WriteString(fmt.Sprintf("s%03d [fillcolor=%s label=\"{%03d | %s}\"]\n",
			s.ID, nodecolor(s), s.ID, forGraphviz(s)))
	}
	eit := c.edges.Iterator()
	for eit.Next() {
		edge := eit.Value().(*cfsmEdge)
		f.WriteString(fmt.Sprintf("s%03d -> s%03d [label=\"%s\"]\n",
			edge.from.ID, edge.to.ID, edge.label))
	}
	f.WriteString("}\n")
}

func nodecolor(state *CFSMState) string {
	if state.Accept {
		return "lightgray"
	}
	return "white"
}

func forGraphviz(s *CFSMState) string {
	var out string
	for _, x := range s.items.Values() {
		out += asItem(x).String() + `\n`
	}
	return out
}

// GotoTableAsHTML exports a GOTO-table in HTML-format.
func GotoTableAsHTML(lrgen *TableGenerator, w io.Writer) {
	if lrgen.gototable == nil {
		tracer().Errorf("GOTO table not yet created, cannot export to HTML")
		return
	}
	parserTableAsHTML(lrgen, "GOTO", lrgen.gototable, w)
}

// ActionTableAsHTML exports the LALR(1) ACTION-table in HTML-format.
func ActionTableAsHTML(lrgen *TableGenerator, w io.Writer) {
	if lrgen.actiontable == nil {
		tracer().Errorf("ACTION table not yet created, cannot export to HTML")
		return
	}
	parserTableAsHTML(lrgen, "ACTION", lrgen.actiontable, w)
}

func parserTableAsHTML(lrgen *TableGenerator, tname string, table *Table, w io.Writer) {
	var symvec []*cfgrammar.Symbol
	io.WriteString(w, "<html><body>\n")
	io.WriteString(w, fmt.Sprintf("%s table of size = %d<p>", tname, table.matrix.ValueCount()))
	io.WriteString(w, "<table border=1 cellspacing=0 cellpadding=5>\n")
	io.WriteString(w, "<tr bgcolor=#cccccc><td></td>\n")
	lrgen.g.EachSymbol(func(A *cfgrammar.Symbol) interface{} {
		io.WriteString(w, fmt.Sprintf("<td>%s</td>", A))
		symvec = append(symvec, A)
		return nil
	})
	io.WriteString(w, "</tr>\n")
	states := lrgen.dfa.states.Iterator()
	var td string // table cell
	for states.Next() {
		state := states.Value().(*CFSMState)
		io.WriteString(w, fmt.Sprintf("<tr><td>state %d</td>\n", state.ID))
		for _, A := range symvec {
			v1, v2 := table.Values(state.ID, A.Value)
			if v1 == table.NullValue() {
				td = "&nbsp;"
			} else if v2 == table.NullValue() {
				td = valstring(v1, table)
			} else {
				td = valstring(v1, table) + "/" + valstring(v2, table)
			}
			io.WriteString(w, "<td>")
			io.WriteString(w, td)
			io.WriteString(w, "</td>\n")
		}
		io.WriteString(w, "</tr>\n")
	}
	io.WriteString(w, "</table></body></html>\n")
}

// ConflictReport renders the residual conflicts of table construction as a
// terminal-friendly table. An empty string is returned for conflict-free
// grammars.
func ConflictReport(lrgen *TableGenerator) string {
	conflicts := lrgen.Conflicts()
	if len(conflicts) == 0 {
		return ""
	}
	data := pterm.TableData{
		{"state", "token", "kind", "resolution"},
	}
	for _, c := range conflicts {
		var resolution string
		if c.Kind == ShiftReduce {
			resolution = fmt.Sprintf("shift %d over reduce %s",
				c.ShiftTo, lrgen.g.Rule(c.Rule))
		} else {
			resolution = fmt.Sprintf("reduce %s over reduce %s",
				lrgen.g.Rule(c.Winner), lrgen.g.Rule(c.Rule))
		}
		data = append(data, []string{
			strconv.Itoa(int(c.State)),
			lrgen.g.DisplayName(c.Sym),
			c.Kind.String(),
			resolution,
		})
	}
	report, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		tracer().Errorf("conflict report: %v", err)
		return ""
	}
	return report
}
