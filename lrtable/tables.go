package lrtable

import (
	"fmt"

	"github.com/borgstrand/yakka/cfgrammar"
	"github.com/borgstrand/yakka/lrtable/sparse"
)

// Actions for parser action tables. Reduce actions are encoded as the
// serial number of the rule to reduce (0 meaning the start rule, which the
// generator never emits: reaching it is encoded as AcceptAction instead).
const (
	ShiftAction  = -1
	AcceptAction = -2
)

// TableGenerator is a generator object to construct LALR(1) parser tables.
// Clients usually create a Grammar G, then an LRAnalysis-object for G, and
// then a table generator. TableGenerator.CreateTables() constructs the CFSM
// and the parser tables for an LR-parser recognizing grammar G.
type TableGenerator struct {
	g            *cfgrammar.Grammar
	ga           *cfgrammar.LRAnalysis
	dfa          *CFSM // the collapsed LALR(1) machine
	gototable    *Table
	actiontable  *Table
	conflicts    []*Conflict
	HasConflicts bool
}

// NewTableGenerator creates a new TableGenerator for a (previously
// analysed) grammar.
func NewTableGenerator(ga *cfgrammar.LRAnalysis) *TableGenerator {
	lrgen := &TableGenerator{}
	lrgen.g = ga.Grammar()
	lrgen.ga = ga
	return lrgen
}

// Grammar returns the grammar the tables are constructed for.
func (lrgen *TableGenerator) Grammar() *cfgrammar.Grammar {
	return lrgen.g
}

// CFSM returns the characteristic finite state machine (CFSM) for a
// grammar, after the LALR collapse. Usually clients call
// lrgen.CreateTables() beforehand, but it is possible to call lrgen.CFSM()
// directly. The CFSM will be created, if it has not been constructed
// previously.
func (lrgen *TableGenerator) CFSM() *CFSM {
	if lrgen.dfa == nil {
		lrgen.dfa = lrgen.collapse(lrgen.buildCFSM())
	}
	return lrgen.dfa
}

// GotoTable returns the GOTO table for LR-parsing a grammar. The tables
// have to be built by calling CreateTables() previously.
func (lrgen *TableGenerator) GotoTable() *Table {
	if lrgen.gototable == nil {
		tracer().Errorf("tables not yet initialized")
	}
	return lrgen.gototable
}

// ActionTable returns the ACTION table for LR-parsing a grammar. The
// tables have to be built by calling CreateTables() previously.
func (lrgen *TableGenerator) ActionTable() *Table {
	if lrgen.actiontable == nil {
		tracer().Errorf("tables not yet initialized")
	}
	return lrgen.actiontable
}

// Conflicts returns the residual conflicts of table construction, i.e.
// those which precedence and associativity could not resolve. They are
// ordered by (state, token value).
func (lrgen *TableGenerator) Conflicts() []*Conflict {
	return lrgen.conflicts
}

// CreateTables creates the necessary data structures for an LALR(1)
// parser. It fails iff the count of residual conflicts exceeds the
// grammar's %expect declaration.
func (lrgen *TableGenerator) CreateTables() error {
	lrgen.dfa = lrgen.collapse(lrgen.buildCFSM())
	lrgen.gototable = lrgen.BuildGotoTable()
	lrgen.actiontable, lrgen.conflicts = lrgen.BuildActionTable()
	lrgen.HasConflicts = len(lrgen.conflicts) > 0
	lrgen.gototable.freeze()
	lrgen.actiontable.freeze()
	if len(lrgen.conflicts) > lrgen.g.Expect() {
		return &ConflictError{
			Conflicts: lrgen.conflicts,
			Expected:  lrgen.g.Expect(),
		}
	}
	return nil
}

// symbolExtent finds the extent of symbol values of the grammar, for
// dimensioning the tables.
func (lrgen *TableGenerator) symbolExtent() (mincol, maxcol int) {
	lrgen.g.EachSymbol(func(A *cfgrammar.Symbol) interface{} {
		if A.Value > maxcol {
			maxcol = A.Value
		} else if A.Value < mincol {
			mincol = A.Value
		}
		return nil
	})
	return mincol, maxcol
}

// BuildGotoTable builds the GOTO table. This is normally not called
// directly, but rather via CreateTables(). The GOTO table maps
// (state, symbol) → successor state for terminals (shift targets) and
// non-terminals (reduce gotos) alike.
func (lrgen *TableGenerator) BuildGotoTable() *Table {
	statescnt := lrgen.dfa.states.Size()
	mincol, maxcol := lrgen.symbolExtent()
	tracer().Infof("GOTO table of size %d x (%d-%d=%d)", statescnt, maxcol, mincol,
		maxcol-mincol+1)
	gototable := newTable(statescnt, mincol, maxcol)
	states := lrgen.dfa.states.Iterator()
	for states.Next() {
		state := states.Value().(*CFSMState)
		for _, e := range lrgen.dfa.allEdges(state) {
			gototable.set(state.ID, e.label.Value, int32(e.to.ID))
		}
	}
	return gototable
}

// BuildActionTable constructs the LALR(1) ACTION table and resolves
// conflicting cells. This method is normally not called by clients, but
// rather via CreateTables().
//
// For building the ACTION table we iterate over all the states of the
// CFSM. An inner loop iterates over all terminals. If the state has an
// outgoing edge for the terminal, the cell gets a shift entry. If an
// item's dot is behind the complete RHS of its rule and the terminal is a
// member of the item's lookahead set, the cell gets a reduce entry for the
// rule. Cells with more than one candidate go through conflict resolution
// (see resolveCell).
func (lrgen *TableGenerator) BuildActionTable() (*Table, []*Conflict) {
	statescnt := lrgen.dfa.states.Size()
	mincol, maxcol := lrgen.symbolExtent()
	tracer().Infof("ACTION table of size %d x (%d-%d=%d)", statescnt, maxcol, mincol,
		maxcol-mincol+1)
	actions := newTable(statescnt, mincol, maxcol)
	var conflicts []*Conflict
	states := lrgen.dfa.states.Iterator()
	for states.Next() {
		state := states.Value().(*CFSMState)
		tracer().Debugf("--- state %d --------------------------------", state.ID)
		lrgen.g.EachTerminal(func(A *cfgrammar.Symbol) interface{} {
			cell := lrgen.cellCandidates(state, A)
			if cell.empty() {
				return nil
			}
			a, cc := lrgen.resolveCell(state, A, cell)
			if a != actions.NullValue() {
				actions.set(state.ID, A.Value, a)
			}
			conflicts = append(conflicts, cc...)
			return nil
		})
	}
	sortConflicts(conflicts)
	return actions, conflicts
}

// --- The Table type --------------------------------------------------------

// Table is a parser table, i.e. a matrix of (state × symbol value) cells.
// During construction it is backed by a sparse matrix; freeze() caches the
// cells into dense rows, making access O(1) for the parser runtime.
type Table struct {
	matrix *sparse.IntMatrix
	mincol int // lowest symbol value => offset for access
	dense  [][]int32
}

func newTable(states, mincol, maxcol int) *Table {
	extent := maxcol - mincol + 1
	return &Table{
		matrix: sparse.NewIntMatrix(states, extent, sparse.DefaultNullValue),
		mincol: mincol,
	}
}

func (t *Table) set(i uint, sym int, val int32) {
	j := sym - t.mincol
	if j < 0 {
		panic(fmt.Sprintf("lrtable.Table.set() with index < 0: %d", j))
	}
	t.matrix.Set(int(i), j, val)
	t.dense = nil // invalidate a frozen cache
}

// NullValue returns the table's empty-cell value.
func (t *Table) NullValue() int32 {
	return t.matrix.NullValue()
}

// Value returns the table entry for (state, symbol value), or NullValue.
func (t *Table) Value(i uint, sym int) int32 {
	j := sym - t.mincol
	if j < 0 || j >= t.matrix.N() {
		return t.matrix.NullValue()
	}
	if t.dense != nil {
		return t.dense[i][j]
	}
	return t.matrix.Value(int(i), j)
}

// Values returns the pair of entries for (state, symbol value). Table
// construction resolves conflicts before it sets a cell and stores single
// values only, so for generated tables the second entry is NullValue.
func (t *Table) Values(i uint, sym int) (int32, int32) {
	j := sym - t.mincol
	if j < 0 || j >= t.matrix.N() {
		return t.matrix.NullValue(), t.matrix.NullValue()
	}
	return t.matrix.Values(int(i), j)
}

// freeze caches the sparse matrix into dense rows for O(1) access.
func (t *Table) freeze() {
	rows := make([][]int32, t.matrix.M())
	for i := range rows {
		row := make([]int32, t.matrix.N())
		for j := range row {
			row[j] = t.matrix.NullValue()
		}
		rows[i] = row
	}
	t.matrix.Walk(func(i, j int, a, b int32) {
		rows[i][j] = a
	})
	t.dense = rows
}

// valstring is a short helper to stringify an action table entry.
func valstring(v int32, m *Table) string {
	if v == m.NullValue() {
		return "<none>"
	} else if v == AcceptAction {
		return "<accept>"
	} else if v == ShiftAction {
		return "<shift>"
	}
	return fmt.Sprintf("<reduce %d>", v)
}
