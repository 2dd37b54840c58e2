package lrtable

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/borgstrand/yakka/cfgrammar"
)

// The serialized table format is a versioned JSON envelope. Loaders reject
// unknown magics, mismatched versions, and tables whose grammar hash does
// not match the grammar they are loaded for.
const (
	TableFormatMagic   = "yakka-lrtable"
	TableFormatVersion = 1
)

// tableFile is the on-disk layout. All slices are written in ascending
// (row, column) order, so identical tables serialize byte-identically.
type tableFile struct {
	Magic       string      `json:"magic"`
	Version     int         `json:"version"`
	Grammar     string      `json:"grammar"`
	GrammarHash string      `json:"grammar_hash"`
	Tokens      []symbolRec `json:"tokens"`
	NonTerms    []symbolRec `json:"nonterms"`
	Rules       []ruleRec   `json:"rules"`
	StartState  uint        `json:"start_state"`
	States      int         `json:"states"`
	Action      matrixRec   `json:"action"`
	Goto        matrixRec   `json:"goto"`
}

type symbolRec struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ruleRec is the production metadata the runtime needs for reducing:
// the LHS symbol value and the RHS length.
type ruleRec struct {
	LHS int `json:"lhs"`
	Len int `json:"len"`
}

type matrixRec struct {
	MinCol int       `json:"min_col"`
	Cols   int       `json:"cols"`
	Null   int32     `json:"null"`
	Cells  []cellRec `json:"cells"`
}

type cellRec struct {
	Row int   `json:"row"`
	Col int   `json:"col"`
	Val int32 `json:"val"`
}

// TableError is a failure to load serialized tables: bad magic, version
// mismatch, or a stale grammar hash.
type TableError struct {
	Reason string
}

func (e *TableError) Error() string {
	return "table file: " + e.Reason
}

// WriteTables serializes the generated tables. CreateTables must have run
// before.
func (lrgen *TableGenerator) WriteTables(w io.Writer) error {
	if lrgen.actiontable == nil || lrgen.gototable == nil {
		return fmt.Errorf("tables not yet created; call CreateTables() first")
	}
	hash, err := lrgen.g.Hash()
	if err != nil {
		return err
	}
	tf := &tableFile{
		Magic:       TableFormatMagic,
		Version:     TableFormatVersion,
		Grammar:     lrgen.g.Name,
		GrammarHash: hash,
		StartState:  lrgen.dfa.S0.ID,
		States:      lrgen.dfa.Size(),
		Action:      matrixOf(lrgen.actiontable),
		Goto:        matrixOf(lrgen.gototable),
	}
	lrgen.g.EachTerminal(func(A *cfgrammar.Symbol) interface{} {
		tf.Tokens = append(tf.Tokens, symbolRec{Name: A.Name, Value: A.Value})
		return nil
	})
	lrgen.g.EachNonTerminal(func(A *cfgrammar.Symbol) interface{} {
		tf.NonTerms = append(tf.NonTerms, symbolRec{Name: A.Name, Value: A.Value})
		return nil
	})
	for n := 0; n < lrgen.g.Size(); n++ {
		r := lrgen.g.Rule(n)
		tf.Rules = append(tf.Rules, ruleRec{LHS: r.LHS.Value, Len: len(r.RHS())})
	}
	enc := json.NewEncoder(w)
	return enc.Encode(tf)
}

func matrixOf(t *Table) matrixRec {
	rec := matrixRec{
		MinCol: t.mincol,
		Cols:   t.matrix.N(),
		Null:   t.matrix.NullValue(),
	}
	t.matrix.Walk(func(i, j int, a, b int32) {
		rec.Cells = append(rec.Cells, cellRec{Row: i, Col: j, Val: a})
	})
	return rec
}

// ReadTables loads serialized tables for a grammar. The grammar must be
// the one the tables were generated from; a hash mismatch means the table
// file is stale and is rejected.
func ReadTables(r io.Reader, g *cfgrammar.Grammar) (actions *Table, gotos *Table, err error) {
	tf := &tableFile{}
	dec := json.NewDecoder(r)
	if err := dec.Decode(tf); err != nil {
		return nil, nil, &TableError{Reason: "corrupt: " + err.Error()}
	}
	if tf.Magic != TableFormatMagic {
		return nil, nil, &TableError{Reason: fmt.Sprintf("unknown magic %q", tf.Magic)}
	}
	if tf.Version != TableFormatVersion {
		return nil, nil, &TableError{
			Reason: fmt.Sprintf("version mismatch: file has %d, want %d", tf.Version, TableFormatVersion),
		}
	}
	hash, err := g.Hash()
	if err != nil {
		return nil, nil, err
	}
	if tf.GrammarHash != hash {
		return nil, nil, &TableError{Reason: "grammar hash mismatch, tables are stale"}
	}
	actions = tableOf(tf.Action, tf.States)
	gotos = tableOf(tf.Goto, tf.States)
	tracer().Infof("loaded tables for grammar %s: %d states", tf.Grammar, tf.States)
	return actions, gotos, nil
}

func tableOf(rec matrixRec, states int) *Table {
	t := newTable(states, rec.MinCol, rec.MinCol+rec.Cols-1)
	for _, c := range rec.Cells {
		t.matrix.Set(c.Row, c.Col, c.Val)
	}
	t.freeze()
	return t
}
