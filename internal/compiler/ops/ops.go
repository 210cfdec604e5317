// Package ops holds the mutable operator registry consulted and extended by
// the parser. User code can introduce new operators mid-session, so the table
// is explicit shared state owned by the session and threaded into every parse
// call, never a package-level global.
package ops

type Arity int

const (
	UnaryOp Arity = iota + 1
	BinaryOp
)

func (a Arity) String() string {
	if a == UnaryOp {
		return "unary"
	}
	return "binary"
}

// Def describes one operator: its symbol, whether it is unary or binary, and
// (for binary operators) its precedence-climbing weight. Associativity is
// fixed: all binary operators are left-associative.
type Def struct {
	Symbol     string
	Arity      Arity
	Precedence int
}

type key struct {
	symbol string
	arity  Arity
}

type Table struct {
	defs map[key]Def
}

// NewTable returns a table seeded with the built-in binary operators.
// Assignment is the loosest-binding operator; there are no built-in unary
// operators, only user-defined ones.
func NewTable() *Table {
	t := &Table{defs: make(map[key]Def)}
	for _, d := range []Def{
		{Symbol: "=", Arity: BinaryOp, Precedence: 2},
		{Symbol: "<", Arity: BinaryOp, Precedence: 10},
		{Symbol: "+", Arity: BinaryOp, Precedence: 20},
		{Symbol: "-", Arity: BinaryOp, Precedence: 20},
		{Symbol: "*", Arity: BinaryOp, Precedence: 40},
		{Symbol: "/", Arity: BinaryOp, Precedence: 40},
	} {
		t.Define(d)
	}
	return t
}

// Define registers an operator. A later definition for the same
// (symbol, arity) pair overwrites the earlier one: last definition wins,
// built-ins included.
func (t *Table) Define(d Def) {
	t.defs[key{d.Symbol, d.Arity}] = d
}

func (t *Table) Lookup(symbol string, arity Arity) (Def, bool) {
	d, ok := t.defs[key{symbol, arity}]
	return d, ok
}

// Precedence returns the binary precedence of symbol, or -1 if symbol is not
// a known binary operator. -1 is below every valid precedence, so it doubles
// as the parser's stop sentinel.
func (t *Table) Precedence(symbol string) int {
	if d, ok := t.Lookup(symbol, BinaryOp); ok {
		return d.Precedence
	}
	return -1
}
