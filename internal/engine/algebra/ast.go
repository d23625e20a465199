// Package algebra holds the symbolic layer used by the algebra engines:
// expression trees, parsing, layout, distributive expansion,
// canonicalization, structural comparison and mistake diagnosis.
package algebra

// Binary operators
const (
	OpAdd = "+"
	OpSub = "-"
	OpMul = "*"
	OpDiv = "/"
	OpPow = "^"
)

// Node is an expression tree node. The set of implementations is closed.
// Nodes are never shared between trees; transformations clone.
type Node interface {
	node()
	// Parens reports whether the node must be printed in parentheses
	// regardless of precedence.
	Parens() bool
	setParens(bool)
}

type grouping struct {
	ForceParens bool
}

func (g *grouping) Parens() bool     { return g.ForceParens }
func (g *grouping) setParens(v bool) { g.ForceParens = v }

type Number struct {
	grouping
	Value int64
}

type Variable struct {
	grouping
	Name string
}

// BinaryOp is an infix operation. Implicit marks a product written without
// an operator sign, like 3x.
type BinaryOp struct {
	grouping
	Op       string
	Left     Node
	Right    Node
	Implicit bool
}

// UnaryOp is a prefix operation; only negation is produced by the parser
type UnaryOp struct {
	grouping
	Op    string
	Child Node
}

type Equation struct {
	grouping
	Left  Node
	Right Node
}

// Root is a square root
type Root struct {
	grouping
	Child Node
}

func (*Number) node()   {}
func (*Variable) node() {}
func (*BinaryOp) node() {}
func (*UnaryOp) node()  {}
func (*Equation) node() {}
func (*Root) node()     {}

func Num(v int64) *Number {
	return &Number{Value: v}
}

func Var(name string) *Variable {
	return &Variable{Name: name}
}

func Add(l, r Node) *BinaryOp {
	return &BinaryOp{Op: OpAdd, Left: l, Right: r}
}

func Sub(l, r Node) *BinaryOp {
	return &BinaryOp{Op: OpSub, Left: l, Right: r}
}

func Mul(l, r Node) *BinaryOp {
	return &BinaryOp{Op: OpMul, Left: l, Right: r}
}

// Implicit builds a product written by juxtaposition
func Implicit(l, r Node) *BinaryOp {
	return &BinaryOp{Op: OpMul, Left: l, Right: r, Implicit: true}
}

func Div(l, r Node) *BinaryOp {
	return &BinaryOp{Op: OpDiv, Left: l, Right: r}
}

func Pow(base, exp Node) *BinaryOp {
	return &BinaryOp{Op: OpPow, Left: base, Right: exp}
}

func Neg(child Node) *UnaryOp {
	return &UnaryOp{Op: OpSub, Child: child}
}

func Eq(l, r Node) *Equation {
	return &Equation{Left: l, Right: r}
}

func Sqrt(child Node) *Root {
	return &Root{Child: child}
}

// Grouped marks n to be printed in parentheses and returns it
func Grouped[T Node](n T) T {
	n.setParens(true)
	return n
}

// Clone deep-copies a tree
func Clone(n Node) Node {
	var out Node
	switch v := n.(type) {
	case nil:
		return nil
	case *Number:
		out = &Number{Value: v.Value}
	case *Variable:
		out = &Variable{Name: v.Name}
	case *BinaryOp:
		out = &BinaryOp{Op: v.Op, Left: Clone(v.Left), Right: Clone(v.Right), Implicit: v.Implicit}
	case *UnaryOp:
		out = &UnaryOp{Op: v.Op, Child: Clone(v.Child)}
	case *Equation:
		out = &Equation{Left: Clone(v.Left), Right: Clone(v.Right)}
	case *Root:
		out = &Root{Child: Clone(v.Child)}
	default:
		panic("algebra: unknown node type")
	}
	out.setParens(n.Parens())
	return out
}

// Equal compares two trees structurally. Grouping and the implicit flag
// only affect printing and are ignored.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case *Number:
		y, ok := b.(*Number)
		return ok && x.Value == y.Value
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.Name == y.Name
	case *BinaryOp:
		y, ok := b.(*BinaryOp)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *UnaryOp:
		y, ok := b.(*UnaryOp)
		return ok && x.Op == y.Op && Equal(x.Child, y.Child)
	case *Equation:
		y, ok := b.(*Equation)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Root:
		y, ok := b.(*Root)
		return ok && Equal(x.Child, y.Child)
	}
	return false
}

// Variables returns the distinct variable names in n
func Variables(n Node) map[string]bool {
	out := make(map[string]bool)
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Variable:
			out[v.Name] = true
		case *BinaryOp:
			walk(v.Left)
			walk(v.Right)
		case *UnaryOp:
			walk(v.Child)
		case *Equation:
			walk(v.Left)
			walk(v.Right)
		case *Root:
			walk(v.Child)
		}
	}
	walk(n)
	return out
}
