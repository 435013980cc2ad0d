package ast

import "awkvm/internal/value"

// Expression is any value-producing node.
type Expression interface{ exprNode() }

// BinOp operators, spanning arithmetic, concatenation, logical and
// comparison forms (spec.md §3).
type BinOpKind uint8

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpMod
	OpConcat
	OpAnd
	OpOr
	OpLess
	OpLessEqual
	OpNotEqual
	OpEqual
	OpGreater
	OpGreaterEqual
)

// IncDecKind distinguishes the four ++/-- forms.
type IncDecKind uint8

const (
	PreIncr IncDecKind = iota
	PreDecr
	PostIncr
	PostDecr
)

// UnaryOpKind covers the three unary value operations spec.md §4.1
// exposes (not, unary plus, unary minus) but that §3's closed
// Expression variant list has no dedicated node for. Added as a
// supplement rather than overloading BinOp with a synthetic zero
// operand; see DESIGN.md Open Questions.
type UnaryOpKind uint8

const (
	UnaryNot UnaryOpKind = iota
	UnaryPlus
	UnaryMinus
)

// UnaryOp is `!e`, `+e`, or `-e`.
type UnaryOp struct {
	Op      UnaryOpKind
	Operand Expression
}

func (*UnaryOp) exprNode() {}

// Literal wraps a constant Value known at parse time.
type Literal struct {
	Value value.Value
}

type BinOp struct {
	Op    BinOpKind
	Left  Expression
	Right Expression
}

// IncDec is ++lval / --lval / lval++ / lval--.
type IncDec struct {
	Kind IncDecKind
	LV   LValue
}

// FieldRef is `$expr`.
type FieldRef struct {
	Index Expression
}

// LValueRead reads the current value of an lvalue (bare name or
// name[index]).
type LValueRead struct {
	LV LValue
}

// Assign is `lval = expr`; compound assignment desugars to this plus a
// BinOp during parsing (spec.md §4.2).
type Assign struct {
	LV   LValue
	Expr Expression
}

// BuiltinCall invokes a function resolved in the built-in registry.
type BuiltinCall struct {
	Name string
	Args []Expression
}

// UserCall invokes a user-defined function.
type UserCall struct {
	Name string
	Args []Expression
}

func (*Literal) exprNode()     {}
func (*BinOp) exprNode()       {}
func (*IncDec) exprNode()      {}
func (*FieldRef) exprNode()    {}
func (*LValueRead) exprNode()  {}
func (*Assign) exprNode()      {}
func (*BuiltinCall) exprNode() {}
func (*UserCall) exprNode()    {}

// LValue is an assignable location: a bare name or an array index.
type LValue interface{ lvalueNode() }

type Name struct {
	Name string
}

// ArrayIndex is `name[expr, expr, ...]`. Spec.md §9/Non-goals: only
// single-dimension arrays are ever compiled; a multi-index expression
// parses but the compiler rejects it at lowering time.
type ArrayIndex struct {
	Name    string
	Indices []Expression
}

func (*Name) lvalueNode()       {}
func (*ArrayIndex) lvalueNode() {}
