package value

import (
	"math"

	"github.com/pkg/errors"
)

// ErrDivideByZero is the fatal ArithmeticError raised by Div and Mod
// when the right operand is zero (spec: division by zero is fatal).
var ErrDivideByZero = errors.New("division by zero")

func Add(l, r Value) Value { return Num(l.ToNumber() + r.ToNumber()) }
func Sub(l, r Value) Value { return Num(l.ToNumber() - r.ToNumber()) }
func Mul(l, r Value) Value { return Num(l.ToNumber() * r.ToNumber()) }

func Div(l, r Value) (Value, error) {
	rn := r.ToNumber()
	if rn == 0 {
		return Uninit, ErrDivideByZero
	}
	return Num(l.ToNumber() / rn), nil
}

func Mod(l, r Value) (Value, error) {
	rn := r.ToNumber()
	if rn == 0 {
		return Uninit, ErrDivideByZero
	}
	return Num(math.Mod(l.ToNumber(), rn)), nil
}

func Pow(l, r Value) Value { return Num(math.Pow(l.ToNumber(), r.ToNumber())) }

// Concat coerces both operands to string and joins them.
func Concat(l, r Value) Value { return Str(l.ToString() + r.ToString()) }

func boolNum(b bool) Value {
	if b {
		return Num(1)
	}
	return Num(0)
}

// And/Or combine two already-evaluated operands into the 0/1 result
// spec.md §4.1 describes. The compiler (§4.4) lowers both sides of a
// BinOp unconditionally before emitting the opcode, same as any other
// binary operator, so these do not themselves skip evaluation of
// either operand.
func And(l, r Value) Value { return boolNum(l.IsTrue() && r.IsTrue()) }
func Or(l, r Value) Value  { return boolNum(l.IsTrue() || r.IsTrue()) }

func Not(v Value) Value   { return boolNum(!v.IsTrue()) }
func UPlus(v Value) Value { return Num(v.ToNumber()) }
func UMinus(v Value) Value {
	return Num(-v.ToNumber())
}

type relOp int

const (
	relLT relOp = iota
	relLE
	relNE
	relEQ
	relGT
	relGE
)

// compare implements AWK's comparison rule: if both operands are
// Number, compare numerically; otherwise coerce both to String and
// compare lexically. (original_source's own comment in value.rs claims
// POSIX disagrees with this; spec.md preserves it as the common,
// practical AWK behavior.)
func compare(l, r Value, op relOp) Value {
	var result bool
	if l.kind == Number && r.kind == Number {
		ln, rn := l.num, r.num
		switch op {
		case relLT:
			result = ln < rn
		case relLE:
			result = ln <= rn
		case relNE:
			result = ln != rn
		case relEQ:
			result = ln == rn
		case relGT:
			result = ln > rn
		case relGE:
			result = ln >= rn
		}
	} else {
		ls, rs := l.ToString(), r.ToString()
		switch op {
		case relLT:
			result = ls < rs
		case relLE:
			result = ls <= rs
		case relNE:
			result = ls != rs
		case relEQ:
			result = ls == rs
		case relGT:
			result = ls > rs
		case relGE:
			result = ls >= rs
		}
	}
	return boolNum(result)
}

func Less(l, r Value) Value         { return compare(l, r, relLT) }
func LessEqual(l, r Value) Value    { return compare(l, r, relLE) }
func NotEqual(l, r Value) Value     { return compare(l, r, relNE) }
func Equal(l, r Value) Value        { return compare(l, r, relEQ) }
func Greater(l, r Value) Value      { return compare(l, r, relGT) }
func GreaterEqual(l, r Value) Value { return compare(l, r, relGE) }
