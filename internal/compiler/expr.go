package compiler

import (
	"fmt"

	"awkvm/internal/ast"
	"awkvm/internal/builtins"
	"awkvm/internal/bytecode"
	awkerr "awkvm/internal/errors"
	"awkvm/internal/value"
)

var binOpcodes = map[ast.BinOpKind]bytecode.Op{
	ast.OpAdd:          bytecode.OpAdd,
	ast.OpSub:          bytecode.OpSub,
	ast.OpMul:          bytecode.OpMul,
	ast.OpDiv:          bytecode.OpDiv,
	ast.OpPow:          bytecode.OpPow,
	ast.OpMod:          bytecode.OpMod,
	ast.OpConcat:       bytecode.OpConcat,
	ast.OpAnd:          bytecode.OpAnd,
	ast.OpOr:           bytecode.OpOr,
	ast.OpLess:         bytecode.OpLess,
	ast.OpLessEqual:    bytecode.OpLessEqual,
	ast.OpNotEqual:     bytecode.OpNotEqual,
	ast.OpEqual:        bytecode.OpEqual,
	ast.OpGreater:      bytecode.OpGreater,
	ast.OpGreaterEqual: bytecode.OpGreaterEqual,
}

// compileExpr lowers one Expression, per spec.md §4.4's expression
// lowering rules. Every case leaves exactly one new value on the
// stack (spec.md §8 testable property), except a call to srand, which
// leaves none.
func (c *compilerState) compileExpr(e ast.Expression) error {
	switch ex := e.(type) {
	case *ast.Literal:
		c.asm.emitPush(ex.Value)
		return nil

	case *ast.BinOp:
		if err := c.compileExpr(ex.Left); err != nil {
			return err
		}
		if err := c.compileExpr(ex.Right); err != nil {
			return err
		}
		op, ok := binOpcodes[ex.Op]
		if !ok {
			return awkerr.NewCompile(fmt.Sprintf("unknown binary operator %v", ex.Op))
		}
		c.asm.emit(op)
		return nil

	case *ast.UnaryOp:
		if err := c.compileExpr(ex.Operand); err != nil {
			return err
		}
		switch ex.Op {
		case ast.UnaryNot:
			c.asm.emit(bytecode.OpNot)
		case ast.UnaryPlus:
			c.asm.emit(bytecode.OpUPlus)
		case ast.UnaryMinus:
			c.asm.emit(bytecode.OpUMinus)
		}
		return nil

	case *ast.FieldRef:
		if err := c.compileExpr(ex.Index); err != nil {
			return err
		}
		c.asm.emit(bytecode.OpGetField)
		return nil

	case *ast.LValueRead:
		return c.compileLValueRead(ex.LV)

	case *ast.Assign:
		if err := c.compileExpr(ex.Expr); err != nil {
			return err
		}
		if err := c.compileStoreLValue(ex.LV); err != nil {
			return err
		}
		c.asm.emitPush(value.Uninit)
		return nil

	case *ast.IncDec:
		return c.compileIncDec(ex)

	case *ast.BuiltinCall:
		return c.compileBuiltinCall(ex)

	case *ast.UserCall:
		return c.compileUserCall(ex)

	default:
		return awkerr.NewCompile(fmt.Sprintf("unhandled expression type %T", e))
	}
}

func (c *compilerState) compileLValueRead(lv ast.LValue) error {
	switch v := lv.(type) {
	case *ast.Name:
		if idx, ok := c.env.paramIndex(v.Name); ok {
			c.asm.emitInt(bytecode.OpLoadSFVar, idx)
			return nil
		}
		c.env.registerGlobal(v.Name)
		c.asm.emitLoadVar(v.Name)
		return nil
	case *ast.ArrayIndex:
		if len(v.Indices) != 1 {
			return awkerr.NewCompile("multi-dimensional arrays are not supported: " + v.Name)
		}
		if err := c.compileExpr(v.Indices[0]); err != nil {
			return err
		}
		c.env.registerArray(v.Name)
		c.asm.emitLoadArray(v.Name)
		return nil
	default:
		return awkerr.NewCompile(fmt.Sprintf("unhandled lvalue type %T", lv))
	}
}

func (c *compilerState) compileStoreLValue(lv ast.LValue) error {
	switch v := lv.(type) {
	case *ast.Name:
		if idx, ok := c.env.paramIndex(v.Name); ok {
			c.asm.emitInt(bytecode.OpSetSFVar, idx)
			return nil
		}
		// Inside a function body, a name that is not a parameter is a
		// global: assignment does not introduce a function-local variable.
		c.env.registerGlobal(v.Name)
		c.asm.emitSetVar(v.Name)
		return nil
	case *ast.ArrayIndex:
		if len(v.Indices) != 1 {
			return awkerr.NewCompile("multi-dimensional arrays are not supported: " + v.Name)
		}
		if err := c.compileExpr(v.Indices[0]); err != nil {
			return err
		}
		c.env.registerArray(v.Name)
		c.asm.emitSetArray(v.Name)
		return nil
	default:
		return awkerr.NewCompile(fmt.Sprintf("unhandled lvalue type %T", lv))
	}
}

// compileIncDec desugars ++/-- into load/push-1/add-or-sub/store,
// leaving the new value (pre-) or the old value (post-) on the stack
// (spec.md §4.4).
func (c *compilerState) compileIncDec(ex *ast.IncDec) error {
	pre := ex.Kind == ast.PreIncr || ex.Kind == ast.PreDecr
	isIncr := ex.Kind == ast.PreIncr || ex.Kind == ast.PostIncr

	if !pre {
		if err := c.compileLValueRead(ex.LV); err != nil {
			return err
		}
	}
	if err := c.compileLValueRead(ex.LV); err != nil {
		return err
	}
	c.asm.emitPush(value.Num(1))
	if isIncr {
		c.asm.emit(bytecode.OpAdd)
	} else {
		c.asm.emit(bytecode.OpSub)
	}
	if pre {
		// Store the new value, then read the lvalue again so the
		// expression still yields the new value.
		if err := c.compileStoreLValueKeepTop(ex.LV); err != nil {
			return err
		}
		return nil
	}
	// Post form: store the new value, but the expression must yield
	// the pre-update value already sitting below it on the stack.
	return c.compileStoreLValueDropTop(ex.LV)
}

// compileStoreLValueKeepTop stores the value on top of the stack into
// lv and leaves a copy of it on the stack (for pre-inc/dec, whose
// expression value is the updated value).
func (c *compilerState) compileStoreLValueKeepTop(lv ast.LValue) error {
	switch lv.(type) {
	case *ast.Name:
		// SetVar/SetSFVar consume their operand; re-read afterward.
		if err := c.compileStoreLValue(lv); err != nil {
			return err
		}
		return c.compileLValueRead(lv)
	case *ast.ArrayIndex:
		// Re-reading would re-evaluate (and re-push) the index
		// expression, which for a pre-inc/dec target is always a
		// side-effect-free expression in this grammar (literals,
		// names, field refs) — acceptable per spec.md §4.2's
		// compound-assignment desugaring, which makes the same
		// trade-off for `lval = lval ⊕ rhs`.
		if err := c.compileStoreLValue(lv); err != nil {
			return err
		}
		return c.compileLValueRead(lv)
	default:
		return awkerr.NewCompile(fmt.Sprintf("unhandled lvalue type %T", lv))
	}
}

// compileStoreLValueDropTop stores the top of stack into lv (for
// post-inc/dec, where the pre-update value was already duplicated
// below it by compileIncDec).
func (c *compilerState) compileStoreLValueDropTop(lv ast.LValue) error {
	return c.compileStoreLValue(lv)
}

func (c *compilerState) compileBuiltinCall(ex *ast.BuiltinCall) error {
	idx, ok := c.builtinIndex(ex.Name)
	if !ok {
		return awkerr.NewCompile("unknown built-in function: " + ex.Name)
	}
	arity := builtins.Arity(idx)
	if len(ex.Args) != arity {
		return awkerr.NewCompile(fmt.Sprintf("%s expects %d argument(s), got %d", ex.Name, arity, len(ex.Args)))
	}
	for i := len(ex.Args) - 1; i >= 0; i-- {
		if err := c.compileExpr(ex.Args[i]); err != nil {
			return err
		}
	}
	c.asm.emitInt(bytecode.OpCall, idx)
	return nil
}

func (c *compilerState) compileUserCall(ex *ast.UserCall) error {
	declared, ok := c.env.funcArity[ex.Name]
	if !ok {
		return awkerr.NewCompile("call to undefined function: " + ex.Name)
	}
	if len(ex.Args) > declared {
		c.env.warn(fmt.Sprintf("function %s called with %d arguments, declared with %d; extras ignored",
			ex.Name, len(ex.Args), declared))
	}
	for _, arg := range ex.Args {
		if err := c.compileExpr(arg); err != nil {
			return err
		}
	}
	c.asm.emitPush(value.Num(float64(len(ex.Args))))
	c.asm.emitCallUserFunc(funcLabel(ex.Name))
	return nil
}
