package compiler

import (
	"fmt"

	"awkvm/internal/ast"
	"awkvm/internal/bytecode"
	awkerr "awkvm/internal/errors"
	"awkvm/internal/value"
)

// compileStatement lowers one Statement, per spec.md §4.4's statement
// lowering rules.
func (c *compilerState) compileStatement(s ast.Statement) error {
	switch st := s.(type) {
	case *ast.Block:
		for _, child := range st.Stmts {
			if err := c.compileStatement(child); err != nil {
				return err
			}
		}
		return nil

	case *ast.Print:
		// Compiled left-to-right; Print(n)'s handler pops into
		// reversed slots and prints them back in source order.
		for _, arg := range st.Args {
			if err := c.compileExpr(arg); err != nil {
				return err
			}
		}
		c.asm.emitInt(bytecode.OpPrint, len(st.Args))
		return nil

	case *ast.Printf:
		if err := c.compileExpr(st.Format); err != nil {
			return err
		}
		for _, arg := range st.Args {
			if err := c.compileExpr(arg); err != nil {
				return err
			}
		}
		c.asm.emitInt(bytecode.OpPrintf, len(st.Args))
		return nil

	case *ast.ExprStmt:
		if err := c.compileExpr(st.Expr); err != nil {
			return err
		}
		// srand pushes no result (internal/builtins), so there is
		// nothing to pop after a bare srand statement.
		if call, ok := st.Expr.(*ast.BuiltinCall); ok && call.Name == "srand" {
			return nil
		}
		c.asm.emit(bytecode.OpPop)
		return nil

	case *ast.While:
		k := c.env.whileCount
		c.env.whileCount++
		start := fmt.Sprintf("while_s_%d", k)
		end := fmt.Sprintf("while_e_%d", k)
		c.asm.label(start)
		if err := c.compileExpr(st.Cond); err != nil {
			return err
		}
		c.asm.emitJump(bytecode.OpNIf, end)
		c.env.pushLoop(loopLabels{continueLabel: start, breakLabel: end})
		err := c.compileStatement(st.Body)
		c.env.popLoop()
		if err != nil {
			return err
		}
		c.asm.emitJump(bytecode.OpJump, start)
		c.asm.label(end)
		return nil

	case *ast.For:
		k := c.env.forCount
		c.env.forCount++
		start := fmt.Sprintf("for_s_%d", k)
		cont := fmt.Sprintf("for_c_%d", k)
		end := fmt.Sprintf("for_e_%d", k)
		if st.Init != nil {
			if err := c.compileStatement(st.Init); err != nil {
				return err
			}
		}
		c.asm.label(start)
		if st.Cond != nil {
			if err := c.compileExpr(st.Cond); err != nil {
				return err
			}
			c.asm.emitJump(bytecode.OpNIf, end)
		}
		c.env.pushLoop(loopLabels{continueLabel: cont, breakLabel: end})
		err := c.compileStatement(st.Body)
		c.env.popLoop()
		if err != nil {
			return err
		}
		c.asm.label(cont)
		if st.Update != nil {
			if err := c.compileStatement(st.Update); err != nil {
				return err
			}
		}
		c.asm.emitJump(bytecode.OpJump, start)
		c.asm.label(end)
		return nil

	case *ast.If:
		k := c.env.ifCount
		c.env.ifCount++
		skip := fmt.Sprintf("if_elskip_%d", k)
		if err := c.compileExpr(st.Cond); err != nil {
			return err
		}
		c.asm.emitJump(bytecode.OpNIf, skip)
		if err := c.compileStatement(st.Then); err != nil {
			return err
		}
		c.asm.label(skip)
		return nil

	case *ast.IfElse:
		k := c.env.ifCount
		c.env.ifCount++
		elseLabel := fmt.Sprintf("if_else_%d", k)
		skip := fmt.Sprintf("if_elskip_%d", k)
		if err := c.compileExpr(st.Cond); err != nil {
			return err
		}
		c.asm.emitJump(bytecode.OpNIf, elseLabel)
		if err := c.compileStatement(st.Then); err != nil {
			return err
		}
		c.asm.emitJump(bytecode.OpJump, skip)
		c.asm.label(elseLabel)
		if err := c.compileStatement(st.Else); err != nil {
			return err
		}
		c.asm.label(skip)
		return nil

	case *ast.Return:
		if st.Expr != nil {
			if err := c.compileExpr(st.Expr); err != nil {
				return err
			}
		} else {
			c.asm.emitPush(value.Uninit)
		}
		c.asm.emit(bytecode.OpReturn)
		return nil

	case *ast.Break:
		loop, ok := c.env.currentLoop()
		if !ok {
			return awkerr.NewCompile("break used outside of a loop")
		}
		c.asm.emitJump(bytecode.OpJump, loop.breakLabel)
		return nil

	case *ast.Continue:
		loop, ok := c.env.currentLoop()
		if !ok {
			return awkerr.NewCompile("continue used outside of a loop")
		}
		c.asm.emitJump(bytecode.OpJump, loop.continueLabel)
		return nil

	default:
		return awkerr.NewCompile(fmt.Sprintf("unhandled statement type %T", s))
	}
}
