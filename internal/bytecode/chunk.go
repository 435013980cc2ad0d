package bytecode

import (
	"fmt"

	"awkvm/internal/value"
)

// Instruction is one resolved bytecode instruction. Operand carries an
// already-resolved integer (jump target, call index, slot index, field
// count — whichever the Op expects); Const carries the literal operand
// for OpPush. Kept as a flat struct rather than the teacher's
// byte-packed Chunk.Code so the VM never decodes operand widths.
type Instruction struct {
	Op      Op
	Operand int
	Const   value.Value
}

// Program is the resolved, executable instruction sequence the
// compiler's Stage B produces and the VM runs read-only (spec.md §3).
type Program struct {
	Instructions []Instruction
}

func (p *Program) Len() int { return len(p.Instructions) }

func (p *Program) Append(instr Instruction) int {
	p.Instructions = append(p.Instructions, instr)
	return len(p.Instructions) - 1
}

func (i Instruction) String() string {
	switch i.Op {
	case OpPush:
		return fmt.Sprintf("Push %s", i.Const.ToString())
	case OpJump, OpIf, OpNIf, OpCallUserFunc:
		return fmt.Sprintf("%s %d", i.Op, i.Operand)
	case OpCall, OpPrint, OpPrintf, OpLoadVar, OpSetVar, OpLoadArray,
		OpSetArray, OpLoadSFVar, OpSetSFVar, OpInitEnv, OpInitEnvArray:
		return fmt.Sprintf("%s(%d)", i.Op, i.Operand)
	default:
		return i.Op.String()
	}
}
