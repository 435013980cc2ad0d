package compiler

import (
	"awkvm/internal/bytecode"
	awkerr "awkvm/internal/errors"
)

// resolve is compiler Stage B (spec.md §4.4): walk the labeled
// assembly to find every label's resolved instruction index (labels
// occupy no runtime slot and are stripped), then rewrite symbolic
// jump/call targets and variable/array names into integer indices.
// Slot indices themselves were already assigned in first-seen order
// during Stage A via env.registerGlobal/registerArray, so this pass
// only needs to look them up.
func resolve(a *asm, e *env) (*bytecode.Program, error) {
	prefix := prefixInstructions(e)

	labels := map[string]int{}
	idx := len(prefix)
	for _, ln := range a.lines {
		if ln.kind == asmLabelDef {
			labels[ln.labelName] = idx
			continue
		}
		idx++
	}

	prog := &bytecode.Program{Instructions: prefix}
	for _, ln := range a.lines {
		if ln.kind == asmLabelDef {
			continue
		}
		instr, err := resolveLine(ln, labels, e)
		if err != nil {
			return nil, err
		}
		prog.Instructions = append(prog.Instructions, instr)
	}
	return prog, nil
}

// prefixInstructions builds the InitEnv(n)/InitEnvArray(n) header Stage
// B prepends when globals and/or arrays were ever referenced.
func prefixInstructions(e *env) []bytecode.Instruction {
	var prefix []bytecode.Instruction
	if len(e.globalNames) > 0 {
		prefix = append(prefix, bytecode.Instruction{Op: bytecode.OpInitEnv, Operand: len(e.globalNames)})
	}
	if len(e.arrayNames) > 0 {
		prefix = append(prefix, bytecode.Instruction{Op: bytecode.OpInitEnvArray, Operand: len(e.arrayNames)})
	}
	return prefix
}

func resolveLine(ln line, labels map[string]int, e *env) (bytecode.Instruction, error) {
	switch ln.op {
	case bytecode.OpJump, bytecode.OpIf, bytecode.OpNIf, bytecode.OpCallUserFunc:
		target, ok := labels[ln.jumpLabel]
		if !ok {
			return bytecode.Instruction{}, awkerr.NewCompile("unresolved label: " + ln.jumpLabel)
		}
		return bytecode.Instruction{Op: ln.op, Operand: target}, nil

	case bytecode.OpLoadVar, bytecode.OpSetVar:
		slot, ok := e.globalIdx[ln.varName]
		if !ok {
			return bytecode.Instruction{}, awkerr.NewCompile("unresolved variable: " + ln.varName)
		}
		return bytecode.Instruction{Op: ln.op, Operand: slot}, nil

	case bytecode.OpLoadArray, bytecode.OpSetArray:
		slot, ok := e.arrayIdx[ln.arrName]
		if !ok {
			return bytecode.Instruction{}, awkerr.NewCompile("unresolved array: " + ln.arrName)
		}
		return bytecode.Instruction{Op: ln.op, Operand: slot}, nil

	case bytecode.OpPush:
		return bytecode.Instruction{Op: ln.op, Const: ln.constVal}, nil

	default:
		return bytecode.Instruction{Op: ln.op, Operand: ln.operand}, nil
	}
}
