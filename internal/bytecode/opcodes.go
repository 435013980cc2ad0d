// Package bytecode defines the instruction set the compiler emits and
// the VM executes (spec.md §3 "Bytecode Program", §4.5). Instruction
// carries its operand inline as a resolved int, following
// original_source's vm/mod.rs Opcode enum (e.g. `Jump(usize)`) rather
// than the teacher's raw byte-packed Chunk.Code stream — an
// Instruction array matches spec.md §3's "ordered array of Opcodes"
// directly and needs no operand-width decoding in the VM loop.
package bytecode

type Op byte

const (
	OpEnd Op = iota
	OpPush
	OpPop
	OpJump
	OpIf
	OpNIf
	OpCall
	OpCallUserFunc
	OpReturn

	// Arithmetic / comparison / concat / logical — all pop two,
	// push one (spec.md §4.1, §4.5).
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpConcat
	OpAnd
	OpOr
	OpLess
	OpLessEqual
	OpNotEqual
	OpEqual
	OpGreater
	OpGreaterEqual

	// Unary.
	OpNot
	OpUPlus
	OpUMinus

	// I/O and record handling.
	OpReadline
	OpPrint
	OpPrintf
	OpGetField

	// Environment setup, emitted once by Stage B.
	OpInitEnv
	OpInitEnvArray

	// Variable/array/frame access.
	OpLoadVar
	OpSetVar
	OpLoadArray
	OpSetArray
	OpLoadSFVar
	OpSetSFVar
)

var opNames = map[Op]string{
	OpEnd: "End", OpPush: "Push", OpPop: "Pop", OpJump: "Jump",
	OpIf: "If", OpNIf: "NIf", OpCall: "Call", OpCallUserFunc: "CallUserFunc",
	OpReturn: "Return", OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div",
	OpMod: "Mod", OpPow: "Pow", OpConcat: "Concat", OpAnd: "And", OpOr: "Or",
	OpLess: "Less", OpLessEqual: "LessEqual", OpNotEqual: "NotEqual",
	OpEqual: "Equal", OpGreater: "Greater", OpGreaterEqual: "GreaterEqual",
	OpNot: "Not", OpUPlus: "UPlus", OpUMinus: "UMinus", OpReadline: "Readline",
	OpPrint: "Print", OpPrintf: "Printf", OpGetField: "GetField",
	OpInitEnv: "InitEnv", OpInitEnvArray: "InitEnvArray", OpLoadVar: "LoadVar",
	OpSetVar: "SetVar", OpLoadArray: "LoadArray", OpSetArray: "SetArray",
	OpLoadSFVar: "LoadSFVar", OpSetSFVar: "SetSFVar",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return "Unknown"
}
