// Package vm executes a resolved bytecode.Program (spec.md §3 "VM
// State", §4.5). The fetch-decode-execute loop, its stack/pc/retpc/
// frame state, and the Readline/Print/GetField opcode bodies are
// grounded on original_source's vm/mod.rs `run` method and its
// op_readline/op_print/op_getfield_n helpers (including the inverted
// Readline polarity and the pc-increment-at-loop-bottom convention
// that lets CallUserFunc push its own still-unincremented pc as the
// return address). The surrounding struct shape (explicit Stack/PC/
// fields, a New constructor taking an io.Reader/io.Writer and a Run
// entry point) follows the
// teacher's internal/vmregister/vm.go collaborator style, adapted away
// from that file's NaN-boxed register design — spec.md §3 calls for a
// plain value stack, not registers.
package vm

import (
	"bufio"
	"io"
	"math/rand"
	"strings"

	"awkvm/internal/builtins"
	"awkvm/internal/bytecode"
	awkerr "awkvm/internal/errors"
	"awkvm/internal/value"
)

// VM is a single-threaded, deterministic stack machine (spec.md §5).
type VM struct {
	prog *bytecode.Program
	pc   int

	stack []value.Value

	globals []value.Value
	arrays  []map[string]value.Value

	retStack []int
	frames   [][]value.Value

	fields []string
	nf     int

	rng *rand.Rand

	reader *bufio.Reader
	writer *bufio.Writer
}

// New builds a VM ready to run prog against input/output streams
// (spec.md §6 "Input stream"/"Output stream" contracts).
func New(prog *bytecode.Program, input io.Reader, output io.Writer) *VM {
	return &VM{
		prog:    prog,
		globals: make([]value.Value, 0),
		reader:  bufio.NewReader(input),
		writer:  bufio.NewWriter(output),
		rng:     rand.New(rand.NewSource(0)),
	}
}

// Globals exposes the final globals table, for `-d 3` dumps.
func (vm *VM) Globals() []value.Value { return vm.globals }

// Stack exposes the final value stack, for `-d 3` dumps.
func (vm *VM) Stack() []value.Value { return vm.stack }

// Pop and Push satisfy builtins.Runtime; Rand shares the VM's
// generator with the rand/srand built-ins (spec.md §5 "the
// pseudo-random number generator ... lives in the VM").
func (vm *VM) Pop() value.Value {
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v
}

func (vm *VM) Push(v value.Value) { vm.stack = append(vm.stack, v) }
func (vm *VM) Rand() *rand.Rand   { return vm.rng }

// Run executes the program to completion: either OpEnd is reached, or
// a RuntimeError aborts the process (spec.md §4.5, §7).
func (vm *VM) Run() error {
	defer vm.writer.Flush()
	for {
		if vm.pc < 0 || vm.pc >= vm.prog.Len() {
			return awkerr.NewRuntime("program counter ran off the end of the program")
		}
		instr := vm.prog.Instructions[vm.pc]
		jumped, err := vm.step(instr)
		if err != nil {
			return err
		}
		if instr.Op == bytecode.OpEnd {
			return vm.writer.Flush()
		}
		if !jumped {
			vm.pc++
		}
	}
}

// step executes one instruction, returning whether it already set pc
// itself (Jump/If-taken/NIf-taken/CallUserFunc), matching
// original_source's "continue skips the trailing pc+=1" convention.
func (vm *VM) step(instr bytecode.Instruction) (bool, error) {
	switch instr.Op {
	case bytecode.OpEnd:
		return true, nil

	case bytecode.OpPush:
		vm.Push(instr.Const)
		return false, nil

	case bytecode.OpPop:
		vm.Pop()
		return false, nil

	case bytecode.OpJump:
		vm.pc = instr.Operand
		return true, nil

	case bytecode.OpIf:
		if vm.Pop().IsTrue() {
			vm.pc = instr.Operand
			return true, nil
		}
		return false, nil

	case bytecode.OpNIf:
		if !vm.Pop().IsTrue() {
			vm.pc = instr.Operand
			return true, nil
		}
		return false, nil

	case bytecode.OpCall:
		builtins.Call(instr.Operand, vm)
		return false, nil

	case bytecode.OpCallUserFunc:
		vm.retStack = append(vm.retStack, vm.pc)
		argc := int(vm.Pop().ToNumber())
		args := make([]value.Value, argc)
		for i := argc - 1; i >= 0; i-- {
			args[i] = vm.Pop()
		}
		vm.frames = append(vm.frames, args)
		vm.pc = instr.Operand
		return true, nil

	case bytecode.OpReturn:
		n := len(vm.retStack) - 1
		vm.pc = vm.retStack[n]
		vm.retStack = vm.retStack[:n]
		vm.frames = vm.frames[:len(vm.frames)-1]
		return false, nil

	case bytecode.OpAdd:
		return false, vm.binaryValue(value.Add)
	case bytecode.OpSub:
		return false, vm.binaryValue(value.Sub)
	case bytecode.OpMul:
		return false, vm.binaryValue(value.Mul)
	case bytecode.OpDiv:
		return false, vm.binaryFallible(value.Div)
	case bytecode.OpMod:
		return false, vm.binaryFallible(value.Mod)
	case bytecode.OpPow:
		return false, vm.binaryValue(value.Pow)
	case bytecode.OpConcat:
		return false, vm.binaryValue(value.Concat)
	case bytecode.OpAnd:
		return false, vm.binaryValue(value.And)
	case bytecode.OpOr:
		return false, vm.binaryValue(value.Or)
	case bytecode.OpLess:
		return false, vm.binaryValue(value.Less)
	case bytecode.OpLessEqual:
		return false, vm.binaryValue(value.LessEqual)
	case bytecode.OpNotEqual:
		return false, vm.binaryValue(value.NotEqual)
	case bytecode.OpEqual:
		return false, vm.binaryValue(value.Equal)
	case bytecode.OpGreater:
		return false, vm.binaryValue(value.Greater)
	case bytecode.OpGreaterEqual:
		return false, vm.binaryValue(value.GreaterEqual)

	case bytecode.OpNot:
		vm.Push(value.Not(vm.Pop()))
		return false, nil
	case bytecode.OpUPlus:
		vm.Push(value.UPlus(vm.Pop()))
		return false, nil
	case bytecode.OpUMinus:
		vm.Push(value.UMinus(vm.Pop()))
		return false, nil

	case bytecode.OpReadline:
		return false, vm.readline()

	case bytecode.OpPrint:
		return false, vm.print(instr.Operand)

	case bytecode.OpPrintf:
		return false, vm.printf(instr.Operand)

	case bytecode.OpGetField:
		idx := int(vm.Pop().ToNumber())
		vm.Push(vm.getField(idx))
		return false, nil

	case bytecode.OpInitEnv:
		vm.globals = make([]value.Value, instr.Operand)
		return false, nil

	case bytecode.OpInitEnvArray:
		vm.arrays = make([]map[string]value.Value, instr.Operand)
		for i := range vm.arrays {
			vm.arrays[i] = map[string]value.Value{}
		}
		return false, nil

	case bytecode.OpLoadVar:
		vm.Push(vm.globals[instr.Operand])
		return false, nil

	case bytecode.OpSetVar:
		vm.globals[instr.Operand] = vm.Pop()
		return false, nil

	case bytecode.OpLoadArray:
		key := vm.Pop().ToString()
		v, ok := vm.arrays[instr.Operand][key]
		if !ok {
			v = value.Uninit
		}
		vm.Push(v)
		return false, nil

	case bytecode.OpSetArray:
		key := vm.Pop().ToString()
		v := vm.Pop()
		vm.arrays[instr.Operand][key] = v
		return false, nil

	case bytecode.OpLoadSFVar:
		vm.Push(vm.frames[len(vm.frames)-1][instr.Operand])
		return false, nil

	case bytecode.OpSetSFVar:
		vm.frames[len(vm.frames)-1][instr.Operand] = vm.Pop()
		return false, nil

	default:
		return false, awkerr.NewRuntime("unimplemented opcode " + instr.Op.String())
	}
}

func (vm *VM) binaryValue(op func(l, r value.Value) value.Value) error {
	r := vm.Pop()
	l := vm.Pop()
	vm.Push(op(l, r))
	return nil
}

func (vm *VM) binaryFallible(op func(l, r value.Value) (value.Value, error)) error {
	r := vm.Pop()
	l := vm.Pop()
	v, err := op(l, r)
	if err != nil {
		return awkerr.Wrap(err, "arithmetic")
	}
	vm.Push(v)
	return nil
}

// readline reads one record from the input stream (spec.md §4.5
// Readline, §9 "inverted polarity"): push 0 and split Fields on
// success, push 1 at EOF.
func (vm *VM) readline() error {
	line, err := vm.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return awkerr.Wrap(err, "reading input")
	}
	if err == io.EOF && line == "" {
		vm.Push(value.Num(1))
		return nil
	}
	line = strings.TrimRight(line, "\n")
	line = strings.TrimRight(line, "\r")
	vm.fields = strings.Fields(line)
	vm.nf = len(vm.fields)
	vm.Push(value.Num(0))
	return nil
}

func (vm *VM) getField(i int) value.Value {
	if i == 0 {
		return value.Str(strings.Join(vm.fields, " "))
	}
	if i >= 1 && i <= vm.nf {
		return value.Str(vm.fields[i-1])
	}
	return value.Str("")
}

func (vm *VM) print(n int) error {
	vals := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		vals[i] = vm.Pop()
	}
	parts := make([]string, n)
	for i, v := range vals {
		parts[i] = v.ToString()
	}
	_, err := io.WriteString(vm.writer, strings.Join(parts, " ")+"\n")
	if err != nil {
		return awkerr.Wrap(err, "writing output")
	}
	return nil
}
