package vm

import (
	"fmt"
	"io"
	"strings"

	awkerr "awkvm/internal/errors"
	"awkvm/internal/value"
)

// printf implements the Printf(n) opcode: pop n arguments (pushed
// left-to-right by the compiler, so the first argument is deepest),
// then pop the format string, and write the formatted result with no
// trailing newline (spec.md §4.5 Printf — unlike Print, the newline is
// whatever the format string itself asks for).
//
// The verb subset (d/i/o/x/X/c/s/f/e/E/g/G/%) mirrors what original_source's
// ifunc.rs accepts from the real printf(3) family; width/precision/flag
// characters are passed through to Go's fmt verbatim.
func (vm *VM) printf(n int) error {
	args := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = vm.Pop()
	}
	format := vm.Pop().ToString()

	out, err := formatPrintf(format, args)
	if err != nil {
		return err
	}
	_, err = io.WriteString(vm.writer, out)
	return awkerr.Wrap(err, "writing output")
}

func formatPrintf(format string, args []value.Value) (string, error) {
	var b strings.Builder
	argi := 0
	nextArg := func() value.Value {
		if argi < len(args) {
			v := args[argi]
			argi++
			return v
		}
		return value.Uninit
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		start := i
		i++
		for i < len(format) && strings.ContainsRune("-+ 0#", rune(format[i])) {
			i++
		}
		for i < len(format) && format[i] >= '0' && format[i] <= '9' {
			i++
		}
		if i < len(format) && format[i] == '.' {
			i++
			for i < len(format) && format[i] >= '0' && format[i] <= '9' {
				i++
			}
		}
		if i >= len(format) {
			b.WriteString(format[start:])
			break
		}
		verb := format[i]
		spec := format[start : i+1]

		switch verb {
		case '%':
			b.WriteByte('%')
		case 'd', 'i':
			b.WriteString(fmt.Sprintf(spec[:len(spec)-1]+"d", int64(nextArg().ToNumber())))
		case 'o', 'x', 'X':
			b.WriteString(fmt.Sprintf(spec, int64(nextArg().ToNumber())))
		case 'c':
			v := nextArg()
			s := v.ToString()
			if v.Kind() == value.Number || s == "" {
				b.WriteRune(rune(int64(v.ToNumber())))
			} else {
				b.WriteByte(s[0])
			}
		case 'f', 'e', 'E', 'g', 'G':
			b.WriteString(fmt.Sprintf(spec, nextArg().ToNumber()))
		case 's':
			b.WriteString(fmt.Sprintf(spec, nextArg().ToString()))
		default:
			b.WriteString(spec)
		}
	}
	return b.String(), nil
}
