package builtins

import (
	"math"
	"math/rand"
	"testing"

	"awkvm/internal/value"
)

type fakeRuntime struct {
	stack []value.Value
	rng   *rand.Rand
}

func (f *fakeRuntime) Pop() value.Value {
	n := len(f.stack) - 1
	v := f.stack[n]
	f.stack = f.stack[:n]
	return v
}

func (f *fakeRuntime) Push(v value.Value) { f.stack = append(f.stack, v) }
func (f *fakeRuntime) Rand() *rand.Rand   { return f.rng }

func newFake(args ...value.Value) *fakeRuntime {
	return &fakeRuntime{stack: args, rng: rand.New(rand.NewSource(1))}
}

func TestLookupOrderAndArity(t *testing.T) {
	names := []string{"sin", "cos", "exp", "log", "sqrt", "int", "atan2",
		"rand", "srand", "tolower", "toupper", "length", "index", "system"}
	for i, n := range names {
		idx, ok := Lookup(n)
		if !ok {
			t.Errorf("expected %q to be registered", n)
		} else if idx != i {
			t.Errorf("%q index = %d, want %d", n, idx, i)
		}
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("nope should not be registered")
	}
	idx, _ := Lookup("atan2")
	if Arity(idx) != 2 {
		t.Errorf("atan2 arity = %d, want 2", Arity(idx))
	}
}

func TestSqrtAndInt(t *testing.T) {
	idx, _ := Lookup("sqrt")
	rt := newFake(value.Num(9))
	Call(idx, rt)
	if got := rt.Pop().ToNumber(); got != 3 {
		t.Errorf("sqrt(9) = %v, want 3", got)
	}

	idx, _ = Lookup("int")
	rt = newFake(value.Num(3.9))
	Call(idx, rt)
	if got := rt.Pop().ToNumber(); got != 3 {
		t.Errorf("int(3.9) = %v, want 3", got)
	}
}

func TestAtan2MatchesYX(t *testing.T) {
	idx, _ := Lookup("atan2")
	rt := newFake(value.Num(1), value.Num(2)) // args pushed right-to-left: x=1 pushed first (bottom), y=2 pushed last (top), so y pops first
	Call(idx, rt)
	want := math.Atan2(2, 1)
	if got := rt.Pop().ToNumber(); got != want {
		t.Errorf("atan2 = %v, want %v", got, want)
	}
}

func TestIndexOneBasedOrZero(t *testing.T) {
	idx, _ := Lookup("index")
	rt := newFake(value.Str("ll"), value.Str("hello")) // args pushed right-to-left: s="hello" popped first, t="ll" popped second
	Call(idx, rt)
	if got := rt.Pop().ToNumber(); got != 3 {
		t.Errorf("index(hello, ll) = %v, want 3", got)
	}

	rt = newFake(value.Str("zz"), value.Str("hello"))
	Call(idx, rt)
	if got := rt.Pop().ToNumber(); got != 0 {
		t.Errorf("index miss = %v, want 0", got)
	}
}

func TestLengthCountsRunes(t *testing.T) {
	idx, _ := Lookup("length")
	rt := newFake(value.Str("héllo"))
	Call(idx, rt)
	if got := rt.Pop().ToNumber(); got != 5 {
		t.Errorf("length = %v, want 5", got)
	}
}

func TestToUpperLower(t *testing.T) {
	idx, _ := Lookup("toupper")
	rt := newFake(value.Str("AbC"))
	Call(idx, rt)
	if got := rt.Pop().ToString(); got != "ABC" {
		t.Errorf("toupper = %q", got)
	}

	idx, _ = Lookup("tolower")
	rt = newFake(value.Str("AbC"))
	Call(idx, rt)
	if got := rt.Pop().ToString(); got != "abc" {
		t.Errorf("tolower = %q", got)
	}
}

func TestRandInUnitInterval(t *testing.T) {
	idx, _ := Lookup("rand")
	rt := newFake()
	Call(idx, rt)
	got := rt.Pop().ToNumber()
	if got < 0 || got >= 1 {
		t.Errorf("rand() = %v, want in [0,1)", got)
	}
}
