package value

import "testing"

func TestToNumber(t *testing.T) {
	cases := []struct {
		v    Value
		want float64
	}{
		{Num(3.5), 3.5},
		{Str("42abc"), 42},
		{Str("abc"), 0},
		{Str("  -12.5"), -12.5},
		{Uninit, 0},
	}
	for _, c := range cases {
		if got := c.v.ToNumber(); got != c.want {
			t.Errorf("ToNumber(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestToString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Num(3), "3"},
		{Num(3.5), "3.5"},
		{Str("hi"), "hi"},
		{Uninit, ""},
	}
	for _, c := range cases {
		if got := c.v.ToString(); got != c.want {
			t.Errorf("ToString(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestIsTrue(t *testing.T) {
	if Num(0).IsTrue() {
		t.Error("Num(0) should be false")
	}
	if !Num(2).IsTrue() {
		t.Error("Num(2) should be true")
	}
	if Str("").IsTrue() {
		t.Error("empty string should be false")
	}
	if !Str("0").IsTrue() {
		t.Error("non-empty string \"0\" should be true (unlike most languages)")
	}
	if Uninit.IsTrue() {
		t.Error("Uninit should be false")
	}
}

func TestCompareNumericVsString(t *testing.T) {
	// both numeric: numeric compare
	if !Less(Num(2), Num(10)).IsTrue() {
		t.Error("2 < 10 numerically should be true")
	}
	// one side a plain string: string compare, "10" < "2" lexically
	if !Less(Str("10"), Str("2")).IsTrue() {
		t.Error("\"10\" < \"2\" lexically should be true")
	}
}

func TestDivModByZero(t *testing.T) {
	if _, err := Div(Num(1), Num(0)); err == nil {
		t.Error("Div by zero should error")
	}
	if _, err := Mod(Num(1), Num(0)); err == nil {
		t.Error("Mod by zero should error")
	}
}

func TestConcatCoercion(t *testing.T) {
	if got := Concat(Num(1), Str("x")).ToString(); got != "1x" {
		t.Errorf("Concat = %q, want %q", got, "1x")
	}
}
