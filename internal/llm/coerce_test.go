package llm

import (
	"math"
	"testing"
)

func TestCoerceScore(t *testing.T) {
	cases := []struct {
		in   any
		want int
		ok   bool
	}{
		{float64(-5), 0, true},
		{float64(0), 0, true},
		{float64(50), 50, true},
		{float64(100), 100, true},
		{float64(137), 100, true},
		{"87", 87, true},
		{" 72.4 ", 72, true},
		{float64(86.5), 86, true},
		{float64(87.5), 88, true},
		{int64(42), 42, true},
		{"high", 0, false},
		{"Inf", 0, false},
		{"+Inf", 0, false},
		{"NaN", 0, false},
		{math.Inf(-1), 0, false},
		{true, 0, false},
		{nil, 0, false},
		{[]any{float64(1)}, 0, false},
		{map[string]any{}, 0, false},
	}

	for _, tc := range cases {
		got, ok := CoerceScore(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("CoerceScore(%#v) = (%d, %v), expected (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCoerceStrings(t *testing.T) {
	got := CoerceStrings([]any{" a ", "", float64(3), false, nil, map[string]any{"k": "v"}})
	want := []string{"a", "3", "false"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Element %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if out := CoerceStrings("not a list"); out == nil || len(out) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", out)
	}
}

func TestCoerceString(t *testing.T) {
	if got := CoerceString(float64(1861)); got != "1861" {
		t.Errorf("Expected 1861, got %q", got)
	}
	if got := CoerceString([]any{"x"}); got != "" {
		t.Errorf("Expected lists to become empty, got %q", got)
	}
	if got := CoerceString(nil); got != "" {
		t.Errorf("Expected null to become empty, got %q", got)
	}
}
