package llm

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// CoerceString stringifies strings, numbers and bools.
// Objects, lists and null become "".
func CoerceString(v any) string {
	switch v.(type) {
	case nil, map[string]any, []any:
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// CoerceStrings keeps the non-blank scalar elements of a list, trimmed.
// Anything that is not a list yields an empty slice.
func CoerceStrings(v any) []string {
	out := []string{}
	items, isList := v.([]any)
	if !isList {
		return out
	}
	for _, item := range items {
		if s := strings.TrimSpace(CoerceString(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CoerceScore converts a number or numeric string to an integer in [0,100].
// Halves round to even. ok is false when v is not a finite number.
func CoerceScore(v any) (score int, ok bool) {
	var f float64
	switch x := v.(type) {
	case bool, nil:
		return 0, false
	case string:
		parsed, err := cast.ToFloat64E(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		parsed, err := cast.ToFloat64E(x)
		if err != nil {
			return 0, false
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return ClampScore(math.RoundToEven(f)), true
}

// ClampScore bounds a rounded score to [0,100]
func ClampScore(f float64) int {
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	default:
		return int(f)
	}
}
