package analysis

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/KaramelBytes/filesense/internal/dataset"
)

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ToNumber coerces a cell to a finite number. It never fails loudly; ok is
// false when the cell is absent, non-numeric or not finite.
//
// Strings are trimmed first. A string of only whitespace is 0. Integer
// literals with a 0x, 0o or 0b prefix are accepted. Infinity spellings are
// rejected since the result would not be finite.
func ToNumber(v dataset.Value) (float64, bool) {
	if f, ok := v.Num(); ok {
		return f, finite(f)
	}
	s, ok := v.Str()
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if f, ok := prefixedInt(s); ok {
		return f, finite(f)
	}
	if !decimalLiteral.MatchString(s) {
		return 0, false
	}
	// Overflow yields ±Inf and is rejected below; underflow yields 0.
	f, _ := strconv.ParseFloat(s, 64)
	return f, finite(f)
}

func prefixedInt(s string) (float64, bool) {
	if len(s) < 3 || s[0] != '0' {
		return 0, false
	}
	var base int
	switch s[1] {
	case 'x', 'X':
		base = 16
	case 'o', 'O':
		base = 8
	case 'b', 'B':
		base = 2
	default:
		return 0, false
	}
	digits := s[2:]
	if strings.ContainsAny(digits, "_+-") {
		return 0, false
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return 0, false
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f, true
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
