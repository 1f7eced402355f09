// Package dataset holds the row model shared by loaders, the profiler and the
// HTTP API: schema-less rows whose cells are a closed scalar variant.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindString
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "absent"
	}
}

// Value is a single cell: a string, a number, or absent (null / missing key).
// The zero Value is absent.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// String returns a string cell.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Absent returns the missing-value sentinel.
func Absent() Value { return Value{} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Present reports whether the cell counts as a value for profiling: anything
// except absent and the empty string. "0", 0 and " " are all present.
func (v Value) Present() bool {
	switch v.kind {
	case KindAbsent:
		return false
	case KindString:
		return v.str != ""
	default:
		return true
	}
}

// Str returns the string payload when the value is a string.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Num returns the numeric payload when the value is a number.
func (v Value) Num() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String renders the value as text. Numbers use the shortest round-trip
// decimal form, switching to exponent notation outside [1e-6, 1e21), so that
// 30 and "30" share the same text.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return FormatNumber(v.num)
	default:
		return ""
	}
}

// FormatNumber formats f the way cell text is compared and displayed.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + sign + digits
}

// MarshalJSON writes strings as JSON strings, numbers as JSON numbers and
// absent or non-finite values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return marshalString(v.str)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(FormatNumber(v.num)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON value. Booleans become the strings "true" and
// "false"; arrays and objects become their compact JSON text.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return errors.New("empty json value")
	}
	switch b[0] {
	case 'n':
		*v = Absent()
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode string cell: %w", err)
		}
		*v = String(s)
	case 't', 'f':
		var x bool
		if err := json.Unmarshal(b, &x); err != nil {
			return fmt.Errorf("decode bool cell: %w", err)
		}
		*v = String(strconv.FormatBool(x))
	case '[', '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return fmt.Errorf("decode nested cell: %w", err)
		}
		*v = String(buf.String())
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			var numErr *strconv.NumError
			if !errors.As(err, &numErr) || !errors.Is(numErr.Err, strconv.ErrRange) {
				return fmt.Errorf("decode number cell %q: %w", b, err)
			}
		}
		*v = Number(f)
	}
	return nil
}

// marshalString encodes s as a JSON string without HTML escaping, so text
// such as "<10" reads the same in prompts as in the source file.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
