package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Value is a nullable scalar column value as read from the navdata database.
// SQLite columns are dynamically typed, so a pass-through field may hold an
// integer in one row and text in the next; Value keeps whatever was stored.
// The zero Value is null.
type Value struct {
	v any // nil, int64, float64, string or bool
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Int wraps an integer.
func Int(i int64) Value { return Value{v: i} }

// Real wraps a floating point number.
func Real(f float64) Value { return Value{v: f} }

// Str wraps a text value.
func Str(s string) Value { return Value{v: s} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{v: b} }

// ValueOf converts a value produced by database/sql (or decoded JSON) into a
// Value. Unknown types are rendered with fmt.
func ValueOf(x any) Value {
	switch t := x.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case int64:
		return Int(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case float64:
		return Real(t)
	case float32:
		return Real(float64(t))
	case string:
		return Str(t)
	case []byte:
		return Str(string(t))
	case bool:
		return Bool(t)
	case time.Time:
		return Str(t.Format("2006-01-02 15:04:05"))
	default:
		return Str(fmt.Sprint(t))
	}
}

// IntPtr returns Int(*p), or null when p is nil.
func IntPtr(p *int64) Value {
	if p == nil {
		return Value{}
	}
	return Int(*p)
}

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.v == nil }

// Any returns the underlying Go value.
func (v Value) Any() any { return v.v }

// IsText reports whether the value holds exactly the string s.
func (v Value) IsText(s string) bool {
	t, ok := v.v.(string)
	return ok && t == s
}

// IsOne reports whether the value compares equal to the number 1
// (integer 1, real 1.0 or boolean true).
func (v Value) IsOne() bool {
	switch t := v.v.(type) {
	case int64:
		return t == 1
	case float64:
		return t == 1
	case bool:
		return t
	}
	return false
}

// Int64 returns the value as an integer if it holds an integer, an integral
// real, or text that parses as one.
func (v Value) Int64() (int64, bool) {
	switch t := v.v.(type) {
	case int64:
		return t, true
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return int64(t), true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Float64 returns the value as a float if it is numeric.
func (v Value) Float64() (float64, bool) {
	switch t := v.v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

// Truncate converts the value to an integer, truncating reals toward zero.
// Text is accepted when it parses as a number.
func (v Value) Truncate() (int64, bool) {
	switch t := v.v.(type) {
	case int64:
		return t, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// literal renders a non-null value as text for angle parsing: integers in
// decimal, reals in shortest round-trip form with a trailing ".0" when
// integral, booleans as True/False, text as-is.
func (v Value) literal() string {
	switch t := v.v.(type) {
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return formatReal(t)
	case string:
		return t
	case bool:
		if t {
			return "True"
		}
		return "False"
	}
	return ""
}

func (v Value) String() string {
	if v.IsNull() {
		return "null"
	}
	return v.literal()
}

// MarshalJSON keeps the notation the engine's files use for reals, so 3.0
// stays "3.0".
func (v Value) MarshalJSON() ([]byte, error) {
	switch t := v.v.(type) {
	case nil:
		return []byte("null"), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("encode value: unsupported real %v", t)
		}
		return []byte(formatReal(t)), nil
	case string:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return nil, fmt.Errorf("encode value: %w", err)
		}
		return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
	default:
		return json.Marshal(t)
	}
}

// UnmarshalJSON decodes numbers without a fraction or exponent as integers
// and everything else as reals.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	switch t := raw.(type) {
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, err := t.Int64(); err == nil {
				*v = Int(n)
				return nil
			}
		}
		f, err := t.Float64()
		if err != nil {
			return fmt.Errorf("decode value: %w", err)
		}
		*v = Real(f)
	case map[string]any, []any:
		return fmt.Errorf("decode value: non-scalar %s", data)
	default:
		*v = ValueOf(t)
	}
	return nil
}

// formatReal renders f with the shortest digits that round-trip, switching
// to exponent notation below 1e-4 and from 1e16 upward, and keeping ".0" on
// integral values.
func formatReal(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// RoundCoordinate rounds to CoordinatePrecision decimal places using
// correctly rounded decimal conversion.
func RoundCoordinate(f float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', CoordinatePrecision, 64), 64)
	if err != nil {
		return f
	}
	return r
}
