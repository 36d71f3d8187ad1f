package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the scalar type held by a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindText
	KindInt
	KindFloat
	KindDate
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	default:
		return "null"
	}
}

// Value is a single table cell. The zero Value is Null.
type Value struct {
	kind Kind
	text string
	i    int64
	f    float64
	t    time.Time
}

// Null returns the null value.
func Null() Value { return Value{} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Date returns a date value truncated to the calendar day.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Parse converts a raw CSV field into a Value. Empty fields are Null,
// everything else is Text; typing is applied later by explicit coercion.
func Parse(field string) Value {
	if field == "" {
		return Null()
	}
	return Text(field)
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int returns the integer payload and whether the value is an Int.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Time returns the date payload and whether the value is a Date.
func (v Value) Time() (time.Time, bool) { return v.t, v.kind == KindDate }

// String renders the value the way it is written to CSV. Null is "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindDate:
		return v.t.Format("2006-01-02")
	default:
		return ""
	}
}

// Key returns the canonical comparison form used by joins, grouping and
// de-duplication. Numeric text is canonicalized so "12", "12.0" and Int(12)
// share a key. Integer text compares exactly, and text with a leading zero
// such as "0500" keeps its own key. Null has a key distinct from every
// non-null value.
func (v Value) Key() string {
	switch v.kind {
	case KindNull:
		return "\x00"
	case KindInt:
		return "n:" + strconv.FormatInt(v.i, 10)
	case KindFloat:
		return "n:" + formatFloat(v.f)
	case KindText:
		if s := strings.TrimSpace(v.text); !leadingZero(s) {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return "n:" + strconv.FormatInt(i, 10)
			}
			if f, ok := parseNumber(s); ok {
				return "n:" + formatFloat(f)
			}
		}
		return "s:" + v.text
	default:
		return "s:" + v.String()
	}
}

// Equal reports whether two values share a canonical key.
func (v Value) Equal(o Value) bool { return v.Key() == o.Key() }

// Number returns the value as a float when it is numeric or numeric text.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindText:
		return parseNumber(v.text)
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// leadingZero reports whether s is written with a redundant leading zero,
// as zip codes and padded ids are: "0500" but not "0" or "0.5".
func leadingZero(s string) bool {
	d := strings.TrimLeft(s, "+-")
	return len(d) > 1 && d[0] == '0' && d[1] != '.'
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
