package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Type is the declared semantic type of a column.
type Type int

// Column types.
const (
	TypeText Type = iota
	TypeOptionalInt
	TypeDate
)

// DateLayouts are the formats accepted when coercing text to dates, tried in
// order. They cover admin-tool exports and Bulk API results.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"01/02/2006",
}

// IntegralText reports whether a cell can be represented as an integer
// without losing information: a whole number with no leading zero.
// "4155551234", "4155551234.0" and Int(7) qualify; "02139", "415-555-1234"
// and "12.5" do not. Null qualifies since it stays Null.
func IntegralText(v Value) bool {
	if v.IsNull() {
		return true
	}
	_, ok := toInt(v)
	return ok
}

// maxExact is the largest magnitude below which every integer has an exact
// float64 form.
const maxExact = 1 << 53

// toInt returns the integer a cell holds. Integer text is parsed exactly;
// float forms such as "4155551234.0" are accepted only while exact.
func toInt(v Value) (int64, bool) {
	switch v.Kind() {
	case KindInt:
		return v.i, true
	case KindFloat:
		if v.f == math.Trunc(v.f) && math.Abs(v.f) <= maxExact {
			return int64(v.f), true
		}
	case KindText:
		s := strings.TrimSpace(v.text)
		if leadingZero(s) {
			return 0, false
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, ok := parseNumber(s); ok && f == math.Trunc(f) && math.Abs(f) <= maxExact {
			return int64(f), true
		}
	}
	return 0, false
}

// CoerceNumeric converts col to optional integers only when every cell
// passes IntegralText. It reports whether the column was converted; when
// any cell fails the column is left as text unchanged.
func (t *Table) CoerceNumeric(col string) (bool, error) {
	vals, err := t.Column(col)
	if err != nil {
		return false, err
	}
	for _, v := range vals {
		if !IntegralText(v) {
			return false, nil
		}
	}
	for i, v := range vals {
		if v.IsNull() {
			continue
		}
		n, _ := toInt(v)
		vals[i] = Int(n)
	}
	return true, t.SetColumn(col, vals)
}

// Coerce converts col to the declared type. Text conversion stringifies every
// non-null cell. Cells that cannot be converted are reported by row index and
// left unchanged.
func (t *Table) Coerce(col string, typ Type) ([]int, error) {
	vals, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	var bad []int
	for i, v := range vals {
		if v.IsNull() {
			continue
		}
		switch typ {
		case TypeText:
			vals[i] = Text(v.String())
		case TypeOptionalInt:
			n, ok := toInt(v)
			if !ok {
				bad = append(bad, i)
				continue
			}
			vals[i] = Int(n)
		case TypeDate:
			d, ok := ParseDate(v)
			if !ok {
				bad = append(bad, i)
				continue
			}
			vals[i] = d
		}
	}
	return bad, t.SetColumn(col, vals)
}

// ParseDate converts a cell to a Date value using DateLayouts.
func ParseDate(v Value) (Value, bool) {
	if v.Kind() == KindDate {
		return v, true
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return Null(), false
	}
	for _, layout := range DateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return Date(ts), true
		}
	}
	return v, false
}
