// Package table provides the in-memory relation every reconciliation step
// works on: an ordered set of named columns holding equal-length slices of
// typed cells. Transforms operate on whole columns and return new tables;
// only SetColumn, Map and AppendRow mutate the receiver.
package table

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lastmilefood/rescuesync/pkg/errors"
)

// Table is a columnar relation.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	data    [][]Value // data[column][row]
}

// New creates an empty table with the given columns.
// Duplicate column names panic since they are a programming error.
func New(columns ...string) *Table {
	t := &Table{
		columns: make([]string, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
		data:    make([][]Value, 0, len(columns)),
	}
	for _, c := range columns {
		if _, dup := t.index[c]; dup {
			panic("table: duplicate column " + c)
		}
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
		t.data = append(t.data, nil)
	}
	return t
}

// Named sets a label used in error messages (usually the source file).
func (t *Table) Named(name string) *Table {
	t.name = name
	return t
}

// Name returns the table label.
func (t *Table) Name() string { return t.name }

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil || len(t.data) == 0 {
		return 0
	}
	return len(t.data[0])
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Has reports whether the column exists.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Require returns a MissingColumnError for the first absent column.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.Has(c) {
			return &errors.MissingColumnError{Source: t.name, Column: c}
		}
	}
	return nil
}

// Column returns a copy of a column's values.
func (t *Table) Column(col string) ([]Value, error) {
	i, ok := t.index[col]
	if !ok {
		return nil, &errors.MissingColumnError{Source: t.name, Column: col}
	}
	return append([]Value(nil), t.data[i]...), nil
}

// Get returns the cell at row for col, or Null when the column is absent.
func (t *Table) Get(row int, col string) Value {
	i, ok := t.index[col]
	if !ok {
		return Null()
	}
	return t.data[i][row]
}

// Row returns a view of a single row.
func (t *Table) Row(i int) Row { return Row{t: t, i: i} }

// Values returns the cells of a row in column order.
func (t *Table) Values(row int) []Value {
	out := make([]Value, len(t.columns))
	for c := range t.columns {
		out[c] = t.data[c][row]
	}
	return out
}

// AppendRow appends one row. The number of values must match the columns.
func (t *Table) AppendRow(vals ...Value) error {
	if len(vals) != len(t.columns) {
		return fmt.Errorf("table: row has %d values, expected %d", len(vals), len(t.columns))
	}
	for c, v := range vals {
		t.data[c] = append(t.data[c], v)
	}
	return nil
}

// AppendRecord appends a row built from a column→value map. Missing columns
// are Null; keys that are not columns are ignored.
func (t *Table) AppendRecord(rec map[string]Value) {
	for c, name := range t.columns {
		t.data[c] = append(t.data[c], rec[name])
	}
}

// SetColumn adds a column or replaces an existing one.
func (t *Table) SetColumn(col string, vals []Value) error {
	if len(t.columns) > 0 && len(vals) != t.Len() {
		return fmt.Errorf("table: column %s has %d values, expected %d", col, len(vals), t.Len())
	}
	if i, ok := t.index[col]; ok {
		t.data[i] = vals
		return nil
	}
	t.index[col] = len(t.columns)
	t.columns = append(t.columns, col)
	t.data = append(t.data, vals)
	return nil
}

// Fill adds or replaces a column holding the same value in every row.
func (t *Table) Fill(col string, v Value) {
	vals := make([]Value, t.Len())
	for i := range vals {
		vals[i] = v
	}
	_ = t.SetColumn(col, vals)
}

// Map replaces every cell of a column with fn(cell).
func (t *Table) Map(col string, fn func(Value) Value) error {
	i, ok := t.index[col]
	if !ok {
		return &errors.MissingColumnError{Source: t.name, Column: col}
	}
	for r, v := range t.data[i] {
		t.data[i][r] = fn(v)
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New(t.columns...).Named(t.name)
	for c := range t.columns {
		out.data[c] = append([]Value(nil), t.data[c]...)
	}
	return out
}

// Filter returns the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.columns...).Named(t.name)
	for r := 0; r < t.Len(); r++ {
		if keep(t.Row(r)) {
			out.appendFrom(t, r)
		}
	}
	return out
}

// Where keeps rows whose col cell equals v.
func (t *Table) Where(col string, v Value) *Table {
	return t.Filter(func(r Row) bool { return r.Get(col).Equal(v) })
}

// Select returns a table with only the named columns, in the given order.
func (t *Table) Select(cols ...string) (*Table, error) {
	if err := t.Require(cols...); err != nil {
		return nil, err
	}
	out := New(cols...).Named(t.name)
	for i, c := range cols {
		out.data[i] = append([]Value(nil), t.data[t.index[c]]...)
	}
	return out, nil
}

// Drop returns a table without the named columns. Absent columns are ignored.
func (t *Table) Drop(cols ...string) *Table {
	skip := make(map[string]bool, len(cols))
	for _, c := range cols {
		skip[c] = true
	}
	keep := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if !skip[c] {
			keep = append(keep, c)
		}
	}
	out, _ := t.Select(keep...)
	return out
}

// Rename returns a table with columns renamed by mapping old→new.
func (t *Table) Rename(mapping map[string]string) (*Table, error) {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c
		if n, ok := mapping[c]; ok {
			names[i] = n
		}
	}
	return t.relabel(names)
}

// Relabel replaces all column names positionally.
func (t *Table) Relabel(names ...string) (*Table, error) {
	if len(names) != len(t.columns) {
		return nil, fmt.Errorf("table: relabel with %d names, table has %d columns", len(names), len(t.columns))
	}
	return t.relabel(names)
}

func (t *Table) relabel(names []string) (*Table, error) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return nil, fmt.Errorf("table: duplicate column %s after rename", n)
		}
		seen[n] = true
	}
	out := New(names...).Named(t.name)
	for c := range t.columns {
		out.data[c] = append([]Value(nil), t.data[c]...)
	}
	return out, nil
}

// Distinct drops rows that exactly repeat an earlier row, keeping the first.
func (t *Table) Distinct() *Table {
	seen := make(map[string]bool, t.Len())
	out := New(t.columns...).Named(t.name)
	for r := 0; r < t.Len(); r++ {
		k := t.rowKey(r, nil)
		if seen[k] {
			continue
		}
		seen[k] = true
		out.appendFrom(t, r)
	}
	return out
}

// SortBy returns a table stably sorted by the string form of col.
func (t *Table) SortBy(col string) (*Table, error) {
	if err := t.Require(col); err != nil {
		return nil, err
	}
	order := make([]int, t.Len())
	for i := range order {
		order[i] = i
	}
	ci := t.index[col]
	sort.SliceStable(order, func(a, b int) bool {
		return lessValue(t.data[ci][order[a]], t.data[ci][order[b]])
	})
	out := New(t.columns...).Named(t.name)
	for _, r := range order {
		out.appendFrom(t, r)
	}
	return out, nil
}

// Concat appends the rows of other, which must have the same columns.
func (t *Table) Concat(other *Table) (*Table, error) {
	if strings.Join(t.columns, "\x1f") != strings.Join(other.columns, "\x1f") {
		return nil, fmt.Errorf("table: concat of mismatched columns")
	}
	out := t.Clone()
	for r := 0; r < other.Len(); r++ {
		out.appendFrom(other, r)
	}
	return out, nil
}

// Group is the set of rows sharing one key value.
type Group struct {
	Key  Value
	Rows *Table
}

// GroupBy partitions rows by col. Groups are ordered by key and keep input
// order within a group.
func (t *Table) GroupBy(col string) ([]Group, error) {
	if err := t.Require(col); err != nil {
		return nil, err
	}
	ci := t.index[col]
	byKey := make(map[string]*Group)
	var keys []Value
	for r := 0; r < t.Len(); r++ {
		v := t.data[ci][r]
		g, ok := byKey[v.Key()]
		if !ok {
			g = &Group{Key: v, Rows: New(t.columns...).Named(t.name)}
			byKey[v.Key()] = g
			keys = append(keys, v)
		}
		g.Rows.appendFrom(t, r)
	}
	sort.SliceStable(keys, func(a, b int) bool { return lessValue(keys[a], keys[b]) })
	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, *byKey[k.Key()])
	}
	return groups, nil
}

func (t *Table) appendFrom(src *Table, r int) {
	for c := range t.columns {
		t.data[c] = append(t.data[c], src.data[c][r])
	}
}

// rowKey builds a composite key from the given column indexes (all when nil).
func (t *Table) rowKey(r int, cols []int) string {
	var b strings.Builder
	if cols == nil {
		for c := range t.columns {
			b.WriteString(t.data[c][r].Key())
			b.WriteByte(0x1f)
		}
		return b.String()
	}
	for _, c := range cols {
		b.WriteString(t.data[c][r].Key())
		b.WriteByte(0x1f)
	}
	return b.String()
}

func lessValue(a, b Value) bool {
	if a.IsNull() != b.IsNull() {
		return !a.IsNull()
	}
	fa, aok := a.Number()
	fb, bok := b.Number()
	if aok && bok {
		return fa < fb
	}
	return a.String() < b.String()
}

// Row is a read-only view of one table row.
type Row struct {
	t *Table
	i int
}

// Index returns the row position in its table.
func (r Row) Index() int { return r.i }

// Get returns the cell for col, or Null when the column is absent.
func (r Row) Get(col string) Value { return r.t.Get(r.i, col) }

// Str returns the string form of the cell for col.
func (r Row) Str(col string) string { return r.Get(col).String() }
