package table

import "fmt"

// JoinKind selects which unmatched rows a join keeps.
type JoinKind int

// Join kinds.
const (
	JoinLeft JoinKind = iota
	JoinInner
	JoinOuter
)

// LeftJoin keeps every left row, attaching each matching right row. Left
// rows without a match carry Null in the right-only columns.
func LeftJoin(left, right *Table, on ...string) (*Table, error) {
	return Join(JoinLeft, left, right, on...)
}

// InnerJoin keeps only rows whose key appears on both sides.
func InnerJoin(left, right *Table, on ...string) (*Table, error) {
	return Join(JoinInner, left, right, on...)
}

// OuterJoin keeps every row from both sides.
func OuterJoin(left, right *Table, on ...string) (*Table, error) {
	return Join(JoinOuter, left, right, on...)
}

// Join merges two tables on equal key columns. Keys compare by Value.Key,
// so Null matches Null. Within a key every left row pairs with every right
// row, in left order then right order. The output has the left columns
// followed by the right non-key columns; any other shared column name is an
// error.
func Join(kind JoinKind, left, right *Table, on ...string) (*Table, error) {
	if len(on) == 0 {
		return nil, fmt.Errorf("table: join needs at least one key column")
	}
	if err := left.Require(on...); err != nil {
		return nil, err
	}
	if err := right.Require(on...); err != nil {
		return nil, err
	}

	isKey := make(map[string]bool, len(on))
	for _, k := range on {
		isKey[k] = true
	}
	var rightCols []string
	for _, c := range right.columns {
		if isKey[c] {
			continue
		}
		if left.Has(c) {
			return nil, fmt.Errorf("table: join column %s exists on both sides", c)
		}
		rightCols = append(rightCols, c)
	}

	out := New(append(left.Columns(), rightCols...)...).Named(left.name)

	leftKeys := indexesOf(left, on)
	rightKeys := indexesOf(right, on)
	rightIdx := make([]int, len(rightCols))
	for i, c := range rightCols {
		rightIdx[i] = right.index[c]
	}

	buckets := make(map[string][]int, right.Len())
	for r := 0; r < right.Len(); r++ {
		k := right.rowKey(r, rightKeys)
		buckets[k] = append(buckets[k], r)
	}

	matchedRight := make([]bool, right.Len())
	row := make([]Value, len(out.columns))
	nLeft := len(left.columns)

	for l := 0; l < left.Len(); l++ {
		for c := range left.columns {
			row[c] = left.data[c][l]
		}
		matches := buckets[left.rowKey(l, leftKeys)]
		if len(matches) == 0 {
			if kind == JoinInner {
				continue
			}
			for i := range rightCols {
				row[nLeft+i] = Null()
			}
			_ = out.AppendRow(row...)
			continue
		}
		for _, r := range matches {
			matchedRight[r] = true
			for i, ri := range rightIdx {
				row[nLeft+i] = right.data[ri][r]
			}
			_ = out.AppendRow(row...)
		}
	}

	if kind == JoinOuter {
		for r := 0; r < right.Len(); r++ {
			if matchedRight[r] {
				continue
			}
			for c, name := range left.columns {
				if isKey[name] {
					row[c] = right.data[right.index[name]][r]
				} else {
					row[c] = Null()
				}
			}
			for i, ri := range rightIdx {
				row[nLeft+i] = right.data[ri][r]
			}
			_ = out.AppendRow(row...)
		}
	}

	return out, nil
}

// AntiJoin returns the left rows with no key match on the right.
func AntiJoin(left, right *Table, on ...string) (*Table, error) {
	if err := left.Require(on...); err != nil {
		return nil, err
	}
	if err := right.Require(on...); err != nil {
		return nil, err
	}
	rightKeys := indexesOf(right, on)
	present := make(map[string]bool, right.Len())
	for r := 0; r < right.Len(); r++ {
		present[right.rowKey(r, rightKeys)] = true
	}
	leftKeys := indexesOf(left, on)
	out := New(left.columns...).Named(left.name)
	for l := 0; l < left.Len(); l++ {
		if !present[left.rowKey(l, leftKeys)] {
			out.appendFrom(left, l)
		}
	}
	return out, nil
}

func indexesOf(t *Table, cols []string) []int {
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.index[c]
	}
	return idx
}
