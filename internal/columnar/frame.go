package columnar

import (
	"fmt"
	"sort"
	"strconv"
)

// Frame is an ordered collection of equal-length Series. Transformations
// return new frames; an existing frame is never mutated row-wise.
type Frame struct {
	cols   []*Series
	byName map[string]int
}

// NewFrame builds a frame from the given columns. All columns must share
// the same length and have distinct names.
func NewFrame(cols ...*Series) (*Frame, error) {
	f := &Frame{byName: make(map[string]int, len(cols))}
	for _, c := range cols {
		if err := f.addColumn(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// EmptyFrame returns a frame with no columns and no rows.
func EmptyFrame() *Frame {
	return &Frame{byName: make(map[string]int)}
}

func (f *Frame) addColumn(c *Series) error {
	if _, dup := f.byName[c.Name()]; dup {
		return fmt.Errorf("duplicate column %q", c.Name())
	}
	if len(f.cols) > 0 && c.Len() != f.NumRows() {
		return fmt.Errorf("column %q has %d rows, frame has %d", c.Name(), c.Len(), f.NumRows())
	}
	f.byName[c.Name()] = len(f.cols)
	f.cols = append(f.cols, c)
	return nil
}

// NumRows returns the row count.
func (f *Frame) NumRows() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

// NumCols returns the column count.
func (f *Frame) NumCols() int { return len(f.cols) }

// Column returns the named column, or nil when absent.
func (f *Frame) Column(name string) *Series {
	idx, ok := f.byName[name]
	if !ok {
		return nil
	}
	return f.cols[idx]
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.byName[name]
	return ok
}

// ColumnNames returns the column names in frame order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name()
	}
	return names
}

// Series returns the column at position i.
func (f *Frame) Series(i int) *Series { return f.cols[i] }

// WithColumn returns a new frame with the given column added, or replaced
// when a column of the same name already exists.
func (f *Frame) WithColumn(c *Series) (*Frame, error) {
	if len(f.cols) > 0 && c.Len() != f.NumRows() {
		return nil, fmt.Errorf("column %q has %d rows, frame has %d", c.Name(), c.Len(), f.NumRows())
	}
	out := &Frame{byName: make(map[string]int, len(f.cols)+1)}
	replaced := false
	for _, existing := range f.cols {
		if existing.Name() == c.Name() {
			out.byName[c.Name()] = len(out.cols)
			out.cols = append(out.cols, c)
			replaced = true
			continue
		}
		out.byName[existing.Name()] = len(out.cols)
		out.cols = append(out.cols, existing)
	}
	if !replaced {
		out.byName[c.Name()] = len(out.cols)
		out.cols = append(out.cols, c)
	}
	return out, nil
}

// Take gathers the given row indices into a new frame. Index -1 yields an
// all-null row.
func (f *Frame) Take(indices []int) *Frame {
	out := &Frame{byName: make(map[string]int, len(f.cols))}
	for _, c := range f.cols {
		out.byName[c.Name()] = len(out.cols)
		out.cols = append(out.cols, c.Take(indices))
	}
	return out
}

// Filter keeps the rows where mask[i] is true.
func (f *Frame) Filter(mask []bool) *Frame {
	indices := make([]int, 0, len(mask))
	for i, keep := range mask {
		if keep {
			indices = append(indices, i)
		}
	}
	return f.Take(indices)
}

// Union appends other below f with null-fill: columns present in only one
// frame are padded with nulls in the other. Column order is f's order
// followed by other's extra columns in their original order. When the two
// frames disagree on a column's kind, the other frame's values for that
// column become nulls rather than failing the union.
func (f *Frame) Union(other *Frame) *Frame {
	out := &Frame{byName: make(map[string]int)}

	for _, c := range f.cols {
		merged := NewNullSeries(c.Name(), c.Kind(), 0)
		for i := 0; i < c.Len(); i++ {
			merged.append(c, i)
		}
		oc := other.Column(c.Name())
		for i := 0; i < other.NumRows(); i++ {
			merged.append(oc, i)
		}
		out.byName[merged.Name()] = len(out.cols)
		out.cols = append(out.cols, merged)
	}

	for _, oc := range other.cols {
		if _, seen := out.byName[oc.Name()]; seen {
			continue
		}
		merged := NewNullSeries(oc.Name(), oc.Kind(), f.NumRows())
		for i := 0; i < oc.Len(); i++ {
			merged.append(oc, i)
		}
		out.byName[merged.Name()] = len(out.cols)
		out.cols = append(out.cols, merged)
	}

	return out
}

// SortByString returns a new frame stably sorted by the given string
// column ascending. Null keys sort last. A missing column is a no-op.
func (f *Frame) SortByString(name string) *Frame {
	key := f.Column(name)
	if key == nil || key.Kind() != KindString {
		return f
	}
	indices := make([]int, f.NumRows())
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		ia, ib := indices[a], indices[b]
		va, vb := key.IsValid(ia), key.IsValid(ib)
		if va != vb {
			return va
		}
		if !va {
			return false
		}
		return key.Str(ia) < key.Str(ib)
	})
	return f.Take(indices)
}

// FromRows normalizes row-oriented records into a frame. Column order is
// first-seen; a column's kind is decided by the first non-nil value seen
// for it. Values that cannot be coerced to the column's kind become nulls,
// which is how malformed upstream values surface downstream.
func FromRows(rows []map[string]any) *Frame {
	var order []string
	kinds := make(map[string]Kind)
	seen := make(map[string]bool)

	for _, row := range rows {
		// Deterministic intra-row order for columns first observed in
		// the same row.
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
			if _, decided := kinds[k]; !decided {
				if kind, ok := kindOf(row[k]); ok {
					kinds[k] = kind
				}
			}
		}
	}

	out := &Frame{byName: make(map[string]int, len(order))}
	for _, name := range order {
		kind, decided := kinds[name]
		if !decided {
			kind = KindFloat64 // all-null column, kind is arbitrary
		}
		col := NewNullSeries(name, kind, 0)
		for _, row := range rows {
			v, present := row[name]
			if !present || v == nil {
				col.appendNull()
				continue
			}
			switch kind {
			case KindFloat64:
				fv, ok := toFloat(v)
				if !ok {
					col.appendNull()
					continue
				}
				col.valid = append(col.valid, true)
				col.floats = append(col.floats, fv)
			case KindString:
				sv, ok := toString(v)
				if !ok {
					col.appendNull()
					continue
				}
				col.valid = append(col.valid, true)
				col.strs = append(col.strs, sv)
			}
		}
		out.byName[name] = len(out.cols)
		out.cols = append(out.cols, col)
	}
	return out
}

func kindOf(v any) (Kind, bool) {
	switch v.(type) {
	case nil:
		return 0, false
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, bool:
		return KindFloat64, true
	case string:
		return KindString, true
	default:
		return KindString, true
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprintf("%v", x), true
	}
}
