package columnar

import "math"

// Kind identifies the physical type of a Series.
type Kind int

const (
	KindFloat64 Kind = iota
	KindString
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Series is a single named column with an explicit validity bitmap.
// A slot with valid[i] == false is a null regardless of the backing value.
type Series struct {
	name   string
	kind   Kind
	floats []float64
	strs   []string
	valid  []bool
}

// NewFloatSeries creates a float64 series. If valid is nil every slot is
// considered valid, except NaN values which are recorded as nulls.
func NewFloatSeries(name string, values []float64, valid []bool) *Series {
	if valid == nil {
		valid = make([]bool, len(values))
		for i, v := range values {
			valid[i] = !math.IsNaN(v)
		}
	}
	return &Series{name: name, kind: KindFloat64, floats: values, valid: valid}
}

// NewStringSeries creates a string series. If valid is nil every slot is
// considered valid.
func NewStringSeries(name string, values []string, valid []bool) *Series {
	if valid == nil {
		valid = make([]bool, len(values))
		for i := range valid {
			valid[i] = true
		}
	}
	return &Series{name: name, kind: KindString, strs: values, valid: valid}
}

// NewNullSeries creates a series of the given kind with n null slots.
func NewNullSeries(name string, kind Kind, n int) *Series {
	s := &Series{name: name, kind: kind, valid: make([]bool, n)}
	switch kind {
	case KindFloat64:
		s.floats = make([]float64, n)
	case KindString:
		s.strs = make([]string, n)
	}
	return s
}

// Name returns the column name.
func (s *Series) Name() string { return s.name }

// Kind returns the physical type.
func (s *Series) Kind() Kind { return s.kind }

// Len returns the number of slots, nulls included.
func (s *Series) Len() int { return len(s.valid) }

// IsValid reports whether slot i holds a non-null value.
func (s *Series) IsValid(i int) bool { return s.valid[i] }

// Float returns the float64 value at slot i. The result is meaningless for
// null slots and for string series; callers check IsValid and Kind first.
func (s *Series) Float(i int) float64 {
	if s.kind != KindFloat64 {
		return 0
	}
	return s.floats[i]
}

// Str returns the string value at slot i.
func (s *Series) Str(i int) string {
	if s.kind != KindString {
		return ""
	}
	return s.strs[i]
}

// Rename returns a copy of the series sharing the backing storage under a
// new name.
func (s *Series) Rename(name string) *Series {
	c := *s
	c.name = name
	return &c
}

// Take gathers the given slots into a new series. Indices of -1 produce
// null slots, which is how joins introduce missing rows.
func (s *Series) Take(indices []int) *Series {
	out := NewNullSeries(s.name, s.kind, len(indices))
	for pos, idx := range indices {
		if idx < 0 || !s.valid[idx] {
			continue
		}
		out.valid[pos] = true
		switch s.kind {
		case KindFloat64:
			out.floats[pos] = s.floats[idx]
		case KindString:
			out.strs[pos] = s.strs[idx]
		}
	}
	return out
}

// append adds one slot from src at index i, or a null slot if src is nil.
func (s *Series) append(src *Series, i int) {
	if src == nil || !src.valid[i] || src.kind != s.kind {
		s.appendNull()
		return
	}
	s.valid = append(s.valid, true)
	switch s.kind {
	case KindFloat64:
		s.floats = append(s.floats, src.floats[i])
	case KindString:
		s.strs = append(s.strs, src.strs[i])
	}
}

func (s *Series) appendNull() {
	s.valid = append(s.valid, false)
	switch s.kind {
	case KindFloat64:
		s.floats = append(s.floats, 0)
	case KindString:
		s.strs = append(s.strs, "")
	}
}
