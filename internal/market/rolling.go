package market

import (
	"math"

	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

// column is a scratch float column under construction: values plus validity.
type column struct {
	values []float64
	valid  []bool
}

func newColumn(n int) *column {
	return &column{values: make([]float64, n), valid: make([]bool, n)}
}

func (c *column) set(i int, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	c.values[i] = v
	c.valid[i] = true
}

func (c *column) series(name string) *columnar.Series {
	return columnar.NewFloatSeries(name, c.values, c.valid)
}

// entityGroups returns row indices grouped by entity, groups in first-seen
// order, rows in arrival order within each group. A missing entity column
// yields one group spanning the whole frame.
func entityGroups(f *columnar.Frame) [][]int {
	entities := f.Column(domain.ColEntity)
	if entities == nil {
		all := make([]int, f.NumRows())
		for i := range all {
			all[i] = i
		}
		return [][]int{all}
	}

	byEntity := make(map[string]int)
	var groups [][]int
	for row := 0; row < f.NumRows(); row++ {
		key := ""
		if entities.IsValid(row) {
			key = entities.Str(row)
		}
		idx, seen := byEntity[key]
		if !seen {
			idx = len(groups)
			byEntity[key] = idx
			groups = append(groups, nil)
		}
		groups[idx] = append(groups[idx], row)
	}
	return groups
}

// rollingMean computes the trailing mean over at most window values,
// counting only valid slots. Slots with no valid history stay null.
func rollingMean(values []float64, valid []bool, window int) *column {
	out := newColumn(len(values))
	for i := range values {
		sum, count := 0.0, 0
		for j := i; j >= 0 && j > i-window; j-- {
			if valid[j] {
				sum += values[j]
				count++
			}
		}
		if count > 0 {
			out.set(i, sum/float64(count))
		}
	}
	return out
}

// rollingStd computes the trailing sample standard deviation over at most
// window values. Fewer than two valid observations yields null.
func rollingStd(values []float64, valid []bool, window int) *column {
	out := newColumn(len(values))
	for i := range values {
		sum, count := 0.0, 0
		for j := i; j >= 0 && j > i-window; j-- {
			if valid[j] {
				sum += values[j]
				count++
			}
		}
		if count < 2 {
			continue
		}
		mean := sum / float64(count)
		ss := 0.0
		for j := i; j >= 0 && j > i-window; j-- {
			if valid[j] {
				d := values[j] - mean
				ss += d * d
			}
		}
		out.set(i, math.Sqrt(ss/float64(count-1)))
	}
	return out
}

// rollingSum computes the trailing sum over at most window valid values.
func rollingSum(values []float64, valid []bool, window int) *column {
	out := newColumn(len(values))
	for i := range values {
		sum, count := 0.0, 0
		for j := i; j >= 0 && j > i-window; j-- {
			if valid[j] {
				sum += values[j]
				count++
			}
		}
		if count > 0 {
			out.set(i, sum)
		}
	}
	return out
}

// gather extracts the values of a float column at the given rows.
func gather(s *columnar.Series, rows []int) ([]float64, []bool) {
	values := make([]float64, len(rows))
	valid := make([]bool, len(rows))
	for i, row := range rows {
		if s != nil && s.IsValid(row) {
			values[i] = s.Float(row)
			valid[i] = true
		}
	}
	return values, valid
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
