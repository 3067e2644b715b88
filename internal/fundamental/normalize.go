package fundamental

import (
	"math"
	"sort"

	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

// DefaultSmoothingAlpha is the fixed EWMA decay applied before auditing.
const DefaultSmoothingAlpha = 0.5

// LockUnits returns the unit-normalization step: rows reported in Millions
// with |value| > 1000 are rescaled to Billions. The post-condition magnitude
// is <= 1000, so re-applying the step is a no-op.
func LockUnits() columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		units := f.Column(domain.ColUnit)
		values := f.Column(domain.ColValue)
		if units == nil || values == nil {
			return f, nil
		}

		n := f.NumRows()
		newValues := make([]float64, n)
		valueValid := make([]bool, n)
		newUnits := make([]string, n)
		unitValid := make([]bool, n)

		for row := 0; row < n; row++ {
			valueValid[row] = values.IsValid(row)
			newValues[row] = values.Float(row)
			unitValid[row] = units.IsValid(row)
			newUnits[row] = units.Str(row)

			if !valueValid[row] || !unitValid[row] {
				continue
			}
			if newUnits[row] == "Million" && math.Abs(newValues[row]) > 1000 {
				newValues[row] /= 1000
				newUnits[row] = "Billion"
			}
		}

		out, err := f.WithColumn(columnar.NewFloatSeries(domain.ColValue, newValues, valueValid))
		if err != nil {
			return nil, err
		}
		return out.WithColumn(columnar.NewStringSeries(domain.ColUnit, newUnits, unitValid))
	}
}

// SmoothValues returns the smoothing step: each (entity, concept) series,
// ordered by period, has its value replaced by the exponentially weighted
// moving average with the given alpha. Null values neither move the average
// nor get filled.
func SmoothValues(alpha float64) columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		entities := f.Column(domain.ColEntity)
		concepts := f.Column(domain.ColConcept)
		periods := f.Column(domain.ColPeriod)
		values := f.Column(domain.ColValue)
		if entities == nil || concepts == nil || periods == nil || values == nil {
			return f, nil
		}

		groups := make(map[string][]int)
		var groupOrder []string
		for row := 0; row < f.NumRows(); row++ {
			key := str(entities, row) + "\x00" + str(concepts, row)
			if _, seen := groups[key]; !seen {
				groupOrder = append(groupOrder, key)
			}
			groups[key] = append(groups[key], row)
		}

		n := f.NumRows()
		smoothed := make([]float64, n)
		valid := make([]bool, n)
		for row := 0; row < n; row++ {
			valid[row] = values.IsValid(row)
			smoothed[row] = values.Float(row)
		}

		for _, key := range groupOrder {
			rows := groups[key]
			// Periods are ISO-like strings, so lexical order is time order.
			sort.SliceStable(rows, func(a, b int) bool {
				return str(periods, rows[a]) < str(periods, rows[b])
			})

			started := false
			var ewma float64
			for _, row := range rows {
				if !values.IsValid(row) {
					continue
				}
				v := values.Float(row)
				if !started {
					ewma = v
					started = true
				} else {
					ewma = alpha*v + (1-alpha)*ewma
				}
				smoothed[row] = ewma
			}
		}

		return f.WithColumn(columnar.NewFloatSeries(domain.ColValue, smoothed, valid))
	}
}

func str(s *columnar.Series, row int) string {
	if s == nil || !s.IsValid(row) {
		return ""
	}
	return s.Str(row)
}
