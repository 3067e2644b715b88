package fundamental

import (
	"math"
	"sort"

	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

// Thresholds for the statistical priors. Soft checks: they never fail the
// pipeline, they only move the quality score through the AuditReport.
const (
	DefaultBenfordDeviation = 0.2
	DefaultMADThreshold     = 5.0

	// Benford's law is meaningless on tiny samples.
	benfordMinSamples = 30

	statViolationFactor = 0.85
	statPassFactor      = 1.05
)

// CheckBenford returns the leading-digit distribution check over the value
// column. The observed frequency of each leading digit 1..9 is compared to
// log10(1 + 1/d); a maximum deviation above the threshold flags the batch.
// Samples below benfordMinSamples skip the check entirely.
func CheckBenford(threshold float64, report *AuditReport) columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		values := f.Column(domain.ColValue)
		if values == nil {
			return f, nil
		}

		var counts [10]int
		total := 0
		for row := 0; row < values.Len(); row++ {
			if !values.IsValid(row) {
				continue
			}
			d := leadingDigit(values.Float(row))
			if d == 0 {
				continue
			}
			counts[d]++
			total++
		}

		if total < benfordMinSamples {
			return f, nil
		}

		maxDev := 0.0
		for d := 1; d <= 9; d++ {
			expected := math.Log10(1 + 1/float64(d))
			observed := float64(counts[d]) / float64(total)
			if dev := math.Abs(observed - expected); dev > maxDev {
				maxDev = dev
			}
		}

		if report != nil {
			report.BenfordChecked = true
			report.BenfordDeviation = maxDev
			report.BenfordViolation = maxDev > threshold
		}
		return f, nil
	}
}

// CheckOutliersMAD returns the robust outlier check over the value column:
// modified z-scores from the median absolute deviation, flagging values
// whose score exceeds the threshold. A zero MAD (constant series) skips
// the check.
func CheckOutliersMAD(threshold float64, report *AuditReport) columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		values := f.Column(domain.ColValue)
		if values == nil {
			return f, nil
		}

		var sample []float64
		for row := 0; row < values.Len(); row++ {
			if values.IsValid(row) {
				sample = append(sample, values.Float(row))
			}
		}
		if len(sample) < 3 {
			return f, nil
		}

		med := median(sample)
		deviations := make([]float64, len(sample))
		for i, v := range sample {
			deviations[i] = math.Abs(v - med)
		}
		mad := median(deviations)
		if mad == 0 {
			return f, nil
		}

		outliers := 0
		for _, v := range sample {
			// 0.6745 scales MAD to the standard deviation of a normal.
			z := 0.6745 * (v - med) / mad
			if math.Abs(z) > threshold {
				outliers++
			}
		}

		if report != nil {
			report.OutliersChecked = true
			report.OutlierCount = outliers
		}
		return f, nil
	}
}

func leadingDigit(v float64) int {
	v = math.Abs(v)
	if v == 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	for v >= 10 {
		v /= 10
	}
	for v < 1 {
		v *= 10
	}
	return int(v)
}

func median(values []float64) float64 {
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
