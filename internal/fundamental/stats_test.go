package fundamental

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

func frameOfValues(values []float64) *columnar.Frame {
	f, err := columnar.NewFrame(columnar.NewFloatSeries(domain.ColValue, values, nil))
	if err != nil {
		panic(err)
	}
	return f
}

func TestCheckBenfordPassesOnConformingSample(t *testing.T) {
	// Geometric growth follows Benford's distribution closely.
	values := make([]float64, 120)
	v := 1.0
	for i := range values {
		values[i] = v
		v *= 1.07
	}

	var report AuditReport
	_, err := CheckBenford(DefaultBenfordDeviation, &report)(frameOfValues(values))
	require.NoError(t, err)

	assert.True(t, report.BenfordChecked)
	assert.False(t, report.BenfordViolation, "deviation was %.3f", report.BenfordDeviation)
}

func TestCheckBenfordFlagsFabricatedDigits(t *testing.T) {
	// Every value leads with 9: maximally un-Benford.
	values := make([]float64, 60)
	for i := range values {
		values[i] = 9000 + float64(i)
	}

	var report AuditReport
	_, err := CheckBenford(DefaultBenfordDeviation, &report)(frameOfValues(values))
	require.NoError(t, err)

	assert.True(t, report.BenfordChecked)
	assert.True(t, report.BenfordViolation)
}

func TestCheckBenfordSkipsSmallSamples(t *testing.T) {
	var report AuditReport
	_, err := CheckBenford(DefaultBenfordDeviation, &report)(frameOfValues([]float64{1, 2, 3}))
	require.NoError(t, err)
	assert.False(t, report.BenfordChecked)
}

func TestCheckOutliersMAD(t *testing.T) {
	values := []float64{10, 11, 9, 10, 12, 10, 11, 10_000}

	var report AuditReport
	_, err := CheckOutliersMAD(DefaultMADThreshold, &report)(frameOfValues(values))
	require.NoError(t, err)

	assert.True(t, report.OutliersChecked)
	assert.Equal(t, 1, report.OutlierCount)
}

func TestCheckOutliersMADConstantSeriesSkipped(t *testing.T) {
	var report AuditReport
	_, err := CheckOutliersMAD(DefaultMADThreshold, &report)(frameOfValues([]float64{5, 5, 5, 5}))
	require.NoError(t, err)
	assert.False(t, report.OutliersChecked)
}

func TestLeadingDigit(t *testing.T) {
	tests := []struct {
		value    float64
		expected int
	}{
		{123.4, 1},
		{0.0042, 4},
		{-987, 9},
		{1, 1},
		{0, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, leadingDigit(tt.value), "value %v", tt.value)
	}
}
