package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

// labelFrame builds a single-entity frame with a preset volatility column,
// so the barrier geometry is exact.
func labelFrame(t *testing.T, closes []float64, volatility float64) *columnar.Frame {
	t.Helper()
	entities := make([]string, len(closes))
	vols := make([]float64, len(closes))
	for i := range entities {
		entities[i] = "AAPL"
		vols[i] = volatility
	}
	f, err := columnar.NewFrame(
		columnar.NewStringSeries(domain.ColEntity, entities, nil),
		columnar.NewFloatSeries(domain.ColClose, closes, nil),
		columnar.NewFloatSeries(ColVolatility, vols, nil),
	)
	require.NoError(t, err)
	return f
}

func TestTripleBarrierBoundary(t *testing.T) {
	tests := []struct {
		name     string
		forward  float64
		expected float64
	}{
		{"upper_breach", 106, 1},
		{"lower_breach", 94, -1},
		{"inside", 100, 0},
		{"exactly_upper", 105, 0},
		{"exactly_lower", 95, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closes := []float64{100, 100, 100, 100, 100, tt.forward}
			out, err := TripleBarrier(DefaultWindow, BarrierHorizon)(labelFrame(t, closes, 0.05))
			require.NoError(t, err)

			label := out.Column(ColBarrier)
			require.True(t, label.IsValid(0))
			assert.Equal(t, tt.expected, label.Float(0))
		})
	}
}

func TestTripleBarrierNoForwardCloseStaysNull(t *testing.T) {
	closes := []float64{100, 101, 102}
	out, err := TripleBarrier(DefaultWindow, BarrierHorizon)(labelFrame(t, closes, 0.05))
	require.NoError(t, err)

	label := out.Column(ColBarrier)
	for i := 0; i < out.NumRows(); i++ {
		assert.False(t, label.IsValid(i), "row %d has no bar %d ahead", i, BarrierHorizon)
	}
}

func TestTripleBarrierComputesVolatilityWhenAbsent(t *testing.T) {
	closes := make([]float64, 12)
	entities := make([]string, 12)
	for i := range closes {
		closes[i] = 100 + float64(i%3)
		entities[i] = "AAPL"
	}
	f, err := columnar.NewFrame(
		columnar.NewStringSeries(domain.ColEntity, entities, nil),
		columnar.NewFloatSeries(domain.ColClose, closes, nil),
	)
	require.NoError(t, err)

	withRet, err := AlphaFeatures(DefaultWindow)(f)
	require.NoError(t, err)
	out, err := TripleBarrier(DefaultWindow, BarrierHorizon)(withRet)
	require.NoError(t, err)

	assert.True(t, out.HasColumn(ColVolatility))
	assert.True(t, out.Column(ColBarrier).IsValid(3))
}

func TestMetaLabelConfirmsRealizedDirection(t *testing.T) {
	// Row 0: barrier says +1 and forward close is above -> meta 1.
	// Row 1: barrier was forced to +1 but forward close fell -> meta 0.
	closes := []float64{100, 100, 0, 0, 0, 110, 90, 0, 0, 0, 0, 0}
	for i := range closes {
		if closes[i] == 0 {
			closes[i] = 100
		}
	}
	f := labelFrame(t, closes, 0.05)
	barriers := make([]float64, len(closes))
	valid := make([]bool, len(closes))
	barriers[0], valid[0] = 1, true
	barriers[1], valid[1] = 1, true
	withBarrier, err := f.WithColumn(columnar.NewFloatSeries(ColBarrier, barriers, valid))
	require.NoError(t, err)

	out, err := MetaLabel(BarrierHorizon)(withBarrier)
	require.NoError(t, err)

	meta := out.Column(ColMetaLabel)
	require.True(t, meta.IsValid(0))
	assert.Equal(t, 1.0, meta.Float(0))
	require.True(t, meta.IsValid(1))
	assert.Equal(t, 0.0, meta.Float(1))
}

func TestMetaLabelFlatPrimaryIsZero(t *testing.T) {
	closes := []float64{100, 100, 100, 100, 100, 100}
	f := labelFrame(t, closes, 0.05)
	barriers := []float64{0, 0, 0, 0, 0, 0}
	valid := []bool{true, false, false, false, false, false}
	withBarrier, err := f.WithColumn(columnar.NewFloatSeries(ColBarrier, barriers, valid))
	require.NoError(t, err)

	out, err := MetaLabel(BarrierHorizon)(withBarrier)
	require.NoError(t, err)

	meta := out.Column(ColMetaLabel)
	require.True(t, meta.IsValid(0))
	assert.Equal(t, 0.0, meta.Float(0))
}
