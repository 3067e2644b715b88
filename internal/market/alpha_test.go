package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

func barFrame(t *testing.T, closes, volumes []float64) *columnar.Frame {
	t.Helper()
	entities := make([]string, len(closes))
	for i := range entities {
		entities[i] = "AAPL"
	}
	cols := []*columnar.Series{
		columnar.NewStringSeries(domain.ColEntity, entities, nil),
		columnar.NewFloatSeries(domain.ColClose, closes, nil),
	}
	if volumes != nil {
		cols = append(cols, columnar.NewFloatSeries(domain.ColVolume, volumes, nil))
	}
	f, err := columnar.NewFrame(cols...)
	require.NoError(t, err)
	return f
}

func TestAlphaFeaturesDailyReturnAndFracDiff(t *testing.T) {
	out, err := AlphaFeatures(DefaultWindow)(barFrame(t, []float64{100, 110, 99}, []float64{1000, 2000, 1500}))
	require.NoError(t, err)

	ret := out.Column(ColDailyReturn)
	assert.False(t, ret.IsValid(0), "first bar has no return")
	assert.InDelta(t, 0.10, ret.Float(1), 1e-9)
	assert.InDelta(t, -0.10, ret.Float(2), 1e-9)

	fd := out.Column(ColFracDiff)
	assert.False(t, fd.IsValid(0))
	assert.InDelta(t, 110-0.4*100, fd.Float(1), 1e-9)
	assert.InDelta(t, 99-0.4*110, fd.Float(2), 1e-9)
}

func TestAlphaFeaturesSignedFlowAndVPIN(t *testing.T) {
	closes := []float64{100, 110, 100, 110, 100}
	volumes := []float64{1000, 2000, 3000, 1000, 2000}

	out, err := AlphaFeatures(DefaultWindow)(barFrame(t, closes, volumes))
	require.NoError(t, err)

	flow := out.Column(ColSignedFlow)
	assert.Equal(t, 2000.0, flow.Float(1), "up move keeps volume positive")
	assert.Equal(t, -3000.0, flow.Float(2), "down move flips the sign")

	vpin := out.Column(ColVPIN)
	for i := 1; i < out.NumRows(); i++ {
		require.True(t, vpin.IsValid(i))
		assert.GreaterOrEqual(t, vpin.Float(i), 0.0)
		assert.LessOrEqual(t, vpin.Float(i), 1.0)
	}
	// Every bar moved, so all flow is directional: the ratio is exactly 1
	// on every bar, including the first one after the no-flow bar.
	for i := 1; i < out.NumRows(); i++ {
		assert.InDelta(t, 1.0, vpin.Float(i), 1e-9)
	}
}

func TestAlphaFeaturesVolumeFeaturesSkippedWithoutVolume(t *testing.T) {
	out, err := AlphaFeatures(DefaultWindow)(barFrame(t, []float64{100, 101, 102}, nil))
	require.NoError(t, err)

	// Columns exist but are all null.
	vm := out.Column(ColVolumeMean)
	for i := 0; i < out.NumRows(); i++ {
		assert.False(t, vm.IsValid(i))
	}
	// Price-only features still computed.
	assert.True(t, out.Column(ColDailyReturn).IsValid(1))
}

func TestStrategySignalThresholds(t *testing.T) {
	tests := []struct {
		name     string
		alphaZ   float64
		vpin     float64
		expected string
	}{
		{"strong_buy", 2.5, 0.7, SignalStrongBuy},
		{"strong_sell", -2.5, 0.7, SignalStrongSell},
		{"z_below_threshold", 1.9, 0.7, SignalHold},
		{"vpin_below_threshold", 2.5, 0.5, SignalHold},
		{"boundary_is_hold", 2.0, 0.6, SignalHold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := columnar.NewFrame(
				columnar.NewFloatSeries(ColAlphaZ, []float64{tt.alphaZ}, nil),
				columnar.NewFloatSeries(ColVPIN, []float64{tt.vpin}, nil),
			)
			require.NoError(t, err)

			out, err := StrategySignal()(f)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.Column(ColSignal).Str(0))
		})
	}
}

func TestStrategySignalNullInputsHold(t *testing.T) {
	f, err := columnar.NewFrame(
		columnar.NewFloatSeries(ColAlphaZ, []float64{3.0}, []bool{false}),
		columnar.NewFloatSeries(ColVPIN, []float64{0.9}, nil),
	)
	require.NoError(t, err)

	out, err := StrategySignal()(f)
	require.NoError(t, err)
	assert.Equal(t, SignalHold, out.Column(ColSignal).Str(0))
}
