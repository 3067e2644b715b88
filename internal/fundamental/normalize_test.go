package fundamental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

func TestLockUnitsRescalesMillions(t *testing.T) {
	f := columnar.FromRows([]map[string]any{
		{"entity": "AAPL", "value": 352000.0, "unit": "Million"},
		{"entity": "MSFT", "value": 500.0, "unit": "Million"},
		{"entity": "GOOG", "value": 2.5, "unit": "Billion"},
	})

	out, err := LockUnits()(f)
	require.NoError(t, err)

	values := out.Column(domain.ColValue)
	units := out.Column(domain.ColUnit)

	assert.Equal(t, 352.0, values.Float(0))
	assert.Equal(t, "Billion", units.Str(0))

	// Below the magnitude cut, untouched.
	assert.Equal(t, 500.0, values.Float(1))
	assert.Equal(t, "Million", units.Str(1))

	assert.Equal(t, 2.5, values.Float(2))
	assert.Equal(t, "Billion", units.Str(2))
}

func TestLockUnitsIsIdempotent(t *testing.T) {
	f := columnar.FromRows([]map[string]any{
		{"entity": "AAPL", "value": -4500.0, "unit": "Million"},
		{"entity": "MSFT", "value": 1200.0, "unit": "Million"},
	})

	once, err := LockUnits()(f)
	require.NoError(t, err)
	twice, err := LockUnits()(once)
	require.NoError(t, err)

	for row := 0; row < once.NumRows(); row++ {
		assert.Equal(t, once.Column(domain.ColValue).Float(row), twice.Column(domain.ColValue).Float(row))
		assert.Equal(t, once.Column(domain.ColUnit).Str(row), twice.Column(domain.ColUnit).Str(row))
	}
}

func TestSmoothValuesEWMA(t *testing.T) {
	f := columnar.FromRows([]map[string]any{
		{"entity": "AAPL", "concept": "Revenue", "period": "2024Q1", "value": 100.0},
		{"entity": "AAPL", "concept": "Revenue", "period": "2024Q2", "value": 200.0},
		{"entity": "AAPL", "concept": "Revenue", "period": "2024Q3", "value": 200.0},
	})

	out, err := SmoothValues(0.5)(f)
	require.NoError(t, err)

	values := out.Column(domain.ColValue)
	assert.Equal(t, 100.0, values.Float(0))
	assert.Equal(t, 150.0, values.Float(1)) // 0.5*200 + 0.5*100
	assert.Equal(t, 175.0, values.Float(2)) // 0.5*200 + 0.5*150
}

func TestSmoothValuesIgnoresNulls(t *testing.T) {
	f := columnar.FromRows([]map[string]any{
		{"entity": "AAPL", "concept": "Revenue", "period": "2024Q1", "value": 100.0},
		{"entity": "AAPL", "concept": "Revenue", "period": "2024Q2", "value": nil},
		{"entity": "AAPL", "concept": "Revenue", "period": "2024Q3", "value": 300.0},
	})

	out, err := SmoothValues(0.5)(f)
	require.NoError(t, err)

	values := out.Column(domain.ColValue)
	assert.False(t, values.IsValid(1), "null stays null")
	assert.Equal(t, 200.0, values.Float(2), "null neither moves nor resets the average")
}

func TestSmoothValuesSeparatesGroups(t *testing.T) {
	f := columnar.FromRows([]map[string]any{
		{"entity": "AAPL", "concept": "Revenue", "period": "2024Q1", "value": 100.0},
		{"entity": "MSFT", "concept": "Revenue", "period": "2024Q1", "value": 900.0},
		{"entity": "AAPL", "concept": "Revenue", "period": "2024Q2", "value": 200.0},
	})

	out, err := SmoothValues(0.5)(f)
	require.NoError(t, err)

	values := out.Column(domain.ColValue)
	assert.Equal(t, 900.0, values.Float(1), "other entities do not leak into the average")
	assert.Equal(t, 150.0, values.Float(2))
}
