package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

func TestSanitizeDropsViolatingRows(t *testing.T) {
	f := columnar.FromRows([]map[string]any{
		{"entity": "A", "price": 100.0, "low": 99.0, "high": 101.0, "bid": 99.5, "ask": 100.5},
		{"entity": "B", "price": 100.0, "low": 105.0, "high": 101.0, "bid": 99.5, "ask": 100.5}, // low > high
		{"entity": "C", "price": 100.0, "low": 99.0, "high": 101.0, "bid": 101.0, "ask": 100.0}, // bid > ask
		{"entity": "D", "price": -5.0, "low": 99.0, "high": 101.0, "bid": 99.5, "ask": 100.5},   // price <= 0
	})

	out, err := Sanitize()(f)
	require.NoError(t, err)

	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, "A", out.Column(domain.ColEntity).Str(0))
}

func TestSanitizeSkipsAbsentColumns(t *testing.T) {
	// No bid/ask/low/high: only the price rule applies.
	f := columnar.FromRows([]map[string]any{
		{"entity": "A", "price": 10.0},
		{"entity": "B", "price": 0.0},
	})

	out, err := Sanitize()(f)
	require.NoError(t, err)
	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, "A", out.Column(domain.ColEntity).Str(0))
}

func TestSanitizeKeepsNullValues(t *testing.T) {
	f := columnar.FromRows([]map[string]any{
		{"entity": "A", "price": nil, "low": 99.0, "high": 101.0},
	})

	out, err := Sanitize()(f)
	require.NoError(t, err)
	assert.Equal(t, 1, out.NumRows(), "nulls are data gaps, not violations")
}
