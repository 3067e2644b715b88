package fundamental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

func balanceSheet(assets, liabilities, equity float64) *columnar.Frame {
	return columnar.FromRows([]map[string]any{
		{"entity": "AAPL", "period": "2024Q1", "concept": "TotalAssets", "value": assets},
		{"entity": "AAPL", "period": "2024Q1", "concept": "TotalLiabilities", "value": liabilities},
		{"entity": "AAPL", "period": "2024Q1", "concept": "StockholdersEquity", "value": equity},
	})
}

func TestHealAccountingIdentityRepairsAssets(t *testing.T) {
	var report AuditReport
	out, err := HealAccountingIdentity(DefaultIdentityTolerance, &report)(balanceSheet(1000, 300, 600))
	require.NoError(t, err)

	values := out.Column(domain.ColValue)
	assert.Equal(t, 900.0, values.Float(0), "TotalAssets rewritten to Liabilities + Equity")
	assert.Equal(t, 300.0, values.Float(1))
	assert.Equal(t, 600.0, values.Float(2))

	assert.Equal(t, 1, report.IdentityViolations)
	assert.Equal(t, 0, report.IdentityPasses)
}

func TestHealAccountingIdentityLeavesBalancedGroups(t *testing.T) {
	var report AuditReport
	in := balanceSheet(900, 300, 600)
	out, err := HealAccountingIdentity(DefaultIdentityTolerance, &report)(in)
	require.NoError(t, err)

	values := out.Column(domain.ColValue)
	assert.Equal(t, 900.0, values.Float(0))
	assert.Equal(t, 0, report.IdentityViolations)
	assert.Equal(t, 1, report.IdentityPasses)
}

func TestHealAccountingIdentityWithinTolerance(t *testing.T) {
	var report AuditReport
	out, err := HealAccountingIdentity(1.0, &report)(balanceSheet(900.5, 300, 600))
	require.NoError(t, err)

	// diff = 0.5 <= 1.0, no repair.
	assert.Equal(t, 900.5, out.Column(domain.ColValue).Float(0))
	assert.Equal(t, 1, report.IdentityPasses)
}

func TestHealAccountingIdentitySkipsIncompleteGroups(t *testing.T) {
	f := columnar.FromRows([]map[string]any{
		{"entity": "MSFT", "period": "2024Q1", "concept": "TotalAssets", "value": 500.0},
		{"entity": "MSFT", "period": "2024Q1", "concept": "TotalLiabilities", "value": 100.0},
		// StockholdersEquity missing entirely for the group.
	})

	var report AuditReport
	out, err := HealAccountingIdentity(DefaultIdentityTolerance, &report)(f)
	require.NoError(t, err)

	assert.Equal(t, 500.0, out.Column(domain.ColValue).Float(0))
	assert.Equal(t, 1, report.SkippedGroups)
	assert.Equal(t, 0, report.IdentityViolations)
	assert.Equal(t, 0, report.IdentityPasses)
}

func TestHealAccountingIdentityTreatsNullAsZero(t *testing.T) {
	f := columnar.FromRows([]map[string]any{
		{"entity": "AAPL", "period": "2024Q1", "concept": "TotalAssets", "value": 1000.0},
		{"entity": "AAPL", "period": "2024Q1", "concept": "TotalLiabilities", "value": 300.0},
		{"entity": "AAPL", "period": "2024Q1", "concept": "StockholdersEquity", "value": nil},
	})

	var report AuditReport
	out, err := HealAccountingIdentity(DefaultIdentityTolerance, &report)(f)
	require.NoError(t, err)

	// Equity row present but null counts as zero: diff = 700 > 1, repair to 300.
	assert.Equal(t, 300.0, out.Column(domain.ColValue).Float(0))
	assert.Equal(t, 1, report.IdentityViolations)
}

func TestQualityFactors(t *testing.T) {
	report := AuditReport{
		IdentityViolations: 2,
		IdentityPasses:     1,
		BenfordChecked:     true,
		BenfordViolation:   true,
		OutliersChecked:    true,
		OutlierCount:       0,
	}
	factors := report.QualityFactors()
	assert.Equal(t, []float64{0.8, 0.8, 1.1, 0.85, 1.05}, factors)
}
