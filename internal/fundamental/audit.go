package fundamental

import (
	"math"

	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

// DefaultIdentityTolerance is the absolute tolerance for the accounting
// identity check. Values are audited after the unit lock, so magnitudes are
// already normalized; an absolute bound deliberately catches large-cap
// discrepancies a relative bound would forgive.
const DefaultIdentityTolerance = 1.0

// Quality factors applied per audited group.
const (
	identityViolationFactor = 0.8
	identityPassFactor      = 1.1
)

// AuditReport accumulates the outcome of the audit steps. The hub turns it
// into quality-score factors after the plan materializes.
type AuditReport struct {
	IdentityViolations int
	IdentityPasses     int
	SkippedGroups      int

	BenfordChecked   bool
	BenfordViolation bool
	BenfordDeviation float64

	OutliersChecked bool
	OutlierCount    int
}

// QualityFactors returns the multiplicative factors the report contributes
// to the hub's quality score, in a deterministic order.
func (r *AuditReport) QualityFactors() []float64 {
	var factors []float64
	for i := 0; i < r.IdentityViolations; i++ {
		factors = append(factors, identityViolationFactor)
	}
	for i := 0; i < r.IdentityPasses; i++ {
		factors = append(factors, identityPassFactor)
	}
	if r.BenfordChecked {
		if r.BenfordViolation {
			factors = append(factors, statViolationFactor)
		} else {
			factors = append(factors, statPassFactor)
		}
	}
	if r.OutliersChecked {
		if r.OutlierCount > 0 {
			factors = append(factors, statViolationFactor)
		} else {
			factors = append(factors, statPassFactor)
		}
	}
	return factors
}

// HealAccountingIdentity returns the self-healing audit step. For every
// (entity, period) where all three of TotalAssets, TotalLiabilities and
// StockholdersEquity are present, it checks
// |Assets - (Liabilities + Equity)| against the tolerance; violating groups
// get the TotalAssets row rewritten to Liabilities + Equity. Groups missing
// any of the three concepts are skipped and never counted as failures.
// Null values inside a present row are treated as zero.
func HealAccountingIdentity(tolerance float64, report *AuditReport) columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		entities := f.Column(domain.ColEntity)
		periods := f.Column(domain.ColPeriod)
		concepts := f.Column(domain.ColConcept)
		values := f.Column(domain.ColValue)
		if entities == nil || periods == nil || concepts == nil || values == nil {
			return f, nil
		}

		type group struct {
			assetsRow      int
			liabilitiesRow int
			equityRow      int
		}
		groups := make(map[string]*group)
		var order []string

		for row := 0; row < f.NumRows(); row++ {
			concept := str(concepts, row)
			switch concept {
			case domain.ConceptTotalAssets, domain.ConceptTotalLiabilities, domain.ConceptStockholdersEquity:
			default:
				continue
			}
			key := str(entities, row) + "\x00" + str(periods, row)
			g, seen := groups[key]
			if !seen {
				g = &group{assetsRow: -1, liabilitiesRow: -1, equityRow: -1}
				groups[key] = g
				order = append(order, key)
			}
			// First surviving row per concept wins; conflict resolution has
			// already deduplicated identical object_ids.
			switch concept {
			case domain.ConceptTotalAssets:
				if g.assetsRow < 0 {
					g.assetsRow = row
				}
			case domain.ConceptTotalLiabilities:
				if g.liabilitiesRow < 0 {
					g.liabilitiesRow = row
				}
			case domain.ConceptStockholdersEquity:
				if g.equityRow < 0 {
					g.equityRow = row
				}
			}
		}

		n := f.NumRows()
		healed := make([]float64, n)
		valid := make([]bool, n)
		for row := 0; row < n; row++ {
			valid[row] = values.IsValid(row)
			healed[row] = values.Float(row)
		}

		zeroIfNull := func(row int) float64 {
			if !values.IsValid(row) {
				return 0
			}
			return values.Float(row)
		}

		changed := false
		for _, key := range order {
			g := groups[key]
			if g.assetsRow < 0 || g.liabilitiesRow < 0 || g.equityRow < 0 {
				if report != nil {
					report.SkippedGroups++
				}
				continue
			}

			assets := zeroIfNull(g.assetsRow)
			liabilities := zeroIfNull(g.liabilitiesRow)
			equity := zeroIfNull(g.equityRow)

			diff := math.Abs(assets - (liabilities + equity))
			if diff > tolerance {
				healed[g.assetsRow] = liabilities + equity
				valid[g.assetsRow] = true
				changed = true
				if report != nil {
					report.IdentityViolations++
				}
				continue
			}
			if report != nil {
				report.IdentityPasses++
			}
		}

		if !changed {
			return f, nil
		}
		return f.WithColumn(columnar.NewFloatSeries(domain.ColValue, healed, valid))
	}
}
