package market

import (
	"math"

	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

// ExecutionCost returns the execution-aware scoring step:
//
//	impact_cost = volatility * sqrt(baseline_volume / volume_mean) * k
//	net_alpha   = alpha_z_score - impact_cost
//
// penalizing signals that would be expensive to trade at recent liquidity.
// Rows missing any input stay null.
func ExecutionCost(k, baselineVolume float64) columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		vol := f.Column(ColVolatility)
		volumeMean := f.Column(ColVolumeMean)
		alphaZ := f.Column(ColAlphaZ)
		if vol == nil || volumeMean == nil || alphaZ == nil {
			return f, nil
		}

		n := f.NumRows()
		impact := newColumn(n)
		netAlpha := newColumn(n)

		for row := 0; row < n; row++ {
			if !vol.IsValid(row) || !volumeMean.IsValid(row) || volumeMean.Float(row) <= 0 {
				continue
			}
			cost := vol.Float(row) * math.Sqrt(baselineVolume/volumeMean.Float(row)) * k
			impact.set(row, cost)
			if alphaZ.IsValid(row) {
				netAlpha.set(row, alphaZ.Float(row)-cost)
			}
		}

		out, err := f.WithColumn(impact.series(ColImpactCost))
		if err != nil {
			return nil, err
		}
		return out.WithColumn(netAlpha.series(ColNetAlpha))
	}
}

// RegimeTuning returns the auto-tuning step: each bar is classified as
// High_Vol or Normal_Vol against the fixed volatility threshold, and bars
// under High_Vol get their barrier label recomputed with the widened
// barrier width. Upstream stages are not re-run; only the label tightens
// its parameters per regime.
func RegimeTuning(horizon int, volThreshold, widthMultiplier float64) columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		vol := f.Column(ColVolatility)
		if vol == nil {
			return f, nil
		}

		n := f.NumRows()
		regimes := make([]string, n)
		regimeValid := make([]bool, n)
		for row := 0; row < n; row++ {
			if !vol.IsValid(row) {
				continue
			}
			regimeValid[row] = true
			if vol.Float(row) > volThreshold {
				regimes[row] = RegimeHighVol
			} else {
				regimes[row] = RegimeNormalVol
			}
		}

		out, err := f.WithColumn(columnar.NewStringSeries(ColRegime, regimes, regimeValid))
		if err != nil {
			return nil, err
		}

		barrier := out.Column(ColBarrier)
		closeCol := out.Column(domain.ColClose)
		if barrier == nil || closeCol == nil {
			return out, nil
		}

		relabeled := newColumn(n)
		for row := 0; row < n; row++ {
			if barrier.IsValid(row) {
				relabeled.set(row, barrier.Float(row))
			}
		}
		for _, rows := range entityGroups(out) {
			closes, closeValid := gather(closeCol, rows)
			for i := range rows {
				row := rows[i]
				if !regimeValid[row] || regimes[row] != RegimeHighVol || !barrier.IsValid(row) {
					continue
				}
				fwd := i + horizon
				if fwd >= len(rows) || !closeValid[i] || !closeValid[fwd] || !vol.IsValid(row) {
					continue
				}
				relabeled.set(row, barrierLabel(closes[i], closes[fwd], vol.Float(row), widthMultiplier))
			}
		}
		return out.WithColumn(relabeled.series(ColBarrier))
	}
}
