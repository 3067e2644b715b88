package market

import (
	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

// AlphaFeatures returns the windowed feature step, per entity in arrival
// order:
//
//	daily_return   close pct change
//	volume_mean    rolling mean of volume
//	ma_divergence  close minus its rolling mean
//	frac_diff      close - FracDiffWeight * previous close
//	alpha_z_score  frac_diff normalized by its own rolling mean/std
//	signed_flow    volume signed by the daily return's sign
//	vpin           rolling |signed_flow| over rolling volume
//
// Requires the close column; volume-derived features additionally need
// volume and are skipped without it.
func AlphaFeatures(window int) columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		closeCol := f.Column(domain.ColClose)
		if closeCol == nil {
			return f, nil
		}
		volumeCol := f.Column(domain.ColVolume)

		n := f.NumRows()
		dailyRet := newColumn(n)
		volumeMean := newColumn(n)
		maDiv := newColumn(n)
		fracDiff := newColumn(n)
		alphaZ := newColumn(n)
		signedFlow := newColumn(n)
		vpin := newColumn(n)

		for _, rows := range entityGroups(f) {
			closes, closeValid := gather(closeCol, rows)

			// daily_return and frac_diff need one lag.
			localRet := make([]float64, len(rows))
			localRetValid := make([]bool, len(rows))
			localFD := make([]float64, len(rows))
			localFDValid := make([]bool, len(rows))
			for i := 1; i < len(rows); i++ {
				if !closeValid[i] || !closeValid[i-1] {
					continue
				}
				if closes[i-1] != 0 {
					localRet[i] = closes[i]/closes[i-1] - 1
					localRetValid[i] = true
					dailyRet.set(rows[i], localRet[i])
				}
				localFD[i] = closes[i] - FracDiffWeight*closes[i-1]
				localFDValid[i] = true
				fracDiff.set(rows[i], localFD[i])
			}

			// alpha z-score over the frac-diff series.
			fdMean := rollingMean(localFD, localFDValid, window)
			fdStd := rollingStd(localFD, localFDValid, window)
			for i := range rows {
				if localFDValid[i] && fdMean.valid[i] && fdStd.valid[i] && fdStd.values[i] > 0 {
					alphaZ.set(rows[i], (localFD[i]-fdMean.values[i])/fdStd.values[i])
				}
			}

			closeMean := rollingMean(closes, closeValid, window)
			for i := range rows {
				if closeValid[i] && closeMean.valid[i] {
					maDiv.set(rows[i], closes[i]-closeMean.values[i])
				}
			}

			if volumeCol == nil {
				continue
			}
			volumes, volumeValid := gather(volumeCol, rows)

			vMean := rollingMean(volumes, volumeValid, window)
			for i := range rows {
				if vMean.valid[i] {
					volumeMean.set(rows[i], vMean.values[i])
				}
			}

			localFlow := make([]float64, len(rows))
			localFlowValid := make([]bool, len(rows))
			for i := range rows {
				if !volumeValid[i] || !localRetValid[i] {
					continue
				}
				localFlow[i] = volumes[i] * sign(localRet[i])
				localFlowValid[i] = true
				signedFlow.set(rows[i], localFlow[i])
			}

			absFlow := make([]float64, len(rows))
			for i := range rows {
				if localFlow[i] < 0 {
					absFlow[i] = -localFlow[i]
				} else {
					absFlow[i] = localFlow[i]
				}
			}
			// Numerator and denominator must see the same rows: volume on a
			// bar with no signed flow would deflate the ratio.
			flowSum := rollingSum(absFlow, localFlowValid, window)
			volSum := rollingSum(volumes, localFlowValid, window)
			for i := range rows {
				if flowSum.valid[i] && volSum.valid[i] && volSum.values[i] > 0 {
					vpin.set(rows[i], flowSum.values[i]/volSum.values[i])
				}
			}
		}

		out := f
		for _, col := range []*columnar.Series{
			dailyRet.series(ColDailyReturn),
			volumeMean.series(ColVolumeMean),
			maDiv.series(ColMADiv),
			fracDiff.series(ColFracDiff),
			alphaZ.series(ColAlphaZ),
			signedFlow.series(ColSignedFlow),
			vpin.series(ColVPIN),
		} {
			var err error
			if out, err = out.WithColumn(col); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}

// StrategySignal returns the categorical signal step over the alpha z-score
// and VPIN: Strong_Buy above (+threshold, VPIN gate), Strong_Sell below the
// mirrored threshold, Hold otherwise or when either input is null.
func StrategySignal() columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		alphaZ := f.Column(ColAlphaZ)
		vpin := f.Column(ColVPIN)
		if alphaZ == nil || vpin == nil {
			return f, nil
		}

		n := f.NumRows()
		signals := make([]string, n)
		valid := make([]bool, n)
		for row := 0; row < n; row++ {
			signals[row] = SignalHold
			valid[row] = true
			if !alphaZ.IsValid(row) || !vpin.IsValid(row) {
				continue
			}
			z, v := alphaZ.Float(row), vpin.Float(row)
			switch {
			case z > AlphaZThreshold && v > VPINThreshold:
				signals[row] = SignalStrongBuy
			case z < -AlphaZThreshold && v > VPINThreshold:
				signals[row] = SignalStrongSell
			}
		}
		return f.WithColumn(columnar.NewStringSeries(ColSignal, signals, valid))
	}
}
