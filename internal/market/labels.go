package market

import (
	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

// TripleBarrier returns the path-outcome labeling step. Per entity it
// computes rolling volatility (std of daily_return over the window) unless
// a volatility column already exists, then labels each bar against the
// close BarrierHorizon bars ahead:
//
//	+1  forward close above close * (1 + volatility)
//	-1  forward close below close * (1 - volatility)
//	 0  inside the barriers
//
// Bars without a forward close or volatility stay unlabeled (null).
func TripleBarrier(window, horizon int) columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		closeCol := f.Column(domain.ColClose)
		if closeCol == nil {
			return f, nil
		}

		out := f
		vol := f.Column(ColVolatility)
		if vol == nil {
			dailyRet := f.Column(ColDailyReturn)
			if dailyRet == nil {
				return f, nil
			}
			volCol := newColumn(f.NumRows())
			for _, rows := range entityGroups(f) {
				rets, retValid := gather(dailyRet, rows)
				std := rollingStd(rets, retValid, window)
				for i := range rows {
					if std.valid[i] {
						volCol.set(rows[i], std.values[i])
					}
				}
			}
			var err error
			if out, err = out.WithColumn(volCol.series(ColVolatility)); err != nil {
				return nil, err
			}
			vol = out.Column(ColVolatility)
		}

		labels := newColumn(out.NumRows())
		for _, rows := range entityGroups(out) {
			closes, closeValid := gather(closeCol, rows)
			for i := range rows {
				fwd := i + horizon
				if fwd >= len(rows) || !closeValid[i] || !closeValid[fwd] {
					continue
				}
				if !vol.IsValid(rows[i]) {
					continue
				}
				labels.set(rows[i], barrierLabel(closes[i], closes[fwd], vol.Float(rows[i]), 1.0))
			}
		}
		return out.WithColumn(labels.series(ColBarrier))
	}
}

func barrierLabel(close, forward, volatility, width float64) float64 {
	upper := close * (1 + volatility*width)
	lower := close * (1 - volatility*width)
	switch {
	case forward > upper:
		return 1
	case forward < lower:
		return -1
	default:
		return 0
	}
}

// MetaLabel returns the secondary labeling step: 1 when the direction the
// barrier label implies actually realized in the forward close, 0 when it
// did not or the primary label was flat. Used downstream to filter
// low-conviction primary signals.
func MetaLabel(horizon int) columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		closeCol := f.Column(domain.ColClose)
		barrier := f.Column(ColBarrier)
		if closeCol == nil || barrier == nil {
			return f, nil
		}

		meta := newColumn(f.NumRows())
		for _, rows := range entityGroups(f) {
			closes, closeValid := gather(closeCol, rows)
			for i := range rows {
				if !barrier.IsValid(rows[i]) {
					continue
				}
				fwd := i + horizon
				if fwd >= len(rows) || !closeValid[i] || !closeValid[fwd] {
					continue
				}
				primary := barrier.Float(rows[i])
				if primary == 0 {
					meta.set(rows[i], 0)
					continue
				}
				realized := sign(closes[fwd] - closes[i])
				if realized == primary {
					meta.set(rows[i], 1)
				} else {
					meta.set(rows[i], 0)
				}
			}
		}
		return f.WithColumn(meta.series(ColMetaLabel))
	}
}
