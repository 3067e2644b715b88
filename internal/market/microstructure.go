package market

import (
	"math"

	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

// Microstructure returns the raw signal step: per-entity log return of the
// close, and an order-flow-imbalance proxy from the first differences of
// bid_size and ask_size (missing differences fill with zero). Each signal
// is computed only when its input columns are present.
func Microstructure() columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		out := f
		n := f.NumRows()
		groups := entityGroups(f)

		if closeCol := f.Column(domain.ColClose); closeCol != nil {
			logRet := newColumn(n)
			for _, rows := range groups {
				values, valid := gather(closeCol, rows)
				for i := 1; i < len(rows); i++ {
					if valid[i] && valid[i-1] && values[i] > 0 && values[i-1] > 0 {
						logRet.set(rows[i], math.Log(values[i]/values[i-1]))
					}
				}
			}
			var err error
			if out, err = out.WithColumn(logRet.series(ColLogReturn)); err != nil {
				return nil, err
			}
		}

		bidSize := f.Column(domain.ColBidSize)
		askSize := f.Column(domain.ColAskSize)
		if bidSize != nil && askSize != nil {
			ofi := newColumn(n)
			for _, rows := range groups {
				bids, bidValid := gather(bidSize, rows)
				asks, askValid := gather(askSize, rows)
				for i := range rows {
					dBid, dAsk := 0.0, 0.0
					if i > 0 {
						if bidValid[i] && bidValid[i-1] {
							dBid = bids[i] - bids[i-1]
						}
						if askValid[i] && askValid[i-1] {
							dAsk = asks[i] - asks[i-1]
						}
					}
					ofi.set(rows[i], dBid-dAsk)
				}
			}
			var err error
			if out, err = out.WithColumn(ofi.series(ColOFI)); err != nil {
				return nil, err
			}
		}

		return out, nil
	}
}
