package market

import (
	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

// Sanitize returns the tick-sanitization step. Rows violating any
// constraint whose columns are present are dropped:
//
//	low <= high, bid <= ask, price > 0
//
// Constraints over absent columns are skipped, and null values never
// condemn a row on their own.
func Sanitize() columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		low := f.Column(domain.ColLow)
		high := f.Column(domain.ColHigh)
		bid := f.Column(domain.ColBid)
		ask := f.Column(domain.ColAsk)
		price := f.Column(domain.ColPrice)

		n := f.NumRows()
		keep := make([]bool, n)
		for row := 0; row < n; row++ {
			keep[row] = true

			if low != nil && high != nil && low.IsValid(row) && high.IsValid(row) {
				if low.Float(row) > high.Float(row) {
					keep[row] = false
				}
			}
			if bid != nil && ask != nil && bid.IsValid(row) && ask.IsValid(row) {
				if bid.Float(row) > ask.Float(row) {
					keep[row] = false
				}
			}
			if price != nil && price.IsValid(row) {
				if price.Float(row) <= 0 {
					keep[row] = false
				}
			}
		}
		return f.Filter(keep), nil
	}
}
