package market

import (
	"math"

	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

// DollarBars returns the information-driven resampling step. Per entity, in
// arrival order, ticks accumulate dollar turnover (price x volume); the bar
// id is the cumulative turnover divided by the threshold, so bars close on
// traded value rather than clock time. Each (entity, bar_id) group collapses
// to one OHLCV row: open=first, high=max, low=min, close=last, volume=sum.
//
// The step is a no-op when the price or volume column is absent, leaving
// the raw ticks for the downstream stages.
func DollarBars(threshold float64) columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		price := f.Column(domain.ColPrice)
		volume := f.Column(domain.ColVolume)
		if price == nil || volume == nil || f.NumRows() == 0 {
			return f, nil
		}

		entities := f.Column(domain.ColEntity)
		dates := f.Column(domain.ColDate)

		type bar struct {
			entity      string
			entityValid bool
			date        string
			dateValid   bool
			barID       float64
			open        float64
			high        float64
			low         float64
			close       float64
			volume      float64
			hasTick     bool
		}

		var bars []*bar
		current := make(map[string]*bar) // open bar per entity

		for _, rows := range entityGroups(f) {
			cum := 0.0
			for _, row := range rows {
				if !price.IsValid(row) || !volume.IsValid(row) {
					continue
				}
				p := price.Float(row)
				v := volume.Float(row)
				cum += p * v
				barID := math.Floor(cum / threshold)

				entity, entityValid := "", false
				if entities != nil && entities.IsValid(row) {
					entity, entityValid = entities.Str(row), true
				}

				key := entity
				b := current[key]
				if b == nil || b.barID != barID {
					b = &bar{entity: entity, entityValid: entityValid, barID: barID}
					current[key] = b
					bars = append(bars, b)
				}

				if !b.hasTick {
					b.open, b.high, b.low = p, p, p
					b.hasTick = true
				} else {
					if p > b.high {
						b.high = p
					}
					if p < b.low {
						b.low = p
					}
				}
				b.close = p
				b.volume += v
				if dates != nil && dates.IsValid(row) {
					b.date, b.dateValid = dates.Str(row), true
				}
			}
		}

		n := len(bars)
		entityOut := make([]string, n)
		entityValid := make([]bool, n)
		dateOut := make([]string, n)
		dateValid := make([]bool, n)
		barID := newColumn(n)
		open := newColumn(n)
		high := newColumn(n)
		low := newColumn(n)
		closeCol := newColumn(n)
		vol := newColumn(n)

		for i, b := range bars {
			entityOut[i] = b.entity
			entityValid[i] = b.entityValid
			dateOut[i] = b.date
			dateValid[i] = b.dateValid
			barID.set(i, b.barID)
			open.set(i, b.open)
			high.set(i, b.high)
			low.set(i, b.low)
			closeCol.set(i, b.close)
			vol.set(i, b.volume)
		}

		return columnar.NewFrame(
			columnar.NewStringSeries(domain.ColEntity, entityOut, entityValid),
			columnar.NewStringSeries(domain.ColDate, dateOut, dateValid),
			barID.series(ColBarID),
			open.series(domain.ColOpen),
			high.series(domain.ColHigh),
			low.series(domain.ColLow),
			closeCol.series(domain.ColClose),
			vol.series(domain.ColVolume),
		)
	}
}
