package fundamental

import (
	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

// ResolveConflicts returns the authority-selection step: group rows by
// object_id, keep exactly the highest-confidence record per group, discard
// the rest wholesale. Ties keep the first record seen, so the result is
// deterministic for any input order. Rows without an object_id are kept
// untouched; identity stamping happens at ingest, so they only occur when
// the source record lacked an entity.
func ResolveConflicts() columnar.StepFunc {
	return func(f *columnar.Frame) (*columnar.Frame, error) {
		ids := f.Column(domain.ColObjectID)
		if ids == nil {
			return f, nil
		}
		conf := f.Column(domain.ColConfidence)

		confidence := func(row int) float64 {
			if conf == nil || !conf.IsValid(row) {
				return 0
			}
			return conf.Float(row)
		}

		// survivor index per object_id, in first-seen group order.
		best := make(map[string]int)
		var order []int
		position := make(map[string]int)

		for row := 0; row < f.NumRows(); row++ {
			if !ids.IsValid(row) {
				order = append(order, row)
				continue
			}
			id := ids.Str(row)
			prev, seen := best[id]
			if !seen {
				best[id] = row
				position[id] = len(order)
				order = append(order, row)
				continue
			}
			if confidence(row) > confidence(prev) {
				best[id] = row
				order[position[id]] = row
			}
		}

		return f.Take(order), nil
	}
}
