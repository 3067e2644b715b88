package hub

import "math"

// Quality-score lifecycle: starts at the neutral prior and accumulates
// evidence multiplicatively, clamped to (qualityMin, qualityMax] so no
// single check can pin it to zero or certainty. The floor is exclusive.
const (
	qualityInit = 0.5
	qualityMin  = 0.0001
	qualityMax  = 0.9999
)

type qualityScore struct {
	v float64
}

func newQualityScore() *qualityScore {
	return &qualityScore{v: qualityInit}
}

func (q *qualityScore) apply(factor float64) {
	q.v *= factor
	if q.v > qualityMax {
		q.v = qualityMax
	}
	if q.v <= qualityMin {
		q.v = math.Nextafter(qualityMin, 1)
	}
}

func (q *qualityScore) value() float64 { return q.v }
