package hub

import (
	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
)

// Batch is the tagged union accepted at the ingestion boundary: either
// row-oriented records or an already-columnar frame. Exactly one side is
// set; both sides set prefers the columnar one.
type Batch struct {
	Rows    []map[string]any
	Columns *columnar.Frame
}

// RowBatch wraps row-oriented records.
func RowBatch(rows []map[string]any) Batch { return Batch{Rows: rows} }

// ColumnBatch wraps an already-columnar frame.
func ColumnBatch(f *columnar.Frame) Batch { return Batch{Columns: f} }

// frame normalizes the union into the internal columnar representation.
func (b Batch) frame() *columnar.Frame {
	if b.Columns != nil {
		return b.Columns
	}
	return columnar.FromRows(b.Rows)
}

func (b Batch) empty() bool {
	if b.Columns != nil {
		return b.Columns.NumRows() == 0
	}
	return len(b.Rows) == 0
}

// stampProvenance overwrites the source_tier and confidence_score columns
// with the tier of this batch. Every record carries the provenance of the
// call that delivered it, even when an upstream already set one.
func stampProvenance(f *columnar.Frame, tier domain.Tier) (*columnar.Frame, error) {
	n := f.NumRows()

	tiers := make([]string, n)
	confidences := make([]float64, n)
	for i := 0; i < n; i++ {
		tiers[i] = string(tier)
		confidences[i] = tier.Confidence()
	}

	out, err := f.WithColumn(columnar.NewStringSeries(domain.ColSourceTier, tiers, nil))
	if err != nil {
		return nil, err
	}
	return out.WithColumn(columnar.NewFloatSeries(domain.ColConfidence, confidences, nil))
}

// deriveIdentity fills in object_id and ontology_type when the batch did
// not bring them. Fundamental facts key on (entity, period, concept) and
// are Objects; market events key on (entity, date) and are Events. Rows
// lacking the key columns get a null identity and are left alone by
// conflict resolution.
func deriveIdentity(f *columnar.Frame, dom domain.Domain) (*columnar.Frame, error) {
	out := f
	n := f.NumRows()

	if !f.HasColumn(domain.ColObjectID) {
		ids := make([]string, n)
		valid := make([]bool, n)

		entities := f.Column(domain.ColEntity)
		switch dom {
		case domain.Fundamental:
			periods := f.Column(domain.ColPeriod)
			concepts := f.Column(domain.ColConcept)
			for i := 0; i < n; i++ {
				if strValid(entities, i) && strValid(periods, i) && strValid(concepts, i) {
					ids[i] = domain.FundamentalObjectID(entities.Str(i), periods.Str(i), concepts.Str(i))
					valid[i] = true
				}
			}
		case domain.Market:
			dates := f.Column(domain.ColDate)
			if dates == nil || dates.Kind() != columnar.KindString {
				dates = f.Column(domain.ColTimestamp)
			}
			for i := 0; i < n; i++ {
				if strValid(entities, i) && strValid(dates, i) {
					ids[i] = domain.MarketObjectID(entities.Str(i), dates.Str(i))
					valid[i] = true
				}
			}
		}

		var err error
		if out, err = out.WithColumn(columnar.NewStringSeries(domain.ColObjectID, ids, valid)); err != nil {
			return nil, err
		}
	}

	if !out.HasColumn(domain.ColOntologyType) {
		ontology := domain.OntologyObject
		if dom == domain.Market {
			ontology = domain.OntologyEvent
		}
		types := make([]string, n)
		for i := range types {
			types[i] = ontology
		}
		var err error
		if out, err = out.WithColumn(columnar.NewStringSeries(domain.ColOntologyType, types, nil)); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func strValid(s *columnar.Series, i int) bool {
	return s != nil && s.Kind() == columnar.KindString && s.IsValid(i)
}
