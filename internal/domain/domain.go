// Package domain holds the vocabulary shared across the hub: domain tags,
// source tiers and their trust mapping, canonical column names, and the
// object-identity rules applied at the ingestion boundary.
package domain

import "fmt"

// Domain partitions records into the two pipeline tracks.
type Domain string

const (
	Fundamental Domain = "fundamental"
	Market      Domain = "market"
)

// Valid reports whether d is a known domain tag.
func (d Domain) Valid() bool {
	return d == Fundamental || d == Market
}

// Tier identifies the trust level of an upstream source.
type Tier string

const (
	Tier1 Tier = "tier1"
	Tier2 Tier = "tier2"
	Tier3 Tier = "tier3"
)

// Confidence maps a tier to its base confidence score. Unknown tiers get
// the lowest trust rather than failing the ingest.
func (t Tier) Confidence() float64 {
	switch t {
	case Tier1:
		return 0.99
	case Tier2:
		return 0.95
	default:
		return 0.85
	}
}

// Canonical column names stamped or consumed by the pipeline.
const (
	ColEntity       = "entity"
	ColPeriod       = "period"
	ColConcept      = "concept"
	ColValue        = "value"
	ColUnit         = "unit"
	ColDate         = "date"
	ColTimestamp    = "timestamp"
	ColSourceTier   = "source_tier"
	ColConfidence   = "confidence_score"
	ColObjectID     = "object_id"
	ColOntologyType = "ontology_type"

	ColPrice   = "price"
	ColClose   = "close"
	ColOpen    = "open"
	ColHigh    = "high"
	ColLow     = "low"
	ColVolume  = "volume"
	ColBid     = "bid"
	ColAsk     = "ask"
	ColBidSize = "bid_size"
	ColAskSize = "ask_size"
)

// Ontology types carried alongside object identity.
const (
	OntologyObject = "Object"
	OntologyEvent  = "Event"
)

// Accounting concepts subject to the self-healing identity audit.
const (
	ConceptTotalAssets        = "TotalAssets"
	ConceptTotalLiabilities   = "TotalLiabilities"
	ConceptStockholdersEquity = "StockholdersEquity"
)

// FundamentalObjectID builds the stable identity of a fundamental fact.
func FundamentalObjectID(entity, period, concept string) string {
	return fmt.Sprintf("%s_F_%s_%s", entity, period, concept)
}

// MarketObjectID builds the stable identity of a market event.
func MarketObjectID(entity, date string) string {
	return fmt.Sprintf("%s_M_%s", entity, date)
}
