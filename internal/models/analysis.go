// -----------------------------------------------------------------------
// Analysis models - cached per-ticker artifacts and sentiment evidence
// -----------------------------------------------------------------------

package models

import (
	"time"
)

// AnalysisKind identifies which pipeline produced an artifact.
type AnalysisKind string

const (
	// AnalysisKindSimple is the ARIMA forecast + sentiment adjustment pipeline.
	AnalysisKindSimple AnalysisKind = "simple"
	// AnalysisKindHybrid is the two-model ensemble pipeline.
	AnalysisKindHybrid AnalysisKind = "hybrid"
)

// Valid returns true for a recognized analysis kind.
func (k AnalysisKind) Valid() bool {
	return k == AnalysisKindSimple || k == AnalysisKindHybrid
}

// SentimentLabel classifies a compound sentiment score.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// EvidenceComment is an analyzed comment attached to an evidence item.
type EvidenceComment struct {
	Body      string         `json:"body"`
	Author    string         `json:"author"`
	Score     int            `json:"score"`
	Sentiment SentimentLabel `json:"sentiment"`
}

// EvidenceItem is a single piece of public discussion content feeding
// sentiment aggregation. Score is the upvote-like weight (>= 0 from the
// forum API; the aggregator applies its own +1 floor).
type EvidenceItem struct {
	Title     string            `json:"title"`
	Body      string            `json:"body,omitempty"`
	URL       string            `json:"url"`
	Score     int               `json:"score"`
	Sentiment SentimentLabel    `json:"sentiment"`
	Comments  []EvidenceComment `json:"comments"`
}

// AnalysisRecord is the cached analysis state for one ticker. Exactly one
// record exists per ticker; the simple and hybrid artifact fields are written
// independently but share the LastUpdated freshness timestamp.
type AnalysisRecord struct {
	Ticker string `badgerhold:"key" json:"ticker"`

	// Simple pipeline artifact: rendered chart plus the sentiment evidence
	// that produced the adjustment. ArimaPlot alone is written at the
	// partial-commit point before sentiment runs.
	ArimaPlot string         `json:"arima_plot,omitempty"`
	Sentiment *float64       `json:"sentiment,omitempty"`
	Posts     []EvidenceItem `json:"posts,omitempty"`

	// Hybrid pipeline artifact.
	HybridPlot string `json:"hybrid_plot,omitempty"`

	// LastUpdated is refreshed by every artifact write from either pipeline.
	LastUpdated time.Time `json:"last_updated"`
}

// HasArtifact reports whether the artifact field for the given kind is
// non-empty. Freshness is evaluated separately against LastUpdated.
func (r *AnalysisRecord) HasArtifact(kind AnalysisKind) bool {
	switch kind {
	case AnalysisKindSimple:
		return r.ArimaPlot != ""
	case AnalysisKindHybrid:
		return r.HybridPlot != ""
	}
	return false
}

// Fresh reports whether LastUpdated falls inside the cache window ending now.
func (r *AnalysisRecord) Fresh(now time.Time, window time.Duration) bool {
	return now.Sub(r.LastUpdated) < window
}
