// -----------------------------------------------------------------------
// Sentiment aggregator - combines per-item scores into one ticker score
// -----------------------------------------------------------------------

package sentiment

import (
	"github.com/ternarybob/prestocked/internal/models"
)

// Classification thresholds: scores inside (-0.05, 0.05) are neutral.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// Classify maps a compound score to a sentiment label.
func Classify(score float64) models.SentimentLabel {
	switch {
	case score >= positiveThreshold:
		return models.SentimentPositive
	case score <= negativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Aggregator computes a ticker-level sentiment score as a weighted mean of
// per-item scores. An item contributes its title score and, when a body is
// present, its body score as two separate samples sharing the item's weight.
// Analyzed comments contribute one sample each at their own weight.
//
// Every weight gets a +1 floor so zero-upvote items still carry non-zero
// influence; popular items dominate but never silence the rest.
type Aggregator struct {
	scorer Scorer
}

// NewAggregator creates an aggregator over the given scorer.
func NewAggregator(scorer Scorer) *Aggregator {
	return &Aggregator{scorer: scorer}
}

// Annotate labels each item and its comments for presentation. An item's
// label comes from its title score alone; each comment is labeled from its
// body. Labels are presentation metadata; the aggregate score drives the
// pipelines.
func (a *Aggregator) Annotate(items []models.EvidenceItem) []models.EvidenceItem {
	out := make([]models.EvidenceItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].Sentiment = Classify(a.scorer.Score(out[i].Title))

		if len(out[i].Comments) == 0 {
			continue
		}
		comments := make([]models.EvidenceComment, len(out[i].Comments))
		copy(comments, out[i].Comments)
		for j := range comments {
			comments[j].Sentiment = Classify(a.scorer.Score(comments[j].Body))
		}
		out[i].Comments = comments
	}
	return out
}

// Aggregate returns the weighted mean score in [-1,1], or neutral 0 for an
// empty item list.
func (a *Aggregator) Aggregate(items []models.EvidenceItem) float64 {
	if len(items) == 0 {
		return 0
	}

	var weightedSum, totalWeight float64

	for _, item := range items {
		weight := float64(item.Score + 1)

		weightedSum += a.scorer.Score(item.Title) * weight
		totalWeight += weight

		if item.Body != "" {
			weightedSum += a.scorer.Score(item.Body) * weight
			totalWeight += weight
		}

		for _, comment := range item.Comments {
			commentWeight := float64(comment.Score + 1)
			weightedSum += a.scorer.Score(comment.Body) * commentWeight
			totalWeight += commentWeight
		}
	}

	// Unreachable while the +1 floor holds and items is non-empty; kept so a
	// zero denominator can never divide.
	if totalWeight <= 0 {
		return 0
	}

	return weightedSum / totalWeight
}
