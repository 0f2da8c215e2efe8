package sentiment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/prestocked/internal/models"
)

// stubScorer maps exact texts to fixed scores.
type stubScorer map[string]float64

func (s stubScorer) Score(text string) float64 {
	return s[text]
}

func TestAggregateEmptyIsNeutral(t *testing.T) {
	a := NewAggregator(stubScorer{})
	assert.Equal(t, 0.0, a.Aggregate(nil))
	assert.Equal(t, 0.0, a.Aggregate([]models.EvidenceItem{}))
}

func TestAggregateWeightFloor(t *testing.T) {
	a := NewAggregator(stubScorer{"flat title": 0.6})

	// Zero upvotes still contribute: weight floor of +1 applies.
	got := a.Aggregate([]models.EvidenceItem{
		{Title: "flat title", Score: 0},
	})
	assert.InDelta(t, 0.6, got, 1e-9)
}

func TestAggregateWeightedMean(t *testing.T) {
	a := NewAggregator(stubScorer{
		"doom": -1.0,
		"gold": 1.0,
	})

	// (-1*1 + 1*10) / 11
	got := a.Aggregate([]models.EvidenceItem{
		{Title: "doom", Score: 0},
		{Title: "gold", Score: 9},
	})
	assert.InDelta(t, 9.0/11.0, got, 1e-9)
}

func TestAggregateTitleAndBodyAreSeparateSamples(t *testing.T) {
	a := NewAggregator(stubScorer{
		"the title": 1.0,
		"the body":  0.0,
	})

	// Title and body share the item weight but are not averaged together
	// before weighting: (1*3 + 0*3) / 6, not (0.5*3) / 3 obtained from a
	// pre-averaged sample. Both give 0.5 here, so distinguish with uneven
	// company.
	items := []models.EvidenceItem{
		{Title: "the title", Body: "the body", Score: 2},
		{Title: "the title", Score: 2},
	}
	// samples: (1,3), (0,3), (1,3) -> 6/9
	got := a.Aggregate(items)
	assert.InDelta(t, 2.0/3.0, got, 1e-9)
}

func TestAggregateIncludesComments(t *testing.T) {
	a := NewAggregator(stubScorer{
		"meh":       0.0,
		"love this": 1.0,
	})

	items := []models.EvidenceItem{
		{
			Title: "meh",
			Score: 0,
			Comments: []models.EvidenceComment{
				{Body: "love this", Score: 4},
			},
		},
	}
	// samples: (0,1), (1,5) -> 5/6
	got := a.Aggregate(items)
	assert.InDelta(t, 5.0/6.0, got, 1e-9)
}

func TestAnnotateLabelsItemsAndComments(t *testing.T) {
	a := NewAggregator(stubScorer{
		"meh":       0.0,
		"love this": 1.0,
		"selling":   -1.0,
	})

	items := []models.EvidenceItem{
		{
			Title: "meh",
			Score: 0,
			Comments: []models.EvidenceComment{
				{Body: "love this", Author: "bull", Score: 4},
				{Body: "selling", Author: "bear", Score: 1},
			},
		},
	}

	out := a.Annotate(items)
	require.Len(t, out, 1)
	assert.Equal(t, models.SentimentNeutral, out[0].Sentiment)

	require.Len(t, out[0].Comments, 2)
	assert.Equal(t, models.SentimentPositive, out[0].Comments[0].Sentiment)
	assert.Equal(t, models.SentimentNegative, out[0].Comments[1].Sentiment)
	assert.Equal(t, "bull", out[0].Comments[0].Author)

	// The input slice and its comments stay unlabeled.
	assert.Empty(t, items[0].Sentiment)
	assert.Empty(t, items[0].Comments[0].Sentiment)
}

func TestAnnotateLabelsItemByTitleOnly(t *testing.T) {
	a := NewAggregator(stubScorer{
		"bad quarter": -1.0,
		"bad quarter but recovery is certain": 1.0,
	})

	// A bullish body must not flip the item label; only the title counts.
	out := a.Annotate([]models.EvidenceItem{
		{Title: "bad quarter", Body: "but recovery is certain"},
	})
	require.Len(t, out, 1)
	assert.Equal(t, models.SentimentNegative, out[0].Sentiment)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  models.SentimentLabel
	}{
		{0.6, models.SentimentPositive},
		{0.05, models.SentimentPositive},
		{0.049, models.SentimentNeutral},
		{0.0, models.SentimentNeutral},
		{-0.049, models.SentimentNeutral},
		{-0.05, models.SentimentNegative},
		{-0.9, models.SentimentNegative},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %v", tt.score)
	}
}

func TestLexiconScorer(t *testing.T) {
	s := NewLexiconScorer()

	assert.Equal(t, 0.0, s.Score(""))
	assert.Equal(t, 0.0, s.Score("   "))

	pos := s.Score("strong earnings beat, bullish growth")
	assert.Greater(t, pos, 0.05)

	neg := s.Score("terrible quarter, stock will crash")
	assert.Less(t, neg, -0.05)

	// Negation flips polarity.
	negated := s.Score("not a good buy")
	assert.Less(t, negated, 0.0)

	// Boosters amplify.
	plain := s.Score("good results")
	boosted := s.Score("extremely good results")
	assert.Greater(t, boosted, plain)

	// Scores stay in [-1,1].
	extreme := s.Score("crash crash crash bankrupt fraud scam worst terrible awful")
	assert.GreaterOrEqual(t, extreme, -1.0)
	assert.True(t, math.Abs(extreme) <= 1.0)
}
