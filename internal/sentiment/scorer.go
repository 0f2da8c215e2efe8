// -----------------------------------------------------------------------
// Lexicon scorer - compound sentiment in [-1,1] for a piece of text
// -----------------------------------------------------------------------

package sentiment

import (
	"math"
	"strings"
)

// Scorer produces a compound sentiment score in [-1,1] for a text.
// Empty text scores 0.
type Scorer interface {
	Score(text string) float64
}

// LexiconScorer is a valence-lexicon scorer: token valences are summed with
// negation flipping and booster scaling, then normalized into [-1,1].
type LexiconScorer struct {
	lexicon  map[string]float64
	negators map[string]bool
	boosters map[string]float64
}

// normalization constant; keeps single strong words away from the rails
const normAlpha = 15.0

// negation applies to the next few tokens only
const negationScope = 3

// NewLexiconScorer creates a scorer with the built-in finance-oriented
// lexicon.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{
		lexicon:  defaultLexicon,
		negators: defaultNegators,
		boosters: defaultBoosters,
	}
}

// Score returns the compound sentiment of text.
func (s *LexiconScorer) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	tokens := tokenize(text)
	sum := 0.0

	for i, tok := range tokens {
		valence, ok := s.lexicon[tok]
		if !ok {
			continue
		}

		boost := 1.0
		negated := false
		// Look back a short window for negators and boosters.
		for j := i - 1; j >= 0 && j >= i-negationScope; j-- {
			prev := tokens[j]
			if s.negators[prev] {
				negated = true
			}
			if b, ok := s.boosters[prev]; ok {
				boost += b
			}
		}

		v := valence * boost
		if negated {
			v = -v * 0.74
		}
		sum += v
	}

	if sum == 0 {
		return 0
	}

	compound := sum / math.Sqrt(sum*sum+normAlpha)
	if compound > 1 {
		compound = 1
	} else if compound < -1 {
		compound = -1
	}
	return compound
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()[]{}$%")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

var defaultNegators = map[string]bool{
	"not": true, "no": true, "never": true, "neither": true, "nor": true,
	"isn't": true, "wasn't": true, "aren't": true, "don't": true,
	"doesn't": true, "didn't": true, "won't": true, "can't": true,
	"cannot": true, "without": true, "isnt": true, "wasnt": true,
	"dont": true, "doesnt": true, "didnt": true, "wont": true, "cant": true,
}

var defaultBoosters = map[string]float64{
	"very": 0.293, "extremely": 0.4, "really": 0.267, "hugely": 0.4,
	"massively": 0.4, "strongly": 0.293, "absolutely": 0.35,
	"incredibly": 0.35, "so": 0.2, "super": 0.3,
	"slightly": -0.293, "somewhat": -0.2, "barely": -0.35, "hardly": -0.35,
}

// defaultLexicon holds token valences on roughly a [-4,4] raw scale, skewed
// toward the vocabulary of market discussion.
var defaultLexicon = map[string]float64{
	// positive
	"good": 1.9, "great": 3.1, "excellent": 3.2, "amazing": 2.8,
	"awesome": 3.1, "strong": 2.0, "bull": 1.8, "bullish": 2.4,
	"buy": 1.5, "growth": 1.8, "growing": 1.6, "gain": 1.9, "gains": 1.9,
	"profit": 2.2, "profits": 2.2, "profitable": 2.4, "beat": 1.6,
	"beats": 1.6, "up": 1.1, "upside": 1.8, "rally": 2.0, "soar": 2.5,
	"soars": 2.5, "soaring": 2.5, "surge": 2.2, "surges": 2.2, "win": 2.4,
	"winner": 2.6, "winning": 2.4, "success": 2.7, "successful": 2.7,
	"outperform": 2.2, "outperforms": 2.2, "record": 1.4, "boom": 2.1,
	"moon": 2.0, "rocket": 1.9, "solid": 1.7, "best": 3.2, "love": 3.2,
	"like": 1.5, "undervalued": 1.6, "opportunity": 1.7, "promising": 2.0,
	"optimistic": 2.1, "confident": 2.2, "upgrade": 1.8, "upgraded": 1.8,
	"dividend": 0.8, "breakout": 1.6, "recovery": 1.5, "rebound": 1.5,

	// negative
	"bad": -2.5, "terrible": -3.1, "awful": -3.0, "horrible": -3.0,
	"weak": -1.8, "bear": -1.7, "bearish": -2.4, "sell": -1.4,
	"loss": -2.1, "losses": -2.1, "lose": -2.0, "losing": -2.0,
	"down": -1.1, "downside": -1.8, "crash": -3.0, "crashes": -3.0,
	"crashing": -3.0, "drop": -1.7, "drops": -1.7, "dropping": -1.7,
	"plunge": -2.5, "plunges": -2.5, "tank": -2.3, "tanks": -2.3,
	"tanking": -2.3, "dump": -1.9, "dumping": -1.9, "miss": -1.5,
	"misses": -1.5, "missed": -1.5, "fail": -2.4, "fails": -2.4,
	"failure": -2.6, "bankrupt": -3.4, "bankruptcy": -3.4, "fraud": -3.2,
	"scam": -3.0, "risk": -1.1, "risky": -1.4, "overvalued": -1.6,
	"bubble": -1.5, "short": -0.9, "worst": -3.1, "hate": -2.7,
	"fear": -1.9, "panic": -2.4, "worried": -1.8, "worry": -1.8,
	"downgrade": -1.8, "downgraded": -1.8, "lawsuit": -2.0, "debt": -1.2,
	"layoffs": -2.1, "recession": -2.3, "decline": -1.6, "declining": -1.6,
	"selloff": -2.0, "dilution": -1.4, "warning": -1.6,
}
