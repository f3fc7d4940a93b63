// Package sentiment scores text polarity and maps it onto the five display
// buckets used by the chat front-end.
package sentiment

import (
	"math"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

// Scores holds the proportions of negative, neutral and positive valence.
type Scores struct {
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Positive float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

var (
	analyzerOnce sync.Once
	analyzer     *govader.SentimentIntensityAnalyzer
)

// vader loads the VADER lexicon once; the analyzer is read-only afterwards.
func vader() *govader.SentimentIntensityAnalyzer {
	analyzerOnce.Do(func() {
		analyzer = govader.NewSentimentIntensityAnalyzer()
	})
	return analyzer
}

// PolarityScores runs VADER over text. Compound is in [-1, 1].
func PolarityScores(text string) Scores {
	if strings.TrimSpace(text) == "" {
		return Scores{}
	}

	s := vader().PolarityScores(text)
	return Scores{
		Negative: round(s.Negative, 3),
		Neutral:  round(s.Neutral, 3),
		Positive: round(s.Positive, 3),
		Compound: round(s.Compound, 4),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
