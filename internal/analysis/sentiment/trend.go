package sentiment

// TrendLabel names the direction of a conversation's average sentiment.
type TrendLabel string

const (
	HighlyPositiveTrend TrendLabel = "Highly Positive Trend"
	PositiveTrend       TrendLabel = "Positive Trend"
	NeutralTrend        TrendLabel = "Neutral Trend"
	NegativeTrend       TrendLabel = "Negative Trend"
	HighlyNegativeTrend TrendLabel = "Highly Negative Trend"
)

// Trend pairs a label with its chart emoji.
type Trend struct {
	Label TrendLabel `json:"label"`
	Emoji string     `json:"emoji"`
}

// String renders the trend the way the sidebar shows it.
func (t Trend) String() string {
	return t.Emoji + " " + string(t.Label)
}

var trendByCategory = map[Category]Trend{
	VeryPositive: {Label: HighlyPositiveTrend, Emoji: "📈"},
	Positive:     {Label: PositiveTrend, Emoji: "↗️"},
	Neutral:      {Label: NeutralTrend, Emoji: "➡️"},
	Negative:     {Label: NegativeTrend, Emoji: "↘️"},
	VeryNegative: {Label: HighlyNegativeTrend, Emoji: "📉"},
}

// TrendFor buckets an average compound score with the same thresholds as
// single-turn classification.
func TrendFor(average float64) Trend {
	return trendByCategory[Bucket(average)]
}

// Distribution counts turns by coarse polarity.
type Distribution struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Summary aggregates the sentiment of every assistant turn in a session.
type Summary struct {
	Enabled      bool         `json:"enabled"`
	Count        int          `json:"count"`
	Average      float64      `json:"average"`
	AverageColor Color        `json:"averageColor,omitempty"`
	Trend        *Trend       `json:"trend,omitempty"`
	Distribution Distribution `json:"distribution"`
}

// Summarize computes the running average, trend and distribution. An empty
// input yields an enabled summary with no trend.
func Summarize(results []Result) Summary {
	summary := Summary{Enabled: true, Count: len(results)}
	if len(results) == 0 {
		return summary
	}

	var total float64
	for _, r := range results {
		compound := r.Compound()
		total += compound
		switch {
		case compound >= weakThreshold:
			summary.Distribution.Positive++
		case compound <= -weakThreshold:
			summary.Distribution.Negative++
		}
	}
	summary.Distribution.Neutral = len(results) - summary.Distribution.Positive - summary.Distribution.Negative

	summary.Average = total / float64(len(results))
	summary.AverageColor = Bucket(summary.Average).Color()
	trend := TrendFor(summary.Average)
	summary.Trend = &trend
	return summary
}
