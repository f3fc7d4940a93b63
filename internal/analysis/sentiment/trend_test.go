package sentiment

import "testing"

func TestTrendUsesSameBoundaries(t *testing.T) {
	cases := map[float64]TrendLabel{
		0.5:   HighlyPositiveTrend,
		0.05:  PositiveTrend,
		0:     NeutralTrend,
		-0.05: NegativeTrend,
		-0.5:  HighlyNegativeTrend,
	}
	for avg, want := range cases {
		if got := TrendFor(avg).Label; got != want {
			t.Fatalf("TrendFor(%v) = %s, want %s", avg, got, want)
		}
	}
}

func TestSummarizeAverageOnBoundary(t *testing.T) {
	results := []Result{
		Classify(Scores{Compound: 0.6}),
		Classify(Scores{Compound: 0.4}),
	}

	summary := Summarize(results)
	if summary.Average != 0.5 {
		t.Fatalf("expected average 0.5, got %v", summary.Average)
	}
	if summary.Trend == nil || summary.Trend.Label != HighlyPositiveTrend {
		t.Fatalf("expected highly positive trend, got %+v", summary.Trend)
	}
	if summary.Trend.String() != "📈 Highly Positive Trend" {
		t.Fatalf("unexpected trend text %q", summary.Trend.String())
	}
	if summary.AverageColor != Green {
		t.Fatalf("expected green average, got %s", summary.AverageColor)
	}
}

func TestSummarizeDistribution(t *testing.T) {
	results := []Result{
		Classify(Scores{Compound: 0.8}),
		Classify(Scores{Compound: 0.05}),
		Classify(Scores{Compound: 0.01}),
		Classify(Scores{Compound: -0.05}),
		Classify(Scores{Compound: -0.9}),
	}

	summary := Summarize(results)
	want := Distribution{Positive: 2, Neutral: 1, Negative: 2}
	if summary.Distribution != want {
		t.Fatalf("distribution = %+v, want %+v", summary.Distribution, want)
	}
	if summary.Count != 5 {
		t.Fatalf("count = %d, want 5", summary.Count)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	if !summary.Enabled || summary.Count != 0 || summary.Trend != nil {
		t.Fatalf("unexpected empty summary: %+v", summary)
	}
}
