package sentiment

import (
	"math"
	"testing"

	"github.com/researchiq/researchiq/pkg/models"
)

func TestOverallAllSourcesAbsent(t *testing.T) {
	got := Overall(nil, nil, nil)
	if got.Status != "insufficient data" {
		t.Errorf("status = %q, want insufficient data", got.Status)
	}
	if len(got.SignalsUsed) != 0 {
		t.Errorf("signals_used = %v, want empty", got.SignalsUsed)
	}
	if got.Available() {
		t.Error("Available() = true with zero signals")
	}
}

func TestOverallMarketOnlyExtreme(t *testing.T) {
	fg := &models.FearGreed{Value: 100, Classification: "Extreme Greed"}
	got := Overall(fg, nil, nil)

	// Single source renormalizes to full weight: (1.0*0.5)/0.5 = 1.0.
	if got.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", got.Score)
	}
	if got.Assessment != "positive" {
		t.Errorf("assessment = %q, want positive", got.Assessment)
	}
	if len(got.SignalsUsed) != 1 || got.SignalsUsed[0] != SourceMarket {
		t.Errorf("signals_used = %v, want [market]", got.SignalsUsed)
	}
}

func TestOverallAllThreeSources(t *testing.T) {
	fg := &models.FearGreed{Value: 75}
	trend := &models.SearchTrend{CurrentInterest: 60, TrendDirection: "rising"}
	social := &models.SocialVolume{TotalMentions: 450, VsBaseline: "high (3x+ average)"}

	got := Overall(fg, trend, social)

	// (0.5*0.5 + 0.5*0.3 + 0.5*0.2) / 1.0 = 0.5
	if math.Abs(got.Score-0.5) > 1e-9 {
		t.Errorf("score = %v, want 0.5", got.Score)
	}
	if got.Assessment != "positive" {
		t.Errorf("assessment = %q, want positive", got.Assessment)
	}
	if len(got.SignalsUsed) != 3 {
		t.Errorf("signals_used = %v, want all three", got.SignalsUsed)
	}
}

func TestOverallNegativeLean(t *testing.T) {
	fg := &models.FearGreed{Value: 20} // score -0.6
	social := &models.SocialVolume{TotalMentions: 5, VsBaseline: "low (below average)"}

	got := Overall(fg, nil, social)

	// (-0.6*0.5 + -0.3*0.2) / 0.7 = -0.5142...
	if got.Assessment != "negative" {
		t.Errorf("assessment = %q (score %v), want negative", got.Assessment, got.Score)
	}
}

func TestTrendWithZeroInterestExcluded(t *testing.T) {
	trend := &models.SearchTrend{CurrentInterest: 0, TrendDirection: "rising"}
	got := Overall(nil, trend, nil)
	if got.Status != "insufficient data" {
		t.Errorf("zero-interest trend contributed a signal: %+v", got)
	}
}

func TestSocialWithZeroMentionsExcluded(t *testing.T) {
	social := &models.SocialVolume{TotalMentions: 0, VsBaseline: "low (below average)"}
	got := Overall(nil, nil, social)
	if got.Status != "insufficient data" {
		t.Errorf("zero-mention social contributed a signal: %+v", got)
	}
}

func TestClassifyBands(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.5, "positive"},
		{0.4, "positive"},
		{0.2, "moderately positive"},
		{0.1, "moderately positive"},
		{0.05, "neutral"},
		{-0.05, "neutral"},
		{-0.1, "moderately negative"},
		{-0.3, "moderately negative"},
		{-0.4, "negative"},
		{-0.8, "negative"},
	}
	for _, tt := range tests {
		if got, _ := classify(tt.score); got != tt.want {
			t.Errorf("classify(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestNormalizeTrendDirections(t *testing.T) {
	tests := []struct {
		direction string
		want      float64
	}{
		{"rising", 0.5},
		{"falling", -0.5},
		{"stable", 0},
		{"no data", 0},
	}
	for _, tt := range tests {
		sig, ok := NormalizeTrend(&models.SearchTrend{CurrentInterest: 40, TrendDirection: tt.direction})
		if !ok {
			t.Fatalf("NormalizeTrend(%q) excluded", tt.direction)
		}
		if sig.Score != tt.want {
			t.Errorf("NormalizeTrend(%q).Score = %v, want %v", tt.direction, sig.Score, tt.want)
		}
	}
}

func TestAggregateSectionsAlwaysPresent(t *testing.T) {
	got := Aggregate("AAPL", nil, nil, nil)

	for name, section := range map[string]models.SentimentSection{
		"market": got.MarketSentiment,
		"retail": got.RetailInterest,
		"social": got.SocialSignals,
	} {
		if section.Status != "unavailable" {
			t.Errorf("%s section status = %q, want unavailable", name, section.Status)
		}
		if section.Confidence == "" {
			t.Errorf("%s section missing confidence", name)
		}
	}
	if got.Overall.Status != "insufficient data" {
		t.Errorf("overall status = %q", got.Overall.Status)
	}
}

func TestAggregateAvailableSections(t *testing.T) {
	fg := &models.FearGreed{Value: 65, Classification: "Greed", Interpretation: "Greed - Investors becoming confident, bullish sentiment"}
	trend := &models.SearchTrend{CurrentInterest: 80, TrendDirection: "rising", ChangePct7d: 12}
	social := &models.SocialVolume{TotalMentions: 150, VsBaseline: "elevated (1.5x+ average)", Breakdown: map[string]int{"wallstreetbets": 100, "stocks": 50}}

	got := Aggregate("AAPL", fg, trend, social)

	if got.MarketSentiment.Details["value"] != 65 {
		t.Errorf("market value = %v, want 65", got.MarketSentiment.Details["value"])
	}
	if got.RetailInterest.Details["interest_level"] != "very high" {
		t.Errorf("interest_level = %v, want very high", got.RetailInterest.Details["interest_level"])
	}
	if got.SocialSignals.Interpretation == "" {
		t.Error("social interpretation empty")
	}
	if !got.Overall.Available() {
		t.Error("overall not available with all sources present")
	}
}
