// Package sentiment implements the sentiment aggregator: it normalizes up
// to three independently-sourced directional signals (market-wide fear/greed
// index, search-interest trend, social mention volume) into one weighted
// assessment. Pure and total over its optional inputs; every combination
// of present/absent sources is handled without error.
package sentiment

import (
	"math"
	"sort"
	"strings"

	"github.com/researchiq/researchiq/pkg/models"
)

// Source weights before renormalization. The aggregate divides by the sum
// of weights actually present, not by 1.0.
const (
	WeightMarket = 0.5
	WeightRetail = 0.3
	WeightSocial = 0.2
)

// Source names reported in signals_used.
const (
	SourceMarket = "market"
	SourceRetail = "retail"
	SourceSocial = "social"
)

// NormalizeFearGreed maps an index value in [0,100] onto [-1,1].
func NormalizeFearGreed(fg *models.FearGreed) (models.SentimentSignal, bool) {
	if fg == nil {
		return models.SentimentSignal{}, false
	}
	return models.SentimentSignal{
		Source: SourceMarket,
		Score:  (float64(fg.Value) - 50) / 50,
		Weight: WeightMarket,
	}, true
}

// NormalizeTrend maps a search-trend direction onto a fixed directional
// score. A trend with zero current interest carries no signal.
func NormalizeTrend(trend *models.SearchTrend) (models.SentimentSignal, bool) {
	if trend == nil || trend.CurrentInterest <= 0 {
		return models.SentimentSignal{}, false
	}
	score := 0.0
	switch trend.TrendDirection {
	case "rising":
		score = 0.5
	case "falling":
		score = -0.5
	}
	return models.SentimentSignal{
		Source: SourceRetail,
		Score:  score,
		Weight: WeightRetail,
	}, true
}

// NormalizeSocial maps a mention-volume baseline label onto a directional
// score. Zero mentions carry no signal.
func NormalizeSocial(social *models.SocialVolume) (models.SentimentSignal, bool) {
	if social == nil || social.TotalMentions <= 0 {
		return models.SentimentSignal{}, false
	}
	label := strings.ToLower(social.VsBaseline)
	score := 0.0
	switch {
	case strings.Contains(label, "high"):
		score = 0.5
	case strings.Contains(label, "low"):
		score = -0.3
	}
	return models.SentimentSignal{
		Source: SourceSocial,
		Score:  score,
		Weight: WeightSocial,
	}, true
}

// Overall combines the available signals into a weighted aggregate. With
// zero signals present the result is the terminal "insufficient data"
// state, which is a valid outcome rather than an error.
func Overall(fg *models.FearGreed, trend *models.SearchTrend, social *models.SocialVolume) models.OverallSentiment {
	var signals []models.SentimentSignal
	if s, ok := NormalizeFearGreed(fg); ok {
		signals = append(signals, s)
	}
	if s, ok := NormalizeTrend(trend); ok {
		signals = append(signals, s)
	}
	if s, ok := NormalizeSocial(social); ok {
		signals = append(signals, s)
	}

	if len(signals) == 0 {
		return models.OverallSentiment{
			Status: "insufficient data",
			Note:   "Not enough sentiment data available for overall assessment",
		}
	}

	weightedSum, totalWeight := 0.0, 0.0
	used := make([]string, 0, len(signals))
	for _, s := range signals {
		weightedSum += s.Score * s.Weight
		totalWeight += s.Weight
		used = append(used, s.Source)
	}
	sort.Strings(used)

	score := weightedSum / totalWeight

	assessment, description := classify(score)

	return models.OverallSentiment{
		Assessment:  assessment,
		Score:       math.Round(score*100) / 100,
		Description: description,
		SignalsUsed: used,
		Note:        "Directional signal only - combines market, retail, and social sentiment",
	}
}

func classify(score float64) (assessment, description string) {
	switch {
	case score >= 0.4:
		return "positive", "Multiple signals suggest positive sentiment"
	case score >= 0.1:
		return "moderately positive", "Signals lean slightly positive"
	case score <= -0.4:
		return "negative", "Multiple signals suggest negative sentiment"
	case score <= -0.1:
		return "moderately negative", "Signals lean slightly negative"
	default:
		return "neutral", "Mixed signals, no clear sentiment direction"
	}
}

// Aggregate builds the full per-source sentiment analysis for a ticker,
// formatting each source section and attaching the overall aggregate.
// Absent sources produce their fixed "unavailable" section shape.
func Aggregate(ticker string, fg *models.FearGreed, trend *models.SearchTrend, social *models.SocialVolume) models.SentimentAnalysis {
	return models.SentimentAnalysis{
		Ticker:          ticker,
		MarketSentiment: marketSection(fg),
		RetailInterest:  retailSection(trend),
		SocialSignals:   socialSection(social),
		Overall:         Overall(fg, trend, social),
	}
}

func marketSection(fg *models.FearGreed) models.SentimentSection {
	if fg == nil {
		return models.SentimentSection{
			Status:     "unavailable",
			Confidence: models.ConfidenceMedium,
			Note:       "Fear & Greed Index data not available",
		}
	}
	return models.SentimentSection{
		Confidence:     models.ConfidenceMedium,
		Interpretation: fg.Interpretation,
		Note:           "Market-wide sentiment indicator",
		Source:         "alternative.me Fear & Greed Index",
		Details: map[string]any{
			"value":          fg.Value,
			"classification": fg.Classification,
		},
	}
}

func retailSection(trend *models.SearchTrend) models.SentimentSection {
	if trend == nil || trend.CurrentInterest <= 0 {
		return models.SentimentSection{
			Status:     "unavailable",
			Confidence: models.ConfidenceMedium,
			Note:       "Search trend data not available",
		}
	}

	level, interpretation := interestLevel(trend.CurrentInterest)

	return models.SentimentSection{
		Confidence:     models.ConfidenceMedium,
		Interpretation: interpretation,
		Note:           "Relative search interest (0-100 scale)",
		Source:         "Search trends",
		Details: map[string]any{
			"current_interest": trend.CurrentInterest,
			"interest_level":   level,
			"trend_direction":  trend.TrendDirection,
			"change_7d_pct":    trend.ChangePct7d,
		},
	}
}

func interestLevel(current int) (level, interpretation string) {
	switch {
	case current >= 75:
		return "very high", "Extremely elevated retail interest - high attention"
	case current >= 50:
		return "high", "Elevated retail interest - significant attention"
	case current >= 25:
		return "moderate", "Moderate retail interest - average attention"
	default:
		return "low", "Low retail interest - below average attention"
	}
}

func socialSection(social *models.SocialVolume) models.SentimentSection {
	if social == nil {
		return models.SentimentSection{
			Status:     "unavailable",
			Confidence: models.ConfidenceLow,
			Note:       "Social mention data not available",
		}
	}

	label := strings.ToLower(social.VsBaseline)
	var interpretation string
	switch {
	case strings.Contains(label, "high"):
		interpretation = "High social media attention - significant discussion volume"
	case strings.Contains(label, "elevated"):
		interpretation = "Elevated social media attention - above average discussion"
	case strings.Contains(label, "low"):
		interpretation = "Low social media attention - minimal discussion"
	default:
		interpretation = "Average social media attention - normal discussion levels"
	}

	return models.SentimentSection{
		Confidence:     models.ConfidenceLow,
		Interpretation: interpretation,
		Note:           "Volume signal only - NOT sentiment quality analysis",
		Source:         "Reddit",
		Details: map[string]any{
			"total_mentions":      social.TotalMentions,
			"vs_baseline":         social.VsBaseline,
			"subreddit_breakdown": social.Breakdown,
		},
	}
}
