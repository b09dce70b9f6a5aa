package models

import "time"

// NewsArticle is a single headline from a news provider.
type NewsArticle struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// SocialVolume is the mention-count payload from a social provider.
// VsBaseline is a qualitative label relative to a fixed baseline
// (e.g. "high (3x+ average)", "elevated (1.5x+ average)", "average",
// "low (below average)").
type SocialVolume struct {
	Ticker        string         `json:"ticker"`
	TotalMentions int            `json:"total_mentions"`
	Breakdown     map[string]int `json:"subreddit_breakdown"`
	VsBaseline    string         `json:"vs_baseline"`
}

// SearchTrend is the search-interest payload from a trends provider.
// CurrentInterest is on a relative 0-100 scale.
type SearchTrend struct {
	Query           string  `json:"query"`
	CurrentInterest int     `json:"current_interest"`
	TrendDirection  string  `json:"trend_direction"` // "rising", "falling", "stable"
	ChangePct7d     float64 `json:"change_pct_7d"`
}

// FearGreed is the market-wide sentiment index (0 = extreme fear,
// 100 = extreme greed).
type FearGreed struct {
	Value          int    `json:"value"`
	Classification string `json:"classification"`
	Interpretation string `json:"interpretation"`
}

// OptionsSentiment summarizes options-chain positioning as a crude
// sentiment proxy.
type OptionsSentiment struct {
	Ticker       string  `json:"ticker"`
	PutCallRatio float64 `json:"put_call_ratio"`
	CallVolume   int64   `json:"call_volume"`
	PutVolume    int64   `json:"put_volume"`
	Sentiment    string  `json:"sentiment"` // "bullish", "bearish", "neutral"
	Expiry       string  `json:"expiry,omitempty"`
}

// RiskMetrics holds volatility- and drawdown-based risk measures derived
// from the price history.
type RiskMetrics struct {
	Ticker         string  `json:"ticker"`
	Volatility30d  float64 `json:"volatility_30d"` // annualized, percent
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	RiskLevel      string  `json:"risk_level"` // "low", "moderate", "high", "very high"
}

// InstitutionalOwnership holds headline ownership percentages.
type InstitutionalOwnership struct {
	Ticker            string  `json:"ticker"`
	InstitutionalPct  float64 `json:"institutional_pct"`
	InsiderPct        float64 `json:"insider_pct"`
	InstitutionalTx   float64 `json:"institutional_transactions_pct,omitempty"`
	InsiderTx         float64 `json:"insider_transactions_pct,omitempty"`
	ShortFloatPct     float64 `json:"short_float_pct,omitempty"`
}

// InsiderFiling is a single insider ownership filing (Forms 3/4/5).
type InsiderFiling struct {
	Ticker      string    `json:"ticker"`
	Form        string    `json:"form"`
	Description string    `json:"description"`
	FiledAt     time.Time `json:"filed_at"`
}

// InsiderActivity summarizes recent insider filings.
type InsiderActivity struct {
	Ticker      string          `json:"ticker"`
	FilingCount int             `json:"filing_count"`
	Filings     []InsiderFiling `json:"filings"`
}
