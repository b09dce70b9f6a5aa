package models

import "time"

// Metadata is the report header block.
type Metadata struct {
	Ticker             string  `json:"ticker"`
	CompanyName        string  `json:"company_name"`
	CurrentPrice       float64 `json:"current_price"`
	PriceChange        float64 `json:"price_change"`
	PriceChangePercent float64 `json:"price_change_percent"`
	Currency           string  `json:"currency"`
	MarketCap          float64 `json:"market_cap,omitempty"`
	Sector             string  `json:"sector,omitempty"`
	Industry           string  `json:"industry,omitempty"`
	Timestamp          string  `json:"timestamp"`
}

// TechnicalSection is the technical analysis report section. When the
// engine could not run, Confidence is UNAVAILABLE, Status explains why,
// and Data is nil.
type TechnicalSection struct {
	Confidence Confidence       `json:"confidence"`
	Status     string           `json:"status,omitempty"`
	Data       *TechnicalResult `json:"data,omitempty"`
}

// NewsSection lists the report headlines. Headlines is never nil; an
// empty slice with Status "limited" means the provider was unavailable.
type NewsSection struct {
	Confidence Confidence    `json:"confidence"`
	Status     string        `json:"status"`
	Headlines  []NewsArticle `json:"headlines"`
	Count      int           `json:"count"`
	Note       string        `json:"note"`
}

// InsightsSection wraps the AI commentary block.
type InsightsSection struct {
	Confidence Confidence  `json:"confidence"`
	Status     string      `json:"status"`
	Note       string      `json:"note,omitempty"`
	Insights   *AIInsights `json:"insights,omitempty"`
}

// RiskSection wraps the risk metrics block.
type RiskSection struct {
	Confidence Confidence   `json:"confidence"`
	Status     string       `json:"status,omitempty"`
	Note       string       `json:"note,omitempty"`
	Data       *RiskMetrics `json:"data,omitempty"`
}

// OptionsSection wraps the options sentiment block.
type OptionsSection struct {
	Confidence Confidence        `json:"confidence"`
	Status     string            `json:"status,omitempty"`
	Note       string            `json:"note,omitempty"`
	Data       *OptionsSentiment `json:"data,omitempty"`
}

// InstitutionalSection wraps the institutional ownership block.
type InstitutionalSection struct {
	Confidence Confidence              `json:"confidence"`
	Status     string                  `json:"status,omitempty"`
	Note       string                  `json:"note,omitempty"`
	Data       *InstitutionalOwnership `json:"data,omitempty"`
}

// InsiderSection wraps the insider activity block.
type InsiderSection struct {
	Confidence Confidence       `json:"confidence"`
	Status     string           `json:"status,omitempty"`
	Note       string           `json:"note,omitempty"`
	Data       *InsiderActivity `json:"data,omitempty"`
}

// DisclaimerBlock is the static multi-section disclaimer attached to
// every report.
type DisclaimerBlock struct {
	Title    string              `json:"title"`
	Sections []DisclaimerSection `json:"sections"`
}

// DisclaimerSection is one heading/content pair of the disclaimer.
type DisclaimerSection struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// AppInfo identifies the generating application.
type AppInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Report is the complete research report. Every section key is always
// present: unavailable sections carry their fixed "unavailable" shape
// rather than being omitted. Reports are constructed once per request
// and never mutated afterwards.
type Report struct {
	Metadata      Metadata             `json:"metadata"`
	Technical     TechnicalSection     `json:"technical_analysis"`
	Sentiment     SentimentAnalysis    `json:"sentiment_analysis"`
	News          NewsSection          `json:"news_headlines"`
	AIInsights    InsightsSection      `json:"ai_insights"`
	Risk          RiskSection          `json:"risk_metrics"`
	Options       OptionsSection       `json:"options_sentiment"`
	Institutional InstitutionalSection `json:"institutional_ownership"`
	Insider       InsiderSection       `json:"insider_activity"`
	Summary       string               `json:"summary"`
	Disclaimer    DisclaimerBlock      `json:"disclaimer"`
	GeneratedAt   time.Time            `json:"generated_at"`
	AppInfo       AppInfo              `json:"app_info"`
}
