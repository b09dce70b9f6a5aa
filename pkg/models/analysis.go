package models

// Confidence is a qualitative data-reliability label attached to report
// sections. It describes source quality, not a statistical quantity.
type Confidence string

const (
	ConfidenceHigh        Confidence = "HIGH"
	ConfidenceMedium      Confidence = "MEDIUM"
	ConfidenceLow         Confidence = "LOW"
	ConfidenceContext     Confidence = "CONTEXT ONLY"
	ConfidenceAI          Confidence = "AI-GENERATED"
	ConfidenceUnavailable Confidence = "UNAVAILABLE"
)

// RSIResult holds the RSI value with its qualitative reading.
type RSIResult struct {
	Value          float64 `json:"value"`
	Signal         string  `json:"signal"`
	Interpretation string  `json:"interpretation"`
}

// MAResult holds simple moving averages keyed by period. A period absent
// from Values means the history was shorter than the period; Position then
// carries "N/A" for that period.
type MAResult struct {
	Values       map[int]float64 `json:"values"`
	Position     map[int]string  `json:"position"`
	CurrentPrice float64         `json:"current_price"`
}

// VolumeResult describes the latest volume against its trailing average.
type VolumeResult struct {
	CurrentVolume int64   `json:"current_volume"`
	AvgVolume     int64   `json:"avg_volume"`
	Status        string  `json:"status"`
	VsAveragePct  float64 `json:"vs_average_pct"`
}

// TechnicalResult is the complete indicator-engine output. It is never
// partially populated: either all of RSI/MA/Volume are present or the
// whole result is nil.
type TechnicalResult struct {
	RSI            RSIResult    `json:"rsi"`
	MovingAverages MAResult     `json:"moving_averages"`
	Volume         VolumeResult `json:"volume"`
	OverallSignal  string       `json:"overall_signal"`
	Confidence     Confidence   `json:"confidence"`
}

// SentimentSignal is one normalized directional signal from a single
// sentiment source. Score is in [-1, 1]; Weight is the source's share of
// the aggregate before renormalization.
type SentimentSignal struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// OverallSentiment is the weighted combination of the available signals.
// Score is only meaningful when SignalsUsed is non-empty; an empty set
// yields Status "insufficient data" and no score.
type OverallSentiment struct {
	Assessment  string   `json:"assessment,omitempty"`
	Score       float64  `json:"score,omitempty"`
	Description string   `json:"description,omitempty"`
	SignalsUsed []string `json:"signals_used,omitempty"`
	Status      string   `json:"status,omitempty"`
	Note        string   `json:"note,omitempty"`
}

// Available reports whether the aggregate carries a usable score.
func (o *OverallSentiment) Available() bool {
	return o != nil && len(o.SignalsUsed) > 0
}

// SentimentAnalysis holds the per-source sections plus the overall
// aggregate, in the shape the report consumes.
type SentimentAnalysis struct {
	Ticker          string           `json:"ticker"`
	MarketSentiment SentimentSection `json:"market_sentiment"`
	RetailInterest  SentimentSection `json:"retail_interest"`
	SocialSignals   SentimentSection `json:"social_signals"`
	Overall         OverallSentiment `json:"overall_sentiment"`
}

// SentimentSection is one formatted per-source block. When the source was
// unavailable Status is "unavailable" and the detail fields are zero.
type SentimentSection struct {
	Status         string         `json:"status,omitempty"`
	Confidence     Confidence     `json:"confidence"`
	Note           string         `json:"note,omitempty"`
	Interpretation string         `json:"interpretation,omitempty"`
	Source         string         `json:"source,omitempty"`
	Details        map[string]any `json:"details,omitempty"`
}
