package models

// NewsSentiment is the structured news-commentary insight parsed from the
// text generator's JSON response.
type NewsSentiment struct {
	Sentiment    string   `json:"sentiment"` // "Positive", "Neutral", "Negative"
	KeyThemes    []string `json:"key_themes"`
	NotableEvent string   `json:"notable_event,omitempty"`
}

// AIInsights collects all generated commentary for a report. Every field
// is optional; a nil/empty field means that insight kind produced nothing,
// which is a valid non-error state.
type AIInsights struct {
	Confidence        Confidence     `json:"confidence"`
	Status            string         `json:"status,omitempty"` // "unavailable" when generation failed wholesale
	Technical         string         `json:"technical_insight,omitempty"`
	PriceMomentum     string         `json:"price_momentum_insight,omitempty"`
	SupportResistance string         `json:"support_resistance_insight,omitempty"`
	VolumeAnomaly     string         `json:"volume_anomaly_insight,omitempty"`
	RiskAssessment    string         `json:"risk_assessment_insight,omitempty"`
	NewsSentiment     *NewsSentiment `json:"news_sentiment,omitempty"`
	CrossSignal       []string       `json:"cross_signal_analysis,omitempty"`
	Disclaimer        string         `json:"disclaimer,omitempty"`
}

// Unavailable reports whether insight generation failed as a whole.
func (a *AIInsights) Unavailable() bool {
	return a == nil || a.Status == "unavailable"
}

// Empty reports whether no insight kind produced anything.
func (a *AIInsights) Empty() bool {
	if a == nil {
		return true
	}
	return a.Technical == "" && a.PriceMomentum == "" && a.SupportResistance == "" &&
		a.VolumeAnomaly == "" && a.RiskAssessment == "" && a.NewsSentiment == nil &&
		len(a.CrossSignal) == 0
}
