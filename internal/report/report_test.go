package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/researchiq/researchiq/pkg/models"
)

func fullInputs() Inputs {
	return Inputs{
		Ticker: "AAPL",
		Price: &models.PriceData{
			Ticker:             "AAPL",
			CompanyName:        "Apple Inc.",
			Currency:           "USD",
			CurrentPrice:       178.25,
			PriceChange:        2.15,
			PriceChangePercent: 1.22,
		},
		Technical: &models.TechnicalResult{
			RSI:           models.RSIResult{Value: 62.5, Signal: "bullish"},
			OverallSignal: "bullish momentum",
			Confidence:    models.ConfidenceHigh,
		},
		Sentiment: models.SentimentAnalysis{
			Ticker: "AAPL",
			Overall: models.OverallSentiment{
				Assessment:  "moderately positive",
				Score:       0.25,
				SignalsUsed: []string{"market", "retail"},
			},
		},
		News: []models.NewsArticle{{Title: "Apple announces new product", Source: "TechCrunch"}},
		Insights: models.AIInsights{
			Confidence: models.ConfidenceAI,
			Technical:  "RSI divergence suggests caution",
		},
		Risk: &models.RiskMetrics{
			Ticker: "AAPL", Volatility30d: 22.4, MaxDrawdownPct: 8.1, RiskLevel: "moderate",
		},
	}
}

func TestAssembleAllSectionsPresent(t *testing.T) {
	rpt := Assemble(fullInputs())

	data, err := json.Marshal(rpt)
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}

	for _, key := range []string{
		"metadata", "technical_analysis", "sentiment_analysis", "news_headlines",
		"ai_insights", "risk_metrics", "options_sentiment", "institutional_ownership",
		"insider_activity", "summary", "disclaimer", "generated_at", "app_info",
	} {
		if _, ok := raw[key]; !ok {
			t.Errorf("report missing section key %q", key)
		}
	}
}

func TestAssembleUnavailableShapes(t *testing.T) {
	rpt := Assemble(Inputs{Ticker: "XYZ", Sentiment: models.SentimentAnalysis{Ticker: "XYZ"}})

	if rpt.Technical.Confidence != models.ConfidenceUnavailable {
		t.Errorf("technical confidence = %q", rpt.Technical.Confidence)
	}
	if rpt.Technical.Data != nil {
		t.Error("unavailable technical section should carry no data")
	}
	if rpt.News.Status != "limited" {
		t.Errorf("news status = %q, want limited", rpt.News.Status)
	}
	if rpt.News.Headlines == nil {
		t.Error("headlines should be an empty slice, not nil")
	}
	if rpt.Options.Confidence != models.ConfidenceUnavailable {
		t.Errorf("options confidence = %q", rpt.Options.Confidence)
	}
	if rpt.Insider.Note == "" {
		t.Error("unavailable insider section should carry an explanatory note")
	}
	if rpt.Metadata.CompanyName != "XYZ" {
		t.Errorf("metadata falls back to ticker, got %q", rpt.Metadata.CompanyName)
	}
}

func TestInsightsSectionDegraded(t *testing.T) {
	s := insightsSection(models.AIInsights{Confidence: models.ConfidenceAI, Status: "unavailable"})
	if s.Status != "unavailable" || s.Insights != nil {
		t.Errorf("degraded insights = %+v", s)
	}
	if !strings.Contains(s.Note, "traditional analysis") {
		t.Errorf("note = %q", s.Note)
	}
}

func TestNewsSectionCapsAtTen(t *testing.T) {
	news := make([]models.NewsArticle, 15)
	for i := range news {
		news[i] = models.NewsArticle{Title: "headline"}
	}
	s := newsSection(news)
	if s.Count != 10 || len(s.Headlines) != 10 {
		t.Errorf("count = %d, headlines = %d; want 10", s.Count, len(s.Headlines))
	}
}

func TestSummarySentenceOrder(t *testing.T) {
	in := fullInputs()
	got := Summary(in.Ticker, in.Price, in.Technical, in.Risk, in.Sentiment.Overall)

	wantOrder := []string{
		"Apple Inc. (AAPL) is trading at $178.25, up 1.22%.",
		"Technical indicators show bullish momentum with RSI at 62.5.",
		"Volatility is moderate at 22.4% annualized",
		"Sentiment analysis suggests moderately positive signals",
		"for research purposes only.",
	}
	pos := -1
	for _, frag := range wantOrder {
		i := strings.Index(got, frag)
		if i < 0 {
			t.Fatalf("summary missing %q: %s", frag, got)
		}
		if i < pos {
			t.Fatalf("fragment %q out of order in: %s", frag, got)
		}
		pos = i
	}
}

func TestSummaryOmitsAbsentParts(t *testing.T) {
	got := Summary("XYZ", &models.PriceData{Ticker: "XYZ", CurrentPrice: 10, PriceChangePercent: -2}, nil, nil, models.OverallSentiment{Status: "insufficient data"})

	if strings.Contains(got, "Technical indicators") {
		t.Error("summary should omit technical sentence")
	}
	if strings.Contains(got, "Sentiment analysis") {
		t.Error("summary should omit sentiment sentence when insufficient")
	}
	if !strings.Contains(got, "down 2.00%") {
		t.Errorf("price sentence wrong: %s", got)
	}
	if !strings.HasSuffix(got, "for research purposes only.") {
		t.Errorf("caveat must close the summary: %s", got)
	}
}

func TestDisclaimerHasFiveSections(t *testing.T) {
	d := Disclaimer()
	if d.Title != "Important Disclaimer" {
		t.Errorf("title = %q", d.Title)
	}
	if len(d.Sections) != 5 {
		t.Fatalf("sections = %d, want 5", len(d.Sections))
	}
	for _, s := range d.Sections {
		if s.Heading == "" || s.Content == "" {
			t.Errorf("empty disclaimer section: %+v", s)
		}
	}
}
