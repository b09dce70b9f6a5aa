// Package report assembles the final research report from analysis and
// provider outputs. Assembly is pure formatting: every section key is
// always emitted, with a fixed "unavailable" shape standing in for any
// source that produced nothing.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/researchiq/researchiq/pkg/models"
)

// Application identity stamped into every report.
const (
	AppName    = "ResearchIQ"
	AppVersion = "1.0.0"
)

// Inputs carries everything the assembler needs. Nil pointers and empty
// slices mean the corresponding source was unavailable.
type Inputs struct {
	Ticker        string
	Price         *models.PriceData
	Technical     *models.TechnicalResult
	Sentiment     models.SentimentAnalysis
	News          []models.NewsArticle
	Insights      models.AIInsights
	Risk          *models.RiskMetrics
	Options       *models.OptionsSentiment
	Institutional *models.InstitutionalOwnership
	Insider       *models.InsiderActivity
}

// Assemble builds the complete report for a request.
func Assemble(in Inputs) *models.Report {
	return &models.Report{
		Metadata:      buildMetadata(in.Ticker, in.Price),
		Technical:     technicalSection(in.Technical),
		Sentiment:     in.Sentiment,
		News:          newsSection(in.News),
		AIInsights:    insightsSection(in.Insights),
		Risk:          riskSection(in.Risk),
		Options:       optionsSection(in.Options),
		Institutional: institutionalSection(in.Institutional),
		Insider:       insiderSection(in.Insider),
		Summary:       Summary(in.Ticker, in.Price, in.Technical, in.Risk, in.Sentiment.Overall),
		Disclaimer:    Disclaimer(),
		GeneratedAt:   time.Now().UTC(),
		AppInfo:       AppInfo(),
	}
}

// AppInfo returns the application identity block.
func AppInfo() models.AppInfo {
	return models.AppInfo{Name: AppName, Version: AppVersion}
}

func buildMetadata(ticker string, price *models.PriceData) models.Metadata {
	md := models.Metadata{
		Ticker:    ticker,
		Currency:  "USD",
		Timestamp: time.Now().UTC().Format("2006-01-02 15:04:05 UTC"),
	}
	if price == nil {
		md.CompanyName = ticker
		return md
	}
	md.CompanyName = price.CompanyName
	md.CurrentPrice = price.CurrentPrice
	md.PriceChange = price.PriceChange
	md.PriceChangePercent = price.PriceChangePercent
	md.Currency = price.Currency
	md.MarketCap = price.MarketCap
	md.Sector = price.Sector
	md.Industry = price.Industry
	return md
}

func technicalSection(t *models.TechnicalResult) models.TechnicalSection {
	if t == nil {
		return models.TechnicalSection{
			Confidence: models.ConfidenceUnavailable,
			Status:     "Technical analysis data not available",
		}
	}
	return models.TechnicalSection{
		Confidence: t.Confidence,
		Status:     "available",
		Data:       t,
	}
}

func newsSection(news []models.NewsArticle) models.NewsSection {
	if len(news) == 0 {
		return models.NewsSection{
			Confidence: models.ConfidenceContext,
			Status:     "limited",
			Headlines:  []models.NewsArticle{},
			Note:       "News data unavailable or limited by API constraints",
		}
	}
	if len(news) > 10 {
		news = news[:10]
	}
	return models.NewsSection{
		Confidence: models.ConfidenceContext,
		Status:     "available",
		Headlines:  news,
		Count:      len(news),
		Note:       "Limited coverage - free tier API constraints. For context only.",
	}
}

func insightsSection(ins models.AIInsights) models.InsightsSection {
	if ins.Unavailable() {
		return models.InsightsSection{
			Confidence: models.ConfidenceAI,
			Status:     "unavailable",
			Note:       "AI insights could not be generated. Report contains traditional analysis only.",
		}
	}
	return models.InsightsSection{
		Confidence: models.ConfidenceAI,
		Status:     "available",
		Insights:   &ins,
	}
}

func riskSection(r *models.RiskMetrics) models.RiskSection {
	if r == nil {
		return models.RiskSection{
			Confidence: models.ConfidenceUnavailable,
			Status:     "unavailable",
			Note:       "Risk metrics require sufficient price history",
		}
	}
	return models.RiskSection{
		Confidence: models.ConfidenceHigh,
		Status:     "available",
		Data:       r,
	}
}

func optionsSection(o *models.OptionsSentiment) models.OptionsSection {
	if o == nil {
		return models.OptionsSection{
			Confidence: models.ConfidenceUnavailable,
			Status:     "unavailable",
			Note:       "Options data unavailable for this asset",
		}
	}
	return models.OptionsSection{
		Confidence: models.ConfidenceMedium,
		Status:     "available",
		Data:       o,
	}
}

func institutionalSection(io *models.InstitutionalOwnership) models.InstitutionalSection {
	if io == nil {
		return models.InstitutionalSection{
			Confidence: models.ConfidenceUnavailable,
			Status:     "unavailable",
			Note:       "Ownership data only available for US-listed equities",
		}
	}
	return models.InstitutionalSection{
		Confidence: models.ConfidenceMedium,
		Status:     "available",
		Data:       io,
	}
}

func insiderSection(ia *models.InsiderActivity) models.InsiderSection {
	if ia == nil {
		return models.InsiderSection{
			Confidence: models.ConfidenceUnavailable,
			Status:     "unavailable",
			Note:       "Insider filing data only available for SEC registrants",
		}
	}
	return models.InsiderSection{
		Confidence: models.ConfidenceMedium,
		Status:     "available",
		Data:       ia,
	}
}

// Summary produces the executive summary paragraph: price move, then the
// technical, risk and sentiment sentences for whichever of those are
// present, closing with the fixed caveat.
func Summary(ticker string, price *models.PriceData, technical *models.TechnicalResult, risk *models.RiskMetrics, overall models.OverallSentiment) string {
	var parts []string

	if price != nil {
		direction := "down"
		if price.PriceChangePercent > 0 {
			direction = "up"
		}
		name := price.CompanyName
		if name == "" {
			name = ticker
		}
		parts = append(parts, fmt.Sprintf("%s (%s) is trading at $%.2f, %s %.2f%%.",
			name, ticker, price.CurrentPrice, direction, abs(price.PriceChangePercent)))
	}

	if technical != nil {
		parts = append(parts, fmt.Sprintf("Technical indicators show %s with RSI at %.1f.",
			technical.OverallSignal, technical.RSI.Value))
	}

	if risk != nil {
		parts = append(parts, fmt.Sprintf("Volatility is %s at %.1f%% annualized with a maximum drawdown of %.1f%% over the period.",
			risk.RiskLevel, risk.Volatility30d, risk.MaxDrawdownPct))
	}

	if overall.Available() {
		parts = append(parts, fmt.Sprintf("Sentiment analysis suggests %s signals from market and retail data.",
			overall.Assessment))
	}

	parts = append(parts, "This analysis combines technical indicators with public sentiment data for research purposes only.")
	return strings.Join(parts, " ")
}

// Disclaimer returns the static multi-section disclaimer block.
func Disclaimer() models.DisclaimerBlock {
	return models.DisclaimerBlock{
		Title: "Important Disclaimer",
		Sections: []models.DisclaimerSection{
			{
				Heading: "Educational Purpose Only",
				Content: "ResearchIQ is an educational research tool built as a portfolio project. This is NOT financial advice, investment recommendations, or a professional analysis service.",
			},
			{
				Heading: "Data Limitations",
				Content: "This tool uses free public APIs with known constraints. Data quality varies by source. Technical analysis is HIGH confidence (real market data), while sentiment signals are MEDIUM to LOW confidence (directional only).",
			},
			{
				Heading: "Not Suitable for Investment Decisions",
				Content: "The analysis provided is for research and educational purposes only. It should not be used as the basis for actual investment decisions.",
			},
			{
				Heading: "No Warranty",
				Content: "This tool is provided as-is with no warranty of accuracy, completeness, or fitness for any purpose. Use at your own risk.",
			},
			{
				Heading: "Consult Professionals",
				Content: "For investment decisions, consult licensed financial professionals. Past performance does not guarantee future results.",
			},
		},
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
