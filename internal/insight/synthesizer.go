// Package insight turns indicator and sentiment outputs into short
// AI-generated commentary. Each insight kind is requested independently
// against the text generator; any kind may come back absent without
// affecting the others, and a wholesale failure degrades to an
// "unavailable" result instead of an error.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/researchiq/researchiq/internal/infra"
	"github.com/researchiq/researchiq/internal/llm"
	"github.com/researchiq/researchiq/pkg/models"
)

// Insight kind tags, used as the middle component of cache keys.
const (
	kindTechnical   = "ai_technical"
	kindMomentum    = "ai_momentum"
	kindLevels      = "ai_levels"
	kindVolume      = "ai_volume"
	kindRisk        = "ai_risk"
	kindNews        = "ai_news"
	kindCrossSignal = "ai_cross_signal"
)

const aiDisclaimer = "AI-generated insights for educational purposes only. Not financial advice."

// denylist holds generator replies that count as "no insight".
var denylist = map[string]struct{}{
	"null": {},
	"none": {},
	"n/a":  {},
}

// Synthesizer builds prompts from analysis outputs and delegates text
// generation to a TextGenerator. Results are cached by
// (ticker, kind, input fingerprint) so identical inputs within the TTL
// window do not re-invoke the generator.
type Synthesizer struct {
	gen        llm.TextGenerator
	cache      *infra.Cache
	ttl        time.Duration
	maxRetries int
	maxTokens  int
	timeout    time.Duration
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithCacheTTL overrides the default 60 minute insight cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Synthesizer) { s.ttl = ttl }
}

// WithMaxRetries overrides the per-insight retry bound.
func WithMaxRetries(n int) Option {
	return func(s *Synthesizer) { s.maxRetries = n }
}

// WithMaxTokens overrides the generation token cap.
func WithMaxTokens(n int) Option {
	return func(s *Synthesizer) { s.maxTokens = n }
}

// WithTimeout overrides the per-call generation timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Synthesizer) { s.timeout = d }
}

// NewSynthesizer creates a synthesizer backed by gen, caching results in
// cache. A nil cache disables caching.
func NewSynthesizer(gen llm.TextGenerator, cache *infra.Cache, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		gen:        gen,
		cache:      cache,
		ttl:        60 * time.Minute,
		maxRetries: 2,
		maxTokens:  500,
		timeout:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces the full insight set for a report. It never returns
// an error: individual kinds that fail are simply absent, and an
// unexpected failure of the whole step yields the "unavailable" shape.
func (s *Synthesizer) Generate(
	ctx context.Context,
	ticker string,
	price *models.PriceData,
	technical *models.TechnicalResult,
	sentiment *models.SentimentAnalysis,
	news []models.NewsArticle,
	risk *models.RiskMetrics,
	options *models.OptionsSentiment,
) (out models.AIInsights) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("insight: generation panicked for %s: %v", ticker, r)
			out = UnavailableInsights()
		}
	}()

	out = models.AIInsights{
		Confidence: models.ConfidenceAI,
		Disclaimer: aiDisclaimer,
	}
	if s.gen == nil || price == nil {
		return out
	}

	if technical != nil {
		out.Technical = s.technicalInsight(ctx, ticker, price, technical)
		out.PriceMomentum = s.momentumInsight(ctx, ticker, price, technical)
		out.SupportResistance = s.levelsInsight(ctx, ticker, price, technical)
		out.VolumeAnomaly = s.volumeInsight(ctx, ticker, technical)
		out.CrossSignal = s.crossSignalInsight(ctx, ticker, price, technical, sentiment)
	}
	if len(news) > 0 {
		out.NewsSentiment = s.newsSentiment(ctx, ticker, news)
	}
	out.RiskAssessment = s.riskInsight(ctx, ticker, risk, options)
	return out
}

// UnavailableInsights is the fixed shape used when insight generation
// failed as a whole.
func UnavailableInsights() models.AIInsights {
	return models.AIInsights{
		Confidence: models.ConfidenceAI,
		Status:     "unavailable",
		Disclaimer: "AI analysis unavailable. Report contains traditional analysis only.",
	}
}

// --- individual insight kinds ---

func (s *Synthesizer) technicalInsight(ctx context.Context, ticker string, price *models.PriceData, tech *models.TechnicalResult) string {
	prompt := fmt.Sprintf(`You are a technical analysis AI assistant for an educational research tool.

Analyze this technical data and provide ONE specific, actionable observation (max 15 words):

Asset: %s
Current Price: $%.2f (%+.2f%%)
RSI: %.1f (%s)
Moving Averages: %v
Volume: %s
Overall Signal: %s

Focus on:
- Divergences or unusual patterns
- Cross-signal anomalies
- Notable momentum shifts
- Risk factors (overbought/oversold extremes)

Keep it:
- Specific and unique (not just restating the data)
- Educational tone (use "suggests" not "will")
- One sentence max
- NO investment advice

If nothing notable, return: null`,
		ticker, price.CurrentPrice, price.PriceChangePercent,
		tech.RSI.Value, tech.RSI.Signal, tech.MovingAverages.Position,
		tech.Volume.Status, tech.OverallSignal)

	return s.textInsight(ctx, ticker, kindTechnical, tech, prompt, 0.2)
}

func (s *Synthesizer) momentumInsight(ctx context.Context, ticker string, price *models.PriceData, tech *models.TechnicalResult) string {
	prompt := fmt.Sprintf(`Analyze price momentum for %s:
- Price change: %+.2f%%
- RSI: %.1f
- Volume: %s

Provide ONE specific momentum insight (max 15 words). Focus on trend strength, exhaustion signals, or momentum divergences. Use "suggests" not "will". Return null if nothing notable.`,
		ticker, price.PriceChangePercent, tech.RSI.Value, tech.Volume.Status)

	snapshot := map[string]float64{"price": price.CurrentPrice, "change": price.PriceChangePercent}
	return s.textInsight(ctx, ticker, kindMomentum, snapshot, prompt, 0.2)
}

func (s *Synthesizer) levelsInsight(ctx context.Context, ticker string, price *models.PriceData, tech *models.TechnicalResult) string {
	prompt := fmt.Sprintf(`Identify support/resistance for %s:
- Current: $%.2f
- MA20: %s
- MA50: %s

Provide ONE specific insight about key levels (max 15 words). Focus on nearby support/resistance or breakout levels. Educational tone. Return null if nothing notable.`,
		ticker, price.CurrentPrice,
		maValue(tech.MovingAverages.Values, 20),
		maValue(tech.MovingAverages.Values, 50))

	snapshot := map[string]any{"price": price.CurrentPrice, "ma": tech.MovingAverages.Values}
	return s.textInsight(ctx, ticker, kindLevels, snapshot, prompt, 0.2)
}

func (s *Synthesizer) volumeInsight(ctx context.Context, ticker string, tech *models.TechnicalResult) string {
	prompt := fmt.Sprintf(`Analyze volume for %s:
- Status: %s
- vs Average: %+.1f%%

Provide ONE specific insight about volume (max 15 words). Focus on unusual patterns, conviction signals, or liquidity concerns. Return null if nothing notable.`,
		ticker, tech.Volume.Status, tech.Volume.VsAveragePct)

	return s.textInsight(ctx, ticker, kindVolume, tech.Volume, prompt, 0.2)
}

func (s *Synthesizer) riskInsight(ctx context.Context, ticker string, risk *models.RiskMetrics, options *models.OptionsSentiment) string {
	if risk == nil && options == nil {
		return ""
	}

	riskLevel, volatility, putCall := "N/A", "N/A", "N/A"
	if risk != nil {
		riskLevel = risk.RiskLevel
		volatility = fmt.Sprintf("%.1f", risk.Volatility30d)
	}
	if options != nil {
		putCall = fmt.Sprintf("%.2f", options.PutCallRatio)
	}

	prompt := fmt.Sprintf(`Assess risk for %s:
- Risk Level: %s
- 30d Volatility: %s%%
- Put/Call Ratio: %s

Provide ONE specific risk insight (max 15 words). Focus on notable risk factors or hedging activity. Educational tone. Return null if nothing notable.`,
		ticker, riskLevel, volatility, putCall)

	snapshot := map[string]any{"risk": risk, "options": options}
	return s.textInsight(ctx, ticker, kindRisk, snapshot, prompt, 0.2)
}

func (s *Synthesizer) newsSentiment(ctx context.Context, ticker string, news []models.NewsArticle) *models.NewsSentiment {
	// Fingerprint on the leading 50 chars of the top five titles so minor
	// feed churn deeper in the list does not bust the cache.
	snapshot := make([]string, 0, 5)
	for i, a := range news {
		if i == 5 {
			break
		}
		title := a.Title
		if len(title) > 50 {
			title = title[:50]
		}
		snapshot = append(snapshot, title)
	}
	key := infra.CacheKey(ticker, kindNews, snapshot)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if ns, ok := v.(*models.NewsSentiment); ok {
				return ns
			}
		}
	}

	var sb strings.Builder
	for i, a := range news {
		if i == 10 {
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, a.Title)
	}

	prompt := fmt.Sprintf(`You are a financial news sentiment analyzer for an educational research tool.

Analyze these news headlines about %s:

%s
Provide analysis as JSON:
{
  "sentiment": "Positive" or "Neutral" or "Negative",
  "key_themes": ["theme1", "theme2"],
  "notable_event": "one sentence about most important event or null"
}

Focus on:
- Overall sentiment direction
- Main themes (earnings, products, legal, partnerships, etc.)
- Any notable/outlier events

Keep themes concise (2-3 words each). No investment advice.`, ticker, sb.String())

	text, ok := s.generate(ctx, prompt, 0.3)
	if !ok {
		return nil
	}

	raw, ok := ExtractJSONObject(text)
	if !ok {
		log.Printf("insight: no JSON object in news sentiment reply for %s", ticker)
		return nil
	}
	var result models.NewsSentiment
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		log.Printf("insight: could not parse news sentiment JSON for %s: %v", ticker, err)
		return nil
	}
	if strings.EqualFold(result.NotableEvent, "null") {
		result.NotableEvent = ""
	}
	if s.cache != nil {
		s.cache.SetWithTTL(key, &result, s.ttl)
	}
	return &result
}

func (s *Synthesizer) crossSignalInsight(ctx context.Context, ticker string, price *models.PriceData, tech *models.TechnicalResult, sentiment *models.SentimentAnalysis) []string {
	assessment := "neutral"
	fgValue, fgClass := "50", "Neutral"
	mentions, vsBaseline := 0, "average"
	if sentiment != nil {
		if sentiment.Overall.Available() {
			assessment = sentiment.Overall.Assessment
		}
		if v, ok := sentiment.MarketSentiment.Details["value"]; ok {
			fgValue = fmt.Sprintf("%v", v)
		}
		if v, ok := sentiment.MarketSentiment.Details["classification"]; ok {
			fgClass = fmt.Sprintf("%v", v)
		}
		if v, ok := sentiment.SocialSignals.Details["total_mentions"].(int); ok {
			mentions = v
		}
		if v, ok := sentiment.SocialSignals.Details["vs_baseline"].(string); ok {
			vsBaseline = v
		}
	}

	snapshot := map[string]any{
		"tech":  tech.OverallSignal,
		"sent":  assessment,
		"price": price.PriceChangePercent,
	}
	key := infra.CacheKey(ticker, kindCrossSignal, snapshot)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if insights, ok := v.([]string); ok {
				return insights
			}
		}
	}

	prompt := fmt.Sprintf(`You are an AI co-analyst for an educational investment research tool.

Analyze this data for %s and identify 2-3 specific, notable insights:

TECHNICAL:
- Signal: %s
- RSI: %.1f
- Volume: %s

SENTIMENT:
- Overall: %s
- Fear & Greed: %s (%s)
- Reddit mentions: %d (%s)

PRICE:
- Current: $%.2f
- Change: %+.2f%%

Your task: Identify CROSS-SIGNAL patterns and anomalies:
- Divergences (tech says X, sentiment says Y)
- Unusual combinations (e.g., bullish tech + extreme greed = risk)
- Social media spikes (potential FOMO/volatility)
- Risk factors that pure math misses

Provide 2-3 insights as JSON array:
["Insight 1 (max 20 words)", "Insight 2", "Insight 3"]

Requirements:
- Each insight must be specific and actionable
- Focus on what's UNUSUAL or noteworthy
- Use educational language ("data suggests", "indicates")
- NO generic statements
- NO investment advice
- If nothing notable, return: []`,
		ticker, tech.OverallSignal, tech.RSI.Value, tech.Volume.Status,
		assessment, fgValue, fgClass, mentions, vsBaseline,
		price.CurrentPrice, price.PriceChangePercent)

	text, ok := s.generate(ctx, prompt, 0.4)
	if !ok {
		return nil
	}

	raw, ok := ExtractJSONArray(text)
	if !ok {
		log.Printf("insight: no JSON array in cross-signal reply for %s", ticker)
		return nil
	}
	var insights []string
	if err := json.Unmarshal([]byte(raw), &insights); err != nil {
		log.Printf("insight: could not parse cross-signal JSON for %s: %v", ticker, err)
		return nil
	}
	if len(insights) == 0 {
		return nil
	}
	if s.cache != nil {
		s.cache.SetWithTTL(key, insights, s.ttl)
	}
	return insights
}

// --- shared plumbing ---

// textInsight runs the cache-then-generate-then-cache cycle for a plain
// text insight kind.
func (s *Synthesizer) textInsight(ctx context.Context, ticker, kind string, snapshot any, prompt string, temperature float64) string {
	key := infra.CacheKey(ticker, kind, snapshot)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if text, ok := v.(string); ok {
				return text
			}
		}
	}

	text, ok := s.generate(ctx, prompt, temperature)
	if !ok {
		return ""
	}
	if s.cache != nil {
		s.cache.SetWithTTL(key, text, s.ttl)
	}
	return text
}

// generate calls the text generator with bounded retries and applies the
// non-answer denylist. The bool result is false when no usable text came
// back.
func (s *Synthesizer) generate(ctx context.Context, prompt string, temperature float64) (string, bool) {
	opts := llm.GenerateOptions{
		Temperature: temperature,
		MaxTokens:   s.maxTokens,
		Timeout:     s.timeout,
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		text, err := s.gen.Generate(ctx, prompt, opts)
		if err == nil {
			text = strings.TrimSpace(text)
			if _, denied := denylist[strings.ToLower(text)]; denied || text == "" {
				return "", false
			}
			return text, true
		}
		lastErr = err
		log.Printf("insight: generation attempt %d/%d failed: %v", attempt, s.maxRetries, err)
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr != nil {
		log.Printf("insight: all generation attempts failed: %v", lastErr)
	}
	return "", false
}

// ExtractJSONObject pulls the first {...} span out of free-form text,
// tolerating markdown fences and prose around the payload.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// ExtractJSONArray pulls the first [...] span out of free-form text.
func ExtractJSONArray(text string) (string, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func maValue(values map[int]float64, period int) string {
	if v, ok := values[period]; ok {
		return fmt.Sprintf("%.2f", v)
	}
	return "N/A"
}
