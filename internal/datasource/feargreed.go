package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/researchiq/researchiq/internal/infra"
	"github.com/researchiq/researchiq/pkg/models"
)

// FearGreed fetches the alternative.me Fear & Greed index, a market-wide
// sentiment reading on a 0-100 scale (0 = extreme fear).
type FearGreed struct {
	baseURL string
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// FearGreedOption configures the client.
type FearGreedOption func(*FearGreed)

// WithFearGreedBaseURL overrides the API base URL (used in tests).
func WithFearGreedBaseURL(url string) FearGreedOption {
	return func(f *FearGreed) { f.baseURL = url }
}

// NewFearGreed creates a Fear & Greed index client.
func NewFearGreed(opts ...FearGreedOption) *FearGreed {
	f := &FearGreed{
		baseURL: "https://api.alternative.me",
		cache:   infra.NewCache(30 * time.Minute),
		limiter: infra.NewRateLimiter(5, time.Second),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the data source name.
func (f *FearGreed) Name() string { return "alternative.me Fear & Greed" }

type fngResponse struct {
	Data []struct {
		Value               string `json:"value"`
		ValueClassification string `json:"value_classification"`
		Timestamp           string `json:"timestamp"`
	} `json:"data"`
}

// FetchIndex returns the latest index reading with its interpretation.
func (f *FearGreed) FetchIndex(ctx context.Context) (*models.FearGreed, error) {
	cacheKey := "feargreed:latest"
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached.(*models.FearGreed), nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, _, err := doGet(ctx, f.baseURL+"/fng/?limit=1", map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("fear & greed index: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp fngResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse fear & greed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: fear & greed payload empty", ErrNoData)
	}

	latest := resp.Data[0]
	value, err := strconv.Atoi(latest.Value)
	if err != nil {
		return nil, fmt.Errorf("parse fear & greed value %q: %w", latest.Value, err)
	}

	classification := latest.ValueClassification
	if classification == "" {
		classification = "Neutral"
	}

	fg := &models.FearGreed{
		Value:          value,
		Classification: classification,
		Interpretation: interpretFearGreed(value),
	}

	f.cache.Set(cacheKey, fg)
	return fg, nil
}

// interpretFearGreed maps the index value onto its standard reading.
func interpretFearGreed(value int) string {
	switch {
	case value <= 25:
		return "Extreme Fear - Market may be oversold, potential buying opportunity"
	case value <= 45:
		return "Fear - Investors are worried, bearish sentiment"
	case value <= 55:
		return "Neutral - Market sentiment balanced"
	case value <= 75:
		return "Greed - Investors becoming confident, bullish sentiment"
	default:
		return "Extreme Greed - Market may be overbought, caution advised"
	}
}
