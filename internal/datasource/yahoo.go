package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/researchiq/researchiq/internal/infra"
	"github.com/researchiq/researchiq/pkg/models"
	"github.com/researchiq/researchiq/pkg/utils"
)

// Yahoo fetches price history and options chains from the Yahoo Finance
// public API. It is the only required data source: without a price series
// there is no report.
type Yahoo struct {
	baseURL      string
	historyRange string
	cache        *infra.Cache
	limiter      *infra.RateLimiter
}

// YahooOption configures the Yahoo client.
type YahooOption func(*Yahoo)

// WithYahooBaseURL overrides the API base URL (used in tests).
func WithYahooBaseURL(url string) YahooOption {
	return func(y *Yahoo) { y.baseURL = url }
}

// WithYahooHistoryRange sets the chart range, e.g. "3mo" or "1y".
func WithYahooHistoryRange(r string) YahooOption {
	return func(y *Yahoo) { y.historyRange = r }
}

// NewYahoo creates a Yahoo Finance client.
func NewYahoo(opts ...YahooOption) *Yahoo {
	y := &Yahoo{
		baseURL:      "https://query1.finance.yahoo.com",
		historyRange: "3mo",
		cache:        infra.NewCache(5 * time.Minute),
		limiter:      infra.NewRateLimiter(5, time.Second), // 5 req/s
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Name returns the data source name.
func (y *Yahoo) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v8 chart API types ---

type yhChartResponse struct {
	Chart struct {
		Result []yhChartResult `json:"result"`
		Error  *yhError        `json:"error"`
	} `json:"chart"`
}

type yhChartResult struct {
	Meta       yhChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yhIndicators `json:"indicators"`
}

type yhChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	ShortName          string  `json:"shortName"`
	LongName           string  `json:"longName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type yhIndicators struct {
	Quote []yhOHLCV `json:"quote"`
}

type yhOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yhSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			Price *struct {
				MarketCap struct {
					Raw float64 `json:"raw"`
				} `json:"marketCap"`
			} `json:"price"`
		} `json:"result"`
		Error *yhError `json:"error"`
	} `json:"quoteSummary"`
}

type yhError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// FetchPrice returns the price history and quote metadata for a ticker.
// An unknown ticker yields ErrTickerNotFound.
func (y *Yahoo) FetchPrice(ctx context.Context, ticker string) (*models.PriceData, error) {
	symbol := utils.NormalizeTicker(ticker)

	cacheKey := infra.CacheKey(symbol, "price", y.historyRange)
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(*models.PriceData), nil
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d", y.baseURL, symbol, y.historyRange)
	body, status, err := doGet(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		if status == 404 {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
		}
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp yhChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse yahoo chart: %w", err)
	}
	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
		}
		return nil, fmt.Errorf("yahoo chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	result := resp.Chart.Result[0]
	history := parseYahooCandles(result)
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	current := history[len(history)-1].Close
	prev := current
	if len(history) > 1 {
		prev = history[len(history)-2].Close
	}
	change := current - prev
	changePct := 0.0
	if prev != 0 {
		changePct = change / prev * 100
	}

	name := result.Meta.LongName
	if name == "" {
		name = result.Meta.ShortName
	}
	if name == "" {
		name = symbol
	}
	currency := result.Meta.Currency
	if currency == "" {
		currency = "USD"
	}

	pd := &models.PriceData{
		Ticker:             symbol,
		CompanyName:        name,
		Currency:           currency,
		CurrentPrice:       math.Round(current*100) / 100,
		PriceChange:        math.Round(change*100) / 100,
		PriceChangePercent: math.Round(changePct*100) / 100,
		History:            history,
		FetchedAt:          time.Now(),
	}

	// Sector, industry and market cap are nice to have; the report stands
	// without them if the summary endpoint misbehaves.
	if err := y.enrichProfile(ctx, symbol, pd); err != nil {
		log.Printf("datasource/yahoo: profile for %s unavailable: %v", symbol, err)
	}

	y.cache.Set(cacheKey, pd)
	return pd, nil
}

// enrichProfile fills in sector, industry and market cap from the
// quoteSummary endpoint.
func (y *Yahoo) enrichProfile(ctx context.Context, symbol string, pd *models.PriceData) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile,price", y.baseURL, symbol)
	body, _, err := doGet(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	var resp yhSummaryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}
	if resp.QuoteSummary.Error != nil || len(resp.QuoteSummary.Result) == 0 {
		return ErrNoData
	}

	r := resp.QuoteSummary.Result[0]
	if r.AssetProfile != nil {
		pd.Sector = r.AssetProfile.Sector
		pd.Industry = r.AssetProfile.Industry
	}
	if r.Price != nil {
		pd.MarketCap = r.Price.MarketCap.Raw
	}
	return nil
}

// --- Helpers ---

// parseYahooCandles converts the sparse parallel-array chart payload into
// candles, skipping bars with a missing close.
func parseYahooCandles(result yhChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		c := models.OHLCV{
			Timestamp: time.Unix(ts, 0),
			Close:     *q.Close[i],
		}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		candles = append(candles, c)
	}
	return candles
}
