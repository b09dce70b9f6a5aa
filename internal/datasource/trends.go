package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/researchiq/researchiq/internal/infra"
	"github.com/researchiq/researchiq/pkg/models"
)

// Trend-direction thresholds: recent week vs the week before.
const (
	trendRisingRatio  = 1.2
	trendFallingRatio = 0.8
)

// Trends measures retail search interest for an asset using the Wikimedia
// pageviews API as a proxy: daily article views over a lookback window,
// rescaled to the familiar 0-100 relative-interest range.
type Trends struct {
	baseURL      string
	lookbackDays int
	cache        *infra.Cache
	limiter      *infra.RateLimiter
}

// TrendsOption configures the trends client.
type TrendsOption func(*Trends)

// WithTrendsBaseURL overrides the API base URL (used in tests).
func WithTrendsBaseURL(url string) TrendsOption {
	return func(t *Trends) { t.baseURL = url }
}

// WithTrendsLookback sets the lookback window in days.
func WithTrendsLookback(days int) TrendsOption {
	return func(t *Trends) { t.lookbackDays = days }
}

// NewTrends creates a search-interest client.
func NewTrends(opts ...TrendsOption) *Trends {
	t := &Trends{
		baseURL:      "https://wikimedia.org/api/rest_v1",
		lookbackDays: 30,
		cache:        infra.NewCache(60 * time.Minute),
		limiter:      infra.NewRateLimiter(5, time.Second),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the data source name.
func (t *Trends) Name() string { return "Wikimedia pageviews" }

type pageviewsResponse struct {
	Items []struct {
		Timestamp string `json:"timestamp"` // YYYYMMDD00
		Views     int64  `json:"views"`
	} `json:"items"`
}

// FetchInterest returns the relative search-interest level and direction
// for a query term (a company or asset name).
func (t *Trends) FetchInterest(ctx context.Context, query string) (*models.SearchTrend, error) {
	cacheKey := infra.CacheKey(query, "trends", t.lookbackDays)
	if cached, ok := t.cache.Get(cacheKey); ok {
		return cached.(*models.SearchTrend), nil
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -t.lookbackDays)
	article := articleTitle(query)

	reqURL := fmt.Sprintf("%s/metrics/pageviews/per-article/en.wikipedia/all-access/all-agents/%s/daily/%s/%s",
		t.baseURL, url.PathEscape(article), start.Format("20060102"), end.Format("20060102"))
	body, status, err := doGet(ctx, reqURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		if status == 404 {
			return nil, fmt.Errorf("%w: no pageview series for %q", ErrNoData, query)
		}
		return nil, fmt.Errorf("pageviews for %q: %w", query, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp pageviewsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse pageviews: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: empty pageview series for %q", ErrNoData, query)
	}

	views := make([]float64, len(resp.Items))
	for i, item := range resp.Items {
		views[i] = float64(item.Views)
	}

	st := interestFromSeries(query, views)
	t.cache.Set(cacheKey, st)
	return st, nil
}

// interestFromSeries converts a raw daily series into the 0-100 relative
// scale plus a direction label.
func interestFromSeries(query string, views []float64) *models.SearchTrend {
	peak := 0.0
	for _, v := range views {
		if v > peak {
			peak = v
		}
	}

	current := 0
	if peak > 0 {
		current = int(math.Round(views[len(views)-1] / peak * 100))
	}

	direction := "stable"
	if len(views) >= 14 {
		recent := mean(views[len(views)-7:])
		earlier := mean(views[len(views)-14 : len(views)-7])
		switch {
		case earlier > 0 && recent > earlier*trendRisingRatio:
			direction = "rising"
		case earlier > 0 && recent < earlier*trendFallingRatio:
			direction = "falling"
		}
	}

	changePct := 0.0
	if len(views) >= 8 && views[len(views)-8] > 0 {
		prev := views[len(views)-8]
		changePct = math.Round((views[len(views)-1]-prev)/prev*1000) / 10
	}

	return &models.SearchTrend{
		Query:           query,
		CurrentInterest: current,
		TrendDirection:  direction,
		ChangePct7d:     changePct,
	}
}

// articleTitle maps a free-text query onto a Wikipedia article title.
func articleTitle(query string) string {
	title := strings.TrimSpace(query)
	title = strings.ReplaceAll(title, " ", "_")
	return title
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
