package datasource

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/researchiq/researchiq/internal/infra"
	"github.com/researchiq/researchiq/pkg/models"
	"github.com/researchiq/researchiq/pkg/utils"
)

// Institutional scrapes headline ownership percentages from the Finviz
// quote snapshot table. Finviz only covers US-listed equities; anything
// else yields ErrNoData.
type Institutional struct {
	baseURL string
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// InstitutionalOption configures the client.
type InstitutionalOption func(*Institutional)

// WithInstitutionalBaseURL overrides the base URL (used in tests).
func WithInstitutionalBaseURL(url string) InstitutionalOption {
	return func(i *Institutional) { i.baseURL = url }
}

// NewInstitutional creates a Finviz ownership client.
func NewInstitutional(opts ...InstitutionalOption) *Institutional {
	i := &Institutional{
		baseURL: "https://finviz.com",
		cache:   infra.NewCache(60 * time.Minute),
		limiter: infra.NewRateLimiter(1, time.Second),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Name returns the data source name.
func (i *Institutional) Name() string { return "Finviz" }

// FetchOwnership returns institutional and insider ownership percentages
// for a US-listed equity.
func (i *Institutional) FetchOwnership(ctx context.Context, ticker string) (*models.InstitutionalOwnership, error) {
	symbol := utils.NormalizeTicker(ticker)

	cacheKey := infra.CacheKey(symbol, "institutional", nil)
	if cached, ok := i.cache.Get(cacheKey); ok {
		return cached.(*models.InstitutionalOwnership), nil
	}

	if err := i.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/quote.ashx?t=%s", i.baseURL, symbol)
	body, status, err := doGet(ctx, url, map[string]string{"Accept": "text/html"})
	if err != nil {
		if status == 404 {
			return nil, fmt.Errorf("%w: %s not on finviz", ErrNoData, symbol)
		}
		return nil, fmt.Errorf("finviz quote %s: %w", symbol, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse finviz page: %w", err)
	}

	fields := snapshotFields(doc)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no snapshot table for %s", ErrNoData, symbol)
	}

	io := &models.InstitutionalOwnership{Ticker: symbol}
	found := false
	if v, ok := parsePercent(fields["Inst Own"]); ok {
		io.InstitutionalPct = v
		found = true
	}
	if v, ok := parsePercent(fields["Insider Own"]); ok {
		io.InsiderPct = v
		found = true
	}
	if v, ok := parsePercent(fields["Inst Trans"]); ok {
		io.InstitutionalTx = v
	}
	if v, ok := parsePercent(fields["Insider Trans"]); ok {
		io.InsiderTx = v
	}
	if v, ok := parsePercent(fields["Short Float"]); ok {
		io.ShortFloatPct = v
	}
	if !found {
		return nil, fmt.Errorf("%w: no ownership fields for %s", ErrNoData, symbol)
	}

	i.cache.Set(cacheKey, io)
	return io, nil
}

// snapshotFields reads the finviz snapshot table into a label → value map.
// The table alternates label and value cells.
func snapshotFields(doc *goquery.Document) map[string]string {
	fields := make(map[string]string)
	var cells []string
	doc.Find("table.snapshot-table2 td, table.js-snapshot-table td").Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(s.Text()))
	})
	for i := 0; i+1 < len(cells); i += 2 {
		if cells[i] != "" {
			fields[cells[i]] = cells[i+1]
		}
	}
	return fields
}

// parsePercent parses finviz percentage strings like "61.20%" or "-1.44%".
// "-" means not reported.
func parsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
