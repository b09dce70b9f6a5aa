package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/researchiq/researchiq/internal/infra"
	"github.com/researchiq/researchiq/pkg/models"
	"github.com/researchiq/researchiq/pkg/utils"
)

// maxInsiderFilings caps how many recent filings a report carries.
const maxInsiderFilings = 10

// Edgar fetches recent insider ownership filings (Forms 3, 4 and 5) from
// the SEC EDGAR full-text Atom feed. The SEC requires a descriptive
// User-Agent identifying the caller.
type Edgar struct {
	baseURL   string
	userAgent string
	cache     *infra.Cache
	limiter   *infra.RateLimiter
	parser    *gofeed.Parser
}

// EdgarOption configures the EDGAR client.
type EdgarOption func(*Edgar)

// WithEdgarBaseURL overrides the API base URL (used in tests).
func WithEdgarBaseURL(url string) EdgarOption {
	return func(e *Edgar) { e.baseURL = url }
}

// WithEdgarUserAgent sets the SEC-required identifying User-Agent.
func WithEdgarUserAgent(ua string) EdgarOption {
	return func(e *Edgar) { e.userAgent = ua }
}

// NewEdgar creates an EDGAR insider-filings client.
func NewEdgar(opts ...EdgarOption) *Edgar {
	e := &Edgar{
		baseURL:   "https://www.sec.gov",
		userAgent: "ResearchIQ research@researchiq.dev",
		// SEC fair-access policy: at most 10 req/s, we stay well under.
		cache:   infra.NewCache(60 * time.Minute),
		limiter: infra.NewRateLimiter(2, time.Second),
		parser:  gofeed.NewParser(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the data source name.
func (e *Edgar) Name() string { return "SEC EDGAR" }

// FetchInsiderActivity returns recent Forms 3/4/5 filed for the ticker.
// Tickers without SEC filings (crypto, indices) yield ErrNoData.
func (e *Edgar) FetchInsiderActivity(ctx context.Context, ticker string) (*models.InsiderActivity, error) {
	symbol := utils.NormalizeTicker(ticker)

	cacheKey := infra.CacheKey(symbol, "insider", nil)
	if cached, ok := e.cache.Get(cacheKey); ok {
		return cached.(*models.InsiderActivity), nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feedURL := fmt.Sprintf(
		"%s/cgi-bin/browse-edgar?action=getcompany&company=%s&type=4&dateb=&owner=include&count=%d&output=atom",
		e.baseURL, url.QueryEscape(symbol), maxInsiderFilings*2)

	feed, err := e.fetchAtom(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("edgar filings for %s: %w", symbol, err)
	}
	if len(feed.Items) == 0 {
		return nil, fmt.Errorf("%w: no filings for %s", ErrNoData, symbol)
	}

	filings := make([]models.InsiderFiling, 0, maxInsiderFilings)
	for _, item := range feed.Items {
		form := filingForm(item)
		if form != "3" && form != "4" && form != "5" {
			continue
		}
		f := models.InsiderFiling{
			Ticker:      symbol,
			Form:        form,
			Description: strings.TrimSpace(item.Title),
		}
		if item.UpdatedParsed != nil {
			f.FiledAt = *item.UpdatedParsed
		} else if item.PublishedParsed != nil {
			f.FiledAt = *item.PublishedParsed
		}
		filings = append(filings, f)
		if len(filings) == maxInsiderFilings {
			break
		}
	}
	if len(filings) == 0 {
		return nil, fmt.Errorf("%w: no ownership filings for %s", ErrNoData, symbol)
	}

	ia := &models.InsiderActivity{
		Ticker:      symbol,
		FilingCount: len(filings),
		Filings:     filings,
	}

	e.cache.Set(cacheKey, ia)
	return ia, nil
}

// fetchAtom downloads and parses an Atom feed with the SEC User-Agent.
func (e *Edgar) fetchAtom(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	body, _, err := doGet(ctx, feedURL, map[string]string{
		"User-Agent": e.userAgent,
		"Accept":     "application/atom+xml, application/xml",
	})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return e.parser.Parse(body)
}

// filingForm extracts the form type from an EDGAR Atom entry. Entries
// carry a "category" with the form code; fall back to scanning the title
// ("4 - Statement of changes...").
func filingForm(item *gofeed.Item) string {
	for _, cat := range item.Categories {
		c := strings.TrimSpace(cat)
		if c != "" {
			return c
		}
	}
	title := strings.TrimSpace(item.Title)
	if i := strings.Index(title, " "); i > 0 {
		return title[:i]
	}
	return title
}
