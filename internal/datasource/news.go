package datasource

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/researchiq/researchiq/internal/infra"
	"github.com/researchiq/researchiq/pkg/models"
)

// News fetches recent headlines for a ticker from the Yahoo Finance
// per-symbol RSS feed. Headlines are context only: ten titles from one
// feed, not comprehensive coverage.
type News struct {
	feedURL string
	limit   int
	cache   *infra.Cache
	limiter *infra.RateLimiter
	parser  *gofeed.Parser
}

// NewsOption configures the news client.
type NewsOption func(*News)

// WithNewsFeedURL overrides the RSS feed URL template. The template must
// contain one %s verb for the ticker.
func WithNewsFeedURL(tmpl string) NewsOption {
	return func(n *News) { n.feedURL = tmpl }
}

// WithNewsLimit caps the number of returned headlines.
func WithNewsLimit(limit int) NewsOption {
	return func(n *News) { n.limit = limit }
}

// NewNews creates a news client.
func NewNews(opts ...NewsOption) *News {
	n := &News{
		feedURL: "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US",
		limit:   10,
		cache:   infra.NewCache(10 * time.Minute),
		limiter: infra.NewRateLimiter(2, time.Second),
		parser:  gofeed.NewParser(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name returns the data source name.
func (n *News) Name() string { return "Yahoo Finance RSS" }

// FetchHeadlines returns up to the configured limit of recent headlines
// for the ticker, newest first.
func (n *News) FetchHeadlines(ctx context.Context, ticker string) ([]models.NewsArticle, error) {
	cacheKey := infra.CacheKey(ticker, "news", nil)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feedURL := fmt.Sprintf(n.feedURL, url.QueryEscape(ticker))
	feed, err := n.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse news feed for %s: %w", ticker, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(cleanHTML(item.Title))
		if title == "" {
			continue
		}
		a := models.NewsArticle{
			Title:  title,
			URL:    item.Link,
			Source: feedSource(feed, item),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if n.limit > 0 && len(articles) > n.limit {
		articles = articles[:n.limit]
	}

	n.cache.Set(cacheKey, articles)
	return articles, nil
}

// feedSource picks the most specific source name available for an item.
func feedSource(feed *gofeed.Feed, item *gofeed.Item) string {
	if item.Custom != nil {
		if src, ok := item.Custom["source"]; ok && src != "" {
			return src
		}
	}
	if feed.Title != "" {
		return feed.Title
	}
	return "Yahoo Finance"
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
