package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/researchiq/researchiq/internal/infra"
	"github.com/researchiq/researchiq/pkg/models"
	"github.com/researchiq/researchiq/pkg/utils"
)

// Mention-volume baseline: a typical liquid ticker sees on the order of
// 30 mentions per week across the tracked subreddits. Labels are chosen
// relative to that.
const redditBaselineMentions = 30

// Reddit counts recent mentions of a ticker across a set of subreddits
// using the public JSON search endpoint. This is a volume signal only,
// not sentiment quality.
type Reddit struct {
	baseURL string
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// RedditOption configures the Reddit client.
type RedditOption func(*Reddit)

// WithRedditBaseURL overrides the API base URL (used in tests).
func WithRedditBaseURL(url string) RedditOption {
	return func(r *Reddit) { r.baseURL = url }
}

// NewReddit creates a Reddit mention-volume client.
func NewReddit(opts ...RedditOption) *Reddit {
	r := &Reddit{
		baseURL: "https://www.reddit.com",
		cache:   infra.NewCache(15 * time.Minute),
		limiter: infra.NewRateLimiter(1, time.Second), // be polite to reddit
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the data source name.
func (r *Reddit) Name() string { return "Reddit" }

type redditSearchResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title    string `json:"title"`
				Selftext string `json:"selftext"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchMentions counts mentions of the ticker over the past week in the
// given subreddits. A subreddit that errors contributes zero rather than
// failing the whole count.
func (r *Reddit) FetchMentions(ctx context.Context, ticker string, subreddits []string) (*models.SocialVolume, error) {
	if len(subreddits) == 0 {
		return nil, fmt.Errorf("%w: no subreddits for ticker %s", ErrNotConfigured, ticker)
	}

	term := utils.QueryTerm(ticker, "")

	cacheKey := infra.CacheKey(ticker, "reddit", subreddits)
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.(*models.SocialVolume), nil
	}

	total := 0
	breakdown := make(map[string]int, len(subreddits))
	failures := 0
	for _, sub := range subreddits {
		count, err := r.countInSubreddit(ctx, sub, term)
		if err != nil {
			log.Printf("datasource/reddit: search in r/%s failed: %v", sub, err)
			breakdown[sub] = 0
			failures++
			continue
		}
		breakdown[sub] = count
		total += count
	}
	if failures == len(subreddits) {
		return nil, fmt.Errorf("all subreddit searches failed for %s", ticker)
	}

	sv := &models.SocialVolume{
		Ticker:        ticker,
		TotalMentions: total,
		Breakdown:     breakdown,
		VsBaseline:    mentionLabel(total),
	}

	r.cache.Set(cacheKey, sv)
	return sv, nil
}

// countInSubreddit searches one subreddit and counts posts whose title or
// body actually contains the term.
func (r *Reddit) countInSubreddit(ctx context.Context, subreddit, term string) (int, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	searchURL := fmt.Sprintf("%s/r/%s/search.json?q=%s&restrict_sr=1&t=week&limit=100",
		r.baseURL, url.PathEscape(subreddit), url.QueryEscape(term))
	body, _, err := doGet(ctx, searchURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return 0, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return 0, err
	}

	var resp redditSearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("parse reddit search: %w", err)
	}

	needle := strings.ToLower(term)
	count := 0
	for _, child := range resp.Data.Children {
		text := strings.ToLower(child.Data.Title + " " + child.Data.Selftext)
		if strings.Contains(text, needle) {
			count++
		}
	}
	return count, nil
}

// mentionLabel classifies a weekly mention count against the baseline.
func mentionLabel(total int) string {
	switch {
	case total > redditBaselineMentions*3:
		return "high (3x+ average)"
	case float64(total) > float64(redditBaselineMentions)*1.5:
		return "elevated (1.5x+ average)"
	case float64(total) < float64(redditBaselineMentions)*0.5:
		return "low (below average)"
	default:
		return "average"
	}
}
