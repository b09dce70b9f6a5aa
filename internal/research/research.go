// Package research orchestrates a full analysis run: it fans out to the
// data sources, tolerates individual source failures, runs the indicator
// and sentiment engines, asks the insight synthesizer for AI commentary,
// and assembles the final report. Price history is the only hard
// dependency; every other source degrades to an absent report section.
package research

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/researchiq/researchiq/internal/analysis/sentiment"
	"github.com/researchiq/researchiq/internal/analysis/technical"
	"github.com/researchiq/researchiq/internal/config"
	"github.com/researchiq/researchiq/internal/datasource"
	"github.com/researchiq/researchiq/internal/insight"
	"github.com/researchiq/researchiq/internal/report"
	"github.com/researchiq/researchiq/pkg/models"
	"github.com/researchiq/researchiq/pkg/utils"
)

// Sentinel errors returned by Analyze.
var (
	// ErrNotFound means the ticker has no price data at the primary source.
	ErrNotFound = errors.New("research: ticker not found")

	// ErrInvalidTicker means the symbol failed format validation before
	// any network call was made.
	ErrInvalidTicker = errors.New("research: invalid ticker format")
)

// PriceProvider fetches price history and quote metadata. It is the one
// required data source.
type PriceProvider interface {
	FetchPrice(ctx context.Context, ticker string) (*models.PriceData, error)
}

// NewsProvider fetches recent headlines for a ticker.
type NewsProvider interface {
	FetchHeadlines(ctx context.Context, ticker string) ([]models.NewsArticle, error)
}

// SocialProvider counts recent community mentions across subreddits.
type SocialProvider interface {
	FetchMentions(ctx context.Context, ticker string, subreddits []string) (*models.SocialVolume, error)
}

// TrendProvider measures retail search interest for a query term.
type TrendProvider interface {
	FetchInterest(ctx context.Context, query string) (*models.SearchTrend, error)
}

// MarketIndexProvider fetches the market-wide fear & greed reading.
type MarketIndexProvider interface {
	FetchIndex(ctx context.Context) (*models.FearGreed, error)
}

// OptionsProvider fetches options-flow sentiment for a ticker.
type OptionsProvider interface {
	FetchOptions(ctx context.Context, ticker string) (*models.OptionsSentiment, error)
}

// OwnershipProvider fetches institutional and insider ownership figures.
type OwnershipProvider interface {
	FetchOwnership(ctx context.Context, ticker string) (*models.InstitutionalOwnership, error)
}

// InsiderProvider fetches recent insider ownership filings.
type InsiderProvider interface {
	FetchInsiderActivity(ctx context.Context, ticker string) (*models.InsiderActivity, error)
}

// InsightGenerator produces the AI commentary block. Implementations must
// never fail the run; degraded output is expressed in the returned value.
type InsightGenerator interface {
	Generate(
		ctx context.Context,
		ticker string,
		price *models.PriceData,
		technical *models.TechnicalResult,
		sentiment *models.SentimentAnalysis,
		news []models.NewsArticle,
		risk *models.RiskMetrics,
		options *models.OptionsSentiment,
	) models.AIInsights
}

// RiskFunc computes risk metrics from fetched price history.
type RiskFunc func(price *models.PriceData) (*models.RiskMetrics, error)

// Orchestrator wires the data sources and analysis engines together.
// Price is required; every other field may be nil, in which case the
// corresponding report section is marked unavailable.
type Orchestrator struct {
	Price         PriceProvider
	News          NewsProvider
	Social        SocialProvider
	Trends        TrendProvider
	MarketIndex   MarketIndexProvider
	Options       OptionsProvider
	Institutional OwnershipProvider
	Insider       InsiderProvider
	Insights      InsightGenerator

	// Risk defaults to datasource.ComputeRisk when nil.
	Risk RiskFunc

	// Params configures the indicator engine. Zero value uses defaults.
	Params technical.Params
}

// New returns an Orchestrator with the required price provider set and
// risk computation defaulted. Optional sources are attached by the caller.
func New(price PriceProvider) *Orchestrator {
	return &Orchestrator{
		Price: price,
		Risk:  datasource.ComputeRisk,
	}
}

// sourceResults collects the outcome of the parallel fetch phase. Absent
// sources stay nil.
type sourceResults struct {
	news          []models.NewsArticle
	social        *models.SocialVolume
	trend         *models.SearchTrend
	fearGreed     *models.FearGreed
	options       *models.OptionsSentiment
	risk          *models.RiskMetrics
	institutional *models.InstitutionalOwnership
	insider       *models.InsiderActivity
}

// Analyze runs the full pipeline for one ticker and returns the assembled
// report. assetType selects the community sources to query ("stocks" or
// "crypto"); an empty string defaults to stocks.
//
// Price data is fetched first and alone: if the ticker is unknown the run
// stops with ErrNotFound before any optional source is contacted. The
// optional sources are then fetched concurrently in two batches, with each
// failure logged and converted to an absent section.
func (o *Orchestrator) Analyze(ctx context.Context, ticker, assetType string) (*models.Report, error) {
	ticker = utils.NormalizeTicker(ticker)
	if !utils.ValidTickerFormat(ticker) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTicker, ticker)
	}
	if assetType == "" {
		assetType = "stocks"
	}

	price, err := o.Price.FetchPrice(ctx, ticker)
	if err != nil {
		if errors.Is(err, datasource.ErrTickerNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ticker)
		}
		return nil, fmt.Errorf("research: fetching price for %s: %w", ticker, err)
	}

	res := o.fetchSources(ctx, ticker, assetType, price)

	tech := technical.Analyze(price, o.Params)
	sent := sentiment.Aggregate(ticker, res.fearGreed, res.trend, res.social)

	var insights models.AIInsights
	if o.Insights != nil {
		insights = o.Insights.Generate(ctx, ticker, price, tech, &sent, res.news, res.risk, res.options)
	} else {
		insights = insight.UnavailableInsights()
	}

	return report.Assemble(report.Inputs{
		Ticker:        ticker,
		Price:         price,
		Technical:     tech,
		Sentiment:     sent,
		News:          res.news,
		Insights:      insights,
		Risk:          res.risk,
		Options:       res.options,
		Institutional: res.institutional,
		Insider:       res.insider,
	}), nil
}

// fetchSources runs the optional providers in two concurrent batches.
// Batch one covers the sentiment inputs, batch two the supplementary
// sections. Each task captures its result under the mutex and reports
// failures as log lines only, so one dead source never sinks a batch.
func (o *Orchestrator) fetchSources(ctx context.Context, ticker, assetType string, price *models.PriceData) *sourceResults {
	res := &sourceResults{}
	var mu sync.Mutex

	query := utils.QueryTerm(ticker, price.CompanyName)
	subreddits := config.SubredditsFor(assetType)

	g, gctx := errgroup.WithContext(ctx)

	if o.News != nil {
		g.Go(func() error {
			articles, err := o.News.FetchHeadlines(gctx, ticker)
			if err != nil {
				log.Printf("research: news unavailable for %s: %v", ticker, err)
				return nil
			}
			mu.Lock()
			res.news = articles
			mu.Unlock()
			return nil
		})
	}
	if o.Social != nil {
		g.Go(func() error {
			social, err := o.Social.FetchMentions(gctx, ticker, subreddits)
			if err != nil {
				log.Printf("research: social volume unavailable for %s: %v", ticker, err)
				return nil
			}
			mu.Lock()
			res.social = social
			mu.Unlock()
			return nil
		})
	}
	if o.Trends != nil {
		g.Go(func() error {
			trend, err := o.Trends.FetchInterest(gctx, query)
			if err != nil {
				log.Printf("research: search trend unavailable for %q: %v", query, err)
				return nil
			}
			mu.Lock()
			res.trend = trend
			mu.Unlock()
			return nil
		})
	}
	if o.MarketIndex != nil {
		g.Go(func() error {
			fg, err := o.MarketIndex.FetchIndex(gctx)
			if err != nil {
				log.Printf("research: fear & greed index unavailable: %v", err)
				return nil
			}
			mu.Lock()
			res.fearGreed = fg
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	g, gctx = errgroup.WithContext(ctx)

	if o.Options != nil {
		g.Go(func() error {
			opts, err := o.Options.FetchOptions(gctx, ticker)
			if err != nil {
				log.Printf("research: options flow unavailable for %s: %v", ticker, err)
				return nil
			}
			mu.Lock()
			res.options = opts
			mu.Unlock()
			return nil
		})
	}
	if o.Risk != nil {
		g.Go(func() error {
			risk, err := o.Risk(price)
			if err != nil {
				log.Printf("research: risk metrics unavailable for %s: %v", ticker, err)
				return nil
			}
			mu.Lock()
			res.risk = risk
			mu.Unlock()
			return nil
		})
	}
	if o.Institutional != nil {
		g.Go(func() error {
			own, err := o.Institutional.FetchOwnership(gctx, ticker)
			if err != nil {
				log.Printf("research: ownership data unavailable for %s: %v", ticker, err)
				return nil
			}
			mu.Lock()
			res.institutional = own
			mu.Unlock()
			return nil
		})
	}
	if o.Insider != nil {
		g.Go(func() error {
			activity, err := o.Insider.FetchInsiderActivity(gctx, ticker)
			if err != nil {
				log.Printf("research: insider filings unavailable for %s: %v", ticker, err)
				return nil
			}
			mu.Lock()
			res.insider = activity
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return res
}
