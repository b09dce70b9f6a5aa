package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/researchiq/researchiq/internal/infra"
	"github.com/researchiq/researchiq/pkg/models"
	"github.com/researchiq/researchiq/pkg/utils"
)

// Put/call ratio bands for the crude options sentiment label.
const (
	putCallBearish = 1.2
	putCallBullish = 0.7
)

type yhOptionsResponse struct {
	OptionChain struct {
		Result []struct {
			ExpirationDates []int64 `json:"expirationDates"`
			Options         []struct {
				ExpirationDate int64              `json:"expirationDate"`
				Calls          []yhOptionContract `json:"calls"`
				Puts           []yhOptionContract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *yhError `json:"error"`
	} `json:"optionChain"`
}

type yhOptionContract struct {
	Volume       int64   `json:"volume"`
	OpenInterest int64   `json:"openInterest"`
	Strike       float64 `json:"strike"`
}

// FetchOptions returns put/call positioning for the nearest expiry as a
// crude sentiment proxy. Assets without listed options yield ErrNoData.
func (y *Yahoo) FetchOptions(ctx context.Context, ticker string) (*models.OptionsSentiment, error) {
	symbol := utils.NormalizeTicker(ticker)

	cacheKey := infra.CacheKey(symbol, "options", nil)
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(*models.OptionsSentiment), nil
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v7/finance/options/%s", y.baseURL, symbol)
	body, status, err := doGet(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		if status == 404 {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
		}
		return nil, fmt.Errorf("yahoo options %s: %w", symbol, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp yhOptionsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse yahoo options: %w", err)
	}
	if resp.OptionChain.Error != nil {
		return nil, fmt.Errorf("yahoo options error: %s", resp.OptionChain.Error.Description)
	}
	if len(resp.OptionChain.Result) == 0 || len(resp.OptionChain.Result[0].Options) == 0 {
		return nil, fmt.Errorf("%w: no options chain for %s", ErrNoData, symbol)
	}

	chain := resp.OptionChain.Result[0].Options[0]

	var callVolume, putVolume int64
	for _, c := range chain.Calls {
		callVolume += c.Volume
	}
	for _, p := range chain.Puts {
		putVolume += p.Volume
	}
	if callVolume == 0 && putVolume == 0 {
		return nil, fmt.Errorf("%w: no options volume for %s", ErrNoData, symbol)
	}

	ratio := 0.0
	if callVolume > 0 {
		ratio = math.Round(float64(putVolume)/float64(callVolume)*100) / 100
	}

	sentiment := "neutral"
	switch {
	case ratio > putCallBearish:
		sentiment = "bearish"
	case ratio > 0 && ratio < putCallBullish:
		sentiment = "bullish"
	}

	os := &models.OptionsSentiment{
		Ticker:       symbol,
		PutCallRatio: ratio,
		CallVolume:   callVolume,
		PutVolume:    putVolume,
		Sentiment:    sentiment,
		Expiry:       time.Unix(chain.ExpirationDate, 0).UTC().Format("2006-01-02"),
	}

	y.cache.SetWithTTL(cacheKey, os, 15*time.Minute)
	return os, nil
}
