package config

import "github.com/researchiq/researchiq/pkg/utils"

// Supported asset lists, keyed by asset type. These mirror the symbols
// the free data providers reliably cover.
var (
	Stocks = []string{
		"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA",
		"NVDA", "META", "JPM", "BAC", "V",
		"MA", "WMT", "HD", "DIS", "NFLX",
	}

	Crypto = []string{
		"BTC-USD", "ETH-USD", "SOL-USD",
		"BNB-USD", "ADA-USD",
	}

	Indices = []string{
		"^GSPC", // S&P 500
		"^IXIC", // Nasdaq Composite
		"^DJI",  // Dow Jones Industrial Average
	}

	Commodities = []string{
		"GC=F", // Gold futures
		"SI=F", // Silver futures
	}
)

// AssetTypes maps an asset-type name to its supported symbols.
var AssetTypes = map[string][]string{
	"stocks":      Stocks,
	"crypto":      Crypto,
	"indices":     Indices,
	"commodities": Commodities,
}

// subreddits to scan for social mention counts, per asset type.
var subredditsByType = map[string][]string{
	"stocks":      {"wallstreetbets", "stocks", "investing"},
	"crypto":      {"CryptoCurrency", "Bitcoin", "ethereum"},
	"indices":     {"wallstreetbets", "stocks", "investing"},
	"commodities": {"wallstreetbets", "investing"},
}

// SubredditsFor returns the subreddits to scan for the given asset type,
// falling back to the stock subreddits for unknown types.
func SubredditsFor(assetType string) []string {
	if subs, ok := subredditsByType[assetType]; ok {
		return subs
	}
	return subredditsByType["stocks"]
}

// KnownTicker reports whether a ticker appears in the supported asset
// lists. When assetType is non-empty only that list is consulted.
func KnownTicker(ticker, assetType string) bool {
	ticker = utils.NormalizeTicker(ticker)
	if assetType != "" {
		for _, t := range AssetTypes[assetType] {
			if t == ticker {
				return true
			}
		}
		return false
	}
	for _, list := range AssetTypes {
		for _, t := range list {
			if t == ticker {
				return true
			}
		}
	}
	return false
}
