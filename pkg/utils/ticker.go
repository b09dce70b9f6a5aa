// Package utils provides small shared helpers for ticker handling and
// formatting.
package utils

import "strings"

// NormalizeTicker uppercases and trims a user-supplied ticker symbol.
// Yahoo-style suffixes and prefixes ("BTC-USD", "^GSPC", "GC=F") are
// preserved as-is.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// ValidTickerFormat reports whether a string looks like a ticker symbol:
// 1-12 characters drawn from letters, digits and the separators Yahoo
// Finance uses for crypto pairs, indices and futures.
func ValidTickerFormat(ticker string) bool {
	if len(ticker) == 0 || len(ticker) > 12 {
		return false
	}
	for _, c := range ticker {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '.' || c == '^' || c == '=':
		default:
			return false
		}
	}
	return true
}

// QueryTerm returns the best search term for news/trends lookups:
// the company name when known, otherwise the bare ticker with any
// market suffix stripped ("BTC-USD" → "BTC").
func QueryTerm(ticker, companyName string) string {
	if companyName != "" && companyName != ticker {
		return companyName
	}
	if i := strings.IndexAny(ticker, "-=."); i > 0 {
		return ticker[:i]
	}
	return strings.TrimPrefix(ticker, "^")
}
