package datasource

import (
	"fmt"
	"math"

	"github.com/researchiq/researchiq/pkg/models"
)

// Annualized-volatility bands for the qualitative risk level, in percent.
const (
	riskLowVol      = 15.0
	riskModerateVol = 25.0
	riskHighVol     = 40.0
)

// minRiskHistory is the smallest close count that yields a meaningful
// 30-day volatility figure.
const minRiskHistory = 10

const tradingDaysPerYear = 252

// ComputeRisk derives volatility and drawdown risk measures from the
// price history. It is a pure computation: no network, no state.
func ComputeRisk(price *models.PriceData) (*models.RiskMetrics, error) {
	if price == nil {
		return nil, fmt.Errorf("%w: no price data", ErrNoData)
	}
	closes := price.Closes()
	if len(closes) < minRiskHistory {
		return nil, fmt.Errorf("%w: %d closes, need %d for risk metrics", ErrNoData, len(closes), minRiskHistory)
	}

	vol := annualizedVolatility(closes, 30)
	drawdown := maxDrawdown(closes)

	return &models.RiskMetrics{
		Ticker:         price.Ticker,
		Volatility30d:  math.Round(vol*10) / 10,
		MaxDrawdownPct: math.Round(drawdown*10) / 10,
		RiskLevel:      riskLevel(vol),
	}, nil
}

// annualizedVolatility computes the standard deviation of daily returns
// over the trailing window, annualized and expressed in percent.
func annualizedVolatility(closes []float64, window int) float64 {
	if len(closes) < window+1 {
		window = len(closes) - 1
	}
	start := len(closes) - window - 1

	returns := make([]float64, 0, window)
	for i := start + 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}

	m := mean(returns)
	variance := 0.0
	for _, r := range returns {
		variance += (r - m) * (r - m)
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear) * 100
}

// maxDrawdown returns the largest peak-to-trough decline over the whole
// history, in percent (positive number).
func maxDrawdown(closes []float64) float64 {
	peak := closes[0]
	worst := 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			dd := (peak - c) / peak * 100
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// riskLevel maps annualized volatility onto a qualitative label.
func riskLevel(vol float64) string {
	switch {
	case vol < riskLowVol:
		return "low"
	case vol < riskModerateVol:
		return "moderate"
	case vol < riskHighVol:
		return "high"
	default:
		return "very high"
	}
}
