// Package technical implements the indicator engine: RSI, simple moving
// averages, volume analysis, and momentum classification over OHLCV price
// history. All functions are pure; no I/O happens here.
package technical

import (
	"math"

	"github.com/researchiq/researchiq/pkg/models"
)

// Default computation parameters.
const (
	DefaultRSIPeriod      = 14
	DefaultVolumeLookback = 30

	// MinHistory is the minimum number of closes required for the engine
	// to produce a result at all.
	MinHistory = 20
)

// DefaultMAPeriods are the standard moving-average windows.
var DefaultMAPeriods = []int{20, 50, 200}

// Params configures an analysis run. Zero values fall back to defaults.
type Params struct {
	RSIPeriod      int
	MAPeriods      []int
	VolumeLookback int
}

func (p Params) withDefaults() Params {
	if p.RSIPeriod <= 0 {
		p.RSIPeriod = DefaultRSIPeriod
	}
	if len(p.MAPeriods) == 0 {
		p.MAPeriods = DefaultMAPeriods
	}
	if p.VolumeLookback <= 0 {
		p.VolumeLookback = DefaultVolumeLookback
	}
	return p
}

// RSI calculates the Relative Strength Index over the trailing window:
// per-step deltas split into gains and losses, simple mean of each over
// the period, RS = avgGain/avgLoss. When the average loss is zero the
// result is clamped to 100 instead of dividing by zero.
// Returns 0, false when there are fewer than period+1 closes.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 {
		period = DefaultRSIPeriod
	}
	if len(closes) < period+1 {
		return 0, false
	}

	// Mean gain/loss over the last `period` deltas.
	var avgGain, avgLoss float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		// All-gain window: RS is undefined, clamp to the ceiling.
		return 100, true
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), true
}

// MovingAverages computes the simple moving average for each period that
// the series is long enough to cover. Shorter periods are simply absent
// from the result, never zero.
func MovingAverages(closes []float64, periods []int) map[int]float64 {
	mas := make(map[int]float64, len(periods))
	for _, p := range periods {
		if p <= 0 || len(closes) < p {
			continue
		}
		sum := 0.0
		for _, c := range closes[len(closes)-p:] {
			sum += c
		}
		mas[p] = round2(sum / float64(p))
	}
	return mas
}

// AnalyzeVolume compares the latest volume to the mean of the trailing
// lookback window. Fewer than two data points yields the "insufficient
// data" sentinel rather than an error.
func AnalyzeVolume(volumes []int64, lookback int) models.VolumeResult {
	if lookback <= 0 {
		lookback = DefaultVolumeLookback
	}
	if len(volumes) < 2 {
		return models.VolumeResult{Status: "insufficient data"}
	}

	window := volumes
	if len(volumes) > lookback {
		window = volumes[len(volumes)-lookback:]
	}

	var sum int64
	for _, v := range window {
		sum += v
	}
	avg := sum / int64(len(window))
	current := volumes[len(volumes)-1]

	status := "average"
	switch {
	case avg > 0 && float64(current) > float64(avg)*1.5:
		status = "elevated (high activity)"
	case avg > 0 && float64(current) > float64(avg)*1.2:
		status = "above average"
	case avg > 0 && float64(current) < float64(avg)*0.8:
		status = "below average"
	}

	vsPct := 0.0
	if avg > 0 {
		vsPct = round1(float64(current-avg) / float64(avg) * 100)
	}

	return models.VolumeResult{
		CurrentVolume: current,
		AvgVolume:     avg,
		Status:        status,
		VsAveragePct:  vsPct,
	}
}

// MomentumSignal classifies overall momentum from the RSI and the count of
// moving averages the current price sits above vs below. Resolution order
// matters: extremes first, then confirmed momentum, then MA lean.
func MomentumSignal(rsi, currentPrice float64, mas map[int]float64) string {
	maSignals := 0
	for _, ma := range mas {
		if currentPrice > ma {
			maSignals++
		} else {
			maSignals--
		}
	}

	switch {
	case rsi > 70:
		return "overbought (approaching resistance)"
	case rsi < 30:
		return "oversold (approaching support)"
	case maSignals >= 2 && rsi > 55:
		return "bullish momentum"
	case maSignals <= -2 && rsi < 45:
		return "bearish momentum"
	case maSignals >= 1:
		return "moderate bullish"
	case maSignals <= -1:
		return "moderate bearish"
	default:
		return "neutral"
	}
}

// rsiReading maps an RSI value to the reported signal label and its
// interpretation. These bands are reporting bands, intentionally distinct
// from the momentum classifier's.
func rsiReading(rsi float64) (signal, interpretation string) {
	switch {
	case rsi >= 70:
		return "overbought", "May face selling pressure, consider overbought"
	case rsi >= 60:
		return "bullish", "Strong bullish momentum"
	case rsi >= 40:
		return "neutral", "Balanced momentum, no strong trend"
	case rsi >= 30:
		return "bearish", "Weak momentum, bearish bias"
	default:
		return "oversold", "May find support, consider oversold"
	}
}

// Analyze runs the complete indicator engine over the given price data.
// Returns nil when the history is too short (< MinHistory closes); it
// never fails in any other way. The result is all-or-nothing: RSI, moving
// averages and volume are always populated together.
func Analyze(price *models.PriceData, params Params) *models.TechnicalResult {
	if price == nil || len(price.History) < MinHistory {
		return nil
	}
	params = params.withDefaults()

	closes := price.Closes()
	rsi, ok := RSI(closes, params.RSIPeriod)
	if !ok {
		return nil
	}

	mas := MovingAverages(closes, params.MAPeriods)
	volume := AnalyzeVolume(price.Volumes(), params.VolumeLookback)

	currentPrice := price.CurrentPrice
	if currentPrice == 0 {
		currentPrice = closes[len(closes)-1]
	}

	// Ties classify as "below": a price sitting exactly on an average is
	// not above it.
	position := make(map[int]string, len(params.MAPeriods))
	for _, p := range params.MAPeriods {
		ma, present := mas[p]
		switch {
		case !present:
			position[p] = "N/A"
		case currentPrice > ma:
			position[p] = "above"
		default:
			position[p] = "below"
		}
	}

	signal, interpretation := rsiReading(rsi)

	return &models.TechnicalResult{
		RSI: models.RSIResult{
			Value:          round2(rsi),
			Signal:         signal,
			Interpretation: interpretation,
		},
		MovingAverages: models.MAResult{
			Values:       mas,
			Position:     position,
			CurrentPrice: round2(currentPrice),
		},
		Volume:        volume,
		OverallSignal: MomentumSignal(rsi, currentPrice, mas),
		Confidence:    models.ConfidenceHigh,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
