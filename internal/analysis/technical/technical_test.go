package technical

import (
	"testing"
	"time"

	"github.com/researchiq/researchiq/pkg/models"
)

// makePriceData generates synthetic price history for testing.
func makePriceData(n int, basePrice, trend float64) *models.PriceData {
	history := make([]models.OHLCV, n)
	price := basePrice
	for i := 0; i < n; i++ {
		open := price
		close := open + trend
		history[i] = models.OHLCV{
			Timestamp: time.Now().Add(time.Duration(-n+i) * 24 * time.Hour),
			Open:      open,
			High:      close + 2,
			Low:       open - 2,
			Close:     close,
			Volume:    1_000_000,
		}
		price = close
	}
	return &models.PriceData{
		Ticker:       "TEST",
		CurrentPrice: history[n-1].Close,
		History:      history,
	}
}

func constantCloses(n int, v float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = v
	}
	return closes
}

func TestRSIRisingSeriesClampsTo100(t *testing.T) {
	p := makePriceData(200, 100, 1.5)
	rsi, ok := RSI(p.Closes(), 14)
	if !ok {
		t.Fatal("RSI not computed for sufficient data")
	}
	// Monotonic rise means zero average loss: clamped, not NaN/Inf.
	if rsi != 100 {
		t.Errorf("RSI of monotonically rising series = %.2f, want 100", rsi)
	}
}

func TestRSIFallingSeriesNearZero(t *testing.T) {
	p := makePriceData(50, 300, -1.5)
	rsi, ok := RSI(p.Closes(), 14)
	if !ok {
		t.Fatal("RSI not computed")
	}
	if rsi != 0 {
		t.Errorf("RSI of monotonically falling series = %.2f, want 0", rsi)
	}
}

func TestRSIInsufficientData(t *testing.T) {
	if _, ok := RSI(constantCloses(10, 100), 14); ok {
		t.Error("RSI computed with fewer than period+1 closes")
	}
}

func TestMovingAverages(t *testing.T) {
	closes := constantCloses(60, 10)
	mas := MovingAverages(closes, []int{20, 50, 200})

	if mas[20] != 10 || mas[50] != 10 {
		t.Errorf("constant series MAs = %v, want 10 for each covered period", mas)
	}
	if _, ok := mas[200]; ok {
		t.Error("MA_200 present for 60-point series, want absent")
	}
}

func TestMovingAverageIsTrailingMean(t *testing.T) {
	// closes 1..30: trailing 20-mean is mean of 11..30 = 20.5.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	mas := MovingAverages(closes, []int{20})
	if mas[20] != 20.5 {
		t.Errorf("MA_20 = %v, want 20.5", mas[20])
	}
}

func TestAnalyzeVolume(t *testing.T) {
	tests := []struct {
		name    string
		volumes []int64
		status  string
	}{
		{"elevated", append(flat(30, 100), 200), "elevated (high activity)"},
		{"above average", append(flat(30, 100), 125), "above average"},
		{"below average", append(flat(30, 100), 50), "below average"},
		{"average", append(flat(30, 100), 100), "average"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeVolume(tt.volumes, 30)
			if got.Status != tt.status {
				t.Errorf("status = %q, want %q", got.Status, tt.status)
			}
		})
	}
}

func TestAnalyzeVolumeInsufficientData(t *testing.T) {
	got := AnalyzeVolume([]int64{5000}, 30)
	if got.Status != "insufficient data" {
		t.Errorf("status = %q, want insufficient data", got.Status)
	}
	if got.CurrentVolume != 0 || got.AvgVolume != 0 {
		t.Errorf("sentinel result carries volume values: %+v", got)
	}
}

func TestMomentumSignalResolutionOrder(t *testing.T) {
	mas := map[int]float64{20: 90, 50: 85, 200: 80}

	tests := []struct {
		name  string
		rsi   float64
		price float64
		mas   map[int]float64
		want  string
	}{
		{"overbought wins over MA lean", 75, 100, mas, "overbought (approaching resistance)"},
		{"oversold wins over MA lean", 25, 100, mas, "oversold (approaching support)"},
		{"bullish momentum", 60, 100, mas, "bullish momentum"},
		{"bearish momentum", 40, 70, mas, "bearish momentum"},
		{"moderate bullish without RSI confirmation", 50, 100, mas, "moderate bullish"},
		{"moderate bearish without RSI confirmation", 50, 70, mas, "moderate bearish"},
		{"neutral with no MAs", 50, 100, nil, "neutral"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MomentumSignal(tt.rsi, tt.price, tt.mas); got != tt.want {
				t.Errorf("MomentumSignal(%v, %v) = %q, want %q", tt.rsi, tt.price, got, tt.want)
			}
		})
	}
}

func TestAnalyzeShortHistoryReturnsNil(t *testing.T) {
	if res := Analyze(makePriceData(19, 100, 1), Params{}); res != nil {
		t.Error("Analyze returned a result for fewer than 20 closes")
	}
	if res := Analyze(nil, Params{}); res != nil {
		t.Error("Analyze returned a result for nil input")
	}
}

func TestAnalyzeRisingSeries(t *testing.T) {
	p := makePriceData(250, 100, 1)
	res := Analyze(p, Params{})
	if res == nil {
		t.Fatal("Analyze returned nil for sufficient data")
	}

	if res.RSI.Value != 100 {
		t.Errorf("RSI = %.2f, want 100", res.RSI.Value)
	}
	if res.OverallSignal != "overbought (approaching resistance)" {
		t.Errorf("overall signal = %q, want overbought", res.OverallSignal)
	}
	if res.Confidence != models.ConfidenceHigh {
		t.Errorf("confidence = %q, want HIGH", res.Confidence)
	}
	for _, p := range []int{20, 50, 200} {
		if _, ok := res.MovingAverages.Values[p]; !ok {
			t.Errorf("MA_%d missing from 250-point series", p)
		}
		if res.MovingAverages.Position[p] != "above" {
			t.Errorf("position MA_%d = %q, want above in uptrend", p, res.MovingAverages.Position[p])
		}
	}
}

func TestAnalyzeMAExactTieIsBelow(t *testing.T) {
	// Constant series: current price equals every MA. Ties are "below".
	history := make([]models.OHLCV, 60)
	for i := range history {
		history[i] = models.OHLCV{Close: 10, Volume: 100}
	}
	p := &models.PriceData{Ticker: "FLAT", CurrentPrice: 10, History: history}

	res := Analyze(p, Params{})
	if res == nil {
		t.Fatal("Analyze returned nil")
	}
	for _, period := range []int{20, 50} {
		if pos := res.MovingAverages.Position[period]; pos != "below" {
			t.Errorf("tie position MA_%d = %q, want below", period, pos)
		}
	}
	if res.MovingAverages.Position[200] != "N/A" {
		t.Errorf("position MA_200 = %q, want N/A for short series", res.MovingAverages.Position[200])
	}
}

func flat(n int, v int64) []int64 {
	vols := make([]int64, n)
	for i := range vols {
		vols[i] = v
	}
	return vols
}
