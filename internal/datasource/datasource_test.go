package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/researchiq/researchiq/pkg/models"
)

// --- Yahoo price ---

func yahooChartJSON(closes []float64, volumes []int64) string {
	var ts, cs, vs []string
	base := time.Now().AddDate(0, 0, -len(closes)).Unix()
	for i, c := range closes {
		ts = append(ts, fmt.Sprintf("%d", base+int64(i)*86400))
		cs = append(cs, fmt.Sprintf("%.2f", c))
		vs = append(vs, fmt.Sprintf("%d", volumes[i]))
	}
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"symbol":"AAPL","currency":"USD","shortName":"Apple Inc."},
		"timestamp":[%s],
		"indicators":{"quote":[{"close":[%s],"open":[%s],"high":[%s],"low":[%s],"volume":[%s]}]}}],"error":null}}`,
		strings.Join(ts, ","), strings.Join(cs, ","), strings.Join(cs, ","),
		strings.Join(cs, ","), strings.Join(cs, ","), strings.Join(vs, ","))
}

func TestYahooFetchPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"):
			fmt.Fprint(w, yahooChartJSON([]float64{100, 102, 101, 105}, []int64{1000, 1100, 900, 2000}))
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
			fmt.Fprint(w, `{"quoteSummary":{"result":[{"assetProfile":{"sector":"Technology","industry":"Consumer Electronics"},
				"price":{"marketCap":{"raw":2800000000000}}}],"error":null}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	y := NewYahoo(WithYahooBaseURL(srv.URL))
	pd, err := y.FetchPrice(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("FetchPrice: %v", err)
	}

	if pd.Ticker != "AAPL" {
		t.Errorf("ticker = %q, want AAPL", pd.Ticker)
	}
	if pd.CurrentPrice != 105 {
		t.Errorf("current price = %v, want 105", pd.CurrentPrice)
	}
	if pd.PriceChange != 4 {
		t.Errorf("price change = %v, want 4", pd.PriceChange)
	}
	if pd.PriceChangePercent != 3.96 {
		t.Errorf("price change pct = %v, want 3.96", pd.PriceChangePercent)
	}
	if len(pd.History) != 4 {
		t.Errorf("history length = %d, want 4", len(pd.History))
	}
	if pd.Sector != "Technology" {
		t.Errorf("sector = %q, want Technology", pd.Sector)
	}
	if pd.CompanyName != "Apple Inc." {
		t.Errorf("company name = %q", pd.CompanyName)
	}
}

func TestYahooFetchPriceNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	y := NewYahoo(WithYahooBaseURL(srv.URL))
	if _, err := y.FetchPrice(context.Background(), "NOPE"); !errors.Is(err, ErrTickerNotFound) {
		t.Errorf("expected ErrTickerNotFound, got %v", err)
	}
}

func TestYahooSurvivesMissingProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			fmt.Fprint(w, yahooChartJSON([]float64{50, 51}, []int64{100, 200}))
			return
		}
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	y := NewYahoo(WithYahooBaseURL(srv.URL))
	pd, err := y.FetchPrice(context.Background(), "BTC-USD")
	if err != nil {
		t.Fatalf("FetchPrice should tolerate a failing summary endpoint: %v", err)
	}
	if pd.Sector != "" {
		t.Errorf("sector = %q, want empty", pd.Sector)
	}
}

// --- Yahoo options ---

func TestYahooFetchOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"optionChain":{"result":[{"options":[{"expirationDate":1790000000,
			"calls":[{"volume":600},{"volume":400}],
			"puts":[{"volume":300},{"volume":100}]}]}],"error":null}}`)
	}))
	defer srv.Close()

	y := NewYahoo(WithYahooBaseURL(srv.URL))
	os, err := y.FetchOptions(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchOptions: %v", err)
	}
	if os.PutCallRatio != 0.4 {
		t.Errorf("put/call = %v, want 0.4", os.PutCallRatio)
	}
	if os.Sentiment != "bullish" {
		t.Errorf("sentiment = %q, want bullish", os.Sentiment)
	}
	if os.CallVolume != 1000 || os.PutVolume != 400 {
		t.Errorf("volumes = %d/%d, want 1000/400", os.CallVolume, os.PutVolume)
	}
}

func TestYahooFetchOptionsNoChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"optionChain":{"result":[{"options":[]}],"error":null}}`)
	}))
	defer srv.Close()

	y := NewYahoo(WithYahooBaseURL(srv.URL))
	if _, err := y.FetchOptions(context.Background(), "BTC-USD"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

// --- Fear & Greed ---

func TestFearGreedFetchIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"value":"72","value_classification":"Greed","timestamp":"1756500000"}]}`)
	}))
	defer srv.Close()

	f := NewFearGreed(WithFearGreedBaseURL(srv.URL))
	fg, err := f.FetchIndex(context.Background())
	if err != nil {
		t.Fatalf("FetchIndex: %v", err)
	}
	if fg.Value != 72 || fg.Classification != "Greed" {
		t.Errorf("got %+v", fg)
	}
	if !strings.HasPrefix(fg.Interpretation, "Greed") {
		t.Errorf("interpretation = %q", fg.Interpretation)
	}
}

func TestInterpretFearGreedBands(t *testing.T) {
	tests := []struct {
		value int
		want  string
	}{
		{10, "Extreme Fear"},
		{25, "Extreme Fear"},
		{26, "Fear"},
		{45, "Fear"},
		{50, "Neutral"},
		{56, "Greed"},
		{75, "Greed"},
		{76, "Extreme Greed"},
	}
	for _, tt := range tests {
		if got := interpretFearGreed(tt.value); !strings.HasPrefix(got, tt.want) {
			t.Errorf("interpretFearGreed(%d) = %q, want prefix %q", tt.value, got, tt.want)
		}
	}
}

// --- Reddit ---

func TestRedditFetchMentions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub := strings.Split(r.URL.Path, "/")[2]
		switch sub {
		case "stocks":
			fmt.Fprint(w, `{"data":{"children":[
				{"data":{"title":"AAPL earnings blowout","selftext":""}},
				{"data":{"title":"Thoughts on tech?","selftext":"holding aapl long term"}},
				{"data":{"title":"Unrelated post","selftext":"nothing here"}}]}}`)
		case "investing":
			fmt.Fprint(w, `{"data":{"children":[{"data":{"title":"Is AAPL overvalued?","selftext":""}}]}}`)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	r := NewReddit(WithRedditBaseURL(srv.URL))
	sv, err := r.FetchMentions(context.Background(), "AAPL", []string{"stocks", "investing", "broken"})
	if err != nil {
		t.Fatalf("FetchMentions: %v", err)
	}

	if sv.TotalMentions != 3 {
		t.Errorf("total mentions = %d, want 3", sv.TotalMentions)
	}
	if sv.Breakdown["stocks"] != 2 || sv.Breakdown["investing"] != 1 {
		t.Errorf("breakdown = %v", sv.Breakdown)
	}
	if sv.Breakdown["broken"] != 0 {
		t.Errorf("failed subreddit should count zero, got %d", sv.Breakdown["broken"])
	}
	if sv.VsBaseline != "low (below average)" {
		t.Errorf("vs baseline = %q", sv.VsBaseline)
	}
}

func TestMentionLabelBands(t *testing.T) {
	tests := []struct {
		total int
		want  string
	}{
		{0, "low (below average)"},
		{14, "low (below average)"},
		{15, "average"},
		{45, "average"},
		{46, "elevated (1.5x+ average)"},
		{90, "elevated (1.5x+ average)"},
		{91, "high (3x+ average)"},
	}
	for _, tt := range tests {
		if got := mentionLabel(tt.total); got != tt.want {
			t.Errorf("mentionLabel(%d) = %q, want %q", tt.total, got, tt.want)
		}
	}
}

// --- Trends ---

func TestInterestFromSeries(t *testing.T) {
	// Two flat weeks then a spike in the final week.
	views := make([]float64, 0, 21)
	for i := 0; i < 14; i++ {
		views = append(views, 100)
	}
	for i := 0; i < 7; i++ {
		views = append(views, 200)
	}

	st := interestFromSeries("Apple", views)
	if st.CurrentInterest != 100 {
		t.Errorf("current interest = %d, want 100", st.CurrentInterest)
	}
	if st.TrendDirection != "rising" {
		t.Errorf("direction = %q, want rising", st.TrendDirection)
	}
	if st.ChangePct7d != 100 {
		t.Errorf("7d change = %v, want 100", st.ChangePct7d)
	}
}

func TestInterestFromSeriesFalling(t *testing.T) {
	views := make([]float64, 0, 14)
	for i := 0; i < 7; i++ {
		views = append(views, 200)
	}
	for i := 0; i < 7; i++ {
		views = append(views, 100)
	}

	st := interestFromSeries("Apple", views)
	if st.TrendDirection != "falling" {
		t.Errorf("direction = %q, want falling", st.TrendDirection)
	}
	if st.CurrentInterest != 50 {
		t.Errorf("current interest = %d, want 50", st.CurrentInterest)
	}
}

func TestTrendsFetchInterest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var items []string
		for i := 0; i < 10; i++ {
			items = append(items, fmt.Sprintf(`{"timestamp":"2026080%d00","views":%d}`, i, 100+i))
		}
		fmt.Fprintf(w, `{"items":[%s]}`, strings.Join(items, ","))
	}))
	defer srv.Close()

	tr := NewTrends(WithTrendsBaseURL(srv.URL))
	st, err := tr.FetchInterest(context.Background(), "Apple Inc.")
	if err != nil {
		t.Fatalf("FetchInterest: %v", err)
	}
	if st.CurrentInterest != 100 {
		t.Errorf("current interest = %d, want 100 (latest is the peak)", st.CurrentInterest)
	}
	if st.TrendDirection != "stable" {
		t.Errorf("direction = %q, want stable for a short series", st.TrendDirection)
	}
}

func TestTrendsNoSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	tr := NewTrends(WithTrendsBaseURL(srv.URL))
	if _, err := tr.FetchInterest(context.Background(), "Unknown Asset"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

// --- Risk ---

func TestComputeRisk(t *testing.T) {
	history := make([]models.OHLCV, 0, 60)
	price := 100.0
	for i := 0; i < 60; i++ {
		// Alternate +2% / -1% days: positive drift with steady volatility.
		if i%2 == 0 {
			price *= 1.02
		} else {
			price *= 0.99
		}
		history = append(history, models.OHLCV{Close: price})
	}

	pd := &models.PriceData{Ticker: "TEST", History: history}
	rm, err := ComputeRisk(pd)
	if err != nil {
		t.Fatalf("ComputeRisk: %v", err)
	}
	if rm.Volatility30d <= 0 {
		t.Errorf("volatility = %v, want > 0", rm.Volatility30d)
	}
	if rm.MaxDrawdownPct < 1.0 || rm.MaxDrawdownPct > 2.0 {
		t.Errorf("max drawdown = %v, want about 1%%", rm.MaxDrawdownPct)
	}
	if rm.RiskLevel == "" {
		t.Error("risk level should be set")
	}
}

func TestComputeRiskInsufficientHistory(t *testing.T) {
	pd := &models.PriceData{Ticker: "TEST", History: []models.OHLCV{{Close: 1}, {Close: 2}}}
	if _, err := ComputeRisk(pd); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if _, err := ComputeRisk(nil); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for nil input, got %v", err)
	}
}

func TestRiskLevelBands(t *testing.T) {
	tests := []struct {
		vol  float64
		want string
	}{
		{10, "low"},
		{20, "moderate"},
		{30, "high"},
		{55, "very high"},
	}
	for _, tt := range tests {
		if got := riskLevel(tt.vol); got != tt.want {
			t.Errorf("riskLevel(%v) = %q, want %q", tt.vol, got, tt.want)
		}
	}
}

// --- EDGAR ---

const edgarAtomFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Latest Filings</title>
  <entry>
    <title>4 - DOE JANE (0001234567) (Reporting)</title>
    <category term="4" label="form type"/>
    <updated>2026-08-20T12:00:00-04:00</updated>
    <id>urn:tag:sec.gov,2008:accession-number=0001</id>
  </entry>
  <entry>
    <title>10-K - Example Corp</title>
    <category term="10-K" label="form type"/>
    <updated>2026-08-19T09:00:00-04:00</updated>
    <id>urn:tag:sec.gov,2008:accession-number=0002</id>
  </entry>
  <entry>
    <title>3 - SMITH JOHN (0007654321) (Reporting)</title>
    <category term="3" label="form type"/>
    <updated>2026-08-18T16:30:00-04:00</updated>
    <id>urn:tag:sec.gov,2008:accession-number=0003</id>
  </entry>
</feed>`

func TestEdgarFetchInsiderActivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "@") {
			t.Errorf("SEC requests need an identifying User-Agent, got %q", ua)
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, edgarAtomFixture)
	}))
	defer srv.Close()

	e := NewEdgar(WithEdgarBaseURL(srv.URL), WithEdgarUserAgent("test test@example.com"))
	ia, err := e.FetchInsiderActivity(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchInsiderActivity: %v", err)
	}

	if ia.FilingCount != 2 {
		t.Fatalf("filing count = %d, want 2 (10-K filtered out)", ia.FilingCount)
	}
	if ia.Filings[0].Form != "4" || ia.Filings[1].Form != "3" {
		t.Errorf("forms = %q, %q", ia.Filings[0].Form, ia.Filings[1].Form)
	}
	if ia.Filings[0].FiledAt.IsZero() {
		t.Error("filed-at should be parsed from the feed")
	}
}

// --- Finviz ---

const finvizFixture = `<html><body>
<table class="snapshot-table2">
<tr><td>Index</td><td>S&amp;P 500</td><td>P/E</td><td>29.41</td></tr>
<tr><td>Insider Own</td><td>0.07%</td><td>Inst Own</td><td>61.20%</td></tr>
<tr><td>Insider Trans</td><td>-1.44%</td><td>Inst Trans</td><td>0.30%</td></tr>
<tr><td>Short Float</td><td>0.78%</td><td>Short Ratio</td><td>1.67</td></tr>
</table>
</body></html>`

func TestInstitutionalFetchOwnership(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, finvizFixture)
	}))
	defer srv.Close()

	c := NewInstitutional(WithInstitutionalBaseURL(srv.URL))
	io, err := c.FetchOwnership(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchOwnership: %v", err)
	}

	if io.InstitutionalPct != 61.20 {
		t.Errorf("institutional pct = %v, want 61.20", io.InstitutionalPct)
	}
	if io.InsiderPct != 0.07 {
		t.Errorf("insider pct = %v, want 0.07", io.InsiderPct)
	}
	if io.InsiderTx != -1.44 {
		t.Errorf("insider trans = %v, want -1.44", io.InsiderTx)
	}
	if io.ShortFloatPct != 0.78 {
		t.Errorf("short float = %v, want 0.78", io.ShortFloatPct)
	}
}

func TestInstitutionalNoTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>not found</p></body></html>")
	}))
	defer srv.Close()

	c := NewInstitutional(WithInstitutionalBaseURL(srv.URL))
	if _, err := c.FetchOwnership(context.Background(), "BTC-USD"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"61.20%", 61.20, true},
		{"-1.44%", -1.44, true},
		{"-", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parsePercent(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parsePercent(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
