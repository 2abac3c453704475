package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	drepo "CrossAlert/internal/domain/repository"
	xhttp "CrossAlert/pkg/http"
	xlogger "CrossAlert/pkg/logger"
)

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type countingMetrics struct {
	mu       sync.Mutex
	attempts map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{attempts: map[string]int{}}
}

func (m *countingMetrics) RecordProviderAttempt(provider, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[provider+":"+outcome]++
}
func (m *countingMetrics) RecordNotification(string)       {}
func (m *countingMetrics) RecordSignal(string)             {}
func (m *countingMetrics) RecordError(string)              {}
func (m *countingMetrics) RecordLastClose(string, float64) {}
func (m *countingMetrics) RecordLatency(string, float64)   {}

func (m *countingMetrics) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts[key]
}

func newTestChain(t *testing.T, m drepo.Metrics, yahoo, av, fmp http.HandlerFunc, opts ...ChainOption) (*Chain, func()) {
	t.Helper()
	ys := httptest.NewServer(yahoo)
	as := httptest.NewServer(av)
	fs := httptest.NewServer(fmp)

	client := xhttp.NewClient(xhttp.WithTimeout(2 * time.Second))
	y := NewYahoo(client, ys.URL+"/chart", ys.URL+"/quote", ys.URL+"/search")
	a := NewAlphaVantage(client, as.URL, "test-av-key")
	f := NewFMP(client, fs.URL, "test-fmp-key")

	chain := NewChain(y, a, f, m, testLogger(t), opts...)
	return chain, func() {
		ys.Close()
		as.Close()
		fs.Close()
	}
}

const yahooGoodChart = `{"chart":{"result":[{
	"meta":{"currency":"USD","exchangeName":"NMS","shortName":"Apple Inc.",
		"regularMarketPrice":190.5,"previousClose":189.016},
	"timestamp":[1704153600,1704240000,1704326400],
	"indicators":{"quote":[{
		"open":[187.14,188.0,189.0],
		"high":[188.0,189.5,191.0],
		"low":[186.0,187.0,188.5],
		"close":[187.156,null,190.33],
		"volume":[1000,2000,3000]
	}]}
}],"error":null}}`

const avGoodDaily = `{"Time Series (Daily)":{
	"2024-01-02":{"1. open":"187.15","2. high":"188.0","3. low":"186.0","4. close":"187.68","5. volume":"1000"},
	"2024-01-03":{"1. open":"188.0","2. high":"189.5","3. low":"187.0","4. close":"188.12","5. volume":"2000"}
}}`

const fmpGoodHistory = `{"symbol":"AAPL","historical":[
	{"date":"2024-01-03","open":188.0,"high":189.5,"low":187.0,"close":188.12,"volume":2000},
	{"date":"2024-01-02","open":187.15,"high":188.0,"low":186.0,"close":187.68,"volume":1000}
]}`

func serve(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func serveStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", code)
	}
}

func TestResolveHistoryPrimaryWins(t *testing.T) {
	m := newCountingMetrics()
	fallbackHit := false
	chain, done := newTestChain(t, m,
		serve(yahooGoodChart),
		func(w http.ResponseWriter, r *http.Request) { fallbackHit = true },
		func(w http.ResponseWriter, r *http.Request) { fallbackHit = true },
	)
	defer done()

	res, err := chain.ResolveHistory(context.Background(), "AAPL", "1mo", "1d")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Provider != "yahoo" || res.Symbol != "AAPL" {
		t.Fatalf("result = %+v", res)
	}
	if fallbackHit {
		t.Fatalf("fallback providers were called")
	}

	// null close on 2024-01-02 is skipped
	if len(res.History) != 2 {
		t.Fatalf("bars = %d, want 2", len(res.History))
	}
	if res.History[0].Date != "2024-01-02" || res.History[1].Date != "2024-01-04" {
		t.Fatalf("dates = %s, %s", res.History[0].Date, res.History[1].Date)
	}
	if res.History[0].Close != 187.16 {
		t.Fatalf("close = %v, want 187.16 (rounded half-up)", res.History[0].Close)
	}
	if res.PreviousClose != 189.02 {
		t.Fatalf("previousClose = %v, want 189.02", res.PreviousClose)
	}
	if res.Name != "Apple Inc." {
		t.Fatalf("name = %q", res.Name)
	}
	if m.count("yahoo:ok") != 1 {
		t.Fatalf("yahoo ok attempts = %d", m.count("yahoo:ok"))
	}
}

func TestResolveHistoryFallsBackToSecondary(t *testing.T) {
	m := newCountingMetrics()
	tertiaryHit := false
	chain, done := newTestChain(t, m,
		serveStatus(http.StatusInternalServerError),
		serve(avGoodDaily),
		func(w http.ResponseWriter, r *http.Request) { tertiaryHit = true },
	)
	defer done()

	res, err := chain.ResolveHistory(context.Background(), "AAPL", "1mo", "1d")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Provider != "alphavantage" {
		t.Fatalf("provider = %s, want alphavantage", res.Provider)
	}
	if tertiaryHit {
		t.Fatalf("tertiary called after secondary succeeded")
	}
	if len(res.History) != 2 || res.History[0].Date != "2024-01-02" {
		t.Fatalf("history = %+v", res.History)
	}
	if m.count("yahoo:failed") != 1 || m.count("alphavantage:ok") != 1 {
		t.Fatalf("attempts = %+v", m.attempts)
	}
}

func TestResolveHistoryRateLimitNoteIsFailure(t *testing.T) {
	m := newCountingMetrics()
	chain, done := newTestChain(t, m,
		serveStatus(http.StatusForbidden),
		serve(`{"Note":"Thank you for using Alpha Vantage! 25 requests/day"}`),
		serve(fmpGoodHistory),
	)
	defer done()

	res, err := chain.ResolveHistory(context.Background(), "AAPL", "1mo", "1d")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Provider != "fmp" {
		t.Fatalf("provider = %s, want fmp", res.Provider)
	}
	// FMP returns newest first; chain result must be ascending.
	if res.History[0].Date != "2024-01-02" || res.History[1].Date != "2024-01-03" {
		t.Fatalf("history not re-sorted: %+v", res.History)
	}
	if m.count("alphavantage:failed") != 1 {
		t.Fatalf("attempts = %+v", m.attempts)
	}
}

func TestResolveHistoryAllFail(t *testing.T) {
	m := newCountingMetrics()
	chain, done := newTestChain(t, m,
		serveStatus(http.StatusForbidden),
		serve(`{"Error Message":"Invalid API call"}`),
		serve(`{"symbol":"NOPE","historical":[]}`),
	)
	defer done()

	_, err := chain.ResolveHistory(context.Background(), "NOPE", "1mo", "1d")
	if !errors.Is(err, drepo.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	for _, k := range []string{"yahoo:failed", "alphavantage:failed", "fmp:failed"} {
		if m.count(k) != 1 {
			t.Fatalf("attempt %s = %d, want 1", k, m.count(k))
		}
	}
}

func TestResolveHistoryRejectsUnorderedSeries(t *testing.T) {
	// Yahoo responds 200 but with duplicate timestamps; the chain must treat
	// it as a failed attempt and fall through.
	unordered := strings.Replace(yahooGoodChart, "1704240000", "1704153600", 1)
	m := newCountingMetrics()
	chain, done := newTestChain(t, m,
		serve(unordered),
		serve(avGoodDaily),
		serveStatus(http.StatusForbidden),
	)
	defer done()

	res, err := chain.ResolveHistory(context.Background(), "AAPL", "1mo", "1d")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Provider != "alphavantage" {
		t.Fatalf("provider = %s, want alphavantage", res.Provider)
	}
	if m.count("yahoo:failed") != 1 {
		t.Fatalf("attempts = %+v", m.attempts)
	}
}

func TestKoreanSymbolMappedForYahoo(t *testing.T) {
	var gotPath string
	m := newCountingMetrics()
	chain, done := newTestChain(t, m,
		func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			serve(yahooGoodChart)(w, r)
		},
		serveStatus(http.StatusForbidden),
		serveStatus(http.StatusForbidden),
	)
	defer done()

	res, err := chain.ResolveHistory(context.Background(), "005930", "1mo", "1d")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.HasSuffix(gotPath, "/005930.KS") {
		t.Fatalf("yahoo path = %q, want .KS suffix", gotPath)
	}
	// The result keeps the caller's original symbol.
	if res.Symbol != "005930" {
		t.Fatalf("symbol = %q, want 005930", res.Symbol)
	}
}

func TestResolveQuotesFallsBackToFMP(t *testing.T) {
	m := newCountingMetrics()
	chain, done := newTestChain(t, m,
		serveStatus(http.StatusForbidden),
		serveStatus(http.StatusForbidden),
		serve(`[{"symbol":"AAPL","name":"Apple Inc.","price":190.504,"change":1.5,"changesPercentage":0.79,"previousClose":189.0,"exchange":"NASDAQ"}]`),
	)
	defer done()

	quotes, err := chain.ResolveQuotes(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("quotes: %v", err)
	}
	if len(quotes) != 1 || quotes[0].Provider != "fmp" {
		t.Fatalf("quotes = %+v", quotes)
	}
	if quotes[0].Price != 190.5 {
		t.Fatalf("price = %v, want 190.5", quotes[0].Price)
	}
}

func TestResolveQuotesAVCapped(t *testing.T) {
	avCalls := 0
	m := newCountingMetrics()
	chain, done := newTestChain(t, m,
		serveStatus(http.StatusForbidden),
		func(w http.ResponseWriter, r *http.Request) {
			avCalls++
			serve(`{"Global Quote":{"01. symbol":"X","05. price":"10.00","08. previous close":"9.50","09. change":"0.50","10. change percent":"5.26%"}}`)(w, r)
		},
		serveStatus(http.StatusForbidden),
	)
	defer done()

	symbols := []string{"A", "B", "C", "D", "E", "F", "G"}
	quotes, err := chain.ResolveQuotes(context.Background(), symbols)
	if err != nil {
		t.Fatalf("quotes: %v", err)
	}
	if avCalls != 5 {
		t.Fatalf("av calls = %d, want capped at 5", avCalls)
	}
	if len(quotes) != 5 {
		t.Fatalf("quotes = %d, want 5", len(quotes))
	}
}

func TestYahooSymbolMapping(t *testing.T) {
	cases := map[string]string{
		"005930":  "005930.KS",
		"035720":  "035720.KS",
		"AAPL":    "AAPL",
		"BRK.B":   "BRK.B",
		"12345":   "12345",
		"1234567": "1234567",
	}
	for in, want := range cases {
		if got := YahooSymbol(in); got != want {
			t.Fatalf("YahooSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveHistoryThrottledPrimarySkipsToFallback(t *testing.T) {
	yahooHits := 0
	m := newCountingMetrics()
	chain, done := newTestChain(t, m,
		func(w http.ResponseWriter, r *http.Request) {
			yahooHits++
			serve(yahooGoodChart)(w, r)
		},
		serve(avGoodDaily),
		serveStatus(http.StatusForbidden),
		WithMaxRPS(1),
	)
	defer done()

	// First call drains yahoo's token bucket.
	res, err := chain.ResolveHistory(context.Background(), "AAPL", "1mo", "1d")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if res.Provider != "yahoo" {
		t.Fatalf("first result provider = %q, want yahoo", res.Provider)
	}

	// Immediately after, yahoo is throttled and the chain must move on
	// to AlphaVantage without issuing a request to yahoo.
	res, err = chain.ResolveHistory(context.Background(), "MSFT", "1mo", "1d")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if res.Provider != "alphavantage" {
		t.Fatalf("second result provider = %q, want alphavantage", res.Provider)
	}
	if yahooHits != 1 {
		t.Fatalf("yahoo hits = %d, want 1", yahooHits)
	}
	if got := m.count("yahoo:throttled"); got != 1 {
		t.Fatalf("yahoo throttled count = %d, want 1", got)
	}
}
