package providers

import (
	"context"
	"fmt"
	"sort"

	"CrossAlert/internal/domain/models"
	xhttp "CrossAlert/pkg/http"
	"CrossAlert/pkg/util"
)

// AlphaVantage is the secondary provider. Free tier allows 25 requests/day,
// so it only sees traffic when Yahoo fails. Rate-limit hits come back as a
// 200 with a "Note" payload, which counts as a failed attempt.
type AlphaVantage struct {
	client  *xhttp.Client
	baseURL string
	apiKey  string
}

func NewAlphaVantage(client *xhttp.Client, baseURL, apiKey string) *AlphaVantage {
	return &AlphaVantage{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (a *AlphaVantage) Name() string { return "alphavantage" }

type avDailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type avDailyResponse struct {
	ErrorMessage string                `json:"Error Message"`
	Note         string                `json:"Note"`
	Series       map[string]avDailyBar `json:"Time Series (Daily)"`
}

// TryHistory fetches the compact daily series (~100 bars), trimmed to the
// trailing 90 to match the other providers' range.
func (a *AlphaVantage) TryHistory(ctx context.Context, symbol, _, _ string) (*models.ProviderResult, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("alphavantage: no api key")
	}

	var resp avDailyResponse
	err := a.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    a.baseURL,
		QueryParams: map[string][]string{
			"function":   {"TIME_SERIES_DAILY"},
			"symbol":     {YahooSymbol(symbol)},
			"outputsize": {"compact"},
			"apikey":     {a.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("alphavantage daily: %w", err)
	}
	if resp.ErrorMessage != "" || resp.Note != "" {
		return nil, fmt.Errorf("alphavantage daily: %s%s", resp.ErrorMessage, resp.Note)
	}
	if len(resp.Series) == 0 {
		return nil, fmt.Errorf("alphavantage daily: no time series for %s", symbol)
	}

	dates := make([]string, 0, len(resp.Series))
	for d := range resp.Series {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if len(dates) > 90 {
		dates = dates[len(dates)-90:]
	}

	bars := make([]models.Bar, 0, len(dates))
	for _, d := range dates {
		v := resp.Series[d]
		c, ok := util.ParseFloat(v.Close)
		if !ok {
			return nil, fmt.Errorf("alphavantage daily: bad close %q on %s", v.Close, d)
		}
		o, _ := util.ParseFloat(v.Open)
		h, _ := util.ParseFloat(v.High)
		l, _ := util.ParseFloat(v.Low)
		vol, _ := util.ParseFloat(v.Volume)
		bars = append(bars, models.Bar{
			Date:   d,
			Open:   util.Round2(o),
			High:   util.Round2(h),
			Low:    util.Round2(l),
			Close:  util.Round2(c),
			Volume: int64(vol),
		})
	}

	res := &models.ProviderResult{
		Provider: "alphavantage",
		History:  bars,
	}
	if n := len(bars); n > 0 {
		res.RegularMarketPrice = bars[n-1].Close
	}
	if n := len(bars); n > 1 {
		res.PreviousClose = bars[n-2].Close
	}
	return res, nil
}

type avGlobalQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		PreviousClose string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePct     string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// TryQuote fetches one symbol's current quote. Alpha Vantage has no batch
// endpoint, so the chain calls this one symbol at a time with a hard cap.
func (a *AlphaVantage) TryQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("alphavantage: no api key")
	}

	var resp avGlobalQuoteResponse
	err := a.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    a.baseURL,
		QueryParams: map[string][]string{
			"function": {"GLOBAL_QUOTE"},
			"symbol":   {symbol},
			"apikey":   {a.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("alphavantage quote: %w", err)
	}

	gq := resp.GlobalQuote
	price, ok := util.ParseFloat(gq.Price)
	if !ok {
		return nil, fmt.Errorf("alphavantage quote: no price for %s", symbol)
	}
	change, _ := util.ParseFloat(gq.Change)
	prev, _ := util.ParseFloat(gq.PreviousClose)
	pct, _ := util.ParseFloat(trimPercent(gq.ChangePct))

	return &models.Quote{
		Symbol:        gq.Symbol,
		Price:         util.Round2(price),
		Change:        util.Round2(change),
		ChangePercent: util.Round2(pct),
		PreviousClose: util.Round2(prev),
		Provider:      "alphavantage",
	}, nil
}

func trimPercent(s string) string {
	if n := len(s); n > 0 && s[n-1] == '%' {
		return s[:n-1]
	}
	return s
}
