package providers

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"CrossAlert/internal/domain/models"
	xhttp "CrossAlert/pkg/http"
	"CrossAlert/pkg/util"
)

// FMP (Financial Modeling Prep) is the tertiary provider. It indexes by the
// original symbol form, not the Yahoo-suffixed one.
type FMP struct {
	client  *xhttp.Client
	baseURL string
	apiKey  string
}

func NewFMP(client *xhttp.Client, baseURL, apiKey string) *FMP {
	return &FMP{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (f *FMP) Name() string { return "fmp" }

type fmpHistoryResponse struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume int64   `json:"volume"`
	} `json:"historical"`
}

// TryHistory fetches the trailing 90 daily bars. FMP returns newest first;
// bars are re-sorted ascending before normalization.
func (f *FMP) TryHistory(ctx context.Context, symbol, _, _ string) (*models.ProviderResult, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("fmp: no api key")
	}

	var resp fmpHistoryResponse
	err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/historical-price-full/%s", f.baseURL, url.PathEscape(symbol)),
		QueryParams: map[string][]string{
			"timeseries": {"90"},
			"apikey":     {f.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fmp history: %w", err)
	}
	if len(resp.Historical) == 0 {
		return nil, fmt.Errorf("fmp history: no data for %s", symbol)
	}

	bars := make([]models.Bar, 0, len(resp.Historical))
	for _, d := range resp.Historical {
		bars = append(bars, models.Bar{
			Date:   d.Date,
			Open:   util.Round2(d.Open),
			High:   util.Round2(d.High),
			Low:    util.Round2(d.Low),
			Close:  util.Round2(d.Close),
			Volume: d.Volume,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })

	res := &models.ProviderResult{
		Provider: "fmp",
		Symbol:   resp.Symbol,
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

type fmpQuote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangesPct    float64 `json:"changesPercentage"`
	PreviousClose float64 `json:"previousClose"`
	Exchange      string  `json:"exchange"`
}

// TryQuotes fetches a batch of current quotes by original symbol.
func (f *FMP) TryQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("fmp: no api key")
	}

	var resp []fmpQuote
	err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/quote/%s", f.baseURL, url.PathEscape(strings.Join(symbols, ","))),
		QueryParams: map[string][]string{
			"apikey": {f.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fmp quotes: %w", err)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("fmp quotes: empty result")
	}

	quotes := make([]models.Quote, 0, len(resp))
	for _, q := range resp {
		quotes = append(quotes, models.Quote{
			Symbol:        q.Symbol,
			Name:          q.Name,
			Price:         util.Round2(q.Price),
			Change:        util.Round2(q.Change),
			ChangePercent: util.Round2(q.ChangesPct),
			PreviousClose: util.Round2(q.PreviousClose),
			Exchange:      q.Exchange,
			Provider:      "fmp",
		})
	}
	return quotes, nil
}
