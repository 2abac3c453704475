package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"CrossAlert/internal/domain/models"
	xhttp "CrossAlert/pkg/http"
	"CrossAlert/pkg/util"
)

// browser User-Agent: Yahoo rejects requests without one.
const yahooUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Yahoo is the primary provider: free, no API key, generous limits.
type Yahoo struct {
	client    *xhttp.Client
	chartURL  string
	quoteURL  string
	searchURL string
}

func NewYahoo(client *xhttp.Client, chartURL, quoteURL, searchURL string) *Yahoo {
	return &Yahoo{client: client, chartURL: chartURL, quoteURL: quoteURL, searchURL: searchURL}
}

func (y *Yahoo) Name() string { return "yahoo" }

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				ExchangeName       string  `json:"exchangeName"`
				ShortName          string  `json:"shortName"`
				LongName           string  `json:"longName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// TryHistory fetches daily bars from the Yahoo chart endpoint.
func (y *Yahoo) TryHistory(ctx context.Context, symbol, rng, interval string) (*models.ProviderResult, error) {
	var resp yahooChartResponse
	err := y.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/%s", y.chartURL, url.PathEscape(YahooSymbol(symbol))),
		Headers: map[string]string{"User-Agent": yahooUserAgent},
		QueryParams: map[string][]string{
			"interval": {interval},
			"range":    {rng},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart: %w", err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart: error payload for %s", symbol)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo chart: no result for %s", symbol)
	}

	r := resp.Chart.Result[0]
	q := r.Indicators.Quote[0]

	bars := make([]models.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		bars = append(bars, models.Bar{
			Date:   util.UnixDate(ts),
			Open:   roundAt(q.Open, i),
			High:   roundAt(q.High, i),
			Low:    roundAt(q.Low, i),
			Close:  util.Round2(*q.Close[i]),
			Volume: volumeAt(q.Volume, i),
		})
	}

	m := r.Meta
	prevClose := m.PreviousClose
	if prevClose == 0 {
		prevClose = m.ChartPreviousClose
	}
	name := m.ShortName
	if name == "" {
		name = m.LongName
	}

	return &models.ProviderResult{
		Provider:           "yahoo",
		Name:               name,
		Currency:           m.Currency,
		Exchange:           m.ExchangeName,
		RegularMarketPrice: m.RegularMarketPrice,
		PreviousClose:      util.Round2(prevClose),
		History:            bars,
	}, nil
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			ShortName                  string  `json:"shortName"`
			LongName                   string  `json:"longName"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketChange        float64 `json:"regularMarketChange"`
			RegularMarketChangePct     float64 `json:"regularMarketChangePercent"`
			RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
			Currency                   string  `json:"currency"`
			Exchange                   string  `json:"exchange"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// TryQuotes fetches a batch of current quotes.
func (y *Yahoo) TryQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	mapped := make([]string, len(symbols))
	for i, s := range symbols {
		mapped[i] = YahooSymbol(s)
	}

	var resp yahooQuoteResponse
	err := y.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     y.quoteURL,
		Headers: map[string]string{"User-Agent": yahooUserAgent},
		QueryParams: map[string][]string{
			"symbols": {strings.Join(mapped, ",")},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("yahoo quotes: %w", err)
	}

	quotes := make([]models.Quote, 0, len(resp.QuoteResponse.Result))
	for _, q := range resp.QuoteResponse.Result {
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		quotes = append(quotes, models.Quote{
			Symbol:        q.Symbol,
			Name:          name,
			Price:         util.Round2(q.RegularMarketPrice),
			Change:        util.Round2(q.RegularMarketChange),
			ChangePercent: util.Round2(q.RegularMarketChangePct),
			PreviousClose: util.Round2(q.RegularMarketPreviousClose),
			Currency:      q.Currency,
			Exchange:      q.Exchange,
			Provider:      "yahoo",
		})
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("yahoo quotes: empty result")
	}
	return quotes, nil
}

type yahooSearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		ExchDisp  string `json:"exchDisp"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// Search queries Yahoo symbol search, keeping only equities and ETFs.
func (y *Yahoo) Search(ctx context.Context, q string) ([]models.SearchResult, error) {
	var resp yahooSearchResponse
	err := y.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     y.searchURL,
		Headers: map[string]string{"User-Agent": yahooUserAgent},
		QueryParams: map[string][]string{
			"q":           {q},
			"quotesCount": {"15"},
			"newsCount":   {"0"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("yahoo search: %w", err)
	}

	results := make([]models.SearchResult, 0, len(resp.Quotes))
	for _, r := range resp.Quotes {
		if r.QuoteType != "EQUITY" && r.QuoteType != "ETF" {
			continue
		}
		name := r.ShortName
		if name == "" {
			name = r.LongName
		}
		if name == "" {
			name = r.Symbol
		}
		exchange := r.ExchDisp
		if exchange == "" {
			exchange = r.Exchange
		}
		results = append(results, models.SearchResult{
			Symbol:   r.Symbol,
			Name:     name,
			Exchange: exchange,
			Type:     r.QuoteType,
		})
	}
	return results, nil
}

func roundAt(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return util.Round2(*vals[i])
}

func volumeAt(vals []*int64, i int) int64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}
