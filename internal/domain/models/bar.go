package models

// Bar is one trading day's OHLCV record for a symbol. Monetary values are
// rounded to 2 decimal places at the provider boundary; bars of a resolved
// series are strictly ordered by ascending date with no duplicates.
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// IndicatorPoint augments a Bar with the trailing 10-day moving average of
// close. MA10 is defined only from the tenth bar onward; HasMA reports it.
type IndicatorPoint struct {
	Bar
	MA10  float64 `json:"ma10,omitempty"`
	HasMA bool    `json:"-"`
}

// ProviderResult is the normalized output of one upstream price-data source.
type ProviderResult struct {
	Provider           string  `json:"provider"`
	Symbol             string  `json:"symbol"`
	Name               string  `json:"name,omitempty"`
	Currency           string  `json:"currency,omitempty"`
	Exchange           string  `json:"exchange,omitempty"`
	RegularMarketPrice float64 `json:"regularMarketPrice,omitempty"`
	PreviousClose      float64 `json:"previousClose,omitempty"`
	History            []Bar   `json:"history"`
}

// Quote is a normalized current-price snapshot for one symbol.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	PreviousClose float64 `json:"previousClose"`
	Currency      string  `json:"currency,omitempty"`
	Exchange      string  `json:"exchange,omitempty"`
	Provider      string  `json:"provider"`
}

// SearchResult is one matched listing from symbol search.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Type     string `json:"type"`
}
