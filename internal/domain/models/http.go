package models

import "time"

// Requests and responses for the HTTP surface. Defined in domain for
// consistency and reuse.

type RegisterDeviceRequest struct {
	PushToken string `json:"pushToken" validate:"required"`
	// required on a slice rejects a nil (absent) field but accepts an
	// explicit empty array, which clears the watchlist.
	Watchlist  []string `json:"watchlist" validate:"required"`
	Platform   string   `json:"platform" default:"unknown"`
	DeviceName string   `json:"deviceName" default:"Unknown"`
}

type RegisterDeviceResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	DeviceID       string `json:"deviceId"`
	WatchlistCount int    `json:"watchlistCount"`
}

type HistoryRequest struct {
	Symbol   string `query:"symbol" validate:"required"`
	Range    string `query:"range" default:"3mo" validate:"oneof=1mo 3mo 6mo 1y"`
	Interval string `query:"interval" default:"1d" validate:"oneof=1d"`
}

type HistoryResponse struct {
	ProviderResult
	Series  []IndicatorPoint `json:"series"`
	Signals []Signal         `json:"signals"`
}

type QuoteRequest struct {
	Symbols string `query:"symbols" validate:"required"`
}

type SearchRequest struct {
	Q string `query:"q" validate:"required"`
}

// DispatchRecord identifies one notification sent during a run.
type DispatchRecord struct {
	Device string     `json:"device"`
	Symbol string     `json:"symbol"`
	Type   SignalType `json:"type"`
	Date   string     `json:"date"`
}

// RunSummary is the operational report of one pipeline run.
type RunSummary struct {
	Success           bool             `json:"success"`
	Message           string           `json:"message,omitempty"`
	CheckedAt         time.Time        `json:"checkedAt"`
	Devices           int              `json:"devices"`
	SymbolsChecked    int              `json:"symbolsChecked"`
	NotificationsSent int              `json:"notificationsSent"`
	SignalsDetected   []DispatchRecord `json:"signalsDetected"`
}
