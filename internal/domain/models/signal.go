package models

// SignalType classifies a crossover transition.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
)

// Signal is a detected crossover event. The symbol+date+type triple is its
// identity; a signal with the same key is never notified twice to a device.
type Signal struct {
	Symbol string     `json:"symbol"`
	Date   string     `json:"date"`
	Type   SignalType `json:"type"`
	Price  float64    `json:"price"`
	MA10   float64    `json:"ma10"`
	Reason string     `json:"reason"`
}

// Key returns the signal identity key used for per-device deduplication.
func (s Signal) Key() string {
	return s.Symbol + "-" + s.Date + "-" + string(s.Type)
}

// DeliveryResult is the outcome of one push delivery attempt. Failures are
// reported here, never raised to the caller.
type DeliveryResult struct {
	Delivered bool   `json:"delivered"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}
