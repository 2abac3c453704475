package repository

import (
	"context"
	"errors"

	"CrossAlert/internal/domain/models"
)

// ErrDeviceNotFound is returned by DeviceStore.Load for unknown keys.
var ErrDeviceNotFound = errors.New("device not found")

// ErrUnavailable is returned by HistorySource and QuoteSource when every
// provider in the chain failed for this call. Callers skip the symbol for
// the current run; the next run retries naturally.
var ErrUnavailable = errors.New("no provider could serve the request")

// DeviceStore persists Device records keyed by their derived device key and
// maintains the index set the pipeline enumerates. Writes are whole-record
// overwrites; concurrent writers are not coordinated (last-writer-wins).
type DeviceStore interface {
	Load(ctx context.Context, key string) (*models.Device, error)
	Save(ctx context.Context, key string, d *models.Device) error
	AddToIndex(ctx context.Context, key string) error
	ListDeviceKeys(ctx context.Context) ([]string, error)
	Health(ctx context.Context) error
	Close() error
}

// HistorySource resolves daily bar history for one symbol.
type HistorySource interface {
	ResolveHistory(ctx context.Context, symbol, rng, interval string) (*models.ProviderResult, error)
}

// QuoteSource resolves current quotes for a batch of symbols.
type QuoteSource interface {
	ResolveQuotes(ctx context.Context, symbols []string) ([]models.Quote, error)
}

// SymbolSearcher searches listings by name or symbol.
type SymbolSearcher interface {
	Search(ctx context.Context, q string) ([]models.SearchResult, error)
}

// Notifier delivers one push notification per call. A failed delivery is a
// DeliveryResult, never an error that aborts the caller's loop.
type Notifier interface {
	Send(ctx context.Context, pushToken, title, body string, data map[string]interface{}) models.DeliveryResult
}

type Metrics interface {
	RecordProviderAttempt(provider, outcome string)
	RecordNotification(status string)
	RecordSignal(signalType string)
	RecordError(kind string)
	RecordLastClose(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
