package providers

import (
	"context"

	"CrossAlert/internal/domain/models"
	drepo "CrossAlert/internal/domain/repository"
	"CrossAlert/internal/service/ratelimit"
	xlogger "CrossAlert/pkg/logger"
	"CrossAlert/pkg/util"
)

// Provider is one upstream history source in the fallback chain.
type Provider interface {
	Name() string
	TryHistory(ctx context.Context, symbol, rng, interval string) (*models.ProviderResult, error)
}

// avQuoteCap bounds the one-at-a-time Alpha Vantage quote fallback; its free
// tier cannot absorb a full watchlist.
const avQuoteCap = 5

// Chain resolves history and quotes with strict ordered fallback: the first
// provider returning a structurally valid, non-empty series wins and the
// rest are not attempted. A failed attempt is never retried within the same
// call; the next pipeline run retries naturally.
type Chain struct {
	yahoo     *Yahoo
	av        *AlphaVantage
	fmp       *FMP
	providers []Provider

	limiter *ratelimit.Limiter
	maxRPS  float64
	metrics drepo.Metrics
	logger  *xlogger.Logger
}

// ChainOption configures Chain.
type ChainOption func(*Chain)

// WithMaxRPS throttles per-provider request rate. Zero disables throttling.
func WithMaxRPS(rps float64) ChainOption {
	return func(c *Chain) { c.maxRPS = rps }
}

func NewChain(yahoo *Yahoo, av *AlphaVantage, fmp *FMP, metrics drepo.Metrics, logger *xlogger.Logger, opts ...ChainOption) *Chain {
	c := &Chain{
		yahoo:     yahoo,
		av:        av,
		fmp:       fmp,
		providers: []Provider{yahoo, av, fmp},
		limiter:   ratelimit.New(),
		metrics:   metrics,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveHistory tries each provider in priority order and returns the first
// valid normalized result, or ErrUnavailable when all fail.
func (c *Chain) ResolveHistory(ctx context.Context, symbol, rng, interval string) (*models.ProviderResult, error) {
	for _, p := range c.providers {
		if c.maxRPS > 0 && !c.limiter.Allow(p.Name(), c.maxRPS, c.maxRPS) {
			c.metrics.RecordProviderAttempt(p.Name(), "throttled")
			continue
		}

		res, err := p.TryHistory(ctx, symbol, rng, interval)
		if err == nil {
			err = validateSeries(res.History)
		}
		if err != nil {
			c.metrics.RecordProviderAttempt(p.Name(), "failed")
			c.logger.Debug("provider failed",
				xlogger.String("provider", p.Name()),
				xlogger.String("symbol", symbol),
				xlogger.Error(err),
			)
			continue
		}

		c.metrics.RecordProviderAttempt(p.Name(), "ok")
		res.Symbol = symbol
		return res, nil
	}
	return nil, drepo.ErrUnavailable
}

// ResolveQuotes applies the same fallback discipline to current quotes:
// Yahoo batch, then FMP batch, then Alpha Vantage one at a time capped at
// avQuoteCap symbols.
func (c *Chain) ResolveQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	if quotes, err := c.yahoo.TryQuotes(ctx, symbols); err == nil {
		c.metrics.RecordProviderAttempt("yahoo", "ok")
		return quotes, nil
	} else {
		c.metrics.RecordProviderAttempt("yahoo", "failed")
		c.logger.Debug("yahoo quotes failed", xlogger.Error(err))
	}

	if quotes, err := c.fmp.TryQuotes(ctx, symbols); err == nil {
		c.metrics.RecordProviderAttempt("fmp", "ok")
		return quotes, nil
	} else {
		c.metrics.RecordProviderAttempt("fmp", "failed")
		c.logger.Debug("fmp quotes failed", xlogger.Error(err))
	}

	capped := symbols
	if len(capped) > avQuoteCap {
		capped = capped[:avQuoteCap]
	}
	quotes := make([]models.Quote, 0, len(capped))
	for _, sym := range capped {
		q, err := c.av.TryQuote(ctx, sym)
		if err != nil {
			c.metrics.RecordProviderAttempt("alphavantage", "failed")
			c.logger.Debug("alphavantage quote failed",
				xlogger.String("symbol", sym), xlogger.Error(err))
			continue
		}
		c.metrics.RecordProviderAttempt("alphavantage", "ok")
		quotes = append(quotes, *q)
	}
	if len(quotes) == 0 {
		return nil, drepo.ErrUnavailable
	}
	return quotes, nil
}

// Search proxies symbol search from the primary provider only.
func (c *Chain) Search(ctx context.Context, q string) ([]models.SearchResult, error) {
	return c.yahoo.Search(ctx, q)
}

// validateSeries rejects series that are empty, carry malformed dates, or
// are not strictly ascending by date; such a result counts as a failed
// provider attempt.
func validateSeries(bars []models.Bar) error {
	if len(bars) == 0 {
		return errEmptySeries
	}
	for i := range bars {
		if !util.ValidDate(bars[i].Date) {
			return errValidate("malformed bar date " + bars[i].Date)
		}
		if i > 0 && bars[i].Date <= bars[i-1].Date {
			return errUnorderedSeries
		}
	}
	return nil
}

var (
	errEmptySeries     = errValidate("empty series")
	errUnorderedSeries = errValidate("series dates not strictly ascending")
)

type errValidate string

func (e errValidate) Error() string { return string(e) }

var (
	_ drepo.HistorySource  = (*Chain)(nil)
	_ drepo.QuoteSource    = (*Chain)(nil)
	_ drepo.SymbolSearcher = (*Chain)(nil)
)
