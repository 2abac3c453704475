package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"CrossAlert/internal/domain/models"
	drepo "CrossAlert/internal/domain/repository"
	"CrossAlert/internal/service/cache"
)

// MarketService serves the read-only market endpoints. Responses are cached
// in-process for a short TTL so chart polling does not hammer the provider
// chain.
type MarketService struct {
	history  drepo.HistorySource
	quotes   drepo.QuoteSource
	searcher drepo.SymbolSearcher
	cache    *cache.TTLCache
	ttl      time.Duration
}

func NewMarketService(
	history drepo.HistorySource,
	quotes drepo.QuoteSource,
	searcher drepo.SymbolSearcher,
	ttlCache *cache.TTLCache,
	ttl time.Duration,
) *MarketService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &MarketService{
		history:  history,
		quotes:   quotes,
		searcher: searcher,
		cache:    ttlCache,
		ttl:      ttl,
	}
}

// History resolves bar history for one symbol and enriches it with the
// 10-day moving average and every crossover found in the range.
func (s *MarketService) History(ctx context.Context, req *models.HistoryRequest) (*models.HistoryResponse, error) {
	key := fmt.Sprintf("history:%s:%s:%s", req.Symbol, req.Range, req.Interval)
	if v, ok := s.cache.Get(key); ok {
		return v.(*models.HistoryResponse), nil
	}

	res, err := s.history.ResolveHistory(ctx, req.Symbol, req.Range, req.Interval)
	if err != nil {
		return nil, err
	}

	series := ComputeIndicator(res.History)
	signals := DetectAll(series)
	for i := range signals {
		signals[i].Symbol = req.Symbol
	}
	if signals == nil {
		signals = []models.Signal{}
	}

	resp := &models.HistoryResponse{
		ProviderResult: *res,
		Series:         series,
		Signals:        signals,
	}
	s.cache.Set(key, resp, s.ttl)
	return resp, nil
}

// Quotes resolves current quotes for a comma-separated symbol list. A chain
// that could serve none of the symbols yields an empty slice, not an error,
// so the watchlist screen degrades gracefully.
func (s *MarketService) Quotes(ctx context.Context, symbolsCSV string) ([]models.Quote, error) {
	symbols := splitSymbols(symbolsCSV)
	if len(symbols) == 0 {
		return []models.Quote{}, nil
	}

	key := "quotes:" + strings.Join(symbols, ",")
	if v, ok := s.cache.Get(key); ok {
		return v.([]models.Quote), nil
	}

	quotes, err := s.quotes.ResolveQuotes(ctx, symbols)
	if err != nil {
		if errors.Is(err, drepo.ErrUnavailable) {
			return []models.Quote{}, nil
		}
		return nil, err
	}
	if quotes == nil {
		quotes = []models.Quote{}
	}
	s.cache.Set(key, quotes, s.ttl)
	return quotes, nil
}

// Search looks up listings matching the query.
func (s *MarketService) Search(ctx context.Context, q string) ([]models.SearchResult, error) {
	key := "search:" + strings.ToLower(strings.TrimSpace(q))
	if v, ok := s.cache.Get(key); ok {
		return v.([]models.SearchResult), nil
	}

	results, err := s.searcher.Search(ctx, q)
	if err != nil {
		if errors.Is(err, drepo.ErrUnavailable) {
			return []models.SearchResult{}, nil
		}
		return nil, err
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	s.cache.Set(key, results, s.ttl)
	return results, nil
}

func splitSymbols(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{})
	for _, p := range parts {
		s := strings.ToUpper(strings.TrimSpace(p))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
