package di

import (
	"fmt"

	"CrossAlert/internal/domain/repository"
	"CrossAlert/internal/handler/api"
	internalrepo "CrossAlert/internal/repository"
	"CrossAlert/internal/service/cache"
	"CrossAlert/internal/service/providers"
	"CrossAlert/internal/service/push"
	"CrossAlert/internal/usecase"
	"CrossAlert/pkg/config"
	xhttp "CrossAlert/pkg/http"
	xlogger "CrossAlert/pkg/logger"
	"CrossAlert/pkg/metrics"
	"CrossAlert/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	return xlogger.New(&xlogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideProviderChain builds the market data provider chain:
// Yahoo first, Alpha Vantage second, FMP last.
func ProvideProviderChain(cfg *config.Config, m repository.Metrics, l *xlogger.Logger) *providers.Chain {
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.Providers.Timeout))

	yahoo := providers.NewYahoo(client,
		cfg.Providers.Yahoo.ChartURL,
		cfg.Providers.Yahoo.QuoteURL,
		cfg.Providers.Yahoo.SearchURL,
	)
	av := providers.NewAlphaVantage(client, cfg.Providers.AlphaVantage.BaseURL, cfg.Providers.AlphaVantage.APIKey)
	fmp := providers.NewFMP(client, cfg.Providers.FMP.BaseURL, cfg.Providers.FMP.APIKey)

	return providers.NewChain(yahoo, av, fmp, m, l,
		providers.WithMaxRPS(cfg.Providers.MaxRPS),
	)
}

// ProvideDeviceStore creates the configured device store backend.
func ProvideDeviceStore(cfg *config.Config) (repository.DeviceStore, error) {
	switch cfg.Store.Backend {
	case "kvrest":
		client := xhttp.NewClient(xhttp.WithTimeout(cfg.Store.KVRest.Timeout))
		return internalrepo.NewKVDeviceStore(client, cfg.Store.KVRest.URL, cfg.Store.KVRest.Token), nil
	case "redis":
		return internalrepo.NewRedisDeviceStore(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// ProvideNotifier creates the Expo push client.
func ProvideNotifier(cfg *config.Config) repository.Notifier {
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.Push.Timeout))
	return push.New(client, cfg.Push.URL)
}

// ProvideChecker creates the signal check pipeline.
func ProvideChecker(
	store repository.DeviceStore,
	chain *providers.Chain,
	notifier repository.Notifier,
	m repository.Metrics,
	l *xlogger.Logger,
	cfg *config.Config,
) *usecase.SignalChecker {
	return usecase.NewSignalChecker(store, chain, notifier, m, l,
		cfg.Checker.BatchSize, cfg.Checker.HistoryRange)
}

// ProvideRegistrar creates the device registration use case.
func ProvideRegistrar(store repository.DeviceStore, l *xlogger.Logger) *usecase.Registrar {
	return usecase.NewRegistrar(store, l)
}

// ProvideMarketService creates the read-side market service with its cache.
func ProvideMarketService(chain *providers.Chain, cfg *config.Config) *usecase.MarketService {
	return usecase.NewMarketService(chain, chain, chain, cache.NewTTLCache(), cfg.Providers.CacheTTL)
}

// ProvideHandlers bundles the HTTP route handlers.
func ProvideHandlers(
	cfg *config.Config,
	l *xlogger.Logger,
	checker *usecase.SignalChecker,
	registrar *usecase.Registrar,
	market *usecase.MarketService,
	store repository.DeviceStore,
) *api.Handlers {
	return api.NewHandlers(
		api.NewSignalsHandler(l, checker, cfg.Checker.CronSecret),
		api.NewDevicesHandler(l, registrar),
		api.NewMarketHandler(l, market),
		api.NewHealthHandler(store),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *xlogger.Logger,
	handlers *api.Handlers,
	checker *usecase.SignalChecker,
	store repository.DeviceStore,
) *server.App {
	return server.New(cfg, l, handlers, checker, store)
}
