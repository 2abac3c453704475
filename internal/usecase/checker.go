package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CrossAlert/internal/domain/models"
	drepo "CrossAlert/internal/domain/repository"
	xlogger "CrossAlert/pkg/logger"
)

// SignalChecker runs one pipeline invocation: enumerate devices, resolve
// bars for the union of watched symbols, detect crossovers, dedup against
// each device's last-notified state, dispatch pushes, and persist. Each
// run is idempotent: with no new upstream data a second run sends nothing.
type SignalChecker struct {
	store    drepo.DeviceStore
	source   drepo.HistorySource
	notifier drepo.Notifier
	metrics  drepo.Metrics
	logger   *xlogger.Logger

	batchSize    int
	historyRange string
}

func NewSignalChecker(
	store drepo.DeviceStore,
	source drepo.HistorySource,
	notifier drepo.Notifier,
	metrics drepo.Metrics,
	logger *xlogger.Logger,
	batchSize int,
	historyRange string,
) *SignalChecker {
	if batchSize <= 0 {
		batchSize = 5
	}
	if historyRange == "" {
		historyRange = "1mo"
	}
	return &SignalChecker{
		store:        store,
		source:       source,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger,
		batchSize:    batchSize,
		historyRange: historyRange,
	}
}

type loadedDevice struct {
	key    string
	device *models.Device
}

// stagedSignal pairs a new signal with the display name resolved for its
// symbol.
type stagedSignal struct {
	signal models.Signal
	name   string
}

// Run executes the pipeline to completion. Expected failures (provider
// outage, delivery outage, per-device persistence trouble) are recovered
// locally and folded into the summary; only store enumeration failure is a
// run-level error.
func (c *SignalChecker) Run(ctx context.Context) (*models.RunSummary, error) {
	start := time.Now()
	summary := &models.RunSummary{
		Success:         true,
		CheckedAt:       start.UTC(),
		SignalsDetected: []models.DispatchRecord{},
	}
	defer func() {
		c.metrics.RecordLatency("check_signals", time.Since(start).Seconds())
	}()

	keys, err := c.store.ListDeviceKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	if len(keys) == 0 {
		summary.Message = "no registered devices"
		return summary, nil
	}

	devices := c.loadDevices(ctx, keys)
	summary.Devices = len(devices)

	symbols := watchedSymbols(devices)
	if len(symbols) == 0 {
		summary.Message = "no symbols to check"
		return summary, nil
	}
	summary.SymbolsChecked = len(symbols)

	seriesBySymbol, namesBySymbol := c.fetchSeries(ctx, symbols)

	for _, ld := range devices {
		staged := c.stageSignals(ld.device, seriesBySymbol, namesBySymbol)
		if len(staged) == 0 {
			continue
		}
		c.dispatch(ctx, ld, staged, summary)
	}

	return summary, nil
}

// loadDevices reads device records one by one. Devices lacking a push token
// or watchlist are excluded silently; a read failure skips that device and
// the run continues.
func (c *SignalChecker) loadDevices(ctx context.Context, keys []string) []loadedDevice {
	devices := make([]loadedDevice, 0, len(keys))
	for _, key := range keys {
		d, err := c.store.Load(ctx, key)
		if err != nil {
			c.metrics.RecordError("device_load")
			c.logger.Warn("device load failed", xlogger.String("key", key), xlogger.Error(err))
			continue
		}
		if !d.Notifiable() {
			continue
		}
		devices = append(devices, loadedDevice{key: key, device: d})
	}
	return devices
}

// watchedSymbols unions all watchlists, deduplicated, in first-seen order.
func watchedSymbols(devices []loadedDevice) []string {
	seen := make(map[string]struct{})
	var symbols []string
	for _, ld := range devices {
		for _, s := range ld.device.Watchlist {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// fetchSeries resolves bars for every unique symbol in fixed-size batches:
// batches run sequentially, symbols within a batch concurrently, to stay
// gentle on upstream providers. Symbols no provider could serve are simply
// absent from the result maps.
func (c *SignalChecker) fetchSeries(ctx context.Context, symbols []string) (map[string][]models.IndicatorPoint, map[string]string) {
	series := make(map[string][]models.IndicatorPoint, len(symbols))
	names := make(map[string]string, len(symbols))
	var mu sync.Mutex

	for i := 0; i < len(symbols); i += c.batchSize {
		end := i + c.batchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		batch := symbols[i:end]

		var wg sync.WaitGroup
		for _, sym := range batch {
			wg.Add(1)
			go func(sym string) {
				defer wg.Done()
				res, err := c.source.ResolveHistory(ctx, sym, c.historyRange, "1d")
				if err != nil {
					c.logger.Warn("symbol unavailable this run", xlogger.String("symbol", sym), xlogger.Error(err))
					return
				}
				pts := ComputeIndicator(res.History)
				if n := len(res.History); n > 0 {
					c.metrics.RecordLastClose(sym, res.History[n-1].Close)
				}
				name := res.Name
				if name == "" {
					name = sym
				}
				mu.Lock()
				series[sym] = pts
				names[sym] = name
				mu.Unlock()
			}(sym)
		}
		wg.Wait()
	}

	return series, names
}

// stageSignals walks the device's watchlist and collects signals that are
// new per the dedup check: a signal is suppressed only when its exact
// identity key was already recorded for that symbol on that device.
func (c *SignalChecker) stageSignals(d *models.Device, series map[string][]models.IndicatorPoint, names map[string]string) []stagedSignal {
	var staged []stagedSignal
	for _, sym := range d.Watchlist {
		pts, ok := series[sym]
		if !ok {
			continue
		}
		sig := DetectLatest(pts)
		if sig == nil {
			continue
		}
		sig.Symbol = sym
		if !isNewSignal(d, sym, *sig) {
			continue
		}
		staged = append(staged, stagedSignal{signal: *sig, name: names[sym]})
	}
	return staged
}

// isNewSignal reports whether the signal's identity key differs from the
// last one notified for this symbol on this device.
func isNewSignal(d *models.Device, symbol string, sig models.Signal) bool {
	return d.LastSignals[symbol] != sig.Key()
}

// dispatch sends staged notifications sequentially, records dedup state for
// every staged signal regardless of individual delivery outcome, then
// persists the device once. A persistence failure here loses this run's
// dedup update for the device but never aborts the run.
func (c *SignalChecker) dispatch(ctx context.Context, ld loadedDevice, staged []stagedSignal, summary *models.RunSummary) {
	d := ld.device
	if d.LastSignals == nil {
		d.LastSignals = make(map[string]string)
	}

	for _, st := range staged {
		sig := st.signal
		title, body := formatNotification(st)
		result := c.notifier.Send(ctx, d.PushToken, title, body, map[string]interface{}{
			"symbol": sig.Symbol,
			"type":   string(sig.Type),
			"price":  sig.Price,
			"date":   sig.Date,
		})
		if result.Delivered {
			c.metrics.RecordNotification("sent")
		} else {
			c.metrics.RecordNotification("failed")
			c.logger.Warn("push delivery failed",
				xlogger.String("symbol", sig.Symbol),
				xlogger.String("device", d.DeviceName),
				xlogger.String("error", result.Error),
			)
		}
		c.metrics.RecordSignal(string(sig.Type))

		// The crossover was detected and staged, so the dedup key advances
		// even when delivery was not confirmed.
		d.LastSignals[sig.Symbol] = sig.Key()

		summary.NotificationsSent++
		summary.SignalsDetected = append(summary.SignalsDetected, models.DispatchRecord{
			Device: d.DeviceName,
			Symbol: sig.Symbol,
			Type:   sig.Type,
			Date:   sig.Date,
		})
	}

	d.UpdatedAt = time.Now().UTC()
	if err := c.store.Save(ctx, ld.key, d); err != nil {
		c.metrics.RecordError("device_save")
		c.logger.Error("device save failed", xlogger.String("key", ld.key), xlogger.Error(err))
	}
}

func formatNotification(st stagedSignal) (title, body string) {
	sig := st.signal
	emoji, action := "📈", "매수"
	if sig.Type == models.SignalSell {
		emoji, action = "📉", "매도"
	}
	title = fmt.Sprintf("%s %s %s 신호!", emoji, sig.Symbol, action)
	body = fmt.Sprintf("%s\n%s\n현재가: %.2f | MA10: %.2f", st.name, sig.Reason, sig.Price, sig.MA10)
	return title, body
}
