package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CrossAlert/internal/domain/models"
	drepo "CrossAlert/internal/domain/repository"
	xlogger "CrossAlert/pkg/logger"
)

// Registrar handles device registration and watchlist updates.
type Registrar struct {
	store  drepo.DeviceStore
	logger *xlogger.Logger
}

func NewRegistrar(store drepo.DeviceStore, logger *xlogger.Logger) *Registrar {
	return &Registrar{store: store, logger: logger}
}

// Register upserts a device record keyed by its push token. Re-registering
// replaces the watchlist and metadata but preserves the notification dedup
// state and the original registration timestamp.
func (r *Registrar) Register(ctx context.Context, req *models.RegisterDeviceRequest) (*models.RegisterDeviceResponse, error) {
	key := models.DeviceKey(req.PushToken)
	now := time.Now().UTC()

	device := &models.Device{
		PushToken:    req.PushToken,
		Watchlist:    req.Watchlist,
		Platform:     req.Platform,
		DeviceName:   req.DeviceName,
		LastSignals:  make(map[string]string),
		RegisteredAt: now,
		UpdatedAt:    now,
	}

	existing, err := r.store.Load(ctx, key)
	switch {
	case err == nil:
		device.LastSignals = existing.LastSignals
		if device.LastSignals == nil {
			device.LastSignals = make(map[string]string)
		}
		device.RegisteredAt = existing.RegisteredAt
	case errors.Is(err, drepo.ErrDeviceNotFound):
		// first registration
	default:
		return nil, fmt.Errorf("load device: %w", err)
	}

	if err := r.store.Save(ctx, key, device); err != nil {
		return nil, fmt.Errorf("save device: %w", err)
	}
	if err := r.store.AddToIndex(ctx, key); err != nil {
		return nil, fmt.Errorf("index device: %w", err)
	}

	r.logger.Info("device registered",
		xlogger.String("device", device.DeviceName),
		xlogger.String("platform", device.Platform),
		xlogger.Int("watchlist", len(device.Watchlist)),
	)

	return &models.RegisterDeviceResponse{
		Success:        true,
		Message:        "device registered",
		DeviceID:       deviceID(key),
		WatchlistCount: len(device.Watchlist),
	}, nil
}

// deviceID is a short public identifier derived from the storage key.
func deviceID(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[len(key)-8:]
}
