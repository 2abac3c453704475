package api

import "github.com/labstack/echo/v4"

// Handlers aggregates the API route handlers into one registration unit.
type Handlers struct {
	signals *SignalsHandler
	devices *DevicesHandler
	market  *MarketHandler
	health  *HealthHandler
}

func NewHandlers(signals *SignalsHandler, devices *DevicesHandler, market *MarketHandler, health *HealthHandler) *Handlers {
	return &Handlers{signals: signals, devices: devices, market: market, health: health}
}

func (h *Handlers) RegisterRoutes(e *echo.Echo) {
	h.signals.RegisterRoutes(e)
	h.devices.RegisterRoutes(e)
	h.market.RegisterRoutes(e)
	h.health.RegisterRoutes(e)
}
