package api

import (
	"CrossAlert/internal/domain/models"
	"CrossAlert/internal/usecase"
	xhttp "CrossAlert/pkg/http"
	xlogger "CrossAlert/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DevicesHandler exposes device registration.
type DevicesHandler struct {
	logger    *xlogger.Logger
	registrar *usecase.Registrar
}

func NewDevicesHandler(logger *xlogger.Logger, registrar *usecase.Registrar) *DevicesHandler {
	return &DevicesHandler{logger: logger, registrar: registrar}
}

func (h *DevicesHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/devices", h.Register)
}

func (h *DevicesHandler) Register(c echo.Context) error {
	req := &models.RegisterDeviceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.registrar.Register(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("device registration failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
