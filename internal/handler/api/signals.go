package api

import (
	"crypto/subtle"
	"strings"
	"time"

	"CrossAlert/internal/domain/models"
	"CrossAlert/internal/usecase"
	xhttp "CrossAlert/pkg/http"
	xlogger "CrossAlert/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SignalsHandler exposes the pipeline trigger endpoint. It is meant to be
// hit by an external cron, so the only auth is a shared secret.
type SignalsHandler struct {
	logger     *xlogger.Logger
	checker    *usecase.SignalChecker
	cronSecret string
}

func NewSignalsHandler(logger *xlogger.Logger, checker *usecase.SignalChecker, cronSecret string) *SignalsHandler {
	return &SignalsHandler{logger: logger, checker: checker, cronSecret: cronSecret}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/check-signals", h.CheckSignals)
}

func (h *SignalsHandler) CheckSignals(c echo.Context) error {
	if !h.authorized(c) {
		h.logger.Warn("check-signals rejected", xlogger.String("remote", c.RealIP()))
		return xhttp.UnauthorizedResponse(c, &models.RunSummary{
			Success:   false,
			Message:   "unauthorized",
			CheckedAt: time.Now().UTC(),
		})
	}

	summary, err := h.checker.Run(c.Request().Context())
	if err != nil {
		h.logger.Error("signal check run failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	h.logger.Info("signal check completed",
		xlogger.Int("devices", summary.Devices),
		xlogger.Int("symbols", summary.SymbolsChecked),
		xlogger.Int("notifications", summary.NotificationsSent),
	)
	return xhttp.SuccessResponse(c, summary)
}

// authorized accepts the secret as a bearer token or a query parameter,
// the latter for schedulers that cannot set headers. Either credential
// matching on its own authorizes the request.
func (h *SignalsHandler) authorized(c echo.Context) bool {
	if h.cronSecret == "" {
		return true
	}
	secret := []byte(h.cronSecret)
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		if subtle.ConstantTimeCompare([]byte(strings.TrimPrefix(auth, "Bearer ")), secret) == 1 {
			return true
		}
	}
	return subtle.ConstantTimeCompare([]byte(c.QueryParam("key")), secret) == 1
}
