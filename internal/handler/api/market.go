package api

import (
	"errors"

	"CrossAlert/internal/domain/models"
	drepo "CrossAlert/internal/domain/repository"
	"CrossAlert/internal/usecase"
	xhttp "CrossAlert/pkg/http"
	xlogger "CrossAlert/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketHandler exposes the read-only chart endpoints backing the app UI.
type MarketHandler struct {
	logger *xlogger.Logger
	market *usecase.MarketService
}

func NewMarketHandler(logger *xlogger.Logger, market *usecase.MarketService) *MarketHandler {
	return &MarketHandler{logger: logger, market: market}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/history", h.History)
	g.GET("/quote", h.Quote)
	g.GET("/search", h.Search)
}

func (h *MarketHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.market.History(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, drepo.ErrUnavailable) {
			h.logger.Warn("history unavailable", xlogger.String("symbol", req.Symbol))
			return xhttp.BadGatewayResponse(c, "no data source available for "+req.Symbol)
		}
		h.logger.Error("history error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketHandler) Quote(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	quotes, err := h.market.Quotes(c.Request().Context(), req.Symbols)
	if err != nil {
		h.logger.Error("quote error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=30")
	return xhttp.SuccessResponse(c, quotes)
}

func (h *MarketHandler) Search(c echo.Context) error {
	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	results, err := h.market.Search(c.Request().Context(), req.Q)
	if err != nil {
		h.logger.Error("search error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return xhttp.SuccessResponse(c, results)
}
