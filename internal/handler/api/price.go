package api

import (
	"time"

	"AstroPull/internal/domain/models"
	svcmetrics "AstroPull/internal/service/metrics"
	"AstroPull/internal/usecase"
	xhttp "AstroPull/pkg/http"
	applogger "AstroPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PriceHandler exposes historical price lookups.
type PriceHandler struct {
	log    *applogger.Logger
	lookup *usecase.PriceLookup
}

func NewPriceHandler(log *applogger.Logger, lookup *usecase.PriceLookup) *PriceHandler {
	svcmetrics.Register()
	return &PriceHandler{log: log, lookup: lookup}
}

func (h *PriceHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/price", h.Price)
}

// Price returns the USD price of ?id= on the UTC day of unix second ?ts=.
func (h *PriceHandler) Price(c echo.Context) error {
	start := time.Now()
	req := &models.PriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	q, err := h.lookup.USD(c.Request().Context(), req.ID, req.TS)
	if err != nil {
		appErr := toAppError(err)
		svcmetrics.Observe("price", start, appErr.Code)
		h.log.Warn("price lookup failed", applogger.String("id", req.ID), applogger.Int64("ts", req.TS), applogger.Error(err))
		return appErr
	}
	svcmetrics.Observe("price", start, "")
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.SuccessResponse(c, q)
}
