package api

import (
	"time"

	drepo "CoinSight/internal/domain/repository"
	xhttp "CoinSight/pkg/http"
	xlogger "CoinSight/pkg/logger"
	"CoinSight/pkg/util"

	"github.com/labstack/echo/v4"
)

// StreamStatus reports realtime stream connectivity.
type StreamStatus interface {
	IsConnected() bool
}

// SystemHandler serves health and diagnostics endpoints.
type SystemHandler struct {
	logger    *xlogger.Logger
	collector *xlogger.Collector
	prices    drepo.PriceStore
	stream    StreamStatus
	startedAt time.Time
}

func NewSystemHandler(logger *xlogger.Logger, collector *xlogger.Collector, prices drepo.PriceStore, stream StreamStatus) *SystemHandler {
	return &SystemHandler{
		logger:    logger,
		collector: collector,
		prices:    prices,
		stream:    stream,
		startedAt: time.Now(),
	}
}

func (h *SystemHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/health", h.Health)
	e.GET("/api/system/logs", h.Logs)
}

func (h *SystemHandler) Health(c echo.Context) error {
	status := map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	}

	if err := h.prices.Health(c.Request().Context()); err != nil {
		h.logger.Warn("price store unhealthy", xlogger.Error(err))
		status["status"] = "degraded"
		status["price_store"] = "down"
	} else {
		status["price_store"] = "up"
	}

	if h.stream != nil {
		status["stream_connected"] = h.stream.IsConnected()
	}

	return xhttp.SuccessResponse(c, status)
}

// Logs returns recent in-memory log records, newest first.
func (h *SystemHandler) Logs(c echo.Context) error {
	if h.collector == nil {
		return xhttp.SuccessResponse(c, map[string]interface{}{"records": []interface{}{}})
	}

	limit := util.ParseIntDefault(c.QueryParam("limit"), 100)
	records := h.collector.Recent(limit)

	return xhttp.SuccessResponse(c, map[string]interface{}{
		"records":  records,
		"by_level": h.collector.CountByLevel(),
	})
}
