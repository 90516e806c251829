package api

import (
	"errors"
	"time"

	"CoinSight/internal/domain/models"
	"CoinSight/internal/usecase"
	xhttp "CoinSight/pkg/http"
	xlogger "CoinSight/pkg/logger"
	"CoinSight/pkg/queue"

	"github.com/labstack/echo/v4"
)

// PipelineHandler exposes the ingestion, derivation, and forecasting
// operations over HTTP.
type PipelineHandler struct {
	logger    *xlogger.Logger
	queries   *usecase.QueryUseCase
	collector *usecase.HistoryCollector
	derive    *usecase.DeriveUseCase
	forecasts *usecase.ForecastUseCase
	q         queue.Service
}

func NewPipelineHandler(
	logger *xlogger.Logger,
	queries *usecase.QueryUseCase,
	collector *usecase.HistoryCollector,
	derive *usecase.DeriveUseCase,
	forecasts *usecase.ForecastUseCase,
	q queue.Service,
) *PipelineHandler {
	return &PipelineHandler{
		logger:    logger,
		queries:   queries,
		collector: collector,
		derive:    derive,
		forecasts: forecasts,
		q:         q,
	}
}

func (h *PipelineHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/prices", h.Prices)
	g.GET("/indicators", h.Indicators)
	g.GET("/features", h.Features)
	g.GET("/predictions", h.Predictions)
	g.POST("/collect", h.Collect)
	g.POST("/recompute", h.Recompute)
	g.POST("/train", h.Train)
	g.POST("/predict", h.Predict)
	g.POST("/evaluate", h.Evaluate)
}

func (h *PipelineHandler) Prices(c echo.Context) error {
	req := &models.PricesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	to := time.Now().UTC()
	points, err := h.queries.GetPrices(c.Request().Context(), usecase.GetPricesParams{
		InstrumentID: req.Instrument,
		From:         to.AddDate(0, 0, -req.Days),
		To:           to,
	})
	if err != nil {
		h.logger.Error("prices query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.ListResponse(c, points, int64(len(points)))
}

func (h *PipelineHandler) Indicators(c echo.Context) error {
	req := &models.IndicatorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.queries.GetIndicators(c.Request().Context(), req.Instrument, req.Limit)
	if err != nil {
		h.logger.Error("indicators query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PipelineHandler) Features(c echo.Context) error {
	req := &models.FeaturesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.queries.GetFeatures(c.Request().Context(), req.Instrument, req.Limit)
	if err != nil {
		h.logger.Error("features query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PipelineHandler) Predictions(c echo.Context) error {
	req := &models.PredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	preds, err := h.queries.GetPredictions(c.Request().Context(), req.Instrument)
	if err != nil {
		h.logger.Error("predictions query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.ListResponse(c, preds, int64(len(preds)))
}

// Collect enqueues an ingestion job when the queue is available, otherwise
// runs the collection inline.
func (h *PipelineHandler) Collect(c echo.Context) error {
	req := &models.CollectRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	if h.q != nil {
		payload := usecase.CollectHistoryPayload{InstrumentID: req.Instrument, Days: req.Days}
		if err := h.q.PublishMessage(ctx, usecase.TypeCollectHistory, payload); err != nil {
			h.logger.Error("collect enqueue error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, mapDomainError(err))
		}
		return xhttp.SuccessResponse(c, map[string]interface{}{
			"instrument": req.Instrument,
			"queued":     true,
		})
	}

	n, err := h.collector.CollectOne(ctx, req.Instrument, req.Days)
	if err != nil {
		h.logger.Error("collect error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	res, err := h.derive.Recompute(ctx, req.Instrument)
	if err != nil {
		h.logger.Error("recompute error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"instrument":     req.Instrument,
		"points":         n,
		"indicator_rows": res.IndicatorRows,
		"feature_rows":   res.FeatureRows,
	})
}

func (h *PipelineHandler) Recompute(c echo.Context) error {
	req := &models.RecomputeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.derive.Recompute(c.Request().Context(), req.Instrument)
	if err != nil {
		h.logger.Error("recompute error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PipelineHandler) Train(c echo.Context) error {
	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.forecasts.Train(c.Request().Context(), req.Instrument, req.Horizon)
	if err != nil {
		h.logger.Error("train error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *PipelineHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	pred, err := h.forecasts.Predict(c.Request().Context(), req.Instrument, req.Horizon)
	if err != nil {
		h.logger.Error("predict error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, pred)
}

func (h *PipelineHandler) Evaluate(c echo.Context) error {
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.forecasts.Evaluate(c.Request().Context(), req.Instrument)
	if err != nil {
		h.logger.Error("evaluate error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, report)
}

// mapDomainError converts domain sentinel errors into transport errors with
// the right status codes.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, models.ErrInsufficientData):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrModelNotFound):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrUpstreamData):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	default:
		return err
	}
}
