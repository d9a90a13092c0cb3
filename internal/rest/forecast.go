package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"marketPulse/business/forecast"
	"marketPulse/domain"
	"marketPulse/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	ForecastHandler struct {
		validate        *validator.Validate
		forecastService ForecastService
		cache           ReportCache
		timeout         time.Duration
	}

	ForecastService interface {
		ForecastRevenue(ctx context.Context, opts forecast.Options) ([]domain.ForecastResult, domain.ForecastSummary, error)
		RecommendSpend(ctx context.Context, opts forecast.Options, targetRoas float64) (domain.AdSpendRecommendation, error)
	}

	ForecastQuery struct {
		Periods         int     `query:"periods" validate:"omitempty,min=1,max=90"`
		PeriodType      string  `query:"period_type" validate:"omitempty,oneof=day week month"`
		ConfidenceLevel float64 `query:"confidence_level" validate:"omitempty,gt=0,lt=1"`
		TargetRoas      float64 `query:"target_roas" validate:"omitempty,gt=0"`
	}

	ForecastReport struct {
		Forecast []domain.ForecastResult `json:"forecast"`
		Summary  domain.ForecastSummary  `json:"summary"`
	}

	EvaluateRequest struct {
		Forecast []domain.ForecastResult  `json:"forecast" validate:"required,min=1"`
		Actuals  []domain.TimeSeriesPoint `json:"actuals" validate:"required,min=1"`
	}
)

func NewForecastHandler(svc ForecastService, cache ReportCache) *ForecastHandler {
	return &ForecastHandler{
		validate:        validator.New(),
		forecastService: svc,
		cache:           cache,
		timeout:         10 * time.Second,
	}
}

func (q ForecastQuery) options() forecast.Options {
	return forecast.Options{
		Periods:         q.Periods,
		PeriodType:      q.PeriodType,
		ConfidenceLevel: q.ConfidenceLevel,
	}
}

func (q ForecastQuery) cacheParams() string {
	return fmt.Sprintf("%d:%s:%g", q.Periods, q.PeriodType, q.ConfidenceLevel)
}

func (h *ForecastHandler) ForecastRevenue(c echo.Context) error {
	defer observe("forecast_revenue")()

	var q ForecastQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	var cached ForecastReport
	if err := h.cache.Get(ctx, "forecast", q.cacheParams(), &cached); err == nil {
		return c.JSON(http.StatusOK, fres.Response.StatusOK(cached))
	}

	results, summary, err := h.forecastService.ForecastRevenue(ctx, q.options())
	if err != nil {
		logger.Error("Failed to forecast revenue", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	report := ForecastReport{Forecast: results, Summary: summary}
	if err := h.cache.Set(ctx, "forecast", q.cacheParams(), report); err != nil {
		logger.Warn("Failed to cache forecast report", "error", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(report))
}

// EvaluateForecast scores a previously issued forecast against realized
// actuals supplied by the caller.
func (h *ForecastHandler) EvaluateForecast(c echo.Context) error {
	defer observe("forecast_evaluate")()

	var req EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	accuracy := forecast.Evaluate(req.Forecast, req.Actuals)
	return c.JSON(http.StatusOK, fres.Response.StatusOK(accuracy))
}

func (h *ForecastHandler) RecommendAdSpend(c echo.Context) error {
	defer observe("forecast_ad_spend")()

	var q ForecastQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	recommendation, err := h.forecastService.RecommendSpend(ctx, q.options(), q.TargetRoas)
	if err != nil {
		logger.Error("Failed to recommend ad spend", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recommendation))
}
