package rest

import (
	"context"
	"net/http"
	"time"

	"marketPulse/business/ltv"
	"marketPulse/domain"
	"marketPulse/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	LTVHandler struct {
		validate   *validator.Validate
		ltvService LTVService
		timeout    time.Duration
	}

	LTVService interface {
		PredictLTV(ctx context.Context, opts ltv.Options) ([]domain.LTVPrediction, error)
		LTVBySource(ctx context.Context, opts ltv.Options) ([]domain.SourceLTV, error)
		SegmentDistribution(ctx context.Context, opts ltv.Options) ([]domain.SegmentStat, error)
	}

	LTVQuery struct {
		PredictionMonths  int     `query:"prediction_months" validate:"omitempty,min=1,max=60"`
		DiscountRate      float64 `query:"discount_rate" validate:"omitempty,gt=0,lt=1"`
		AvgLifespanMonths int     `query:"avg_lifespan_months" validate:"omitempty,min=1,max=120"`
	}
)

func NewLTVHandler(svc LTVService) *LTVHandler {
	return &LTVHandler{
		validate:   validator.New(),
		ltvService: svc,
		timeout:    10 * time.Second,
	}
}

func (q LTVQuery) options() ltv.Options {
	opts := ltv.DefaultOptions()
	if q.PredictionMonths > 0 {
		opts.PredictionMonths = q.PredictionMonths
	}
	if q.DiscountRate > 0 {
		opts.DiscountRate = q.DiscountRate
	}
	if q.AvgLifespanMonths > 0 {
		opts.AvgLifespanMonths = q.AvgLifespanMonths
	}
	return opts
}

func (h *LTVHandler) bindQuery(c echo.Context) (LTVQuery, error) {
	var q LTVQuery
	if err := c.Bind(&q); err != nil {
		return q, err
	}
	if err := h.validate.Struct(&q); err != nil {
		return q, err
	}
	return q, nil
}

func (h *LTVHandler) PredictLTV(c echo.Context) error {
	defer observe("ltv_predictions")()

	q, err := h.bindQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	predictions, err := h.ltvService.PredictLTV(ctx, q.options())
	if err != nil {
		logger.Error("Failed to predict LTV", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(predictions))
}

func (h *LTVHandler) LTVBySource(c echo.Context) error {
	defer observe("ltv_by_source")()

	q, err := h.bindQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	sources, err := h.ltvService.LTVBySource(ctx, q.options())
	if err != nil {
		logger.Error("Failed to compute LTV by source", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sources))
}

func (h *LTVHandler) SegmentDistribution(c echo.Context) error {
	defer observe("ltv_segments")()

	q, err := h.bindQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	segments, err := h.ltvService.SegmentDistribution(ctx, q.options())
	if err != nil {
		logger.Error("Failed to compute segment distribution", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(segments))
}
