package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"marketPulse/business/anomaly"
	"marketPulse/domain"
	"marketPulse/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	AnomalyHandler struct {
		validate       *validator.Validate
		anomalyService AnomalyService
		timeout        time.Duration
	}

	AnomalyService interface {
		DetectAnomalies(ctx context.Context, metric string, opts anomaly.Options) ([]domain.Anomaly, error)
		DetectCorrelatedAnomalies(ctx context.Context, metrics []string, opts anomaly.Options) ([]domain.CorrelatedAnomaly, error)
		GenerateAlertConfig(ctx context.Context, metric string, opts anomaly.Options) (domain.AlertConfig, error)
		CheckAlert(ctx context.Context, cfg domain.AlertConfig, value float64, date time.Time) (*domain.Anomaly, error)
	}

	AnomalyQuery struct {
		Sensitivity   string `query:"sensitivity" validate:"omitempty,oneof=low medium high"`
		WindowSize    int    `query:"window_size" validate:"omitempty,min=5,max=365"`
		MinDataPoints int    `query:"min_data_points" validate:"omitempty,min=5"`
		SpikesOnly    bool   `query:"spikes_only"`
		DropsOnly     bool   `query:"drops_only"`
	}

	CorrelatedQuery struct {
		AnomalyQuery
		Metrics string `query:"metrics" validate:"required"`
	}

	CheckAlertRequest struct {
		Config domain.AlertConfig `json:"config" validate:"required"`
		Value  float64            `json:"value"`
		Date   time.Time          `json:"date" validate:"required"`
	}

	CheckAlertResponse struct {
		Triggered bool            `json:"triggered"`
		Anomaly   *domain.Anomaly `json:"anomaly,omitempty"`
	}
)

func NewAnomalyHandler(svc AnomalyService) *AnomalyHandler {
	return &AnomalyHandler{
		validate:       validator.New(),
		anomalyService: svc,
		timeout:        10 * time.Second,
	}
}

func (q AnomalyQuery) options() anomaly.Options {
	return anomaly.Options{
		Sensitivity:   q.Sensitivity,
		WindowSize:    q.WindowSize,
		MinDataPoints: q.MinDataPoints,
		DetectSpikes:  q.SpikesOnly || !q.DropsOnly,
		DetectDrops:   q.DropsOnly || !q.SpikesOnly,
	}
}

func (h *AnomalyHandler) DetectAnomalies(c echo.Context) error {
	defer observe("anomalies_detect")()

	metric := c.Param("metric")
	if metric == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "metric is required"})
	}

	var q AnomalyQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	anomalies, err := h.anomalyService.DetectAnomalies(ctx, metric, q.options())
	if err != nil {
		logger.Error("Failed to detect anomalies", "metric", metric, "error", err)
		if strings.HasPrefix(err.Error(), "unknown metric") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(anomalies))
}

func (h *AnomalyHandler) DetectCorrelated(c echo.Context) error {
	defer observe("anomalies_correlated")()

	var q CorrelatedQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	metrics := strings.Split(q.Metrics, ",")
	if len(metrics) < 2 {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "at least two metrics are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	correlated, err := h.anomalyService.DetectCorrelatedAnomalies(ctx, metrics, q.options())
	if err != nil {
		logger.Error("Failed to detect correlated anomalies", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(correlated))
}

func (h *AnomalyHandler) GenerateAlertConfig(c echo.Context) error {
	defer observe("anomalies_alert_config")()

	metric := c.Param("metric")
	if metric == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "metric is required"})
	}

	var q AnomalyQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cfg, err := h.anomalyService.GenerateAlertConfig(ctx, metric, q.options())
	if err != nil {
		logger.Error("Failed to generate alert config", "metric", metric, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cfg))
}

func (h *AnomalyHandler) CheckAlert(c echo.Context) error {
	defer observe("anomalies_check_alert")()

	var req CheckAlertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	flagged, err := h.anomalyService.CheckAlert(ctx, req.Config, req.Value, req.Date)
	if err != nil {
		logger.Error("Failed to check alert", "metric", req.Config.Metric, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(CheckAlertResponse{
		Triggered: flagged != nil,
		Anomaly:   flagged,
	}))
}
