package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"marketPulse/business/cohort"
	"marketPulse/domain"
	"marketPulse/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	CohortHandler struct {
		validate      *validator.Validate
		cohortService CohortService
		cache         ReportCache
		timeout       time.Duration
	}

	CohortService interface {
		AnalyzeCohorts(ctx context.Context, opts cohort.Options) ([]domain.Cohort, error)
		RetentionCurve(ctx context.Context, opts cohort.Options) ([]domain.RetentionCurvePoint, error)
	}

	// ReportCache serves rendered reports for repeated dashboard loads.
	// Handlers treat every cache failure as a miss.
	ReportCache interface {
		Get(ctx context.Context, operation, params string, out any) error
		Set(ctx context.Context, operation, params string, report any) error
	}

	CohortQuery struct {
		GroupBy    string `query:"group_by" validate:"omitempty,oneof=week month quarter"`
		Source     string `query:"source"`
		MaxPeriods int    `query:"max_periods" validate:"omitempty,min=1,max=48"`
	}
)

func NewCohortHandler(svc CohortService, cache ReportCache) *CohortHandler {
	return &CohortHandler{
		validate:      validator.New(),
		cohortService: svc,
		cache:         cache,
		timeout:       10 * time.Second,
	}
}

func (q CohortQuery) options() cohort.Options {
	return cohort.Options{
		GroupBy:    q.GroupBy,
		Source:     q.Source,
		MaxPeriods: q.MaxPeriods,
	}
}

func (q CohortQuery) cacheParams() string {
	return fmt.Sprintf("%s:%s:%d", q.GroupBy, q.Source, q.MaxPeriods)
}

func (h *CohortHandler) AnalyzeCohorts(c echo.Context) error {
	defer observe("cohorts")()

	var q CohortQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	var cached []domain.Cohort
	if err := h.cache.Get(ctx, "cohorts", q.cacheParams(), &cached); err == nil {
		return c.JSON(http.StatusOK, fres.Response.StatusOK(cached))
	}

	cohorts, err := h.cohortService.AnalyzeCohorts(ctx, q.options())
	if err != nil {
		logger.Error("Failed to analyze cohorts", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	if err := h.cache.Set(ctx, "cohorts", q.cacheParams(), cohorts); err != nil {
		logger.Warn("Failed to cache cohort report", "error", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cohorts))
}

func (h *CohortHandler) RetentionCurve(c echo.Context) error {
	defer observe("retention_curve")()

	var q CohortQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	curve, err := h.cohortService.RetentionCurve(ctx, q.options())
	if err != nil {
		logger.Error("Failed to build retention curve", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(curve))
}
