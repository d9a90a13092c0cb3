package rest

import (
	"context"
	"net/http"
	"time"

	"marketPulse/business/budget"
	"marketPulse/domain"
	"marketPulse/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	BudgetHandler struct {
		validate      *validator.Validate
		budgetService BudgetService
		timeout       time.Duration
	}

	BudgetService interface {
		OptimizeBudget(ctx context.Context, opts budget.Options) (domain.BudgetOptimizationResult, error)
		RecommendBidAdjustments(ctx context.Context, targetCPA float64) ([]domain.BidAdjustment, error)
	}

	OptimizeBudgetRequest struct {
		TotalBudget              float64 `json:"total_budget" validate:"required,gt=0"`
		TargetRoas               float64 `json:"target_roas" validate:"omitempty,gt=0"`
		MinCampaignBudget        float64 `json:"min_campaign_budget" validate:"omitempty,gt=0"`
		MaxCampaignBudgetPercent float64 `json:"max_campaign_budget_percent" validate:"omitempty,gt=0,lte=1"`
		OptimizeFor              string  `json:"optimize_for" validate:"omitempty,oneof=revenue roas balanced"`
	}

	BidAdjustmentQuery struct {
		TargetCPA float64 `query:"target_cpa" validate:"omitempty,gt=0"`
	}
)

func NewBudgetHandler(svc BudgetService) *BudgetHandler {
	return &BudgetHandler{
		validate:      validator.New(),
		budgetService: svc,
		timeout:       10 * time.Second,
	}
}

func (h *BudgetHandler) OptimizeBudget(c echo.Context) error {
	defer observe("budget_optimize")()

	var req OptimizeBudgetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.budgetService.OptimizeBudget(ctx, budget.Options{
		TotalBudget:              req.TotalBudget,
		TargetRoas:               req.TargetRoas,
		MinCampaignBudget:        req.MinCampaignBudget,
		MaxCampaignBudgetPercent: req.MaxCampaignBudgetPercent,
		OptimizeFor:              req.OptimizeFor,
	})
	if err != nil {
		logger.Error("Failed to optimize budget", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

func (h *BudgetHandler) RecommendBidAdjustments(c echo.Context) error {
	defer observe("budget_bid_adjustments")()

	var q BidAdjustmentQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	adjustments, err := h.budgetService.RecommendBidAdjustments(ctx, q.TargetCPA)
	if err != nil {
		logger.Error("Failed to recommend bid adjustments", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(adjustments))
}
