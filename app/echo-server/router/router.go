package router

import (
	"marketPulse/internal/middleware"
	"marketPulse/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetCohortRoutes(api *echo.Group, handler *rest.CohortHandler) {
	cohorts := api.Group("/cohorts", middleware.AuthMiddleware())

	cohorts.GET("", handler.AnalyzeCohorts)
	cohorts.GET("/retention-curve", handler.RetentionCurve)
}

func SetLTVRoutes(api *echo.Group, handler *rest.LTVHandler) {
	ltv := api.Group("/ltv", middleware.AuthMiddleware())

	ltv.GET("/predictions", handler.PredictLTV)
	ltv.GET("/by-source", handler.LTVBySource)
	ltv.GET("/segments", handler.SegmentDistribution)
}

func SetForecastRoutes(api *echo.Group, handler *rest.ForecastHandler) {
	forecast := api.Group("/forecast", middleware.AuthMiddleware())

	forecast.GET("/revenue", handler.ForecastRevenue)
	forecast.POST("/evaluate", handler.EvaluateForecast)
	forecast.GET("/ad-spend", handler.RecommendAdSpend)
}

func SetAnomalyRoutes(api *echo.Group, handler *rest.AnomalyHandler) {
	anomalies := api.Group("/anomalies", middleware.AuthMiddleware())

	anomalies.GET("/correlated", handler.DetectCorrelated)
	anomalies.POST("/check-alert", handler.CheckAlert)
	anomalies.GET("/:metric", handler.DetectAnomalies)
	anomalies.GET("/:metric/alert-config", handler.GenerateAlertConfig)
}

func SetBudgetRoutes(api *echo.Group, handler *rest.BudgetHandler) {
	budget := api.Group("/budget", middleware.AuthMiddleware(), middleware.AnalystOnly())

	budget.POST("/optimize", handler.OptimizeBudget)
	budget.GET("/bid-adjustments", handler.RecommendBidAdjustments)
}
