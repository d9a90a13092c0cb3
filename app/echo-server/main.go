package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketPulse/app/echo-server/router"
	"marketPulse/business/anomaly"
	"marketPulse/business/budget"
	"marketPulse/business/cohort"
	"marketPulse/business/forecast"
	"marketPulse/business/ltv"
	"marketPulse/internal/middleware"
	psqlRepo "marketPulse/internal/repository/postgres"
	redisRepo "marketPulse/internal/repository/redis"
	"marketPulse/internal/rest"
	"marketPulse/pkg/config"
	"marketPulse/pkg/database"
	redisdb "marketPulse/pkg/database/redis"
	"marketPulse/pkg/logger"
	"marketPulse/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting MarketPulse", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	defer func() {
		if err := redisdb.CloseRedisClient(redisClient); err != nil {
			logger.Error("Failed to close Redis client", "error", err)
		}
	}()

	logger.Info("Redis connected successfully")

	// Init repo
	orderRepo := psqlRepo.NewOrderRepository(db)
	campaignRepo := psqlRepo.NewCampaignRepository(db)
	metricRepo := psqlRepo.NewMetricRepository(orderRepo, campaignRepo)
	reportCache := redisRepo.NewReportCache(redisClient, cfg.Cache.ReportTTL)

	// Init service
	cohortService := cohort.NewCohortService(orderRepo)
	ltvService := ltv.NewLTVService(orderRepo)
	forecastService := forecast.NewForecastService(orderRepo, campaignRepo)
	anomalyService := anomaly.NewAnomalyService(metricRepo)
	budgetService := budget.NewBudgetService(campaignRepo)

	// Init handler
	cohortHandler := rest.NewCohortHandler(cohortService, reportCache)
	ltvHandler := rest.NewLTVHandler(ltvService)
	forecastHandler := rest.NewForecastHandler(forecastService, reportCache)
	anomalyHandler := rest.NewAnomalyHandler(anomalyService)
	budgetHandler := rest.NewBudgetHandler(budgetService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceMiddleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetCohortRoutes(api, cohortHandler)
	router.SetLTVRoutes(api, ltvHandler)
	router.SetForecastRoutes(api, forecastHandler)
	router.SetAnomalyRoutes(api, anomalyHandler)
	router.SetBudgetRoutes(api, budgetHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
