package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vismaya/demandops/internal/apierrors"
	"github.com/vismaya/demandops/internal/config"
	"github.com/vismaya/demandops/internal/container"
	"github.com/vismaya/demandops/internal/correlation"
	"github.com/vismaya/demandops/internal/handler"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)

	// Initialize dependency container
	ctr, err := container.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(correlation.Middleware)
	r.Use(apierrors.ErrorHandler)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", correlation.HeaderName},
		ExposedHeaders:   []string{"Link", "Content-Disposition", correlation.HeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		statuses := ctr.ProviderRegistry().HealthAll(ctx)
		healthy := true
		providers := make([]map[string]interface{}, 0, len(statuses))
		for name, status := range statuses {
			if !status.Healthy {
				healthy = false
			}
			providers = append(providers, map[string]interface{}{
				"name":    name,
				"healthy": status.Healthy,
				"message": status.Message,
			})
		}

		code := http.StatusOK
		overall := "healthy"
		if !healthy {
			code = http.StatusServiceUnavailable
			overall = "degraded"
		}
		handler.WriteJSON(w, code, map[string]interface{}{
			"status":    overall,
			"providers": providers,
		})
	})

	// Initialize handlers
	costHandler := handler.NewCostHandler(ctr.Provider(), ctr.CostSampleRepository())
	forecastHandler := handler.NewForecastHandler(ctr.Provider(), ctr.Projector(), ctr.Thresholds(), ctr.ForecastRepository(), ctr.CostSampleRepository())
	budgetHandler := handler.NewBudgetHandler(ctr.Provider(), ctr.Projector(), ctr.Evaluator(), ctr.Thresholds(), ctr.Policies(), ctr.SnapshotRepository(), ctr.CostSampleRepository())
	resourceHandler := handler.NewResourceHandler(ctr.Provider(), ctr.NotificationService())
	apiCostHandler := handler.NewAPICostHandler(ctr.Tracker())
	reportHandler := handler.NewReportHandler(ctr.Provider(), ctr.Projector(), ctr.Evaluator(), ctr.Thresholds(), ctr.CostSampleRepository(), ctr.Pipeline())
	jobsHandler := handler.NewJobsHandler(ctr.Scheduler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Costs
		r.Get("/costs/current", costHandler.GetCurrent)
		r.Get("/costs/history", costHandler.GetHistory)
		r.Get("/costs/trend", costHandler.GetTrend)

		// Forecasts
		r.Get("/forecasts", forecastHandler.List)
		r.Post("/forecasts", forecastHandler.Generate)
		r.Get("/forecasts/latest", forecastHandler.GetLatest)
		r.Get("/forecasts/{id}", forecastHandler.GetByID)

		// Budget
		r.Get("/budget/status", budgetHandler.GetStatus)
		r.Get("/budget/timeline", budgetHandler.GetTimeline)
		r.Get("/budget/projections", budgetHandler.GetProjections)
		r.Get("/budget/targets", budgetHandler.GetTargets)
		r.Get("/budget/alerts", budgetHandler.GetAlerts)
		r.Get("/budget/policy", budgetHandler.GetPolicy)

		// Resources
		r.Get("/resources", resourceHandler.GetInventory)
		r.Post("/resources/stop", resourceHandler.StopInstances)

		// API usage costs
		r.Get("/api-costs/session", apiCostHandler.GetSession)
		r.Get("/api-costs/breakdown", apiCostHandler.GetBreakdown)
		r.Get("/api-costs/estimate", apiCostHandler.GetMonthlyEstimate)

		// Reports
		r.Get("/reports/export", reportHandler.Export)
		r.Post("/reports/publish", reportHandler.Publish)

		// Jobs
		r.Get("/jobs", jobsHandler.List)
		r.Post("/jobs/{name}/run", jobsHandler.Run)
	})

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ctr.Start(ctx); err != nil {
		logger.Error("failed to start background jobs", "error", err)
		os.Exit(1)
	}

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := ctr.Stop(shutdownCtx); err != nil {
			logger.Error("container shutdown error", "error", err)
		}

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	// Start server
	logger.Info("DemandOps API server starting", "addr", addr, "demo_mode", cfg.DemoMode)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newLogger builds the process logger from the logging config.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
