package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caremind/medtrack-agent/internal/client"
	"github.com/caremind/medtrack-agent/internal/config"
	"github.com/caremind/medtrack-agent/internal/handler"
	"github.com/caremind/medtrack-agent/internal/middleware"
	"github.com/caremind/medtrack-agent/internal/pdf"
	"github.com/caremind/medtrack-agent/internal/scheduler"
	"github.com/caremind/medtrack-agent/internal/service"
	"github.com/caremind/medtrack-agent/internal/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize Zap logger
	var logger *zap.Logger
	if cfg.Server.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Open local store
	localStore, err := store.Open(cfg.Storage.Path, logger)
	if err != nil {
		logger.Fatal("Failed to open local store", zap.Error(err))
	}
	logger.Info("Local store ready", zap.String("path", cfg.Storage.Path))

	// Initialize backend client
	backend, err := client.NewBackendClient(
		cfg.Backend.BaseURL,
		cfg.Backend.AuthToken,
		cfg.Backend.RequestTimeout,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to initialize backend client", zap.Error(err))
	}

	// Resolve the reminder clock location
	loc := time.Local
	if cfg.Reminders.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Reminders.Timezone)
		if err != nil {
			logger.Fatal("Failed to load reminder timezone", zap.Error(err))
		}
	}

	// Initialize scheduler and services
	reminderScheduler := scheduler.New(&scheduler.LogNotifier{Logger: logger}, logger)
	reminderScheduler.Start()
	defer reminderScheduler.Stop()

	adherenceService := service.NewAdherenceService(backend, logger)
	reminderService := service.NewReminderService(
		service.NewReminderPlanner(loc),
		localStore,
		reminderScheduler,
		logger,
	)
	deviceService := service.NewDeviceService(backend, localStore, logger)

	// Reactivate persisted reminders
	if err := reminderService.RestoreReminders(context.Background()); err != nil {
		logger.Warn("Failed to restore reminders", zap.Error(err))
	}

	// Initialize handlers
	pdfGenerator := pdf.NewGenerator(logger)
	adherenceHandler := handler.NewAdherenceHandler(adherenceService, pdfGenerator, logger)
	reminderHandler := handler.NewReminderHandler(reminderService, logger)
	deviceHandler := handler.NewDeviceHandler(deviceService, logger)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	r := gin.New()

	// Recovery middleware must be first
	r.Use(middleware.RecoveryMiddleware(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggingMiddleware(logger))

	// Routes
	api := r.Group("/api/v1")
	{
		api.GET("/adherence/report", adherenceHandler.GetReport)
		api.GET("/adherence/report/combined", adherenceHandler.GetCombinedReport)
		api.GET("/adherence/report/pdf", adherenceHandler.GetReportPDF)

		api.POST("/reminders", reminderHandler.CreateReminder)
		api.GET("/reminders", reminderHandler.ListReminders)
		api.DELETE("/reminders/:id", reminderHandler.DeleteReminder)

		api.POST("/device/register", deviceHandler.RegisterDevice)
		api.POST("/device/revoke", deviceHandler.RevokeDevice)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "medtrack-agent",
			"version": "1.0.0",
		})
	})

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting agent API", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down agent...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Agent exited")
}
