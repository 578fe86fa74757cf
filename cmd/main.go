package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/scout-hq/scout-system/config"
	"github.com/scout-hq/scout-system/db"
	"github.com/scout-hq/scout-system/handlers"
	"github.com/scout-hq/scout-system/realtime"
	"github.com/scout-hq/scout-system/repositories"
	"github.com/scout-hq/scout-system/routes"
	"github.com/scout-hq/scout-system/services"
	"github.com/scout-hq/scout-system/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Logo uploads are optional: without R2 credentials the server runs
	// with uploads disabled.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 storage not configured, logo uploads disabled")
	}

	wsHub := realtime.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	txRunner := repositories.NewSQLTxRunner(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	participantFieldRepo := repositories.NewPostgresParticipantFieldRepository(dbConn)
	customFieldRepo := repositories.NewPostgresCustomFieldRepository(dbConn)
	formRepo := repositories.NewPostgresFormRepository(dbConn)
	waiverRepo := repositories.NewPostgresWaiverRepository(dbConn)
	itemRepo := repositories.NewPostgresItemRepository(dbConn)
	submissionRepo := repositories.NewPostgresSubmissionRepository(dbConn)
	logger.Info("repositories initialized")

	authService := services.NewAuthService(userRepo)
	groupService := services.NewGroupService(groupRepo)
	catalogService := services.NewCatalogService(
		registrationRepo,
		participantFieldRepo,
		customFieldRepo,
		formRepo,
		waiverRepo,
		itemRepo,
		logger,
	)
	registrationService := services.NewRegistrationService(
		txRunner,
		registrationRepo,
		groupRepo,
		participantFieldRepo,
		customFieldRepo,
		formRepo,
		waiverRepo,
		itemRepo,
		uploader,
		wsHub,
		logger,
	)
	flowService := services.NewFlowService(catalogService, logger)
	submissionService := services.NewSubmissionService(
		txRunner,
		submissionRepo,
		registrationRepo,
		wsHub,
		logger,
	)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	groupHandler := handlers.NewGroupHandler(groupService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService, catalogService)
	flowHandler := handlers.NewFlowHandler(flowService, submissionService, authService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		groupHandler,
		registrationHandler,
		flowHandler,
		submissionHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
