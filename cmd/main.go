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

	"github.com/Dosada05/tabletennis/brackets"
	"github.com/Dosada05/tabletennis/config"
	"github.com/Dosada05/tabletennis/db"
	"github.com/Dosada05/tabletennis/handlers"
	"github.com/Dosada05/tabletennis/repositories"
	"github.com/Dosada05/tabletennis/repositories/memory"
	api "github.com/Dosada05/tabletennis/routes"
	"github.com/Dosada05/tabletennis/services"
	"github.com/Dosada05/tabletennis/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver))

	var store repositories.Store
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store = memory.NewStore()
		logger.Warn("using in-memory store, data is lost on restart")
	default:
		dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout)
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

		if cfg.AutoMigrate {
			migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := db.Migrate(migrateCtx, dbConn)
			cancel()
			if err != nil {
				logger.Error("failed to apply database schema", slog.Any("error", err))
				os.Exit(1)
			}
			logger.Info("database schema applied")
		}
		store = repositories.NewPostgresStore(dbConn, logger)
	}

	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(context.Background(), storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 not configured, player photo uploads disabled")
	}

	clock := services.Clock(time.Now)
	associationService := services.NewAssociationService(store)
	playerService := services.NewPlayerService(store, uploader, clock, logger)
	tournamentService := services.NewTournamentService(store)
	categoryService := services.NewCategoryService(store)
	teamService := services.NewTeamService(store)
	groupService := services.NewGroupService(store)
	matchService := services.NewMatchService(store)
	setResultService := services.NewSetResultService(store)
	outcomeService := services.NewOutcomeService(store, logger)
	enrollmentService := services.NewEnrollmentService(store, clock, logger)
	bracketService := services.NewBracketService(store, brackets.NewRandomShuffler(), clock, logger)
	logger.Info("Services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.CORSAllowedOrigins,
		handlers.NewHealthHandler(store),
		handlers.NewAssociationHandler(associationService),
		handlers.NewPlayerHandler(playerService),
		handlers.NewTournamentHandler(tournamentService),
		handlers.NewCategoryHandler(categoryService),
		handlers.NewTeamHandler(teamService),
		handlers.NewGroupHandler(groupService, bracketService),
		handlers.NewMatchHandler(matchService, setResultService, outcomeService),
		handlers.NewBracketHandler(bracketService),
		handlers.NewEnrollmentHandler(enrollmentService),
	)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
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
