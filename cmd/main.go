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

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	_ "github.com/lib/pq"

	"github.com/pickuphub/pickuphub/brackets"
	"github.com/pickuphub/pickuphub/config"
	"github.com/pickuphub/pickuphub/db"
	"github.com/pickuphub/pickuphub/events"
	"github.com/pickuphub/pickuphub/handlers"
	"github.com/pickuphub/pickuphub/repositories"
	"github.com/pickuphub/pickuphub/routes"
	"github.com/pickuphub/pickuphub/services"
	"github.com/pickuphub/pickuphub/storage"
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
		}
	}()
	logger.Info("database connection established")

	if err := db.RunMigrations(dbConn, cfg.MigrationsPath); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// Banner uploads stay disabled unless object storage is configured.
	var uploader storage.FileUploader
	if cfg.BannerStorageConfigured() {
		uploader, err = storage.NewR2Uploader(context.Background(), storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize banner storage", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("banner storage initialized")
	} else {
		logger.Info("banner storage not configured, uploads disabled")
	}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))
	defer pubSub.Close()
	publisher := events.NewWatermillPublisher(pubSub, cfg.EventsTopicPrefix, logger)

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()

	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)

	participants := services.NewParticipantManager(matchRepo, tournamentRepo, publisher)
	matchService := services.NewMatchService(matchRepo, participants, publisher, logger)
	builder := brackets.NewSingleEliminationBuilder(brackets.NewRandomSeeder())
	tournamentService := services.NewTournamentService(
		tournamentRepo,
		builder,
		participants,
		publisher,
		wsHub,
		uploader,
		logger,
	)
	dashboardService := services.NewDashboardService(matchRepo, tournamentRepo)

	router := routes.InitRoutes(routes.Handlers{
		Match:      handlers.NewMatchHandler(matchService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Dashboard:  handlers.NewDashboardHandler(dashboardService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, tournamentService, logger),
	}, []byte(cfg.JWTSecretKey))

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
}
