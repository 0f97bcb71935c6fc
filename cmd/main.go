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

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/cache"
	"github.com/Dosada05/tournament-engine/config"
	"github.com/Dosada05/tournament-engine/db"
	_ "github.com/Dosada05/tournament-engine/docs" // swagger
	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/repositories"
	api "github.com/Dosada05/tournament-engine/routes"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/Dosada05/tournament-engine/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

// @title           Tournament Engine API
// @version         1.0
// @description     Tournament registration, single elimination brackets, match result reconciliation and standings.
// @BasePath        /api/v1

// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Подключение к базе данных
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

	if err := db.Migrate(rootCtx, dbConn); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// Кэш лидерборда (Redis), опционально
	var leaderboardCache cache.LeaderboardCache = cache.Noop{}
	if cfg.Redis.Enabled() {
		redisClient := cache.NewRedisClient(rootCtx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if redisClient != nil {
			defer redisClient.Close()
			leaderboardCache = cache.NewRedisLeaderboardCache(redisClient, cfg.Redis.CacheTTL, logger)
			logger.Info("leaderboard cache enabled", slog.String("addr", cfg.Redis.Addr))
		}
	}

	// Архивы турниров (Cloudflare R2), опционально
	var uploader storage.ObjectUploader = storage.Disabled{}
	if cfg.Storage.Enabled() {
		r2, err := storage.NewCloudflareR2Uploader(rootCtx, storage.CloudflareR2Config{
			AccountID:       cfg.Storage.AccountID,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			BucketName:      cfg.Storage.BucketName,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		uploader = r2
		logger.Info("Cloudflare R2 uploader initialized")
	}

	// WebSocket Hub
	wsHub := events.NewHub(logger)
	go wsHub.Run(rootCtx)
	logger.Info("WebSocket Hub started")

	// Доменные события: websocket-комнаты, инвалидация кэша и, если настроено, AMQP
	sinks := []events.Sink{wsHub, cache.Invalidator{Cache: leaderboardCache}}
	if cfg.AMQP.Enabled() {
		amqpSink, err := events.NewAMQPSink(cfg.AMQP.URL, cfg.AMQP.Queue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, domain events will not be queued", slog.Any("error", err))
		} else {
			defer amqpSink.Close()
			sinks = append(sinks, amqpSink)
			logger.Info("AMQP event publishing enabled", slog.String("queue", cfg.AMQP.Queue))
		}
	}
	dispatcher := events.NewDispatcher(logger, sinks...)

	// Инициализация репозиториев
	transactor := repositories.NewPostgresTransactor(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	reportRepo := repositories.NewPostgresMatchReportRepository(dbConn)
	standingsRepo := repositories.NewPostgresStandingsRepository(dbConn)
	teamDirectory := repositories.NewPostgresTeamDirectory(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	standingsService := services.NewStandingsService(standingsRepo, matchRepo, tournamentRepo, registrationRepo, leaderboardCache, logger)
	registrationService := services.NewRegistrationService(transactor, tournamentRepo, registrationRepo, teamDirectory, dispatcher, logger)
	bracketService := services.NewBracketService(
		transactor,
		tournamentRepo,
		registrationRepo,
		matchRepo,
		brackets.NewSingleEliminationGenerator(brackets.RandomShuffler{}),
		dispatcher,
		logger,
	)
	matchService := services.NewMatchService(
		transactor,
		tournamentRepo,
		matchRepo,
		reportRepo,
		teamDirectory,
		standingsService,
		dispatcher,
		logger,
	)
	tournamentService := services.NewTournamentService(
		transactor,
		tournamentRepo,
		registrationRepo,
		matchRepo,
		standingsService,
		uploader,
		dispatcher,
		logger,
	)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Tournament:   handlers.NewTournamentHandler(tournamentService, bracketService),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Match:        handlers.NewMatchHandler(matchService),
		Standings:    handlers.NewStandingsHandler(standingsService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSOrigins, logger),
		Health:       handlers.NewHealthHandler(dbConn),
	}, api.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.CORSOrigins,
		Logger:         logger,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
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

	// Ожидание сигнала завершения
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

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}
	// останавливаем hub после сервера, чтобы закрыть websocket-клиентов
	stop()
	logger.Info("application exited")
}
