package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskpad/internal/auth"
	"github.com/BuzzLyutic/taskpad/internal/cache"
	"github.com/BuzzLyutic/taskpad/internal/config"
	"github.com/BuzzLyutic/taskpad/internal/handler"
	"github.com/BuzzLyutic/taskpad/internal/repo"
	"github.com/BuzzLyutic/taskpad/internal/service"
)

func main() {
	// Подключаем логгер
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Загрузка конфигурации
	cfg := config.Load()
	if err := cfg.ValidateServer(); err != nil {
		logger.Fatal("Refusing to start", zap.Error(err))
	}
	if cfg.DevMode {
		logger.Warn("TASKPAD_DEV is set: tokens signed with the development secret are accepted")
	}
	checks := map[string]handler.Pinger{}

	var (
		tasks repo.TaskRepository = repo.NewMemoryTaskRepo()
		notes repo.NoteRepository = repo.NewMemoryNoteRepo()
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to Database", zap.Error(err)) // Fatal потому что дальнейшая работа теряет смысл
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			logger.Fatal("Failed to ping the Database", zap.Error(err))
		}
		logger.Info("Successfully connected to the Database!")
		tasks, notes = repo.NewTaskRepo(pool), repo.NewNoteRepo(pool)
		checks["database"] = pool
	} else {
		logger.Warn("DATABASE_URL is empty, data is kept in memory")
	}

	// nil interface, not a nil *cache.Cache
	var lists service.ListCache
	if cfg.RedisAddr != "" {
		c := cache.New(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), "taskpad", cfg.CacheTTL)
		defer c.Close()

		if err := c.Ping(context.Background()); err != nil {
			logger.Warn("Redis unavailable, continuing without it", zap.Error(err))
		}
		lists = c
		checks["cache"] = c
	}

	tokens := auth.NewTokenManager(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TokenTTL: cfg.TokenTTL})
	router := handler.NewRouter(handler.RouterDeps{
		Tasks:  handler.NewTaskHandler(service.NewTaskService(tasks, lists, logger), logger),
		Notes:  handler.NewNoteHandler(service.NewNoteService(notes, lists, logger), logger),
		Health: handler.NewHealthHandler(logger, checks),
		Tokens: tokens,
		Logger: logger,
	})

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(router, "taskpad"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped successfully!")
}
