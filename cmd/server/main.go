package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Ronak-Malkan/assignexpert/internal/cache"
	"github.com/Ronak-Malkan/assignexpert/internal/config"
	"github.com/Ronak-Malkan/assignexpert/internal/db"
	internalhttp "github.com/Ronak-Malkan/assignexpert/internal/http"
	"github.com/Ronak-Malkan/assignexpert/internal/migrate"
	"github.com/Ronak-Malkan/assignexpert/internal/repository"
	"github.com/Ronak-Malkan/assignexpert/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := migrate.Ensure(ctx, cfg.DatabaseURL, cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatalf("redis ping failed: %v", err)
	}
	cancel()
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("redis close error: %v", err)
		}
	}()

	store := repository.NewStore(pool)
	sessionStore := cache.New(redisClient, cfg.SessionTTL)

	accounts := service.NewAccountService(store)
	sessions := service.NewSessionManager(store, sessionStore)
	classes := service.NewClassService(store)

	server := internalhttp.NewServer(cfg, accounts, sessions, classes, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("assignexpert listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
