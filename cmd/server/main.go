package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/gift-recommendation-service/internal/cache"
	"github.com/actuallystonmai/gift-recommendation-service/internal/config"
	"github.com/actuallystonmai/gift-recommendation-service/internal/generator"
	"github.com/actuallystonmai/gift-recommendation-service/internal/handler"
	"github.com/actuallystonmai/gift-recommendation-service/internal/llm"
	"github.com/actuallystonmai/gift-recommendation-service/internal/logger"
	"github.com/actuallystonmai/gift-recommendation-service/internal/marketplace"
	"github.com/actuallystonmai/gift-recommendation-service/internal/repository"
	"github.com/actuallystonmai/gift-recommendation-service/internal/router"
	"github.com/actuallystonmai/gift-recommendation-service/internal/selector"
	"github.com/actuallystonmai/gift-recommendation-service/internal/service"
)

func main() {
	_ = godotenv.Load()

	// Load configuration; missing credentials fail fast before any
	// request is processed.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config %v", err)
	}

	zl, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("failed to build logger %v", err)
	}
	defer zl.Sync()

	ctx := context.Background()

	// ------------ PostgreSQL ---------------
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("failed to parse database config", "err", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		zl.Fatal("failed to connect to database", "err", err)
	}
	defer pool.Close()

	if err := waitForDB(ctx, pool, zl); err != nil {
		zl.Fatal("database not ready", "err", err)
	}
	zl.Info("connected to PostgreSQL")

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := migrate(ctx, pool, "migrations/create_tables.down.sql"); err != nil {
			zl.Fatal("failed to migrate down", "err", err)
		}
		zl.Info("migrations dropped")
		return
	}

	if err := migrate(ctx, pool, "migrations/create_tables.up.sql"); err != nil {
		zl.Fatal("failed to migrate up", "err", err)
	}
	zl.Info("migrations applied")

	// ------------ Redis ---------------
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zl.Fatal("failed to parse redis url", "err", err)
	}
	redisClient := redis.NewClient(redisOpts)
	responseCache := cache.NewCache(redisClient, cfg.CacheTTL)
	if err := responseCache.Ping(ctx); err != nil {
		zl.Fatal("redis not ready", "err", err)
	}
	zl.Info("connected to Redis")

	// ------------ Upstream clients ---------------
	completer, err := llm.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		zl.Fatal("failed to build model client", "err", err)
	}

	market := marketplace.NewClient(cfg.RapidAPIKey, cfg.RapidAPIHost,
		cfg.MarketplaceCountry, cfg.MarketplaceTimeout, zl)
	signed := marketplace.NewSignedClient(cfg.AmazonAccessKey, cfg.AmazonSecretKey,
		cfg.AmazonAssociateTag, cfg.AmazonRegion, cfg.AmazonHost, cfg.MarketplaceTimeout, zl)

	// ------------ Pipeline wiring ---------------
	gen := generator.New(completer, zl)
	chooser := selector.New(completer, zl)
	repo := repository.New(pool)
	svc := service.NewService(gen, market, signed, chooser, responseCache, repo, cfg.GeminiModel, zl)
	h := handler.NewHandler(svc, zl)

	// ---------------- Server --------------------
	zl.Info("server running", "addr", cfg.Addr())
	if err := http.ListenAndServe(cfg.Addr(), router.Setup(h)); err != nil {
		zl.Fatal("server stopped", "err", err)
	}
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool, zl *logger.Logger) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		zl.Info("waiting for database...", "attempt", i+1)
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func migrate(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}
