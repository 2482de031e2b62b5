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

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/princekumarofficial/media-migration/internal/cache"
	"github.com/princekumarofficial/media-migration/internal/config"
	migrationHandlers "github.com/princekumarofficial/media-migration/internal/http/handlers/migration"
	"github.com/princekumarofficial/media-migration/internal/http/middleware"
	"github.com/princekumarofficial/media-migration/internal/migration"
	"github.com/princekumarofficial/media-migration/internal/ratelimit"
	mediaService "github.com/princekumarofficial/media-migration/internal/services/media"
	"github.com/princekumarofficial/media-migration/internal/storage/postgres"
	"github.com/princekumarofficial/media-migration/internal/utils/response"
)

func main() {
	// load config
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// database setup
	storage, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer storage.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()
	slog.Info("Connected to Redis", slog.String("address", cfg.Redis.Address))

	opts := append(migration.ConfigOptions(cfg.Migration), migration.WithLogger(logger))
	if cfg.MinIO.Endpoint != "" {
		objects, err := mediaService.NewService(context.Background(), cfg)
		if err != nil {
			log.Fatal("Failed to initialize MinIO:", err)
		}
		opts = append(opts, migration.WithObjectChecker(objects))
		slog.Info("Object storage checks enabled", slog.String("bucket", cfg.MinIO.BucketName))
	}
	engine := migration.New(storage, opts...)
	history := cache.NewRunCache(redisClient)

	rateLimits := middleware.NewRateLimitConfig()
	rateLimits.Register("media_migrate", ratelimit.NewTokenBucket(redisClient,
		cfg.Migration.RateLimitPerHour, cfg.Migration.RateLimitPerHour, time.Hour))

	admin := func(h http.Handler) http.Handler {
		return middleware.AuthMiddleware(cfg.JWTSecret)(middleware.RequireAdmin(h))
	}

	// setup router
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.RequestOK("ok", nil))
	})
	router.Handle("GET /metrics", promhttp.Handler())
	router.Handle("POST /admin/media/migrate",
		admin(rateLimits.RateLimitedHandler("media_migrate", migrationHandlers.Migrate(engine, history))))
	router.Handle("GET /admin/media/migration-report",
		admin(migrationHandlers.Report(engine)))
	router.Handle("GET /admin/media/migration/last-run",
		admin(migrationHandlers.LastRun(history)))

	server := http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: middleware.MetricsMiddleware()(router),
	}

	slog.Info("server started", slog.String("address", cfg.HTTPServer.Address), slog.String("env", cfg.Env))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}
