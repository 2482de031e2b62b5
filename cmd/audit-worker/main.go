package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/princekumarofficial/media-migration/internal/config"
	"github.com/princekumarofficial/media-migration/internal/migration"
	mediaService "github.com/princekumarofficial/media-migration/internal/services/media"
	"github.com/princekumarofficial/media-migration/internal/storage/postgres"
	"github.com/princekumarofficial/media-migration/internal/types"
)

type reporter interface {
	GetMigrationReport(ctx context.Context) (types.AuditSummary, error)
}

type AuditWorker struct {
	engine   reporter
	interval time.Duration
	logger   *slog.Logger
}

const defaultInterval = 15 * time.Minute

// NewAuditWorker falls back to defaultInterval when interval is not positive
func NewAuditWorker(engine reporter, interval time.Duration, logger *slog.Logger) *AuditWorker {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &AuditWorker{
		engine:   engine,
		interval: interval,
		logger:   logger,
	}
}

func (aw *AuditWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(aw.interval)
	defer ticker.Stop()

	aw.logger.Info("Audit worker started",
		"interval", aw.interval.String())

	// Run once immediately on startup
	aw.runAudit(ctx)

	for {
		select {
		case <-ctx.Done():
			aw.logger.Info("Audit worker shutting down")
			return
		case <-ticker.C:
			aw.runAudit(ctx)
		}
	}
}

func (aw *AuditWorker) runAudit(ctx context.Context) {
	startTime := time.Now()

	summary, err := aw.engine.GetMigrationReport(ctx)
	if err != nil {
		aw.logger.Error("Failed to build migration report",
			"error", err.Error(),
			"duration_ms", time.Since(startTime).Milliseconds())
		return
	}

	attrs := []any{
		"total_media", summary.TotalMedia,
		"indexed_media", summary.IndexedMedia,
		"broken_slide_references", summary.BrokenSlideReferences,
		"valid_slide_references", summary.ValidSlideReferences,
		"duration_ms", time.Since(startTime).Milliseconds(),
	}
	if summary.MissingObjects != nil {
		attrs = append(attrs, "missing_objects", *summary.MissingObjects)
	}

	if summary.BrokenSlideReferences > 0 {
		aw.logger.Warn("Slides reference missing media", attrs...)
		return
	}
	aw.logger.Info("Completed migration audit", attrs...)
}

func main() {
	// Load config
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	storage, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer storage.Close()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := append(migration.ConfigOptions(cfg.Migration), migration.WithLogger(logger))
	if cfg.MinIO.Endpoint != "" {
		objects, err := mediaService.NewService(ctx, cfg)
		if err != nil {
			log.Fatal("Failed to initialize MinIO:", err)
		}
		opts = append(opts, migration.WithObjectChecker(objects))
	}

	worker := NewAuditWorker(migration.New(storage, opts...), cfg.AuditWorker.Interval, logger)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("Received shutdown signal")
		cancel()
	}()

	worker.Start(ctx)

	slog.Info("Audit worker stopped")
}
