package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/princekumarofficial/media-migration/internal/config"
	"github.com/princekumarofficial/media-migration/internal/migration"
	mediaService "github.com/princekumarofficial/media-migration/internal/services/media"
	"github.com/princekumarofficial/media-migration/internal/storage/postgres"
)

func main() {
	if err := RootCommand(openEngine).Execute(); err != nil {
		os.Exit(1)
	}
}

// openEngine connects to Postgres (and MinIO when configured) and returns a ready engine
func openEngine(ctx context.Context, configPath string) (runner, func(), error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		return nil, nil, fmt.Errorf("config path must be provided via --config or CONFIG_PATH")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	storage, err := postgres.NewPostgres(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	opts := append(migration.ConfigOptions(cfg.Migration), migration.WithLogger(logger))
	if cfg.MinIO.Endpoint != "" {
		objects, err := mediaService.NewService(ctx, cfg)
		if err != nil {
			storage.Close()
			return nil, nil, fmt.Errorf("failed to initialize MinIO: %w", err)
		}
		opts = append(opts, migration.WithObjectChecker(objects))
	}

	return migration.New(storage, opts...), func() { storage.Close() }, nil
}
