package main

import (
	"context"
	"log"
	"os"

	"salesetl/internal/config"
	"salesetl/internal/db"
	"salesetl/internal/ingest"
	"salesetl/internal/logging"
	"salesetl/internal/pipeline"
	"salesetl/internal/repository"
	"salesetl/internal/sink"
	"salesetl/internal/transform"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Pipeline.LogPath, cfg.Pipeline.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	conn, err := db.NewConnection(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer conn.Close()
	logger.Info("database connection successful")

	if err := db.RunMigrations(ctx, conn.Pool, cfg.Pipeline.MigrationsDir, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	rawRepo := repository.NewRawSalesRepository(conn)
	silverRepo := repository.NewSilverSalesRepository(conn)
	metaRepo := repository.NewETLMetadataRepository(conn)

	etl := pipeline.New(
		ingest.NewService(rawRepo, logger),
		pipeline.NewExtractor(rawRepo, metaRepo, logger),
		transform.NewTransformer(logger),
		pipeline.NewLoader(silverRepo, logger),
		pipeline.NewWatermarkTracker(metaRepo, logger),
		sink.NewFileSink(cfg.Pipeline.InvalidRecordsFile, logger),
		logger,
	)

	result, err := etl.Run(ctx, cfg.Pipeline.StagingFile, cfg.Pipeline.ProcessedDir)
	if err != nil {
		logger.Error("sales etl run failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("run summary",
		zap.String("run_id", result.RunID.String()),
		zap.String("ingest_status", result.Ingest.Status.String()),
		zap.Int("ingested", result.Ingest.Records),
		zap.Int("extracted", result.Extracted),
		zap.Int("valid", result.Valid),
		zap.Int("invalid", result.Invalid),
	)
}
