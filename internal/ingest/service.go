package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"salesetl/internal/repository"

	"go.uber.org/zap"
)

// Status reports how an ingestion attempt concluded. Skips are normal
// outcomes, not errors; callers branch on the status instead of sentinel
// errors.
type Status int

const (
	// StatusIngested means records were committed and the file relocated.
	StatusIngested Status = iota
	// StatusSkippedMissing means the staging file does not exist.
	StatusSkippedMissing
	// StatusSkippedEmpty means the staging file decoded to zero records.
	StatusSkippedEmpty
)

func (s Status) String() string {
	switch s {
	case StatusIngested:
		return "ingested"
	case StatusSkippedMissing:
		return "skipped_missing"
	case StatusSkippedEmpty:
		return "skipped_empty"
	default:
		return "unknown"
	}
}

// Outcome describes the terminal state of one ingestion attempt.
type Outcome struct {
	Status  Status
	Records int
}

// Service loads staging files into the raw landing table.
type Service struct {
	rawRepo repository.RawSalesRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new raw ingestion service.
func NewService(rawRepo repository.RawSalesRepository, logger *zap.Logger) *Service {
	return &Service{
		rawRepo: rawRepo,
		logger:  logger,
		now:     time.Now,
	}
}

// Ingest reads the staging file, inserts every record into the raw table in
// one transaction with a shared insert timestamp, then moves the file into
// processedDir. The file is only relocated after the commit is durable; a
// relocation failure leaves the data committed and is tolerated because the
// raw table accepts duplicate re-ingestion.
func (s *Service) Ingest(ctx context.Context, sourcePath, processedDir string) (Outcome, error) {
	if _, err := os.Stat(sourcePath); errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("staging file not found, skipping load", zap.String("path", sourcePath))
		return Outcome{Status: StatusSkippedMissing}, nil
	}

	payload, err := os.ReadFile(sourcePath)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read staging file %s: %w", sourcePath, err)
	}

	records, err := ParseStagingFile(sourcePath, payload)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to parse staging file %s: %w", sourcePath, err)
	}

	if len(records) == 0 {
		s.logger.Warn("staging file is empty, nothing to load", zap.String("path", sourcePath))
		return Outcome{Status: StatusSkippedEmpty}, nil
	}

	s.logger.Info("loaded records from staging file",
		zap.Int("records", len(records)),
		zap.String("path", sourcePath),
	)

	// One ingestion timestamp shared by the whole batch.
	insertDate := s.now().UTC()
	for i := range records {
		records[i].InsertDate = insertDate
	}

	inserted, err := s.rawRepo.InsertBatch(ctx, records)
	if err != nil {
		s.logger.Error("raw load failed",
			zap.String("path", sourcePath),
			zap.Error(err),
		)
		return Outcome{}, fmt.Errorf("raw load failed for file %s: %w", sourcePath, err)
	}

	s.logger.Info("inserted records into raw.sales_raw",
		zap.Int("records", inserted),
		zap.Time("insert_date", insertDate),
	)

	if err := s.relocate(sourcePath, processedDir); err != nil {
		// Data is committed; a re-run re-ingests the file and the raw table
		// tolerates the duplicates.
		s.logger.Error("failed to move staging file to processed directory",
			zap.String("path", sourcePath),
			zap.Error(err),
		)
	}

	return Outcome{Status: StatusIngested, Records: inserted}, nil
}

func (s *Service) relocate(sourcePath, processedDir string) error {
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return fmt.Errorf("failed to create processed directory: %w", err)
	}

	processedPath := filepath.Join(processedDir, filepath.Base(sourcePath))
	if err := os.Rename(sourcePath, processedPath); err != nil {
		return fmt.Errorf("failed to move file: %w", err)
	}

	s.logger.Info("moved staging file to processed directory", zap.String("path", processedPath))
	return nil
}
