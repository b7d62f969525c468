package pipeline

import (
	"context"
	"fmt"

	"salesetl/internal/domain"
	"salesetl/internal/repository"

	"go.uber.org/zap"
)

// WatermarkTracker advances the pipeline's progress marker after a run.
type WatermarkTracker struct {
	metaRepo repository.ETLMetadataRepository
	logger   *zap.Logger
}

// NewWatermarkTracker creates a new watermark tracker.
func NewWatermarkTracker(metaRepo repository.ETLMetadataRepository, logger *zap.Logger) *WatermarkTracker {
	return &WatermarkTracker{metaRepo: metaRepo, logger: logger}
}

// Advance upserts the global MAX(insert_date) of the raw table as the
// pipeline watermark. An empty raw table leaves the watermark untouched.
func (t *WatermarkTracker) Advance(ctx context.Context) error {
	maxInsertDate, err := t.metaRepo.Advance(ctx, domain.PipelineName)
	if err != nil {
		t.logger.Error("failed to update etl metadata", zap.Error(err))
		return fmt.Errorf("failed to update etl metadata: %w", err)
	}

	if maxInsertDate == nil {
		t.logger.Warn("no insert_date found in raw.sales_raw, metadata not updated")
		return nil
	}

	t.logger.Info("updated etl metadata",
		zap.String("pipeline", domain.PipelineName),
		zap.Time("last_insert_date", *maxInsertDate),
	)

	return nil
}
