package pipeline

import (
	"context"
	"fmt"

	"salesetl/internal/domain"
	"salesetl/internal/repository"

	"go.uber.org/zap"
)

// Loader upserts validated records into the curated table.
type Loader struct {
	silverRepo repository.SilverSalesRepository
	logger     *zap.Logger
}

// NewLoader creates a new silver loader.
func NewLoader(silverRepo repository.SilverSalesRepository, logger *zap.Logger) *Loader {
	return &Loader{silverRepo: silverRepo, logger: logger}
}

// Load applies all records within one transaction; a row failure rolls the
// whole call back. Empty input is a logged no-op.
func (l *Loader) Load(ctx context.Context, records []domain.CuratedSalesRecord) error {
	if len(records) == 0 {
		l.logger.Info("no records to load into silver.sales, skipping load step")
		return nil
	}

	if err := l.silverRepo.UpsertBatch(ctx, records); err != nil {
		l.logger.Error("failed loading data into silver.sales", zap.Error(err))
		return fmt.Errorf("failed loading data into silver.sales: %w", err)
	}

	l.logger.Info("loaded records into silver.sales",
		zap.Int("records", len(records)),
	)

	return nil
}
