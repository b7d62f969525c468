package repository

import (
	"context"
	"time"

	"salesetl/internal/domain"
)

// RawSalesRepository persists and reads the raw landing table. The raw store
// has no uniqueness constraint; re-ingesting a file produces duplicates by
// design.
type RawSalesRepository interface {
	// InsertBatch writes every record within a single transaction. On any
	// insert failure the whole batch rolls back.
	InsertBatch(ctx context.Context, records []domain.RawSalesRecord) (int, error)

	// ExtractSince returns all raw records with insert_date strictly greater
	// than the bound, ordered by insert_date.
	ExtractSince(ctx context.Context, since time.Time) ([]domain.RawSalesRecord, error)
}

// SilverSalesRepository persists validated records into the curated table.
type SilverSalesRepository interface {
	// UpsertBatch applies all records in a single transaction, keyed on
	// transaction_id. Conflicts overwrite every business column and
	// update_date; insert_date is set only on first insert.
	UpsertBatch(ctx context.Context, records []domain.CuratedSalesRecord) error
}

// ETLMetadataRepository owns the pipeline watermark table.
type ETLMetadataRepository interface {
	// GetWatermark returns the entry for the pipeline, or nil when none
	// exists yet (first run).
	GetWatermark(ctx context.Context, pipelineName string) (*domain.WatermarkEntry, error)

	// Advance reads the global MAX(insert_date) from the raw table and
	// upserts it as the pipeline's watermark, all in one transaction that
	// holds an advisory lock on the pipeline name. Returns nil without
	// writing when the raw table is empty.
	Advance(ctx context.Context, pipelineName string) (*time.Time, error)
}
