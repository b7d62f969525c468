package pipeline

import (
	"context"
	"time"

	"salesetl/internal/domain"
	"salesetl/internal/ingest"
	"salesetl/internal/transform"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvalidSink receives records that failed the DQ gate for external review.
type InvalidSink interface {
	Write(records []domain.InvalidRecord) error
}

// Pipeline runs the sales ETL stages sequentially: ingest, extract,
// transform, load, advance watermark. Each stage completes before the next
// begins; any store failure aborts the run.
type Pipeline struct {
	ingestor    *ingest.Service
	extractor   *Extractor
	transformer *transform.Transformer
	loader      *Loader
	tracker     *WatermarkTracker
	invalidSink InvalidSink
	logger      *zap.Logger
}

// New wires a pipeline from its stages.
func New(
	ingestor *ingest.Service,
	extractor *Extractor,
	transformer *transform.Transformer,
	loader *Loader,
	tracker *WatermarkTracker,
	invalidSink InvalidSink,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		ingestor:    ingestor,
		extractor:   extractor,
		transformer: transformer,
		loader:      loader,
		tracker:     tracker,
		invalidSink: invalidSink,
		logger:      logger,
	}
}

// Result summarizes one pipeline run.
type Result struct {
	RunID     uuid.UUID
	Ingest    ingest.Outcome
	Extracted int
	Valid     int
	Invalid   int
}

// Run executes one full pass over the staging file. Retry policy belongs to
// the external trigger; a returned error means the run stopped at a stage
// whose transaction already rolled back.
func (p *Pipeline) Run(ctx context.Context, stagingFile, processedDir string) (Result, error) {
	result := Result{RunID: uuid.New()}
	start := time.Now()

	logger := p.logger.With(zap.String("run_id", result.RunID.String()))
	logger.Info("starting sales etl run", zap.String("staging_file", stagingFile))

	outcome, err := p.ingestor.Ingest(ctx, stagingFile, processedDir)
	if err != nil {
		return result, err
	}
	result.Ingest = outcome
	logger.Info("ingestion finished",
		zap.String("status", outcome.Status.String()),
		zap.Int("records", outcome.Records),
	)

	batch, err := p.extractor.Extract(ctx)
	if err != nil {
		return result, err
	}
	result.Extracted = len(batch)

	valid, invalid := p.transformer.Transform(batch)
	result.Valid = len(valid)
	result.Invalid = len(invalid)

	if len(invalid) > 0 {
		if err := p.invalidSink.Write(invalid); err != nil {
			// Review output is diagnostic; its failure must not abort the run.
			logger.Error("failed to write invalid records", zap.Error(err))
		}
	}

	if err := p.loader.Load(ctx, valid); err != nil {
		return result, err
	}

	if err := p.tracker.Advance(ctx); err != nil {
		return result, err
	}

	logger.Info("sales etl run completed",
		zap.Int("extracted", result.Extracted),
		zap.Int("valid", result.Valid),
		zap.Int("invalid", result.Invalid),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}
