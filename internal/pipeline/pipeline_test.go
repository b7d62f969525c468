package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"salesetl/internal/domain"
	"salesetl/internal/ingest"
	"salesetl/internal/transform"

	"go.uber.org/zap/zaptest"
)

// fakeStore emulates the raw table, curated table, and watermark row so a
// full run can execute without a database.
type fakeStore struct {
	raw       []domain.RawSalesRecord
	silver    map[string]domain.CuratedSalesRecord
	watermark *domain.WatermarkEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{silver: map[string]domain.CuratedSalesRecord{}}
}

func (f *fakeStore) InsertBatch(ctx context.Context, records []domain.RawSalesRecord) (int, error) {
	f.raw = append(f.raw, records...)
	return len(records), nil
}

func (f *fakeStore) ExtractSince(ctx context.Context, since time.Time) ([]domain.RawSalesRecord, error) {
	var out []domain.RawSalesRecord
	for _, record := range f.raw {
		if record.InsertDate.After(since) {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertBatch(ctx context.Context, records []domain.CuratedSalesRecord) error {
	for _, record := range records {
		if existing, ok := f.silver[record.TransactionID]; ok {
			record.InsertDate = existing.InsertDate
		}
		f.silver[record.TransactionID] = record
	}
	return nil
}

func (f *fakeStore) GetWatermark(ctx context.Context, pipelineName string) (*domain.WatermarkEntry, error) {
	if f.watermark == nil {
		return nil, nil
	}
	entry := *f.watermark
	return &entry, nil
}

func (f *fakeStore) Advance(ctx context.Context, pipelineName string) (*time.Time, error) {
	if pipelineName != domain.PipelineName {
		return nil, fmt.Errorf("unexpected pipeline name %s", pipelineName)
	}
	var max time.Time
	for _, record := range f.raw {
		if record.InsertDate.After(max) {
			max = record.InsertDate
		}
	}
	if max.IsZero() {
		return nil, nil
	}
	if f.watermark == nil || f.watermark.LastInsertDate.Before(max) {
		f.watermark = &domain.WatermarkEntry{PipelineName: pipelineName, LastInsertDate: max}
	}
	return &max, nil
}

type collectSink struct {
	records []domain.InvalidRecord
}

func (c *collectSink) Write(records []domain.InvalidRecord) error {
	c.records = append(c.records, records...)
	return nil
}

func newTestPipeline(t *testing.T, store *fakeStore, sink InvalidSink) *Pipeline {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return New(
		ingest.NewService(store, logger),
		NewExtractor(store, store, logger),
		transform.NewTransformer(logger),
		NewLoader(store, logger),
		NewWatermarkTracker(store, logger),
		sink,
		logger,
	)
}

const stagingPayload = `[
	{
		"transaction_id": "T1",
		"customer_id": " C100 ",
		"product": {"id": "P1", "name": "Widget", "category": "Tools", "price": 9.99},
		"quantity": 2,
		"discount": null,
		"date": "2024-01-15",
		"region": "EMEA"
	},
	{
		"transaction_id": "T2",
		"customer_id": "C200",
		"product": {"price": 4.5},
		"quantity": 1,
		"discount": 0.2,
		"date": "15-01-2024"
	},
	{
		"transaction_id": null,
		"quantity": -1,
		"discount": 1.5
	}
]`

func TestPipelineFullRun(t *testing.T) {
	dir := t.TempDir()
	staging := filepath.Join(dir, "sales.json")
	if err := os.WriteFile(staging, []byte(stagingPayload), 0o644); err != nil {
		t.Fatalf("failed to write staging file: %v", err)
	}

	store := newFakeStore()
	sink := &collectSink{}
	p := newTestPipeline(t, store, sink)

	result, err := p.Run(context.Background(), staging, filepath.Join(dir, "processed"))
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if result.Ingest.Status != ingest.StatusIngested || result.Ingest.Records != 3 {
		t.Fatalf("unexpected ingest outcome: %+v", result.Ingest)
	}
	if result.Extracted != 3 {
		t.Fatalf("expected 3 extracted records, got %d", result.Extracted)
	}
	if result.Valid != 2 || result.Invalid != 1 {
		t.Fatalf("expected 2 valid / 1 invalid, got %d / %d", result.Valid, result.Invalid)
	}

	if len(store.silver) != 2 {
		t.Fatalf("expected 2 curated rows, got %d", len(store.silver))
	}
	curated, ok := store.silver["T1"]
	if !ok {
		t.Fatalf("expected T1 in curated store")
	}
	if curated.CustomerID != "C100" {
		t.Fatalf("expected sanitized customer C100, got %s", curated.CustomerID)
	}
	if curated.Discount != 0 {
		t.Fatalf("expected defaulted discount, got %v", curated.Discount)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record in diagnostic sink, got %d", len(sink.records))
	}

	if store.watermark == nil {
		t.Fatalf("expected watermark to be written")
	}
	if !store.watermark.LastInsertDate.Equal(store.raw[0].InsertDate) {
		t.Fatalf("watermark %v does not match batch insert_date %v",
			store.watermark.LastInsertDate, store.raw[0].InsertDate)
	}

	if _, err := os.Stat(staging); err == nil {
		t.Fatalf("expected staging file to be relocated")
	}
}

func TestPipelineSecondRunProcessesNothing(t *testing.T) {
	dir := t.TempDir()
	staging := filepath.Join(dir, "sales.json")
	if err := os.WriteFile(staging, []byte(stagingPayload), 0o644); err != nil {
		t.Fatalf("failed to write staging file: %v", err)
	}

	store := newFakeStore()
	sink := &collectSink{}
	p := newTestPipeline(t, store, sink)

	if _, err := p.Run(context.Background(), staging, filepath.Join(dir, "processed")); err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	firstWatermark := store.watermark.LastInsertDate
	firstSilver := len(store.silver)

	// File was relocated; the second run has nothing new.
	result, err := p.Run(context.Background(), staging, filepath.Join(dir, "processed"))
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}

	if result.Ingest.Status != ingest.StatusSkippedMissing {
		t.Fatalf("expected skipped_missing, got %s", result.Ingest.Status)
	}
	if result.Extracted != 0 {
		t.Fatalf("expected empty extraction, got %d", result.Extracted)
	}
	if len(store.silver) != firstSilver {
		t.Fatalf("curated store must be unchanged")
	}
	if !store.watermark.LastInsertDate.Equal(firstWatermark) {
		t.Fatalf("watermark must not move without new raw data")
	}
}

func TestPipelineReloadUpdatesCuratedValues(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(dir, "processed")
	store := newFakeStore()
	sink := &collectSink{}
	p := newTestPipeline(t, store, sink)

	first := `[{"transaction_id":"T1","customer_id":"C1","product":{"price":10.0},"quantity":1,"discount":0.0}]`
	second := `[{"transaction_id":"T1","customer_id":"C1","product":{"price":20.0},"quantity":5,"discount":0.5}]`

	staging := filepath.Join(dir, "sales.json")
	if err := os.WriteFile(staging, []byte(first), 0o644); err != nil {
		t.Fatalf("failed to write staging file: %v", err)
	}
	if _, err := p.Run(context.Background(), staging, processed); err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	originalInsertDate := store.silver["T1"].InsertDate

	// New version of the same transaction arrives in a later file.
	if err := os.WriteFile(staging, []byte(second), 0o644); err != nil {
		t.Fatalf("failed to rewrite staging file: %v", err)
	}
	// Relocation target already holds sales.json from run one; point the
	// second run at a fresh processed dir to keep the rename simple.
	if _, err := p.Run(context.Background(), staging, filepath.Join(dir, "processed2")); err != nil {
		t.Fatalf("second run returned error: %v", err)
	}

	curated := store.silver["T1"]
	if curated.Price != 20.0 {
		t.Fatalf("expected upsert to take the newer price, got %v", curated.Price)
	}
	if curated.Quantity == nil || *curated.Quantity != 5 {
		t.Fatalf("expected upsert to take the newer quantity, got %v", curated.Quantity)
	}
	if !curated.InsertDate.Equal(originalInsertDate) {
		t.Fatalf("insert_date must survive the upsert unchanged")
	}
	if len(store.silver) != 1 {
		t.Fatalf("expected exactly one curated row, got %d", len(store.silver))
	}
}

func TestExtractorFirstRunUsesEpochMinimum(t *testing.T) {
	store := newFakeStore()
	old := domain.RawSalesRecord{
		TransactionID: strPtr("ancient"),
		InsertDate:    time.Date(1950, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	store.raw = append(store.raw, old)

	extractor := NewExtractor(store, store, zaptest.NewLogger(t))
	records, err := extractor.Extract(context.Background())
	if err != nil {
		t.Fatalf("extract returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("first run must see all history, got %d records", len(records))
	}
}

func TestExtractorBoundIsStrict(t *testing.T) {
	store := newFakeStore()
	boundary := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	store.watermark = &domain.WatermarkEntry{PipelineName: domain.PipelineName, LastInsertDate: boundary}
	store.raw = []domain.RawSalesRecord{
		{TransactionID: strPtr("at-bound"), InsertDate: boundary},
		{TransactionID: strPtr("after-bound"), InsertDate: boundary.Add(time.Second)},
	}

	extractor := NewExtractor(store, store, zaptest.NewLogger(t))
	records, err := extractor.Extract(context.Background())
	if err != nil {
		t.Fatalf("extract returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected only records strictly after the bound, got %d", len(records))
	}
	if *records[0].TransactionID != "after-bound" {
		t.Fatalf("unexpected record %s", *records[0].TransactionID)
	}
}

func TestWatermarkTrackerEmptyRawStore(t *testing.T) {
	store := newFakeStore()
	tracker := NewWatermarkTracker(store, zaptest.NewLogger(t))

	if err := tracker.Advance(context.Background()); err != nil {
		t.Fatalf("advance over empty store must not error: %v", err)
	}
	if store.watermark != nil {
		t.Fatalf("watermark must not be written for an empty raw store")
	}
}

func strPtr(s string) *string { return &s }
