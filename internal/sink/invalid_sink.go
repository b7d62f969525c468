package sink

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"salesetl/internal/domain"

	"go.uber.org/zap"
)

// FileSink appends invalid records to a JSON review file so data-quality
// failures can be inspected without querying any store.
type FileSink struct {
	path   string
	logger *zap.Logger
}

// NewFileSink creates a sink writing to the given path.
func NewFileSink(path string, logger *zap.Logger) *FileSink {
	return &FileSink{path: path, logger: logger}
}

// Write appends the records to the review file, keeping entries from
// previous runs. Records are stored in their JSON-safe form.
func (s *FileSink) Write(records []domain.InvalidRecord) error {
	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create invalid records directory: %w", err)
	}

	entries, err := s.readExisting()
	if err != nil {
		return err
	}

	for _, record := range records {
		entries = append(entries, record.JSONSafe())
	}

	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode invalid records: %w", err)
	}

	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write invalid records file: %w", err)
	}

	s.logger.Info("wrote invalid records for review",
		zap.Int("records", len(records)),
		zap.String("path", s.path),
	)

	return nil
}

func (s *FileSink) readExisting() ([]map[string]any, error) {
	payload, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read invalid records file: %w", err)
	}
	if len(payload) == 0 {
		return []map[string]any{}, nil
	}

	var entries []map[string]any
	if err := json.Unmarshal(payload, &entries); err != nil {
		// A corrupt review file should not block the pipeline; start fresh.
		s.logger.Warn("invalid records file is not valid JSON, starting fresh",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return []map[string]any{}, nil
	}

	return entries, nil
}
