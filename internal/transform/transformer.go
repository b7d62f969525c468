package transform

import (
	"time"

	"salesetl/internal/domain"

	"go.uber.org/zap"
)

// Transformer cleans extracted raw records and splits them at the DQ gate.
type Transformer struct {
	logger *zap.Logger
}

// NewTransformer creates a new transformer.
func NewTransformer(logger *zap.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform sanitizes, date-parses, and validates a batch. Every input
// record lands in exactly one of the two partitions; nothing is dropped.
func (t *Transformer) Transform(records []domain.RawSalesRecord) ([]domain.CuratedSalesRecord, []domain.InvalidRecord) {
	if len(records) == 0 {
		t.logger.Warn("received empty batch for transformation")
		return nil, nil
	}

	start := time.Now()
	updateDate := start.UTC()

	t.logger.Info("starting sales transformation", zap.Int("input_records", len(records)))

	valid := make([]domain.CuratedSalesRecord, 0, len(records))
	invalid := []domain.InvalidRecord{}

	var filledDiscounts, unparsableDates int

	for _, raw := range records {
		if raw.Discount == nil {
			filledDiscounts++
		}

		sanitized := domain.SanitizedSalesRecord{
			TransactionID: raw.TransactionID,
			CustomerID:    SanitizeCustomerID(raw.CustomerID),
			ProductID:     raw.ProductID,
			ProductName:   raw.ProductName,
			Category:      raw.Category,
			Price:         raw.Price,
			Quantity:      raw.Quantity,
			Discount:      DefaultDiscount(raw.Discount),
			Date:          ParseDateSafe(raw.Date),
			Region:        raw.Region,
			InsertDate:    raw.InsertDate,
			UpdateDate:    updateDate,
		}

		if raw.Date != nil && sanitized.Date == nil {
			unparsableDates++
		}

		reasons := Validate(sanitized)
		if len(reasons) > 0 {
			invalid = append(invalid, domain.InvalidRecord{
				SanitizedSalesRecord: sanitized,
				Reasons:              reasons,
			})
			continue
		}

		valid = append(valid, sanitized.Promote())
	}

	if filledDiscounts > 0 {
		t.logger.Info("filled null discounts with 0", zap.Int("records", filledDiscounts))
	}
	if unparsableDates > 0 {
		// A null date does not fail the DQ gate; surface it here so the gap
		// stays visible.
		t.logger.Warn("records with invalid or unparsable dates", zap.Int("records", unparsableDates))
	}

	t.logger.Info("sales transformation completed",
		zap.Int("valid_records", len(valid)),
		zap.Int("invalid_records", len(invalid)),
		zap.Duration("duration", time.Since(start)),
	)

	return valid, invalid
}
