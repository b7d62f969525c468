package domain

import (
	"math"
	"strings"
	"time"
)

// PipelineName keys the watermark row for the sales silver pipeline.
const PipelineName = "sales_silver"

// Timestamp layouts used when serializing records for external review.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// EpochMin is the extraction lower bound assumed when no watermark exists.
var EpochMin = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// RawSalesRecord is a sales transaction as landed in raw.sales_raw. Every
// source field is optional; InsertDate is assigned at ingestion and never
// comes from the source file. The raw store permits duplicates across runs.
type RawSalesRecord struct {
	TransactionID *string
	CustomerID    *string
	ProductID     *string
	ProductName   *string
	Category      *string
	Price         *float64
	Quantity      *int
	Discount      *float64
	Date          *string
	Region        *string
	InsertDate    time.Time
}

// SanitizedSalesRecord is a raw record after field cleaning, before the DQ
// gate: customer_id extracted, discount defaulted, date parsed (nil when
// unparseable), update timestamp stamped.
type SanitizedSalesRecord struct {
	TransactionID *string
	CustomerID    *string
	ProductID     *string
	ProductName   *string
	Category      *string
	Price         *float64
	Quantity      *int
	Discount      float64
	Date          *time.Time
	Region        *string
	InsertDate    time.Time
	UpdateDate    time.Time
}

// CuratedSalesRecord is a record that passed every DQ check and may be
// upserted into silver.sales. TransactionID, CustomerID and Price are
// guaranteed present; a record that failed validation cannot be represented
// as this type.
type CuratedSalesRecord struct {
	TransactionID string
	CustomerID    string
	ProductID     *string
	ProductName   *string
	Category      *string
	Price         float64
	Quantity      *int
	Discount      float64
	Date          *time.Time
	Region        *string
	InsertDate    time.Time
	UpdateDate    time.Time
}

// InvalidRecord is a sanitized record that failed at least one DQ check,
// destined for the diagnostic sink rather than the curated store.
type InvalidRecord struct {
	SanitizedSalesRecord
	Reasons []string
}

// DQErrors joins the failure reasons in check order, semicolon separated.
func (r InvalidRecord) DQErrors() string {
	return strings.Join(r.Reasons, "; ")
}

// WatermarkEntry tracks the last raw insert timestamp a pipeline has
// processed. One row per pipeline name; LastInsertDate never decreases.
type WatermarkEntry struct {
	PipelineName   string
	LastInsertDate time.Time
}

// Promote converts a sanitized record into a curated one. It must only be
// called for records with zero DQ failures.
func (r SanitizedSalesRecord) Promote() CuratedSalesRecord {
	return CuratedSalesRecord{
		TransactionID: *r.TransactionID,
		CustomerID:    *r.CustomerID,
		ProductID:     r.ProductID,
		ProductName:   r.ProductName,
		Category:      r.Category,
		Price:         *r.Price,
		Quantity:      r.Quantity,
		Discount:      r.Discount,
		Date:          r.Date,
		Region:        r.Region,
		InsertDate:    r.InsertDate,
		UpdateDate:    r.UpdateDate,
	}
}

// JSONSafe returns a representation of the invalid record that always
// serializes cleanly: timestamps rendered as strings, NaN collapsed to null,
// absent fields as explicit nulls.
func (r InvalidRecord) JSONSafe() map[string]any {
	return map[string]any{
		"transaction_id": safeString(r.TransactionID),
		"customer_id":    safeString(r.CustomerID),
		"product_id":     safeString(r.ProductID),
		"product_name":   safeString(r.ProductName),
		"category":       safeString(r.Category),
		"price":          safeFloat(r.Price),
		"quantity":       safeInt(r.Quantity),
		"discount":       safeFloatValue(r.Discount),
		"date":           safeTime(r.Date),
		"region":         safeString(r.Region),
		"insert_date":    r.InsertDate.Format(TimestampLayout),
		"update_date":    r.UpdateDate.Format(TimestampLayout),
		"dq_errors":      r.DQErrors(),
	}
}

func safeString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func safeInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func safeFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return safeFloatValue(*f)
}

func safeFloatValue(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func safeTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(TimestampLayout)
}
