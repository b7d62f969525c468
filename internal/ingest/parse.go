package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"salesetl/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned when a staging file is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// saleEntry mirrors the canonical JSON staging shape with a nested product.
type saleEntry struct {
	TransactionID *string      `json:"transaction_id"`
	CustomerID    *string      `json:"customer_id"`
	Product       productEntry `json:"product"`
	Quantity      *int         `json:"quantity"`
	Discount      *float64     `json:"discount"`
	Date          *string      `json:"date"`
	Region        *string      `json:"region"`
}

type productEntry struct {
	ID       *string  `json:"id"`
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Price    *float64 `json:"price"`
}

// ParseStagingFile decodes a staging file into raw records. JSON carries the
// nested product object; CSV and XLSX carry flat columns. InsertDate is left
// zero for the caller to stamp.
func ParseStagingFile(fileName string, payload []byte) ([]domain.RawSalesRecord, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".json":
		return parseJSON(payload)
	case ".csv":
		return parseCSV(payload)
	case ".xlsx":
		return parseExcel(payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseJSON(payload []byte) ([]domain.RawSalesRecord, error) {
	var entries []saleEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse json staging file: %w", err)
	}

	records := make([]domain.RawSalesRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, domain.RawSalesRecord{
			TransactionID: entry.TransactionID,
			CustomerID:    entry.CustomerID,
			ProductID:     entry.Product.ID,
			ProductName:   entry.Product.Name,
			Category:      entry.Product.Category,
			Price:         entry.Product.Price,
			Quantity:      entry.Quantity,
			Discount:      entry.Discount,
			Date:          entry.Date,
			Region:        entry.Region,
		})
	}

	return records, nil
}

func parseCSV(payload []byte) ([]domain.RawSalesRecord, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	return tableToRecords(rows)
}

func parseExcel(payload []byte) ([]domain.RawSalesRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	return tableToRecords(rows)
}

// tableToRecords maps flat tabular rows onto raw records. The first
// non-empty row is the header; unknown columns are ignored.
func tableToRecords(rows [][]string) ([]domain.RawSalesRecord, error) {
	var headers []string
	var dataRows [][]string

	for _, row := range rows {
		if rowIsEmpty(row) {
			continue
		}
		if headers == nil {
			headers = make([]string, len(row))
			for i, value := range row {
				headers[i] = strings.ToLower(strings.TrimSpace(value))
			}
			continue
		}
		dataRows = append(dataRows, row)
	}

	if headers == nil {
		return []domain.RawSalesRecord{}, nil
	}

	records := make([]domain.RawSalesRecord, 0, len(dataRows))
	for idx, row := range dataRows {
		record, err := rowToRecord(headers, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", idx+2, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func rowToRecord(headers []string, row []string) (domain.RawSalesRecord, error) {
	var record domain.RawSalesRecord

	for col, header := range headers {
		if col >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}

		switch header {
		case "transaction_id":
			record.TransactionID = &value
		case "customer_id":
			record.CustomerID = &value
		case "product_id":
			record.ProductID = &value
		case "product_name":
			record.ProductName = &value
		case "category":
			record.Category = &value
		case "price":
			price, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return record, fmt.Errorf("invalid price %q: %w", value, err)
			}
			record.Price = &price
		case "quantity":
			quantity, err := strconv.Atoi(value)
			if err != nil {
				return record, fmt.Errorf("invalid quantity %q: %w", value, err)
			}
			record.Quantity = &quantity
		case "discount":
			discount, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return record, fmt.Errorf("invalid discount %q: %w", value, err)
			}
			record.Discount = &discount
		case "date":
			record.Date = &value
		case "region":
			record.Region = &value
		}
	}

	return record, nil
}

func rowIsEmpty(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
