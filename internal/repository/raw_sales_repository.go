package repository

import (
	"context"
	"fmt"
	"time"

	"salesetl/internal/db"
	"salesetl/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type rawSalesRepository struct {
	conn *db.Connection
}

// NewRawSalesRepository wires a repository backed by the raw landing table.
func NewRawSalesRepository(conn *db.Connection) RawSalesRepository {
	return &rawSalesRepository{conn: conn}
}

const insertRawSQL = `
	INSERT INTO raw.sales_raw (
		transaction_id,
		customer_id,
		product_id,
		product_name,
		category,
		price,
		quantity,
		discount,
		date,
		region,
		insert_date
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

func (r *rawSalesRepository) InsertBatch(ctx context.Context, records []domain.RawSalesRecord) (int, error) {
	if r.conn == nil {
		return 0, fmt.Errorf("raw sales repository not initialized")
	}
	if len(records) == 0 {
		return 0, nil
	}

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, record := range records {
			batch.Queue(
				insertRawSQL,
				record.TransactionID,
				record.CustomerID,
				record.ProductID,
				record.ProductName,
				record.Category,
				record.Price,
				record.Quantity,
				record.Discount,
				record.Date,
				record.Region,
				record.InsertDate,
			)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range records {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to insert raw record: %w", err)
			}
		}

		return results.Close()
	})
	if err != nil {
		return 0, err
	}

	return len(records), nil
}

func (r *rawSalesRepository) ExtractSince(ctx context.Context, since time.Time) ([]domain.RawSalesRecord, error) {
	if r.conn == nil {
		return nil, fmt.Errorf("raw sales repository not initialized")
	}

	rows, err := r.conn.Pool.Query(
		ctx,
		`SELECT transaction_id, customer_id, product_id, product_name, category,
		        price, quantity, discount, date, region, insert_date
		 FROM raw.sales_raw
		 WHERE insert_date > $1
		 ORDER BY insert_date`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to extract raw records: %w", err)
	}
	defer rows.Close()

	records := []domain.RawSalesRecord{}
	for rows.Next() {
		record, scanErr := scanRawRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate raw records: %w", rowsErr)
	}

	return records, nil
}

func scanRawRecord(rows pgx.Rows) (domain.RawSalesRecord, error) {
	var (
		record        domain.RawSalesRecord
		transactionID pgtype.Text
		customerID    pgtype.Text
		productID     pgtype.Text
		productName   pgtype.Text
		category      pgtype.Text
		price         pgtype.Float8
		quantity      pgtype.Int4
		discount      pgtype.Float8
		date          pgtype.Text
		region        pgtype.Text
		insertDate    pgtype.Timestamp
	)

	if err := rows.Scan(
		&transactionID,
		&customerID,
		&productID,
		&productName,
		&category,
		&price,
		&quantity,
		&discount,
		&date,
		&region,
		&insertDate,
	); err != nil {
		return domain.RawSalesRecord{}, fmt.Errorf("failed to scan raw record: %w", err)
	}

	record.TransactionID = textPtr(transactionID)
	record.CustomerID = textPtr(customerID)
	record.ProductID = textPtr(productID)
	record.ProductName = textPtr(productName)
	record.Category = textPtr(category)
	record.Price = float8Ptr(price)
	record.Quantity = int4Ptr(quantity)
	record.Discount = float8Ptr(discount)
	record.Date = textPtr(date)
	record.Region = textPtr(region)
	if insertDate.Valid {
		record.InsertDate = insertDate.Time
	}

	return record, nil
}

func textPtr(value pgtype.Text) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func float8Ptr(value pgtype.Float8) *float64 {
	if !value.Valid {
		return nil
	}
	f := value.Float64
	return &f
}

func int4Ptr(value pgtype.Int4) *int {
	if !value.Valid {
		return nil
	}
	n := int(value.Int32)
	return &n
}
