package repository

import (
	"context"
	"fmt"

	"salesetl/internal/db"
	"salesetl/internal/domain"

	"github.com/jackc/pgx/v5"
)

type silverSalesRepository struct {
	conn *db.Connection
}

// NewSilverSalesRepository wires a repository backed by the curated table.
func NewSilverSalesRepository(conn *db.Connection) SilverSalesRepository {
	return &silverSalesRepository{conn: conn}
}

const upsertSilverSQL = `
	INSERT INTO silver.sales (
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
		insert_date,
		update_date
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (transaction_id)
	DO UPDATE SET
		customer_id = EXCLUDED.customer_id,
		product_id = EXCLUDED.product_id,
		product_name = EXCLUDED.product_name,
		category = EXCLUDED.category,
		price = EXCLUDED.price,
		quantity = EXCLUDED.quantity,
		discount = EXCLUDED.discount,
		date = EXCLUDED.date,
		region = EXCLUDED.region,
		update_date = EXCLUDED.update_date`

func (r *silverSalesRepository) UpsertBatch(ctx context.Context, records []domain.CuratedSalesRecord) error {
	if r.conn == nil {
		return fmt.Errorf("silver sales repository not initialized")
	}
	if len(records) == 0 {
		return nil
	}

	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, record := range records {
			batch.Queue(
				upsertSilverSQL,
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
				record.UpdateDate,
			)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range records {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to upsert curated record: %w", err)
			}
		}

		return results.Close()
	})
}
