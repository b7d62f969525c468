package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesetl/internal/db"
	"salesetl/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type etlMetadataRepository struct {
	conn *db.Connection
}

// NewETLMetadataRepository wires a repository backed by the watermark table.
func NewETLMetadataRepository(conn *db.Connection) ETLMetadataRepository {
	return &etlMetadataRepository{conn: conn}
}

func (r *etlMetadataRepository) GetWatermark(ctx context.Context, pipelineName string) (*domain.WatermarkEntry, error) {
	if r.conn == nil {
		return nil, fmt.Errorf("etl metadata repository not initialized")
	}

	var lastInsertDate pgtype.Timestamp
	err := r.conn.Pool.QueryRow(
		ctx,
		`SELECT last_insert_date
		 FROM silver.etl_metadata
		 WHERE pipeline_name = $1`,
		pipelineName,
	).Scan(&lastInsertDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read watermark: %w", err)
	}

	entry := &domain.WatermarkEntry{PipelineName: pipelineName}
	if lastInsertDate.Valid {
		entry.LastInsertDate = lastInsertDate.Time
	}

	return entry, nil
}

// Advance serializes concurrent runs of the same pipeline with an advisory
// lock held for the duration of the transaction, so "read max, then upsert"
// cannot interleave and lose an update.
func (r *etlMetadataRepository) Advance(ctx context.Context, pipelineName string) (*time.Time, error) {
	if r.conn == nil {
		return nil, fmt.Errorf("etl metadata repository not initialized")
	}

	var maxInsertDate *time.Time
	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, pipelineName); err != nil {
			return fmt.Errorf("failed to acquire watermark lock: %w", err)
		}

		var maxDate pgtype.Timestamp
		if err := tx.QueryRow(ctx, `SELECT MAX(insert_date) FROM raw.sales_raw`).Scan(&maxDate); err != nil {
			return fmt.Errorf("failed to read max insert_date: %w", err)
		}

		if !maxDate.Valid {
			// Raw table is empty; never regress or null an existing watermark.
			return nil
		}

		if _, err := tx.Exec(
			ctx,
			`INSERT INTO silver.etl_metadata (pipeline_name, last_insert_date)
			 VALUES ($1, $2)
			 ON CONFLICT (pipeline_name)
			 DO UPDATE SET last_insert_date = EXCLUDED.last_insert_date
			 WHERE etl_metadata.last_insert_date < EXCLUDED.last_insert_date`,
			pipelineName,
			maxDate.Time,
		); err != nil {
			return fmt.Errorf("failed to upsert watermark: %w", err)
		}

		maxInsertDate = &maxDate.Time
		return nil
	})
	if err != nil {
		return nil, err
	}

	return maxInsertDate, nil
}
