// Package postgres is the durable backing for the trade ledger. The
// in-memory ledger stays the store of record for the live session; this
// repository exists so history survives restarts and feeds offline review.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/odtelabs/riskgate/internal/trade"
)

// FillsRepo persists ledger records to the fills table.
type FillsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewFillsRepo(db *sqlx.DB, timeout time.Duration) *FillsRepo {
	return &FillsRepo{db: db, timeout: timeout}
}

// Insert appends one ledger record.
func (r *FillsRepo) Insert(ctx context.Context, account string, rec trade.Record) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO fills (id, account, ref_id, ts, symbol, lane, shape, kind, max_loss, realized_pnl)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, account, nullable(rec.RefID), rec.Timestamp, rec.Symbol,
		rec.Lane.String(), rec.Shape.String(), rec.Kind.String(),
		rec.MaxLoss, rec.RealizedPnL)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("duplicate fill %s: %w", rec.ID, err)
		}
		return fmt.Errorf("failed to insert fill: %w", err)
	}
	return nil
}

// InsertBatch appends multiple records atomically.
func (r *FillsRepo) InsertBatch(ctx context.Context, account string, recs []trade.Record) error {
	if len(recs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout*time.Duration(len(recs)/100+1))
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fills (id, account, ref_id, ts, symbol, lane, shape, kind, max_loss, realized_pnl)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		_, err = stmt.ExecContext(ctx,
			rec.ID, account, nullable(rec.RefID), rec.Timestamp, rec.Symbol,
			rec.Lane.String(), rec.Shape.String(), rec.Kind.String(),
			rec.MaxLoss, rec.RealizedPnL)
		if err != nil {
			return fmt.Errorf("failed to insert fill in batch: %w", err)
		}
	}

	return tx.Commit()
}

// ListBetween returns an account's records in a time range, oldest first.
func (r *FillsRepo) ListBetween(ctx context.Context, account string, from, to time.Time, limit int) ([]trade.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, ref_id, ts, symbol, lane, shape, kind, max_loss, realized_pnl
		FROM fills
		WHERE account = $1 AND ts >= $2 AND ts <= $3
		ORDER BY ts ASC
		LIMIT $4`

	rows, err := r.db.QueryxContext(ctx, query, account, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fills: %w", err)
	}
	defer rows.Close()

	var out []trade.Record
	for rows.Next() {
		rec, err := scanFill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fills: %w", err)
	}
	return out, nil
}

// Count returns the number of records for an account in a time range.
func (r *FillsRepo) Count(ctx context.Context, account string, from, to time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	err := r.db.QueryRowxContext(ctx, `
		SELECT COUNT(*) FROM fills
		WHERE account = $1 AND ts >= $2 AND ts <= $3`, account, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count fills: %w", err)
	}
	return count, nil
}

func scanFill(rows *sqlx.Rows) (trade.Record, error) {
	var (
		rec                        trade.Record
		refID                      sql.NullString
		laneStr, shapeStr, kindStr string
	)

	err := rows.Scan(&rec.ID, &refID, &rec.Timestamp, &rec.Symbol,
		&laneStr, &shapeStr, &kindStr, &rec.MaxLoss, &rec.RealizedPnL)
	if err != nil {
		return trade.Record{}, fmt.Errorf("failed to scan fill: %w", err)
	}

	rec.RefID = refID.String

	if rec.Lane, err = trade.ParseLane(laneStr); err != nil {
		return trade.Record{}, err
	}
	if rec.Shape, err = trade.ParseShape(shapeStr); err != nil {
		return trade.Record{}, err
	}
	switch kindStr {
	case "open":
		rec.Kind = trade.RecordOpen
	case "close":
		rec.Kind = trade.RecordClose
	default:
		return trade.Record{}, fmt.Errorf("unknown fill kind %q", kindStr)
	}
	return rec, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
