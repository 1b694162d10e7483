// Package ledger is the append-only trade ledger the session snapshot is
// computed from. It is the store of record for intraday aggregates: nothing
// downstream keeps incremental counters of its own.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/odtelabs/riskgate/internal/trade"
)

// Reader is the read side consumed by the session snapshot builder.
type Reader interface {
	// RecordsOn returns all records stamped on the given trading day,
	// in append order.
	RecordsOn(day string) []trade.Record
}

// Ledger is an in-memory append-only record log for one account.
// Single-writer, same goroutine as the admission cycle.
type Ledger struct {
	records []trade.Record
}

func New() *Ledger {
	return &Ledger{}
}

// Append adds a record, assigning an ID when the caller did not.
// Records are never updated or removed.
func (l *Ledger) Append(rec trade.Record) (trade.Record, error) {
	if rec.Timestamp.IsZero() {
		return trade.Record{}, fmt.Errorf("ledger: record requires a timestamp")
	}
	if rec.Kind == trade.RecordClose && rec.RefID == "" {
		return trade.Record{}, fmt.Errorf("ledger: close record requires ref_id")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	l.records = append(l.records, rec)
	return rec, nil
}

// RecordsOn returns the records stamped on the given YYYY-MM-DD day.
func (l *Ledger) RecordsOn(day string) []trade.Record {
	var out []trade.Record
	for _, r := range l.records {
		if r.Timestamp.Format("2006-01-02") == day {
			out = append(out, r)
		}
	}
	return out
}

// All returns every record in append order.
func (l *Ledger) All() []trade.Record {
	return append([]trade.Record(nil), l.records...)
}

// Len returns the number of records.
func (l *Ledger) Len() int { return len(l.records) }

// Since returns records stamped at or after t, in append order.
func (l *Ledger) Since(t time.Time) []trade.Record {
	var out []trade.Record
	for _, r := range l.records {
		if !r.Timestamp.Before(t) {
			out = append(out, r)
		}
	}
	return out
}
