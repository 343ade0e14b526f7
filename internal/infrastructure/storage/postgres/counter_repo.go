package postgres

import (
	"context"
	"fmt"

	"jobdesk/internal/core/entity"
)

// CounterRepo owns the doc_counters table: one row per
// (year, doc_type, prefix) holding the last issued sequence.
type CounterRepo struct {
	txm *TxManager
}

// NewCounterRepo creates a counter repository.
func NewCounterRepo(txm *TxManager) *CounterRepo {
	return &CounterRepo{txm: txm}
}

// Next atomically increments and returns the sequence for key.
// The UPSERT both creates a missing counter at 1 and bumps an existing one;
// under serializable isolation two concurrent calls for the same key cannot
// both commit against the same stored value.
func (r *CounterRepo) Next(ctx context.Context, key entity.CounterKey) (int64, error) {
	q := r.txm.GetQuerier(ctx)

	var seq int64
	err := q.QueryRow(ctx, `
        INSERT INTO doc_counters (year, doc_type, prefix, last_seq, updated_at)
        VALUES ($1, $2, $3, 1, NOW())
        ON CONFLICT (year, doc_type, prefix)
        DO UPDATE SET last_seq = doc_counters.last_seq + 1, updated_at = NOW()
        RETURNING last_seq
	`, key.Year, string(key.DocType), key.Prefix).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// Raise lifts the stored sequence to at least floor. The counter is never
// lowered, preserving monotonicity.
func (r *CounterRepo) Raise(ctx context.Context, key entity.CounterKey, floor int64) error {
	q := r.txm.GetQuerier(ctx)

	var seq int64
	err := q.QueryRow(ctx, `
        INSERT INTO doc_counters (year, doc_type, prefix, last_seq, updated_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (year, doc_type, prefix)
        DO UPDATE SET last_seq = GREATEST(doc_counters.last_seq, EXCLUDED.last_seq), updated_at = NOW()
        RETURNING last_seq
	`, key.Year, string(key.DocType), key.Prefix, floor).Scan(&seq)
	if err != nil {
		return fmt.Errorf("raise sequence: %w", err)
	}
	return nil
}

// Current returns the stored sequence for key, 0 when the counter does not
// exist yet.
func (r *CounterRepo) Current(ctx context.Context, key entity.CounterKey) (int64, error) {
	q := r.txm.GetQuerier(ctx)

	var seq int64
	err := q.QueryRow(ctx, `
        SELECT COALESCE(
            (SELECT last_seq FROM doc_counters WHERE year = $1 AND doc_type = $2 AND prefix = $3),
            0
        )
	`, key.Year, string(key.DocType), key.Prefix).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	return seq, nil
}
