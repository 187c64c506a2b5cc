package postgres

import (
	"context"
	"fmt"

	"time-to-shop/internal/domain"
	"time-to-shop/internal/storage"
)

// ScoreSink implements storage.ScoreSink by appending to the
// purchase_scores warehouse table. Repeated runs append; the table keeps
// one row per (customer, run), and readers take the latest scored_at.
type ScoreSink struct {
	pool  *Pool
	table string
}

// NewScoreSink creates a ScoreSink writing to table.
func NewScoreSink(pool *Pool, table string) *ScoreSink {
	return &ScoreSink{pool: pool, table: table}
}

// Compile-time interface check.
var _ storage.ScoreSink = (*ScoreSink)(nil)

// Name identifies the sink in run results and logs.
func (s *ScoreSink) Name() string {
	return "warehouse"
}

// Write appends all records atomically. The whole batch rolls back on any
// row failure so a retried write never half-duplicates a run.
func (s *ScoreSink) Write(ctx context.Context, records []*domain.ScoredRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return classify(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
		INSERT INTO %s (customer_id, previous_purchase, p, decile)
		VALUES ($1, $2, $3, $4)
	`, s.table)

	for _, r := range records {
		if _, err := tx.Exec(ctx, query,
			r.CustomerID, r.PreviousPurchase, r.Probability, r.Decile,
		); err != nil {
			return classify(fmt.Errorf("insert score for customer %d: %w", r.CustomerID, err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("commit scores: %w", err))
	}
	return nil
}

// classify maps driver failures onto the retry policy: permission errors
// fail fast, other server-side errors fail fast, anything else (connection
// loss, timeout) is transient.
func classify(err error) error {
	switch {
	case isPermissionError(err):
		return fmt.Errorf("%w: %v", storage.ErrPermissionDenied, err)
	case isServerError(err):
		return err
	default:
		return storage.Transient(err)
	}
}
