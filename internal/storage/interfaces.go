package storage

import (
	"context"

	"time-to-shop/internal/domain"
)

// FeatureSource produces the raw feature table for one scoring run.
type FeatureSource interface {
	// Fetch executes query and returns the resulting record set. An empty
	// query runs the source's default feature-table query. The query string
	// is passed through unvalidated; malformed SQL surfaces as a source
	// error.
	Fetch(ctx context.Context, query string) (*domain.FeatureTable, error)
}

// ScoreSink persists scored records to one output destination.
type ScoreSink interface {
	// Name identifies the sink in run results and logs.
	Name() string

	// Write persists the records. Whether a repeated write appends or
	// overwrites is a property of the destination, not coordinated here.
	Write(ctx context.Context, records []*domain.ScoredRecord) error
}
