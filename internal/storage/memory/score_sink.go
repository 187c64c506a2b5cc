package memory

import (
	"context"
	"sync"

	"time-to-shop/internal/domain"
	"time-to-shop/internal/storage"
)

// ScoreSink is an in-memory implementation of storage.ScoreSink.
type ScoreSink struct {
	name string

	mu      sync.RWMutex
	records []*domain.ScoredRecord
}

// NewScoreSink creates an in-memory sink with the given display name.
func NewScoreSink(name string) *ScoreSink {
	return &ScoreSink{name: name}
}

// Compile-time interface check.
var _ storage.ScoreSink = (*ScoreSink)(nil)

// Name identifies the sink in run results and logs.
func (s *ScoreSink) Name() string {
	return s.name
}

// Write replaces the held records with copies of the batch.
func (s *ScoreSink) Write(_ context.Context, records []*domain.ScoredRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]*domain.ScoredRecord, len(records))
	for i, r := range records {
		copy := *r
		s.records[i] = &copy
	}
	return nil
}

// Records returns copies of the persisted records.
func (s *ScoreSink) Records() []*domain.ScoredRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ScoredRecord, len(s.records))
	for i, r := range s.records {
		copy := *r
		out[i] = &copy
	}
	return out
}
