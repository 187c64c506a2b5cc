// Package memory provides in-memory source and sink implementations for
// tests and fixture runs.
package memory

import (
	"context"
	"sync"

	"time-to-shop/internal/domain"
	"time-to-shop/internal/storage"
)

// FeatureSource is an in-memory implementation of storage.FeatureSource.
// It serves a fixed table regardless of the query string.
type FeatureSource struct {
	mu    sync.RWMutex
	table *domain.FeatureTable
}

// NewFeatureSource creates a source serving table.
func NewFeatureSource(table *domain.FeatureTable) *FeatureSource {
	return &FeatureSource{table: table}
}

// Compile-time interface check.
var _ storage.FeatureSource = (*FeatureSource)(nil)

// Fetch returns the configured table. The query string is ignored; an
// in-memory source has nothing to execute.
func (s *FeatureSource) Fetch(_ context.Context, _ string) (*domain.FeatureTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.table == nil {
		return &domain.FeatureTable{}, nil
	}
	return s.table, nil
}
