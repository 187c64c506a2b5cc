// Package localfile implements a score sink that writes a local CSV file.
package localfile

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"time-to-shop/internal/domain"
	"time-to-shop/internal/storage"
)

// CSVSink writes scored records to a local CSV file. Each run overwrites
// the file; the CSV is a point-in-time export, not an append log.
type CSVSink struct {
	path string
}

// NewCSVSink creates a CSVSink writing to path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Compile-time interface check.
var _ storage.ScoreSink = (*CSVSink)(nil)

// Name identifies the sink in run results and logs.
func (s *CSVSink) Name() string {
	return "local-file"
}

// Write renders all records and replaces the file contents.
func (s *CSVSink) Write(_ context.Context, records []*domain.ScoredRecord) error {
	if err := os.WriteFile(s.path, []byte(Render(records)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Render renders scored records as CSV.
func Render(records []*domain.ScoredRecord) string {
	var sb strings.Builder

	sb.WriteString("CUSTOMER_ID,PREVIOUS_PURCHASE,P,DECILE\n")
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("%d,%s,%.6f,%d\n",
			r.CustomerID,
			r.PreviousPurchase.Format(time.RFC3339),
			r.Probability,
			r.Decile,
		))
	}

	return sb.String()
}
