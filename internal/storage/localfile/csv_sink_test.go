package localfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"time-to-shop/internal/domain"
)

func sampleRecords() []*domain.ScoredRecord {
	return []*domain.ScoredRecord{
		{CustomerID: 1001, PreviousPurchase: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Probability: 0.92, Decile: 1},
		{CustomerID: 1002, PreviousPurchase: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), Probability: 0.031337, Decile: 10},
	}
}

func TestRender(t *testing.T) {
	out := Render(sampleRecords())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "CUSTOMER_ID,PREVIOUS_PURCHASE,P,DECILE" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "1001,2025-06-01T00:00:00Z,0.920000,1" {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if lines[2] != "1002,2025-06-03T00:00:00Z,0.031337,10" {
		t.Errorf("unexpected second row %q", lines[2])
	}
}

func TestRender_Empty(t *testing.T) {
	out := Render(nil)

	if out != "CUSTOMER_ID,PREVIOUS_PURCHASE,P,DECILE\n" {
		t.Errorf("expected header only, got %q", out)
	}
}

func TestWrite_OverwritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions_output.csv")
	sink := NewCSVSink(path)

	if err := sink.Write(context.Background(), sampleRecords()); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := sink.Write(context.Background(), sampleRecords()[:1]); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Errorf("expected the file to be replaced, got %d lines", len(lines))
	}
}

func TestWrite_BadPath(t *testing.T) {
	sink := NewCSVSink(filepath.Join(t.TempDir(), "missing", "out.csv"))

	if err := sink.Write(context.Background(), sampleRecords()); err == nil {
		t.Fatal("expected an error for an unwritable path")
	}
}
