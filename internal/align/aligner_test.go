package align

import (
	"errors"
	"testing"
	"time"

	"time-to-shop/internal/domain"
	"time-to-shop/internal/pipeline"
)

func f(v float64) *float64 { return &v }

var testPurchase = time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

// smallManifest keeps tests readable; the aligner is agnostic to the
// production feature list.
func smallManifest() *domain.FeatureManifest {
	return domain.NewFeatureManifest([]string{"SALES_6M", "FREQUENCY_6M", "BBB_ECOM_R_DECILE"})
}

func testTable(columns []string, rows ...domain.FeatureRow) *domain.FeatureTable {
	return &domain.FeatureTable{Columns: columns, Rows: rows}
}

func idColumns(features ...string) []string {
	return append([]string{"CUSTOMER_ID", "ADDRESS_ID", "PREVIOUS_PURCHASE"}, features...)
}

func TestAlign_OutputFollowsManifestOrder(t *testing.T) {
	// Input columns deliberately shuffled relative to the manifest
	table := testTable(
		idColumns("BBB_ECOM_R_DECILE", "SALES_6M", "FREQUENCY_6M"),
		domain.FeatureRow{
			Key: domain.RecordKey{CustomerID: 42, PreviousPurchase: testPurchase},
			Cells: map[string]*float64{
				"BBB_ECOM_R_DECILE": f(3),
				"SALES_6M":          f(150),
				"FREQUENCY_6M":      f(7),
			},
		},
	)

	batch, err := New(smallManifest(), nil, nil).Align(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", batch.Len())
	}

	want := []float64{150, 7, 3}
	for i, v := range want {
		if batch.Vectors[0][i] != v {
			t.Errorf("position %d: expected %f, got %f", i, v, batch.Vectors[0][i])
		}
	}
}

func TestAlign_CaseInsensitiveColumnMatch(t *testing.T) {
	table := testTable(
		idColumns("sales_6m", "Frequency_6M", "bbb_ecom_r_decile"),
		domain.FeatureRow{
			Key: domain.RecordKey{CustomerID: 1, PreviousPurchase: testPurchase},
			Cells: map[string]*float64{
				"sales_6m":          f(10),
				"Frequency_6M":      f(2),
				"bbb_ecom_r_decile": f(5),
			},
		},
	)

	batch, err := New(smallManifest(), nil, nil).Align(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := batch.Vectors[0]
	if got[0] != 10 || got[1] != 2 || got[2] != 5 {
		t.Errorf("expected [10 2 5], got %v", got)
	}
}

func TestAlign_MissingRequiredColumnFailsWholeBatch(t *testing.T) {
	table := testTable(
		idColumns("SALES_6M", "BBB_ECOM_R_DECILE"), // FREQUENCY_6M absent
		domain.FeatureRow{
			Key:   domain.RecordKey{CustomerID: 1, PreviousPurchase: testPurchase},
			Cells: map[string]*float64{"SALES_6M": f(10), "BBB_ECOM_R_DECILE": f(5)},
		},
	)

	batch, err := New(smallManifest(), nil, nil).Align(table)

	var schemaErr *pipeline.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Column != "FREQUENCY_6M" {
		t.Errorf("expected error to name FREQUENCY_6M, got %q", schemaErr.Column)
	}
	if batch != nil {
		t.Error("expected zero rows forwarded on schema error")
	}
}

func TestAlign_OptionalColumnUsesDeclaredDefault(t *testing.T) {
	table := testTable(
		idColumns("SALES_6M", "BBB_ECOM_R_DECILE"),
		domain.FeatureRow{
			Key:   domain.RecordKey{CustomerID: 1, PreviousPurchase: testPurchase},
			Cells: map[string]*float64{"SALES_6M": f(10), "BBB_ECOM_R_DECILE": f(5)},
		},
	)
	defaults := Defaults{"FREQUENCY_6M": 1}

	batch, err := New(smallManifest(), defaults, nil).Align(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Vectors[0][1] != 1 {
		t.Errorf("expected defaulted FREQUENCY_6M = 1, got %f", batch.Vectors[0][1])
	}
}

func TestAlign_MissingIdentifierColumn(t *testing.T) {
	table := testTable(
		[]string{"SALES_6M", "FREQUENCY_6M", "BBB_ECOM_R_DECILE"},
		domain.FeatureRow{
			Key: domain.RecordKey{CustomerID: 1, PreviousPurchase: testPurchase},
		},
	)

	_, err := New(smallManifest(), nil, nil).Align(table)

	var schemaErr *pipeline.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Column != "CUSTOMER_ID" {
		t.Errorf("expected error to name CUSTOMER_ID, got %q", schemaErr.Column)
	}
}

func TestAlign_NullCellFillRules(t *testing.T) {
	table := testTable(
		idColumns("SALES_6M", "FREQUENCY_6M", "BBB_ECOM_R_DECILE"),
		domain.FeatureRow{
			Key: domain.RecordKey{CustomerID: 1, PreviousPurchase: testPurchase},
			Cells: map[string]*float64{
				"SALES_6M":          nil, // NULL amount -> 0
				"FREQUENCY_6M":      nil, // NULL count -> 0
				"BBB_ECOM_R_DECILE": nil, // NULL upstream decile -> 11
			},
		},
	)

	batch, err := New(smallManifest(), nil, nil).Align(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := batch.Vectors[0]
	if got[0] != 0 || got[1] != 0 || got[2] != 11 {
		t.Errorf("expected [0 0 11], got %v", got)
	}
}

func TestFillValueFor(t *testing.T) {
	cases := []struct {
		column string
		want   float64
	}{
		{"BBB_INSTORE_RFM_DECILE", 11},
		{"bbb_ecom_r_decile", 11},
		{"PH_R90D", 366},
		{"SALES_6M", 0},
		{"MARITAL_STAT", 0},
	}
	for _, c := range cases {
		if got := FillValueFor(c.column); got != c.want {
			t.Errorf("FillValueFor(%s): expected %f, got %f", c.column, c.want, got)
		}
	}
}

func TestAlign_ClampsNegativeSales(t *testing.T) {
	table := testTable(
		idColumns("SALES_6M", "FREQUENCY_6M", "BBB_ECOM_R_DECILE"),
		domain.FeatureRow{
			Key: domain.RecordKey{CustomerID: 1, PreviousPurchase: testPurchase},
			Cells: map[string]*float64{
				"SALES_6M":          f(-35.5), // returns exceeded purchases
				"FREQUENCY_6M":      f(2),
				"BBB_ECOM_R_DECILE": f(4),
			},
		},
	)

	batch, err := New(smallManifest(), nil, nil).Align(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Vectors[0][0] != 0 {
		t.Errorf("expected negative SALES_6M clamped to 0, got %f", batch.Vectors[0][0])
	}
}

func TestAlign_DuplicateCustomerIDsPreserved(t *testing.T) {
	row := func() domain.FeatureRow {
		return domain.FeatureRow{
			Key: domain.RecordKey{CustomerID: 7, PreviousPurchase: testPurchase},
			Cells: map[string]*float64{
				"SALES_6M": f(1), "FREQUENCY_6M": f(1), "BBB_ECOM_R_DECILE": f(1),
			},
		}
	}
	table := testTable(
		idColumns("SALES_6M", "FREQUENCY_6M", "BBB_ECOM_R_DECILE"),
		row(), row(),
	)

	batch, err := New(smallManifest(), nil, nil).Align(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Len() != 2 {
		t.Errorf("expected duplicates preserved (2 rows), got %d", batch.Len())
	}
}

func TestAlign_NonPositiveCustomerID(t *testing.T) {
	table := testTable(
		idColumns("SALES_6M", "FREQUENCY_6M", "BBB_ECOM_R_DECILE"),
		domain.FeatureRow{
			Key: domain.RecordKey{CustomerID: 0, PreviousPurchase: testPurchase},
			Cells: map[string]*float64{
				"SALES_6M": f(1), "FREQUENCY_6M": f(1), "BBB_ECOM_R_DECILE": f(1),
			},
		},
	)

	_, err := New(smallManifest(), nil, nil).Align(table)

	var schemaErr *pipeline.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestAlign_EmptyTable(t *testing.T) {
	batch, err := New(smallManifest(), nil, nil).Align(&domain.FeatureTable{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Len() != 0 {
		t.Errorf("expected empty batch, got %d rows", batch.Len())
	}
}
