package memory

import (
	"time"

	"time-to-shop/internal/domain"
)

// FixtureFeatureTable returns a small deterministic feature table for
// fixture runs (cmd/score -use-memory) and end-to-end tests. Values are
// chosen to spread customers across the probability range of the sample
// model.
func FixtureFeatureTable() *domain.FeatureTable {
	columns := append(
		[]string{domain.ColumnCustomerID, domain.ColumnAddressID, domain.ColumnPreviousPurchase},
		domain.DefaultFeatureManifest().Names()...,
	)

	purchase := func(day int) time.Time {
		return time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC)
	}

	rows := []struct {
		customerID int64
		addressID  int64
		purchase   time.Time
		sales      float64
		frequency  float64
	}{
		{1001, 501, purchase(1), 920, 9},
		{1002, 502, purchase(3), 310, 4},
		{1003, 503, purchase(7), 45, 1},
		{1004, 504, purchase(12), 640, 7},
		{1005, 505, purchase(19), 120, 2},
	}

	table := &domain.FeatureTable{Columns: columns}
	for _, r := range rows {
		addr := r.addressID
		cells := make(map[string]*float64)
		for _, name := range domain.DefaultFeatureManifest().Names() {
			v := 1.0
			cells[name] = &v
		}
		sales := r.sales
		freq := r.frequency
		cells["SALES_6M"] = &sales
		cells["FREQUENCY_6M"] = &freq

		table.Rows = append(table.Rows, domain.FeatureRow{
			Key: domain.RecordKey{
				CustomerID:       r.customerID,
				AddressID:        &addr,
				PreviousPurchase: r.purchase,
			},
			Cells: cells,
		})
	}
	return table
}
