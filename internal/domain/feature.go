package domain

import (
	"strings"
	"time"
)

// Feature column names the production model was trained on, in training
// order. This order is the single source of truth for the vector layout fed
// to inference; input columns are realigned onto it by name, never trusted
// positionally.
var trainedFeatureColumns = []string{
	"SALES_6M",
	"FREQUENCY_6M",
	"BUYS_Q_03",
	"COUPON_Q_03",
	"PH_MREDEEM90D",
	"PH_PFREQ90D",
	"PH_CFREQ90D",
	"BBB_INSTORE_RFM_DECILE",
	"BBB_ECOM_R_DECILE",
	"BBB_OFFCOUPON_RFM_DECILE",
	"NUM_PERIODS",
	"NUM_PRODUCT_GROUPS",
	"PRESENCE_OF_CHILD",
	"MARITAL_STAT",
}

// Identifier column names carried alongside the feature vector.
const (
	ColumnCustomerID       = "CUSTOMER_ID"
	ColumnAddressID        = "ADDRESS_ID"
	ColumnPreviousPurchase = "PREVIOUS_PURCHASE"
)

// FeatureManifest is the ordered, immutable list of feature names a trained
// model expects. Lookups are case-insensitive; order is fixed at
// construction.
type FeatureManifest struct {
	names []string
	index map[string]int // upper-cased name -> position
}

// NewFeatureManifest builds a manifest from an ordered name list.
func NewFeatureManifest(names []string) *FeatureManifest {
	m := &FeatureManifest{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	copy(m.names, names)
	for i, n := range m.names {
		m.index[strings.ToUpper(n)] = i
	}
	return m
}

// DefaultFeatureManifest returns the manifest of the production model.
func DefaultFeatureManifest() *FeatureManifest {
	return NewFeatureManifest(trainedFeatureColumns)
}

// Len returns the number of features.
func (m *FeatureManifest) Len() int {
	return len(m.names)
}

// Names returns a copy of the ordered feature names.
func (m *FeatureManifest) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// At returns the feature name at position i.
func (m *FeatureManifest) At(i int) string {
	return m.names[i]
}

// Position returns the position of name (case-insensitive) and whether it
// is part of the manifest.
func (m *FeatureManifest) Position(name string) (int, bool) {
	i, ok := m.index[strings.ToUpper(name)]
	return i, ok
}

// Equal reports whether names matches the manifest exactly: same length,
// same order, names equal ignoring case.
func (m *FeatureManifest) Equal(names []string) bool {
	if len(names) != len(m.names) {
		return false
	}
	for i, n := range names {
		if !strings.EqualFold(n, m.names[i]) {
			return false
		}
	}
	return true
}

// RecordKey holds the identifier columns of one customer-period observation.
type RecordKey struct {
	CustomerID       int64  // required, positive
	AddressID        *int64 // optional
	PreviousPurchase time.Time
}

// FeatureRow is one raw row from the feature source: typed identifiers plus
// a loosely-typed name -> value cell map. A nil cell means NULL in the
// source table.
type FeatureRow struct {
	Key   RecordKey
	Cells map[string]*float64
}

// FeatureTable is the raw record set produced by the feature source.
// Columns lists every column name the source returned (identifiers
// included); cell lookups go through the per-row maps.
type FeatureTable struct {
	Columns []string
	Rows    []FeatureRow
}

// HasColumn reports whether the table contains a column with the given
// name, ignoring case.
func (t *FeatureTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// AlignedBatch is a validated batch whose vectors are ordered exactly per
// the manifest. Vectors[i] belongs to Keys[i].
type AlignedBatch struct {
	Manifest *FeatureManifest
	Keys     []RecordKey
	Vectors  [][]float64
}

// Len returns the number of rows in the batch.
func (b *AlignedBatch) Len() int {
	return len(b.Keys)
}
