// Package align validates and reorders raw feature tables into the exact
// ordered vectors the model expects.
package align

import (
	"strings"

	"go.uber.org/zap"

	"time-to-shop/internal/domain"
	"time-to-shop/internal/pipeline"
)

// Fill values for NULL cells, by column class. Deciles from upstream
// segmentation use 11 for "no activity"; recency columns use 366 (more
// than a year); everything else falls back to zero.
const (
	FillValueDecile  = 11
	FillValueRecency = 366
	FillValueDefault = 0
)

// Columns that must never be negative; negative amounts come from returns
// netting out above purchases and are clamped to zero.
var nonNegativeColumns = []string{"SALES_6M", "COUPON_EXPENSE_6M"}

// Defaults maps optional column names (case-insensitive) to the value used
// when the entire column is absent from the input. Columns not listed here
// are required: their absence is a schema error.
type Defaults map[string]float64

func (d Defaults) lookup(column string) (float64, bool) {
	for name, v := range d {
		if strings.EqualFold(name, column) {
			return v, true
		}
	}
	return 0, false
}

// Aligner reorders arbitrary input record sets into manifest order.
type Aligner struct {
	manifest *domain.FeatureManifest
	defaults Defaults
	logger   *zap.Logger
}

// New creates an Aligner for the given manifest. defaults may be nil.
func New(manifest *domain.FeatureManifest, defaults Defaults, logger *zap.Logger) *Aligner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aligner{manifest: manifest, defaults: defaults, logger: logger}
}

// Align validates the table and produces a batch whose vectors follow the
// manifest order exactly, regardless of input column order.
//
// For each manifest column the matching input column is located by
// case-insensitive exact name match. A missing required column fails the
// whole batch with a SchemaError naming the column; columns listed in the
// defaults are substituted with their declared value instead. NULL cells
// are filled per column class (decile/recency/zero). Identifier columns are
// carried alongside but excluded from the vector.
//
// Duplicate customer ids are preserved; uniqueness is a data-source
// responsibility. An empty table is not an error and aligns to an empty
// batch.
func (a *Aligner) Align(table *domain.FeatureTable) (*domain.AlignedBatch, error) {
	batch := &domain.AlignedBatch{Manifest: a.manifest}
	if table == nil || len(table.Rows) == 0 {
		return batch, nil
	}

	if !table.HasColumn(domain.ColumnCustomerID) {
		return nil, &pipeline.SchemaError{Column: domain.ColumnCustomerID}
	}
	if !table.HasColumn(domain.ColumnPreviousPurchase) {
		return nil, &pipeline.SchemaError{Column: domain.ColumnPreviousPurchase}
	}

	// Resolve each manifest column to an input column or a declared
	// default before touching any row, so a bad schema rejects the batch
	// with zero rows aligned.
	type columnPlan struct {
		source     string // actual input column name, "" when defaulted
		defaultVal float64
	}
	plan := make([]columnPlan, a.manifest.Len())
	for i, name := range a.manifest.Names() {
		if src, ok := resolveColumn(table.Columns, name); ok {
			plan[i] = columnPlan{source: src}
			continue
		}
		if v, ok := a.defaults.lookup(name); ok {
			plan[i] = columnPlan{defaultVal: v}
			a.logger.Warn("optional column missing, using declared default",
				zap.String("column", name), zap.Float64("default", v))
			continue
		}
		return nil, &pipeline.SchemaError{Column: name}
	}

	clamped := make(map[string]int)
	batch.Keys = make([]domain.RecordKey, 0, len(table.Rows))
	batch.Vectors = make([][]float64, 0, len(table.Rows))

	for _, row := range table.Rows {
		if row.Key.CustomerID <= 0 {
			return nil, &pipeline.SchemaError{
				Column: domain.ColumnCustomerID,
				Reason: "must be a positive integer",
			}
		}
		if row.Key.PreviousPurchase.IsZero() {
			return nil, &pipeline.SchemaError{
				Column: domain.ColumnPreviousPurchase,
				Reason: "must be a valid date",
			}
		}

		vec := make([]float64, a.manifest.Len())
		for i, p := range plan {
			if p.source == "" {
				vec[i] = p.defaultVal
				continue
			}
			v := cellValue(row, p.source)
			if isNonNegativeColumn(p.source) && v < 0 {
				v = 0
				clamped[p.source]++
			}
			vec[i] = v
		}

		batch.Keys = append(batch.Keys, row.Key)
		batch.Vectors = append(batch.Vectors, vec)
	}

	for col, n := range clamped {
		a.logger.Warn("clamped negative values to zero",
			zap.String("column", col), zap.Int("rows", n))
	}

	return batch, nil
}

// resolveColumn finds the input column matching name, ignoring case.
func resolveColumn(columns []string, name string) (string, bool) {
	for _, c := range columns {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// cellValue returns the row's value for column, filling NULLs per the
// column class.
func cellValue(row domain.FeatureRow, column string) float64 {
	if v, ok := lookupCell(row.Cells, column); ok && v != nil {
		return *v
	}
	return FillValueFor(column)
}

func lookupCell(cells map[string]*float64, column string) (*float64, bool) {
	if v, ok := cells[column]; ok {
		return v, true
	}
	for name, v := range cells {
		if strings.EqualFold(name, column) {
			return v, true
		}
	}
	return nil, false
}

// FillValueFor returns the NULL fill value for a column: 11 for upstream
// decile columns, 366 for recency columns, 0 otherwise.
func FillValueFor(column string) float64 {
	upper := strings.ToUpper(column)
	if strings.Contains(upper, "DECILE") {
		return FillValueDecile
	}
	if strings.Contains(upper, "_R") {
		return FillValueRecency
	}
	return FillValueDefault
}

func isNonNegativeColumn(column string) bool {
	for _, c := range nonNegativeColumns {
		if strings.EqualFold(c, column) {
			return true
		}
	}
	return false
}
