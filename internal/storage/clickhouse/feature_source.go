package clickhouse

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"time-to-shop/internal/domain"
	"time-to-shop/internal/storage"
)

// FeatureSource implements storage.FeatureSource against a ClickHouse
// feature table.
type FeatureSource struct {
	conn  *Conn
	table string
}

// NewFeatureSource creates a FeatureSource reading from table.
func NewFeatureSource(conn *Conn, table string) *FeatureSource {
	return &FeatureSource{conn: conn, table: table}
}

// Compile-time interface check.
var _ storage.FeatureSource = (*FeatureSource)(nil)

// Fetch executes query (or the default full-table query) and converts the
// result set into a FeatureTable. Column names are taken from the result
// set, so an overridden query decides the schema; alignment against the
// manifest happens downstream.
func (s *FeatureSource) Fetch(ctx context.Context, query string) (*domain.FeatureTable, error) {
	if query == "" {
		query = fmt.Sprintf("SELECT * FROM %s", s.table)
	}

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, classify(fmt.Errorf("query feature table: %w", err))
	}
	defer rows.Close()

	columns := rows.Columns()
	types := rows.ColumnTypes()

	table := &domain.FeatureTable{Columns: columns}

	for rows.Next() {
		dest := make([]any, len(columns))
		for i, ct := range types {
			dest[i] = reflect.New(ct.ScanType()).Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, classify(fmt.Errorf("scan feature row: %w", err))
		}

		row, err := buildRow(columns, dest)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("iterate feature rows: %w", err))
	}

	return table, nil
}

// buildRow splits a scanned row into typed identifiers and feature cells.
func buildRow(columns []string, dest []any) (domain.FeatureRow, error) {
	row := domain.FeatureRow{Cells: make(map[string]*float64, len(columns))}

	for i, col := range columns {
		v := deref(dest[i])
		switch {
		case strings.EqualFold(col, domain.ColumnCustomerID):
			id, ok := toInt64(v)
			if !ok {
				return row, fmt.Errorf("column %s: unsupported type %T", col, v)
			}
			row.Key.CustomerID = id
		case strings.EqualFold(col, domain.ColumnAddressID):
			if id, ok := toInt64(v); ok {
				addr := id
				row.Key.AddressID = &addr
			}
		case strings.EqualFold(col, domain.ColumnPreviousPurchase):
			ts, ok := toTime(v)
			if !ok {
				return row, fmt.Errorf("column %s: unsupported type %T", col, v)
			}
			row.Key.PreviousPurchase = ts
		default:
			row.Cells[col] = toFloatCell(v)
		}
	}
	return row, nil
}

// deref unwraps the scan destination and, for Nullable columns, the inner
// pointer. Returns nil for NULL.
func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// toFloatCell converts a numeric cell to *float64, nil for NULL or
// non-numeric values.
func toFloatCell(v any) *float64 {
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	default:
		return 0, false
	}
}

func toInt64(v any) (int64, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

func toTime(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

// classify marks connection-level failures as transient so the
// orchestrator retries them; server-side errors (malformed query,
// permissions) pass through and fail fast.
func classify(err error) error {
	if storage.IsTransient(err) {
		return storage.Transient(err)
	}
	return err
}
