package domain

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one denormalized source record. Values arrive untyped from the
// scanner; the accessors apply the expected semantic type. An absent or
// null column yields nil, never an error — malformed-value handling is
// the caller's decision per field.
type Row map[string]any

func (r Row) GetString(col string) *string {
	v, ok := r[col]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		return &s
	default:
		return nil
	}
}

func (r Row) GetInt(col string) *int {
	v, ok := r[col]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case int:
		return &t
	case int64:
		n := int(t)
		return &n
	case float64:
		n := int(t)
		return &n
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

func (r Row) GetBool(col string) *bool {
	v, ok := r[col]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case bool:
		return &t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		return &b
	default:
		return nil
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006",
}

func (r Row) GetDate(col string) *time.Time {
	v, ok := r[col]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return &parsed
			}
		}
		return nil
	default:
		return nil
	}
}

func (r Row) GetDecimal(col string) *decimal.Decimal {
	v, ok := r[col]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		d := decimal.NewFromFloat(t)
		return &d
	case int:
		d := decimal.NewFromInt(int64(t))
		return &d
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		return &d
	default:
		return nil
	}
}

// RowIter walks a finite row set lazily, sql.Rows style. It is not
// restartable; a second pass requires a fresh Scan.
type RowIter interface {
	Next() bool
	Row() Row
	Err() error
	Close() error
}

// TableScanner is the external source collaborator. Implementations own
// the proprietary file format; the engine only sees tables of rows.
type TableScanner interface {
	Tables() []string
	RowCount(ctx context.Context, table string) (int, error)
	Scan(ctx context.Context, table string) (RowIter, error)
}
