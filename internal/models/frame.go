// Package models provides the data structures for dataset validation and
// model-quality tracking: the tabular Frame, validation reports, business
// rules, rolling-window metrics, and the persisted retrain flag.
//
// A Frame is a column-oriented table of daily records. Cell values are kept
// as shopspring decimals so that business-rule comparisons are exact and
// independent of float formatting in the source data.
package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ColumnKind classifies the inferred type of a Frame column.
type ColumnKind string

const (
	KindTime    ColumnKind = "time"
	KindNumeric ColumnKind = "numeric"
	KindString  ColumnKind = "string"
)

// Column holds a single named column. Exactly one of the value slices is
// populated depending on Kind; all slices a column owns share the Frame's
// row count. Missing values are the zero time.Time for KindTime columns and
// an invalid NullDecimal for KindNumeric columns.
type Column struct {
	Name  string
	Kind  ColumnKind
	Times []time.Time
	Nums  []decimal.NullDecimal
	Strs  []string
}

// Frame is an ordered table of rows stored column-wise.
type Frame struct {
	cols []Column
}

// NewFrame creates a Frame from the given columns. All columns must have the
// same length; mismatches are a caller bug and reported as an error.
func NewFrame(cols ...Column) (*Frame, error) {
	if len(cols) == 0 {
		return &Frame{}, nil
	}
	n := columnLen(cols[0])
	for _, c := range cols[1:] {
		if columnLen(c) != n {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, columnLen(c), n)
		}
	}
	return &Frame{cols: cols}, nil
}

func columnLen(c Column) int {
	switch c.Kind {
	case KindTime:
		return len(c.Times)
	case KindNumeric:
		return len(c.Nums)
	default:
		return len(c.Strs)
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.cols) == 0 {
		return 0
	}
	return columnLen(f.cols[0])
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or nil when absent.
func (f *Frame) Column(name string) *Column {
	for i := range f.cols {
		if f.cols[i].Name == name {
			return &f.cols[i]
		}
	}
	return nil
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	return f.Column(name) != nil
}

// Clone returns a deep copy of the Frame. Validation normalizes and sorts a
// working copy; the caller's Frame is never mutated.
func (f *Frame) Clone() *Frame {
	out := &Frame{cols: make([]Column, len(f.cols))}
	for i, c := range f.cols {
		cc := Column{Name: c.Name, Kind: c.Kind}
		if c.Times != nil {
			cc.Times = append([]time.Time(nil), c.Times...)
		}
		if c.Nums != nil {
			cc.Nums = append([]decimal.NullDecimal(nil), c.Nums...)
		}
		if c.Strs != nil {
			cc.Strs = append([]string(nil), c.Strs...)
		}
		out.cols[i] = cc
	}
	return out
}

// NullCount returns the number of missing values in the column.
func (c *Column) NullCount() int {
	count := 0
	switch c.Kind {
	case KindTime:
		for _, t := range c.Times {
			if t.IsZero() {
				count++
			}
		}
	case KindNumeric:
		for _, v := range c.Nums {
			if !v.Valid {
				count++
			}
		}
	default:
		for _, s := range c.Strs {
			if s == "" {
				count++
			}
		}
	}
	return count
}

// IsNullAt reports whether the value at row i is missing.
func (c *Column) IsNullAt(i int) bool {
	switch c.Kind {
	case KindTime:
		return c.Times[i].IsZero()
	case KindNumeric:
		return !c.Nums[i].Valid
	default:
		return c.Strs[i] == ""
	}
}

// cellKey renders the value at row i for row-equality comparison.
func (c *Column) cellKey(i int) string {
	switch c.Kind {
	case KindTime:
		if c.Times[i].IsZero() {
			return "<null>"
		}
		return c.Times[i].Format(time.RFC3339Nano)
	case KindNumeric:
		if !c.Nums[i].Valid {
			return "<null>"
		}
		return c.Nums[i].Decimal.String()
	default:
		return c.Strs[i]
	}
}

// rowKey renders a full row for duplicate detection. Two rows are duplicates
// only when every column compares equal.
func (f *Frame) rowKey(i int) string {
	key := ""
	for j := range f.cols {
		key += f.cols[j].cellKey(i) + "\x1f"
	}
	return key
}

// DuplicateRowCount counts rows identical to an earlier row in all columns.
func (f *Frame) DuplicateRowCount() int {
	seen := make(map[string]bool, f.Len())
	dups := 0
	for i := 0; i < f.Len(); i++ {
		k := f.rowKey(i)
		if seen[k] {
			dups++
		}
		seen[k] = true
	}
	return dups
}

// FilterRows returns a new Frame containing only the rows for which keep
// reports true.
func (f *Frame) FilterRows(keep func(i int) bool) *Frame {
	idx := make([]int, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return f.selectRows(idx)
}

// SortByTimeColumn returns a new Frame with rows ordered ascending by the
// named time column. Rows with a missing date sort first so they stay
// visible in downstream null counting.
func (f *Frame) SortByTimeColumn(name string) *Frame {
	col := f.Column(name)
	if col == nil || col.Kind != KindTime {
		return f.Clone()
	}
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return col.Times[idx[a]].Before(col.Times[idx[b]])
	})
	return f.selectRows(idx)
}

// NormalizeTimeColumn returns a new Frame with the named time column
// truncated to calendar days (time-of-day stripped, location preserved).
func (f *Frame) NormalizeTimeColumn(name string) *Frame {
	out := f.Clone()
	col := out.Column(name)
	if col == nil || col.Kind != KindTime {
		return out
	}
	for i, t := range col.Times {
		if t.IsZero() {
			continue
		}
		col.Times[i] = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	return out
}

func (f *Frame) selectRows(idx []int) *Frame {
	out := &Frame{cols: make([]Column, len(f.cols))}
	for j, c := range f.cols {
		cc := Column{Name: c.Name, Kind: c.Kind}
		switch c.Kind {
		case KindTime:
			cc.Times = make([]time.Time, len(idx))
			for k, i := range idx {
				cc.Times[k] = c.Times[i]
			}
		case KindNumeric:
			cc.Nums = make([]decimal.NullDecimal, len(idx))
			for k, i := range idx {
				cc.Nums[k] = c.Nums[i]
			}
		default:
			cc.Strs = make([]string, len(idx))
			for k, i := range idx {
				cc.Strs[k] = c.Strs[i]
			}
		}
		out.cols[j] = cc
	}
	return out
}

// Floats converts a numeric column to float64 values for metric computation.
// Missing values are left as zero; the returned ok flags report validity
// per row.
func (c *Column) Floats() ([]float64, []bool) {
	vals := make([]float64, len(c.Nums))
	ok := make([]bool, len(c.Nums))
	for i, v := range c.Nums {
		if v.Valid {
			vals[i] = v.Decimal.InexactFloat64()
			ok[i] = true
		}
	}
	return vals, ok
}
