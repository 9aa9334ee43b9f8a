package models

import (
	"time"
)

// NoMissingColumns is the sentinel recorded when every declared column is
// present in the dataset.
const NoMissingColumns = "none"

// SchemaReport describes the schema and type check outcome.
type SchemaReport struct {
	// MissingColumns lists declared columns absent from the dataset, or
	// the NoMissingColumns sentinel as its only entry when none are missing.
	MissingColumns []string `json:"missing_columns"`

	// NonNumericColumns lists declared feature columns whose values could
	// not be read as numbers.
	NonNumericColumns []string `json:"non_numeric_columns,omitempty"`

	// DateColumnOK reports whether the declared date column holds
	// temporal values.
	DateColumnOK bool `json:"date_column_ok"`
}

// MissingDates summarizes calendar-day gaps in the date column.
type MissingDates struct {
	Count int `json:"count"`

	// Range is "<min missing day> to <max missing day>", or nil when the
	// date sequence is contiguous.
	Range *string `json:"range"`
}

// DateReport describes chronological order and continuity of the date column.
type DateReport struct {
	IsSorted     bool         `json:"is_sorted"`
	MissingDates MissingDates `json:"missing_dates"`
}

// BusinessRuleReport holds sparse rule-violation counts: only violated rules
// and only violated columns appear. Keys for the target section are
// "negative_values", "below_min" and "above_max"; the regressors section
// maps column name to the same sparse count keys.
type BusinessRuleReport struct {
	Target     map[string]int            `json:"target"`
	Regressors map[string]map[string]int `json:"regressors"`
}

// EmptyBusinessRuleReport returns the report produced when no rules are
// configured.
func EmptyBusinessRuleReport() BusinessRuleReport {
	return BusinessRuleReport{
		Target:     map[string]int{},
		Regressors: map[string]map[string]int{},
	}
}

// ValidationReport is the structured result of one validation call. It is
// created fresh per call, immutable once returned, and persisted as a JSON
// artifact for auditing dashboards.
type ValidationReport struct {
	// Date is the UTC timestamp of the validation run.
	Date time.Time `json:"date"`

	// DataTypes records the inferred kind of every dataset column.
	DataTypes map[string]ColumnKind `json:"data_types"`

	Schema SchemaReport `json:"schema"`

	// MissingValues is the per-column null count, computed after dropping
	// null-target rows when validating training data.
	MissingValues map[string]int `json:"missing_values"`

	DuplicatedRows int `json:"duplicated_rows"`

	DateReport struct {
		DateContinuityAndOrder DateReport `json:"date_continuity_and_order"`
	} `json:"date_report"`

	BusinessRules BusinessRuleReport `json:"business_rules"`
}

// CleanCounts reports whether every defect count in the report is zero.
// Business-rule counts are excluded: they are advisory and do not gate the
// pass/fail flag.
func (r *ValidationReport) CleanCounts() bool {
	if len(r.Schema.MissingColumns) != 1 || r.Schema.MissingColumns[0] != NoMissingColumns {
		return false
	}
	if len(r.Schema.NonNumericColumns) != 0 || !r.Schema.DateColumnOK {
		return false
	}
	for _, n := range r.MissingValues {
		if n != 0 {
			return false
		}
	}
	if r.DuplicatedRows != 0 {
		return false
	}
	d := r.DateReport.DateContinuityAndOrder
	return d.IsSorted && d.MissingDates.Count == 0
}
