package validator

import (
	"context"
	"log/slog"

	"github.com/energyops/forecast-guard/internal/models"
)

type schemaResult struct {
	ok     bool
	report models.SchemaReport
}

// checkSchema verifies that every declared column is present, that the date
// column holds temporal values, and that the target and regressor columns
// hold numeric values. Failures flip the result bit and are logged; this
// check never raises.
func (v *Validator) checkSchema(ctx context.Context, frame *models.Frame, opts Options) schemaResult {
	res := schemaResult{ok: true}

	declared := append([]string{opts.DateColumn, opts.TargetColumn}, opts.Regressors...)
	var missing []string
	for _, name := range declared {
		if !frame.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		v.logger.ErrorContext(ctx, "declared columns missing from dataset",
			slog.Any("columns", missing))
		res.ok = false
		res.report.MissingColumns = missing
	} else {
		res.report.MissingColumns = []string{models.NoMissingColumns}
	}

	res.report.DateColumnOK = true
	if col := frame.Column(opts.DateColumn); col != nil && col.Kind != models.KindTime {
		v.logger.ErrorContext(ctx, "date column is not datetime-compatible",
			slog.String("column", opts.DateColumn),
			slog.String("kind", string(col.Kind)))
		res.ok = false
		res.report.DateColumnOK = false
	}

	// Every declared column except the date column must be numeric.
	var nonNumeric []string
	for _, name := range declared {
		if name == opts.DateColumn {
			continue
		}
		if col := frame.Column(name); col != nil && col.Kind != models.KindNumeric {
			nonNumeric = append(nonNumeric, name)
		}
	}
	if len(nonNumeric) > 0 {
		v.logger.ErrorContext(ctx, "non-numeric columns detected",
			slog.Any("columns", nonNumeric))
		res.ok = false
		res.report.NonNumericColumns = nonNumeric
	}

	return res
}
