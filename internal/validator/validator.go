// Package validator implements the data-quality validation engine that gates
// training and forecasting. It verifies schema and types, structural
// integrity (missing values, duplicates, date continuity) and optional
// business rules against a tabular Frame, and folds the results into a
// single pass/fail flag plus a structured ValidationReport.
//
// Structural defects are recoverable-by-design signals: checks never return
// errors for bad data, they only contribute a false flag and log what they
// found. Business rules are advisory and never affect the flag.
package validator

import (
	"context"
	"log/slog"
	"time"

	"github.com/energyops/forecast-guard/internal/models"
)

// Options declares the dataset contract for one validation call.
type Options struct {
	// DateColumn is the name of the calendar-day column.
	DateColumn string

	// TargetColumn is the name of the observed-consumption column.
	TargetColumn string

	// Regressors are the additional numeric feature columns, if any.
	Regressors []string

	// IsTraining marks the dataset as training data. Rows with a missing
	// target are dropped before missing-value counting only for training
	// data; a null target is expected on forecast-horizon rows.
	IsTraining bool

	// Rules optionally configures business-rule diagnostics. Nil skips
	// rule checking entirely.
	Rules *models.BusinessRules
}

// Validator runs the full validation pipeline.
type Validator struct {
	logger *slog.Logger
}

// New creates a Validator logging through the given logger.
func New(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger.With(slog.String("component", "validator"))}
}

// Validate runs every check against a working copy of the frame and returns
// the global pass/fail flag with the assembled report. All checks run
// regardless of earlier failures so the report is exhaustive; the flag is an
// AND-fold of the individual check outcomes. The caller's frame is never
// mutated.
//
// Callers must treat a false flag as "do not train or forecast on this
// data" and inspect the report to locate the defect. Validate itself never
// fails: a defective dataset is a result, not an error.
func (v *Validator) Validate(ctx context.Context, frame *models.Frame, opts Options) (bool, *models.ValidationReport) {
	report := &models.ValidationReport{
		Date:          time.Now().UTC(),
		DataTypes:     make(map[string]models.ColumnKind),
		MissingValues: make(map[string]int),
	}
	for _, name := range frame.Columns() {
		report.DataTypes[name] = frame.Column(name).Kind
	}

	schema := v.checkSchema(ctx, frame, opts)
	report.Schema = schema.report

	missing := v.checkMissingValues(ctx, frame, opts)
	report.MissingValues = missing.counts

	dups := v.checkDuplicatedRows(ctx, frame)
	report.DuplicatedRows = dups.count

	dates := v.checkDateContinuityAndOrder(ctx, frame, opts)
	report.DateReport.DateContinuityAndOrder = dates.report

	// Advisory only: logged and reported, never gating.
	report.BusinessRules = v.applyBusinessRules(ctx, frame, opts)

	flag := schema.ok && missing.ok && dups.ok && dates.ok

	v.logger.InfoContext(ctx, "validation completed",
		slog.Bool("flag", flag),
		slog.Int("rows", frame.Len()),
		slog.Bool("is_training", opts.IsTraining))

	return flag, report
}
