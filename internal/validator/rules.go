package validator

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/energyops/forecast-guard/internal/models"
)

// applyBusinessRules evaluates the optional numeric-range constraints and
// returns a sparse violation report: only violated rules and only violated
// columns appear. Violations are warnings, never validation failures, so
// this check does not contribute to the global flag.
func (v *Validator) applyBusinessRules(ctx context.Context, frame *models.Frame, opts Options) models.BusinessRuleReport {
	report := models.EmptyBusinessRuleReport()
	rules := opts.Rules
	if rules == nil {
		return report
	}

	if rules.Target != nil {
		if col := frame.Column(opts.TargetColumn); col != nil && col.Kind == models.KindNumeric {
			violations := map[string]int{}
			if !rules.Target.NegativeAllowed() {
				if n := countBelow(col, decimal.Zero); n > 0 {
					violations["negative_values"] = n
				}
			}
			if rules.Target.MinValue != nil {
				if n := countBelow(col, *rules.Target.MinValue); n > 0 {
					violations["below_min"] = n
				}
			}
			if rules.Target.MaxValue != nil {
				if n := countAbove(col, *rules.Target.MaxValue); n > 0 {
					violations["above_max"] = n
				}
			}
			if len(violations) > 0 {
				report.Target = violations
				v.logger.WarnContext(ctx, "target rule violations",
					slog.String("column", opts.TargetColumn),
					slog.Any("violations", violations))
			}
		}
	}

	for name, rr := range rules.Regressors {
		col := frame.Column(name)
		if col == nil || col.Kind != models.KindNumeric {
			// Rules for absent columns are skipped, not reported.
			continue
		}
		violations := map[string]int{}
		if rr.MinValue != nil {
			if n := countBelow(col, *rr.MinValue); n > 0 {
				violations["below_min"] = n
			}
		}
		if rr.MaxValue != nil {
			if n := countAbove(col, *rr.MaxValue); n > 0 {
				violations["above_max"] = n
			}
		}
		if len(violations) > 0 {
			report.Regressors[name] = violations
			v.logger.WarnContext(ctx, "regressor rule violations",
				slog.String("column", name),
				slog.Any("violations", violations))
		}
	}

	return report
}

// countBelow counts values strictly below the bound, ignoring nulls.
func countBelow(col *models.Column, bound decimal.Decimal) int {
	n := 0
	for _, v := range col.Nums {
		if v.Valid && v.Decimal.LessThan(bound) {
			n++
		}
	}
	return n
}

// countAbove counts values strictly above the bound, ignoring nulls.
func countAbove(col *models.Column, bound decimal.Decimal) int {
	n := 0
	for _, v := range col.Nums {
		if v.Valid && v.Decimal.GreaterThan(bound) {
			n++
		}
	}
	return n
}
