package validator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/energyops/forecast-guard/internal/models"
)

const day = 24 * time.Hour

type missingValuesResult struct {
	ok     bool
	counts map[string]int
}

// checkMissingValues counts nulls per column. For training data, rows with a
// missing target are dropped first: a null target is expected and acceptable
// on forecast-horizon rows and only a defect in training data.
func (v *Validator) checkMissingValues(ctx context.Context, frame *models.Frame, opts Options) missingValuesResult {
	res := missingValuesResult{ok: true, counts: make(map[string]int)}

	working := frame
	if opts.IsTraining {
		if target := frame.Column(opts.TargetColumn); target != nil {
			working = frame.FilterRows(func(i int) bool { return !target.IsNullAt(i) })
		}
	}

	for _, name := range working.Columns() {
		count := working.Column(name).NullCount()
		res.counts[name] = count
		if count != 0 {
			v.logger.ErrorContext(ctx, "missing values detected",
				slog.String("column", name),
				slog.Int("count", count))
			res.ok = false
		}
	}
	return res
}

type duplicateResult struct {
	ok    bool
	count int
}

// checkDuplicatedRows counts rows identical across all columns. Any
// duplicate fails the check.
func (v *Validator) checkDuplicatedRows(ctx context.Context, frame *models.Frame) duplicateResult {
	count := frame.DuplicateRowCount()
	if count != 0 {
		v.logger.ErrorContext(ctx, "duplicated rows detected", slog.Int("count", count))
	}
	return duplicateResult{ok: count == 0, count: count}
}

type dateContinuityResult struct {
	ok     bool
	report models.DateReport
}

// checkDateContinuityAndOrder verifies chronological order and calendar-day
// continuity of the date column. Order is judged on the frame as given;
// continuity is computed on a normalized (day-truncated), sorted working
// copy by diffing the full min..max day range against the present dates.
func (v *Validator) checkDateContinuityAndOrder(ctx context.Context, frame *models.Frame, opts Options) dateContinuityResult {
	res := dateContinuityResult{ok: true}
	res.report.IsSorted = true

	col := frame.Column(opts.DateColumn)
	if col == nil || col.Kind != models.KindTime || len(col.Times) == 0 {
		// Schema check reports the defect; nothing to diff here.
		return res
	}

	for i := 1; i < len(col.Times); i++ {
		if col.Times[i].Before(col.Times[i-1]) {
			v.logger.ErrorContext(ctx, "dates are not sorted chronologically")
			res.ok = false
			res.report.IsSorted = false
			break
		}
	}

	working := frame.NormalizeTimeColumn(opts.DateColumn).SortByTimeColumn(opts.DateColumn)
	days := working.Column(opts.DateColumn).Times

	present := make(map[time.Time]bool, len(days))
	var minDay, maxDay time.Time
	for _, d := range days {
		if d.IsZero() {
			continue
		}
		present[d] = true
		if minDay.IsZero() || d.Before(minDay) {
			minDay = d
		}
		if d.After(maxDay) {
			maxDay = d
		}
	}
	if minDay.IsZero() {
		return res
	}

	var firstGap, lastGap time.Time
	gapCount := 0
	for d := minDay; !d.After(maxDay); d = d.Add(day) {
		if present[d] {
			continue
		}
		if gapCount == 0 {
			firstGap = d
		}
		lastGap = d
		gapCount++
	}

	res.report.MissingDates.Count = gapCount
	if gapCount > 0 {
		r := fmt.Sprintf("%s to %s", firstGap.Format("2006-01-02"), lastGap.Format("2006-01-02"))
		res.report.MissingDates.Range = &r
		v.logger.ErrorContext(ctx, "missing dates detected",
			slog.Int("count", gapCount),
			slog.String("range", r))
		res.ok = false
	}

	return res
}
