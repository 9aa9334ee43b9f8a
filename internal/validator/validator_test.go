package validator

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/energyops/forecast-guard/internal/models"
)

func date(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func num(v string) decimal.NullDecimal {
	d, _ := decimal.NewFromString(v)
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func days(ds ...int) []time.Time {
	out := make([]time.Time, len(ds))
	for i, d := range ds {
		out[i] = date(d)
	}
	return out
}

func nums(vs ...string) []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(vs))
	for i, v := range vs {
		if v == "" {
			continue
		}
		out[i] = num(v)
	}
	return out
}

func cleanFrame(t *testing.T) *models.Frame {
	t.Helper()
	f, err := models.NewFrame(
		models.Column{Name: "date", Kind: models.KindTime, Times: days(1, 2, 3, 4, 5)},
		models.Column{Name: "consumption", Kind: models.KindNumeric, Nums: nums("10", "12", "11", "13", "12")},
		models.Column{Name: "temperature", Kind: models.KindNumeric, Nums: nums("-2", "0", "1", "3", "2")},
	)
	require.NoError(t, err)
	return f
}

func defaultOptions() Options {
	return Options{
		DateColumn:   "date",
		TargetColumn: "consumption",
		Regressors:   []string{"temperature"},
		IsTraining:   true,
	}
}

func TestValidate_CleanDataset(t *testing.T) {
	v := New(slog.Default())
	flag, report := v.Validate(context.Background(), cleanFrame(t), defaultOptions())

	assert.True(t, flag)
	assert.Equal(t, []string{models.NoMissingColumns}, report.Schema.MissingColumns)
	assert.True(t, report.Schema.DateColumnOK)
	assert.Empty(t, report.Schema.NonNumericColumns)
	assert.Equal(t, 0, report.DuplicatedRows)
	assert.True(t, report.DateReport.DateContinuityAndOrder.IsSorted)
	assert.Equal(t, 0, report.DateReport.DateContinuityAndOrder.MissingDates.Count)
	assert.Nil(t, report.DateReport.DateContinuityAndOrder.MissingDates.Range)
	assert.True(t, report.CleanCounts())
	assert.Equal(t, models.KindTime, report.DataTypes["date"])
	assert.Equal(t, models.KindNumeric, report.DataTypes["consumption"])
}

func TestValidate_MissingColumn(t *testing.T) {
	f, err := models.NewFrame(
		models.Column{Name: "date", Kind: models.KindTime, Times: days(1, 2, 3)},
		models.Column{Name: "consumption", Kind: models.KindNumeric, Nums: nums("1", "2", "3")},
	)
	require.NoError(t, err)

	v := New(slog.Default())
	flag, report := v.Validate(context.Background(), f, defaultOptions())

	assert.False(t, flag)
	assert.Equal(t, []string{"temperature"}, report.Schema.MissingColumns)
}

func TestValidate_NonNumericTarget(t *testing.T) {
	f, err := models.NewFrame(
		models.Column{Name: "date", Kind: models.KindTime, Times: days(1, 2)},
		models.Column{Name: "consumption", Kind: models.KindString, Strs: []string{"high", "low"}},
		models.Column{Name: "temperature", Kind: models.KindNumeric, Nums: nums("1", "2")},
	)
	require.NoError(t, err)

	v := New(slog.Default())
	flag, report := v.Validate(context.Background(), f, defaultOptions())

	assert.False(t, flag)
	assert.Equal(t, []string{"consumption"}, report.Schema.NonNumericColumns)
}

func TestValidate_MissingValues_TrainingDropsNullTargetRows(t *testing.T) {
	// The last row has a null target and a null regressor. For training
	// data the whole row is dropped before counting, so the regressor null
	// disappears with it.
	f, err := models.NewFrame(
		models.Column{Name: "date", Kind: models.KindTime, Times: days(1, 2, 3)},
		models.Column{Name: "consumption", Kind: models.KindNumeric, Nums: nums("1", "2", "")},
		models.Column{Name: "temperature", Kind: models.KindNumeric, Nums: nums("5", "6", "")},
	)
	require.NoError(t, err)

	v := New(slog.Default())
	opts := defaultOptions()

	flag, report := v.Validate(context.Background(), f, opts)
	assert.True(t, flag)
	assert.Equal(t, 0, report.MissingValues["consumption"])
	assert.Equal(t, 0, report.MissingValues["temperature"])

	// The same frame fails when it is not training data: the null target
	// row stays in scope.
	opts.IsTraining = false
	flag, report = v.Validate(context.Background(), f, opts)
	assert.False(t, flag)
	assert.Equal(t, 1, report.MissingValues["consumption"])
	assert.Equal(t, 1, report.MissingValues["temperature"])
}

func TestValidate_DuplicatedRows(t *testing.T) {
	f, err := models.NewFrame(
		models.Column{Name: "date", Kind: models.KindTime, Times: days(1, 1, 2)},
		models.Column{Name: "consumption", Kind: models.KindNumeric, Nums: nums("1", "1", "2")},
		models.Column{Name: "temperature", Kind: models.KindNumeric, Nums: nums("5", "5", "6")},
	)
	require.NoError(t, err)

	v := New(slog.Default())
	flag, report := v.Validate(context.Background(), f, defaultOptions())

	assert.False(t, flag)
	assert.Equal(t, 1, report.DuplicatedRows)
}

func TestValidate_UnsortedDates(t *testing.T) {
	f, err := models.NewFrame(
		models.Column{Name: "date", Kind: models.KindTime, Times: days(2, 1, 3)},
		models.Column{Name: "consumption", Kind: models.KindNumeric, Nums: nums("1", "2", "3")},
		models.Column{Name: "temperature", Kind: models.KindNumeric, Nums: nums("5", "6", "7")},
	)
	require.NoError(t, err)

	v := New(slog.Default())
	flag, report := v.Validate(context.Background(), f, defaultOptions())

	assert.False(t, flag)
	assert.False(t, report.DateReport.DateContinuityAndOrder.IsSorted)
	// The unsorted days are still contiguous once sorted.
	assert.Equal(t, 0, report.DateReport.DateContinuityAndOrder.MissingDates.Count)
}

func TestValidate_MissingDates(t *testing.T) {
	// Days 3 and 4 are absent from 1..5.
	f, err := models.NewFrame(
		models.Column{Name: "date", Kind: models.KindTime, Times: days(1, 2, 5)},
		models.Column{Name: "consumption", Kind: models.KindNumeric, Nums: nums("1", "2", "3")},
		models.Column{Name: "temperature", Kind: models.KindNumeric, Nums: nums("5", "6", "7")},
	)
	require.NoError(t, err)

	v := New(slog.Default())
	flag, report := v.Validate(context.Background(), f, defaultOptions())

	assert.False(t, flag)
	gaps := report.DateReport.DateContinuityAndOrder.MissingDates
	assert.Equal(t, 2, gaps.Count)
	require.NotNil(t, gaps.Range)
	assert.Equal(t, "2024-01-03 to 2024-01-04", *gaps.Range)
}

func TestValidate_ContinuityIgnoresTimeOfDay(t *testing.T) {
	// Consecutive days with different times of day are contiguous.
	f, err := models.NewFrame(
		models.Column{Name: "date", Kind: models.KindTime, Times: []time.Time{
			time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC),
		}},
		models.Column{Name: "consumption", Kind: models.KindNumeric, Nums: nums("1", "2")},
		models.Column{Name: "temperature", Kind: models.KindNumeric, Nums: nums("5", "6")},
	)
	require.NoError(t, err)

	v := New(slog.Default())
	flag, report := v.Validate(context.Background(), f, defaultOptions())

	assert.True(t, flag)
	assert.Equal(t, 0, report.DateReport.DateContinuityAndOrder.MissingDates.Count)
}

func TestValidate_BusinessRulesAreAdvisory(t *testing.T) {
	// Negative target values violate the rule, but the flag stays true:
	// rule violations warn, they never gate.
	f, err := models.NewFrame(
		models.Column{Name: "date", Kind: models.KindTime, Times: days(1, 2, 3)},
		models.Column{Name: "consumption", Kind: models.KindNumeric, Nums: nums("-1", "2", "-3")},
		models.Column{Name: "temperature", Kind: models.KindNumeric, Nums: nums("50", "6", "7")},
	)
	require.NoError(t, err)

	allowNegative := false
	maxTemp := decimal.NewFromInt(40)
	opts := defaultOptions()
	opts.Rules = &models.BusinessRules{
		Target: &models.TargetRules{AllowNegative: &allowNegative},
		Regressors: map[string]models.RegressorRules{
			"temperature": {MaxValue: &maxTemp},
		},
	}

	v := New(slog.Default())
	flag, report := v.Validate(context.Background(), f, opts)

	assert.True(t, flag)
	assert.Equal(t, 2, report.BusinessRules.Target["negative_values"])
	assert.Equal(t, 1, report.BusinessRules.Regressors["temperature"]["above_max"])
}

func TestValidate_BusinessRuleMinBoundMonotonic(t *testing.T) {
	// Tightening min_value can only grow (or keep equal) the below_min
	// count, and never affects the flag.
	belowMin := func(min int64) int {
		bound := decimal.NewFromInt(min)
		opts := defaultOptions()
		opts.Rules = &models.BusinessRules{
			Target: &models.TargetRules{MinValue: &bound},
		}

		v := New(slog.Default())
		flag, report := v.Validate(context.Background(), cleanFrame(t), opts)
		assert.True(t, flag)
		return report.BusinessRules.Target["below_min"]
	}

	// Consumption values are 10, 12, 11, 13, 12.
	loose := belowMin(11)
	tight := belowMin(13)
	assert.Equal(t, 1, loose)
	assert.Equal(t, 4, tight)
	assert.GreaterOrEqual(t, tight, loose)
}

func TestValidate_BusinessRulesSparseReport(t *testing.T) {
	opts := defaultOptions()
	min := decimal.NewFromInt(0)
	opts.Rules = &models.BusinessRules{
		Target: &models.TargetRules{MinValue: &min},
		Regressors: map[string]models.RegressorRules{
			"humidity": {MinValue: &min}, // column absent, silently skipped
		},
	}

	v := New(slog.Default())
	flag, report := v.Validate(context.Background(), cleanFrame(t), opts)

	assert.True(t, flag)
	assert.Empty(t, report.BusinessRules.Target)
	assert.Empty(t, report.BusinessRules.Regressors)
}

func TestValidate_AllChecksRunOnFailure(t *testing.T) {
	// A frame defective in several ways at once: report must carry every
	// defect, not stop at the first failed check.
	f, err := models.NewFrame(
		models.Column{Name: "date", Kind: models.KindTime, Times: days(2, 1, 1, 5)},
		models.Column{Name: "consumption", Kind: models.KindNumeric, Nums: nums("1", "2", "2", "")},
	)
	require.NoError(t, err)

	opts := defaultOptions()
	opts.IsTraining = false

	v := New(slog.Default())
	flag, report := v.Validate(context.Background(), f, opts)

	assert.False(t, flag)
	assert.Equal(t, []string{"temperature"}, report.Schema.MissingColumns)
	assert.Equal(t, 1, report.MissingValues["consumption"])
	assert.Equal(t, 1, report.DuplicatedRows)
	assert.False(t, report.DateReport.DateContinuityAndOrder.IsSorted)
	assert.NotZero(t, report.DateReport.DateContinuityAndOrder.MissingDates.Count)
}

func TestValidate_DoesNotMutateCallerFrame(t *testing.T) {
	f, err := models.NewFrame(
		models.Column{Name: "date", Kind: models.KindTime, Times: days(3, 1, 2)},
		models.Column{Name: "consumption", Kind: models.KindNumeric, Nums: nums("3", "1", "2")},
		models.Column{Name: "temperature", Kind: models.KindNumeric, Nums: nums("7", "5", "6")},
	)
	require.NoError(t, err)

	v := New(slog.Default())
	v.Validate(context.Background(), f, defaultOptions())

	assert.Equal(t, date(3), f.Column("date").Times[0])
	assert.Equal(t, "3", f.Column("consumption").Nums[0].Decimal.String())
}
