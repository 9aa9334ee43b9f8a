// Package scoring computes rolling-window forecast accuracy metrics: the
// window MAE and a seasonal-naive scaled error (MASE). The scaled error
// compares the model against predicting each value as the observation from
// `seasonality` days earlier; values above 1 mean the model is doing worse
// than that naive baseline.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/energyops/forecast-guard/internal/models"
)

// DefaultPrecision is the number of decimal places metrics are rounded to
// when the configuration does not say otherwise.
const DefaultPrecision = 4

// ErrZeroNaiveBaseline is returned when the seasonal-naive baseline has an
// MAE of exactly zero (a perfectly repeating observed series), leaving the
// scaled error undefined. Callers should treat the metric as unavailable
// and skip threshold decisions that depend on it.
var ErrZeroNaiveBaseline = errors.New("scoring: seasonal-naive baseline MAE is zero, scaled error undefined")

// Evaluate scores predictions over the most recent windowSize observations.
//
// The window MAE is the mean absolute error over the last windowSize aligned
// pairs. The scaled error divides the seasonally-trimmed window MAE by the
// naive baseline's MAE over the full observed series; using the full history
// for the denominator keeps the scale stable when the window is short.
//
// seasonality must be positive and shorter than both inputs; the sequences
// must be the same length. Both results are rounded to precision decimal
// places; a negative precision falls back to DefaultPrecision.
func Evaluate(observed, predicted []float64, windowSize, seasonality, precision int) (models.RollingMetrics, error) {
	var zero models.RollingMetrics

	if len(observed) != len(predicted) {
		return zero, fmt.Errorf("scoring: observed has %d values, predicted has %d", len(observed), len(predicted))
	}
	if len(observed) == 0 {
		return zero, errors.New("scoring: empty input sequences")
	}
	if seasonality <= 0 || seasonality >= len(observed) {
		return zero, fmt.Errorf("scoring: seasonality %d must be in (0, %d)", seasonality, len(observed))
	}
	if windowSize <= 0 {
		return zero, fmt.Errorf("scoring: window size %d must be positive", windowSize)
	}
	if windowSize > len(observed) {
		windowSize = len(observed)
	}
	if precision < 0 {
		precision = DefaultPrecision
	}

	obsWin := observed[len(observed)-windowSize:]
	predWin := predicted[len(predicted)-windowSize:]

	maeWindow := meanAbsError(obsWin, predWin)

	// Naive seasonal forecast over the full series: naive[i] = observed[i-S].
	naiveMAE := meanAbsError(observed[seasonality:], observed[:len(observed)-seasonality])
	if naiveMAE == 0 {
		return zero, ErrZeroNaiveBaseline
	}

	// Numerator mirrors the window selection, trimmed by the seasonal lag
	// when the window is long enough to trim.
	numObs, numPred := obsWin, predWin
	if seasonality < windowSize {
		numObs = obsWin[seasonality:]
		numPred = predWin[seasonality:]
	}
	mase := meanAbsError(numObs, numPred) / naiveMAE

	return models.RollingMetrics{
		WindowSize: windowSize,
		Baseline:   models.BaselineLabel(seasonality),
		MAEWindow:  round(maeWindow, precision),
		MASEWindow: round(mase, precision),
	}, nil
}

// meanAbsError computes mean(|a-b|) over aligned slices of equal length.
func meanAbsError(a, b []float64) float64 {
	diffs := make([]float64, len(a))
	for i := range a {
		diffs[i] = math.Abs(a[i] - b[i])
	}
	return stat.Mean(diffs, nil)
}

func round(v float64, precision int) float64 {
	shift := math.Pow10(precision)
	return math.Round(v*shift) / shift
}
