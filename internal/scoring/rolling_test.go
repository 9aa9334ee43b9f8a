package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_PerfectPrediction(t *testing.T) {
	observed := []float64{10, 12, 11, 13, 12, 14, 13, 15, 14, 16}
	predicted := append([]float64(nil), observed...)

	metrics, err := Evaluate(observed, predicted, 5, 2, DefaultPrecision)
	require.NoError(t, err)

	assert.Equal(t, 0.0, metrics.MAEWindow)
	assert.Equal(t, 0.0, metrics.MASEWindow)
	assert.Equal(t, 5, metrics.WindowSize)
	assert.Equal(t, "naive_2_days", metrics.Baseline)
}

func TestEvaluate_KnownValues(t *testing.T) {
	// observed ramps by 1 each day; predictions are off by a constant 2.
	// With seasonality 1 the naive baseline errs by exactly 1 everywhere,
	// so the scaled error is 2.
	observed := []float64{1, 2, 3, 4, 5, 6}
	predicted := []float64{3, 4, 5, 6, 7, 8}

	metrics, err := Evaluate(observed, predicted, 4, 1, DefaultPrecision)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, metrics.MAEWindow, 1e-9)
	assert.InDelta(t, 2.0, metrics.MASEWindow, 1e-9)
}

func TestEvaluate_WindowLargerThanSeries(t *testing.T) {
	observed := []float64{1, 2, 3, 4}
	predicted := []float64{1, 2, 3, 5}

	// Window clamps to the series length instead of failing.
	metrics, err := Evaluate(observed, predicted, 100, 1, DefaultPrecision)
	require.NoError(t, err)
	assert.Equal(t, 4, metrics.WindowSize)
}

func TestEvaluate_ZeroNaiveBaseline(t *testing.T) {
	// A perfectly repeating series makes the seasonal baseline exact and
	// the scaled error undefined.
	observed := []float64{5, 7, 5, 7, 5, 7}
	predicted := []float64{5, 6, 5, 6, 5, 6}

	_, err := Evaluate(observed, predicted, 4, 2, DefaultPrecision)
	assert.ErrorIs(t, err, ErrZeroNaiveBaseline)
}

func TestEvaluate_InputValidation(t *testing.T) {
	_, err := Evaluate([]float64{1, 2}, []float64{1}, 2, 1, DefaultPrecision)
	assert.Error(t, err, "length mismatch")

	_, err = Evaluate(nil, nil, 2, 1, DefaultPrecision)
	assert.Error(t, err, "empty inputs")

	_, err = Evaluate([]float64{1, 2, 3}, []float64{1, 2, 3}, 2, 0, DefaultPrecision)
	assert.Error(t, err, "non-positive seasonality")

	_, err = Evaluate([]float64{1, 2, 3}, []float64{1, 2, 3}, 2, 3, DefaultPrecision)
	assert.Error(t, err, "seasonality not shorter than series")

	_, err = Evaluate([]float64{1, 2, 3}, []float64{1, 2, 3}, 0, 1, DefaultPrecision)
	assert.Error(t, err, "non-positive window")
}

func TestEvaluate_Rounding(t *testing.T) {
	observed := []float64{1, 2, 3, 4, 5, 6}
	predicted := []float64{1.123456, 2.123456, 3.123456, 4.123456, 5.123456, 6.123456}

	metrics, err := Evaluate(observed, predicted, 6, 1, DefaultPrecision)
	require.NoError(t, err)
	assert.Equal(t, 0.1235, metrics.MAEWindow)
}

func TestEvaluate_ConfiguredPrecision(t *testing.T) {
	observed := []float64{1, 2, 3, 4, 5, 6}
	predicted := []float64{1.123456, 2.123456, 3.123456, 4.123456, 5.123456, 6.123456}

	metrics, err := Evaluate(observed, predicted, 6, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.12, metrics.MAEWindow)

	// Negative precision falls back to the default.
	metrics, err = Evaluate(observed, predicted, 6, 1, -1)
	require.NoError(t, err)
	assert.Equal(t, 0.1235, metrics.MAEWindow)
}
