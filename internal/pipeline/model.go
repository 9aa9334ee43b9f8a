// Package pipeline orchestrates one evaluation run: load the prior retrain
// flag, load and validate the dataset, produce predictions, score them,
// decide on retraining, and record the run in the metrics history.
//
// Forecasters and preparators are looked up by name from a registry so the
// runner depends only on capability interfaces, never on concrete model
// types.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/energyops/forecast-guard/internal/errors"
	"github.com/energyops/forecast-guard/internal/models"
)

// Preparator turns a validated Frame into the observed series a forecaster
// consumes.
type Preparator interface {
	// Prepare extracts the chronologically ordered observed values for the
	// target column. Rows with a missing target are dropped.
	Prepare(ctx context.Context, frame *models.Frame, dateColumn, targetColumn string) ([]float64, error)
}

// Forecaster produces a prediction aligned index-for-index with the
// observed series.
type Forecaster interface {
	// Name identifies the forecaster in logs and history records.
	Name() string

	// Predict returns one prediction per observation.
	Predict(ctx context.Context, observed []float64, seasonality int) ([]float64, error)
}

// PreparatorFactory and ForecasterFactory construct registered components.
type (
	PreparatorFactory func() (Preparator, error)
	ForecasterFactory func() (Forecaster, error)
)

var (
	registryMu  sync.RWMutex
	preparators = map[string]PreparatorFactory{}
	forecasters = map[string]ForecasterFactory{}
)

// RegisterPreparator makes a preparator constructible by name.
func RegisterPreparator(name string, factory PreparatorFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	preparators[name] = factory
}

// RegisterForecaster makes a forecaster constructible by name.
func RegisterForecaster(name string, factory ForecasterFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	forecasters[name] = factory
}

// NewPreparator constructs the named preparator. An unknown name is a
// configuration error.
func NewPreparator(name string) (Preparator, error) {
	registryMu.RLock()
	factory, ok := preparators[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ClassConfiguration, "pipeline", "lookup preparator",
			fmt.Errorf("unknown preparator %q", name))
	}
	return factory()
}

// NewForecaster constructs the named forecaster. An unknown name is a
// configuration error.
func NewForecaster(name string) (Forecaster, error) {
	registryMu.RLock()
	factory, ok := forecasters[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ClassConfiguration, "pipeline", "lookup forecaster",
			fmt.Errorf("unknown forecaster %q", name))
	}
	return factory()
}

func init() {
	RegisterPreparator("daily", func() (Preparator, error) {
		return &DailyPreparator{}, nil
	})
	RegisterForecaster("seasonal_naive", func() (Forecaster, error) {
		return &SeasonalNaive{}, nil
	})
}

// DailyPreparator extracts the target series from a daily Frame: rows are
// sorted by the date column and null-target rows dropped.
type DailyPreparator struct{}

func (p *DailyPreparator) Prepare(ctx context.Context, frame *models.Frame, dateColumn, targetColumn string) ([]float64, error) {
	target := frame.Column(targetColumn)
	if target == nil || target.Kind != models.KindNumeric {
		return nil, errors.New(errors.ClassConfiguration, "pipeline", "prepare series",
			fmt.Errorf("target column %q is missing or non-numeric", targetColumn))
	}

	sorted := frame.SortByTimeColumn(dateColumn)
	col := sorted.Column(targetColumn)
	vals, ok := col.Floats()

	observed := make([]float64, 0, len(vals))
	for i, v := range vals {
		if ok[i] {
			observed = append(observed, v)
		}
	}
	return observed, nil
}

// SeasonalNaive is the reference forecaster: each prediction repeats the
// observation from one seasonal cycle earlier. Warm-up positions without a
// seasonal reference echo the observation itself; the scorer's seasonal
// trimming keeps them out of the scaled error.
type SeasonalNaive struct{}

func (f *SeasonalNaive) Name() string { return "seasonal_naive" }

func (f *SeasonalNaive) Predict(ctx context.Context, observed []float64, seasonality int) ([]float64, error) {
	if seasonality <= 0 {
		return nil, errors.New(errors.ClassConfiguration, "pipeline", "predict",
			fmt.Errorf("seasonality %d must be positive", seasonality))
	}
	predicted := make([]float64, len(observed))
	for i := range observed {
		if i < seasonality {
			predicted[i] = observed[i]
			continue
		}
		predicted[i] = observed[i-seasonality]
	}
	return predicted, nil
}
