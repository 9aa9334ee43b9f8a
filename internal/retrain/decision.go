// Package retrain turns rolling accuracy metrics into a persisted
// retrain flag. The decision itself is a pure threshold comparison;
// persistence applies an asymmetric policy where writes are fatal and
// unreadable state degrades to "retrain", the safe default.
package retrain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/energyops/forecast-guard/internal/models"
)

// ConfigError reports a metric key that the computed metrics do not
// contain. This is a pipeline wiring defect, not a data condition, so it
// aborts the run instead of defaulting.
type ConfigError struct {
	MetricKey string
	Available []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("retrain: metric %q not found in computed metrics (available: %s)",
		e.MetricKey, strings.Join(e.Available, ", "))
}

// Decide compares the configured metric against the threshold and returns
// the resulting flag, stamped with the decision date. The comparison is
// strict: a metric exactly at the threshold does not trigger retraining.
func Decide(metrics map[string]float64, metricKey string, threshold float64, date time.Time) (models.RetrainFlag, error) {
	value, ok := metrics[metricKey]
	if !ok {
		available := make([]string, 0, len(metrics))
		for k := range metrics {
			available = append(available, k)
		}
		sort.Strings(available)
		return models.RetrainFlag{}, &ConfigError{MetricKey: metricKey, Available: available}
	}

	return models.RetrainFlag{
		Date:          date,
		ShouldRetrain: value > threshold,
	}, nil
}
