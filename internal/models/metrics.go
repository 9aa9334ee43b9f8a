package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RollingMetrics holds accuracy metrics computed over the most recent
// window of a forecast. Values are rounded to a fixed precision so that
// persisted reports are reproducible across runs.
type RollingMetrics struct {
	WindowSize int `json:"window_size"`

	// Baseline labels the seasonal-naive reference, e.g. "naive_7_days".
	Baseline string `json:"baseline"`

	// MAEWindow is the mean absolute error over the window.
	MAEWindow float64 `json:"mae_window"`

	// MASEWindow is the window MAE scaled by the seasonal-naive baseline's
	// MAE over the full observed series. Values above 1 mean the model is
	// doing worse than the naive baseline.
	MASEWindow float64 `json:"mase_window"`
}

// AsMap exposes the metrics under their persisted keys for threshold-based
// decisions.
func (m RollingMetrics) AsMap() map[string]float64 {
	return map[string]float64{
		"mae_window":  m.MAEWindow,
		"mase_window": m.MASEWindow,
	}
}

// BaselineLabel renders the canonical baseline name for a seasonal lag.
func BaselineLabel(seasonality int) string {
	return fmt.Sprintf("naive_%d_days", seasonality)
}

// RunRecord is one row of the metrics history ledger: the rolling metrics of
// a single evaluation run plus run identity. Records are append-only; rows
// are never mutated or deleted once persisted.
type RunRecord struct {
	RunID        string    `json:"run_id"`
	RecordedAt   time.Time `json:"recorded_at"`
	ModelName    string    `json:"model_name"`
	ModelVersion string    `json:"model_version"`

	Metrics RollingMetrics `json:"metrics"`
}

// NewRunRecord stamps a fresh record with a unique run id and a UTC
// timestamp.
func NewRunRecord(modelName, modelVersion string, metrics RollingMetrics) RunRecord {
	return RunRecord{
		RunID:        uuid.NewString(),
		RecordedAt:   time.Now().UTC(),
		ModelName:    modelName,
		ModelVersion: modelVersion,
		Metrics:      metrics,
	}
}
