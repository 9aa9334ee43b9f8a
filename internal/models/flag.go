package models

import "time"

// RetrainFlag is the persisted retraining decision. Only the latest flag is
// authoritative: each run overwrites the single well-known record, and the
// next run reads it to gate training.
type RetrainFlag struct {
	// Date is the UTC timestamp of the decision, serialized ISO-8601.
	Date time.Time `json:"date"`

	ShouldRetrain bool `json:"should_retrain"`
}
