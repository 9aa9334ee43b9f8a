package models

import "github.com/shopspring/decimal"

// TargetRules constrains the target column. A nil bound means no constraint.
type TargetRules struct {
	// AllowNegative permits negative target values. Defaults to true so an
	// absent rule imposes no constraint.
	AllowNegative *bool `json:"allow_negative,omitempty"`

	MinValue *decimal.Decimal `json:"min_value,omitempty"`
	MaxValue *decimal.Decimal `json:"max_value,omitempty"`
}

// NegativeAllowed resolves the AllowNegative rule with its permissive default.
func (t *TargetRules) NegativeAllowed() bool {
	if t == nil || t.AllowNegative == nil {
		return true
	}
	return *t.AllowNegative
}

// RegressorRules constrains a single regressor column.
type RegressorRules struct {
	MinValue *decimal.Decimal `json:"min_value,omitempty"`
	MaxValue *decimal.Decimal `json:"max_value,omitempty"`
}

// BusinessRules is the optional numeric-range configuration applied as a
// diagnostic layer on top of structural validation. A nil *BusinessRules
// skips rule checking entirely; absent fields mean "no constraint". Rule
// violations never flip the validation flag.
type BusinessRules struct {
	Target     *TargetRules              `json:"target,omitempty"`
	Regressors map[string]RegressorRules `json:"regressors,omitempty"`
}
