package config

import (
	"fmt"

	"github.com/energyops/forecast-guard/internal/models"
)

// Parse converts the raw string bounds into exact decimal business rules.
// Returns nil when no bounds are configured at all.
func (rc RulesConfig) Parse() (*models.BusinessRules, error) {
	rules := &models.BusinessRules{}
	configured := false

	t := rc.Target
	if t.AllowNegative != nil || t.MinValue != nil || t.MaxValue != nil {
		configured = true
		target := &models.TargetRules{AllowNegative: t.AllowNegative}
		if t.MinValue != nil {
			d, err := parseDecimal("target.min_value", *t.MinValue)
			if err != nil {
				return nil, err
			}
			target.MinValue = d
		}
		if t.MaxValue != nil {
			d, err := parseDecimal("target.max_value", *t.MaxValue)
			if err != nil {
				return nil, err
			}
			target.MaxValue = d
		}
		rules.Target = target
	}

	for name, rr := range rc.Regressors {
		if rr.MinValue == nil && rr.MaxValue == nil {
			continue
		}
		configured = true
		parsed := models.RegressorRules{}
		if rr.MinValue != nil {
			d, err := parseDecimal(fmt.Sprintf("regressors.%s.min_value", name), *rr.MinValue)
			if err != nil {
				return nil, err
			}
			parsed.MinValue = d
		}
		if rr.MaxValue != nil {
			d, err := parseDecimal(fmt.Sprintf("regressors.%s.max_value", name), *rr.MaxValue)
			if err != nil {
				return nil, err
			}
			parsed.MaxValue = d
		}
		if rules.Regressors == nil {
			rules.Regressors = make(map[string]models.RegressorRules)
		}
		rules.Regressors[name] = parsed
	}

	if !configured {
		return nil, nil
	}
	return rules, nil
}
