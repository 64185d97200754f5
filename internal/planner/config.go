package planner

import "math"

// Configuration holds the tunable planning parameters. It is read-only to the planner.
type Configuration struct {
	SafetyFactorNormal  float64 `json:"safety_factor_normal"`
	SafetyFactorWeekend float64 `json:"safety_factor_weekend"`
	MinStockDays        float64 `json:"min_stock_days"`
	MaxStockDays        float64 `json:"max_stock_days"`
	WasteLimitRatio     float64 `json:"waste_limit_ratio"`
}

// DefaultConfiguration returns the kitchen's standard planning parameters.
func DefaultConfiguration() Configuration {
	return Configuration{
		SafetyFactorNormal:  1.1,
		SafetyFactorWeekend: 1.3,
		MinStockDays:        1,
		MaxStockDays:        3,
		WasteLimitRatio:     0.05,
	}
}

// Validate checks every configuration invariant and returns the first violation.
func (c Configuration) Validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"safety_factor_normal", c.SafetyFactorNormal},
		{"safety_factor_weekend", c.SafetyFactorWeekend},
		{"min_stock_days", c.MinStockDays},
		{"max_stock_days", c.MaxStockDays},
	}
	for _, chk := range checks {
		if err := nonNegative(chk.field, chk.value); err != nil {
			return err
		}
	}

	if c.MaxStockDays < c.MinStockDays {
		return invalid("max_stock_days", c.MaxStockDays, "must be >= min_stock_days")
	}

	return validateWasteLimit(c.WasteLimitRatio)
}

// SafetyFactor returns the multiplier for the given day type.
func (c Configuration) SafetyFactor(d DayType) float64 {
	if d == DayTypeWeekend {
		return c.SafetyFactorWeekend
	}
	return c.SafetyFactorNormal
}

// WasteLimitFromPercent converts a waste limit entered as a percentage (e.g. 5) to a ratio.
func WasteLimitFromPercent(pct float64) (float64, error) {
	if !isFinite(pct) || pct < 0 || pct > 100 {
		return 0, invalid("waste_limit_percent", pct, "must be within [0,100]")
	}
	return pct / 100, nil
}

func validateWasteLimit(ratio float64) error {
	if !isFinite(ratio) || ratio < 0 || ratio > 1 {
		return invalid("waste_limit_ratio", ratio, "must be within [0,1]")
	}
	return nil
}

func nonNegative(field string, v float64) error {
	if !isFinite(v) {
		return invalid(field, v, "must be a finite number")
	}
	if v < 0 {
		return invalid(field, v, "must be >= 0")
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
