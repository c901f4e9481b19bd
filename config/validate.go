package config

import "math"

// Validate is the consistency gate for grid parameters. Checks run in a
// fixed order (credentials, bounds, level count, sizing, adaptive) and the
// first violation is returned. Inputs are never modified.
func Validate(params GridParameters, creds APIConfig) error {
	if creds.APIKey == "" {
		return &MissingCredentialError{Field: "api.api_key"}
	}
	if creds.APISecret == "" {
		return &MissingCredentialError{Field: "api.api_secret"}
	}

	// NaN fails the comparison as well.
	if math.IsInf(params.LowerBound, 0) || math.IsInf(params.UpperBound, 0) ||
		!(params.LowerBound < params.UpperBound) {
		return &InvalidBoundsError{Lower: params.LowerBound, Upper: params.UpperBound}
	}

	if params.Levels < MinGridLevels {
		return &InsufficientLevelsError{Levels: params.Levels}
	}
	if params.Levels > MaxGridLevels {
		return &TooManyLevelsError{Levels: params.Levels}
	}

	switch params.Sizing {
	case SizingPercentage:
		p := params.AllocationPercentage
		if !(p > 0 && p <= 100) {
			return &InvalidAllocationError{Field: "grid.allocation_percentage", Value: p}
		}
	default:
		if !(params.OrderSize > 0) {
			return &InvalidAllocationError{Field: "grid.order_size", Value: params.OrderSize}
		}
	}

	if params.Adaptive.Enabled {
		f := params.Adaptive.VolatilityAdjustmentFactor
		if !(f > 0) || math.IsInf(f, 0) {
			return &InvalidAdaptiveParameterError{Field: "grid.adaptive.volatility_adjustment_factor", Value: f}
		}
		if params.Adaptive.IntervalSeconds <= 0 {
			return &InvalidAdaptiveParameterError{
				Field: "grid.adaptive.adaptation_interval_seconds",
				Value: float64(params.Adaptive.IntervalSeconds),
			}
		}
		if int64(params.Adaptive.IntervalSeconds) > MaxAdaptiveIntervalSeconds {
			return &InvalidAdaptiveParameterError{
				Field: "grid.adaptive.adaptation_interval_seconds",
				Value: float64(params.Adaptive.IntervalSeconds),
				Max:   float64(MaxAdaptiveIntervalSeconds),
			}
		}
	}
	return nil
}

// Validate runs the grid gate over the aggregate.
func (c AppConfig) Validate() error {
	return Validate(c.Grid, c.API)
}
