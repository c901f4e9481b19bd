package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is matched (errors.Is) by every validation failure.
var ErrInvalid = errors.New("invalid config")

// TypeError reports a value that could not be coerced to its declared type.
type TypeError struct {
	Key   string
	Value string
	Kind  string
	Err   error
}

func (e *TypeError) Error() string {
	msg := fmt.Sprintf("config %s=%q is not a valid %s", e.Key, e.Value, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TypeError) Unwrap() error { return e.Err }

// MissingCredentialError reports an empty API key or secret.
type MissingCredentialError struct {
	Field string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s is required (API_KEY and API_SECRET must be configured)", e.Field)
}

func (e *MissingCredentialError) Unwrap() error { return ErrInvalid }

// InvalidBoundsError reports grid bounds that are not finite or not strictly ordered.
type InvalidBoundsError struct {
	Lower float64
	Upper float64
}

func (e *InvalidBoundsError) Error() string {
	return fmt.Sprintf("grid.lower_bound (%g) must be finite and < grid.upper_bound (%g)", e.Lower, e.Upper)
}

func (e *InvalidBoundsError) Unwrap() error { return ErrInvalid }

// InsufficientLevelsError reports a grid with fewer than two levels.
type InsufficientLevelsError struct {
	Levels int
}

func (e *InsufficientLevelsError) Error() string {
	return fmt.Sprintf("grid.levels must be >= %d, got %d", MinGridLevels, e.Levels)
}

func (e *InsufficientLevelsError) Unwrap() error { return ErrInvalid }

// TooManyLevelsError reports a grid above MaxGridLevels.
type TooManyLevelsError struct {
	Levels int
}

func (e *TooManyLevelsError) Error() string {
	return fmt.Sprintf("grid.levels must be <= %d, got %d", MaxGridLevels, e.Levels)
}

func (e *TooManyLevelsError) Unwrap() error { return ErrInvalid }

// InvalidAllocationError reports a sizing magnitude outside its range.
type InvalidAllocationError struct {
	Field string
	Value float64
}

func (e *InvalidAllocationError) Error() string {
	if e.Field == "grid.order_size" {
		return fmt.Sprintf("grid.order_size must be > 0 for fixed sizing, got %g", e.Value)
	}
	return fmt.Sprintf("%s must be in (0, 100], got %g", e.Field, e.Value)
}

func (e *InvalidAllocationError) Unwrap() error { return ErrInvalid }

// InvalidAdaptiveParameterError reports a non-positive adaptive factor or
// interval, or an interval above Max when Max is set.
type InvalidAdaptiveParameterError struct {
	Field string
	Value float64
	Max   float64
}

func (e *InvalidAdaptiveParameterError) Error() string {
	if e.Max > 0 {
		return fmt.Sprintf("%s must be in (0, %g] when adaptive pricing is enabled, got %g", e.Field, e.Max, e.Value)
	}
	return fmt.Sprintf("%s must be > 0 when adaptive pricing is enabled, got %g", e.Field, e.Value)
}

func (e *InvalidAdaptiveParameterError) Unwrap() error { return ErrInvalid }
