package config

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() GridParameters {
	return GridParameters{
		Levels:               10,
		LowerBound:           35000,
		UpperBound:           45000,
		Sizing:               SizingPercentage,
		OrderSize:            0.01,
		AllocationPercentage: 100,
		Strategy:             StrategyAdaptive,
		Adaptive: AdaptiveParameters{
			Enabled:                    true,
			VolatilityAdjustmentFactor: 1,
			IntervalSeconds:            300,
		},
	}
}

func validCreds() APIConfig {
	return APIConfig{Exchange: "binance", APIKey: "k", APISecret: "s"}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	p := validParams()
	require.NoError(t, Validate(p, validCreds()))
	assert.Equal(t, validParams(), p)
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *GridParameters, c *APIConfig)
		check  func(t *testing.T, err error)
	}{
		{
			name:   "missing api key",
			mutate: func(_ *GridParameters, c *APIConfig) { c.APIKey = "" },
			check: func(t *testing.T, err error) {
				var e *MissingCredentialError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "api.api_key", e.Field)
			},
		},
		{
			name:   "missing api secret",
			mutate: func(_ *GridParameters, c *APIConfig) { c.APISecret = "" },
			check: func(t *testing.T, err error) {
				var e *MissingCredentialError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "api.api_secret", e.Field)
			},
		},
		{
			name:   "equal bounds",
			mutate: func(p *GridParameters, _ *APIConfig) { p.UpperBound = p.LowerBound },
			check:  expectBounds,
		},
		{
			name:   "inverted bounds",
			mutate: func(p *GridParameters, _ *APIConfig) { p.LowerBound, p.UpperBound = 45000, 35000 },
			check:  expectBounds,
		},
		{
			name:   "nan bound",
			mutate: func(p *GridParameters, _ *APIConfig) { p.LowerBound = math.NaN() },
			check:  expectBounds,
		},
		{
			name:   "infinite bound",
			mutate: func(p *GridParameters, _ *APIConfig) { p.UpperBound = math.Inf(1) },
			check:  expectBounds,
		},
		{
			name:   "one level",
			mutate: func(p *GridParameters, _ *APIConfig) { p.Levels = 1 },
			check: func(t *testing.T, err error) {
				var e *InsufficientLevelsError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 1, e.Levels)
			},
		},
		{
			name:   "zero allocation",
			mutate: func(p *GridParameters, _ *APIConfig) { p.AllocationPercentage = 0 },
			check:  expectAllocation("grid.allocation_percentage", 0),
		},
		{
			name:   "allocation above 100",
			mutate: func(p *GridParameters, _ *APIConfig) { p.AllocationPercentage = 150 },
			check:  expectAllocation("grid.allocation_percentage", 150),
		},
		{
			name: "fixed sizing without order size",
			mutate: func(p *GridParameters, _ *APIConfig) {
				p.Sizing = SizingFixed
				p.OrderSize = 0
			},
			check: expectAllocation("grid.order_size", 0),
		},
		{
			name:   "zero volatility factor",
			mutate: func(p *GridParameters, _ *APIConfig) { p.Adaptive.VolatilityAdjustmentFactor = 0 },
			check:  expectAdaptive("grid.adaptive.volatility_adjustment_factor"),
		},
		{
			name:   "negative interval",
			mutate: func(p *GridParameters, _ *APIConfig) { p.Adaptive.IntervalSeconds = -5 },
			check:  expectAdaptive("grid.adaptive.adaptation_interval_seconds"),
		},
		{
			name:   "interval beyond duration range",
			mutate: func(p *GridParameters, _ *APIConfig) { p.Adaptive.IntervalSeconds = 9300000000 },
			check: func(t *testing.T, err error) {
				var e *InvalidAdaptiveParameterError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "grid.adaptive.adaptation_interval_seconds", e.Field)
				assert.Equal(t, float64(MaxAdaptiveIntervalSeconds), e.Max)
				assert.Contains(t, err.Error(), "must be in (0,")
			},
		},
		{
			name:   "too many levels",
			mutate: func(p *GridParameters, _ *APIConfig) { p.Levels = 2000000000 },
			check: func(t *testing.T, err error) {
				var e *TooManyLevelsError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 2000000000, e.Levels)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, c := validParams(), validCreds()
			tc.mutate(&p, &c)
			err := Validate(p, c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			tc.check(t, err)
		})
	}
}

func TestValidateStopsAtFirstViolation(t *testing.T) {
	p := validParams()
	p.Levels = 1
	p.LowerBound = 50000
	p.AllocationPercentage = 0

	err := Validate(p, APIConfig{})
	var mc *MissingCredentialError
	require.ErrorAs(t, err, &mc)

	err = Validate(p, validCreds())
	expectBounds(t, err)

	p.LowerBound = 100
	err = Validate(p, validCreds())
	var il *InsufficientLevelsError
	require.ErrorAs(t, err, &il)
}

func TestValidateBoundaryValues(t *testing.T) {
	p := validParams()
	p.AllocationPercentage = 100
	require.NoError(t, Validate(p, validCreds()))

	p.Levels = MinGridLevels
	require.NoError(t, Validate(p, validCreds()))

	p.Levels = MaxGridLevels
	require.NoError(t, Validate(p, validCreds()))

	p.Adaptive.IntervalSeconds = int(MaxAdaptiveIntervalSeconds)
	require.NoError(t, Validate(p, validCreds()))

	// percentage sizing ignores the fixed order size
	p.OrderSize = 0
	require.NoError(t, Validate(p, validCreds()))

	// adaptive checks only apply when enabled
	p.Adaptive = AdaptiveParameters{Enabled: false}
	require.NoError(t, Validate(p, validCreds()))
}

func TestAppConfigValidate(t *testing.T) {
	cfg, err := Parse(MapSource{"API_KEY": "k", "API_SECRET": "s", "GRID_LEVELS": "1"})
	require.NoError(t, err)
	var il *InsufficientLevelsError
	require.ErrorAs(t, cfg.Validate(), &il)
}

func expectBounds(t *testing.T, err error) {
	t.Helper()
	var e *InvalidBoundsError
	require.ErrorAs(t, err, &e)
}

func expectAllocation(field string, value float64) func(*testing.T, error) {
	return func(t *testing.T, err error) {
		var e *InvalidAllocationError
		require.ErrorAs(t, err, &e)
		assert.Equal(t, field, e.Field)
		assert.Equal(t, value, e.Value)
	}
}

func expectAdaptive(field string) func(*testing.T, error) {
	return func(t *testing.T, err error) {
		var e *InvalidAdaptiveParameterError
		require.ErrorAs(t, err, &e)
		assert.Equal(t, field, e.Field)
	}
}
