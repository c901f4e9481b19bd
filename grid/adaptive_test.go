package grid_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"adaptive-grid-bot/config"
	"adaptive-grid-bot/grid"
)

func TestAdaptiveHook_Disabled(t *testing.T) {
	h := grid.NewAdaptiveHook(config.AdaptiveParameters{
		Enabled:                    false,
		VolatilityAdjustmentFactor: 1.5,
		IntervalSeconds:            60,
	})
	for _, elapsed := range []time.Duration{0, time.Second, time.Minute, 24 * time.Hour} {
		assert.False(t, h.ShouldConsiderRecompute(elapsed), "elapsed %s", elapsed)
	}
	assert.False(t, h.Enabled())
	assert.Equal(t, 1.5, h.VolatilityAdjustmentFactor())
}

func TestAdaptiveHook_Enabled(t *testing.T) {
	h := grid.NewAdaptiveHook(config.AdaptiveParameters{
		Enabled:                    true,
		VolatilityAdjustmentFactor: 1,
		IntervalSeconds:            300,
	})
	assert.Equal(t, 5*time.Minute, h.Interval())
	assert.Equal(t, 300, h.IntervalSeconds())

	cases := []struct {
		elapsed time.Duration
		want    bool
	}{
		{0, false},
		{299 * time.Second, false},
		{300*time.Second - time.Nanosecond, false},
		{300 * time.Second, true},
		{301 * time.Second, true},
		{time.Hour, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, h.ShouldConsiderRecompute(tc.elapsed), "elapsed %s", tc.elapsed)
	}
}

func TestAdaptiveHook_LargestInterval(t *testing.T) {
	h := grid.NewAdaptiveHook(config.AdaptiveParameters{
		Enabled:                    true,
		VolatilityAdjustmentFactor: 1,
		IntervalSeconds:            int(config.MaxAdaptiveIntervalSeconds),
	})
	assert.Greater(t, h.Interval(), time.Duration(0))
	assert.Equal(t, int(config.MaxAdaptiveIntervalSeconds), h.IntervalSeconds())
	assert.False(t, h.ShouldConsiderRecompute(0))
	assert.False(t, h.ShouldConsiderRecompute(100*365*24*time.Hour))
}

// 未经校验的超大间隔不能回绕成负数
func TestAdaptiveHook_IntervalBeyondDurationRange(t *testing.T) {
	p := config.AdaptiveParameters{
		Enabled:                    true,
		VolatilityAdjustmentFactor: 1,
		IntervalSeconds:            9300000000,
	}
	var e *config.InvalidAdaptiveParameterError
	assert.ErrorAs(t, config.Validate(config.GridParameters{
		Levels:               10,
		LowerBound:           1,
		UpperBound:           2,
		Sizing:               config.SizingPercentage,
		AllocationPercentage: 10,
		Adaptive:             p,
	}, config.APIConfig{APIKey: "k", APISecret: "s"}), &e)

	h := grid.NewAdaptiveHook(p)
	assert.Greater(t, h.Interval(), time.Duration(0))
	assert.Greater(t, h.IntervalSeconds(), 0)
	assert.False(t, h.ShouldConsiderRecompute(0))
	assert.False(t, h.ShouldConsiderRecompute(time.Hour))
}
