package grid

import (
	"math"
	"time"

	"adaptive-grid-bot/config"
)

// AdaptiveHook tells an external strategy loop when a re-grid is worth
// considering. It owns no timer; the caller measures elapsed time.
type AdaptiveHook struct {
	enabled  bool
	factor   float64
	interval time.Duration
}

func NewAdaptiveHook(p config.AdaptiveParameters) AdaptiveHook {
	interval := time.Duration(math.MaxInt64)
	if int64(p.IntervalSeconds) <= config.MaxAdaptiveIntervalSeconds {
		interval = time.Duration(p.IntervalSeconds) * time.Second
	}
	return AdaptiveHook{
		enabled:  p.Enabled,
		factor:   p.VolatilityAdjustmentFactor,
		interval: interval,
	}
}

func (h AdaptiveHook) Enabled() bool { return h.enabled }

// Interval 自适应重算的最小间隔。
func (h AdaptiveHook) Interval() time.Duration { return h.interval }

func (h AdaptiveHook) IntervalSeconds() int { return int(h.interval / time.Second) }

func (h AdaptiveHook) VolatilityAdjustmentFactor() float64 { return h.factor }

// ShouldConsiderRecompute is elapsed >= Interval when adaptive pricing is
// enabled and always false otherwise.
func (h AdaptiveHook) ShouldConsiderRecompute(elapsed time.Duration) bool {
	if !h.enabled {
		return false
	}
	return elapsed >= h.interval
}
