package application

import (
	"math"
	"time"
)

const (
	requestTimeout    = 5 * time.Second
	baseCheckInterval = 2 * time.Minute
	minCheckDelay     = 1 * time.Minute
	maxCheckDelay     = 1 * time.Hour
)

// NextCheckDelay returns the wait before the next check of a slot. r is a
// uniform sample in [0, 1) that perturbs the base interval into [1, 3)
// minutes; each consecutive failure doubles it. The result is clamped to
// [1 minute, 1 hour].
func NextCheckDelay(failures int, r float64) time.Duration {
	if failures < 0 {
		failures = 0
	}
	if math.IsNaN(r) || r < 0 {
		r = 0
	}
	if r > 1 {
		r = 1
	}

	perturbed := float64(baseCheckInterval) * (0.5 + r)
	delay := perturbed * math.Pow(2, float64(failures))

	// math.Pow overflows to +Inf long before failures stops growing.
	if math.IsNaN(delay) || delay > float64(maxCheckDelay) {
		delay = float64(maxCheckDelay)
	}
	if delay < float64(minCheckDelay) {
		delay = float64(minCheckDelay)
	}

	return time.Duration(math.Round(delay)).Round(time.Millisecond)
}
