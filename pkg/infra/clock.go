package infra

import "github.com/jonboulle/clockwork"

// ProvideClock returns the real clock. Anything time-driven (render ticks,
// backoff timers, elapsed baselines) takes a clockwork.Clock so tests can
// substitute a fake and advance time deterministically.
func ProvideClock() clockwork.Clock {
	return clockwork.NewRealClock()
}
