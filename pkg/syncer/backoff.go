package syncer

import "time"

// backoff computes reconnect delays: starts at floor, doubles per
// consecutive failure, capped at ceiling. reset returns it to the floor.
type backoff struct {
	floor   time.Duration
	ceiling time.Duration

	failures int
}

func newBackoff(floor, ceiling time.Duration) *backoff {
	return &backoff{floor: floor, ceiling: ceiling}
}

// fail records one failure and returns the delay to wait before the next
// attempt.
func (b *backoff) fail() time.Duration {
	b.failures++

	d := b.floor
	for i := 1; i < b.failures; i++ {
		d *= 2
		if d >= b.ceiling {
			return b.ceiling
		}
	}
	if d > b.ceiling {
		d = b.ceiling
	}
	return d
}

func (b *backoff) reset() {
	b.failures = 0
}
