package kiosk

import (
	"sync"
	"time"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

const (
	initAvgPassDuration = 5 * time.Minute
	passWindowSize      = 50
)

// Stats tracks pass durations over a fixed-size sliding window so the
// admin surface can show a meaningful average for the day.
type Stats struct {
	mu sync.Mutex

	// A fixed size sliding window for calculating average pass duration.
	durationWindow *linkedlistqueue.Queue

	avgPassDuration time.Duration
	completed       int
}

func ProvideStats() *Stats {
	return &Stats{
		durationWindow:  linkedlistqueue.New(),
		avgPassDuration: initAvgPassDuration,
	}
}

// RecordPass folds one completed pass into the window.
func (s *Stats) RecordPass(d time.Duration) {
	passDuration.Observe(d.Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.completed++
	if s.durationWindow.Size() >= passWindowSize {
		s.durationWindow.Dequeue()
	}
	s.durationWindow.Enqueue(d)

	var total time.Duration
	it := s.durationWindow.Iterator()
	for it.Next() {
		total += it.Value().(time.Duration)
	}
	s.avgPassDuration = total / time.Duration(s.durationWindow.Size())
}

func (s *Stats) AvgPassDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.avgPassDuration
}

func (s *Stats) Completed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}
