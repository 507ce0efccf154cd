package kiosk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStats_InitialAverage(t *testing.T) {
	s := ProvideStats()

	assert.Equal(t, initAvgPassDuration, s.AvgPassDuration())
	assert.Zero(t, s.Completed())
}

func TestStats_AverageOverRecordedPasses(t *testing.T) {
	s := ProvideStats()

	s.RecordPass(2 * time.Minute)
	assert.Equal(t, 2*time.Minute, s.AvgPassDuration())

	s.RecordPass(4 * time.Minute)
	assert.Equal(t, 3*time.Minute, s.AvgPassDuration())
	assert.Equal(t, 2, s.Completed())
}

func TestStats_WindowEvictsOldest(t *testing.T) {
	s := ProvideStats()

	s.RecordPass(100 * time.Minute)
	for i := 0; i < passWindowSize; i++ {
		s.RecordPass(time.Minute)
	}

	assert.Equal(t, time.Minute, s.AvgPassDuration(), "the outlier falls out of the window")
	assert.Equal(t, passWindowSize+1, s.Completed())
}
