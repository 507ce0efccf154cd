package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_DoublesToCeiling(t *testing.T) {
	b := newBackoff(2*time.Second, 30*time.Second)

	var delays []time.Duration
	for i := 0; i < 8; i++ {
		delays = append(delays, b.fail())
	}

	assert.Equal(t, 2*time.Second, delays[0])
	assert.Equal(t, 4*time.Second, delays[1])
	assert.Equal(t, 8*time.Second, delays[2])
	assert.Equal(t, 16*time.Second, delays[3])
	for _, d := range delays[4:] {
		assert.Equal(t, 30*time.Second, d, "delay is capped at the ceiling")
	}

	for i := 1; i < len(delays); i++ {
		assert.GreaterOrEqual(t, delays[i], delays[i-1], "delays never decrease")
	}
}

func TestBackoff_ResetReturnsToFloor(t *testing.T) {
	b := newBackoff(2*time.Second, 30*time.Second)

	for i := 0; i < 10; i++ {
		b.fail()
	}
	b.reset()

	assert.Equal(t, 2*time.Second, b.fail(), "one success resets the next delay to the floor")
}

func TestBackoff_ManyFailuresDoNotOverflow(t *testing.T) {
	b := newBackoff(2*time.Second, 30*time.Second)

	var d time.Duration
	for i := 0; i < 200; i++ {
		d = b.fail()
	}
	assert.Equal(t, 30*time.Second, d)
}
