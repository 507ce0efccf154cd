package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_SingleCentered(t *testing.T) {
	slots := Layout(1, 1920, 1080)

	require.Len(t, slots, 1)
	assert.Equal(t, Slot{X: 50, Y: 50, Scale: 1.0}, slots[0])
}

func TestLayout_PairLandscape(t *testing.T) {
	slots := Layout(2, 1920, 1080)

	require.Len(t, slots, 2)
	for _, s := range slots {
		assert.Equal(t, 0.8, s.Scale)
		assert.Equal(t, 50.0, s.Y, "landscape pair sits on the horizontal axis")
	}
	assert.InDelta(t, 50.0, (slots[0].X+slots[1].X)/2, 1e-9, "pair is symmetric about x=50")
	assert.Less(t, slots[0].X, slots[1].X)
}

func TestLayout_PairPortraitStacksVertically(t *testing.T) {
	slots := Layout(2, 1080, 1920)

	require.Len(t, slots, 2)
	assert.Equal(t, slots[0].X, slots[1].X)
	assert.Less(t, slots[0].Y, slots[1].Y)
	assert.InDelta(t, 50.0, (slots[0].Y+slots[1].Y)/2, 1e-9)
}

func TestLayout_TrioPortrait(t *testing.T) {
	slots := Layout(3, 1080, 1920)

	require.Len(t, slots, 3)
	for _, s := range slots {
		assert.Equal(t, 0.65, s.Scale)
	}
	assert.Equal(t, 50.0, slots[0].X)
	assert.Equal(t, 25.0, slots[0].Y, "portrait top entity sits at 25 percent height")
	assert.Equal(t, 70.0, slots[1].Y)
	assert.Equal(t, 70.0, slots[2].Y)
	assert.InDelta(t, 50.0, (slots[1].X+slots[2].X)/2, 1e-9, "bottom pair centered")
}

func TestLayout_TrioLandscapeTopRow(t *testing.T) {
	slots := Layout(3, 1920, 1080)

	require.Len(t, slots, 3)
	assert.Equal(t, 30.0, slots[0].Y, "landscape lowers the top row")
	assert.Equal(t, 70.0, slots[1].Y)
	assert.Equal(t, 70.0, slots[2].Y)
}

func TestLayout_GridScaleAndRowMajor(t *testing.T) {
	slots := Layout(6, 1920, 1080)

	require.Len(t, slots, 6)
	// 6 entities landscape: 3 columns, 2 rows.
	for _, s := range slots {
		assert.InDelta(t, 1.6/3, s.Scale, 1e-9)
	}
	assert.Equal(t, slots[0].Y, slots[1].Y)
	assert.Equal(t, slots[0].Y, slots[2].Y)
	assert.Greater(t, slots[3].Y, slots[0].Y)
}

func TestLayout_GridIncompleteLastRowRecentered(t *testing.T) {
	// 5 entities landscape: 3 columns, last row holds 2 and is centered.
	slots := Layout(5, 1920, 1080)

	require.Len(t, slots, 5)
	assert.InDelta(t, 50.0, (slots[3].X+slots[4].X)/2, 1e-9, "incomplete row centered, not left-aligned")
	assert.NotEqual(t, slots[0].X, slots[3].X)
}

func TestLayout_PureAndDeterministic(t *testing.T) {
	a := Layout(7, 1280, 720)
	b := Layout(7, 1280, 720)
	assert.Equal(t, a, b)

	for _, s := range a {
		assert.GreaterOrEqual(t, s.X, 0.0)
		assert.LessOrEqual(t, s.X, 100.0)
		assert.GreaterOrEqual(t, s.Y, 0.0)
		assert.LessOrEqual(t, s.Y, 100.0)
	}
}

func TestLayout_ZeroCount(t *testing.T) {
	assert.Nil(t, Layout(0, 1920, 1080))
}
