// Package layout maps an entity count and viewport shape onto screen
// positions. Layout is a pure function: all math is in viewport
// percentages, so it is testable without a rendering context.
package layout

import "math"

// Slot is one computed screen position. X and Y are percentages of the
// viewport (0-100), Scale is relative to the base entity size.
type Slot struct {
	X     float64
	Y     float64
	Scale float64
}

// Entity visual diameter as a fraction of the viewport's shorter dimension
// at scale 1.0, and the gap between paired entities as a fraction of the
// shorter dimension.
const (
	baseDiameter = 0.8
	pairGap      = 0.05
)

// Layout computes target slots for count entities on a width x height
// viewport. Entities are assigned slots row-major by index.
func Layout(count int, width, height float64) []Slot {
	switch {
	case count <= 0:
		return nil
	case count == 1:
		return []Slot{{X: 50, Y: 50, Scale: 1.0}}
	case count == 2:
		return layoutPair(width, height)
	case count == 3:
		return layoutTrio(width, height)
	default:
		return layoutGrid(count, width, height)
	}
}

// pairOffsets returns the two center offsets (in pixels, around zero) for a
// pair of entities at the given scale, along one axis.
func pairOffsets(scale, width, height float64) float64 {
	shorter := math.Min(width, height)
	diameter := baseDiameter * scale * shorter
	gap := pairGap * shorter
	return (diameter + gap) / 2
}

func layoutPair(width, height float64) []Slot {
	const scale = 0.8
	off := pairOffsets(scale, width, height)

	if height > width {
		// Portrait: stack vertically.
		offPct := off / height * 100
		return []Slot{
			{X: 50, Y: 50 - offPct, Scale: scale},
			{X: 50, Y: 50 + offPct, Scale: scale},
		}
	}
	offPct := off / width * 100
	return []Slot{
		{X: 50 - offPct, Y: 50, Scale: scale},
		{X: 50 + offPct, Y: 50, Scale: scale},
	}
}

func layoutTrio(width, height float64) []Slot {
	const scale = 0.65

	topY := 30.0
	if height > width {
		topY = 25.0
	}

	offPct := pairOffsets(scale, width, height) / width * 100
	return []Slot{
		{X: 50, Y: topY, Scale: scale},
		{X: 50 - offPct, Y: 70, Scale: scale},
		{X: 50 + offPct, Y: 70, Scale: scale},
	}
}

func layoutGrid(count int, width, height float64) []Slot {
	root := math.Sqrt(float64(count))

	var cols, rows int
	if width >= height {
		cols = int(math.Ceil(root))
		rows = (count + cols - 1) / cols
	} else {
		rows = int(math.Ceil(root))
		cols = (count + rows - 1) / rows
	}

	scale := 1.6 / float64(max(cols, rows))
	cellW := 100.0 / float64(cols)
	cellH := 100.0 / float64(rows)

	slots := make([]Slot, 0, count)
	for i := 0; i < count; i++ {
		row := i / cols
		col := i % cols

		// Re-center the final, possibly-incomplete row.
		inRow := cols
		if rem := count - row*cols; rem < cols {
			inRow = rem
		}

		slots = append(slots, Slot{
			X:     50 + (float64(col)-float64(inRow-1)/2)*cellW,
			Y:     (float64(row) + 0.5) * cellH,
			Scale: scale,
		})
	}
	return slots
}
