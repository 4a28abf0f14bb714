// Package cascade computes deterministic placement offsets so that multiple
// restored windows fan out from a shared anchor instead of stacking exactly
// on top of each other.
package cascade

import "math"

// Radius is the distance in pixels between the anchor and each offset slot.
const Radius = 60

// The first nine slots: center, then the four diagonals, then the four
// cardinal directions. Windows are assigned in this order so the most
// important window lands dead center.
var directions = [][2]int{
	{0, 0},
	{-1, -1},
	{1, -1},
	{-1, 1},
	{1, 1},
	{0, -1},
	{-1, 0},
	{1, 0},
	{0, 1},
}

// Offsets returns count (dx, dy) pairs. The first nine come from the fixed
// direction table scaled by Radius; subsequent slots spiral outward in rings
// of eight, each ring one Radius further out.
func Offsets(count int) [][2]int {
	if count <= 0 {
		return nil
	}
	offsets := make([][2]int, 0, count)
	for i := 0; i < count; i++ {
		if i < len(directions) {
			d := directions[i]
			offsets = append(offsets, [2]int{d[0] * Radius, d[1] * Radius})
			continue
		}
		ring := (i-len(directions))/8 + 2
		angle := float64((i-len(directions))%8) * 45 * math.Pi / 180
		dx := int(math.Round(float64(ring*Radius) * math.Cos(angle)))
		dy := int(math.Round(float64(ring*Radius) * math.Sin(angle)))
		offsets = append(offsets, [2]int{dx, dy})
	}
	return offsets
}
