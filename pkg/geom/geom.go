// Package geom holds the pure numeric kernel used when reconstructing shapes
// between video key frames. All functions are total on finite inputs:
// a non-finite interpolation result is clamped to 0 rather than propagated,
// so degenerate geometry (eg coincident points) never poisons a response.
package geom

import (
	"github.com/chewxy/math32"
)

// A point in normalized image space (fractions of width/height, 0..1).
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

func (p Point) Distance(b Point) float32 {
	return math32.Hypot(b.X-p.X, b.Y-p.Y)
}

func finiteOrZero(v float32) float32 {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return 0
	}
	return v
}

// InterpolateNumber is a linear blend of a and b. weight 0 returns a exactly,
// weight 1 returns b exactly.
func InterpolateNumber(a, b, weight float32) float32 {
	return finiteOrZero(b*weight + (1-weight)*a)
}

// InterpolatePoint blends each component independently.
func InterpolatePoint(a, b Point, weight float32) Point {
	return Point{
		X: InterpolateNumber(a.X, b.X, weight),
		Y: InterpolateNumber(a.Y, b.Y, weight),
	}
}

// InterpolateAngle blends two angles (radians, -Pi..Pi) along the shorter
// angular path, so interpolating between 175 and -175 degrees passes through
// 180, not 0. The result is equivalent to the true angle modulo 2*Pi.
func InterpolateAngle(a, b, weight float32) float32 {
	delta := math32.Mod(b-a, 2*math32.Pi)
	if delta > math32.Pi {
		delta -= 2 * math32.Pi
	} else if delta < -math32.Pi {
		delta += 2 * math32.Pi
	}
	return finiteOrZero(a + delta*weight)
}
