package geom

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// ErrMalformedRectangle is returned when a rectangle-tool shape does not have
// exactly 4 vertices. This is a data error, never retried.
var ErrMalformedRectangle = errors.New("rectangle must have exactly 4 vertices")

// RectangleProps are the degrees of freedom of a (possibly rotated) rectangle,
// extracted so that each can be interpolated independently.
type RectangleProps struct {
	Angle  float32 // Radians, direction of the vertex1 -> vertex2 edge
	Center Point   // Midpoint of vertex0 and vertex2 (the diagonal)
	Length float32 // Distance vertex1 -> vertex2
	Width  float32 // Distance vertex0 -> vertex1
}

// The 8 vertex orderings of the dihedral group of a rectangle:
// 4 rotations, then the 4 rotations of the reflection.
// Order matters: cost ties are broken by the first entry encountered.
var rectPermutations = [8][4]int{
	{0, 1, 2, 3},
	{1, 2, 3, 0},
	{2, 3, 0, 1},
	{3, 0, 1, 2},
	{3, 2, 1, 0},
	{2, 1, 0, 3},
	{1, 0, 3, 2},
	{0, 3, 2, 1},
}

// RectangleProperties extracts angle/center/length/width from a 4-vertex ring.
func RectangleProperties(rect []Point) (RectangleProps, error) {
	if len(rect) != 4 {
		return RectangleProps{}, fmt.Errorf("%w (got %v)", ErrMalformedRectangle, len(rect))
	}
	return RectangleProps{
		Angle: math32.Atan2(rect[2].Y-rect[1].Y, rect[2].X-rect[1].X),
		Center: Point{
			X: (rect[0].X + rect[2].X) / 2,
			Y: (rect[0].Y + rect[2].Y) / 2,
		},
		Length: rect[1].Distance(rect[2]),
		Width:  rect[0].Distance(rect[1]),
	}, nil
}

// cosineSimilarity of two edge vectors, 0 if either is degenerate.
func cosineSimilarity(ax, ay, bx, by float32) float32 {
	denom := math32.Hypot(ax, ay) * math32.Hypot(bx, by)
	if denom == 0 {
		return 0
	}
	return finiteOrZero((ax*bx + ay*by) / denom)
}

// bijectionCost scores how well perm maps rect2's vertices onto rect1:
// the summed negative cosine similarity of the two independent edge pairs.
// Lower is better; -2 is a perfect match of edge directions.
func bijectionCost(rect1, rect2 []Point, perm [4]int) float32 {
	cost := float32(0)
	for i := 0; i < 2; i++ {
		e1x := rect1[i+1].X - rect1[i].X
		e1y := rect1[i+1].Y - rect1[i].Y
		e2x := rect2[perm[i+1]].X - rect2[perm[i]].X
		e2y := rect2[perm[i+1]].Y - rect2[perm[i]].Y
		cost -= cosineSimilarity(e1x, e1y, e2x, e2y)
	}
	return cost
}

// FindRectangleVertexBijection reorders rect2's vertices so that its edges
// best line up with rect1's. Without this, interpolating a rectangle whose
// vertex list starts at a different corner (or winds the other way) would
// collapse the shape mid-flight instead of rotating it.
func FindRectangleVertexBijection(rect1, rect2 []Point) ([]Point, error) {
	if len(rect1) != 4 {
		return nil, fmt.Errorf("%w (got %v)", ErrMalformedRectangle, len(rect1))
	}
	if len(rect2) != 4 {
		return nil, fmt.Errorf("%w (got %v)", ErrMalformedRectangle, len(rect2))
	}
	best := rectPermutations[0]
	bestCost := bijectionCost(rect1, rect2, best)
	for _, perm := range rectPermutations[1:] {
		if cost := bijectionCost(rect1, rect2, perm); cost < bestCost {
			best = perm
			bestCost = cost
		}
	}
	out := make([]Point, 4)
	for i, j := range best {
		out[i] = rect2[j]
	}
	return out, nil
}

// InterpolateRectangle blends two 4-vertex rectangles: it maps next's vertices
// onto prev's ordering, interpolates angle/center/length/width independently,
// and rebuilds the 4 vertices by rotating the two half-diagonals around the
// interpolated center.
func InterpolateRectangle(prev, next []Point, weight float32) ([]Point, error) {
	matched, err := FindRectangleVertexBijection(prev, next)
	if err != nil {
		return nil, err
	}
	p1, err := RectangleProperties(prev)
	if err != nil {
		return nil, err
	}
	p2, err := RectangleProperties(matched)
	if err != nil {
		return nil, err
	}
	angle := InterpolateAngle(p1.Angle, p2.Angle, weight)
	center := InterpolatePoint(p1.Center, p2.Center, weight)
	length := InterpolateNumber(p1.Length, p2.Length, weight)
	width := InterpolateNumber(p1.Width, p2.Width, weight)

	// Half-diagonal vectors in the rotated frame.
	// u points along the vertex1->vertex2 edge, n is its perpendicular.
	ux, uy := math32.Cos(angle), math32.Sin(angle)
	nx, ny := -uy, ux
	d1x := (length*ux + width*nx) / 2
	d1y := (length*uy + width*ny) / 2
	d2x := (length*ux - width*nx) / 2
	d2y := (length*uy - width*ny) / 2
	return []Point{
		{X: finiteOrZero(center.X - d1x), Y: finiteOrZero(center.Y - d1y)},
		{X: finiteOrZero(center.X - d2x), Y: finiteOrZero(center.Y - d2y)},
		{X: finiteOrZero(center.X + d1x), Y: finiteOrZero(center.Y + d1y)},
		{X: finiteOrZero(center.X + d2x), Y: finiteOrZero(center.Y + d2y)},
	}, nil
}
