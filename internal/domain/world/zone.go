package world

import "math"

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Dist is the Euclidean distance between two points.
func (p Point) Dist(o Point) float64 {
	dx := float64(p.X - o.X)
	dy := float64(p.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func (p Point) Chebyshev(o Point) int {
	return max(abs(p.X-o.X), abs(p.Y-o.Y))
}

// StepToward returns a unit step from p toward target along the axis with
// the larger offset. Ties move along Y.
func (p Point) StepToward(target Point) (int, int) {
	dx := target.X - p.X
	dy := target.Y - p.Y
	if abs(dx) > abs(dy) {
		return sign(dx), 0
	}
	return 0, sign(dy)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
