package main

import "math"

// hypot returns the Euclidean distance of the vector (dx, dy).
func hypot(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}

// distance returns the distance between two points.
func distance(x1, y1, x2, y2 float64) float64 {
	return hypot(x2-x1, y2-y1)
}
