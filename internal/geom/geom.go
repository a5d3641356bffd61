// Package geom provides value types for normalized capture-space geometry.
// All coordinates are fractions of the capture bounds in [0,1], origin at
// the top-left corner with Y increasing downward.
package geom

import "math"

// Point is a position in normalized capture coordinates.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Dist returns the Euclidean distance between two points.
func (p Point) Dist(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Clamped returns the point clamped into the unit square.
func (p Point) Clamped() Point {
	return Point{X: Clamp01(p.X), Y: Clamp01(p.Y)}
}

// Valid reports whether both coordinates are finite and inside [0,1].
func (p Point) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) &&
		!math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0) &&
		p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// Mid returns the midpoint of two points.
func Mid(p, q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Rect is an axis-aligned rectangle in normalized coordinates, stored as
// the minimum corner plus size.
type Rect struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// RectAround builds a rectangle of the given size centered on c, clamped
// into the unit square.
func RectAround(c Point, w, h float64) Rect {
	r := Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
	return r.Clamped()
}

// Center returns the rectangle's center point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// MaxDim returns the larger of width and height.
func (r Rect) MaxDim() float64 {
	return math.Max(r.W, r.H)
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Pad expands the rectangle by the given fraction of each dimension on
// every side and clamps the result into the unit square.
func (r Rect) Pad(fraction float64) Rect {
	dx := r.W * fraction
	dy := r.H * fraction
	out := Rect{X: r.X - dx, Y: r.Y - dy, W: r.W + 2*dx, H: r.H + 2*dy}
	return out.Clamped()
}

// Clamped trims the rectangle to the unit square, preserving the covered
// area rather than just shifting the origin.
func (r Rect) Clamped() Rect {
	x0 := Clamp01(r.X)
	y0 := Clamp01(r.Y)
	x1 := Clamp01(r.X + r.W)
	y1 := Clamp01(r.Y + r.H)
	return Rect{X: x0, Y: y0, W: math.Max(0, x1-x0), H: math.Max(0, y1-y0)}
}

// BoundingBox returns the smallest rectangle containing all points. The
// second return is false when the slice is empty.
func BoundingBox(pts []Point) (Rect, bool) {
	if len(pts) == 0 {
		return Rect{}, false
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}

// Centroid returns the arithmetic mean of the points (no weighting). The
// second return is false when the slice is empty.
func Centroid(pts []Point) (Point, bool) {
	if len(pts) == 0 {
		return Point{}, false
	}
	var c RunningCentroid
	for _, p := range pts {
		c.Add(p)
	}
	return c.Center(), true
}

// Clamp01 clamps v into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp clamps v into [lo,hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// RunningCentroid maintains an online mean over accepted points. Groups that
// accrete one position at a time compare new candidates against the mean of
// everything accepted so far, not just the last point, so slow drift across
// many small steps is still caught.
type RunningCentroid struct {
	sumX float64
	sumY float64
	n    int
}

// Add accepts a point into the running mean.
func (c *RunningCentroid) Add(p Point) {
	c.sumX += p.X
	c.sumY += p.Y
	c.n++
}

// Center returns the mean of all accepted points, or the zero point when
// nothing has been accepted.
func (c *RunningCentroid) Center() Point {
	if c.n == 0 {
		return Point{}
	}
	return Point{X: c.sumX / float64(c.n), Y: c.sumY / float64(c.n)}
}

// Count returns how many points have been accepted.
func (c *RunningCentroid) Count() int {
	return c.n
}

// Reset clears the accumulator.
func (c *RunningCentroid) Reset() {
	c.sumX, c.sumY, c.n = 0, 0, 0
}
