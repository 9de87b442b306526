package slidezone

import "math"

// Rectangle is an axis-aligned box in EMU.
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRectangle creates a rectangle from its offset and extent.
func NewRectangle(x, y, width, height float64) Rectangle {
	return Rectangle{X: x, Y: y, Width: width, Height: height}
}

// Right returns the right edge X coordinate.
func (r Rectangle) Right() float64 { return r.X + r.Width }

// Bottom returns the bottom edge Y coordinate.
func (r Rectangle) Bottom() float64 { return r.Y + r.Height }

// Area returns the area, treating negative sides as zero.
func (r Rectangle) Area() float64 {
	return math.Max(0, r.Width) * math.Max(0, r.Height)
}

// IsEmpty reports whether the rectangle has no positive area.
func (r Rectangle) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersection describes how much of a target rectangle another one covers.
type Intersection struct {
	// Area is the overlap area in squared EMU.
	Area float64
	// PercentOfTarget is Area relative to the target's own area (0-100).
	PercentOfTarget float64
}

// Overlaps reports whether the intersection has strictly positive area.
func (i Intersection) Overlaps() bool { return i.Area > 0 }

// Intersect computes the overlap of target and zone. Rectangles that only
// share an edge do not overlap. The percentage is relative to target, so the
// result is not symmetric in its arguments.
func Intersect(target, zone Rectangle) Intersection {
	xLeft := math.Max(target.X, zone.X)
	yTop := math.Max(target.Y, zone.Y)
	xRight := math.Min(target.Right(), zone.Right())
	yBottom := math.Min(target.Bottom(), zone.Bottom())

	if xRight <= xLeft || yBottom <= yTop {
		return Intersection{}
	}

	area := (xRight - xLeft) * (yBottom - yTop)
	var percent float64
	if ta := target.Area(); ta > 0 {
		percent = area / ta * 100
	}
	return Intersection{Area: area, PercentOfTarget: percent}
}
