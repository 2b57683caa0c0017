// Package layout computes collage placements for gallery images.
package layout

// epsilon absorbs floating point error in containment checks.
const epsilon = 1e-6

// Rect is an axis-aligned rectangle. X and Y are the top-left corner.
type Rect struct {
	X      float64 `json:"x" toml:"x"`
	Y      float64 `json:"y" toml:"y"`
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Overlaps checks if two rectangles share interior area.
// Rectangles that only touch along an edge do not overlap.
func (r Rect) Overlaps(other Rect) bool {
	if r.Empty() || other.Empty() {
		return false
	}
	return r.X < other.Right() && other.X < r.Right() &&
		r.Y < other.Bottom() && other.Y < r.Bottom()
}

// ContainsRect reports whether other lies entirely within r.
func (r Rect) ContainsRect(other Rect) bool {
	return other.X >= r.X-epsilon && other.Y >= r.Y-epsilon &&
		other.Right() <= r.Right()+epsilon && other.Bottom() <= r.Bottom()+epsilon
}

// Intersect returns the common area of r and other, or an empty Rect.
func (r Rect) Intersect(other Rect) Rect {
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(r.Right(), other.Right())
	y1 := min(r.Bottom(), other.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Subtract returns the parts of r not covered by other.
// The result has at most four pieces: full-width slabs above and below the
// covered area, and side pieces spanning its height.
func (r Rect) Subtract(other Rect) []Rect {
	cut := r.Intersect(other)
	if cut.Empty() {
		return []Rect{r}
	}

	pieces := make([]Rect, 0, 4)
	if cut.Y > r.Y {
		pieces = append(pieces, Rect{X: r.X, Y: r.Y, Width: r.Width, Height: cut.Y - r.Y})
	}
	if cut.Bottom() < r.Bottom() {
		pieces = append(pieces, Rect{X: r.X, Y: cut.Bottom(), Width: r.Width, Height: r.Bottom() - cut.Bottom()})
	}
	if cut.X > r.X {
		pieces = append(pieces, Rect{X: r.X, Y: cut.Y, Width: cut.X - r.X, Height: cut.Height})
	}
	if cut.Right() < r.Right() {
		pieces = append(pieces, Rect{X: cut.Right(), Y: cut.Y, Width: r.Right() - cut.Right(), Height: cut.Height})
	}
	return pieces
}

// clamp limits v to [lo, hi]. When the range is inverted lo wins.
func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
