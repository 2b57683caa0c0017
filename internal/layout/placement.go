package layout

import "math"

// Image is a gallery item to be laid out.
type Image struct {
	ID   string    `json:"id"`
	Size SizeClass `json:"size"`
}

// Placement is the computed position of one image.
type Placement struct {
	ImageID string  `json:"image_id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Scale   float64 `json:"scale"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	// Fallback is set when the image was parked on a safe corner.
	Fallback bool `json:"fallback"`
}

// Bounds returns the bounding box of the placement.
func (p Placement) Bounds() Rect {
	return Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

// CenterDistance returns the Euclidean distance between the two box centers.
func (p Placement) CenterDistance(other Placement) float64 {
	ax, ay := p.Bounds().Center()
	bx, by := other.Bounds().Center()
	return math.Hypot(ax-bx, ay-by)
}

// RequiredDistance returns the minimum center distance between two placements.
// It averages the half-width and half-height sums of both boxes and adds margin.
func RequiredDistance(a, b Placement, margin float64) float64 {
	halfWidths := (a.Width + b.Width) / 2
	halfHeights := (a.Height + b.Height) / 2
	return (halfWidths+halfHeights)/2 + margin
}
