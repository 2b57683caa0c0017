package layout

import (
	"math/rand"
)

// Rand is the random source used by the engine.
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// globalRand delegates to the goroutine-safe package-level source.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) Intn(n int) int   { return rand.Intn(n) }

// NewSeededRand returns a deterministic source. It is not safe for concurrent use.
func NewSeededRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// Mode selects how Recompute arranges the images.
type Mode string

// Layout modes
const (
	ModeScatter Mode = "scatter"
	ModeCenter  Mode = "center"
)

// ParseMode returns the mode for s, defaulting to scatter.
func ParseMode(s string) Mode {
	if Mode(s) == ModeCenter {
		return ModeCenter
	}
	return ModeScatter
}

// Layout is the full result of a recomputation.
type Layout struct {
	Placements     []Placement    `json:"placements"`
	ZIndexes       []int          `json:"z_indexes"`
	ScreenCategory ScreenCategory `json:"screen_category"`
	Exclusions     []Rect         `json:"exclusions"`
}

// Engine places images inside a viewport while avoiding exclusion zones.
type Engine struct {
	cfg Config
	rng Rand
}

// NewEngine creates a new Engine. A nil rng uses the package-level source.
func NewEngine(cfg Config, rng Rand) *Engine {
	if rng == nil {
		rng = globalRand{}
	}
	return &Engine{
		cfg: cfg,
		rng: rng,
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Recompute builds a layout for the current images and viewport.
// Each call is independent of earlier ones.
func (e *Engine) Recompute(images []Image, dims Dimensions, mode Mode) Layout {
	var placements []Placement
	if mode == ModeCenter {
		placements = e.CenterPositions(images, dims)
	} else {
		placements = e.ScatteredPositions(images, dims)
	}

	return Layout{
		Placements:     placements,
		ZIndexes:       e.RandomZIndexes(len(images)),
		ScreenCategory: Classify(dims),
		Exclusions:     e.Exclusions(dims),
	}
}

// CenterExclusion returns the rectangle reserved for the header logo.
func (e *Engine) CenterExclusion(dims Dimensions) Rect {
	size := e.cfg.Exclusion.Compact
	if dims.Height > e.cfg.Exclusion.Breakpoint {
		size = e.cfg.Exclusion.Tall
	}
	return Rect{
		X:      (dims.Width - size.Width) / 2,
		Y:      (dims.Height - size.Height) / 2,
		Width:  size.Width,
		Height: size.Height,
	}
}

// Exclusions returns every rectangle placements must not overlap.
func (e *Engine) Exclusions(dims Dimensions) []Rect {
	rects := []Rect{e.CenterExclusion(dims)}

	bl := e.cfg.Exclusion.BottomLeft
	if bl.Width > 0 && bl.Height > 0 {
		rects = append(rects, Rect{X: 0, Y: dims.Height - bl.Height, Width: bl.Width, Height: bl.Height})
	}

	return append(rects, e.cfg.Exclusion.Extra...)
}

// viewport returns the padded area placements must stay inside.
func (e *Engine) viewport(dims Dimensions) Rect {
	p := e.cfg.Padding
	return Rect{X: p, Y: p, Width: dims.Width - 2*p, Height: dims.Height - 2*p}
}

// CandidateZones returns the regions random sampling draws from.
func (e *Engine) CandidateZones(dims Dimensions) []Rect {
	p := e.cfg.Padding
	c := e.CenterExclusion(dims)

	raw := []Rect{
		// above the header
		{X: p, Y: p, Width: dims.Width - 2*p, Height: c.Y - p},
		// below the header
		{X: p, Y: c.Bottom(), Width: dims.Width - 2*p, Height: dims.Height - p - c.Bottom()},
		// beside the header
		{X: p, Y: c.Y, Width: c.X - p, Height: c.Height},
		{X: c.Right(), Y: c.Y, Width: dims.Width - p - c.Right(), Height: c.Height},
		// left margin strip
		{X: p, Y: p, Width: dims.Width * e.cfg.LeftStripRatio, Height: dims.Height - 2*p},
	}

	vp := e.viewport(dims)
	exclusions := e.Exclusions(dims)

	zones := make([]Rect, 0, len(raw))
	for _, r := range raw {
		pieces := []Rect{r.Intersect(vp)}
		for _, ex := range exclusions {
			var next []Rect
			for _, piece := range pieces {
				next = append(next, piece.Subtract(ex)...)
			}
			pieces = next
		}
		for _, piece := range pieces {
			if piece.Width >= e.cfg.MinZoneSize && piece.Height >= e.cfg.MinZoneSize {
				zones = append(zones, piece)
			}
		}
	}
	return zones
}

// SafeCorner returns the fallback position for the index-th image.
// Corners cycle through top-left, top-right and bottom-right.
func (e *Engine) SafeCorner(index int, width, height float64, dims Dimensions) (float64, float64) {
	p := e.cfg.Padding
	switch index % 3 {
	case 0:
		return p, p
	case 1:
		return dims.Width - p - width, p
	default:
		return dims.Width - p - width, dims.Height - p - height
	}
}

// ScatteredPositions places the images one by one at random valid positions.
// Later images avoid every earlier placement. An image that cannot be placed
// within the attempt budget is parked on a safe corner, so the result always
// has exactly one placement per image.
func (e *Engine) ScatteredPositions(images []Image, dims Dimensions) []Placement {
	placements := make([]Placement, 0, len(images))
	if len(images) == 0 {
		return placements
	}

	multiplier := ResponsiveMultiplier(dims)
	zones := e.CandidateZones(dims)
	exclusions := e.Exclusions(dims)
	vp := e.viewport(dims)

	for i, img := range images {
		scale := e.cfg.MinScale + e.rng.Float64()*(e.cfg.MaxScale-e.cfg.MinScale)
		base := e.cfg.baseSize(ParseSizeClass(string(img.Size)))

		candidate := Placement{
			ImageID: img.ID,
			Scale:   scale,
			Width:   base.Width * multiplier * scale,
			Height:  base.Height * multiplier * scale,
		}

		if pos, ok := e.findPosition(candidate, zones, exclusions, vp, placements); ok {
			candidate.X, candidate.Y = pos.X, pos.Y
		} else {
			candidate.X, candidate.Y = e.SafeCorner(i, candidate.Width, candidate.Height, dims)
			candidate.Fallback = true
		}

		placements = append(placements, candidate)
	}

	return placements
}

// findPosition runs the randomized attempt budget for one candidate.
func (e *Engine) findPosition(candidate Placement, zones, exclusions []Rect, vp Rect, placed []Placement) (Rect, bool) {
	// Nothing can succeed when the box is larger than the padded viewport.
	if candidate.Width > vp.Width || candidate.Height > vp.Height {
		return Rect{}, false
	}

	total := e.cfg.ZoneAttempts + e.cfg.ViewportAttempts
	for attempt := 0; attempt < total; attempt++ {
		var x, y float64
		if attempt < e.cfg.ZoneAttempts && len(zones) > 0 {
			zone := zones[e.rng.Intn(len(zones))]
			x = zone.X + e.rng.Float64()*max(0, zone.Width-candidate.Width)
			y = zone.Y + e.rng.Float64()*max(0, zone.Height-candidate.Height)
		} else {
			x = vp.X + e.rng.Float64()*(vp.Width-candidate.Width)
			y = vp.Y + e.rng.Float64()*(vp.Height-candidate.Height)
		}

		candidate.X = clamp(x, vp.X, vp.Right()-candidate.Width)
		candidate.Y = clamp(y, vp.Y, vp.Bottom()-candidate.Height)

		if e.valid(candidate, exclusions, vp, placed) {
			return candidate.Bounds(), true
		}
	}
	return Rect{}, false
}

// valid checks containment, exclusion and spacing for a candidate.
func (e *Engine) valid(candidate Placement, exclusions []Rect, vp Rect, placed []Placement) bool {
	box := candidate.Bounds()
	if !vp.ContainsRect(box) {
		return false
	}
	for _, ex := range exclusions {
		if box.Overlaps(ex) {
			return false
		}
	}
	for _, other := range placed {
		if candidate.CenterDistance(other) < RequiredDistance(candidate, other, e.cfg.MinMargin) {
			return false
		}
	}
	return true
}

// CenterPositions stacks every image on the viewport center at scale 1.
func (e *Engine) CenterPositions(images []Image, dims Dimensions) []Placement {
	placements := make([]Placement, 0, len(images))
	half := e.cfg.CenterHalfSize
	for _, img := range images {
		placements = append(placements, Placement{
			ImageID: img.ID,
			X:       dims.Width/2 - half,
			Y:       dims.Height/2 - half,
			Scale:   1,
			Width:   2 * half,
			Height:  2 * half,
		})
	}
	return placements
}

// RandomZIndexes returns count stacking values in [ZIndexMin, ZIndexMax).
func (e *Engine) RandomZIndexes(count int) []int {
	if count <= 0 {
		return []int{}
	}
	band := e.cfg.ZIndexMax - e.cfg.ZIndexMin
	zs := make([]int, count)
	for i := range zs {
		zs[i] = e.cfg.ZIndexMin + e.rng.Intn(band)
	}
	return zs
}
