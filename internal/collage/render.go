// Package collage renders gallery layouts into a single shareable image.
package collage

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"golang.org/x/image/draw"

	"github.com/kyiku/mall-event-back/internal/layout"
)

// Canvas bounds for rendered collages.
const (
	DefaultWidth  = 1200
	DefaultHeight = 800
	MaxDimension  = 4096
)

// ErrInvalidDimensions is returned for a non-positive canvas.
var ErrInvalidDimensions = errors.New("invalid collage dimensions")

// Background is the canvas fill color.
var Background = color.White

// NormalizeDimensions fills in defaults for zero values and caps each side.
func NormalizeDimensions(width, height int) (layout.Dimensions, error) {
	if width < 0 || height < 0 {
		return layout.Dimensions{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	if width > MaxDimension {
		width = MaxDimension
	}
	if height > MaxDimension {
		height = MaxDimension
	}
	return layout.Dimensions{Width: float64(width), Height: float64(height)}, nil
}

// DrawOrder returns placement indexes sorted by ascending z-index.
// Ties keep placement order.
func DrawOrder(l layout.Layout) []int {
	order := make([]int, len(l.Placements))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return zIndex(l, order[a]) < zIndex(l, order[b])
	})
	return order
}

func zIndex(l layout.Layout, i int) int {
	if i < len(l.ZIndexes) {
		return l.ZIndexes[i]
	}
	return 0
}

// Render draws each placed image scaled into its box.
// Placements without a decoded image are skipped.
func Render(dims layout.Dimensions, l layout.Layout, images map[string]image.Image) (*image.RGBA, error) {
	if !dims.Valid() {
		return nil, fmt.Errorf("%w: %vx%v", ErrInvalidDimensions, dims.Width, dims.Height)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, int(math.Round(dims.Width)), int(math.Round(dims.Height))))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	for _, i := range DrawOrder(l) {
		p := l.Placements[i]
		src, ok := images[p.ImageID]
		if !ok || src == nil {
			continue
		}

		dst := placementRect(p)
		if dst.Empty() || !dst.Overlaps(canvas.Bounds()) {
			continue
		}
		draw.CatmullRom.Scale(canvas, dst, src, src.Bounds(), draw.Over, nil)
	}

	return canvas, nil
}

func placementRect(p layout.Placement) image.Rectangle {
	x0 := int(math.Round(p.X))
	y0 := int(math.Round(p.Y))
	return image.Rect(x0, y0, x0+int(math.Round(p.Width)), y0+int(math.Round(p.Height)))
}
