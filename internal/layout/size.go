package layout

import "github.com/kyiku/mall-event-back/internal/model"

// SizeClass is the coarse display size of a gallery image.
type SizeClass string

// Size classes
const (
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
	SizeXLarge SizeClass = "xlarge"
)

// ParseSizeClass returns the size class for s. Unknown values map to medium.
func ParseSizeClass(s string) SizeClass {
	switch SizeClass(s) {
	case SizeSmall, SizeMedium, SizeLarge, SizeXLarge:
		return SizeClass(s)
	default:
		return SizeMedium
	}
}

// ScreenCategory is a viewport bucket used for responsive sizing.
type ScreenCategory string

// Screen categories
const (
	ScreenSmall  ScreenCategory = "small"
	ScreenMedium ScreenCategory = "medium"
	ScreenLarge  ScreenCategory = "large"
	ScreenXLarge ScreenCategory = "xlarge"
)

// Area thresholds (exclusive upper bounds) for screen categories.
const (
	smallScreenArea  = 800 * 600
	mediumScreenArea = 1366 * 768
	largeScreenArea  = 1920 * 1080
)

var screenMultipliers = map[ScreenCategory]float64{
	ScreenSmall:  0.6,
	ScreenMedium: 0.8,
	ScreenLarge:  1.0,
	ScreenXLarge: 1.2,
}

// Aspect and resolution multipliers layered over the screen category.
const (
	ultraWideAspect     = 2.0
	ultraWideMultiplier = 0.9
	portraitAspect      = 0.75
	portraitMultiplier  = 0.85
	uhdWidth            = 2560
	uhdHeight           = 1440
	uhdMultiplier       = 1.15
)

// Dimensions is the size of the gallery viewport.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both sides are positive.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// Classify returns the screen category for the viewport area.
func Classify(dims Dimensions) ScreenCategory {
	area := dims.Width * dims.Height
	switch {
	case area < smallScreenArea:
		return ScreenSmall
	case area < mediumScreenArea:
		return ScreenMedium
	case area < largeScreenArea:
		return ScreenLarge
	default:
		return ScreenXLarge
	}
}

// ResponsiveMultiplier returns the combined base-size multiplier for a viewport.
func ResponsiveMultiplier(dims Dimensions) float64 {
	m := screenMultipliers[Classify(dims)]

	if dims.Height > 0 {
		aspect := dims.Width / dims.Height
		switch {
		case aspect > ultraWideAspect:
			m *= ultraWideMultiplier
		case aspect < portraitAspect:
			m *= portraitMultiplier
		}
	}

	if dims.Width >= uhdWidth || dims.Height >= uhdHeight {
		m *= uhdMultiplier
	}
	return m
}

var defaultSizeCycle = []SizeClass{SizeMedium, SizeSmall, SizeLarge, SizeMedium, SizeXLarge, SizeSmall}

// SizeForIndex returns the size class for the i-th image when none was given.
func SizeForIndex(i int) SizeClass {
	if i < 0 {
		i = -i
	}
	return defaultSizeCycle[i%len(defaultSizeCycle)]
}

// MaxImages caps the number of images in one layout.
const MaxImages = 200

// SubmissionImages maps the first MaxImages submissions to layout images.
// Submissions without a size class cycle through the default sizes by position.
func SubmissionImages(subs []model.Submission) []Image {
	if len(subs) > MaxImages {
		subs = subs[:MaxImages]
	}
	images := make([]Image, len(subs))
	for i, s := range subs {
		size := SizeForIndex(i)
		if s.SizeClass != "" {
			size = ParseSizeClass(s.SizeClass)
		}
		images[i] = Image{ID: s.ID, Size: size}
	}
	return images
}

// ImagesFromIDs builds layout images for ids, cycling through the default sizes.
func ImagesFromIDs(ids []string) []Image {
	images := make([]Image, len(ids))
	for i, id := range ids {
		images[i] = Image{ID: id, Size: SizeForIndex(i)}
	}
	return images
}
